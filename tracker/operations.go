package tracker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DownloadOptions contains options for a torrent download
type DownloadOptions struct {
	// Location names a configured download location.
	Location string
	// Dir overrides the client save directory entirely.
	Dir string
}

// DownloadSettings configures where torrent files and payloads go
type DownloadSettings struct {
	// TorrentDir receives the .torrent files themselves. Empty means
	// the working directory.
	TorrentDir string
	// DeleteAfterAdd removes the .torrent file once the client took it.
	DeleteAfterAdd bool
	// Locations maps location names to client save directories.
	Locations map[string]string
	// CategoryLocations maps site category labels to default save
	// directories, used when no location is named.
	CategoryLocations map[string]string
}

// DownloadResult describes one completed handoff
type DownloadResult struct {
	Detail      TorrentDetail
	TorrentPath string
	SaveDir     string
	Client      string
}

// Operations bundles the tracker client with the download client and
// history store into the bot's high-level commands.
type Operations struct {
	client   *Client
	torrents TorrentClient
	history  HistoryRecorder
	settings DownloadSettings
	logger   zerolog.Logger
}

// NewOperations creates a new Operations instance
func NewOperations(client *Client, logger zerolog.Logger) *Operations {
	return &Operations{
		client: client,
		logger: logger,
	}
}

// SetTorrentClient sets the external download client for handoffs
func (o *Operations) SetTorrentClient(client TorrentClient) {
	o.torrents = client
}

// SetHistoryRecorder sets the store that records completed downloads
func (o *Operations) SetHistoryRecorder(store HistoryRecorder) {
	o.history = store
}

// SetDownloadSettings sets the torrent and save directory layout
func (o *Operations) SetDownloadSettings(settings DownloadSettings) {
	o.settings = settings
}

// ListTorrents fetches a listing page and applies the optional match
// function to it.
func (o *Operations) ListTorrents(ctx context.Context, query ListingQuery, match func(Torrent) bool) ([]Torrent, error) {
	var torrents []Torrent
	err := o.withSession(ctx, func() error {
		var err error
		torrents, err = o.client.Listing(ctx, query)
		return err
	})
	if err != nil {
		return nil, err
	}
	if match == nil {
		return torrents, nil
	}

	filtered := make([]Torrent, 0, len(torrents))
	for _, t := range torrents {
		if match(t) {
			filtered = append(filtered, t)
		}
	}
	o.logger.Debug().Int("matched", len(filtered)).Int("total", len(torrents)).Msg("Filtered listing")
	return filtered, nil
}

// Download fetches a torrent's .torrent file and hands it to the
// download client. Without a configured client the file is only saved.
func (o *Operations) Download(ctx context.Context, id int, opts DownloadOptions) (*DownloadResult, error) {
	var detail *TorrentDetail
	err := o.withSession(ctx, func() error {
		var err error
		detail, err = o.client.Detail(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	saveDir, err := o.resolveSaveDir(detail, opts)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = o.withSession(ctx, func() error {
		var err error
		data, err = o.client.DownloadTorrent(ctx, detail)
		return err
	})
	if err != nil {
		return nil, err
	}

	path := filepath.Join(o.settings.TorrentDir, torrentFilename(detail.Name))
	if o.settings.TorrentDir != "" {
		if err := os.MkdirAll(o.settings.TorrentDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating torrent directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing torrent file: %w", err)
	}

	result := &DownloadResult{
		Detail:      *detail,
		TorrentPath: path,
		SaveDir:     saveDir,
	}

	if o.torrents == nil {
		o.logger.Warn().Str("file", path).Msg("No download client configured, torrent file saved only")
	} else {
		if err := o.torrents.Add(ctx, path, saveDir); err != nil {
			return nil, fmt.Errorf("handing torrent to %s: %w", o.torrents.Name(), err)
		}
		result.Client = o.torrents.Name()
		o.logger.Info().
			Int("torrent_id", id).
			Str("client", o.torrents.Name()).
			Str("save_dir", saveDir).
			Msg("Torrent handed to download client")

		if o.settings.DeleteAfterAdd {
			if err := os.Remove(path); err != nil {
				o.logger.Warn().Err(err).Str("file", path).Msg("Failed to remove torrent file")
			}
		}
	}

	if o.history != nil {
		rec := DownloadRecord{
			TorrentID:    detail.ID,
			Name:         detail.Name,
			Category:     detail.Category,
			SaveDir:      saveDir,
			Client:       result.Client,
			DownloadedAt: time.Now(),
		}
		if err := o.history.RecordDownload(ctx, rec); err != nil {
			o.logger.Warn().Err(err).Int("torrent_id", id).Msg("Failed to record download history")
		}
	}

	return result, nil
}

// ClientTorrents lists the download client's torrents.
func (o *Operations) ClientTorrents(ctx context.Context) ([]ClientTorrent, error) {
	if o.torrents == nil {
		return nil, ErrNoTorrentClient
	}
	return o.torrents.List(ctx)
}

// RemoveFromClient removes a torrent from the download client.
func (o *Operations) RemoveFromClient(ctx context.Context, id string, deleteFiles bool) error {
	if o.torrents == nil {
		return ErrNoTorrentClient
	}
	return o.torrents.Remove(ctx, id, deleteFiles)
}

// Refresh forces a fresh login regardless of the current session.
func (o *Operations) Refresh(ctx context.Context) error {
	return o.client.Login(ctx)
}

// resolveSaveDir picks the client save directory: an explicit directory
// wins, then a named location, then the category default, then a
// location named "default". Empty means the client decides.
func (o *Operations) resolveSaveDir(detail *TorrentDetail, opts DownloadOptions) (string, error) {
	if opts.Dir != "" {
		return opts.Dir, nil
	}
	if opts.Location != "" {
		dir, ok := o.settings.Locations[opts.Location]
		if !ok {
			return "", fmt.Errorf("unknown location %q", opts.Location)
		}
		return dir, nil
	}
	if dir, ok := o.settings.CategoryLocations[detail.Category]; ok && dir != "" {
		return dir, nil
	}
	if dir, ok := o.settings.Locations["default"]; ok {
		return dir, nil
	}
	return "", nil
}

// withSession runs fn and, when the session has expired, logs in once
// and runs it again.
func (o *Operations) withSession(ctx context.Context, fn func() error) error {
	err := fn()
	if !errors.Is(err, ErrNotLoggedIn) {
		return err
	}
	o.logger.Info().Msg("Session expired, logging in")
	if err := o.client.Login(ctx); err != nil {
		return err
	}
	return fn()
}

// torrentFilename turns the site's torrent name into a safe file name.
func torrentFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "download"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".torrent") {
		name += ".torrent"
	}
	return name
}
