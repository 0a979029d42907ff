package qbittorrent

import (
	"context"
	"fmt"

	"github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog"

	"github.com/Jason2031/byrbt-bot/tracker"
)

// Client hands torrents to a qBittorrent instance over its Web API. It
// implements tracker.TorrentClient.
type Client struct {
	client *qbittorrent.Client
	logger zerolog.Logger
}

// NewClient creates a new qBittorrent client and verifies the
// connection by logging in.
func NewClient(url, username, password string, logger zerolog.Logger) (*Client, error) {
	client := qbittorrent.NewClient(qbittorrent.Config{
		Host:     url,
		Username: username,
		Password: password,
	})

	if err := client.LoginCtx(context.Background()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	return &Client{
		client: client,
		logger: logger.With().Str("component", "qbittorrent").Logger(),
	}, nil
}

// Name identifies the backend in logs and history.
func (c *Client) Name() string {
	return "qbittorrent"
}

// Add registers a .torrent file with qBittorrent. A non-empty saveDir
// pins the save path, which also disables automatic torrent management
// for the torrent since the two are mutually exclusive.
func (c *Client) Add(ctx context.Context, torrentPath, saveDir string) error {
	options := map[string]string{}
	if saveDir != "" {
		options["savepath"] = saveDir
		options["autoTMM"] = "false"
	}

	if err := c.client.AddTorrentFromFileCtx(ctx, torrentPath, options); err != nil {
		return fmt.Errorf("adding torrent to qBittorrent: %w", err)
	}

	c.logger.Debug().Str("file", torrentPath).Str("save_dir", saveDir).Msg("Added torrent")
	return nil
}

// List returns the torrents qBittorrent currently manages.
func (c *Client) List(ctx context.Context) ([]tracker.ClientTorrent, error) {
	torrents, err := c.client.GetTorrentsCtx(ctx, qbittorrent.TorrentFilterOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing qBittorrent torrents: %w", err)
	}

	results := make([]tracker.ClientTorrent, 0, len(torrents))
	for _, t := range torrents {
		results = append(results, tracker.ClientTorrent{
			ID:       t.Hash,
			Name:     t.Name,
			Status:   stateLabel(string(t.State)),
			Progress: t.Progress * 100,
			Ratio:    t.Ratio,
			Size:     t.Size,
			ETA:      formatETA(t.ETA),
		})
	}

	c.logger.Debug().Int("count", len(results)).Msg("Listed torrents")
	return results, nil
}

// Remove drops a torrent, optionally deleting its downloaded data. The
// id is the torrent's info hash.
func (c *Client) Remove(ctx context.Context, id string, deleteFiles bool) error {
	if err := c.client.DeleteTorrentsCtx(ctx, []string{id}, deleteFiles); err != nil {
		return fmt.Errorf("removing torrent from qBittorrent: %w", err)
	}

	c.logger.Debug().Str("hash", id).Bool("delete_files", deleteFiles).Msg("Removed torrent")
	return nil
}
