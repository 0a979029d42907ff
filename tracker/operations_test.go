package tracker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTorrentClient records handoffs instead of talking to a real
// download client.
type fakeTorrentClient struct {
	mu       sync.Mutex
	adds     []addCall
	torrents []ClientTorrent
	removed  []string
	addErr   error
}

type addCall struct {
	path    string
	saveDir string
}

func (f *fakeTorrentClient) Name() string { return "fake" }

func (f *fakeTorrentClient) Add(_ context.Context, torrentPath, saveDir string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds = append(f.adds, addCall{path: torrentPath, saveDir: saveDir})
	return nil
}

func (f *fakeTorrentClient) List(_ context.Context) ([]ClientTorrent, error) {
	return f.torrents, nil
}

func (f *fakeTorrentClient) Remove(_ context.Context, id string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeTorrentClient) addCalls() []addCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]addCall(nil), f.adds...)
}

// fakeRecorder captures history records.
type fakeRecorder struct {
	mu      sync.Mutex
	records []DownloadRecord
}

func (f *fakeRecorder) RecordDownload(_ context.Context, rec DownloadRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func TestOperationsDownload(t *testing.T) {
	f := newFakeTracker(t)
	client := newTestClient(t, f)

	torrentDir := t.TempDir()
	fake := &fakeTorrentClient{}
	recorder := &fakeRecorder{}

	ops := NewOperations(client, zerolog.Nop())
	ops.SetTorrentClient(fake)
	ops.SetHistoryRecorder(recorder)
	ops.SetDownloadSettings(DownloadSettings{
		TorrentDir:     torrentDir,
		DeleteAfterAdd: true,
		CategoryLocations: map[string]string{
			"电影": "/data/movies",
		},
	})

	// No explicit login: the first request hits ErrNotLoggedIn and the
	// session wrapper logs in on its own.
	result, err := ops.Download(context.Background(), 123456, DownloadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, f.loginCount())
	assert.Equal(t, "/data/movies", result.SaveDir)
	assert.Equal(t, "fake", result.Client)
	assert.Equal(t, filepath.Join(torrentDir, "[BYRBT].Some.Movie.2024.torrent"), result.TorrentPath)

	calls := fake.addCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, result.TorrentPath, calls[0].path)
	assert.Equal(t, "/data/movies", calls[0].saveDir)

	// DeleteAfterAdd removes the .torrent once the client has it
	_, err = os.Stat(result.TorrentPath)
	assert.True(t, os.IsNotExist(err))

	require.Len(t, recorder.records, 1)
	rec := recorder.records[0]
	assert.Equal(t, 123456, rec.TorrentID)
	assert.Equal(t, "[BYRBT].Some.Movie.2024.torrent", rec.Name)
	assert.Equal(t, "电影", rec.Category)
	assert.Equal(t, "/data/movies", rec.SaveDir)
	assert.Equal(t, "fake", rec.Client)
	assert.False(t, rec.DownloadedAt.IsZero())
}

func TestOperationsDownloadWithoutClient(t *testing.T) {
	f := newFakeTracker(t)
	client := newTestClient(t, f)

	torrentDir := t.TempDir()
	ops := NewOperations(client, zerolog.Nop())
	ops.SetDownloadSettings(DownloadSettings{TorrentDir: torrentDir})

	result, err := ops.Download(context.Background(), 123456, DownloadOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Client)

	// Without a client the .torrent file stays on disk
	data, err := os.ReadFile(result.TorrentPath)
	require.NoError(t, err)
	assert.Equal(t, f.torrentData, data)
}

func TestOperationsDownloadUnknownLocation(t *testing.T) {
	f := newFakeTracker(t)
	client := newTestClient(t, f)

	ops := NewOperations(client, zerolog.Nop())
	ops.SetTorrentClient(&fakeTorrentClient{})
	ops.SetDownloadSettings(DownloadSettings{
		TorrentDir: t.TempDir(),
		Locations:  map[string]string{"anime": "/data/anime"},
	})

	_, err := ops.Download(context.Background(), 123456, DownloadOptions{Location: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown location")
}

func TestResolveSaveDir(t *testing.T) {
	ops := &Operations{
		settings: DownloadSettings{
			Locations: map[string]string{
				"default": "/data/misc",
				"anime":   "/data/anime",
			},
			CategoryLocations: map[string]string{
				"电影": "/data/movies",
			},
		},
	}
	detail := &TorrentDetail{Category: "电影"}

	tests := []struct {
		name    string
		detail  *TorrentDetail
		opts    DownloadOptions
		want    string
		wantErr bool
	}{
		{
			name:   "Explicit dir wins",
			detail: detail,
			opts:   DownloadOptions{Dir: "/mnt/elsewhere", Location: "anime"},
			want:   "/mnt/elsewhere",
		},
		{
			name:   "Named location",
			detail: detail,
			opts:   DownloadOptions{Location: "anime"},
			want:   "/data/anime",
		},
		{
			name:    "Unknown location",
			detail:  detail,
			opts:    DownloadOptions{Location: "movies"},
			wantErr: true,
		},
		{
			name:   "Category default",
			detail: detail,
			want:   "/data/movies",
		},
		{
			name:   "Fallback to default location",
			detail: &TorrentDetail{Category: "体育"},
			want:   "/data/misc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ops.resolveSaveDir(tt.detail, tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOperationsListTorrentsWithFilter(t *testing.T) {
	f := newFakeTracker(t)
	client := newTestClient(t, f)

	ops := NewOperations(client, zerolog.Nop())

	torrents, err := ops.ListTorrents(context.Background(), ListingQuery{}, func(t Torrent) bool {
		return t.Promotion.FreeLeech()
	})
	require.NoError(t, err)
	require.Len(t, torrents, 1)
	assert.Equal(t, 123456, torrents[0].ID)
}

func TestOperationsSessionRecovery(t *testing.T) {
	f := newFakeTracker(t)
	client := newTestClient(t, f)

	ctx := context.Background()
	ops := NewOperations(client, zerolog.Nop())

	_, err := ops.ListTorrents(ctx, ListingQuery{}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, f.loginCount())

	// The site drops the session; the next call logs in again instead
	// of surfacing ErrNotLoggedIn.
	f.expireSessions()
	_, err = ops.ListTorrents(ctx, ListingQuery{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, f.loginCount())
}

func TestOperationsClientTorrentsWithoutClient(t *testing.T) {
	f := newFakeTracker(t)
	client := newTestClient(t, f)

	ops := NewOperations(client, zerolog.Nop())

	_, err := ops.ClientTorrents(context.Background())
	assert.True(t, errors.Is(err, ErrNoTorrentClient))

	err = ops.RemoveFromClient(context.Background(), "1", false)
	assert.True(t, errors.Is(err, ErrNoTorrentClient))
}

func TestOperationsDownloadAll(t *testing.T) {
	f := newFakeTracker(t)
	client := newTestClient(t, f)

	fake := &fakeTorrentClient{}
	ops := NewOperations(client, zerolog.Nop())
	ops.SetTorrentClient(fake)
	ops.SetDownloadSettings(DownloadSettings{TorrentDir: t.TempDir()})

	result := ops.DownloadAll(context.Background(), []int{123456, 654321, 999}, DownloadOptions{})

	assert.Equal(t, 3, result.Requested)
	assert.Len(t, result.Successful, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 999, result.Failed[0].TorrentID)
	assert.True(t, errors.Is(result.Failed[0].Err, ErrNotFound))

	// One login despite three downloads
	assert.Equal(t, 1, f.loginCount())
	assert.Len(t, fake.addCalls(), 2)
}

func TestOperationsDownloadHandoffFailure(t *testing.T) {
	f := newFakeTracker(t)
	client := newTestClient(t, f)

	fake := &fakeTorrentClient{addErr: errors.New("daemon unreachable")}
	ops := NewOperations(client, zerolog.Nop())
	ops.SetTorrentClient(fake)
	ops.SetDownloadSettings(DownloadSettings{TorrentDir: t.TempDir()})

	_, err := ops.Download(context.Background(), 123456, DownloadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handing torrent to fake")
}

func TestTorrentFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "Already a torrent name", in: "movie.torrent", want: "movie.torrent"},
		{name: "Missing extension", in: "movie", want: "movie.torrent"},
		{name: "Path separators replaced", in: "a/b\\c.torrent", want: "a_b_c.torrent"},
		{name: "Empty name", in: "", want: "download.torrent"},
		{name: "Dot name", in: ".", want: "download.torrent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, torrentFilename(tt.in))
		})
	}
}
