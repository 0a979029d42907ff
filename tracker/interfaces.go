package tracker

import "context"

// TorrentClient hands torrents to an external download client. The two
// implementations live in the transmission and qbittorrent packages;
// Operations only sees this interface so the client choice stays a
// config concern.
type TorrentClient interface {
	// Name identifies the client implementation in logs and history.
	Name() string
	// Add registers a .torrent file with the client. An empty saveDir
	// leaves the client's own default download directory in charge.
	Add(ctx context.Context, torrentPath, saveDir string) error
	// List returns the torrents the client currently manages.
	List(ctx context.Context) ([]ClientTorrent, error)
	// Remove drops a torrent from the client, optionally with its data.
	Remove(ctx context.Context, id string, deleteFiles bool) error
}

// HistoryRecorder persists completed tracker-to-client handoffs.
type HistoryRecorder interface {
	RecordDownload(ctx context.Context, rec DownloadRecord) error
}
