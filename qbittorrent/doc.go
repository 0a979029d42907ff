// Package qbittorrent provides the qBittorrent download client backend.
//
// This package wraps the autobrr/go-qbittorrent library behind the
// tracker.TorrentClient interface, so downloaded .torrent files can be
// handed to a qBittorrent instance over its Web API instead of to the
// transmission-remote CLI.
//
// # Usage
//
//	client, err := qbittorrent.NewClient(url, username, password, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = client.Add(ctx, "/path/to/file.torrent", "/downloads/movies")
package qbittorrent
