// Package history keeps a local record of every torrent handed to the
// download client.
//
// The store is a single SQLite file. It exists so the interactive dl
// command can warn before re-grabbing a torrent that was already
// downloaded, and so the history command has something to show; a
// failure to write history therefore never fails a download.
package history
