package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// DataDir returns the directory used for state files (cookies, history
// database, lock file) when no explicit paths are configured.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "byrbt-bot")
}

// applyDefaultPaths fills unset state paths with XDG data dir defaults.
// The torrent directory intentionally has no default: leaving it empty
// means downloaded .torrent files land in the working directory.
func applyDefaultPaths(cfg *Config) {
	dir := DataDir()
	if cfg.Paths.CookieFile == "" {
		cfg.Paths.CookieFile = filepath.Join(dir, "cookies.json")
	}
	if cfg.Paths.HistoryDB == "" {
		cfg.Paths.HistoryDB = filepath.Join(dir, "history.db")
	}
	if cfg.Paths.LockFile == "" {
		cfg.Paths.LockFile = filepath.Join(dir, "byrbt-bot.lock")
	}
}
