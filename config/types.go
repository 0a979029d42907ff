package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Tracker    TrackerConfig             `mapstructure:"tracker"`
	Captcha    CaptchaConfig             `mapstructure:"captcha"`
	Paths      PathsConfig               `mapstructure:"paths"`
	Torrent    TorrentConfig             `mapstructure:"torrent"`
	Client     ClientConfig              `mapstructure:"client"`
	Categories map[string]CategoryConfig `mapstructure:"categories"`
	Promotions map[string]int            `mapstructure:"promotions"`
	Locations  map[string]string         `mapstructure:"locations"`
	Filter     FilterConfig              `mapstructure:"filter"`
	Logging    LoggingConfig             `mapstructure:"logging"`
}

// TrackerConfig holds the tracker site connection and account details
type TrackerConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	UserAgent     string        `mapstructure:"user_agent"`
	LoginAttempts int           `mapstructure:"login_attempts"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// CaptchaConfig points at the pre-trained captcha classifier artifact
type CaptchaConfig struct {
	ModelPath string `mapstructure:"model_path"`
}

// PathsConfig holds the on-disk state locations. Empty values fall
// back to the application's XDG data directory.
type PathsConfig struct {
	CookieFile string `mapstructure:"cookie_file"`
	TorrentDir string `mapstructure:"torrent_dir"`
	HistoryDB  string `mapstructure:"history_db"`
	LockFile   string `mapstructure:"lock_file"`
}

// TorrentConfig contains .torrent file handling settings
type TorrentConfig struct {
	DeleteAfterAdd bool `mapstructure:"delete_after_add"`
}

// ClientConfig selects and configures the local torrent client backend
type ClientConfig struct {
	Kind     string `mapstructure:"kind"`
	Binary   string `mapstructure:"binary"`
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CategoryConfig describes one tracker category: the numeric code used
// in listing URLs, the label the site renders for it, and the default
// download location for torrents in that category.
type CategoryConfig struct {
	Code     int    `mapstructure:"code"`
	Label    string `mapstructure:"label"`
	Location string `mapstructure:"location"`
}

// FilterConfig contains filter definitions
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
	File   string `mapstructure:"file"`
}
