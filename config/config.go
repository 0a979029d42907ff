package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Load loads the configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".byrbt-bot"))
		}

		// Check /etc
		v.AddConfigPath("/etc/byrbt-bot/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Fill empty state paths from the XDG data directory
	applyDefaultPaths(&cfg)

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Tracker defaults
	v.SetDefault("tracker.base_url", "https://bt.byr.cn/")
	v.SetDefault("tracker.user_agent", "Magic Browser")
	v.SetDefault("tracker.login_attempts", 3)
	v.SetDefault("tracker.timeout", 30*time.Second)

	// Torrent client defaults
	v.SetDefault("client.kind", "transmission")
	v.SetDefault("client.binary", "transmission-remote")

	// Category codes and labels as the tracker renders them. Each entry
	// can carry a default download location; missing locations are
	// resolved through the named locations map instead.
	for name, cat := range defaultCategories {
		v.SetDefault("categories."+name+".code", cat.Code)
		v.SetDefault("categories."+name+".label", cat.Label)
	}

	// Promotion (spstate) codes understood by the listing URL
	for name, code := range defaultPromotions {
		v.SetDefault("promotions."+name, code)
	}

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// defaultCategories mirrors the category table of the tracker site.
// The labels are what the site uses in listing and detail pages, so
// they double as the reverse-lookup key when scraping.
var defaultCategories = map[string]CategoryConfig{
	"movie":       {Code: 408, Label: "电影"},
	"episode":     {Code: 401, Label: "剧集"},
	"anime":       {Code: 404, Label: "动漫"},
	"music":       {Code: 402, Label: "音乐"},
	"show":        {Code: 403, Label: "综艺"},
	"game":        {Code: 405, Label: "游戏"},
	"software":    {Code: 406, Label: "软件"},
	"material":    {Code: 407, Label: "资料"},
	"sport":       {Code: 409, Label: "体育"},
	"documentary": {Code: 410, Label: "记录"},
}

// defaultPromotions maps promotion names to NexusPHP spstate codes.
var defaultPromotions = map[string]int{
	"normal":        1,
	"free":          2,
	"twoup":         3,
	"twoupfree":     4,
	"halfdown":      5,
	"twouphalfdown": 6,
	"thirtypercent": 7,
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Tracker.BaseURL == "" {
		return fmt.Errorf("tracker.base_url is required")
	}
	if _, err := url.Parse(cfg.Tracker.BaseURL); err != nil {
		return fmt.Errorf("tracker.base_url is not a valid URL: %w", err)
	}

	if cfg.Tracker.Username == "" {
		return fmt.Errorf("tracker.username is required")
	}
	if cfg.Tracker.Password == "" {
		return fmt.Errorf("tracker.password is required")
	}

	if cfg.Tracker.LoginAttempts < 1 {
		return fmt.Errorf("tracker.login_attempts must be at least 1")
	}

	if cfg.Captcha.ModelPath == "" {
		return fmt.Errorf("captcha.model_path is required")
	}

	// Validate torrent client selection
	switch cfg.Client.Kind {
	case "transmission":
		if cfg.Client.Binary == "" {
			return fmt.Errorf("client.binary is required for the transmission client")
		}
	case "qbittorrent":
		if cfg.Client.URL == "" {
			return fmt.Errorf("client.url is required for the qbittorrent client")
		}
	case "none":
	default:
		return fmt.Errorf("invalid client.kind: %s (must be 'transmission', 'qbittorrent' or 'none')", cfg.Client.Kind)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// Category returns the configured category by name.
func (c *Config) Category(name string) (CategoryConfig, bool) {
	cat, ok := c.Categories[name]
	return cat, ok
}

// CategoryNameForLabel reverse-maps a scraped category label to its
// configured name. Unknown labels resolve to the empty string.
func (c *Config) CategoryNameForLabel(label string) string {
	for name, cat := range c.Categories {
		if cat.Label == label {
			return name
		}
	}
	return ""
}

// PromotionCode returns the spstate code for a promotion name.
func (c *Config) PromotionCode(name string) (int, bool) {
	code, ok := c.Promotions[name]
	return code, ok
}
