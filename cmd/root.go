package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Jason2031/byrbt-bot/captcha"
	"github.com/Jason2031/byrbt-bot/config"
	"github.com/Jason2031/byrbt-bot/filter"
	"github.com/Jason2031/byrbt-bot/history"
	"github.com/Jason2031/byrbt-bot/qbittorrent"
	"github.com/Jason2031/byrbt-bot/tracker"
	"github.com/Jason2031/byrbt-bot/transmission"
)

var (
	cfgFile        string
	cfg            *config.Config
	logger         zerolog.Logger
	solver         *captcha.Solver
	trackerClient  *tracker.Client
	operations     *tracker.Operations
	historyStore   *history.Store
	filterCompiler *filter.Compiler
	appLock        *flock.Flock

	appVersion   = "dev"
	appBuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "byrbt-bot",
	Short: "A bot for the BYR BitTorrent tracker",
	Long: `byrbt-bot logs into the BYR tracker (solving its image captcha with a
pre-trained classifier), browses and searches the torrent listing, and
hands selected torrents to a local download client (transmission or
qBittorrent).

Run a subcommand directly, or start 'byrbt-bot shell' for the
interactive command loop.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// version and update work without config or tracker access
		switch cmd.Name() {
		case "version", "update", "help", "completion":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}
		return initializeApp(cmd, args)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardownApp()
	},
}

// SetVersion records the build information injected from main.
func SetVersion(version, buildTime string) {
	appVersion = version
	appBuildTime = buildTime
	rootCmd.Version = version
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		teardownApp()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// One instance at a time: the cookie file and history database are
	// not safe against concurrent writers.
	appLock = flock.New(cfg.Paths.LockFile)
	locked, err := appLock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", cfg.Paths.LockFile, err)
	}
	if !locked {
		return fmt.Errorf("another byrbt-bot instance is already running")
	}

	// Load the captcha classifier. Without it no login can succeed, so
	// a load failure is fatal.
	model, err := captcha.LoadModel(cfg.Captcha.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to load captcha model: %w", err)
	}
	solver = captcha.NewSolver(model, logger)

	// Create tracker client
	trackerClient, err = tracker.NewClient(
		cfg.Tracker.BaseURL,
		cfg.Tracker.Username,
		cfg.Tracker.Password,
		solver,
		logger,
		tracker.WithTimeout(cfg.Tracker.Timeout),
		tracker.WithUserAgent(cfg.Tracker.UserAgent),
		tracker.WithLoginAttempts(cfg.Tracker.LoginAttempts),
		tracker.WithCookieFile(cfg.Paths.CookieFile),
	)
	if err != nil {
		return fmt.Errorf("failed to create tracker client: %w", err)
	}

	operations = tracker.NewOperations(trackerClient, logger)
	operations.SetDownloadSettings(downloadSettings(cfg))

	// Create the download client backend
	torrentClient, err := buildTorrentClient(cfg)
	if err != nil {
		return err
	}
	if torrentClient != nil {
		operations.SetTorrentClient(torrentClient)
		logger.Debug().Str("client", torrentClient.Name()).Msg("Download client configured")
	}

	// Open the history store. History is best-effort: a broken store
	// must not keep the bot from downloading.
	historyStore, err = history.Open(cfg.Paths.HistoryDB, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to open history store, continuing without history")
		historyStore = nil
	} else {
		operations.SetHistoryRecorder(historyStore)
	}

	filterCompiler = filter.NewCompiler(filter.WithCache(32))

	return nil
}

// teardownApp releases the process state initializeApp acquired.
func teardownApp() {
	if historyStore != nil {
		if err := historyStore.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close history store")
		}
		historyStore = nil
	}
	if appLock != nil {
		if err := appLock.Unlock(); err != nil {
			logger.Warn().Err(err).Msg("Failed to release instance lock")
		}
		appLock = nil
	}
}

// buildTorrentClient constructs the configured download client backend.
func buildTorrentClient(cfg *config.Config) (tracker.TorrentClient, error) {
	switch cfg.Client.Kind {
	case "transmission":
		opts := []transmission.Option{transmission.WithHost(cfg.Client.URL)}
		if cfg.Client.Username != "" {
			opts = append(opts, transmission.WithAuth(cfg.Client.Username, cfg.Client.Password))
		}
		client, err := transmission.NewClient(cfg.Client.Binary, logger, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create transmission client: %w", err)
		}
		return client, nil
	case "qbittorrent":
		client, err := qbittorrent.NewClient(cfg.Client.URL, cfg.Client.Username, cfg.Client.Password, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create qBittorrent client: %w", err)
		}
		return client, nil
	default: // "none", already validated by config
		return nil, nil
	}
}

// downloadSettings maps the config's download layout into the
// operations settings. Category locations may name a configured
// location or give a directory outright.
func downloadSettings(cfg *config.Config) tracker.DownloadSettings {
	categoryLocations := make(map[string]string, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		if cat.Location == "" {
			continue
		}
		dir := cat.Location
		if resolved, ok := cfg.Locations[cat.Location]; ok {
			dir = resolved
		}
		categoryLocations[cat.Label] = dir
	}

	return tracker.DownloadSettings{
		TorrentDir:        cfg.Paths.TorrentDir,
		DeleteAfterAdd:    cfg.Torrent.DeleteAfterAdd,
		Locations:         cfg.Locations,
		CategoryLocations: categoryLocations,
	}
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	var writers []io.Writer
	if cfg.Format == "json" {
		writers = append(writers, os.Stderr)
	} else {
		// Color only when requested and stderr is actually a terminal
		color := cfg.Color && isatty.IsTerminal(os.Stderr.Fd())
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    !color,
		})
	}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot open log file %s: %v\n", cfg.File, err)
		} else {
			writers = append(writers, f)
		}
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
}

// getFilterExpression resolves the filter to use: an explicit
// expression wins over a named preset. Empty means no filter.
func getFilterExpression(expression, preset string) (string, error) {
	if expression != "" {
		return expression, nil
	}
	if preset != "" {
		if presetExpr, ok := cfg.Filter.Presets[preset]; ok {
			return presetExpr, nil
		}
		return "", fmt.Errorf("preset '%s' not found in config", preset)
	}
	return "", nil
}

// matchFunc compiles the filter into a listing predicate. A nil
// predicate means list everything.
func matchFunc(expression, preset string) (func(tracker.Torrent) bool, error) {
	expr, err := getFilterExpression(expression, preset)
	if err != nil {
		return nil, err
	}
	if expr == "" {
		return nil, nil
	}
	compiled, err := filterCompiler.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return compiled.Match, nil
}
