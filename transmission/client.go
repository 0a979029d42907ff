package transmission

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Jason2031/byrbt-bot/tracker"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithHost points the client at a remote daemon instead of
// localhost:9091.
func WithHost(host string) Option {
	return func(c *Client) {
		c.host = strings.TrimSpace(host)
	}
}

// WithAuth sets the daemon's RPC credentials.
func WithAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// Client wraps transmission-remote CLI interactions. It implements
// tracker.TorrentClient.
type Client struct {
	binary   string
	host     string
	username string
	password string
	exec     Executor
	logger   zerolog.Logger
}

// NewClient constructs a transmission client around the given binary.
func NewClient(binary string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, fmt.Errorf("transmission-remote binary required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
		logger: logger.With().Str("component", "transmission").Logger(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name identifies the backend in logs and history.
func (c *Client) Name() string {
	return "transmission"
}

// Add registers a .torrent file with the daemon. A non-empty saveDir
// becomes the torrent's download directory via -w.
func (c *Client) Add(ctx context.Context, torrentPath, saveDir string) error {
	args := c.baseArgs()
	args = append(args, "-a", torrentPath)
	if saveDir != "" {
		args = append(args, "-w", saveDir)
	}

	out, err := c.run(ctx, args)
	if err != nil {
		return err
	}

	c.logger.Debug().Str("file", torrentPath).Str("save_dir", saveDir).Str("output", strings.TrimSpace(out)).Msg("Added torrent")
	return nil
}

// List returns the torrents the daemon currently manages, parsed from
// transmission-remote -l output.
func (c *Client) List(ctx context.Context) ([]tracker.ClientTorrent, error) {
	out, err := c.run(ctx, append(c.baseArgs(), "-l"))
	if err != nil {
		return nil, err
	}
	return parseList(out)
}

// Remove drops a torrent from the daemon. The id is transmission's
// numeric torrent id as shown by List.
func (c *Client) Remove(ctx context.Context, id string, deleteFiles bool) error {
	args := append(c.baseArgs(), "-t", id)
	if deleteFiles {
		args = append(args, "-rad")
	} else {
		args = append(args, "-r")
	}

	if _, err := c.run(ctx, args); err != nil {
		return err
	}

	c.logger.Debug().Str("id", id).Bool("delete_files", deleteFiles).Msg("Removed torrent")
	return nil
}

// baseArgs builds the connection prefix shared by every invocation.
func (c *Client) baseArgs() []string {
	var args []string
	if c.host != "" {
		args = append(args, c.host)
	}
	if c.username != "" {
		args = append(args, "-n", c.username+":"+c.password)
	}
	return args
}

func (c *Client) run(ctx context.Context, args []string) (string, error) {
	c.logger.Trace().Str("binary", c.binary).Strs("args", args).Msg("Running transmission-remote")
	out, err := c.exec.Run(ctx, c.binary, args)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCommandFailed, err)
	}
	return out, nil
}

// commandExecutor runs the real binary.
type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	out, err := exec.CommandContext(ctx, binary, args...).CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return "", fmt.Errorf("%v: %s", err, strings.TrimSpace(string(out)))
		}
		return "", err
	}
	return string(out), nil
}
