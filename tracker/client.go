package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jason2031/byrbt-bot/captcha"
)

// maxCaptchaBytes bounds the captcha image download.
const maxCaptchaBytes = 1 << 20

// Client is an authenticated HTTP client for the tracker site.
type Client struct {
	baseURL       *url.URL
	username      string
	password      string
	userAgent     string
	loginAttempts int
	cookieFile    string
	jar           http.CookieJar
	httpClient    *http.Client
	solver        *captcha.Solver
	logger        zerolog.Logger
}

// NewClient creates a tracker client. The solver is required: the site
// gates every login behind a captcha. Previously saved session cookies
// are restored when a cookie file is configured.
func NewClient(baseURL, username, password string, solver *captcha.Solver, logger zerolog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if solver == nil {
		return nil, fmt.Errorf("captcha solver is required")
	}

	options := clientOptions{
		timeout:       30 * time.Second,
		userAgent:     "Magic Browser",
		loginAttempts: 3,
	}
	for _, opt := range opts {
		opt(&options)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: options.timeout}
	}
	httpClient.Jar = jar

	client := &Client{
		baseURL:       u,
		username:      username,
		password:      password,
		userAgent:     options.userAgent,
		loginAttempts: options.loginAttempts,
		cookieFile:    options.cookieFile,
		jar:           jar,
		httpClient:    httpClient,
		solver:        solver,
		logger:        logger.With().Str("component", "tracker").Logger(),
	}
	client.loadCookies()

	return client, nil
}

// Login authenticates against the site, solving a fresh captcha per
// attempt. Wrong captcha answers are retried up to the configured
// attempt count; other failures abort immediately.
func (c *Client) Login(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= c.loginAttempts; attempt++ {
		err := c.loginOnce(ctx)
		if err == nil {
			c.logger.Info().Int("attempt", attempt).Msg("Logged in")
			if err := c.SaveCookies(); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to save session cookies")
			}
			return nil
		}
		if !errors.Is(err, ErrLoginFailed) {
			return err
		}
		c.logger.Warn().Err(err).Int("attempt", attempt).Msg("Login attempt rejected")
		lastErr = err
	}
	return fmt.Errorf("giving up after %d attempts: %w", c.loginAttempts, lastErr)
}

// loginOnce runs one full login round: fetch the form, solve the
// captcha, submit, and check where the site redirects to. Landing on
// index.php is the only success signal the site gives.
func (c *Client) loginOnce(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, c.pageURL("login.php", nil), nil, "")
	if err != nil {
		return fmt.Errorf("fetching login page: %w", err)
	}
	imageSrc, imageHash, err := parseLoginPage(resp.Body)
	resp.Body.Close()
	if err != nil {
		return err
	}

	ref, err := url.Parse(imageSrc)
	if err != nil {
		return fmt.Errorf("%w: bad captcha image source %q", ErrPageLayout, imageSrc)
	}
	imgResp, err := c.do(ctx, http.MethodGet, c.baseURL.ResolveReference(ref), nil, "")
	if err != nil {
		return fmt.Errorf("fetching captcha image: %w", err)
	}
	data, err := io.ReadAll(io.LimitReader(imgResp.Body, maxCaptchaBytes))
	imgResp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading captcha image: %w", err)
	}

	answer, err := c.solver.Solve(data)
	if err != nil {
		return fmt.Errorf("solving captcha: %w", err)
	}

	form := url.Values{
		"username":    {c.username},
		"password":    {c.password},
		"imagestring": {answer},
		"imagehash":   {imageHash},
	}
	loginResp, err := c.do(ctx, http.MethodPost, c.pageURL("takelogin.php", nil),
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return fmt.Errorf("submitting login form: %w", err)
	}
	defer loginResp.Body.Close()

	if strings.HasSuffix(loginResp.Request.URL.Path, "index.php") {
		return nil
	}
	return fmt.Errorf("%w: landed on %s", ErrLoginFailed, loginResp.Request.URL.Path)
}

// Listing fetches one page of torrents.php filtered by the query.
func (c *Client) Listing(ctx context.Context, query ListingQuery) ([]Torrent, error) {
	params := url.Values{}
	if query.Category > 0 {
		params.Set("cat", strconv.Itoa(query.Category))
	}
	if query.Promotion > 0 {
		params.Set("spstate", strconv.Itoa(query.Promotion))
	}
	if query.Search != "" {
		params.Set("search", query.Search)
	}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}

	resp, err := c.get(ctx, c.pageURL("torrents.php", params))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	torrents, err := parseListingPage(resp.Body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Int("count", len(torrents)).Interface("query", query).Msg("Fetched listing")
	return torrents, nil
}

// Detail fetches a torrent's detail page. The returned download URL is
// absolute.
func (c *Client) Detail(ctx context.Context, id int) (*TorrentDetail, error) {
	params := url.Values{
		"id":  {strconv.Itoa(id)},
		"hit": {"1"},
	}
	resp, err := c.get(ctx, c.pageURL("details.php", params))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	detail, err := parseDetailPage(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("torrent %d: %w", id, err)
	}
	detail.ID = id

	ref, err := url.Parse(detail.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("torrent %d: %w: bad download link %q", id, ErrPageLayout, detail.DownloadURL)
	}
	detail.DownloadURL = c.baseURL.ResolveReference(ref).String()

	return detail, nil
}

// DownloadTorrent fetches the .torrent file behind a detail. The body
// is sanity-checked to be bencode, since the site answers HTML when the
// session is gone or the torrent was deleted.
func (c *Client) DownloadTorrent(ctx context.Context, detail *TorrentDetail) ([]byte, error) {
	u, err := url.Parse(detail.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("bad download URL %q: %w", detail.DownloadURL, err)
	}

	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading torrent file: %w", err)
	}
	if len(data) == 0 || data[0] != 'd' {
		return nil, fmt.Errorf("%w: response is not a torrent file", ErrPageLayout)
	}

	c.logger.Debug().Int("torrent_id", detail.ID).Int("bytes", len(data)).Msg("Downloaded torrent file")
	return data, nil
}

// pageURL builds an absolute URL for a site page.
func (c *Client) pageURL(page string, params url.Values) *url.URL {
	u := c.baseURL.ResolveReference(&url.URL{Path: page})
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u
}

// get performs an authenticated GET. A redirect to the login page means
// the session is gone and maps to ErrNotLoggedIn.
func (c *Client) get(ctx context.Context, u *url.URL) (*http.Response, error) {
	resp, err := c.do(ctx, http.MethodGet, u, nil, "")
	if err != nil {
		return nil, err
	}
	if strings.Contains(resp.Request.URL.Path, "login.php") {
		resp.Body.Close()
		return nil, ErrNotLoggedIn
	}
	return resp, nil
}

// do performs a request without session interpretation.
func (c *Client) do(ctx context.Context, method string, u *url.URL, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Trace().Str("method", method).Str("url", u.String()).Msg("Tracker request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp, nil
}
