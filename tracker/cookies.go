package tracker

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// storedCookie is the on-disk form of one session cookie. The jar only
// exposes name/value pairs, which is all a NexusPHP session needs; a
// stale cookie just causes one re-login.
type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	SavedAt time.Time `json:"saved_at"`
}

// SaveCookies persists the current session cookies. It is a no-op when
// the client has no cookie file configured.
func (c *Client) SaveCookies() error {
	if c.cookieFile == "" {
		return nil
	}

	cookies := c.jar.Cookies(c.baseURL)
	stored := make([]storedCookie, 0, len(cookies))
	now := time.Now()
	for _, ck := range cookies {
		stored = append(stored, storedCookie{Name: ck.Name, Value: ck.Value, SavedAt: now})
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cookies: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.cookieFile), 0o755); err != nil {
		return fmt.Errorf("creating cookie directory: %w", err)
	}
	if err := os.WriteFile(c.cookieFile, data, 0o600); err != nil {
		return fmt.Errorf("writing cookie file: %w", err)
	}

	c.logger.Debug().Str("file", c.cookieFile).Int("cookies", len(stored)).Msg("Saved session cookies")
	return nil
}

// loadCookies restores a previously saved session into the jar. A
// missing file is not an error; a corrupt one is ignored with a warning
// since login recreates it.
func (c *Client) loadCookies() {
	if c.cookieFile == "" {
		return
	}

	data, err := os.ReadFile(c.cookieFile)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn().Err(err).Str("file", c.cookieFile).Msg("Failed to read cookie file")
		}
		return
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		c.logger.Warn().Err(err).Str("file", c.cookieFile).Msg("Ignoring corrupt cookie file")
		return
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, ck := range stored {
		cookies = append(cookies, &http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	c.jar.SetCookies(c.baseURL, cookies)

	c.logger.Debug().Str("file", c.cookieFile).Int("cookies", len(cookies)).Msg("Restored session cookies")
}
