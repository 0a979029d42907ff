package tracker

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	timeout       time.Duration
	userAgent     string
	loginAttempts int
	cookieFile    string
	httpClient    *http.Client
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithLoginAttempts sets how many captcha rounds Login tries before
// giving up.
func WithLoginAttempts(attempts int) Option {
	return func(o *clientOptions) {
		if attempts >= 1 {
			o.loginAttempts = attempts
		}
	}
}

// WithCookieFile enables session persistence at the given path.
func WithCookieFile(path string) Option {
	return func(o *clientOptions) {
		o.cookieFile = path
	}
}

// WithHTTPClient replaces the underlying HTTP client. The client's jar
// is replaced with the session jar.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}
