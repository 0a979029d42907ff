package tracker

import "errors"

// Common errors
var (
	// ErrLoginFailed indicates the site rejected the login form, usually
	// because the captcha answer was wrong
	ErrLoginFailed = errors.New("login failed")
	// ErrNotLoggedIn indicates the site redirected to the login page
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrPageLayout indicates a page did not contain the expected markup
	ErrPageLayout = errors.New("unexpected page layout")
	// ErrNotFound indicates the requested torrent does not exist
	ErrNotFound = errors.New("torrent not found")
	// ErrNoTorrentClient indicates no download client is configured
	ErrNoTorrentClient = errors.New("no torrent client configured")
)
