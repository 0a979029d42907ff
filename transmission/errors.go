package transmission

import "errors"

// Common errors returned by the transmission client.
var (
	// ErrCommandFailed is returned when transmission-remote exits
	// non-zero.
	ErrCommandFailed = errors.New("transmission-remote failed")
)
