package captcha

import "errors"

// Common errors
var (
	// ErrInvalidModel indicates the classifier artifact is missing,
	// corrupt or inconsistent with its own geometry
	ErrInvalidModel = errors.New("invalid classifier model")
	// ErrUnusableImage indicates the captcha image cannot be decoded or
	// does not match the geometry the model was trained on
	ErrUnusableImage = errors.New("unusable captcha image")
)
