package repository

import "errors"

// Sentinel kinds for session history errors.
var (
	ErrInvalidLimit = errors.New("invalid history limit")
)
