package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrInvalidLimit = errors.New("invalid history limit")
	ErrInvalidEntry = errors.New("invalid log entry")
	ErrNoPath       = errors.New("sqlite path is required")
)
