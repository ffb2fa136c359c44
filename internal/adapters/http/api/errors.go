package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrNoScan          = errors.New("no scan has been started")
	ErrStoreDisabled   = errors.New("reading log store is not configured")
	ErrInvalidLimit    = errors.New("limit must be a positive integer")
	ErrResponderAbsent = errors.New("local agent responder is not configured")
)
