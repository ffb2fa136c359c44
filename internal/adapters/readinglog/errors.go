package readinglog

import "errors"

// Sentinel kinds for reading log errors.
var (
	ErrUnexpectedStatus = errors.New("unexpected reading log status")
	ErrNoConnection     = errors.New("nats connection is not available")
)
