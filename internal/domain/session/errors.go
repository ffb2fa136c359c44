package session

import "errors"

// Sentinel kinds for session errors.
var (
	ErrAlreadyStarted = errors.New("scan session already started")
	ErrCancelled      = errors.New("scan session cancelled")
	ErrNotFinished    = errors.New("scan session not finished")
	ErrUnknownState   = errors.New("unknown scan state")
)
