package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrScanInProgress = errors.New("a scan is already in progress")
	ErrNoActiveScan   = errors.New("no active scan")
)
