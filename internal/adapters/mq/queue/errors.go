package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrQueueFull   = errors.New("log queue full")
	ErrQueueClosed = errors.New("log queue closed")
)
