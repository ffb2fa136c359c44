package agent

import "errors"

// Sentinel kinds for agent errors.
var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrAgentStatus    = errors.New("agent returned non-success status")
	ErrEmptyResponse  = errors.New("agent returned an empty response")
	ErrGeneratorEmpty = errors.New("generator returned no text")
	ErrAgentTimeout   = errors.New("agent did not answer in time")
)
