// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Sample is a single biometric measurement pair.
type Sample struct {
	HeartRate  int `json:"heart_rate"`  // beats per minute
	BreathRate int `json:"breath_rate"` // breaths per minute
}

// Status is the anxiety category derived from a score.
type Status string

// Known statuses. Pending is only ever seen before the first completed scan.
const (
	StatusPending  Status = "Pending"
	StatusOptimal  Status = "Optimal"
	StatusElevated Status = "Elevated"
	StatusCritical Status = "Critical"
)

// Severity orders statuses from least to most severe. Unknown statuses rank
// alongside Pending.
func (s Status) Severity() int {
	switch s {
	case StatusOptimal:
		return 1
	case StatusElevated:
		return 2
	case StatusCritical:
		return 3
	default:
		return 0
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusOptimal, StatusElevated, StatusCritical:
		return true
	}
	return false
}

// ScoredReading is an immutable scored sample. Copies are handed out by value
// so holders can never observe a partially written entry.
type ScoredReading struct {
	ID           string    `json:"id,omitempty"`
	Sample       Sample    `json:"sample"`
	AnxietyScore int       `json:"anxiety_score"`
	Status       Status    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewReading builds a ScoredReading with a fresh id.
func NewReading(s Sample, score int, status Status, ts time.Time) ScoredReading {
	return ScoredReading{
		ID:           uuid.NewString(),
		Sample:       s,
		AnxietyScore: score,
		Status:       status,
		Timestamp:    ts,
	}
}

// Pending returns the sentinel reading used before any scan completes.
func Pending() ScoredReading {
	return ScoredReading{Status: StatusPending}
}

// IsPending reports whether r is the pre-scan sentinel.
func (r ScoredReading) IsPending() bool {
	return r.Status == StatusPending || r.Status == ""
}
