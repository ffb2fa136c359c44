// Package readinglog ships completed readings to the behavioral log and
// fetches previously logged readings back for history seeding.
//
// Writes are fire-and-forget from the caller's point of view: the worker
// pool drives a Sink and only logs its failures.
package readinglog

import (
	"context"

	"github.com/silentsignal/vitals/internal/domain/model"
)

// DefaultHistoryLimit is the number of entries fetched when no limit is given.
const DefaultHistoryLimit = 7

// Sink appends one entry to the behavioral log.
type Sink interface {
	Append(ctx context.Context, e model.LogEntry) error
}

// HistorySource returns previously logged entries, newest first.
type HistorySource interface {
	History(ctx context.Context, limit int) ([]model.LogEntry, error)
}

// Readings converts entries into scored readings in the same order.
func Readings(entries []model.LogEntry) []model.ScoredReading {
	out := make([]model.ScoredReading, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Reading())
	}
	return out
}

// NopSink discards every entry.
type NopSink struct{}

// Append does nothing.
func (NopSink) Append(context.Context, model.LogEntry) error { return nil }

// EmptyHistory is a HistorySource with nothing logged.
type EmptyHistory struct{}

// History returns no entries.
func (EmptyHistory) History(context.Context, int) ([]model.LogEntry, error) { return nil, nil }
