// Package repository persists the append-only behavioral log.
//
// Backends share one contract: Append assigns an id and timestamp, Recent
// returns the newest entries first, and Count reports the total held.
package repository

import (
	"context"

	"github.com/silentsignal/vitals/internal/domain/model"
)

// Store is an append-only behavioral log.
type Store interface {
	// Append stores e and returns it with ID and Timestamp filled in. A
	// non-zero Timestamp on e is kept.
	Append(ctx context.Context, e model.LogEntry) (model.LogEntry, error)

	// Recent returns up to limit entries, newest first. limit must be positive.
	Recent(ctx context.Context, limit int) ([]model.LogEntry, error)

	// Count returns the number of entries held.
	Count(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}
