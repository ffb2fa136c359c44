// Package history keeps a fixed-capacity rolling window of scored readings.
package history

import (
	"iter"
	"slices"
	"sync"

	"github.com/silentsignal/vitals/internal/domain/model"
)

// DefaultCapacity is one reading per day for a trailing week.
const DefaultCapacity = 7

// Buffer is a ring of readings ordered oldest first. Appending at capacity
// evicts the oldest entry. Safe for concurrent use.
type Buffer struct {
	mu      sync.RWMutex
	entries []model.ScoredReading
	head    int // index of the oldest entry
	size    int
}

// New creates a buffer holding at most capacity readings. A non-positive
// capacity falls back to DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{entries: make([]model.ScoredReading, capacity)}
}

// Append adds r as the newest entry, evicting the oldest when full.
func (b *Buffer) Append(r model.ScoredReading) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendLocked(r)
}

func (b *Buffer) appendLocked(r model.ScoredReading) {
	capacity := len(b.entries)
	if b.size < capacity {
		b.entries[(b.head+b.size)%capacity] = r
		b.size++
		return
	}
	b.entries[b.head] = r
	b.head = (b.head + 1) % capacity
}

// Seed loads readings, typically fetched from the log service at startup.
// They are ordered by timestamp first so callers may pass newest-first lists;
// only the newest capacity entries survive.
func (b *Buffer) Seed(readings []model.ScoredReading) {
	sorted := slices.Clone(readings)
	slices.SortStableFunc(sorted, func(a, c model.ScoredReading) int {
		return a.Timestamp.Compare(c.Timestamp)
	})

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range sorted {
		b.appendLocked(r)
	}
}

// Len returns the number of readings currently held.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int {
	return len(b.entries)
}

// Snapshot returns a finite sequence over the buffer contents at the time of
// the call, oldest first. The sequence can be ranged any number of times and
// never observes appends made after Snapshot returned.
func (b *Buffer) Snapshot() iter.Seq[model.ScoredReading] {
	frozen := b.copyOut()
	return func(yield func(model.ScoredReading) bool) {
		for _, r := range frozen {
			if !yield(r) {
				return
			}
		}
	}
}

// Readings returns a copy of the contents, oldest first.
func (b *Buffer) Readings() []model.ScoredReading {
	return slices.Collect(b.Snapshot())
}

// Latest returns the newest reading, if any.
func (b *Buffer) Latest() (model.ScoredReading, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.size == 0 {
		return model.ScoredReading{}, false
	}
	return b.entries[(b.head+b.size-1)%len(b.entries)], true
}

func (b *Buffer) copyOut() []model.ScoredReading {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.ScoredReading, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.entries[(b.head+i)%len(b.entries)]
	}
	return out
}
