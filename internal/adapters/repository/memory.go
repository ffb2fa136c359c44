package repository

import (
	"context"
	"sync"

	"github.com/silentsignal/vitals/internal/domain/model"
	"github.com/silentsignal/vitals/pkg/metrics"
)

// MemoryStore keeps the log in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []model.LogEntry
	nextID  int64
	opts    options
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{opts: o}
}

// Append stores e.
func (s *MemoryStore) Append(ctx context.Context, e model.LogEntry) (model.LogEntry, error) {
	if err := ctx.Err(); err != nil {
		return model.LogEntry{}, err
	}
	e, err := s.opts.prepare(e)
	if err != nil {
		return model.LogEntry{}, err
	}

	s.mu.Lock()
	s.nextID++
	e.ID = s.nextID
	s.entries = append(s.entries, e)
	if over := len(s.entries) - s.opts.maxEntries; over > 0 {
		s.entries = append(s.entries[:0:0], s.entries[over:]...)
	}
	n := len(s.entries)
	s.mu.Unlock()

	metrics.UpdateRepositoryRecordsTotal(n)
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]model.LogEntry, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(limit, len(s.entries))
	out := make([]model.LogEntry, 0, n)
	for i := len(s.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

// Count returns the number of entries held.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
