package readinglog

import (
	"context"

	"github.com/silentsignal/vitals/internal/adapters/repository"
	"github.com/silentsignal/vitals/internal/domain/model"
	"github.com/silentsignal/vitals/pkg/metrics"
)

// StoreSink writes straight into a local repository.Store. It also serves
// history from the same store.
type StoreSink struct {
	store repository.Store
}

// NewStoreSink wraps store.
func NewStoreSink(store repository.Store) *StoreSink {
	return &StoreSink{store: store}
}

// Append stores e.
func (s *StoreSink) Append(ctx context.Context, e model.LogEntry) error {
	_, err := s.store.Append(ctx, e)
	metrics.RecordLogWrite("store", resultLabel(err))
	return err
}

// History returns up to limit stored entries, newest first.
func (s *StoreSink) History(ctx context.Context, limit int) ([]model.LogEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.Recent(ctx, limit)
}
