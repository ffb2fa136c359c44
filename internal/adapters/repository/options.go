package repository

import (
	"fmt"
	"time"

	"github.com/silentsignal/vitals/internal/domain/model"
)

// Default store configuration constants.
const (
	defaultMaxEntries = 10_000
	defaultRedisKey   = "silentsignal:behavioral_logs"
)

type options struct {
	now        func() time.Time
	maxEntries int
	key        string
}

func defaultOptions() options {
	return options{
		now:        time.Now,
		maxEntries: defaultMaxEntries,
		key:        defaultRedisKey,
	}
}

// Option applies a configuration option to a Store.
type Option func(*options)

// WithClock overrides the timestamp source for entries appended without one.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithMaxEntries caps how many entries the memory and Redis stores keep.
// The oldest entries are trimmed first. SQLite keeps everything.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}

// WithKey sets the Redis list key.
func WithKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.key = key
		}
	}
}

// prepare validates e and stamps a missing timestamp.
func (o options) prepare(e model.LogEntry) (model.LogEntry, error) {
	if e.HeartRate < 0 || e.BreathRate < 0 {
		return e, fmt.Errorf("%w: negative rate", ErrInvalidEntry)
	}
	if e.AnxietyScore < 0 || e.AnxietyScore > 100 {
		return e, fmt.Errorf("%w: anxiety score %d out of range", ErrInvalidEntry, e.AnxietyScore)
	}
	if !e.Status.Valid() {
		return e, fmt.Errorf("%w: unknown status %q", ErrInvalidEntry, e.Status)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = o.now()
	}
	e.Timestamp = e.Timestamp.UTC()
	return e, nil
}

func checkLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return nil
}
