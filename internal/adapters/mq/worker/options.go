package worker

import (
	"sync/atomic"
	"time"

	"github.com/silentsignal/vitals/pkg/logger"
)

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithWriteTimeout bounds each sink write.
func WithWriteTimeout(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.writeTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// withActiveCounter shares the busy-worker gauge across a pool.
func withActiveCounter(c *atomic.Int64) Option {
	return func(w *Worker) {
		w.active = c
	}
}
