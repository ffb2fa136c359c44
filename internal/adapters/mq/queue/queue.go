// Package queue buffers behavioral log entries between the scan path and the
// log workers. Enqueue never blocks: a full queue rejects the entry.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/silentsignal/vitals/internal/domain/model"
	"github.com/silentsignal/vitals/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 256
)

// Job is one log entry waiting to be written.
type Job struct {
	Entry      model.LogEntry
	EnqueuedAt time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an entry. It returns ErrQueueFull or ErrQueueClosed
	// without blocking when the entry cannot be accepted.
	Enqueue(ctx context.Context, e model.LogEntry) error

	// Jobs returns the receive side. It is closed by Close once drained.
	Jobs() <-chan Job

	// Len returns the number of buffered jobs.
	Len() int

	// Close stops accepting entries. Buffered jobs stay readable.
	Close() error
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int
	now      func() time.Time

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)

	return q
}

// Enqueue adds an entry to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e model.LogEntry) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}

	select {
	case q.jobs <- Job{Entry: e, EnqueuedAt: q.now()}:
		metrics.RecordQueueEnqueue()
		q.observe()
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrQueueFull
	}
}

// Jobs returns the receive side of the queue.
func (q *InMemoryQueue) Jobs() <-chan Job {
	return q.jobs
}

// Len returns the current number of buffered jobs.
func (q *InMemoryQueue) Len() int {
	q.observe()
	return len(q.jobs)
}

// Cap returns the queue capacity.
func (q *InMemoryQueue) Cap() int {
	return q.capacity
}

// Close stops accepting entries. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) observe() {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
