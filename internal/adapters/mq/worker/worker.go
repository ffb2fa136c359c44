// Package worker drains the log queue into a sink. Write failures are logged
// and counted; they never reach the scan path.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/silentsignal/vitals/internal/adapters/mq/queue"
	"github.com/silentsignal/vitals/internal/domain/model"
	"github.com/silentsignal/vitals/pkg/logger"
	"github.com/silentsignal/vitals/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 2
	defaultWriteTimeout = 5 * time.Second
	poolShutdownTimeout = 10 * time.Second
)

// Sink receives log entries.
type Sink interface {
	Append(ctx context.Context, e model.LogEntry) error
}

// Source is the receive side of the queue.
type Source interface {
	Jobs() <-chan queue.Job
}

// Worker writes jobs from a Source into a Sink until the source closes or
// it is told to stop.
type Worker struct {
	source       Source
	sink         Sink
	name         string
	writeTimeout time.Duration
	active       *atomic.Int64
	processed    atomic.Int64
	failed       atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(source Source, sink Sink, opts ...Option) *Worker {
	w := &Worker{
		source:       source,
		sink:         sink,
		name:         "worker",
		writeTimeout: defaultWriteTimeout,
		active:       &atomic.Int64{},
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
		logger:       logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run processes jobs until ctx ends, Stop is called, or the source closes.
// A closed source is drained before Run returns.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.source.Jobs()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Stop signals the worker to return without draining.
func (w *Worker) Stop() {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
}

// Done is closed when Run returns.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Processed returns the number of successful writes.
func (w *Worker) Processed() int64 { return w.processed.Load() }

// Failed returns the number of failed writes.
func (w *Worker) Failed() int64 { return w.failed.Load() }

func (w *Worker) process(ctx context.Context, job queue.Job) {
	metrics.RecordQueueDequeue()
	metrics.RecordQueueProcessingLatency(float64(time.Since(job.EnqueuedAt).Milliseconds()))
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	defer func() { metrics.UpdateWorkerActiveCount(int(w.active.Add(-1))) }()

	wctx, cancel := context.WithTimeout(ctx, w.writeTimeout)
	defer cancel()

	start := time.Now()
	err := w.sink.Append(wctx, job.Entry)
	metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		w.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "sink_error")
		w.logger.Warn(ctx, "behavioral log write failed",
			logger.Int("anxiety_score", job.Entry.AnxietyScore),
			logger.String("status", string(job.Entry.Status)),
			logger.Error(err),
		)
		return
	}
	w.processed.Add(1)
}

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*Worker
	queue   queue.Queue
	wg      sync.WaitGroup
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one uses the
// default.
func NewPool(workerCount int, q queue.Queue, sink Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}

	active := &atomic.Int64{}
	for i := range workerCount {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i)), withActiveCounter(active)}, opts...)
		p.workers[i] = NewWorker(q, sink, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.Run(ctx)
		}()
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns successful writes across all workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Failed returns failed writes across all workers.
func (p *Pool) Failed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Failed()
	}
	return n
}

// Shutdown closes the queue and waits for the workers to drain it. If ctx
// ends first the workers are stopped and the remaining jobs are dropped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	drained := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(drained)
	}()

	sctx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	select {
	case <-drained:
		return nil
	case <-sctx.Done():
		for _, w := range p.workers {
			w.Stop()
		}
		p.logger.Warn(ctx, "worker pool shutdown timed out", logger.Int("pending", p.queue.Len()))
		return fmt.Errorf("worker pool shutdown: %w", sctx.Err())
	}
}
