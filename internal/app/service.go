// Package service wires the scan engine, the agent bridge and the reading
// log pipeline into the operations exposed by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/silentsignal/vitals/internal/adapters/agent"
	"github.com/silentsignal/vitals/internal/adapters/capture"
	eventqueue "github.com/silentsignal/vitals/internal/adapters/mq/queue"
	workerpool "github.com/silentsignal/vitals/internal/adapters/mq/worker"
	"github.com/silentsignal/vitals/internal/adapters/readinglog"
	"github.com/silentsignal/vitals/internal/domain/history"
	"github.com/silentsignal/vitals/internal/domain/model"
	"github.com/silentsignal/vitals/internal/domain/scoring"
	"github.com/silentsignal/vitals/internal/domain/sensor"
	"github.com/silentsignal/vitals/internal/domain/session"
	"github.com/silentsignal/vitals/internal/domain/sos"
	"github.com/silentsignal/vitals/internal/domain/vitals"
	"github.com/silentsignal/vitals/pkg/logger"
	"github.com/silentsignal/vitals/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize   = 256
	defaultWorkerCount = 2
)

// Service owns the single vitals state and everything that reads or writes it.
type Service struct {
	mu sync.RWMutex

	// Core components
	state    *vitals.State
	history  *history.Buffer
	recorder *vitals.Recorder
	scorer   *scoring.Scorer
	bridge   *agent.Bridge
	queue    eventqueue.Queue
	pool     *workerpool.Pool

	// Collaborators
	device        sensor.Device
	fallback      sensor.Source
	agentClient   agent.Client
	sink          readinglog.Sink
	historySource readinglog.HistorySource

	// Configuration
	historyCapacity int
	queueSize       int
	workerCount     int
	scanOpts        []session.Option
	agentOpts       []agent.Option
	onIntent        func(agent.Intent)

	// State
	started bool
	scan    *session.Session
	runCtx  context.Context
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Vitals, history and chat work immediately; scans
// and the reading log need Start.
func New(opts ...Option) *Service {
	s := &Service{
		device:          capture.NewSimulatedDevice(),
		fallback:        capture.NewSynthetic(),
		scorer:          scoring.New(),
		agentClient:     agent.NewResponder(),
		sink:            readinglog.NopSink{},
		historySource:   readinglog.EmptyHistory{},
		historyCapacity: history.DefaultCapacity,
		queueSize:       defaultQueueSize,
		workerCount:     defaultWorkerCount,
		logger:          logger.Get().Named("service"),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.state = vitals.NewState()
	s.history = history.New(s.historyCapacity)
	s.recorder = vitals.NewRecorder(s.state, s.history,
		vitals.WithForwarder(vitals.ForwarderFunc(s.forward)),
	)
	s.bridge = agent.NewBridge(s.agentClient,
		append(s.agentOpts, agent.WithIntentListener(s.intent))...,
	)

	return s
}

// Start seeds the history buffer and starts the reading log workers. A
// failing history source leaves the buffer empty.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting vitals service...")

	s.seedHistory(ctx)

	s.runCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.sink)
	s.pool.Start(s.runCtx)

	s.started = true
	s.logger.Info(ctx, "vitals service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("history", s.history.Len()),
	)

	return nil
}

func (s *Service) seedHistory(ctx context.Context) {
	entries, err := s.historySource.History(ctx, s.history.Cap())
	if err != nil {
		metrics.RecordErrorByComponent("service", "history_seed")
		s.logger.Warn(ctx, "history unavailable, starting empty", logger.Error(err))
		return
	}
	s.history.Seed(readinglog.Readings(entries))
	metrics.UpdateHistorySize(s.history.Len())
}

// Stop cancels any active scan, drains the reading log and shuts down.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	sess, pool, cancel := s.scan, s.pool, s.cancel
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping vitals service...")

	// The lock is not held here: a completing scan forwards its reading.
	if sess != nil && !sess.Status().State.Terminal() {
		sess.Cancel()
		select {
		case <-sess.Done():
		case <-ctx.Done():
		}
	}

	err := pool.Shutdown(ctx)
	cancel()

	s.logger.Info(ctx, "vitals service stopped")
	return err
}

// StartScan begins a scan and returns its first status. Only one scan may be
// active at a time.
func (s *Service) StartScan(ctx context.Context) (session.Status, error) {
	sess, err := s.startScan(ctx)
	if err != nil {
		if errors.Is(err, ErrScanInProgress) {
			return sess.Status(), err
		}
		return session.Status{}, err
	}
	return sess.Status(), nil
}

// Scan runs a scan to completion. If ctx ends first the scan is cancelled.
func (s *Service) Scan(ctx context.Context) (model.ScoredReading, error) {
	sess, err := s.startScan(ctx)
	if err != nil {
		return model.ScoredReading{}, err
	}

	r, err := sess.Wait(ctx)
	if err != nil && ctx.Err() != nil {
		sess.Cancel()
	}
	return r, err
}

// startScan returns the new session, or the active one with ErrScanInProgress.
func (s *Service) startScan(ctx context.Context) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	if s.scan != nil && !s.scan.Status().State.Terminal() {
		return s.scan, ErrScanInProgress
	}

	sess := session.New(s.device, s.fallback, s.scorer, s.recorder, s.scanOpts...)
	if err := sess.Start(s.runCtx); err != nil {
		return nil, fmt.Errorf("starting scan: %w", err)
	}
	s.scan = sess

	s.logger.Debug(ctx, "scan started", logger.String("session", sess.ID()))
	return sess, nil
}

// CancelScan cancels the active scan and waits for it to release the device.
func (s *Service) CancelScan(ctx context.Context) (session.Status, error) {
	s.mu.RLock()
	sess := s.scan
	s.mu.RUnlock()

	if sess == nil || sess.Status().State.Terminal() {
		return session.Status{}, ErrNoActiveScan
	}

	sess.Cancel()
	select {
	case <-sess.Done():
	case <-ctx.Done():
		return sess.Status(), fmt.Errorf("cancelling scan: %w", ctx.Err())
	}
	return sess.Status(), nil
}

// ScanStatus returns the status of the latest scan. ok is false if no scan
// has been started.
func (s *Service) ScanStatus() (status session.Status, ok bool) {
	s.mu.RLock()
	sess := s.scan
	s.mu.RUnlock()

	if sess == nil {
		return session.Status{}, false
	}
	return sess.Status(), true
}

// Vitals returns the current reading, or the pending sentinel.
func (s *Service) Vitals() model.ScoredReading {
	return s.state.Current()
}

// History returns the buffered readings, oldest first.
func (s *Service) History() []model.ScoredReading {
	return s.history.Readings()
}

// SOS encodes the current reading for out-of-band transmission.
func (s *Service) SOS() string {
	return sos.Encode(s.state.Current())
}

// Chat sends text to the agent along with the current vitals. Any audio in
// the reply is played before returning.
func (s *Service) Chat(ctx context.Context, text string) (agent.Outcome, error) {
	out, err := s.bridge.Send(ctx, text, s.state.Current())
	if err != nil {
		return agent.Outcome{}, err
	}
	s.bridge.Play(ctx, out)
	return out, nil
}

// Conversation returns a copy of the chat log.
func (s *Service) Conversation() []agent.Message {
	return s.bridge.Conversation().Messages()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.state.Current()
	stats := map[string]any{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"historyLength":   s.history.Len(),
		"historyCapacity": s.history.Cap(),
		"status":          string(current.Status),
		"anxietyScore":    current.AnxietyScore,
		"conversation":    s.bridge.Conversation().Len(),
		"stateVersion":    s.state.Version(),
	}

	if s.scan != nil {
		stats["scan"] = s.scan.Status()
	}

	if s.started {
		queueLen := s.queue.Len()
		stats["queueLength"] = queueLen
		stats["logsWritten"] = s.pool.Processed()
		stats["logsFailed"] = s.pool.Failed()
		metrics.UpdateQueueSize(queueLen)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	goroutines := runtime.NumGoroutine()
	stats["goroutines"] = goroutines
	stats["heapBytes"] = mem.HeapAlloc
	metrics.UpdateSystemGoroutineCount(goroutines)
	metrics.UpdateSystemMemoryUsage(mem.HeapAlloc)

	return stats
}

// forward queues a recorded reading for the log workers. A full or closed
// queue drops the entry.
func (s *Service) forward(ctx context.Context, r model.ScoredReading) {
	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()

	if q == nil {
		return
	}
	if err := q.Enqueue(ctx, model.EntryFromReading(r)); err != nil {
		s.logger.Warn(ctx, "dropping behavioral log entry",
			logger.String("id", r.ID),
			logger.Error(err),
		)
	}
}

func (s *Service) intent(i agent.Intent) {
	s.logger.Info(context.Background(), "agent intent", logger.String("intent", string(i)))
	if s.onIntent != nil {
		s.onIntent(i)
	}
}
