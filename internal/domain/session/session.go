// Package session drives a single scan attempt end to end: it acquires the
// capture device, reports progress while scanning, and hands one final
// sample to the scorer.
//
// States move Idle -> Requesting -> Scanning -> Completed. A refused or
// unavailable device still proceeds to Scanning on a synthetic source, so a
// started session always ends with a reading unless it is cancelled, in
// which case it ends in Cancelled. The device is released on every path.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/silentsignal/vitals/internal/domain/model"
	"github.com/silentsignal/vitals/internal/domain/sensor"
	"github.com/silentsignal/vitals/pkg/logger"
	"github.com/silentsignal/vitals/pkg/metrics"
)

// Default session configuration constants.
const (
	defaultTick           = 80 * time.Millisecond
	defaultDuration       = 4 * time.Second
	defaultAcquireTimeout = 5 * time.Second
	fullProgress          = 100

	// DefaultNotice is shown when the device is refused under PolicyNotify.
	DefaultNotice = "Camera required. Simulating scan..."
)

// State is a session lifecycle state.
type State int

// Session states.
const (
	StateIdle State = iota
	StateRequesting
	StateScanning
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRequesting:
		return "Requesting"
	case StateScanning:
		return "Scanning"
	case StateCompleted:
		return "Completed"
	case StateCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// MarshalText renders the state name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for st := StateIdle; st <= StateCancelled; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownState, text)
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// Active reports whether the session currently owns, or is acquiring, the device.
func (s State) Active() bool {
	return s == StateRequesting || s == StateScanning
}

// DenialPolicy controls whether a device refusal is surfaced to the user.
type DenialPolicy string

// Denial policies.
const (
	PolicySilent DenialPolicy = "silent"
	PolicyNotify DenialPolicy = "notify"
)

// Scorer turns the final sample into a reading.
type Scorer interface {
	Reading(sample model.Sample, ts time.Time) model.ScoredReading
}

// Recorder receives the completed reading.
type Recorder interface {
	Record(ctx context.Context, r model.ScoredReading)
}

// Status is a point-in-time view of a session.
type Status struct {
	ID        string        `json:"id"`
	State     State         `json:"state"`
	Percent   int           `json:"percent"`
	Live      *model.Sample `json:"live,omitempty"`
	Synthetic bool          `json:"synthetic"`
	Notice    string        `json:"notice,omitempty"`
}

// Session is one scan attempt. It is not reusable: Start succeeds at most once.
type Session struct {
	id       string
	device   sensor.Device
	fallback sensor.Source
	scorer   Scorer
	recorder Recorder

	tick           time.Duration
	duration       time.Duration
	acquireTimeout time.Duration
	policy         DenialPolicy
	noticeText     string
	onProgress     func(Status)
	logger         logger.Logger

	mu        sync.Mutex
	state     State
	percent   int
	live      *model.Sample
	synthetic bool
	notice    string
	stream    sensor.Stream
	startedAt time.Time
	result    model.ScoredReading
	err       error

	cancel   context.CancelFunc
	stopOnce sync.Once
	done     chan struct{}
}

// New creates an idle session.
func New(device sensor.Device, fallback sensor.Source, scorer Scorer, recorder Recorder, opts ...Option) *Session {
	s := &Session{
		id:             uuid.NewString(),
		device:         device,
		fallback:       fallback,
		scorer:         scorer,
		recorder:       recorder,
		tick:           defaultTick,
		duration:       defaultDuration,
		acquireTimeout: defaultAcquireTimeout,
		policy:         PolicyNotify,
		noticeText:     DefaultNotice,
		logger:         logger.Get().Named("session"),
		state:          StateIdle,
		done:           make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.device == nil {
		s.device = sensor.Unavailable{}
	}

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Start begins the scan and returns immediately. The session lives until it
// completes, Cancel is called, or ctx ends; ctx should therefore outlive any
// single request. Start fails with ErrAlreadyStarted unless the session is Idle.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = StateRequesting
	s.mu.Unlock()

	metrics.RecordScanStarted()
	s.logger.Info(ctx, "scan requested", logger.String("session", s.id))
	s.notify()

	go s.run(runCtx)
	return nil
}

// Cancel stops the session and releases the device. It is safe to call any
// number of times and from any state; a finished session is unaffected.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state == StateIdle {
		s.state = StateCancelled
		s.err = ErrCancelled
		close(s.done)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.stop()
}

// Done is closed when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until the session finishes or ctx ends.
func (s *Session) Wait(ctx context.Context) (model.ScoredReading, error) {
	select {
	case <-s.done:
		return s.Result()
	case <-ctx.Done():
		return model.ScoredReading{}, fmt.Errorf("waiting for scan: %w", ctx.Err())
	}
}

// Result returns the outcome of a finished session without blocking.
func (s *Session) Result() (model.ScoredReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Terminal() {
		return model.ScoredReading{}, ErrNotFinished
	}
	return s.result, s.err
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() Status {
	st := Status{
		ID:        s.id,
		State:     s.state,
		Percent:   s.percent,
		Synthetic: s.synthetic,
		Notice:    s.notice,
	}
	if s.live != nil {
		live := *s.live
		st.Live = &live
	}
	return st
}

// stop cancels the run context exactly once.
func (s *Session) stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		cancel := s.cancel
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}
	})
}

func (s *Session) run(ctx context.Context) {
	defer s.stop()

	stream, err := s.acquire(ctx)
	if ctx.Err() != nil {
		if stream != nil {
			_ = stream.Close()
		}
		s.finishCancelled(ctx)
		return
	}

	s.mu.Lock()
	if err != nil {
		s.synthetic = true
		if s.policy == PolicyNotify {
			s.notice = s.noticeText
		}
	} else {
		s.stream = stream
	}
	s.state = StateScanning
	s.startedAt = time.Now()
	s.mu.Unlock()

	if err != nil {
		metrics.RecordScanFallback()
		s.logger.Warn(ctx, "capture unavailable, using synthetic source",
			logger.String("session", s.id),
			logger.Error(err),
		)
	}
	s.notify()

	s.scan(ctx)
}

// acquire requests the device, bounded by acquireTimeout. A device that
// grants access after the timeout is released straight away.
func (s *Session) acquire(ctx context.Context) (sensor.Stream, error) {
	actx, cancel := context.WithTimeout(ctx, s.acquireTimeout)
	defer cancel()

	type acquired struct {
		stream sensor.Stream
		err    error
	}
	ch := make(chan acquired, 1)
	go func() {
		stream, err := s.device.Acquire(actx)
		ch <- acquired{stream: stream, err: err}
	}()

	select {
	case a := <-ch:
		if a.err != nil {
			return nil, fmt.Errorf("acquire capture device: %w", a.err)
		}
		return a.stream, nil
	case <-actx.Done():
		go func() {
			if late := <-ch; late.err == nil && late.stream != nil {
				_ = late.stream.Close()
			}
		}()
		return nil, fmt.Errorf("acquire capture device: %w", actx.Err())
	}
}

func (s *Session) scan(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	timer := time.NewTimer(s.duration)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.finishCancelled(ctx)
			return
		case <-ticker.C:
			if s.advance() >= fullProgress {
				s.complete(ctx)
				return
			}
		case <-timer.C:
			s.complete(ctx)
			return
		}
	}
}

// advance refreshes progress and, when capture-driven, the live sample.
func (s *Session) advance() int {
	s.mu.Lock()
	elapsed := time.Since(s.startedAt)
	s.percent = min(fullProgress, int(elapsed*fullProgress/s.duration))
	if s.stream != nil {
		live := s.stream.Sample()
		s.live = &live
	}
	percent := s.percent
	s.mu.Unlock()

	s.notify()
	return percent
}

func (s *Session) complete(ctx context.Context) {
	s.mu.Lock()
	stream := s.stream
	synthetic := s.synthetic
	started := s.startedAt
	s.mu.Unlock()

	var sample model.Sample
	if stream != nil {
		sample = stream.Sample()
	} else {
		sample = s.fallback.Sample(ctx)
	}
	s.release()

	reading := s.scorer.Reading(sample, time.Now())
	s.recorder.Record(context.WithoutCancel(ctx), reading)

	s.mu.Lock()
	s.state = StateCompleted
	s.percent = fullProgress
	s.result = reading
	close(s.done)
	s.mu.Unlock()

	metrics.RecordScanCompleted(synthetic, float64(time.Since(started).Milliseconds()))
	s.logger.Info(ctx, "scan completed",
		logger.String("session", s.id),
		logger.Bool("synthetic", synthetic),
		logger.Int("anxiety_score", reading.AnxietyScore),
	)
	s.notify()
}

func (s *Session) finishCancelled(ctx context.Context) {
	s.release()

	s.mu.Lock()
	s.state = StateCancelled
	s.err = ErrCancelled
	close(s.done)
	s.mu.Unlock()

	metrics.RecordScanCancelled()
	s.logger.Info(context.WithoutCancel(ctx), "scan cancelled", logger.String("session", s.id))
	s.notify()
}

// release closes the held stream, if any.
func (s *Session) release() {
	s.mu.Lock()
	stream := s.stream
	s.stream = nil
	s.mu.Unlock()

	if stream != nil {
		if err := stream.Close(); err != nil {
			s.logger.Warn(context.Background(), "releasing capture device", logger.Error(err))
		}
	}
}

func (s *Session) notify() {
	if s.onProgress == nil {
		return
	}
	s.onProgress(s.Status())
}
