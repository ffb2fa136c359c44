package vitals

import (
	"context"

	"github.com/silentsignal/vitals/internal/domain/history"
	"github.com/silentsignal/vitals/internal/domain/model"
	"github.com/silentsignal/vitals/pkg/logger"
	"github.com/silentsignal/vitals/pkg/metrics"
)

// Forwarder receives every recorded reading after it is committed, e.g. to
// ship it to the reading log. Forward must not block for long.
type Forwarder interface {
	Forward(ctx context.Context, r model.ScoredReading)
}

// ForwarderFunc adapts a function to Forwarder.
type ForwarderFunc func(ctx context.Context, r model.ScoredReading)

// Forward calls f.
func (f ForwarderFunc) Forward(ctx context.Context, r model.ScoredReading) { f(ctx, r) }

// Recorder is the single writer of State and History.
type Recorder struct {
	state   *State
	history *history.Buffer
	forward Forwarder
	logger  logger.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithForwarder sets the downstream forwarder.
func WithForwarder(f Forwarder) RecorderOption {
	return func(r *Recorder) {
		if f != nil {
			r.forward = f
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) RecorderOption {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRecorder builds the writer for state and buf.
func NewRecorder(state *State, buf *history.Buffer, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		state:   state,
		history: buf,
		forward: ForwarderFunc(func(context.Context, model.ScoredReading) {}),
		logger:  logger.Get().Named("vitals"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record commits reading as the current vitals, appends it to the history and
// forwards it downstream.
func (r *Recorder) Record(ctx context.Context, reading model.ScoredReading) {
	r.state.commit(reading)
	r.history.Append(reading)

	metrics.RecordAnxietyScore(float64(reading.AnxietyScore))
	metrics.RecordReadingStatus(string(reading.Status))
	metrics.UpdateHistorySize(r.history.Len())

	r.logger.Info(ctx, "reading recorded",
		logger.String("id", reading.ID),
		logger.Int("heart_rate", reading.Sample.HeartRate),
		logger.Int("breath_rate", reading.Sample.BreathRate),
		logger.Int("anxiety_score", reading.AnxietyScore),
		logger.String("status", string(reading.Status)),
	)

	r.forward.Forward(ctx, reading)
}
