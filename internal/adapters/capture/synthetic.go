package capture

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/silentsignal/vitals/internal/domain/model"
)

// SyntheticOption applies a configuration option to the Synthetic source.
type SyntheticOption func(*Synthetic)

// WithFixed makes the source always return the given sample.
func WithFixed(heartRate, breathRate int) SyntheticOption {
	return func(s *Synthetic) {
		if heartRate >= 0 && breathRate >= 0 {
			fixed := model.Sample{HeartRate: heartRate, BreathRate: breathRate}
			s.fixed = &fixed
		}
	}
}

// WithSyntheticSeed seeds the random draw. Without it the seed comes from the clock.
func WithSyntheticSeed(seed int64) SyntheticOption {
	return func(s *Synthetic) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // synthetic readings
	}
}

// Synthetic is the fallback reading source used when no device is available.
// Samples are drawn uniformly from the plausible bands.
type Synthetic struct {
	mu    sync.Mutex
	fixed *model.Sample
	rng   *rand.Rand
}

// NewSynthetic creates a synthetic source with configuration options.
func NewSynthetic(opts ...SyntheticOption) *Synthetic {
	s := &Synthetic{
		rng: rand.New(rand.NewSource(clockSeed())), //nolint:gosec // synthetic readings
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample returns the fixed sample if configured, otherwise a bounded draw.
func (s *Synthetic) Sample(_ context.Context) model.Sample {
	if s.fixed != nil {
		return *s.fixed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Sample{
		HeartRate:  MinHeartRate + s.rng.Intn(MaxHeartRate-MinHeartRate+1),
		BreathRate: MinBreathRate + s.rng.Intn(MaxBreathRate-MinBreathRate+1),
	}
}

var seedCounter atomic.Int64 //nolint:gochecknoglobals // keeps same-instant seeds distinct

// clockSeed returns a per-call seed so separate runs draw different values.
func clockSeed() int64 {
	return time.Now().UnixNano() + seedCounter.Add(1)
}
