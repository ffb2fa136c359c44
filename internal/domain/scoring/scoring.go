// Package scoring maps biometric samples to a bounded anxiety score and a
// status category.
//
// The default formula is
//
//	score = clamp(round(hr*0.5 + br*1.5 - 40), 0, 100)
//
// classified as Critical above 70, Elevated above 40 and Optimal otherwise.
// Scoring is pure: no I/O, no clock, no randomness.
package scoring

import (
	"math"
	"time"

	"github.com/silentsignal/vitals/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultHeartWeight  = 0.5
	defaultBreathWeight = 1.5
	defaultOffset       = 40.0

	defaultElevatedAbove = 40
	defaultCriticalAbove = 70

	minScore = 0
	maxScore = 100
)

// Formula holds the linear weights applied to a sample.
type Formula struct {
	HeartWeight  float64
	BreathWeight float64
	Offset       float64
}

// Thresholds are exclusive lower bounds: a score strictly greater than
// ElevatedAbove is Elevated, strictly greater than CriticalAbove is Critical.
type Thresholds struct {
	ElevatedAbove int
	CriticalAbove int
}

// DefaultFormula returns the formula used when no option overrides it.
func DefaultFormula() Formula {
	return Formula{HeartWeight: defaultHeartWeight, BreathWeight: defaultBreathWeight, Offset: defaultOffset}
}

// DefaultThresholds returns the thresholds used when no option overrides them.
func DefaultThresholds() Thresholds {
	return Thresholds{ElevatedAbove: defaultElevatedAbove, CriticalAbove: defaultCriticalAbove}
}

// Scorer computes anxiety scores. A Scorer is immutable after construction and
// safe for concurrent use.
type Scorer struct {
	formula    Formula
	thresholds Thresholds
}

// New creates a scorer with the default formula and thresholds, then applies opts.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		formula:    DefaultFormula(),
		thresholds: DefaultThresholds(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Formula returns the active formula.
func (s *Scorer) Formula() Formula { return s.formula }

// Thresholds returns the active thresholds.
func (s *Scorer) Thresholds() Thresholds { return s.thresholds }

// Score computes the clamped anxiety score and its status for sample.
// Negative intermediate values clamp to zero; they are never an error.
func (s *Scorer) Score(sample model.Sample) (int, model.Status) {
	raw := float64(sample.HeartRate)*s.formula.HeartWeight +
		float64(sample.BreathRate)*s.formula.BreathWeight -
		s.formula.Offset

	score := int(math.Max(minScore, math.Min(maxScore, math.Round(raw))))
	return score, s.Classify(score)
}

// Classify maps a score to a status. It is monotonic: a higher score never
// yields a less severe status.
func (s *Scorer) Classify(score int) model.Status {
	switch {
	case score > s.thresholds.CriticalAbove:
		return model.StatusCritical
	case score > s.thresholds.ElevatedAbove:
		return model.StatusElevated
	default:
		return model.StatusOptimal
	}
}

// Reading scores sample and wraps the result in a new ScoredReading stamped ts.
func (s *Scorer) Reading(sample model.Sample, ts time.Time) model.ScoredReading {
	score, status := s.Score(sample)
	return model.NewReading(sample, score, status, ts)
}
