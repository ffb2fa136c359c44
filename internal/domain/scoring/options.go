package scoring

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithFormula replaces the scoring weights. Formulas with negative weights are
// ignored.
func WithFormula(f Formula) Option {
	return func(s *Scorer) {
		if f.HeartWeight >= 0 && f.BreathWeight >= 0 {
			s.formula = f
		}
	}
}

// WithThresholds replaces the status thresholds. The critical bound must sit
// above the elevated bound, otherwise the option is ignored.
func WithThresholds(t Thresholds) Option {
	return func(s *Scorer) {
		if t.ElevatedAbove >= minScore && t.CriticalAbove > t.ElevatedAbove {
			s.thresholds = t
		}
	}
}
