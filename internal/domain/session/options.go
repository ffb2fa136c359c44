package session

import (
	"time"

	"github.com/silentsignal/vitals/pkg/logger"
)

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithTickInterval sets how often progress and live samples update.
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithDuration sets the wall-clock length of the scanning phase.
func WithDuration(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.duration = d
		}
	}
}

// WithAcquireTimeout bounds how long the session waits for the device.
// Hitting it counts as a denial and triggers the synthetic fallback.
func WithAcquireTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.acquireTimeout = d
		}
	}
}

// WithDenialPolicy selects whether a fallback is reported to the user.
func WithDenialPolicy(p DenialPolicy) Option {
	return func(s *Session) {
		if p == PolicySilent || p == PolicyNotify {
			s.policy = p
		}
	}
}

// WithNoticeText overrides the notice shown under PolicyNotify.
func WithNoticeText(text string) Option {
	return func(s *Session) {
		if text != "" {
			s.noticeText = text
		}
	}
}

// WithProgress registers a callback invoked after every tick and on every
// state change. It runs on the session goroutine and must not block.
func WithProgress(fn func(Status)) Option {
	return func(s *Session) {
		s.onProgress = fn
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}
