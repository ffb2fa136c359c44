package service

import (
	"time"

	"github.com/silentsignal/vitals/internal/adapters/agent"
	"github.com/silentsignal/vitals/internal/adapters/readinglog"
	"github.com/silentsignal/vitals/internal/domain/scoring"
	"github.com/silentsignal/vitals/internal/domain/sensor"
	"github.com/silentsignal/vitals/internal/domain/session"
	"github.com/silentsignal/vitals/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDevice sets the capture device used by scans.
func WithDevice(d sensor.Device) Option {
	return func(s *Service) {
		if d != nil {
			s.device = d
		}
	}
}

// WithFallback sets the synthetic source used when the device is unavailable.
func WithFallback(src sensor.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.fallback = src
		}
	}
}

// WithScorer replaces the default anxiety scorer.
func WithScorer(sc *scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithScanOptions passes options to every scan session.
func WithScanOptions(opts ...session.Option) Option {
	return func(s *Service) {
		s.scanOpts = append(s.scanOpts, opts...)
	}
}

// WithHistoryCapacity sets how many readings the history buffer keeps.
func WithHistoryCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyCapacity = n
		}
	}
}

// WithAgentClient sets the client the agent bridge talks through.
func WithAgentClient(c agent.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.agentClient = c
		}
	}
}

// WithAgentTimeout bounds each agent request.
func WithAgentTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.agentOpts = append(s.agentOpts, agent.WithTimeout(d))
		}
	}
}

// WithAudioPlayer sets the player used for agent audio replies.
func WithAudioPlayer(p agent.Player) Option {
	return func(s *Service) {
		if p != nil {
			s.agentOpts = append(s.agentOpts, agent.WithPlayer(p))
		}
	}
}

// WithIntentListener registers a callback for agent navigation intents.
func WithIntentListener(fn func(agent.Intent)) Option {
	return func(s *Service) {
		s.onIntent = fn
	}
}

// WithSink sets where completed readings are logged.
func WithSink(sink readinglog.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithHistorySource sets where the history buffer is seeded from at start.
func WithHistorySource(src readinglog.HistorySource) Option {
	return func(s *Service) {
		if src != nil {
			s.historySource = src
		}
	}
}

// WithQueueSize sets the capacity of the reading log queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of reading log workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
