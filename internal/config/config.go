// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"slices"
	"time"
)

// Capture modes.
const (
	CaptureSimulated   = "simulated"
	CaptureDenied      = "denied"
	CaptureUnavailable = "unavailable"
)

// Reading log sinks and history sources.
const (
	SinkStore = "store"
	SinkHTTP  = "http"
	SinkNATS  = "nats"
	SinkNone  = "none"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config contains process configuration. Keys are flat so every field maps to
// one SILENTSIGNAL_* variable.
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// CaptureMode picks the capture device: simulated, denied or unavailable.
	CaptureMode string `koanf:"capture_mode"`

	// ScanTick and ScanDuration drive progress updates and scan length.
	ScanTick     time.Duration `koanf:"scan_tick"`
	ScanDuration time.Duration `koanf:"scan_duration"`

	// AcquireTimeout bounds the wait for the capture device.
	AcquireTimeout time.Duration `koanf:"acquire_timeout"`

	// DenialPolicy is notify or silent.
	DenialPolicy string `koanf:"denial_policy"`

	// HistoryCapacity is the number of readings kept for the trend view.
	HistoryCapacity int `koanf:"history_capacity"`

	// AgentURL points at a remote agent. Empty uses the local responder.
	AgentURL     string        `koanf:"agent_url"`
	AgentTimeout time.Duration `koanf:"agent_timeout"`

	// OllamaURL enables generative replies from the local responder.
	OllamaURL   string `koanf:"ollama_url"`
	OllamaModel string `koanf:"ollama_model"`

	// LogSink is where completed readings go: store, http, nats or none.
	LogSink string `koanf:"log_sink"`

	// HistorySource seeds the trend view at start: store, http or none.
	HistorySource string `koanf:"history_source"`

	// LogURL is the reading log service used by the http sink and source.
	LogURL string `koanf:"log_url"`

	// QueueSize bounds the reading log queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of reading log workers.
	WorkerCount int `koanf:"worker_count"`

	// StoreBackend is sqlite, redis or memory.
	StoreBackend    string `koanf:"store_backend"`
	SQLitePath      string `koanf:"sqlite_path"`
	RedisAddr       string `koanf:"redis_addr"`
	StoreMaxEntries int    `koanf:"store_max_entries"`

	// NATSURL is used by the nats sink.
	NATSURL string `koanf:"nats_url"`

	// CORSOrigins lists browser origins allowed to call the API.
	CORSOrigins []string `koanf:"cors_origins"`

	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefresh is how often polled gauges are refreshed by serve.
	MetricsRefresh time.Duration `koanf:"metrics_refresh"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		Addr:            ":9080",
		LogLevel:        "info",
		LogFormat:       "text",
		CaptureMode:     CaptureSimulated,
		ScanTick:        80 * time.Millisecond,
		ScanDuration:    4 * time.Second,
		AcquireTimeout:  5 * time.Second,
		DenialPolicy:    "notify",
		HistoryCapacity: 7,
		AgentTimeout:    15 * time.Second,
		OllamaModel:     "llama3",
		LogSink:         SinkStore,
		HistorySource:   SinkStore,
		QueueSize:       256,
		WorkerCount:     2,
		StoreBackend:    StoreSQLite,
		SQLitePath:      "silentsignal.db",
		RedisAddr:       "localhost:6379",
		StoreMaxEntries: 10_000,
		NATSURL:         "nats://localhost:4222",
		MetricsEnabled:  true,
		MetricsRefresh:  10 * time.Second,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !slices.Contains([]string{"text", "json"}, c.LogFormat):
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	case !slices.Contains([]string{CaptureSimulated, CaptureDenied, CaptureUnavailable}, c.CaptureMode):
		return fmt.Errorf("%w: capture_mode %q", ErrInvalidConfig, c.CaptureMode)
	case c.ScanTick <= 0 || c.ScanDuration <= 0 || c.AcquireTimeout <= 0:
		return fmt.Errorf("%w: scan timings must be positive", ErrInvalidConfig)
	case c.ScanTick > c.ScanDuration:
		return fmt.Errorf("%w: scan_tick exceeds scan_duration", ErrInvalidConfig)
	case c.DenialPolicy != "notify" && c.DenialPolicy != "silent":
		return fmt.Errorf("%w: denial_policy %q", ErrInvalidConfig, c.DenialPolicy)
	case c.HistoryCapacity <= 0:
		return fmt.Errorf("%w: history_capacity must be positive", ErrInvalidConfig)
	case c.AgentTimeout <= 0:
		return fmt.Errorf("%w: agent_timeout must be positive", ErrInvalidConfig)
	case !slices.Contains([]string{SinkStore, SinkHTTP, SinkNATS, SinkNone}, c.LogSink):
		return fmt.Errorf("%w: log_sink %q", ErrInvalidConfig, c.LogSink)
	case !slices.Contains([]string{SinkStore, SinkHTTP, SinkNone}, c.HistorySource):
		return fmt.Errorf("%w: history_source %q", ErrInvalidConfig, c.HistorySource)
	case (c.LogSink == SinkHTTP || c.HistorySource == SinkHTTP) && c.LogURL == "":
		return fmt.Errorf("%w: log_url is required for the http sink or source", ErrInvalidConfig)
	case c.QueueSize <= 0 || c.WorkerCount <= 0:
		return fmt.Errorf("%w: queue_size and worker_count must be positive", ErrInvalidConfig)
	case !slices.Contains([]string{StoreSQLite, StoreRedis, StoreMemory}, c.StoreBackend):
		return fmt.Errorf("%w: store_backend %q", ErrInvalidConfig, c.StoreBackend)
	case c.StoreBackend == StoreSQLite && c.SQLitePath == "":
		return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
	case c.StoreBackend == StoreRedis && c.RedisAddr == "":
		return fmt.Errorf("%w: redis_addr must not be empty", ErrInvalidConfig)
	case c.LogSink == SinkNATS && c.NATSURL == "":
		return fmt.Errorf("%w: nats_url must not be empty", ErrInvalidConfig)
	case c.MetricsRefresh <= 0:
		return fmt.Errorf("%w: metrics_refresh must be positive", ErrInvalidConfig)
	}
	return nil
}
