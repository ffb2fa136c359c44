package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/silentsignal/vitals/internal/adapters/agent"
	"github.com/silentsignal/vitals/internal/adapters/capture"
	"github.com/silentsignal/vitals/internal/adapters/readinglog"
	"github.com/silentsignal/vitals/internal/adapters/repository"
	app "github.com/silentsignal/vitals/internal/app"
	"github.com/silentsignal/vitals/internal/config"
	"github.com/silentsignal/vitals/internal/domain/sensor"
	"github.com/silentsignal/vitals/internal/domain/session"
	"github.com/silentsignal/vitals/pkg/logger"
)

const logClientTimeout = 10 * time.Second

// engine is a fully wired service plus what must be closed after it stops.
type engine struct {
	svc       *app.Service
	store     repository.Store
	responder *agent.Responder
	closers   []func() error
}

// Close releases backends in reverse order of creation.
func (rt *engine) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// build wires the service described by cfg. The caller must Close the result.
func build(ctx context.Context, cfg *config.Config, log logger.Logger) (*engine, error) {
	rt := &engine{}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rt.store = store
	rt.closers = append(rt.closers, store.Close)

	sink, err := rt.sink(ctx, cfg, log)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	rt.responder = newResponder(cfg)

	rt.svc = app.New(
		app.WithLogger(log.Named("service")),
		app.WithDevice(newDevice(cfg)),
		app.WithScanOptions(scanOptions(cfg)...),
		app.WithHistoryCapacity(cfg.HistoryCapacity),
		app.WithAgentClient(rt.agentClient(cfg)),
		app.WithAgentTimeout(cfg.AgentTimeout),
		app.WithSink(sink),
		app.WithHistorySource(historySource(cfg, store)),
		app.WithQueueSize(cfg.QueueSize),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithIntentListener(func(i agent.Intent) {
			log.Info(context.Background(), "navigation requested", logger.String("intent", string(i)))
		}),
	)
	return rt, nil
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	opts := []repository.Option{repository.WithMaxEntries(cfg.StoreMaxEntries)}
	switch cfg.StoreBackend {
	case config.StoreRedis:
		return repository.OpenRedis(ctx, cfg.RedisAddr, opts...)
	case config.StoreMemory:
		return repository.NewMemoryStore(opts...), nil
	default:
		return repository.OpenSQLite(ctx, cfg.SQLitePath, opts...)
	}
}

func (rt *engine) sink(ctx context.Context, cfg *config.Config, log logger.Logger) (readinglog.Sink, error) {
	switch cfg.LogSink {
	case config.SinkHTTP:
		return readinglog.NewHTTPClient(cfg.LogURL, &http.Client{Timeout: logClientTimeout}), nil
	case config.SinkNATS:
		conn, err := readinglog.Connect(ctx, cfg.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("connect reading log bus: %w", err)
		}
		rt.closers = append(rt.closers, conn.Close)
		log.Info(ctx, "publishing readings", logger.String("subject", readinglog.SubjectReadingLogged))
		return readinglog.NewJetStreamSink(conn.JetStream(), ""), nil
	case config.SinkNone:
		return readinglog.NopSink{}, nil
	default:
		return readinglog.NewStoreSink(rt.store), nil
	}
}

func historySource(cfg *config.Config, store repository.Store) readinglog.HistorySource {
	switch cfg.HistorySource {
	case config.SinkHTTP:
		return readinglog.NewHTTPClient(cfg.LogURL, &http.Client{Timeout: logClientTimeout})
	case config.SinkNone:
		return readinglog.EmptyHistory{}
	default:
		return readinglog.NewStoreSink(store)
	}
}

// newResponder builds the local keyword responder, backed by Ollama when
// configured. It also answers the /api/agent/chat endpoint.
func newResponder(cfg *config.Config) *agent.Responder {
	if cfg.OllamaURL == "" {
		return agent.NewResponder()
	}
	gen := agent.NewOllamaGenerator(cfg.OllamaURL, cfg.OllamaModel, &http.Client{Timeout: cfg.AgentTimeout})
	return agent.NewResponder(agent.WithGenerator(gen))
}

func (rt *engine) agentClient(cfg *config.Config) agent.Client {
	if cfg.AgentURL == "" {
		return rt.responder
	}
	return agent.NewHTTPClient(cfg.AgentURL, &http.Client{Timeout: cfg.AgentTimeout})
}

func newDevice(cfg *config.Config) sensor.Device {
	switch cfg.CaptureMode {
	case config.CaptureDenied:
		return capture.NewSimulatedDevice(capture.WithDenied(true))
	case config.CaptureUnavailable:
		return capture.UnavailableDevice{}
	default:
		return capture.NewSimulatedDevice()
	}
}

func scanOptions(cfg *config.Config) []session.Option {
	return []session.Option{
		session.WithTickInterval(cfg.ScanTick),
		session.WithDuration(cfg.ScanDuration),
		session.WithAcquireTimeout(cfg.AcquireTimeout),
		session.WithDenialPolicy(session.DenialPolicy(cfg.DenialPolicy)),
	}
}
