package readinglog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/silentsignal/vitals/internal/domain/model"
	"github.com/silentsignal/vitals/pkg/logger"
	"github.com/silentsignal/vitals/pkg/metrics"
)

// NATS names for the reading log.
const (
	StreamReadings       = "SILENTSIGNAL_READINGS"
	SubjectReadingLogged = "silentsignal.readings.logged"
)

// Publisher is the part of jetstream.JetStream the sink needs.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// JetStreamSink publishes each entry as JSON on SubjectReadingLogged.
type JetStreamSink struct {
	js      Publisher
	subject string
}

// NewJetStreamSink creates a sink over js. An empty subject uses
// SubjectReadingLogged.
func NewJetStreamSink(js Publisher, subject string) *JetStreamSink {
	if subject == "" {
		subject = SubjectReadingLogged
	}
	return &JetStreamSink{js: js, subject: subject}
}

// Append publishes e and waits for the stream ack.
func (s *JetStreamSink) Append(ctx context.Context, e model.LogEntry) error {
	err := s.publish(ctx, e)
	metrics.RecordLogWrite("nats", resultLabel(err))
	return err
}

func (s *JetStreamSink) publish(ctx context.Context, e model.LogEntry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling entry for %s: %w", s.subject, err)
	}
	if _, err := s.js.Publish(ctx, s.subject, payload); err != nil {
		return fmt.Errorf("publishing to %s: %w", s.subject, err)
	}
	return nil
}

// Conn holds a NATS connection with JetStream enabled.
type Conn struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// Connect dials url and ensures the readings stream exists.
func Connect(ctx context.Context, url string) (*Conn, error) {
	log := logger.Get().Named("nats")

	nc, err := nats.Connect(url,
		nats.Name("silentsignal"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn(context.Background(), "NATS disconnected", logger.Error(err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info(context.Background(), "NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamReadings,
		Subjects:  []string{"silentsignal.readings.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    30 * 24 * time.Hour,
	}); err != nil {
		nc.Close()
		return nil, fmt.Errorf("creating stream %s: %w", StreamReadings, err)
	}

	log.Info(ctx, "connected to NATS", logger.String("url", url))
	return &Conn{nc: nc, js: js}, nil
}

// JetStream returns the JetStream context.
func (c *Conn) JetStream() jetstream.JetStream { return c.js }

// Healthy reports whether the connection is up.
func (c *Conn) Healthy() bool {
	return c != nil && c.nc != nil && c.nc.IsConnected()
}

// Close drains and closes the connection.
func (c *Conn) Close() error {
	if c == nil || c.nc == nil {
		return ErrNoConnection
	}
	return c.nc.Drain()
}
