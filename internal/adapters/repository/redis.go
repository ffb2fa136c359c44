package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/silentsignal/vitals/internal/domain/model"
	"github.com/silentsignal/vitals/pkg/metrics"
)

// RedisStore keeps the log in a Redis list, oldest at the head. The list is
// trimmed to the configured maximum on every append.
type RedisStore struct {
	client *redis.Client
	opts   options
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, opts ...Option) *RedisStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisStore{client: client, opts: o}
}

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(ctx context.Context, addr string, opts ...Option) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedisStore(client, opts...), nil
}

func (s *RedisStore) seqKey() string { return s.opts.key + ":seq" }

// Append pushes e onto the list.
func (s *RedisStore) Append(ctx context.Context, e model.LogEntry) (model.LogEntry, error) {
	e, err := s.opts.prepare(e)
	if err != nil {
		return model.LogEntry{}, err
	}

	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	id, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return model.LogEntry{}, fmt.Errorf("incr %s: %w", s.seqKey(), err)
	}
	e.ID = id

	data, err := json.Marshal(e)
	if err != nil {
		return model.LogEntry{}, fmt.Errorf("marshaling entry: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, s.opts.key, string(data))
	pipe.LTrim(ctx, s.opts.key, int64(-s.opts.maxEntries), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return model.LogEntry{}, fmt.Errorf("pipeline exec for %s: %w", s.opts.key, err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *RedisStore) Recent(ctx context.Context, limit int) ([]model.LogEntry, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	// LRANGE key -limit -1 returns the last `limit` elements, oldest first.
	vals, err := s.client.LRange(ctx, s.opts.key, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", s.opts.key, err)
	}

	out := make([]model.LogEntry, 0, len(vals))
	for i := len(vals) - 1; i >= 0; i-- {
		var e model.LogEntry
		if err := json.Unmarshal([]byte(vals[i]), &e); err != nil {
			continue // skip malformed entries
		}
		out = append(out, e)
	}
	return out, nil
}

// Count returns the list length.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, s.opts.key).Result()
	if err != nil {
		return 0, fmt.Errorf("llen %s: %w", s.opts.key, err)
	}
	metrics.UpdateRepositoryRecordsTotal(int(n))
	return int(n), nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
