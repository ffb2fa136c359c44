package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/silentsignal/vitals/internal/domain/model"
	"github.com/silentsignal/vitals/pkg/metrics"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS behavioral_logs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp      INTEGER NOT NULL,
	hr             INTEGER NOT NULL,
	br             INTEGER NOT NULL,
	anxiety_score  INTEGER NOT NULL,
	cognitive_load INTEGER,
	status         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_behavioral_logs_timestamp ON behavioral_logs (timestamp DESC);
`

// SQLiteStore persists the log in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// schema exists. Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoPath
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path)
	}
	dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db, opts: o}, nil
}

// Append inserts e.
func (s *SQLiteStore) Append(ctx context.Context, e model.LogEntry) (model.LogEntry, error) {
	e, err := s.opts.prepare(e)
	if err != nil {
		return model.LogEntry{}, err
	}

	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	var load sql.NullInt64
	if e.CognitiveLoad != nil {
		load = sql.NullInt64{Int64: int64(*e.CognitiveLoad), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO behavioral_logs (timestamp, hr, br, anxiety_score, cognitive_load, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Timestamp.UnixMilli(), e.HeartRate, e.BreathRate, e.AnxietyScore, load, string(e.Status),
	)
	if err != nil {
		return model.LogEntry{}, fmt.Errorf("insert behavioral log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.LogEntry{}, fmt.Errorf("read behavioral log id: %w", err)
	}
	e.ID = id
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]model.LogEntry, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, hr, br, anxiety_score, cognitive_load, status
		 FROM behavioral_logs ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query behavioral logs: %w", err)
	}
	defer rows.Close()

	out := make([]model.LogEntry, 0, limit)
	for rows.Next() {
		var (
			e      model.LogEntry
			millis int64
			load   sql.NullInt64
			status string
		)
		if err := rows.Scan(&e.ID, &millis, &e.HeartRate, &e.BreathRate, &e.AnxietyScore, &load, &status); err != nil {
			return nil, fmt.Errorf("scan behavioral log: %w", err)
		}
		e.Timestamp = time.UnixMilli(millis).UTC()
		e.Status = model.Status(status)
		if load.Valid {
			v := int(load.Int64)
			e.CognitiveLoad = &v
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate behavioral logs: %w", err)
	}
	return out, nil
}

// Count returns the number of stored entries.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM behavioral_logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count behavioral logs: %w", err)
	}
	metrics.UpdateRepositoryRecordsTotal(n)
	return n, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
