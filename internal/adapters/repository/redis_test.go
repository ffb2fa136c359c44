package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silentsignal/vitals/internal/domain/model"
)

func setupMiniredis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: s.Addr()}), s
}

func logEntry(score int, ts time.Time) model.LogEntry {
	return model.LogEntry{HeartRate: 80 + score%10, BreathRate: 16, AnxietyScore: score, Status: model.StatusOptimal, Timestamp: ts}
}

func TestRedisStore_AppendAndRecent(t *testing.T) {
	rdb, _ := setupMiniredis(t)
	store := NewRedisStore(rdb)
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		got, err := store.Append(ctx, logEntry(i*10, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
		assert.Equal(t, int64(i), got.ID)
	}

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 30, recent[0].AnxietyScore)
	assert.Equal(t, 20, recent[1].AnxietyScore)
	assert.True(t, recent[0].Timestamp.Equal(base.Add(3*time.Hour)))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRedisStore_TrimsToMaxEntries(t *testing.T) {
	rdb, _ := setupMiniredis(t)
	store := NewRedisStore(rdb, WithMaxEntries(3), WithKey("test:logs"))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.Append(ctx, logEntry(i, time.Time{}))
		require.NoError(t, err)
	}

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, 4, recent[0].AnxietyScore)
	assert.Equal(t, 2, recent[2].AnxietyScore)
}

func TestRedisStore_SkipsMalformedEntries(t *testing.T) {
	rdb, mr := setupMiniredis(t)
	store := NewRedisStore(rdb)
	ctx := context.Background()

	_, err := store.Append(ctx, logEntry(10, time.Time{}))
	require.NoError(t, err)
	_, err = mr.RPush(defaultRedisKey, "{broken")
	require.NoError(t, err)

	recent, err := store.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, 10, recent[0].AnxietyScore)
}

func TestRedisStore_RejectsInvalidInput(t *testing.T) {
	rdb, _ := setupMiniredis(t)
	store := NewRedisStore(rdb)
	ctx := context.Background()

	_, err := store.Recent(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)

	_, err = store.Append(ctx, model.LogEntry{AnxietyScore: 101, Status: model.StatusCritical})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, err = store.Append(ctx, model.LogEntry{AnxietyScore: 10, Status: "High"})
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestOpenRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := OpenRedis(ctx, "127.0.0.1:1")
	assert.Error(t, err)
}
