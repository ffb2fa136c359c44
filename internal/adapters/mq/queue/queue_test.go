package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/silentsignal/vitals/internal/domain/model"
)

func entry(score int) model.LogEntry {
	return model.LogEntry{HeartRate: 85, BreathRate: 18, AnxietyScore: score, Status: model.StatusOptimal}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	fixed := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	q := NewInMemoryQueue(WithCapacity(2), WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, entry(30)); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	job := <-q.Jobs()
	if job.Entry.AnxietyScore != 30 {
		t.Errorf("expected score 30, got %d", job.Entry.AnxietyScore)
	}
	if !job.EnqueuedAt.Equal(fixed) {
		t.Errorf("expected enqueue time %v, got %v", fixed, job.EnqueuedAt)
	}
	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := q.Enqueue(ctx, entry(i)); err != nil {
			t.Fatalf("expected enqueue %d to succeed, got %v", i, err)
		}
	}

	if err := q.Enqueue(ctx, entry(3)); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
	if l := q.Len(); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
	if q.Cap() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Cap())
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, entry(1)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	if err := q.Enqueue(ctx, entry(10)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if err := q.Enqueue(ctx, entry(11)); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}

	var drained []int
	for job := range q.Jobs() {
		drained = append(drained, job.Entry.AnxietyScore)
	}
	if len(drained) != 1 || drained[0] != 10 {
		t.Errorf("expected buffered job to survive close, got %v", drained)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	const producers, perProducer = 10, 20
	q := NewInMemoryQueue(WithCapacity(producers * perProducer))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				if err := q.Enqueue(ctx, entry(j)); err != nil {
					t.Errorf("enqueue: %v", err)
				}
			}
		}()
	}
	wg.Wait()
	_ = q.Close()

	count := 0
	for range q.Jobs() {
		count++
	}
	if count != producers*perProducer {
		t.Errorf("expected %d jobs, got %d", producers*perProducer, count)
	}
}
