package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/silentsignal/vitals/internal/adapters/mq/queue"
	worker "github.com/silentsignal/vitals/internal/adapters/mq/worker"
	model "github.com/silentsignal/vitals/internal/domain/model"
	logging "github.com/silentsignal/vitals/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logging.Init()
}

type mockSink struct {
	mu      sync.Mutex
	entries []model.LogEntry
	failAt  map[int]error
	delay   time.Duration
}

func (s *mockSink) Append(ctx context.Context, e model.LogEntry) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failAt[e.AnxietyScore]; ok {
		return err
	}
	s.entries = append(s.entries, e)
	return nil
}

func (s *mockSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func entry(score int) model.LogEntry {
	return model.LogEntry{HeartRate: 90, BreathRate: 20, AnxietyScore: score, Status: model.StatusOptimal}
}

func TestWorker(t *testing.T) {
	convey.Convey("Given a worker over a queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		sink := &mockSink{failAt: map[int]error{13: errors.New("disk full")}}
		w := worker.NewWorker(q, sink, worker.WithName("test"))

		convey.Convey("When entries are queued and the queue closes", func() {
			ctx := context.Background()
			for _, score := range []int{10, 13, 20} {
				convey.So(q.Enqueue(ctx, entry(score)), convey.ShouldBeNil)
			}
			convey.So(q.Close(), convey.ShouldBeNil)

			w.Run(ctx)

			convey.Convey("Then good entries are written and the failure is counted", func() {
				convey.So(sink.count(), convey.ShouldEqual, 2)
				convey.So(w.Processed(), convey.ShouldEqual, 2)
				convey.So(w.Failed(), convey.ShouldEqual, 1)
			})

			convey.Convey("And Done is closed", func() {
				select {
				case <-w.Done():
				default:
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When the sink is slower than the write timeout", func() {
			slow := &mockSink{delay: time.Second}
			sw := worker.NewWorker(q, slow, worker.WithWriteTimeout(10*time.Millisecond))
			convey.So(q.Enqueue(context.Background(), entry(1)), convey.ShouldBeNil)
			_ = q.Close()

			sw.Run(context.Background())

			convey.Convey("Then the write is abandoned as a failure", func() {
				convey.So(sw.Failed(), convey.ShouldEqual, 1)
				convey.So(slow.count(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When stopped while idle", func() {
			go w.Run(context.Background())
			w.Stop()
			w.Stop()

			convey.Convey("Then Run returns", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					convey.So("worker did not stop", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of three workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		sink := &mockSink{}
		pool := worker.NewPool(3, q, sink)
		convey.So(pool.Size(), convey.ShouldEqual, 3)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When entries are queued and the pool shuts down", func() {
			for i := 0; i < 50; i++ {
				convey.So(q.Enqueue(ctx, entry(i)), convey.ShouldBeNil)
			}
			err := pool.Shutdown(context.Background())

			convey.Convey("Then every entry is drained into the sink", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sink.count(), convey.ShouldEqual, 50)
				convey.So(pool.Processed(), convey.ShouldEqual, 50)
				convey.So(pool.Failed(), convey.ShouldEqual, 0)
			})
		})
	})

	convey.Convey("Given a pool with a non-positive size", t, func() {
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), &mockSink{})

		convey.Convey("Then the default size is used", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
