package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestScheduler() *Scheduler {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAfterRunsJob(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	done := make(chan struct{})
	s.After(5*time.Millisecond, "test", func(context.Context) { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
	if diff := cmp.Diff(0, s.Pending()); diff != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleCancel(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	var ran atomic.Bool
	h := s.After(50*time.Millisecond, "cancelled", func(context.Context) { ran.Store(true) })
	if !h.Cancel() {
		t.Fatal("expected first cancel to report pending job")
	}
	if h.Cancel() {
		t.Error("expected second cancel to report false")
	}

	time.Sleep(100 * time.Millisecond)
	if ran.Load() {
		t.Error("cancelled job ran")
	}
}

func TestCloseCancelsPendingJobs(t *testing.T) {
	s := newTestScheduler()

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		s.After(30*time.Millisecond, "pending", func(context.Context) { ran.Add(1) })
	}
	if diff := cmp.Diff(5, s.Pending()); diff != "" {
		t.Fatalf("pending mismatch (-want +got):\n%s", diff)
	}

	s.Close()
	time.Sleep(80 * time.Millisecond)

	if diff := cmp.Diff(int32(0), ran.Load()); diff != "" {
		t.Errorf("jobs ran after close (-want +got):\n%s", diff)
	}
	if h := s.After(time.Millisecond, "late", func(context.Context) { ran.Add(1) }); h != nil {
		t.Error("expected nil handle after close")
	}
}

func TestCloseWaitsForRunningJob(t *testing.T) {
	s := newTestScheduler()

	started := make(chan struct{})
	var finished atomic.Bool
	s.After(time.Millisecond, "slow", func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		finished.Store(true)
	})

	<-started
	s.Close()
	if !finished.Load() {
		t.Error("Close returned before the running job finished")
	}
}

func TestRunPeriodic(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()
	s.SetTickInterval(10 * time.Millisecond)

	var mu sync.Mutex
	calls := 0
	s.Every("count", func(context.Context) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	mu.Lock()
	defer mu.Unlock()
	if calls < 2 {
		t.Errorf("expected at least 2 periodic runs, got %d", calls)
	}
}

func TestJobPanicIsRecovered(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	done := make(chan struct{})
	s.After(time.Millisecond, "panics", func(context.Context) { panic("boom") })
	s.After(10*time.Millisecond, "after", func(context.Context) { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler stopped after a panicking job")
	}
}
