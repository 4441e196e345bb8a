// Package scheduler runs delayed and periodic background jobs.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a unit of background work. The context is cancelled when the
// scheduler closes.
type Job func(ctx context.Context)

type periodicJob struct {
	name string
	job  Job
}

// Scheduler owns every delayed reaction of the application so that they
// can be cancelled together on shutdown. A job never starts after Close.
type Scheduler struct {
	log  *slog.Logger
	tick time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	wg       sync.WaitGroup
	closed   bool
	nextID   uint64
	pending  map[uint64]*time.Timer
	periodic []periodicJob
}

// New creates a Scheduler with a 1-minute tick for periodic jobs.
func New(log *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		log:     log,
		tick:    1 * time.Minute,
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[uint64]*time.Timer),
	}
}

// SetTickInterval overrides the default 1-minute interval of periodic jobs.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// Handle identifies a scheduled one-shot job.
type Handle struct {
	s  *Scheduler
	id uint64
}

// Cancel prevents the job from running. It reports whether the job was
// still pending.
func (h *Handle) Cancel() bool {
	if h == nil || h.s == nil {
		return false
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	t, ok := h.s.pending[h.id]
	if !ok {
		return false
	}
	t.Stop()
	delete(h.s.pending, h.id)
	return true
}

// After runs job once after d. It returns nil when the scheduler is closed.
func (s *Scheduler) After(d time.Duration, name string, job Job) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.log.Debug("scheduler closed, dropping job", "job", name)
		return nil
	}

	s.nextID++
	id := s.nextID
	s.pending[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		if _, ok := s.pending[id]; !ok || s.closed {
			s.mu.Unlock()
			return
		}
		delete(s.pending, id)
		s.wg.Add(1)
		s.mu.Unlock()

		defer s.wg.Done()
		s.run(name, job)
	})
	return &Handle{s: s, id: id}
}

// Pending returns the number of one-shot jobs waiting to run.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Every registers job to run on each tick of Run.
func (s *Scheduler) Every(name string, job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periodic = append(s.periodic, periodicJob{name: name, job: job})
}

// Run runs the periodic jobs once, then on every tick, blocking until ctx
// is cancelled or the scheduler is closed.
func (s *Scheduler) Run(ctx context.Context) {
	s.runPeriodic(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runPeriodic(ctx)
		}
	}
}

func (s *Scheduler) runPeriodic(ctx context.Context) {
	s.mu.Lock()
	jobs := make([]periodicJob, len(s.periodic))
	copy(jobs, s.periodic)
	s.mu.Unlock()

	for _, pj := range jobs {
		if ctx.Err() != nil || s.ctx.Err() != nil {
			return
		}
		s.run(pj.name, pj.job)
	}
}

func (s *Scheduler) run(name string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("job panicked", "job", name, "panic", r)
		}
	}()
	s.log.Debug("running job", "job", name)
	job(s.ctx)
}

// Close cancels every pending job and waits for running ones to finish.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
