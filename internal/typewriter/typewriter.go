// Package typewriter reveals a finished reply one character at a time.
package typewriter

import (
	"sync"
	"time"

	"soulball/internal/mood"
)

// Display receives the visible state of the reply.
// Implementations must not call back into the Sequencer.
type Display interface {
	SetText(text string)
	SetMood(l mood.Label)
	SetOpacity(opacity float64)
}

// Timer is a pending callback.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfter(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// State of the sequencer.
type State int

// Sequencer states.
const (
	Idle State = iota
	Revealing
)

func (s State) String() string {
	if s == Revealing {
		return "revealing"
	}
	return "idle"
}

// Config holds the reveal timings.
type Config struct {
	Interval      time.Duration
	FastInterval  time.Duration
	SentencePause time.Duration
	ClausePause   time.Duration
	BoostWindow   time.Duration
	Hold          time.Duration
}

// DefaultConfig returns the standard reveal timings.
func DefaultConfig() Config {
	return Config{
		Interval:      80 * time.Millisecond,
		FastInterval:  20 * time.Millisecond,
		SentencePause: 300 * time.Millisecond,
		ClausePause:   150 * time.Millisecond,
		BoostWindow:   800 * time.Millisecond,
		Hold:          3 * time.Second,
	}
}

// Sequencer drives a Display through an incremental reveal.
type Sequencer struct {
	display Display
	cfg     Config
	after   AfterFunc

	mu       sync.Mutex
	state    State
	runes    []rune
	pos      int
	interval time.Duration
	// gen invalidates callbacks of a previous reveal.
	gen   uint64
	step  Timer
	boost Timer
	fade  Timer
}

// New creates a Sequencer writing to display.
func New(display Display, cfg Config) *Sequencer {
	return &Sequencer{
		display:  display,
		cfg:      cfg,
		after:    realAfter,
		interval: cfg.Interval,
	}
}

// SetAfterFunc replaces the timer source.
func (s *Sequencer) SetAfterFunc(fn AfterFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.after = fn
}

// State returns the current state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Text returns the revealed part of the current reply.
func (s *Sequencer) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.runes[:s.pos])
}

// Start begins revealing text, cancelling any reveal in progress.
func (s *Sequencer) Start(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.gen++
	s.runes = []rune(text)
	s.pos = 0
	s.interval = s.cfg.Interval
	s.state = Revealing

	s.display.SetText("")
	s.display.SetOpacity(1)

	if len(s.runes) == 0 {
		s.finishLocked()
		return
	}
	s.scheduleStepLocked(s.interval)
}

// Accelerate shortens the step interval for BoostWindow. It has no effect
// when idle.
func (s *Sequencer) Accelerate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Revealing {
		return
	}

	s.interval = s.cfg.FastInterval
	if s.boost != nil {
		s.boost.Stop()
	}
	gen := s.gen
	s.boost = s.after(s.cfg.BoostWindow, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			return
		}
		s.interval = s.cfg.Interval
		s.boost = nil
	})
}

// Stop cancels the reveal and the pending fade without touching the display.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.gen++
	s.state = Idle
}

func (s *Sequencer) cancelLocked() {
	for _, t := range []Timer{s.step, s.boost, s.fade} {
		if t != nil {
			t.Stop()
		}
	}
	s.step, s.boost, s.fade = nil, nil, nil
}

func (s *Sequencer) scheduleStepLocked(d time.Duration) {
	gen := s.gen
	s.step = s.after(d, func() { s.advance(gen) })
}

func (s *Sequencer) advance(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || s.state != Revealing {
		return
	}

	s.pos++
	partial := string(s.runes[:s.pos])
	s.display.SetText(partial)
	if l := mood.Detect(partial); l != mood.Neutral {
		s.display.SetMood(l)
	}

	if s.pos >= len(s.runes) {
		s.step = nil
		s.finishLocked()
		return
	}
	s.scheduleStepLocked(s.delayAfter(s.runes[s.pos-1]))
}

func (s *Sequencer) delayAfter(r rune) time.Duration {
	switch r {
	case '。', '！', '？':
		return s.cfg.SentencePause
	case '，', '、':
		return s.cfg.ClausePause
	default:
		return s.interval
	}
}

func (s *Sequencer) finishLocked() {
	s.state = Idle
	if s.boost != nil {
		s.boost.Stop()
		s.boost = nil
	}
	s.interval = s.cfg.Interval

	gen := s.gen
	s.fade = s.after(s.cfg.Hold, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			return
		}
		s.fade = nil
		s.display.SetOpacity(0)
	})
}
