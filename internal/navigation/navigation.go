// Package navigation turns drag gestures into moves between the four
// screens of the companion.
package navigation

import (
	"math"
	"sync"
	"time"
)

// Screen is addressed by its offset from Home.
type Screen int

// Screens along the adjacency chain Feed - Home - Diary - Mood.
const (
	Mood  Screen = -2
	Diary Screen = -1
	Home  Screen = 0
	Feed  Screen = 1
)

func (s Screen) String() string {
	switch s {
	case Feed:
		return "feed"
	case Diary:
		return "diary"
	case Mood:
		return "mood"
	default:
		return "home"
	}
}

// Visual is the transform applied to the current screen.
type Visual struct {
	X       float64
	Y       float64
	Scale   float64
	Opacity float64
}

// Rest is the visual of a screen nobody is dragging.
var Rest = Visual{Scale: 1, Opacity: 1}

// Timer is a pending callback.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfter(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Config tunes the gesture handling.
type Config struct {
	Resistance        float64
	MaxTranslate      float64
	FadeDistance      float64
	MinScale          float64
	MinOpacity        float64
	Threshold         float64
	VelocityThreshold float64
	Lock              time.Duration
}

// DefaultConfig returns the standard gesture tuning.
func DefaultConfig() Config {
	return Config{
		Resistance:        0.6,
		MaxTranslate:      100,
		FadeDistance:      150,
		MinScale:          0.95,
		MinOpacity:        0.8,
		Threshold:         60,
		VelocityThreshold: 0.5,
		Lock:              200 * time.Millisecond,
	}
}

// Outcome describes what a released gesture did.
type Outcome struct {
	From      Screen
	To        Screen
	Committed bool
}

// Navigator is the gesture state machine. Home is the initial screen.
type Navigator struct {
	cfg   Config
	after AfterFunc

	mu       sync.Mutex
	current  Screen
	visual   Visual
	locked   bool
	unlock   Timer
	onChange func(from, to Screen)
}

// New creates a Navigator on Home.
func New(cfg Config) *Navigator {
	return &Navigator{
		cfg:     cfg,
		after:   realAfter,
		current: Home,
		visual:  Rest,
	}
}

// SetAfterFunc replaces the timer source.
func (n *Navigator) SetAfterFunc(fn AfterFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.after = fn
}

// OnChange registers fn to be called after every screen swap.
func (n *Navigator) OnChange(fn func(from, to Screen)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onChange = fn
}

// Screen returns the screen currently shown.
func (n *Navigator) Screen() Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Visual returns the current transform.
func (n *Navigator) Visual() Visual {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.visual
}

// Locked reports whether a transition is in progress.
func (n *Navigator) Locked() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.locked
}

// Move follows an in-progress drag of (dx, dy) from the touch origin.
func (n *Navigator) Move(dx, dy float64) Visual {
	n.mu.Lock()
	defer n.mu.Unlock()

	progress := math.Min(math.Hypot(dx, dy)/n.cfg.FadeDistance, 1)
	n.visual = Visual{
		X:       clamp(dx*n.cfg.Resistance, n.cfg.MaxTranslate),
		Y:       clamp(dy*n.cfg.Resistance, n.cfg.MaxTranslate),
		Scale:   1 - progress*(1-n.cfg.MinScale),
		Opacity: 1 - progress*(1-n.cfg.MinOpacity),
	}
	return n.visual
}

// Release ends a drag with displacement (dx, dy) and velocity (vx, vy) in
// units per millisecond. A committed transition swaps the screen after the
// lock window; otherwise the visual snaps back to rest.
func (n *Navigator) Release(dx, dy, vx, vy float64) Outcome {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := Outcome{From: n.current, To: n.current}
	if n.locked {
		n.visual = Rest
		return out
	}

	target, ok := n.target(dx, dy, vx, vy)
	if !ok {
		n.visual = Rest
		return out
	}

	out.To = target
	out.Committed = true
	n.locked = true
	n.visual = Visual{X: n.visual.X, Y: n.visual.Y, Scale: n.cfg.MinScale, Opacity: n.cfg.MinOpacity}
	n.unlock = n.after(n.cfg.Lock, func() { n.swap(target) })
	return out
}

// Go jumps to an adjacent screen as if a committed gesture had been
// released. It is ignored while locked or when to is not adjacent.
func (n *Navigator) Go(to Screen) Outcome {
	n.mu.Lock()
	from := n.current
	n.mu.Unlock()

	switch {
	case from == Home && to == Feed:
		return n.Release(0, -n.cfg.Threshold-1, 0, 0)
	case from == Feed && to == Home:
		return n.Release(0, n.cfg.Threshold+1, 0, 0)
	case from == Home && to == Diary, from == Diary && to == Mood:
		return n.Release(n.cfg.Threshold+1, 0, 0, 0)
	case from == Mood && to == Diary, from == Diary && to == Home:
		return n.Release(-n.cfg.Threshold-1, 0, 0, 0)
	}
	return Outcome{From: from, To: from}
}

// Close cancels a pending swap.
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.unlock != nil {
		n.unlock.Stop()
		n.unlock = nil
	}
	n.locked = false
	n.visual = Rest
}

func (n *Navigator) target(dx, dy, vx, vy float64) (Screen, bool) {
	t, v := n.cfg.Threshold, n.cfg.VelocityThreshold
	cur := n.current

	if math.Abs(dx) > math.Abs(dy) {
		switch {
		case dx > t || vx > v:
			if cur == Home || cur == Diary {
				return cur - 1, true
			}
		case dx < -t || vx < -v:
			if cur == Diary || cur == Mood {
				return cur + 1, true
			}
		}
		return cur, false
	}

	switch {
	case (dy < -t || vy < -v) && cur == Home:
		return Feed, true
	case (dy > t || vy > v) && cur == Feed:
		return Home, true
	}
	return cur, false
}

func (n *Navigator) swap(to Screen) {
	n.mu.Lock()
	if !n.locked {
		n.mu.Unlock()
		return
	}
	from := n.current
	n.current = to
	n.locked = false
	n.unlock = nil
	n.visual = Rest
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn(from, to)
	}
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}
