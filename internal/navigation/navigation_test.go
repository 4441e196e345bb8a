package navigation

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// FireAll runs every timer that was not stopped.
func (c *fakeClock) FireAll() {
	timers := c.timers
	c.timers = nil
	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			t.f()
		}
	}
}

func newTestNavigator() (*Navigator, *fakeClock) {
	clock := &fakeClock{}
	n := New(DefaultConfig())
	n.SetAfterFunc(clock.AfterFunc)
	return n, clock
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestMoveAppliesResistanceAndFade(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy float64
		want   Visual
	}{
		{name: "at rest", want: Rest},
		{name: "small drag", dx: 50, want: Visual{X: 30, Scale: 1 - 0.05/3, Opacity: 1 - 0.2/3}},
		{name: "vertical drag", dy: -90, want: Visual{Y: -54, Scale: 0.97, Opacity: 0.88}},
		{name: "clamped", dx: 300, dy: -400, want: Visual{X: 100, Y: -100, Scale: 0.95, Opacity: 0.8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, _ := newTestNavigator()
			got := n.Move(tt.dx, tt.dy)
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("visual mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReleaseTransitions(t *testing.T) {
	tests := []struct {
		name           string
		start          []Screen
		dx, dy, vx, vy float64
		want           Screen
		committed      bool
	}{
		{name: "swipe up to feed", dy: -70, want: Feed, committed: true},
		{name: "short slow drag snaps back", dx: 40, vx: 0.1, want: Home},
		{name: "fast flick right to diary", dx: 20, vx: 0.8, want: Diary, committed: true},
		{name: "diary to mood", start: []Screen{Diary}, dx: 80, want: Mood, committed: true},
		{name: "no deeper than mood", start: []Screen{Diary, Mood}, dx: 80, want: Mood},
		{name: "mood back to diary", start: []Screen{Diary, Mood}, dx: -80, want: Diary, committed: true},
		{name: "diary back to home", start: []Screen{Diary}, dx: -80, want: Home, committed: true},
		{name: "left from home does nothing", dx: -80, want: Home},
		{name: "feed down to home", start: []Screen{Feed}, dy: 70, want: Home, committed: true},
		{name: "up from feed does nothing", start: []Screen{Feed}, dy: -70, want: Feed},
		{name: "down from home does nothing", dy: 70, want: Home},
		{name: "vertical from diary does nothing", start: []Screen{Diary}, dy: -70, want: Diary},
		{name: "horizontal from feed does nothing", start: []Screen{Feed}, dx: 80, want: Feed},
		{name: "dominant axis wins", dx: 70, dy: -90, want: Feed, committed: true},
		{name: "exact threshold is not enough", dy: -60, want: Home},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, clock := newTestNavigator()
			for _, s := range tt.start {
				n.Go(s)
				clock.FireAll()
			}
			from := n.Screen()

			out := n.Release(tt.dx, tt.dy, tt.vx, tt.vy)
			want := Outcome{From: from, To: tt.want, Committed: tt.committed}
			if diff := cmp.Diff(want, out); diff != "" {
				t.Errorf("outcome mismatch (-want +got):\n%s", diff)
			}

			clock.FireAll()
			if diff := cmp.Diff(tt.want, n.Screen()); diff != "" {
				t.Errorf("screen mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(Rest, n.Visual()); diff != "" {
				t.Errorf("visual mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTransitionLock(t *testing.T) {
	n, clock := newTestNavigator()
	var changes [][2]Screen
	n.OnChange(func(from, to Screen) { changes = append(changes, [2]Screen{from, to}) })

	n.Move(0, -70)
	out := n.Release(0, -70, 0, 0)
	if !out.Committed {
		t.Fatal("expected committed transition")
	}
	if diff := cmp.Diff(Home, n.Screen()); diff != "" {
		t.Errorf("screen before lock expires (-want +got):\n%s", diff)
	}
	if !n.Locked() {
		t.Error("expected lock during transition")
	}
	if len(clock.timers) != 1 || clock.timers[0].d != 200*time.Millisecond {
		t.Fatalf("expected one 200ms lock timer, got %d", len(clock.timers))
	}

	// Touch following stays live while locked.
	v := n.Move(50, 0)
	if math.Abs(v.X-30) > 1e-9 {
		t.Errorf("visual X while locked = %v, want 30", v.X)
	}
	// Gestures released during the lock never transition.
	if out := n.Release(100, 0, 0, 0); out.Committed {
		t.Errorf("release during lock committed: %+v", out)
	}

	clock.FireAll()
	if diff := cmp.Diff(Feed, n.Screen()); diff != "" {
		t.Errorf("screen after lock (-want +got):\n%s", diff)
	}
	if n.Locked() {
		t.Error("lock still held after window")
	}
	if diff := cmp.Diff([][2]Screen{{Home, Feed}}, changes); diff != "" {
		t.Errorf("change notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestGoRejectsNonAdjacent(t *testing.T) {
	n, clock := newTestNavigator()
	out := n.Go(Mood)
	clock.FireAll()
	if diff := cmp.Diff(Outcome{From: Home, To: Home}, out); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Home, n.Screen()); diff != "" {
		t.Errorf("screen mismatch (-want +got):\n%s", diff)
	}
}

func TestCloseCancelsPendingSwap(t *testing.T) {
	n, clock := newTestNavigator()
	n.Release(0, -70, 0, 0)
	n.Close()
	clock.FireAll()
	if diff := cmp.Diff(Home, n.Screen()); diff != "" {
		t.Errorf("screen mismatch (-want +got):\n%s", diff)
	}
}

func TestScreenString(t *testing.T) {
	got := []string{Feed.String(), Home.String(), Diary.String(), Mood.String()}
	if diff := cmp.Diff([]string{"feed", "home", "diary", "mood"}, got); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}
