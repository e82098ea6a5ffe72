package reactor

import (
	"testing"
	"time"
)

func TestTimerHeapFiresInDeadlineOrder(t *testing.T) {
	h := &timerHeap{}
	var order []string

	h.arm(30*time.Millisecond, 0, func() { order = append(order, "c") })
	h.arm(10*time.Millisecond, 0, func() { order = append(order, "a") })
	h.arm(20*time.Millisecond, 0, func() { order = append(order, "b") })

	h.fire(time.Now().Add(time.Second))

	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("fired %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("fired %v, want %v", order, want)
		}
	}
	if h.Len() != 0 {
		t.Errorf("%d timers left after fire", h.Len())
	}
}

func TestTimerHeapFiresOnlyDue(t *testing.T) {
	h := &timerHeap{}
	fired := 0
	h.arm(time.Millisecond, 0, func() { fired++ })
	h.arm(time.Hour, 0, func() { fired++ })

	h.fire(time.Now().Add(time.Second))

	if fired != 1 {
		t.Fatalf("fired %d timers, want 1", fired)
	}
	if h.Len() != 1 {
		t.Errorf("%d timers pending, want 1", h.Len())
	}
}

func TestPeriodicTimerRequeues(t *testing.T) {
	h := &timerHeap{}
	fired := 0
	h.arm(time.Millisecond, 50*time.Millisecond, func() { fired++ })

	now := time.Now()
	h.fire(now.Add(10 * time.Millisecond))
	h.fire(now.Add(70 * time.Millisecond))
	h.fire(now.Add(130 * time.Millisecond))

	if fired != 3 {
		t.Fatalf("fired %d times, want 3", fired)
	}
	if h.Len() != 1 {
		t.Errorf("periodic timer not requeued")
	}
}

func TestPeriodicTimerStopsItself(t *testing.T) {
	h := &timerHeap{}
	fired := 0
	var tm *loopTimer
	tm = h.arm(time.Millisecond, 10*time.Millisecond, func() {
		fired++
		tm.Stop()
	})

	now := time.Now()
	h.fire(now.Add(time.Second))
	h.fire(now.Add(2 * time.Second))

	if fired != 1 {
		t.Fatalf("fired %d times after self-stop, want 1", fired)
	}
	if h.Len() != 0 {
		t.Errorf("stopped timer still queued")
	}
}

func TestTimerStop(t *testing.T) {
	h := &timerHeap{}
	tm := h.arm(time.Millisecond, 0, func() { t.Error("stopped timer fired") })

	if !tm.Stop() {
		t.Fatal("first Stop = false, want true")
	}
	if tm.Stop() {
		t.Error("second Stop = true, want false")
	}

	h.fire(time.Now().Add(time.Second))
}

func TestTimerStopMiddleOfHeap(t *testing.T) {
	h := &timerHeap{}
	var order []string
	h.arm(10*time.Millisecond, 0, func() { order = append(order, "a") })
	victim := h.arm(20*time.Millisecond, 0, func() { order = append(order, "x") })
	h.arm(30*time.Millisecond, 0, func() { order = append(order, "b") })

	victim.Stop()
	h.fire(time.Now().Add(time.Second))

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("fired %v, want [a b]", order)
	}
}

func TestNextDelay(t *testing.T) {
	h := &timerHeap{}
	now := time.Now()

	if d := h.nextDelay(now); d != -1 {
		t.Fatalf("empty heap nextDelay = %v, want -1", d)
	}

	h.arm(time.Minute, 0, func() {})
	d := h.nextDelay(now)
	if d <= 0 || d > time.Minute {
		t.Errorf("nextDelay = %v, want (0, 1m]", d)
	}

	// Overdue timers report zero, never negative.
	if d := h.nextDelay(now.Add(2 * time.Minute)); d != 0 {
		t.Errorf("overdue nextDelay = %v, want 0", d)
	}
}

func TestReadyString(t *testing.T) {
	tests := []struct {
		r    Ready
		want string
	}{
		{0, "none"},
		{Readable, "read"},
		{Writable, "write"},
		{Readable | Writable, "read|write"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("Ready(%d).String() = %q, want %q", tt.r, got, tt.want)
		}
	}
}
