package reactor

import (
	"container/heap"
	"time"
)

// loopTimer is a one-shot or periodic timer owned by the event loop.
type loopTimer struct {
	when     time.Time
	interval time.Duration // 0 for one-shot
	fn       func()
	owner    *timerHeap
	index    int // position in the heap, -1 when not queued
}

// Stop implements [Timer].  It must be called from the loop goroutine.
func (t *loopTimer) Stop() bool {
	if t.index < 0 {
		return false
	}
	heap.Remove(t.owner, t.index)
	t.index = -1
	return true
}

// timerHeap is a min-heap of pending timers ordered by deadline.
type timerHeap struct {
	timers []*loopTimer
}

func (h *timerHeap) Len() int { return len(h.timers) }

func (h *timerHeap) Less(i, j int) bool {
	return h.timers[i].when.Before(h.timers[j].when)
}

func (h *timerHeap) Swap(i, j int) {
	h.timers[i], h.timers[j] = h.timers[j], h.timers[i]
	h.timers[i].index = i
	h.timers[j].index = j
}

func (h *timerHeap) Push(x interface{}) {
	t := x.(*loopTimer)
	t.index = len(h.timers)
	h.timers = append(h.timers, t)
}

func (h *timerHeap) Pop() interface{} {
	n := len(h.timers)
	t := h.timers[n-1]
	h.timers[n-1] = nil
	h.timers = h.timers[:n-1]
	t.index = -1
	return t
}

// arm queues a new timer.  interval == 0 makes it one-shot.
func (h *timerHeap) arm(delay, interval time.Duration, fn func()) *loopTimer {
	t := &loopTimer{
		when:     time.Now().Add(delay),
		interval: interval,
		fn:       fn,
		owner:    h,
	}
	heap.Push(h, t)
	return t
}

// nextDelay returns the time until the earliest deadline, or -1 if no
// timer is pending.  Overdue timers report zero.
func (h *timerHeap) nextDelay(now time.Time) time.Duration {
	if len(h.timers) == 0 {
		return -1
	}
	d := h.timers[0].when.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// fire runs every timer whose deadline has passed.  Periodic timers are
// requeued before their callback runs, so the callback may Stop them.
func (h *timerHeap) fire(now time.Time) {
	for len(h.timers) > 0 && !h.timers[0].when.After(now) {
		t := heap.Pop(h).(*loopTimer)
		if t.interval > 0 {
			t.when = now.Add(t.interval)
			heap.Push(h, t)
		}
		t.fn()
	}
}
