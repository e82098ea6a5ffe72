//go:build linux

package reactor

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	errs "telnetd/internal/errors"
	"telnetd/util"
)

// maxWait caps a single epoll_wait so context cancellation is noticed
// even when no descriptor fires and no timer is due.
const maxWait = 500 * time.Millisecond

// watch is the per-descriptor registration state.
type watch struct {
	cb       Callback
	interest Ready
}

// Loop is an epoll-backed event loop with integrated timers.  It
// implements [Watcher] and [Scheduler].  Everything on a Loop runs on
// the goroutine that calls Run; no internal locking.
type Loop struct {
	epfd    int
	watches map[int]*watch
	timers  timerHeap
	log     *util.Logger
	closed  bool
}

// NewLoop creates an epoll instance.
func NewLoop(log *util.Logger) (*Loop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, errs.Wrap("epoll_create", "", err)
	}
	return &Loop{
		epfd:    epfd,
		watches: make(map[int]*watch),
		log:     log.WithTag("loop"),
	}, nil
}

// ── Watcher ──────────────────────────────────────────────────────────

// Register adds fd to the epoll set with the given initial interest.
func (l *Loop) Register(fd int, cb Callback, interest Ready) error {
	if l.closed {
		return errs.ErrLoopClosed
	}
	if _, ok := l.watches[fd]; ok {
		return fmt.Errorf("fd %d already registered", fd)
	}
	ev := unix.EpollEvent{Events: epollEvents(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return errs.Wrap("epoll_ctl_add", "", err)
	}
	l.watches[fd] = &watch{cb: cb, interest: interest}
	return nil
}

// Enable adds interest bits to a registered descriptor.
func (l *Loop) Enable(fd int, interest Ready) error {
	w, ok := l.watches[fd]
	if !ok {
		return fmt.Errorf("fd %d not registered", fd)
	}
	if w.interest|interest == w.interest {
		return nil
	}
	w.interest |= interest
	return l.mod(fd, w)
}

// Disable removes interest bits from a registered descriptor.
func (l *Loop) Disable(fd int, interest Ready) error {
	w, ok := l.watches[fd]
	if !ok {
		return fmt.Errorf("fd %d not registered", fd)
	}
	if w.interest&interest == 0 {
		return nil
	}
	w.interest &^= interest
	return l.mod(fd, w)
}

// Unregister removes the descriptor from the epoll set.
func (l *Loop) Unregister(fd int) error {
	if _, ok := l.watches[fd]; !ok {
		return nil
	}
	delete(l.watches, fd)
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return errs.Wrap("epoll_ctl_del", "", err)
	}
	return nil
}

func (l *Loop) mod(fd int, w *watch) error {
	ev := unix.EpollEvent{Events: epollEvents(w.interest), Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return errs.Wrap("epoll_ctl_mod", "", err)
	}
	return nil
}

// ── Scheduler ────────────────────────────────────────────────────────

// AfterFunc schedules fn to run once on the loop after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return l.timers.arm(d, 0, fn)
}

// EveryFunc schedules fn to run every interval, first after delay.
func (l *Loop) EveryFunc(delay, interval time.Duration, fn func()) Timer {
	return l.timers.arm(delay, interval, fn)
}

// ── Loop ─────────────────────────────────────────────────────────────

// Run dispatches readiness events and due timers until ctx expires.
func (l *Loop) Run(ctx context.Context) error {
	events := make([]unix.EpollEvent, 64)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := unix.EpollWait(l.epfd, events, l.waitMillis())
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return errs.Wrap("epoll_wait", "", err)
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			// An earlier callback in this batch may have torn the
			// descriptor down already.
			w, ok := l.watches[fd]
			if !ok {
				continue
			}
			ready := readyFrom(events[i].Events)
			l.log.Debug("fd %d ready: %s", fd, ready)
			w.cb(fd, ready)
		}

		l.timers.fire(time.Now())
	}
}

// waitMillis converts the next timer deadline into an epoll timeout,
// capped at maxWait.
func (l *Loop) waitMillis() int {
	d := l.timers.nextDelay(time.Now())
	if d < 0 || d > maxWait {
		d = maxWait
	}
	return int(d / time.Millisecond)
}

// Close releases the epoll descriptor.  Watched fds are not closed;
// their owners are responsible for teardown.
func (l *Loop) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	l.watches = nil
	return unix.Close(l.epfd)
}

// ── Event translation ────────────────────────────────────────────────

func epollEvents(r Ready) uint32 {
	var ev uint32
	if r&Readable != 0 {
		ev |= unix.EPOLLIN
	}
	if r&Writable != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

// readyFrom maps epoll bits to Ready flags.  Hangup and error
// conditions surface as readable so the read path observes the EOF or
// the errno directly.
func readyFrom(ev uint32) Ready {
	var r Ready
	if ev&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLRDHUP|unix.EPOLLERR) != 0 {
		r |= Readable
	}
	if ev&unix.EPOLLOUT != 0 {
		r |= Writable
	}
	return r
}
