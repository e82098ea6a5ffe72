package telnet

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"telnetd/config"
	"telnetd/internal/metrics"
	"telnetd/internal/reactor"
	"telnetd/util"
)

// fakeWatcher records registrations and interest bits without any
// real poller behind it.
type fakeWatcher struct {
	interest map[int]reactor.Ready
	cbs      map[int]reactor.Callback
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{
		interest: make(map[int]reactor.Ready),
		cbs:      make(map[int]reactor.Callback),
	}
}

func (w *fakeWatcher) Register(fd int, cb reactor.Callback, interest reactor.Ready) error {
	w.interest[fd] = interest
	w.cbs[fd] = cb
	return nil
}

func (w *fakeWatcher) Enable(fd int, interest reactor.Ready) error {
	w.interest[fd] |= interest
	return nil
}

func (w *fakeWatcher) Disable(fd int, interest reactor.Ready) error {
	w.interest[fd] &^= interest
	return nil
}

func (w *fakeWatcher) Unregister(fd int) error {
	delete(w.interest, fd)
	delete(w.cbs, fd)
	return nil
}

// fakeScheduler collects armed timers so tests can fire them manually.
type fakeTimer struct {
	fn      func()
	delay   time.Duration
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) reactor.Timer {
	t := &fakeTimer{fn: fn, delay: d}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) EveryFunc(delay, interval time.Duration, fn func()) reactor.Timer {
	t := &fakeTimer{fn: fn, delay: delay}
	s.timers = append(s.timers, t)
	return t
}

// fire runs every pending timer once, as if its deadline passed.
func (s *fakeScheduler) fire() {
	for _, t := range s.timers {
		if t.stopped {
			continue
		}
		t.stopped = true
		t.fn()
	}
}

func (s *fakeScheduler) pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// newTestServer returns a prepared server wired to fakes.
func newTestServer(t *testing.T) (*Server, *fakeWatcher, *fakeScheduler) {
	t.Helper()
	w := newFakeWatcher()
	sched := &fakeScheduler{}
	srv := NewServer(w, sched, util.NewLogger(0), metrics.New())
	cfg := config.Default()
	if err := srv.Prepare(cfg); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	return srv, w, sched
}

// newTestConn attaches one end of a non-blocking socketpair to the
// server as a live connection and returns the peer fd.
func newTestConn(t *testing.T, srv *Server) (*Conn, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	for _, fd := range fds {
		if err := unix.SetNonblock(fd, true); err != nil {
			t.Fatalf("nonblock: %v", err)
		}
	}
	c := srv.addConn(fds[0], &unix.SockaddrInet4{})
	if c == nil {
		t.Fatal("addConn returned nil")
	}
	t.Cleanup(func() {
		if c.fd >= 0 {
			unix.Close(c.fd)
		}
		unix.Close(fds[1])
	})
	return c, fds[1]
}

// peerWrite sends bytes from the client side.
func peerWrite(t *testing.T, fd int, data string) {
	t.Helper()
	n, err := unix.Write(fd, []byte(data))
	if err != nil || n != len(data) {
		t.Fatalf("peer write: n=%d err=%v", n, err)
	}
}

// peerRead drains whatever is currently available on the client side.
func peerRead(t *testing.T, fd int) string {
	t.Helper()
	buf := make([]byte, 64*1024)
	var out []byte
	for {
		n, err := unix.Read(fd, buf)
		if n > 0 {
			out = append(out, buf[:n]...)
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == nil {
			return string(out)
		}
		t.Fatalf("peer read: %v", err)
	}
}
