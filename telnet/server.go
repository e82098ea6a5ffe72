// Package telnet implements a non-blocking, single-listener TCP
// line-protocol server for low-concurrency administrative access.
//
// The server owns raw socket descriptors and is driven entirely by
// readiness callbacks and timers from a host-provided event loop (see
// telnetd/internal/reactor).  All state is touched from that single
// loop goroutine; nothing here locks.
//
// Lifecycle: Prepare (pure configuration) → Init (socket/bind/listen/
// register) → event callbacks → Exit (teardown).  A failed or exited
// server may be re-initialized.
package telnet

import (
	"fmt"
	"net"
	"strconv"

	"golang.org/x/sys/unix"

	"telnetd/config"
	errs "telnetd/internal/errors"
	"telnetd/internal/metrics"
	"telnetd/internal/reactor"
	"telnetd/util"
)

// Server owns the listening socket and the set of live connections.
type Server struct {
	cfg      config.Config
	fd       int // listening socket, -1 when not listening
	sa       unix.Sockaddr
	family   int
	conns    map[int]*Conn // keyed by client fd
	watcher  reactor.Watcher
	timers   reactor.Scheduler
	handler  Handler
	log      *util.Logger
	metrics  *metrics.Collector
	prepared bool
}

// NewServer creates a server bound to the host's event loop.  The
// metrics collector may be nil.
func NewServer(w reactor.Watcher, t reactor.Scheduler, log *util.Logger, m *metrics.Collector) *Server {
	return &Server{
		fd:      -1,
		watcher: w,
		timers:  t,
		log:     log.WithTag("telnet"),
		metrics: m,
	}
}

// SetHandler installs the command dispatcher.  A nil handler restores
// the built-in Echo stub.
func (s *Server) SetHandler(h Handler) { s.handler = h }

func (s *Server) handle(c *Conn, line string) {
	if s.handler != nil {
		s.handler(c, line)
		return
	}
	Echo(c, line)
}

// Prepare populates the bind address for the configured family without
// touching the network.  It is idempotent and may be called again
// before every Init.
func (s *Server) Prepare(cfg config.Config) error {
	var ip net.IP
	if cfg.ListenAddr != "" {
		ip = net.ParseIP(cfg.ListenAddr)
		if ip == nil {
			return &errs.ConfigError{Field: "listen", Value: cfg.ListenAddr, Message: "not a valid IP address"}
		}
	}

	if cfg.IPv6 {
		sa := &unix.SockaddrInet6{Port: cfg.Port}
		if ip != nil {
			copy(sa.Addr[:], ip.To16())
		}
		s.sa = sa
		s.family = unix.AF_INET6
	} else {
		sa := &unix.SockaddrInet4{Port: cfg.Port}
		if ip != nil {
			ip4 := ip.To4()
			if ip4 == nil {
				return &errs.ConfigError{Field: "listen", Value: cfg.ListenAddr, Message: "IPv4 address required (use --ipv6)"}
			}
			copy(sa.Addr[:], ip4)
		}
		s.sa = sa
		s.family = unix.AF_INET
	}

	s.cfg = cfg
	if s.conns == nil {
		s.conns = make(map[int]*Conn)
	}
	s.prepared = true
	return nil
}

// Init creates the non-blocking listening socket, binds, listens with
// the configured (minimal) backlog, and registers for read readiness.
// Any step failing closes the partially-created socket and leaves the
// server in its pre-Init state.
func (s *Server) Init() error {
	if !s.prepared {
		return errs.ErrNotPrepared
	}
	if s.fd >= 0 {
		return fmt.Errorf("already listening on %s", s.Addr())
	}

	fd, err := unix.Socket(s.family, unix.SOCK_STREAM, 0)
	if err != nil {
		return errs.Wrap("socket", s.bindAddr(), err)
	}

	// Every failure below must release the socket.
	fail := func(op string, err error) error {
		_ = unix.Close(fd)
		return errs.Wrap(op, s.bindAddr(), err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		return fail("nonblock", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fail("setsockopt", err)
	}
	if err := setNoSigpipe(fd); err != nil {
		return fail("setsockopt", err)
	}
	if err := unix.Bind(fd, s.sa); err != nil {
		return fail("bind", err)
	}
	if err := unix.Listen(fd, s.cfg.Backlog); err != nil {
		return fail("listen", err)
	}
	if err := s.watcher.Register(fd, s.onAcceptable, reactor.Readable); err != nil {
		return fail("register", err)
	}

	s.fd = fd
	s.log.Info("listening on %s", s.Addr())
	return nil
}

// Exit force-destroys every live connection (bypassing graceful
// draining), then unregisters and closes the listener.  Safe to call
// on an already-shut-down server; Init may be called again afterwards.
func (s *Server) Exit() {
	for _, c := range s.conns {
		c.state = StateDestroyed
		s.remove(c)
	}
	if s.fd >= 0 {
		_ = s.watcher.Unregister(s.fd)
		_ = unix.Close(s.fd)
		s.fd = -1
		s.log.Info("listener closed")
	}
}

// ConnCount returns the number of live connections.
func (s *Server) ConnCount() int { return len(s.conns) }

// Addr returns the listener's bound address, falling back to the
// configured one when not listening.
func (s *Server) Addr() string {
	if s.fd >= 0 {
		if sa, err := unix.Getsockname(s.fd); err == nil {
			return sockaddrString(sa)
		}
	}
	return s.bindAddr()
}

func (s *Server) bindAddr() string {
	host := s.cfg.ListenAddr
	if host == "" {
		host = "0.0.0.0"
		if s.cfg.IPv6 {
			host = "::"
		}
	}
	return net.JoinHostPort(host, strconv.Itoa(s.cfg.Port))
}

// ── Accept path ──────────────────────────────────────────────────────

// onAcceptable drains every pending accept.  The backlog is minimal,
// but a level-triggered poller may coalesce several arrivals into one
// readiness event.
func (s *Server) onAcceptable(fd int, _ reactor.Ready) {
	for {
		nfd, sa, err := unix.Accept(s.fd)
		if err != nil {
			if !errs.IsTransient(err) {
				s.log.Error("accept: %v", err)
				s.metrics.IOError()
			}
			return
		}
		if err := unix.SetNonblock(nfd, true); err != nil {
			s.log.Error("client %d nonblock: %v", nfd, err)
			_ = unix.Close(nfd)
			continue
		}
		s.addConn(nfd, sa)
	}
}

// addConn wraps an accepted descriptor in a Conn, registers it for
// read readiness, and adds it to the connection set.
func (s *Server) addConn(fd int, sa unix.Sockaddr) *Conn {
	c := &Conn{
		fd:     fd,
		srv:    s,
		in:     util.NewBuffer(s.cfg.BufSize),
		out:    util.NewBuffer(s.cfg.BufSize),
		state:  StateActive,
		remote: sockaddrString(sa),
		log:    s.log,
	}
	if err := s.watcher.Register(fd, c.handleEvent, reactor.Readable); err != nil {
		s.log.Error("client %d register: %v", fd, err)
		_ = unix.Close(fd)
		return nil
	}
	s.conns[fd] = c
	s.metrics.ConnectionOpened()
	s.log.Verbose("connect from %s (client %d)", c.remote, fd)
	return c
}

// remove tears a connection down exactly once: unregister readiness
// interest, cancel the linger timer, close the socket, release both
// buffers, and drop it from the connection set.  The fd guard makes a
// second invocation (linger timeout racing peer close) a no-op.
func (s *Server) remove(c *Conn) {
	if c == nil || c.fd < 0 {
		return
	}
	delete(s.conns, c.fd)
	_ = s.watcher.Unregister(c.fd)
	if c.linger != nil {
		c.linger.Stop()
		c.linger = nil
	}
	_ = unix.Close(c.fd)
	c.fd = -1
	c.state = StateDestroyed
	c.in.Free()
	c.out.Free()
	s.metrics.ConnectionClosed()
}

// sockaddrString renders an accept/getsockname address as host:port.
func sockaddrString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	case *unix.SockaddrInet6:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	}
	return "unknown"
}
