package telnet

import (
	"telnetd/internal/reactor"
	"telnetd/util"
)

// State is the lifecycle phase of a connection.  A connection holds
// exactly one State at a time and never leaves StateDestroyed.
type State int

const (
	// StateActive is normal bidirectional operation: reads are framed
	// and dispatched, writes are flushed.
	StateActive State = iota

	// StatePending means a graceful close was requested while output
	// is still draining.  Reads are suppressed, writes continue.
	StatePending

	// StateLingering means output is fully flushed and the write half
	// is shut down; the read side stays open for a bounded time to
	// observe the peer's own close.
	StateLingering

	// StateDestroyed is terminal: socket closed, buffers released,
	// timer cancelled, removed from the server's connection set.
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StatePending:
		return "pending"
	case StateLingering:
		return "lingering"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// Conn is one client session.  It is owned exclusively by its Server
// and only ever touched from event-loop callbacks, so it carries no
// locks.
type Conn struct {
	fd     int
	srv    *Server
	in     *util.Buffer
	out    *util.Buffer
	state  State
	linger reactor.Timer // armed once on entering StateLingering
	remote string
	log    *util.Logger
}

// State returns the connection's current lifecycle phase.
func (c *Conn) State() State { return c.state }

// RemoteAddr returns the peer address recorded at accept time.
func (c *Conn) RemoteAddr() string { return c.remote }

// Quit requests connection close.  With now set the connection is
// destroyed without flushing; otherwise it drains its output first
// (StatePending while output remains, StateLingering once empty).
// The transition is applied when the current event callback returns.
func (c *Conn) Quit(now bool) {
	if c == nil || c.state == StateDestroyed {
		return
	}
	switch {
	case now:
		c.state = StateDestroyed
	case c.out.Len() > 0:
		c.state = StatePending
	default:
		c.state = StateLingering
	}
}

// Printf appends a formatted string to the output queue.  The bytes
// are flushed once the socket reports writable.
func (c *Conn) Printf(format string, args ...interface{}) {
	if c == nil || c.state == StateDestroyed {
		return
	}
	c.out.Appendf(format, args...)
}

// Write queues raw bytes on the output buffer.
func (c *Conn) Write(p []byte) {
	if c == nil || c.state == StateDestroyed {
		return
	}
	c.out.Append(p)
}

// WriteString queues a string on the output buffer.
func (c *Conn) WriteString(s string) {
	if c == nil || c.state == StateDestroyed {
		return
	}
	c.out.AppendString(s)
}
