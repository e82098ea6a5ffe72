// Package metrics provides lightweight counters for tracking runtime
// statistics of a telnetd instance.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for a server instance.
// A nil Collector is safe to use — all methods become no-ops.
type Collector struct {
	connectionsActive atomic.Int64
	connectionsTotal  atomic.Int64
	bytesIn           atomic.Int64
	bytesOut          atomic.Int64
	linesDispatched   atomic.Int64
	lingerExpired     atomic.Int64
	ioErrors          atomic.Int64

	startTime time.Time
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Connection metrics ───────────────────────────────────────────────

// ConnectionOpened increments both the active and total counters.
func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(1)
	c.connectionsTotal.Add(1)
}

// ConnectionClosed decrements the active connection counter.
func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(-1)
}

// ── I/O metrics ──────────────────────────────────────────────────────

// BytesReceived records n bytes read from a client.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesIn.Add(n)
}

// BytesSent records n bytes flushed to a client.
func (c *Collector) BytesSent(n int64) {
	if c == nil {
		return
	}
	c.bytesOut.Add(n)
}

// LineDispatched records one framed command handed to the dispatcher.
func (c *Collector) LineDispatched() {
	if c == nil {
		return
	}
	c.linesDispatched.Add(1)
}

// LingerExpired records a connection torn down by the linger timer.
func (c *Collector) LingerExpired() {
	if c == nil {
		return
	}
	c.lingerExpired.Add(1)
}

// IOError records a fatal read/write/accept failure.
func (c *Collector) IOError() {
	if c == nil {
		return
	}
	c.ioErrors.Add(1)
}

// ── Reporting ────────────────────────────────────────────────────────

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	ActiveConnections int64
	TotalConnections  int64
	BytesIn           int64
	BytesOut          int64
	Lines             int64
	LingerTimeouts    int64
	IOErrors          int64
	Uptime            time.Duration
}

// Snapshot returns a consistent-enough copy of the counters for
// logging; individual loads are atomic.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		ActiveConnections: c.connectionsActive.Load(),
		TotalConnections:  c.connectionsTotal.Load(),
		BytesIn:           c.bytesIn.Load(),
		BytesOut:          c.bytesOut.Load(),
		Lines:             c.linesDispatched.Load(),
		LingerTimeouts:    c.lingerExpired.Load(),
		IOErrors:          c.ioErrors.Load(),
		Uptime:            time.Since(c.startTime).Round(time.Second),
	}
}

func (s Snapshot) String() string {
	return fmt.Sprintf("conns=%d/%d in=%dB out=%dB lines=%d linger_timeouts=%d io_errors=%d uptime=%s",
		s.ActiveConnections, s.TotalConnections, s.BytesIn, s.BytesOut,
		s.Lines, s.LingerTimeouts, s.IOErrors, s.Uptime)
}
