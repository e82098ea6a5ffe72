package telnet

import (
	"bytes"

	"golang.org/x/sys/unix"

	errs "telnetd/internal/errors"
	"telnetd/internal/reactor"
	"telnetd/util"
)

// handleEvent is the readiness callback for a client descriptor.  It
// drives one write attempt and one read attempt, then applies whatever
// state the handlers left behind: entering StateLingering performs the
// half-close and arms the linger timer; StateDestroyed runs teardown.
func (c *Conn) handleEvent(fd int, ready reactor.Ready) {
	if ready&reactor.Writable != 0 {
		c.onWritable()
	}
	if ready&reactor.Readable != 0 {
		c.onReadable()
	}

	switch {
	case c.state == StateLingering && c.linger == nil:
		c.halfClose()
	case c.state == StateDestroyed:
		c.srv.remove(c)
	}
}

// onReadable performs one bounded non-blocking read.
func (c *Conn) onReadable() {
	scratch := util.GetBuf()
	defer util.PutBuf(scratch)

	n, err := unix.Read(c.fd, *scratch)
	switch {
	case n > 0:
		c.srv.metrics.BytesReceived(int64(n))
		// Bytes arriving while the close is draining are consumed so
		// the readiness event does not re-fire, but never framed.
		if c.state != StateActive {
			return
		}
		offset := c.in.Len()
		c.in.Append((*scratch)[:n])
		c.fetchLines(offset)
	case n == 0 && err == nil:
		// Orderly peer close.
		c.log.Verbose("client %d: disconnected", c.fd)
		c.state = StateDestroyed
	default:
		if errs.IsTransient(err) {
			return
		}
		c.log.Error("client %d read: %v", c.fd, err)
		c.srv.metrics.IOError()
		c.state = StateDestroyed
	}
}

// onWritable attempts one non-blocking write of the whole output
// buffer and pulls however much the kernel accepted.
func (c *Conn) onWritable() {
	n, err := unix.Write(c.fd, c.out.Bytes())
	if err != nil {
		if errs.IsTransient(err) {
			return
		}
		c.log.Error("client %d write: %v", c.fd, err)
		c.srv.metrics.IOError()
		c.state = StateDestroyed
		return
	}
	if n <= 0 {
		return
	}

	_ = c.out.Pull(n) // n ≤ Len by construction
	c.srv.metrics.BytesSent(int64(n))

	if c.out.Len() == 0 {
		if err := c.srv.watcher.Disable(c.fd, reactor.Writable); err != nil {
			c.log.Error("client %d: disable write: %v", c.fd, err)
		}
		if c.state == StatePending {
			c.state = StateLingering
		}
	}
}

// fetchLines extracts complete newline-terminated commands from the
// input buffer, starting at offset (where the newly-read bytes begin).
// Each complete line, minus its newline and one optional preceding
// carriage return, is dispatched; the consumed bytes are pulled and
// scanning restarts at the new front.  If a dispatch moves the
// connection out of StateActive, scanning stops without consuming
// further input.  A trailing partial line stays buffered.
func (c *Conn) fetchLines(offset int) {
	for {
		data := c.in.Bytes()
		i := bytes.IndexByte(data[offset:], '\n')
		if i < 0 {
			return
		}
		end := offset + i
		line := data[:end]
		if end > 0 && data[end-1] == '\r' {
			line = data[:end-1]
		}
		c.dispatch(string(line))
		if c.state != StateActive {
			return
		}
		_ = c.in.Pull(end + 1)
		offset = 0
	}
}

// dispatch hands one command to the handler, then re-checks for queued
// output and enables write interest while the connection is live.
func (c *Conn) dispatch(line string) {
	c.srv.metrics.LineDispatched()
	c.srv.handle(c, line)

	if c.state != StateDestroyed && c.out.Len() > 0 {
		if err := c.srv.watcher.Enable(c.fd, reactor.Writable); err != nil {
			c.log.Error("client %d: enable write: %v", c.fd, err)
			c.state = StateDestroyed
		}
	}
}

// halfClose shuts down the write half so the peer sees end-of-stream,
// and arms the one-shot linger timer.  The read side stays open so the
// peer's close can still be observed.
func (c *Conn) halfClose() {
	if err := unix.Shutdown(c.fd, unix.SHUT_WR); err != nil {
		c.log.Debug("client %d shutdown: %v", c.fd, err)
	}
	c.log.Verbose("client %d: lingering for up to %s", c.fd, c.srv.cfg.LingerTimeout)
	c.linger = c.srv.timers.AfterFunc(c.srv.cfg.LingerTimeout, c.onLingerTimeout)
}

// onLingerTimeout forces teardown when the peer never closes its side
// within the linger window.  If the peer's close won the race, remove
// already ran and the fd guard makes this a no-op.
func (c *Conn) onLingerTimeout() {
	c.linger = nil // already fired; teardown must not cancel it
	if c.fd < 0 {
		return
	}
	c.log.Verbose("client %d: disconnected after linger timeout", c.fd)
	c.srv.metrics.LingerExpired()
	c.state = StateDestroyed
	c.srv.remove(c)
}
