// Package reactor provides readiness-event notification for raw file
// descriptors plus loop-driven timers.
//
// The core server depends only on the Watcher and Scheduler capability
// interfaces; the concrete epoll loop lives behind a build tag so hosts
// on other platforms can supply their own poller.
package reactor

import "time"

// Ready is a bitmask of independent read/write interest bits.
type Ready uint8

const (
	Readable Ready = 1 << iota
	Writable
)

func (r Ready) String() string {
	switch {
	case r&Readable != 0 && r&Writable != 0:
		return "read|write"
	case r&Readable != 0:
		return "read"
	case r&Writable != 0:
		return "write"
	}
	return "none"
}

// Callback is invoked by the event loop when a watched descriptor
// becomes ready.  Callbacks run on the loop goroutine and must not
// block; they should return as soon as a syscall would block.
type Callback func(fd int, ready Ready)

// Watcher registers file descriptors for readiness notification.
// All methods must be called from the loop goroutine (or before the
// loop starts); the single-threaded model needs no locking.
type Watcher interface {
	// Register associates fd with cb for the given initial interest.
	Register(fd int, cb Callback, interest Ready) error

	// Enable adds interest bits to an already-registered descriptor.
	Enable(fd int, interest Ready) error

	// Disable removes interest bits from a registered descriptor.
	Disable(fd int, interest Ready) error

	// Unregister removes the descriptor from the loop entirely.
	Unregister(fd int) error
}

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop cancels the timer and reports whether it was still pending.
	// Stopping an already-fired or already-stopped timer is a no-op.
	Stop() bool
}

// Scheduler arms callbacks on the event loop.
type Scheduler interface {
	// AfterFunc schedules fn to run once on the loop after d.
	AfterFunc(d time.Duration, fn func()) Timer

	// EveryFunc schedules fn to run every interval, first after delay.
	EveryFunc(delay, interval time.Duration, fn func()) Timer
}
