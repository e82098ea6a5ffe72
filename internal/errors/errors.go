// Package errors provides domain-specific error types for telnetd.
//
// These types carry structured context (operation, address, whether the
// failure is a transient would-block condition) so the event loop can
// decide between waiting for the next readiness notification and
// tearing a connection down.
package errors

import (
	"errors"
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrNotPrepared   = errors.New("server has not been prepared")
	ErrNotListening  = errors.New("server is not listening")
	ErrConnDestroyed = errors.New("connection already destroyed")
	ErrLoopClosed    = errors.New("event loop is closed")
)

// ── Structured error types ───────────────────────────────────────────

// NetworkError represents a failure in a socket operation.
type NetworkError struct {
	Op        string // operation: "socket", "bind", "listen", "accept", "read", "write"
	Addr      string // network address involved, if known
	Err       error  // underlying error
	Transient bool   // would-block/interrupted; wait for the next event
}

func (e *NetworkError) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	return msg + ": " + e.Message
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError, automatically detecting transience from
// the underlying error.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Transient: classifyTransient(err),
	}
}

// ── Classification helpers ───────────────────────────────────────────

// IsTransient reports whether err is a would-block or interrupted
// condition: not a failure, just "try again on the next readiness
// event".
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Transient
	}
	return classifyTransient(err)
}

// classifyTransient inspects raw errnos and standard library error
// types.  EAGAIN, EWOULDBLOCK, and EINTR are the non-blocking-I/O
// retry conditions.
func classifyTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Timeout()
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use telnetd/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }
