package util

import (
	"errors"
	"fmt"
)

// ErrPullRange is returned by [Buffer.Pull] when asked to discard more
// bytes than the buffer currently holds.
var ErrPullRange = errors.New("pull exceeds buffered length")

// Buffer is a growable byte accumulator used for per-connection input
// and output queues.  Appends go to the end; Pull discards from the
// front by compacting the remainder, so pulling N bytes costs O(len-N).
// It is not safe for concurrent use; the event loop owns it.
type Buffer struct {
	buf []byte
	min int // initial capacity, kept across Reset
}

// NewBuffer returns a Buffer with the given initial capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{
		buf: make([]byte, 0, capacity),
		min: capacity,
	}
}

// Append copies p to the end of the buffer, growing storage as needed.
func (b *Buffer) Append(p []byte) {
	b.buf = append(b.buf, p...)
}

// AppendString copies s to the end of the buffer.
func (b *Buffer) AppendString(s string) {
	b.buf = append(b.buf, s...)
}

// Appendf formats according to fmt rules and appends the result.
func (b *Buffer) Appendf(format string, args ...interface{}) {
	b.buf = fmt.Appendf(b.buf, format, args...)
}

// Pull discards the first n bytes, shifting the remainder to the front.
// n must not exceed Len.
func (b *Buffer) Pull(n int) error {
	if n < 0 || n > len(b.buf) {
		return fmt.Errorf("%w: %d of %d", ErrPullRange, n, len(b.buf))
	}
	remaining := copy(b.buf, b.buf[n:])
	b.buf = b.buf[:remaining]
	return nil
}

// Bytes returns the buffered bytes.  The slice is only valid until the
// next mutating call.
func (b *Buffer) Bytes() []byte { return b.buf }

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int { return len(b.buf) }

// Cap returns the current allocated capacity.
func (b *Buffer) Cap() int { return cap(b.buf) }

// Reset empties the buffer.  Storage is kept unless it has grown past
// the initial capacity, in which case it shrinks back to it.
func (b *Buffer) Reset() {
	if cap(b.buf) > b.min {
		b.buf = make([]byte, 0, b.min)
		return
	}
	b.buf = b.buf[:0]
}

// Free releases all storage.  Only called at connection teardown; the
// buffer remains usable and will reallocate on the next Append.
func (b *Buffer) Free() {
	b.buf = nil
}
