package util

import "sync"

// DefaultBufSize is the per-connection buffer size and the bound on a
// single non-blocking read (1 KiB; this is an administrative server,
// lines are short).
const DefaultBufSize = 1024

// BufPool provides reusable scratch buffers for the read path, so the
// event loop does not allocate on every readiness callback.
var BufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, DefaultBufSize)
		return &buf
	},
}

// GetBuf retrieves a scratch buffer from the pool.  Callers must return
// it with [PutBuf] when finished.
func GetBuf() *[]byte {
	return BufPool.Get().(*[]byte)
}

// PutBuf returns a buffer to the pool for reuse.
func PutBuf(buf *[]byte) {
	if buf == nil {
		return
	}
	BufPool.Put(buf)
}
