package util

import "sync"

// DefaultBufSize is the read buffer size for command connections.
// Control traffic is line oriented and tiny; 1 KiB matches the reads
// the protocol was designed around.
const DefaultBufSize = 1024

// BufPool provides reusable byte buffers for connection read loops,
// reducing GC pressure when many clients connect and disconnect.
var BufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, DefaultBufSize)
		return &buf
	},
}

// GetBuf retrieves a buffer from the pool.  Callers must return it
// with [PutBuf] when finished.
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
