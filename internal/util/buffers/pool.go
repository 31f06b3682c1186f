// Package buffers provides reusable byte buffers for streaming transfers,
// reducing allocations when many files are copied in one batch.
package buffers

import (
	"sync"

	"github.com/byflash/drive-cli/internal/constants"
)

var copyPool = &sync.Pool{
	New: func() interface{} {
		buf := make([]byte, constants.CopyBufferSize)
		return &buf
	},
}

// GetCopyBuffer retrieves a copy buffer from the pool. Return it with
// PutCopyBuffer when done.
//
// Usage:
//
//	buf := buffers.GetCopyBuffer()
//	defer buffers.PutCopyBuffer(buf)
//	io.CopyBuffer(dst, src, *buf)
func GetCopyBuffer() *[]byte {
	return copyPool.Get().(*[]byte)
}

// PutCopyBuffer returns a buffer to the pool. Only buffers of the pooled
// size are accepted. The buffer is cleared first; downloads may carry
// password-protected content that should not linger in memory.
func PutCopyBuffer(buf *[]byte) {
	if buf != nil && len(*buf) == constants.CopyBufferSize {
		clear(*buf)
		copyPool.Put(buf)
	}
}
