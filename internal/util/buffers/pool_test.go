package buffers

import (
	"testing"

	"github.com/byflash/drive-cli/internal/constants"
)

func TestGetCopyBufferSize(t *testing.T) {
	buf := GetCopyBuffer()
	defer PutCopyBuffer(buf)

	if len(*buf) != constants.CopyBufferSize {
		t.Errorf("buffer size = %d, want %d", len(*buf), constants.CopyBufferSize)
	}
}

func TestPutCopyBufferClears(t *testing.T) {
	buf := GetCopyBuffer()
	(*buf)[0] = 0xFF
	PutCopyBuffer(buf)

	if (*buf)[0] != 0 {
		t.Error("returned buffer must be cleared")
	}
}

func TestPutCopyBufferRejectsWrongSize(t *testing.T) {
	small := make([]byte, 16)
	// Must not panic or pool the misfit buffer.
	PutCopyBuffer(&small)
	PutCopyBuffer(nil)
}
