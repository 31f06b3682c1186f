// Package constants holds the application-wide tuning knobs.
package constants

const (
	// CopyBufferSize - buffer size for streaming file bodies to disk (256 KB).
	// Larger than the io.Copy default to cut syscall overhead on fast links.
	CopyBufferSize = 256 * 1024

	// DiskSpaceBufferPercent - additional space to require beyond the file
	// size when preflighting a download (10%).
	DiskSpaceBufferPercent = 0.10
)
