// Package paths provides utilities for local path handling in downloads.
package paths

import (
	"fmt"
	"path/filepath"
)

// DownloadTarget pairs a remote file with its local destination. Batch
// downloads plan all targets up front so collisions are resolved before
// any byte is written.
type DownloadTarget struct {
	FileID    string // Drive file id
	Name      string // remote filename
	LocalPath string // full local destination path
	Size      int64  // size in bytes, 0 when unknown
}

// ResolveCollisions makes every LocalPath unique. When several targets
// share one path, each gets its file id appended before the extension.
//
// Example: two files named "output.zip" become:
//   - output_f123.zip
//   - output_f456.zip
//
// Without this, concurrent downloads of same-named files would write over
// each other. Returns the slice (modified in place) and the number of
// targets that were renamed.
func ResolveCollisions(targets []DownloadTarget) ([]DownloadTarget, int) {
	if len(targets) == 0 {
		return targets, 0
	}

	pathToIndices := make(map[string][]int)
	for i, t := range targets {
		pathToIndices[t.LocalPath] = append(pathToIndices[t.LocalPath], i)
	}

	renamed := 0
	for path, indices := range pathToIndices {
		if len(indices) <= 1 {
			continue
		}

		renamed += len(indices)
		for _, idx := range indices {
			t := &targets[idx]
			ext := filepath.Ext(path)
			base := path[:len(path)-len(ext)]
			t.LocalPath = fmt.Sprintf("%s_%s%s", base, t.FileID, ext)
		}
	}

	return targets, renamed
}

// TotalSize sums the planned sizes, for disk space preflight.
func TotalSize(targets []DownloadTarget) int64 {
	var total int64
	for _, t := range targets {
		total += t.Size
	}
	return total
}
