// Package diskspace provides utilities for checking available disk space
// before starting a download.
package diskspace

import "fmt"

// InsufficientSpaceError indicates that there is not enough disk space available.
type InsufficientSpaceError struct {
	Path           string
	RequiredBytes  int64
	AvailableBytes int64
}

func (e *InsufficientSpaceError) Error() string {
	requiredMB := float64(e.RequiredBytes) / (1024 * 1024)
	availableMB := float64(e.AvailableBytes) / (1024 * 1024)
	return fmt.Sprintf("insufficient disk space for %s: need %.2f MB, have %.2f MB available",
		e.Path, requiredMB, availableMB)
}

// IsInsufficientSpaceError checks if an error is an InsufficientSpaceError.
func IsInsufficientSpaceError(err error) bool {
	_, ok := err.(*InsufficientSpaceError)
	return ok
}

// CheckAvailableSpace checks if there is sufficient disk space for a file
// to be created at targetPath. The path itself may not exist yet; the
// containing directory is statted.
//
// safetyMargin is a multiplier on requiredBytes (e.g. 1.1 for a 10% buffer).
//
// When the filesystem cannot be statted at all (network mounts, virtual
// filesystems) the check passes and the write fails naturally later.
func CheckAvailableSpace(targetPath string, requiredBytes int64, safetyMargin float64) error {
	availableBytes := GetAvailableSpace(targetPath)
	if availableBytes == 0 {
		return nil
	}

	requiredWithMargin := int64(float64(requiredBytes) * safetyMargin)
	if availableBytes < requiredWithMargin {
		return &InsufficientSpaceError{
			Path:           targetPath,
			RequiredBytes:  requiredWithMargin,
			AvailableBytes: availableBytes,
		}
	}
	return nil
}
