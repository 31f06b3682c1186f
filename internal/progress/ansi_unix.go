//go:build !windows

package progress

import "os"

// enableWindowsANSI is a no-op on platforms where ANSI works natively.
func enableWindowsANSI(f *os.File) {}
