//go:build windows

package progress

import (
	"os"

	"golang.org/x/sys/windows"
)

// enableWindowsANSI enables Virtual Terminal processing so ANSI escape
// sequences render correctly in the Windows console.
func enableWindowsANSI(f *os.File) {
	handle := windows.Handle(f.Fd())
	var mode uint32

	if err := windows.GetConsoleMode(handle, &mode); err == nil {
		const enableVirtualTerminalProcessing = 0x0004
		_ = windows.SetConsoleMode(handle, mode|enableVirtualTerminalProcessing)
	}
}
