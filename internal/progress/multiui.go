package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// MultiUI renders one progress bar per file for batched transfers.
// On a non-terminal stderr the bars are disabled and plain lines are
// printed instead.
type MultiUI struct {
	progress   *mpb.Progress
	isTerminal bool
	totalFiles int
	started    int32
}

// NewMultiUI creates a multi-file transfer UI for totalFiles files.
func NewMultiUI(totalFiles int) *MultiUI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))

	var p *mpb.Progress
	if isTerminal {
		enableWindowsANSI(os.Stderr)
		p = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(300*time.Millisecond),
			mpb.WithWidth(100),
		)
	} else {
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	return &MultiUI{
		progress:   p,
		isTerminal: isTerminal,
		totalFiles: totalFiles,
	}
}

// FileBar tracks one file within a MultiUI.
type FileBar struct {
	bar  *mpb.Bar
	ui   *MultiUI
	name string
	size int64
}

// AddFile creates a progress bar for one file transfer.
func (u *MultiUI) AddFile(name string, size int64) *FileBar {
	index := int(atomic.AddInt32(&u.started, 1))

	fb := &FileBar{ui: u, name: name, size: size}

	if u.isTerminal {
		fb.bar = u.progress.New(size,
			mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
			mpb.PrependDecorators(
				decor.Name(fmt.Sprintf("[%d/%d] %s", index, u.totalFiles, name), decor.WCSyncSpaceR),
			),
			mpb.AppendDecorators(
				decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
				decor.Name("  "),
				decor.Percentage(decor.WCSyncSpace),
			),
			mpb.BarRemoveOnComplete(),
		)
	} else {
		fmt.Fprintf(os.Stderr, "[%d/%d] %s (%.1f MiB)\n",
			index, u.totalFiles, name, float64(size)/(1024*1024))
	}
	return fb
}

// Write advances the bar; a FileBar doubles as the transfer's progress sink.
func (f *FileBar) Write(data []byte) (int, error) {
	if f.bar != nil {
		f.bar.IncrBy(len(data))
	}
	return len(data), nil
}

// Complete finishes the bar and prints the per-file outcome line above the
// remaining bars.
func (f *FileBar) Complete(err error) {
	var msg string
	if err == nil {
		if f.bar != nil {
			f.bar.SetCurrent(f.size)
			f.bar.SetTotal(f.size, true)
		}
		msg = fmt.Sprintf("✓ %s\n", f.name)
	} else {
		if f.bar != nil {
			f.bar.Abort(true)
		}
		msg = fmt.Sprintf("✗ %s: %v\n", f.name, err)
	}

	if f.ui.isTerminal {
		f.ui.progress.Write([]byte(msg))
	} else {
		fmt.Fprint(os.Stderr, msg)
	}
}

// Wait blocks until all bars have rendered their final state.
func (u *MultiUI) Wait() {
	if u.progress != nil {
		u.progress.Wait()
	}
}

// LogWriter returns a writer that prints above active bars without tearing.
func (u *MultiUI) LogWriter() io.Writer {
	if u.progress != nil && u.isTerminal {
		return u.progress
	}
	return os.Stderr
}
