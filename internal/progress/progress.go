// Package progress provides progress reporting for single and multi-file
// transfers. Bars render on stderr; stdout stays clean for listings.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Reporter is the interface transfer code reports progress through.
type Reporter interface {
	Start(total int64, description string)
	Add(n int64)
	Finish()
}

// Bar reports progress for one transfer as a terminal progress bar.
type Bar struct {
	bar *progressbar.ProgressBar
}

// NewBar creates a single-transfer progress reporter.
func NewBar() *Bar {
	return &Bar{}
}

// Start initializes the bar. total may be -1 when the size is unknown, the
// bar then renders as a spinner.
func (p *Bar) Start(total int64, description string) {
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Add advances the bar by n bytes.
func (p *Bar) Add(n int64) {
	if p.bar != nil {
		_ = p.bar.Add64(n)
	}
}

// Finish completes the bar.
func (p *Bar) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Write lets a Bar be used directly as the progress sink of a transfer.
func (p *Bar) Write(data []byte) (int, error) {
	p.Add(int64(len(data)))
	return len(data), nil
}

// Silent is a Reporter that does nothing, for scripted or quiet runs.
type Silent struct{}

func (Silent) Start(total int64, description string) {}
func (Silent) Add(n int64)                           {}
func (Silent) Finish()                               {}

func (Silent) Write(data []byte) (int, error) { return len(data), nil }
