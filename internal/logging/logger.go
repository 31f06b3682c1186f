// Package logging provides the structured logger shared by all packages.
// Logs go to stderr; stdout is reserved for listings and machine output.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger. Packages derive child loggers from it
// via Logger.With().
var Logger = newConsoleLogger(os.Stderr)

func newConsoleLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}).With().Timestamp().Logger()
}

// SetOutput redirects log output, preserving console formatting. Used to
// route logs through an active progress bar so lines do not tear.
func SetOutput(w io.Writer) {
	Logger = newConsoleLogger(w)
}

// SetVerbose toggles between info and debug level globally.
func SetVerbose(verbose bool) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
