// Package obslog constructs the charmbracelet/log logger threaded through
// every component's constructor. There is no package-level singleton: every
// caller receives and passes its own *log.Logger explicitly.
package obslog

import (
	"io"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w at the given verbosity. verbose selects
// debug-level output; otherwise the logger reports warnings and above,
// matching the quiet default used by the simulate subcommand.
func New(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

// Discard returns a logger that drops everything, for tests that need a
// *log.Logger but don't care about its output.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}
