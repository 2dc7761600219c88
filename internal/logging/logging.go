// Package logging builds the application logger.
package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// New returns a timestamped logger writing JSON lines to w.
// Debug enables debug-level events.
func New(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Console returns a human-readable logger writing to w, used by the CLI
func Console(w io.Writer, debug bool) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: true}, debug)
}
