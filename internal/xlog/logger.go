// Package xlog provides the process-wide structured logger, backed by
// zerolog directly rather than through a generic logging facade, keeping
// call sites simple: each CLI command builds a zerolog.Logger with Default
// and passes it explicitly to the constructors that need it, rather than
// using a package-level mutable singleton.
package xlog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds a logger writing to w (os.Stderr in the CLI entrypoint). debug
// raises the level to Debug; verbose raises it to Info; otherwise Warn.
func New(w io.Writer, debug, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	switch {
	case debug:
		level = zerolog.DebugLevel
	case verbose:
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Discard returns a logger that drops everything.
func Discard() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// Default is a convenience constructor for the common CLI case, writing
// human-readable output to stderr.
func Default(debug, verbose bool) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	l := New(cw, debug, verbose)
	return l
}
