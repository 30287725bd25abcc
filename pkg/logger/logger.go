// Package logger provides a structured zerolog logger for rssimon.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Init creates and returns a zerolog.Logger configured with the given log level.
// Supported levels: debug, info, warn, error. Defaults to info.
// Output is human-readable on a terminal and raw JSON otherwise, so hub logs
// redirected to a file stay machine-parseable.
func Init(level string) zerolog.Logger {
	var lvl zerolog.Level
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	default:
		lvl = zerolog.InfoLevel
	}

	var out zerolog.Logger
	if term.IsTerminal(int(os.Stderr.Fd())) {
		out = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	} else {
		out = zerolog.New(os.Stderr)
	}

	return out.Level(lvl).With().Timestamp().Logger()
}
