// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// levelEnv overrides the default info level, e.g. "debug" or "warn".
const levelEnv = "BANKNOTE_LOG_LEVEL"

// New creates the default tracker logger: human-readable console output at
// info level unless BANKNOTE_LOG_LEVEL says otherwise.
func New() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(level()).With().Timestamp().Logger()
}

// NewWithWriter creates a logger writing JSON lines to w. Used by tests and
// anything that wants machine-readable output.
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(level()).With().Timestamp().Logger()
}

func level() zerolog.Level {
	raw := os.Getenv(levelEnv)
	if raw == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
