package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger. Level comes from LOG_LEVEL (debug, info,
// warn, error), defaulting to info; LOG_PRETTY=true switches to the
// console writer for local runs.
func New(service string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(os.Getenv("LOG_PRETTY"), "true") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(out, service)
}

// NewWithWriter builds a logger against a custom writer; tests use this
// with a buffer.
func NewWithWriter(w io.Writer, service string) zerolog.Logger {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}
	return zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", service).
		Logger()
}
