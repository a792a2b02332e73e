package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process-wide logger. Level accepts zerolog's names
// (debug, info, warn, error); anything unrecognized falls back to info.
// Pretty selects the human console writer for local runs, JSON otherwise.
func New(level string, pretty bool) zerolog.Logger {
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return build(level, w).With().Caller().Logger()
}

// NewWithWriter builds a logger against an arbitrary writer, so tests
// can capture and decode the output.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	return build(level, w)
}

func build(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
