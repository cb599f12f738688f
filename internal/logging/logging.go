// Package logging builds the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options mirror the log section of the configuration.
type Options struct {
	File   string
	Level  string
	Pretty bool
	// Interactive is set when a full-screen UI owns the terminal, so
	// nothing may be written to stderr.
	Interactive bool
}

// Setup installs the global logger and returns it with a closer for the
// log file, if one was opened.
func Setup(opts Options) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("parse log level: %w", err)
		}
		level = l
	}

	var w io.Writer
	var closer io.Closer = nopCloser{}
	switch {
	case opts.File != "":
		file, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file %s: %w", opts.File, err)
		}
		closer = file
		if opts.Pretty {
			w = zerolog.ConsoleWriter{Out: file, NoColor: true}
		} else {
			w = file
		}
	case opts.Interactive:
		w = io.Discard
	default:
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Caller().Logger()
	log.Logger = logger
	logger.Debug().Msg("logger set up")
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
