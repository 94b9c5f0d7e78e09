// Package logging builds the service's zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// levelRouter sends error and above to stderr and everything else to stdout.
type levelRouter struct {
	stdout io.Writer
	stderr io.Writer
}

func (lr levelRouter) Write(p []byte) (int, error) {
	return lr.stdout.Write(p)
}

func (lr levelRouter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel && level != zerolog.NoLevel {
		return lr.stderr.Write(p)
	}
	return lr.stdout.Write(p)
}

// Options configures New.
type Options struct {
	Level  string // zerolog level name, info when empty
	Format string // json or console
	File   string // optional file receiving every level
}

// New returns a logger writing to stdout/stderr and, if set, opts.File.
// The returned cleanup closes the log file.
func New(opts Options) (zerolog.Logger, func(), error) {
	cleanup := func() {}

	stdout, stderr := io.Writer(os.Stdout), io.Writer(os.Stderr)
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), cleanup, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdout = io.MultiWriter(stdout, f)
		stderr = io.MultiWriter(stderr, f)
	}

	logger, err := newLogger(stdout, stderr, opts)
	if err != nil {
		cleanup()
		return zerolog.Nop(), func() {}, err
	}
	return logger, cleanup, nil
}

func newLogger(stdout, stderr io.Writer, opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("parsing log level: %w", err)
		}
		level = parsed
	}

	if opts.Format == "console" {
		stdout = zerolog.ConsoleWriter{Out: stdout, TimeFormat: time.RFC3339, NoColor: true}
		stderr = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339, NoColor: true}
	}

	return zerolog.New(levelRouter{stdout: stdout, stderr: stderr}).
		Level(level).
		With().Timestamp().
		Logger(), nil
}
