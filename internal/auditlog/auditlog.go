// Package auditlog implements the append-only run log shared by both pipelines.
//
// Every call appends one UTC-timestamped line to a fixed file in the run's
// output directory and echoes it to the operator-visible stream. There is no
// rotation and no level filtering; call sites decide what is worth a line.
package auditlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Log is an append-only, timestamped line sink.
type Log struct {
	path string
	echo io.Writer
	now  func() time.Time
}

type options struct {
	// Private members exported for tests.
	echo io.Writer
	now  func() time.Time
}

// Options represents an optional function to override Log default values.
type Options func(*options)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Options {
	return func(o *options) {
		o.now = now
	}
}

// WithEcho overrides the operator-visible stream.
func WithEcho(w io.Writer) Options {
	return func(o *options) {
		o.echo = w
	}
}

// New returns a Log appending to fileName inside dir.
// The file is created on first write; dir must already exist.
func New(dir, fileName string, args ...Options) *Log {
	opts := options{
		echo: os.Stdout,
		now:  time.Now,
	}
	for _, opt := range args {
		opt(&opts)
	}

	return &Log{
		path: filepath.Join(dir, fileName),
		echo: opts.echo,
		now:  opts.now,
	}
}

// Printf appends one timestamped line and echoes it.
// Write failures are reported to the diagnostic logger, never to the caller:
// the run must not abort because its log file is unwritable.
func (l *Log) Printf(format string, args ...any) {
	ts := l.now().UTC().Format(time.RFC3339)
	line := fmt.Sprintf("%s %s\n", ts, fmt.Sprintf(format, args...))

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		slog.Warn("Failed to open audit log", "file", l.path, "error", err)
	} else {
		defer f.Close()
		if _, err := f.WriteString(line); err != nil {
			slog.Warn("Failed to append to audit log", "file", l.path, "error", err)
		}
	}

	fmt.Fprint(l.echo, line)
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}
