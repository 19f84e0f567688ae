// Package logging builds the process logger. The terminal belongs to the UI,
// so debug output goes to a JSON log file and is discarded otherwise.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

type Options struct {
	Debug bool
	Path  string // empty means DefaultPath()
}

// DefaultPath names a fresh debug log in the working directory
func DefaultPath() string {
	return fmt.Sprintf("medi_debug_%s.log", time.Now().Format("20060102_150405"))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns the logger and a closer for its file. The closer is never nil.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	if !opts.Debug {
		return slog.New(slog.DiscardHandler), nopCloser{}, nil
	}

	path := opts.Path
	if path == "" {
		path = DefaultPath()
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("logging.start", "path", path, "pid", os.Getpid())
	return logger, f, nil
}
