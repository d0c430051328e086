// Package logging configures the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	closer io.Closer
)

// Logger returns the process logger. It discards output until Setup runs.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// For returns a logger tagged with a component name.
func For(component string) *slog.Logger {
	return Logger().With("component", component)
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup sends JSON logs to w at the given level.
func Setup(w io.Writer, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()

	logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// SetupFile appends logs to path; used while the TUI owns the terminal.
func SetupFile(path string, level slog.Level) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	Setup(f, level)

	mu.Lock()
	closer = f
	mu.Unlock()
	return nil
}

// Close flushes and closes the log file opened by SetupFile, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	return err
}
