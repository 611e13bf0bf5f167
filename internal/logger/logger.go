// Package logger provides logging for docqa.
//
// The package-level functions trace the ingestion and answer pipelines when
// verbose mode is enabled via the --verbose flag. Warnings are always
// printed. New builds the structured logger used by long-running servers.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	trace             = newTrace(output, false)
)

// New returns a structured logger writing text records to w.
// Debug records are only emitted when verbose is true.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newTrace builds the pipeline trace logger. Records carry no timestamp so
// CLI output stays readable.
func newTrace(w io.Writer, enabled bool) *slog.Logger {
	level := slog.LevelWarn
	if enabled {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	trace = newTrace(output, verbose)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	trace = newTrace(output, verbose)
}

// Trace returns the pipeline trace logger for structured attributes.
func Trace() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return trace
}

func logf(level slog.Level, format string, args ...any) {
	l := Trace()
	if !l.Enabled(context.Background(), level) {
		return
	}
	l.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(slog.LevelDebug, format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	Trace().Debug("section", slog.String("name", name))
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(slog.LevelInfo, format, args...)
}

// Warn prints a warning message. Warnings are printed even when verbose
// mode is disabled.
func Warn(format string, args ...any) {
	logf(slog.LevelWarn, format, args...)
}
