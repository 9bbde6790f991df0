// Package logger provides structured logging for the evidence sync engine.
// Messages carry key/value fields (provider, service, region, ...) and are
// written through log/slog. Debug and Info messages are only emitted when
// verbose mode is enabled via the --verbose flag.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Format selects the handler used to render log records.
type Format string

const (
	// FormatText renders key=value lines.
	FormatText Format = "text"
	// FormatJSON renders one JSON object per line.
	FormatJSON Format = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	format  = FormatText
	output  io.Writer = os.Stderr
	base    = build(output, format, verbose)
)

func build(w io.Writer, f Format, v bool) *slog.Logger {
	level := slog.LevelWarn
	if v {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if f == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func rebuild() {
	base = build(output, format, verbose)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	rebuild()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// SetFormat switches between text and JSON output.
func SetFormat(f Format) error {
	f = Format(strings.ToLower(string(f)))
	if f != FormatText && f != FormatJSON {
		return fmt.Errorf("unknown log format %q", f)
	}
	mu.Lock()
	defer mu.Unlock()
	format = f
	rebuild()
	return nil
}

// L returns the current logger. Callers may derive child loggers with With.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// With returns a child logger carrying the given fields.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}

// Debug logs a message with key/value fields if verbose mode is enabled.
func Debug(msg string, args ...any) {
	L().Log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs an informational message if verbose mode is enabled.
func Info(msg string, args ...any) {
	L().Log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs a warning.
func Warn(msg string, args ...any) {
	L().Log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs an error.
func Error(msg string, args ...any) {
	L().Log(context.Background(), slog.LevelError, msg, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose && format == FormatText {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
