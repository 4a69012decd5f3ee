// Package debug provides the process-wide driver logger using log/slog
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	// logger is the global driver logger instance
	logger = newLogger(os.Stderr, false)
	// out is where records are written
	out io.Writer = os.Stderr
	// enabled indicates if debug logging is enabled
	enabled bool
	// mu protects the logger, output and enabled flag
	mu sync.RWMutex
)

// newLogger builds a text logger. When debug is off only warnings and
// errors reach w; leak reports are warnings and stay visible.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Init switches debug logging on or off.
func Init(enable bool) {
	mu.Lock()
	defer mu.Unlock()

	enabled = enable
	logger = newLogger(out, enable)
}

// SetOutput redirects log records to w and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()

	prev := out
	out = w
	logger = newLogger(out, enabled)
	return prev
}

// Enabled returns whether debug logging is enabled
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// With returns a logger with the given attributes
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// Logger returns the underlying slog.Logger instance
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
