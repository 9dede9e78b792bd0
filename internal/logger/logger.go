// Package logger provides verbose logging for the refsync CLI.
// When verbose mode is enabled via the --verbose flag, debug and info
// messages are printed to stderr to help users follow a sync run.
// Errors are always printed.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	base              = newLogger(os.Stderr)
)

func newLogger(w io.Writer) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(cw).With().Timestamp().Logger()
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
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
	base = newLogger(w)
}

// Output returns the current log writer.
func Output() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	With().Debug(format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	With().Info(format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	With().Warn(format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	With().Error(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		base.Info().Msgf("=== %s ===", name)
	}
}

// Fields is a logger carrying structured key-value fields.
type Fields struct {
	kv []string
}

// With returns a logger that adds the given key-value pairs to every message.
// Pairs are read as key1, value1, key2, value2; a trailing key is dropped.
func With(kv ...string) Fields {
	if len(kv)%2 != 0 {
		kv = kv[:len(kv)-1]
	}
	return Fields{kv: kv}
}

// With returns a copy of f with extra key-value pairs.
func (f Fields) With(kv ...string) Fields {
	next := With(kv...)
	next.kv = append(append([]string{}, f.kv...), next.kv...)
	return next
}

// Debug prints a message if verbose mode is enabled.
func (f Fields) Debug(format string, args ...any) {
	f.emit(zerolog.DebugLevel, false, format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func (f Fields) Info(format string, args ...any) {
	f.emit(zerolog.InfoLevel, false, format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func (f Fields) Warn(format string, args ...any) {
	f.emit(zerolog.WarnLevel, false, format, args...)
}

// Error prints an error message regardless of verbose mode.
func (f Fields) Error(format string, args ...any) {
	f.emit(zerolog.ErrorLevel, true, format, args...)
}

func (f Fields) emit(level zerolog.Level, always bool, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !always && !verbose {
		return
	}

	ev := base.WithLevel(level)
	for i := 0; i+1 < len(f.kv); i += 2 {
		ev = ev.Str(f.kv[i], f.kv[i+1])
	}
	ev.Msgf(format, args...)
}
