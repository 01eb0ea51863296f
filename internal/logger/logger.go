// Package logger provides a thin wrapper around zerolog.Logger used by every
// linereview component.
//
// Logs never go to stdout: in Neovim stdio mode stdout carries the
// msgpack-RPC stream.
package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/rs/zerolog"
)

// Logger embeds zerolog.Logger so the full zerolog API is available.
type Logger struct {
	zerolog.Logger
}

// NewLogger builds a JSON logger writing to w. Every entry carries a "role"
// field, a timestamp and the calling function under "func".
func NewLogger(role string, w io.Writer, level zerolog.Level) *Logger {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"

	logger := zerolog.New(w).Level(level).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger}
}

// NewFileLogger appends to path, falling back to stderr when path is empty or
// cannot be opened. The returned closer releases the file. A non-nil error
// reports the fallback; the logger is usable either way.
func NewFileLogger(role, path, level string) (*Logger, func(), error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if path == "" {
		return NewLogger(role, os.Stderr, lvl), func() {}, nil
	}

	logFile, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return NewLogger(role, os.Stderr, lvl), func() {}, fmt.Errorf("open log file: %w", err)
	}

	return NewLogger(role, logFile, lvl), func() { _ = logFile.Close() }, nil
}

// Nop returns a *Logger that discards all output.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// GetChildLogger returns a logger inheriting the receiver's fields.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// WithStr returns a child logger with an extra string field.
func (l *Logger) WithStr(key, value string) *Logger {
	return &Logger{l.With().Str(key, value).Logger()}
}
