// Package logging provides the process-wide structured logger used by every
// component of the authentication core.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"sync/atomic"
)

var singleton atomic.Value // stores *slog.Logger

func init() {
	singleton.Store(newDefault())
}

func newDefault() *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if unstructuredLogs() {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// unstructuredLogs mirrors the teacher's UNSTRUCTURED_LOGS toggle: unset or
// unparsable values default to true (human-readable text output).
func unstructuredLogs() bool {
	return unstructuredLogsWithEnv(os.Getenv("PHLOW_UNSTRUCTURED_LOGS"))
}

func unstructuredLogsWithEnv(v string) bool {
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return b
}

// SetDefault replaces the process-wide logger. Intended for host wiring at
// startup and for tests.
func SetDefault(l *slog.Logger) {
	singleton.Store(l)
}

// Default returns the current process-wide logger.
func Default() *slog.Logger {
	return singleton.Load().(*slog.Logger)
}

func Info(msg string, args ...any)  { Default().Info(msg, args...) }
func Warn(msg string, args ...any)  { Default().Warn(msg, args...) }
func Error(msg string, args ...any) { Default().Error(msg, args...) }
func Debug(msg string, args ...any) { Default().Debug(msg, args...) }

// InfoContext/WarnContext/ErrorContext/DebugContext propagate span/trace
// attributes a slog.Handler may read off the context.
func InfoContext(ctx context.Context, msg string, args ...any) {
	Default().InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	Default().WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	Default().ErrorContext(ctx, msg, args...)
}

func DebugContext(ctx context.Context, msg string, args ...any) {
	Default().DebugContext(ctx, msg, args...)
}
