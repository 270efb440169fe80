// Package logger provides a small process-wide structured logger built
// on log/slog, with request-scoped context fields.
//
// Grounded on marmos91-dittofs/internal/logger: a package-level handler,
// context.Context-carried LogContext, and Info/Debug/Warn/Error helpers
// that pull fields out of the context automatically.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu      sync.RWMutex
	handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	base                 = slog.New(handler)
)

// ParseLevel maps a config-file level name (trace, debug, info, warn,
// error) to a slog.Level. "trace" has no slog equivalent and maps to
// Debug. Unknown names are an error, not a silent fallback, so a typo in
// configuration is caught at startup rather than logged away.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "trace", "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("logger: unknown level %q", name)
	}
}

// SetLevel adjusts the minimum log level at runtime (e.g. from
// config.LogLevel at startup).
func SetLevel(level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	base = slog.New(handler)
}

func logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// fieldsFromContext flattens the request-scoped LogContext (if any) into
// slog attribute pairs, prepended to whatever the caller passed.
func fieldsFromContext(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}
	extra := []any{"request_id", lc.RequestID}
	if lc.Peer != "" {
		extra = append(extra, "peer", lc.Peer)
	}
	if lc.Username != "" {
		extra = append(extra, "username", lc.Username)
	}
	return append(extra, args...)
}

// Info logs at INFO level, using ctx (if it carries a LogContext) to
// attach request-scoped fields.
func Info(ctx context.Context, msg string, args ...any) {
	logger().Info(msg, fieldsFromContext(ctx, args)...)
}

// Debug logs at DEBUG level.
func Debug(ctx context.Context, msg string, args ...any) {
	logger().Debug(msg, fieldsFromContext(ctx, args)...)
}

// Warn logs at WARN level.
func Warn(ctx context.Context, msg string, args ...any) {
	logger().Warn(msg, fieldsFromContext(ctx, args)...)
}

// Error logs at ERROR level.
func Error(ctx context.Context, msg string, args ...any) {
	logger().Error(msg, fieldsFromContext(ctx, args)...)
}
