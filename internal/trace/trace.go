// Package trace is a thin wrapper around log/slog for the engine's debug
// tracing. This is the one concern deliberately left on the standard
// library rather than a pack dependency; see DESIGN.md for why.
package trace

import (
	"context"
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

// SetLevel adjusts the minimum level traces are emitted at; the default is
// LevelWarn. internal/config reads PHPLS_LOG_LEVEL into Config.LogLevel,
// but nothing in this module passes it to SetLevel.
func SetLevel(level slog.Level) {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func Debugf(ctx context.Context, msg string, args ...any) {
	logger.DebugContext(ctx, msg, args...)
}

func Infof(ctx context.Context, msg string, args ...any) {
	logger.InfoContext(ctx, msg, args...)
}

func Warnf(ctx context.Context, msg string, args ...any) {
	logger.WarnContext(ctx, msg, args...)
}

func Errorf(ctx context.Context, msg string, args ...any) {
	logger.ErrorContext(ctx, msg, args...)
}
