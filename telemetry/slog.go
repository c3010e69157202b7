package telemetry

import (
	"context"
	"log/slog"
)

// SlogLogger implements Logger against log/slog, standing in for the
// teacher's ClueLogger (goa.design/clue/log is a dropped dependency — see
// DESIGN.md). The keyvals convention (msg, then alternating key/value
// pairs) matches ClueLogger's so call sites translate unchanged.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps logger, or slog.Default if nil.
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return SlogLogger{logger: logger}
}

func (l SlogLogger) Debug(ctx context.Context, msg string, keyvals ...any) {
	l.logger.DebugContext(ctx, msg, keyvals...)
}

func (l SlogLogger) Info(ctx context.Context, msg string, keyvals ...any) {
	l.logger.InfoContext(ctx, msg, keyvals...)
}

func (l SlogLogger) Warn(ctx context.Context, msg string, keyvals ...any) {
	l.logger.WarnContext(ctx, msg, keyvals...)
}

func (l SlogLogger) Error(ctx context.Context, msg string, keyvals ...any) {
	l.logger.ErrorContext(ctx, msg, keyvals...)
}
