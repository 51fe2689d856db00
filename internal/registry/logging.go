package registry

import (
	"context"
	"log/slog"

	"github.com/example/contact-registry/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func operationLogger(ctx context.Context, base *slog.Logger, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"component", "registry"}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// logOutcome emits the deferred success or failure line for an operation.
func logOutcome(ctx context.Context, logger *slog.Logger, err error, message string, attrs ...any) {
	if err != nil {
		level := slog.LevelWarn
		if ErrorKind(err) == "unexpected" {
			level = slog.LevelError
		}
		logger.Log(ctx, level, message+" failed", "error", err, "error_kind", ErrorKind(err))
		return
	}
	logger.With(attrs...).DebugContext(ctx, message)
}
