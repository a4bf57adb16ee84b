package http

import (
	"context"
	"log/slog"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// handlerLogger tags the request-scoped logger, or the handler's own when the
// middleware did not attach one, with the handler and operation names.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := LoggerFromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
	}
	tagged := logger.With("handler", handlerName, "operation", operation)
	if len(attrs) == 0 {
		return tagged
	}
	return tagged.With(attrs...)
}
