// Package logging threads request-scoped slog loggers through contexts, so
// every layer below the HTTP middleware logs with the same request
// attributes.
package logging

import (
	"context"
	"log/slog"
)

// loggerKey is unexported so only this package can place the logger value.
type loggerKey struct{}

// ContextWithLogger attaches logger to ctx. Nil inputs leave ctx untouched.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger attached to ctx. It returns nil rather than
// a default so callers can fall back to their own logger.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return nil
}
