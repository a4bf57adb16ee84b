package http

import (
	"context"
	"log/slog"

	"github.com/example/practice-scheduler/internal/logging"
)

type contextKey string

const (
	professionalIDContextKey contextKey = "professional_id"
	appointmentIDContextKey  contextKey = "appointment_id"
	participantIDContextKey  contextKey = "participant_id"
	resourceIDContextKey     contextKey = "resource_id"
)

// ContextWithProfessionalID injects the professional identifier resolved from
// the request path.
func ContextWithProfessionalID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, professionalIDContextKey, id)
}

// ProfessionalIDFromContext extracts a professional identifier previously
// associated with the context.
func ProfessionalIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(professionalIDContextKey).(string)
	return id, ok
}

// ContextWithAppointmentID injects the appointment identifier resolved from
// the request path.
func ContextWithAppointmentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, appointmentIDContextKey, id)
}

// AppointmentIDFromContext extracts an appointment identifier previously
// associated with the context.
func AppointmentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(appointmentIDContextKey).(string)
	return id, ok
}

// ContextWithParticipantID injects the participant identifier resolved from
// the request path.
func ContextWithParticipantID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, participantIDContextKey, id)
}

// ParticipantIDFromContext extracts a participant identifier previously
// associated with the context.
func ParticipantIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(participantIDContextKey).(string)
	return id, ok
}

// ContextWithResourceID injects a generic resource identifier (template,
// exception, client, partner) resolved from the request path.
func ContextWithResourceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, resourceIDContextKey, id)
}

// ResourceIDFromContext extracts a generic resource identifier previously
// associated with the context.
func ResourceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(resourceIDContextKey).(string)
	return id, ok
}

// ContextWithLogger returns a derived context carrying the request logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request logger from the context, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
