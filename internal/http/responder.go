package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/practice-scheduler/internal/application"
)

var (
	errBadRequestBody       = errors.New("the request body is not valid JSON")
	errInvalidProfessional  = errors.New("a professional id is required in the path")
	errInvalidAppointmentID = errors.New("an appointment id is required in the path")
	errInvalidParticipantID = errors.New("a participant id is required in the path")
	errInvalidResourceID    = errors.New("a resource id is required in the path")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError translates the application error taxonomy into HTTP
// status codes. Contention and lifecycle violations are conflicts, not client
// mistakes: the request was well formed, the calendar just moved first.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "the requested resource was not found"})
	case application.IsContention(err):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: contentionCode(err),
			Message:   err.Error(),
		})
	case errors.Is(err, application.ErrInvalidTransition):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "INVALID_TRANSITION",
			Message:   "the operation is not allowed in the appointment's current status",
		})
	case errors.Is(err, application.ErrNotCancellable):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "NOT_CANCELLABLE",
			Message:   "the appointment has already reached a final status",
		})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ALREADY_EXISTS",
			Message:   "a resource with the same identity already exists",
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "the request contains invalid fields",
				Errors:  vErr.FieldErrors,
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "an internal error occurred"})
	}
}

func contentionCode(err error) string {
	switch {
	case errors.Is(err, application.ErrSlotUnavailable):
		return "SLOT_UNAVAILABLE"
	case errors.Is(err, application.ErrSlotNoLongerAvailable):
		return "SLOT_NO_LONGER_AVAILABLE"
	case errors.Is(err, application.ErrParticipantConflict):
		return "PARTICIPANT_CONFLICT"
	}
	return "CONFLICT"
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
