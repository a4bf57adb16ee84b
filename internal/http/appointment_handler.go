package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/practice-scheduler/internal/application"
)

type bookingService interface {
	Request(ctx context.Context, params application.RequestAppointmentParams) (application.Appointment, error)
	Approve(ctx context.Context, appointmentID string) (application.Appointment, error)
	Reject(ctx context.Context, appointmentID, reason string) (application.Appointment, error)
	Cancel(ctx context.Context, appointmentID, reason string) (application.Appointment, error)
	Complete(ctx context.Context, appointmentID string) (application.Appointment, error)
	AttachAct(ctx context.Context, appointmentID, actID string) (application.Appointment, error)
	Get(ctx context.Context, appointmentID string) (application.Appointment, []application.Participant, error)
	InviteParticipants(ctx context.Context, params application.InviteParticipantsParams) ([]application.Participant, error)
	RespondToInvitation(ctx context.Context, params application.RespondToInvitationParams) (application.RespondResult, error)
}

// AppointmentHandler serves the appointment lifecycle endpoints.
type AppointmentHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

// NewAppointmentHandler builds an AppointmentHandler.
func NewAppointmentHandler(service bookingService, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

// Create handles POST /appointments: a client's booking request.
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	start, err := parseTimeField("start", req.Start)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	end, err := parseTimeField("end", req.End)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	appointment, err := h.service.Request(r.Context(), application.RequestAppointmentParams{
		ProfessionalID: strings.TrimSpace(req.ProfessionalID),
		ClientID:       strings.TrimSpace(req.ClientID),
		Title:          req.Title,
		Description:    req.Description,
		Kind:           req.Kind,
		Start:          start,
		End:            end,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toAppointmentDTO(appointment))
}

// Get handles GET /appointments/{id}.
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := h.appointmentID(w, r)
	if !ok {
		return
	}

	appointment, participants, err := h.service.Get(r.Context(), appointmentID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, appointmentDetailResponse{
		Appointment:  toAppointmentDTO(appointment),
		Participants: toParticipantDTOs(participants),
	})
}

// Approve handles POST /appointments/{id}/approve.
func (h *AppointmentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "approve", func(ctx context.Context, id string, _ string) (application.Appointment, error) {
		return h.service.Approve(ctx, id)
	})
}

// Reject handles POST /appointments/{id}/reject.
func (h *AppointmentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reject", func(ctx context.Context, id string, reason string) (application.Appointment, error) {
		return h.service.Reject(ctx, id, reason)
	})
}

// Cancel handles POST /appointments/{id}/cancel.
func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel", func(ctx context.Context, id string, reason string) (application.Appointment, error) {
		return h.service.Cancel(ctx, id, reason)
	})
}

// Complete handles POST /appointments/{id}/complete.
func (h *AppointmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "complete", func(ctx context.Context, id string, _ string) (application.Appointment, error) {
		return h.service.Complete(ctx, id)
	})
}

// AttachAct handles POST /appointments/{id}/act.
func (h *AppointmentHandler) AttachAct(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := h.appointmentID(w, r)
	if !ok {
		return
	}

	var req attachActRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	appointment, err := h.service.AttachAct(r.Context(), appointmentID, strings.TrimSpace(req.ActID))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAppointmentDTO(appointment))
}

// ListParticipants handles GET /appointments/{id}/participants.
func (h *AppointmentHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := h.appointmentID(w, r)
	if !ok {
		return
	}

	_, participants, err := h.service.Get(r.Context(), appointmentID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, participantsResponse{
		Participants: toParticipantDTOs(participants),
	})
}

// Invite handles POST /appointments/{id}/participants.
func (h *AppointmentHandler) Invite(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := h.appointmentID(w, r)
	if !ok {
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	parties := make([]application.Party, 0, len(req.Parties))
	for _, p := range req.Parties {
		parties = append(parties, application.Party{
			Kind: application.PartyKind(strings.TrimSpace(p.Kind)),
			ID:   strings.TrimSpace(p.ID),
		})
	}

	created, err := h.service.InviteParticipants(r.Context(), application.InviteParticipantsParams{
		AppointmentID: appointmentID,
		Parties:       parties,
		Role:          application.ParticipantRole(strings.TrimSpace(req.Role)),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "appointments", "invite", "appointment_id", appointmentID).
		InfoContext(r.Context(), "participants invited", "count", len(created))
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, participantsResponse{
		Participants: toParticipantDTOs(created),
	})
}

// Respond handles POST /participants/{id}/response.
func (h *AppointmentHandler) Respond(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	participantID, ok := ParticipantIDFromContext(r.Context())
	if !ok || strings.TrimSpace(participantID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidParticipantID)
		return
	}

	var req responseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.RespondToInvitation(r.Context(), application.RespondToInvitationParams{
		ParticipantID: participantID,
		Decision:      application.ResponseDecision(strings.TrimSpace(req.Decision)),
		Note:          req.Note,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, respondResponse{
		Participant: toParticipantDTO(result.Participant),
		Appointment: toAppointmentDTO(result.Appointment),
	})
}

func (h *AppointmentHandler) appointmentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return "", false
	}

	appointmentID, ok := AppointmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(appointmentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointmentID)
		return "", false
	}
	return appointmentID, true
}

func (h *AppointmentHandler) transition(w http.ResponseWriter, r *http.Request, operation string, apply func(context.Context, string, string) (application.Appointment, error)) {
	appointmentID, ok := h.appointmentID(w, r)
	if !ok {
		return
	}

	// The reason body is optional for transitions that do not use it.
	var req reasonRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	appointment, err := apply(r.Context(), appointmentID, req.Reason)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "appointments", operation, "appointment_id", appointmentID).
		InfoContext(r.Context(), "appointment transition applied", "status", string(appointment.Status))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAppointmentDTO(appointment))
}

type appointmentRequest struct {
	ProfessionalID string `json:"professional_id"`
	ClientID       string `json:"client_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Kind           string `json:"kind"`
	Start          string `json:"start"`
	End            string `json:"end"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type attachActRequest struct {
	ActID string `json:"act_id"`
}

type partyDTO struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type inviteRequest struct {
	Parties []partyDTO `json:"parties"`
	Role    string     `json:"role,omitempty"`
}

type responseRequest struct {
	Decision string `json:"decision"`
	Note     string `json:"note,omitempty"`
}

type appointmentDTO struct {
	ID             string  `json:"id"`
	ProfessionalID string  `json:"professional_id"`
	ClientID       string  `json:"client_id"`
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	Kind           string  `json:"kind,omitempty"`
	Start          string  `json:"start"`
	End            string  `json:"end"`
	Status         string  `json:"status"`
	PublicNotes    string  `json:"public_notes,omitempty"`
	ActID          *string `json:"act_id,omitempty"`
}

type participantDTO struct {
	ID            string   `json:"id"`
	AppointmentID string   `json:"appointment_id"`
	Party         partyDTO `json:"party"`
	Role          string   `json:"role"`
	Response      string   `json:"response"`
	RespondedAt   *string  `json:"responded_at,omitempty"`
	Note          string   `json:"note,omitempty"`
}

type appointmentDetailResponse struct {
	Appointment  appointmentDTO   `json:"appointment"`
	Participants []participantDTO `json:"participants"`
}

type participantsResponse struct {
	Participants []participantDTO `json:"participants"`
}

type respondResponse struct {
	Participant participantDTO `json:"participant"`
	Appointment appointmentDTO `json:"appointment"`
}

func toAppointmentDTO(appointment application.Appointment) appointmentDTO {
	return appointmentDTO{
		ID:             appointment.ID,
		ProfessionalID: appointment.ProfessionalID,
		ClientID:       appointment.ClientID,
		Title:          appointment.Title,
		Description:    appointment.Description,
		Kind:           appointment.Kind,
		Start:          appointment.Start.Format(time.RFC3339),
		End:            appointment.End.Format(time.RFC3339),
		Status:         string(appointment.Status),
		PublicNotes:    appointment.PublicNotes,
		ActID:          appointment.ActID,
	}
}

func toParticipantDTO(participant application.Participant) participantDTO {
	dto := participantDTO{
		ID:            participant.ID,
		AppointmentID: participant.AppointmentID,
		Party:         partyDTO{Kind: string(participant.Party.Kind), ID: participant.Party.ID},
		Role:          string(participant.Role),
		Response:      string(participant.Response),
		Note:          participant.Note,
	}
	if participant.RespondedAt != nil {
		formatted := participant.RespondedAt.Format(time.RFC3339)
		dto.RespondedAt = &formatted
	}
	return dto
}

func toParticipantDTOs(participants []application.Participant) []participantDTO {
	out := make([]participantDTO, 0, len(participants))
	for _, p := range participants {
		out = append(out, toParticipantDTO(p))
	}
	return out
}

// parseTimeField parses an RFC3339 timestamp. An empty value yields the zero
// time so the service layer reports missing fields; a malformed one is a
// client error and must never be coerced to a real instant.
func parseTimeField(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("the %s field must be an RFC3339 timestamp", field)
	}
	return t, nil
}
