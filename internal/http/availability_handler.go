package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/practice-scheduler/internal/application"
	"github.com/example/practice-scheduler/internal/availability"
)

type availabilityService interface {
	CreateTemplate(ctx context.Context, input application.TemplateInput) (availability.Template, error)
	UpdateTemplate(ctx context.Context, templateID string, input application.TemplateInput) (availability.Template, error)
	DeactivateTemplate(ctx context.Context, templateID string) (availability.Template, error)
	ListTemplates(ctx context.Context, professionalID string) ([]availability.Template, error)
	CreateException(ctx context.Context, input application.ExceptionInput) (availability.Exception, error)
	DeleteException(ctx context.Context, exceptionID string) error
	ListExceptions(ctx context.Context, professionalID string) ([]availability.Exception, error)
	GetAvailableSlots(ctx context.Context, params application.GetAvailableSlotsParams) ([]application.Slot, error)
}

// AvailabilityHandler serves template, exception and slot endpoints.
type AvailabilityHandler struct {
	service   availabilityService
	responder responder
	logger    *slog.Logger
}

// NewAvailabilityHandler builds an AvailabilityHandler.
func NewAvailabilityHandler(service availabilityService, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

// ListTemplates handles GET /professionals/{id}/templates.
func (h *AvailabilityHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := h.professionalID(w, r)
	if !ok {
		return
	}

	templates, err := h.service.ListTemplates(r.Context(), professionalID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, templatesResponse{Templates: toTemplateDTOs(templates)})
}

// CreateTemplate handles POST /professionals/{id}/templates.
func (h *AvailabilityHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := h.professionalID(w, r)
	if !ok {
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput(professionalID)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	template, err := h.service.CreateTemplate(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toTemplateDTO(template))
}

// UpdateTemplate handles PUT /templates/{id}.
func (h *AvailabilityHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, ok := h.resourceID(w, r)
	if !ok {
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput("")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	template, err := h.service.UpdateTemplate(r.Context(), templateID, input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toTemplateDTO(template))
}

// DeactivateTemplate handles DELETE /templates/{id}. The template row is kept
// for the audit trail; it just stops producing slots.
func (h *AvailabilityHandler) DeactivateTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, ok := h.resourceID(w, r)
	if !ok {
		return
	}

	if _, err := h.service.DeactivateTemplate(r.Context(), templateID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ListExceptions handles GET /professionals/{id}/exceptions.
func (h *AvailabilityHandler) ListExceptions(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := h.professionalID(w, r)
	if !ok {
		return
	}

	exceptions, err := h.service.ListExceptions(r.Context(), professionalID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, exceptionsResponse{Exceptions: toExceptionDTOs(exceptions)})
}

// CreateException handles POST /professionals/{id}/exceptions.
func (h *AvailabilityHandler) CreateException(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := h.professionalID(w, r)
	if !ok {
		return
	}

	var req exceptionRequest
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

	exception, err := h.service.CreateException(r.Context(), application.ExceptionInput{
		ProfessionalID: professionalID,
		Start:          start,
		End:            end,
		Closed:         req.Closed,
		Reason:         req.Reason,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toExceptionDTO(exception))
}

// DeleteException handles DELETE /exceptions/{id}.
func (h *AvailabilityHandler) DeleteException(w http.ResponseWriter, r *http.Request) {
	exceptionID, ok := h.resourceID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteException(r.Context(), exceptionID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ListSlots handles GET /professionals/{id}/slots?from=...&to=...&duration=...
func (h *AvailabilityHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := h.professionalID(w, r)
	if !ok {
		return
	}

	params, err := buildSlotParams(professionalID, r.URL.Query())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	slots, err := h.service.GetAvailableSlots(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "availability", "list_slots", "professional_id", professionalID).
		InfoContext(r.Context(), "slots served", "count", len(slots))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, slotsResponse{Slots: toSlotDTOs(slots)})
}

func (h *AvailabilityHandler) professionalID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return "", false
	}

	professionalID, ok := ProfessionalIDFromContext(r.Context())
	if !ok || strings.TrimSpace(professionalID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProfessional)
		return "", false
	}
	return professionalID, true
}

func (h *AvailabilityHandler) resourceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return "", false
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return "", false
	}
	return id, true
}

// buildSlotParams parses the slot query. Dates accept either a calendar date
// (2006-01-02) or a full RFC3339 timestamp.
func buildSlotParams(professionalID string, query url.Values) (application.GetAvailableSlotsParams, error) {
	from, err := parseDateParam(query.Get("from"))
	if err != nil {
		return application.GetAvailableSlotsParams{}, errors.New("the from parameter must be a date or RFC3339 timestamp")
	}
	to, err := parseDateParam(query.Get("to"))
	if err != nil {
		return application.GetAvailableSlotsParams{}, errors.New("the to parameter must be a date or RFC3339 timestamp")
	}

	duration := 0
	if raw := strings.TrimSpace(query.Get("duration")); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil {
			return application.GetAvailableSlotsParams{}, errors.New("the duration parameter must be an integer number of minutes")
		}
	}

	return application.GetAvailableSlotsParams{
		ProfessionalID:  professionalID,
		From:            from,
		To:              to,
		DurationMinutes: duration,
	}, nil
}

func parseDateParam(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

type templateRequest struct {
	Weekday       int     `json:"weekday"`
	StartMinute   int     `json:"start_minute"`
	EndMinute     int     `json:"end_minute"`
	SlotMinutes   int     `json:"slot_minutes"`
	ValidFrom     string  `json:"valid_from"`
	ValidUntil    *string `json:"valid_until"`
	OnlineBooking bool    `json:"online_booking"`
}

func (r templateRequest) toInput(professionalID string) (application.TemplateInput, error) {
	validFrom, err := parseTimeField("valid_from", r.ValidFrom)
	if err != nil {
		return application.TemplateInput{}, err
	}
	input := application.TemplateInput{
		ProfessionalID: professionalID,
		Weekday:        time.Weekday(r.Weekday),
		StartMinute:    r.StartMinute,
		EndMinute:      r.EndMinute,
		SlotMinutes:    r.SlotMinutes,
		ValidFrom:      validFrom,
		OnlineBooking:  r.OnlineBooking,
	}
	if r.ValidUntil != nil {
		until, err := parseTimeField("valid_until", *r.ValidUntil)
		if err != nil {
			return application.TemplateInput{}, err
		}
		input.ValidUntil = &until
	}
	return input, nil
}

type templateDTO struct {
	ID             string  `json:"id"`
	ProfessionalID string  `json:"professional_id"`
	Weekday        int     `json:"weekday"`
	StartMinute    int     `json:"start_minute"`
	EndMinute      int     `json:"end_minute"`
	SlotMinutes    int     `json:"slot_minutes"`
	ValidFrom      string  `json:"valid_from"`
	ValidUntil     *string `json:"valid_until,omitempty"`
	Active         bool    `json:"active"`
	OnlineBooking  bool    `json:"online_booking"`
}

type templatesResponse struct {
	Templates []templateDTO `json:"templates"`
}

func toTemplateDTO(template availability.Template) templateDTO {
	dto := templateDTO{
		ID:             template.ID,
		ProfessionalID: template.ProfessionalID,
		Weekday:        int(template.Weekday),
		StartMinute:    template.StartMinute,
		EndMinute:      template.EndMinute,
		SlotMinutes:    template.SlotMinutes,
		ValidFrom:      template.ValidFrom.Format(time.RFC3339),
		Active:         template.Active,
		OnlineBooking:  template.OnlineBooking,
	}
	if template.ValidUntil != nil {
		formatted := template.ValidUntil.Format(time.RFC3339)
		dto.ValidUntil = &formatted
	}
	return dto
}

func toTemplateDTOs(templates []availability.Template) []templateDTO {
	out := make([]templateDTO, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplateDTO(t))
	}
	return out
}

type exceptionRequest struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Closed bool   `json:"closed"`
	Reason string `json:"reason,omitempty"`
}

type exceptionDTO struct {
	ID             string `json:"id"`
	ProfessionalID string `json:"professional_id"`
	Start          string `json:"start"`
	End            string `json:"end"`
	Closed         bool   `json:"closed"`
	Reason         string `json:"reason,omitempty"`
}

type exceptionsResponse struct {
	Exceptions []exceptionDTO `json:"exceptions"`
}

func toExceptionDTO(exception availability.Exception) exceptionDTO {
	return exceptionDTO{
		ID:             exception.ID,
		ProfessionalID: exception.ProfessionalID,
		Start:          exception.Start.Format(time.RFC3339),
		End:            exception.End.Format(time.RFC3339),
		Closed:         exception.Closed,
		Reason:         exception.Reason,
	}
}

func toExceptionDTOs(exceptions []availability.Exception) []exceptionDTO {
	out := make([]exceptionDTO, 0, len(exceptions))
	for _, e := range exceptions {
		out = append(out, toExceptionDTO(e))
	}
	return out
}

type slotDTO struct {
	ProfessionalID string `json:"professional_id"`
	Start          string `json:"start"`
	End            string `json:"end"`
}

type slotsResponse struct {
	Slots []slotDTO `json:"slots"`
}

func toSlotDTOs(slots []application.Slot) []slotDTO {
	out := make([]slotDTO, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotDTO{
			ProfessionalID: s.ProfessionalID,
			Start:          s.Start.Format(time.RFC3339),
			End:            s.End.Format(time.RFC3339),
		})
	}
	return out
}
