package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/practice-scheduler/internal/application"
)

type directoryService interface {
	CreateProfessional(ctx context.Context, input application.ProfessionalInput) (application.Professional, error)
	GetProfessional(ctx context.Context, id string) (application.Professional, error)
	ListProfessionals(ctx context.Context) ([]application.Professional, error)
	DeactivateProfessional(ctx context.Context, id string) (application.Professional, error)
	CreateClient(ctx context.Context, input application.ClientInput) (application.Client, error)
	GetClient(ctx context.Context, id string) (application.Client, error)
	ListClients(ctx context.Context) ([]application.Client, error)
	CreatePartner(ctx context.Context, input application.PartnerInput) (application.PartnerOrg, error)
	GetPartner(ctx context.Context, id string) (application.PartnerOrg, error)
	ListPartners(ctx context.Context) ([]application.PartnerOrg, error)
}

// DirectoryHandler serves the professional, client and partner directories.
type DirectoryHandler struct {
	service   directoryService
	responder responder
	logger    *slog.Logger
}

// NewDirectoryHandler builds a DirectoryHandler.
func NewDirectoryHandler(service directoryService, logger *slog.Logger) *DirectoryHandler {
	return &DirectoryHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

// CreateProfessional handles POST /professionals.
func (h *DirectoryHandler) CreateProfessional(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if !h.decode(w, r, &req) {
		return
	}

	professional, err := h.service.CreateProfessional(r.Context(), application.ProfessionalInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toProfessionalDTO(professional))
}

// GetProfessional handles GET /professionals/{id}.
func (h *DirectoryHandler) GetProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathProfessionalID(w, r)
	if !ok {
		return
	}

	professional, err := h.service.GetProfessional(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toProfessionalDTO(professional))
}

// ListProfessionals handles GET /professionals.
func (h *DirectoryHandler) ListProfessionals(w http.ResponseWriter, r *http.Request) {
	professionals, err := h.service.ListProfessionals(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]professionalDTO, 0, len(professionals))
	for _, p := range professionals {
		out = append(out, toProfessionalDTO(p))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, professionalsResponse{Professionals: out})
}

// DeactivateProfessional handles DELETE /professionals/{id}. The record is
// kept so historical appointments stay resolvable.
func (h *DirectoryHandler) DeactivateProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathProfessionalID(w, r)
	if !ok {
		return
	}

	if _, err := h.service.DeactivateProfessional(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// CreateClient handles POST /clients.
func (h *DirectoryHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if !h.decode(w, r, &req) {
		return
	}

	client, err := h.service.CreateClient(r.Context(), application.ClientInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toClientDTO(client))
}

// GetClient handles GET /clients/{id}.
func (h *DirectoryHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathResourceID(w, r)
	if !ok {
		return
	}

	client, err := h.service.GetClient(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toClientDTO(client))
}

// ListClients handles GET /clients.
func (h *DirectoryHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]clientDTO, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientDTO(c))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, clientsResponse{Clients: out})
}

// CreatePartner handles POST /partners.
func (h *DirectoryHandler) CreatePartner(w http.ResponseWriter, r *http.Request) {
	var req partnerRequest
	if !h.decode(w, r, &req) {
		return
	}

	partner, err := h.service.CreatePartner(r.Context(), application.PartnerInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toPartnerDTO(partner))
}

// GetPartner handles GET /partners/{id}.
func (h *DirectoryHandler) GetPartner(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathResourceID(w, r)
	if !ok {
		return
	}

	partner, err := h.service.GetPartner(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPartnerDTO(partner))
}

// ListPartners handles GET /partners.
func (h *DirectoryHandler) ListPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := h.service.ListPartners(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]partnerDTO, 0, len(partners))
	for _, p := range partners {
		out = append(out, toPartnerDTO(p))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, partnersResponse{Partners: out})
}

func (h *DirectoryHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return false
	}
	return true
}

func (h *DirectoryHandler) pathProfessionalID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return "", false
	}
	id, ok := ProfessionalIDFromContext(r.Context())
	if !ok || id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProfessional)
		return "", false
	}
	return id, true
}

func (h *DirectoryHandler) pathResourceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return "", false
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok || id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return "", false
	}
	return id, true
}

type personRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

type partnerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type professionalDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
}

type professionalsResponse struct {
	Professionals []professionalDTO `json:"professionals"`
}

type clientDTO struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	CreatedAt   string `json:"created_at"`
}

type clientsResponse struct {
	Clients []clientDTO `json:"clients"`
}

type partnerDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type partnersResponse struct {
	Partners []partnerDTO `json:"partners"`
}

func toProfessionalDTO(p application.Professional) professionalDTO {
	return professionalDTO{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

func toClientDTO(c application.Client) clientDTO {
	return clientDTO{
		ID:          c.ID,
		DisplayName: c.DisplayName,
		Email:       c.Email,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

func toPartnerDTO(p application.PartnerOrg) partnerDTO {
	return partnerDTO{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
