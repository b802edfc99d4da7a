package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leadlens/leadlens/internal/auth"
	"github.com/leadlens/leadlens/internal/handler/dto"
	"github.com/leadlens/leadlens/internal/service"
)

// TemplateHandler handles HTTP requests for email templates.
type TemplateHandler struct {
	svc    *service.TemplateService
	logger *slog.Logger
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(svc *service.TemplateService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/email-templates.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	templates, err := h.svc.List(r.Context(), authCtx.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, templates)
}

// GetDefault handles GET /api/v1/email-templates/default.
func (h *TemplateHandler) GetDefault(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	t, err := h.svc.GetDefault(r.Context(), authCtx.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// Get handles GET /api/v1/email-templates/{id}.
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	t, err := h.svc.Get(r.Context(), authCtx.UserID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// Create handles POST /api/v1/email-templates.
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	t, err := h.svc.Create(r.Context(), authCtx.UserID, req.Name, req.Subject, req.Content, req.IsDefault)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("template_created",
		"template_id", t.ID,
		"is_default", t.IsDefault,
		"user_id", authCtx.UserID,
	)

	writeJSON(w, http.StatusCreated, t)
}

// Update handles PUT /api/v1/email-templates/{id}.
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.UpdateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	t, err := h.svc.Update(r.Context(), authCtx.UserID, id, req.Name, req.Subject, req.Content, req.IsDefault)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("template_updated", "template_id", id, "user_id", authCtx.UserID)

	writeJSON(w, http.StatusOK, t)
}

// SetDefault handles PUT /api/v1/email-templates/{id}/set-default.
func (h *TemplateHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	t, err := h.svc.SetDefault(r.Context(), authCtx.UserID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("template_set_default", "template_id", id, "user_id", authCtx.UserID)

	writeJSON(w, http.StatusOK, t)
}

// Delete handles DELETE /api/v1/email-templates/{id}.
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), authCtx.UserID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("template_deleted", "template_id", id, "user_id", authCtx.UserID)

	w.WriteHeader(http.StatusNoContent)
}

// InitDefaults handles POST /api/v1/email-templates/init-defaults.
// Makes sure the user has a default template, seeding the built-in
// outreach template when needed.
func (h *TemplateHandler) InitDefaults(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	seeded, err := h.svc.EnsureSeed(r.Context(), authCtx.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if seeded == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already initialized"})
		return
	}

	h.logger.Info("template_seeded", "template_id", seeded.ID, "user_id", authCtx.UserID)

	writeJSON(w, http.StatusCreated, seeded)
}

// handleServiceError maps service errors to HTTP responses.
func (h *TemplateHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		writeError(w, http.StatusNotFound, "TEMPLATE_NOT_FOUND", "Email template not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
