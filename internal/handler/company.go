package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leadlens/leadlens/internal/auth"
	"github.com/leadlens/leadlens/internal/handler/dto"
	"github.com/leadlens/leadlens/internal/model"
	"github.com/leadlens/leadlens/internal/service"
)

// CompanyHandler handles HTTP requests for company records.
type CompanyHandler struct {
	svc    *service.CompanyService
	logger *slog.Logger
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(svc *service.CompanyService, logger *slog.Logger) *CompanyHandler {
	return &CompanyHandler{
		svc:    svc,
		logger: logger,
	}
}

// companyFilter extracts the list/export filters from query parameters.
func companyFilter(r *http.Request) (model.CompanyFilter, error) {
	query := r.URL.Query()
	filter := model.CompanyFilter{
		Country:  query.Get("country"),
		Keywords: query.Get("keywords"),
	}
	if s := query.Get("email_status"); s != "" {
		status := model.EmailStatus(s)
		if !status.IsValid() {
			return filter, errors.New("email_status must be one of: not_sent, sent, failed")
		}
		filter.EmailStatus = status
	}
	return filter, nil
}

// List handles GET /api/v1/companies.
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	filter, err := companyFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FILTER", err.Error())
		return
	}
	page, limit := paging(r)

	result, err := h.svc.List(r.Context(), authCtx.UserID, filter, page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /api/v1/companies/{id}.
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	company, err := h.svc.Get(r.Context(), authCtx.UserID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, company)
}

// Delete handles DELETE /api/v1/companies/{id}.
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), authCtx.UserID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("company_deleted", "company_id", id, "user_id", authCtx.UserID)

	w.WriteHeader(http.StatusNoContent)
}

// DeleteBatch handles DELETE /api/v1/companies/batch.
func (h *CompanyHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.BatchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	deleted, err := h.svc.DeleteBatch(r.Context(), authCtx.UserID, req.IDs)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("companies_deleted",
		"requested", len(req.IDs),
		"deleted", deleted,
		"user_id", authCtx.UserID,
	)

	writeJSON(w, http.StatusOK, dto.BatchDeleteResponse{Deleted: deleted})
}

// handleServiceError maps service errors to HTTP responses.
func (h *CompanyHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCompanyNotFound):
		writeError(w, http.StatusNotFound, "COMPANY_NOT_FOUND", "Company not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
