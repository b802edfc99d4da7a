package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/leadlens/leadlens/internal/auth"
	"github.com/leadlens/leadlens/internal/service"
)

// HistoryHandler handles HTTP requests for search history.
type HistoryHandler struct {
	svc    *service.HistoryService
	logger *slog.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(svc *service.HistoryService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/search-history.
// Entries are grouped by exact keyword string, most recent first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	page, limit := paging(r)

	result, err := h.svc.ListRollups(r.Context(), authCtx.UserID, page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Statistics handles GET /api/v1/search-history/statistics.
func (h *HistoryHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	stats, err := h.svc.Statistics(r.Context(), authCtx.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Get handles GET /api/v1/search-history/{id}.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	entry, err := h.svc.Get(r.Context(), authCtx.UserID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// CompaniesByKeywords handles GET /api/v1/search-history/keywords/{keywords}/companies.
func (h *HistoryHandler) CompaniesByKeywords(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	keywords := keywordsParam(r)
	page, limit := paging(r)

	result, err := h.svc.CompaniesByKeywords(r.Context(), authCtx.UserID, keywords, page, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /api/v1/search-history/{id}.
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), authCtx.UserID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("search_history_deleted", "history_id", id, "user_id", authCtx.UserID)

	w.WriteHeader(http.StatusNoContent)
}

// DeleteByKeywords handles DELETE /api/v1/search-history/keywords/{keywords}.
func (h *HistoryHandler) DeleteByKeywords(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	keywords := keywordsParam(r)

	if err := h.svc.DeleteByKeywords(r.Context(), authCtx.UserID, keywords); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("search_history_deleted_by_keywords",
		"keywords", keywords,
		"user_id", authCtx.UserID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/v1/search-history/clear/all.
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	if err := h.svc.Clear(r.Context(), authCtx.UserID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("search_history_cleared", "user_id", authCtx.UserID)

	w.WriteHeader(http.StatusNoContent)
}

// keywordsParam decodes the {keywords} path parameter. Keywords may
// contain spaces, which arrive percent-encoded.
func keywordsParam(r *http.Request) string {
	raw := chi.URLParam(r, "keywords")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// handleServiceError maps service errors to HTTP responses.
func (h *HistoryHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrHistoryNotFound):
		writeError(w, http.StatusNotFound, "HISTORY_NOT_FOUND", "Search history not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
