package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/leadlens/leadlens/internal/auth"
	"github.com/leadlens/leadlens/internal/handler/dto"
	"github.com/leadlens/leadlens/internal/service"
)

// SearchHandler handles HTTP requests for company searches.
type SearchHandler struct {
	svc    *service.SearchService
	logger *slog.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		svc:    svc,
		logger: logger,
	}
}

// Search handles POST /api/v1/search/companies.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	result, err := h.svc.Search(r.Context(), authCtx.UserID, req.Country, req.Keywords, req.Limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("search_completed",
		"user_id", authCtx.UserID,
		"keywords", req.Keywords,
		"country", req.Country,
		"results", result.Total,
		"duplicates_removed", result.DuplicatesRemoved,
	)

	writeJSON(w, http.StatusOK, result)
}

// handleServiceError maps service errors to HTTP responses.
func (h *SearchHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSearchTerm):
		writeError(w, http.StatusBadRequest, "INVALID_SEARCH", "Keywords and country are required")
	case errors.Is(err, service.ErrSearchFailed):
		h.logger.Warn("search_provider_failed", "error", err)
		writeError(w, http.StatusBadGateway, "SEARCH_FAILED", "Company search failed, please try again")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
