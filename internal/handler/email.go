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

// EmailHandler handles HTTP requests for outreach email dispatch.
type EmailHandler struct {
	svc    *service.EmailService
	logger *slog.Logger
}

// NewEmailHandler creates a new EmailHandler.
func NewEmailHandler(svc *service.EmailService, logger *slog.Logger) *EmailHandler {
	return &EmailHandler{
		svc:    svc,
		logger: logger,
	}
}

// Send handles POST /api/v1/email/send.
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.SendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	outcome, err := h.svc.SendToCompany(r.Context(), authCtx.UserID, req.CompanyID, req.TemplateID, req.Subject, req.Body)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("email_dispatched",
		"company_id", req.CompanyID,
		"success", outcome.Success,
		"user_id", authCtx.UserID,
	)

	writeJSON(w, http.StatusOK, outcome)
}

// SendBatch handles POST /api/v1/email/batch-send.
func (h *EmailHandler) SendBatch(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.BatchSendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	result, err := h.svc.SendBatch(r.Context(), authCtx.UserID, req.CompanyIDs, req.TemplateID, req.Subject, req.Body)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("email_batch_dispatched",
		"requested", len(req.CompanyIDs),
		"sent", result.Sent,
		"failed", result.Failed,
		"user_id", authCtx.UserID,
	)

	writeJSON(w, http.StatusOK, result)
}

// handleServiceError maps service errors to HTTP responses.
func (h *EmailHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCompanyNotFound):
		writeError(w, http.StatusNotFound, "COMPANY_NOT_FOUND", "Company not found")
	case errors.Is(err, service.ErrTemplateNotFound):
		writeError(w, http.StatusNotFound, "TEMPLATE_NOT_FOUND", "Email template not found")
	case errors.Is(err, service.ErrNoRecipientEmail):
		writeError(w, http.StatusBadRequest, "NO_RECIPIENT_EMAIL", "Company has no email address")
	case errors.Is(err, service.ErrEmailSendFailed):
		h.logger.Warn("email_delivery_failed", "error", err)
		writeError(w, http.StatusBadGateway, "EMAIL_SEND_FAILED", "Email delivery failed")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
