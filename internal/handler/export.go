package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/leadlens/leadlens/internal/auth"
	"github.com/leadlens/leadlens/internal/service"
)

// ExportHandler handles HTTP requests for company exports.
type ExportHandler struct {
	svc    *service.ExportService
	logger *slog.Logger
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(svc *service.ExportService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		svc:    svc,
		logger: logger,
	}
}

// Excel handles GET /api/v1/export/excel. Accepts the same filters as
// the company listing and streams a workbook attachment.
func (h *ExportHandler) Excel(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	filter, err := companyFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FILTER", err.Error())
		return
	}

	export, err := h.svc.Generate(r.Context(), authCtx.UserID, filter)
	if err != nil {
		h.logger.Error("export_failed", "error", err, "user_id", authCtx.UserID)
		writeError(w, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to generate export")
		return
	}

	h.logger.Info("export_generated",
		"filename", export.Filename,
		"bytes", len(export.Content),
		"user_id", authCtx.UserID,
	)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Content)
}
