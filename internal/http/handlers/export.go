package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
	"github.com/yungbote/assetpm-backend/internal/http/response"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
	"github.com/yungbote/assetpm-backend/internal/services"
)

type ExportHandler struct {
	log     *logger.Logger
	exports services.ExportService
}

func NewExportHandler(log *logger.Logger, exports services.ExportService) *ExportHandler {
	return &ExportHandler{log: log.With("handler", "ExportHandler"), exports: exports}
}

// POST /api/maintenance/export
func (h *ExportHandler) Export(c *gin.Context) {
	var req maintenance.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if len(req.PMIDs) == 0 {
		response.RespondError(c, http.StatusBadRequest, "no_selection", errors.New("no PM events selected"))
		return
	}

	doc, err := h.exports.Render(c.Request.Context(), req.PMIDs)
	if err != nil {
		h.log.Warn("export failed", "pm_ids", len(req.PMIDs), "error", err)
		response.RespondAPIError(c, "export_failed", err)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename})
	c.Header("Content-Disposition", disposition)
	c.Header(maintenance.HeaderExportCustomer, doc.Customer)
	c.Header(maintenance.HeaderExportBranch, doc.Branch)
	c.Header(maintenance.HeaderExportTimestamp, doc.Timestamp)
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

// GET /api/maintenance/exports?limit=
func (h *ExportHandler) ListRuns(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	runs, err := h.exports.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.RespondAPIError(c, "list_exports_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"exports": runs})
}
