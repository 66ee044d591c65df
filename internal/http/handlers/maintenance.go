package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/assetpm-backend/internal/domain/maintenance"
	"github.com/yungbote/assetpm-backend/internal/http/response"
	"github.com/yungbote/assetpm-backend/internal/platform/logger"
	"github.com/yungbote/assetpm-backend/internal/services"
)

type MaintenanceHandler struct {
	log    *logger.Logger
	rows   services.RowService
	events services.EventService
}

func NewMaintenanceHandler(log *logger.Logger, rows services.RowService, events services.EventService) *MaintenanceHandler {
	return &MaintenanceHandler{
		log:    log.With("handler", "MaintenanceHandler"),
		rows:   rows,
		events: events,
	}
}

// GET /api/maintenance/rows?customer_id=&branch=
func (h *MaintenanceHandler) ListRows(c *gin.Context) {
	customerID, err := strconv.ParseInt(strings.TrimSpace(c.Query("customer_id")), 10, 64)
	if err != nil || customerID <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_customer_id", errors.New("customer_id must be a positive integer"))
		return
	}
	branch := strings.TrimSpace(c.Query("branch"))
	if branch == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_branch", errors.New("branch is required"))
		return
	}

	rows, err := h.rows.ListRows(c.Request.Context(), customerID, branch)
	if err != nil {
		h.log.Warn("list rows failed", "customer_id", customerID, "branch", branch, "error", err)
		response.RespondAPIError(c, "list_rows_failed", err)
		return
	}
	if rows == nil {
		rows = []maintenance.Row{}
	}
	response.RespondOK(c, rows)
}

// GET /api/categories/:id/checklist
func (h *MaintenanceHandler) ListChecklist(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || categoryID <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_category_id", errors.New("category id must be a positive integer"))
		return
	}
	defs, err := h.rows.ListChecklist(c.Request.Context(), categoryID)
	if err != nil {
		response.RespondAPIError(c, "list_checklist_failed", err)
		return
	}
	if defs == nil {
		defs = []maintenance.ChecklistDefinition{}
	}
	response.RespondOK(c, defs)
}

// POST /api/maintenance/events
func (h *MaintenanceHandler) SubmitEvent(c *gin.Context) {
	var in maintenance.SubmitEventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.events.Submit(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, "submit_event_failed", err)
		return
	}
	h.log.Info("pm event submitted", "pm_id", res.PMID, "asset_id", in.AssetID)
	response.RespondCreated(c, res)
}
