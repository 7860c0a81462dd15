package handlers

import (
	"net/http"
	"strconv"

	"tooltrack_backend/internal/middleware"
	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/services"
	"tooltrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ToolHandler holds the tool service.
type ToolHandler struct {
	toolService services.ToolService
}

// NewToolHandler creates a new ToolHandler.
func NewToolHandler(ts services.ToolService) *ToolHandler {
	return &ToolHandler{toolService: ts}
}

// CreateTool handles the registration of a new tool.
func (h *ToolHandler) CreateTool(c *gin.Context) {
	var req services.CreateToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	tool, err := h.toolService.CreateTool(req, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "CreateTool: creation failed")
		return
	}
	c.JSON(http.StatusCreated, tool)
}

// GetTools handles listing tools with pagination and filters.
func (h *ToolHandler) GetTools(c *gin.Context) {
	var filters models.ToolFilters
	filters.Start, filters.Limit = parsePagination(c)

	if statusStr := c.Query("status"); statusStr != "" {
		if !models.IsValidToolStatus(statusStr) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid status value.", "status: "+statusStr))
			return
		}
		filters.Status = &statusStr
	}
	warehouseID, ok := queryInt64(c, "warehouse_id")
	if !ok {
		return
	}
	filters.WarehouseID = warehouseID
	if rcStr := c.Query("requires_calibration"); rcStr != "" {
		rc, err := strconv.ParseBool(rcStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid requires_calibration value.", rcStr))
			return
		}
		filters.RequiresCalibration = &rc
	}
	if activeStr := c.Query("active"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid active value.", activeStr))
			return
		}
		filters.Active = &active
	}

	tools, totalCount, err := h.toolService.GetTools(filters)
	if err != nil {
		respondServiceError(c, err, "GetTools: listing failed")
		return
	}
	if tools == nil {
		tools = []models.Tool{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  tools,
		"total": totalCount,
		"start": filters.Start,
		"limit": filters.Limit,
	})
}

// GetToolByID handles fetching a single tool.
func (h *ToolHandler) GetToolByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	tool, err := h.toolService.GetToolByID(id)
	if err != nil {
		respondServiceError(c, err, "GetToolByID: fetch failed")
		return
	}
	c.JSON(http.StatusOK, tool)
}

// TransitionTool handles a direct status transition on a tool.
func (h *ToolHandler) TransitionTool(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.TransitionToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	tool, err := h.toolService.TransitionTool(id, req, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "TransitionTool: transition failed")
		return
	}
	c.JSON(http.StatusOK, tool)
}

// GetStatusHistory handles fetching a tool's transition history.
func (h *ToolHandler) GetStatusHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	history, err := h.toolService.GetStatusHistory(id, limit)
	if err != nil {
		respondServiceError(c, err, "GetStatusHistory: fetch failed")
		return
	}
	if history == nil {
		history = []models.StatusTransition{}
	}
	c.JSON(http.StatusOK, gin.H{"data": history})
}
