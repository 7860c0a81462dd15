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

// MovementHandler holds the movement service.
type MovementHandler struct {
	movementService services.MovementService
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(ms services.MovementService) *MovementHandler {
	return &MovementHandler{movementService: ms}
}

// CreateMovement handles the creation of a new movement.
func (h *MovementHandler) CreateMovement(c *gin.Context) {
	var req services.CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	movement, err := h.movementService.CreateMovement(req, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "CreateMovement: creation failed")
		return
	}
	c.JSON(http.StatusCreated, movement)
}

// GetMovements handles listing movements with pagination and filters.
func (h *MovementHandler) GetMovements(c *gin.Context) {
	var filters models.MovementFilters
	filters.Start, filters.Limit = parsePagination(c)

	if typeStr := c.Query("type"); typeStr != "" {
		if !models.IsValidMovementType(typeStr) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid movement type.", "type: "+typeStr))
			return
		}
		filters.Type = &typeStr
	}
	if statusStr := c.Query("status"); statusStr != "" {
		if !models.IsValidMovementStatus(statusStr) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid movement status.", "status: "+statusStr))
			return
		}
		filters.Status = &statusStr
	}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid year format.", yearStr))
			return
		}
		filters.Year = &year
	}
	toolID, ok := queryInt64(c, "tool_id")
	if !ok {
		return
	}
	filters.ToolID = toolID

	movements, totalCount, err := h.movementService.GetMovements(filters)
	if err != nil {
		respondServiceError(c, err, "GetMovements: listing failed")
		return
	}
	if movements == nil {
		movements = []models.Movement{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  movements,
		"total": totalCount,
		"start": filters.Start,
		"limit": filters.Limit,
	})
}

// GetMovementByID handles fetching a single movement with its items.
func (h *MovementHandler) GetMovementByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	movement, err := h.movementService.GetMovementByID(id)
	if err != nil {
		respondServiceError(c, err, "GetMovementByID: fetch failed")
		return
	}
	c.JSON(http.StatusOK, movement)
}

// CompleteMovement applies all item transitions of a pending movement.
func (h *MovementHandler) CompleteMovement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	movement, err := h.movementService.CompleteMovement(id, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "CompleteMovement: completion failed")
		return
	}
	c.JSON(http.StatusOK, movement)
}

type cancelMovementRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelMovement cancels a pending movement without mutating any tool.
func (h *MovementHandler) CancelMovement(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req cancelMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	movement, err := h.movementService.CancelMovement(id, req.Reason, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "CancelMovement: cancellation failed")
		return
	}
	c.JSON(http.StatusOK, movement)
}
