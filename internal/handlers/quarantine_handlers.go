package handlers

import (
	"net/http"

	"tooltrack_backend/internal/middleware"
	"tooltrack_backend/internal/services"
	"tooltrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// QuarantineHandler holds the quarantine/decommission service.
type QuarantineHandler struct {
	quarantineService services.QuarantineService
}

// NewQuarantineHandler creates a new QuarantineHandler.
func NewQuarantineHandler(qs services.QuarantineService) *QuarantineHandler {
	return &QuarantineHandler{quarantineService: qs}
}

// OpenQuarantine isolates a tool pending investigation.
func (h *QuarantineHandler) OpenQuarantine(c *gin.Context) {
	var req services.OpenQuarantineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	record, err := h.quarantineService.OpenQuarantine(req, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "OpenQuarantine: open failed")
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ResolveQuarantine closes a quarantine and returns the tool to service.
func (h *QuarantineHandler) ResolveQuarantine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ResolveQuarantineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	record, err := h.quarantineService.ResolveQuarantine(id, req, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "ResolveQuarantine: resolve failed")
		return
	}
	c.JSON(http.StatusOK, record)
}

// CancelQuarantine voids a quarantine and restores the previous status.
func (h *QuarantineHandler) CancelQuarantine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.quarantineService.CancelQuarantine(id, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "CancelQuarantine: cancel failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetQuarantineRecord fetches a single quarantine record.
func (h *QuarantineHandler) GetQuarantineRecord(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	record, err := h.quarantineService.GetQuarantineRecord(id)
	if err != nil {
		respondServiceError(c, err, "GetQuarantineRecord: fetch failed")
		return
	}
	c.JSON(http.StatusOK, record)
}

// RequestDecommission files a decommission request for a tool.
func (h *QuarantineHandler) RequestDecommission(c *gin.Context) {
	var req services.RequestDecommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	record, err := h.quarantineService.RequestDecommission(req, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "RequestDecommission: request failed")
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ApproveDecommission approves a request and retires the tool.
func (h *QuarantineHandler) ApproveDecommission(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	record, err := h.quarantineService.ApproveDecommission(id, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "ApproveDecommission: approval failed")
		return
	}
	c.JSON(http.StatusOK, record)
}

// RejectDecommission rejects a request, leaving the tool untouched.
func (h *QuarantineHandler) RejectDecommission(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.RejectDecommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	record, err := h.quarantineService.RejectDecommission(id, req, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "RejectDecommission: rejection failed")
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetDecommissionRecord fetches a single decommission request.
func (h *QuarantineHandler) GetDecommissionRecord(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	record, err := h.quarantineService.GetDecommissionRecord(id)
	if err != nil {
		respondServiceError(c, err, "GetDecommissionRecord: fetch failed")
		return
	}
	c.JSON(http.StatusOK, record)
}
