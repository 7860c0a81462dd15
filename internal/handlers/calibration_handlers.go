package handlers

import (
	"net/http"

	"tooltrack_backend/internal/middleware"
	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/services"
	"tooltrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CalibrationHandler holds the calibration/maintenance service.
type CalibrationHandler struct {
	calibrationService services.CalibrationService
}

// NewCalibrationHandler creates a new CalibrationHandler.
func NewCalibrationHandler(cs services.CalibrationService) *CalibrationHandler {
	return &CalibrationHandler{calibrationService: cs}
}

// SendToCalibration opens a calibration record and moves the tool out.
func (h *CalibrationHandler) SendToCalibration(c *gin.Context) {
	var req services.SendToCalibrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	record, err := h.calibrationService.SendToCalibration(req, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "SendToCalibration: send failed")
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ReceiveFromCalibration closes a calibration record with its result.
func (h *CalibrationHandler) ReceiveFromCalibration(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ReceiveCalibrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	record, err := h.calibrationService.ReceiveFromCalibration(id, req, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "ReceiveFromCalibration: receive failed")
		return
	}
	c.JSON(http.StatusOK, record)
}

// CancelCalibration aborts an open calibration record.
func (h *CalibrationHandler) CancelCalibration(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	record, err := h.calibrationService.CancelCalibration(id, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "CancelCalibration: cancel failed")
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetCalibrationRecords lists calibration records with filters.
func (h *CalibrationHandler) GetCalibrationRecords(c *gin.Context) {
	start, limit := parsePagination(c)
	toolID, ok := queryInt64(c, "tool_id")
	if !ok {
		return
	}

	records, totalCount, err := h.calibrationService.GetCalibrationRecords(toolID, queryString(c, "status"), start, limit)
	if err != nil {
		respondServiceError(c, err, "GetCalibrationRecords: listing failed")
		return
	}
	if records == nil {
		records = []models.CalibrationRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  records,
		"total": totalCount,
		"start": start,
		"limit": limit,
	})
}

// SendToMaintenance opens a maintenance record and moves the tool out.
func (h *CalibrationHandler) SendToMaintenance(c *gin.Context) {
	var req services.SendToMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	record, err := h.calibrationService.SendToMaintenance(req, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "SendToMaintenance: send failed")
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ReceiveFromMaintenance closes a maintenance record.
func (h *CalibrationHandler) ReceiveFromMaintenance(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ReceiveMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	record, err := h.calibrationService.ReceiveFromMaintenance(id, req, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "ReceiveFromMaintenance: receive failed")
		return
	}
	c.JSON(http.StatusOK, record)
}

// CancelMaintenance aborts an open maintenance record.
func (h *CalibrationHandler) CancelMaintenance(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	record, err := h.calibrationService.CancelMaintenance(id, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "CancelMaintenance: cancel failed")
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetMaintenanceRecords lists maintenance records with filters.
func (h *CalibrationHandler) GetMaintenanceRecords(c *gin.Context) {
	start, limit := parsePagination(c)
	toolID, ok := queryInt64(c, "tool_id")
	if !ok {
		return
	}

	records, totalCount, err := h.calibrationService.GetMaintenanceRecords(toolID, queryString(c, "status"), start, limit)
	if err != nil {
		respondServiceError(c, err, "GetMaintenanceRecords: listing failed")
		return
	}
	if records == nil {
		records = []models.MaintenanceRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  records,
		"total": totalCount,
		"start": start,
		"limit": limit,
	})
}
