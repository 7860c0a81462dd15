package handlers

import (
	"net/http"

	"tooltrack_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// AlertHandler holds the alert service.
type AlertHandler struct {
	alertService services.AlertService
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(as services.AlertService) *AlertHandler {
	return &AlertHandler{alertService: as}
}

// GetCalibrationAlerts returns the calibration dashboard, most urgent first.
func (h *AlertHandler) GetCalibrationAlerts(c *gin.Context) {
	alerts, err := h.alertService.GetCalibrationAlerts(queryString(c, "severity"))
	if err != nil {
		respondServiceError(c, err, "GetCalibrationAlerts: scan failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": alerts})
}

// GetExpiredCalibrations returns only tools past their calibration due date.
func (h *AlertHandler) GetExpiredCalibrations(c *gin.Context) {
	alerts, err := h.alertService.GetExpiredCalibrations()
	if err != nil {
		respondServiceError(c, err, "GetExpiredCalibrations: scan failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": alerts})
}
