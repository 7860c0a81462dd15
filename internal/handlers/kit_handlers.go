package handlers

import (
	"net/http"

	"tooltrack_backend/internal/middleware"
	"tooltrack_backend/internal/services"
	"tooltrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// KitHandler holds the kit service.
type KitHandler struct {
	kitService services.KitService
}

// NewKitHandler creates a new KitHandler.
func NewKitHandler(ks services.KitService) *KitHandler {
	return &KitHandler{kitService: ks}
}

// CreateKit handles the creation of a new kit.
func (h *KitHandler) CreateKit(c *gin.Context) {
	var req services.CreateKitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	kit, err := h.kitService.CreateKit(req, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "CreateKit: creation failed")
		return
	}
	c.JSON(http.StatusCreated, kit)
}

// GetKits lists kits with their derived statuses.
func (h *KitHandler) GetKits(c *gin.Context) {
	start, limit := parsePagination(c)

	kits, totalCount, err := h.kitService.GetKits(start, limit)
	if err != nil {
		respondServiceError(c, err, "GetKits: listing failed")
		return
	}
	if kits == nil {
		kits = []services.KitView{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  kits,
		"total": totalCount,
		"start": start,
		"limit": limit,
	})
}

// GetKitByID fetches one kit with its derived status.
func (h *KitHandler) GetKitByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.kitService.GetKitByID(id)
	if err != nil {
		respondServiceError(c, err, "GetKitByID: fetch failed")
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetKitStatus returns the full derived status report for a kit.
func (h *KitHandler) GetKitStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	report, err := h.kitService.GetKitStatusReport(id)
	if err != nil {
		respondServiceError(c, err, "GetKitStatus: report failed")
		return
	}
	c.JSON(http.StatusOK, report)
}
