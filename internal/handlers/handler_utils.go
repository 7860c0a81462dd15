package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"tooltrack_backend/internal/services"
	"tooltrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError translates the service error taxonomy into the HTTP
// contract: validation 400, not-found 404, business-rule and concurrency
// conflicts 409, prevented partial application 422, infrastructure 503.
func respondServiceError(c *gin.Context, err error, logContext string) {
	utils.LogError(err, logContext)

	var partial *services.PartialApplicationError
	if errors.As(err, &partial) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeUnprocessable, partial.Error(), ""),
			"failures": partial.Failures,
		})
		c.Abort()
		return
	}

	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
	case errors.Is(err, services.ErrToolNotFound),
		errors.Is(err, services.ErrMovementNotFound),
		errors.Is(err, services.ErrRecordNotFound),
		errors.Is(err, services.ErrKitNotFound),
		errors.Is(err, services.ErrAssignmentNotFound),
		errors.Is(err, services.ErrEmployeeNotFound),
		errors.Is(err, services.ErrProviderNotFound),
		errors.Is(err, services.ErrWarehouseNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), ""))
	case errors.Is(err, services.ErrIllegalTransition),
		errors.Is(err, services.ErrTerminalState),
		errors.Is(err, services.ErrDuplicateOpenRecord),
		errors.Is(err, services.ErrDuplicateActiveQuarantine),
		errors.Is(err, services.ErrAlreadyAssigned),
		errors.Is(err, services.ErrAssetUnavailable),
		errors.Is(err, services.ErrMovementNotEditable),
		errors.Is(err, services.ErrConcurrentModification):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
	case errors.Is(err, services.ErrRepositoryUnavailable):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeServiceUnavailable, "Storage temporarily unavailable.", ""))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Internal error.", ""))
	}
}

// parseIDParam reads a positive int64 path parameter or responds 400.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(name))
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" parameter.", c.Param(name)))
		return 0, false
	}
	return id, true
}

// parsePagination reads start/limit query params with the ledger defaults.
func parsePagination(c *gin.Context) (int, int) {
	start, err := strconv.Atoi(c.DefaultQuery("start", "0"))
	if err != nil || start < 0 {
		start = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	return start, limit
}

func queryInt64(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := utils.StrToInt64(raw)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", raw))
		return nil, false
	}
	return &id, true
}

func queryString(c *gin.Context, name string) *string {
	return utils.NewNullString(c.Query(name))
}
