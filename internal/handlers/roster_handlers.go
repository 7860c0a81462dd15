package handlers

import (
	"net/http"

	"tooltrack_backend/internal/middleware"
	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/services"
	"tooltrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RosterHandler holds the roster service.
type RosterHandler struct {
	rosterService services.RosterService
}

// NewRosterHandler creates a new RosterHandler.
func NewRosterHandler(rs services.RosterService) *RosterHandler {
	return &RosterHandler{rosterService: rs}
}

// Assign books a tool or kit to an employee.
func (h *RosterHandler) Assign(c *gin.Context) {
	var req services.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	assignment, err := h.rosterService.Assign(req, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "Assign: assignment failed")
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

// ReturnAssignment closes an open assignment.
func (h *RosterHandler) ReturnAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ReturnAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	assignment, err := h.rosterService.ReturnAssignment(id, req, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "ReturnAssignment: return failed")
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// ExtendAssignment pushes an open assignment's expected return date forward.
func (h *RosterHandler) ExtendAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ExtendAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	assignment, err := h.rosterService.ExtendAssignment(id, req, middleware.ActorID(c))
	if err != nil {
		respondServiceError(c, err, "ExtendAssignment: extension failed")
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// GetAssignmentByID fetches one assignment with the overdue projection.
func (h *RosterHandler) GetAssignmentByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	assignment, err := h.rosterService.GetAssignmentByID(id)
	if err != nil {
		respondServiceError(c, err, "GetAssignmentByID: fetch failed")
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// GetAssignments lists assignments with pagination and filters.
func (h *RosterHandler) GetAssignments(c *gin.Context) {
	var filters models.RosterFilters
	filters.Start, filters.Limit = parsePagination(c)

	employeeID, ok := queryInt64(c, "employee_id")
	if !ok {
		return
	}
	filters.EmployeeID = employeeID
	filters.Status = queryString(c, "status")
	filters.OverdueOnly = c.Query("overdue_only") == "true"

	assignments, totalCount, err := h.rosterService.GetAssignments(filters)
	if err != nil {
		respondServiceError(c, err, "GetAssignments: listing failed")
		return
	}
	if assignments == nil {
		assignments = []models.RosterAssignment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  assignments,
		"total": totalCount,
		"start": filters.Start,
		"limit": filters.Limit,
	})
}

// GetOverdueAssignments reports every open assignment past its return date.
func (h *RosterHandler) GetOverdueAssignments(c *gin.Context) {
	assignments, err := h.rosterService.GetOverdueAssignments()
	if err != nil {
		respondServiceError(c, err, "GetOverdueAssignments: report failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assignments})
}
