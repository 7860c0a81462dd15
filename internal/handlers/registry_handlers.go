package handlers

import (
	"net/http"

	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/services"
	"tooltrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RegistryHandler exposes the supporting reference registries.
type RegistryHandler struct {
	registryService services.RegistryService
}

// NewRegistryHandler creates a new RegistryHandler.
func NewRegistryHandler(rs services.RegistryService) *RegistryHandler {
	return &RegistryHandler{registryService: rs}
}

// CreateWarehouse registers a new warehouse.
func (h *RegistryHandler) CreateWarehouse(c *gin.Context) {
	var warehouse models.Warehouse
	if err := c.ShouldBindJSON(&warehouse); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	created, err := h.registryService.CreateWarehouse(&warehouse)
	if err != nil {
		respondServiceError(c, err, "CreateWarehouse: creation failed")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetWarehouseByID fetches a single warehouse.
func (h *RegistryHandler) GetWarehouseByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	warehouse, err := h.registryService.GetWarehouseByID(id)
	if err != nil {
		respondServiceError(c, err, "GetWarehouseByID: fetch failed")
		return
	}
	c.JSON(http.StatusOK, warehouse)
}

// GetWarehouses lists warehouses with pagination.
func (h *RegistryHandler) GetWarehouses(c *gin.Context) {
	start, limit := parsePagination(c)
	warehouses, totalCount, err := h.registryService.GetWarehouses(start, limit)
	if err != nil {
		respondServiceError(c, err, "GetWarehouses: listing failed")
		return
	}
	if warehouses == nil {
		warehouses = []models.Warehouse{}
	}
	c.JSON(http.StatusOK, gin.H{"data": warehouses, "total": totalCount, "start": start, "limit": limit})
}

// CreateEmployee registers a new employee.
func (h *RegistryHandler) CreateEmployee(c *gin.Context) {
	var employee models.Employee
	if err := c.ShouldBindJSON(&employee); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	created, err := h.registryService.CreateEmployee(&employee)
	if err != nil {
		respondServiceError(c, err, "CreateEmployee: creation failed")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetEmployeeByID fetches a single employee.
func (h *RegistryHandler) GetEmployeeByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	employee, err := h.registryService.GetEmployeeByID(id)
	if err != nil {
		respondServiceError(c, err, "GetEmployeeByID: fetch failed")
		return
	}
	c.JSON(http.StatusOK, employee)
}

// GetEmployees lists employees with pagination.
func (h *RegistryHandler) GetEmployees(c *gin.Context) {
	start, limit := parsePagination(c)
	employees, totalCount, err := h.registryService.GetEmployees(start, limit)
	if err != nil {
		respondServiceError(c, err, "GetEmployees: listing failed")
		return
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	c.JSON(http.StatusOK, gin.H{"data": employees, "total": totalCount, "start": start, "limit": limit})
}

// CreateProvider registers a new calibration/maintenance provider.
func (h *RegistryHandler) CreateProvider(c *gin.Context) {
	var provider models.Provider
	if err := c.ShouldBindJSON(&provider); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	created, err := h.registryService.CreateProvider(&provider)
	if err != nil {
		respondServiceError(c, err, "CreateProvider: creation failed")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetProviderByID fetches a single provider.
func (h *RegistryHandler) GetProviderByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	provider, err := h.registryService.GetProviderByID(id)
	if err != nil {
		respondServiceError(c, err, "GetProviderByID: fetch failed")
		return
	}
	c.JSON(http.StatusOK, provider)
}

// GetProviders lists providers with pagination.
func (h *RegistryHandler) GetProviders(c *gin.Context) {
	start, limit := parsePagination(c)
	providers, totalCount, err := h.registryService.GetProviders(start, limit)
	if err != nil {
		respondServiceError(c, err, "GetProviders: listing failed")
		return
	}
	if providers == nil {
		providers = []models.Provider{}
	}
	c.JSON(http.StatusOK, gin.H{"data": providers, "total": totalCount, "start": start, "limit": limit})
}
