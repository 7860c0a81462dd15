package services

import (
	"errors"
	"fmt"

	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/repositories"
)

// RegistryService exposes the supporting reference registries. The lifecycle
// services validate against the same repository directly.
type RegistryService interface {
	CreateWarehouse(warehouse *models.Warehouse) (*models.Warehouse, error)
	GetWarehouseByID(id int64) (*models.Warehouse, error)
	GetWarehouses(start, limit int) ([]models.Warehouse, int, error)

	CreateEmployee(employee *models.Employee) (*models.Employee, error)
	GetEmployeeByID(id int64) (*models.Employee, error)
	GetEmployees(start, limit int) ([]models.Employee, int, error)

	CreateProvider(provider *models.Provider) (*models.Provider, error)
	GetProviderByID(id int64) (*models.Provider, error)
	GetProviders(start, limit int) ([]models.Provider, int, error)
}

type registryService struct {
	registryRepo repositories.RegistryRepository
}

// NewRegistryService creates a new instance of RegistryService.
func NewRegistryService(registryRepo repositories.RegistryRepository) RegistryService {
	return &registryService{registryRepo: registryRepo}
}

func clampPage(start, limit int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if start < 0 {
		start = 0
	}
	return start, limit
}

func (s *registryService) CreateWarehouse(warehouse *models.Warehouse) (*models.Warehouse, error) {
	if warehouse.Code == "" || warehouse.Name == "" {
		return nil, fmt.Errorf("%w: warehouse code and name are required", ErrValidation)
	}
	warehouse.Active = true
	created, err := s.registryRepo.CreateWarehouse(warehouse)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: warehouse code '%s' already exists", ErrValidation, warehouse.Code)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return created, nil
}

func (s *registryService) GetWarehouseByID(id int64) (*models.Warehouse, error) {
	warehouse, err := s.registryRepo.GetWarehouseByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrWarehouseNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return warehouse, nil
}

func (s *registryService) GetWarehouses(start, limit int) ([]models.Warehouse, int, error) {
	start, limit = clampPage(start, limit)
	warehouses, totalCount, err := s.registryRepo.GetWarehouses(start, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return warehouses, totalCount, nil
}

func (s *registryService) CreateEmployee(employee *models.Employee) (*models.Employee, error) {
	if employee.Code == "" || employee.FullName == "" {
		return nil, fmt.Errorf("%w: employee code and full name are required", ErrValidation)
	}
	employee.Active = true
	created, err := s.registryRepo.CreateEmployee(employee)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: employee code '%s' already exists", ErrValidation, employee.Code)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return created, nil
}

func (s *registryService) GetEmployeeByID(id int64) (*models.Employee, error) {
	employee, err := s.registryRepo.GetEmployeeByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrEmployeeNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return employee, nil
}

func (s *registryService) GetEmployees(start, limit int) ([]models.Employee, int, error) {
	start, limit = clampPage(start, limit)
	employees, totalCount, err := s.registryRepo.GetEmployees(start, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return employees, totalCount, nil
}

func (s *registryService) CreateProvider(provider *models.Provider) (*models.Provider, error) {
	if provider.Name == "" {
		return nil, fmt.Errorf("%w: provider name is required", ErrValidation)
	}
	provider.Active = true
	created, err := s.registryRepo.CreateProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return created, nil
}

func (s *registryService) GetProviderByID(id int64) (*models.Provider, error) {
	provider, err := s.registryRepo.GetProviderByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrProviderNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return provider, nil
}

func (s *registryService) GetProviders(start, limit int) ([]models.Provider, int, error) {
	start, limit = clampPage(start, limit)
	providers, totalCount, err := s.registryRepo.GetProviders(start, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return providers, totalCount, nil
}
