package repositories

import (
	"database/sql"
	"errors"
	"time"

	"tooltrack_backend/internal/models"
)

// RegistryRepository defines the interface for the supporting registries:
// warehouses, employees and external providers. These are reference data the
// lifecycle services validate against.
type RegistryRepository interface {
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

type registryRepository struct {
	db *sql.DB
}

// NewRegistryRepository creates a new instance of RegistryRepository.
func NewRegistryRepository(db *sql.DB) RegistryRepository {
	return &registryRepository{db: db}
}

func (r *registryRepository) CreateWarehouse(warehouse *models.Warehouse) (*models.Warehouse, error) {
	now := time.Now()
	warehouse.CreatedAt = now
	warehouse.UpdatedAt = now
	err := r.db.QueryRow(
		`INSERT INTO warehouses (code, name, address, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		warehouse.Code, warehouse.Name, warehouse.Address, warehouse.Active,
		warehouse.CreatedAt, warehouse.UpdatedAt,
	).Scan(&warehouse.ID)
	if err != nil {
		return nil, wrapDBError("creating warehouse", err)
	}
	return warehouse, nil
}

func (r *registryRepository) GetWarehouseByID(id int64) (*models.Warehouse, error) {
	var w models.Warehouse
	var address sql.NullString
	err := r.db.QueryRow(
		`SELECT id, code, name, address, active, created_at, updated_at FROM warehouses WHERE id = $1`, id,
	).Scan(&w.ID, &w.Code, &w.Name, &address, &w.Active, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting warehouse", err)
	}
	if address.Valid {
		w.Address = &address.String
	}
	return &w, nil
}

func (r *registryRepository) GetWarehouses(start, limit int) ([]models.Warehouse, int, error) {
	warehouses := []models.Warehouse{}
	totalCount := 0
	rows, err := r.db.Query(
		`SELECT id, code, name, address, active, created_at, updated_at, COUNT(*) OVER() AS total_count
		 FROM warehouses ORDER BY code LIMIT $1 OFFSET $2`, limit, start)
	if err != nil {
		return nil, 0, wrapDBError("getting warehouses", err)
	}
	defer rows.Close()

	for rows.Next() {
		var w models.Warehouse
		var address sql.NullString
		if err := rows.Scan(&w.ID, &w.Code, &w.Name, &address, &w.Active, &w.CreatedAt, &w.UpdatedAt, &totalCount); err != nil {
			return nil, 0, wrapDBError("scanning warehouse", err)
		}
		if address.Valid {
			w.Address = &address.String
		}
		warehouses = append(warehouses, w)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapDBError("iterating warehouses", err)
	}
	return warehouses, totalCount, nil
}

func (r *registryRepository) CreateEmployee(employee *models.Employee) (*models.Employee, error) {
	now := time.Now()
	employee.CreatedAt = now
	employee.UpdatedAt = now
	err := r.db.QueryRow(
		`INSERT INTO employees (code, full_name, department, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		employee.Code, employee.FullName, employee.Department, employee.Active,
		employee.CreatedAt, employee.UpdatedAt,
	).Scan(&employee.ID)
	if err != nil {
		return nil, wrapDBError("creating employee", err)
	}
	return employee, nil
}

func (r *registryRepository) GetEmployeeByID(id int64) (*models.Employee, error) {
	var e models.Employee
	var department sql.NullString
	err := r.db.QueryRow(
		`SELECT id, code, full_name, department, active, created_at, updated_at FROM employees WHERE id = $1`, id,
	).Scan(&e.ID, &e.Code, &e.FullName, &department, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting employee", err)
	}
	if department.Valid {
		e.Department = &department.String
	}
	return &e, nil
}

func (r *registryRepository) GetEmployees(start, limit int) ([]models.Employee, int, error) {
	employees := []models.Employee{}
	totalCount := 0
	rows, err := r.db.Query(
		`SELECT id, code, full_name, department, active, created_at, updated_at, COUNT(*) OVER() AS total_count
		 FROM employees ORDER BY code LIMIT $1 OFFSET $2`, limit, start)
	if err != nil {
		return nil, 0, wrapDBError("getting employees", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.Employee
		var department sql.NullString
		if err := rows.Scan(&e.ID, &e.Code, &e.FullName, &department, &e.Active, &e.CreatedAt, &e.UpdatedAt, &totalCount); err != nil {
			return nil, 0, wrapDBError("scanning employee", err)
		}
		if department.Valid {
			e.Department = &department.String
		}
		employees = append(employees, e)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapDBError("iterating employees", err)
	}
	return employees, totalCount, nil
}

func (r *registryRepository) CreateProvider(provider *models.Provider) (*models.Provider, error) {
	now := time.Now()
	provider.CreatedAt = now
	provider.UpdatedAt = now
	err := r.db.QueryRow(
		`INSERT INTO providers (name, contact_email, phone, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		provider.Name, provider.ContactEmail, provider.Phone, provider.Active,
		provider.CreatedAt, provider.UpdatedAt,
	).Scan(&provider.ID)
	if err != nil {
		return nil, wrapDBError("creating provider", err)
	}
	return provider, nil
}

func (r *registryRepository) GetProviderByID(id int64) (*models.Provider, error) {
	var p models.Provider
	var email, phone sql.NullString
	err := r.db.QueryRow(
		`SELECT id, name, contact_email, phone, active, created_at, updated_at FROM providers WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &email, &phone, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting provider", err)
	}
	if email.Valid {
		p.ContactEmail = &email.String
	}
	if phone.Valid {
		p.Phone = &phone.String
	}
	return &p, nil
}

func (r *registryRepository) GetProviders(start, limit int) ([]models.Provider, int, error) {
	providers := []models.Provider{}
	totalCount := 0
	rows, err := r.db.Query(
		`SELECT id, name, contact_email, phone, active, created_at, updated_at, COUNT(*) OVER() AS total_count
		 FROM providers ORDER BY name LIMIT $1 OFFSET $2`, limit, start)
	if err != nil {
		return nil, 0, wrapDBError("getting providers", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Provider
		var email, phone sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &email, &phone, &p.Active, &p.CreatedAt, &p.UpdatedAt, &totalCount); err != nil {
			return nil, 0, wrapDBError("scanning provider", err)
		}
		if email.Valid {
			p.ContactEmail = &email.String
		}
		if phone.Valid {
			p.Phone = &phone.String
		}
		providers = append(providers, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapDBError("iterating providers", err)
	}
	return providers, totalCount, nil
}
