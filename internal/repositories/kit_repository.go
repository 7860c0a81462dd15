package repositories

import (
	"database/sql"
	"errors"
	"time"

	"tooltrack_backend/internal/models"
)

// KitRepository defines the interface for kit composition persistence. Kit
// status is never stored; read paths return composition only and callers
// derive status from member tools.
type KitRepository interface {
	CreateKit(executor SQLExecutor, kit *models.Kit) (*models.Kit, error)
	GetKitByID(executor SQLExecutor, id int64) (*models.Kit, error)
	GetKits(start, limit int) ([]models.Kit, int, error)
	GetKitTools(executor SQLExecutor, kitID int64) (map[int64]*models.Tool, error)
}

type kitRepository struct {
	db *sql.DB
}

// NewKitRepository creates a new instance of KitRepository.
func NewKitRepository(db *sql.DB) KitRepository {
	return &kitRepository{db: db}
}

func (r *kitRepository) CreateKit(executor SQLExecutor, kit *models.Kit) (*models.Kit, error) {
	if executor == nil {
		executor = r.db
	}
	now := time.Now()
	kit.CreatedAt = now
	kit.UpdatedAt = now
	err := executor.QueryRow(
		`INSERT INTO kits (code, name, description, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		kit.Code, kit.Name, kit.Description, kit.Active, kit.CreatedAt, kit.UpdatedAt,
	).Scan(&kit.ID)
	if err != nil {
		return nil, wrapDBError("creating kit", err)
	}

	for i := range kit.Items {
		item := &kit.Items[i]
		item.KitID = kit.ID
		err := executor.QueryRow(
			`INSERT INTO kit_items (kit_id, tool_id, quantity, required) VALUES ($1, $2, $3, $4) RETURNING id`,
			item.KitID, item.ToolID, item.Quantity, item.Required,
		).Scan(&item.ID)
		if err != nil {
			return nil, wrapDBError("creating kit item", err)
		}
	}
	return kit, nil
}

func (r *kitRepository) GetKitByID(executor SQLExecutor, id int64) (*models.Kit, error) {
	if executor == nil {
		executor = r.db
	}
	var kit models.Kit
	var description sql.NullString
	err := executor.QueryRow(
		`SELECT id, code, name, description, active, created_at, updated_at FROM kits WHERE id = $1`, id,
	).Scan(&kit.ID, &kit.Code, &kit.Name, &description, &kit.Active, &kit.CreatedAt, &kit.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting kit", err)
	}
	if description.Valid {
		kit.Description = &description.String
	}

	rows, err := executor.Query(
		`SELECT id, kit_id, tool_id, quantity, required FROM kit_items WHERE kit_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, wrapDBError("getting kit items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.KitItem
		if err := rows.Scan(&item.ID, &item.KitID, &item.ToolID, &item.Quantity, &item.Required); err != nil {
			return nil, wrapDBError("scanning kit item", err)
		}
		kit.Items = append(kit.Items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapDBError("iterating kit items", err)
	}
	return &kit, nil
}

func (r *kitRepository) GetKits(start, limit int) ([]models.Kit, int, error) {
	kits := []models.Kit{}
	totalCount := 0

	rows, err := r.db.Query(
		`SELECT id, code, name, description, active, created_at, updated_at, COUNT(*) OVER() AS total_count
		 FROM kits ORDER BY code LIMIT $1 OFFSET $2`, limit, start)
	if err != nil {
		return nil, 0, wrapDBError("getting kits", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kit models.Kit
		var description sql.NullString
		if err := rows.Scan(&kit.ID, &kit.Code, &kit.Name, &description, &kit.Active,
			&kit.CreatedAt, &kit.UpdatedAt, &totalCount); err != nil {
			return nil, 0, wrapDBError("scanning kit", err)
		}
		if description.Valid {
			kit.Description = &description.String
		}
		kits = append(kits, kit)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapDBError("iterating kits", err)
	}
	return kits, totalCount, nil
}

// GetKitTools resolves the current tool row for every kit member in one
// query, keyed by tool id. Missing tools are simply absent from the map.
func (r *kitRepository) GetKitTools(executor SQLExecutor, kitID int64) (map[int64]*models.Tool, error) {
	if executor == nil {
		executor = r.db
	}
	rows, err := executor.Query(
		`SELECT `+toolColumns+` FROM tools WHERE id IN (SELECT tool_id FROM kit_items WHERE kit_id = $1)`, kitID)
	if err != nil {
		return nil, wrapDBError("getting kit tools", err)
	}
	defer rows.Close()

	tools := map[int64]*models.Tool{}
	for rows.Next() {
		tool, err := scanTool(rows)
		if err != nil {
			return nil, wrapDBError("scanning kit tool", err)
		}
		tools[tool.ID] = tool
	}
	if err = rows.Err(); err != nil {
		return nil, wrapDBError("iterating kit tools", err)
	}
	return tools, nil
}
