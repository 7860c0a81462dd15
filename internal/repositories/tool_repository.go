package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tooltrack_backend/internal/models"
)

// ToolRepository defines the interface for tool-related database operations.
type ToolRepository interface {
	CreateTool(executor SQLExecutor, tool *models.Tool) (*models.Tool, error)
	GetToolByID(executor SQLExecutor, id int64) (*models.Tool, error)
	GetToolByCode(executor SQLExecutor, code string) (*models.Tool, error)
	GetTools(filters models.ToolFilters) ([]models.Tool, int, error)
	UpdateTool(executor SQLExecutor, tool *models.Tool, expectedVersion int64) error
	AppendStatusHistory(executor SQLExecutor, transition *models.StatusTransition) error
	GetStatusHistory(toolID int64, limit int) ([]models.StatusTransition, error)
	GetLastTransitionTo(executor SQLExecutor, toolID int64, status models.ToolStatus) (*models.StatusTransition, error)
}

type toolRepository struct {
	db *sql.DB
}

// NewToolRepository creates a new instance of ToolRepository.
func NewToolRepository(db *sql.DB) ToolRepository {
	return &toolRepository{db: db}
}

// wrapDBError normalizes driver errors, mapping unique-constraint violations
// to ErrDuplicateKey so callers can branch without driver knowledge.
func wrapDBError(context string, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate") {
		return fmt.Errorf("%w: %s: %v", ErrDuplicateKey, context, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrDatabaseError, context, err)
}

const toolColumns = `id, code, name, description, status, condition, warehouse_id, location_id,
	requires_calibration, calibration_interval_days, last_calibration_date, next_calibration_date,
	active, version, created_at, updated_at`

func scanTool(s scanner) (*models.Tool, error) {
	var tool models.Tool
	var description, condition sql.NullString
	var warehouseID, locationID sql.NullInt64
	var intervalDays sql.NullInt64
	var lastCal, nextCal sql.NullTime

	err := s.Scan(
		&tool.ID, &tool.Code, &tool.Name, &description, &tool.Status, &condition,
		&warehouseID, &locationID, &tool.RequiresCalibration, &intervalDays,
		&lastCal, &nextCal, &tool.Active, &tool.Version, &tool.CreatedAt, &tool.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		tool.Description = &description.String
	}
	if condition.Valid {
		tool.Condition = &condition.String
	}
	if warehouseID.Valid {
		tool.WarehouseID = &warehouseID.Int64
	}
	if locationID.Valid {
		tool.LocationID = &locationID.Int64
	}
	if intervalDays.Valid {
		days := int(intervalDays.Int64)
		tool.CalibrationIntervalDays = &days
	}
	if lastCal.Valid {
		tool.LastCalibrationDate = &lastCal.Time
	}
	if nextCal.Valid {
		tool.NextCalibrationDate = &nextCal.Time
	}
	return &tool, nil
}

func (r *toolRepository) CreateTool(executor SQLExecutor, tool *models.Tool) (*models.Tool, error) {
	if executor == nil {
		executor = r.db
	}
	now := time.Now()
	if tool.Status == "" {
		tool.Status = models.ToolStatusAvailable
	}
	tool.Version = 1
	tool.CreatedAt = now
	tool.UpdatedAt = now

	query := `INSERT INTO tools
		(code, name, description, status, condition, warehouse_id, location_id,
		 requires_calibration, calibration_interval_days, last_calibration_date, next_calibration_date,
		 active, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`

	err := executor.QueryRow(query,
		tool.Code, tool.Name, tool.Description, tool.Status, tool.Condition,
		tool.WarehouseID, tool.LocationID, tool.RequiresCalibration, tool.CalibrationIntervalDays,
		tool.LastCalibrationDate, tool.NextCalibrationDate, tool.Active, tool.Version,
		tool.CreatedAt, tool.UpdatedAt,
	).Scan(&tool.ID)
	if err != nil {
		return nil, wrapDBError("creating tool", err)
	}
	return tool, nil
}

func (r *toolRepository) GetToolByID(executor SQLExecutor, id int64) (*models.Tool, error) {
	if executor == nil {
		executor = r.db
	}
	query := `SELECT ` + toolColumns + ` FROM tools WHERE id = $1`
	tool, err := scanTool(executor.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting tool by id", err)
	}
	return tool, nil
}

func (r *toolRepository) GetToolByCode(executor SQLExecutor, code string) (*models.Tool, error) {
	if executor == nil {
		executor = r.db
	}
	query := `SELECT ` + toolColumns + ` FROM tools WHERE code = $1`
	tool, err := scanTool(executor.QueryRow(query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting tool by code", err)
	}
	return tool, nil
}

func (r *toolRepository) GetTools(filters models.ToolFilters) ([]models.Tool, int, error) {
	tools := []models.Tool{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + toolColumns + `, COUNT(*) OVER() AS total_count FROM tools`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.WarehouseID != nil {
		conditions = append(conditions, fmt.Sprintf("warehouse_id = $%d", argCount))
		args = append(args, *filters.WarehouseID)
		argCount++
	}
	if filters.RequiresCalibration != nil {
		conditions = append(conditions, fmt.Sprintf("requires_calibration = $%d", argCount))
		args = append(args, *filters.RequiresCalibration)
		argCount++
	}
	if filters.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", argCount))
		args = append(args, *filters.Active)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY code")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.Limit, filters.Start)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError("getting tools", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tool models.Tool
		var description, condition sql.NullString
		var warehouseID, locationID, intervalDays sql.NullInt64
		var lastCal, nextCal sql.NullTime

		if err := rows.Scan(
			&tool.ID, &tool.Code, &tool.Name, &description, &tool.Status, &condition,
			&warehouseID, &locationID, &tool.RequiresCalibration, &intervalDays,
			&lastCal, &nextCal, &tool.Active, &tool.Version, &tool.CreatedAt, &tool.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, wrapDBError("scanning tool", err)
		}

		if description.Valid {
			tool.Description = &description.String
		}
		if condition.Valid {
			tool.Condition = &condition.String
		}
		if warehouseID.Valid {
			tool.WarehouseID = &warehouseID.Int64
		}
		if locationID.Valid {
			tool.LocationID = &locationID.Int64
		}
		if intervalDays.Valid {
			days := int(intervalDays.Int64)
			tool.CalibrationIntervalDays = &days
		}
		if lastCal.Valid {
			tool.LastCalibrationDate = &lastCal.Time
		}
		if nextCal.Valid {
			tool.NextCalibrationDate = &nextCal.Time
		}
		tools = append(tools, tool)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapDBError("iterating tools", err)
	}
	return tools, totalCount, nil
}

// UpdateTool persists the tool row with an optimistic compare-and-swap on the
// version column. On success the tool's Version is incremented in place; a
// stale expectedVersion yields ErrVersionConflict.
func (r *toolRepository) UpdateTool(executor SQLExecutor, tool *models.Tool, expectedVersion int64) error {
	if executor == nil {
		executor = r.db
	}
	tool.UpdatedAt = time.Now()
	query := `UPDATE tools SET
		name = $1, description = $2, status = $3, condition = $4,
		warehouse_id = $5, location_id = $6, requires_calibration = $7,
		calibration_interval_days = $8, last_calibration_date = $9, next_calibration_date = $10,
		active = $11, version = version + 1, updated_at = $12
		WHERE id = $13 AND version = $14`

	result, err := executor.Exec(query,
		tool.Name, tool.Description, tool.Status, tool.Condition,
		tool.WarehouseID, tool.LocationID, tool.RequiresCalibration,
		tool.CalibrationIntervalDays, tool.LastCalibrationDate, tool.NextCalibrationDate,
		tool.Active, tool.UpdatedAt, tool.ID, expectedVersion,
	)
	if err != nil {
		return wrapDBError("updating tool", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrapDBError("updating tool (rows affected)", err)
	}
	if affected == 0 {
		var exists int
		err := executor.QueryRow(`SELECT 1 FROM tools WHERE id = $1`, tool.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return wrapDBError("checking tool existence", err)
		}
		return ErrVersionConflict
	}
	tool.Version = expectedVersion + 1
	return nil
}

func (r *toolRepository) AppendStatusHistory(executor SQLExecutor, transition *models.StatusTransition) error {
	if executor == nil {
		executor = r.db
	}
	if transition.CreatedAt.IsZero() {
		transition.CreatedAt = time.Now()
	}
	query := `INSERT INTO tool_status_history (tool_id, from_status, to_status, reason, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := executor.QueryRow(query,
		transition.ToolID, transition.FromStatus, transition.ToStatus,
		transition.Reason, transition.ActorID, transition.CreatedAt,
	).Scan(&transition.ID)
	if err != nil {
		return wrapDBError("appending status history", err)
	}
	return nil
}

func (r *toolRepository) GetStatusHistory(toolID int64, limit int) ([]models.StatusTransition, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, tool_id, from_status, to_status, reason, actor_id, created_at
		FROM tool_status_history WHERE tool_id = $1 ORDER BY id DESC LIMIT $2`
	rows, err := r.db.Query(query, toolID, limit)
	if err != nil {
		return nil, wrapDBError("getting status history", err)
	}
	defer rows.Close()

	history := []models.StatusTransition{}
	for rows.Next() {
		var t models.StatusTransition
		var reason sql.NullString
		if err := rows.Scan(&t.ID, &t.ToolID, &t.FromStatus, &t.ToStatus, &reason, &t.ActorID, &t.CreatedAt); err != nil {
			return nil, wrapDBError("scanning status history", err)
		}
		if reason.Valid {
			t.Reason = &reason.String
		}
		history = append(history, t)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapDBError("iterating status history", err)
	}
	return history, nil
}

// GetLastTransitionTo returns the most recent history row that moved the tool
// into the given status, or ErrNotFound if no such row exists.
func (r *toolRepository) GetLastTransitionTo(executor SQLExecutor, toolID int64, status models.ToolStatus) (*models.StatusTransition, error) {
	if executor == nil {
		executor = r.db
	}
	query := `SELECT id, tool_id, from_status, to_status, reason, actor_id, created_at
		FROM tool_status_history WHERE tool_id = $1 AND to_status = $2 ORDER BY id DESC LIMIT 1`
	var t models.StatusTransition
	var reason sql.NullString
	err := executor.QueryRow(query, toolID, status).Scan(
		&t.ID, &t.ToolID, &t.FromStatus, &t.ToStatus, &reason, &t.ActorID, &t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting last transition", err)
	}
	if reason.Valid {
		t.Reason = &reason.String
	}
	return &t, nil
}
