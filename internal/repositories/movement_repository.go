package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tooltrack_backend/internal/models"
)

// MovementRepository defines the interface for movement ledger persistence.
type MovementRepository interface {
	NextSequence(executor SQLExecutor, scope string) (int64, error)
	CreateMovement(executor SQLExecutor, movement *models.Movement) (*models.Movement, error)
	GetMovementByID(executor SQLExecutor, id int64) (*models.Movement, error)
	GetMovements(filters models.MovementFilters) ([]models.Movement, int, error)
	UpdateMovementStatus(executor SQLExecutor, id int64, status models.MovementStatus, cancelReason *string, completedAt *time.Time) error
}

type movementRepository struct {
	db *sql.DB
}

// NewMovementRepository creates a new instance of MovementRepository.
func NewMovementRepository(db *sql.DB) MovementRepository {
	return &movementRepository{db: db}
}

// NextSequence atomically allocates the next value of a named counter via an
// upsert, so concurrent movement creation never observes duplicates.
func (r *movementRepository) NextSequence(executor SQLExecutor, scope string) (int64, error) {
	if executor == nil {
		executor = r.db
	}
	query := `INSERT INTO movement_sequences (scope, value) VALUES ($1, 1)
		ON CONFLICT (scope) DO UPDATE SET value = movement_sequences.value + 1
		RETURNING value`
	var value int64
	if err := executor.QueryRow(query, scope).Scan(&value); err != nil {
		return 0, wrapDBError("allocating sequence", err)
	}
	return value, nil
}

// CreateMovement inserts the movement header and all of its items.
func (r *movementRepository) CreateMovement(executor SQLExecutor, movement *models.Movement) (*models.Movement, error) {
	if executor == nil {
		executor = r.db
	}
	now := time.Now()
	if movement.MovementDate.IsZero() {
		movement.MovementDate = now
	}
	movement.CreatedAt = now
	movement.UpdatedAt = now

	query := `INSERT INTO movements
		(number, type, status, purpose, source_warehouse_id, destination_warehouse_id, destination_location_id,
		 notes, cancel_reason, created_by, movement_date, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	err := executor.QueryRow(query,
		movement.Number, movement.Type, movement.Status, movement.Purpose,
		movement.SourceWarehouseID, movement.DestinationWarehouseID, movement.DestinationLocationID,
		movement.Notes, movement.CancelReason, movement.CreatedBy,
		movement.MovementDate, movement.CompletedAt, movement.CreatedAt, movement.UpdatedAt,
	).Scan(&movement.ID)
	if err != nil {
		return nil, wrapDBError("creating movement", err)
	}

	for i := range movement.Items {
		item := &movement.Items[i]
		item.MovementID = movement.ID
		err := executor.QueryRow(
			`INSERT INTO movement_items (movement_id, tool_id, quantity, notes) VALUES ($1, $2, $3, $4) RETURNING id`,
			item.MovementID, item.ToolID, item.Quantity, item.Notes,
		).Scan(&item.ID)
		if err != nil {
			return nil, wrapDBError("creating movement item", err)
		}
	}
	return movement, nil
}

func scanMovement(s scanner) (*models.Movement, error) {
	var m models.Movement
	var purpose, notes, cancelReason sql.NullString
	var sourceWh, destWh, destLoc sql.NullInt64
	var completedAt sql.NullTime

	err := s.Scan(
		&m.ID, &m.Number, &m.Type, &m.Status, &purpose,
		&sourceWh, &destWh, &destLoc, &notes, &cancelReason,
		&m.CreatedBy, &m.MovementDate, &completedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if purpose.Valid {
		p := models.MovementPurpose(purpose.String)
		m.Purpose = &p
	}
	if sourceWh.Valid {
		m.SourceWarehouseID = &sourceWh.Int64
	}
	if destWh.Valid {
		m.DestinationWarehouseID = &destWh.Int64
	}
	if destLoc.Valid {
		m.DestinationLocationID = &destLoc.Int64
	}
	if notes.Valid {
		m.Notes = &notes.String
	}
	if cancelReason.Valid {
		m.CancelReason = &cancelReason.String
	}
	if completedAt.Valid {
		m.CompletedAt = &completedAt.Time
	}
	return &m, nil
}

const movementColumns = `id, number, type, status, purpose, source_warehouse_id, destination_warehouse_id,
	destination_location_id, notes, cancel_reason, created_by, movement_date, completed_at, created_at, updated_at`

func (r *movementRepository) GetMovementByID(executor SQLExecutor, id int64) (*models.Movement, error) {
	if executor == nil {
		executor = r.db
	}
	movement, err := scanMovement(executor.QueryRow(`SELECT `+movementColumns+` FROM movements WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting movement", err)
	}

	rows, err := executor.Query(
		`SELECT id, movement_id, tool_id, quantity, notes FROM movement_items WHERE movement_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, wrapDBError("getting movement items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.MovementItem
		var notes sql.NullString
		if err := rows.Scan(&item.ID, &item.MovementID, &item.ToolID, &item.Quantity, &notes); err != nil {
			return nil, wrapDBError("scanning movement item", err)
		}
		if notes.Valid {
			item.Notes = &notes.String
		}
		movement.Items = append(movement.Items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapDBError("iterating movement items", err)
	}
	return movement, nil
}

func (r *movementRepository) GetMovements(filters models.MovementFilters) ([]models.Movement, int, error) {
	movements := []models.Movement{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + movementColumns + `, COUNT(*) OVER() AS total_count FROM movements`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Type != nil && *filters.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argCount))
		args = append(args, *filters.Type)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.Year != nil {
		conditions = append(conditions, fmt.Sprintf("number LIKE $%d", argCount))
		args = append(args, fmt.Sprintf("MOV-%d-%%", *filters.Year))
		argCount++
	}
	if filters.ToolID != nil {
		conditions = append(conditions,
			fmt.Sprintf("id IN (SELECT movement_id FROM movement_items WHERE tool_id = $%d)", argCount))
		args = append(args, *filters.ToolID)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY movement_date DESC, id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.Limit, filters.Start)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError("getting movements", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Movement
		var purpose, notes, cancelReason sql.NullString
		var sourceWh, destWh, destLoc sql.NullInt64
		var completedAt sql.NullTime

		if err := rows.Scan(
			&m.ID, &m.Number, &m.Type, &m.Status, &purpose,
			&sourceWh, &destWh, &destLoc, &notes, &cancelReason,
			&m.CreatedBy, &m.MovementDate, &completedAt, &m.CreatedAt, &m.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, wrapDBError("scanning movement", err)
		}
		if purpose.Valid {
			p := models.MovementPurpose(purpose.String)
			m.Purpose = &p
		}
		if sourceWh.Valid {
			m.SourceWarehouseID = &sourceWh.Int64
		}
		if destWh.Valid {
			m.DestinationWarehouseID = &destWh.Int64
		}
		if destLoc.Valid {
			m.DestinationLocationID = &destLoc.Int64
		}
		if notes.Valid {
			m.Notes = &notes.String
		}
		if cancelReason.Valid {
			m.CancelReason = &cancelReason.String
		}
		if completedAt.Valid {
			m.CompletedAt = &completedAt.Time
		}
		movements = append(movements, m)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapDBError("iterating movements", err)
	}
	return movements, totalCount, nil
}

// UpdateMovementStatus moves a movement out of an editable status. The
// status guard lives in the UPDATE itself so a racing complete/cancel cannot
// overwrite a movement the other call already closed; zero affected rows
// surface as ErrNotFound for the caller to re-read and classify.
func (r *movementRepository) UpdateMovementStatus(executor SQLExecutor, id int64, status models.MovementStatus, cancelReason *string, completedAt *time.Time) error {
	if executor == nil {
		executor = r.db
	}
	result, err := executor.Exec(
		`UPDATE movements SET status = $1, cancel_reason = $2, completed_at = $3, updated_at = $4
		 WHERE id = $5 AND status IN ($6, $7)`,
		status, cancelReason, completedAt, time.Now(), id,
		models.MovementStatusPending, models.MovementStatusApproved,
	)
	if err != nil {
		return wrapDBError("updating movement status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrapDBError("updating movement status (rows affected)", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
