package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tooltrack_backend/internal/models"
)

// RosterRepository defines the interface for roster assignment persistence.
type RosterRepository interface {
	CreateAssignment(executor SQLExecutor, assignment *models.RosterAssignment) error
	GetAssignmentByID(executor SQLExecutor, id int64) (*models.RosterAssignment, error)
	GetOpenAssignmentForTool(executor SQLExecutor, toolID int64) (*models.RosterAssignment, error)
	GetOpenAssignmentForKit(executor SQLExecutor, kitID int64) (*models.RosterAssignment, error)
	UpdateAssignment(executor SQLExecutor, assignment *models.RosterAssignment) error
	GetAssignments(filters models.RosterFilters) ([]models.RosterAssignment, int, error)
	GetOpenAssignments() ([]models.RosterAssignment, error)
}

type rosterRepository struct {
	db *sql.DB
}

// NewRosterRepository creates a new instance of RosterRepository.
func NewRosterRepository(db *sql.DB) RosterRepository {
	return &rosterRepository{db: db}
}

const assignmentColumns = `id, tool_id, kit_id, employee_id, shift, status, assignment_date,
	expected_return_date, actual_return_date, notes, created_at, updated_at`

func scanAssignment(s scanner) (*models.RosterAssignment, error) {
	var a models.RosterAssignment
	var toolID, kitID sql.NullInt64
	var shift, notes sql.NullString
	var actualReturn sql.NullTime

	err := s.Scan(
		&a.ID, &toolID, &kitID, &a.EmployeeID, &shift, &a.Status,
		&a.AssignmentDate, &a.ExpectedReturnDate, &actualReturn, &notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if toolID.Valid {
		a.ToolID = &toolID.Int64
	}
	if kitID.Valid {
		a.KitID = &kitID.Int64
	}
	if shift.Valid {
		a.Shift = &shift.String
	}
	if notes.Valid {
		a.Notes = &notes.String
	}
	if actualReturn.Valid {
		a.ActualReturnDate = &actualReturn.Time
	}
	return &a, nil
}

func (r *rosterRepository) CreateAssignment(executor SQLExecutor, assignment *models.RosterAssignment) error {
	if executor == nil {
		executor = r.db
	}
	now := time.Now()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	query := `INSERT INTO roster_assignments
		(tool_id, kit_id, employee_id, shift, status, assignment_date, expected_return_date,
		 actual_return_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := executor.QueryRow(query,
		assignment.ToolID, assignment.KitID, assignment.EmployeeID, assignment.Shift, assignment.Status,
		assignment.AssignmentDate, assignment.ExpectedReturnDate, assignment.ActualReturnDate,
		assignment.Notes, assignment.CreatedAt, assignment.UpdatedAt,
	).Scan(&assignment.ID)
	if err != nil {
		return wrapDBError("creating roster assignment", err)
	}
	return nil
}

func (r *rosterRepository) GetAssignmentByID(executor SQLExecutor, id int64) (*models.RosterAssignment, error) {
	if executor == nil {
		executor = r.db
	}
	a, err := scanAssignment(executor.QueryRow(
		`SELECT `+assignmentColumns+` FROM roster_assignments WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting roster assignment", err)
	}
	return a, nil
}

// GetOpenAssignmentForTool returns the assignment currently holding the tool
// (status active/overdue/extended), or ErrNotFound.
func (r *rosterRepository) GetOpenAssignmentForTool(executor SQLExecutor, toolID int64) (*models.RosterAssignment, error) {
	if executor == nil {
		executor = r.db
	}
	a, err := scanAssignment(executor.QueryRow(
		`SELECT `+assignmentColumns+` FROM roster_assignments
		 WHERE tool_id = $1 AND status IN ('active', 'overdue', 'extended') LIMIT 1`, toolID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting open assignment for tool", err)
	}
	return a, nil
}

func (r *rosterRepository) GetOpenAssignmentForKit(executor SQLExecutor, kitID int64) (*models.RosterAssignment, error) {
	if executor == nil {
		executor = r.db
	}
	a, err := scanAssignment(executor.QueryRow(
		`SELECT `+assignmentColumns+` FROM roster_assignments
		 WHERE kit_id = $1 AND status IN ('active', 'overdue', 'extended') LIMIT 1`, kitID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting open assignment for kit", err)
	}
	return a, nil
}

func (r *rosterRepository) UpdateAssignment(executor SQLExecutor, assignment *models.RosterAssignment) error {
	if executor == nil {
		executor = r.db
	}
	assignment.UpdatedAt = time.Now()
	result, err := executor.Exec(
		`UPDATE roster_assignments SET status = $1, expected_return_date = $2, actual_return_date = $3,
		 notes = $4, updated_at = $5 WHERE id = $6`,
		assignment.Status, assignment.ExpectedReturnDate, assignment.ActualReturnDate,
		assignment.Notes, assignment.UpdatedAt, assignment.ID,
	)
	if err != nil {
		return wrapDBError("updating roster assignment", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrapDBError("updating roster assignment (rows affected)", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *rosterRepository) GetAssignments(filters models.RosterFilters) ([]models.RosterAssignment, int, error) {
	assignments := []models.RosterAssignment{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + assignmentColumns + `, COUNT(*) OVER() AS total_count FROM roster_assignments`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", argCount))
		args = append(args, *filters.EmployeeID)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.OverdueOnly && filters.OverdueBefore != nil {
		conditions = append(conditions, fmt.Sprintf(
			"status IN ('active', 'extended') AND expected_return_date < $%d", argCount))
		args = append(args, *filters.OverdueBefore)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY assignment_date DESC, id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.Limit, filters.Start)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError("getting roster assignments", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.RosterAssignment
		var toolID, kitID sql.NullInt64
		var shift, notes sql.NullString
		var actualReturn sql.NullTime

		if err := rows.Scan(
			&a.ID, &toolID, &kitID, &a.EmployeeID, &shift, &a.Status,
			&a.AssignmentDate, &a.ExpectedReturnDate, &actualReturn, &notes, &a.CreatedAt, &a.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, wrapDBError("scanning roster assignment", err)
		}
		if toolID.Valid {
			a.ToolID = &toolID.Int64
		}
		if kitID.Valid {
			a.KitID = &kitID.Int64
		}
		if shift.Valid {
			a.Shift = &shift.String
		}
		if notes.Valid {
			a.Notes = &notes.String
		}
		if actualReturn.Valid {
			a.ActualReturnDate = &actualReturn.Time
		}
		assignments = append(assignments, a)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapDBError("iterating roster assignments", err)
	}
	return assignments, totalCount, nil
}

// GetOpenAssignments returns every assignment still holding an asset, used by
// the overdue scan.
func (r *rosterRepository) GetOpenAssignments() ([]models.RosterAssignment, error) {
	rows, err := r.db.Query(
		`SELECT ` + assignmentColumns + ` FROM roster_assignments
		 WHERE status IN ('active', 'overdue', 'extended') ORDER BY expected_return_date`)
	if err != nil {
		return nil, wrapDBError("getting open roster assignments", err)
	}
	defer rows.Close()

	assignments := []models.RosterAssignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, wrapDBError("scanning open roster assignment", err)
		}
		assignments = append(assignments, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapDBError("iterating open roster assignments", err)
	}
	return assignments, nil
}
