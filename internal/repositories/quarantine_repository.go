package repositories

import (
	"database/sql"
	"errors"
	"time"

	"tooltrack_backend/internal/models"
)

// QuarantineRepository defines the interface for quarantine record persistence.
type QuarantineRepository interface {
	CreateQuarantineRecord(executor SQLExecutor, record *models.QuarantineRecord) error
	GetQuarantineRecordByID(executor SQLExecutor, id int64) (*models.QuarantineRecord, error)
	GetActiveQuarantineRecord(executor SQLExecutor, toolID int64) (*models.QuarantineRecord, error)
	UpdateQuarantineRecord(executor SQLExecutor, record *models.QuarantineRecord) error
}

// DecommissionRepository defines the interface for decommission request persistence.
type DecommissionRepository interface {
	CreateDecommissionRecord(executor SQLExecutor, record *models.DecommissionRecord) error
	GetDecommissionRecordByID(executor SQLExecutor, id int64) (*models.DecommissionRecord, error)
	GetPendingDecommissionRecord(executor SQLExecutor, toolID int64) (*models.DecommissionRecord, error)
	UpdateDecommissionRecord(executor SQLExecutor, record *models.DecommissionRecord) error
}

type quarantineRepository struct {
	db *sql.DB
}

// NewQuarantineRepository creates a new instance of QuarantineRepository.
func NewQuarantineRepository(db *sql.DB) QuarantineRepository {
	return &quarantineRepository{db: db}
}

// NewDecommissionRepository creates a new instance of DecommissionRepository.
func NewDecommissionRepository(db *sql.DB) DecommissionRepository {
	return &quarantineRepository{db: db}
}

const quarantineColumns = `id, tool_id, status, reason, description, resolution, action_taken,
	opened_by, opened_at, closed_at, created_at, updated_at`

func scanQuarantineRecord(s scanner) (*models.QuarantineRecord, error) {
	var rec models.QuarantineRecord
	var description, resolution, actionTaken sql.NullString
	var closedAt sql.NullTime

	err := s.Scan(
		&rec.ID, &rec.ToolID, &rec.Status, &rec.Reason, &description, &resolution, &actionTaken,
		&rec.OpenedBy, &rec.OpenedAt, &closedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		rec.Description = &description.String
	}
	if resolution.Valid {
		rec.Resolution = &resolution.String
	}
	if actionTaken.Valid {
		rec.ActionTaken = &actionTaken.String
	}
	if closedAt.Valid {
		rec.ClosedAt = &closedAt.Time
	}
	return &rec, nil
}

func (r *quarantineRepository) CreateQuarantineRecord(executor SQLExecutor, record *models.QuarantineRecord) error {
	if executor == nil {
		executor = r.db
	}
	now := time.Now()
	if record.OpenedAt.IsZero() {
		record.OpenedAt = now
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	query := `INSERT INTO quarantine_records
		(tool_id, status, reason, description, resolution, action_taken, opened_by, opened_at, closed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := executor.QueryRow(query,
		record.ToolID, record.Status, record.Reason, record.Description, record.Resolution,
		record.ActionTaken, record.OpenedBy, record.OpenedAt, record.ClosedAt,
		record.CreatedAt, record.UpdatedAt,
	).Scan(&record.ID)
	if err != nil {
		return wrapDBError("creating quarantine record", err)
	}
	return nil
}

func (r *quarantineRepository) GetQuarantineRecordByID(executor SQLExecutor, id int64) (*models.QuarantineRecord, error) {
	if executor == nil {
		executor = r.db
	}
	rec, err := scanQuarantineRecord(executor.QueryRow(
		`SELECT `+quarantineColumns+` FROM quarantine_records WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting quarantine record", err)
	}
	return rec, nil
}

// GetActiveQuarantineRecord returns the tool's single active quarantine
// record, or ErrNotFound if the tool is not quarantined.
func (r *quarantineRepository) GetActiveQuarantineRecord(executor SQLExecutor, toolID int64) (*models.QuarantineRecord, error) {
	if executor == nil {
		executor = r.db
	}
	rec, err := scanQuarantineRecord(executor.QueryRow(
		`SELECT `+quarantineColumns+` FROM quarantine_records WHERE tool_id = $1 AND status = 'active' LIMIT 1`, toolID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting active quarantine record", err)
	}
	return rec, nil
}

func (r *quarantineRepository) UpdateQuarantineRecord(executor SQLExecutor, record *models.QuarantineRecord) error {
	if executor == nil {
		executor = r.db
	}
	record.UpdatedAt = time.Now()
	result, err := executor.Exec(
		`UPDATE quarantine_records SET status = $1, resolution = $2, action_taken = $3,
		 closed_at = $4, updated_at = $5 WHERE id = $6`,
		record.Status, record.Resolution, record.ActionTaken, record.ClosedAt, record.UpdatedAt, record.ID,
	)
	if err != nil {
		return wrapDBError("updating quarantine record", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrapDBError("updating quarantine record (rows affected)", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

const decommissionColumns = `id, tool_id, status, reason, rejection_reason, requested_by, resolved_by,
	requested_at, resolved_at, created_at, updated_at`

func scanDecommissionRecord(s scanner) (*models.DecommissionRecord, error) {
	var rec models.DecommissionRecord
	var rejectionReason, resolvedBy sql.NullString
	var resolvedAt sql.NullTime

	err := s.Scan(
		&rec.ID, &rec.ToolID, &rec.Status, &rec.Reason, &rejectionReason, &rec.RequestedBy,
		&resolvedBy, &rec.RequestedAt, &resolvedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if rejectionReason.Valid {
		rec.RejectionReason = &rejectionReason.String
	}
	if resolvedBy.Valid {
		rec.ResolvedBy = &resolvedBy.String
	}
	if resolvedAt.Valid {
		rec.ResolvedAt = &resolvedAt.Time
	}
	return &rec, nil
}

func (r *quarantineRepository) CreateDecommissionRecord(executor SQLExecutor, record *models.DecommissionRecord) error {
	if executor == nil {
		executor = r.db
	}
	now := time.Now()
	if record.RequestedAt.IsZero() {
		record.RequestedAt = now
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	query := `INSERT INTO decommission_records
		(tool_id, status, reason, rejection_reason, requested_by, resolved_by, requested_at, resolved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := executor.QueryRow(query,
		record.ToolID, record.Status, record.Reason, record.RejectionReason, record.RequestedBy,
		record.ResolvedBy, record.RequestedAt, record.ResolvedAt, record.CreatedAt, record.UpdatedAt,
	).Scan(&record.ID)
	if err != nil {
		return wrapDBError("creating decommission record", err)
	}
	return nil
}

func (r *quarantineRepository) GetDecommissionRecordByID(executor SQLExecutor, id int64) (*models.DecommissionRecord, error) {
	if executor == nil {
		executor = r.db
	}
	rec, err := scanDecommissionRecord(executor.QueryRow(
		`SELECT `+decommissionColumns+` FROM decommission_records WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting decommission record", err)
	}
	return rec, nil
}

func (r *quarantineRepository) GetPendingDecommissionRecord(executor SQLExecutor, toolID int64) (*models.DecommissionRecord, error) {
	if executor == nil {
		executor = r.db
	}
	rec, err := scanDecommissionRecord(executor.QueryRow(
		`SELECT `+decommissionColumns+` FROM decommission_records WHERE tool_id = $1 AND status = 'pending' LIMIT 1`, toolID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting pending decommission record", err)
	}
	return rec, nil
}

func (r *quarantineRepository) UpdateDecommissionRecord(executor SQLExecutor, record *models.DecommissionRecord) error {
	if executor == nil {
		executor = r.db
	}
	record.UpdatedAt = time.Now()
	result, err := executor.Exec(
		`UPDATE decommission_records SET status = $1, rejection_reason = $2, resolved_by = $3,
		 resolved_at = $4, updated_at = $5 WHERE id = $6`,
		record.Status, record.RejectionReason, record.ResolvedBy, record.ResolvedAt, record.UpdatedAt, record.ID,
	)
	if err != nil {
		return wrapDBError("updating decommission record", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrapDBError("updating decommission record (rows affected)", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
