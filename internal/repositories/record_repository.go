package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tooltrack_backend/internal/models"
)

// CalibrationRepository defines the interface for calibration record persistence.
type CalibrationRepository interface {
	CreateCalibrationRecord(executor SQLExecutor, record *models.CalibrationRecord) error
	GetCalibrationRecordByID(executor SQLExecutor, id int64) (*models.CalibrationRecord, error)
	GetOpenCalibrationRecord(executor SQLExecutor, toolID int64) (*models.CalibrationRecord, error)
	UpdateCalibrationRecord(executor SQLExecutor, record *models.CalibrationRecord) error
	GetCalibrationRecords(toolID *int64, status *string, start, limit int) ([]models.CalibrationRecord, int, error)
}

// MaintenanceRepository defines the interface for maintenance record persistence.
type MaintenanceRepository interface {
	CreateMaintenanceRecord(executor SQLExecutor, record *models.MaintenanceRecord) error
	GetMaintenanceRecordByID(executor SQLExecutor, id int64) (*models.MaintenanceRecord, error)
	GetOpenMaintenanceRecord(executor SQLExecutor, toolID int64) (*models.MaintenanceRecord, error)
	UpdateMaintenanceRecord(executor SQLExecutor, record *models.MaintenanceRecord) error
	GetMaintenanceRecords(toolID *int64, status *string, start, limit int) ([]models.MaintenanceRecord, int, error)
}

type recordRepository struct {
	db *sql.DB
}

// NewCalibrationRepository creates a new instance of CalibrationRepository.
func NewCalibrationRepository(db *sql.DB) CalibrationRepository {
	return &recordRepository{db: db}
}

// NewMaintenanceRepository creates a new instance of MaintenanceRepository.
func NewMaintenanceRepository(db *sql.DB) MaintenanceRepository {
	return &recordRepository{db: db}
}

const calibrationColumns = `id, tool_id, provider_id, status, result, certificate_number, send_date,
	expected_return_date, received_date, next_calibration_date, notes, created_at, updated_at`

func scanCalibrationRecord(s scanner) (*models.CalibrationRecord, error) {
	var rec models.CalibrationRecord
	var result, certificate, notes sql.NullString
	var expectedReturn, received, nextCal sql.NullTime

	err := s.Scan(
		&rec.ID, &rec.ToolID, &rec.ProviderID, &rec.Status, &result, &certificate,
		&rec.SendDate, &expectedReturn, &received, &nextCal, &notes, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if result.Valid {
		r := models.CalibrationResult(result.String)
		rec.Result = &r
	}
	if certificate.Valid {
		rec.CertificateNumber = &certificate.String
	}
	if notes.Valid {
		rec.Notes = &notes.String
	}
	if expectedReturn.Valid {
		rec.ExpectedReturnDate = &expectedReturn.Time
	}
	if received.Valid {
		rec.ReceivedDate = &received.Time
	}
	if nextCal.Valid {
		rec.NextCalibrationDate = &nextCal.Time
	}
	return &rec, nil
}

func (r *recordRepository) CreateCalibrationRecord(executor SQLExecutor, record *models.CalibrationRecord) error {
	if executor == nil {
		executor = r.db
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	query := `INSERT INTO calibration_records
		(tool_id, provider_id, status, result, certificate_number, send_date, expected_return_date,
		 received_date, next_calibration_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := executor.QueryRow(query,
		record.ToolID, record.ProviderID, record.Status, record.Result, record.CertificateNumber,
		record.SendDate, record.ExpectedReturnDate, record.ReceivedDate, record.NextCalibrationDate,
		record.Notes, record.CreatedAt, record.UpdatedAt,
	).Scan(&record.ID)
	if err != nil {
		return wrapDBError("creating calibration record", err)
	}
	return nil
}

func (r *recordRepository) GetCalibrationRecordByID(executor SQLExecutor, id int64) (*models.CalibrationRecord, error) {
	if executor == nil {
		executor = r.db
	}
	rec, err := scanCalibrationRecord(executor.QueryRow(
		`SELECT `+calibrationColumns+` FROM calibration_records WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting calibration record", err)
	}
	return rec, nil
}

// GetOpenCalibrationRecord returns the tool's single non-terminal calibration
// record, or ErrNotFound if the tool has none open.
func (r *recordRepository) GetOpenCalibrationRecord(executor SQLExecutor, toolID int64) (*models.CalibrationRecord, error) {
	if executor == nil {
		executor = r.db
	}
	rec, err := scanCalibrationRecord(executor.QueryRow(
		`SELECT `+calibrationColumns+` FROM calibration_records
		 WHERE tool_id = $1 AND status IN ('pending', 'sent', 'in_process') LIMIT 1`, toolID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting open calibration record", err)
	}
	return rec, nil
}

func (r *recordRepository) UpdateCalibrationRecord(executor SQLExecutor, record *models.CalibrationRecord) error {
	if executor == nil {
		executor = r.db
	}
	record.UpdatedAt = time.Now()
	result, err := executor.Exec(
		`UPDATE calibration_records SET status = $1, result = $2, certificate_number = $3,
		 received_date = $4, next_calibration_date = $5, notes = $6, updated_at = $7 WHERE id = $8`,
		record.Status, record.Result, record.CertificateNumber,
		record.ReceivedDate, record.NextCalibrationDate, record.Notes, record.UpdatedAt, record.ID,
	)
	if err != nil {
		return wrapDBError("updating calibration record", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrapDBError("updating calibration record (rows affected)", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recordRepository) GetCalibrationRecords(toolID *int64, status *string, start, limit int) ([]models.CalibrationRecord, int, error) {
	records := []models.CalibrationRecord{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + calibrationColumns + `, COUNT(*) OVER() AS total_count FROM calibration_records`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if toolID != nil {
		conditions = append(conditions, fmt.Sprintf("tool_id = $%d", argCount))
		args = append(args, *toolID)
		argCount++
	}
	if status != nil && *status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *status)
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY send_date DESC, id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, limit, start)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError("getting calibration records", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec models.CalibrationRecord
		var result, certificate, notes sql.NullString
		var expectedReturn, received, nextCal sql.NullTime
		if err := rows.Scan(
			&rec.ID, &rec.ToolID, &rec.ProviderID, &rec.Status, &result, &certificate,
			&rec.SendDate, &expectedReturn, &received, &nextCal, &notes, &rec.CreatedAt, &rec.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, wrapDBError("scanning calibration record", err)
		}
		if result.Valid {
			res := models.CalibrationResult(result.String)
			rec.Result = &res
		}
		if certificate.Valid {
			rec.CertificateNumber = &certificate.String
		}
		if notes.Valid {
			rec.Notes = &notes.String
		}
		if expectedReturn.Valid {
			rec.ExpectedReturnDate = &expectedReturn.Time
		}
		if received.Valid {
			rec.ReceivedDate = &received.Time
		}
		if nextCal.Valid {
			rec.NextCalibrationDate = &nextCal.Time
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapDBError("iterating calibration records", err)
	}
	return records, totalCount, nil
}

const maintenanceColumns = `id, tool_id, provider_id, type, status, send_date, expected_return_date,
	received_date, work_performed, notes, created_at, updated_at`

func scanMaintenanceRecord(s scanner) (*models.MaintenanceRecord, error) {
	var rec models.MaintenanceRecord
	var workPerformed, notes sql.NullString
	var expectedReturn, received sql.NullTime

	err := s.Scan(
		&rec.ID, &rec.ToolID, &rec.ProviderID, &rec.Type, &rec.Status,
		&rec.SendDate, &expectedReturn, &received, &workPerformed, &notes, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if workPerformed.Valid {
		rec.WorkPerformed = &workPerformed.String
	}
	if notes.Valid {
		rec.Notes = &notes.String
	}
	if expectedReturn.Valid {
		rec.ExpectedReturnDate = &expectedReturn.Time
	}
	if received.Valid {
		rec.ReceivedDate = &received.Time
	}
	return &rec, nil
}

func (r *recordRepository) CreateMaintenanceRecord(executor SQLExecutor, record *models.MaintenanceRecord) error {
	if executor == nil {
		executor = r.db
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	query := `INSERT INTO maintenance_records
		(tool_id, provider_id, type, status, send_date, expected_return_date, received_date,
		 work_performed, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := executor.QueryRow(query,
		record.ToolID, record.ProviderID, record.Type, record.Status, record.SendDate,
		record.ExpectedReturnDate, record.ReceivedDate, record.WorkPerformed, record.Notes,
		record.CreatedAt, record.UpdatedAt,
	).Scan(&record.ID)
	if err != nil {
		return wrapDBError("creating maintenance record", err)
	}
	return nil
}

func (r *recordRepository) GetMaintenanceRecordByID(executor SQLExecutor, id int64) (*models.MaintenanceRecord, error) {
	if executor == nil {
		executor = r.db
	}
	rec, err := scanMaintenanceRecord(executor.QueryRow(
		`SELECT `+maintenanceColumns+` FROM maintenance_records WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting maintenance record", err)
	}
	return rec, nil
}

func (r *recordRepository) GetOpenMaintenanceRecord(executor SQLExecutor, toolID int64) (*models.MaintenanceRecord, error) {
	if executor == nil {
		executor = r.db
	}
	rec, err := scanMaintenanceRecord(executor.QueryRow(
		`SELECT `+maintenanceColumns+` FROM maintenance_records
		 WHERE tool_id = $1 AND status IN ('pending', 'sent', 'in_process') LIMIT 1`, toolID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDBError("getting open maintenance record", err)
	}
	return rec, nil
}

func (r *recordRepository) UpdateMaintenanceRecord(executor SQLExecutor, record *models.MaintenanceRecord) error {
	if executor == nil {
		executor = r.db
	}
	record.UpdatedAt = time.Now()
	result, err := executor.Exec(
		`UPDATE maintenance_records SET status = $1, received_date = $2, work_performed = $3,
		 notes = $4, updated_at = $5 WHERE id = $6`,
		record.Status, record.ReceivedDate, record.WorkPerformed, record.Notes, record.UpdatedAt, record.ID,
	)
	if err != nil {
		return wrapDBError("updating maintenance record", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrapDBError("updating maintenance record (rows affected)", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recordRepository) GetMaintenanceRecords(toolID *int64, status *string, start, limit int) ([]models.MaintenanceRecord, int, error) {
	records := []models.MaintenanceRecord{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + maintenanceColumns + `, COUNT(*) OVER() AS total_count FROM maintenance_records`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if toolID != nil {
		conditions = append(conditions, fmt.Sprintf("tool_id = $%d", argCount))
		args = append(args, *toolID)
		argCount++
	}
	if status != nil && *status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *status)
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY send_date DESC, id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, limit, start)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError("getting maintenance records", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec models.MaintenanceRecord
		var workPerformed, notes sql.NullString
		var expectedReturn, received sql.NullTime
		if err := rows.Scan(
			&rec.ID, &rec.ToolID, &rec.ProviderID, &rec.Type, &rec.Status,
			&rec.SendDate, &expectedReturn, &received, &workPerformed, &notes, &rec.CreatedAt, &rec.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, wrapDBError("scanning maintenance record", err)
		}
		if workPerformed.Valid {
			rec.WorkPerformed = &workPerformed.String
		}
		if notes.Valid {
			rec.Notes = &notes.String
		}
		if expectedReturn.Valid {
			rec.ExpectedReturnDate = &expectedReturn.Time
		}
		if received.Valid {
			rec.ReceivedDate = &received.Time
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapDBError("iterating maintenance records", err)
	}
	return records, totalCount, nil
}
