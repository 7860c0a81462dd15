package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/repositories"
	"tooltrack_backend/internal/services/audit"
)

// DaysUntilExpiration returns the calendar-day distance from now to the due
// date: 0 means due today, negative means expired.
func DaysUntilExpiration(dueDate, now time.Time) int {
	due := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(due.Sub(today).Hours() / 24)
}

// ClassifyCalibrationSeverity is the single source of truth for calibration
// alert severity: critical under 3 days (including expired), warning under
// 30, info otherwise.
func ClassifyCalibrationSeverity(daysUntilExpiration int) models.AlertSeverity {
	switch {
	case daysUntilExpiration < 3:
		return models.AlertSeverityCritical
	case daysUntilExpiration < 30:
		return models.AlertSeverityWarning
	default:
		return models.AlertSeverityInfo
	}
}

// --- Calibration/Maintenance DTOs ---

type SendToCalibrationRequest struct {
	ToolID             int64      `json:"tool_id" binding:"required"`
	ProviderID         int64      `json:"provider_id" binding:"required"`
	SendDate           *time.Time `json:"send_date"`
	ExpectedReturnDate *time.Time `json:"expected_return_date"`
	Notes              *string    `json:"notes"`
}

type ReceiveCalibrationRequest struct {
	Result              string     `json:"result" binding:"required"`
	CertificateNumber   *string    `json:"certificate_number"`
	NextCalibrationDate *time.Time `json:"next_calibration_date"`
	Notes               *string    `json:"notes"`
}

type SendToMaintenanceRequest struct {
	ToolID             int64      `json:"tool_id" binding:"required"`
	ProviderID         int64      `json:"provider_id" binding:"required"`
	Type               string     `json:"type" binding:"required"`
	SendDate           *time.Time `json:"send_date"`
	ExpectedReturnDate *time.Time `json:"expected_return_date"`
	Notes              *string    `json:"notes"`
}

type ReceiveMaintenanceRequest struct {
	WorkPerformed *string `json:"work_performed"`
	Notes         *string `json:"notes"`
}

// --- CalibrationService Interface ---

type CalibrationService interface {
	SendToCalibration(req SendToCalibrationRequest, actorID string) (*models.CalibrationRecord, error)
	ReceiveFromCalibration(recordID int64, req ReceiveCalibrationRequest, actorID string) (*models.CalibrationRecord, error)
	CancelCalibration(recordID int64, actorID string) (*models.CalibrationRecord, error)
	GetCalibrationRecords(toolID *int64, status *string, start, limit int) ([]models.CalibrationRecord, int, error)

	SendToMaintenance(req SendToMaintenanceRequest, actorID string) (*models.MaintenanceRecord, error)
	ReceiveFromMaintenance(recordID int64, req ReceiveMaintenanceRequest, actorID string) (*models.MaintenanceRecord, error)
	CancelMaintenance(recordID int64, actorID string) (*models.MaintenanceRecord, error)
	GetMaintenanceRecords(toolID *int64, status *string, start, limit int) ([]models.MaintenanceRecord, int, error)
}

type calibrationService struct {
	calibrationRepo repositories.CalibrationRepository
	maintenanceRepo repositories.MaintenanceRepository
	toolRepo        repositories.ToolRepository
	registryRepo    repositories.RegistryRepository
	transition      TransitionService
	auditSink       audit.Sink
	clock           Clock
	db              *sql.DB
}

// NewCalibrationService creates a new instance of CalibrationService.
func NewCalibrationService(
	cr repositories.CalibrationRepository,
	mr repositories.MaintenanceRepository,
	tr repositories.ToolRepository,
	rr repositories.RegistryRepository,
	ts TransitionService,
	auditSink audit.Sink,
	clock Clock,
	db *sql.DB,
) CalibrationService {
	return &calibrationService{
		calibrationRepo: cr,
		maintenanceRepo: mr,
		toolRepo:        tr,
		registryRepo:    rr,
		transition:      ts,
		auditSink:       auditSink,
		clock:           clock,
		db:              db,
	}
}

func (s *calibrationService) validateProvider(providerID int64) error {
	if _, err := s.registryRepo.GetProviderByID(providerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: id %d", ErrProviderNotFound, providerID)
		}
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return nil
}

func (s *calibrationService) SendToCalibration(req SendToCalibrationRequest, actorID string) (*models.CalibrationRecord, error) {
	if err := s.validateProvider(req.ProviderID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	tool, err := s.toolRepo.GetToolByID(tx, req.ToolID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrToolNotFound, req.ToolID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	if _, err := s.calibrationRepo.GetOpenCalibrationRecord(tx, req.ToolID); err == nil {
		return nil, fmt.Errorf("%w: tool %d already has an open calibration record", ErrDuplicateOpenRecord, req.ToolID)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	sendDate := s.clock.Now()
	if req.SendDate != nil {
		sendDate = *req.SendDate
	}
	record := &models.CalibrationRecord{
		ToolID:             req.ToolID,
		ProviderID:         req.ProviderID,
		Status:             models.RecordStatusSent,
		SendDate:           sendDate,
		ExpectedReturnDate: req.ExpectedReturnDate,
		Notes:              req.Notes,
	}
	if err := s.calibrationRepo.CreateCalibrationRecord(tx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	reason := "sent to calibration"
	if err := s.transition.Transition(tx, tool, models.ToolStatusInCalibration, &reason, actorID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "calibration_record", EntityID: record.ID, Action: "send", ActorID: actorID, NewValue: record,
	})
	return record, nil
}

// ReceiveFromCalibration closes the open record and routes the tool by
// result: approved and conditional results return it to available with fresh
// due dates, a rejected result quarantines it.
func (s *calibrationService) ReceiveFromCalibration(recordID int64, req ReceiveCalibrationRequest, actorID string) (*models.CalibrationRecord, error) {
	if !models.IsValidCalibrationResult(req.Result) {
		return nil, fmt.Errorf("%w: unknown calibration result '%s'", ErrValidation, req.Result)
	}
	result := models.CalibrationResult(req.Result)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	record, err := s.calibrationRepo.GetCalibrationRecordByID(tx, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: calibration record %d", ErrRecordNotFound, recordID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if !models.IsOpenRecordStatus(record.Status) {
		return nil, fmt.Errorf("%w: calibration record %d is already %s", ErrValidation, recordID, record.Status)
	}

	tool, err := s.toolRepo.GetToolByID(tx, record.ToolID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	now := s.clock.Now()
	record.Status = models.RecordStatusCompleted
	record.Result = &result
	record.CertificateNumber = req.CertificateNumber
	record.ReceivedDate = &now
	if req.Notes != nil {
		record.Notes = req.Notes
	}

	if result == models.CalibrationResultRejected {
		if err := s.calibrationRepo.UpdateCalibrationRecord(tx, record); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
		}
		reason := "calibration rejected"
		if err := s.transition.Transition(tx, tool, models.ToolStatusQuarantine, &reason, actorID); err != nil {
			return nil, err
		}
	} else {
		nextDate := req.NextCalibrationDate
		if nextDate == nil && tool.CalibrationIntervalDays != nil {
			d := now.AddDate(0, 0, *tool.CalibrationIntervalDays)
			nextDate = &d
		}
		record.NextCalibrationDate = nextDate
		if err := s.calibrationRepo.UpdateCalibrationRecord(tx, record); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
		}

		tool.LastCalibrationDate = &now
		tool.NextCalibrationDate = nextDate
		reason := fmt.Sprintf("calibration %s", result)
		if err := s.transition.Transition(tx, tool, models.ToolStatusAvailable, &reason, actorID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "calibration_record", EntityID: record.ID, Action: "receive", ActorID: actorID, NewValue: record,
	})
	return record, nil
}

func (s *calibrationService) CancelCalibration(recordID int64, actorID string) (*models.CalibrationRecord, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	record, err := s.calibrationRepo.GetCalibrationRecordByID(tx, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: calibration record %d", ErrRecordNotFound, recordID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if !models.IsOpenRecordStatus(record.Status) {
		return nil, fmt.Errorf("%w: calibration record %d is already %s", ErrValidation, recordID, record.Status)
	}

	tool, err := s.toolRepo.GetToolByID(tx, record.ToolID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	record.Status = models.RecordStatusCancelled
	if err := s.calibrationRepo.UpdateCalibrationRecord(tx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	if tool.Status == models.ToolStatusInCalibration {
		reason := "calibration cancelled"
		if err := s.transition.Transition(tx, tool, models.ToolStatusAvailable, &reason, actorID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "calibration_record", EntityID: record.ID, Action: "cancel", ActorID: actorID, NewValue: record.Status,
	})
	return record, nil
}

func (s *calibrationService) GetCalibrationRecords(toolID *int64, status *string, start, limit int) ([]models.CalibrationRecord, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if start < 0 {
		start = 0
	}
	records, totalCount, err := s.calibrationRepo.GetCalibrationRecords(toolID, status, start, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return records, totalCount, nil
}

func (s *calibrationService) SendToMaintenance(req SendToMaintenanceRequest, actorID string) (*models.MaintenanceRecord, error) {
	if !models.IsValidMaintenanceType(req.Type) {
		return nil, fmt.Errorf("%w: unknown maintenance type '%s'", ErrValidation, req.Type)
	}
	if err := s.validateProvider(req.ProviderID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	tool, err := s.toolRepo.GetToolByID(tx, req.ToolID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrToolNotFound, req.ToolID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	if _, err := s.maintenanceRepo.GetOpenMaintenanceRecord(tx, req.ToolID); err == nil {
		return nil, fmt.Errorf("%w: tool %d already has an open maintenance record", ErrDuplicateOpenRecord, req.ToolID)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	sendDate := s.clock.Now()
	if req.SendDate != nil {
		sendDate = *req.SendDate
	}
	record := &models.MaintenanceRecord{
		ToolID:             req.ToolID,
		ProviderID:         req.ProviderID,
		Type:               models.MaintenanceType(req.Type),
		Status:             models.RecordStatusSent,
		SendDate:           sendDate,
		ExpectedReturnDate: req.ExpectedReturnDate,
		Notes:              req.Notes,
	}
	if err := s.maintenanceRepo.CreateMaintenanceRecord(tx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	reason := fmt.Sprintf("sent to %s maintenance", record.Type)
	if err := s.transition.Transition(tx, tool, models.ToolStatusInMaintenance, &reason, actorID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "maintenance_record", EntityID: record.ID, Action: "send", ActorID: actorID, NewValue: record,
	})
	return record, nil
}

func (s *calibrationService) ReceiveFromMaintenance(recordID int64, req ReceiveMaintenanceRequest, actorID string) (*models.MaintenanceRecord, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	record, err := s.maintenanceRepo.GetMaintenanceRecordByID(tx, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: maintenance record %d", ErrRecordNotFound, recordID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if !models.IsOpenRecordStatus(record.Status) {
		return nil, fmt.Errorf("%w: maintenance record %d is already %s", ErrValidation, recordID, record.Status)
	}

	tool, err := s.toolRepo.GetToolByID(tx, record.ToolID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	now := s.clock.Now()
	record.Status = models.RecordStatusCompleted
	record.ReceivedDate = &now
	record.WorkPerformed = req.WorkPerformed
	if req.Notes != nil {
		record.Notes = req.Notes
	}
	if err := s.maintenanceRepo.UpdateMaintenanceRecord(tx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	reason := "maintenance completed"
	if err := s.transition.Transition(tx, tool, models.ToolStatusAvailable, &reason, actorID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "maintenance_record", EntityID: record.ID, Action: "receive", ActorID: actorID, NewValue: record,
	})
	return record, nil
}

func (s *calibrationService) CancelMaintenance(recordID int64, actorID string) (*models.MaintenanceRecord, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	record, err := s.maintenanceRepo.GetMaintenanceRecordByID(tx, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: maintenance record %d", ErrRecordNotFound, recordID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if !models.IsOpenRecordStatus(record.Status) {
		return nil, fmt.Errorf("%w: maintenance record %d is already %s", ErrValidation, recordID, record.Status)
	}

	tool, err := s.toolRepo.GetToolByID(tx, record.ToolID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	record.Status = models.RecordStatusCancelled
	if err := s.maintenanceRepo.UpdateMaintenanceRecord(tx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	if tool.Status == models.ToolStatusInMaintenance {
		reason := "maintenance cancelled"
		if err := s.transition.Transition(tx, tool, models.ToolStatusAvailable, &reason, actorID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "maintenance_record", EntityID: record.ID, Action: "cancel", ActorID: actorID, NewValue: record.Status,
	})
	return record, nil
}

func (s *calibrationService) GetMaintenanceRecords(toolID *int64, status *string, start, limit int) ([]models.MaintenanceRecord, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if start < 0 {
		start = 0
	}
	records, totalCount, err := s.maintenanceRepo.GetMaintenanceRecords(toolID, status, start, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return records, totalCount, nil
}
