package services

import (
	"database/sql"
	"errors"
	"fmt"

	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/repositories"
	"tooltrack_backend/internal/services/audit"
)

// --- Quarantine/Decommission DTOs ---

type OpenQuarantineRequest struct {
	ToolID      int64   `json:"tool_id" binding:"required"`
	Reason      string  `json:"reason" binding:"required"`
	Description *string `json:"description"`
}

type ResolveQuarantineRequest struct {
	Resolution  string  `json:"resolution" binding:"required"`
	ActionTaken *string `json:"action_taken"`
}

type RequestDecommissionRequest struct {
	ToolID int64  `json:"tool_id" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

type RejectDecommissionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// QuarantineCancelResult reports the status the cancellation restored. When
// no history row recorded how the tool entered quarantine, the status falls
// back to available and AssumedPreviousStatus is set.
type QuarantineCancelResult struct {
	Record                *models.QuarantineRecord `json:"record"`
	RestoredStatus        models.ToolStatus        `json:"restored_status"`
	AssumedPreviousStatus bool                     `json:"assumed_previous_status"`
}

// --- QuarantineService Interface ---

type QuarantineService interface {
	OpenQuarantine(req OpenQuarantineRequest, actorID string) (*models.QuarantineRecord, error)
	ResolveQuarantine(recordID int64, req ResolveQuarantineRequest, actorID string) (*models.QuarantineRecord, error)
	CancelQuarantine(recordID int64, actorID string) (*QuarantineCancelResult, error)
	GetQuarantineRecord(recordID int64) (*models.QuarantineRecord, error)

	RequestDecommission(req RequestDecommissionRequest, actorID string) (*models.DecommissionRecord, error)
	ApproveDecommission(recordID int64, actorID string) (*models.DecommissionRecord, error)
	RejectDecommission(recordID int64, req RejectDecommissionRequest, actorID string) (*models.DecommissionRecord, error)
	GetDecommissionRecord(recordID int64) (*models.DecommissionRecord, error)
}

type quarantineService struct {
	quarantineRepo   repositories.QuarantineRepository
	decommissionRepo repositories.DecommissionRepository
	toolRepo         repositories.ToolRepository
	transition       TransitionService
	auditSink        audit.Sink
	clock            Clock
	db               *sql.DB
}

// NewQuarantineService creates a new instance of QuarantineService.
func NewQuarantineService(
	qr repositories.QuarantineRepository,
	dr repositories.DecommissionRepository,
	tr repositories.ToolRepository,
	ts TransitionService,
	auditSink audit.Sink,
	clock Clock,
	db *sql.DB,
) QuarantineService {
	return &quarantineService{
		quarantineRepo:   qr,
		decommissionRepo: dr,
		toolRepo:         tr,
		transition:       ts,
		auditSink:        auditSink,
		clock:            clock,
		db:               db,
	}
}

func (s *quarantineService) OpenQuarantine(req OpenQuarantineRequest, actorID string) (*models.QuarantineRecord, error) {
	if req.Reason == "" {
		return nil, fmt.Errorf("%w: quarantine reason is required", ErrValidation)
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

	if _, err := s.quarantineRepo.GetActiveQuarantineRecord(tx, req.ToolID); err == nil {
		return nil, fmt.Errorf("%w: tool %d", ErrDuplicateActiveQuarantine, req.ToolID)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	record := &models.QuarantineRecord{
		ToolID:      req.ToolID,
		Status:      models.QuarantineStatusActive,
		Reason:      req.Reason,
		Description: req.Description,
		OpenedBy:    actorID,
		OpenedAt:    s.clock.Now(),
	}
	if err := s.quarantineRepo.CreateQuarantineRecord(tx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	if err := s.transition.Transition(tx, tool, models.ToolStatusQuarantine, &req.Reason, actorID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "quarantine_record", EntityID: record.ID, Action: "open", ActorID: actorID, NewValue: record,
	})
	return record, nil
}

func (s *quarantineService) ResolveQuarantine(recordID int64, req ResolveQuarantineRequest, actorID string) (*models.QuarantineRecord, error) {
	if req.Resolution == "" {
		return nil, fmt.Errorf("%w: resolution is required", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	record, err := s.quarantineRepo.GetQuarantineRecordByID(tx, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: quarantine record %d", ErrRecordNotFound, recordID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if record.Status != models.QuarantineStatusActive {
		return nil, fmt.Errorf("%w: quarantine record %d is already %s", ErrValidation, recordID, record.Status)
	}

	tool, err := s.toolRepo.GetToolByID(tx, record.ToolID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	now := s.clock.Now()
	record.Status = models.QuarantineStatusResolved
	record.Resolution = &req.Resolution
	record.ActionTaken = req.ActionTaken
	record.ClosedAt = &now
	if err := s.quarantineRepo.UpdateQuarantineRecord(tx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	reason := fmt.Sprintf("quarantine resolved: %s", req.Resolution)
	if err := s.transition.Transition(tx, tool, models.ToolStatusAvailable, &reason, actorID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "quarantine_record", EntityID: record.ID, Action: "resolve", ActorID: actorID, NewValue: record,
	})
	return record, nil
}

// CancelQuarantine closes the record without a resolution and puts the tool
// back where it was. The pre-quarantine status comes from the history row
// that moved the tool into quarantine; a missing row falls back to available.
func (s *quarantineService) CancelQuarantine(recordID int64, actorID string) (*QuarantineCancelResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	record, err := s.quarantineRepo.GetQuarantineRecordByID(tx, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: quarantine record %d", ErrRecordNotFound, recordID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if record.Status != models.QuarantineStatusActive {
		return nil, fmt.Errorf("%w: quarantine record %d is already %s", ErrValidation, recordID, record.Status)
	}

	tool, err := s.toolRepo.GetToolByID(tx, record.ToolID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	restored := models.ToolStatusAvailable
	assumed := true
	if entry, err := s.toolRepo.GetLastTransitionTo(tx, record.ToolID, models.ToolStatusQuarantine); err == nil {
		restored = entry.FromStatus
		assumed = false
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	now := s.clock.Now()
	record.Status = models.QuarantineStatusCancelled
	record.ClosedAt = &now
	if err := s.quarantineRepo.UpdateQuarantineRecord(tx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	reason := "quarantine cancelled"
	if err := s.transition.Restore(tx, tool, restored, &reason, actorID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "quarantine_record", EntityID: record.ID, Action: "cancel", ActorID: actorID, NewValue: record,
	})
	return &QuarantineCancelResult{
		Record:                record,
		RestoredStatus:        restored,
		AssumedPreviousStatus: assumed,
	}, nil
}

func (s *quarantineService) GetQuarantineRecord(recordID int64) (*models.QuarantineRecord, error) {
	record, err := s.quarantineRepo.GetQuarantineRecordByID(nil, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: quarantine record %d", ErrRecordNotFound, recordID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return record, nil
}

func (s *quarantineService) RequestDecommission(req RequestDecommissionRequest, actorID string) (*models.DecommissionRecord, error) {
	if req.Reason == "" {
		return nil, fmt.Errorf("%w: decommission reason is required", ErrValidation)
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
	if tool.Status == models.ToolStatusDecommissioned {
		return nil, fmt.Errorf("%w: tool %d", ErrTerminalState, tool.ID)
	}

	if _, err := s.decommissionRepo.GetPendingDecommissionRecord(tx, req.ToolID); err == nil {
		return nil, fmt.Errorf("%w: tool %d already has a pending decommission request", ErrDuplicateOpenRecord, req.ToolID)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	record := &models.DecommissionRecord{
		ToolID:      req.ToolID,
		Status:      models.DecommissionStatusPending,
		Reason:      req.Reason,
		RequestedBy: actorID,
		RequestedAt: s.clock.Now(),
	}
	if err := s.decommissionRepo.CreateDecommissionRecord(tx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "decommission_record", EntityID: record.ID, Action: "request", ActorID: actorID, NewValue: record,
	})
	return record, nil
}

// ApproveDecommission forces the tool to decommissioned no matter what its
// current status is. Approving a request whose tool is already decommissioned
// succeeds without writing a second history row.
func (s *quarantineService) ApproveDecommission(recordID int64, actorID string) (*models.DecommissionRecord, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	record, err := s.decommissionRepo.GetDecommissionRecordByID(tx, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: decommission record %d", ErrRecordNotFound, recordID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if record.Status == models.DecommissionStatusApproved {
		return record, nil
	}
	if record.Status != models.DecommissionStatusPending {
		return nil, fmt.Errorf("%w: decommission record %d is already %s", ErrValidation, recordID, record.Status)
	}

	tool, err := s.toolRepo.GetToolByID(tx, record.ToolID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	now := s.clock.Now()
	record.Status = models.DecommissionStatusApproved
	record.ResolvedBy = &actorID
	record.ResolvedAt = &now
	if err := s.decommissionRepo.UpdateDecommissionRecord(tx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	if _, err := s.transition.ForceDecommission(tx, tool, &record.Reason, actorID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "decommission_record", EntityID: record.ID, Action: "approve", ActorID: actorID, NewValue: record,
	})
	return record, nil
}

func (s *quarantineService) RejectDecommission(recordID int64, req RejectDecommissionRequest, actorID string) (*models.DecommissionRecord, error) {
	if req.Reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	record, err := s.decommissionRepo.GetDecommissionRecordByID(tx, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: decommission record %d", ErrRecordNotFound, recordID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if record.Status != models.DecommissionStatusPending {
		return nil, fmt.Errorf("%w: decommission record %d is already %s", ErrValidation, recordID, record.Status)
	}

	now := s.clock.Now()
	record.Status = models.DecommissionStatusRejected
	record.RejectionReason = &req.Reason
	record.ResolvedBy = &actorID
	record.ResolvedAt = &now
	if err := s.decommissionRepo.UpdateDecommissionRecord(tx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "decommission_record", EntityID: record.ID, Action: "reject", ActorID: actorID, NewValue: record,
	})
	return record, nil
}

func (s *quarantineService) GetDecommissionRecord(recordID int64) (*models.DecommissionRecord, error) {
	record, err := s.decommissionRepo.GetDecommissionRecordByID(nil, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: decommission record %d", ErrRecordNotFound, recordID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return record, nil
}
