package services

import (
	"database/sql"
	"errors"
	"fmt"

	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/repositories"
	"tooltrack_backend/internal/services/audit"
)

// --- Movement DTOs ---

type CreateMovementItemRequest struct {
	ToolID   int64   `json:"tool_id" binding:"required"`
	Quantity int     `json:"quantity" binding:"required,gt=0"`
	Notes    *string `json:"notes"`
}

type CreateMovementRequest struct {
	Type                   string                      `json:"type" binding:"required"`
	Purpose                *string                     `json:"purpose"`
	SourceWarehouseID      *int64                      `json:"source_warehouse_id"`
	DestinationWarehouseID *int64                      `json:"destination_warehouse_id"`
	DestinationLocationID  *int64                      `json:"destination_location_id"`
	Notes                  *string                     `json:"notes"`
	Items                  []CreateMovementItemRequest `json:"items" binding:"required,dive"`
}

// --- MovementService Interface ---

type MovementService interface {
	CreateMovement(req CreateMovementRequest, actorID string) (*models.Movement, error)
	GetMovementByID(movementID int64) (*models.Movement, error)
	GetMovements(filters models.MovementFilters) ([]models.Movement, int, error)
	CompleteMovement(movementID int64, actorID string) (*models.Movement, error)
	CancelMovement(movementID int64, reason string, actorID string) (*models.Movement, error)
}

type movementService struct {
	movementRepo repositories.MovementRepository
	toolRepo     repositories.ToolRepository
	registryRepo repositories.RegistryRepository
	transition   TransitionService
	auditSink    audit.Sink
	clock        Clock
	db           *sql.DB
}

// NewMovementService creates a new instance of MovementService.
func NewMovementService(
	mr repositories.MovementRepository,
	tr repositories.ToolRepository,
	rr repositories.RegistryRepository,
	ts TransitionService,
	auditSink audit.Sink,
	clock Clock,
	db *sql.DB,
) MovementService {
	return &movementService{
		movementRepo: mr,
		toolRepo:     tr,
		registryRepo: rr,
		transition:   ts,
		auditSink:    auditSink,
		clock:        clock,
		db:           db,
	}
}

// validateCreateRequest runs the pure input checks, before any state read.
func (s *movementService) validateCreateRequest(req CreateMovementRequest) error {
	if !models.IsValidMovementType(req.Type) {
		return fmt.Errorf("%w: unknown movement type '%s'", ErrValidation, req.Type)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: movement must contain at least one item", ErrValidation)
	}
	seen := make(map[int64]struct{}, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive for tool %d", ErrValidation, item.ToolID)
		}
		if _, dup := seen[item.ToolID]; dup {
			return fmt.Errorf("%w: tool %d listed more than once", ErrValidation, item.ToolID)
		}
		seen[item.ToolID] = struct{}{}
	}
	switch models.MovementType(req.Type) {
	case models.MovementTypeExit:
		if req.Purpose == nil || !models.IsValidMovementPurpose(*req.Purpose) {
			return fmt.Errorf("%w: exit movements require a purpose (loan, calibration_send, maintenance_send, decommission, lost)", ErrValidation)
		}
	case models.MovementTypeEntry, models.MovementTypeTransfer:
		if req.DestinationWarehouseID == nil {
			return fmt.Errorf("%w: %s movements require a destination warehouse", ErrValidation, req.Type)
		}
	}
	return nil
}

func (s *movementService) CreateMovement(req CreateMovementRequest, actorID string) (*models.Movement, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	if req.DestinationWarehouseID != nil {
		if _, err := s.registryRepo.GetWarehouseByID(*req.DestinationWarehouseID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: id %d", ErrWarehouseNotFound, *req.DestinationWarehouseID)
			}
			return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
		}
	}

	movementType := models.MovementType(req.Type)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	// For exit, transfer and loan every referenced tool must currently be
	// available; entry, return and adjustment tolerate other states because
	// completion drives them back toward available.
	requireAvailable := movementType == models.MovementTypeExit ||
		movementType == models.MovementTypeTransfer ||
		movementType == models.MovementTypeLoan
	for _, item := range req.Items {
		tool, err := s.toolRepo.GetToolByID(tx, item.ToolID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: id %d", ErrToolNotFound, item.ToolID)
			}
			return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
		}
		if requireAvailable && tool.Status != models.ToolStatusAvailable {
			return nil, fmt.Errorf("%w: tool %d is %s", ErrAssetUnavailable, tool.ID, tool.Status)
		}
	}

	now := s.clock.Now()
	scope := fmt.Sprintf("MOV-%d", now.Year())
	sequence, err := s.movementRepo.NextSequence(tx, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	movement := &models.Movement{
		Number:                 fmt.Sprintf("MOV-%d-%03d", now.Year(), sequence),
		Type:                   movementType,
		Status:                 models.MovementStatusPending,
		SourceWarehouseID:      req.SourceWarehouseID,
		DestinationWarehouseID: req.DestinationWarehouseID,
		DestinationLocationID:  req.DestinationLocationID,
		Notes:                  req.Notes,
		CreatedBy:              actorID,
		MovementDate:           now,
	}
	if req.Purpose != nil {
		p := models.MovementPurpose(*req.Purpose)
		movement.Purpose = &p
	}
	for _, item := range req.Items {
		movement.Items = append(movement.Items, models.MovementItem{
			ToolID:   item.ToolID,
			Quantity: item.Quantity,
			Notes:    item.Notes,
		})
	}

	if _, err := s.movementRepo.CreateMovement(tx, movement); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	// Entries and adjustments carry no approval step in practice; they are
	// applied in the same transaction that records them.
	autoComplete := movementType == models.MovementTypeEntry || movementType == models.MovementTypeAdjustment
	if autoComplete {
		if err := s.applyMovement(tx, movement, actorID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "movement", EntityID: movement.ID, Action: "create", ActorID: actorID, NewValue: movement,
	})
	return movement, nil
}

func (s *movementService) GetMovementByID(movementID int64) (*models.Movement, error) {
	movement, err := s.movementRepo.GetMovementByID(nil, movementID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrMovementNotFound, movementID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return movement, nil
}

func (s *movementService) GetMovements(filters models.MovementFilters) ([]models.Movement, int, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	if filters.Start < 0 {
		filters.Start = 0
	}
	movements, totalCount, err := s.movementRepo.GetMovements(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return movements, totalCount, nil
}

// CompleteMovement drives every item's tool through its status and location
// change as one transaction. All items succeed or none are applied: a
// failing item rolls the whole transaction back, the movement stays pending
// and the error reports every offending item.
func (s *movementService) CompleteMovement(movementID int64, actorID string) (*models.Movement, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	movement, err := s.movementRepo.GetMovementByID(tx, movementID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrMovementNotFound, movementID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if movement.Status != models.MovementStatusPending && movement.Status != models.MovementStatusApproved {
		return nil, fmt.Errorf("%w: movement %s is %s", ErrMovementNotEditable, movement.Number, movement.Status)
	}

	if err := s.applyMovement(tx, movement, actorID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "movement", EntityID: movement.ID, Action: "complete", ActorID: actorID, NewValue: movement.Status,
	})
	return movement, nil
}

// itemPlan is the validated effect of one movement item on its tool.
type itemPlan struct {
	tool        *models.Tool
	target      *models.ToolStatus // nil means no status change
	force       bool
	setLocation bool
}

// applyMovement runs the two-phase validate-then-apply inside the caller's
// transaction: phase one resolves every tool and checks every transition
// against the adjacency table, phase two mutates. Any phase-one failure
// aborts before the first mutation.
func (s *movementService) applyMovement(tx repositories.SQLExecutor, movement *models.Movement, actorID string) error {
	plans := make([]itemPlan, 0, len(movement.Items))
	var failures []ItemFailure

	for _, item := range movement.Items {
		tool, err := s.toolRepo.GetToolByID(tx, item.ToolID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				failures = append(failures, ItemFailure{ToolID: item.ToolID, Reason: "tool not found"})
				continue
			}
			return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
		}

		plan, reason := s.planItem(movement, tool)
		if reason != "" {
			failures = append(failures, ItemFailure{ToolID: item.ToolID, Reason: reason})
			continue
		}
		plans = append(plans, plan)
	}

	if len(failures) > 0 {
		return &PartialApplicationError{MovementID: movement.ID, Failures: failures}
	}

	reason := fmt.Sprintf("movement %s (%s)", movement.Number, movement.Type)
	for _, plan := range plans {
		if plan.setLocation {
			plan.tool.WarehouseID = movement.DestinationWarehouseID
			plan.tool.LocationID = movement.DestinationLocationID
		}
		switch {
		case plan.force:
			if _, err := s.transition.ForceDecommission(tx, plan.tool, &reason, actorID); err != nil {
				return err
			}
		case plan.target != nil:
			if err := s.transition.Transition(tx, plan.tool, *plan.target, &reason, actorID); err != nil {
				return err
			}
		default:
			// location-only change still bumps the version through the CAS
			if err := s.toolRepo.UpdateTool(tx, plan.tool, plan.tool.Version); err != nil {
				if errors.Is(err, repositories.ErrVersionConflict) {
					return fmt.Errorf("%w: tool %d", ErrConcurrentModification, plan.tool.ID)
				}
				return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
			}
		}
	}

	completedAt := s.clock.Now()
	if err := s.movementRepo.UpdateMovementStatus(tx, movement.ID, models.MovementStatusCompleted, nil, &completedAt); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: movement %s was closed concurrently", ErrMovementNotEditable, movement.Number)
		}
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	movement.Status = models.MovementStatusCompleted
	movement.CompletedAt = &completedAt
	return nil
}

// planItem decides the effect of the movement on one tool, or a rejection
// reason. The transition service re-checks legality on apply; this check
// exists so a doomed movement reports all of its failing items at once.
func (s *movementService) planItem(movement *models.Movement, tool *models.Tool) (itemPlan, string) {
	plan := itemPlan{tool: tool}

	target := func(status models.ToolStatus) (itemPlan, string) {
		if tool.Status == status {
			return plan, ""
		}
		if tool.Status == models.ToolStatusDecommissioned {
			return plan, "tool is decommissioned"
		}
		if !CanTransition(tool.Status, status) {
			return plan, fmt.Sprintf("illegal transition %s -> %s", tool.Status, status)
		}
		plan.target = &status
		return plan, ""
	}

	switch movement.Type {
	case models.MovementTypeEntry:
		plan.setLocation = true
		return target(models.ToolStatusAvailable)
	case models.MovementTypeAdjustment:
		plan.setLocation = true
		return plan, ""
	case models.MovementTypeTransfer:
		if tool.Status != models.ToolStatusAvailable {
			return plan, fmt.Sprintf("tool is %s, not available", tool.Status)
		}
		plan.setLocation = true
		return plan, ""
	case models.MovementTypeLoan:
		if tool.Status != models.ToolStatusAvailable {
			return plan, fmt.Sprintf("tool is %s, not available", tool.Status)
		}
		return target(models.ToolStatusInUse)
	case models.MovementTypeReturn:
		return target(models.ToolStatusAvailable)
	case models.MovementTypeExit:
		if movement.Purpose == nil {
			return plan, "exit movement has no purpose"
		}
		switch *movement.Purpose {
		case models.MovementPurposeLoan:
			return target(models.ToolStatusInUse)
		case models.MovementPurposeCalibrationSend:
			return target(models.ToolStatusInCalibration)
		case models.MovementPurposeMaintenanceSend:
			return target(models.ToolStatusInMaintenance)
		case models.MovementPurposeDecommission:
			plan.force = true
			return plan, ""
		case models.MovementPurposeLost:
			return target(models.ToolStatusLost)
		}
		return plan, fmt.Sprintf("unknown purpose '%s'", *movement.Purpose)
	}
	return plan, fmt.Sprintf("unknown movement type '%s'", movement.Type)
}

func (s *movementService) CancelMovement(movementID int64, reason string, actorID string) (*models.Movement, error) {
	movement, err := s.GetMovementByID(movementID)
	if err != nil {
		return nil, err
	}
	if movement.Status != models.MovementStatusPending && movement.Status != models.MovementStatusApproved {
		return nil, fmt.Errorf("%w: movement %s is %s", ErrMovementNotEditable, movement.Number, movement.Status)
	}

	var cancelReason *string
	if reason != "" {
		cancelReason = &reason
	}
	// The guarded UPDATE is the authoritative check: a completion committing
	// after the read above leaves zero editable rows to cancel.
	if err := s.movementRepo.UpdateMovementStatus(nil, movementID, models.MovementStatusCancelled, cancelReason, nil); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: movement %s was closed concurrently", ErrMovementNotEditable, movement.Number)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	movement.Status = models.MovementStatusCancelled
	movement.CancelReason = cancelReason

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "movement", EntityID: movement.ID, Action: "cancel", ActorID: actorID, NewValue: movement.Status,
	})
	return movement, nil
}
