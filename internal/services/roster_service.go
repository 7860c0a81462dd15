package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/repositories"
	"tooltrack_backend/internal/services/audit"
)

// ProjectOverdue applies the read-time overdue projection to an assignment.
// Stored status is never mutated; active/extended assignments past their
// expected return date report overdue plus the day count.
func ProjectOverdue(assignment *models.RosterAssignment, now time.Time) {
	if assignment.Status != models.AssignmentStatusActive && assignment.Status != models.AssignmentStatusExtended {
		return
	}
	if !assignment.ExpectedReturnDate.Before(now) {
		return
	}
	assignment.DaysOverdue = int(math.Ceil(now.Sub(assignment.ExpectedReturnDate).Hours() / 24))
	assignment.Status = models.AssignmentStatusOverdue
}

// --- Roster DTOs ---

type AssignRequest struct {
	ToolID             *int64     `json:"tool_id"`
	KitID              *int64     `json:"kit_id"`
	EmployeeID         int64      `json:"employee_id" binding:"required"`
	Shift              *string    `json:"shift"`
	AssignmentDate     *time.Time `json:"assignment_date"`
	ExpectedReturnDate time.Time  `json:"expected_return_date" binding:"required"`
	Notes              *string    `json:"notes"`
}

type ReturnAssignmentRequest struct {
	ActualReturnDate *time.Time `json:"actual_return_date"`
	Notes            *string    `json:"notes"`
}

type ExtendAssignmentRequest struct {
	NewExpectedReturnDate time.Time `json:"new_expected_return_date" binding:"required"`
	Notes                 *string   `json:"notes"`
}

// --- RosterService Interface ---

type RosterService interface {
	Assign(req AssignRequest, actorID string) (*models.RosterAssignment, error)
	ReturnAssignment(assignmentID int64, req ReturnAssignmentRequest, actorID string) (*models.RosterAssignment, error)
	ExtendAssignment(assignmentID int64, req ExtendAssignmentRequest, actorID string) (*models.RosterAssignment, error)
	GetAssignmentByID(assignmentID int64) (*models.RosterAssignment, error)
	GetAssignments(filters models.RosterFilters) ([]models.RosterAssignment, int, error)
	GetOverdueAssignments() ([]models.RosterAssignment, error)
}

type rosterService struct {
	rosterRepo   repositories.RosterRepository
	toolRepo     repositories.ToolRepository
	kitRepo      repositories.KitRepository
	registryRepo repositories.RegistryRepository
	transition   TransitionService
	auditSink    audit.Sink
	clock        Clock
	db           *sql.DB
}

// NewRosterService creates a new instance of RosterService.
func NewRosterService(
	rr repositories.RosterRepository,
	tr repositories.ToolRepository,
	kr repositories.KitRepository,
	reg repositories.RegistryRepository,
	ts TransitionService,
	auditSink audit.Sink,
	clock Clock,
	db *sql.DB,
) RosterService {
	return &rosterService{
		rosterRepo:   rr,
		toolRepo:     tr,
		kitRepo:      kr,
		registryRepo: reg,
		transition:   ts,
		auditSink:    auditSink,
		clock:        clock,
		db:           db,
	}
}

// Assign books a tool or kit to an employee. Exactly one of tool_id/kit_id
// must be set. Single-tool assignments transition the tool to in_use; kit
// status stays derived from its members and the open assignment itself.
func (s *rosterService) Assign(req AssignRequest, actorID string) (*models.RosterAssignment, error) {
	if (req.ToolID == nil) == (req.KitID == nil) {
		return nil, fmt.Errorf("%w: exactly one of tool_id or kit_id must be set", ErrValidation)
	}
	if req.ExpectedReturnDate.IsZero() {
		return nil, fmt.Errorf("%w: expected_return_date is required", ErrValidation)
	}

	if _, err := s.registryRepo.GetEmployeeByID(req.EmployeeID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrEmployeeNotFound, req.EmployeeID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	assignmentDate := s.clock.Now()
	if req.AssignmentDate != nil {
		assignmentDate = *req.AssignmentDate
	}
	if req.ExpectedReturnDate.Before(assignmentDate) {
		return nil, fmt.Errorf("%w: expected_return_date precedes assignment_date", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	if req.ToolID != nil {
		if err := s.checkToolAssignable(tx, *req.ToolID); err != nil {
			return nil, err
		}
	} else {
		if err := s.checkKitAssignable(tx, *req.KitID); err != nil {
			return nil, err
		}
	}

	assignment := &models.RosterAssignment{
		ToolID:             req.ToolID,
		KitID:              req.KitID,
		EmployeeID:         req.EmployeeID,
		Shift:              req.Shift,
		Status:             models.AssignmentStatusActive,
		AssignmentDate:     assignmentDate,
		ExpectedReturnDate: req.ExpectedReturnDate,
		Notes:              req.Notes,
	}
	if err := s.rosterRepo.CreateAssignment(tx, assignment); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: asset already has an open assignment", ErrAlreadyAssigned)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	if req.ToolID != nil {
		tool, err := s.toolRepo.GetToolByID(tx, *req.ToolID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
		}
		reason := fmt.Sprintf("assigned to employee %d", req.EmployeeID)
		if err := s.transition.Transition(tx, tool, models.ToolStatusInUse, &reason, actorID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "roster_assignment", EntityID: assignment.ID, Action: "assign", ActorID: actorID, NewValue: assignment,
	})
	return assignment, nil
}

func (s *rosterService) checkToolAssignable(tx repositories.SQLExecutor, toolID int64) error {
	tool, err := s.toolRepo.GetToolByID(tx, toolID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: id %d", ErrToolNotFound, toolID)
		}
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if _, err := s.rosterRepo.GetOpenAssignmentForTool(tx, toolID); err == nil {
		return fmt.Errorf("%w: tool %d", ErrAlreadyAssigned, toolID)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if tool.Status != models.ToolStatusAvailable {
		return fmt.Errorf("%w: tool %d is %s", ErrAssetUnavailable, toolID, tool.Status)
	}
	return nil
}

func (s *rosterService) checkKitAssignable(tx repositories.SQLExecutor, kitID int64) error {
	kit, err := s.kitRepo.GetKitByID(tx, kitID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: id %d", ErrKitNotFound, kitID)
		}
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if _, err := s.rosterRepo.GetOpenAssignmentForKit(tx, kitID); err == nil {
		return fmt.Errorf("%w: kit %d", ErrAlreadyAssigned, kitID)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	tools, err := s.kitRepo.GetKitTools(tx, kitID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if status := ComputeKitStatus(kit, tools, false); status != models.KitStatusAvailable {
		return fmt.Errorf("%w: kit %d is %s", ErrAssetUnavailable, kitID, status)
	}
	return nil
}

func (s *rosterService) ReturnAssignment(assignmentID int64, req ReturnAssignmentRequest, actorID string) (*models.RosterAssignment, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	assignment, err := s.rosterRepo.GetAssignmentByID(tx, assignmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: assignment %d", ErrAssignmentNotFound, assignmentID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if !models.IsOpenAssignmentStatus(assignment.Status) {
		return nil, fmt.Errorf("%w: assignment %d is already %s", ErrValidation, assignmentID, assignment.Status)
	}

	returnDate := s.clock.Now()
	if req.ActualReturnDate != nil {
		returnDate = *req.ActualReturnDate
	}
	assignment.Status = models.AssignmentStatusReturned
	assignment.ActualReturnDate = &returnDate
	if req.Notes != nil {
		assignment.Notes = req.Notes
	}
	if err := s.rosterRepo.UpdateAssignment(tx, assignment); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	if assignment.ToolID != nil {
		tool, err := s.toolRepo.GetToolByID(tx, *assignment.ToolID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
		}
		if tool.Status == models.ToolStatusInUse {
			reason := "returned from assignment"
			if err := s.transition.Transition(tx, tool, models.ToolStatusAvailable, &reason, actorID); err != nil {
				return nil, err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "roster_assignment", EntityID: assignment.ID, Action: "return", ActorID: actorID, NewValue: assignment,
	})
	return assignment, nil
}

func (s *rosterService) ExtendAssignment(assignmentID int64, req ExtendAssignmentRequest, actorID string) (*models.RosterAssignment, error) {
	if req.NewExpectedReturnDate.IsZero() {
		return nil, fmt.Errorf("%w: new_expected_return_date is required", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	assignment, err := s.rosterRepo.GetAssignmentByID(tx, assignmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: assignment %d", ErrAssignmentNotFound, assignmentID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	// The overdue status only exists as a read-time projection, so it has to
	// be applied here for the "extendable from active or overdue" rule to
	// ever see it. An extended assignment becomes extendable again once its
	// return date passes.
	ProjectOverdue(assignment, s.clock.Now())
	if assignment.Status != models.AssignmentStatusActive && assignment.Status != models.AssignmentStatusOverdue {
		return nil, fmt.Errorf("%w: assignment %d cannot be extended from %s", ErrValidation, assignmentID, assignment.Status)
	}
	if !req.NewExpectedReturnDate.After(assignment.ExpectedReturnDate) {
		return nil, fmt.Errorf("%w: new return date must be after the current one", ErrValidation)
	}

	assignment.Status = models.AssignmentStatusExtended
	assignment.ExpectedReturnDate = req.NewExpectedReturnDate
	assignment.DaysOverdue = 0
	if req.Notes != nil {
		assignment.Notes = req.Notes
	}
	if err := s.rosterRepo.UpdateAssignment(tx, assignment); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "roster_assignment", EntityID: assignment.ID, Action: "extend", ActorID: actorID, NewValue: assignment,
	})
	return assignment, nil
}

func (s *rosterService) GetAssignmentByID(assignmentID int64) (*models.RosterAssignment, error) {
	assignment, err := s.rosterRepo.GetAssignmentByID(nil, assignmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: assignment %d", ErrAssignmentNotFound, assignmentID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	ProjectOverdue(assignment, s.clock.Now())
	return assignment, nil
}

func (s *rosterService) GetAssignments(filters models.RosterFilters) ([]models.RosterAssignment, int, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	if filters.Start < 0 {
		filters.Start = 0
	}
	now := s.clock.Now()
	if filters.OverdueOnly {
		// The overdue predicate runs in the query so pagination and the
		// total count see the filtered set, not the page.
		filters.OverdueBefore = &now
	}
	assignments, totalCount, err := s.rosterRepo.GetAssignments(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	for i := range assignments {
		ProjectOverdue(&assignments[i], now)
	}
	return assignments, totalCount, nil
}

// GetOverdueAssignments returns every open assignment currently past its
// expected return date, with the overdue projection applied.
func (s *rosterService) GetOverdueAssignments() ([]models.RosterAssignment, error) {
	open, err := s.rosterRepo.GetOpenAssignments()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	now := s.clock.Now()
	overdue := []models.RosterAssignment{}
	for i := range open {
		ProjectOverdue(&open[i], now)
		if open[i].Status == models.AssignmentStatusOverdue {
			overdue = append(overdue, open[i])
		}
	}
	return overdue, nil
}
