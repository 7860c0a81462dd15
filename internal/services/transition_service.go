package services

import (
	"errors"
	"fmt"

	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/repositories"
)

// legalTransitions is the single authoritative adjacency table for tool
// status changes. Absence of an edge means the transition is illegal;
// decommissioned has no outgoing edges.
var legalTransitions = map[models.ToolStatus]map[models.ToolStatus]struct{}{
	models.ToolStatusAvailable: toSet(
		models.ToolStatusInUse,
		models.ToolStatusInCalibration,
		models.ToolStatusInMaintenance,
		models.ToolStatusQuarantine,
		models.ToolStatusDecommissioned,
		models.ToolStatusLost,
	),
	models.ToolStatusInUse: toSet(
		models.ToolStatusAvailable,
		models.ToolStatusQuarantine,
		models.ToolStatusLost,
	),
	models.ToolStatusInCalibration: toSet(
		models.ToolStatusAvailable,
		models.ToolStatusQuarantine,
	),
	models.ToolStatusInMaintenance: toSet(
		models.ToolStatusAvailable,
		models.ToolStatusQuarantine,
		models.ToolStatusDecommissioned,
	),
	models.ToolStatusQuarantine: toSet(
		models.ToolStatusAvailable,
		models.ToolStatusDecommissioned,
	),
	models.ToolStatusDecommissioned: {},
	models.ToolStatusLost: toSet(
		models.ToolStatusAvailable,
		models.ToolStatusDecommissioned,
	),
}

func toSet(statuses ...models.ToolStatus) map[models.ToolStatus]struct{} {
	set := make(map[models.ToolStatus]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

// CanTransition reports whether the adjacency table contains the edge.
func CanTransition(from, to models.ToolStatus) bool {
	targets, ok := legalTransitions[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// TransitionService validates and applies legal status changes on a single
// tool. It has no side effects beyond the tool row and its history; callers
// orchestrate cross-entity consistency.
type TransitionService interface {
	Transition(executor repositories.SQLExecutor, tool *models.Tool, target models.ToolStatus, reason *string, actorID string) error
	Restore(executor repositories.SQLExecutor, tool *models.Tool, target models.ToolStatus, reason *string, actorID string) error
	ForceDecommission(executor repositories.SQLExecutor, tool *models.Tool, reason *string, actorID string) (bool, error)
}

type transitionService struct {
	toolRepo repositories.ToolRepository
}

// NewTransitionService creates a new instance of TransitionService.
func NewTransitionService(toolRepo repositories.ToolRepository) TransitionService {
	return &transitionService{toolRepo: toolRepo}
}

// Transition applies one legal edge of the status machine. The tool's version
// is used as the optimistic-concurrency token: a stale version surfaces as
// ErrConcurrentModification and the caller retries from a fresh read. On
// success the tool is mutated in place (status and version) and one history
// row is appended.
func (s *transitionService) Transition(executor repositories.SQLExecutor, tool *models.Tool, target models.ToolStatus, reason *string, actorID string) error {
	if !models.IsValidToolStatus(string(target)) {
		return fmt.Errorf("%w: unknown status '%s'", ErrValidation, target)
	}
	if tool.Status == models.ToolStatusDecommissioned {
		return fmt.Errorf("%w: tool %d", ErrTerminalState, tool.ID)
	}
	if !CanTransition(tool.Status, target) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, tool.Status, target)
	}

	return s.apply(executor, tool, target, reason, actorID)
}

// Restore puts the tool back into a status it previously held, skipping the
// adjacency check. It exists for undo flows (quarantine cancellation) where
// the target came from the tool's own transition history. The terminal state
// still holds.
func (s *transitionService) Restore(executor repositories.SQLExecutor, tool *models.Tool, target models.ToolStatus, reason *string, actorID string) error {
	if !models.IsValidToolStatus(string(target)) {
		return fmt.Errorf("%w: unknown status '%s'", ErrValidation, target)
	}
	if tool.Status == models.ToolStatusDecommissioned {
		return fmt.Errorf("%w: tool %d", ErrTerminalState, tool.ID)
	}
	if target == models.ToolStatusDecommissioned {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, tool.Status, target)
	}
	return s.apply(executor, tool, target, reason, actorID)
}

// ForceDecommission moves the tool to decommissioned regardless of its
// current status. This is the administrative override behind decommission
// approval, the only path allowed to bypass the adjacency table. Calling it
// on an already-decommissioned tool is a no-op, not an error; the boolean
// reports whether a change was applied.
func (s *transitionService) ForceDecommission(executor repositories.SQLExecutor, tool *models.Tool, reason *string, actorID string) (bool, error) {
	if tool.Status == models.ToolStatusDecommissioned {
		return false, nil
	}
	if err := s.apply(executor, tool, models.ToolStatusDecommissioned, reason, actorID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *transitionService) apply(executor repositories.SQLExecutor, tool *models.Tool, target models.ToolStatus, reason *string, actorID string) error {
	fromStatus := tool.Status
	tool.Status = target

	if err := s.toolRepo.UpdateTool(executor, tool, tool.Version); err != nil {
		tool.Status = fromStatus
		if errors.Is(err, repositories.ErrVersionConflict) {
			return fmt.Errorf("%w: tool %d", ErrConcurrentModification, tool.ID)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: id %d", ErrToolNotFound, tool.ID)
		}
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	transition := &models.StatusTransition{
		ToolID:     tool.ID,
		FromStatus: fromStatus,
		ToStatus:   target,
		Reason:     reason,
		ActorID:    actorID,
	}
	if err := s.toolRepo.AppendStatusHistory(executor, transition); err != nil {
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return nil
}
