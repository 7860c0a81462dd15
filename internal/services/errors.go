package services

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy. Validation errors are rejected before any state read;
// business-rule errors are surfaced verbatim and never coerced; concurrency
// errors are safe to retry from fresh reads (the caller decides);
// infrastructure errors mean "try again later" rather than "request rejected".
var (
	// validation
	ErrValidation = errors.New("validation error")

	// business-rule
	ErrIllegalTransition         = errors.New("illegal status transition")
	ErrTerminalState             = errors.New("tool is decommissioned; no further transitions are legal")
	ErrDuplicateOpenRecord       = errors.New("tool already has an open record")
	ErrDuplicateActiveQuarantine = errors.New("tool already has an active quarantine record")
	ErrAlreadyAssigned           = errors.New("asset already has an open roster assignment")
	ErrAssetUnavailable          = errors.New("asset is not available")
	ErrMovementNotEditable       = errors.New("movement is already completed or cancelled")

	// concurrency
	ErrConcurrentModification = errors.New("concurrent modification: retry with fresh state")

	// infrastructure
	ErrRepositoryUnavailable = errors.New("repository unavailable")

	// not-found (kept separate so handlers can map it to 404)
	ErrToolNotFound       = errors.New("tool not found")
	ErrMovementNotFound   = errors.New("movement not found")
	ErrRecordNotFound     = errors.New("record not found")
	ErrKitNotFound        = errors.New("kit not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrProviderNotFound   = errors.New("provider not found")
	ErrWarehouseNotFound  = errors.New("warehouse not found")
)

// ItemFailure describes why one movement item could not be applied.
type ItemFailure struct {
	ToolID int64  `json:"tool_id"`
	Reason string `json:"reason"`
}

// PartialApplicationError is returned when completing a movement would have
// applied only some of its items. No item is applied and the movement stays
// pending; Failures lists every offending item so the caller can correct and
// resubmit without re-entering the unaffected ones.
type PartialApplicationError struct {
	MovementID int64
	Failures   []ItemFailure
}

func (e *PartialApplicationError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("tool %d: %s", f.ToolID, f.Reason))
	}
	return fmt.Sprintf("movement %d not applied, %d item(s) failed: %s",
		e.MovementID, len(e.Failures), strings.Join(parts, "; "))
}
