package models

import "time"

// MovementType defines the type for movement kinds
type MovementType string

const (
	MovementTypeEntry      MovementType = "entry"
	MovementTypeExit       MovementType = "exit"
	MovementTypeTransfer   MovementType = "transfer"
	MovementTypeLoan       MovementType = "loan"
	MovementTypeReturn     MovementType = "return"
	MovementTypeAdjustment MovementType = "adjustment"
)

// IsValidMovementType checks if the provided string is a valid MovementType.
func IsValidMovementType(movementType string) bool {
	switch MovementType(movementType) {
	case MovementTypeEntry,
		MovementTypeExit,
		MovementTypeTransfer,
		MovementTypeLoan,
		MovementTypeReturn,
		MovementTypeAdjustment:
		return true
	}
	return false
}

// MovementStatus defines the type for movement statuses
type MovementStatus string

const (
	MovementStatusPending   MovementStatus = "pending"
	MovementStatusApproved  MovementStatus = "approved"
	MovementStatusCompleted MovementStatus = "completed"
	MovementStatusCancelled MovementStatus = "cancelled"
)

// IsValidMovementStatus checks if the given status is valid
func IsValidMovementStatus(status string) bool {
	switch MovementStatus(status) {
	case MovementStatusPending, MovementStatusApproved, MovementStatusCompleted, MovementStatusCancelled:
		return true
	}
	return false
}

// MovementPurpose routes an exit movement to its terminal intent.
type MovementPurpose string

const (
	MovementPurposeLoan            MovementPurpose = "loan"
	MovementPurposeCalibrationSend MovementPurpose = "calibration_send"
	MovementPurposeMaintenanceSend MovementPurpose = "maintenance_send"
	MovementPurposeDecommission    MovementPurpose = "decommission"
	MovementPurposeLost            MovementPurpose = "lost"
)

// IsValidMovementPurpose checks if the provided string is a valid MovementPurpose.
func IsValidMovementPurpose(purpose string) bool {
	switch MovementPurpose(purpose) {
	case MovementPurposeLoan,
		MovementPurposeCalibrationSend,
		MovementPurposeMaintenanceSend,
		MovementPurposeDecommission,
		MovementPurposeLost:
		return true
	}
	return false
}

// Movement is an atomic ledger entry over one or more tools. All items in a
// movement transition together; a movement is immutable once completed or
// cancelled and is kept for archival, never deleted.
type Movement struct {
	ID                     int64            `json:"id" db:"id"`
	Number                 string           `json:"number" db:"number"`
	Type                   MovementType     `json:"type" db:"type"`
	Status                 MovementStatus   `json:"status" db:"status"`
	Purpose                *MovementPurpose `json:"purpose,omitempty" db:"purpose"`
	SourceWarehouseID      *int64           `json:"source_warehouse_id,omitempty" db:"source_warehouse_id"`
	DestinationWarehouseID *int64           `json:"destination_warehouse_id,omitempty" db:"destination_warehouse_id"`
	DestinationLocationID  *int64           `json:"destination_location_id,omitempty" db:"destination_location_id"`
	Notes                  *string          `json:"notes,omitempty" db:"notes"`
	CancelReason           *string          `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CreatedBy              string           `json:"created_by" db:"created_by"`
	MovementDate           time.Time        `json:"movement_date" db:"movement_date"`
	CompletedAt            *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt              time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at" db:"updated_at"`
	Items                  []MovementItem   `json:"items,omitempty"`
}

// MovementItem is a single tool line within a movement.
type MovementItem struct {
	ID         int64   `json:"id" db:"id"`
	MovementID int64   `json:"movement_id" db:"movement_id"`
	ToolID     int64   `json:"tool_id" db:"tool_id" binding:"required"`
	Quantity   int     `json:"quantity" db:"quantity" binding:"required,gt=0"`
	Notes      *string `json:"notes,omitempty" db:"notes"`
	Tool       *Tool   `json:"tool,omitempty"`
}

// MovementFilters holds the supported query filters for listing movements.
type MovementFilters struct {
	Type   *string `form:"type"`
	Status *string `form:"status"`
	Year   *int    `form:"year"`
	ToolID *int64  `form:"tool_id"`
	Start  int     `form:"start"`
	Limit  int     `form:"limit"`
}
