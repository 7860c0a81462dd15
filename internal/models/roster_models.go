package models

import "time"

// AssignmentStatus defines the type for roster assignment statuses
type AssignmentStatus string

const (
	AssignmentStatusActive   AssignmentStatus = "active"
	AssignmentStatusReturned AssignmentStatus = "returned"
	AssignmentStatusOverdue  AssignmentStatus = "overdue"
	AssignmentStatusExtended AssignmentStatus = "extended"
)

// IsOpenAssignmentStatus reports whether an assignment still holds the asset.
func IsOpenAssignmentStatus(status AssignmentStatus) bool {
	switch status {
	case AssignmentStatusActive, AssignmentStatusOverdue, AssignmentStatusExtended:
		return true
	}
	return false
}

// RosterAssignment assigns exactly one of tool or kit to an employee for an
// interval. Overdue is a read-time projection: the stored status keeps its
// active/extended provenance while the reported status is overridden.
type RosterAssignment struct {
	ID                 int64            `json:"id" db:"id"`
	ToolID             *int64           `json:"tool_id,omitempty" db:"tool_id"`
	KitID              *int64           `json:"kit_id,omitempty" db:"kit_id"`
	EmployeeID         int64            `json:"employee_id" db:"employee_id"`
	Shift              *string          `json:"shift,omitempty" db:"shift"`
	Status             AssignmentStatus `json:"status" db:"status"`
	AssignmentDate     time.Time        `json:"assignment_date" db:"assignment_date"`
	ExpectedReturnDate time.Time        `json:"expected_return_date" db:"expected_return_date"`
	ActualReturnDate   *time.Time       `json:"actual_return_date,omitempty" db:"actual_return_date"`
	Notes              *string          `json:"notes,omitempty" db:"notes"`
	DaysOverdue        int              `json:"days_overdue,omitempty" db:"-"`
	CreatedAt          time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at" db:"updated_at"`
	Tool               *Tool            `json:"tool,omitempty"`
	Kit                *Kit             `json:"kit,omitempty"`
}

// RosterFilters holds the supported query filters for listing assignments.
type RosterFilters struct {
	EmployeeID  *int64  `form:"employee_id"`
	Status      *string `form:"status"`
	OverdueOnly bool    `form:"overdue_only"`
	Start       int     `form:"start"`
	Limit       int     `form:"limit"`

	// OverdueBefore is the cutoff the overdue_only predicate compares
	// expected_return_date against. Set by the service from its clock, never
	// bound from the request.
	OverdueBefore *time.Time `form:"-"`
}
