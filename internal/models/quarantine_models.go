package models

import "time"

// QuarantineStatus defines the type for quarantine record statuses
type QuarantineStatus string

const (
	QuarantineStatusActive    QuarantineStatus = "active"
	QuarantineStatusResolved  QuarantineStatus = "resolved"
	QuarantineStatusCancelled QuarantineStatus = "cancelled"
)

// DecommissionStatus defines the type for decommission request statuses
type DecommissionStatus string

const (
	DecommissionStatusPending  DecommissionStatus = "pending"
	DecommissionStatusApproved DecommissionStatus = "approved"
	DecommissionStatusRejected DecommissionStatus = "rejected"
)

// QuarantineRecord isolates a tool pending investigation. A tool has at most
// one active quarantine record at a time.
type QuarantineRecord struct {
	ID          int64            `json:"id" db:"id"`
	ToolID      int64            `json:"tool_id" db:"tool_id"`
	Status      QuarantineStatus `json:"status" db:"status"`
	Reason      string           `json:"reason" db:"reason"`
	Description *string          `json:"description,omitempty" db:"description"`
	Resolution  *string          `json:"resolution,omitempty" db:"resolution"`
	ActionTaken *string          `json:"action_taken,omitempty" db:"action_taken"`
	OpenedBy    string           `json:"opened_by" db:"opened_by"`
	OpenedAt    time.Time        `json:"opened_at" db:"opened_at"`
	ClosedAt    *time.Time       `json:"closed_at,omitempty" db:"closed_at"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
	Tool        *Tool            `json:"tool,omitempty"`
}

// DecommissionRecord tracks an administrative request to retire a tool.
// Approval forces the tool into the terminal decommissioned status.
type DecommissionRecord struct {
	ID              int64              `json:"id" db:"id"`
	ToolID          int64              `json:"tool_id" db:"tool_id"`
	Status          DecommissionStatus `json:"status" db:"status"`
	Reason          string             `json:"reason" db:"reason"`
	RejectionReason *string            `json:"rejection_reason,omitempty" db:"rejection_reason"`
	RequestedBy     string             `json:"requested_by" db:"requested_by"`
	ResolvedBy      *string            `json:"resolved_by,omitempty" db:"resolved_by"`
	RequestedAt     time.Time          `json:"requested_at" db:"requested_at"`
	ResolvedAt      *time.Time         `json:"resolved_at,omitempty" db:"resolved_at"`
	CreatedAt       time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" db:"updated_at"`
	Tool            *Tool              `json:"tool,omitempty"`
}
