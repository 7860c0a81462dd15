package models

import "time"

// ToolStatus defines the type for tool lifecycle statuses
type ToolStatus string

const (
	ToolStatusAvailable      ToolStatus = "available"
	ToolStatusInUse          ToolStatus = "in_use"
	ToolStatusInCalibration  ToolStatus = "in_calibration"
	ToolStatusInMaintenance  ToolStatus = "in_maintenance"
	ToolStatusQuarantine     ToolStatus = "quarantine"
	ToolStatusDecommissioned ToolStatus = "decommissioned"
	ToolStatusLost           ToolStatus = "lost"
)

// IsValidToolStatus checks if the provided status string is a valid ToolStatus.
func IsValidToolStatus(status string) bool {
	switch ToolStatus(status) {
	case ToolStatusAvailable,
		ToolStatusInUse,
		ToolStatusInCalibration,
		ToolStatusInMaintenance,
		ToolStatusQuarantine,
		ToolStatusDecommissioned,
		ToolStatusLost:
		return true
	}
	return false
}

// Tool represents a physical asset tracked through its lifecycle.
// Status is mutated exclusively through the transition service; tools are
// never physically deleted (decommission is a terminal status, not a delete).
type Tool struct {
	ID                      int64      `json:"id" db:"id"`
	Code                    string     `json:"code" db:"code" binding:"required"`
	Name                    string     `json:"name" db:"name" binding:"required"`
	Description             *string    `json:"description,omitempty" db:"description"`
	Status                  ToolStatus `json:"status" db:"status"`
	Condition               *string    `json:"condition,omitempty" db:"condition"`
	WarehouseID             *int64     `json:"warehouse_id,omitempty" db:"warehouse_id"`
	LocationID              *int64     `json:"location_id,omitempty" db:"location_id"`
	RequiresCalibration     bool       `json:"requires_calibration" db:"requires_calibration"`
	CalibrationIntervalDays *int       `json:"calibration_interval_days,omitempty" db:"calibration_interval_days"`
	LastCalibrationDate     *time.Time `json:"last_calibration_date,omitempty" db:"last_calibration_date"`
	NextCalibrationDate     *time.Time `json:"next_calibration_date,omitempty" db:"next_calibration_date"`
	Active                  bool       `json:"active" db:"active"`
	Version                 int64      `json:"version" db:"version"`
	CreatedAt               time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at" db:"updated_at"`
}

// StatusTransition is one row of a tool's status history.
type StatusTransition struct {
	ID         int64      `json:"id" db:"id"`
	ToolID     int64      `json:"tool_id" db:"tool_id"`
	FromStatus ToolStatus `json:"from_status" db:"from_status"`
	ToStatus   ToolStatus `json:"to_status" db:"to_status"`
	Reason     *string    `json:"reason,omitempty" db:"reason"`
	ActorID    string     `json:"actor_id" db:"actor_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// ToolFilters holds the supported query filters for listing tools.
type ToolFilters struct {
	Status              *string `form:"status"`
	WarehouseID         *int64  `form:"warehouse_id"`
	RequiresCalibration *bool   `form:"requires_calibration"`
	Active              *bool   `form:"active"`
	Start               int     `form:"start"`
	Limit               int     `form:"limit"`
}
