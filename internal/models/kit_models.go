package models

import "time"

// KitStatus defines the type for derived kit statuses. It is computed from
// the live status of the kit's member tools at read time, never stored
// authoritatively.
type KitStatus string

const (
	KitStatusAvailable     KitStatus = "available"
	KitStatusInUse         KitStatus = "in_use"
	KitStatusInCalibration KitStatus = "in_calibration"
	KitStatusInMaintenance KitStatus = "in_maintenance"
	KitStatusIncomplete    KitStatus = "incomplete"
)

// Kit is a named bundle of required/optional tool references.
type Kit struct {
	ID          int64     `json:"id" db:"id"`
	Code        string    `json:"code" db:"code" binding:"required"`
	Name        string    `json:"name" db:"name" binding:"required"`
	Description *string   `json:"description,omitempty" db:"description"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	Items       []KitItem `json:"items,omitempty"`
}

// KitItem is one tool reference within a kit.
type KitItem struct {
	ID       int64 `json:"id" db:"id"`
	KitID    int64 `json:"kit_id" db:"kit_id"`
	ToolID   int64 `json:"tool_id" db:"tool_id" binding:"required"`
	Quantity int   `json:"quantity" db:"quantity" binding:"required,gt=0"`
	Required bool  `json:"required" db:"required"`
	Tool     *Tool `json:"tool,omitempty"`
}

// KitCalibrationStatus is the derived calibration completeness of a kit.
type KitCalibrationStatus struct {
	ToolsRequiringCalibration int  `json:"tools_requiring_calibration"`
	ToolsExpired              int  `json:"tools_expired"`
	IsComplete                bool `json:"is_complete"`
}

// KitStatusReport is the full derived view returned by kit read paths.
type KitStatusReport struct {
	KitID             int64                `json:"kit_id"`
	Status            KitStatus            `json:"status"`
	MissingToolIDs    []int64              `json:"missing_tool_ids,omitempty"`
	CalibrationStatus KitCalibrationStatus `json:"calibration_status"`
}
