package models

import "time"

// RecordStatus defines the type for calibration/maintenance record statuses
type RecordStatus string

const (
	RecordStatusPending   RecordStatus = "pending"
	RecordStatusSent      RecordStatus = "sent"
	RecordStatusInProcess RecordStatus = "in_process"
	RecordStatusCompleted RecordStatus = "completed"
	RecordStatusRejected  RecordStatus = "rejected"
	RecordStatusCancelled RecordStatus = "cancelled"
)

// IsOpenRecordStatus reports whether a record status is non-terminal. A tool
// may carry at most one open record per dimension at a time.
func IsOpenRecordStatus(status RecordStatus) bool {
	switch status {
	case RecordStatusPending, RecordStatusSent, RecordStatusInProcess:
		return true
	}
	return false
}

// CalibrationResult defines the type for calibration receive outcomes
type CalibrationResult string

const (
	CalibrationResultApproved    CalibrationResult = "approved"
	CalibrationResultConditional CalibrationResult = "conditional"
	CalibrationResultRejected    CalibrationResult = "rejected"
)

// IsValidCalibrationResult checks if the provided string is a valid CalibrationResult.
func IsValidCalibrationResult(result string) bool {
	switch CalibrationResult(result) {
	case CalibrationResultApproved, CalibrationResultConditional, CalibrationResultRejected:
		return true
	}
	return false
}

// MaintenanceType defines the type for maintenance kinds
type MaintenanceType string

const (
	MaintenanceTypePreventive MaintenanceType = "preventive"
	MaintenanceTypeCorrective MaintenanceType = "corrective"
	MaintenanceTypePredictive MaintenanceType = "predictive"
)

// IsValidMaintenanceType checks if the provided string is a valid MaintenanceType.
func IsValidMaintenanceType(maintenanceType string) bool {
	switch MaintenanceType(maintenanceType) {
	case MaintenanceTypePreventive, MaintenanceTypeCorrective, MaintenanceTypePredictive:
		return true
	}
	return false
}

// CalibrationRecord tracks one send/receive calibration cycle for a tool.
type CalibrationRecord struct {
	ID                  int64              `json:"id" db:"id"`
	ToolID              int64              `json:"tool_id" db:"tool_id"`
	ProviderID          int64              `json:"provider_id" db:"provider_id"`
	Status              RecordStatus       `json:"status" db:"status"`
	Result              *CalibrationResult `json:"result,omitempty" db:"result"`
	CertificateNumber   *string            `json:"certificate_number,omitempty" db:"certificate_number"`
	SendDate            time.Time          `json:"send_date" db:"send_date"`
	ExpectedReturnDate  *time.Time         `json:"expected_return_date,omitempty" db:"expected_return_date"`
	ReceivedDate        *time.Time         `json:"received_date,omitempty" db:"received_date"`
	NextCalibrationDate *time.Time         `json:"next_calibration_date,omitempty" db:"next_calibration_date"`
	Notes               *string            `json:"notes,omitempty" db:"notes"`
	CreatedAt           time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at" db:"updated_at"`
	Tool                *Tool              `json:"tool,omitempty"`
}

// MaintenanceRecord tracks one send/receive maintenance cycle for a tool.
// Maintenance mirrors calibration but carries no due-date severity dimension.
type MaintenanceRecord struct {
	ID                 int64           `json:"id" db:"id"`
	ToolID             int64           `json:"tool_id" db:"tool_id"`
	ProviderID         int64           `json:"provider_id" db:"provider_id"`
	Type               MaintenanceType `json:"type" db:"type"`
	Status             RecordStatus    `json:"status" db:"status"`
	SendDate           time.Time       `json:"send_date" db:"send_date"`
	ExpectedReturnDate *time.Time      `json:"expected_return_date,omitempty" db:"expected_return_date"`
	ReceivedDate       *time.Time      `json:"received_date,omitempty" db:"received_date"`
	WorkPerformed      *string         `json:"work_performed,omitempty" db:"work_performed"`
	Notes              *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
	Tool               *Tool           `json:"tool,omitempty"`
}

// AlertSeverity defines the type for calibration alert severities
type AlertSeverity string

const (
	AlertSeverityCritical AlertSeverity = "critical"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityInfo     AlertSeverity = "info"
)

// IsValidAlertSeverity checks if the given severity is valid
func IsValidAlertSeverity(severity string) bool {
	switch AlertSeverity(severity) {
	case AlertSeverityCritical, AlertSeverityWarning, AlertSeverityInfo:
		return true
	}
	return false
}

// CalibrationAlert is a read-only dashboard projection for one tool.
type CalibrationAlert struct {
	ToolID              int64         `json:"tool_id"`
	ToolCode            string        `json:"tool_code"`
	ToolName            string        `json:"tool_name"`
	NextCalibrationDate time.Time     `json:"next_calibration_date"`
	DaysUntilExpiration int           `json:"days_until_expiration"`
	Severity            AlertSeverity `json:"severity"`
}
