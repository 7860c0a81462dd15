package services

import (
	"fmt"
	"sort"

	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/repositories"
)

// --- AlertService Interface ---

// AlertService builds the calibration dashboard projections. Alerts are
// recomputed on every call from the live tool rows, never stored.
type AlertService interface {
	GetCalibrationAlerts(severity *string) ([]models.CalibrationAlert, error)
	GetExpiredCalibrations() ([]models.CalibrationAlert, error)
}

type alertService struct {
	toolRepo repositories.ToolRepository
	clock    Clock
}

// NewAlertService creates a new instance of AlertService.
func NewAlertService(toolRepo repositories.ToolRepository, clock Clock) AlertService {
	return &alertService{toolRepo: toolRepo, clock: clock}
}

const alertScanPageSize = 500

func (s *alertService) scanAlerts() ([]models.CalibrationAlert, error) {
	requires := true
	active := true
	now := s.clock.Now()

	alerts := []models.CalibrationAlert{}
	for start := 0; ; start += alertScanPageSize {
		tools, totalCount, err := s.toolRepo.GetTools(models.ToolFilters{
			RequiresCalibration: &requires,
			Active:              &active,
			Start:               start,
			Limit:               alertScanPageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
		}
		for _, tool := range tools {
			if tool.NextCalibrationDate == nil || tool.Status == models.ToolStatusDecommissioned {
				continue
			}
			days := DaysUntilExpiration(*tool.NextCalibrationDate, now)
			alerts = append(alerts, models.CalibrationAlert{
				ToolID:              tool.ID,
				ToolCode:            tool.Code,
				ToolName:            tool.Name,
				NextCalibrationDate: *tool.NextCalibrationDate,
				DaysUntilExpiration: days,
				Severity:            ClassifyCalibrationSeverity(days),
			})
		}
		if start+len(tools) >= totalCount || len(tools) == 0 {
			break
		}
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].DaysUntilExpiration < alerts[j].DaysUntilExpiration
	})
	return alerts, nil
}

// GetCalibrationAlerts returns one alert per calibrated tool, most urgent
// first, optionally filtered to a single severity.
func (s *alertService) GetCalibrationAlerts(severity *string) ([]models.CalibrationAlert, error) {
	alerts, err := s.scanAlerts()
	if err != nil {
		return nil, err
	}
	if severity == nil || *severity == "" {
		return alerts, nil
	}
	if !models.IsValidAlertSeverity(*severity) {
		return nil, fmt.Errorf("%w: unknown severity '%s'", ErrValidation, *severity)
	}
	filtered := []models.CalibrationAlert{}
	for _, a := range alerts {
		if string(a.Severity) == *severity {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// GetExpiredCalibrations returns only tools whose due date has passed.
func (s *alertService) GetExpiredCalibrations() ([]models.CalibrationAlert, error) {
	alerts, err := s.scanAlerts()
	if err != nil {
		return nil, err
	}
	expired := []models.CalibrationAlert{}
	for _, a := range alerts {
		if a.DaysUntilExpiration < 0 {
			expired = append(expired, a)
		}
	}
	return expired, nil
}
