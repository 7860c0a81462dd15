package services

import (
	"errors"
	"testing"

	"tooltrack_backend/internal/models"
)

func TestGetCalibrationAlerts(t *testing.T) {
	env := newTestEnv(t)
	expired := env.createCalibratedTool(t, "ALR-001", -5)
	urgent := env.createCalibratedTool(t, "ALR-002", 1)
	upcoming := env.createCalibratedTool(t, "ALR-003", 15)
	distant := env.createCalibratedTool(t, "ALR-004", 120)
	env.createTool(t, "ALR-005") // no calibration, never alerts

	alerts, err := env.alerts.GetCalibrationAlerts(nil)
	if err != nil {
		t.Fatalf("listing alerts: %v", err)
	}
	if len(alerts) != 4 {
		t.Fatalf("got %d alerts, want 4", len(alerts))
	}

	// Most urgent first.
	wantOrder := []int64{expired.ID, urgent.ID, upcoming.ID, distant.ID}
	for i, want := range wantOrder {
		if alerts[i].ToolID != want {
			t.Errorf("alert[%d].ToolID = %d, want %d", i, alerts[i].ToolID, want)
		}
	}

	wantSeverity := []models.AlertSeverity{
		models.AlertSeverityCritical,
		models.AlertSeverityCritical,
		models.AlertSeverityWarning,
		models.AlertSeverityInfo,
	}
	for i, want := range wantSeverity {
		if alerts[i].Severity != want {
			t.Errorf("alert[%d].Severity = %s, want %s", i, alerts[i].Severity, want)
		}
	}
	if alerts[0].DaysUntilExpiration != -5 {
		t.Errorf("expired alert days = %d, want -5", alerts[0].DaysUntilExpiration)
	}
}

func TestGetCalibrationAlertsSeverityFilter(t *testing.T) {
	env := newTestEnv(t)
	env.createCalibratedTool(t, "ALR-F-001", 1)
	warning := env.createCalibratedTool(t, "ALR-F-002", 15)
	env.createCalibratedTool(t, "ALR-F-003", 120)

	severity := string(models.AlertSeverityWarning)
	alerts, err := env.alerts.GetCalibrationAlerts(&severity)
	if err != nil {
		t.Fatalf("listing warning alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].ToolID != warning.ID {
		t.Fatalf("alerts = %+v, want only tool %d", alerts, warning.ID)
	}

	bogus := "panic"
	if _, err := env.alerts.GetCalibrationAlerts(&bogus); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown severity: got %v, want ErrValidation", err)
	}
}

func TestGetExpiredCalibrations(t *testing.T) {
	env := newTestEnv(t)
	expired := env.createCalibratedTool(t, "ALR-X-001", -1)
	env.createCalibratedTool(t, "ALR-X-002", 0)
	env.createCalibratedTool(t, "ALR-X-003", 30)

	alerts, err := env.alerts.GetExpiredCalibrations()
	if err != nil {
		t.Fatalf("listing expired calibrations: %v", err)
	}
	if len(alerts) != 1 || alerts[0].ToolID != expired.ID {
		t.Fatalf("alerts = %+v, want only tool %d", alerts, expired.ID)
	}
}
