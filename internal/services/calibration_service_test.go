package services

import (
	"errors"
	"testing"
	"time"

	"tooltrack_backend/internal/models"
)

func TestDaysUntilExpiration(t *testing.T) {
	cases := []struct {
		name string
		due  time.Time
		want int
	}{
		{"due today", testInstant, 0},
		{"due today later hour", time.Date(2025, time.March, 10, 23, 59, 0, 0, time.UTC), 0},
		{"due tomorrow", daysFromTestInstant(1), 1},
		{"expired yesterday", daysFromTestInstant(-1), -1},
		{"due in a month", daysFromTestInstant(30), 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DaysUntilExpiration(tc.due, testInstant); got != tc.want {
				t.Errorf("DaysUntilExpiration(%v) = %d, want %d", tc.due, got, tc.want)
			}
		})
	}
}

func TestClassifyCalibrationSeverity(t *testing.T) {
	cases := []struct {
		days int
		want models.AlertSeverity
	}{
		{-10, models.AlertSeverityCritical},
		{-1, models.AlertSeverityCritical},
		{0, models.AlertSeverityCritical},
		{2, models.AlertSeverityCritical},
		{3, models.AlertSeverityWarning},
		{29, models.AlertSeverityWarning},
		{30, models.AlertSeverityInfo},
		{365, models.AlertSeverityInfo},
	}
	for _, tc := range cases {
		if got := ClassifyCalibrationSeverity(tc.days); got != tc.want {
			t.Errorf("ClassifyCalibrationSeverity(%d) = %s, want %s", tc.days, got, tc.want)
		}
	}
}

func TestSendToCalibration(t *testing.T) {
	env := newTestEnv(t)
	provider := env.createProvider(t, "MetroLab")
	tool := env.createCalibratedTool(t, "CAL-SEND-001", 10)

	record, err := env.calibration.SendToCalibration(SendToCalibrationRequest{
		ToolID:     tool.ID,
		ProviderID: provider.ID,
	}, "tester")
	if err != nil {
		t.Fatalf("sending to calibration: %v", err)
	}
	if record.Status != models.RecordStatusSent {
		t.Errorf("record status = %s, want sent", record.Status)
	}
	if !record.SendDate.Equal(testInstant) {
		t.Errorf("send date = %v, want %v", record.SendDate, testInstant)
	}
	if reloaded := env.reloadTool(t, tool.ID); reloaded.Status != models.ToolStatusInCalibration {
		t.Errorf("tool status = %s, want in_calibration", reloaded.Status)
	}

	_, err = env.calibration.SendToCalibration(SendToCalibrationRequest{
		ToolID:     tool.ID,
		ProviderID: provider.ID,
	}, "tester")
	if !errors.Is(err, ErrDuplicateOpenRecord) {
		t.Fatalf("second send: got %v, want ErrDuplicateOpenRecord", err)
	}
}

func TestReceiveCalibrationApproved(t *testing.T) {
	env := newTestEnv(t)
	provider := env.createProvider(t, "MetroLab")
	tool := env.createCalibratedTool(t, "CAL-RCV-001", 10)

	record, err := env.calibration.SendToCalibration(SendToCalibrationRequest{
		ToolID:     tool.ID,
		ProviderID: provider.ID,
	}, "tester")
	if err != nil {
		t.Fatalf("sending to calibration: %v", err)
	}

	received, err := env.calibration.ReceiveFromCalibration(record.ID, ReceiveCalibrationRequest{
		Result:            string(models.CalibrationResultApproved),
		CertificateNumber: strPtr("CERT-2025-042"),
	}, "tester")
	if err != nil {
		t.Fatalf("receiving from calibration: %v", err)
	}
	if received.Status != models.RecordStatusCompleted {
		t.Errorf("record status = %s, want completed", received.Status)
	}
	if received.Result == nil || *received.Result != models.CalibrationResultApproved {
		t.Errorf("record result = %v, want approved", received.Result)
	}

	reloaded := env.reloadTool(t, tool.ID)
	if reloaded.Status != models.ToolStatusAvailable {
		t.Errorf("tool status = %s, want available", reloaded.Status)
	}
	if reloaded.LastCalibrationDate == nil || !reloaded.LastCalibrationDate.Equal(testInstant) {
		t.Errorf("last calibration date = %v, want %v", reloaded.LastCalibrationDate, testInstant)
	}
	wantNext := testInstant.AddDate(0, 0, 180)
	if reloaded.NextCalibrationDate == nil || !reloaded.NextCalibrationDate.Equal(wantNext) {
		t.Errorf("next calibration date = %v, want %v", reloaded.NextCalibrationDate, wantNext)
	}

	// Closed records reject a second receive.
	_, err = env.calibration.ReceiveFromCalibration(record.ID, ReceiveCalibrationRequest{
		Result: string(models.CalibrationResultApproved),
	}, "tester")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("receiving closed record: got %v, want ErrValidation", err)
	}
}

func TestReceiveCalibrationRejectedQuarantinesTool(t *testing.T) {
	env := newTestEnv(t)
	provider := env.createProvider(t, "MetroLab")
	tool := env.createCalibratedTool(t, "CAL-REJ-001", 10)
	originalNext := tool.NextCalibrationDate

	record, err := env.calibration.SendToCalibration(SendToCalibrationRequest{
		ToolID:     tool.ID,
		ProviderID: provider.ID,
	}, "tester")
	if err != nil {
		t.Fatalf("sending to calibration: %v", err)
	}

	received, err := env.calibration.ReceiveFromCalibration(record.ID, ReceiveCalibrationRequest{
		Result: string(models.CalibrationResultRejected),
	}, "tester")
	if err != nil {
		t.Fatalf("receiving rejected result: %v", err)
	}
	if received.Status != models.RecordStatusCompleted {
		t.Errorf("record status = %s, want completed", received.Status)
	}

	reloaded := env.reloadTool(t, tool.ID)
	if reloaded.Status != models.ToolStatusQuarantine {
		t.Errorf("tool status = %s, want quarantine", reloaded.Status)
	}
	if (reloaded.NextCalibrationDate == nil) != (originalNext == nil) {
		t.Errorf("next calibration date changed on rejection: %v", reloaded.NextCalibrationDate)
	}
	if reloaded.NextCalibrationDate != nil && !reloaded.NextCalibrationDate.Equal(*originalNext) {
		t.Errorf("next calibration date = %v, want unchanged %v", reloaded.NextCalibrationDate, originalNext)
	}
}

func TestCancelCalibrationRestoresTool(t *testing.T) {
	env := newTestEnv(t)
	provider := env.createProvider(t, "MetroLab")
	tool := env.createCalibratedTool(t, "CAL-CXL-001", 10)

	record, err := env.calibration.SendToCalibration(SendToCalibrationRequest{
		ToolID:     tool.ID,
		ProviderID: provider.ID,
	}, "tester")
	if err != nil {
		t.Fatalf("sending to calibration: %v", err)
	}

	cancelled, err := env.calibration.CancelCalibration(record.ID, "tester")
	if err != nil {
		t.Fatalf("cancelling calibration: %v", err)
	}
	if cancelled.Status != models.RecordStatusCancelled {
		t.Errorf("record status = %s, want cancelled", cancelled.Status)
	}
	if reloaded := env.reloadTool(t, tool.ID); reloaded.Status != models.ToolStatusAvailable {
		t.Errorf("tool status = %s, want available after cancel", reloaded.Status)
	}
}

func TestMaintenanceCycle(t *testing.T) {
	env := newTestEnv(t)
	provider := env.createProvider(t, "FixItAll")
	tool := env.createTool(t, "MNT-001")

	_, err := env.calibration.SendToMaintenance(SendToMaintenanceRequest{
		ToolID:     tool.ID,
		ProviderID: provider.ID,
		Type:       "cosmetic",
	}, "tester")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown maintenance type: got %v, want ErrValidation", err)
	}

	record, err := env.calibration.SendToMaintenance(SendToMaintenanceRequest{
		ToolID:     tool.ID,
		ProviderID: provider.ID,
		Type:       string(models.MaintenanceTypePreventive),
	}, "tester")
	if err != nil {
		t.Fatalf("sending to maintenance: %v", err)
	}
	if record.Type != models.MaintenanceTypePreventive {
		t.Errorf("record type = %s, want preventive", record.Type)
	}
	if reloaded := env.reloadTool(t, tool.ID); reloaded.Status != models.ToolStatusInMaintenance {
		t.Errorf("tool status = %s, want in_maintenance", reloaded.Status)
	}

	received, err := env.calibration.ReceiveFromMaintenance(record.ID, ReceiveMaintenanceRequest{
		WorkPerformed: strPtr("replaced worn bearings"),
	}, "tester")
	if err != nil {
		t.Fatalf("receiving from maintenance: %v", err)
	}
	if received.Status != models.RecordStatusCompleted {
		t.Errorf("record status = %s, want completed", received.Status)
	}
	if received.WorkPerformed == nil || *received.WorkPerformed != "replaced worn bearings" {
		t.Errorf("work performed = %v, want 'replaced worn bearings'", received.WorkPerformed)
	}
	if reloaded := env.reloadTool(t, tool.ID); reloaded.Status != models.ToolStatusAvailable {
		t.Errorf("tool status = %s, want available", reloaded.Status)
	}
}
