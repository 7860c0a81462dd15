package services

import (
	"errors"
	"testing"

	"tooltrack_backend/internal/models"
)

func TestCreateToolValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.tools.CreateTool(CreateToolRequest{Code: "  ", Name: "Blank"}, "tester")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("blank code: got %v, want ErrValidation", err)
	}

	_, err = env.tools.CreateTool(CreateToolRequest{
		Code:                "TL-NOINT",
		Name:                "Uncalibrated",
		RequiresCalibration: true,
	}, "tester")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("missing interval: got %v, want ErrValidation", err)
	}

	if _, err := env.tools.CreateTool(CreateToolRequest{Code: "TL-DUP", Name: "First"}, "tester"); err != nil {
		t.Fatalf("creating tool: %v", err)
	}
	_, err = env.tools.CreateTool(CreateToolRequest{Code: "TL-DUP", Name: "Second"}, "tester")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("duplicate code: got %v, want ErrValidation", err)
	}
}

func TestCreateToolDerivesNextCalibrationDate(t *testing.T) {
	env := newTestEnv(t)

	tool := env.createCalibratedTool(t, "TL-CAL-001", 45)
	if tool.NextCalibrationDate == nil {
		t.Fatal("calibrated tool has no next calibration date")
	}
	if want := daysFromTestInstant(45); !tool.NextCalibrationDate.Equal(want) {
		t.Errorf("next calibration date = %v, want %v", tool.NextCalibrationDate, want)
	}

	plain := env.createTool(t, "TL-CAL-002")
	if plain.NextCalibrationDate != nil {
		t.Errorf("uncalibrated tool carries next calibration date %v", plain.NextCalibrationDate)
	}
	if plain.Status != models.ToolStatusAvailable {
		t.Errorf("new tool status = %s, want available", plain.Status)
	}
}

func TestTransitionToolEndpointFlow(t *testing.T) {
	env := newTestEnv(t)
	tool := env.createTool(t, "TL-TRN-001")

	updated, err := env.tools.TransitionTool(tool.ID, TransitionToolRequest{
		TargetStatus: string(models.ToolStatusInUse),
		Reason:       strPtr("field checkout"),
	}, "tester")
	if err != nil {
		t.Fatalf("transitioning tool: %v", err)
	}
	if updated.Status != models.ToolStatusInUse {
		t.Errorf("tool status = %s, want in_use", updated.Status)
	}

	_, err = env.tools.TransitionTool(tool.ID, TransitionToolRequest{TargetStatus: "vaporized"}, "tester")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("unknown status: got %v, want ErrValidation", err)
	}

	_, err = env.tools.TransitionTool(99999, TransitionToolRequest{
		TargetStatus: string(models.ToolStatusAvailable),
	}, "tester")
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("unknown tool: got %v, want ErrToolNotFound", err)
	}

	history, err := env.tools.GetStatusHistory(tool.ID, 10)
	if err != nil {
		t.Fatalf("loading history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history rows = %d, want 1", len(history))
	}
	if history[0].Reason == nil || *history[0].Reason != "field checkout" {
		t.Errorf("history reason = %v, want 'field checkout'", history[0].Reason)
	}
}

func TestGetToolsFilters(t *testing.T) {
	env := newTestEnv(t)
	warehouse := env.createWarehouse(t, "WH-FLT")

	inUse := env.createTool(t, "TL-FLT-001")
	env.forceStatus(t, inUse, models.ToolStatusInUse)
	env.createCalibratedTool(t, "TL-FLT-002", 30)
	if _, err := env.tools.CreateTool(CreateToolRequest{
		Code: "TL-FLT-003", Name: "Stored", WarehouseID: &warehouse.ID,
	}, "tester"); err != nil {
		t.Fatalf("creating tool: %v", err)
	}

	status := string(models.ToolStatusInUse)
	tools, total, err := env.tools.GetTools(models.ToolFilters{Status: &status})
	if err != nil {
		t.Fatalf("filtering by status: %v", err)
	}
	if total != 1 || len(tools) != 1 || tools[0].ID != inUse.ID {
		t.Errorf("status filter returned %d/%d, want the single in_use tool", len(tools), total)
	}

	requires := true
	tools, total, err = env.tools.GetTools(models.ToolFilters{RequiresCalibration: &requires})
	if err != nil {
		t.Fatalf("filtering by calibration: %v", err)
	}
	if total != 1 || len(tools) != 1 || tools[0].Code != "TL-FLT-002" {
		t.Errorf("calibration filter returned %d/%d, want the single calibrated tool", len(tools), total)
	}

	tools, total, err = env.tools.GetTools(models.ToolFilters{WarehouseID: &warehouse.ID})
	if err != nil {
		t.Fatalf("filtering by warehouse: %v", err)
	}
	if total != 1 || len(tools) != 1 || tools[0].Code != "TL-FLT-003" {
		t.Errorf("warehouse filter returned %d/%d, want the single stored tool", len(tools), total)
	}
}
