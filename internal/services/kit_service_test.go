package services

import (
	"errors"
	"testing"

	"tooltrack_backend/internal/models"
)

func kitStatusFixture(required, optional models.ToolStatus) models.KitStatus {
	kit := &models.Kit{Items: []models.KitItem{
		{ToolID: 1, Quantity: 1, Required: true},
		{ToolID: 2, Quantity: 1, Required: false},
	}}
	tools := map[int64]*models.Tool{
		1: {ID: 1, Status: required},
		2: {ID: 2, Status: optional},
	}
	return ComputeKitStatus(kit, tools, false)
}

func TestComputeKitStatus(t *testing.T) {
	cases := []struct {
		name     string
		required models.ToolStatus
		optional models.ToolStatus
		want     models.KitStatus
	}{
		{"all available", models.ToolStatusAvailable, models.ToolStatusAvailable, models.KitStatusAvailable},
		{"required lost", models.ToolStatusLost, models.ToolStatusAvailable, models.KitStatusIncomplete},
		{"required decommissioned", models.ToolStatusDecommissioned, models.ToolStatusAvailable, models.KitStatusIncomplete},
		{"required in calibration", models.ToolStatusInCalibration, models.ToolStatusAvailable, models.KitStatusInCalibration},
		{"required in maintenance", models.ToolStatusInMaintenance, models.ToolStatusAvailable, models.KitStatusInMaintenance},
		{"optional lost is ignored", models.ToolStatusAvailable, models.ToolStatusLost, models.KitStatusAvailable},
		{"optional in calibration is ignored", models.ToolStatusAvailable, models.ToolStatusInCalibration, models.KitStatusAvailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := kitStatusFixture(tc.required, tc.optional); got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestComputeKitStatusPrecedence(t *testing.T) {
	kit := &models.Kit{Items: []models.KitItem{
		{ToolID: 1, Quantity: 1, Required: true},
		{ToolID: 2, Quantity: 1, Required: true},
	}}
	tools := map[int64]*models.Tool{
		1: {ID: 1, Status: models.ToolStatusInCalibration},
		2: {ID: 2, Status: models.ToolStatusInMaintenance},
	}
	if got := ComputeKitStatus(kit, tools, false); got != models.KitStatusInCalibration {
		t.Errorf("calibration should outrank maintenance, got %s", got)
	}

	// A missing required tool outranks everything.
	delete(tools, 1)
	if got := ComputeKitStatus(kit, tools, false); got != models.KitStatusIncomplete {
		t.Errorf("missing tool should mark kit incomplete, got %s", got)
	}
}

func TestComputeKitStatusInUse(t *testing.T) {
	kit := &models.Kit{Items: []models.KitItem{{ToolID: 1, Quantity: 1, Required: true}}}
	tools := map[int64]*models.Tool{1: {ID: 1, Status: models.ToolStatusAvailable}}

	if got := ComputeKitStatus(kit, tools, true); got != models.KitStatusInUse {
		t.Errorf("kit with open assignment = %s, want in_use", got)
	}
}

func TestComputeKitCalibrationStatus(t *testing.T) {
	kit := &models.Kit{Items: []models.KitItem{
		{ToolID: 1, Quantity: 1, Required: true},
		{ToolID: 2, Quantity: 1, Required: false},
		{ToolID: 3, Quantity: 1, Required: true},
	}}
	expired := daysFromTestInstant(-1)
	current := daysFromTestInstant(90)
	tools := map[int64]*models.Tool{
		1: {ID: 1, RequiresCalibration: true, NextCalibrationDate: &expired},
		2: {ID: 2, RequiresCalibration: true, NextCalibrationDate: &current},
		3: {ID: 3, RequiresCalibration: false},
	}

	status := ComputeKitCalibrationStatus(kit, tools, testInstant)
	if status.ToolsRequiringCalibration != 2 {
		t.Errorf("tools requiring calibration = %d, want 2", status.ToolsRequiringCalibration)
	}
	if status.ToolsExpired != 1 {
		t.Errorf("tools expired = %d, want 1", status.ToolsExpired)
	}
	if status.IsComplete {
		t.Error("kit with an expired member should be incomplete")
	}
}

func TestCreateKitValidation(t *testing.T) {
	env := newTestEnv(t)
	tool := env.createTool(t, "KIT-VAL-001")

	cases := []struct {
		name string
		req  CreateKitRequest
	}{
		{"no code", CreateKitRequest{
			Name:  "Survey Kit",
			Items: []CreateKitItemRequest{{ToolID: tool.ID, Quantity: 1, Required: true}},
		}},
		{"no items", CreateKitRequest{Code: "KIT-EMPTY", Name: "Empty Kit"}},
		{"duplicate tool", CreateKitRequest{
			Code: "KIT-DUP", Name: "Dup Kit",
			Items: []CreateKitItemRequest{
				{ToolID: tool.ID, Quantity: 1, Required: true},
				{ToolID: tool.ID, Quantity: 2, Required: false},
			},
		}},
		{"non-positive quantity", CreateKitRequest{
			Code: "KIT-QTY", Name: "Qty Kit",
			Items: []CreateKitItemRequest{{ToolID: tool.ID, Quantity: 0, Required: true}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.kits.CreateKit(tc.req, "tester"); !errors.Is(err, ErrValidation) {
				t.Errorf("got %v, want ErrValidation", err)
			}
		})
	}

	_, err := env.kits.CreateKit(CreateKitRequest{
		Code: "KIT-GHOST", Name: "Ghost Kit",
		Items: []CreateKitItemRequest{{ToolID: 99999, Quantity: 1, Required: true}},
	}, "tester")
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("unknown tool: got %v, want ErrToolNotFound", err)
	}
}

func TestKitViewReflectsLiveToolState(t *testing.T) {
	env := newTestEnv(t)
	required := env.createCalibratedTool(t, "KIT-LIVE-001", 10)
	optional := env.createTool(t, "KIT-LIVE-002")

	kit, err := env.kits.CreateKit(CreateKitRequest{
		Code: "KIT-LIVE", Name: "Live Kit",
		Items: []CreateKitItemRequest{
			{ToolID: required.ID, Quantity: 1, Required: true},
			{ToolID: optional.ID, Quantity: 1, Required: false},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("creating kit: %v", err)
	}

	view, err := env.kits.GetKitByID(kit.ID)
	if err != nil {
		t.Fatalf("loading kit view: %v", err)
	}
	if view.Status != models.KitStatusAvailable {
		t.Errorf("fresh kit status = %s, want available", view.Status)
	}
	if view.CalibrationStatus.ToolsRequiringCalibration != 1 {
		t.Errorf("tools requiring calibration = %d, want 1", view.CalibrationStatus.ToolsRequiringCalibration)
	}

	env.forceStatus(t, env.reloadTool(t, required.ID), models.ToolStatusInMaintenance)

	view, err = env.kits.GetKitByID(kit.ID)
	if err != nil {
		t.Fatalf("reloading kit view: %v", err)
	}
	if view.Status != models.KitStatusInMaintenance {
		t.Errorf("kit status = %s, want in_maintenance after member change", view.Status)
	}

	report, err := env.kits.GetKitStatusReport(kit.ID)
	if err != nil {
		t.Fatalf("loading status report: %v", err)
	}
	if report.Status != models.KitStatusInMaintenance {
		t.Errorf("report status = %s, want in_maintenance", report.Status)
	}
	if len(report.MissingToolIDs) != 0 {
		t.Errorf("missing tool IDs = %v, want none", report.MissingToolIDs)
	}
}
