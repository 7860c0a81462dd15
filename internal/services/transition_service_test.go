package services

import (
	"errors"
	"testing"

	"tooltrack_backend/internal/models"
)

var allStatuses = []models.ToolStatus{
	models.ToolStatusAvailable,
	models.ToolStatusInUse,
	models.ToolStatusInCalibration,
	models.ToolStatusInMaintenance,
	models.ToolStatusQuarantine,
	models.ToolStatusDecommissioned,
	models.ToolStatusLost,
}

func TestCanTransitionExhaustive(t *testing.T) {
	legal := map[models.ToolStatus][]models.ToolStatus{
		models.ToolStatusAvailable: {
			models.ToolStatusInUse, models.ToolStatusInCalibration, models.ToolStatusInMaintenance,
			models.ToolStatusQuarantine, models.ToolStatusDecommissioned, models.ToolStatusLost,
		},
		models.ToolStatusInUse:          {models.ToolStatusAvailable, models.ToolStatusQuarantine, models.ToolStatusLost},
		models.ToolStatusInCalibration:  {models.ToolStatusAvailable, models.ToolStatusQuarantine},
		models.ToolStatusInMaintenance:  {models.ToolStatusAvailable, models.ToolStatusQuarantine, models.ToolStatusDecommissioned},
		models.ToolStatusQuarantine:     {models.ToolStatusAvailable, models.ToolStatusDecommissioned},
		models.ToolStatusDecommissioned: {},
		models.ToolStatusLost:           {models.ToolStatusAvailable, models.ToolStatusDecommissioned},
	}

	for _, from := range allStatuses {
		allowed := map[models.ToolStatus]bool{}
		for _, to := range legal[from] {
			allowed[to] = true
		}
		for _, to := range allStatuses {
			if got := CanTransition(from, to); got != allowed[to] {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, allowed[to])
			}
		}
	}
}

func TestTransitionAppliesEdgeAndHistory(t *testing.T) {
	env := newTestEnv(t)
	tool := env.createTool(t, "TL-001")

	reason := "issued for shift"
	if err := env.transition.Transition(nil, tool, models.ToolStatusInUse, &reason, "operator-1"); err != nil {
		t.Fatalf("legal transition failed: %v", err)
	}
	if tool.Status != models.ToolStatusInUse {
		t.Errorf("tool status = %s, want in_use", tool.Status)
	}
	if tool.Version != 2 {
		t.Errorf("tool version = %d, want 2", tool.Version)
	}

	stored := env.reloadTool(t, tool.ID)
	if stored.Status != models.ToolStatusInUse || stored.Version != 2 {
		t.Errorf("stored tool = (%s, v%d), want (in_use, v2)", stored.Status, stored.Version)
	}

	history, err := env.toolRepo.GetStatusHistory(tool.ID, 10)
	if err != nil {
		t.Fatalf("fetching history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history rows = %d, want 1", len(history))
	}
	row := history[0]
	if row.FromStatus != models.ToolStatusAvailable || row.ToStatus != models.ToolStatusInUse {
		t.Errorf("history edge = %s -> %s, want available -> in_use", row.FromStatus, row.ToStatus)
	}
	if row.Reason == nil || *row.Reason != reason {
		t.Errorf("history reason = %v, want %q", row.Reason, reason)
	}
	if row.ActorID != "operator-1" {
		t.Errorf("history actor = %s, want operator-1", row.ActorID)
	}
}

func TestTransitionRejectsIllegalEdge(t *testing.T) {
	env := newTestEnv(t)
	tool := env.createTool(t, "TL-002")
	env.forceStatus(t, tool, models.ToolStatusInCalibration)

	err := env.transition.Transition(nil, tool, models.ToolStatusInUse, nil, "tester")
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("error = %v, want ErrIllegalTransition", err)
	}
	if stored := env.reloadTool(t, tool.ID); stored.Status != models.ToolStatusInCalibration {
		t.Errorf("stored status changed to %s after rejected transition", stored.Status)
	}
}

func TestDecommissionedIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	tool := env.createTool(t, "TL-003")
	env.forceStatus(t, tool, models.ToolStatusDecommissioned)

	for _, target := range allStatuses {
		err := env.transition.Transition(nil, tool, target, nil, "tester")
		if !errors.Is(err, ErrTerminalState) {
			t.Errorf("transition decommissioned -> %s: error = %v, want ErrTerminalState", target, err)
		}
	}
	if stored := env.reloadTool(t, tool.ID); stored.Status != models.ToolStatusDecommissioned {
		t.Errorf("stored status = %s, want decommissioned", stored.Status)
	}
}

func TestTransitionDetectsConcurrentModification(t *testing.T) {
	env := newTestEnv(t)
	tool := env.createTool(t, "TL-004")

	stale := *tool
	if err := env.transition.Transition(nil, tool, models.ToolStatusInUse, nil, "tester"); err != nil {
		t.Fatalf("first transition failed: %v", err)
	}

	err := env.transition.Transition(nil, &stale, models.ToolStatusQuarantine, nil, "tester")
	if !errors.Is(err, ErrConcurrentModification) {
		t.Fatalf("error = %v, want ErrConcurrentModification", err)
	}
	if stored := env.reloadTool(t, tool.ID); stored.Status != models.ToolStatusInUse {
		t.Errorf("stored status = %s, want in_use", stored.Status)
	}
}

func TestForceDecommissionBypassesTableAndIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	tool := env.createTool(t, "TL-005")
	env.forceStatus(t, tool, models.ToolStatusInCalibration)

	changed, err := env.transition.ForceDecommission(nil, tool, strPtr("write-off"), "admin")
	if err != nil {
		t.Fatalf("force decommission failed: %v", err)
	}
	if !changed {
		t.Error("first force decommission reported no change")
	}
	if tool.Status != models.ToolStatusDecommissioned {
		t.Errorf("tool status = %s, want decommissioned", tool.Status)
	}

	changed, err = env.transition.ForceDecommission(nil, tool, strPtr("write-off"), "admin")
	if err != nil {
		t.Fatalf("repeated force decommission errored: %v", err)
	}
	if changed {
		t.Error("repeated force decommission reported a change")
	}
}
