package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/repositories"
)

func TestCreateMovementAssignsSequentialNumbers(t *testing.T) {
	env := newTestEnv(t)
	warehouse := env.createWarehouse(t, "WH-NUM")
	first := env.createTool(t, "NUM-001")
	second := env.createTool(t, "NUM-002")

	movementA, err := env.movements.CreateMovement(CreateMovementRequest{
		Type:                   string(models.MovementTypeTransfer),
		DestinationWarehouseID: &warehouse.ID,
		Items:                  []CreateMovementItemRequest{{ToolID: first.ID, Quantity: 1}},
	}, "tester")
	if err != nil {
		t.Fatalf("creating first movement: %v", err)
	}
	movementB, err := env.movements.CreateMovement(CreateMovementRequest{
		Type:                   string(models.MovementTypeTransfer),
		DestinationWarehouseID: &warehouse.ID,
		Items:                  []CreateMovementItemRequest{{ToolID: second.ID, Quantity: 1}},
	}, "tester")
	if err != nil {
		t.Fatalf("creating second movement: %v", err)
	}

	if movementA.Number != "MOV-2025-001" {
		t.Errorf("first movement number = %s, want MOV-2025-001", movementA.Number)
	}
	if movementB.Number != "MOV-2025-002" {
		t.Errorf("second movement number = %s, want MOV-2025-002", movementB.Number)
	}
	if movementA.Status != models.MovementStatusPending {
		t.Errorf("transfer movement status = %s, want pending", movementA.Status)
	}
}

func TestConcurrentCreateMovementNumbersAreDistinct(t *testing.T) {
	env := newTestEnv(t)
	warehouse := env.createWarehouse(t, "WH-CONC")

	const workers = 8
	tools := make([]*models.Tool, workers)
	for i := range tools {
		tools[i] = env.createTool(t, uniqueCode("CONC", i+1))
	}

	var wg sync.WaitGroup
	numbers := make([]string, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			movement, err := env.movements.CreateMovement(CreateMovementRequest{
				Type:                   string(models.MovementTypeTransfer),
				DestinationWarehouseID: &warehouse.ID,
				Items:                  []CreateMovementItemRequest{{ToolID: tools[i].ID, Quantity: 1}},
			}, "tester")
			if err != nil {
				errs[i] = err
				return
			}
			numbers[i] = movement.Number
		}(i)
	}
	wg.Wait()

	seen := make(map[string]int, workers)
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		seen[numbers[i]]++
	}
	if len(seen) != workers {
		t.Fatalf("got %d distinct numbers from %d creations: %v", len(seen), workers, numbers)
	}
	for i := 1; i <= workers; i++ {
		want := fmt.Sprintf("MOV-2025-%03d", i)
		if seen[want] != 1 {
			t.Errorf("number %s allocated %d times, want once", want, seen[want])
		}
	}
}

func TestCreateMovementValidation(t *testing.T) {
	env := newTestEnv(t)
	warehouse := env.createWarehouse(t, "WH-VAL")
	tool := env.createTool(t, "VAL-001")

	cases := []struct {
		name string
		req  CreateMovementRequest
	}{
		{"unknown type", CreateMovementRequest{
			Type:  "teleport",
			Items: []CreateMovementItemRequest{{ToolID: tool.ID, Quantity: 1}},
		}},
		{"no items", CreateMovementRequest{
			Type:                   string(models.MovementTypeTransfer),
			DestinationWarehouseID: &warehouse.ID,
		}},
		{"exit without purpose", CreateMovementRequest{
			Type:  string(models.MovementTypeExit),
			Items: []CreateMovementItemRequest{{ToolID: tool.ID, Quantity: 1}},
		}},
		{"entry without destination", CreateMovementRequest{
			Type:  string(models.MovementTypeEntry),
			Items: []CreateMovementItemRequest{{ToolID: tool.ID, Quantity: 1}},
		}},
		{"duplicate tool", CreateMovementRequest{
			Type:                   string(models.MovementTypeTransfer),
			DestinationWarehouseID: &warehouse.ID,
			Items: []CreateMovementItemRequest{
				{ToolID: tool.ID, Quantity: 1},
				{ToolID: tool.ID, Quantity: 1},
			},
		}},
		{"non-positive quantity", CreateMovementRequest{
			Type:                   string(models.MovementTypeTransfer),
			DestinationWarehouseID: &warehouse.ID,
			Items:                  []CreateMovementItemRequest{{ToolID: tool.ID, Quantity: 0}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.movements.CreateMovement(tc.req, "tester"); !errors.Is(err, ErrValidation) {
				t.Errorf("got %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreateExitMovementRequiresAvailableTools(t *testing.T) {
	env := newTestEnv(t)
	tool := env.createTool(t, "EXIT-001")
	env.forceStatus(t, tool, models.ToolStatusInUse)

	_, err := env.movements.CreateMovement(CreateMovementRequest{
		Type:    string(models.MovementTypeExit),
		Purpose: strPtr(string(models.MovementPurposeLoan)),
		Items:   []CreateMovementItemRequest{{ToolID: tool.ID, Quantity: 1}},
	}, "tester")
	if !errors.Is(err, ErrAssetUnavailable) {
		t.Fatalf("got %v, want ErrAssetUnavailable", err)
	}
}

func TestEntryMovementAutoCompletes(t *testing.T) {
	env := newTestEnv(t)
	warehouse := env.createWarehouse(t, "WH-ENTRY")
	tool := env.createTool(t, "ENTRY-001")

	movement, err := env.movements.CreateMovement(CreateMovementRequest{
		Type:                   string(models.MovementTypeEntry),
		DestinationWarehouseID: &warehouse.ID,
		Items:                  []CreateMovementItemRequest{{ToolID: tool.ID, Quantity: 1}},
	}, "tester")
	if err != nil {
		t.Fatalf("creating entry movement: %v", err)
	}

	if movement.Status != models.MovementStatusCompleted {
		t.Errorf("entry movement status = %s, want completed", movement.Status)
	}
	if movement.CompletedAt == nil {
		t.Error("entry movement has no completion timestamp")
	}
	reloaded := env.reloadTool(t, tool.ID)
	if reloaded.WarehouseID == nil || *reloaded.WarehouseID != warehouse.ID {
		t.Errorf("tool warehouse = %v, want %d", reloaded.WarehouseID, warehouse.ID)
	}
	if reloaded.Status != models.ToolStatusAvailable {
		t.Errorf("tool status = %s, want available", reloaded.Status)
	}
}

func TestCompleteLoanExitMovesToolsToInUse(t *testing.T) {
	env := newTestEnv(t)
	tool := env.createTool(t, "LOAN-001")

	movement, err := env.movements.CreateMovement(CreateMovementRequest{
		Type:    string(models.MovementTypeExit),
		Purpose: strPtr(string(models.MovementPurposeLoan)),
		Items:   []CreateMovementItemRequest{{ToolID: tool.ID, Quantity: 1}},
	}, "tester")
	if err != nil {
		t.Fatalf("creating exit movement: %v", err)
	}

	completed, err := env.movements.CompleteMovement(movement.ID, "tester")
	if err != nil {
		t.Fatalf("completing movement: %v", err)
	}
	if completed.Status != models.MovementStatusCompleted {
		t.Errorf("movement status = %s, want completed", completed.Status)
	}
	reloaded := env.reloadTool(t, tool.ID)
	if reloaded.Status != models.ToolStatusInUse {
		t.Errorf("tool status = %s, want in_use", reloaded.Status)
	}
}

func TestCompleteMovementAppliesAllItemsOrNone(t *testing.T) {
	env := newTestEnv(t)
	good := env.createTool(t, "ATOMIC-001")
	doomed := env.createTool(t, "ATOMIC-002")

	movement, err := env.movements.CreateMovement(CreateMovementRequest{
		Type:    string(models.MovementTypeExit),
		Purpose: strPtr(string(models.MovementPurposeCalibrationSend)),
		Items: []CreateMovementItemRequest{
			{ToolID: good.ID, Quantity: 1},
			{ToolID: doomed.ID, Quantity: 1},
		},
	}, "tester")
	if err != nil {
		t.Fatalf("creating movement: %v", err)
	}

	// A concurrent assignment grabs the second tool before completion.
	env.forceStatus(t, env.reloadTool(t, doomed.ID), models.ToolStatusInUse)

	_, err = env.movements.CompleteMovement(movement.ID, "tester")
	var partial *PartialApplicationError
	if !errors.As(err, &partial) {
		t.Fatalf("got %v, want PartialApplicationError", err)
	}
	if len(partial.Failures) != 1 || partial.Failures[0].ToolID != doomed.ID {
		t.Fatalf("failures = %+v, want single failure for tool %d", partial.Failures, doomed.ID)
	}

	if reloaded := env.reloadTool(t, good.ID); reloaded.Status != models.ToolStatusAvailable {
		t.Errorf("untouched tool status = %s, want available", reloaded.Status)
	}
	stored, err := env.movements.GetMovementByID(movement.ID)
	if err != nil {
		t.Fatalf("reloading movement: %v", err)
	}
	if stored.Status != models.MovementStatusPending {
		t.Errorf("movement status = %s, want pending after failed completion", stored.Status)
	}
}

// The UPDATE behind complete/cancel refuses rows that already left an
// editable status, so a cancel racing a committed completion cannot flip
// the movement back.
func TestClosedMovementStatusIsImmutableInStorage(t *testing.T) {
	env := newTestEnv(t)
	tool := env.createTool(t, "IMMUT-001")

	movement, err := env.movements.CreateMovement(CreateMovementRequest{
		Type:    string(models.MovementTypeExit),
		Purpose: strPtr(string(models.MovementPurposeLoan)),
		Items:   []CreateMovementItemRequest{{ToolID: tool.ID, Quantity: 1}},
	}, "tester")
	if err != nil {
		t.Fatalf("creating movement: %v", err)
	}
	if _, err := env.movements.CompleteMovement(movement.ID, "tester"); err != nil {
		t.Fatalf("completing movement: %v", err)
	}

	// Write directly, skipping the service's read-then-check.
	err = env.movementRepo.UpdateMovementStatus(nil, movement.ID, models.MovementStatusCancelled, strPtr("late cancel"), nil)
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("cancelling completed movement in storage: got %v, want ErrNotFound", err)
	}

	stored, err := env.movements.GetMovementByID(movement.ID)
	if err != nil {
		t.Fatalf("reloading movement: %v", err)
	}
	if stored.Status != models.MovementStatusCompleted {
		t.Errorf("movement status = %s, want completed", stored.Status)
	}
	if stored.CancelReason != nil {
		t.Errorf("cancel reason = %v, want nil", stored.CancelReason)
	}
}

func TestCancelMovement(t *testing.T) {
	env := newTestEnv(t)
	tool := env.createTool(t, "CANCEL-001")

	movement, err := env.movements.CreateMovement(CreateMovementRequest{
		Type:    string(models.MovementTypeExit),
		Purpose: strPtr(string(models.MovementPurposeLoan)),
		Items:   []CreateMovementItemRequest{{ToolID: tool.ID, Quantity: 1}},
	}, "tester")
	if err != nil {
		t.Fatalf("creating movement: %v", err)
	}

	cancelled, err := env.movements.CancelMovement(movement.ID, "ordered by mistake", "tester")
	if err != nil {
		t.Fatalf("cancelling movement: %v", err)
	}
	if cancelled.Status != models.MovementStatusCancelled {
		t.Errorf("movement status = %s, want cancelled", cancelled.Status)
	}
	if cancelled.CancelReason == nil || *cancelled.CancelReason != "ordered by mistake" {
		t.Errorf("cancel reason = %v, want 'ordered by mistake'", cancelled.CancelReason)
	}
	if reloaded := env.reloadTool(t, tool.ID); reloaded.Status != models.ToolStatusAvailable {
		t.Errorf("tool status = %s, want available after cancel", reloaded.Status)
	}

	if _, err := env.movements.CompleteMovement(movement.ID, "tester"); !errors.Is(err, ErrMovementNotEditable) {
		t.Errorf("completing cancelled movement: got %v, want ErrMovementNotEditable", err)
	}
	if _, err := env.movements.CancelMovement(movement.ID, "again", "tester"); !errors.Is(err, ErrMovementNotEditable) {
		t.Errorf("cancelling cancelled movement: got %v, want ErrMovementNotEditable", err)
	}
}
