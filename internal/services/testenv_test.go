package services

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"tooltrack_backend/internal/database"
	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/repositories"
	"tooltrack_backend/internal/services/audit"
)

// testEnv wires the full service graph over an in-memory database with a
// pinned clock.
type testEnv struct {
	db    *sql.DB
	clock FixedClock

	toolRepo     repositories.ToolRepository
	movementRepo repositories.MovementRepository
	rosterRepo   repositories.RosterRepository
	kitRepo      repositories.KitRepository
	registryRepo repositories.RegistryRepository

	transition  TransitionService
	tools       ToolService
	movements   MovementService
	calibration CalibrationService
	quarantine  QuarantineService
	kits        KitService
	roster      RosterService
	alerts      AlertService
}

var testInstant = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := database.NewTestDB(t)
	clock := FixedClock{Instant: testInstant}
	sink := audit.NopSink{}

	toolRepo := repositories.NewToolRepository(db)
	movementRepo := repositories.NewMovementRepository(db)
	calibrationRepo := repositories.NewCalibrationRepository(db)
	maintenanceRepo := repositories.NewMaintenanceRepository(db)
	quarantineRepo := repositories.NewQuarantineRepository(db)
	decommissionRepo := repositories.NewDecommissionRepository(db)
	kitRepo := repositories.NewKitRepository(db)
	rosterRepo := repositories.NewRosterRepository(db)
	registryRepo := repositories.NewRegistryRepository(db)

	transition := NewTransitionService(toolRepo)

	return &testEnv{
		db:           db,
		clock:        clock,
		toolRepo:     toolRepo,
		movementRepo: movementRepo,
		rosterRepo:   rosterRepo,
		kitRepo:      kitRepo,
		registryRepo: registryRepo,
		transition:   transition,
		tools:        NewToolService(toolRepo, transition, sink, db),
		movements:    NewMovementService(movementRepo, toolRepo, registryRepo, transition, sink, clock, db),
		calibration:  NewCalibrationService(calibrationRepo, maintenanceRepo, toolRepo, registryRepo, transition, sink, clock, db),
		quarantine:   NewQuarantineService(quarantineRepo, decommissionRepo, toolRepo, transition, sink, clock, db),
		kits:         NewKitService(kitRepo, toolRepo, rosterRepo, sink, clock, db),
		roster:       NewRosterService(rosterRepo, toolRepo, kitRepo, registryRepo, transition, sink, clock, db),
		alerts:       NewAlertService(toolRepo, clock),
	}
}

func (e *testEnv) createWarehouse(t *testing.T, code string) *models.Warehouse {
	t.Helper()
	warehouse, err := e.registryRepo.CreateWarehouse(&models.Warehouse{Code: code, Name: "Warehouse " + code, Active: true})
	if err != nil {
		t.Fatalf("creating warehouse %s: %v", code, err)
	}
	return warehouse
}

func (e *testEnv) createEmployee(t *testing.T, code string) *models.Employee {
	t.Helper()
	employee, err := e.registryRepo.CreateEmployee(&models.Employee{Code: code, FullName: "Employee " + code, Active: true})
	if err != nil {
		t.Fatalf("creating employee %s: %v", code, err)
	}
	return employee
}

func (e *testEnv) createProvider(t *testing.T, name string) *models.Provider {
	t.Helper()
	provider, err := e.registryRepo.CreateProvider(&models.Provider{Name: name, Active: true})
	if err != nil {
		t.Fatalf("creating provider %s: %v", name, err)
	}
	return provider
}

func (e *testEnv) createTool(t *testing.T, code string) *models.Tool {
	t.Helper()
	tool, err := e.tools.CreateTool(CreateToolRequest{Code: code, Name: "Tool " + code}, "tester")
	if err != nil {
		t.Fatalf("creating tool %s: %v", code, err)
	}
	return tool
}

// createCalibratedTool creates a tool with a 180-day interval whose next
// calibration falls daysFromNow relative to the pinned clock.
func (e *testEnv) createCalibratedTool(t *testing.T, code string, daysFromNow int) *models.Tool {
	t.Helper()
	interval := 180
	last := testInstant.AddDate(0, 0, daysFromNow-interval)
	tool, err := e.tools.CreateTool(CreateToolRequest{
		Code:                    code,
		Name:                    "Tool " + code,
		RequiresCalibration:     true,
		CalibrationIntervalDays: &interval,
		LastCalibrationDate:     &last,
	}, "tester")
	if err != nil {
		t.Fatalf("creating calibrated tool %s: %v", code, err)
	}
	return tool
}

// forceStatus drives a tool to the given status through the transition
// service, hopping through available when there is no direct edge.
func (e *testEnv) forceStatus(t *testing.T, tool *models.Tool, target models.ToolStatus) *models.Tool {
	t.Helper()
	if tool.Status == target {
		return tool
	}
	if !CanTransition(tool.Status, target) {
		if err := e.transition.Transition(nil, tool, models.ToolStatusAvailable, nil, "tester"); err != nil {
			t.Fatalf("moving tool %d to available: %v", tool.ID, err)
		}
	}
	if err := e.transition.Transition(nil, tool, target, nil, "tester"); err != nil {
		t.Fatalf("moving tool %d to %s: %v", tool.ID, target, err)
	}
	return tool
}

func (e *testEnv) reloadTool(t *testing.T, id int64) *models.Tool {
	t.Helper()
	tool, err := e.toolRepo.GetToolByID(nil, id)
	if err != nil {
		t.Fatalf("reloading tool %d: %v", id, err)
	}
	return tool
}

func strPtr(s string) *string { return &s }

func daysFromTestInstant(days int) time.Time {
	return testInstant.AddDate(0, 0, days)
}

func uniqueCode(prefix string, n int) string {
	return fmt.Sprintf("%s-%03d", prefix, n)
}
