package services

import (
	"errors"
	"testing"
	"time"

	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/repositories"
)

func TestProjectOverdue(t *testing.T) {
	past := daysFromTestInstant(-3)
	future := daysFromTestInstant(3)

	cases := []struct {
		name       string
		status     models.AssignmentStatus
		expected   time.Time
		wantStatus models.AssignmentStatus
		wantDays   int
	}{
		{"active past due", models.AssignmentStatusActive, past, models.AssignmentStatusOverdue, 3},
		{"extended past due", models.AssignmentStatusExtended, past, models.AssignmentStatusOverdue, 3},
		{"active not yet due", models.AssignmentStatusActive, future, models.AssignmentStatusActive, 0},
		{"returned stays returned", models.AssignmentStatusReturned, past, models.AssignmentStatusReturned, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assignment := &models.RosterAssignment{Status: tc.status, ExpectedReturnDate: tc.expected}
			ProjectOverdue(assignment, testInstant)
			if assignment.Status != tc.wantStatus {
				t.Errorf("status = %s, want %s", assignment.Status, tc.wantStatus)
			}
			if assignment.DaysOverdue != tc.wantDays {
				t.Errorf("days overdue = %d, want %d", assignment.DaysOverdue, tc.wantDays)
			}
		})
	}
}

func TestAssignToolToEmployee(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t, "EMP-001")
	tool := env.createTool(t, "RST-001")

	assignment, err := env.roster.Assign(AssignRequest{
		ToolID:             &tool.ID,
		EmployeeID:         employee.ID,
		ExpectedReturnDate: daysFromTestInstant(7),
	}, "tester")
	if err != nil {
		t.Fatalf("assigning tool: %v", err)
	}
	if assignment.Status != models.AssignmentStatusActive {
		t.Errorf("assignment status = %s, want active", assignment.Status)
	}
	if !assignment.AssignmentDate.Equal(testInstant) {
		t.Errorf("assignment date = %v, want %v", assignment.AssignmentDate, testInstant)
	}
	if reloaded := env.reloadTool(t, tool.ID); reloaded.Status != models.ToolStatusInUse {
		t.Errorf("tool status = %s, want in_use", reloaded.Status)
	}

	// Double booking fails and the non-available status keeps other tools out.
	_, err = env.roster.Assign(AssignRequest{
		ToolID:             &tool.ID,
		EmployeeID:         employee.ID,
		ExpectedReturnDate: daysFromTestInstant(7),
	}, "tester")
	if !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("double booking: got %v, want ErrAlreadyAssigned", err)
	}
}

func TestAssignValidation(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t, "EMP-VAL")
	tool := env.createTool(t, "RST-VAL-001")
	kit, err := env.kits.CreateKit(CreateKitRequest{
		Code: "RST-KIT", Name: "Roster Kit",
		Items: []CreateKitItemRequest{{ToolID: tool.ID, Quantity: 1, Required: true}},
	}, "tester")
	if err != nil {
		t.Fatalf("creating kit: %v", err)
	}

	_, err = env.roster.Assign(AssignRequest{
		EmployeeID:         employee.ID,
		ExpectedReturnDate: daysFromTestInstant(7),
	}, "tester")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("neither tool nor kit: got %v, want ErrValidation", err)
	}

	_, err = env.roster.Assign(AssignRequest{
		ToolID:             &tool.ID,
		KitID:              &kit.ID,
		EmployeeID:         employee.ID,
		ExpectedReturnDate: daysFromTestInstant(7),
	}, "tester")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("both tool and kit: got %v, want ErrValidation", err)
	}

	_, err = env.roster.Assign(AssignRequest{
		ToolID:             &tool.ID,
		EmployeeID:         employee.ID,
		ExpectedReturnDate: daysFromTestInstant(-1),
	}, "tester")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("return before assignment: got %v, want ErrValidation", err)
	}

	_, err = env.roster.Assign(AssignRequest{
		ToolID:             &tool.ID,
		EmployeeID:         99999,
		ExpectedReturnDate: daysFromTestInstant(7),
	}, "tester")
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("unknown employee: got %v, want ErrEmployeeNotFound", err)
	}
}

func TestAssignRejectsUnavailableTool(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t, "EMP-002")
	tool := env.createTool(t, "RST-002")
	env.forceStatus(t, tool, models.ToolStatusInCalibration)

	_, err := env.roster.Assign(AssignRequest{
		ToolID:             &tool.ID,
		EmployeeID:         employee.ID,
		ExpectedReturnDate: daysFromTestInstant(7),
	}, "tester")
	if !errors.Is(err, ErrAssetUnavailable) {
		t.Fatalf("got %v, want ErrAssetUnavailable", err)
	}
}

func TestReturnAssignmentFreesTool(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t, "EMP-003")
	tool := env.createTool(t, "RST-003")

	assignment, err := env.roster.Assign(AssignRequest{
		ToolID:             &tool.ID,
		EmployeeID:         employee.ID,
		ExpectedReturnDate: daysFromTestInstant(7),
	}, "tester")
	if err != nil {
		t.Fatalf("assigning tool: %v", err)
	}

	returned, err := env.roster.ReturnAssignment(assignment.ID, ReturnAssignmentRequest{}, "tester")
	if err != nil {
		t.Fatalf("returning assignment: %v", err)
	}
	if returned.Status != models.AssignmentStatusReturned {
		t.Errorf("assignment status = %s, want returned", returned.Status)
	}
	if returned.ActualReturnDate == nil || !returned.ActualReturnDate.Equal(testInstant) {
		t.Errorf("actual return date = %v, want %v", returned.ActualReturnDate, testInstant)
	}
	if reloaded := env.reloadTool(t, tool.ID); reloaded.Status != models.ToolStatusAvailable {
		t.Errorf("tool status = %s, want available", reloaded.Status)
	}

	// Freed tool can be booked again.
	if _, err := env.roster.Assign(AssignRequest{
		ToolID:             &tool.ID,
		EmployeeID:         employee.ID,
		ExpectedReturnDate: daysFromTestInstant(7),
	}, "tester"); err != nil {
		t.Fatalf("reassigning returned tool: %v", err)
	}

	if _, err := env.roster.ReturnAssignment(assignment.ID, ReturnAssignmentRequest{}, "tester"); !errors.Is(err, ErrValidation) {
		t.Errorf("returning closed assignment: got %v, want ErrValidation", err)
	}
}

func TestOverdueIsReadTimeProjection(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t, "EMP-004")
	tool := env.createTool(t, "RST-004")

	assignmentDate := daysFromTestInstant(-5)
	assignment, err := env.roster.Assign(AssignRequest{
		ToolID:             &tool.ID,
		EmployeeID:         employee.ID,
		AssignmentDate:     &assignmentDate,
		ExpectedReturnDate: daysFromTestInstant(-1),
	}, "tester")
	if err != nil {
		t.Fatalf("assigning tool: %v", err)
	}

	projected, err := env.roster.GetAssignmentByID(assignment.ID)
	if err != nil {
		t.Fatalf("loading assignment: %v", err)
	}
	if projected.Status != models.AssignmentStatusOverdue {
		t.Errorf("projected status = %s, want overdue", projected.Status)
	}
	if projected.DaysOverdue != 1 {
		t.Errorf("days overdue = %d, want 1", projected.DaysOverdue)
	}

	// The stored row keeps its active status.
	stored, err := env.rosterRepo.GetAssignmentByID(nil, assignment.ID)
	if err != nil {
		t.Fatalf("reading stored assignment: %v", err)
	}
	if stored.Status != models.AssignmentStatusActive {
		t.Errorf("stored status = %s, want active", stored.Status)
	}

	overdue, err := env.roster.GetOverdueAssignments()
	if err != nil {
		t.Fatalf("listing overdue assignments: %v", err)
	}
	if len(overdue) != 1 || overdue[0].ID != assignment.ID {
		t.Errorf("overdue list = %+v, want the single overdue assignment", overdue)
	}
}

func TestGetAssignmentsOverdueOnlyCountsFilteredSet(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t, "EMP-OVD")
	pastDate := daysFromTestInstant(-10)

	overdueIDs := make(map[int64]bool, 2)
	for i := 1; i <= 2; i++ {
		tool := env.createTool(t, uniqueCode("OVD", i))
		assignment, err := env.roster.Assign(AssignRequest{
			ToolID:             &tool.ID,
			EmployeeID:         employee.ID,
			AssignmentDate:     &pastDate,
			ExpectedReturnDate: daysFromTestInstant(-i),
		}, "tester")
		if err != nil {
			t.Fatalf("assigning overdue tool %d: %v", i, err)
		}
		overdueIDs[assignment.ID] = true
	}
	current := env.createTool(t, uniqueCode("OVD", 3))
	if _, err := env.roster.Assign(AssignRequest{
		ToolID:             &current.ID,
		EmployeeID:         employee.ID,
		ExpectedReturnDate: daysFromTestInstant(7),
	}, "tester"); err != nil {
		t.Fatalf("assigning current tool: %v", err)
	}

	assignments, total, err := env.roster.GetAssignments(models.RosterFilters{OverdueOnly: true})
	if err != nil {
		t.Fatalf("listing overdue assignments: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(assignments) != 2 {
		t.Fatalf("got %d assignments, want 2", len(assignments))
	}
	for _, a := range assignments {
		if !overdueIDs[a.ID] {
			t.Errorf("assignment %d is not one of the overdue fixtures", a.ID)
		}
		if a.Status != models.AssignmentStatusOverdue {
			t.Errorf("assignment %d status = %s, want overdue", a.ID, a.Status)
		}
	}

	// A one-row page still reports the full filtered total.
	page, total, err := env.roster.GetAssignments(models.RosterFilters{OverdueOnly: true, Limit: 1})
	if err != nil {
		t.Fatalf("listing overdue page: %v", err)
	}
	if len(page) != 1 || total != 2 {
		t.Errorf("page of 1 reported %d rows / total %d, want 1 / 2", len(page), total)
	}
}

func TestExtendAssignment(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t, "EMP-005")
	tool := env.createTool(t, "RST-005")

	assignment, err := env.roster.Assign(AssignRequest{
		ToolID:             &tool.ID,
		EmployeeID:         employee.ID,
		ExpectedReturnDate: daysFromTestInstant(7),
	}, "tester")
	if err != nil {
		t.Fatalf("assigning tool: %v", err)
	}

	_, err = env.roster.ExtendAssignment(assignment.ID, ExtendAssignmentRequest{
		NewExpectedReturnDate: daysFromTestInstant(3),
	}, "tester")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("shortening extension: got %v, want ErrValidation", err)
	}

	extended, err := env.roster.ExtendAssignment(assignment.ID, ExtendAssignmentRequest{
		NewExpectedReturnDate: daysFromTestInstant(14),
	}, "tester")
	if err != nil {
		t.Fatalf("extending assignment: %v", err)
	}
	if extended.Status != models.AssignmentStatusExtended {
		t.Errorf("assignment status = %s, want extended", extended.Status)
	}
	if !extended.ExpectedReturnDate.Equal(daysFromTestInstant(14)) {
		t.Errorf("expected return date = %v, want %v", extended.ExpectedReturnDate, daysFromTestInstant(14))
	}

	// Extended assignments need to be overdue again before another extension.
	_, err = env.roster.ExtendAssignment(assignment.ID, ExtendAssignmentRequest{
		NewExpectedReturnDate: daysFromTestInstant(21),
	}, "tester")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("extending extended assignment: got %v, want ErrValidation", err)
	}
}

func TestExtendOverdueExtendedAssignment(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t, "EMP-007")
	tool := env.createTool(t, "RST-006")

	assignmentDate := daysFromTestInstant(-10)
	assignment, err := env.roster.Assign(AssignRequest{
		ToolID:             &tool.ID,
		EmployeeID:         employee.ID,
		AssignmentDate:     &assignmentDate,
		ExpectedReturnDate: daysFromTestInstant(-5),
	}, "tester")
	if err != nil {
		t.Fatalf("assigning tool: %v", err)
	}

	// First extension lands on a date that is already past, so the stored
	// extended assignment is immediately overdue again.
	if _, err := env.roster.ExtendAssignment(assignment.ID, ExtendAssignmentRequest{
		NewExpectedReturnDate: daysFromTestInstant(-2),
	}, "tester"); err != nil {
		t.Fatalf("extending overdue assignment: %v", err)
	}

	projected, err := env.roster.GetAssignmentByID(assignment.ID)
	if err != nil {
		t.Fatalf("loading assignment: %v", err)
	}
	if projected.Status != models.AssignmentStatusOverdue {
		t.Fatalf("projected status = %s, want overdue", projected.Status)
	}

	// An extended assignment that reports overdue is extendable again.
	extended, err := env.roster.ExtendAssignment(assignment.ID, ExtendAssignmentRequest{
		NewExpectedReturnDate: daysFromTestInstant(7),
	}, "tester")
	if err != nil {
		t.Fatalf("re-extending overdue extended assignment: %v", err)
	}
	if extended.Status != models.AssignmentStatusExtended {
		t.Errorf("assignment status = %s, want extended", extended.Status)
	}
	if extended.DaysOverdue != 0 {
		t.Errorf("days overdue = %d, want 0 after extension", extended.DaysOverdue)
	}
}

// Concurrent assignment requests can both pass the open-assignment read
// before either inserts, so the storage layer must reject the second insert
// on its own. The service maps that rejection to ErrAlreadyAssigned.
func TestOpenAssignmentUniquenessEnforcedByStorage(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t, "EMP-UNQ")
	tool := env.createTool(t, "RST-UNQ-001")
	member := env.createTool(t, "RST-UNQ-002")
	kit, err := env.kits.CreateKit(CreateKitRequest{
		Code: "RST-UNQ-KIT", Name: "Unique Kit",
		Items: []CreateKitItemRequest{{ToolID: member.ID, Quantity: 1, Required: true}},
	}, "tester")
	if err != nil {
		t.Fatalf("creating kit: %v", err)
	}

	if _, err := env.roster.Assign(AssignRequest{
		KitID:              &kit.ID,
		EmployeeID:         employee.ID,
		ExpectedReturnDate: daysFromTestInstant(7),
	}, "tester"); err != nil {
		t.Fatalf("assigning kit: %v", err)
	}
	if _, err := env.roster.Assign(AssignRequest{
		ToolID:             &tool.ID,
		EmployeeID:         employee.ID,
		ExpectedReturnDate: daysFromTestInstant(7),
	}, "tester"); err != nil {
		t.Fatalf("assigning tool: %v", err)
	}

	// Insert directly, skipping the service's read-then-check.
	kitDup := &models.RosterAssignment{
		KitID:              &kit.ID,
		EmployeeID:         employee.ID,
		Status:             models.AssignmentStatusActive,
		AssignmentDate:     testInstant,
		ExpectedReturnDate: daysFromTestInstant(7),
	}
	if err := env.rosterRepo.CreateAssignment(nil, kitDup); !errors.Is(err, repositories.ErrDuplicateKey) {
		t.Errorf("duplicate open kit assignment: got %v, want ErrDuplicateKey", err)
	}
	toolDup := &models.RosterAssignment{
		ToolID:             &tool.ID,
		EmployeeID:         employee.ID,
		Status:             models.AssignmentStatusActive,
		AssignmentDate:     testInstant,
		ExpectedReturnDate: daysFromTestInstant(7),
	}
	if err := env.rosterRepo.CreateAssignment(nil, toolDup); !errors.Is(err, repositories.ErrDuplicateKey) {
		t.Errorf("duplicate open tool assignment: got %v, want ErrDuplicateKey", err)
	}
}

func TestAssignKit(t *testing.T) {
	env := newTestEnv(t)
	employee := env.createEmployee(t, "EMP-006")
	member := env.createTool(t, "RST-KIT-001")
	kit, err := env.kits.CreateKit(CreateKitRequest{
		Code: "RST-KIT-A", Name: "Crew Kit",
		Items: []CreateKitItemRequest{{ToolID: member.ID, Quantity: 1, Required: true}},
	}, "tester")
	if err != nil {
		t.Fatalf("creating kit: %v", err)
	}

	assignment, err := env.roster.Assign(AssignRequest{
		KitID:              &kit.ID,
		EmployeeID:         employee.ID,
		ExpectedReturnDate: daysFromTestInstant(7),
	}, "tester")
	if err != nil {
		t.Fatalf("assigning kit: %v", err)
	}
	if assignment.KitID == nil || *assignment.KitID != kit.ID {
		t.Errorf("assignment kit = %v, want %d", assignment.KitID, kit.ID)
	}

	view, err := env.kits.GetKitByID(kit.ID)
	if err != nil {
		t.Fatalf("loading kit view: %v", err)
	}
	if view.Status != models.KitStatusInUse {
		t.Errorf("kit status = %s, want in_use while assigned", view.Status)
	}

	_, err = env.roster.Assign(AssignRequest{
		KitID:              &kit.ID,
		EmployeeID:         employee.ID,
		ExpectedReturnDate: daysFromTestInstant(7),
	}, "tester")
	if !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("double booking kit: got %v, want ErrAlreadyAssigned", err)
	}
}
