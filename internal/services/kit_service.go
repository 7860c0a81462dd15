package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/repositories"
	"tooltrack_backend/internal/services/audit"
)

// ComputeKitStatus derives a kit's status from the live state of its member
// tools. Required tools dominate: a missing, decommissioned or lost required
// tool marks the kit incomplete; in_calibration and in_maintenance propagate
// in that order; otherwise the kit is available, or in_use when it carries an
// open roster assignment. Pure function, re-derived on every read.
func ComputeKitStatus(kit *models.Kit, tools map[int64]*models.Tool, hasOpenAssignment bool) models.KitStatus {
	inCalibration := false
	inMaintenance := false
	for _, item := range kit.Items {
		if !item.Required {
			continue
		}
		tool, ok := tools[item.ToolID]
		if !ok || tool.Status == models.ToolStatusDecommissioned || tool.Status == models.ToolStatusLost {
			return models.KitStatusIncomplete
		}
		switch tool.Status {
		case models.ToolStatusInCalibration:
			inCalibration = true
		case models.ToolStatusInMaintenance:
			inMaintenance = true
		}
	}
	if inCalibration {
		return models.KitStatusInCalibration
	}
	if inMaintenance {
		return models.KitStatusInMaintenance
	}
	if hasOpenAssignment {
		return models.KitStatusInUse
	}
	return models.KitStatusAvailable
}

// ComputeKitCalibrationStatus counts the kit's calibration exposure across
// all member tools, required or not.
func ComputeKitCalibrationStatus(kit *models.Kit, tools map[int64]*models.Tool, now time.Time) models.KitCalibrationStatus {
	status := models.KitCalibrationStatus{}
	for _, item := range kit.Items {
		tool, ok := tools[item.ToolID]
		if !ok || !tool.RequiresCalibration {
			continue
		}
		status.ToolsRequiringCalibration++
		if tool.NextCalibrationDate != nil && DaysUntilExpiration(*tool.NextCalibrationDate, now) < 0 {
			status.ToolsExpired++
		}
	}
	status.IsComplete = status.ToolsExpired == 0
	return status
}

// --- Kit DTOs ---

type CreateKitRequest struct {
	Code        string                 `json:"code" binding:"required"`
	Name        string                 `json:"name" binding:"required"`
	Description *string                `json:"description"`
	Items       []CreateKitItemRequest `json:"items" binding:"required,dive"`
}

type CreateKitItemRequest struct {
	ToolID   int64 `json:"tool_id" binding:"required"`
	Quantity int   `json:"quantity" binding:"required,gt=0"`
	Required bool  `json:"required"`
}

// KitView is a kit plus its derived status, the shape returned by every kit
// read path.
type KitView struct {
	Kit               models.Kit                  `json:"kit"`
	Status            models.KitStatus            `json:"status"`
	CalibrationStatus models.KitCalibrationStatus `json:"calibration_status"`
}

// --- KitService Interface ---

type KitService interface {
	CreateKit(req CreateKitRequest, actorID string) (*models.Kit, error)
	GetKitByID(kitID int64) (*KitView, error)
	GetKits(start, limit int) ([]KitView, int, error)
	GetKitStatusReport(kitID int64) (*models.KitStatusReport, error)
}

type kitService struct {
	kitRepo    repositories.KitRepository
	toolRepo   repositories.ToolRepository
	rosterRepo repositories.RosterRepository
	auditSink  audit.Sink
	clock      Clock
	db         *sql.DB
}

// NewKitService creates a new instance of KitService.
func NewKitService(
	kr repositories.KitRepository,
	tr repositories.ToolRepository,
	rr repositories.RosterRepository,
	auditSink audit.Sink,
	clock Clock,
	db *sql.DB,
) KitService {
	return &kitService{
		kitRepo:    kr,
		toolRepo:   tr,
		rosterRepo: rr,
		auditSink:  auditSink,
		clock:      clock,
		db:         db,
	}
}

func (s *kitService) CreateKit(req CreateKitRequest, actorID string) (*models.Kit, error) {
	if req.Code == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: kit code and name are required", ErrValidation)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: kit must contain at least one item", ErrValidation)
	}
	seen := make(map[int64]struct{}, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for tool %d", ErrValidation, item.ToolID)
		}
		if _, dup := seen[item.ToolID]; dup {
			return nil, fmt.Errorf("%w: tool %d listed more than once", ErrValidation, item.ToolID)
		}
		seen[item.ToolID] = struct{}{}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	for _, item := range req.Items {
		if _, err := s.toolRepo.GetToolByID(tx, item.ToolID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: id %d", ErrToolNotFound, item.ToolID)
			}
			return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
		}
	}

	kit := &models.Kit{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
	}
	for _, item := range req.Items {
		kit.Items = append(kit.Items, models.KitItem{
			ToolID:   item.ToolID,
			Quantity: item.Quantity,
			Required: item.Required,
		})
	}
	created, err := s.kitRepo.CreateKit(tx, kit)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: kit code '%s' already exists", ErrValidation, req.Code)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "kit", EntityID: created.ID, Action: "create", ActorID: actorID, NewValue: created,
	})
	return created, nil
}

func (s *kitService) loadKitView(kit *models.Kit) (*KitView, error) {
	tools, err := s.kitRepo.GetKitTools(nil, kit.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	for i := range kit.Items {
		kit.Items[i].Tool = tools[kit.Items[i].ToolID]
	}

	hasOpenAssignment := false
	if _, err := s.rosterRepo.GetOpenAssignmentForKit(nil, kit.ID); err == nil {
		hasOpenAssignment = true
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	return &KitView{
		Kit:               *kit,
		Status:            ComputeKitStatus(kit, tools, hasOpenAssignment),
		CalibrationStatus: ComputeKitCalibrationStatus(kit, tools, s.clock.Now()),
	}, nil
}

func (s *kitService) GetKitByID(kitID int64) (*KitView, error) {
	kit, err := s.kitRepo.GetKitByID(nil, kitID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrKitNotFound, kitID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return s.loadKitView(kit)
}

func (s *kitService) GetKits(start, limit int) ([]KitView, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if start < 0 {
		start = 0
	}
	kits, totalCount, err := s.kitRepo.GetKits(start, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	views := make([]KitView, 0, len(kits))
	for i := range kits {
		view, err := s.loadKitView(&kits[i])
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *view)
	}
	return views, totalCount, nil
}

func (s *kitService) GetKitStatusReport(kitID int64) (*models.KitStatusReport, error) {
	kit, err := s.kitRepo.GetKitByID(nil, kitID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrKitNotFound, kitID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	tools, err := s.kitRepo.GetKitTools(nil, kitID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	hasOpenAssignment := false
	if _, err := s.rosterRepo.GetOpenAssignmentForKit(nil, kitID); err == nil {
		hasOpenAssignment = true
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	var missing []int64
	for _, item := range kit.Items {
		if !item.Required {
			continue
		}
		tool, ok := tools[item.ToolID]
		if !ok || tool.Status == models.ToolStatusDecommissioned || tool.Status == models.ToolStatusLost {
			missing = append(missing, item.ToolID)
		}
	}

	return &models.KitStatusReport{
		KitID:             kitID,
		Status:            ComputeKitStatus(kit, tools, hasOpenAssignment),
		MissingToolIDs:    missing,
		CalibrationStatus: ComputeKitCalibrationStatus(kit, tools, s.clock.Now()),
	}, nil
}
