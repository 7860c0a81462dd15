package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/repositories"
	"tooltrack_backend/internal/services/audit"
)

// --- Tool DTOs ---

type CreateToolRequest struct {
	Code                    string     `json:"code" binding:"required"`
	Name                    string     `json:"name" binding:"required"`
	Description             *string    `json:"description"`
	Condition               *string    `json:"condition"`
	WarehouseID             *int64     `json:"warehouse_id"`
	LocationID              *int64     `json:"location_id"`
	RequiresCalibration     bool       `json:"requires_calibration"`
	CalibrationIntervalDays *int       `json:"calibration_interval_days"`
	LastCalibrationDate     *time.Time `json:"last_calibration_date"`
}

type TransitionToolRequest struct {
	TargetStatus string  `json:"target_status" binding:"required"`
	Reason       *string `json:"reason"`
}

// --- ToolService Interface ---

type ToolService interface {
	CreateTool(req CreateToolRequest, actorID string) (*models.Tool, error)
	GetToolByID(toolID int64) (*models.Tool, error)
	GetTools(filters models.ToolFilters) ([]models.Tool, int, error)
	TransitionTool(toolID int64, req TransitionToolRequest, actorID string) (*models.Tool, error)
	GetStatusHistory(toolID int64, limit int) ([]models.StatusTransition, error)
}

type toolService struct {
	toolRepo   repositories.ToolRepository
	transition TransitionService
	auditSink  audit.Sink
	db         *sql.DB
}

// NewToolService creates a new instance of ToolService.
func NewToolService(toolRepo repositories.ToolRepository, transition TransitionService, auditSink audit.Sink, db *sql.DB) ToolService {
	return &toolService{toolRepo: toolRepo, transition: transition, auditSink: auditSink, db: db}
}

func (s *toolService) CreateTool(req CreateToolRequest, actorID string) (*models.Tool, error) {
	if strings.TrimSpace(req.Code) == "" {
		return nil, fmt.Errorf("%w: code must not be empty", ErrValidation)
	}
	if req.RequiresCalibration && (req.CalibrationIntervalDays == nil || *req.CalibrationIntervalDays <= 0) {
		return nil, fmt.Errorf("%w: calibration_interval_days must be positive when calibration is required", ErrValidation)
	}

	tool := &models.Tool{
		Code:                    strings.TrimSpace(req.Code),
		Name:                    req.Name,
		Description:             req.Description,
		Status:                  models.ToolStatusAvailable,
		Condition:               req.Condition,
		WarehouseID:             req.WarehouseID,
		LocationID:              req.LocationID,
		RequiresCalibration:     req.RequiresCalibration,
		CalibrationIntervalDays: req.CalibrationIntervalDays,
		LastCalibrationDate:     req.LastCalibrationDate,
		Active:                  true,
	}
	// next_calibration_date is null iff the tool does not require calibration
	if req.RequiresCalibration && req.LastCalibrationDate != nil {
		next := req.LastCalibrationDate.AddDate(0, 0, *req.CalibrationIntervalDays)
		tool.NextCalibrationDate = &next
	}

	created, err := s.toolRepo.CreateTool(nil, tool)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: tool code '%s' already exists", ErrValidation, tool.Code)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "tool", EntityID: created.ID, Action: "create", ActorID: actorID, NewValue: created,
	})
	return created, nil
}

func (s *toolService) GetToolByID(toolID int64) (*models.Tool, error) {
	tool, err := s.toolRepo.GetToolByID(nil, toolID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrToolNotFound, toolID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return tool, nil
}

func (s *toolService) GetTools(filters models.ToolFilters) ([]models.Tool, int, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	if filters.Start < 0 {
		filters.Start = 0
	}
	tools, totalCount, err := s.toolRepo.GetTools(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return tools, totalCount, nil
}

// TransitionTool applies a single status change as one transaction.
func (s *toolService) TransitionTool(toolID int64, req TransitionToolRequest, actorID string) (*models.Tool, error) {
	if !models.IsValidToolStatus(req.TargetStatus) {
		return nil, fmt.Errorf("%w: unknown status '%s'", ErrValidation, req.TargetStatus)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer tx.Rollback()

	tool, err := s.toolRepo.GetToolByID(tx, toolID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrToolNotFound, toolID)
		}
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	previousStatus := tool.Status

	if err := s.transition.Transition(tx, tool, models.ToolStatus(req.TargetStatus), req.Reason, actorID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	s.auditSink.Emit(models.DomainEvent{
		EntityType: "tool", EntityID: tool.ID, Action: "transition", ActorID: actorID,
		PreviousValue: previousStatus, NewValue: tool.Status,
	})
	return tool, nil
}

func (s *toolService) GetStatusHistory(toolID int64, limit int) ([]models.StatusTransition, error) {
	if _, err := s.GetToolByID(toolID); err != nil {
		return nil, err
	}
	history, err := s.toolRepo.GetStatusHistory(toolID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return history, nil
}
