package scheduler

import (
	"database/sql"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"tooltrack_backend/internal/models"
	"tooltrack_backend/internal/repositories"
	"tooltrack_backend/internal/services"
)

// Scheduler runs the periodic scans: calibration due dates and overdue
// roster assignments. Both scans are read-only projections; they log what
// operators need to chase, they never mutate asset state.
type Scheduler struct {
	cron         *cron.Cron
	alertService services.AlertService
	rosterRepo   repositories.RosterRepository
	clock        services.Clock
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(db *sql.DB) *Scheduler {
	clock := services.SystemClock{}
	return &Scheduler{
		cron:         cron.New(),
		alertService: services.NewAlertService(repositories.NewToolRepository(db), clock),
		rosterRepo:   repositories.NewRosterRepository(db),
		clock:        clock,
	}
}

// Start registers the scan jobs and starts the cron loop.
func (s *Scheduler) Start() {
	log.Info().Msg("starting scheduler")

	// Hourly calibration scan, on the hour.
	if _, err := s.cron.AddFunc("0 * * * *", s.scanCalibrations); err != nil {
		log.Error().Err(err).Msg("failed to schedule calibration scan")
	}
	// Overdue roster scan every morning at 06:00.
	if _, err := s.cron.AddFunc("0 6 * * *", s.scanOverdueAssignments); err != nil {
		log.Error().Err(err).Msg("failed to schedule overdue roster scan")
	}

	s.cron.Start()
}

// Stop stops the cron loop; running jobs finish first.
func (s *Scheduler) Stop() {
	log.Info().Msg("stopping scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) scanCalibrations() {
	alerts, err := s.alertService.GetCalibrationAlerts(nil)
	if err != nil {
		log.Error().Err(err).Msg("calibration scan failed")
		return
	}

	critical := 0
	for _, alert := range alerts {
		if alert.Severity != models.AlertSeverityCritical {
			continue
		}
		critical++
		log.Warn().
			Int64("tool_id", alert.ToolID).
			Str("tool_code", alert.ToolCode).
			Int("days_until_expiration", alert.DaysUntilExpiration).
			Msg("calibration critical")
	}
	log.Info().Int("alerts", len(alerts)).Int("critical", critical).Msg("calibration scan complete")
}

func (s *Scheduler) scanOverdueAssignments() {
	open, err := s.rosterRepo.GetOpenAssignments()
	if err != nil {
		log.Error().Err(err).Msg("overdue roster scan failed")
		return
	}

	now := s.clock.Now()
	overdue := 0
	for i := range open {
		services.ProjectOverdue(&open[i], now)
		if open[i].Status != models.AssignmentStatusOverdue {
			continue
		}
		overdue++
		log.Warn().
			Int64("assignment_id", open[i].ID).
			Int64("employee_id", open[i].EmployeeID).
			Int("days_overdue", open[i].DaysOverdue).
			Msg("assignment overdue")
	}
	log.Info().Int("open", len(open)).Int("overdue", overdue).Msg("overdue roster scan complete")
}
