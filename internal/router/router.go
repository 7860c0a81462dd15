package router

import (
	"database/sql"

	"tooltrack_backend/internal/handlers"
	"tooltrack_backend/internal/middleware"
	"tooltrack_backend/internal/repositories"
	"tooltrack_backend/internal/services"
	"tooltrack_backend/internal/services/audit"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, auditSink audit.Sink) {
	clock := services.SystemClock{}

	// Initialize Repositories
	toolRepo := repositories.NewToolRepository(db)
	movementRepo := repositories.NewMovementRepository(db)
	calibrationRepo := repositories.NewCalibrationRepository(db)
	maintenanceRepo := repositories.NewMaintenanceRepository(db)
	quarantineRepo := repositories.NewQuarantineRepository(db)
	decommissionRepo := repositories.NewDecommissionRepository(db)
	kitRepo := repositories.NewKitRepository(db)
	rosterRepo := repositories.NewRosterRepository(db)
	registryRepo := repositories.NewRegistryRepository(db)

	// Initialize Services
	transitionService := services.NewTransitionService(toolRepo)
	toolService := services.NewToolService(toolRepo, transitionService, auditSink, db)
	movementService := services.NewMovementService(movementRepo, toolRepo, registryRepo, transitionService, auditSink, clock, db)
	calibrationService := services.NewCalibrationService(calibrationRepo, maintenanceRepo, toolRepo, registryRepo, transitionService, auditSink, clock, db)
	quarantineService := services.NewQuarantineService(quarantineRepo, decommissionRepo, toolRepo, transitionService, auditSink, clock, db)
	kitService := services.NewKitService(kitRepo, toolRepo, rosterRepo, auditSink, clock, db)
	rosterService := services.NewRosterService(rosterRepo, toolRepo, kitRepo, registryRepo, transitionService, auditSink, clock, db)
	alertService := services.NewAlertService(toolRepo, clock)
	registryService := services.NewRegistryService(registryRepo)

	// Initialize Handlers
	toolHandler := handlers.NewToolHandler(toolService)
	movementHandler := handlers.NewMovementHandler(movementService)
	calibrationHandler := handlers.NewCalibrationHandler(calibrationService)
	quarantineHandler := handlers.NewQuarantineHandler(quarantineService)
	kitHandler := handlers.NewKitHandler(kitService)
	rosterHandler := handlers.NewRosterHandler(rosterService)
	alertHandler := handlers.NewAlertHandler(alertService)
	registryHandler := handlers.NewRegistryHandler(registryService)

	apiV1 := engine.Group("/api/v1")
	apiV1.Use(middleware.ActorAttribution())
	{
		SetupToolRoutes(apiV1, toolHandler)
		SetupMovementRoutes(apiV1, movementHandler)
		SetupCalibrationRoutes(apiV1, calibrationHandler)
		SetupMaintenanceRoutes(apiV1, calibrationHandler)
		SetupQuarantineRoutes(apiV1, quarantineHandler)
		SetupDecommissionRoutes(apiV1, quarantineHandler)
		SetupKitRoutes(apiV1, kitHandler)
		SetupRosterRoutes(apiV1, rosterHandler)
		SetupAlertRoutes(apiV1, alertHandler, rosterHandler)
		SetupRegistryRoutes(apiV1, registryHandler)
	}
}
