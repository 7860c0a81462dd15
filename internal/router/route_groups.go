package router

import (
	"tooltrack_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupToolRoutes sets up the tool lifecycle routes.
func SetupToolRoutes(apiGroup *gin.RouterGroup, toolHandler *handlers.ToolHandler) {
	toolRoutes := apiGroup.Group("/tools")
	{
		toolRoutes.POST("", toolHandler.CreateTool)
		toolRoutes.GET("", toolHandler.GetTools)
		toolRoutes.GET("/:id", toolHandler.GetToolByID)
		toolRoutes.POST("/:id/transition", toolHandler.TransitionTool)
		toolRoutes.GET("/:id/history", toolHandler.GetStatusHistory)
	}
}

// SetupMovementRoutes sets up the movement ledger routes.
func SetupMovementRoutes(apiGroup *gin.RouterGroup, movementHandler *handlers.MovementHandler) {
	movementRoutes := apiGroup.Group("/movements")
	{
		movementRoutes.POST("", movementHandler.CreateMovement)
		movementRoutes.GET("", movementHandler.GetMovements)
		movementRoutes.GET("/:id", movementHandler.GetMovementByID)
		movementRoutes.POST("/:id/complete", movementHandler.CompleteMovement)
		movementRoutes.POST("/:id/cancel", movementHandler.CancelMovement)
	}
}

// SetupCalibrationRoutes sets up the calibration tracking routes.
func SetupCalibrationRoutes(apiGroup *gin.RouterGroup, calibrationHandler *handlers.CalibrationHandler) {
	calibrationRoutes := apiGroup.Group("/calibrations")
	{
		calibrationRoutes.POST("/send", calibrationHandler.SendToCalibration)
		calibrationRoutes.POST("/:id/receive", calibrationHandler.ReceiveFromCalibration)
		calibrationRoutes.POST("/:id/cancel", calibrationHandler.CancelCalibration)
		calibrationRoutes.GET("", calibrationHandler.GetCalibrationRecords)
	}
}

// SetupMaintenanceRoutes sets up the maintenance tracking routes.
func SetupMaintenanceRoutes(apiGroup *gin.RouterGroup, calibrationHandler *handlers.CalibrationHandler) {
	maintenanceRoutes := apiGroup.Group("/maintenance")
	{
		maintenanceRoutes.POST("/send", calibrationHandler.SendToMaintenance)
		maintenanceRoutes.POST("/:id/receive", calibrationHandler.ReceiveFromMaintenance)
		maintenanceRoutes.POST("/:id/cancel", calibrationHandler.CancelMaintenance)
		maintenanceRoutes.GET("", calibrationHandler.GetMaintenanceRecords)
	}
}

// SetupQuarantineRoutes sets up the quarantine routes.
func SetupQuarantineRoutes(apiGroup *gin.RouterGroup, quarantineHandler *handlers.QuarantineHandler) {
	quarantineRoutes := apiGroup.Group("/quarantines")
	{
		quarantineRoutes.POST("", quarantineHandler.OpenQuarantine)
		quarantineRoutes.GET("/:id", quarantineHandler.GetQuarantineRecord)
		quarantineRoutes.POST("/:id/resolve", quarantineHandler.ResolveQuarantine)
		quarantineRoutes.POST("/:id/cancel", quarantineHandler.CancelQuarantine)
	}
}

// SetupDecommissionRoutes sets up the decommission request routes.
func SetupDecommissionRoutes(apiGroup *gin.RouterGroup, quarantineHandler *handlers.QuarantineHandler) {
	decommissionRoutes := apiGroup.Group("/decommissions")
	{
		decommissionRoutes.POST("", quarantineHandler.RequestDecommission)
		decommissionRoutes.GET("/:id", quarantineHandler.GetDecommissionRecord)
		decommissionRoutes.POST("/:id/approve", quarantineHandler.ApproveDecommission)
		decommissionRoutes.POST("/:id/reject", quarantineHandler.RejectDecommission)
	}
}

// SetupKitRoutes sets up the kit composition routes.
func SetupKitRoutes(apiGroup *gin.RouterGroup, kitHandler *handlers.KitHandler) {
	kitRoutes := apiGroup.Group("/kits")
	{
		kitRoutes.POST("", kitHandler.CreateKit)
		kitRoutes.GET("", kitHandler.GetKits)
		kitRoutes.GET("/:id", kitHandler.GetKitByID)
		kitRoutes.GET("/:id/status", kitHandler.GetKitStatus)
	}
}

// SetupRosterRoutes sets up the roster assignment routes.
func SetupRosterRoutes(apiGroup *gin.RouterGroup, rosterHandler *handlers.RosterHandler) {
	rosterRoutes := apiGroup.Group("/roster")
	{
		rosterRoutes.POST("", rosterHandler.Assign)
		rosterRoutes.GET("", rosterHandler.GetAssignments)
		rosterRoutes.GET("/overdue", rosterHandler.GetOverdueAssignments)
		rosterRoutes.GET("/:id", rosterHandler.GetAssignmentByID)
		rosterRoutes.POST("/:id/return", rosterHandler.ReturnAssignment)
		rosterRoutes.POST("/:id/extend", rosterHandler.ExtendAssignment)
	}
}

// SetupAlertRoutes sets up the alert dashboard routes. Overdue assignments
// are also reachable under /roster/overdue; the dashboard consumes both
// feeds from one group.
func SetupAlertRoutes(apiGroup *gin.RouterGroup, alertHandler *handlers.AlertHandler, rosterHandler *handlers.RosterHandler) {
	alertRoutes := apiGroup.Group("/alerts")
	{
		alertRoutes.GET("/calibrations", alertHandler.GetCalibrationAlerts)
		alertRoutes.GET("/calibrations/expired", alertHandler.GetExpiredCalibrations)
		alertRoutes.GET("/overdue", rosterHandler.GetOverdueAssignments)
	}
}

// SetupRegistryRoutes sets up the supporting registry routes.
func SetupRegistryRoutes(apiGroup *gin.RouterGroup, registryHandler *handlers.RegistryHandler) {
	warehouseRoutes := apiGroup.Group("/warehouses")
	{
		warehouseRoutes.POST("", registryHandler.CreateWarehouse)
		warehouseRoutes.GET("", registryHandler.GetWarehouses)
		warehouseRoutes.GET("/:id", registryHandler.GetWarehouseByID)
	}

	employeeRoutes := apiGroup.Group("/employees")
	{
		employeeRoutes.POST("", registryHandler.CreateEmployee)
		employeeRoutes.GET("", registryHandler.GetEmployees)
		employeeRoutes.GET("/:id", registryHandler.GetEmployeeByID)
	}

	providerRoutes := apiGroup.Group("/providers")
	{
		providerRoutes.POST("", registryHandler.CreateProvider)
		providerRoutes.GET("", registryHandler.GetProviders)
		providerRoutes.GET("/:id", registryHandler.GetProviderByID)
	}
}
