package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"tooltrack_backend/internal/database"
	"tooltrack_backend/internal/router"
	"tooltrack_backend/internal/scheduler"
	"tooltrack_backend/internal/services/audit"
	"tooltrack_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	utils.InitLogger()

	dbCfg := database.Config{
		Driver:   utils.Getenv("DB_DRIVER", database.DriverPostgres),
		Host:     utils.Getenv("DB_HOST", "localhost"),
		Port:     utils.Getenv("DB_PORT", "5432"),
		User:     utils.Getenv("DB_USER", "tooltrack_user"),
		Password: utils.Getenv("DB_PASSWORD", "tooltrack_password"),
		Name:     utils.Getenv("DB_NAME", "tooltrack_db"),
		SSLMode:  utils.Getenv("DB_SSLMODE", "disable"),
		Path:     utils.Getenv("DB_PATH", "tooltrack.db"),
	}

	db, err := database.Open(dbCfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(db, dbCfg.Driver); err != nil {
		log.Fatalf("Failed to apply database schema: %v", err)
	}
	utils.LogInfo("Database initialized", map[string]interface{}{"driver": dbCfg.Driver})

	auditSink := audit.NewEmitter(1024)
	defer auditSink.Close()

	engine := gin.Default()
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Setup(engine, db, auditSink)

	sched := scheduler.NewScheduler(db)
	sched.Start()
	defer sched.Stop()

	port := utils.Getenv("PORT", "8080")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
