package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/cueside/club-app/config"
	"github.com/cueside/club-app/models"
	"github.com/cueside/club-app/router"
	"github.com/cueside/club-app/services"
	"github.com/cueside/club-app/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.MenuItem{},
		&models.MembershipPlan{},
		&models.Member{},
		&models.ActiveSession{},
		&models.SessionItem{},
		&models.Transaction{},
		&models.TransactionItem{},
	); err != nil {
		utils.ErrorLogger.Fatalf("Migration failed: %v", err)
	}

	monitor := services.NewSessionMonitor(db)
	monitor.Start()
	defer monitor.Stop()

	scheduler, err := services.StartCheckpointScheduler(db)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to start checkpoint scheduler: %v", err)
	}
	defer func() { _ = scheduler.Shutdown() }()

	r := router.SetupRouter(db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	utils.InfoLogger.Printf("Club app listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatalf("Server stopped: %v", err)
	}
}
