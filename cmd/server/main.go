package main

import (
	"time"

	"invoice-matching-backend/internal/config"
	"invoice-matching-backend/internal/models"
	"invoice-matching-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, relying on system env")
	}
	config.SetupLogger()

	db := config.InitDB()

	db.AutoMigrate(
		&models.Invoice{},
		&models.PurchaseOrder{},
		&models.DeliveryNote{},
		&models.BankAccount{},
		&models.BankTransaction{},
		&models.ThreeWayMatch{},
		&models.Anomaly{},
		&models.MatchRun{},
		&models.MatchAuditLog{},
	)

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db)

	r.Run(":" + config.Port())
}
