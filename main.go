package main

import (
	"log"
	"os"
	"time"

	"business-registration-server/handlers/auth"
	"business-registration-server/handlers/businesses"
	"business-registration-server/handlers/categories"
	"business-registration-server/handlers/invoices"
	paymenthandlers "business-registration-server/handlers/payments"
	"business-registration-server/migrations"
	"business-registration-server/mpesa"
	"business-registration-server/payments"
	"business-registration-server/seed"
	"business-registration-server/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file:", err)
	}
}

func main() {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("FRONTEND_URL")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	utils.ConnectDatabase()

	migrations.MigrateAll()

	if err := seed.SeedCategories(); err != nil {
		log.Fatalf("Failed to seed categories: %v", err)
	}

	// Payment orchestration wiring. The gateway client resolves test mode once
	// at construction.
	gateway := mpesa.NewClient(mpesa.LoadConfig())
	orchestrator := payments.NewOrchestrator(gateway, payments.NewGormStore(utils.DB))
	paymentHandler := paymenthandlers.NewHandler(orchestrator)

	r.POST("/api/auth/register", auth.Register)
	r.POST("/api/auth/login", auth.Login)

	protected := r.Group("/")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/api/auth/check", auth.CheckAuth)
		protected.GET("/api/auth/profile", auth.GetProfile)
		protected.PUT("/api/auth/update", auth.UpdateProfile)
		protected.PUT("/api/auth/password", auth.ChangePassword)

		protected.GET("/api/businesses", businesses.GetBusinesses)
		protected.GET("/api/businesses/:id", businesses.GetBusiness)
		protected.PUT("/api/businesses/:id/verify", businesses.VerifyBusiness)

		protected.GET("/api/invoices", invoices.GetInvoices)

		categories.RegisterCategoriesRoutes(protected.Group("/api"))
	}

	paymenthandlers.RegisterPaymentRoutes(r, protected, paymentHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
