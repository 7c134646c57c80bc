package main

import (
	_ "accreditation-backend/api/swagger" // swagger docs
	"accreditation-backend/internal/database"
	"accreditation-backend/internal/handler"
	"accreditation-backend/internal/repository"
	"accreditation-backend/internal/service"
	"accreditation-backend/internal/storage"
	"log"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Accreditation Intake API
// @version         1.0
// @description     Public accreditation submission form and admin review API.
// @host            localhost:8080
// @BasePath        /
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := getenv("DB_HOST", "localhost")
	dbPort := getenv("DB_PORT", "5432")
	dbUser := getenv("DB_USER", "postgres")
	dbPassword := getenv("DB_PASSWORD", "postgres")
	dbName := getenv("DB_NAME", "accreditations")
	dbSslMode := getenv("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	uploadDir := getenv("UPLOAD_DIR", "uploads")
	fileStore, err := storage.NewDiskStore(uploadDir)
	if err != nil {
		log.Fatalf("Upload directory setup failed: %v", err)
	}

	// The shared admin password gating bulk deletion. This is NOT a real
	// authentication system; the dashboard is protected the same way.
	adminPassword := getenv("ADMIN_PASSWORD", "")
	if adminPassword == "" {
		log.Println("WARNING: ADMIN_PASSWORD is not set; bulk deletion will reject every request")
	}

	mailer := service.NewSMTPMailer(
		os.Getenv("SMTP_HOST"),
		getenv("SMTP_PORT", "587"),
		os.Getenv("SMTP_USER"),
		os.Getenv("SMTP_PASSWORD"),
		getenv("EMAIL_FROM", "Service Accréditation <adv@stratygo.fr>"),
	)

	// Set up dependencies (Repository -> Service -> Handler)
	accRepo := repository.NewAccreditationRepository(db)
	accService := service.NewAccreditationService(accRepo, fileStore, mailer, adminPassword)
	accHandler := handler.NewAccreditationHandler(accService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	origins := getenv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")
	corsConfig.AllowOrigins = strings.Split(origins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// Uploaded documents and generated PDFs are served by bare filename.
	// Unmatched paths under these prefixes 404 instead of falling through.
	router.Static("/uploads", fileStore.Dir())
	router.Static("/documents", getenv("DOCUMENTS_DIR", "documents"))

	// Register API Routes
	accHandler.RegisterRoutes(router.Group("/api"))

	port := getenv("PORT", "8080")

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
