package main

import (
	"context"
	"log"
	"time"

	"exam-service/internal/assets"
	"exam-service/internal/config"
	"exam-service/internal/db"
	"exam-service/internal/event"
	"exam-service/internal/handlers"
	"exam-service/internal/middleware"
	"exam-service/internal/models"
	"exam-service/internal/repository"
	"exam-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := db.InitMongo(cfg.Mongo); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.CloseMongo()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repository.EnsureIndexes(ctx, db.Database); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	cancel()

	assetStore, err := assets.NewMinioStore(assets.MinioConfig{
		Endpoint:        cfg.MinIO.Endpoint,
		AccessKeyID:     cfg.MinIO.AccessKeyID,
		SecretAccessKey: cfg.MinIO.SecretAccessKey,
		UseSSL:          cfg.MinIO.UseSSL,
		Region:          cfg.MinIO.Region,
		Bucket:          cfg.MinIO.Bucket,
	})
	if err != nil {
		log.Fatalf("Failed to connect to MinIO: %v", err)
	}

	// RabbitMQ event publisher; optional, lifecycle events are dropped when
	// no broker is configured.
	var publisher *event.Publisher
	if cfg.RabbitMQ.URI != "" {
		publisher, err = event.NewPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, lifecycle events will not be published")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Repositories, services, handlers
	categoryRepo := repository.NewCategoryRepository(db.Database)
	examRepo := repository.NewExamRepository(db.Database)
	questionRepo := repository.NewQuestionRepository(db.Database)
	userRepo := repository.NewUserRepository(db.Database)

	accessService := service.NewAccessService(userRepo, categoryRepo, examRepo)
	examService := service.NewExamService(examRepo, questionRepo, categoryRepo, assetStore, publisher, cfg.DefaultTier)
	categoryService := service.NewCategoryService(categoryRepo, examRepo, examService, publisher, cfg.DefaultTier)

	examHandler := handlers.NewExamHandler(examService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)

	auth := middleware.Authenticate(cfg.Auth.JWTSecret)

	exams := r.Group("/api/exams")
	exams.Use(auth)
	{
		exams.GET("", middleware.ResolvePrincipal(accessService), examHandler.ListExams)
		exams.GET("/category/:title", middleware.GateCategoryByTitle(accessService), examHandler.ListExamsByCategory)
		exams.GET("/:slug", middleware.GateExam(accessService), examHandler.GetExam)
		exams.POST("", middleware.RequireRole(accessService, models.RoleAdmin, models.RoleTeacher), examHandler.CreateExam)
		exams.PUT("/:id", middleware.RequireRole(accessService, models.RoleAdmin, models.RoleTeacher), examHandler.UpdateExam)
		exams.DELETE("/:id", middleware.RequireRole(accessService, models.RoleAdmin), examHandler.DeleteExam)
	}

	categories := r.Group("/api/categories")
	categories.Use(auth)
	{
		categories.GET("", middleware.ResolvePrincipal(accessService), categoryHandler.ListCategories)
		categories.GET("/:slug", middleware.GateCategory(accessService), categoryHandler.GetCategory)
		categories.POST("", middleware.RequireRole(accessService, models.RoleAdmin, models.RoleTeacher), categoryHandler.CreateCategory)
		categories.PUT("/:id", middleware.RequireRole(accessService, models.RoleAdmin, models.RoleTeacher), categoryHandler.UpdateCategory)
		categories.DELETE("/:id", middleware.RequireRole(accessService, models.RoleAdmin), categoryHandler.DeleteCategory)
	}

	r.Run(":" + cfg.Server.Port)
}
