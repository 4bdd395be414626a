package main

import (
	"alcyxob/learnhub/internal/api"
	"alcyxob/learnhub/internal/config"
	"alcyxob/learnhub/internal/identity"
	"alcyxob/learnhub/internal/logging"
	"alcyxob/learnhub/internal/metrics"
	"alcyxob/learnhub/internal/repository"
	"alcyxob/learnhub/internal/repository/memory"
	"alcyxob/learnhub/internal/repository/mongo"
	"alcyxob/learnhub/internal/service"
	"alcyxob/learnhub/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title LearnHub API
// @version 1.0
// @description Course, assignment, submission and forum management.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("Starting LearnHub server", zap.String("db_driver", cfg.Database.Driver), zap.String("storage", cfg.Storage.Backend))

	// --- Repositories ---
	repos, closeDB := openRepositories(cfg.Database, logger)
	defer closeDB()

	// --- File storage ---
	files, err := openStorage(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	verifier, err := identity.NewVerifier(cfg.Identity.TokenSecret, cfg.Identity.Issuer)
	if err != nil {
		logger.Fatal("Invalid identity configuration", zap.Error(err))
	}
	if cfg.Identity.WebhookSecret == "" {
		logger.Warn("identity.webhook_secret is empty, every webhook call will be rejected")
	}

	// --- Services ---
	m := metrics.New()
	services := api.Services{
		Users:       service.NewUserService(repos, m, logger),
		Courses:     service.NewCourseService(repos, m, logger),
		Lessons:     service.NewLessonService(repos, logger),
		Assignments: service.NewAssignmentService(repos, files, logger),
		Submissions: service.NewSubmissionService(repos, files, cfg.Upload.MaxBytes, m, logger),
		Themes:      service.NewThemeService(repos),
		Forum:       service.NewForumService(repos, cfg.Forum.MaxAttempts, m, logger),
	}

	// --- Gin engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	api.SetupRoutes(router, services, api.Options{
		Verifier:       verifier,
		WebhookSecret:  cfg.Identity.WebhookSecret,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		Metrics:        m,
		MetricsPath:    metricsPath,
		Logger:         logger,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exiting")
}

func openRepositories(cfg config.DatabaseConfig, logger *zap.Logger) (repository.Repositories, func()) {
	if cfg.Driver == "memory" {
		logger.Warn("Using the in-memory store, data is lost on restart")
		return memory.NewRepositories(memory.NewStore()), func() {}
	}

	client, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		logger.Fatal("Could not connect to MongoDB", zap.Error(err))
	}
	db := client.Database(cfg.Name)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, db, logger)
	}()

	return mongo.NewRepositories(client, db, cfg.Transactions), func() {
		logger.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(client); err != nil {
			logger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}
}

// openStorage returns nil for the inline backend, where file bytes live on the submission record.
func openStorage(cfg config.Config, logger *zap.Logger) (storage.FileStorage, error) {
	switch cfg.Storage.Backend {
	case "", "inline":
		return nil, nil
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return storage.NewS3Storage(ctx, cfg.S3, logger)
	default:
		return nil, errors.New("unknown storage backend " + cfg.Storage.Backend)
	}
}
