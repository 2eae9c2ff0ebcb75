package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/fintera-assurance/docs" // Swagger docs
	"github.com/sjperalta/fintera-assurance/internal/config"
	"github.com/sjperalta/fintera-assurance/internal/database"
	"github.com/sjperalta/fintera-assurance/internal/handlers"
	"github.com/sjperalta/fintera-assurance/internal/jobs"
	"github.com/sjperalta/fintera-assurance/internal/middleware"
	"github.com/sjperalta/fintera-assurance/internal/repository"
	"github.com/sjperalta/fintera-assurance/internal/services"
	"github.com/sjperalta/fintera-assurance/internal/storage"
	"github.com/sjperalta/fintera-assurance/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Assurance Ledger API
// @version 1.0
// @description Back office of an insurance agency: contract ledger, credits, cash sheets
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if !cfg.EmailEnabled() {
		logger.Warn("Resend email disabled: RESEND_API_KEY or REPORT_RECIPIENTS not set; cash sheets are archived only")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	agents, err := config.LoadAgents(cfg.AgentsFile)
	if err != nil {
		logger.Error("Failed to load agents", "error", err)
		os.Exit(1)
	}
	logger.Info("Loaded agent directory", "agents", len(agents))

	if cfg.RunMigrations {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Optional Redis lock around contract submissions
	var locker services.Locker = services.NoopLocker{}
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err = services.ConnectRedis(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Warn("Redis unavailable, submissions rely on database constraints only", "error", err)
		} else {
			locker = services.NewRedisLocker(rdb, cfg.LockTTL)
			logger.Info("Connected to redis")
		}
	}

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, worker, store, locker, agents, cfg)
	svcs.Job.StartSchedules()

	h := handlers.NewHandlers(svcs, store, cfg.Location())
	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // PDF rendering
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Pending session closes finish before exit
	worker.Shutdown()
	logger.Info("Background worker stopped")

	if rdb != nil {
		_ = rdb.Close()
	}

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		v1.POST("/auth/login", h.Auth.Login)

		// Protected routes (requires an open session)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret, cfg.Location()))
		{
			protected.GET("/auth/session", h.Auth.Session)

			// Contract ledger
			protected.POST("/contracts", h.Contract.Create)
			protected.GET("/contracts", h.Contract.Index)
			protected.GET("/contracts/export", h.Contract.Export)
			protected.GET("/contracts/:entry_id", h.Contract.Show)

			// Credits
			protected.GET("/credits", h.Credit.Index)
			protected.GET("/credits/statistics", h.Credit.Statistics)
			protected.GET("/credits/statement", h.Credit.Statement)
			protected.GET("/credits/:credit_id", h.Credit.Show)
			protected.POST("/credits/:credit_id/payments", h.Credit.RecordPayment)
			protected.PATCH("/credits/:credit_id/status", h.Credit.UpdateStatus)

			// Financial entries; ristourne and sinistre are checked by the handler
			protected.POST("/financial/:kind", h.Financial.Create)
			protected.GET("/financial/:kind", h.Financial.Index)

			// Terme references
			protected.GET("/terme-references", h.TermeReference.Search)
			protected.GET("/terme-references/months", h.TermeReference.Months)

			// Cash sheet
			protected.GET("/reports/session", h.Report.Session)
			protected.GET("/reports/session/pdf", h.Report.SessionPDF)
			protected.POST("/reports/session/close", h.Report.Close)

			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.DELETE("/contracts/:entry_id", h.Contract.Delete)
				admin.POST("/terme-references/import", h.TermeReference.Import)
				admin.GET("/jobs/status", h.Job.Status)
				admin.POST("/jobs/mark-overdue", h.Job.RunMarkOverdue)
			}
		}
	}

	return router
}
