package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linire-backend/config"
	_ "linire-backend/docs" // Important for Swagger
	"linire-backend/internal/delivery/http/middleware"
	v1 "linire-backend/internal/delivery/http/v1"
	"linire-backend/internal/domain"
	"linire-backend/internal/repository/memory"
	"linire-backend/internal/repository/mysql"
	"linire-backend/internal/repository/postgres"
	"linire-backend/internal/usecase"
	"linire-backend/pkg/auth"
	"linire-backend/pkg/database"
	"linire-backend/pkg/email"
	"linire-backend/pkg/logger"
	"linire-backend/pkg/metrics"
	"linire-backend/pkg/notify"
	redisclient "linire-backend/pkg/redis"
	"linire-backend/pkg/security"
	"linire-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
)

// @title           Linire Contact Backend API
// @version         1.0
// @description     Contact intake and admin review backend for the firm website.
// @host            localhost:8080
// @BasePath        /
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.IsProduction())
	gin.SetMode(cfg.GinMode)
	logger.Log.Info("Starting contact backend", "port", cfg.Port, "db_driver", cfg.DBDriver)

	audit := security.NewAuditLogger("linire-backend", cfg.AuditLogEnv)
	defer audit.Sync()

	ctx := context.Background()

	// 3. Setup Storage
	repo, checks, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to open submission store", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// 4. Setup Redis (optional)
	var redisClient *goredis.Client
	if cfg.UpstashRedisURL != "" {
		redisClient, err = redisclient.Connect(ctx, redisclient.Config{
			URL:      cfg.UpstashRedisURL,
			Password: cfg.UpstashRedisPassword,
		})
		if err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting falls back to memory", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			checks["redis"] = func(ctx context.Context) error {
				return redisclient.HealthCheck(ctx, redisClient)
			}
		}
	}

	// 5. Setup Email + Notifications
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - notifications will fail until SMTP is set")
	}
	dispatcher := notify.NewDispatcher(emailService, notify.Config{
		Workers:     cfg.NotifyWorkers,
		QueueSize:   cfg.NotifyQueueSize,
		SendTimeout: cfg.NotifyTimeout,
	}, logger.Log)

	// 6. Setup UseCases
	contactUC := usecase.NewContactUsecase(repo, validation.NewContactValidator(), dispatcher, logger.Log)
	adminUC := usecase.NewAdminUsecase(repo, audit, logger.Log, cfg.AdminPageSize)
	healthUC := usecase.NewHealthUsecase(checks)

	// 7. Setup Admin Session + Abuse Controls
	sessions := auth.NewSessionManager(auth.SessionConfig{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
		Secret:       cfg.SessionSecret,
		Lifetime:     cfg.SessionLifetime,
	})
	if !sessions.Enabled() {
		logger.Log.Warn("Admin login disabled: set ADMIN_PASSWORD_HASH and SESSION_SECRET")
	}
	blockFor := time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute
	loginTracker := security.NewLoginTracker(security.LoginTrackerConfig{
		MaxAttempts:   cfg.FailedLoginMaxAttempts,
		AttemptWindow: blockFor,
		BlockDuration: blockFor,
	}, redisClient, audit)
	rateLimiter := middleware.NewRateLimiter(redisClient, audit)

	// 8. Setup Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.MustRegister(registry)

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ContactUC:    contactUC,
		AdminUC:      adminUC,
		HealthUC:     healthUC,
		Sessions:     sessions,
		LoginTracker: loginTracker,
		Audit:        audit,
		RateLimiter:  rateLimiter,
		Gatherer:     registry,
		Logger:       logger.Log,
		Config:       cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}
	// Queued notifications still go out before exit.
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Log.Warn("Notification queue not drained", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// openStore connects the configured submission store and returns its
// health probe and cleanup.
func openStore(ctx context.Context, cfg *config.Config) (domain.SubmissionRepository, map[string]usecase.HealthCheck, func(), error) {
	checks := map[string]usecase.HealthCheck{}

	switch cfg.DBDriver {
	case "memory":
		return memory.NewSubmissionRepository(), checks, func() {}, nil

	case "mysql":
		db, err := database.NewMySQLConnection(ctx, cfg.MySQLDSN, database.DefaultMySQLOpts())
		if err != nil {
			return nil, nil, nil, err
		}
		checks["database"] = db.PingContext
		return mysql.NewSubmissionRepository(db), checks, func() { _ = db.Close() }, nil

	default:
		pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			return nil, nil, nil, err
		}
		checks["database"] = pool.Ping
		return postgres.NewSubmissionRepository(pool), checks, pool.Close, nil
	}
}
