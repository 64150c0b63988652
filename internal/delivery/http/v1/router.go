package v1

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"linire-backend/config"
	"linire-backend/internal/delivery/http/middleware"
	"linire-backend/internal/delivery/http/views"
	"linire-backend/internal/domain"
	"linire-backend/internal/usecase"
	"linire-backend/pkg/auth"
	"linire-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC    domain.ContactUsecase
	AdminUC      domain.AdminUsecase
	HealthUC     usecase.HealthUsecase
	Sessions     *auth.SessionManager
	LoginTracker *security.LoginTracker
	Audit        *security.AuditLogger
	RateLimiter  *middleware.RateLimiter
	Gatherer     prometheus.Gatherer // nil uses the default registry
	Logger       *slog.Logger
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	production := cfg.IsProduction()
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	rl := deps.RateLimiter
	if rl == nil {
		rl = middleware.NewRateLimiter(nil, deps.Audit)
	}
	tracker := deps.LoginTracker
	if tracker == nil {
		tracker = security.NewLoginTracker(security.DefaultLoginTrackerConfig(), nil, deps.Audit)
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.SetHTMLTemplate(template.Must(views.Load()))

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, production)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware(production))
	r.Use(middleware.ErrorHandler(deps.Logger))
	r.Use(rl.Middleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))

	r.GET("/health", func(c *gin.Context) {
		status := map[string]string{"status": "ok"}
		if deps.HealthUC != nil {
			status = deps.HealthUC.Check(c.Request.Context())
		}
		code := http.StatusOK
		if status["status"] != "ok" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	NewContactHandler(&r.RouterGroup, deps.ContactUC,
		rl.Middleware(middleware.ContactRateLimitConfig(cfg.RateLimitContactThreshold, window)))

	// Admin back office
	admin := r.Group("/admin")
	admin.Use(middleware.CSRFMiddleware(production))
	{
		NewAuthHandler(admin, AuthConfig{
			Sessions:     deps.Sessions,
			Tracker:      tracker,
			Audit:        deps.Audit,
			Logger:       deps.Logger,
			SiteName:     cfg.SiteName,
			SecureCookie: production,
		}, rl.Middleware(middleware.LoginRateLimitConfig(cfg.RateLimitLoginThreshold, window)))

		protected := admin.Group("")
		protected.Use(middleware.AdminSession(deps.Sessions, deps.Audit))
		NewAdminHandler(protected, deps.AdminUC, cfg.SiteName)
	}

	return r
}
