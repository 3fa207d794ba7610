package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/letsconnect/auth-gateway/internal/infra/config"
	"github.com/letsconnect/auth-gateway/internal/transport/http/handlers"
	"github.com/letsconnect/auth-gateway/internal/transport/http/middleware"
	"github.com/letsconnect/auth-gateway/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Registration  *usecase.RegistrationService
	PasswordReset *usecase.PasswordResetService
	Sessions      *usecase.SessionService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Cache       handlers.ReadinessChecker
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS([]string{"*"}))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	checks := map[string]handlers.ReadinessChecker{}
	if deps.Cache != nil {
		checks["redis"] = deps.Cache
	}
	healthHandler := handlers.NewHealthHandler(checks)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Ready)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	isDev := deps.Config.App.Env == "development"

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")

		authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Services.Sessions, deps.Logger)
		authHandler.RegisterRoutes(authGroup, rateLimitRule(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts)...)

		registrationHandler := handlers.NewRegistrationHandler(deps.Services.Registration, deps.Logger)
		registrationHandler.RegisterRoutes(authGroup, rateLimitRule(deps, "auth_signup_ip", deps.Config.RateLimit.SignUpMaxAttempts)...)

		recoveryGroup := api.Group("/recovery")
		passwordHandler := handlers.NewPasswordHandler(deps.Services.PasswordReset, deps.Logger, isDev)
		passwordHandler.RegisterRoutes(recoveryGroup, rateLimitRule(deps, "recovery_start_ip", deps.Config.RateLimit.RecoveryMaxStarts)...)

		sessionHandler := handlers.NewSessionHandler(deps.Services.Sessions)
		sessionHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitRule(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
