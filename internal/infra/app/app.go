package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/letsconnect/auth-gateway/internal/core/port"
	"github.com/letsconnect/auth-gateway/internal/infra/config"
	kafkainfra "github.com/letsconnect/auth-gateway/internal/infra/kafka"
	"github.com/letsconnect/auth-gateway/internal/infra/logger"
	redisinfra "github.com/letsconnect/auth-gateway/internal/infra/redis"
	"github.com/letsconnect/auth-gateway/internal/infra/security"
	"github.com/letsconnect/auth-gateway/internal/repository/parse"
	redisrepo "github.com/letsconnect/auth-gateway/internal/repository/redis"
	"github.com/letsconnect/auth-gateway/internal/transport/http/middleware"
	"github.com/letsconnect/auth-gateway/internal/transport/http/routes"
	"github.com/letsconnect/auth-gateway/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
}

func New(_ context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	backendClient, err := parse.NewClient(parse.Options{
		ServerURL:     cfg.Backend.ServerURL,
		ApplicationID: cfg.Backend.ApplicationID,
		ClientKey:     cfg.Backend.ClientKey,
		MasterKey:     cfg.Backend.MasterKey,
		Timeout:       cfg.Backend.Timeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("init backend client: %w", err)
	}
	accounts := parse.NewAccountRepository(backendClient)

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	recoveryStore := redisrepo.NewRecoveryRepository(redisClient.Client(), cfg.Redis.RecoveryPrefix)
	inflightStore := redisrepo.NewInflightRepository(redisClient.Client(), cfg.Redis.InflightPrefix)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "lc:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	var eventPublisher port.EventPublisher
	var producer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			producer = nil
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	passwordValidator := security.DefaultPasswordValidator()

	authService := usecase.NewAuthService(accounts, inflightStore, log)
	sessionService := usecase.NewSessionService(accounts, eventPublisher, log)
	registrationService := usecase.NewRegistrationService(accounts, inflightStore, eventPublisher, passwordValidator, log)
	passwordResetService := usecase.NewPasswordResetService(cfg.Recovery, accounts, recoveryStore, inflightStore, eventPublisher, passwordValidator, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{
		Namespace: cfg.Telemetry.MetricsNamespace,
	})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:          authService,
			Registration:  registrationService,
			PasswordReset: passwordResetService,
			Sessions:      sessionService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		redis:    redisClient,
		producer: producer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting auth gateway",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
		zap.String("backend", a.cfg.Backend.ServerURL),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
