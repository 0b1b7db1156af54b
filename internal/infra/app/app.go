package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/engsiam/phone-email-auth/internal/core/port"
	"github.com/engsiam/phone-email-auth/internal/infra/config"
	"github.com/engsiam/phone-email-auth/internal/infra/database"
	"github.com/engsiam/phone-email-auth/internal/infra/logger"
	"github.com/engsiam/phone-email-auth/internal/infra/notifier"
	"github.com/engsiam/phone-email-auth/internal/infra/security"
	"github.com/engsiam/phone-email-auth/internal/infra/telemetry"
	postgresrepo "github.com/engsiam/phone-email-auth/internal/repository/postgres"
	"github.com/engsiam/phone-email-auth/internal/transport/http/middleware"
	"github.com/engsiam/phone-email-auth/internal/transport/http/routes"
	"github.com/engsiam/phone-email-auth/internal/usecase"
)

// Application bundles the running service and its owned resources.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	producer *notifier.Producer
}

// New wires configuration, infrastructure, services, and transport into a
// runnable application.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		pool.Close()
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	tokens, err := security.NewTokenIssuer(cfg.JWT.Secret, cfg.App.Name)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init token issuer: %w", err)
	}

	var gateway port.Notifier
	var producer *notifier.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = notifier.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using logging notifier", zap.Error(err))
			gateway = notifier.NewLoggingNotifier(log)
		} else {
			gateway = notifier.NewKafkaNotifier(producer, log)
		}
	} else {
		log.Info("kafka brokers not configured, using logging notifier")
		gateway = notifier.NewLoggingNotifier(log)
	}

	passwordValidator := security.DefaultPasswordValidator()
	if cfg.Password.MinZxcvbnScore > 0 {
		passwordValidator = security.NewPasswordValidator(
			security.MinLengthRule(12),
			security.RequireLowercaseRule(),
			security.RequireUppercaseRule(),
			security.RequireDigitRule(),
			security.RequireSymbolRule(),
			security.RequirePasswordStrengthRule(cfg.Password.MinZxcvbnScore),
		)
	}

	accounts := postgresrepo.NewAccountRepository(pool)

	registrationService := usecase.NewRegistrationService(cfg, accounts, gateway, tokens, passwordValidator, log)
	authService := usecase.NewAuthService(cfg, accounts, tokens)
	passwordService := usecase.NewPasswordService(cfg, accounts, gateway, passwordValidator, log)
	accountService := usecase.NewAccountService(accounts)

	metrics, err := telemetry.NewMetrics(nil)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Metrics:     metrics,
		HTTPMetrics: httpMetrics,
		Database:    pool,
		Services: routes.ServiceSet{
			Auth:         authService,
			Registration: registrationService,
			Passwords:    passwordService,
			Accounts:     accountService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		producer: producer,
	}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled or the server
// fails.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			if err := a.producer.Close(); err != nil {
				a.logger.Warn("close kafka producer", zap.Error(err))
			}
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

	a.logger.Info("starting auth API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
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
