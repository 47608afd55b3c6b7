// Package app wires configuration into the contact pipeline. Both the HTTP
// server and the contactctl CLI build their dependencies through New.
package app

import (
	"context"

	"go.uber.org/zap"

	"portfolio-contact/config"
	"portfolio-contact/internal/domain"
	"portfolio-contact/internal/notifier"
	"portfolio-contact/internal/usecase"
	"portfolio-contact/pkg/database"
	"portfolio-contact/pkg/email"
	"portfolio-contact/pkg/redis"
	"portfolio-contact/pkg/security"
	"portfolio-contact/pkg/telegram"
	"portfolio-contact/pkg/validation"
)

const serviceName = "portfolio-contact"

// App holds the wired pipeline and the resources it owns
type App struct {
	Config         *config.Config
	Logger         *zap.Logger
	SecurityLogger *security.SecurityLogger
	Email          *email.EmailService
	Telegram       *telegram.Notifier
	Dispatcher     *notifier.Dispatcher
	Contact        domain.ContactUsecase
	Health         usecase.HealthUsecase

	closers []func()
}

// New builds the pipeline. Redis and Postgres are optional: when either is
// unset or unreachable the app logs a warning and runs without it.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	// 1. Security logger, optionally persisted to Postgres
	a.SecurityLogger = security.NewSecurityLogger(logger, serviceName, cfg.Environment)
	if cfg.DBUrl != "" && cfg.SecurityLogToDB {
		pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Warn("Security event persistence disabled", zap.Error(err))
		} else {
			a.closers = append(a.closers, pool.Close)
			repo := security.NewSecurityEventRepository(pool)
			if err := repo.EnsureSchema(ctx); err != nil {
				logger.Warn("Security event schema check failed", zap.Error(err))
			}
			a.SecurityLogger.SetPersistFunc(repo.CreatePersistFunc())
		}
	}

	// 2. Ledger: shared Redis when configured, in-process otherwise
	var ledger security.Ledger
	var ledgerPinger usecase.Pinger
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis unavailable, using in-memory ledger", zap.Error(err))
		} else {
			a.closers = append(a.closers, func() { _ = client.Close() })
			redisLedger := security.NewRedisLedger(client, cfg.RateLimitWindow())
			ledger, ledgerPinger = redisLedger, redisLedger
		}
	}
	if ledger == nil {
		ledger = security.NewMemoryLedger(security.MemoryLedgerConfig{
			Window:        cfg.RateLimitWindow(),
			MaxEntries:    cfg.RateLimitMaxEntries,
			PurgeInterval: cfg.RateLimitPurgeInterval,
		})
	}

	// 3. Channels and dispatcher
	a.Email = email.NewEmailService(cfg, logger)
	a.Telegram = telegram.NewNotifier(cfg, logger)
	a.Dispatcher = notifier.NewDispatcher(a.Email, a.Telegram, logger, notifier.DispatcherOptions{
		Strict: cfg.StrictDelivery,
	})

	// 4. Usecases
	a.Contact = usecase.NewContactUsecase(
		validation.NewContactValidator(),
		security.NewAbuseFilter(ledger, a.SecurityLogger),
		a.Dispatcher,
		a.SecurityLogger,
		logger,
	)
	a.Health = usecase.NewHealthUsecase(usecase.HealthOptions{
		EmailConfigured:    a.Email.IsConfigured(),
		TelegramConfigured: a.Telegram.IsConfigured(),
		StrictDelivery:     cfg.StrictDelivery,
		Ledger:             ledgerPinger,
	})

	return a
}

// Close waits for detached chat sends, then releases Redis and Postgres
func (a *App) Close() {
	a.Dispatcher.Wait()
	_ = a.SecurityLogger.Sync()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
