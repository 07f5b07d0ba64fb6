package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"outreach_backend/internal/auth"
	"outreach_backend/internal/email"
	"outreach_backend/internal/funnel"
	"outreach_backend/internal/funnel/domain"
	"outreach_backend/internal/funnel/engine"
	"outreach_backend/internal/funnel/idempotency"
	"outreach_backend/internal/funnel/repository"
	"outreach_backend/internal/funnel/service"
	apphttp "outreach_backend/internal/http"
	"outreach_backend/internal/http/router"
	"outreach_backend/internal/identity"
	"outreach_backend/internal/notification"
	"outreach_backend/platform/config"
	"outreach_backend/platform/db"
	"outreach_backend/platform/events"
	"outreach_backend/platform/logger"
	"outreach_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting api server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	cadence, err := domain.LoadCadence(cfg.GetCadenceFile())
	if err != nil {
		log.Error("failed to load cadence", "error", err, "file", cfg.GetCadenceFile())
		panic("failed to load cadence: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	store := repository.NewPostgresStore(pool)
	funnelService := service.New(store, engine.New(cadence), eventBus, validator.New(), log)
	funnelModule := funnel.NewModule(funnelService, cadence, log)

	orgs := identity.NewRepository(pool)

	var sender email.Sender = email.NoopSender{}
	if cfg.GetEmailEnabled() {
		sender = email.NewSMTPSender(
			cfg.GetSMTPHost(), cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
		)
		log.Info("smtp email sender initialized", "host", cfg.GetSMTPHost())
	} else {
		log.Warn("email disabled; owner notifications will not be sent")
	}

	notifier := notification.New(orgs, sender, log, cfg.GetDashboardURL())
	notifier.Subscribe(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:                cfg,
		Logger:                log,
		Health:                db.NewPoolAdapter(pool),
		EventBus:              eventBus,
		AuthMiddleware:        auth.Middleware(cfg, orgs, log),
		IdempotencyMiddleware: idempotency.Middleware(newIdempotencyCache(cfg, log), log),
		Modules: []apphttp.Module{
			funnelModule,
		},
	}

	engineHTTP := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engineHTTP.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// newIdempotencyCache prefers Redis with an in-memory fallback; without a
// Redis URL the in-memory cache serves alone.
func newIdempotencyCache(cfg *config.Config, log *logger.Logger) idempotency.Cache {
	memory := idempotency.NewMemoryCache(cfg.GetIdempotencyTTL())
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; idempotency replay is per-process only")
		return memory
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL; idempotency replay is per-process only", "error", err)
		return memory
	}

	primary := idempotency.NewRedisCache(redis.NewClient(opt), cfg.GetIdempotencyTTL())
	return idempotency.NewFallbackCache(primary, memory, log)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
