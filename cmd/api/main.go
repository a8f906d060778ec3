package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thavon_backend/internal/appointments"
	"thavon_backend/internal/assignment"
	"thavon_backend/internal/billing"
	"thavon_backend/internal/campaigns"
	"thavon_backend/internal/crm"
	"thavon_backend/internal/email"
	"thavon_backend/internal/events"
	apphttp "thavon_backend/internal/http"
	"thavon_backend/internal/http/router"
	"thavon_backend/internal/leads"
	"thavon_backend/internal/notification"
	"thavon_backend/internal/scheduler"
	"thavon_backend/internal/voice"
	"thavon_backend/internal/whatsapp"
	"thavon_backend/platform/config"
	"thavon_backend/platform/db"
	"thavon_backend/platform/logger"
	"thavon_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
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

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	retryScheduler, closeScheduler := initRetryScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}
	if retryScheduler != nil {
		scheduler.SubscribeRetryScheduling(eventBus, retryScheduler, log)
	}

	sender := email.NewSender(cfg)
	whatsappClient := whatsapp.NewClient(cfg, log)
	val := validator.New()

	if !cfg.IsVapiConfigured() {
		log.Warn("vapi not configured; inbound leads will be rejected")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification and CRM modules subscribe to domain events (not HTTP-facing)
	notification.NewModule(pool, sender, whatsappClient, eventBus, log)
	crm.NewModule(pool, eventBus, log)

	gate := billing.NewGate(billing.NewRepository(pool))
	assignmentModule := assignment.NewModule(pool, log)

	leadsRepo := leads.NewRepository(pool)
	appointmentsModule := appointments.NewModule(pool, leadsRepo, assignmentModule.Service(), eventBus, log)

	voiceModule := voice.NewModule(pool, cfg, leadsRepo, appointmentsModule.Service(), eventBus, log)
	go voiceModule.Dispatcher().Run(ctx)

	leadsModule := leads.NewModule(pool, gate, voiceModule.Dispatcher(), cfg.IsVapiConfigured(), eventBus, log)
	campaignsModule := campaigns.NewModule(leadsRepo, gate, voiceModule.Dispatcher(), cfg.IsVapiConfigured(), val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			voiceModule,
			campaignsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initRetryScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.RetryScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; call retries will not be executed")
		return nil, nil
	}

	retryClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize retry scheduler client", "error", err)
		return nil, nil
	}

	return retryClient, func() {
		_ = retryClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
