// Package server wires configuration, storage and domain services into the
// HTTP API and runs it until the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/banking"
	"workforce/internal/domain/clients"
	"workforce/internal/domain/notifications"
	"workforce/internal/domain/payroll"
	"workforce/internal/domain/profiles"
	"workforce/internal/domain/projects"
	"workforce/internal/domain/reports"
	"workforce/internal/domain/rosters"
	"workforce/internal/domain/workhours"
	"workforce/internal/platform/config"
	cryptoutil "workforce/internal/platform/crypto"
	"workforce/internal/platform/db"
	"workforce/internal/platform/email"
	"workforce/internal/platform/jobs"
	"workforce/internal/platform/logging"
	"workforce/internal/platform/metrics"
	"workforce/internal/platform/storage"
	"workforce/internal/platform/tracing"
	"workforce/internal/transport/http/middleware"
)

// idempotencyRetention bounds how long pay responses can be replayed.
const idempotencyRetention = 24 * time.Hour

const devJWTSecret = "dev-only-insecure-secret"

type App struct {
	Config  config.Config
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector

	notifications *notifications.Service
	idempotency   *middleware.IdempotencyStore
	proxies       []netip.Prefix
	ready         func(context.Context) error
}

// New builds every service on top of pool and files and assembles the router.
func New(cfg config.Config, pool *pgxpool.Pool, files storage.Storage) (*App, error) {
	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption: %w", err)
	}
	proxies, err := cfg.ProxyPrefixes()
	if err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, using an insecure development secret")
		cfg.JWTSecret = devJWTSecret
	}

	collector := metrics.New()
	jobsSvc := jobs.New(jobs.NewStore(pool), collector)
	notifier := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom)
	auditSvc := audit.New(pool)
	idem := middleware.NewIdempotencyStore(pool)

	authSvc := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL, crypto)
	profileSvc := profiles.NewService(profiles.NewStore(pool, crypto))
	clientSvc := clients.NewService(clients.NewStore(pool))
	projectSvc := projects.NewService(projects.NewStore(pool))
	hoursStore := workhours.NewStore(pool)
	hoursSvc := workhours.NewService(hoursStore, profileSvc, notifier, authSvc)
	rosterSvc := rosters.NewService(rosters.NewStore(pool), hoursStore, profileSvc, notifier, authSvc, jobsSvc)
	payrollSvc := payroll.NewService(payroll.NewStore(pool), jobsSvc, notifier, authSvc, files, collector, cfg.DefaultCurrency)
	bankSvc := banking.NewService(banking.NewStore(pool, crypto), cfg.DefaultCurrency)
	reportSvc := reports.NewService(reports.NewStore(pool), bankSvc, jobsSvc)

	app := &App{
		Config:        cfg,
		Jobs:          jobsSvc,
		Metrics:       collector,
		notifications: notifier,
		idempotency:   idem,
		proxies:       proxies,
		ready: func(ctx context.Context) error {
			if pool == nil {
				return errors.New("database not configured")
			}
			return pool.Ping(ctx)
		},
	}
	app.Router = app.routes(services{
		auth:          authSvc,
		profiles:      profileSvc,
		clients:       clientSvc,
		projects:      projectSvc,
		hours:         hoursSvc,
		rosters:       rosterSvc,
		payroll:       payrollSvc,
		banking:       bankSvc,
		reports:       reportSvc,
		notifications: notifier,
		audit:         auditSvc,
		idempotency:   idem,
	})
	return app, nil
}

// StartJobs launches the queue worker and the periodic jobs.
func (a *App) StartJobs(ctx context.Context) {
	a.Jobs.Start(ctx)
	a.Jobs.Every(ctx, a.Config.PendingDigestEvery, jobs.JobPendingHoursDigest, a.notifications.PendingDigest)
	a.Jobs.Every(ctx, time.Hour, jobs.JobIdempotencyPurge, func(ctx context.Context) (any, error) {
		purged, err := a.idempotency.Purge(ctx, idempotencyRetention)
		return map[string]int64{"purged": purged}, err
	})
}

// Run loads configuration, prepares the database and serves until ctx is done.
func Run(ctx context.Context) error {
	cfg := config.Load()
	logger := logging.New(logging.Config{
		Service: cfg.OTelServiceName,
		Env:     cfg.Environment,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.OTelServiceName)
	if err != nil {
		logger.Warn("tracing disabled", "err", err)
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Warn("tracing shutdown failed", "err", err)
			}
		}()
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(pool); err != nil {
			return err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	files, err := storage.New(cfg)
	if err != nil {
		return fmt.Errorf("payslip storage: %w", err)
	}

	app, err := New(cfg, pool, files)
	if err != nil {
		return err
	}

	jobCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	app.StartJobs(jobCtx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("workforce server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "grace", cfg.ShutdownGracePeriod)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", "err", err)
	}
	stopJobs()
	app.Jobs.Wait()
	return nil
}
