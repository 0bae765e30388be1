package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vinylfunders/vf-presale-engine/internal/adapter"
	"github.com/vinylfunders/vf-presale-engine/internal/config"
	"github.com/vinylfunders/vf-presale-engine/internal/domain"
	"github.com/vinylfunders/vf-presale-engine/internal/gateway"
	"github.com/vinylfunders/vf-presale-engine/internal/logger"
	"github.com/vinylfunders/vf-presale-engine/internal/messaging"
	"github.com/vinylfunders/vf-presale-engine/internal/notifier"
	"github.com/vinylfunders/vf-presale-engine/internal/reconciler"
	"github.com/vinylfunders/vf-presale-engine/internal/scheduler"
	"github.com/vinylfunders/vf-presale-engine/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadReconcilerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "reconciler",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Presale Reconciler")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()

	// Initialize payment gateway client
	paymentGateway := gateway.NewClient(
		adapter.NewHTTPClient(cfg.Gateway.Timeout),
		clock,
		gateway.Config{
			BaseURL: cfg.Gateway.BaseURL,
			APIKey:  cfg.Gateway.APIKey,
			Timeout: cfg.Gateway.Timeout,
		},
	)

	// Initialize mailer client
	mailer := notifier.NewClient(
		adapter.NewHTTPClient(cfg.Notifier.Timeout),
		notifier.Config{
			BaseURL: cfg.Notifier.BaseURL,
			APIKey:  cfg.Notifier.APIKey,
			Timeout: cfg.Notifier.Timeout,
		},
	)

	// Initialize event publisher (optional, reconciliation runs without it)
	var publisher messaging.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = messaging.NewJetStreamPublisher(messaging.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream(), jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		defer publisher.Close()
		logger.InfoCtx(ctx, "Connected to NATS", zap.String("url", cfg.NATS.URL))
	} else {
		logger.WarnCtx(ctx, "NATS URL not configured, campaign events will not be published")
	}

	// Initialize reconciliation engine
	engine := reconciler.New(
		reconciler.Config{
			WorkerPoolSize: cfg.Reconciliation.WorkerPoolSize,
			CaptureTimeout: cfg.Reconciliation.CaptureTimeout,
			Policy: domain.RetryPolicy{
				MaxAttempts: cfg.Reconciliation.Retry.MaxAttempts,
				MaxElapsed:  cfg.Reconciliation.Retry.MaxElapsed,
				Cooldown:    cfg.Reconciliation.Retry.Cooldown,
			},
			AdminEmail: cfg.Notifier.AdminEmail,
		},
		dataStore,
		paymentGateway,
		mailer,
		publisher,
		clock,
	)

	// Initialize scheduler
	sched := scheduler.New(scheduler.Config{
		FullPassInterval: cfg.Reconciliation.FullPassInterval,
		FastPassInterval: cfg.Reconciliation.FastPassInterval,
	}, engine, clock)

	logger.InfoCtx(ctx, "Initialized reconciliation scheduler",
		zap.Duration("full_pass_interval", cfg.Reconciliation.FullPassInterval),
		zap.Duration("fast_pass_interval", cfg.Reconciliation.FastPassInterval),
		zap.Int("worker_pool_size", cfg.Reconciliation.WorkerPoolSize),
	)

	// Start the scheduler in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := sched.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the scheduler
	cancel()

	// Give the scheduler time to shut down gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.InfoCtx(shutdownCtx, "Reconciler stopped")
}
