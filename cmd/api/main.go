package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pipemetric/insight-api/docs"
	"github.com/pipemetric/insight-api/internal/config"
	"github.com/pipemetric/insight-api/internal/database"
	"github.com/pipemetric/insight-api/internal/http/handler"
	"github.com/pipemetric/insight-api/internal/http/middleware"
	"github.com/pipemetric/insight-api/internal/http/router"
	"github.com/pipemetric/insight-api/internal/jobs"
	"github.com/pipemetric/insight-api/internal/logger"
	"github.com/pipemetric/insight-api/internal/repository"
	"github.com/pipemetric/insight-api/internal/seed"
	"github.com/pipemetric/insight-api/internal/service"
	"github.com/pipemetric/insight-api/internal/storage"
	"github.com/pipemetric/insight-api/internal/warehouse"
	"go.uber.org/zap"
)

// @title Pipemetric Insight API
// @version 1.0
// @description Sales performance analytics over a frozen CRM dataset: quarter KPIs, risk signals, recommendations and revenue trend.

// @contact.name API Support
// @contact.email support@pipemetric.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
		zap.String("as_of_date", basicCfg.Analytics.AsOfDate),
	)

	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "insight-staging.pipemetric.com"
	case "production":
		docs.SwaggerInfo.Host = "insight.pipemetric.com"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Full configuration with secrets resolved. Development reads environment
	// variables; staging/production fetch from Azure Key Vault.
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// The sqlite driver serves the dataset from memory and needs the schema
	// created on every start; postgres deployments run the goose migrations.
	if cfg.Database.Driver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Load the dataset once before serving. After this point the store is
	// only read.
	source, err := storage.NewSource(&cfg.Dataset, log)
	if err != nil {
		return fmt.Errorf("failed to initialize dataset source: %w", err)
	}
	log.Info("Dataset source initialized", zap.String("mode", cfg.Dataset.Mode))

	loader := seed.NewLoader(db, source, log)
	if err := loader.Load(ctx); err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	// Optional read-only warehouse connection for monthly targets. The app
	// continues without it if it is disabled or unreachable.
	warehouseClient, err := warehouse.NewClient(&cfg.Warehouse, log)
	if err != nil {
		log.Warn("Warehouse connection failed, continuing with seeded targets",
			zap.Error(err),
		)
		warehouseClient = nil
	}

	// Repositories
	dealRepo := repository.NewDealRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	targetRepo := repository.NewTargetRepository(db)

	// Services
	metricsService := service.NewMetricsService(dealRepo, targetRepo, &cfg.Analytics, log)
	trendService := service.NewTrendService(dealRepo, targetRepo, &cfg.Analytics, log)
	riskService := service.NewRiskService(dealRepo, activityRepo, accountRepo, &cfg.Analytics, log)
	recommendationService := service.NewRecommendationService(metricsService, riskService, log)

	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	insightHandler := handler.NewInsightHandler(
		metricsService,
		trendService,
		riskService,
		recommendationService,
		log,
	)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		warehouseClient,
		rateLimiter,
		insightHandler,
	)

	// Background target refresh from the warehouse
	var scheduler *jobs.Scheduler
	if cfg.Warehouse.SyncEnabled && warehouseClient.IsEnabled() {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterTargetSyncJob(
			scheduler,
			warehouseClient,
			targetRepo,
			log,
			cfg.Warehouse.SyncCron,
			cfg.Warehouse.QueryTimeoutDuration(),
			true, // refresh once at startup, off the critical path
		); err != nil {
			log.Error("Failed to register target sync job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with target sync job",
				zap.String("cron_expr", cfg.Warehouse.SyncCron),
			)
		}
	} else {
		log.Info("Target sync disabled, serving seeded targets",
			zap.Bool("warehouse_enabled", cfg.Warehouse.Enabled),
			zap.Bool("sync_enabled", cfg.Warehouse.SyncEnabled),
			zap.Bool("warehouse_client_available", warehouseClient.IsEnabled()),
		)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if err := warehouseClient.Close(); err != nil {
			log.Warn("Error closing warehouse connection", zap.Error(err))
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
