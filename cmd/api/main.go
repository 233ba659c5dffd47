package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oceanis-yachts/sales-api/docs"
	"github.com/oceanis-yachts/sales-api/internal/auth"
	"github.com/oceanis-yachts/sales-api/internal/config"
	"github.com/oceanis-yachts/sales-api/internal/database"
	"github.com/oceanis-yachts/sales-api/internal/http/handler"
	"github.com/oceanis-yachts/sales-api/internal/http/middleware"
	"github.com/oceanis-yachts/sales-api/internal/http/router"
	"github.com/oceanis-yachts/sales-api/internal/jobs"
	"github.com/oceanis-yachts/sales-api/internal/legacyerp"
	"github.com/oceanis-yachts/sales-api/internal/logger"
	"github.com/oceanis-yachts/sales-api/internal/repository"
	"github.com/oceanis-yachts/sales-api/internal/service"
	"github.com/oceanis-yachts/sales-api/internal/storage"
	"go.uber.org/zap"
)

// @title Oceanis Sales API
// @version 1.0
// @description Yacht sales API: quotations, contracts and ATO amendment workflow
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email suporte@oceanis.com.br

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

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

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "sales-api-staging.oceanis.com.br"
	case "production":
		docs.SwaggerInfo.Host = "api.oceanis.com.br"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database with retry logic
	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// In development the schema is kept in sync automatically; staging and
	// production run goose migrations instead.
	if cfg.App.Environment == "development" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to run auto-migrations: %w", err)
		}
	}

	// Initialize storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize the legacy ERP connection (optional, read-only). The API
	// keeps running without it; only imports are unavailable.
	var erpClient *legacyerp.Client
	if cfg.LegacyERP.Enabled {
		erpClient, err = legacyerp.NewClient(&cfg.LegacyERP, log)
		if err != nil {
			log.Warn("Legacy ERP connection failed, continuing without it",
				zap.Error(err),
			)
		} else if erpClient != nil {
			log.Info("Legacy ERP connected",
				zap.Int("max_open_conns", cfg.LegacyERP.MaxOpenConns),
				zap.Int("query_timeout_seconds", cfg.LegacyERP.QueryTimeout),
			)
		}
	} else {
		log.Info("Legacy ERP not configured, skipping")
	}

	// Pricing policy shared by quotations and amendments
	pricingCfg := cfg.Pricing.ToPricing()

	// Initialize repositories
	clientRepo := repository.NewClientRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	contractRepo := repository.NewContractRepository(db)
	amendmentRepo := repository.NewAmendmentRepository(db)
	itemRepo := repository.NewConfiguredItemRepository(db)
	stepRepo := repository.NewWorkflowStepRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)

	// Initialize services
	numberSequenceService := service.NewNumberSequenceService(numberSequenceRepo, log)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, log)
	auditLogService := service.NewAuditLogService(auditLogRepo, log)

	clientService := service.NewClientService(clientRepo, activityRepo, log)
	catalogService := service.NewCatalogService(catalogRepo, log)
	quotationService := service.NewQuotationService(quotationRepo, clientRepo, catalogRepo, contractRepo, activityRepo, numberSequenceService, pricingCfg, log)
	contractService := service.NewContractService(contractRepo, amendmentRepo, activityRepo, log)
	amendmentService := service.NewAmendmentService(amendmentRepo, itemRepo, contractRepo, catalogRepo, activityRepo, numberSequenceService, notificationService, pricingCfg, log)
	lifecycleService := service.NewAmendmentLifecycleService(amendmentRepo, stepRepo, contractRepo, activityRepo, notificationService, pricingCfg, log)
	itemReviewService := service.NewItemReviewService(amendmentRepo, itemRepo, activityRepo, notificationService, pricingCfg, log)
	documentService := service.NewDocumentService(documentRepo, contractRepo, amendmentRepo, activityRepo, fileStorage, log)
	activityService := service.NewActivityService(activityRepo, log)
	legacyImportService := service.NewLegacyImportService(erpClient, contractRepo, amendmentRepo, activityRepo, numberSequenceService, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	auditMiddleware := middleware.NewAuditMiddleware(auditLogService, nil, log)

	// Initialize handlers
	graphClient := auth.NewGraphClient(&cfg.AzureAd)
	authHandler := handler.NewAuthHandler(userRepo, graphClient, log)
	clientHandler := handler.NewClientHandler(clientService, log)
	catalogHandler := handler.NewCatalogHandler(catalogService, log)
	quotationHandler := handler.NewQuotationHandler(quotationService, log)
	contractHandler := handler.NewContractHandler(contractService, log)
	amendmentHandler := handler.NewAmendmentHandler(amendmentService, log)
	lifecycleHandler := handler.NewAmendmentLifecycleHandler(lifecycleService, itemReviewService, log)
	documentHandler := handler.NewDocumentHandler(documentService, cfg.Storage.MaxUploadSizeMB, log)
	activityHandler := handler.NewActivityHandler(activityService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	auditHandler := handler.NewAuditHandler(auditLogService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		erpClient,
		authMiddleware,
		rateLimiter,
		auditMiddleware,
		authHandler,
		clientHandler,
		catalogHandler,
		quotationHandler,
		contractHandler,
		amendmentHandler,
		lifecycleHandler,
		documentHandler,
		activityHandler,
		notificationHandler,
		auditHandler,
	)

	// Background jobs: daily sweep (quotation expiry, overdue reminders,
	// audit retention) and the optional legacy ERP import.
	scheduler := jobs.NewScheduler(log)

	if err := jobs.RegisterSweepJob(
		scheduler,
		quotationService,
		lifecycleService,
		auditLogService,
		cfg.Jobs.ResponseOverdueAge(),
		log,
		cfg.Jobs.SweepCron,
		cfg.Jobs.TimeoutDuration(),
		cfg.Jobs.SweepOnStartup,
	); err != nil {
		log.Error("Failed to register sweep job", zap.Error(err))
	}

	if erpClient.IsEnabled() && cfg.Jobs.LegacyImportCron != "" {
		if err := jobs.RegisterLegacyImportJob(
			scheduler,
			legacyImportService,
			log,
			cfg.Jobs.LegacyImportCron,
			cfg.Jobs.TimeoutDuration(),
			cfg.Jobs.LegacyImportOnStartup,
		); err != nil {
			log.Error("Failed to register legacy import job", zap.Error(err))
		}
	}

	scheduler.Start()
	log.Info("Scheduler started",
		zap.Strings("jobs", scheduler.GetJobNames()),
		zap.String("sweep_cron", cfg.Jobs.SweepCron),
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close the ERP connection if initialized
		if erpClient != nil {
			if err := erpClient.Close(); err != nil {
				log.Warn("Error closing legacy ERP connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
