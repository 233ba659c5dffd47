package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oceanis-yachts/sales-api/internal/auth"
	"github.com/oceanis-yachts/sales-api/internal/config"
	"github.com/oceanis-yachts/sales-api/internal/database"
	"github.com/oceanis-yachts/sales-api/internal/http/handler"
	"github.com/oceanis-yachts/sales-api/internal/http/middleware"
	"github.com/oceanis-yachts/sales-api/internal/legacyerp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/oceanis-yachts/sales-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	erpClient        *legacyerp.Client
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	auditMiddleware  *middleware.AuditMiddleware
	authHandler      *handler.AuthHandler
	clientHandler    *handler.ClientHandler
	catalogHandler   *handler.CatalogHandler
	quotationHandler *handler.QuotationHandler
	contractHandler  *handler.ContractHandler
	amendmentHandler *handler.AmendmentHandler
	lifecycleHandler *handler.AmendmentLifecycleHandler
	documentHandler  *handler.DocumentHandler
	activityHandler  *handler.ActivityHandler
	notifHandler     *handler.NotificationHandler
	auditHandler     *handler.AuditHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	erpClient *legacyerp.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	auditMiddleware *middleware.AuditMiddleware,
	authHandler *handler.AuthHandler,
	clientHandler *handler.ClientHandler,
	catalogHandler *handler.CatalogHandler,
	quotationHandler *handler.QuotationHandler,
	contractHandler *handler.ContractHandler,
	amendmentHandler *handler.AmendmentHandler,
	lifecycleHandler *handler.AmendmentLifecycleHandler,
	documentHandler *handler.DocumentHandler,
	activityHandler *handler.ActivityHandler,
	notifHandler *handler.NotificationHandler,
	auditHandler *handler.AuditHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		erpClient:        erpClient,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		auditMiddleware:  auditMiddleware,
		authHandler:      authHandler,
		clientHandler:    clientHandler,
		catalogHandler:   catalogHandler,
		quotationHandler: quotationHandler,
		contractHandler:  contractHandler,
		amendmentHandler: amendmentHandler,
		lifecycleHandler: lifecycleHandler,
		documentHandler:  documentHandler,
		activityHandler:  activityHandler,
		notifHandler:     notifHandler,
		auditHandler:     auditHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Legacy ERP health check. Reports "disabled" when the integration
	// is not configured, which is not a failure.
	r.Get("/health/erp", func(w http.ResponseWriter, r *http.Request) {
		status := rt.erpClient.HealthCheck(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if status.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		json.NewEncoder(w).Encode(status)
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		// The legacy ERP is an optional dependency: it degrades imports,
		// not the API, so it never flips readiness.
		erpStatus := rt.erpClient.HealthCheck(r.Context())
		checks["legacy_erp"] = map[string]interface{}{
			"status": erpStatus.Status,
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.auditMiddleware.Audit) // Audit all modifications

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)
			r.Get("/auth/profile", rt.authHandler.Profile)
			r.Get("/users", rt.authHandler.ListUsers)

			// Audit logs (administrators only)
			r.Route("/audit", func(r chi.Router) {
				r.Get("/", rt.auditHandler.List)
				r.Get("/stats", rt.auditHandler.GetStats)
				r.Get("/export", rt.auditHandler.Export)
				r.Get("/entity/{entityType}/{entityId}", rt.auditHandler.GetByEntity)
				r.Get("/{id}", rt.auditHandler.GetByID)
			})

			// Clients
			r.Route("/clients", func(r chi.Router) {
				r.Get("/", rt.clientHandler.List)
				r.Post("/", rt.clientHandler.Create)
				r.Get("/search", rt.clientHandler.Search)
				r.Get("/{id}", rt.clientHandler.GetByID)
				r.Put("/{id}", rt.clientHandler.Update)
				r.Delete("/{id}", rt.clientHandler.Delete)
			})

			// Catalog: yacht models, memorial items, upgrades, options
			r.Route("/catalog", func(r chi.Router) {
				r.Route("/models", func(r chi.Router) {
					r.Get("/", rt.catalogHandler.ListModels)
					r.Post("/", rt.catalogHandler.CreateModel)
					r.Get("/{id}", rt.catalogHandler.GetModel)
					r.Put("/{id}", rt.catalogHandler.UpdateModel)
					r.Post("/{id}/memorial-items", rt.catalogHandler.AddMemorialItem)
					r.Get("/{id}/options", rt.catalogHandler.ListOptions)
					r.Post("/{id}/options", rt.catalogHandler.AddOption)
				})
				r.Post("/upgrades", rt.catalogHandler.AddUpgrade)
			})

			// Quotations
			r.Route("/quotations", func(r chi.Router) {
				r.Get("/", rt.quotationHandler.List)
				r.Post("/", rt.quotationHandler.Create)
				r.Get("/search", rt.quotationHandler.Search)
				r.Get("/{id}", rt.quotationHandler.GetByID)
				r.Put("/{id}", rt.quotationHandler.Update)
				r.Delete("/{id}", rt.quotationHandler.Delete)
				r.Get("/{id}/pricing", rt.quotationHandler.GetPricing)

				// Lifecycle endpoints
				r.Post("/{id}/send", rt.quotationHandler.Send)
				r.Post("/{id}/accept", rt.quotationHandler.Accept)
				r.Post("/{id}/reject", rt.quotationHandler.Reject)
			})

			// Contracts
			r.Route("/contracts", func(r chi.Router) {
				r.Get("/", rt.contractHandler.List)
				r.Get("/search", rt.contractHandler.Search)
				r.Get("/by-number/{number}", rt.contractHandler.GetByNumber)
				r.Get("/{id}", rt.contractHandler.GetByID)
				r.Put("/{id}/status", rt.contractHandler.UpdateStatus)
				r.Get("/{id}/impact", rt.contractHandler.GetImpact)
				r.Get("/{id}/amendments", rt.contractHandler.ListAmendments)
				r.Post("/{id}/recompute", rt.contractHandler.RecomputeTotals)
				r.Get("/{id}/documents", rt.documentHandler.ListByContract)
				r.Post("/{id}/documents", rt.documentHandler.UploadToContract)
			})

			// Amendments (ATOs)
			r.Route("/amendments", func(r chi.Router) {
				r.Get("/", rt.amendmentHandler.List)
				r.Post("/", rt.amendmentHandler.Create)
				r.Get("/{id}", rt.amendmentHandler.GetByID)
				r.Put("/{id}", rt.amendmentHandler.Update)
				r.Delete("/{id}", rt.amendmentHandler.Delete)

				// Lifecycle endpoints
				r.Post("/{id}/cancel", rt.amendmentHandler.Cancel)
				r.Post("/{id}/reverse", rt.amendmentHandler.Reverse)
				r.Post("/{id}/reopen", rt.amendmentHandler.ReopenLegacy)
				r.Post("/{id}/send", rt.lifecycleHandler.SendToClient)
				r.Post("/{id}/approve-commercial", rt.lifecycleHandler.ApproveCommercial)
				r.Post("/{id}/client-response", rt.lifecycleHandler.RecordClientResponse)

				// Technical review
				r.Get("/{id}/review-progress", rt.lifecycleHandler.Progress)
				r.Post("/{id}/items/{itemId}/resolve", rt.lifecycleHandler.ResolveItem)
				r.Post("/{id}/request-revision", rt.lifecycleHandler.RequestRevision)
				r.Post("/{id}/resubmit", rt.lifecycleHandler.Resubmit)

				// Documents
				r.Get("/{id}/documents", rt.documentHandler.ListByAmendment)
				r.Post("/{id}/documents", rt.documentHandler.UploadToAmendment)
			})

			// Documents
			r.Route("/documents", func(r chi.Router) {
				r.Get("/{id}/download", rt.documentHandler.Download)
				r.Delete("/{id}", rt.documentHandler.Delete)
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notifHandler.List)
				r.Get("/count", rt.notifHandler.GetUnreadCount)
				r.Put("/read-all", rt.notifHandler.MarkAllAsRead)
				r.Get("/{id}", rt.notifHandler.GetByID)
				r.Put("/{id}/read", rt.notifHandler.MarkAsRead)
			})

			// Activities
			r.Route("/activities", func(r chi.Router) {
				r.Get("/", rt.activityHandler.List)
				r.Post("/", rt.activityHandler.CreateNote)
				r.Get("/{id}", rt.activityHandler.GetByID)
			})
		})
	})

	return r
}
