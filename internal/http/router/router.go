package router

import (
	"encoding/json"
	"net/http"

	"github.com/dealbridge/negotiation-api/internal/config"
	"github.com/dealbridge/negotiation-api/internal/database"
	"github.com/dealbridge/negotiation-api/internal/http/handler"
	"github.com/dealbridge/negotiation-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg                *config.Config
	logger             *zap.Logger
	db                 *gorm.DB
	rateLimiter        *middleware.RateLimiter
	negotiationHandler *handler.NegotiationHandler
	messageHandler     *handler.MessageHandler
	termHandler        *handler.TermHandler
	eventsHandler      *handler.EventsHandler
	adminHandler       *handler.AdminHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	rateLimiter *middleware.RateLimiter,
	negotiationHandler *handler.NegotiationHandler,
	messageHandler *handler.MessageHandler,
	termHandler *handler.TermHandler,
	eventsHandler *handler.EventsHandler,
	adminHandler *handler.AdminHandler,
) *Router {
	return &Router{
		cfg:                cfg,
		logger:             logger,
		db:                 db,
		rateLimiter:        rateLimiter,
		negotiationHandler: negotiationHandler,
		messageHandler:     messageHandler,
		termHandler:        termHandler,
		eventsHandler:      eventsHandler,
		adminHandler:       adminHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with connection pool stats)
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
			},
		})
	})

	// Combined readiness check
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

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		code := http.StatusOK
		if !allHealthy {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// Request timeout for the regular API routes. The event stream is
	// long-lived and registered outside of it.
	requestTimeout := func(next http.Handler) http.Handler { return next }
	if d := rt.cfg.Server.RequestTimeoutDuration(); d > 0 {
		requestTimeout = chimiddleware.Timeout(d)
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Negotiations
		r.Route("/negotiations", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(requestTimeout)
				r.Get("/", rt.negotiationHandler.List)
				r.Post("/", rt.negotiationHandler.Create)
			})
			r.Route("/{link}", func(r chi.Router) {
				r.Get("/events", rt.eventsHandler.Subscribe)
				r.Group(func(r chi.Router) {
					r.Use(requestTimeout)
					r.Get("/", rt.negotiationHandler.GetByLink)
					r.Post("/conclude", rt.negotiationHandler.Conclude)
					r.Get("/export", rt.negotiationHandler.Export)
					r.Post("/typing", rt.negotiationHandler.Typing)
					r.Get("/messages", rt.messageHandler.List)
					r.Post("/messages", rt.messageHandler.Post)
					r.Post("/reply", rt.messageHandler.Reply)
				})
			})
		})

		// Terms
		r.Route("/terms/{id}", func(r chi.Router) {
			r.Use(requestTimeout)
			r.Put("/quoted", rt.termHandler.UpdateQuoted)
			r.Put("/current", rt.termHandler.UpdateCurrent)
			r.Put("/agreed", rt.termHandler.UpdateAgreed)
		})

		// Admin (API key guarded)
		r.Route("/admin", func(r chi.Router) {
			r.Use(requestTimeout)
			r.Use(middleware.AdminAPIKey(rt.cfg.Admin.APIKey, rt.logger))
			r.Post("/cleanup", rt.adminHandler.Cleanup)
		})
	})

	return r
}
