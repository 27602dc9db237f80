package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dealbridge/negotiation-api/internal/config"
	"github.com/dealbridge/negotiation-api/internal/database"
	"github.com/dealbridge/negotiation-api/internal/genai"
	"github.com/dealbridge/negotiation-api/internal/http/handler"
	"github.com/dealbridge/negotiation-api/internal/http/middleware"
	"github.com/dealbridge/negotiation-api/internal/http/router"
	"github.com/dealbridge/negotiation-api/internal/jobs"
	"github.com/dealbridge/negotiation-api/internal/logger"
	"github.com/dealbridge/negotiation-api/internal/realtime"
	"github.com/dealbridge/negotiation-api/internal/repository"
	"github.com/dealbridge/negotiation-api/internal/service"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize the reply generator
	generator, err := genai.NewClient(ctx, &cfg.AI)
	if err != nil {
		return fmt.Errorf("failed to create reply generator: %w", err)
	}
	defer func() { _ = generator.Close() }()

	// Initialize the realtime relay
	hub := realtime.NewHub(log)
	defer hub.Close()

	// Initialize repositories
	negotiationRepo := repository.NewNegotiationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	termRepo := repository.NewTermRepository(db)

	// Initialize services
	negotiationService := service.NewNegotiationService(negotiationRepo, messageRepo, hub, log)
	messageService := service.NewMessageService(negotiationRepo, messageRepo, hub, log)
	replyService := service.NewReplyService(negotiationRepo, messageRepo, generator, hub, log)
	termService := service.NewTermService(termRepo, negotiationRepo, log)

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	negotiationHandler := handler.NewNegotiationHandler(negotiationService, log)
	messageHandler := handler.NewMessageHandler(messageService, replyService, log)
	termHandler := handler.NewTermHandler(termService, log)
	eventsHandler := handler.NewEventsHandler(negotiationService, hub, log)
	adminHandler := handler.NewAdminHandler(negotiationService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		rateLimiter,
		negotiationHandler,
		messageHandler,
		termHandler,
		eventsHandler,
		adminHandler,
	)

	// Start scheduler when the retention job is enabled
	var scheduler *jobs.Scheduler
	if cfg.Retention.Enabled {
		scheduler = jobs.NewScheduler(log)
		retentionJob := jobs.NewRetentionJob(&cfg.Retention, negotiationRepo, log)
		if err := retentionJob.Register(scheduler); err != nil {
			log.Error("Failed to register retention job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with retention job",
				zap.String("cron_expr", cfg.Retention.Cron),
				zap.Int("max_age_days", cfg.Retention.MaxAgeDays),
			)
		}
	}

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

		log.Info("Server stopped gracefully")
	}

	return nil
}
