package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/draftea/provisioning-system/provisioning-service/config"
	"github.com/draftea/provisioning-system/provisioning-service/handlers"
	"github.com/draftea/provisioning-system/shared/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Commands accepted on the intake queue
const commandTopicPattern = "#.requested"

func main() {
	// Load configuration
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := config.BuildDependencies(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to build dependencies: %v", err)
	}
	logger := deps.Logger
	logger.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("starting provisioning service")

	// Resume whatever a previous instance left unfinished
	go deps.Recovery.Run(ctx)

	// Start command intake
	if deps.EventSubscriber != nil {
		if err := deps.EventSubscriber.Subscribe(ctx, commandTopicPattern, deps.CommandRouter); err != nil {
			logger.Fatal().Err(err).Msg("failed to start command subscriber")
		}
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down provisioning service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Dispatcher.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := deps.Dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Int("in_flight", deps.Dispatcher.InFlight()).Msg("drives interrupted; recovery resumes them")
	}
	if err := deps.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error closing dependencies")
	}

	logger.Info().Msg("provisioning service stopped")
}

func setupRouter(deps *config.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// Telemetry middleware (inject telemetry into context)
	if deps.Telemetry != nil {
		r.Use(telemetry.Middleware(deps.Telemetry))
	}

	r.Handle("/health", handlers.NewHealthHandler(deps.HealthChecks))
	r.Handle("/metrics", handlers.NewMetricsHandler())

	deps.WorkflowHandlers.RegisterRoutes(r)

	return r
}
