// Live support relay server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/livedesk/relay/internal/api"
	"github.com/livedesk/relay/internal/archive"
	"github.com/livedesk/relay/internal/config"
	"github.com/livedesk/relay/internal/hub"
	"github.com/livedesk/relay/internal/middleware"
	"github.com/livedesk/relay/internal/origin"
	"github.com/livedesk/relay/internal/registry"
	"github.com/livedesk/relay/internal/router"
	"github.com/livedesk/relay/internal/transport"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting relay", "port", cfg.Port, "dev", cfg.IsDevelopment(),
		"inactivity_delay", cfg.InactivityDelay, "sweep_interval", cfg.SweepInterval)

	// Initialize persistence.
	fallback, err := archive.NewSQLite(cfg.FallbackDBPath)
	if err != nil {
		slog.Error("Failed to initialize fallback archive", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := fallback.Close(); closeErr != nil {
			slog.Error("Failed to close fallback archive", "error", closeErr)
		}
	}()

	if err := fallback.Ping(context.Background()); err != nil {
		slog.Error("Fallback archive health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Fallback archive ready", "path", cfg.FallbackDBPath)

	var remote archive.Store
	if cfg.ArchiveURL != "" {
		remote = archive.NewRemoteStore(cfg.ArchiveURL, cfg.ArchiveToken)
		slog.Info("Remote archive configured", "url", cfg.ArchiveURL)
	} else {
		slog.Warn("ARCHIVE_URL not set, all saves will go to the local fallback")
	}
	saver := archive.NewSaver(remote, fallback)

	// Initialize core components.
	reg := registry.New()
	gate := origin.NewGatekeeper(cfg.AgentOrigins)
	rooms := hub.New()
	sched := archive.NewScheduler(reg, saver, cfg.InactivityDelay)
	rt := router.New(reg, rooms, gate, sched)

	// Initialize handlers.
	wsHandler := transport.NewHandler(rt, rooms, cfg.AllowedOrigins, cfg.IsDevelopment())
	statusHandler := api.NewStatusHandler(reg, rooms)

	// Setup router.
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(corsOrigins(cfg)))

	statusHandler.RegisterRoutes(r)
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// Long-lived websocket connections; no write timeout.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched.StartSweep(ctx, cfg.SweepInterval)

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

func corsOrigins(cfg *config.Config) []string {
	if cfg.IsDevelopment() {
		return []string{"*"}
	}
	return cfg.AllowedOrigins
}
