package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialmap-api/internal/config"
	"socialmap-api/internal/logging"
	"socialmap-api/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Initialize all services
	svcs, err := server.InitServices(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer func() {
		if err := svcs.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close services")
		}
	}()

	// Create server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           server.CreateHandler(cfg, svcs),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second, // Uploads carry base64 images
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logging.Info().Str("port", cfg.Port).Str("prefix", cfg.RoutePrefix).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	logging.Info().Msg("Server exited")
}
