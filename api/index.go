package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/goccy/go-json"

	"socialmap-api/internal/config"
	"socialmap-api/internal/logging"
	"socialmap-api/internal/server"
)

var (
	handler     http.Handler
	mu          sync.Mutex
	initialized bool
)

// initHandler initializes the HTTP handler once and reuses it across invocations.
// A failed initialization is retried on the next request.
//
// Note: storage clients are not explicitly closed as Vercel's serverless
// runtime handles resource cleanup on function termination.
func initHandler() error {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	svcs, err := server.InitServices(context.Background(), cfg)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize services")
		return err
	}

	// Only set handler and mark as initialized after full successful initialization
	handler = server.CreateHandler(cfg, svcs)
	initialized = true

	logging.Info().Msg("Handler initialized successfully")
	return nil
}

// Handler is the Vercel serverless function entry point
func Handler(w http.ResponseWriter, r *http.Request) {
	if err := initHandler(); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Internal Server Error"})
		return
	}

	// Delegate to the initialized handler
	handler.ServeHTTP(w, r)
}
