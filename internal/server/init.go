package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"socialmap-api/internal/blob"
	"socialmap-api/internal/config"
	"socialmap-api/internal/handlers"
	"socialmap-api/internal/kv"
	"socialmap-api/internal/logging"
	"socialmap-api/internal/middleware"
	"socialmap-api/internal/router"
	"socialmap-api/internal/services"
)

// Services holds all initialized services for the application
type Services struct {
	Store    kv.Store
	Blobs    blob.Store
	Cache    *services.CacheService
	Geocoder *services.GeocodingService // May be nil if geocoding is disabled
	Photos   *services.PhotoService
	Profiles *services.ProfileService
	Markers  *services.MarkerService
	Limiter  *middleware.RateLimiter // Set by CreateHandler
}

// InitServices initializes all application services based on configuration.
// Returns the initialized services or an error if initialization fails.
func InitServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	opts := googleOptions(cfg)

	store, err := openKV(ctx, cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s kv store: %w", cfg.KVBackend, err)
	}

	blobs, err := openBlob(ctx, cfg, opts)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open %s blob store: %w", cfg.BlobBackend, err)
	}

	// A missing bucket is reported but not fatal; uploads will surface the error.
	if err := blobs.EnsureBucket(ctx); err != nil {
		logging.Warn().Err(err).Str("bucket", cfg.PhotoBucket).Msg("⚠️  Could not verify photo bucket")
	}

	cache := services.NewCacheService(cfg.CacheTTL, cfg.CacheCleanupInterval)

	svcs := &Services{
		Store: store,
		Blobs: blobs,
		Cache: cache,
	}

	// Keep the interface nil when disabled so the photo service skips lookups.
	var reverse services.ReverseGeocoder
	if cfg.GeocodingEnabled {
		svcs.Geocoder = services.NewGeocodingService(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent, cache)
		reverse = svcs.Geocoder
	}

	svcs.Photos = services.NewPhotoService(store, blobs, reverse, services.PhotoOptions{
		SignedURLTTL:   cfg.SignedURLTTL,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	svcs.Profiles = services.NewProfileService(store)
	svcs.Markers = services.NewMarkerService(store)

	logging.Info().
		Str("kv", cfg.KVBackend).
		Str("blob", cfg.BlobBackend).
		Bool("geocoding", cfg.GeocodingEnabled).
		Msg("Services initialized")

	return svcs, nil
}

// Close releases the storage clients and stops the cache and rate limiter janitors.
func (s *Services) Close() error {
	s.Cache.Close()
	if s.Limiter != nil {
		s.Limiter.Close()
	}
	return errors.Join(s.Blobs.Close(), s.Store.Close())
}

// CreateHandler creates an HTTP handler with all middleware applied
func CreateHandler(cfg *config.Config, svcs *Services) http.Handler {
	var places handlers.PlaceSearcher
	if svcs.Geocoder != nil {
		places = svcs.Geocoder
	}

	h := handlers.New(svcs.Photos, svcs.Profiles, svcs.Markers, places, cfg.MaxUploadBytes)
	svcs.Limiter = middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	return router.Setup(h, router.Options{
		RoutePrefix:    cfg.RoutePrefix,
		AllowedOrigins: cfg.AllowedOrigins,
		Auth:           middleware.NewAuthenticator(cfg.APIKeys, cfg.JWTSecret),
		RateLimiter:    svcs.Limiter,
		MetricsEnabled: cfg.MetricsEnabled,
	})
}

// Configure Google credentials
func googleOptions(cfg *config.Config) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case cfg.GoogleCredentialsJSON != "":
		// Use JSON credentials from environment variable (preferred for Vercel)
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.GoogleCredentialsJSON)))
	case cfg.GoogleCredentialsPath != "":
		// Use credentials file (for local development)
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentialsPath))
	}
	// Otherwise fall back to Application Default Credentials.
	return opts
}

func openKV(ctx context.Context, cfg *config.Config, opts []option.ClientOption) (kv.Store, error) {
	switch cfg.KVBackend {
	case config.KVBackendFirestore:
		client, err := firestore.NewClient(ctx, cfg.GoogleProjectID, opts...)
		if err != nil {
			return nil, err
		}
		return kv.NewFirestoreStore(client, cfg.FirestoreCollection), nil
	case config.KVBackendBadger:
		return kv.OpenBadger(cfg.BadgerDir)
	case config.KVBackendSQLite:
		return kv.OpenSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported kv backend %q", cfg.KVBackend)
	}
}

func openBlob(ctx context.Context, cfg *config.Config, opts []option.ClientOption) (blob.Store, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendGCS:
		client, err := storage.NewClient(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return blob.NewGCSStore(client, cfg.PhotoBucket, cfg.GoogleProjectID), nil
	case config.BlobBackendMinio:
		client, err := blob.NewMinioClient(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
		if err != nil {
			return nil, err
		}
		return blob.NewMinioStore(client, cfg.PhotoBucket), nil
	default:
		return nil, fmt.Errorf("unsupported blob backend %q", cfg.BlobBackend)
	}
}
