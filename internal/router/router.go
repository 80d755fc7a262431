package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"socialmap-api/internal/handlers"
	"socialmap-api/internal/middleware"
)

// Options configures the route tree.
type Options struct {
	RoutePrefix    string // e.g. "/make-server-ac2b2b01"; empty mounts at the root
	AllowedOrigins []string
	Auth           *middleware.Authenticator
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
	MetricsEnabled bool
}

// Setup configures and returns the HTTP router with all application routes.
func Setup(h *handlers.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Observe)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(opts.AllowedOrigins)) // Global so OPTIONS preflight works everywhere

	r.NotFound(h.HandleNotFound)
	r.MethodNotAllowed(h.HandleMethodNotAllowed)

	if opts.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	routes := func(r chi.Router) {
		// Health check
		r.Get("/health", h.HandleHealth)

		r.Group(func(r chi.Router) {
			if opts.RateLimiter != nil {
				r.Use(opts.RateLimiter.Limit)
			}
			r.Use(opts.Auth.Middleware)

			// Photo endpoints
			r.Post("/photos/upload", h.HandleUploadPhoto)
			r.Get("/photos", h.HandleListPhotos)
			r.Get("/photos/feed", h.HandleFeed)
			r.Delete("/photos/{id}", h.HandleDeletePhoto)

			// Profile endpoints
			r.With(middleware.RequireUser).Get("/profiles/me", h.HandleGetMyProfile)
			r.With(middleware.RequireUser).Put("/profiles/me", h.HandlePutMyProfile)
			r.Get("/profiles/{id}", h.HandleGetProfile)

			// Marker endpoints
			r.Get("/markers", h.HandleListMarkers)
			r.Post("/markers", h.HandleAddMarker)
			r.Delete("/markers/{id}", h.HandleDeleteMarker)

			r.Get("/geocode/search", h.HandleSearchPlaces)
		})
	}

	if opts.RoutePrefix == "" {
		routes(r)
	} else {
		r.Route(opts.RoutePrefix, routes)
	}

	return r
}
