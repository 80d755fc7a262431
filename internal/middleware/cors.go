package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS adds Cross-Origin Resource Sharing headers and answers preflight
// requests. A single "*" origin allows every origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:         600,
	})
}
