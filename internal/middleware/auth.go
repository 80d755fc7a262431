package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"socialmap-api/internal/logging"
	"socialmap-api/internal/models"
)

const principalKey contextKey = "principal"

var errUnknownToken = errors.New("token is neither an API key nor a session token")

// Authenticator resolves bearer tokens into principals.
// A token equal to one of the API keys is the anonymous principal; otherwise,
// when a JWT secret is configured, an HS256 token whose subject is the user id.
type Authenticator struct {
	apiKeys   [][]byte
	jwtSecret []byte
}

func NewAuthenticator(apiKeys []string, jwtSecret string) *Authenticator {
	a := &Authenticator{}
	for _, k := range apiKeys {
		a.apiKeys = append(a.apiKeys, []byte(k))
	}
	if jwtSecret != "" {
		a.jwtSecret = []byte(jwtSecret)
	}
	return a
}

// Resolve maps a raw bearer token to a principal.
func (a *Authenticator) Resolve(token string) (models.Principal, error) {
	// Validate API key using constant-time comparison
	for _, key := range a.apiKeys {
		if subtle.ConstantTimeCompare([]byte(token), key) == 1 {
			return models.Principal{}, nil
		}
	}

	if a.jwtSecret == nil {
		return models.Principal{}, errUnknownToken
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Principal{}, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return models.Principal{}, errUnknownToken
	}
	return models.Principal{UserId: claims.Subject}, nil
}

// Middleware rejects requests without a valid Authorization: Bearer header and
// stores the resolved principal in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		principal, err := a.Resolve(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Rejected bearer token")
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// RequireUser rejects anonymous principals. It must run after Middleware.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFromContext(r.Context()).Anonymous() {
			writeError(w, http.StatusUnauthorized, "A user session token is required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the caller, or the anonymous principal when
// none was stored.
func PrincipalFromContext(ctx context.Context) models.Principal {
	if p, ok := ctx.Value(principalKey).(models.Principal); ok {
		return p
	}
	return models.Principal{}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
