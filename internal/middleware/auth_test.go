package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expires),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString() failed: %v", err)
	}
	return signed
}

func TestAuthenticatorMiddleware(t *testing.T) {
	auth := NewAuthenticator([]string{"anon-key"}, testSecret)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic anon-key", wantStatus: http.StatusUnauthorized},
		{name: "api key", header: "Bearer anon-key", wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer anon-key", wantStatus: http.StatusOK},
		{name: "unknown key", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "session token", header: "Bearer " + signToken(t, testSecret, "user-1", future), wantStatus: http.StatusOK, wantUser: "user-1"},
		{name: "wrong secret", header: "Bearer " + signToken(t, "other", "user-1", future), wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, testSecret, "user-1", time.Now().Add(-time.Minute)), wantStatus: http.StatusUnauthorized},
		{name: "no subject", header: "Bearer " + signToken(t, testSecret, "", future), wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = PrincipalFromContext(r.Context()).UserId
			}))

			req := httptest.NewRequest(http.MethodGet, "/photos", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if gotUser != tt.wantUser {
				t.Errorf("principal = %q, want %q", gotUser, tt.wantUser)
			}
			if tt.wantStatus == http.StatusUnauthorized && rec.Body.String() != "{\"error\":\"Unauthorized\"}\n" {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestAuthenticatorWithoutJWTSecret(t *testing.T) {
	auth := NewAuthenticator([]string{"anon-key"}, "")
	token := signToken(t, testSecret, "user-1", time.Now().Add(time.Hour))

	if _, err := auth.Resolve(token); err == nil {
		t.Error("Resolve(session token) succeeded without a JWT secret")
	}
}

func TestRequireUser(t *testing.T) {
	auth := NewAuthenticator([]string{"anon-key"}, testSecret)
	handler := auth.Middleware(RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "anonymous", token: "anon-key", wantStatus: http.StatusUnauthorized},
		{name: "user", token: signToken(t, testSecret, "user-1", time.Now().Add(time.Hour)), wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/profiles/me", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
