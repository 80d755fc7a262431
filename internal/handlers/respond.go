package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	apperrors "socialmap-api/internal/errors"
	"socialmap-api/internal/logging"
)

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorResponse{Error: message})
}

// writeServiceError maps an application error to its HTTP status. Errors
// without a caller-facing message are reported as fallback.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Msg(fallback)
	}

	message := fallback
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		message = appErr.Error()
	}
	writeError(w, r, status, message)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads at most limit bytes of JSON into v.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.New(apperrors.ErrTooLarge, "Request body too large")
		}
		return apperrors.Wrap(apperrors.ErrInvalidInput, "Failed to read request body", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.New(apperrors.ErrInvalidInput, "Invalid JSON body")
	}
	return nil
}
