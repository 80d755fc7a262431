package handlers

import (
	"context"

	"socialmap-api/internal/models"
	"socialmap-api/internal/services"
)

// PlaceSearcher backs the location search bar.
type PlaceSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.Place, error)
}

type Handler struct {
	photos   *services.PhotoService
	profiles *services.ProfileService
	markers  *services.MarkerService
	places   PlaceSearcher // nil when geocoding is disabled

	maxBodyBytes int64
}

// New builds the HTTP handlers. maxUploadBytes is the decoded image limit;
// request bodies may be up to the base64-expanded size of that limit.
func New(photos *services.PhotoService, profiles *services.ProfileService, markers *services.MarkerService, places PlaceSearcher, maxUploadBytes int) *Handler {
	return &Handler{
		photos:       photos,
		profiles:     profiles,
		markers:      markers,
		places:       places,
		maxBodyBytes: int64(maxUploadBytes)*4/3 + 64*1024,
	}
}
