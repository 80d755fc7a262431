package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	apperrors "socialmap-api/internal/errors"
	"socialmap-api/internal/kv"
	"socialmap-api/internal/logging"
	"socialmap-api/internal/models"
)

// MarkerService manages free-standing map markers stored under marker_<uuid>.
type MarkerService struct {
	store kv.Store
	now   func() time.Time
}

func NewMarkerService(store kv.Store) *MarkerService {
	return &MarkerService{store: store, now: time.Now}
}

// List returns all markers, newest first.
func (s *MarkerService) List(ctx context.Context) ([]models.Marker, error) {
	entries, err := s.store.GetByPrefix(ctx, models.MarkerKeyPrefix)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Failed to fetch markers", err)
	}

	markers := make([]models.Marker, 0, len(entries))
	for _, e := range entries {
		var m models.Marker
		if err := json.Unmarshal(e.Value, &m); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("key", e.Key).Msg("Skipping unreadable marker record")
			continue
		}
		markers = append(markers, m)
	}

	slices.SortStableFunc(markers, func(a, b models.Marker) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return markers, nil
}

func (s *MarkerService) Add(ctx context.Context, req models.MarkerRequest) (*models.Marker, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	m := &models.Marker{
		Id:        models.MarkerKeyPrefix + uuid.NewString(),
		Longitude: *req.Longitude,
		Latitude:  *req.Latitude,
		Label:     req.Label,
		CreatedAt: s.now().UTC(),
	}

	value, err := json.Marshal(m)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Failed to encode marker", err)
	}
	if err := s.store.Set(ctx, m.Id, value); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Failed to save marker", err)
	}
	return m, nil
}

func (s *MarkerService) Delete(ctx context.Context, id string) error {
	if !strings.HasPrefix(id, models.MarkerKeyPrefix) {
		return apperrors.New(apperrors.ErrNotFound, "Marker not found")
	}

	_, err := s.store.Get(ctx, id)
	if errors.Is(err, kv.ErrNotFound) {
		return apperrors.New(apperrors.ErrNotFound, "Marker not found")
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to fetch marker", err)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to delete marker", err)
	}
	return nil
}
