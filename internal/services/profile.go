package services

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"

	apperrors "socialmap-api/internal/errors"
	"socialmap-api/internal/kv"
	"socialmap-api/internal/logging"
	"socialmap-api/internal/models"
)

// ProfileService keeps user profiles under profile_<userId>.
type ProfileService struct {
	store kv.Store
	now   func() time.Time
}

func NewProfileService(store kv.Store) *ProfileService {
	return &ProfileService{store: store, now: time.Now}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, MsgMissingFields)
	}

	value, err := s.store.Get(ctx, models.ProfileKeyPrefix+userID)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, apperrors.New(apperrors.ErrNotFound, "Profile not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Failed to fetch profile", err)
	}

	var p models.Profile
	if err := json.Unmarshal(value, &p); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Profile record is corrupt", err)
	}
	return &p, nil
}

// Upsert merges the provided fields into the user's profile, creating it on
// first save.
func (s *ProfileService) Upsert(ctx context.Context, userID string, update models.ProfileUpdate) (*models.Profile, error) {
	if userID == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, MsgMissingFields)
	}
	if err := validateStruct(update); err != nil {
		return nil, err
	}

	profile, err := s.Get(ctx, userID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		profile = &models.Profile{Id: userID, CreatedAt: s.now().UTC()}
	case err != nil:
		return nil, err
	}

	if update.Username != nil {
		profile.Username = update.Username
	}
	if update.FullName != nil {
		profile.FullName = update.FullName
	}
	if update.AvatarURL != nil {
		profile.AvatarURL = update.AvatarURL
	}
	if update.Bio != nil {
		profile.Bio = update.Bio
	}

	value, err := json.Marshal(profile)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Failed to encode profile", err)
	}
	if err := s.store.Set(ctx, models.ProfileKeyPrefix+userID, value); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Failed to save profile", err)
	}

	logging.Ctx(ctx).Info().Str("user_id", userID).Msg("Profile saved")
	return profile, nil
}
