package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"socialmap-api/internal/blob"
	apperrors "socialmap-api/internal/errors"
	"socialmap-api/internal/geo"
	"socialmap-api/internal/kv"
	"socialmap-api/internal/logging"
	"socialmap-api/internal/metrics"
	"socialmap-api/internal/models"
)

const geocodeTimeout = 5 * time.Second

// PhotoOptions tunes a PhotoService. Zero values fall back to defaults.
type PhotoOptions struct {
	SignedURLTTL   time.Duration
	MaxUploadBytes int
	Now            func() time.Time
}

// PhotoService stores photo payloads in blob storage and their metadata
// records in the key-value store.
type PhotoService struct {
	store    kv.Store
	blobs    blob.Store
	geocoder ReverseGeocoder

	signedURLTTL   time.Duration
	maxUploadBytes int
	now            func() time.Time

	mu       sync.Mutex
	reserved map[string]struct{} // stamps held by uploads still in flight
}

// NewPhotoService wires a photo service. geocoder may be nil to skip
// location names.
func NewPhotoService(store kv.Store, blobs blob.Store, geocoder ReverseGeocoder, opts PhotoOptions) *PhotoService {
	s := &PhotoService{
		store:          store,
		blobs:          blobs,
		geocoder:       geocoder,
		signedURLTTL:   opts.SignedURLTTL,
		maxUploadBytes: opts.MaxUploadBytes,
		now:            opts.Now,
		reserved:       make(map[string]struct{}),
	}
	if s.signedURLTTL <= 0 {
		s.signedURLTTL = 365 * 24 * time.Hour
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = 10 * 1024 * 1024
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Upload validates the request, stores the image and persists its record.
// Nothing is left behind when a step fails.
func (s *PhotoService) Upload(ctx context.Context, req models.UploadRequest, caller models.Principal) (resp *models.UploadResponse, err error) {
	defer func() { metrics.RecordPhotoOperation("upload", err) }()

	req.Filename = strings.TrimSpace(req.Filename)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := checkFilename(req.Filename); err != nil {
		return nil, err
	}

	owner, err := resolveOwner(req.UserId, caller)
	if err != nil {
		return nil, err
	}

	data, err := decodePayload(req.Base64Data)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "Image data is empty")
	}
	if len(data) > s.maxUploadBytes {
		return nil, apperrors.New(apperrors.ErrTooLarge, fmt.Sprintf("Image exceeds the %d byte upload limit", s.maxUploadBytes))
	}

	img, err := ProcessImage(req.Filename, data)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	stamp, err := s.reserveStamp(ctx, now)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Upload failed", err)
	}
	defer s.releaseStamp(stamp)
	filePath := stamp + "-" + img.Filename

	if err := s.blobs.Upload(ctx, filePath, img.Data, img.ContentType); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Upload failed", err)
	}

	signedURL, expiresAt, err := s.blobs.SignedURL(ctx, filePath, s.signedURLTTL)
	if err != nil {
		s.discardBlob(ctx, filePath)
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Failed to create signed URL", err)
	}

	point := geo.Point{Lat: *req.Latitude, Lng: *req.Longitude}
	photo := models.Photo{
		Id:                 models.PhotoKeyPrefix + stamp,
		FilePath:           filePath,
		SignedURL:          signedURL,
		SignedURLExpiresAt: expiresAt.UTC(),
		Latitude:           point.Lat,
		Longitude:          point.Lng,
		UserId:             owner,
		ContentType:        img.ContentType,
		LocationName:       s.locationName(ctx, point),
		Width:              img.Width,
		Height:             img.Height,
		TakenAt:            img.TakenAt,
		CreatedAt:          now,
	}

	if err := s.save(ctx, &photo); err != nil {
		s.discardBlob(ctx, filePath)
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Failed to store photo metadata", err)
	}

	metrics.PhotoUploadBytes.Observe(float64(len(img.Data)))
	logging.Ctx(ctx).Info().
		Str("photo_id", photo.Id).
		Str("file_path", filePath).
		Int("bytes", len(img.Data)).
		Msg("Photo uploaded")

	return &models.UploadResponse{
		Success:   true,
		PhotoId:   photo.Id,
		FilePath:  photo.FilePath,
		SignedURL: photo.SignedURL,
		Latitude:  photo.Latitude,
		Longitude: photo.Longitude,
		UserId:    photo.UserId,
		CreatedAt: photo.CreatedAt,
	}, nil
}

// List returns every photo record in key order. Records that fail to decode
// are skipped.
func (s *PhotoService) List(ctx context.Context, filter models.PhotoFilter) ([]models.Photo, error) {
	entries, err := s.store.GetByPrefix(ctx, models.PhotoKeyPrefix)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Failed to fetch photos", err)
	}

	photos := make([]models.Photo, 0, len(entries))
	for _, e := range entries {
		var p models.Photo
		if err := json.Unmarshal(e.Value, &p); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("key", e.Key).Msg("Skipping unreadable photo record")
			continue
		}
		if filter.UserId != "" && !p.OwnedBy(filter.UserId) {
			continue
		}
		photos = append(photos, p)
	}
	return photos, nil
}

// Get loads a single photo record.
func (s *PhotoService) Get(ctx context.Context, id string) (*models.Photo, error) {
	if !strings.HasPrefix(id, models.PhotoKeyPrefix) {
		return nil, apperrors.New(apperrors.ErrNotFound, "Photo not found")
	}

	value, err := s.store.Get(ctx, id)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, apperrors.New(apperrors.ErrNotFound, "Photo not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Failed to fetch photo", err)
	}

	var p models.Photo
	if err := json.Unmarshal(value, &p); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Photo record is corrupt", err)
	}
	return &p, nil
}

// Feed lists photos ordered for the viewer: nearest first when a position is
// known, newest first otherwise.
func (s *PhotoService) Feed(ctx context.Context, viewer *geo.Point) ([]models.FeedPhoto, error) {
	photos, err := s.List(ctx, models.PhotoFilter{})
	if err != nil {
		return nil, err
	}
	return geo.SortFeed(photos, viewer), nil
}

// Delete removes a photo's blob and record. A blob that cannot be removed is
// logged and the record is deleted anyway.
func (s *PhotoService) Delete(ctx context.Context, id string, caller models.Principal) (err error) {
	defer func() { metrics.RecordPhotoOperation("delete", err) }()

	photo, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if photo.UserId != nil && !photo.OwnedBy(caller.UserId) {
		return apperrors.New(apperrors.ErrForbidden, "You can only delete your own photos")
	}

	if err := s.blobs.Remove(ctx, photo.FilePath); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("file_path", photo.FilePath).Msg("Failed to remove photo object, deleting record anyway")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, "Failed to delete photo", err)
	}

	logging.Ctx(ctx).Info().Str("photo_id", id).Msg("Photo deleted")
	return nil
}

// RefreshSignedURL issues a new signed URL for the photo and persists it.
func (s *PhotoService) RefreshSignedURL(ctx context.Context, id string) (photo *models.Photo, err error) {
	defer func() { metrics.RecordPhotoOperation("refresh", err) }()

	photo, err = s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	url, expiresAt, err := s.blobs.SignedURL(ctx, photo.FilePath, s.signedURLTTL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Failed to create signed URL", err)
	}
	photo.SignedURL = url
	photo.SignedURLExpiresAt = expiresAt.UTC()

	if err := s.save(ctx, photo); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Failed to store photo metadata", err)
	}
	return photo, nil
}

// BackfillOptions controls BackfillMetadata.
type BackfillOptions struct {
	Inspect bool // Fetch the object to fill dimensions, content type and capture time
	Geocode bool // Look up missing location names
	DryRun  bool // Report changes without persisting them
}

// BackfillMetadata fills in dimensions, content type, capture time and
// optionally the location name for records stored before those fields
// existed. It reports whether anything changed.
func (s *PhotoService) BackfillMetadata(ctx context.Context, id string, opts BackfillOptions) (photo *models.Photo, changed bool, err error) {
	defer func() { metrics.RecordPhotoOperation("backfill", err) }()

	photo, err = s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if opts.Inspect && (photo.Width == 0 || photo.Height == 0 || photo.ContentType == "" || photo.TakenAt == nil) {
		data, err := s.blobs.Fetch(ctx, photo.FilePath)
		if err != nil {
			return nil, false, apperrors.Wrap(apperrors.ErrInternal, "Failed to fetch photo object", err)
		}

		img, err := ProcessImage(photo.FilePath, data)
		if err != nil {
			return nil, false, err
		}
		if photo.Width == 0 && img.Width > 0 {
			photo.Width, photo.Height = img.Width, img.Height
			changed = true
		}
		if photo.ContentType == "" {
			photo.ContentType = img.ContentType
			changed = true
		}
		if photo.TakenAt == nil && img.TakenAt != nil {
			photo.TakenAt = img.TakenAt
			changed = true
		}
	}

	if opts.Geocode && photo.LocationName == "" {
		if name := s.locationName(ctx, geo.Point{Lat: photo.Latitude, Lng: photo.Longitude}); name != "" {
			photo.LocationName = name
			changed = true
		}
	}

	if changed && !opts.DryRun {
		if err := s.save(ctx, photo); err != nil {
			return nil, false, apperrors.Wrap(apperrors.ErrInternal, "Failed to store photo metadata", err)
		}
	}
	return photo, changed, nil
}

// reserveStamp returns the millisecond timestamp used for a new photo's id,
// moving forward past any id already stored or held by another in-flight
// upload. The stamp stays held until releaseStamp.
func (s *PhotoService) reserveStamp(ctx context.Context, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := now.UnixMilli()
	for i := 0; i < 1000; i++ {
		stamp := strconv.FormatInt(ms+int64(i), 10)
		if _, held := s.reserved[stamp]; held {
			continue
		}
		_, err := s.store.Get(ctx, models.PhotoKeyPrefix+stamp)
		if errors.Is(err, kv.ErrNotFound) {
			s.reserved[stamp] = struct{}{}
			return stamp, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free photo id near %d", ms)
}

func (s *PhotoService) releaseStamp(stamp string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reserved, stamp)
}

func (s *PhotoService) save(ctx context.Context, photo *models.Photo) error {
	value, err := json.Marshal(photo)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, photo.Id, value)
}

// locationName returns "City, Country" for p, or "" when no geocoder is
// configured or the lookup fails.
func (s *PhotoService) locationName(ctx context.Context, p geo.Point) string {
	if s.geocoder == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	name, err := s.geocoder.ReverseGeocode(ctx, p)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("point", p.String()).Msg("Reverse geocoding failed")
		return ""
	}
	return name
}

func (s *PhotoService) discardBlob(ctx context.Context, path string) {
	if err := s.blobs.Remove(ctx, path); err != nil && !errors.Is(err, blob.ErrNotFound) {
		logging.Ctx(ctx).Warn().Err(err).Str("file_path", path).Msg("Failed to clean up photo object")
	}
}

// resolveOwner decides which user a new photo belongs to. Session callers
// own their uploads; anonymous callers cannot claim a user.
func resolveOwner(claimed *string, caller models.Principal) (*string, error) {
	hasClaim := claimed != nil && *claimed != ""

	if caller.Anonymous() {
		if hasClaim {
			return nil, apperrors.New(apperrors.ErrForbidden, "userId requires a user session token")
		}
		return nil, nil
	}

	if hasClaim && *claimed != caller.UserId {
		return nil, apperrors.New(apperrors.ErrForbidden, "userId does not match the session user")
	}
	owner := caller.UserId
	return &owner, nil
}
