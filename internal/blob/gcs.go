package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// V4 signatures are capped at seven days; longer TTLs fall back to V2.
const maxV4SignedURLTTL = 7 * 24 * time.Hour

type GCSStore struct {
	client     *storage.Client
	bucketName string
	projectID  string
}

func NewGCSStore(client *storage.Client, bucketName, projectID string) *GCSStore {
	return &GCSStore{
		client:     client,
		bucketName: bucketName,
		projectID:  projectID,
	}
}

func (s *GCSStore) EnsureBucket(ctx context.Context) error {
	bucket := s.client.Bucket(s.bucketName)

	_, err := bucket.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("bucket attrs: %w", err)
	}

	attrs := &storage.BucketAttrs{
		UniformBucketLevelAccess: storage.UniformBucketLevelAccess{Enabled: true},
		PublicAccessPrevention:   storage.PublicAccessPreventionEnforced,
	}
	if err := bucket.Create(ctx, s.projectID, attrs); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucketName, err)
	}
	return nil
}

func (s *GCSStore) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	obj := s.client.Bucket(s.bucketName).Object(path).If(storage.Conditions{DoesNotExist: true})

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
			return ErrExists
		}
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return nil
}

func (s *GCSStore) Remove(ctx context.Context, path string) error {
	err := s.client.Bucket(s.bucketName).Object(path).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ErrNotFound
	}
	return err
}

func (s *GCSStore) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, time.Time, error) {
	expires := time.Now().Add(ttl)
	opts := &storage.SignedURLOptions{
		Method:  http.MethodGet,
		Expires: expires,
		Scheme:  storage.SigningSchemeV4,
	}
	if ttl > maxV4SignedURLTTL {
		opts.Scheme = storage.SigningSchemeV2
	}

	url, err := s.client.Bucket(s.bucketName).SignedURL(path, opts)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s: %w", path, err)
	}
	return url, expires, nil
}

// Retrieves a file from Google Cloud Storage by its path.
func (s *GCSStore) Fetch(ctx context.Context, path string) ([]byte, error) {
	reader, err := s.client.Bucket(s.bucketName).Object(path).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
