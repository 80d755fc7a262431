package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3 presigned URLs cannot outlive seven days.
const maxPresignTTL = 7 * 24 * time.Hour

type MinioStore struct {
	client     *minio.Client
	bucketName string
}

// NewMinioClient connects to an S3-compatible endpoint with static credentials.
func NewMinioClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return client, nil
}

func NewMinioStore(client *minio.Client, bucketName string) *MinioStore {
	return &MinioStore{
		client:     client,
		bucketName: bucketName,
	}
}

func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("bucket exists: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucketName, err)
	}
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	if _, err := s.client.StatObject(ctx, s.bucketName, path, minio.StatObjectOptions{}); err == nil {
		return ErrExists
	} else if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	_, err := s.client.PutObject(ctx, s.bucketName, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", path, err)
	}
	return nil
}

func (s *MinioStore) Remove(ctx context.Context, path string) error {
	if _, err := s.client.StatObject(ctx, s.bucketName, path, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ErrNotFound
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return s.client.RemoveObject(ctx, s.bucketName, path, minio.RemoveObjectOptions{})
}

func (s *MinioStore) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, time.Time, error) {
	if ttl > maxPresignTTL {
		ttl = maxPresignTTL
	}
	expires := time.Now().Add(ttl)

	u, err := s.client.PresignedGetObject(ctx, s.bucketName, path, ttl, url.Values{})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign %s: %w", path, err)
	}
	return u.String(), expires, nil
}

func (s *MinioStore) Fetch(ctx context.Context, path string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Close is a no-op; the minio client holds no long-lived connections of its own.
func (s *MinioStore) Close() error {
	return nil
}
