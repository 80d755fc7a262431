// Package blob stores photo binaries in a private object-storage bucket and
// hands out time-limited signed read URLs.
package blob

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the object does not exist.
	ErrNotFound = errors.New("blob: object not found")
	// ErrExists is returned by Upload when the object path is taken.
	ErrExists = errors.New("blob: object already exists")
)

// Store is implemented by every blob backend.
type Store interface {
	// EnsureBucket creates the bucket when it does not exist yet.
	EnsureBucket(ctx context.Context) error
	// Upload writes data at path. Existing objects are never overwritten.
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	Remove(ctx context.Context, path string) error
	// SignedURL returns a read URL for path and the moment it stops working.
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, time.Time, error)
	Fetch(ctx context.Context, path string) ([]byte, error)
	Close() error
}
