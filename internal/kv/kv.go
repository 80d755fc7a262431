// Package kv is the key-value store holding photo, profile and marker records.
//
// Values are opaque JSON documents. Keys are flat strings grouped by prefix
// ("photo_", "profile_", "marker_") and listed with GetByPrefix.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// Entry is a single key/value pair returned by a prefix scan.
type Entry struct {
	Key   string
	Value []byte
}

// Store is implemented by every KV backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set inserts or overwrites the value under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// GetByPrefix returns every entry whose key starts with prefix, ascending by key.
	GetByPrefix(ctx context.Context, prefix string) ([]Entry, error)
	Close() error
}

// prefixUpperBound returns the smallest string greater than every string
// starting with prefix, or "" when no such bound exists.
func prefixUpperBound(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return string(b[:i+1])
		}
	}
	return ""
}
