package blob

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps objects in process memory. It backs tests and local runs
// without a bucket; signed URLs use the memory:// scheme.
type MemoryStore struct {
	mu      sync.Mutex
	bucket  string
	objects map[string]memoryObject

	// Failure injection for tests.
	UploadErr error
	SignErr   error
	RemoveErr error
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{
		bucket:  bucket,
		objects: make(map[string]memoryObject),
	}
}

func (s *MemoryStore) EnsureBucket(ctx context.Context) error { return nil }

func (s *MemoryStore) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UploadErr != nil {
		return s.UploadErr
	}
	if _, ok := s.objects[path]; ok {
		return ErrExists
	}
	s.objects[path] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	if _, ok := s.objects[path]; !ok {
		return ErrNotFound
	}
	delete(s.objects, path)
	return nil
}

func (s *MemoryStore) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SignErr != nil {
		return "", time.Time{}, s.SignErr
	}
	if _, ok := s.objects[path]; !ok {
		return "", time.Time{}, ErrNotFound
	}
	expires := time.Now().Add(ttl)
	return fmt.Sprintf("memory://%s/%s?expires=%d", s.bucket, path, expires.Unix()), expires, nil
}

func (s *MemoryStore) Fetch(ctx context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[path]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), obj.data...), nil
}

// Has reports whether path holds an object.
func (s *MemoryStore) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok
}

// Len returns the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// ContentType returns the content type recorded for path.
func (s *MemoryStore) ContentType(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[path].contentType
}

func (s *MemoryStore) Close() error { return nil }
