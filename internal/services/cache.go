package services

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value   any
	expires time.Time
}

// CacheService is an in-memory TTL cache shared by the geocoder lookups.
type CacheService struct {
	cache           map[string]*cacheEntry
	mu              sync.RWMutex
	ttl             time.Duration
	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

func NewCacheService(ttl, cleanupInterval time.Duration) *CacheService {
	cs := &CacheService{
		cache:           make(map[string]*cacheEntry),
		ttl:             ttl,
		cleanupInterval: cleanupInterval,
		stop:            make(chan struct{}),
		now:             time.Now,
	}

	go cs.cleanupExpired()

	return cs
}

// Retrieves a cache entry by key, returning false if not found or expired.
func (cs *CacheService) Get(key string) (any, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	entry, ok := cs.cache[key]
	if !ok {
		return nil, false
	}

	if entry.expires.Before(cs.now()) {
		return nil, false
	}

	return entry.value, true
}

// Stores value under key. The entry expires after the configured TTL.
func (cs *CacheService) Set(key string, value any) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache[key] = &cacheEntry{
		value:   value,
		expires: cs.now().Add(cs.ttl),
	}
}

// Len returns the number of entries, expired or not.
func (cs *CacheService) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.cache)
}

// Close stops the cleanup goroutine.
func (cs *CacheService) Close() {
	cs.stopOnce.Do(func() { close(cs.stop) })
}

// Periodically removes expired entries from the cache.
// This runs in a background goroutine started by NewCacheService.
func (cs *CacheService) cleanupExpired() {
	ticker := time.NewTicker(cs.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cs.stop:
			return
		case <-ticker.C:
			cs.purge()
		}
	}
}

func (cs *CacheService) purge() {
	now := cs.now()
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for k, v := range cs.cache {
		if v.expires.Before(now) {
			delete(cs.cache, k)
		}
	}
}
