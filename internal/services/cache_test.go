package services

import (
	"testing"
	"time"
)

func TestCacheServiceExpiry(t *testing.T) {
	cs := NewCacheService(time.Minute, time.Hour)
	defer cs.Close()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cs.now = func() time.Time { return now }

	cs.Set("40.0000,-74.0000", "New York, United States")

	if v, ok := cs.Get("40.0000,-74.0000"); !ok || v != "New York, United States" {
		t.Fatalf("Get() = %v, %v; want cached value", v, ok)
	}
	if _, ok := cs.Get("missing"); ok {
		t.Error("Get(missing) reported a hit")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cs.Get("40.0000,-74.0000"); ok {
		t.Error("Get() returned an expired entry")
	}

	cs.purge()
	if cs.Len() != 0 {
		t.Errorf("Len() after purge = %d, want 0", cs.Len())
	}
}

func TestCacheServiceCloseIdempotent(t *testing.T) {
	cs := NewCacheService(time.Minute, time.Millisecond)
	cs.Close()
	cs.Close()
}
