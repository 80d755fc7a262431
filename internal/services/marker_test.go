package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "socialmap-api/internal/errors"
	"socialmap-api/internal/kv"
	"socialmap-api/internal/models"
)

func newMarkerService(t *testing.T) *MarkerService {
	t.Helper()
	store, err := kv.OpenBadger("")
	if err != nil {
		t.Fatalf("OpenBadger() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewMarkerService(store)
}

func TestMarkerLifecycle(t *testing.T) {
	svc := newMarkerService(t)
	ctx := context.Background()

	clock := fixedNow
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	first, err := svc.Add(ctx, models.MarkerRequest{Longitude: floatPtr(-74), Latitude: floatPtr(40.7), Label: strPtr("Pier")})
	if err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	if !strings.HasPrefix(first.Id, models.MarkerKeyPrefix) {
		t.Errorf("Id = %q, want %s prefix", first.Id, models.MarkerKeyPrefix)
	}
	second, err := svc.Add(ctx, models.MarkerRequest{Longitude: floatPtr(2.35), Latitude: floatPtr(48.85)})
	if err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	markers, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(markers) != 2 || markers[0].Id != second.Id || markers[1].Id != first.Id {
		t.Errorf("List() = %+v, want newest first", markers)
	}

	if err := svc.Delete(ctx, first.Id); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if err := svc.Delete(ctx, first.Id); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Delete(again) error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, "photo_1"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Delete(photo key) error = %v, want ErrNotFound", err)
	}
}

func TestMarkerAddValidation(t *testing.T) {
	svc := newMarkerService(t)

	tests := []struct {
		name string
		req  models.MarkerRequest
	}{
		{name: "missing latitude", req: models.MarkerRequest{Longitude: floatPtr(1)}},
		{name: "longitude out of range", req: models.MarkerRequest{Longitude: floatPtr(181), Latitude: floatPtr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Add(context.Background(), tt.req); !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("Add() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}
