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

func newProfileService(t *testing.T) *ProfileService {
	t.Helper()
	store, err := kv.OpenBadger("")
	if err != nil {
		t.Fatalf("OpenBadger() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := NewProfileService(store)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestProfileUpsertMergesFields(t *testing.T) {
	svc := newProfileService(t)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "u1"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("Get(new user) error = %v, want ErrNotFound", err)
	}

	created, err := svc.Upsert(ctx, "u1", models.ProfileUpdate{Username: strPtr("ana"), Bio: strPtr("hi")})
	if err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	if created.Id != "u1" || !created.CreatedAt.Equal(fixedNow) {
		t.Errorf("Upsert() = %+v", created)
	}

	updated, err := svc.Upsert(ctx, "u1", models.ProfileUpdate{FullName: strPtr("Ana Lima")})
	if err != nil {
		t.Fatalf("Upsert(update) unexpected error: %v", err)
	}
	if updated.Username == nil || *updated.Username != "ana" {
		t.Errorf("Username = %v, want ana kept", updated.Username)
	}
	if updated.FullName == nil || *updated.FullName != "Ana Lima" {
		t.Errorf("FullName = %v, want Ana Lima", updated.FullName)
	}

	got, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if got.Bio == nil || *got.Bio != "hi" || got.AvatarURL != nil {
		t.Errorf("Get() = %+v", got)
	}
}

func TestProfileUpsertValidation(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		update models.ProfileUpdate
	}{
		{name: "no user", userID: ""},
		{name: "long username", userID: "u1", update: models.ProfileUpdate{Username: strPtr(strings.Repeat("a", 51))}},
		{name: "long bio", userID: "u1", update: models.ProfileUpdate{Bio: strPtr(strings.Repeat("b", 501))}},
		{name: "bad avatar url", userID: "u1", update: models.ProfileUpdate{AvatarURL: strPtr("not a url")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newProfileService(t)
			if _, err := svc.Upsert(context.Background(), tt.userID, tt.update); !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("Upsert() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}
