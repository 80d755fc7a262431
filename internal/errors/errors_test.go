package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("bucket unavailable")
	err := fmt.Errorf("upload: %w", Wrap(ErrInternal, "Upload failed", cause))

	if !errors.Is(err, ErrInternal) {
		t.Error("errors.Is(err, ErrInternal) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = true")
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As(*Error) = false")
	}
	if appErr.Error() != "Upload failed: bucket unavailable" {
		t.Errorf("Error() = %q", appErr.Error())
	}
}

func TestNewWithoutCause(t *testing.T) {
	err := New(ErrNotFound, "Photo not found")
	if err.Error() != "Photo not found" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false")
	}
}
