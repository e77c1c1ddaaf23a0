package services_test

import (
	"errors"
	"strings"
	"testing"

	"steeple/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrFetchExhausted, "fetch", "candidate 3", "all mirrors failed", base)
	if !errors.Is(err, services.ErrFetchExhausted) {
		t.Fatalf("expected ErrFetchExhausted, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
	for _, want := range []string{"fetch", "candidate 3", "all mirrors failed"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in message %q", want, err.Error())
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrInvalidReference, "fetch", "extract id", "no matcher", nil)
	if !errors.Is(err, services.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", errors.New("io"))
	if !errors.Is(err, services.ErrStoreUnavailable) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}
