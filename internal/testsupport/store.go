package testsupport

import (
	"context"
	"testing"

	"steeple/internal/catalog"
	"steeple/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewPendingRecord creates a pending record for tests using the provided store.
func NewPendingRecord(t testing.TB, store *catalog.Store, title, sourceLink string) *catalog.Record {
	t.Helper()

	record, err := store.Create(context.Background(), catalog.NewRecord{
		Title:      title,
		Category:   "Education",
		Privacy:    "public",
		SourceLink: sourceLink,
	})
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return record
}
