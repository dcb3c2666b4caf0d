package testsupport

import (
	"context"
	"testing"

	"clipper/internal/config"
	"clipper/internal/library"
)

// MustOpenLibrary opens a library.Store for tests and registers cleanup.
func MustOpenLibrary(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRecording creates a recording with a single take for tests.
func NewRecording(t testing.TB, store *library.Store, name, takePath string) (*library.Recording, *library.Take) {
	t.Helper()

	ctx := context.Background()
	rec, err := store.CreateRecording(ctx, name)
	if err != nil {
		t.Fatalf("store.CreateRecording: %v", err)
	}
	take, err := store.AddTake(ctx, rec.ID, takePath)
	if err != nil {
		t.Fatalf("store.AddTake: %v", err)
	}
	return rec, take
}
