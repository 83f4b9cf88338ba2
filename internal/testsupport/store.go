package testsupport

import (
	"context"
	"testing"

	"earshot/internal/config"
	"earshot/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewContext creates a context for tests using the provided store.
func NewContext(t testing.TB, st *store.Store, name string) *store.Context {
	t.Helper()

	item, err := st.CreateContext(context.Background(), name, "")
	if err != nil {
		t.Fatalf("store.CreateContext: %v", err)
	}
	return item
}
