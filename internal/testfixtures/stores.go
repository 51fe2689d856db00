package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/contact-registry/internal/persistence"
	"github.com/example/contact-registry/internal/persistence/sqlite"
	"github.com/example/contact-registry/internal/persistence/yamlfile"
)

// NewSQLiteStore opens a migrated SQLite store in a temporary directory. The
// store is closed when the test finishes.
func NewSQLiteStore(tb testing.TB, opts ...sqlite.Option) *sqlite.Store {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "contacts.db")
	store, err := sqlite.Open(context.Background(), path, opts...)
	if err != nil {
		tb.Fatalf("failed to open sqlite store: %v", err)
	}
	tb.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(context.Background()); err != nil {
		tb.Fatalf("failed to migrate sqlite store: %v", err)
	}
	return store
}

// NewYAMLStore opens a YAML store whose file lives in a temporary directory.
func NewYAMLStore(tb testing.TB, opts ...yamlfile.Option) *yamlfile.Store {
	tb.Helper()

	store, err := yamlfile.Open(filepath.Join(tb.TempDir(), "contacts.yaml"), opts...)
	if err != nil {
		tb.Fatalf("failed to open yaml store: %v", err)
	}
	return store
}

// SnapshotStores returns one fresh store per backend keyed by driver name, for
// tests that must hold for every backend.
func SnapshotStores(tb testing.TB) map[string]persistence.SnapshotStore {
	tb.Helper()

	return map[string]persistence.SnapshotStore{
		"sqlite": NewSQLiteStore(tb),
		"yaml":   NewYAMLStore(tb),
	}
}
