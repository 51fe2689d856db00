package persistence

import "context"

// SnapshotStore saves and loads whole registry snapshots.
type SnapshotStore interface {
	// Save replaces the stored snapshot.
	Save(ctx context.Context, snapshot Snapshot) error
	// Load returns the last saved snapshot or ErrNotFound.
	Load(ctx context.Context) (Snapshot, error)
	Close() error
}
