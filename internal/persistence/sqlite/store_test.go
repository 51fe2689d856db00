package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/contact-registry/internal/persistence"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "contacts.db")
	store, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func sampleSnapshot() persistence.Snapshot {
	date := time.Date(2024, time.March, 4, 9, 30, 0, 123456789, time.UTC)
	return persistence.Snapshot{
		Revision: "rev-1",
		SavedAt:  date,
		Contacts: []persistence.ContactRecord{
			{ID: 0, Name: "Alice", Notes: "met at conference"},
			{ID: 1, Name: "Bob", Notes: ""},
			{ID: 4, Name: "Dora", Notes: "joined later"},
		},
		Meetings: []persistence.MeetingRecord{
			{ID: 2, Date: date.Add(48 * time.Hour), ParticipantIDs: []int{0, 1}, Status: "future"},
			{ID: 0, Date: date.Add(-48 * time.Hour), ParticipantIDs: []int{1, 4}, Notes: "went well", Status: "past"},
			{ID: 1, Date: date.Add(-time.Hour), ParticipantIDs: []int{0}, Status: "unresolved"},
		},
	}
}

func TestStore_LoadBeforeSave(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	snapshot := sampleSnapshot()

	require.NoError(t, store.Save(ctx, snapshot))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Revision, loaded.Revision)
	assert.True(t, snapshot.SavedAt.Equal(loaded.SavedAt))
	assert.Equal(t, snapshot.Contacts, loaded.Contacts)

	require.Len(t, loaded.Meetings, len(snapshot.Meetings))
	for i, want := range snapshot.Meetings {
		got := loaded.Meetings[i]
		assert.Equal(t, want.ID, got.ID, "meetings keep insertion order")
		assert.True(t, want.Date.Equal(got.Date), "meeting %d date", want.ID)
		assert.Equal(t, want.ParticipantIDs, got.ParticipantIDs)
		assert.Equal(t, want.Notes, got.Notes)
		assert.Equal(t, want.Status, got.Status)
	}
}

func TestStore_SaveReplacesPreviousSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Save(ctx, sampleSnapshot()))

	smaller := persistence.Snapshot{
		Revision: "rev-2",
		Contacts: []persistence.ContactRecord{{ID: 0, Name: "Alice", Notes: "only one left"}},
	}
	require.NoError(t, store.Save(ctx, smaller))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rev-2", loaded.Revision)
	assert.Equal(t, smaller.Contacts, loaded.Contacts)
	assert.Empty(t, loaded.Meetings)
}

func TestStore_SaveStampsMissingRevision(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	store, err := Open(ctx, filepath.Join(t.TempDir(), "stamp.db"), WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	snapshot := sampleSnapshot()
	snapshot.Revision = ""
	require.NoError(t, store.Save(ctx, snapshot))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, loaded.Revision)
	assert.True(t, now.Equal(loaded.SavedAt))
}

func TestStore_SaveRejectsInvalidSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Save(ctx, sampleSnapshot()))

	broken := sampleSnapshot()
	broken.Revision = "rev-broken"
	broken.Meetings[0].ParticipantIDs = []int{42}
	assert.ErrorIs(t, store.Save(ctx, broken), persistence.ErrCorrupt)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rev-1", loaded.Revision, "failed save leaves the previous snapshot intact")
}

func TestStore_MigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Migrate(ctx))

	var versions int
	require.NoError(t, store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 2, versions)
}

func TestStore_WithTransactionRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	sentinel := errors.New("abort")

	err := store.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO contacts (id, name, notes) VALUES (7, 'Ghost', '')`); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	var count int
	require.NoError(t, store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts").Scan(&count))
	assert.Zero(t, count)
}

func TestStore_ForeignKeysEnforced(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	err := store.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO meeting_participants (meeting_id, contact_id) VALUES (1, 1)`)
		return err
	})
	assert.Error(t, err)
}

func TestOpen_RejectsEmptyDSN(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}
