package migration

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type stubScanner struct {
	migrations []Migration
	err        error
}

func (s stubScanner) ScanMigrations() ([]Migration, error) {
	return s.migrations, s.err
}

type stubExecutor struct {
	applied  []AppliedMigration
	failOn   string
	executed []string
}

func (e *stubExecutor) InitializeVersionTable(context.Context) error { return nil }

func (e *stubExecutor) ExecuteMigration(_ context.Context, m Migration) error {
	if m.Version == e.failOn {
		return errors.New("boom")
	}
	e.executed = append(e.executed, m.Version)
	e.applied = append(e.applied, AppliedMigration{Version: m.Version, Checksum: m.Checksum})
	return nil
}

func (e *stubExecutor) AppliedMigrations(context.Context) ([]AppliedMigration, error) {
	return e.applied, nil
}

func TestManager_RunAppliesPendingInOrder(t *testing.T) {
	t.Parallel()

	scanner := stubScanner{migrations: []Migration{
		{Version: "001", Checksum: "a"},
		{Version: "002", Checksum: "b"},
		{Version: "003", Checksum: "c"},
	}}
	executor := &stubExecutor{applied: []AppliedMigration{{Version: "001", Checksum: "a"}}}

	applied, err := NewManager(scanner, executor, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, applied, 2)
	assert.Equal(t, []string{"002", "003"}, executor.executed)
}

func TestManager_RunStopsOnFailure(t *testing.T) {
	t.Parallel()

	scanner := stubScanner{migrations: []Migration{{Version: "001"}, {Version: "002"}, {Version: "003"}}}
	executor := &stubExecutor{failOn: "002"}

	applied, err := NewManager(scanner, executor, nil).Run(context.Background())
	require.Error(t, err)
	assert.Len(t, applied, 1)
	assert.Equal(t, []string{"001"}, executor.executed)
}

func TestManager_PendingValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		scanner  stubScanner
		executor *stubExecutor
		want     error
	}{
		{
			name:     "gap in sequence",
			scanner:  stubScanner{migrations: []Migration{{Version: "001"}, {Version: "003"}}},
			executor: &stubExecutor{},
			want:     ErrVersionConflict,
		},
		{
			name:     "applied version without file",
			scanner:  stubScanner{migrations: []Migration{{Version: "001"}}},
			executor: &stubExecutor{applied: []AppliedMigration{{Version: "001"}, {Version: "002"}}},
			want:     ErrVersionConflict,
		},
		{
			name:     "edited migration",
			scanner:  stubScanner{migrations: []Migration{{Version: "001", Checksum: "new"}}},
			executor: &stubExecutor{applied: []AppliedMigration{{Version: "001", Checksum: "old"}}},
			want:     ErrChecksumMismatch,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewManager(tc.scanner, tc.executor, nil).Pending(context.Background())
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrations.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestManager_AgainstSQLite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	files := fstest.MapFS{
		"m/001_people.sql": {Data: []byte("CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT NOT NULL);")},
		"m/002_seed.sql":   {Data: []byte("INSERT INTO people (id, name) VALUES (1, 'Alice');\nINSERT INTO people (id, name) VALUES (2, 'Bob');")},
	}
	manager := NewManager(NewScanner(files, "m"), NewSQLiteExecutor(db), nil)

	applied, err := manager.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, 2)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM people").Scan(&count))
	assert.Equal(t, 2, count)

	again, err := manager.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, again, "second run is a no-op")

	rows, err := NewSQLiteExecutor(db).AppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "001", rows[0].Version)
	assert.Equal(t, applied[0].Checksum, rows[0].Checksum)
	assert.False(t, rows[0].AppliedAt.IsZero())
}

func TestSQLiteExecutor_RollsBackFailedMigration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	executor := NewSQLiteExecutor(db)
	require.NoError(t, executor.InitializeVersionTable(ctx))

	err := executor.ExecuteMigration(ctx, Migration{
		Version: "001",
		SQL:     "CREATE TABLE ok (id INTEGER);\nTHIS IS NOT SQL;",
	})
	require.ErrorIs(t, err, ErrMigrationFailed)

	var tables int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'ok'").Scan(&tables))
	assert.Zero(t, tables)

	rows, err := executor.AppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
