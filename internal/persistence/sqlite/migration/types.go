package migration

import (
	"context"
	"time"
)

// Migration is one versioned SQL file.
type Migration struct {
	Version     string // numeric version taken from the file name, e.g. "001"
	Description string
	SQL         string
	FilePath    string
	Checksum    string
}

// AppliedMigration is a row of the schema_migrations table.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// Scanner lists the available migrations in ascending version order.
type Scanner interface {
	ScanMigrations() ([]Migration, error)
}

// Executor runs migrations against a database and tracks applied versions.
type Executor interface {
	// InitializeVersionTable creates the schema_migrations table if needed.
	InitializeVersionTable(ctx context.Context) error
	// ExecuteMigration runs the migration and records it in one transaction.
	ExecuteMigration(ctx context.Context, migration Migration) error
	// AppliedMigrations returns the recorded migrations ordered by version.
	AppliedMigrations(ctx context.Context) ([]AppliedMigration, error)
}
