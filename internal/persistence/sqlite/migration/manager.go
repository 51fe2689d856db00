package migration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Manager runs pending migrations in version order.
type Manager struct {
	scanner  Scanner
	executor Executor
	logger   *slog.Logger
}

// NewManager wires a scanner and an executor. A nil logger discards output.
func NewManager(scanner Scanner, executor Executor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		scanner:  scanner,
		executor: executor,
		logger:   logger.With("component", "migration"),
	}
}

// Run applies every pending migration and returns the ones it applied.
func (m *Manager) Run(ctx context.Context) ([]Migration, error) {
	started := time.Now()

	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		m.logger.DebugContext(ctx, "schema up to date")
		return nil, nil
	}

	applied := make([]Migration, 0, len(pending))
	for i, migration := range pending {
		m.logger.InfoContext(ctx, "applying migration",
			"version", migration.Version,
			"description", migration.Description,
			"position", i+1,
			"pending", len(pending),
		)
		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			m.logger.ErrorContext(ctx, "migration failed", "version", migration.Version, "error", err)
			return applied, err
		}
		applied = append(applied, migration)
	}

	m.logger.InfoContext(ctx, "migrations completed", "applied", len(applied), "elapsed", time.Since(started))
	return applied, nil
}

// Pending returns the migrations that have not been applied yet. Applied
// migrations must still exist with an unchanged checksum and the available
// versions must form a continuous sequence.
func (m *Manager) Pending(ctx context.Context) ([]Migration, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize version table: %w", err)
	}

	available, err := m.scanner.ScanMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to scan migrations: %w", err)
	}
	if err := validateSequence(available); err != nil {
		return nil, err
	}

	applied, err := m.executor.AppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	byVersion := make(map[int]Migration, len(available))
	for _, migration := range available {
		byVersion[versionNumber(migration.Version)] = migration
	}

	done := make(map[int]struct{}, len(applied))
	for _, row := range applied {
		n := versionNumber(row.Version)
		migration, ok := byVersion[n]
		if !ok {
			return nil, fmt.Errorf("%w: applied migration %s not found in available migrations", ErrVersionConflict, row.Version)
		}
		if row.Checksum != "" && row.Checksum != migration.Checksum {
			return nil, NewMigrationError(migration.Version, migration.FilePath, "verify checksum",
				fmt.Errorf("%w: recorded %s, file %s", ErrChecksumMismatch, row.Checksum, migration.Checksum))
		}
		done[n] = struct{}{}
	}

	var pending []Migration
	for _, migration := range available {
		if _, ok := done[versionNumber(migration.Version)]; !ok {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// validateSequence expects available to be sorted by version.
func validateSequence(available []Migration) error {
	for i := 1; i < len(available); i++ {
		prev := versionNumber(available[i-1].Version)
		if next := versionNumber(available[i].Version); next != prev+1 {
			return fmt.Errorf("%w: missing migration version %03d in sequence", ErrVersionConflict, prev+1)
		}
	}
	return nil
}
