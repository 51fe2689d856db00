// Package sqlite stores registry snapshots in a SQLite database using the
// pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/example/contact-registry/internal/logging"
	"github.com/example/contact-registry/internal/persistence"
	"github.com/example/contact-registry/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store implements persistence.SnapshotStore.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ persistence.SnapshotStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used to stamp snapshots saved without a
// revision.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open connects to the database at dsn. Call Migrate before Save or Load.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := openDB(ctx, dsn)
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	manager := migration.NewManager(
		migration.NewScanner(migrationFiles, "migrations"),
		migration.NewSQLiteExecutor(s.db),
		s.loggerFrom(ctx),
	)
	if _, err := manager.Run(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// WithTransaction runs fn in a transaction on the store's database.
func (s *Store) WithTransaction(ctx context.Context, fn TransactionFunc) error {
	return withTransaction(ctx, s.db, fn)
}

// Save replaces every stored row with the snapshot in one transaction.
func (s *Store) Save(ctx context.Context, snapshot persistence.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	if snapshot.Revision == "" {
		snapshot = snapshot.Stamp(s.now())
	}

	err := s.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"meeting_participants", "meetings", "contacts"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("sqlite: clear %s: %w", table, err)
			}
		}

		for _, c := range snapshot.Contacts {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO contacts (id, name, notes) VALUES (?, ?, ?)`,
				c.ID, c.Name, c.Notes,
			); err != nil {
				return fmt.Errorf("sqlite: insert contact %d: %w", c.ID, err)
			}
		}

		for position, m := range snapshot.Meetings {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO meetings (id, position, date, notes, status) VALUES (?, ?, ?, ?, ?)`,
				m.ID, position, formatTime(m.Date), m.Notes, m.Status,
			); err != nil {
				return fmt.Errorf("sqlite: insert meeting %d: %w", m.ID, err)
			}
			for _, contactID := range m.ParticipantIDs {
				if _, err := tx.ExecContext(ctx,
					`INSERT OR IGNORE INTO meeting_participants (meeting_id, contact_id) VALUES (?, ?)`,
					m.ID, contactID,
				); err != nil {
					return fmt.Errorf("sqlite: insert participant %d of meeting %d: %w", contactID, m.ID, err)
				}
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO snapshot_metadata (id, revision, saved_at) VALUES (1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET revision = excluded.revision, saved_at = excluded.saved_at`,
			snapshot.Revision, formatTime(snapshot.SavedAt),
		)
		if err != nil {
			return fmt.Errorf("sqlite: write snapshot metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.loggerFrom(ctx).DebugContext(ctx, "snapshot saved",
		"revision", snapshot.Revision,
		"contacts", len(snapshot.Contacts),
		"meetings", len(snapshot.Meetings),
	)
	return nil
}

// Load reads the stored snapshot. It returns persistence.ErrNotFound when
// nothing was saved yet.
func (s *Store) Load(ctx context.Context) (persistence.Snapshot, error) {
	var snapshot persistence.Snapshot

	err := s.WithTransaction(ctx, func(tx *sql.Tx) error {
		var savedAt string
		err := tx.QueryRowContext(ctx,
			`SELECT revision, saved_at FROM snapshot_metadata WHERE id = 1`,
		).Scan(&snapshot.Revision, &savedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("sqlite: read snapshot metadata: %w", err)
		}
		if snapshot.SavedAt, err = parseTime(savedAt); err != nil {
			return err
		}

		if snapshot.Contacts, err = loadContacts(ctx, tx); err != nil {
			return err
		}
		if snapshot.Meetings, err = loadMeetings(ctx, tx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return persistence.Snapshot{}, err
	}

	if err := snapshot.Validate(); err != nil {
		return persistence.Snapshot{}, err
	}
	s.loggerFrom(ctx).DebugContext(ctx, "snapshot loaded",
		"revision", snapshot.Revision,
		"contacts", len(snapshot.Contacts),
		"meetings", len(snapshot.Meetings),
	)
	return snapshot, nil
}

func loadContacts(ctx context.Context, tx *sql.Tx) ([]persistence.ContactRecord, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name, notes FROM contacts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]persistence.ContactRecord, 0)
	for rows.Next() {
		var c persistence.ContactRecord
		if err := rows.Scan(&c.ID, &c.Name, &c.Notes); err != nil {
			return nil, fmt.Errorf("sqlite: scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate contacts: %w", err)
	}
	return contacts, nil
}

func loadMeetings(ctx context.Context, tx *sql.Tx) ([]persistence.MeetingRecord, error) {
	participants, err := loadParticipants(ctx, tx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, date, notes, status FROM meetings ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query meetings: %w", err)
	}
	defer rows.Close()

	meetings := make([]persistence.MeetingRecord, 0)
	for rows.Next() {
		var (
			m    persistence.MeetingRecord
			date string
		)
		if err := rows.Scan(&m.ID, &date, &m.Notes, &m.Status); err != nil {
			return nil, fmt.Errorf("sqlite: scan meeting: %w", err)
		}
		if m.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		m.ParticipantIDs = participants[m.ID]
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate meetings: %w", err)
	}
	return meetings, nil
}

func loadParticipants(ctx context.Context, tx *sql.Tx) (map[int][]int, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT meeting_id, contact_id FROM meeting_participants ORDER BY meeting_id, contact_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query participants: %w", err)
	}
	defer rows.Close()

	participants := make(map[int][]int)
	for rows.Next() {
		var meetingID, contactID int
		if err := rows.Scan(&meetingID, &contactID); err != nil {
			return nil, fmt.Errorf("sqlite: scan participant: %w", err)
		}
		participants[meetingID] = append(participants[meetingID], contactID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate participants: %w", err)
	}
	return participants, nil
}

func (s *Store) loggerFrom(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger.With("component", "sqlite")
	}
	return s.logger.With("component", "sqlite")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid timestamp %q", persistence.ErrCorrupt, value)
	}
	return t, nil
}
