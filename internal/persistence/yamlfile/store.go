// Package yamlfile stores registry snapshots as a single YAML document
// guarded by a BLAKE2b checksum.
package yamlfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/contact-registry/internal/logging"
	"github.com/example/contact-registry/internal/persistence"
)

const formatVersion = 1

type document struct {
	Version  int            `yaml:"version"`
	Revision string         `yaml:"revision"`
	SavedAt  string         `yaml:"saved_at"`
	Checksum string         `yaml:"checksum,omitempty"`
	Contacts []contactEntry `yaml:"contacts"`
	Meetings []meetingEntry `yaml:"meetings"`
}

type contactEntry struct {
	ID    int    `yaml:"id"`
	Name  string `yaml:"name"`
	Notes string `yaml:"notes,omitempty"`
}

type meetingEntry struct {
	ID           int    `yaml:"id"`
	Date         string `yaml:"date"`
	Participants []int  `yaml:"participants,flow"`
	Notes        string `yaml:"notes,omitempty"`
	Status       string `yaml:"status"`
}

// Store implements persistence.SnapshotStore on a YAML file.
type Store struct {
	mu     sync.Mutex
	path   string
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

// Open returns a store backed by the file at path. The file is created on the
// first Save.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("yamlfile: path cannot be empty")
	}
	s := &Store{
		path:   path,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Close is a no-op; the file is only open during Save and Load.
func (s *Store) Close() error { return nil }

// Save writes the snapshot to a temporary file in the same directory and
// renames it over the previous document.
func (s *Store) Save(ctx context.Context, snapshot persistence.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := snapshot.Validate(); err != nil {
		return err
	}
	if snapshot.Revision == "" {
		snapshot = snapshot.Stamp(s.now())
	}

	data, err := encode(snapshot)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeAtomic(s.path, data); err != nil {
		return err
	}

	s.loggerFrom(ctx).DebugContext(ctx, "snapshot saved",
		"path", s.path,
		"revision", snapshot.Revision,
		"contacts", len(snapshot.Contacts),
		"meetings", len(snapshot.Meetings),
	)
	return nil
}

// Load reads and verifies the stored document. It returns
// persistence.ErrNotFound when the file does not exist.
func (s *Store) Load(ctx context.Context) (persistence.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return persistence.Snapshot{}, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return persistence.Snapshot{}, persistence.ErrNotFound
	}
	if err != nil {
		return persistence.Snapshot{}, fmt.Errorf("yamlfile: read %s: %w", s.path, err)
	}

	snapshot, err := decode(data)
	if err != nil {
		return persistence.Snapshot{}, err
	}
	if err := snapshot.Validate(); err != nil {
		return persistence.Snapshot{}, err
	}

	s.loggerFrom(ctx).DebugContext(ctx, "snapshot loaded",
		"path", s.path,
		"revision", snapshot.Revision,
		"contacts", len(snapshot.Contacts),
		"meetings", len(snapshot.Meetings),
	)
	return snapshot, nil
}

func (s *Store) loggerFrom(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger.With("component", "yamlfile")
	}
	return s.logger.With("component", "yamlfile")
}

// encode renders the snapshot. The checksum covers the document rendered
// with an empty checksum field.
func encode(snapshot persistence.Snapshot) ([]byte, error) {
	doc := document{
		Version:  formatVersion,
		Revision: snapshot.Revision,
		SavedAt:  formatTime(snapshot.SavedAt),
		Contacts: make([]contactEntry, 0, len(snapshot.Contacts)),
		Meetings: make([]meetingEntry, 0, len(snapshot.Meetings)),
	}
	for _, c := range snapshot.Contacts {
		doc.Contacts = append(doc.Contacts, contactEntry{ID: c.ID, Name: c.Name, Notes: c.Notes})
	}
	for _, m := range snapshot.Meetings {
		doc.Meetings = append(doc.Meetings, meetingEntry{
			ID:           m.ID,
			Date:         formatTime(m.Date),
			Participants: append([]int(nil), m.ParticipantIDs...),
			Notes:        m.Notes,
			Status:       m.Status,
		})
	}

	body, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("yamlfile: encode snapshot: %w", err)
	}
	doc.Checksum = persistence.Checksum(body)

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("yamlfile: encode snapshot: %w", err)
	}
	return data, nil
}

func decode(data []byte) (persistence.Snapshot, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return persistence.Snapshot{}, fmt.Errorf("%w: %v", persistence.ErrCorrupt, err)
	}
	if doc.Version != formatVersion {
		return persistence.Snapshot{}, fmt.Errorf("%w: unsupported format version %d", persistence.ErrCorrupt, doc.Version)
	}
	if doc.Checksum == "" {
		return persistence.Snapshot{}, fmt.Errorf("%w: missing checksum", persistence.ErrCorrupt)
	}

	want := doc.Checksum
	doc.Checksum = ""
	body, err := yaml.Marshal(doc)
	if err != nil {
		return persistence.Snapshot{}, fmt.Errorf("yamlfile: re-encode snapshot: %w", err)
	}
	if err := persistence.VerifyChecksum(body, want); err != nil {
		return persistence.Snapshot{}, err
	}

	savedAt, err := parseTime(doc.SavedAt)
	if err != nil {
		return persistence.Snapshot{}, err
	}
	snapshot := persistence.Snapshot{
		Revision: doc.Revision,
		SavedAt:  savedAt,
		Contacts: make([]persistence.ContactRecord, 0, len(doc.Contacts)),
		Meetings: make([]persistence.MeetingRecord, 0, len(doc.Meetings)),
	}
	for _, c := range doc.Contacts {
		snapshot.Contacts = append(snapshot.Contacts, persistence.ContactRecord{ID: c.ID, Name: c.Name, Notes: c.Notes})
	}
	for _, m := range doc.Meetings {
		date, err := parseTime(m.Date)
		if err != nil {
			return persistence.Snapshot{}, err
		}
		snapshot.Meetings = append(snapshot.Meetings, persistence.MeetingRecord{
			ID:             m.ID,
			Date:           date,
			ParticipantIDs: m.Participants,
			Notes:          m.Notes,
			Status:         m.Status,
		})
	}
	return snapshot, nil
}

func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("yamlfile: create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("yamlfile: create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("yamlfile: write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("yamlfile: sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("yamlfile: close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("yamlfile: replace %s: %w", path, err)
	}
	return nil
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
