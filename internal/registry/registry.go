// Package registry implements the in-memory contact and meeting registry: id
// allocation, temporal classification of meetings, filtered and ordered
// queries, and the rules tying every meeting to known contacts.
//
// A Registry is an explicit object owned by its caller. All operations run
// synchronously under a single lock, so read-then-write sequences such as id
// allocation followed by insertion are atomic even when the registry is shared.
// Persistence is left to collaborators that snapshot the registry through
// Export and rebuild it with Restore.
package registry

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/example/contact-registry/internal/identity"
	"github.com/example/contact-registry/internal/query"
	"github.com/example/contact-registry/internal/timeline"
)

// Registry owns the contact and meeting collections.
type Registry struct {
	mu       sync.Mutex
	contacts map[int]*Contact
	meetings []Meeting
	now      timeline.Clock
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the source of "now" used for temporal classification.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger used when no logger is carried by the context.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = defaultLogger(logger)
	}
}

// New constructs an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		contacts: make(map[int]*Contact),
		now:      timeline.SystemClock(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddContact stores a new contact and returns its id. Both name and notes must
// be non-empty.
func (r *Registry) AddContact(ctx context.Context, name, notes string) (id int, err error) {
	logger := operationLogger(ctx, r.logger, "AddContact")
	defer func() {
		logOutcome(ctx, logger, err, "contact added", "contact_id", id)
	}()

	if name == "" {
		return 0, invalidArgument("contact name must not be empty")
	}
	if notes == "" {
		return 0, invalidArgument("contact notes must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id = identity.GenerateID(r.contactIDsLocked())
	r.contacts[id] = NewContact(id, name, notes)
	return id, nil
}

// Contact returns the contact with the given id.
func (r *Registry) Contact(ctx context.Context, id int) (*Contact, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contacts[id]
	if !ok {
		return nil, false
	}
	return c.clone(), true
}

// FindContactsByName returns the contacts whose name contains substring,
// ordered by id. The match is literal and case-sensitive; an empty substring
// returns every contact.
func (r *Registry) FindContactsByName(ctx context.Context, substring string) []*Contact {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := query.Select(r.sortedContactsLocked(), nameContains(substring))
	operationLogger(ctx, r.logger, "FindContactsByName").
		DebugContext(ctx, "contacts searched", "result_count", len(matched))
	return cloneContacts(matched)
}

// FindContactsByIDs returns the contacts with the given ids, ordered by id.
// The whole call fails when no id is given or when any id is unknown.
func (r *Registry) FindContactsByIDs(ctx context.Context, ids ...int) (contacts []*Contact, err error) {
	logger := operationLogger(ctx, r.logger, "FindContactsByIDs", "requested", len(ids))
	defer func() {
		logOutcome(ctx, logger, err, "contacts resolved", "result_count", len(contacts))
	}()

	if len(ids) == 0 {
		return nil, invalidArgument("at least one contact id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	found := make([]*Contact, 0, len(ids))
	missing := make([]int, 0)
	for _, id := range ids {
		c, ok := r.contacts[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		found = append(found, c)
	}
	if len(missing) > 0 {
		return nil, invalidArgument("unknown contact ids: %s", joinInts(missing))
	}
	return cloneContacts(normalizeContacts(found)), nil
}

// AddContactNotes appends text to the notes of an existing contact.
func (r *Registry) AddContactNotes(ctx context.Context, id int, text string) (contact *Contact, err error) {
	logger := operationLogger(ctx, r.logger, "AddContactNotes", "contact_id", id)
	defer func() {
		logOutcome(ctx, logger, err, "contact notes added")
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contacts[id]
	if !ok {
		return nil, invalidArgument("unknown contact id %d", id)
	}
	c.AddNotes(text)
	return c.clone(), nil
}

// Contacts returns every contact ordered by id.
func (r *Registry) Contacts() []*Contact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneContacts(r.sortedContactsLocked())
}

func (r *Registry) contactIDsLocked() map[int]struct{} {
	ids := make(map[int]struct{}, len(r.contacts))
	for id := range r.contacts {
		ids[id] = struct{}{}
	}
	return ids
}

func (r *Registry) sortedContactsLocked() []*Contact {
	out := make([]*Contact, 0, len(r.contacts))
	for _, c := range r.contacts {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Contact) int { return cmp.Compare(a.id, b.id) })
	return out
}

// resolveParticipantsLocked maps caller supplied contacts onto the stored
// contacts with the same ids.
func (r *Registry) resolveParticipantsLocked(participants []*Contact) ([]*Contact, error) {
	if participants == nil {
		return nil, nullArgument("participants")
	}
	if len(participants) == 0 {
		return nil, invalidArgument("at least one participant is required")
	}

	resolved := make([]*Contact, 0, len(participants))
	missing := make([]int, 0)
	for _, p := range participants {
		if p == nil {
			return nil, nullArgument("participant")
		}
		stored, ok := r.contacts[p.ID()]
		if !ok {
			missing = append(missing, p.ID())
			continue
		}
		resolved = append(resolved, stored)
	}
	if len(missing) > 0 {
		return nil, invalidArgument("unknown participant ids: %s", joinInts(missing))
	}
	return normalizeContacts(resolved), nil
}

func (r *Registry) knownContactLocked(contact *Contact) error {
	if contact == nil {
		return nullArgument("contact")
	}
	if _, ok := r.contacts[contact.ID()]; !ok {
		return invalidArgument("unknown contact id %d", contact.ID())
	}
	return nil
}

func cloneContacts(contacts []*Contact) []*Contact {
	out := make([]*Contact, len(contacts))
	for i, c := range contacts {
		out[i] = c.clone()
	}
	return out
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
