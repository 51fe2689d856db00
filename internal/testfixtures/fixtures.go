package testfixtures

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/contact-registry/internal/registry"
	"github.com/example/contact-registry/internal/timeline"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewRegistry returns an empty registry driven by clock. A nil clock starts at
// ReferenceTime.
func NewRegistry(clock *Clock, opts ...registry.Option) *registry.Registry {
	if clock == nil {
		clock = NewClock(time.Time{})
	}
	base := []registry.Option{registry.WithClock(clock.NowFunc()), registry.WithLogger(DiscardLogger())}
	return registry.New(append(base, opts...)...)
}

// SeedContacts adds one contact per name and returns them in creation order.
// Each contact gets the note "notes for <name>".
func SeedContacts(tb testing.TB, reg *registry.Registry, names ...string) []*registry.Contact {
	tb.Helper()

	ctx := context.Background()
	ids := make([]int, 0, len(names))
	for _, name := range names {
		id, err := reg.AddContact(ctx, name, fmt.Sprintf("notes for %s", name))
		if err != nil {
			tb.Fatalf("failed to add contact %q: %v", name, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}

	contacts := make([]*registry.Contact, 0, len(ids))
	for _, id := range ids {
		c, ok := reg.Contact(ctx, id)
		if !ok {
			tb.Fatalf("contact %d vanished after creation", id)
		}
		contacts = append(contacts, c)
	}
	return contacts
}

// SampleState returns a registry state with two contacts, one future meeting,
// one past meeting with notes and one plain meeting, relative to now.
func SampleState(now time.Time) registry.State {
	return registry.State{
		Contacts: []registry.ContactState{
			{ID: 0, Name: "Alice", Notes: "met at conference"},
			{ID: 1, Name: "Bob", Notes: ""},
		},
		Meetings: []registry.MeetingState{
			{ID: 0, Date: now.Add(48 * time.Hour), ParticipantIDs: []int{0, 1}, Status: timeline.Future},
			{ID: 1, Date: now.Add(-48 * time.Hour), ParticipantIDs: []int{1}, Notes: "went well", Status: timeline.Past},
			{ID: 3, Date: now.Add(-time.Hour), ParticipantIDs: []int{0}, Status: timeline.Unresolved},
		},
	}
}
