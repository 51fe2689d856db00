package registry

import (
	"cmp"
	"slices"
	"time"

	"github.com/example/contact-registry/internal/timeline"
)

// Meeting is a scheduled or completed meeting. A single record covers the
// plain, future and past variants: the stored status tag says what the meeting
// was last known as, while Classify derives the effective status from the date.
// Identity is the id alone.
type Meeting struct {
	id           int
	date         time.Time
	participants []*Contact
	notes        string
	status       timeline.Status
}

// NewMeeting constructs a meeting. Participants are deduplicated by id and
// ordered by id. Notes are kept only for past-tagged meetings.
func NewMeeting(id int, date time.Time, participants []*Contact, status timeline.Status, notes string) Meeting {
	m := Meeting{
		id:           id,
		date:         date,
		participants: normalizeContacts(participants),
		status:       status,
	}
	if status == timeline.Past {
		m.notes = notes
	}
	return m
}

// ID returns the meeting identifier.
func (m Meeting) ID() int { return m.id }

// Date returns the instant the meeting takes or took place.
func (m Meeting) Date() time.Time { return m.date }

// Participants returns the meeting participants ordered by id.
func (m Meeting) Participants() []*Contact {
	return slices.Clone(m.participants)
}

// ParticipantIDs returns the participant ids in ascending order.
func (m Meeting) ParticipantIDs() []int {
	ids := make([]int, len(m.participants))
	for i, c := range m.participants {
		ids[i] = c.ID()
	}
	return ids
}

// Notes returns the meeting notes. Only past-tagged meetings carry notes.
func (m Meeting) Notes() string { return m.notes }

// Status returns the stored temporal tag.
func (m Meeting) Status() timeline.Status { return m.status }

// Classify resolves the effective status of the meeting at now.
func (m Meeting) Classify(now time.Time) timeline.Status {
	return timeline.Classify(m.date, now)
}

// HasParticipant reports whether the contact with the given id takes part.
func (m Meeting) HasParticipant(contactID int) bool {
	_, found := slices.BinarySearchFunc(m.participants, contactID, func(c *Contact, id int) int {
		return cmp.Compare(c.ID(), id)
	})
	return found
}

// Equal reports whether both meetings share the same id.
func (m Meeting) Equal(other Meeting) bool {
	return m.id == other.id
}

// AsPast presents the meeting as a past meeting. A meeting that never carried
// notes is presented with empty notes.
func (m Meeting) AsPast() Meeting {
	m.status = timeline.Past
	return m
}

// AsFuture presents the meeting as a future meeting, which carries no notes.
func (m Meeting) AsFuture() Meeting {
	m.status = timeline.Future
	m.notes = ""
	return m
}

// withNotes returns a past-tagged copy whose notes have text appended.
func (m Meeting) withNotes(text string) Meeting {
	updated := m.AsPast()
	switch {
	case m.status != timeline.Past || m.notes == "":
		updated.notes = text
	case text == "":
		updated.notes = m.notes
	default:
		updated.notes = m.notes + " " + text
	}
	return updated
}

// detached returns a copy whose participants no longer alias registry state.
func (m Meeting) detached() Meeting {
	participants := make([]*Contact, len(m.participants))
	for i, c := range m.participants {
		participants[i] = c.clone()
	}
	m.participants = participants
	return m
}

func normalizeContacts(contacts []*Contact) []*Contact {
	out := make([]*Contact, 0, len(contacts))
	for _, c := range contacts {
		if c != nil {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b *Contact) int { return cmp.Compare(a.ID(), b.ID()) })
	return slices.CompactFunc(out, func(a, b *Contact) bool { return a.ID() == b.ID() })
}
