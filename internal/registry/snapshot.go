package registry

import (
	"time"

	"github.com/example/contact-registry/internal/timeline"
)

// State is a detached copy of the registry collections, used by persistence
// collaborators to save and rebuild a registry.
type State struct {
	Contacts []ContactState
	Meetings []MeetingState
}

// ContactState captures one contact.
type ContactState struct {
	ID    int
	Name  string
	Notes string
}

// MeetingState captures one meeting. Participants are referenced by contact id.
type MeetingState struct {
	ID             int
	Date           time.Time
	ParticipantIDs []int
	Notes          string
	Status         timeline.Status
}

// Export returns the full registry state. Contacts are ordered by id and
// meetings keep insertion order.
func (r *Registry) Export() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	contacts := r.sortedContactsLocked()
	state := State{
		Contacts: make([]ContactState, 0, len(contacts)),
		Meetings: make([]MeetingState, 0, len(r.meetings)),
	}
	for _, c := range contacts {
		state.Contacts = append(state.Contacts, ContactState{ID: c.id, Name: c.name, Notes: c.notes})
	}
	for _, m := range r.meetings {
		state.Meetings = append(state.Meetings, MeetingState{
			ID:             m.id,
			Date:           m.date,
			ParticipantIDs: m.ParticipantIDs(),
			Notes:          m.notes,
			Status:         m.status,
		})
	}
	return state
}

// Restore rebuilds a registry from state. Participant ids are resolved against
// the restored contacts; dangling or duplicated ids are rejected.
func Restore(state State, opts ...Option) (*Registry, error) {
	r := New(opts...)

	for _, cs := range state.Contacts {
		if cs.ID < 0 {
			return nil, invalidArgument("contact id %d is negative", cs.ID)
		}
		if _, dup := r.contacts[cs.ID]; dup {
			return nil, invalidArgument("duplicate contact id %d", cs.ID)
		}
		r.contacts[cs.ID] = NewContact(cs.ID, cs.Name, cs.Notes)
	}

	seen := make(map[int]struct{}, len(state.Meetings))
	for _, ms := range state.Meetings {
		if ms.ID < 0 {
			return nil, invalidArgument("meeting id %d is negative", ms.ID)
		}
		if _, dup := seen[ms.ID]; dup {
			return nil, invalidArgument("duplicate meeting id %d", ms.ID)
		}
		seen[ms.ID] = struct{}{}

		if ms.Date.IsZero() {
			return nil, nullArgument("meeting date")
		}
		if len(ms.ParticipantIDs) == 0 {
			return nil, invalidArgument("meeting %d has no participants", ms.ID)
		}
		participants := make([]*Contact, 0, len(ms.ParticipantIDs))
		for _, pid := range ms.ParticipantIDs {
			c, ok := r.contacts[pid]
			if !ok {
				return nil, invalidArgument("meeting %d references unknown contact %d", ms.ID, pid)
			}
			participants = append(participants, c)
		}
		r.meetings = append(r.meetings, NewMeeting(ms.ID, ms.Date, participants, ms.Status, ms.Notes))
	}

	return r, nil
}
