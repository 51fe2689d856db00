package persistence

import (
	"time"

	"github.com/google/uuid"
)

// ContactRecord is the stored form of a contact.
type ContactRecord struct {
	ID    int
	Name  string
	Notes string
}

// MeetingRecord is the stored form of a meeting. Participants are referenced
// by contact id and Status holds the temporal tag label ("unresolved",
// "future" or "past").
type MeetingRecord struct {
	ID             int
	Date           time.Time
	ParticipantIDs []int
	Notes          string
	Status         string
}

// Snapshot is the complete persisted state of a registry.
type Snapshot struct {
	Revision string
	SavedAt  time.Time
	Contacts []ContactRecord
	Meetings []MeetingRecord
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Revision: s.Revision,
		SavedAt:  s.SavedAt,
		Contacts: append([]ContactRecord(nil), s.Contacts...),
	}
	if s.Meetings != nil {
		out.Meetings = make([]MeetingRecord, len(s.Meetings))
		for i, m := range s.Meetings {
			m.ParticipantIDs = append([]int(nil), m.ParticipantIDs...)
			out.Meetings[i] = m
		}
	}
	return out
}

// Validate checks the referential integrity of the snapshot: unique
// non-negative ids and participants that resolve to stored contacts.
func (s Snapshot) Validate() error {
	contacts := make(map[int]struct{}, len(s.Contacts))
	for _, c := range s.Contacts {
		if c.ID < 0 {
			return corruptf("contact id %d is negative", c.ID)
		}
		if _, dup := contacts[c.ID]; dup {
			return duplicatef("contact id %d", c.ID)
		}
		contacts[c.ID] = struct{}{}
	}

	meetings := make(map[int]struct{}, len(s.Meetings))
	for _, m := range s.Meetings {
		if m.ID < 0 {
			return corruptf("meeting id %d is negative", m.ID)
		}
		if _, dup := meetings[m.ID]; dup {
			return duplicatef("meeting id %d", m.ID)
		}
		meetings[m.ID] = struct{}{}

		if len(m.ParticipantIDs) == 0 {
			return corruptf("meeting %d has no participants", m.ID)
		}
		for _, pid := range m.ParticipantIDs {
			if _, ok := contacts[pid]; !ok {
				return corruptf("meeting %d references unknown contact %d", m.ID, pid)
			}
		}
	}
	return nil
}

// Stamp returns a copy of the snapshot with a fresh revision id and SavedAt
// set to now in UTC.
func (s Snapshot) Stamp(now time.Time) Snapshot {
	out := s.Clone()
	out.Revision = uuid.NewString()
	out.SavedAt = now.UTC()
	return out
}
