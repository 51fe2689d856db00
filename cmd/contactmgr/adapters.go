package main

import (
	"fmt"

	"github.com/example/contact-registry/internal/persistence"
	"github.com/example/contact-registry/internal/registry"
	"github.com/example/contact-registry/internal/timeline"
)

func toSnapshot(state registry.State) persistence.Snapshot {
	snapshot := persistence.Snapshot{
		Contacts: make([]persistence.ContactRecord, 0, len(state.Contacts)),
		Meetings: make([]persistence.MeetingRecord, 0, len(state.Meetings)),
	}
	for _, c := range state.Contacts {
		snapshot.Contacts = append(snapshot.Contacts, persistence.ContactRecord{
			ID:    c.ID,
			Name:  c.Name,
			Notes: c.Notes,
		})
	}
	for _, m := range state.Meetings {
		snapshot.Meetings = append(snapshot.Meetings, persistence.MeetingRecord{
			ID:             m.ID,
			Date:           m.Date,
			ParticipantIDs: append([]int(nil), m.ParticipantIDs...),
			Notes:          m.Notes,
			Status:         m.Status.String(),
		})
	}
	return snapshot
}

func toState(snapshot persistence.Snapshot) (registry.State, error) {
	state := registry.State{
		Contacts: make([]registry.ContactState, 0, len(snapshot.Contacts)),
		Meetings: make([]registry.MeetingState, 0, len(snapshot.Meetings)),
	}
	for _, c := range snapshot.Contacts {
		state.Contacts = append(state.Contacts, registry.ContactState{
			ID:    c.ID,
			Name:  c.Name,
			Notes: c.Notes,
		})
	}
	for _, m := range snapshot.Meetings {
		status, err := timeline.ParseStatus(m.Status)
		if err != nil {
			return registry.State{}, fmt.Errorf("%w: meeting %d: %v", persistence.ErrCorrupt, m.ID, err)
		}
		state.Meetings = append(state.Meetings, registry.MeetingState{
			ID:             m.ID,
			Date:           m.Date,
			ParticipantIDs: append([]int(nil), m.ParticipantIDs...),
			Notes:          m.Notes,
			Status:         status,
		})
	}
	return state, nil
}
