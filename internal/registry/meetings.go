package registry

import (
	"context"
	"time"

	"github.com/example/contact-registry/internal/identity"
	"github.com/example/contact-registry/internal/query"
	"github.com/example/contact-registry/internal/timeline"
)

// AddFutureMeeting schedules a meeting with known contacts at a date strictly
// after now and returns its id.
func (r *Registry) AddFutureMeeting(ctx context.Context, participants []*Contact, date time.Time) (id int, err error) {
	logger := operationLogger(ctx, r.logger, "AddFutureMeeting", "participant_count", len(participants))
	defer func() {
		logOutcome(ctx, logger, err, "future meeting added", "meeting_id", id)
	}()

	if date.IsZero() {
		return 0, nullArgument("date")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	resolved, err := r.resolveParticipantsLocked(participants)
	if err != nil {
		return 0, err
	}
	if !timeline.IsFuture(date, r.now()) {
		return 0, invalidArgument("meeting date %s is not in the future", date.Format(time.RFC3339))
	}

	id = identity.Next(r.meetings)
	r.meetings = append(r.meetings, NewMeeting(id, date, resolved, timeline.Future, ""))
	return id, nil
}

// AddNewPastMeeting records a meeting that already took place, with notes
// stored verbatim, and returns its id.
func (r *Registry) AddNewPastMeeting(ctx context.Context, participants []*Contact, date time.Time, notes string) (id int, err error) {
	logger := operationLogger(ctx, r.logger, "AddNewPastMeeting", "participant_count", len(participants))
	defer func() {
		logOutcome(ctx, logger, err, "past meeting added", "meeting_id", id)
	}()

	if date.IsZero() {
		return 0, nullArgument("date")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	resolved, err := r.resolveParticipantsLocked(participants)
	if err != nil {
		return 0, err
	}

	id = identity.Next(r.meetings)
	r.meetings = append(r.meetings, NewMeeting(id, date, resolved, timeline.Past, notes))
	return id, nil
}

// Meeting returns the meeting with the given id without any temporal check.
func (r *Registry) Meeting(ctx context.Context, id int) (Meeting, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, _, ok := query.First(r.meetings, withMeetingID(id))
	if !ok {
		return Meeting{}, false
	}
	return m.detached(), true
}

// PastMeeting returns the meeting with the given id presented as a past
// meeting. ok is false when no such meeting exists; ErrInvalidState is
// returned when the meeting has not happened yet.
func (r *Registry) PastMeeting(ctx context.Context, id int) (meeting Meeting, ok bool, err error) {
	logger := operationLogger(ctx, r.logger, "PastMeeting", "meeting_id", id)
	defer func() {
		logOutcome(ctx, logger, err, "past meeting looked up", "found", ok)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	m, _, found := query.First(r.meetings, withMeetingID(id))
	if !found {
		return Meeting{}, false, nil
	}
	if timeline.IsFuture(m.date, r.now()) {
		return Meeting{}, false, invalidState("meeting %d has not happened yet", id)
	}
	return m.AsPast().detached(), true, nil
}

// FutureMeeting returns the meeting with the given id presented as a future
// meeting. ok is false when no such meeting exists; ErrInvalidArgument is
// returned when the meeting is not in the future.
func (r *Registry) FutureMeeting(ctx context.Context, id int) (meeting Meeting, ok bool, err error) {
	logger := operationLogger(ctx, r.logger, "FutureMeeting", "meeting_id", id)
	defer func() {
		logOutcome(ctx, logger, err, "future meeting looked up", "found", ok)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	m, _, found := query.First(r.meetings, withMeetingID(id))
	if !found {
		return Meeting{}, false, nil
	}
	if !timeline.IsFuture(m.date, r.now()) {
		return Meeting{}, false, invalidArgument("meeting %d is not in the future", id)
	}
	return m.AsFuture().detached(), true, nil
}

// FutureMeetingsFor returns the meetings with contact dated strictly after
// now, latest first.
func (r *Registry) FutureMeetingsFor(ctx context.Context, contact *Contact) (meetings []Meeting, err error) {
	logger := operationLogger(ctx, r.logger, "FutureMeetingsFor")
	defer func() {
		logOutcome(ctx, logger, err, "future meetings listed", "result_count", len(meetings))
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.knownContactLocked(contact); err != nil {
		return nil, err
	}
	matched := query.Filter(r.meetings, futureAt(r.now()), withParticipant(contact.ID()), latestFirst)
	return present(matched, Meeting.AsFuture), nil
}

// PastMeetingsFor returns the meetings with contact dated at or before now,
// latest first, each presented as a past meeting.
func (r *Registry) PastMeetingsFor(ctx context.Context, contact *Contact) (meetings []Meeting, err error) {
	logger := operationLogger(ctx, r.logger, "PastMeetingsFor")
	defer func() {
		logOutcome(ctx, logger, err, "past meetings listed", "result_count", len(meetings))
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.knownContactLocked(contact); err != nil {
		return nil, err
	}
	matched := query.Filter(r.meetings, pastAt(r.now()), withParticipant(contact.ID()), latestFirst)
	return present(matched, Meeting.AsPast), nil
}

// MeetingsOn returns the meetings dated exactly at date, whatever their
// temporal status.
func (r *Registry) MeetingsOn(ctx context.Context, date time.Time) (meetings []Meeting, err error) {
	logger := operationLogger(ctx, r.logger, "MeetingsOn")
	defer func() {
		logOutcome(ctx, logger, err, "meetings on date listed", "result_count", len(meetings))
	}()

	if date.IsZero() {
		return nil, nullArgument("date")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	matched := query.Filter(r.meetings, on(date), query.Always[Meeting](), latestFirst)
	return present(matched, nil), nil
}

// AddMeetingNotes appends text to the notes of a meeting that has happened and
// stores it as a past meeting. A meeting that was already past keeps its notes
// with text appended after a space; otherwise text becomes the notes.
func (r *Registry) AddMeetingNotes(ctx context.Context, id int, text string) (meeting Meeting, err error) {
	logger := operationLogger(ctx, r.logger, "AddMeetingNotes", "meeting_id", id)
	defer func() {
		logOutcome(ctx, logger, err, "meeting notes added")
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, idx, found := query.First(r.meetings, withMeetingID(id))
	if !found {
		return Meeting{}, invalidArgument("unknown meeting id %d", id)
	}
	if timeline.IsFuture(existing.date, r.now()) {
		return Meeting{}, invalidState("meeting %d is set for a date in the future", id)
	}

	updated := existing.withNotes(text)
	r.meetings[idx] = updated
	return updated.detached(), nil
}

// Meetings returns every meeting in insertion order.
func (r *Registry) Meetings() []Meeting {
	r.mu.Lock()
	defer r.mu.Unlock()
	return present(r.meetings, nil)
}

func present(meetings []Meeting, view func(Meeting) Meeting) []Meeting {
	out := make([]Meeting, len(meetings))
	for i, m := range meetings {
		if view != nil {
			m = view(m)
		}
		out[i] = m.detached()
	}
	return out
}
