package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/contact-registry/internal/timeline"
)

var meetingDate = time.Date(2030, time.June, 1, 10, 0, 0, 0, time.UTC)

func TestNewMeetingNormalizesParticipants(t *testing.T) {
	t.Parallel()

	alice := NewContact(0, "Alice", "")
	bob := NewContact(1, "Bob", "")
	aliceAgain := NewContact(0, "Alice (copy)", "")

	m := NewMeeting(7, meetingDate, []*Contact{bob, alice, nil, aliceAgain}, timeline.Future, "ignored")

	assert.Equal(t, []int{0, 1}, m.ParticipantIDs())
	assert.True(t, m.HasParticipant(1))
	assert.False(t, m.HasParticipant(2))
	assert.Equal(t, "", m.Notes(), "future meetings carry no notes")
	assert.Equal(t, timeline.Future, m.Status())
}

func TestMeetingParticipantsIsACopy(t *testing.T) {
	t.Parallel()

	m := NewMeeting(0, meetingDate, []*Contact{NewContact(0, "Alice", "")}, timeline.Future, "")
	participants := m.Participants()
	participants[0] = NewContact(9, "Mallory", "")

	assert.Equal(t, []int{0}, m.ParticipantIDs())
}

func TestMeetingEqualUsesIDOnly(t *testing.T) {
	t.Parallel()

	a := NewMeeting(1, meetingDate, []*Contact{NewContact(0, "Alice", "")}, timeline.Future, "")
	b := NewMeeting(1, meetingDate.AddDate(1, 0, 0), []*Contact{NewContact(5, "Eve", "")}, timeline.Past, "notes")
	c := NewMeeting(2, meetingDate, []*Contact{NewContact(0, "Alice", "")}, timeline.Future, "")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestMeetingProjections(t *testing.T) {
	t.Parallel()

	participants := []*Contact{NewContact(0, "Alice", "")}

	plain := NewMeeting(0, meetingDate, participants, timeline.Unresolved, "")
	asPast := plain.AsPast()
	assert.Equal(t, timeline.Past, asPast.Status())
	assert.Equal(t, "", asPast.Notes())
	assert.Equal(t, timeline.Unresolved, plain.Status(), "projection must not mutate the source")

	past := NewMeeting(1, meetingDate, participants, timeline.Past, "recap")
	assert.Equal(t, "recap", past.AsPast().Notes())

	asFuture := past.AsFuture()
	assert.Equal(t, timeline.Future, asFuture.Status())
	assert.Equal(t, "", asFuture.Notes())
}

func TestMeetingClassify(t *testing.T) {
	t.Parallel()

	m := NewMeeting(0, meetingDate, []*Contact{NewContact(0, "Alice", "")}, timeline.Past, "")

	assert.Equal(t, timeline.Future, m.Classify(meetingDate.Add(-time.Second)))
	assert.Equal(t, timeline.Past, m.Classify(meetingDate))
}

func TestMeetingWithNotes(t *testing.T) {
	t.Parallel()

	participants := []*Contact{NewContact(0, "Alice", "")}

	tests := []struct {
		name     string
		meeting  Meeting
		text     string
		expected string
	}{
		{
			name:     "future tagged meeting takes text as notes",
			meeting:  NewMeeting(0, meetingDate, participants, timeline.Future, ""),
			text:     "B",
			expected: "B",
		},
		{
			name:     "past meeting appends after a space",
			meeting:  NewMeeting(0, meetingDate, participants, timeline.Past, "A"),
			text:     "B",
			expected: "A B",
		},
		{
			name:     "past meeting without notes takes text",
			meeting:  NewMeeting(0, meetingDate, participants, timeline.Past, ""),
			text:     "B",
			expected: "B",
		},
		{
			name:     "empty text keeps existing notes",
			meeting:  NewMeeting(0, meetingDate, participants, timeline.Past, "A"),
			text:     "",
			expected: "A",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			updated := tc.meeting.withNotes(tc.text)
			assert.Equal(t, tc.expected, updated.Notes())
			assert.Equal(t, timeline.Past, updated.Status())
			assert.Equal(t, tc.meeting.ID(), updated.ID())
			assert.True(t, tc.meeting.Date().Equal(updated.Date()))
		})
	}
}

func TestMeetingDetachedDoesNotAlias(t *testing.T) {
	t.Parallel()

	alice := NewContact(0, "Alice", "")
	m := NewMeeting(0, meetingDate, []*Contact{alice}, timeline.Future, "")

	detached := m.detached()
	detached.Participants()[0].AddNotes("changed through copy")

	require.Len(t, m.participants, 1)
	assert.Equal(t, "", alice.Notes())
}
