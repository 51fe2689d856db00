package registry

import (
	"strings"
	"time"

	"github.com/example/contact-registry/internal/query"
	"github.com/example/contact-registry/internal/timeline"
)

func futureAt(now time.Time) query.Predicate[Meeting] {
	return func(m Meeting) bool { return timeline.IsFuture(m.date, now) }
}

func pastAt(now time.Time) query.Predicate[Meeting] {
	return func(m Meeting) bool { return !timeline.IsFuture(m.date, now) }
}

func withParticipant(contactID int) query.Predicate[Meeting] {
	return func(m Meeting) bool { return m.HasParticipant(contactID) }
}

func on(date time.Time) query.Predicate[Meeting] {
	return func(m Meeting) bool { return m.date.Equal(date) }
}

func withMeetingID(id int) query.Predicate[Meeting] {
	return func(m Meeting) bool { return m.id == id }
}

// latestFirst orders meetings by date, most recent first.
func latestFirst(a, b Meeting) int {
	return b.date.Compare(a.date)
}

func nameContains(substring string) query.Predicate[*Contact] {
	return func(c *Contact) bool { return strings.Contains(c.name, substring) }
}
