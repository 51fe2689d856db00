// Package timeline classifies meeting dates relative to the current instant.
//
// The boundary is strict: only a date chronologically after now is in the
// future. A date equal to now counts as past, so "now" and "past" sit on the
// same side of the boundary for every caller.
package timeline

import (
	"fmt"
	"strings"
	"time"
)

// Status is the temporal tag carried by a meeting.
type Status int

const (
	// Unresolved marks a plain meeting whose status is derived from its date.
	Unresolved Status = iota
	// Future marks a meeting known to lie after now.
	Future
	// Past marks a meeting known to have happened, possibly with notes.
	Past
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Future:
		return "future"
	case Past:
		return "past"
	default:
		return "unresolved"
	}
}

// ParseStatus converts the label produced by String back into a Status.
func ParseStatus(value string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "unresolved":
		return Unresolved, nil
	case "future":
		return Future, nil
	case "past":
		return Past, nil
	}
	return Unresolved, fmt.Errorf("timeline: unknown status %q", value)
}

// Clock supplies the current instant.
type Clock func() time.Time

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return time.Now
}

// IsFuture reports whether date is strictly after now.
func IsFuture(date, now time.Time) bool {
	return date.After(now)
}

// Classify returns Future when date is strictly after now and Past otherwise.
func Classify(date, now time.Time) Status {
	if IsFuture(date, now) {
		return Future
	}
	return Past
}
