package registry

import "strings"

// Contact is a person known to the registry. Identity is the id alone: two
// contacts with the same id are the same contact whatever their name or notes.
type Contact struct {
	id    int
	name  string
	notes string
}

// NewContact constructs a contact. Surrounding whitespace is trimmed from notes.
func NewContact(id int, name, notes string) *Contact {
	return &Contact{id: id, name: name, notes: strings.TrimSpace(notes)}
}

// ID returns the contact identifier.
func (c *Contact) ID() int { return c.id }

// Name returns the contact name.
func (c *Contact) Name() string { return c.name }

// Notes returns the notes recorded about the contact, or "" when none exist.
func (c *Contact) Notes() string { return c.notes }

// AddNotes appends text to the contact notes after trimming it. When notes
// already exist the new text follows a single space; otherwise it replaces them.
func (c *Contact) AddNotes(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}
	if c.notes == "" {
		c.notes = trimmed
		return
	}
	c.notes = c.notes + " " + trimmed
}

// Equal reports whether both contacts share the same id.
func (c *Contact) Equal(other *Contact) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.id == other.id
}

func (c *Contact) clone() *Contact {
	copied := *c
	return &copied
}
