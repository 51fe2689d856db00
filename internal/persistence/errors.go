package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no snapshot has been saved yet.
	ErrNotFound = errors.New("persistence: not found")
	// ErrCorrupt is returned when stored data fails integrity checks.
	ErrCorrupt = errors.New("persistence: corrupt snapshot")
	// ErrDuplicate is returned when a snapshot repeats an identifier.
	ErrDuplicate = errors.New("persistence: duplicate record")
)

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}

func duplicatef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDuplicate, fmt.Sprintf(format, args...))
}
