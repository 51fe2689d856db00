package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrNullArgument is returned when a required argument was not provided.
	ErrNullArgument = errors.New("registry: null argument")
	// ErrInvalidArgument is returned when an argument is present but violates a value constraint.
	ErrInvalidArgument = errors.New("registry: invalid argument")
	// ErrInvalidState is returned when the target object's current state forbids the operation.
	ErrInvalidState = errors.New("registry: invalid state")
)

func nullArgument(name string) error {
	return fmt.Errorf("%w: %s is required", ErrNullArgument, name)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func invalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// ErrorKind maps registry errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNullArgument):
		return "null_argument"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	}
	return "unexpected"
}
