package configurations

import (
	"fmt"
)

type DuplicateSlotError struct {
	Slot string
}

func (e *DuplicateSlotError) Error() string {
	return fmt.Sprintf("configuration %q already exists", e.Slot)
}

type UnknownSlotError struct {
	Slot string
}

func (e *UnknownSlotError) Error() string {
	return fmt.Sprintf("unknown configuration %q", e.Slot)
}

// UnresolvableDependencyError is reported by resolvers for
// artifacts which cannot be provided.
type UnresolvableDependencyError struct {
	Slot       string
	Coordinate string
	Err        error
}

func (e *UnresolvableDependencyError) Error() string {
	msg := fmt.Sprintf("cannot resolve %q", e.Coordinate)
	if e.Slot != "" {
		msg = fmt.Sprintf("configuration %q: %s", e.Slot, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnresolvableDependencyError) Unwrap() error {
	return e.Err
}
