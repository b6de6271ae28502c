package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a keyword, project or setting does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write would break uniqueness of a keyword term or record ID.
var ErrConflict = errors.New("conflict")

// OpenError represents a failure to open or migrate a backing database.
type OpenError struct {
	Driver  Driver
	Message string
	Cause   error
}

func (e *OpenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to open %s store: %s: %v", e.Driver, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to open %s store: %s", e.Driver, e.Message)
}

func (e *OpenError) Unwrap() error {
	return e.Cause
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

func termConflict(term string) error {
	return fmt.Errorf("keyword term %q already exists: %w", term, ErrConflict)
}

func idConflict(kind, id string) error {
	return fmt.Errorf("%s id %q already exists: %w", kind, id, ErrConflict)
}
