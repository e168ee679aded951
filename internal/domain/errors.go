package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals a malformed query or command.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrBuild signals that a document collection could not be indexed.
	ErrBuild = errors.New("index build failed")
	// ErrQuery signals misuse of a low-level index operation (e.g. empty search term).
	ErrQuery = errors.New("invalid query")
	// ErrPersistence signals a failed write to durable storage. It is never fatal.
	ErrPersistence = errors.New("persistence failed")
	// ErrIndexNotReady signals that no index has been built yet.
	ErrIndexNotReady = errors.New("index not ready")
)

// BuildError reports the record that made an index build fail.
// Position is the zero-based offset of the record in the loaded sequence.
type BuildError struct {
	ID       string
	Position int
	Err      error
}

func (e *BuildError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: record %d: %v", ErrBuild.Error(), e.Position, e.Err)
	}
	return fmt.Sprintf("%s: record %d (%s): %v", ErrBuild.Error(), e.Position, e.ID, e.Err)
}

// Unwrap lets errors.Is match both ErrBuild and the underlying cause.
func (e *BuildError) Unwrap() []error { return []error{ErrBuild, e.Err} }

// NewBuildError creates a BuildError.
func NewBuildError(position int, id string, err error) error {
	return &BuildError{ID: id, Position: position, Err: err}
}

// PersistenceWarning wraps a failed durable write for a selection key.
// The in-memory state has already been updated when this is returned.
type PersistenceWarning struct {
	Key string
	Err error
}

func (w *PersistenceWarning) Error() string {
	return fmt.Sprintf("%s for %q: %v", ErrPersistence.Error(), w.Key, w.Err)
}

// Unwrap lets errors.Is match both ErrPersistence and the underlying cause.
func (w *PersistenceWarning) Unwrap() []error { return []error{ErrPersistence, w.Err} }

// NewPersistenceWarning creates a PersistenceWarning.
func NewPersistenceWarning(key string, err error) error {
	return &PersistenceWarning{Key: key, Err: err}
}

// IsWarning reports whether err is non-fatal for the caller.
func IsWarning(err error) bool {
	return errors.Is(err, ErrPersistence)
}
