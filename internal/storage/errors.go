package storage

import (
	"errors"
	"fmt"

	"agenda/internal/record"
)

var (
	// ErrNotFound is returned when no record matches an update or delete.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned when inserting a user that is already stored.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNoDocument is returned by a Backend for a document never written.
	ErrNoDocument = errors.New("document does not exist")

	// ErrWatchUnsupported is returned by Store.Watch when the backend cannot
	// report changes.
	ErrWatchUnsupported = errors.New("backend does not support watching")
)

// PersistenceError reports a document that could not be read, decoded or
// written.
type PersistenceError struct {
	Op   string
	Kind record.Kind
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
