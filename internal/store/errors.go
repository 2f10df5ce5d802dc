package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is a generic version of the entity-specific not found
	// errors (e.g., ErrUserNotFound, ErrDocumentNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or when a referenced entity does not exist (foreign key
	// violation). Check the wrapped error for specifics.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation fails, for example
	// because the entity does not exist or the update violates constraints.
	ErrUpdateFailed = errors.New("update failed")

	// ErrDeleteFailed is returned when a delete operation fails.
	ErrDeleteFailed = errors.New("delete failed")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrSeedNotFound indicates that the requested identity seed does not exist.
	ErrSeedNotFound = fmt.Errorf("%w: identity seed", ErrNotFound)

	// ErrGoalNotFound indicates that the requested goal does not exist.
	ErrGoalNotFound = fmt.Errorf("%w: goal", ErrNotFound)

	// ErrEntryNotFound indicates that the requested journal entry does not exist.
	ErrEntryNotFound = fmt.Errorf("%w: journal entry", ErrNotFound)

	// ErrDocumentNotFound indicates that the requested document does not exist.
	ErrDocumentNotFound = fmt.Errorf("%w: document", ErrNotFound)

	// ErrInsightNotFound indicates that the requested insight does not exist.
	ErrInsightNotFound = fmt.Errorf("%w: insight", ErrNotFound)

	// ErrPathNotFound indicates that the requested learning path does not exist.
	ErrPathNotFound = fmt.Errorf("%w: learning path", ErrNotFound)

	// ErrPathDayNotFound indicates that the requested path day does not exist.
	ErrPathDayNotFound = fmt.Errorf("%w: path day", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
