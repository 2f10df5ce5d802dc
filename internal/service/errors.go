// Package service provides application-level services for identity seeds,
// goals, journal entries, documents, insights, and learning paths.
package service

import (
	"errors"
	"fmt"

	"github.com/arborhq/arbor-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent conditions that callers may want to check for with
// errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in ServiceError
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrSeedNotFound indicates that the identity seed does not exist or the
	// user has no active seed. API layer should map this to HTTP 404.
	ErrSeedNotFound = errors.New("identity seed not found")

	// ErrGoalNotFound indicates that the goal does not exist.
	ErrGoalNotFound = errors.New("goal not found")

	// ErrEntryNotFound indicates that the journal entry does not exist.
	ErrEntryNotFound = errors.New("journal entry not found")

	// ErrDocumentNotFound indicates that the document does not exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInsightNotFound indicates that the insight does not exist.
	ErrInsightNotFound = errors.New("insight not found")

	// ErrPathNotFound indicates that the learning path does not exist.
	ErrPathNotFound = errors.New("learning path not found")

	// ErrPathDayNotFound indicates that the path day does not exist under
	// the given path.
	ErrPathDayNotFound = errors.New("path day not found")

	// ErrSearchUnavailable indicates that semantic search cannot run because
	// no embedding provider is configured.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrSearchUnavailable = errors.New("semantic search is unavailable")
)

// ServiceError wraps unexpected errors from a service with context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_document").
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying error that caused the failure.
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError. Store-level not-found
// sentinels are mapped to their service-level counterparts and returned
// directly without wrapping.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if mapped := mapStoreError(err); mapped != nil {
		return mapped
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// mapStoreError translates store sentinels into service sentinels.
// Returns nil when the error is not a recognized store sentinel.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrSeedNotFound):
		return ErrSeedNotFound
	case errors.Is(err, store.ErrGoalNotFound):
		return ErrGoalNotFound
	case errors.Is(err, store.ErrEntryNotFound):
		return ErrEntryNotFound
	case errors.Is(err, store.ErrDocumentNotFound):
		return ErrDocumentNotFound
	case errors.Is(err, store.ErrInsightNotFound):
		return ErrInsightNotFound
	case errors.Is(err, store.ErrPathDayNotFound):
		return ErrPathDayNotFound
	case errors.Is(err, store.ErrPathNotFound):
		return ErrPathNotFound
	default:
		return nil
	}
}
