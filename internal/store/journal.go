package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
)

// JournalStore defines the interface for journal entry persistence.
type JournalStore interface {
	// Create saves a new journal entry to the store.
	Create(ctx context.Context, entry *domain.JournalEntry) error

	// GetByID retrieves an entry by ID, scoped to the owning user.
	// Returns ErrEntryNotFound if it does not exist or belongs to another user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.JournalEntry, error)

	// ListByUser returns the user's entries, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.JournalEntry, error)

	// Delete removes an entry.
	// Returns ErrEntryNotFound if it does not exist or belongs to another user.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
