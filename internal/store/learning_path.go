package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
)

// LearningPathStore defines the interface for learning path persistence.
type LearningPathStore interface {
	// Create saves a new learning path (without days).
	Create(ctx context.Context, path *domain.LearningPath) error

	// GetByID retrieves a path with its days, scoped to the owning user.
	// Returns ErrPathNotFound if it does not exist or belongs to another user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.LearningPath, error)

	// Get retrieves a path by ID regardless of owner. Used by background
	// tasks, which carry no authenticated user.
	Get(ctx context.Context, id uuid.UUID) (*domain.LearningPath, error)

	// ListByUser returns the user's paths (without days), newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.LearningPath, error)

	// UpdateStatus updates the status of an existing path.
	// Returns ErrPathNotFound if the path does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PathStatus) error

	// CreateDays saves the generated days for a path.
	CreateDays(ctx context.Context, days []*domain.PathDay) error

	// CompleteDay marks a day completed, scoped to the owning user.
	// Completing an already-completed day is a no-op.
	// Returns ErrPathDayNotFound if the day does not exist under the path.
	CompleteDay(ctx context.Context, userID, pathID, dayID uuid.UUID) (*domain.PathDay, error)

	// Delete removes a path and its days.
	// Returns ErrPathNotFound if it does not exist or belongs to another user.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a new LearningPathStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) LearningPathStore
}
