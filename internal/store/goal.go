package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
)

// GoalStore defines the interface for goal persistence.
type GoalStore interface {
	// Create saves a new goal to the store.
	Create(ctx context.Context, goal *domain.Goal) error

	// GetByID retrieves a goal by ID, scoped to the owning user.
	// Returns ErrGoalNotFound if it does not exist or belongs to another user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Goal, error)

	// ListByUser returns the user's goals, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Goal, error)

	// Update saves changes to an existing goal.
	// Returns ErrGoalNotFound if it does not exist or belongs to another user.
	Update(ctx context.Context, goal *domain.Goal) error

	// Delete removes a goal.
	// Returns ErrGoalNotFound if it does not exist or belongs to another user.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
