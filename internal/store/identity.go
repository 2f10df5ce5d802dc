package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
)

// IdentitySeedStore defines the interface for identity seed persistence.
type IdentitySeedStore interface {
	// Create saves a new identity seed. It does NOT deactivate previous
	// seeds; callers wanting the one-active-seed invariant use the service
	// layer, which runs Create and DeactivateAll in one transaction.
	Create(ctx context.Context, seed *domain.IdentitySeed) error

	// GetByID retrieves a seed by ID, scoped to the owning user.
	// Returns ErrSeedNotFound if it does not exist or belongs to another user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.IdentitySeed, error)

	// GetActive retrieves the user's active seed.
	// Returns ErrSeedNotFound if the user has no active seed.
	GetActive(ctx context.Context, userID uuid.UUID) (*domain.IdentitySeed, error)

	// ListByUser returns the user's seeds, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.IdentitySeed, error)

	// DeactivateAll archives every active seed the user has.
	DeactivateAll(ctx context.Context, userID uuid.UUID) error

	// Activate marks the given seed active.
	// Returns ErrSeedNotFound if it does not exist or belongs to another user.
	Activate(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a new IdentitySeedStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) IdentitySeedStore
}
