package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/store"
)

// IdentityService manages identity seeds, enforcing the invariant that a
// user has at most one active seed at a time.
type IdentityService interface {
	// CreateSeed creates a new active seed for the user, archiving any
	// previously active seed in the same transaction.
	CreateSeed(ctx context.Context, userID uuid.UUID, text string) (*domain.IdentitySeed, error)

	// GetActiveSeed returns the user's active seed.
	// Returns ErrSeedNotFound when the user has none.
	GetActiveSeed(ctx context.Context, userID uuid.UUID) (*domain.IdentitySeed, error)

	// ListSeeds returns the user's seed history, newest first.
	ListSeeds(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.IdentitySeed, error)

	// ActivateSeed re-activates an archived seed, archiving the currently
	// active one in the same transaction.
	ActivateSeed(ctx context.Context, userID, seedID uuid.UUID) (*domain.IdentitySeed, error)
}

type identityServiceImpl struct {
	seedStore store.IdentitySeedStore
	db        *sql.DB
	logger    *slog.Logger
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(
	seedStore store.IdentitySeedStore,
	db *sql.DB,
	logger *slog.Logger,
) (IdentityService, error) {
	if seedStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "seedStore cannot be nil"}
	}
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &identityServiceImpl{
		seedStore: seedStore,
		db:        db,
		logger:    logger.With(slog.String("component", "identity_service")),
	}, nil
}

func (s *identityServiceImpl) CreateSeed(
	ctx context.Context,
	userID uuid.UUID,
	text string,
) (*domain.IdentitySeed, error) {
	seed, err := domain.NewIdentitySeed(userID, text)
	if err != nil {
		return nil, NewServiceError("create_seed", "invalid identity seed", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.seedStore.WithTx(tx)

		if err := txStore.DeactivateAll(ctx, userID); err != nil {
			return NewServiceError("create_seed", "failed to archive previous seeds", err)
		}
		if err := txStore.Create(ctx, seed); err != nil {
			return NewServiceError("create_seed", "failed to save identity seed", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("identity seed created",
		slog.String("seed_id", seed.ID.String()),
		slog.String("user_id", userID.String()))

	return seed, nil
}

func (s *identityServiceImpl) GetActiveSeed(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.IdentitySeed, error) {
	seed, err := s.seedStore.GetActive(ctx, userID)
	if err != nil {
		return nil, NewServiceError("get_active_seed", "failed to retrieve active seed", err)
	}
	return seed, nil
}

func (s *identityServiceImpl) ListSeeds(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.IdentitySeed, error) {
	seeds, err := s.seedStore.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewServiceError("list_seeds", "failed to list identity seeds", err)
	}
	return seeds, nil
}

func (s *identityServiceImpl) ActivateSeed(
	ctx context.Context,
	userID, seedID uuid.UUID,
) (*domain.IdentitySeed, error) {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.seedStore.WithTx(tx)

		// Verify the seed exists and belongs to the user before touching
		// the currently active one.
		if _, err := txStore.GetByID(ctx, userID, seedID); err != nil {
			return NewServiceError("activate_seed", "failed to retrieve seed", err)
		}
		if err := txStore.DeactivateAll(ctx, userID); err != nil {
			return NewServiceError("activate_seed", "failed to archive previous seeds", err)
		}
		if err := txStore.Activate(ctx, userID, seedID); err != nil {
			return NewServiceError("activate_seed", "failed to activate seed", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("identity seed activated",
		slog.String("seed_id", seedID.String()),
		slog.String("user_id", userID.String()))

	return s.seedStore.GetByID(ctx, userID, seedID)
}
