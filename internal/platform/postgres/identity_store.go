package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/platform/logger"
	"github.com/arborhq/arbor-api/internal/store"
)

// PostgresIdentitySeedStore implements the store.IdentitySeedStore interface
// using a PostgreSQL database as the storage backend.
type PostgresIdentitySeedStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresIdentitySeedStore creates a new PostgreSQL implementation of
// the IdentitySeedStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresIdentitySeedStore(db store.DBTX, logger *slog.Logger) *PostgresIdentitySeedStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresIdentitySeedStore{
		db:     db,
		logger: logger.With(slog.String("component", "identity_seed_store")),
	}
}

// Ensure PostgresIdentitySeedStore implements store.IdentitySeedStore interface
var _ store.IdentitySeedStore = (*PostgresIdentitySeedStore)(nil)

// Create implements store.IdentitySeedStore.Create
// Returns store.ErrInvalidEntity if the user does not exist.
func (s *PostgresIdentitySeedStore) Create(ctx context.Context, seed *domain.IdentitySeed) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := seed.Validate(); err != nil {
		log.Warn("identity seed validation failed during create",
			slog.String("error", err.Error()),
			slog.String("seed_id", seed.ID.String()))
		return err
	}

	query := `
		INSERT INTO identity_seeds (id, user_id, text, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		seed.ID,
		seed.UserID,
		seed.Text,
		seed.Active,
		seed.CreatedAt,
		seed.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create identity seed",
			slog.String("error", err.Error()),
			slog.String("seed_id", seed.ID.String()),
			slog.String("user_id", seed.UserID.String()))
		return MapError(err)
	}

	log.Info("identity seed created successfully",
		slog.String("seed_id", seed.ID.String()),
		slog.String("user_id", seed.UserID.String()))
	return nil
}

// GetByID implements store.IdentitySeedStore.GetByID
func (s *PostgresIdentitySeedStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.IdentitySeed, error) {
	query := `
		SELECT id, user_id, text, active, created_at, updated_at
		FROM identity_seeds
		WHERE id = $1 AND user_id = $2
	`
	return s.scanSeed(ctx, query, id, userID)
}

// GetActive implements store.IdentitySeedStore.GetActive
func (s *PostgresIdentitySeedStore) GetActive(ctx context.Context, userID uuid.UUID) (*domain.IdentitySeed, error) {
	query := `
		SELECT id, user_id, text, active, created_at, updated_at
		FROM identity_seeds
		WHERE user_id = $1 AND active = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`
	return s.scanSeed(ctx, query, userID)
}

func (s *PostgresIdentitySeedStore) scanSeed(ctx context.Context, query string, args ...any) (*domain.IdentitySeed, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var seed domain.IdentitySeed
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&seed.ID,
		&seed.UserID,
		&seed.Text,
		&seed.Active,
		&seed.CreatedAt,
		&seed.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSeedNotFound
		}
		log.Error("failed to get identity seed",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return &seed, nil
}

// ListByUser implements store.IdentitySeedStore.ListByUser
func (s *PostgresIdentitySeedStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.IdentitySeed, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, text, active, created_at, updated_at
		FROM identity_seeds
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.Error("failed to list identity seeds",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	seeds := make([]*domain.IdentitySeed, 0)
	for rows.Next() {
		var seed domain.IdentitySeed
		if err := rows.Scan(
			&seed.ID,
			&seed.UserID,
			&seed.Text,
			&seed.Active,
			&seed.CreatedAt,
			&seed.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		seeds = append(seeds, &seed)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return seeds, nil
}

// DeactivateAll implements store.IdentitySeedStore.DeactivateAll
func (s *PostgresIdentitySeedStore) DeactivateAll(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE identity_seeds
		SET active = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND active = TRUE
	`

	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		log.Error("failed to deactivate identity seeds",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	return nil
}

// Activate implements store.IdentitySeedStore.Activate
func (s *PostgresIdentitySeedStore) Activate(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE identity_seeds
		SET active = TRUE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		log.Error("failed to activate identity seed",
			slog.String("error", err.Error()),
			slog.String("seed_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rowsAffected == 0 {
		return store.ErrSeedNotFound
	}

	log.Info("identity seed activated",
		slog.String("seed_id", id.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// WithTx implements store.IdentitySeedStore.WithTx
// It returns a new store instance backed by the given transaction.
func (s *PostgresIdentitySeedStore) WithTx(tx *sql.Tx) store.IdentitySeedStore {
	return &PostgresIdentitySeedStore{
		db:     tx,
		logger: s.logger,
	}
}
