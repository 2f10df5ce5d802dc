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

// PostgresGoalStore implements the store.GoalStore interface
// using a PostgreSQL database as the storage backend.
type PostgresGoalStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGoalStore creates a new PostgreSQL implementation of the
// GoalStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresGoalStore(db store.DBTX, logger *slog.Logger) *PostgresGoalStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGoalStore{
		db:     db,
		logger: logger.With(slog.String("component", "goal_store")),
	}
}

// Ensure PostgresGoalStore implements store.GoalStore interface
var _ store.GoalStore = (*PostgresGoalStore)(nil)

// Create implements store.GoalStore.Create
// Returns store.ErrInvalidEntity if the user does not exist.
func (s *PostgresGoalStore) Create(ctx context.Context, goal *domain.Goal) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := goal.Validate(); err != nil {
		log.Warn("goal validation failed during create",
			slog.String("error", err.Error()),
			slog.String("goal_id", goal.ID.String()))
		return err
	}

	query := `
		INSERT INTO goals (id, user_id, title, description, status, target_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.Status,
		goal.TargetDate,
		goal.CreatedAt,
		goal.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create goal",
			slog.String("error", err.Error()),
			slog.String("goal_id", goal.ID.String()),
			slog.String("user_id", goal.UserID.String()))
		return MapError(err)
	}

	log.Info("goal created successfully",
		slog.String("goal_id", goal.ID.String()),
		slog.String("user_id", goal.UserID.String()))
	return nil
}

// GetByID implements store.GoalStore.GetByID
func (s *PostgresGoalStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Goal, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, title, description, status, target_date, created_at, updated_at
		FROM goals
		WHERE id = $1 AND user_id = $2
	`

	var goal domain.Goal
	var status string

	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Title,
		&goal.Description,
		&status,
		&goal.TargetDate,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGoalNotFound
		}
		log.Error("failed to get goal by ID",
			slog.String("error", err.Error()),
			slog.String("goal_id", id.String()))
		return nil, MapError(err)
	}

	goal.Status = domain.GoalStatus(status)
	return &goal, nil
}

// ListByUser implements store.GoalStore.ListByUser
func (s *PostgresGoalStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Goal, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, title, description, status, target_date, created_at, updated_at
		FROM goals
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.Error("failed to list goals",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	goals := make([]*domain.Goal, 0)
	for rows.Next() {
		var goal domain.Goal
		var status string
		if err := rows.Scan(
			&goal.ID,
			&goal.UserID,
			&goal.Title,
			&goal.Description,
			&status,
			&goal.TargetDate,
			&goal.CreatedAt,
			&goal.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		goal.Status = domain.GoalStatus(status)
		goals = append(goals, &goal)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return goals, nil
}

// Update implements store.GoalStore.Update
// Returns store.ErrGoalNotFound if the goal does not exist or belongs to
// another user.
func (s *PostgresGoalStore) Update(ctx context.Context, goal *domain.Goal) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := goal.Validate(); err != nil {
		log.Warn("goal validation failed during update",
			slog.String("error", err.Error()),
			slog.String("goal_id", goal.ID.String()))
		return err
	}

	query := `
		UPDATE goals
		SET title = $1, description = $2, status = $3, target_date = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		goal.Title,
		goal.Description,
		goal.Status,
		goal.TargetDate,
		goal.UpdatedAt,
		goal.ID,
		goal.UserID,
	)

	if err != nil {
		log.Error("failed to update goal",
			slog.String("error", err.Error()),
			slog.String("goal_id", goal.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rowsAffected == 0 {
		return store.ErrGoalNotFound
	}

	log.Info("goal updated successfully",
		slog.String("goal_id", goal.ID.String()),
		slog.String("status", string(goal.Status)))
	return nil
}

// Delete implements store.GoalStore.Delete
func (s *PostgresGoalStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM goals
		WHERE id = $1 AND user_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		log.Error("failed to delete goal",
			slog.String("error", err.Error()),
			slog.String("goal_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rowsAffected == 0 {
		return store.ErrGoalNotFound
	}

	log.Info("goal deleted successfully",
		slog.String("goal_id", id.String()))
	return nil
}
