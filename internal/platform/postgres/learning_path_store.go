package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/platform/logger"
	"github.com/arborhq/arbor-api/internal/store"
)

// PostgresLearningPathStore implements the store.LearningPathStore interface
// using a PostgreSQL database as the storage backend. Path days live in
// their own table and are loaded by GetByID.
type PostgresLearningPathStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLearningPathStore creates a new PostgreSQL implementation of
// the LearningPathStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresLearningPathStore(db store.DBTX, logger *slog.Logger) *PostgresLearningPathStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLearningPathStore{
		db:     db,
		logger: logger.With(slog.String("component", "learning_path_store")),
	}
}

// Ensure PostgresLearningPathStore implements store.LearningPathStore interface
var _ store.LearningPathStore = (*PostgresLearningPathStore)(nil)

// Create implements store.LearningPathStore.Create
// Returns store.ErrInvalidEntity if the user does not exist.
func (s *PostgresLearningPathStore) Create(ctx context.Context, path *domain.LearningPath) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := path.Validate(); err != nil {
		log.Warn("learning path validation failed during create",
			slog.String("error", err.Error()),
			slog.String("path_id", path.ID.String()))
		return err
	}

	query := `
		INSERT INTO learning_paths (id, user_id, topic, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		path.ID,
		path.UserID,
		path.Topic,
		path.Status,
		path.CreatedAt,
		path.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create learning path",
			slog.String("error", err.Error()),
			slog.String("path_id", path.ID.String()),
			slog.String("user_id", path.UserID.String()))
		return MapError(err)
	}

	log.Info("learning path created successfully",
		slog.String("path_id", path.ID.String()),
		slog.String("user_id", path.UserID.String()),
		slog.String("topic", path.Topic))
	return nil
}

// GetByID implements store.LearningPathStore.GetByID
// The returned path includes its days ordered by day index.
func (s *PostgresLearningPathStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.LearningPath, error) {
	query := `
		SELECT id, user_id, topic, status, created_at, updated_at
		FROM learning_paths
		WHERE id = $1 AND user_id = $2
	`

	path, err := s.scanPath(ctx, query, id, userID)
	if err != nil {
		return nil, err
	}

	days, err := s.listDays(ctx, path.ID)
	if err != nil {
		return nil, err
	}
	path.Days = days

	return path, nil
}

// Get implements store.LearningPathStore.Get
// It is not scoped to a user; background tasks use it.
func (s *PostgresLearningPathStore) Get(ctx context.Context, id uuid.UUID) (*domain.LearningPath, error) {
	query := `
		SELECT id, user_id, topic, status, created_at, updated_at
		FROM learning_paths
		WHERE id = $1
	`
	return s.scanPath(ctx, query, id)
}

func (s *PostgresLearningPathStore) scanPath(ctx context.Context, query string, args ...any) (*domain.LearningPath, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var path domain.LearningPath
	var status string

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&path.ID,
		&path.UserID,
		&path.Topic,
		&status,
		&path.CreatedAt,
		&path.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPathNotFound
		}
		log.Error("failed to get learning path",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	path.Status = domain.PathStatus(status)
	return &path, nil
}

func (s *PostgresLearningPathStore) listDays(ctx context.Context, pathID uuid.UUID) ([]*domain.PathDay, error) {
	query := `
		SELECT id, path_id, day_index, title, body, completed, completed_at, created_at, updated_at
		FROM path_days
		WHERE path_id = $1
		ORDER BY day_index ASC
	`

	rows, err := s.db.QueryContext(ctx, query, pathID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	days := make([]*domain.PathDay, 0)
	for rows.Next() {
		var day domain.PathDay
		if err := rows.Scan(
			&day.ID,
			&day.PathID,
			&day.DayIndex,
			&day.Title,
			&day.Body,
			&day.Completed,
			&day.CompletedAt,
			&day.CreatedAt,
			&day.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		days = append(days, &day)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return days, nil
}

// ListByUser implements store.LearningPathStore.ListByUser
// Days are not loaded for list views.
func (s *PostgresLearningPathStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.LearningPath, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, topic, status, created_at, updated_at
		FROM learning_paths
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.Error("failed to list learning paths",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	paths := make([]*domain.LearningPath, 0)
	for rows.Next() {
		var path domain.LearningPath
		var status string
		if err := rows.Scan(
			&path.ID,
			&path.UserID,
			&path.Topic,
			&status,
			&path.CreatedAt,
			&path.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		path.Status = domain.PathStatus(status)
		paths = append(paths, &path)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return paths, nil
}

// UpdateStatus implements store.LearningPathStore.UpdateStatus
// Returns store.ErrPathNotFound if the path does not exist.
func (s *PostgresLearningPathStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PathStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	temp := &domain.LearningPath{}
	if err := temp.UpdateStatus(status); err != nil {
		log.Warn("invalid learning path status",
			slog.String("path_id", id.String()),
			slog.String("status", string(status)))
		return err
	}

	query := `
		UPDATE learning_paths
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update learning path status",
			slog.String("error", err.Error()),
			slog.String("path_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rowsAffected == 0 {
		return store.ErrPathNotFound
	}

	log.Info("learning path status updated",
		slog.String("path_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// CreateDays implements store.LearningPathStore.CreateDays
// Days are inserted one by one; callers run this inside a transaction.
func (s *PostgresLearningPathStore) CreateDays(ctx context.Context, days []*domain.PathDay) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO path_days (id, path_id, day_index, title, body, completed, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, day := range days {
		if err := day.Validate(); err != nil {
			log.Warn("path day validation failed during create",
				slog.String("error", err.Error()),
				slog.String("day_id", day.ID.String()))
			return err
		}

		_, err := s.db.ExecContext(
			ctx,
			query,
			day.ID,
			day.PathID,
			day.DayIndex,
			day.Title,
			day.Body,
			day.Completed,
			day.CompletedAt,
			day.CreatedAt,
			day.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to create path day",
				slog.String("error", err.Error()),
				slog.String("day_id", day.ID.String()),
				slog.String("path_id", day.PathID.String()))
			return MapError(err)
		}
	}

	log.Info("path days created successfully",
		slog.Int("count", len(days)))
	return nil
}

// CompleteDay implements store.LearningPathStore.CompleteDay
// Marking an already-completed day again leaves its completion time alone.
func (s *PostgresLearningPathStore) CompleteDay(ctx context.Context, userID, pathID, dayID uuid.UUID) (*domain.PathDay, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE path_days
		SET completed = TRUE,
			completed_at = COALESCE(completed_at, $1),
			updated_at = $1
		FROM learning_paths
		WHERE path_days.id = $2
			AND path_days.path_id = $3
			AND learning_paths.id = path_days.path_id
			AND learning_paths.user_id = $4
		RETURNING path_days.id, path_days.path_id, path_days.day_index, path_days.title,
			path_days.body, path_days.completed, path_days.completed_at,
			path_days.created_at, path_days.updated_at
	`

	var day domain.PathDay
	err := s.db.QueryRowContext(ctx, query, time.Now().UTC(), dayID, pathID, userID).Scan(
		&day.ID,
		&day.PathID,
		&day.DayIndex,
		&day.Title,
		&day.Body,
		&day.Completed,
		&day.CompletedAt,
		&day.CreatedAt,
		&day.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPathDayNotFound
		}
		log.Error("failed to complete path day",
			slog.String("error", err.Error()),
			slog.String("day_id", dayID.String()))
		return nil, MapError(err)
	}

	log.Info("path day completed",
		slog.String("day_id", dayID.String()),
		slog.String("path_id", pathID.String()),
		slog.Int("day_index", day.DayIndex))
	return &day, nil
}

// Delete implements store.LearningPathStore.Delete
// Days are removed by the ON DELETE CASCADE constraint.
func (s *PostgresLearningPathStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM learning_paths
		WHERE id = $1 AND user_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		log.Error("failed to delete learning path",
			slog.String("error", err.Error()),
			slog.String("path_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rowsAffected == 0 {
		return store.ErrPathNotFound
	}

	log.Info("learning path deleted successfully",
		slog.String("path_id", id.String()))
	return nil
}

// WithTx implements store.LearningPathStore.WithTx
// It returns a new store instance backed by the given transaction.
func (s *PostgresLearningPathStore) WithTx(tx *sql.Tx) store.LearningPathStore {
	return &PostgresLearningPathStore{
		db:     tx,
		logger: s.logger,
	}
}
