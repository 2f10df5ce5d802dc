package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/events"
	"github.com/arborhq/arbor-api/internal/store"
	"github.com/arborhq/arbor-api/internal/task"
)

// LearningPathService manages learning paths and exposes the operations
// the background generation task needs (task.PathService).
type LearningPathService interface {
	task.PathService

	// CreatePath creates a pending learning path for the topic and
	// enqueues curriculum generation.
	CreatePath(ctx context.Context, userID uuid.UUID, topic string) (*domain.LearningPath, error)

	// GetUserPath retrieves a path with its days, owned by the user.
	GetUserPath(ctx context.Context, userID, pathID uuid.UUID) (*domain.LearningPath, error)

	// ListPaths returns the user's paths without days, newest first.
	ListPaths(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.LearningPath, error)

	// CompleteDay marks a day of a path completed. Completing an
	// already-completed day is a no-op.
	CompleteDay(ctx context.Context, userID, pathID, dayID uuid.UUID) (*domain.PathDay, error)

	// DeletePath removes a path and its days.
	DeletePath(ctx context.Context, userID, pathID uuid.UUID) error
}

type learningPathServiceImpl struct {
	pathStore    store.LearningPathStore
	seedStore    store.IdentitySeedStore
	eventEmitter events.EventEmitter
	db           *sql.DB
	logger       *slog.Logger
}

// NewLearningPathService creates a new LearningPathService.
func NewLearningPathService(
	pathStore store.LearningPathStore,
	seedStore store.IdentitySeedStore,
	eventEmitter events.EventEmitter,
	db *sql.DB,
	logger *slog.Logger,
) (LearningPathService, error) {
	if pathStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "pathStore cannot be nil"}
	}
	if seedStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "seedStore cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &learningPathServiceImpl{
		pathStore:    pathStore,
		seedStore:    seedStore,
		eventEmitter: eventEmitter,
		db:           db,
		logger:       logger.With(slog.String("component", "learning_path_service")),
	}, nil
}

func (s *learningPathServiceImpl) CreatePath(
	ctx context.Context,
	userID uuid.UUID,
	topic string,
) (*domain.LearningPath, error) {
	path, err := domain.NewLearningPath(userID, topic)
	if err != nil {
		return nil, NewServiceError("create_path", "invalid learning path", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.pathStore.WithTx(tx).Create(ctx, path)
	})
	if err != nil {
		return nil, NewServiceError("create_path", "failed to save learning path", err)
	}

	event, err := events.NewTaskRequestEvent(
		task.TaskTypePathGeneration,
		events.PathGenerationPayload{PathID: path.ID},
	)
	if err != nil {
		return nil, NewServiceError("create_path", "failed to create generation event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		return nil, NewServiceError("create_path", "failed to emit generation event", err)
	}

	s.logger.Info("learning path created",
		slog.String("path_id", path.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("topic", topic))

	return path, nil
}

func (s *learningPathServiceImpl) GetUserPath(
	ctx context.Context,
	userID, pathID uuid.UUID,
) (*domain.LearningPath, error) {
	path, err := s.pathStore.GetByID(ctx, userID, pathID)
	if err != nil {
		return nil, NewServiceError("get_path", "failed to retrieve learning path", err)
	}
	return path, nil
}

func (s *learningPathServiceImpl) ListPaths(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.LearningPath, error) {
	paths, err := s.pathStore.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewServiceError("list_paths", "failed to list learning paths", err)
	}
	return paths, nil
}

func (s *learningPathServiceImpl) CompleteDay(
	ctx context.Context,
	userID, pathID, dayID uuid.UUID,
) (*domain.PathDay, error) {
	day, err := s.pathStore.CompleteDay(ctx, userID, pathID, dayID)
	if err != nil {
		return nil, NewServiceError("complete_day", "failed to complete path day", err)
	}

	s.logger.Info("path day completed",
		slog.String("path_id", pathID.String()),
		slog.String("day_id", dayID.String()),
		slog.Int("day_index", day.DayIndex))

	return day, nil
}

func (s *learningPathServiceImpl) DeletePath(ctx context.Context, userID, pathID uuid.UUID) error {
	if err := s.pathStore.Delete(ctx, userID, pathID); err != nil {
		return NewServiceError("delete_path", "failed to delete learning path", err)
	}
	return nil
}

// GetPath retrieves a path regardless of owner. Part of the generation
// task contract.
func (s *learningPathServiceImpl) GetPath(ctx context.Context, pathID uuid.UUID) (*domain.LearningPath, error) {
	path, err := s.pathStore.Get(ctx, pathID)
	if err != nil {
		return nil, NewServiceError("get_path", "failed to retrieve learning path", err)
	}
	return path, nil
}

// UpdatePathStatus updates a path's generation status. Part of the
// generation task contract.
func (s *learningPathServiceImpl) UpdatePathStatus(
	ctx context.Context,
	pathID uuid.UUID,
	status domain.PathStatus,
) error {
	if err := s.pathStore.UpdateStatus(ctx, pathID, status); err != nil {
		return NewServiceError("update_path_status", "failed to update status", err)
	}
	return nil
}

// CompletePathGeneration stores the generated days and marks the path
// completed in one transaction. Part of the generation task contract.
func (s *learningPathServiceImpl) CompletePathGeneration(
	ctx context.Context,
	pathID uuid.UUID,
	days []*domain.PathDay,
) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.pathStore.WithTx(tx)

		if err := txStore.CreateDays(ctx, days); err != nil {
			return err
		}
		return txStore.UpdateStatus(ctx, pathID, domain.PathStatusCompleted)
	})
	if err != nil {
		return NewServiceError("complete_path_generation", "failed to store generated days", err)
	}

	s.logger.Info("learning path generation completed",
		slog.String("path_id", pathID.String()),
		slog.Int("day_count", len(days)))

	return nil
}

// ActiveSeedText returns the user's active identity seed text, or the
// empty string when the user has none. Part of the generation task contract.
func (s *learningPathServiceImpl) ActiveSeedText(ctx context.Context, userID uuid.UUID) (string, error) {
	seed, err := s.seedStore.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrSeedNotFound) {
			return "", nil
		}
		return "", NewServiceError("active_seed_text", "failed to retrieve active seed", err)
	}
	return seed.Text, nil
}
