package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/generation"
)

// PathService defines the learning path operations the generation task
// needs. Implemented by service.LearningPathService.
type PathService interface {
	// GetPath retrieves a learning path by its ID, regardless of owner.
	GetPath(ctx context.Context, pathID uuid.UUID) (*domain.LearningPath, error)

	// UpdatePathStatus updates a path's generation status.
	UpdatePathStatus(ctx context.Context, pathID uuid.UUID, status domain.PathStatus) error

	// CompletePathGeneration stores the generated days and marks the path
	// ready in a single transaction.
	CompletePathGeneration(ctx context.Context, pathID uuid.UUID, days []*domain.PathDay) error

	// ActiveSeedText returns the text of the user's active identity seed,
	// or the empty string when the user has none.
	ActiveSeedText(ctx context.Context, userID uuid.UUID) (string, error)
}

// pathGenerationPayload represents the serialized data stored in the task
type pathGenerationPayload struct {
	PathID uuid.UUID `json:"path_id"`
}

// PathGenerationTask implements the Task interface for generating the
// day-by-day curriculum of a learning path.
type PathGenerationTask struct {
	id        uuid.UUID
	pathID    uuid.UUID
	paths     PathService
	generator generation.Generator
	logger    *slog.Logger
	status    TaskStatus
}

// NewPathGenerationTask creates a new path generation task
func NewPathGenerationTask(
	pathID uuid.UUID,
	paths PathService,
	generator generation.Generator,
	logger *slog.Logger,
) (*PathGenerationTask, error) {
	if paths == nil {
		return nil, ErrNilPathService
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if pathID == uuid.Nil {
		return nil, ErrEmptyPathID
	}

	return &PathGenerationTask{
		id:        uuid.New(),
		pathID:    pathID,
		paths:     paths,
		generator: generator,
		logger:    logger.With("task_type", TaskTypePathGeneration, "path_id", pathID),
		status:    TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *PathGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *PathGenerationTask) Type() string {
	return TaskTypePathGeneration
}

// Payload returns the task data as a byte slice
func (t *PathGenerationTask) Payload() []byte {
	payload := pathGenerationPayload{
		PathID: t.pathID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *PathGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute generates the curriculum for the path and stores it. Any failure
// marks the path failed so the client is not left polling a path that will
// never become ready.
func (t *PathGenerationTask) Execute(ctx context.Context) error {
	log := t.logger

	path, err := t.paths.GetPath(ctx, t.pathID)
	if err != nil {
		return fmt.Errorf("failed to get learning path: %w", err)
	}

	if err := t.paths.UpdatePathStatus(ctx, path.ID, domain.PathStatusProcessing); err != nil {
		return fmt.Errorf("failed to mark path as processing: %w", err)
	}

	seedText, err := t.paths.ActiveSeedText(ctx, path.UserID)
	if err != nil {
		log.Warn("failed to load active identity seed, proceeding without one", "error", err)
		seedText = ""
	}

	plans, err := t.generator.GenerateLearningPath(ctx, path.Topic, seedText)
	if err != nil {
		log.Error("path generation failed", "error", err)
		if statusErr := t.paths.UpdatePathStatus(ctx, path.ID, domain.PathStatusFailed); statusErr != nil {
			log.Error("failed to mark path as failed", "error", statusErr)
		}
		return fmt.Errorf("path generation failed: %w", err)
	}

	days := make([]*domain.PathDay, 0, len(plans))
	for i, plan := range plans {
		day, err := domain.NewPathDay(path.ID, i+1, plan.Title, plan.Body)
		if err != nil {
			log.Error("generated day failed validation", "day_index", i+1, "error", err)
			if statusErr := t.paths.UpdatePathStatus(ctx, path.ID, domain.PathStatusFailed); statusErr != nil {
				log.Error("failed to mark path as failed", "error", statusErr)
			}
			return fmt.Errorf("generated day %d failed validation: %w", i+1, err)
		}
		days = append(days, day)
	}

	if err := t.paths.CompletePathGeneration(ctx, path.ID, days); err != nil {
		return fmt.Errorf("failed to store generated days: %w", err)
	}

	log.Info("learning path generated", "days", len(days))
	return nil
}
