package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arborhq/arbor-api/internal/events"
)

// TaskFactoryEventHandler implements the events.EventHandler interface.
// It turns task request events into concrete tasks and submits them to the
// runner. Events of a type it does not know are ignored so additional
// handlers can coexist on the same emitter.
type TaskFactoryEventHandler struct {
	documents *DocumentIngestionTaskFactory
	paths     *PathGenerationTaskFactory
	runner    *TaskRunner
	logger    *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler backed by the
// given factories and runner.
func NewTaskFactoryEventHandler(
	documents *DocumentIngestionTaskFactory,
	paths *PathGenerationTaskFactory,
	runner *TaskRunner,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		documents: documents,
		paths:     paths,
		runner:    runner,
		logger:    logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent processes events by creating and submitting tasks.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	log := h.logger.With("event_id", event.ID, "event_type", event.Type)

	var created Task

	switch event.Type {
	case TaskTypeDocumentIngestion:
		var payload events.DocumentIngestionPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			log.Error("failed to unmarshal payload", "error", err)
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}

		t, err := h.documents.CreateTask(payload.DocumentID)
		if err != nil {
			log.Error("failed to create ingestion task", "error", err)
			return fmt.Errorf("failed to create ingestion task: %w", err)
		}
		created = t

	case TaskTypePathGeneration:
		var payload events.PathGenerationPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			log.Error("failed to unmarshal payload", "error", err)
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}

		t, err := h.paths.CreateTask(payload.PathID)
		if err != nil {
			log.Error("failed to create path generation task", "error", err)
			return fmt.Errorf("failed to create path generation task: %w", err)
		}
		created = t

	default:
		log.Debug("ignoring event with unsupported type")
		return nil
	}

	if err := h.runner.Submit(ctx, created); err != nil {
		log.Error("failed to submit task", "task_id", created.ID(), "error", err)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	log.Info("task submitted", "task_id", created.ID(), "task_type", created.Type())
	return nil
}
