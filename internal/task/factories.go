package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/generation"
)

// DocumentIngestionTaskFactory creates document ingestion tasks with their
// dependencies already wired.
type DocumentIngestionTaskFactory struct {
	documents DocumentService
	files     FileStore
	extractor Extractor
	generator generation.Generator
	embedder  generation.Embedder
	logger    *slog.Logger
}

// NewDocumentIngestionTaskFactory creates a new factory.
// embedder may be nil.
func NewDocumentIngestionTaskFactory(
	documents DocumentService,
	files FileStore,
	extractor Extractor,
	generator generation.Generator,
	embedder generation.Embedder,
	logger *slog.Logger,
) *DocumentIngestionTaskFactory {
	return &DocumentIngestionTaskFactory{
		documents: documents,
		files:     files,
		extractor: extractor,
		generator: generator,
		embedder:  embedder,
		logger:    logger,
	}
}

// CreateTask builds an ingestion task for the given document.
func (f *DocumentIngestionTaskFactory) CreateTask(documentID uuid.UUID) (*DocumentIngestionTask, error) {
	return NewDocumentIngestionTask(
		documentID,
		f.documents,
		f.files,
		f.extractor,
		f.generator,
		f.embedder,
		f.logger,
	)
}

// PathGenerationTaskFactory creates path generation tasks with their
// dependencies already wired.
type PathGenerationTaskFactory struct {
	paths     PathService
	generator generation.Generator
	logger    *slog.Logger
}

// NewPathGenerationTaskFactory creates a new factory.
func NewPathGenerationTaskFactory(
	paths PathService,
	generator generation.Generator,
	logger *slog.Logger,
) *PathGenerationTaskFactory {
	return &PathGenerationTaskFactory{
		paths:     paths,
		generator: generator,
		logger:    logger,
	}
}

// CreateTask builds a generation task for the given path.
func (f *PathGenerationTaskFactory) CreateTask(pathID uuid.UUID) (*PathGenerationTask, error) {
	return NewPathGenerationTask(
		pathID,
		f.paths,
		f.generator,
		f.logger,
	)
}

// NewReconstructor returns a Reconstructor that rebuilds executable tasks
// from persisted rows using the given factories. It is installed on the
// TaskRunner so crash recovery can requeue work.
func NewReconstructor(
	documents *DocumentIngestionTaskFactory,
	paths *PathGenerationTaskFactory,
) Reconstructor {
	return func(taskType string, taskID uuid.UUID, payload []byte) (Task, error) {
		switch taskType {
		case TaskTypeDocumentIngestion:
			var p documentIngestionPayload
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, fmt.Errorf("failed to unmarshal ingestion payload: %w", err)
			}
			t, err := documents.CreateTask(p.DocumentID)
			if err != nil {
				return nil, err
			}
			t.id = taskID
			return t, nil

		case TaskTypePathGeneration:
			var p pathGenerationPayload
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, fmt.Errorf("failed to unmarshal path payload: %w", err)
			}
			t, err := paths.CreateTask(p.PathID)
			if err != nil {
				return nil, err
			}
			t.id = taskID
			return t, nil

		default:
			return nil, fmt.Errorf("unknown task type %q", taskType)
		}
	}
}
