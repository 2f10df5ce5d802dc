package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/extract"
	"github.com/arborhq/arbor-api/internal/generation"
)

// Common errors
var (
	ErrNilDocumentService = errors.New("document service cannot be nil")
	ErrNilPathService     = errors.New("path service cannot be nil")
	ErrNilExtractor       = errors.New("extractor cannot be nil")
	ErrNilFileStore       = errors.New("file store cannot be nil")
	ErrNilGenerator       = errors.New("generator cannot be nil")
	ErrNilLogger          = errors.New("logger cannot be nil")
	ErrEmptyDocumentID    = errors.New("document ID cannot be empty")
	ErrEmptyPathID        = errors.New("path ID cannot be empty")
)

// DocumentService defines the document operations the ingestion task needs.
// Implemented by service.DocumentService.
type DocumentService interface {
	// GetDocument retrieves a document by its ID, regardless of owner.
	GetDocument(ctx context.Context, documentID uuid.UUID) (*domain.Document, error)

	// UpdateDocumentStatus updates a document's ingestion status.
	UpdateDocumentStatus(ctx context.Context, documentID uuid.UUID, status domain.DocumentStatus) error

	// RecordExtraction stores the pipeline result for a document.
	RecordExtraction(ctx context.Context, documentID uuid.UUID, text string, method domain.ExtractionMethod) error

	// RecordSummary stores the AI summary for a document.
	RecordSummary(ctx context.Context, documentID uuid.UUID, summary string) error

	// SaveInsights persists generated insights atomically.
	SaveInsights(ctx context.Context, insights []*domain.Insight) error

	// ActiveSeedText returns the text of the user's active identity seed,
	// or the empty string when the user has none.
	ActiveSeedText(ctx context.Context, userID uuid.UUID) (string, error)
}

// FileStore provides read access to uploaded document files.
// Implemented by gcs.Bucket.
type FileStore interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

// Extractor runs the text-extraction strategy chain.
// Implemented by extract.Pipeline.
type Extractor interface {
	Extract(ctx context.Context, src extract.Source) (*extract.Result, error)
}

// documentIngestionPayload represents the serialized data stored in the task
type documentIngestionPayload struct {
	DocumentID uuid.UUID `json:"document_id"`
}

// DocumentIngestionTask implements the Task interface for ingesting a
// submitted document: extracting its text, summarizing it, and deriving
// insights anchored to the user's active identity seed.
type DocumentIngestionTask struct {
	id         uuid.UUID
	documentID uuid.UUID
	documents  DocumentService
	files      FileStore
	extractor  Extractor
	generator  generation.Generator
	embedder   generation.Embedder
	logger     *slog.Logger
	status     TaskStatus
}

// NewDocumentIngestionTask creates a new document ingestion task.
// embedder may be nil, in which case insights are stored without vectors.
func NewDocumentIngestionTask(
	documentID uuid.UUID,
	documents DocumentService,
	files FileStore,
	extractor Extractor,
	generator generation.Generator,
	embedder generation.Embedder,
	logger *slog.Logger,
) (*DocumentIngestionTask, error) {
	if documents == nil {
		return nil, ErrNilDocumentService
	}
	if files == nil {
		return nil, ErrNilFileStore
	}
	if extractor == nil {
		return nil, ErrNilExtractor
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if documentID == uuid.Nil {
		return nil, ErrEmptyDocumentID
	}

	return &DocumentIngestionTask{
		id:         uuid.New(),
		documentID: documentID,
		documents:  documents,
		files:      files,
		extractor:  extractor,
		generator:  generator,
		embedder:   embedder,
		logger:     logger.With("task_type", TaskTypeDocumentIngestion, "document_id", documentID),
		status:     TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *DocumentIngestionTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *DocumentIngestionTask) Type() string {
	return TaskTypeDocumentIngestion
}

// Payload returns the task data as a byte slice
func (t *DocumentIngestionTask) Payload() []byte {
	payload := documentIngestionPayload{
		DocumentID: t.documentID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *DocumentIngestionTask) Status() TaskStatus {
	return t.status
}

// Execute runs the full ingestion lifecycle. Extraction failure marks the
// document failed; an extraction that only produced the placeholder, or an
// LLM stage that errored after usable text was stored, marks it completed
// with errors so the user still sees whatever was salvaged.
func (t *DocumentIngestionTask) Execute(ctx context.Context) error {
	log := t.logger

	doc, err := t.documents.GetDocument(ctx, t.documentID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if err := t.documents.UpdateDocumentStatus(ctx, doc.ID, domain.DocumentStatusProcessing); err != nil {
		return fmt.Errorf("failed to mark document as processing: %w", err)
	}

	result, err := t.runExtraction(ctx, doc)
	if err != nil {
		log.Error("extraction failed", "error", err)
		if statusErr := t.documents.UpdateDocumentStatus(ctx, doc.ID, domain.DocumentStatusFailed); statusErr != nil {
			log.Error("failed to mark document as failed", "error", statusErr)
		}
		return fmt.Errorf("extraction failed: %w", err)
	}

	if err := t.documents.RecordExtraction(ctx, doc.ID, result.Text, result.Method); err != nil {
		return fmt.Errorf("failed to record extraction: %w", err)
	}

	if len(result.Warnings) > 0 {
		log.Warn("extraction completed with degraded strategies",
			"method", result.Method,
			"warnings", result.Warnings)
	}

	// Nothing was extracted; skip the LLM stages rather than summarizing
	// the placeholder.
	if result.Fallback() {
		if err := t.documents.UpdateDocumentStatus(ctx, doc.ID, domain.DocumentStatusCompletedWithErrors); err != nil {
			return fmt.Errorf("failed to update document status: %w", err)
		}
		return nil
	}

	seedText, err := t.documents.ActiveSeedText(ctx, doc.UserID)
	if err != nil {
		log.Warn("failed to load active identity seed, proceeding without one", "error", err)
		seedText = ""
	}

	llmFailed := false

	summary, err := t.generator.Summarize(ctx, result.Text, seedText)
	if err != nil {
		log.Error("summarization failed", "error", err)
		llmFailed = true
	} else if err := t.documents.RecordSummary(ctx, doc.ID, summary); err != nil {
		return fmt.Errorf("failed to record summary: %w", err)
	}

	insights, err := t.generator.ExtractInsights(ctx, result.Text, seedText, doc.UserID)
	if err != nil {
		log.Error("insight extraction failed", "error", err)
		llmFailed = true
	} else if len(insights) > 0 {
		for _, insight := range insights {
			docID := doc.ID
			insight.DocumentID = &docID
			t.embedInsight(ctx, insight)
		}
		if err := t.documents.SaveInsights(ctx, insights); err != nil {
			return fmt.Errorf("failed to save insights: %w", err)
		}
		log.Info("insights saved", "count", len(insights))
	}

	finalStatus := domain.DocumentStatusCompleted
	if llmFailed {
		finalStatus = domain.DocumentStatusCompletedWithErrors
	}

	if err := t.documents.UpdateDocumentStatus(ctx, doc.ID, finalStatus); err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}

	log.Info("document ingestion finished",
		"method", result.Method,
		"status", finalStatus)
	return nil
}

// runExtraction assembles the extraction source for the document and runs
// the pipeline. For uploads the file is downloaded from the bucket first.
func (t *DocumentIngestionTask) runExtraction(ctx context.Context, doc *domain.Document) (*extract.Result, error) {
	switch doc.Source {
	case domain.DocumentSourceUpload:
		reader, err := t.files.Download(ctx, doc.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("failed to download file %q: %w", doc.StorageKey, err)
		}
		defer func() { _ = reader.Close() }()

		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %q: %w", doc.StorageKey, err)
		}

		return t.extractor.Extract(ctx, extract.Source{
			Kind:     extract.SourceKindFile,
			Name:     doc.OriginalName,
			MimeType: doc.MimeType,
			Data:     data,
		})

	case domain.DocumentSourceURL:
		return t.extractor.Extract(ctx, extract.Source{
			Kind: extract.SourceKindURL,
			URL:  doc.SourceURL,
		})

	default:
		return nil, fmt.Errorf("unknown document source %q", doc.Source)
	}
}

// embedInsight attaches an embedding to the insight when an embedder is
// configured. Embedding failures are logged and skipped; the insight is
// still stored, it just won't surface in semantic search.
func (t *DocumentIngestionTask) embedInsight(ctx context.Context, insight *domain.Insight) {
	if t.embedder == nil {
		return
	}

	vector, err := t.embedder.Embed(ctx, insight.Text)
	if err != nil {
		t.logger.Warn("failed to embed insight, storing without vector",
			"insight_id", insight.ID,
			"error", err)
		return
	}
	insight.Embedding = vector
}
