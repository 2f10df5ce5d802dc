package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/events"
	"github.com/arborhq/arbor-api/internal/store"
	"github.com/arborhq/arbor-api/internal/task"
)

// ObjectStore is the slice of the storage bucket the document service
// needs. Implemented by gcs.Bucket.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader) error
	Delete(ctx context.Context, key string) error
}

// DocumentService manages document submission and exposes the operations
// the background ingestion task needs (task.DocumentService).
type DocumentService interface {
	task.DocumentService

	// CreateUploadDocument stores the uploaded file in the bucket, creates
	// a pending document, and enqueues it for ingestion.
	CreateUploadDocument(ctx context.Context, userID uuid.UUID, originalName, mimeType string, data []byte) (*domain.Document, error)

	// CreateURLDocument creates a pending document for a remote page and
	// enqueues it for ingestion.
	CreateURLDocument(ctx context.Context, userID uuid.UUID, sourceURL string) (*domain.Document, error)

	// GetUserDocument retrieves a document owned by the user.
	GetUserDocument(ctx context.Context, userID, documentID uuid.UUID) (*domain.Document, error)

	// ListDocuments returns the user's documents, newest first.
	ListDocuments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Document, error)

	// DeleteDocument removes a document and, for uploads, its stored object.
	DeleteDocument(ctx context.Context, userID, documentID uuid.UUID) error
}

type documentServiceImpl struct {
	docStore     store.DocumentStore
	insightStore store.InsightStore
	seedStore    store.IdentitySeedStore
	objects      ObjectStore
	eventEmitter events.EventEmitter
	db           *sql.DB
	logger       *slog.Logger
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(
	docStore store.DocumentStore,
	insightStore store.InsightStore,
	seedStore store.IdentitySeedStore,
	objects ObjectStore,
	eventEmitter events.EventEmitter,
	db *sql.DB,
	logger *slog.Logger,
) (DocumentService, error) {
	if docStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "docStore cannot be nil"}
	}
	if insightStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "insightStore cannot be nil"}
	}
	if seedStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "seedStore cannot be nil"}
	}
	if objects == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "objects cannot be nil"}
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

	return &documentServiceImpl{
		docStore:     docStore,
		insightStore: insightStore,
		seedStore:    seedStore,
		objects:      objects,
		eventEmitter: eventEmitter,
		db:           db,
		logger:       logger.With(slog.String("component", "document_service")),
	}, nil
}

func (s *documentServiceImpl) CreateUploadDocument(
	ctx context.Context,
	userID uuid.UUID,
	originalName, mimeType string,
	data []byte,
) (*domain.Document, error) {
	if len(data) == 0 {
		return nil, NewServiceError("create_document", "uploaded file is empty", domain.ErrMissingStorageKey)
	}

	key := fmt.Sprintf("users/%s/documents/%s%s", userID, uuid.New(), path.Ext(originalName))

	doc, err := domain.NewUploadDocument(userID, originalName, mimeType, key)
	if err != nil {
		return nil, NewServiceError("create_document", "invalid document", err)
	}

	if err := s.objects.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		return nil, NewServiceError("create_document", "failed to store file", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.docStore.WithTx(tx).Create(ctx, doc)
	})
	if err != nil {
		// The row never existed, so the orphaned object is the only thing
		// to clean up.
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to clean up orphaned object",
				slog.String("error", delErr.Error()),
				slog.String("storage_key", key))
		}
		return nil, NewServiceError("create_document", "failed to save document", err)
	}

	if err := s.enqueueIngestion(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("upload document created",
		slog.String("document_id", doc.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("storage_key", key))

	return doc, nil
}

func (s *documentServiceImpl) CreateURLDocument(
	ctx context.Context,
	userID uuid.UUID,
	sourceURL string,
) (*domain.Document, error) {
	doc, err := domain.NewURLDocument(userID, sourceURL)
	if err != nil {
		return nil, NewServiceError("create_document", "invalid document", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.docStore.WithTx(tx).Create(ctx, doc)
	})
	if err != nil {
		return nil, NewServiceError("create_document", "failed to save document", err)
	}

	if err := s.enqueueIngestion(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("url document created",
		slog.String("document_id", doc.ID.String()),
		slog.String("user_id", userID.String()))

	return doc, nil
}

// enqueueIngestion emits the event that the task plumbing turns into a
// DocumentIngestionTask.
func (s *documentServiceImpl) enqueueIngestion(ctx context.Context, doc *domain.Document) error {
	event, err := events.NewTaskRequestEvent(
		task.TaskTypeDocumentIngestion,
		events.DocumentIngestionPayload{DocumentID: doc.ID},
	)
	if err != nil {
		return NewServiceError("create_document", "failed to create ingestion event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		return NewServiceError("create_document", "failed to emit ingestion event", err)
	}

	return nil
}

func (s *documentServiceImpl) GetUserDocument(
	ctx context.Context,
	userID, documentID uuid.UUID,
) (*domain.Document, error) {
	doc, err := s.docStore.GetByID(ctx, userID, documentID)
	if err != nil {
		return nil, NewServiceError("get_document", "failed to retrieve document", err)
	}
	return doc, nil
}

func (s *documentServiceImpl) ListDocuments(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Document, error) {
	docs, err := s.docStore.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewServiceError("list_documents", "failed to list documents", err)
	}
	return docs, nil
}

func (s *documentServiceImpl) DeleteDocument(ctx context.Context, userID, documentID uuid.UUID) error {
	doc, err := s.docStore.GetByID(ctx, userID, documentID)
	if err != nil {
		return NewServiceError("delete_document", "failed to retrieve document", err)
	}

	if err := s.docStore.Delete(ctx, userID, documentID); err != nil {
		return NewServiceError("delete_document", "failed to delete document", err)
	}

	if doc.StorageKey != "" {
		if err := s.objects.Delete(ctx, doc.StorageKey); err != nil {
			s.logger.Warn("failed to delete stored object",
				slog.String("error", err.Error()),
				slog.String("storage_key", doc.StorageKey))
		}
	}

	s.logger.Info("document deleted",
		slog.String("document_id", documentID.String()),
		slog.String("user_id", userID.String()))

	return nil
}

// GetDocument retrieves a document regardless of owner. Part of the
// ingestion task contract.
func (s *documentServiceImpl) GetDocument(ctx context.Context, documentID uuid.UUID) (*domain.Document, error) {
	doc, err := s.docStore.Get(ctx, documentID)
	if err != nil {
		return nil, NewServiceError("get_document", "failed to retrieve document", err)
	}
	return doc, nil
}

// UpdateDocumentStatus updates a document's ingestion status. Part of the
// ingestion task contract.
func (s *documentServiceImpl) UpdateDocumentStatus(
	ctx context.Context,
	documentID uuid.UUID,
	status domain.DocumentStatus,
) error {
	if err := s.docStore.UpdateStatus(ctx, documentID, status); err != nil {
		return NewServiceError("update_document_status", "failed to update status", err)
	}
	return nil
}

// RecordExtraction stores the pipeline result. Part of the ingestion task
// contract.
func (s *documentServiceImpl) RecordExtraction(
	ctx context.Context,
	documentID uuid.UUID,
	text string,
	method domain.ExtractionMethod,
) error {
	if err := s.docStore.SetExtraction(ctx, documentID, text, method); err != nil {
		return NewServiceError("record_extraction", "failed to record extraction", err)
	}
	return nil
}

// RecordSummary stores the AI summary. Part of the ingestion task contract.
func (s *documentServiceImpl) RecordSummary(ctx context.Context, documentID uuid.UUID, summary string) error {
	if err := s.docStore.SetSummary(ctx, documentID, summary); err != nil {
		return NewServiceError("record_summary", "failed to record summary", err)
	}
	return nil
}

// SaveInsights persists generated insights atomically. Part of the
// ingestion task contract.
func (s *documentServiceImpl) SaveInsights(ctx context.Context, insights []*domain.Insight) error {
	if len(insights) == 0 {
		return nil
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.insightStore.WithTx(tx)
		for _, insight := range insights {
			if err := txStore.Create(ctx, insight); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return NewServiceError("save_insights", "failed to save insights", err)
	}

	return nil
}

// ActiveSeedText returns the user's active identity seed text, or the
// empty string when the user has none. Part of the ingestion task contract.
func (s *documentServiceImpl) ActiveSeedText(ctx context.Context, userID uuid.UUID) (string, error) {
	seed, err := s.seedStore.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrSeedNotFound) {
			return "", nil
		}
		return "", NewServiceError("active_seed_text", "failed to retrieve active seed", err)
	}
	return seed.Text, nil
}
