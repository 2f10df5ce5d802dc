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

// PostgresDocumentStore implements the store.DocumentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDocumentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDocumentStore creates a new PostgreSQL implementation of the
// DocumentStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresDocumentStore(db store.DBTX, logger *slog.Logger) *PostgresDocumentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDocumentStore{
		db:     db,
		logger: logger.With(slog.String("component", "document_store")),
	}
}

// Ensure PostgresDocumentStore implements store.DocumentStore interface
var _ store.DocumentStore = (*PostgresDocumentStore)(nil)

const documentColumns = `id, user_id, source, original_name, source_url, mime_type,
	storage_key, status, extracted_text, extraction_method, summary, created_at, updated_at`

// Create implements store.DocumentStore.Create
// Returns store.ErrInvalidEntity if the user does not exist.
func (s *PostgresDocumentStore) Create(ctx context.Context, doc *domain.Document) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := doc.Validate(); err != nil {
		log.Warn("document validation failed during create",
			slog.String("error", err.Error()),
			slog.String("document_id", doc.ID.String()))
		return err
	}

	query := `
		INSERT INTO documents (id, user_id, source, original_name, source_url, mime_type,
			storage_key, status, extracted_text, extraction_method, summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.Source,
		doc.OriginalName,
		doc.SourceURL,
		doc.MimeType,
		doc.StorageKey,
		doc.Status,
		doc.ExtractedText,
		doc.ExtractionMethod,
		doc.Summary,
		doc.CreatedAt,
		doc.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create document",
			slog.String("error", err.Error()),
			slog.String("document_id", doc.ID.String()),
			slog.String("user_id", doc.UserID.String()))
		return MapError(err)
	}

	log.Info("document created successfully",
		slog.String("document_id", doc.ID.String()),
		slog.String("user_id", doc.UserID.String()),
		slog.String("source", string(doc.Source)))
	return nil
}

// GetByID implements store.DocumentStore.GetByID
func (s *PostgresDocumentStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1 AND user_id = $2
	`
	return s.scanDocument(ctx, query, id, userID)
}

// Get implements store.DocumentStore.Get
// It is not scoped to a user; background tasks use it.
func (s *PostgresDocumentStore) Get(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1
	`
	return s.scanDocument(ctx, query, id)
}

func (s *PostgresDocumentStore) scanDocument(ctx context.Context, query string, args ...any) (*domain.Document, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var doc domain.Document
	var source, status, method string

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&doc.ID,
		&doc.UserID,
		&source,
		&doc.OriginalName,
		&doc.SourceURL,
		&doc.MimeType,
		&doc.StorageKey,
		&status,
		&doc.ExtractedText,
		&method,
		&doc.Summary,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDocumentNotFound
		}
		log.Error("failed to get document",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	doc.Source = domain.DocumentSource(source)
	doc.Status = domain.DocumentStatus(status)
	doc.ExtractionMethod = domain.ExtractionMethod(method)
	return &doc, nil
}

// ListByUser implements store.DocumentStore.ListByUser
func (s *PostgresDocumentStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Document, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.Error("failed to list documents",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	docs := make([]*domain.Document, 0)
	for rows.Next() {
		var doc domain.Document
		var source, status, method string
		if err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&source,
			&doc.OriginalName,
			&doc.SourceURL,
			&doc.MimeType,
			&doc.StorageKey,
			&status,
			&doc.ExtractedText,
			&method,
			&doc.Summary,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		doc.Source = domain.DocumentSource(source)
		doc.Status = domain.DocumentStatus(status)
		doc.ExtractionMethod = domain.ExtractionMethod(method)
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return docs, nil
}

// UpdateStatus implements store.DocumentStore.UpdateStatus
// Returns store.ErrDocumentNotFound if the document does not exist.
func (s *PostgresDocumentStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate the status transition target before touching the row.
	temp := &domain.Document{}
	if err := temp.UpdateStatus(status); err != nil {
		log.Warn("invalid document status",
			slog.String("document_id", id.String()),
			slog.String("status", string(status)))
		return err
	}

	query := `
		UPDATE documents
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update document status",
			slog.String("error", err.Error()),
			slog.String("document_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rowsAffected == 0 {
		return store.ErrDocumentNotFound
	}

	log.Info("document status updated",
		slog.String("document_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// SetExtraction implements store.DocumentStore.SetExtraction
// Returns store.ErrDocumentNotFound if the document does not exist.
func (s *PostgresDocumentStore) SetExtraction(ctx context.Context, id uuid.UUID, text string, method domain.ExtractionMethod) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE documents
		SET extracted_text = $1, extraction_method = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query, text, method, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to set document extraction",
			slog.String("error", err.Error()),
			slog.String("document_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rowsAffected == 0 {
		return store.ErrDocumentNotFound
	}

	log.Info("document extraction recorded",
		slog.String("document_id", id.String()),
		slog.String("method", string(method)),
		slog.Int("text_length", len(text)))
	return nil
}

// SetSummary implements store.DocumentStore.SetSummary
// Returns store.ErrDocumentNotFound if the document does not exist.
func (s *PostgresDocumentStore) SetSummary(ctx context.Context, id uuid.UUID, summary string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE documents
		SET summary = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, summary, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to set document summary",
			slog.String("error", err.Error()),
			slog.String("document_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rowsAffected == 0 {
		return store.ErrDocumentNotFound
	}

	return nil
}

// Delete implements store.DocumentStore.Delete
func (s *PostgresDocumentStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM documents
		WHERE id = $1 AND user_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		log.Error("failed to delete document",
			slog.String("error", err.Error()),
			slog.String("document_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rowsAffected == 0 {
		return store.ErrDocumentNotFound
	}

	log.Info("document deleted successfully",
		slog.String("document_id", id.String()))
	return nil
}

// WithTx implements store.DocumentStore.WithTx
// It returns a new store instance backed by the given transaction.
func (s *PostgresDocumentStore) WithTx(tx *sql.Tx) store.DocumentStore {
	return &PostgresDocumentStore{
		db:     tx,
		logger: s.logger,
	}
}
