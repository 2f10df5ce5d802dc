package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
)

// DocumentStore defines the interface for document persistence.
type DocumentStore interface {
	// Create saves a new document to the store.
	// Returns ErrInvalidEntity if the user does not exist.
	Create(ctx context.Context, doc *domain.Document) error

	// GetByID retrieves a document by ID, scoped to the owning user.
	// Returns ErrDocumentNotFound if it does not exist or belongs to another user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Document, error)

	// Get retrieves a document by ID regardless of owner. Used by background
	// tasks, which carry no authenticated user.
	Get(ctx context.Context, id uuid.UUID) (*domain.Document, error)

	// ListByUser returns the user's documents, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Document, error)

	// UpdateStatus updates the status of an existing document.
	// Returns ErrDocumentNotFound if the document does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus) error

	// SetExtraction records the extracted text and method for a document.
	// Returns ErrDocumentNotFound if the document does not exist.
	SetExtraction(ctx context.Context, id uuid.UUID, text string, method domain.ExtractionMethod) error

	// SetSummary records the AI summary for a document.
	// Returns ErrDocumentNotFound if the document does not exist.
	SetSummary(ctx context.Context, id uuid.UUID, summary string) error

	// Delete removes a document.
	// Returns ErrDocumentNotFound if it does not exist or belongs to another user.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a new DocumentStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) DocumentStore
}
