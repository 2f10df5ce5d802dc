package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
)

// InsightSearchResult pairs an insight with its similarity score from a
// semantic search. Score is cosine similarity in [0, 1], higher is closer.
type InsightSearchResult struct {
	Insight *domain.Insight
	Score   float64
}

// InsightStore defines the interface for insight persistence and search.
type InsightStore interface {
	// Create saves a new insight, including its embedding when present.
	// Returns ErrInvalidEntity if a referenced entity does not exist.
	Create(ctx context.Context, insight *domain.Insight) error

	// GetByID retrieves an insight by ID, scoped to the owning user.
	// Returns ErrInsightNotFound if it does not exist or belongs to another user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Insight, error)

	// ListByUser returns the user's insights, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Insight, error)

	// Search performs a cosine-similarity search over the user's embedded
	// insights. Insights without embeddings are not candidates.
	Search(ctx context.Context, userID uuid.UUID, embedding []float32, limit int) ([]InsightSearchResult, error)

	// Delete removes an insight.
	// Returns ErrInsightNotFound if it does not exist or belongs to another user.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a new InsightStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) InsightStore
}
