package generation

import (
	"context"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
)

// PathDayPlan is one day of a generated curriculum, before it is persisted
// as a domain.PathDay.
type PathDayPlan struct {
	Title string
	Body  string
}

// Generator is the boundary between the application core and the external
// LLM gateway. All methods are best-effort remote calls: implementations
// retry transient failures and classify permanent ones with the sentinel
// errors in this package.
type Generator interface {
	// Summarize produces a short summary of the given text. The identity
	// seed, when non-empty, anchors the summary to the user's stated
	// direction.
	Summarize(ctx context.Context, text, identitySeed string) (string, error)

	// ExtractInsights derives short insight notes from the given text.
	// An empty slice is a valid result: not all content yields insights.
	ExtractInsights(ctx context.Context, text, identitySeed string, userID uuid.UUID) ([]*domain.Insight, error)

	// GenerateLearningPath produces an ordered multi-day curriculum for the
	// topic.
	GenerateLearningPath(ctx context.Context, topic, identitySeed string) ([]PathDayPlan, error)
}

// Embedder produces vector embeddings for semantic search.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
}
