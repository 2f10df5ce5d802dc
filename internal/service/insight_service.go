package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/generation"
	"github.com/arborhq/arbor-api/internal/store"
)

// maxSearchResults caps how many insights a semantic search returns.
const maxSearchResults = 50

// InsightService manages insights and semantic search over them.
type InsightService interface {
	// CreateInsight creates a user-authored insight. When an embedder is
	// configured the insight is embedded so it can surface in search.
	CreateInsight(ctx context.Context, userID uuid.UUID, text string, tags []string) (*domain.Insight, error)

	// GetInsight retrieves an insight owned by the user.
	GetInsight(ctx context.Context, userID, insightID uuid.UUID) (*domain.Insight, error)

	// ListInsights returns the user's insights, newest first.
	ListInsights(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Insight, error)

	// SearchInsights runs a semantic search over the user's embedded
	// insights. Returns ErrSearchUnavailable when no embedder is configured.
	SearchInsights(ctx context.Context, userID uuid.UUID, query string, limit int) ([]store.InsightSearchResult, error)

	// DeleteInsight removes an insight.
	DeleteInsight(ctx context.Context, userID, insightID uuid.UUID) error
}

type insightServiceImpl struct {
	insightStore store.InsightStore
	embedder     generation.Embedder
	logger       *slog.Logger
}

// NewInsightService creates a new InsightService.
// embedder may be nil, which disables semantic search.
func NewInsightService(
	insightStore store.InsightStore,
	embedder generation.Embedder,
	logger *slog.Logger,
) (InsightService, error) {
	if insightStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "insightStore cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &insightServiceImpl{
		insightStore: insightStore,
		embedder:     embedder,
		logger:       logger.With(slog.String("component", "insight_service")),
	}, nil
}

func (s *insightServiceImpl) CreateInsight(
	ctx context.Context,
	userID uuid.UUID,
	text string,
	tags []string,
) (*domain.Insight, error) {
	insight, err := domain.NewInsight(userID, text, domain.InsightOriginUser, tags)
	if err != nil {
		return nil, NewServiceError("create_insight", "invalid insight", err)
	}

	if s.embedder != nil {
		vector, err := s.embedder.Embed(ctx, insight.Text)
		if err != nil {
			s.logger.Warn("failed to embed insight, storing without vector",
				slog.String("error", err.Error()),
				slog.String("insight_id", insight.ID.String()))
		} else {
			insight.Embedding = vector
		}
	}

	if err := s.insightStore.Create(ctx, insight); err != nil {
		return nil, NewServiceError("create_insight", "failed to save insight", err)
	}

	s.logger.Info("insight created",
		slog.String("insight_id", insight.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Bool("embedded", len(insight.Embedding) > 0))

	return insight, nil
}

func (s *insightServiceImpl) GetInsight(
	ctx context.Context,
	userID, insightID uuid.UUID,
) (*domain.Insight, error) {
	insight, err := s.insightStore.GetByID(ctx, userID, insightID)
	if err != nil {
		return nil, NewServiceError("get_insight", "failed to retrieve insight", err)
	}
	return insight, nil
}

func (s *insightServiceImpl) ListInsights(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Insight, error) {
	insights, err := s.insightStore.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewServiceError("list_insights", "failed to list insights", err)
	}
	return insights, nil
}

func (s *insightServiceImpl) SearchInsights(
	ctx context.Context,
	userID uuid.UUID,
	query string,
	limit int,
) ([]store.InsightSearchResult, error) {
	if s.embedder == nil {
		return nil, ErrSearchUnavailable
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, NewServiceError("search_insights", "query cannot be empty", domain.ErrEmptyInsightText)
	}

	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, NewServiceError("search_insights", "failed to embed query", err)
	}

	results, err := s.insightStore.Search(ctx, userID, vector, limit)
	if err != nil {
		return nil, NewServiceError("search_insights", "failed to search insights", err)
	}

	return results, nil
}

func (s *insightServiceImpl) DeleteInsight(ctx context.Context, userID, insightID uuid.UUID) error {
	if err := s.insightStore.Delete(ctx, userID, insightID); err != nil {
		return NewServiceError("delete_insight", "failed to delete insight", err)
	}
	return nil
}
