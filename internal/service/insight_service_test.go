package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/store"
)

func TestInsightService_CreateInsight_Embedded(t *testing.T) {
	t.Parallel()

	insights := newFakeInsightStore()
	embedder := &fakeEmbedder{vector: []float32{0.5, 0.25}}
	svc, err := NewInsightService(insights, embedder, slog.Default())
	require.NoError(t, err)

	insight, err := svc.CreateInsight(
		context.Background(), uuid.New(), "Walking clears my head.", []string{"habit"},
	)
	require.NoError(t, err)

	assert.Equal(t, domain.InsightOriginUser, insight.Origin)
	assert.Equal(t, []float32{0.5, 0.25}, insight.Embedding)
	assert.Equal(t, []string{"habit"}, insight.Tags)
}

func TestInsightService_CreateInsight_EmbedFailureNonFatal(t *testing.T) {
	t.Parallel()

	insights := newFakeInsightStore()
	embedder := &fakeEmbedder{err: errors.New("quota exceeded")}
	svc, err := NewInsightService(insights, embedder, slog.Default())
	require.NoError(t, err)

	insight, err := svc.CreateInsight(context.Background(), uuid.New(), "Still stored.", nil)
	require.NoError(t, err)

	assert.Empty(t, insight.Embedding)
	assert.Len(t, insights.created, 1)
}

func TestInsightService_CreateInsight_NoEmbedder(t *testing.T) {
	t.Parallel()

	insights := newFakeInsightStore()
	svc, err := NewInsightService(insights, nil, slog.Default())
	require.NoError(t, err)

	insight, err := svc.CreateInsight(context.Background(), uuid.New(), "No vector here.", nil)
	require.NoError(t, err)
	assert.Empty(t, insight.Embedding)
}

func TestInsightService_CreateInsight_EmptyText(t *testing.T) {
	t.Parallel()

	svc, err := NewInsightService(newFakeInsightStore(), nil, slog.Default())
	require.NoError(t, err)

	_, err = svc.CreateInsight(context.Background(), uuid.New(), "", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyInsightText)
}

func TestInsightService_SearchInsights(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	insights := newFakeInsightStore()

	match, err := domain.NewInsight(userID, "Deep work before noon.", domain.InsightOriginAI, nil)
	require.NoError(t, err)
	insights.searchResults = []store.InsightSearchResult{{Insight: match, Score: 0.92}}

	embedder := &fakeEmbedder{vector: []float32{0.9, 0.1}}
	svc, err := NewInsightService(insights, embedder, slog.Default())
	require.NoError(t, err)

	results, err := svc.SearchInsights(context.Background(), userID, "when do I focus best", 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, match.ID, results[0].Insight.ID)
	assert.InDelta(t, 0.92, results[0].Score, 0.001)

	// The query embedding, not the query text, is what reaches the store.
	assert.Equal(t, []float32{0.9, 0.1}, insights.lastSearchVec)
}

func TestInsightService_SearchInsights_NoEmbedder(t *testing.T) {
	t.Parallel()

	svc, err := NewInsightService(newFakeInsightStore(), nil, slog.Default())
	require.NoError(t, err)

	_, err = svc.SearchInsights(context.Background(), uuid.New(), "anything", 10)
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}

func TestInsightService_SearchInsights_EmptyQuery(t *testing.T) {
	t.Parallel()

	embedder := &fakeEmbedder{vector: []float32{1}}
	svc, err := NewInsightService(newFakeInsightStore(), embedder, slog.Default())
	require.NoError(t, err)

	_, err = svc.SearchInsights(context.Background(), uuid.New(), "   ", 10)
	require.Error(t, err)
	assert.Zero(t, embedder.calls)
}

func TestInsightService_DeleteInsight(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	insights := newFakeInsightStore()
	svc, err := NewInsightService(insights, nil, slog.Default())
	require.NoError(t, err)

	insight, err := svc.CreateInsight(context.Background(), userID, "Short lived.", nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteInsight(context.Background(), userID, insight.ID))

	_, err = svc.GetInsight(context.Background(), userID, insight.ID)
	assert.ErrorIs(t, err, ErrInsightNotFound)
}
