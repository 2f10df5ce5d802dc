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
	"github.com/arborhq/arbor-api/internal/generation"
)

type journalFixture struct {
	entries  *fakeJournalStore
	insights *fakeInsightStore
	seeds    *fakeSeedStore
	gen      *fakeGenerator
	embedder *fakeEmbedder
	svc      JournalService
}

func newJournalFixture(t *testing.T, embedder generation.Embedder) *journalFixture {
	t.Helper()

	f := &journalFixture{
		entries:  newFakeJournalStore(),
		insights: newFakeInsightStore(),
		seeds:    newFakeSeedStore(),
		gen:      &fakeGenerator{},
	}
	if fe, ok := embedder.(*fakeEmbedder); ok {
		f.embedder = fe
	}

	svc, err := NewJournalService(
		f.entries, f.insights, f.seeds, f.gen, embedder, newStubDB(t), slog.Default(),
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestJournalService_CreateEntry(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	f := newJournalFixture(t, nil)

	entry, err := f.svc.CreateEntry(context.Background(), userID, "Felt focused today.", "calm")
	require.NoError(t, err)

	assert.Equal(t, "Felt focused today.", entry.Text)
	assert.Equal(t, "calm", entry.Mood)

	fetched, err := f.svc.GetEntry(context.Background(), userID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, fetched.ID)
}

func TestJournalService_CreateEntry_EmptyText(t *testing.T) {
	t.Parallel()

	f := newJournalFixture(t, nil)

	_, err := f.svc.CreateEntry(context.Background(), uuid.New(), "", "")
	assert.ErrorIs(t, err, domain.ErrEmptyEntryText)
}

func TestJournalService_ReflectOnEntry(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	f := newJournalFixture(t, embedder)

	err := f.seeds.Create(context.Background(), mustSeed(t, userID, "I am becoming more patient"))
	require.NoError(t, err)

	entry, err := f.svc.CreateEntry(context.Background(), userID, "I snapped at a colleague and regretted it.", "")
	require.NoError(t, err)

	insight, err := domain.NewInsight(userID, "Pausing before replying helps.", domain.InsightOriginAI, nil)
	require.NoError(t, err)

	f.gen.summary = "A hard day with a lesson about patience."
	f.gen.insights = []*domain.Insight{insight}

	reflection, err := f.svc.ReflectOnEntry(context.Background(), userID, entry.ID)
	require.NoError(t, err)

	assert.Equal(t, "A hard day with a lesson about patience.", reflection.Summary)
	require.Len(t, reflection.Insights, 1)

	saved := f.insights.created
	require.Len(t, saved, 1)
	require.NotNil(t, saved[0].EntryID)
	assert.Equal(t, entry.ID, *saved[0].EntryID)
	assert.Equal(t, []float32{0.1, 0.2}, saved[0].Embedding)
}

func TestJournalService_ReflectOnEntry_NoInsights(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	f := newJournalFixture(t, nil)

	entry, err := f.svc.CreateEntry(context.Background(), userID, "Nothing remarkable today.", "")
	require.NoError(t, err)

	f.gen.summary = "A quiet day."

	reflection, err := f.svc.ReflectOnEntry(context.Background(), userID, entry.ID)
	require.NoError(t, err)

	assert.Equal(t, "A quiet day.", reflection.Summary)
	assert.Empty(t, reflection.Insights)
	assert.Empty(t, f.insights.created)
}

func TestJournalService_ReflectOnEntry_GeneratorFailure(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	f := newJournalFixture(t, nil)

	entry, err := f.svc.CreateEntry(context.Background(), userID, "Some text.", "")
	require.NoError(t, err)

	f.gen.summaryErr = errors.New("model unavailable")

	_, err = f.svc.ReflectOnEntry(context.Background(), userID, entry.ID)
	require.Error(t, err)
	assert.Empty(t, f.insights.created)
}

func TestJournalService_ReflectOnEntry_EmbedFailureNonFatal(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	embedder := &fakeEmbedder{err: errors.New("quota exceeded")}
	f := newJournalFixture(t, embedder)

	entry, err := f.svc.CreateEntry(context.Background(), userID, "Some text.", "")
	require.NoError(t, err)

	insight, err := domain.NewInsight(userID, "Still worth keeping.", domain.InsightOriginAI, nil)
	require.NoError(t, err)
	f.gen.insights = []*domain.Insight{insight}

	reflection, err := f.svc.ReflectOnEntry(context.Background(), userID, entry.ID)
	require.NoError(t, err)

	require.Len(t, reflection.Insights, 1)
	assert.Empty(t, f.insights.created[0].Embedding)
}

func TestJournalService_ReflectOnEntry_NotFound(t *testing.T) {
	t.Parallel()

	f := newJournalFixture(t, nil)

	_, err := f.svc.ReflectOnEntry(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestJournalService_DeleteEntry(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	f := newJournalFixture(t, nil)

	entry, err := f.svc.CreateEntry(context.Background(), userID, "To be removed.", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteEntry(context.Background(), userID, entry.ID))

	_, err = f.svc.GetEntry(context.Background(), userID, entry.ID)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func mustSeed(t *testing.T, userID uuid.UUID, text string) *domain.IdentitySeed {
	t.Helper()
	seed, err := domain.NewIdentitySeed(userID, text)
	require.NoError(t, err)
	return seed
}
