package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/task"
)

type documentFixture struct {
	docs     *fakeDocStore
	insights *fakeInsightStore
	seeds    *fakeSeedStore
	objects  *fakeObjectStore
	emitter  *fakeEmitter
	svc      DocumentService
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()

	f := &documentFixture{
		docs:     newFakeDocStore(),
		insights: newFakeInsightStore(),
		seeds:    newFakeSeedStore(),
		objects:  newFakeObjectStore(),
		emitter:  &fakeEmitter{},
	}

	svc, err := NewDocumentService(
		f.docs, f.insights, f.seeds, f.objects, f.emitter, newStubDB(t), slog.Default(),
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestDocumentService_CreateUploadDocument(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	f := newDocumentFixture(t)

	doc, err := f.svc.CreateUploadDocument(
		context.Background(), userID, "notes.pdf", "application/pdf", []byte("%PDF-1.4 fake"),
	)
	require.NoError(t, err)

	assert.Equal(t, domain.DocumentStatusPending, doc.Status)
	assert.Equal(t, domain.DocumentSourceUpload, doc.Source)
	assert.True(t, strings.HasPrefix(doc.StorageKey, "users/"+userID.String()+"/documents/"))
	assert.True(t, strings.HasSuffix(doc.StorageKey, ".pdf"))

	// The bytes landed in the bucket under the document's key.
	assert.Equal(t, []byte("%PDF-1.4 fake"), f.objects.objects[doc.StorageKey])

	// An ingestion event was emitted for the new document.
	require.Len(t, f.emitter.events, 1)
	assert.Equal(t, task.TaskTypeDocumentIngestion, f.emitter.events[0].Type)
}

func TestDocumentService_CreateUploadDocument_EmptyFile(t *testing.T) {
	t.Parallel()

	f := newDocumentFixture(t)

	_, err := f.svc.CreateUploadDocument(context.Background(), uuid.New(), "empty.txt", "text/plain", nil)
	require.Error(t, err)
	assert.Empty(t, f.emitter.events)
}

func TestDocumentService_CreateUploadDocument_StoreFailureCleansUpObject(t *testing.T) {
	t.Parallel()

	f := newDocumentFixture(t)
	f.docs.createErr = errors.New("connection refused")

	_, err := f.svc.CreateUploadDocument(
		context.Background(), uuid.New(), "notes.txt", "text/plain", []byte("hello"),
	)
	require.Error(t, err)

	// The orphaned object was removed and no event went out.
	assert.Empty(t, f.objects.objects)
	require.Len(t, f.objects.deleted, 1)
	assert.Empty(t, f.emitter.events)
}

func TestDocumentService_CreateURLDocument(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	f := newDocumentFixture(t)

	doc, err := f.svc.CreateURLDocument(context.Background(), userID, "https://example.com/article")
	require.NoError(t, err)

	assert.Equal(t, domain.DocumentSourceURL, doc.Source)
	assert.Equal(t, "https://example.com/article", doc.SourceURL)
	assert.Empty(t, doc.StorageKey)

	require.Len(t, f.emitter.events, 1)
	assert.Equal(t, task.TaskTypeDocumentIngestion, f.emitter.events[0].Type)
}

func TestDocumentService_CreateURLDocument_EmptyURL(t *testing.T) {
	t.Parallel()

	f := newDocumentFixture(t)

	_, err := f.svc.CreateURLDocument(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, domain.ErrMissingSourceURL)
}

func TestDocumentService_DeleteDocument_RemovesStoredObject(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	f := newDocumentFixture(t)

	doc, err := f.svc.CreateUploadDocument(
		context.Background(), userID, "notes.txt", "text/plain", []byte("hello"),
	)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteDocument(context.Background(), userID, doc.ID))

	assert.Empty(t, f.objects.objects)
	_, err = f.svc.GetUserDocument(context.Background(), userID, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDocumentService_DeleteDocument_URLDocumentSkipsBucket(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	f := newDocumentFixture(t)

	doc, err := f.svc.CreateURLDocument(context.Background(), userID, "https://example.com")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteDocument(context.Background(), userID, doc.ID))
	assert.Empty(t, f.objects.deleted)
}

func TestDocumentService_GetUserDocument_ScopedToOwner(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	f := newDocumentFixture(t)

	doc, err := f.svc.CreateURLDocument(context.Background(), owner, "https://example.com")
	require.NoError(t, err)

	_, err = f.svc.GetUserDocument(context.Background(), uuid.New(), doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	// The unscoped task-facing lookup still finds it.
	fetched, err := f.svc.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, fetched.ID)
}

func TestDocumentService_TaskContract(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	f := newDocumentFixture(t)

	doc, err := f.svc.CreateURLDocument(context.Background(), userID, "https://example.com")
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateDocumentStatus(context.Background(), doc.ID, domain.DocumentStatusProcessing))
	require.NoError(t, f.svc.RecordExtraction(context.Background(), doc.ID, "extracted text", domain.ExtractionMethodWebpage))
	require.NoError(t, f.svc.RecordSummary(context.Background(), doc.ID, "a short summary"))

	fetched, err := f.svc.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusProcessing, fetched.Status)
	assert.Equal(t, "extracted text", fetched.ExtractedText)
	assert.Equal(t, domain.ExtractionMethodWebpage, fetched.ExtractionMethod)
	assert.Equal(t, "a short summary", fetched.Summary)
}

func TestDocumentService_SaveInsights(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	f := newDocumentFixture(t)

	first, err := domain.NewInsight(userID, "first takeaway", domain.InsightOriginAI, nil)
	require.NoError(t, err)
	second, err := domain.NewInsight(userID, "second takeaway", domain.InsightOriginAI, nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.SaveInsights(context.Background(), []*domain.Insight{first, second}))
	assert.Len(t, f.insights.created, 2)

	// Saving nothing is a no-op.
	require.NoError(t, f.svc.SaveInsights(context.Background(), nil))
	assert.Len(t, f.insights.created, 2)
}

func TestDocumentService_ActiveSeedText(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	f := newDocumentFixture(t)

	// No seed yet: empty string, no error.
	text, err := f.svc.ActiveSeedText(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, text)

	require.NoError(t, f.seeds.Create(context.Background(), mustSeed(t, userID, "I am becoming a builder")))

	text, err = f.svc.ActiveSeedText(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "I am becoming a builder", text)
}
