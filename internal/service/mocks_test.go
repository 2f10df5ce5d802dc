package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/events"
	"github.com/arborhq/arbor-api/internal/generation"
	"github.com/arborhq/arbor-api/internal/store"
)

// stubDriver satisfies database/sql's driver interfaces just enough for
// store.RunInTransaction: Begin, Commit, and Rollback. No statements ever
// reach it because the store fakes ignore the *sql.Tx they are given.
type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("stub driver does not support statements")
}
func (stubConn) Close() error              { return nil }
func (stubConn) Begin() (driver.Tx, error) { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

var registerStubOnce sync.Once

func newStubDB(t *testing.T) *sql.DB {
	t.Helper()
	registerStubOnce.Do(func() { sql.Register("servicestub", stubDriver{}) })
	db, err := sql.Open("servicestub", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeSeedStore is an in-memory store.IdentitySeedStore.
type fakeSeedStore struct {
	seeds         map[uuid.UUID]*domain.IdentitySeed
	createErr     error
	getActiveErr  error
	deactivateErr error
}

func newFakeSeedStore() *fakeSeedStore {
	return &fakeSeedStore{seeds: make(map[uuid.UUID]*domain.IdentitySeed)}
}

func (f *fakeSeedStore) Create(_ context.Context, seed *domain.IdentitySeed) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *seed
	f.seeds[seed.ID] = &copied
	return nil
}

func (f *fakeSeedStore) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.IdentitySeed, error) {
	seed, ok := f.seeds[id]
	if !ok || seed.UserID != userID {
		return nil, store.ErrSeedNotFound
	}
	copied := *seed
	return &copied, nil
}

func (f *fakeSeedStore) GetActive(_ context.Context, userID uuid.UUID) (*domain.IdentitySeed, error) {
	if f.getActiveErr != nil {
		return nil, f.getActiveErr
	}
	for _, seed := range f.seeds {
		if seed.UserID == userID && seed.Active {
			copied := *seed
			return &copied, nil
		}
	}
	return nil, store.ErrSeedNotFound
}

func (f *fakeSeedStore) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]*domain.IdentitySeed, error) {
	var out []*domain.IdentitySeed
	for _, seed := range f.seeds {
		if seed.UserID == userID {
			copied := *seed
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeSeedStore) DeactivateAll(_ context.Context, userID uuid.UUID) error {
	if f.deactivateErr != nil {
		return f.deactivateErr
	}
	for _, seed := range f.seeds {
		if seed.UserID == userID {
			seed.Active = false
		}
	}
	return nil
}

func (f *fakeSeedStore) Activate(_ context.Context, userID, id uuid.UUID) error {
	seed, ok := f.seeds[id]
	if !ok || seed.UserID != userID {
		return store.ErrSeedNotFound
	}
	seed.Active = true
	return nil
}

func (f *fakeSeedStore) WithTx(*sql.Tx) store.IdentitySeedStore { return f }

// fakeGoalStore is an in-memory store.GoalStore.
type fakeGoalStore struct {
	goals     map[uuid.UUID]*domain.Goal
	createErr error
	updateErr error
}

func newFakeGoalStore() *fakeGoalStore {
	return &fakeGoalStore{goals: make(map[uuid.UUID]*domain.Goal)}
}

func (f *fakeGoalStore) Create(_ context.Context, goal *domain.Goal) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *goal
	f.goals[goal.ID] = &copied
	return nil
}

func (f *fakeGoalStore) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Goal, error) {
	goal, ok := f.goals[id]
	if !ok || goal.UserID != userID {
		return nil, store.ErrGoalNotFound
	}
	copied := *goal
	return &copied, nil
}

func (f *fakeGoalStore) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]*domain.Goal, error) {
	var out []*domain.Goal
	for _, goal := range f.goals {
		if goal.UserID == userID {
			copied := *goal
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeGoalStore) Update(_ context.Context, goal *domain.Goal) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.goals[goal.ID]; !ok {
		return store.ErrGoalNotFound
	}
	copied := *goal
	f.goals[goal.ID] = &copied
	return nil
}

func (f *fakeGoalStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	goal, ok := f.goals[id]
	if !ok || goal.UserID != userID {
		return store.ErrGoalNotFound
	}
	delete(f.goals, id)
	return nil
}

// fakeJournalStore is an in-memory store.JournalStore.
type fakeJournalStore struct {
	entries   map[uuid.UUID]*domain.JournalEntry
	createErr error
}

func newFakeJournalStore() *fakeJournalStore {
	return &fakeJournalStore{entries: make(map[uuid.UUID]*domain.JournalEntry)}
}

func (f *fakeJournalStore) Create(_ context.Context, entry *domain.JournalEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *entry
	f.entries[entry.ID] = &copied
	return nil
}

func (f *fakeJournalStore) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.JournalEntry, error) {
	entry, ok := f.entries[id]
	if !ok || entry.UserID != userID {
		return nil, store.ErrEntryNotFound
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeJournalStore) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]*domain.JournalEntry, error) {
	var out []*domain.JournalEntry
	for _, entry := range f.entries {
		if entry.UserID == userID {
			copied := *entry
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeJournalStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	entry, ok := f.entries[id]
	if !ok || entry.UserID != userID {
		return store.ErrEntryNotFound
	}
	delete(f.entries, id)
	return nil
}

// fakeInsightStore is an in-memory store.InsightStore.
type fakeInsightStore struct {
	insights      map[uuid.UUID]*domain.Insight
	created       []*domain.Insight
	createErr     error
	searchResults []store.InsightSearchResult
	searchErr     error
	lastSearchVec []float32
}

func newFakeInsightStore() *fakeInsightStore {
	return &fakeInsightStore{insights: make(map[uuid.UUID]*domain.Insight)}
}

func (f *fakeInsightStore) Create(_ context.Context, insight *domain.Insight) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *insight
	f.insights[insight.ID] = &copied
	f.created = append(f.created, &copied)
	return nil
}

func (f *fakeInsightStore) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Insight, error) {
	insight, ok := f.insights[id]
	if !ok || insight.UserID != userID {
		return nil, store.ErrInsightNotFound
	}
	copied := *insight
	return &copied, nil
}

func (f *fakeInsightStore) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]*domain.Insight, error) {
	var out []*domain.Insight
	for _, insight := range f.insights {
		if insight.UserID == userID {
			copied := *insight
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeInsightStore) Search(
	_ context.Context,
	_ uuid.UUID,
	embedding []float32,
	_ int,
) ([]store.InsightSearchResult, error) {
	f.lastSearchVec = embedding
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults, nil
}

func (f *fakeInsightStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	insight, ok := f.insights[id]
	if !ok || insight.UserID != userID {
		return store.ErrInsightNotFound
	}
	delete(f.insights, id)
	return nil
}

func (f *fakeInsightStore) WithTx(*sql.Tx) store.InsightStore { return f }

// fakeDocStore is an in-memory store.DocumentStore.
type fakeDocStore struct {
	docs      map[uuid.UUID]*domain.Document
	createErr error
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: make(map[uuid.UUID]*domain.Document)}
}

func (f *fakeDocStore) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *doc
	f.docs[doc.ID] = &copied
	return nil
}

func (f *fakeDocStore) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok || doc.UserID != userID {
		return nil, store.ErrDocumentNotFound
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocStore) Get(_ context.Context, id uuid.UUID) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, store.ErrDocumentNotFound
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocStore) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]*domain.Document, error) {
	var out []*domain.Document
	for _, doc := range f.docs {
		if doc.UserID == userID {
			copied := *doc
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeDocStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.DocumentStatus) error {
	doc, ok := f.docs[id]
	if !ok {
		return store.ErrDocumentNotFound
	}
	return doc.UpdateStatus(status)
}

func (f *fakeDocStore) SetExtraction(_ context.Context, id uuid.UUID, text string, method domain.ExtractionMethod) error {
	doc, ok := f.docs[id]
	if !ok {
		return store.ErrDocumentNotFound
	}
	doc.SetExtraction(text, method)
	return nil
}

func (f *fakeDocStore) SetSummary(_ context.Context, id uuid.UUID, summary string) error {
	doc, ok := f.docs[id]
	if !ok {
		return store.ErrDocumentNotFound
	}
	doc.Summary = summary
	return nil
}

func (f *fakeDocStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	doc, ok := f.docs[id]
	if !ok || doc.UserID != userID {
		return store.ErrDocumentNotFound
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeDocStore) WithTx(*sql.Tx) store.DocumentStore { return f }

// fakePathStore is an in-memory store.LearningPathStore.
type fakePathStore struct {
	paths         map[uuid.UUID]*domain.LearningPath
	days          []*domain.PathDay
	createErr     error
	createDaysErr error
	completeDay   *domain.PathDay
	completeErr   error
}

func newFakePathStore() *fakePathStore {
	return &fakePathStore{paths: make(map[uuid.UUID]*domain.LearningPath)}
}

func (f *fakePathStore) Create(_ context.Context, path *domain.LearningPath) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *path
	f.paths[path.ID] = &copied
	return nil
}

func (f *fakePathStore) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.LearningPath, error) {
	path, ok := f.paths[id]
	if !ok || path.UserID != userID {
		return nil, store.ErrPathNotFound
	}
	copied := *path
	return &copied, nil
}

func (f *fakePathStore) Get(_ context.Context, id uuid.UUID) (*domain.LearningPath, error) {
	path, ok := f.paths[id]
	if !ok {
		return nil, store.ErrPathNotFound
	}
	copied := *path
	return &copied, nil
}

func (f *fakePathStore) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]*domain.LearningPath, error) {
	var out []*domain.LearningPath
	for _, path := range f.paths {
		if path.UserID == userID {
			copied := *path
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakePathStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.PathStatus) error {
	path, ok := f.paths[id]
	if !ok {
		return store.ErrPathNotFound
	}
	path.Status = status
	return nil
}

func (f *fakePathStore) CreateDays(_ context.Context, days []*domain.PathDay) error {
	if f.createDaysErr != nil {
		return f.createDaysErr
	}
	f.days = append(f.days, days...)
	return nil
}

func (f *fakePathStore) CompleteDay(_ context.Context, _, _, _ uuid.UUID) (*domain.PathDay, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return f.completeDay, nil
}

func (f *fakePathStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	path, ok := f.paths[id]
	if !ok || path.UserID != userID {
		return store.ErrPathNotFound
	}
	delete(f.paths, id)
	return nil
}

func (f *fakePathStore) WithTx(*sql.Tx) store.LearningPathStore { return f }

// fakeEmitter records emitted events.
type fakeEmitter struct {
	events  []*events.TaskRequestEvent
	emitErr error
}

func (f *fakeEmitter) EmitEvent(_ context.Context, event *events.TaskRequestEvent) error {
	if f.emitErr != nil {
		return f.emitErr
	}
	f.events = append(f.events, event)
	return nil
}

// fakeObjectStore records uploads and deletes in memory.
type fakeObjectStore struct {
	objects   map[string][]byte
	deleted   []string
	uploadErr error
	deleteErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Upload(_ context.Context, key string, r io.Reader) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

// fakeGenerator returns canned LLM output.
type fakeGenerator struct {
	summary     string
	summaryErr  error
	insights    []*domain.Insight
	insightsErr error
	plans       []generation.PathDayPlan
	plansErr    error
}

func (f *fakeGenerator) Summarize(_ context.Context, _, _ string) (string, error) {
	return f.summary, f.summaryErr
}

func (f *fakeGenerator) ExtractInsights(
	_ context.Context,
	_, _ string,
	_ uuid.UUID,
) ([]*domain.Insight, error) {
	return f.insights, f.insightsErr
}

func (f *fakeGenerator) GenerateLearningPath(_ context.Context, _, _ string) ([]generation.PathDayPlan, error) {
	return f.plans, f.plansErr
}

// fakeEmbedder returns a canned vector.
type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}
