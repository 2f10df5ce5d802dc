package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/api/shared"
	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/service"
	"github.com/arborhq/arbor-api/internal/service/auth"
	"github.com/arborhq/arbor-api/internal/store"
)

// authedRequest returns a copy of the request carrying the given user ID
// in its context, as the auth middleware would.
func authedRequest(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
	return r.WithContext(ctx)
}

// MockGoalService is a function-field mock of service.GoalService.
type MockGoalService struct {
	CreateGoalFn       func(ctx context.Context, userID uuid.UUID, title, description string, targetDate *time.Time) (*domain.Goal, error)
	GetGoalFn          func(ctx context.Context, userID, goalID uuid.UUID) (*domain.Goal, error)
	ListGoalsFn        func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Goal, error)
	UpdateGoalFn       func(ctx context.Context, userID, goalID uuid.UUID, update service.GoalUpdate) (*domain.Goal, error)
	UpdateGoalStatusFn func(ctx context.Context, userID, goalID uuid.UUID, status domain.GoalStatus) (*domain.Goal, error)
	DeleteGoalFn       func(ctx context.Context, userID, goalID uuid.UUID) error
}

func (m *MockGoalService) CreateGoal(
	ctx context.Context,
	userID uuid.UUID,
	title, description string,
	targetDate *time.Time,
) (*domain.Goal, error) {
	return m.CreateGoalFn(ctx, userID, title, description, targetDate)
}

func (m *MockGoalService) GetGoal(ctx context.Context, userID, goalID uuid.UUID) (*domain.Goal, error) {
	return m.GetGoalFn(ctx, userID, goalID)
}

func (m *MockGoalService) ListGoals(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Goal, error) {
	return m.ListGoalsFn(ctx, userID, limit, offset)
}

func (m *MockGoalService) UpdateGoal(
	ctx context.Context,
	userID, goalID uuid.UUID,
	update service.GoalUpdate,
) (*domain.Goal, error) {
	return m.UpdateGoalFn(ctx, userID, goalID, update)
}

func (m *MockGoalService) UpdateGoalStatus(
	ctx context.Context,
	userID, goalID uuid.UUID,
	status domain.GoalStatus,
) (*domain.Goal, error) {
	return m.UpdateGoalStatusFn(ctx, userID, goalID, status)
}

func (m *MockGoalService) DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) error {
	return m.DeleteGoalFn(ctx, userID, goalID)
}

// MockDocumentService is a function-field mock of service.DocumentService.
type MockDocumentService struct {
	CreateUploadDocumentFn func(ctx context.Context, userID uuid.UUID, originalName, mimeType string, data []byte) (*domain.Document, error)
	CreateURLDocumentFn    func(ctx context.Context, userID uuid.UUID, sourceURL string) (*domain.Document, error)
	GetUserDocumentFn      func(ctx context.Context, userID, documentID uuid.UUID) (*domain.Document, error)
	ListDocumentsFn        func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Document, error)
	DeleteDocumentFn       func(ctx context.Context, userID, documentID uuid.UUID) error
}

func (m *MockDocumentService) CreateUploadDocument(
	ctx context.Context,
	userID uuid.UUID,
	originalName, mimeType string,
	data []byte,
) (*domain.Document, error) {
	return m.CreateUploadDocumentFn(ctx, userID, originalName, mimeType, data)
}

func (m *MockDocumentService) CreateURLDocument(
	ctx context.Context,
	userID uuid.UUID,
	sourceURL string,
) (*domain.Document, error) {
	return m.CreateURLDocumentFn(ctx, userID, sourceURL)
}

func (m *MockDocumentService) GetUserDocument(
	ctx context.Context,
	userID, documentID uuid.UUID,
) (*domain.Document, error) {
	return m.GetUserDocumentFn(ctx, userID, documentID)
}

func (m *MockDocumentService) ListDocuments(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Document, error) {
	return m.ListDocumentsFn(ctx, userID, limit, offset)
}

func (m *MockDocumentService) DeleteDocument(ctx context.Context, userID, documentID uuid.UUID) error {
	return m.DeleteDocumentFn(ctx, userID, documentID)
}

// Background task contract; unused by handler tests.
func (m *MockDocumentService) GetDocument(context.Context, uuid.UUID) (*domain.Document, error) {
	return nil, nil
}
func (m *MockDocumentService) UpdateDocumentStatus(context.Context, uuid.UUID, domain.DocumentStatus) error {
	return nil
}
func (m *MockDocumentService) RecordExtraction(context.Context, uuid.UUID, string, domain.ExtractionMethod) error {
	return nil
}
func (m *MockDocumentService) RecordSummary(context.Context, uuid.UUID, string) error { return nil }
func (m *MockDocumentService) SaveInsights(context.Context, []*domain.Insight) error  { return nil }
func (m *MockDocumentService) ActiveSeedText(context.Context, uuid.UUID) (string, error) {
	return "", nil
}

// MockInsightService is a function-field mock of service.InsightService.
type MockInsightService struct {
	CreateInsightFn  func(ctx context.Context, userID uuid.UUID, text string, tags []string) (*domain.Insight, error)
	GetInsightFn     func(ctx context.Context, userID, insightID uuid.UUID) (*domain.Insight, error)
	ListInsightsFn   func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Insight, error)
	SearchInsightsFn func(ctx context.Context, userID uuid.UUID, query string, limit int) ([]store.InsightSearchResult, error)
	DeleteInsightFn  func(ctx context.Context, userID, insightID uuid.UUID) error
}

func (m *MockInsightService) CreateInsight(
	ctx context.Context,
	userID uuid.UUID,
	text string,
	tags []string,
) (*domain.Insight, error) {
	return m.CreateInsightFn(ctx, userID, text, tags)
}

func (m *MockInsightService) GetInsight(
	ctx context.Context,
	userID, insightID uuid.UUID,
) (*domain.Insight, error) {
	return m.GetInsightFn(ctx, userID, insightID)
}

func (m *MockInsightService) ListInsights(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Insight, error) {
	return m.ListInsightsFn(ctx, userID, limit, offset)
}

func (m *MockInsightService) SearchInsights(
	ctx context.Context,
	userID uuid.UUID,
	query string,
	limit int,
) ([]store.InsightSearchResult, error) {
	return m.SearchInsightsFn(ctx, userID, query, limit)
}

func (m *MockInsightService) DeleteInsight(ctx context.Context, userID, insightID uuid.UUID) error {
	return m.DeleteInsightFn(ctx, userID, insightID)
}

// MockIdentityService is a function-field mock of service.IdentityService.
type MockIdentityService struct {
	CreateSeedFn    func(ctx context.Context, userID uuid.UUID, text string) (*domain.IdentitySeed, error)
	GetActiveSeedFn func(ctx context.Context, userID uuid.UUID) (*domain.IdentitySeed, error)
	ListSeedsFn     func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.IdentitySeed, error)
	ActivateSeedFn  func(ctx context.Context, userID, seedID uuid.UUID) (*domain.IdentitySeed, error)
}

func (m *MockIdentityService) CreateSeed(
	ctx context.Context,
	userID uuid.UUID,
	text string,
) (*domain.IdentitySeed, error) {
	return m.CreateSeedFn(ctx, userID, text)
}

func (m *MockIdentityService) GetActiveSeed(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.IdentitySeed, error) {
	return m.GetActiveSeedFn(ctx, userID)
}

func (m *MockIdentityService) ListSeeds(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.IdentitySeed, error) {
	return m.ListSeedsFn(ctx, userID, limit, offset)
}

func (m *MockIdentityService) ActivateSeed(
	ctx context.Context,
	userID, seedID uuid.UUID,
) (*domain.IdentitySeed, error) {
	return m.ActivateSeedFn(ctx, userID, seedID)
}

// MockJWTService is a function-field mock of auth.JWTService.
type MockJWTService struct {
	GenerateTokenFn        func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn        func(ctx context.Context, tokenString string) (*auth.Claims, error)
	GenerateRefreshTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateRefreshTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)
}

func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return "access-token", nil
}

func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return nil, auth.ErrInvalidToken
}

func (m *MockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateRefreshTokenFn != nil {
		return m.GenerateRefreshTokenFn(ctx, userID)
	}
	return "refresh-token", nil
}

func (m *MockJWTService) ValidateRefreshToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, tokenString)
	}
	return nil, auth.ErrInvalidToken
}

// MockUserStore is a function-field mock of store.UserStore.
type MockUserStore struct {
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.CreateFn(ctx, user)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.GetByEmailFn(ctx, email)
}

// MockJournalService is a function-field mock of service.JournalService.
type MockJournalService struct {
	CreateEntryFn    func(ctx context.Context, userID uuid.UUID, text, mood string) (*domain.JournalEntry, error)
	GetEntryFn       func(ctx context.Context, userID, entryID uuid.UUID) (*domain.JournalEntry, error)
	ListEntriesFn    func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.JournalEntry, error)
	DeleteEntryFn    func(ctx context.Context, userID, entryID uuid.UUID) error
	ReflectOnEntryFn func(ctx context.Context, userID, entryID uuid.UUID) (*service.EntryReflection, error)
}

func (m *MockJournalService) CreateEntry(
	ctx context.Context,
	userID uuid.UUID,
	text, mood string,
) (*domain.JournalEntry, error) {
	return m.CreateEntryFn(ctx, userID, text, mood)
}

func (m *MockJournalService) GetEntry(
	ctx context.Context,
	userID, entryID uuid.UUID,
) (*domain.JournalEntry, error) {
	return m.GetEntryFn(ctx, userID, entryID)
}

func (m *MockJournalService) ListEntries(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.JournalEntry, error) {
	return m.ListEntriesFn(ctx, userID, limit, offset)
}

func (m *MockJournalService) DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	return m.DeleteEntryFn(ctx, userID, entryID)
}

func (m *MockJournalService) ReflectOnEntry(
	ctx context.Context,
	userID, entryID uuid.UUID,
) (*service.EntryReflection, error) {
	return m.ReflectOnEntryFn(ctx, userID, entryID)
}

// MockLearningPathService is a function-field mock of
// service.LearningPathService. The task-facing methods are no-ops.
type MockLearningPathService struct {
	CreatePathFn  func(ctx context.Context, userID uuid.UUID, topic string) (*domain.LearningPath, error)
	GetUserPathFn func(ctx context.Context, userID, pathID uuid.UUID) (*domain.LearningPath, error)
	ListPathsFn   func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.LearningPath, error)
	CompleteDayFn func(ctx context.Context, userID, pathID, dayID uuid.UUID) (*domain.PathDay, error)
	DeletePathFn  func(ctx context.Context, userID, pathID uuid.UUID) error
}

func (m *MockLearningPathService) CreatePath(
	ctx context.Context,
	userID uuid.UUID,
	topic string,
) (*domain.LearningPath, error) {
	return m.CreatePathFn(ctx, userID, topic)
}

func (m *MockLearningPathService) GetUserPath(
	ctx context.Context,
	userID, pathID uuid.UUID,
) (*domain.LearningPath, error) {
	return m.GetUserPathFn(ctx, userID, pathID)
}

func (m *MockLearningPathService) ListPaths(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.LearningPath, error) {
	return m.ListPathsFn(ctx, userID, limit, offset)
}

func (m *MockLearningPathService) CompleteDay(
	ctx context.Context,
	userID, pathID, dayID uuid.UUID,
) (*domain.PathDay, error) {
	return m.CompleteDayFn(ctx, userID, pathID, dayID)
}

func (m *MockLearningPathService) DeletePath(ctx context.Context, userID, pathID uuid.UUID) error {
	return m.DeletePathFn(ctx, userID, pathID)
}

func (m *MockLearningPathService) GetPath(context.Context, uuid.UUID) (*domain.LearningPath, error) {
	return nil, nil
}

func (m *MockLearningPathService) UpdatePathStatus(
	context.Context,
	uuid.UUID,
	domain.PathStatus,
) error {
	return nil
}

func (m *MockLearningPathService) CompletePathGeneration(
	context.Context,
	uuid.UUID,
	[]*domain.PathDay,
) error {
	return nil
}

func (m *MockLearningPathService) ActiveSeedText(context.Context, uuid.UUID) (string, error) {
	return "", nil
}
