package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/generation"
	"github.com/arborhq/arbor-api/internal/store"
)

// EntryReflection is the result of running an entry through the LLM: a
// short summary plus any insights worth keeping.
type EntryReflection struct {
	Summary  string            `json:"summary"`
	Insights []*domain.Insight `json:"insights"`
}

// JournalService manages journal entries and their AI reflection.
type JournalService interface {
	// CreateEntry creates a new journal entry for the user.
	CreateEntry(ctx context.Context, userID uuid.UUID, text, mood string) (*domain.JournalEntry, error)

	// GetEntry retrieves an entry owned by the user.
	GetEntry(ctx context.Context, userID, entryID uuid.UUID) (*domain.JournalEntry, error)

	// ListEntries returns the user's entries, newest first.
	ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.JournalEntry, error)

	// DeleteEntry removes an entry. Insights derived from it are kept.
	DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error

	// ReflectOnEntry summarizes an entry against the user's active identity
	// seed and persists any extracted insights, linked back to the entry.
	ReflectOnEntry(ctx context.Context, userID, entryID uuid.UUID) (*EntryReflection, error)
}

type journalServiceImpl struct {
	entryStore   store.JournalStore
	insightStore store.InsightStore
	seedStore    store.IdentitySeedStore
	generator    generation.Generator
	embedder     generation.Embedder
	db           *sql.DB
	logger       *slog.Logger
}

// NewJournalService creates a new JournalService.
// embedder may be nil, in which case insights are stored without vectors.
func NewJournalService(
	entryStore store.JournalStore,
	insightStore store.InsightStore,
	seedStore store.IdentitySeedStore,
	generator generation.Generator,
	embedder generation.Embedder,
	db *sql.DB,
	logger *slog.Logger,
) (JournalService, error) {
	if entryStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "entryStore cannot be nil"}
	}
	if insightStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "insightStore cannot be nil"}
	}
	if seedStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "seedStore cannot be nil"}
	}
	if generator == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "generator cannot be nil"}
	}
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &journalServiceImpl{
		entryStore:   entryStore,
		insightStore: insightStore,
		seedStore:    seedStore,
		generator:    generator,
		embedder:     embedder,
		db:           db,
		logger:       logger.With(slog.String("component", "journal_service")),
	}, nil
}

func (s *journalServiceImpl) CreateEntry(
	ctx context.Context,
	userID uuid.UUID,
	text, mood string,
) (*domain.JournalEntry, error) {
	entry, err := domain.NewJournalEntry(userID, text, mood)
	if err != nil {
		return nil, NewServiceError("create_entry", "invalid journal entry", err)
	}

	if err := s.entryStore.Create(ctx, entry); err != nil {
		return nil, NewServiceError("create_entry", "failed to save journal entry", err)
	}

	s.logger.Info("journal entry created",
		slog.String("entry_id", entry.ID.String()),
		slog.String("user_id", userID.String()))

	return entry, nil
}

func (s *journalServiceImpl) GetEntry(
	ctx context.Context,
	userID, entryID uuid.UUID,
) (*domain.JournalEntry, error) {
	entry, err := s.entryStore.GetByID(ctx, userID, entryID)
	if err != nil {
		return nil, NewServiceError("get_entry", "failed to retrieve journal entry", err)
	}
	return entry, nil
}

func (s *journalServiceImpl) ListEntries(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.JournalEntry, error) {
	entries, err := s.entryStore.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewServiceError("list_entries", "failed to list journal entries", err)
	}
	return entries, nil
}

func (s *journalServiceImpl) DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	if err := s.entryStore.Delete(ctx, userID, entryID); err != nil {
		return NewServiceError("delete_entry", "failed to delete journal entry", err)
	}
	return nil
}

func (s *journalServiceImpl) ReflectOnEntry(
	ctx context.Context,
	userID, entryID uuid.UUID,
) (*EntryReflection, error) {
	entry, err := s.entryStore.GetByID(ctx, userID, entryID)
	if err != nil {
		return nil, NewServiceError("reflect_on_entry", "failed to retrieve journal entry", err)
	}

	seedText, err := s.activeSeedText(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load active identity seed, continuing without it",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		seedText = ""
	}

	summary, err := s.generator.Summarize(ctx, entry.Text, seedText)
	if err != nil {
		return nil, NewServiceError("reflect_on_entry", "failed to summarize entry", err)
	}

	insights, err := s.generator.ExtractInsights(ctx, entry.Text, seedText, userID)
	if err != nil {
		return nil, NewServiceError("reflect_on_entry", "failed to extract insights", err)
	}

	for _, insight := range insights {
		insight.EntryID = &entry.ID
		s.embedInsight(ctx, insight)
	}

	if len(insights) > 0 {
		err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			txStore := s.insightStore.WithTx(tx)
			for _, insight := range insights {
				if err := txStore.Create(ctx, insight); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, NewServiceError("reflect_on_entry", "failed to save insights", err)
		}
	}

	s.logger.Info("journal entry reflected",
		slog.String("entry_id", entryID.String()),
		slog.Int("insight_count", len(insights)))

	return &EntryReflection{Summary: summary, Insights: insights}, nil
}

// embedInsight attaches an embedding when an embedder is configured.
// Embedding failures are logged and ignored: the insight is still useful
// without a vector, it just cannot surface in semantic search.
func (s *journalServiceImpl) embedInsight(ctx context.Context, insight *domain.Insight) {
	if s.embedder == nil {
		return
	}

	vector, err := s.embedder.Embed(ctx, insight.Text)
	if err != nil {
		s.logger.Warn("failed to embed insight",
			slog.String("error", err.Error()),
			slog.String("insight_id", insight.ID.String()))
		return
	}
	insight.Embedding = vector
}

func (s *journalServiceImpl) activeSeedText(ctx context.Context, userID uuid.UUID) (string, error) {
	seed, err := s.seedStore.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrSeedNotFound) {
			return "", nil
		}
		return "", err
	}
	return seed.Text, nil
}
