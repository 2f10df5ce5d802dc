package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/platform/logger"
	"github.com/arborhq/arbor-api/internal/store"
)

// PostgresInsightStore implements the store.InsightStore interface using a
// PostgreSQL database with the pgvector extension as the storage backend.
// Embeddings are written on create and only read back by Search; regular
// reads skip the vector column.
type PostgresInsightStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresInsightStore creates a new PostgreSQL implementation of the
// InsightStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresInsightStore(db store.DBTX, logger *slog.Logger) *PostgresInsightStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresInsightStore{
		db:     db,
		logger: logger.With(slog.String("component", "insight_store")),
	}
}

// Ensure PostgresInsightStore implements store.InsightStore interface
var _ store.InsightStore = (*PostgresInsightStore)(nil)

// Create implements store.InsightStore.Create
// Returns store.ErrInvalidEntity if a referenced entity does not exist.
func (s *PostgresInsightStore) Create(ctx context.Context, insight *domain.Insight) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := insight.Validate(); err != nil {
		log.Warn("insight validation failed during create",
			slog.String("error", err.Error()),
			slog.String("insight_id", insight.ID.String()))
		return err
	}

	var embedding *pgvector.Vector
	if len(insight.Embedding) > 0 {
		v := pgvector.NewVector(insight.Embedding)
		embedding = &v
	}

	query := `
		INSERT INTO insights (id, user_id, text, origin, document_id, entry_id, tags, embedding, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		insight.ID,
		insight.UserID,
		insight.Text,
		insight.Origin,
		insight.DocumentID,
		insight.EntryID,
		tagsToArray(insight.Tags),
		embedding,
		insight.CreatedAt,
		insight.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create insight",
			slog.String("error", err.Error()),
			slog.String("insight_id", insight.ID.String()),
			slog.String("user_id", insight.UserID.String()))
		return MapError(err)
	}

	log.Info("insight created successfully",
		slog.String("insight_id", insight.ID.String()),
		slog.String("user_id", insight.UserID.String()),
		slog.String("origin", string(insight.Origin)),
		slog.Bool("embedded", embedding != nil))
	return nil
}

// GetByID implements store.InsightStore.GetByID
func (s *PostgresInsightStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Insight, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, text, origin, document_id, entry_id, tags, created_at, updated_at
		FROM insights
		WHERE id = $1 AND user_id = $2
	`

	insight, err := scanInsight(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrInsightNotFound
		}
		log.Error("failed to get insight by ID",
			slog.String("error", err.Error()),
			slog.String("insight_id", id.String()))
		return nil, MapError(err)
	}

	return insight, nil
}

// ListByUser implements store.InsightStore.ListByUser
func (s *PostgresInsightStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Insight, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, text, origin, document_id, entry_id, tags, created_at, updated_at
		FROM insights
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.Error("failed to list insights",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	insights := make([]*domain.Insight, 0)
	for rows.Next() {
		insight, err := scanInsight(rows)
		if err != nil {
			return nil, MapError(err)
		}
		insights = append(insights, insight)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return insights, nil
}

// Search implements store.InsightStore.Search
// It runs a cosine-distance query over embedded insights and converts the
// distance to a similarity score.
func (s *PostgresInsightStore) Search(ctx context.Context, userID uuid.UUID, embedding []float32, limit int) ([]store.InsightSearchResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(embedding) == 0 {
		return nil, errors.New("search embedding cannot be empty")
	}

	query := `
		SELECT id, user_id, text, origin, document_id, entry_id, tags, created_at, updated_at,
			1 - (embedding <=> $2) AS score
		FROM insights
		WHERE user_id = $1 AND embedding IS NOT NULL
		ORDER BY embedding <=> $2
		LIMIT $3
	`

	queryVector := pgvector.NewVector(embedding)
	rows, err := s.db.QueryContext(ctx, query, userID, queryVector, limit)
	if err != nil {
		log.Error("insight search failed",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]store.InsightSearchResult, 0)
	for rows.Next() {
		var insight domain.Insight
		var origin string
		var tags sql.Null[[]byte]
		var score float64

		if err := rows.Scan(
			&insight.ID,
			&insight.UserID,
			&insight.Text,
			&origin,
			&insight.DocumentID,
			&insight.EntryID,
			&tags,
			&insight.CreatedAt,
			&insight.UpdatedAt,
			&score,
		); err != nil {
			return nil, MapError(err)
		}
		insight.Origin = domain.InsightOrigin(origin)
		if tags.Valid {
			insight.Tags = parseTagArray(tags.V)
		}
		results = append(results, store.InsightSearchResult{
			Insight: &insight,
			Score:   score,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("insight search completed",
		slog.String("user_id", userID.String()),
		slog.Int("results", len(results)))
	return results, nil
}

// Delete implements store.InsightStore.Delete
func (s *PostgresInsightStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM insights
		WHERE id = $1 AND user_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		log.Error("failed to delete insight",
			slog.String("error", err.Error()),
			slog.String("insight_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rowsAffected == 0 {
		return store.ErrInsightNotFound
	}

	log.Info("insight deleted successfully",
		slog.String("insight_id", id.String()))
	return nil
}

// WithTx implements store.InsightStore.WithTx
// It returns a new store instance backed by the given transaction.
func (s *PostgresInsightStore) WithTx(tx *sql.Tx) store.InsightStore {
	return &PostgresInsightStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanInsight(row rowScanner) (*domain.Insight, error) {
	var insight domain.Insight
	var origin string
	var tags sql.Null[[]byte]

	if err := row.Scan(
		&insight.ID,
		&insight.UserID,
		&insight.Text,
		&origin,
		&insight.DocumentID,
		&insight.EntryID,
		&tags,
		&insight.CreatedAt,
		&insight.UpdatedAt,
	); err != nil {
		return nil, err
	}

	insight.Origin = domain.InsightOrigin(origin)
	if tags.Valid {
		insight.Tags = parseTagArray(tags.V)
	}
	return &insight, nil
}
