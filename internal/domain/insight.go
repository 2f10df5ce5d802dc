package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// InsightOrigin identifies whether an insight was written by the user or
// produced by the LLM.
type InsightOrigin string

// Possible insight origin values
const (
	InsightOriginAI   InsightOrigin = "ai"
	InsightOriginUser InsightOrigin = "user"
)

// Common validation errors for Insight
var (
	ErrEmptyInsightID       = errors.New("insight ID cannot be empty")
	ErrEmptyInsightUserID   = errors.New("insight user ID cannot be empty")
	ErrEmptyInsightText     = errors.New("insight text cannot be empty")
	ErrInvalidInsightOrigin = errors.New("invalid insight origin")
)

// Insight is a short note derived from a document or journal entry, or
// written directly by the user. AI insights carry an embedding vector used
// for semantic search; user insights are embedded on creation when the
// embedder is available.
type Insight struct {
	ID         uuid.UUID     `json:"id"`
	UserID     uuid.UUID     `json:"user_id"`
	Text       string        `json:"text"`
	Origin     InsightOrigin `json:"origin"`
	DocumentID *uuid.UUID    `json:"document_id,omitempty"`
	EntryID    *uuid.UUID    `json:"entry_id,omitempty"`
	Tags       []string      `json:"tags,omitempty"`
	Embedding  []float32     `json:"-"` // Stored as a pgvector column, never serialized
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// NewInsight creates a new Insight with the given origin and optional
// source references. Returns an error if validation fails.
func NewInsight(userID uuid.UUID, text string, origin InsightOrigin, tags []string) (*Insight, error) {
	insight := &Insight{
		ID:        uuid.New(),
		UserID:    userID,
		Text:      text,
		Origin:    origin,
		Tags:      tags,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := insight.Validate(); err != nil {
		return nil, err
	}

	return insight, nil
}

// Validate checks if the Insight has valid data.
func (i *Insight) Validate() error {
	if i.ID == uuid.Nil {
		return ErrEmptyInsightID
	}

	if i.UserID == uuid.Nil {
		return ErrEmptyInsightUserID
	}

	if i.Text == "" {
		return ErrEmptyInsightText
	}

	if i.Origin != InsightOriginAI && i.Origin != InsightOriginUser {
		return ErrInvalidInsightOrigin
	}

	return nil
}
