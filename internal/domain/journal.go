package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for JournalEntry
var (
	ErrEmptyEntryID     = errors.New("journal entry ID cannot be empty")
	ErrEmptyEntryUserID = errors.New("journal entry user ID cannot be empty")
	ErrEmptyEntryText   = errors.New("journal entry text cannot be empty")
)

// JournalEntry is a dated free-text reflection written by a user.
// Entries may be summarized by the LLM into insights.
type JournalEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Text      string    `json:"text"`
	Mood      string    `json:"mood,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewJournalEntry creates a new JournalEntry for the given user.
// Mood is an optional free-form tag. Returns an error if validation fails.
func NewJournalEntry(userID uuid.UUID, text, mood string) (*JournalEntry, error) {
	entry := &JournalEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Text:      text,
		Mood:      mood,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the JournalEntry has valid data.
func (e *JournalEntry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyEntryID
	}

	if e.UserID == uuid.Nil {
		return ErrEmptyEntryUserID
	}

	if e.Text == "" {
		return ErrEmptyEntryText
	}

	return nil
}
