package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for IdentitySeed
var (
	ErrEmptySeedID     = errors.New("identity seed ID cannot be empty")
	ErrEmptySeedUserID = errors.New("identity seed user ID cannot be empty")
	ErrEmptySeedText   = errors.New("identity seed text cannot be empty")
	ErrSeedTextTooLong = errors.New("identity seed text exceeds maximum length")
)

// MaxSeedTextLength bounds the free-text identity statement.
const MaxSeedTextLength = 4000

// IdentitySeed is a user-authored free-text statement of aspirational
// self-concept. The active seed is referenced by LLM prompts to anchor
// summaries, insights, and learning paths to the user's stated direction.
// A user has at most one active seed; activating a new one archives the
// previous.
type IdentitySeed struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Text      string    `json:"text"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewIdentitySeed creates a new active IdentitySeed for the given user.
// Returns an error if validation fails.
func NewIdentitySeed(userID uuid.UUID, text string) (*IdentitySeed, error) {
	seed := &IdentitySeed{
		ID:        uuid.New(),
		UserID:    userID,
		Text:      text,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := seed.Validate(); err != nil {
		return nil, err
	}

	return seed, nil
}

// Validate checks if the IdentitySeed has valid data.
func (s *IdentitySeed) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySeedID
	}

	if s.UserID == uuid.Nil {
		return ErrEmptySeedUserID
	}

	if s.Text == "" {
		return ErrEmptySeedText
	}

	if len(s.Text) > MaxSeedTextLength {
		return ErrSeedTextTooLong
	}

	return nil
}
