package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PathStatus represents the generation state of a learning path.
// It shares the document lifecycle values: generation is a background task
// with the same pending/processing/completed/failed progression.
type PathStatus string

// Possible learning path status values
const (
	PathStatusPending    PathStatus = "pending"
	PathStatusProcessing PathStatus = "processing"
	PathStatusCompleted  PathStatus = "completed"
	PathStatusFailed     PathStatus = "failed"
)

// Common validation errors for LearningPath and PathDay
var (
	ErrEmptyPathID       = errors.New("learning path ID cannot be empty")
	ErrEmptyPathUserID   = errors.New("learning path user ID cannot be empty")
	ErrEmptyPathTopic    = errors.New("learning path topic cannot be empty")
	ErrInvalidPathStatus = errors.New("invalid learning path status")
	ErrEmptyDayID        = errors.New("path day ID cannot be empty")
	ErrEmptyDayPathID    = errors.New("path day path ID cannot be empty")
	ErrEmptyDayTitle     = errors.New("path day title cannot be empty")
	ErrInvalidDayIndex   = errors.New("path day index must be positive")
)

// LearningPath is an AI-generated multi-day curriculum for a topic.
// Progress is tracked per day via PathDay rows.
type LearningPath struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Topic     string     `json:"topic"`
	Status    PathStatus `json:"status"`
	Days      []*PathDay `json:"days,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PathDay is one day of a learning path's curriculum.
type PathDay struct {
	ID          uuid.UUID  `json:"id"`
	PathID      uuid.UUID  `json:"path_id"`
	DayIndex    int        `json:"day_index"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewLearningPath creates a pending LearningPath for the given user and topic.
// Days are added once generation completes. Returns an error if validation fails.
func NewLearningPath(userID uuid.UUID, topic string) (*LearningPath, error) {
	path := &LearningPath{
		ID:        uuid.New(),
		UserID:    userID,
		Topic:     topic,
		Status:    PathStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := path.Validate(); err != nil {
		return nil, err
	}

	return path, nil
}

// NewPathDay creates a day belonging to the given path. DayIndex is 1-based.
// Returns an error if validation fails.
func NewPathDay(pathID uuid.UUID, dayIndex int, title, body string) (*PathDay, error) {
	day := &PathDay{
		ID:        uuid.New(),
		PathID:    pathID,
		DayIndex:  dayIndex,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := day.Validate(); err != nil {
		return nil, err
	}

	return day, nil
}

// Validate checks if the LearningPath has valid data.
func (p *LearningPath) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyPathID
	}

	if p.UserID == uuid.Nil {
		return ErrEmptyPathUserID
	}

	if p.Topic == "" {
		return ErrEmptyPathTopic
	}

	if !isValidPathStatus(p.Status) {
		return ErrInvalidPathStatus
	}

	return nil
}

// UpdateStatus updates the path's status and the UpdatedAt timestamp.
// Returns an error if the new status is invalid.
func (p *LearningPath) UpdateStatus(status PathStatus) error {
	if !isValidPathStatus(status) {
		return ErrInvalidPathStatus
	}

	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Validate checks if the PathDay has valid data.
func (d *PathDay) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDayID
	}

	if d.PathID == uuid.Nil {
		return ErrEmptyDayPathID
	}

	if d.DayIndex < 1 {
		return ErrInvalidDayIndex
	}

	if d.Title == "" {
		return ErrEmptyDayTitle
	}

	return nil
}

// MarkCompleted marks the day as done. Calling it again is a no-op, so the
// completion timestamp records the first completion.
func (d *PathDay) MarkCompleted() {
	if d.Completed {
		return
	}

	now := time.Now().UTC()
	d.Completed = true
	d.CompletedAt = &now
	d.UpdatedAt = now
}

// isValidPathStatus checks if the given status is a valid PathStatus.
func isValidPathStatus(status PathStatus) bool {
	switch status {
	case PathStatusPending, PathStatusProcessing, PathStatusCompleted, PathStatusFailed:
		return true
	default:
		return false
	}
}
