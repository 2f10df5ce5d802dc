package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// GoalStatus represents the lifecycle state of a goal.
type GoalStatus string

// Possible goal status values
const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusPaused    GoalStatus = "paused"
	GoalStatusAchieved  GoalStatus = "achieved"
	GoalStatusAbandoned GoalStatus = "abandoned"
)

// Common validation errors for Goal
var (
	ErrEmptyGoalID       = errors.New("goal ID cannot be empty")
	ErrEmptyGoalUserID   = errors.New("goal user ID cannot be empty")
	ErrEmptyGoalTitle    = errors.New("goal title cannot be empty")
	ErrInvalidGoalStatus = errors.New("invalid goal status")
)

// Goal represents a user-defined objective tracked over time.
type Goal struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      GoalStatus `json:"status"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewGoal creates a new active Goal for the given user.
// Returns an error if validation fails.
func NewGoal(userID uuid.UUID, title, description string, targetDate *time.Time) (*Goal, error) {
	goal := &Goal{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      GoalStatusActive,
		TargetDate:  targetDate,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := goal.Validate(); err != nil {
		return nil, err
	}

	return goal, nil
}

// Validate checks if the Goal has valid data.
func (g *Goal) Validate() error {
	if g.ID == uuid.Nil {
		return ErrEmptyGoalID
	}

	if g.UserID == uuid.Nil {
		return ErrEmptyGoalUserID
	}

	if g.Title == "" {
		return ErrEmptyGoalTitle
	}

	if !isValidGoalStatus(g.Status) {
		return ErrInvalidGoalStatus
	}

	return nil
}

// UpdateStatus transitions the goal to the given status and refreshes the
// UpdatedAt timestamp. Returns an error if the status is invalid.
func (g *Goal) UpdateStatus(status GoalStatus) error {
	if !isValidGoalStatus(status) {
		return ErrInvalidGoalStatus
	}

	g.Status = status
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidGoalStatus checks if the given status is a valid GoalStatus.
func isValidGoalStatus(status GoalStatus) bool {
	switch status {
	case GoalStatusActive, GoalStatusPaused, GoalStatusAchieved, GoalStatusAbandoned:
		return true
	default:
		return false
	}
}
