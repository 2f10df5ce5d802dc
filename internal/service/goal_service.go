package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/store"
)

// GoalUpdate carries the mutable fields of a goal. Nil fields are left
// untouched.
type GoalUpdate struct {
	Title       *string
	Description *string
	TargetDate  *time.Time
	ClearTarget bool
}

// GoalService manages user goals.
type GoalService interface {
	// CreateGoal creates a new active goal for the user.
	CreateGoal(ctx context.Context, userID uuid.UUID, title, description string, targetDate *time.Time) (*domain.Goal, error)

	// GetGoal retrieves a goal owned by the user.
	GetGoal(ctx context.Context, userID, goalID uuid.UUID) (*domain.Goal, error)

	// ListGoals returns the user's goals, newest first.
	ListGoals(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Goal, error)

	// UpdateGoal applies the given field updates to a goal.
	UpdateGoal(ctx context.Context, userID, goalID uuid.UUID, update GoalUpdate) (*domain.Goal, error)

	// UpdateGoalStatus transitions a goal to the given status.
	UpdateGoalStatus(ctx context.Context, userID, goalID uuid.UUID, status domain.GoalStatus) (*domain.Goal, error)

	// DeleteGoal removes a goal.
	DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) error
}

type goalServiceImpl struct {
	goalStore store.GoalStore
	logger    *slog.Logger
}

// NewGoalService creates a new GoalService.
func NewGoalService(goalStore store.GoalStore, logger *slog.Logger) (GoalService, error) {
	if goalStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "goalStore cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &goalServiceImpl{
		goalStore: goalStore,
		logger:    logger.With(slog.String("component", "goal_service")),
	}, nil
}

func (s *goalServiceImpl) CreateGoal(
	ctx context.Context,
	userID uuid.UUID,
	title, description string,
	targetDate *time.Time,
) (*domain.Goal, error) {
	goal, err := domain.NewGoal(userID, title, description, targetDate)
	if err != nil {
		return nil, NewServiceError("create_goal", "invalid goal", err)
	}

	if err := s.goalStore.Create(ctx, goal); err != nil {
		return nil, NewServiceError("create_goal", "failed to save goal", err)
	}

	s.logger.Info("goal created",
		slog.String("goal_id", goal.ID.String()),
		slog.String("user_id", userID.String()))

	return goal, nil
}

func (s *goalServiceImpl) GetGoal(ctx context.Context, userID, goalID uuid.UUID) (*domain.Goal, error) {
	goal, err := s.goalStore.GetByID(ctx, userID, goalID)
	if err != nil {
		return nil, NewServiceError("get_goal", "failed to retrieve goal", err)
	}
	return goal, nil
}

func (s *goalServiceImpl) ListGoals(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Goal, error) {
	goals, err := s.goalStore.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewServiceError("list_goals", "failed to list goals", err)
	}
	return goals, nil
}

func (s *goalServiceImpl) UpdateGoal(
	ctx context.Context,
	userID, goalID uuid.UUID,
	update GoalUpdate,
) (*domain.Goal, error) {
	goal, err := s.goalStore.GetByID(ctx, userID, goalID)
	if err != nil {
		return nil, NewServiceError("update_goal", "failed to retrieve goal", err)
	}

	if update.Title != nil {
		goal.Title = *update.Title
	}
	if update.Description != nil {
		goal.Description = *update.Description
	}
	if update.ClearTarget {
		goal.TargetDate = nil
	} else if update.TargetDate != nil {
		goal.TargetDate = update.TargetDate
	}
	goal.UpdatedAt = time.Now().UTC()

	if err := goal.Validate(); err != nil {
		return nil, NewServiceError("update_goal", "invalid goal", err)
	}

	if err := s.goalStore.Update(ctx, goal); err != nil {
		return nil, NewServiceError("update_goal", "failed to save goal", err)
	}

	return goal, nil
}

func (s *goalServiceImpl) UpdateGoalStatus(
	ctx context.Context,
	userID, goalID uuid.UUID,
	status domain.GoalStatus,
) (*domain.Goal, error) {
	goal, err := s.goalStore.GetByID(ctx, userID, goalID)
	if err != nil {
		return nil, NewServiceError("update_goal_status", "failed to retrieve goal", err)
	}

	if err := goal.UpdateStatus(status); err != nil {
		return nil, NewServiceError("update_goal_status", "invalid goal status", err)
	}

	if err := s.goalStore.Update(ctx, goal); err != nil {
		return nil, NewServiceError("update_goal_status", "failed to save goal", err)
	}

	s.logger.Info("goal status updated",
		slog.String("goal_id", goalID.String()),
		slog.String("status", string(status)))

	return goal, nil
}

func (s *goalServiceImpl) DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) error {
	if err := s.goalStore.Delete(ctx, userID, goalID); err != nil {
		return NewServiceError("delete_goal", "failed to delete goal", err)
	}

	s.logger.Info("goal deleted",
		slog.String("goal_id", goalID.String()),
		slog.String("user_id", userID.String()))

	return nil
}
