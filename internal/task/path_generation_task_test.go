package task

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/generation"
)

type fakePathService struct {
	path *domain.LearningPath

	statuses  []domain.PathStatus
	completed []*domain.PathDay
	seedText  string
}

func (f *fakePathService) GetPath(_ context.Context, _ uuid.UUID) (*domain.LearningPath, error) {
	if f.path == nil {
		return nil, errors.New("path not found")
	}
	return f.path, nil
}

func (f *fakePathService) UpdatePathStatus(_ context.Context, _ uuid.UUID, status domain.PathStatus) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakePathService) CompletePathGeneration(_ context.Context, _ uuid.UUID, days []*domain.PathDay) error {
	f.completed = days
	f.statuses = append(f.statuses, domain.PathStatusCompleted)
	return nil
}

func (f *fakePathService) ActiveSeedText(_ context.Context, _ uuid.UUID) (string, error) {
	return f.seedText, nil
}

func TestPathGenerationTask_HappyPath(t *testing.T) {
	t.Parallel()

	path, err := domain.NewLearningPath(uuid.New(), "stoic philosophy")
	require.NoError(t, err)

	paths := &fakePathService{path: path, seedText: "I am becoming more deliberate"}
	gen := &fakeGenerator{plans: []generation.PathDayPlan{
		{Title: "Day one", Body: "Read the introduction"},
		{Title: "Day two", Body: "Morning reflection exercise"},
	}}

	tk, err := NewPathGenerationTask(path.ID, paths, gen, slog.Default())
	require.NoError(t, err)

	require.NoError(t, tk.Execute(context.Background()))

	assert.Equal(t, []domain.PathStatus{
		domain.PathStatusProcessing,
		domain.PathStatusCompleted,
	}, paths.statuses)

	require.Len(t, paths.completed, 2)
	assert.Equal(t, 1, paths.completed[0].DayIndex)
	assert.Equal(t, "Day one", paths.completed[0].Title)
	assert.Equal(t, 2, paths.completed[1].DayIndex)
	assert.Equal(t, path.ID, paths.completed[1].PathID)
}

func TestPathGenerationTask_GenerationFailureMarksFailed(t *testing.T) {
	t.Parallel()

	path, err := domain.NewLearningPath(uuid.New(), "systems thinking")
	require.NoError(t, err)

	paths := &fakePathService{path: path}
	gen := &fakeGenerator{plansErr: errors.New("llm unavailable")}

	tk, err := NewPathGenerationTask(path.ID, paths, gen, slog.Default())
	require.NoError(t, err)

	err = tk.Execute(context.Background())
	require.Error(t, err)

	assert.Equal(t, []domain.PathStatus{
		domain.PathStatusProcessing,
		domain.PathStatusFailed,
	}, paths.statuses)
	assert.Empty(t, paths.completed)
}

func TestPathGenerationTask_InvalidGeneratedDayMarksFailed(t *testing.T) {
	t.Parallel()

	path, err := domain.NewLearningPath(uuid.New(), "drawing")
	require.NoError(t, err)

	paths := &fakePathService{path: path}
	gen := &fakeGenerator{plans: []generation.PathDayPlan{
		{Title: "", Body: "a body without a title"},
	}}

	tk, err := NewPathGenerationTask(path.ID, paths, gen, slog.Default())
	require.NoError(t, err)

	err = tk.Execute(context.Background())
	require.Error(t, err)

	assert.Equal(t, []domain.PathStatus{
		domain.PathStatusProcessing,
		domain.PathStatusFailed,
	}, paths.statuses)
}

func TestNewPathGenerationTask_Validation(t *testing.T) {
	t.Parallel()

	paths := &fakePathService{}
	gen := &fakeGenerator{}

	_, err := NewPathGenerationTask(uuid.Nil, paths, gen, slog.Default())
	assert.ErrorIs(t, err, ErrEmptyPathID)

	_, err = NewPathGenerationTask(uuid.New(), nil, gen, slog.Default())
	assert.ErrorIs(t, err, ErrNilPathService)

	_, err = NewPathGenerationTask(uuid.New(), paths, nil, slog.Default())
	assert.ErrorIs(t, err, ErrNilGenerator)
}
