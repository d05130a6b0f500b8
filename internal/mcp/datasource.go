package mcp

import (
	"context"
	"fmt"

	"github.com/claude/ironlog/internal/analytics"
	"github.com/claude/ironlog/internal/app"
	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both the in-process app
// state (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	ExerciseRecords(ctx context.Context, id uuid.UUID) (analytics.Records, error)
	ExerciseHistory(ctx context.Context, id uuid.UUID) ([]models.WorkoutSet, error)
	Sessions(ctx context.Context) ([]models.WorkoutSession, error)
	Routines(ctx context.Context) ([]models.Routine, error)
	WeeklyWorkoutCounts(ctx context.Context, weeks int) ([]analytics.WeekCount, error)
	MacroTargets(ctx context.Context) (analytics.MacroTargets, error)
	MeasurementsByType(ctx context.Context, t models.MeasurementType) ([]models.MeasurementLog, error)
	Profile(ctx context.Context) (models.UserProfile, error)
}

// AppSource adapts *app.App to the DataSource interface for in-process MCP.
type AppSource struct {
	App *app.App
}

var _ DataSource = AppSource{}

func (s AppSource) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	return s.App.Exercises(), nil
}

func (s AppSource) ExerciseRecords(ctx context.Context, id uuid.UUID) (analytics.Records, error) {
	return s.App.ExerciseRecords(id), nil
}

func (s AppSource) ExerciseHistory(ctx context.Context, id uuid.UUID) ([]models.WorkoutSet, error) {
	return s.App.ExerciseHistory(id), nil
}

func (s AppSource) Sessions(ctx context.Context) ([]models.WorkoutSession, error) {
	return s.App.Sessions(), nil
}

func (s AppSource) Routines(ctx context.Context) ([]models.Routine, error) {
	return s.App.Routines(), nil
}

func (s AppSource) WeeklyWorkoutCounts(ctx context.Context, weeks int) ([]analytics.WeekCount, error) {
	return s.App.WeeklyWorkoutCounts(weeks), nil
}

func (s AppSource) MacroTargets(ctx context.Context) (analytics.MacroTargets, error) {
	return s.App.MacroTargets()
}

func (s AppSource) MeasurementsByType(ctx context.Context, t models.MeasurementType) ([]models.MeasurementLog, error) {
	return s.App.MeasurementsByType(t), nil
}

func (s AppSource) Profile(ctx context.Context) (models.UserProfile, error) {
	p, ok := s.App.Profile()
	if !ok {
		return models.UserProfile{}, fmt.Errorf("no profile configured")
	}
	return p, nil
}
