package mcp

import (
	"context"
	"strings"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise catalog: names, categories, and IDs."),
)

var toolGetExerciseRecords = mcp.NewTool("get_exercise_records",
	mcp.WithDescription("Personal records for one exercise: max weight, estimated one-rep max (Epley), max reps, and best single-set volume."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (case-insensitive) or UUID")),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("All completed sets for one exercise across workout history, newest session first."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (case-insensitive) or UUID")),
)

var toolGetWeeklyWorkouts = mcp.NewTool("get_weekly_workouts",
	mcp.WithDescription("Workout counts per ISO week (Monday start) for a trailing window, zero-filled for empty weeks."),
	mcp.WithNumber("weeks", mcp.Description("Number of trailing weeks. Defaults to 8.")),
)

var toolGetMacroTargets = mcp.NewTool("get_macro_targets",
	mcp.WithDescription("Daily nutrition targets (calories, protein, carbs, fat) derived from the user profile and latest logged body weight."),
)

var toolGetMeasurements = mcp.NewTool("get_measurements",
	mcp.WithDescription("Logged body measurements of one type, newest first."),
	mcp.WithString("type", mcp.Required(), mcp.Description("Measurement type (e.g. 'Weight', 'Body Fat', 'Waist', 'Chest')")),
)

// resolveExercise accepts a UUID or a case-insensitive exercise name.
func (h *handlers) resolveExercise(ctx context.Context, ref string) (models.Exercise, bool, error) {
	if id, err := uuid.Parse(ref); err == nil {
		exercises, err := h.ds.ListExercises(ctx)
		if err != nil {
			return models.Exercise{}, false, err
		}
		for _, ex := range exercises {
			if ex.ID == id {
				return ex, true, nil
			}
		}
		// Unknown ID still resolves: historical sets may reference a
		// deleted catalog entry.
		return models.Exercise{ID: id, Name: ref}, true, nil
	}

	exercises, err := h.ds.ListExercises(ctx)
	if err != nil {
		return models.Exercise{}, false, err
	}
	for _, ex := range exercises {
		if strings.EqualFold(ex.Name, ref) {
			return ex, true, nil
		}
	}
	return models.Exercise{}, false, nil
}

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.ListExercises(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(exercises)
}

func (h *handlers) getExerciseRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	ex, found, err := h.resolveExercise(ctx, ref)
	if err != nil {
		h.log.Error("mcp get_exercise_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if !found {
		return mcp.NewToolResultError("unknown exercise: " + ref), nil
	}

	records, err := h.ds.ExerciseRecords(ctx, ex.ID)
	if err != nil {
		h.log.Error("mcp get_exercise_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	return jsonResult(map[string]any{
		"exercise": ex.Name,
		"records":  records,
	})
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	ex, found, err := h.resolveExercise(ctx, ref)
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if !found {
		return mcp.NewToolResultError("unknown exercise: " + ref), nil
	}

	sets, err := h.ds.ExerciseHistory(ctx, ex.ID)
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if sets == nil {
		sets = []models.WorkoutSet{}
	}

	return jsonResult(map[string]any{
		"exercise": ex.Name,
		"sets":     sets,
	})
}

func (h *handlers) getWeeklyWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weeks := req.GetInt("weeks", 8)
	if weeks < 1 {
		return mcp.NewToolResultError("weeks must be positive"), nil
	}

	counts, err := h.ds.WeeklyWorkoutCounts(ctx, weeks)
	if err != nil {
		h.log.Error("mcp get_weekly_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(counts)
}

func (h *handlers) getMacroTargets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targets, err := h.ds.MacroTargets(ctx)
	if err != nil {
		return mcp.NewToolResultError("macro targets unavailable: " + err.Error()), nil
	}
	return jsonResult(targets)
}

func (h *handlers) getMeasurements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type parameter is required"), nil
	}
	mt := models.MeasurementType(typ)
	if !models.ValidMeasurementType(mt) {
		return mcp.NewToolResultError("unknown measurement type: " + typ), nil
	}

	logs, err := h.ds.MeasurementsByType(ctx, mt)
	if err != nil {
		h.log.Error("mcp get_measurements", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if logs == nil {
		logs = []models.MeasurementLog{}
	}
	return jsonResult(logs)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
