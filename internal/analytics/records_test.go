package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
)

func round1dp(v float64) float64 { return math.Round(v*10) / 10 }

// TestEstimated1RM covers the Epley formula edge cases.
func TestEstimated1RM(t *testing.T) {
	cases := []struct {
		weight float64
		reps   int
		want   float64
	}{
		{100, 1, 100},   // single rep is its own max
		{100, 0, 0},     // nothing performed
		{100, 10, 133.3},
		{60, 5, 70},
		{225, 3, 247.5},
	}
	for _, tc := range cases {
		got := round1dp(Estimated1RM(tc.weight, tc.reps))
		if got != tc.want {
			t.Errorf("Estimated1RM(%v, %d) = %v, want %v", tc.weight, tc.reps, got, tc.want)
		}
	}
}

func sessionAt(start time.Time, sets ...models.WorkoutSet) models.WorkoutSession {
	end := start.Add(time.Hour)
	return models.WorkoutSession{
		ID:        uuid.New(),
		StartTime: start,
		EndTime:   &end,
		Sets:      sets,
	}
}

// TestExerciseRecords verifies record extraction over completed sets only,
// with the documented rounding.
func TestExerciseRecords(t *testing.T) {
	bench := uuid.New()
	other := uuid.New()
	base := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

	sessions := []models.WorkoutSession{
		sessionAt(base,
			models.WorkoutSet{ExerciseID: bench, Weight: 100, Reps: 10, IsCompleted: true},
			models.WorkoutSet{ExerciseID: bench, Weight: 120, Reps: 2, IsCompleted: true},
			models.WorkoutSet{ExerciseID: bench, Weight: 200, Reps: 20, IsCompleted: false}, // incomplete, ignored
			models.WorkoutSet{ExerciseID: other, Weight: 300, Reps: 12, IsCompleted: true},  // other exercise
		),
		sessionAt(base.AddDate(0, 0, 7),
			models.WorkoutSet{ExerciseID: bench, Weight: 80, Reps: 15, IsCompleted: true},
		),
	}

	rec := ExerciseRecords(sessions, bench)
	if rec.MaxWeight != 120 {
		t.Errorf("MaxWeight = %v, want 120", rec.MaxWeight)
	}
	if rec.MaxReps != 15 {
		t.Errorf("MaxReps = %v, want 15", rec.MaxReps)
	}
	// 100x10 estimates 133.3; 120x2 estimates 128; 80x15 estimates 120.
	if rec.Est1RM != 133.3 {
		t.Errorf("Est1RM = %v, want 133.3", rec.Est1RM)
	}
	// Best single-set volume: 80x15 = 1200 beats 100x10 = 1000.
	if rec.MaxSetVolume != 1200 {
		t.Errorf("MaxSetVolume = %v, want 1200", rec.MaxSetVolume)
	}
}

// TestExerciseRecordsNoData verifies the zero-value sentinel for an exercise
// with no completed history.
func TestExerciseRecordsNoData(t *testing.T) {
	rec := ExerciseRecords(nil, uuid.New())
	if rec != (Records{}) {
		t.Errorf("ExerciseRecords with no history = %+v, want zero value", rec)
	}
}

// TestBestSessionVolume verifies the volume sum is per session, not global.
func TestBestSessionVolume(t *testing.T) {
	squat := uuid.New()
	base := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

	sessions := []models.WorkoutSession{
		sessionAt(base,
			models.WorkoutSet{ExerciseID: squat, Weight: 100, Reps: 5, IsCompleted: true},
			models.WorkoutSet{ExerciseID: squat, Weight: 100, Reps: 5, IsCompleted: true},
		), // 1000
		sessionAt(base.AddDate(0, 0, 2),
			models.WorkoutSet{ExerciseID: squat, Weight: 140, Reps: 3, IsCompleted: true},
			models.WorkoutSet{ExerciseID: squat, Weight: 140, Reps: 3, IsCompleted: false},
		), // 420 completed only
	}

	if got := BestSessionVolume(sessions, squat); got != 1000 {
		t.Errorf("BestSessionVolume = %v, want 1000", got)
	}
	if got := BestSessionVolume(nil, squat); got != 0 {
		t.Errorf("BestSessionVolume with no history = %v, want 0", got)
	}
}

// TestExerciseHistory verifies newest-session-first ordering of completed
// sets.
func TestExerciseHistory(t *testing.T) {
	row := uuid.New()
	base := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

	sessions := []models.WorkoutSession{
		sessionAt(base, models.WorkoutSet{ExerciseID: row, Weight: 50, Reps: 12, IsCompleted: true}),
		sessionAt(base.AddDate(0, 0, 7), models.WorkoutSet{ExerciseID: row, Weight: 55, Reps: 10, IsCompleted: true}),
	}

	history := ExerciseHistory(sessions, row)
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Weight != 55 {
		t.Errorf("history[0].Weight = %v, want 55 (newest session first)", history[0].Weight)
	}
}
