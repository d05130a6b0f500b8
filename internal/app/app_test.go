package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/storage"
	"github.com/claude/ironlog/internal/workout"
	"github.com/google/uuid"
)

type fakeStore struct {
	snap  storage.Snapshot
	saves map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{saves: map[string]int{}}
}

func (f *fakeStore) LoadAll(ctx context.Context) (*storage.Snapshot, error) { return &f.snap, nil }

func (f *fakeStore) SaveExercises(ctx context.Context, v []models.Exercise) error {
	f.snap.Exercises = v
	f.saves["exercises"]++
	return nil
}

func (f *fakeStore) SaveSessions(ctx context.Context, v []models.WorkoutSession) error {
	f.snap.Sessions = v
	f.saves["sessions"]++
	return nil
}

func (f *fakeStore) SaveRoutines(ctx context.Context, v []models.Routine) error {
	f.snap.Routines = v
	f.saves["routines"]++
	return nil
}

func (f *fakeStore) SaveMeasurements(ctx context.Context, v []models.MeasurementLog) error {
	f.snap.Measurements = v
	f.saves["measurements"]++
	return nil
}

func (f *fakeStore) SaveWidgets(ctx context.Context, v []models.WidgetConfiguration) error {
	f.snap.Widgets = v
	f.saves["widgets"]++
	return nil
}

func (f *fakeStore) SaveProfile(ctx context.Context, v *models.UserProfile) error {
	f.snap.Profile = v
	f.saves["profile"]++
	return nil
}

func (f *fakeStore) Close() error { return nil }

type appClock struct {
	now time.Time
}

func (c *appClock) Now() time.Time { return c.now }

func (c *appClock) Schedule(d time.Duration, fn func()) func() bool {
	return func() bool { return true }
}

func newTestApp(t *testing.T, store *fakeStore) *App {
	t.Helper()
	clk := &appClock{now: time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)}
	a, err := New(context.Background(), store, clk, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func TestExerciseCRUD(t *testing.T) {
	store := newFakeStore()
	a := newTestApp(t, store)
	ctx := context.Background()

	ex, err := a.AddExercise(ctx, models.Exercise{Name: "Bench Press", Category: models.CategoryBarbell})
	if err != nil {
		t.Fatalf("AddExercise() error = %v", err)
	}
	if ex.ID == uuid.Nil {
		t.Error("AddExercise() did not assign an ID")
	}

	if _, err := a.AddExercise(ctx, models.Exercise{Name: "  "}); err == nil {
		t.Error("AddExercise() with blank name should fail")
	}

	ex.Name = "Incline Bench Press"
	if err := a.UpdateExercise(ctx, ex); err != nil {
		t.Fatalf("UpdateExercise() error = %v", err)
	}
	got, ok := a.ExerciseByID(ex.ID)
	if !ok || got.Name != "Incline Bench Press" {
		t.Errorf("ExerciseByID() = %+v, %v", got, ok)
	}

	unknown := models.Exercise{ID: uuid.New(), Name: "Ghost"}
	if err := a.UpdateExercise(ctx, unknown); err == nil {
		t.Error("UpdateExercise() of unknown exercise should fail")
	}

	if err := a.DeleteExercise(ctx, ex.ID); err != nil {
		t.Fatalf("DeleteExercise() error = %v", err)
	}
	if len(a.Exercises()) != 0 {
		t.Errorf("Exercises() = %d entries after delete, want 0", len(a.Exercises()))
	}
	if store.saves["exercises"] != 3 {
		t.Errorf("exercises persisted %d times, want 3", store.saves["exercises"])
	}
}

func TestDeleteExerciseKeepsHistory(t *testing.T) {
	store := newFakeStore()
	a := newTestApp(t, store)
	ctx := context.Background()

	ex, _ := a.AddExercise(ctx, models.Exercise{Name: "Squat", Category: models.CategoryBarbell})

	s := models.WorkoutSession{
		ID:        uuid.New(),
		StartTime: time.Now().Add(-time.Hour),
		Sets: []models.WorkoutSet{
			{ID: uuid.New(), ExerciseID: ex.ID, ExerciseName: ex.Name, Weight: 225, Reps: 5, IsCompleted: true},
		},
	}
	end := time.Now()
	s.EndTime = &end
	if err := a.RecordSession(ctx, s); err != nil {
		t.Fatalf("RecordSession() error = %v", err)
	}

	if err := a.DeleteExercise(ctx, ex.ID); err != nil {
		t.Fatalf("DeleteExercise() error = %v", err)
	}

	sessions := a.Sessions()
	if len(sessions) != 1 || len(sessions[0].Sets) != 1 {
		t.Fatalf("history changed after exercise delete: %+v", sessions)
	}
	if sessions[0].Sets[0].ExerciseName != "Squat" {
		t.Errorf("set lost cached exercise name: %q", sessions[0].Sets[0].ExerciseName)
	}
}

func TestRecordSessionPrepends(t *testing.T) {
	store := newFakeStore()
	a := newTestApp(t, store)
	ctx := context.Background()

	first := models.WorkoutSession{ID: uuid.New(), StartTime: time.Now().Add(-2 * time.Hour)}
	second := models.WorkoutSession{ID: uuid.New(), StartTime: time.Now()}
	if err := a.RecordSession(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := a.RecordSession(ctx, second); err != nil {
		t.Fatal(err)
	}

	sessions := a.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("Sessions() = %d, want 2", len(sessions))
	}
	if sessions[0].ID != second.ID {
		t.Errorf("newest session not first: got %s", sessions[0].ID)
	}
}

func TestSessionEditAndDelete(t *testing.T) {
	store := newFakeStore()
	a := newTestApp(t, store)
	ctx := context.Background()

	s := models.WorkoutSession{
		ID:        uuid.New(),
		StartTime: time.Now().Add(-time.Hour),
		Sets:      []models.WorkoutSet{{ID: uuid.New(), Weight: 100, Reps: 5, IsCompleted: true}},
	}
	if err := a.RecordSession(ctx, s); err != nil {
		t.Fatal(err)
	}

	s.Note = "felt strong"
	s.Sets[0].Weight = 105
	if err := a.UpdateSession(ctx, s); err != nil {
		t.Fatalf("UpdateSession() error = %v", err)
	}
	got, ok := a.SessionByID(s.ID)
	if !ok || got.Note != "felt strong" || got.Sets[0].Weight != 105 {
		t.Errorf("SessionByID() = %+v, %v", got, ok)
	}

	if err := a.UpdateSession(ctx, models.WorkoutSession{ID: uuid.New()}); err == nil {
		t.Error("UpdateSession() of unknown session should fail")
	}

	if err := a.DeleteSession(ctx, s.ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, ok := a.SessionByID(s.ID); ok {
		t.Error("session still present after delete")
	}
}

func TestRoutineDuplicate(t *testing.T) {
	store := newFakeStore()
	a := newTestApp(t, store)
	ctx := context.Background()

	r, err := a.AddRoutine(ctx, models.Routine{
		Name: "Push Day",
		Exercises: []models.RoutineExercise{
			{
				ExerciseID:   uuid.New(),
				ExerciseName: "Bench Press",
				Sets:         []models.RoutineSet{{Weight: 135, Reps: 8}},
			},
		},
	})
	if err != nil {
		t.Fatalf("AddRoutine() error = %v", err)
	}
	if r.Folder != models.DefaultRoutineFolder {
		t.Errorf("Folder = %q, want %q", r.Folder, models.DefaultRoutineFolder)
	}

	dup, err := a.DuplicateRoutine(ctx, r.ID)
	if err != nil {
		t.Fatalf("DuplicateRoutine() error = %v", err)
	}
	if dup.Name != "Push Day (Copy)" {
		t.Errorf("duplicate name = %q", dup.Name)
	}
	if dup.ID == r.ID {
		t.Error("duplicate shares routine ID")
	}
	if dup.Exercises[0].ID == r.Exercises[0].ID {
		t.Error("duplicate shares exercise ID")
	}
	if dup.Exercises[0].Sets[0].ID == r.Exercises[0].Sets[0].ID {
		t.Error("duplicate shares set ID")
	}
	if len(a.Routines()) != 2 {
		t.Errorf("Routines() = %d, want 2", len(a.Routines()))
	}

	if _, err := a.DuplicateRoutine(ctx, uuid.New()); err == nil {
		t.Error("DuplicateRoutine() of unknown routine should fail")
	}
}

func TestMeasurements(t *testing.T) {
	store := newFakeStore()
	a := newTestApp(t, store)
	ctx := context.Background()

	if _, err := a.AddMeasurement(ctx, models.MeasurementLog{Type: "Wingspan", Value: 1, Unit: models.UnitIn}); err == nil {
		t.Error("unknown measurement type should fail")
	}
	if _, err := a.AddMeasurement(ctx, models.MeasurementLog{Type: models.MeasurementWeight, Value: 180, Unit: "stone"}); err == nil {
		t.Error("unknown unit should fail")
	}
	if _, err := a.AddMeasurement(ctx, models.MeasurementLog{Type: models.MeasurementWeight, Value: -1, Unit: models.UnitLb}); err == nil {
		t.Error("negative value should fail")
	}

	old, err := a.AddMeasurement(ctx, models.MeasurementLog{
		Type: models.MeasurementWeight, Value: 178, Unit: models.UnitLb,
		Date: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("AddMeasurement() error = %v", err)
	}
	recent, err := a.AddMeasurement(ctx, models.MeasurementLog{
		Type: models.MeasurementWeight, Value: 176, Unit: models.UnitLb,
		Date: time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("AddMeasurement() error = %v", err)
	}
	if _, err := a.AddMeasurement(ctx, models.MeasurementLog{
		Type: models.MeasurementWaist, Value: 33, Unit: models.UnitIn,
	}); err != nil {
		t.Fatalf("AddMeasurement() error = %v", err)
	}

	logs := a.MeasurementsByType(models.MeasurementWeight)
	if len(logs) != 2 {
		t.Fatalf("MeasurementsByType(Weight) = %d entries, want 2", len(logs))
	}
	if logs[0].ID != recent.ID {
		t.Errorf("newest measurement not first: got %s", logs[0].ID)
	}

	if err := a.DeleteMeasurement(ctx, old.ID); err != nil {
		t.Fatalf("DeleteMeasurement() error = %v", err)
	}
	if got := a.MeasurementsByType(models.MeasurementWeight); len(got) != 1 {
		t.Errorf("after delete: %d entries, want 1", len(got))
	}
}

func TestWidgets(t *testing.T) {
	store := newFakeStore()
	a := newTestApp(t, store)
	ctx := context.Background()

	w1, err := a.AddWidget(ctx, models.WidgetConfiguration{Type: models.WidgetWorkouts})
	if err != nil {
		t.Fatalf("AddWidget() error = %v", err)
	}
	w2, err := a.AddWidget(ctx, models.WidgetConfiguration{
		Type:            models.WidgetMeasurement,
		MeasurementType: models.MeasurementWeight,
	})
	if err != nil {
		t.Fatalf("AddWidget() error = %v", err)
	}
	if w1.SortOrder != 0 || w2.SortOrder != 1 {
		t.Errorf("sort orders = %d, %d, want 0, 1", w1.SortOrder, w2.SortOrder)
	}

	if _, err := a.AddWidget(ctx, models.WidgetConfiguration{Type: "weather"}); err == nil {
		t.Error("unknown widget type should fail")
	}
	if _, err := a.AddWidget(ctx, models.WidgetConfiguration{Type: models.WidgetMeasurement, MeasurementType: "Wingspan"}); err == nil {
		t.Error("measurement widget with unknown type should fail")
	}
	if _, err := a.AddWidget(ctx, models.WidgetConfiguration{Type: models.WidgetExercise}); err == nil {
		t.Error("exercise widget without exercise id should fail")
	}

	if err := a.ReorderWidgets(ctx, []uuid.UUID{w2.ID, w1.ID}); err != nil {
		t.Fatalf("ReorderWidgets() error = %v", err)
	}
	widgets := a.Widgets()
	if widgets[0].ID != w2.ID || widgets[0].SortOrder != 0 {
		t.Errorf("reorder failed: first widget %s order %d", widgets[0].ID, widgets[0].SortOrder)
	}

	if err := a.RemoveWidget(ctx, w1.ID); err != nil {
		t.Fatalf("RemoveWidget() error = %v", err)
	}
	if len(a.Widgets()) != 1 {
		t.Errorf("Widgets() = %d, want 1", len(a.Widgets()))
	}
}

func TestProfileSingleton(t *testing.T) {
	store := newFakeStore()
	a := newTestApp(t, store)
	ctx := context.Background()

	if _, ok := a.Profile(); ok {
		t.Fatal("Profile() should report absent before creation")
	}

	p := models.NewDefaultProfile()
	saved, err := a.UpdateProfile(ctx, p)
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	replacement := saved
	replacement.ID = uuid.New()
	replacement.GoalType = models.GoalLose
	again, err := a.UpdateProfile(ctx, replacement)
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if again.ID != saved.ID {
		t.Errorf("profile ID changed on update: %s != %s", again.ID, saved.ID)
	}
	if got, _ := a.Profile(); got.GoalType != models.GoalLose {
		t.Errorf("GoalType = %q, want %q", got.GoalType, models.GoalLose)
	}
}

func TestMacroTargetsUsesLatestWeight(t *testing.T) {
	store := newFakeStore()
	a := newTestApp(t, store)
	ctx := context.Background()

	if _, err := a.MacroTargets(); err == nil {
		t.Fatal("MacroTargets() without profile should fail")
	}

	p := models.NewDefaultProfile()
	p.Gender = models.GenderMale
	p.Birthday = time.Date(1995, 6, 18, 0, 0, 0, 0, time.UTC)
	p.GoalType = models.GoalMaintain
	p.ActivityLevel = models.ActivityModerate
	if _, err := a.UpdateProfile(ctx, p); err != nil {
		t.Fatal(err)
	}

	// No weight logged: falls back to 150 lb.
	fallback, err := a.MacroTargets()
	if err != nil {
		t.Fatalf("MacroTargets() error = %v", err)
	}
	if fallback.Protein != 150 {
		t.Errorf("fallback Protein = %d, want 150", fallback.Protein)
	}

	if _, err := a.AddMeasurement(ctx, models.MeasurementLog{
		Type: models.MeasurementWeight, Value: 180, Unit: models.UnitLb,
		Date: time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatal(err)
	}

	targets, err := a.MacroTargets()
	if err != nil {
		t.Fatalf("MacroTargets() error = %v", err)
	}
	want := 2763
	if targets.Calories != want {
		t.Errorf("Calories = %d, want %d", targets.Calories, want)
	}
	if targets.Protein != 180 {
		t.Errorf("Protein = %d, want 180", targets.Protein)
	}

	// A kg entry logged later takes precedence and is converted.
	if _, err := a.AddMeasurement(ctx, models.MeasurementLog{
		Type: models.MeasurementWeight, Value: 81.64656, Unit: models.UnitKg,
		Date: time.Date(2025, 6, 17, 8, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatal(err)
	}
	converted, err := a.MacroTargets()
	if err != nil {
		t.Fatal(err)
	}
	if converted.Calories != want {
		t.Errorf("Calories with kg entry = %d, want %d", converted.Calories, want)
	}
}

func TestFinishedWorkoutLandsInHistory(t *testing.T) {
	store := newFakeStore()
	a := newTestApp(t, store)
	ctx := context.Background()

	ex, _ := a.AddExercise(ctx, models.Exercise{Name: "Deadlift", Category: models.CategoryBarbell})

	mgr := a.Workout()
	if _, err := mgr.Start(nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := mgr.AddExercise(ex); err != nil {
		t.Fatalf("AddExercise() error = %v", err)
	}
	active, _ := mgr.Active()
	setID := active.Sets[0].ID
	w, r := 315.0, 3
	if _, err := mgr.UpdateSet(setID, workout.SetPatch{Weight: &w, Reps: &r}); err != nil {
		t.Fatalf("UpdateSet() error = %v", err)
	}
	if _, err := mgr.ToggleSetDone(setID); err != nil {
		t.Fatalf("ToggleSetDone() error = %v", err)
	}

	finished, err := mgr.Finish(ctx, "quick pull session")
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	sessions := a.Sessions()
	if len(sessions) != 1 || sessions[0].ID != finished.ID {
		t.Fatalf("finished session not in history: %+v", sessions)
	}
	if store.saves["sessions"] != 1 {
		t.Errorf("sessions persisted %d times, want 1", store.saves["sessions"])
	}

	records := a.ExerciseRecords(ex.ID)
	if records.MaxWeight != 315 {
		t.Errorf("MaxWeight = %v, want 315", records.MaxWeight)
	}
}

func TestLoadedStateSurvives(t *testing.T) {
	store := newFakeStore()
	ex := models.Exercise{ID: uuid.New(), Name: "Row", Category: models.CategoryMachine}
	profile := models.NewDefaultProfile()
	store.snap = storage.Snapshot{
		Exercises: []models.Exercise{ex},
		Profile:   &profile,
	}

	a := newTestApp(t, store)
	if got := a.Exercises(); len(got) != 1 || got[0].ID != ex.ID {
		t.Errorf("Exercises() after load = %+v", got)
	}
	if p, ok := a.Profile(); !ok || p.ID != profile.ID {
		t.Errorf("Profile() after load = %+v, %v", p, ok)
	}
}

func TestTimeString(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{45 * time.Second, "0:45"},
		{90 * time.Second, "1:30"},
		{61 * time.Minute, "1:01:00"},
		{-5 * time.Second, "0:00"},
	}
	for _, tt := range tests {
		if got := TimeString(tt.d); got != tt.want {
			t.Errorf("TimeString(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
