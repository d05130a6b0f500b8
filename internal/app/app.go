// Package app wires the loaded collections, the active-session manager, and
// the persistence gateway into one application state owner. Every mutation
// submits the full post-mutation collection to the gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/claude/ironlog/internal/analytics"
	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/storage"
	"github.com/claude/ironlog/internal/timer"
	"github.com/claude/ironlog/internal/workout"
	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Defaults used by the macro calculation when no measurement history exists.
// Height is not tracked per user, so an average is assumed.
const (
	defaultWeightLbs    = 150.0
	defaultHeightInches = 70.0
	kgPerLb             = 0.453592
)

// App owns the in-memory collections and the singleton active-session
// manager. It implements workout.Recorder to receive finished sessions.
type App struct {
	store storage.Store
	clock timer.Clock
	log   *slog.Logger

	mu           sync.Mutex
	exercises    []models.Exercise
	sessions     []models.WorkoutSession
	routines     []models.Routine
	measurements []models.MeasurementLog
	widgets      []models.WidgetConfiguration
	profile      *models.UserProfile

	manager *workout.Manager
	rest    *timer.RestTimer
}

// New loads all collections from the store and builds the app state.
func New(ctx context.Context, store storage.Store, clock timer.Clock, notify timer.Notifier, log *slog.Logger) (*App, error) {
	snap, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	a := &App{
		store:        store,
		clock:        clock,
		log:          log,
		exercises:    snap.Exercises,
		sessions:     snap.Sessions,
		routines:     snap.Routines,
		measurements: snap.Measurements,
		widgets:      snap.Widgets,
		profile:      snap.Profile,
	}
	a.rest = timer.NewRestTimer(clock, notify, log)
	a.manager = workout.New(clock, a.rest, a, log)

	log.Info("state loaded",
		"exercises", len(a.exercises),
		"sessions", len(a.sessions),
		"routines", len(a.routines),
		"measurements", len(a.measurements))
	return a, nil
}

// Workout returns the active-session manager.
func (a *App) Workout() *workout.Manager {
	return a.manager
}

// RestTimer returns the rest countdown.
// ActiveWorkout returns a snapshot of the running session together with its
// elapsed-time display, as shown on the workout header.
func (a *App) ActiveWorkout() (models.WorkoutSession, string, bool) {
	sess, ok := a.manager.Active()
	if !ok {
		return models.WorkoutSession{}, "", false
	}
	return sess, TimeString(a.clock.Now().Sub(sess.StartTime)), true
}

func (a *App) RestTimer() *timer.RestTimer {
	return a.rest
}

// RecordSession receives a finished session from the manager: newest first,
// then the whole collection is re-persisted.
func (a *App) RecordSession(ctx context.Context, session models.WorkoutSession) error {
	a.mu.Lock()
	a.sessions = append([]models.WorkoutSession{session}, a.sessions...)
	sessions := cloneSessions(a.sessions)
	a.mu.Unlock()
	return a.store.SaveSessions(ctx, sessions)
}

// --- Exercises ---

// Exercises returns the catalog.
func (a *App) Exercises() []models.Exercise {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Exercise, len(a.exercises))
	copy(out, a.exercises)
	return out
}

// ExerciseByID looks up one catalog entry.
func (a *App) ExerciseByID(id uuid.UUID) (models.Exercise, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, ex := range a.exercises {
		if ex.ID == id {
			return ex, true
		}
	}
	return models.Exercise{}, false
}

// AddExercise creates a catalog entry.
func (a *App) AddExercise(ctx context.Context, ex models.Exercise) (models.Exercise, error) {
	if strings.TrimSpace(ex.Name) == "" {
		return models.Exercise{}, fmt.Errorf("%w: exercise name is required", ErrInvalidInput)
	}
	ex.ID = uuid.New()

	a.mu.Lock()
	a.exercises = append(a.exercises, ex)
	exercises := append([]models.Exercise(nil), a.exercises...)
	a.mu.Unlock()

	return ex, a.store.SaveExercises(ctx, exercises)
}

// UpdateExercise replaces a catalog entry by ID. Historical sets keep their
// cached name; only future sets see the edit.
func (a *App) UpdateExercise(ctx context.Context, ex models.Exercise) error {
	a.mu.Lock()
	found := false
	for i := range a.exercises {
		if a.exercises[i].ID == ex.ID {
			a.exercises[i] = ex
			found = true
			break
		}
	}
	exercises := append([]models.Exercise(nil), a.exercises...)
	a.mu.Unlock()

	if !found {
		return fmt.Errorf("%w: exercise %s", ErrNotFound, ex.ID)
	}
	return a.store.SaveExercises(ctx, exercises)
}

// DeleteExercise removes a catalog entry. Sets in historical sessions retain
// their cached exercise id and name; the reference is weak by design.
func (a *App) DeleteExercise(ctx context.Context, id uuid.UUID) error {
	a.mu.Lock()
	kept := a.exercises[:0]
	for _, ex := range a.exercises {
		if ex.ID != id {
			kept = append(kept, ex)
		}
	}
	a.exercises = kept
	exercises := append([]models.Exercise(nil), a.exercises...)
	a.mu.Unlock()

	return a.store.SaveExercises(ctx, exercises)
}

// --- Session history ---

// Sessions returns the workout history, newest first.
func (a *App) Sessions() []models.WorkoutSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneSessions(a.sessions)
}

// SessionByID looks up one historical session.
func (a *App) SessionByID(id uuid.UUID) (models.WorkoutSession, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range a.sessions {
		if s.ID == id {
			return s.Clone(), true
		}
	}
	return models.WorkoutSession{}, false
}

// UpdateSession is the explicit edit path for a finished session: the same
// record is mutated and the collection re-persisted. No versioning.
func (a *App) UpdateSession(ctx context.Context, session models.WorkoutSession) error {
	a.mu.Lock()
	found := false
	for i := range a.sessions {
		if a.sessions[i].ID == session.ID {
			a.sessions[i] = session.Clone()
			found = true
			break
		}
	}
	sessions := cloneSessions(a.sessions)
	a.mu.Unlock()

	if !found {
		return fmt.Errorf("%w: session %s", ErrNotFound, session.ID)
	}
	return a.store.SaveSessions(ctx, sessions)
}

// DeleteSession removes a historical session and, with it, every set it owns.
func (a *App) DeleteSession(ctx context.Context, id uuid.UUID) error {
	a.mu.Lock()
	kept := a.sessions[:0]
	for _, s := range a.sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	a.sessions = kept
	sessions := cloneSessions(a.sessions)
	a.mu.Unlock()

	return a.store.SaveSessions(ctx, sessions)
}

// --- Routines ---

// Routines returns all templates.
func (a *App) Routines() []models.Routine {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Routine, len(a.routines))
	for i, r := range a.routines {
		out[i] = cloneRoutine(r)
	}
	return out
}

// RoutineByID looks up one template.
func (a *App) RoutineByID(id uuid.UUID) (models.Routine, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.routines {
		if r.ID == id {
			return cloneRoutine(r), true
		}
	}
	return models.Routine{}, false
}

// AddRoutine creates a template, assigning fresh IDs throughout.
func (a *App) AddRoutine(ctx context.Context, routine models.Routine) (models.Routine, error) {
	if strings.TrimSpace(routine.Name) == "" {
		return models.Routine{}, fmt.Errorf("%w: routine name is required", ErrInvalidInput)
	}
	if routine.Folder == "" {
		routine.Folder = models.DefaultRoutineFolder
	}
	routine.ID = uuid.New()
	for i := range routine.Exercises {
		routine.Exercises[i].ID = uuid.New()
		for j := range routine.Exercises[i].Sets {
			routine.Exercises[i].Sets[j].ID = uuid.New()
		}
	}

	a.mu.Lock()
	a.routines = append(a.routines, cloneRoutine(routine))
	routines := append([]models.Routine(nil), a.routines...)
	a.mu.Unlock()

	return routine, a.store.SaveRoutines(ctx, routines)
}

// UpdateRoutine replaces a template by ID.
func (a *App) UpdateRoutine(ctx context.Context, routine models.Routine) error {
	a.mu.Lock()
	found := false
	for i := range a.routines {
		if a.routines[i].ID == routine.ID {
			a.routines[i] = cloneRoutine(routine)
			found = true
			break
		}
	}
	routines := append([]models.Routine(nil), a.routines...)
	a.mu.Unlock()

	if !found {
		return fmt.Errorf("%w: routine %s", ErrNotFound, routine.ID)
	}
	return a.store.SaveRoutines(ctx, routines)
}

// DeleteRoutine removes a template and all its owned exercises and sets.
func (a *App) DeleteRoutine(ctx context.Context, id uuid.UUID) error {
	a.mu.Lock()
	kept := a.routines[:0]
	for _, r := range a.routines {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	a.routines = kept
	routines := append([]models.Routine(nil), a.routines...)
	a.mu.Unlock()

	return a.store.SaveRoutines(ctx, routines)
}

// DuplicateRoutine copies a template under a " (Copy)" name with fresh IDs
// throughout.
func (a *App) DuplicateRoutine(ctx context.Context, id uuid.UUID) (models.Routine, error) {
	a.mu.Lock()
	var src *models.Routine
	for i := range a.routines {
		if a.routines[i].ID == id {
			src = &a.routines[i]
			break
		}
	}
	if src == nil {
		a.mu.Unlock()
		return models.Routine{}, fmt.Errorf("%w: routine %s", ErrNotFound, id)
	}

	dup := cloneRoutine(*src)
	dup.ID = uuid.New()
	dup.Name = src.Name + " (Copy)"
	for i := range dup.Exercises {
		dup.Exercises[i].ID = uuid.New()
		for j := range dup.Exercises[i].Sets {
			dup.Exercises[i].Sets[j].ID = uuid.New()
		}
	}
	a.routines = append(a.routines, dup)
	routines := append([]models.Routine(nil), a.routines...)
	a.mu.Unlock()

	return cloneRoutine(dup), a.store.SaveRoutines(ctx, routines)
}

// --- Measurements ---

// AddMeasurement logs an observation. Type and unit come from fixed
// vocabularies; negative values are rejected at entry.
func (a *App) AddMeasurement(ctx context.Context, m models.MeasurementLog) (models.MeasurementLog, error) {
	if !models.ValidMeasurementType(m.Type) {
		return models.MeasurementLog{}, fmt.Errorf("%w: unknown measurement type %q", ErrInvalidInput, m.Type)
	}
	if !models.ValidMeasurementUnit(m.Unit) {
		return models.MeasurementLog{}, fmt.Errorf("%w: unknown unit %q", ErrInvalidInput, m.Unit)
	}
	if m.Value < 0 {
		return models.MeasurementLog{}, fmt.Errorf("%w: measurement value must be non-negative", ErrInvalidInput)
	}
	m.ID = uuid.New()
	if m.Date.IsZero() {
		m.Date = a.clock.Now()
	}

	a.mu.Lock()
	a.measurements = append([]models.MeasurementLog{m}, a.measurements...)
	measurements := append([]models.MeasurementLog(nil), a.measurements...)
	a.mu.Unlock()

	return m, a.store.SaveMeasurements(ctx, measurements)
}

// DeleteMeasurement removes one observation.
func (a *App) DeleteMeasurement(ctx context.Context, id uuid.UUID) error {
	a.mu.Lock()
	kept := a.measurements[:0]
	for _, m := range a.measurements {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	a.measurements = kept
	measurements := append([]models.MeasurementLog(nil), a.measurements...)
	a.mu.Unlock()

	return a.store.SaveMeasurements(ctx, measurements)
}

// MeasurementsByType returns observations of one type, newest first.
func (a *App) MeasurementsByType(t models.MeasurementType) []models.MeasurementLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []models.MeasurementLog
	for _, m := range a.measurements {
		if m.Type == t {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// --- Widgets ---

// Widgets returns the dashboard tiles in sort order.
func (a *App) Widgets() []models.WidgetConfiguration {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.WidgetConfiguration, len(a.widgets))
	copy(out, a.widgets)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// AddWidget appends a tile at the end of the dashboard.
func (a *App) AddWidget(ctx context.Context, w models.WidgetConfiguration) (models.WidgetConfiguration, error) {
	switch w.Type {
	case models.WidgetWorkouts, models.WidgetMacros:
	case models.WidgetMeasurement:
		if !models.ValidMeasurementType(w.MeasurementType) {
			return models.WidgetConfiguration{}, fmt.Errorf("%w: unknown measurement type %q", ErrInvalidInput, w.MeasurementType)
		}
	case models.WidgetExercise:
		if w.ExerciseID == nil || !models.ValidExerciseMetric(w.ExerciseMetric) {
			return models.WidgetConfiguration{}, fmt.Errorf("%w: exercise widget needs exercise id and metric", ErrInvalidInput)
		}
	default:
		return models.WidgetConfiguration{}, fmt.Errorf("%w: unknown widget type %q", ErrInvalidInput, w.Type)
	}

	a.mu.Lock()
	w.ID = uuid.New()
	w.SortOrder = len(a.widgets)
	a.widgets = append(a.widgets, w)
	widgets := append([]models.WidgetConfiguration(nil), a.widgets...)
	a.mu.Unlock()

	return w, a.store.SaveWidgets(ctx, widgets)
}

// RemoveWidget deletes a tile.
func (a *App) RemoveWidget(ctx context.Context, id uuid.UUID) error {
	a.mu.Lock()
	kept := a.widgets[:0]
	for _, w := range a.widgets {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	a.widgets = kept
	widgets := append([]models.WidgetConfiguration(nil), a.widgets...)
	a.mu.Unlock()

	return a.store.SaveWidgets(ctx, widgets)
}

// ReorderWidgets reassigns sort order following the given ID order. IDs not
// present keep their relative order after the listed ones.
func (a *App) ReorderWidgets(ctx context.Context, ids []uuid.UUID) error {
	a.mu.Lock()
	rank := make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}
	sort.SliceStable(a.widgets, func(i, j int) bool {
		ri, iOK := rank[a.widgets[i].ID]
		rj, jOK := rank[a.widgets[j].ID]
		if iOK && jOK {
			return ri < rj
		}
		return iOK && !jOK
	})
	for i := range a.widgets {
		a.widgets[i].SortOrder = i
	}
	widgets := append([]models.WidgetConfiguration(nil), a.widgets...)
	a.mu.Unlock()

	return a.store.SaveWidgets(ctx, widgets)
}

// --- Profile ---

// Profile returns the user profile, if one has been created.
func (a *App) Profile() (models.UserProfile, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.profile == nil {
		return models.UserProfile{}, false
	}
	return *a.profile, true
}

// UpdateProfile creates or replaces the singleton profile.
func (a *App) UpdateProfile(ctx context.Context, p models.UserProfile) (models.UserProfile, error) {
	a.mu.Lock()
	if a.profile != nil {
		p.ID = a.profile.ID
	} else if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	a.profile = &p
	saved := p
	a.mu.Unlock()

	return saved, a.store.SaveProfile(ctx, &saved)
}

// --- Analytics over history ---

// ExerciseRecords computes the personal records for one exercise.
func (a *App) ExerciseRecords(id uuid.UUID) analytics.Records {
	return analytics.ExerciseRecords(a.Sessions(), id)
}

// BestSessionVolume computes the best per-session volume for one exercise.
func (a *App) BestSessionVolume(id uuid.UUID) float64 {
	return analytics.BestSessionVolume(a.Sessions(), id)
}

// ExerciseHistory returns the completed sets for one exercise, newest first.
func (a *App) ExerciseHistory(id uuid.UUID) []models.WorkoutSet {
	return analytics.ExerciseHistory(a.Sessions(), id)
}

// WeeklyWorkoutCounts returns the trailing weekly consistency window.
func (a *App) WeeklyWorkoutCounts(weeks int) []analytics.WeekCount {
	return analytics.WeeklyWorkoutCounts(a.Sessions(), weeks, a.clock.Now())
}

// MacroTargets derives the daily nutrition targets from the profile and the
// latest logged body weight. Without a profile there is nothing to compute.
func (a *App) MacroTargets() (analytics.MacroTargets, error) {
	profile, ok := a.Profile()
	if !ok {
		return analytics.MacroTargets{}, fmt.Errorf("%w: no profile", ErrNotFound)
	}

	weight := defaultWeightLbs
	if logs := a.MeasurementsByType(models.MeasurementWeight); len(logs) > 0 {
		weight = logs[0].Value
		if logs[0].Unit == models.UnitKg {
			weight /= kgPerLb
		}
	}
	return analytics.CalculateDailyMacros(profile, weight, defaultHeightInches, a.clock.Now()), nil
}

// --- helpers ---

func cloneSessions(in []models.WorkoutSession) []models.WorkoutSession {
	out := make([]models.WorkoutSession, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

func cloneRoutine(r models.Routine) models.Routine {
	out := r
	out.Exercises = make([]models.RoutineExercise, len(r.Exercises))
	for i, re := range r.Exercises {
		c := re
		c.Sets = make([]models.RoutineSet, len(re.Sets))
		for j, rs := range re.Sets {
			s := rs
			if rs.RPE != nil {
				rpe := *rs.RPE
				s.RPE = &rpe
			}
			c.Sets[j] = s
		}
		out.Exercises[i] = c
	}
	return out
}

// TimeString formats a duration since start as H:MM:SS or M:SS, the format
// shown on the active workout header.
func TimeString(d time.Duration) string {
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
