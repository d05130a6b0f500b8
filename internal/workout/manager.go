// Package workout owns the active-session state machine: starting, mutating,
// finishing, or discarding the one in-progress workout, and driving the rest
// timer on set completion.
package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/timer"
	"github.com/google/uuid"
)

// Invalid-state and invalid-input conditions. Mutators report these instead
// of crashing; the in-memory state is left unchanged.
var (
	ErrNoActiveSession      = errors.New("no active session")
	ErrSessionActive        = errors.New("a session is already active")
	ErrSetNotFound          = errors.New("set not found in active session")
	ErrExerciseNotInSession = errors.New("exercise not in active session")
	ErrInvalidWeight        = errors.New("weight must be non-negative")
	ErrInvalidReps          = errors.New("reps must be non-negative")
	ErrInvalidRPE           = errors.New("rpe must be between 6.0 and 10.0 in 0.5 steps")
	ErrInvalidSetType       = errors.New("unknown set type")
)

// Recorder receives a finished session for persistence. The finish transition
// completes in memory regardless of the recorder's outcome.
type Recorder interface {
	RecordSession(ctx context.Context, session models.WorkoutSession) error
}

// Manager is the sole arbiter of "the" active session: at most one session is
// active at any time, enforced here rather than assumed of callers.
type Manager struct {
	clock    timer.Clock
	rest     *timer.RestTimer
	recorder Recorder
	log      *slog.Logger

	mu            sync.Mutex
	active        *models.WorkoutSession
	restDurations map[uuid.UUID]int // seconds per exercise; absent means off
}

// New creates an idle Manager.
func New(clock timer.Clock, rest *timer.RestTimer, recorder Recorder, log *slog.Logger) *Manager {
	return &Manager{
		clock:         clock,
		rest:          rest,
		recorder:      recorder,
		log:           log,
		restDurations: make(map[uuid.UUID]int),
	}
}

// RestTimer exposes the countdown owned by the active workout context.
func (m *Manager) RestTimer() *timer.RestTimer {
	return m.rest
}

// Start transitions Idle -> Active. When a routine is given, one incomplete
// Normal set is materialized per routine set, position-indexed in routine
// traversal order with weight, reps, and RPE carried over. Starting while a
// session is already active reports ErrSessionActive and changes nothing.
func (m *Manager) Start(routine *models.Routine) (models.WorkoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return models.WorkoutSession{}, ErrSessionActive
	}

	session := &models.WorkoutSession{
		ID:        uuid.New(),
		StartTime: m.clock.Now(),
	}

	if routine != nil {
		idx := 0
		for _, re := range routine.Exercises {
			for _, rs := range re.Sets {
				set := models.WorkoutSet{
					ID:           uuid.New(),
					Index:        idx,
					ExerciseID:   re.ExerciseID,
					ExerciseName: re.ExerciseName,
					Weight:       rs.Weight,
					Reps:         rs.Reps,
					Type:         models.SetNormal,
				}
				if rs.RPE != nil {
					rpe := *rs.RPE
					set.RPE = &rpe
				}
				session.Sets = append(session.Sets, set)
				idx++
			}
		}
	}

	m.active = session
	m.log.Info("workout started", "session_id", session.ID, "sets", len(session.Sets))
	return session.Clone(), nil
}

// Active returns a snapshot of the in-progress session, if any.
func (m *Manager) Active() (models.WorkoutSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return models.WorkoutSession{}, false
	}
	return m.active.Clone(), true
}

// AddExercise adds an exercise to the active session by creating exactly one
// default set for it, with the display name cached at creation time.
func (m *Manager) AddExercise(ex models.Exercise) (models.WorkoutSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return models.WorkoutSet{}, ErrNoActiveSession
	}

	set := models.WorkoutSet{
		ID:           uuid.New(),
		Index:        m.nextIndexLocked(),
		ExerciseID:   ex.ID,
		ExerciseName: ex.Name,
		Type:         models.SetNormal,
	}
	m.active.Sets = append(m.active.Sets, set)
	return set, nil
}

// AddSet appends a set for an exercise already in the session, copying the
// previous set's weight and reps as a convenience default.
func (m *Manager) AddSet(exerciseID uuid.UUID) (models.WorkoutSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return models.WorkoutSet{}, ErrNoActiveSession
	}

	var prev *models.WorkoutSet
	for i := range m.active.Sets {
		if m.active.Sets[i].ExerciseID == exerciseID {
			prev = &m.active.Sets[i]
		}
	}
	if prev == nil {
		return models.WorkoutSet{}, ErrExerciseNotInSession
	}

	set := models.WorkoutSet{
		ID:           uuid.New(),
		Index:        m.nextIndexLocked(),
		ExerciseID:   exerciseID,
		ExerciseName: prev.ExerciseName,
		Weight:       prev.Weight,
		Reps:         prev.Reps,
		Type:         models.SetNormal,
	}
	m.active.Sets = append(m.active.Sets, set)
	return set, nil
}

// SetPatch carries the mutable set fields for UpdateSet. Nil fields are left
// unchanged; ClearRPE removes the rating.
type SetPatch struct {
	Weight   *float64
	Reps     *int
	RPE      *float64
	ClearRPE bool
	Type     *models.SetType
}

// UpdateSet applies a validated patch to one set. Invalid input is rejected
// as a whole and the prior values are retained.
func (m *Manager) UpdateSet(setID uuid.UUID, patch SetPatch) (models.WorkoutSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return models.WorkoutSet{}, ErrNoActiveSession
	}
	set := m.findSetLocked(setID)
	if set == nil {
		return models.WorkoutSet{}, ErrSetNotFound
	}

	if patch.Weight != nil && *patch.Weight < 0 {
		return models.WorkoutSet{}, ErrInvalidWeight
	}
	if patch.Reps != nil && *patch.Reps < 0 {
		return models.WorkoutSet{}, ErrInvalidReps
	}
	if patch.RPE != nil && !models.ValidRPE(*patch.RPE) {
		return models.WorkoutSet{}, ErrInvalidRPE
	}
	if patch.Type != nil && !models.ValidSetType(*patch.Type) {
		return models.WorkoutSet{}, ErrInvalidSetType
	}

	if patch.Weight != nil {
		set.Weight = *patch.Weight
	}
	if patch.Reps != nil {
		set.Reps = *patch.Reps
	}
	if patch.RPE != nil {
		rpe := *patch.RPE
		set.RPE = &rpe
	} else if patch.ClearRPE {
		set.RPE = nil
	}
	if patch.Type != nil {
		set.Type = *patch.Type
	}
	return *set, nil
}

// DeleteSet removes one set from the active session.
func (m *Manager) DeleteSet(setID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return ErrNoActiveSession
	}
	for i, s := range m.active.Sets {
		if s.ID == setID {
			m.active.Sets = append(m.active.Sets[:i], m.active.Sets[i+1:]...)
			return nil
		}
	}
	return ErrSetNotFound
}

// ToggleSetDone flips a set's completion flag. Completing a set is the only
// transition that may start the rest timer, and only when a rest duration has
// been configured for the set's exercise (the default is off).
func (m *Manager) ToggleSetDone(setID uuid.UUID) (models.WorkoutSet, error) {
	m.mu.Lock()
	if m.active == nil {
		m.mu.Unlock()
		return models.WorkoutSet{}, ErrNoActiveSession
	}
	set := m.findSetLocked(setID)
	if set == nil {
		m.mu.Unlock()
		return models.WorkoutSet{}, ErrSetNotFound
	}

	set.IsCompleted = !set.IsCompleted
	out := *set
	restSeconds := 0
	if set.IsCompleted {
		restSeconds = m.restDurations[set.ExerciseID]
	}
	m.mu.Unlock()

	if restSeconds > 0 {
		m.rest.Start(restSeconds)
	}
	return out, nil
}

// SetRestDuration configures the rest countdown started after completing a
// set of the given exercise. Zero or negative seconds turn it off.
func (m *Manager) SetRestDuration(exerciseID uuid.UUID, seconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seconds <= 0 {
		delete(m.restDurations, exerciseID)
		return
	}
	m.restDurations[exerciseID] = seconds
}

// RestDuration returns the configured rest seconds for an exercise, zero when
// off.
func (m *Manager) RestDuration(exerciseID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restDurations[exerciseID]
}

// RemoveExercise cascades over the active session only: every set referencing
// the exercise is deleted. Historical sessions are untouched.
func (m *Manager) RemoveExercise(exerciseID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return ErrNoActiveSession
	}
	kept := m.active.Sets[:0]
	for _, s := range m.active.Sets {
		if s.ExerciseID != exerciseID {
			kept = append(kept, s)
		}
	}
	m.active.Sets = kept
	delete(m.restDurations, exerciseID)
	return nil
}

// Finish transitions Active -> Finished: the end timestamp is set, incomplete
// sets are dropped, and the session is handed to the Recorder. The in-memory
// transition is not rolled back on a persistence failure; the error is
// surfaced alongside the finished session so the caller can retry the save.
func (m *Manager) Finish(ctx context.Context, note string) (models.WorkoutSession, error) {
	m.mu.Lock()
	if m.active == nil {
		m.mu.Unlock()
		return models.WorkoutSession{}, ErrNoActiveSession
	}

	session := *m.active
	end := m.clock.Now()
	session.EndTime = &end
	session.Note = note
	session.Sets = session.CompletedSets()

	m.active = nil
	m.mu.Unlock()

	m.rest.Stop()
	m.log.Info("workout finished", "session_id", session.ID, "sets", len(session.Sets))

	if err := m.recorder.RecordSession(ctx, session); err != nil {
		m.log.Error("failed to persist finished session", "session_id", session.ID, "error", err)
		return session, fmt.Errorf("recording session: %w", err)
	}
	return session, nil
}

// Discard transitions Active -> Discarded: the in-memory session is dropped
// and nothing is persisted. Idempotent; discarding while idle is a no-op.
func (m *Manager) Discard() {
	m.mu.Lock()
	wasActive := m.active != nil
	m.active = nil
	m.mu.Unlock()

	m.rest.Stop()
	if wasActive {
		m.log.Info("workout discarded")
	}
}

// findSetLocked returns a pointer into the active session's set slice.
func (m *Manager) findSetLocked(setID uuid.UUID) *models.WorkoutSet {
	for i := range m.active.Sets {
		if m.active.Sets[i].ID == setID {
			return &m.active.Sets[i]
		}
	}
	return nil
}

// nextIndexLocked returns a position index greater than every existing one,
// so deleting sets never causes index reuse.
func (m *Manager) nextIndexLocked() int {
	next := 0
	for _, s := range m.active.Sets {
		if s.Index >= next {
			next = s.Index + 1
		}
	}
	return next
}
