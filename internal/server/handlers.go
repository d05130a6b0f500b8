package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/ironlog/internal/app"
	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// --- Exercises ---

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Exercises())
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	ex, found := s.app.ExerciseByID(id)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var ex models.Exercise
	if !decodeJSON(w, r, &ex) {
		return
	}
	created, err := s.app.AddExercise(r.Context(), ex)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var ex models.Exercise
	if !decodeJSON(w, r, &ex) {
		return
	}
	ex.ID = id
	if err := s.app.UpdateExercise(r.Context(), ex); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.app.DeleteExercise(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExerciseRecords(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.app.ExerciseRecords(id))
}

func (s *Server) handleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	sets := s.app.ExerciseHistory(id)
	if sets == nil {
		sets = []models.WorkoutSet{}
	}
	writeJSON(w, http.StatusOK, sets)
}

// --- Session history ---

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Sessions())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	session, found := s.app.SessionByID(id)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var session models.WorkoutSession
	if !decodeJSON(w, r, &session) {
		return
	}
	session.ID = id
	if err := s.app.UpdateSession(r.Context(), session); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.app.DeleteSession(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Routines ---

func (s *Server) handleListRoutines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Routines())
}

func (s *Server) handleGetRoutine(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	routine, found := s.app.RoutineByID(id)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "routine not found"})
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

func (s *Server) handleCreateRoutine(w http.ResponseWriter, r *http.Request) {
	var routine models.Routine
	if !decodeJSON(w, r, &routine) {
		return
	}
	created, err := s.app.AddRoutine(r.Context(), routine)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateRoutine(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var routine models.Routine
	if !decodeJSON(w, r, &routine) {
		return
	}
	routine.ID = id
	if err := s.app.UpdateRoutine(r.Context(), routine); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.app.DeleteRoutine(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDuplicateRoutine(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	dup, err := s.app.DuplicateRoutine(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dup)
}

// --- Measurements ---

func (s *Server) handleListMeasurements(w http.ResponseWriter, r *http.Request) {
	typ := models.MeasurementType(r.URL.Query().Get("type"))
	if typ == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "type parameter required"})
		return
	}
	if !models.ValidMeasurementType(typ) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown measurement type"})
		return
	}
	logs := s.app.MeasurementsByType(typ)
	if logs == nil {
		logs = []models.MeasurementLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleCreateMeasurement(w http.ResponseWriter, r *http.Request) {
	var m models.MeasurementLog
	if !decodeJSON(w, r, &m) {
		return
	}
	created, err := s.app.AddMeasurement(r.Context(), m)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteMeasurement(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.app.DeleteMeasurement(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Widgets ---

func (s *Server) handleListWidgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Widgets())
}

func (s *Server) handleCreateWidget(w http.ResponseWriter, r *http.Request) {
	var widget models.WidgetConfiguration
	if !decodeJSON(w, r, &widget) {
		return
	}
	created, err := s.app.AddWidget(r.Context(), widget)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteWidget(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.app.RemoveWidget(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReorderWidgets(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.app.ReorderWidgets(r.Context(), req.IDs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Widgets())
}

// --- Profile ---

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.app.Profile()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no profile"})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile
	if !decodeJSON(w, r, &profile) {
		return
	}
	saved, err := s.app.UpdateProfile(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// --- Analytics ---

func (s *Server) handleWeeklyWorkouts(w http.ResponseWriter, r *http.Request) {
	weeks := 8
	if v := r.URL.Query().Get("weeks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weeks must be a positive integer"})
			return
		}
		weeks = n
	}
	writeJSON(w, http.StatusOK, s.app.WeeklyWorkoutCounts(weeks))
}

func (s *Server) handleMacroTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := s.app.MacroTargets()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, targets)
}

// --- Active workout ---

func (s *Server) handleActiveWorkout(w http.ResponseWriter, r *http.Request) {
	session, elapsed, ok := s.app.ActiveWorkout()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active workout"})
		return
	}
	writeJSON(w, http.StatusOK, activeWorkout{Session: session, Elapsed: elapsed})
}

// activeWorkout is the GET /workout payload: the session plus its
// elapsed-time display.
type activeWorkout struct {
	Session models.WorkoutSession `json:"session"`
	Elapsed string                `json:"elapsed"`
}

func (s *Server) handleStartWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoutineID *uuid.UUID `json:"routine_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var routine *models.Routine
	if req.RoutineID != nil {
		found, ok := s.app.RoutineByID(*req.RoutineID)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "routine not found"})
			return
		}
		routine = &found
	}

	session, err := s.app.Workout().Start(routine)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleWorkoutAddExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExerciseID uuid.UUID `json:"exercise_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	ex, found := s.app.ExerciseByID(req.ExerciseID)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	set, err := s.app.Workout().AddExercise(ex)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleWorkoutRemoveExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.app.Workout().RemoveExercise(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWorkoutAddSet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	set, err := s.app.Workout().AddSet(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleWorkoutSetRest(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req struct {
		Seconds int `json:"seconds"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.app.Workout().SetRestDuration(id, req.Seconds)
	writeJSON(w, http.StatusOK, map[string]int{"seconds": s.app.Workout().RestDuration(id)})
}

func (s *Server) handleWorkoutUpdateSet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req struct {
		Weight   *float64        `json:"weight"`
		Reps     *int            `json:"reps"`
		RPE      *float64        `json:"rpe"`
		ClearRPE bool            `json:"clear_rpe"`
		Type     *models.SetType `json:"type"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	set, err := s.app.Workout().UpdateSet(id, workout.SetPatch{
		Weight:   req.Weight,
		Reps:     req.Reps,
		RPE:      req.RPE,
		ClearRPE: req.ClearRPE,
		Type:     req.Type,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleWorkoutDeleteSet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.app.Workout().DeleteSet(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWorkoutToggleSet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	set, err := s.app.Workout().ToggleSetDone(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Note string `json:"note"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	session, err := s.app.Workout().Finish(r.Context(), req.Note)
	if err != nil {
		if errors.Is(err, workout.ErrNoActiveSession) {
			writeError(w, err)
			return
		}
		// Session is finished in memory; only persistence failed.
		s.log.Error("persisting finished session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDiscardWorkout(w http.ResponseWriter, r *http.Request) {
	s.app.Workout().Discard()
	w.WriteHeader(http.StatusNoContent)
}

// --- Rest timer ---

type timerState struct {
	Running   bool   `json:"running"`
	Remaining int    `json:"remaining"`
	Display   string `json:"display"`
}

func (s *Server) handleTimerState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.timerState())
}

func (s *Server) handleTimerStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seconds int `json:"seconds"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Seconds <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seconds must be positive"})
		return
	}
	s.app.RestTimer().Start(req.Seconds)
	writeJSON(w, http.StatusOK, s.timerState())
}

func (s *Server) handleTimerPause(w http.ResponseWriter, r *http.Request) {
	s.app.RestTimer().Pause()
	writeJSON(w, http.StatusOK, s.timerState())
}

func (s *Server) handleTimerResume(w http.ResponseWriter, r *http.Request) {
	s.app.RestTimer().Resume()
	writeJSON(w, http.StatusOK, s.timerState())
}

func (s *Server) handleTimerAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seconds int `json:"seconds"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Seconds <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seconds must be positive"})
		return
	}
	s.app.RestTimer().AddTime(req.Seconds)
	writeJSON(w, http.StatusOK, s.timerState())
}

func (s *Server) handleTimerStop(w http.ResponseWriter, r *http.Request) {
	s.app.RestTimer().Stop()
	writeJSON(w, http.StatusOK, s.timerState())
}

func (s *Server) timerState() timerState {
	t := s.app.RestTimer()
	return timerState{
		Running:   t.Running(),
		Remaining: t.Remaining(),
		Display:   t.TimeString(),
	}
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ID"})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrNotFound),
		errors.Is(err, workout.ErrSetNotFound),
		errors.Is(err, workout.ErrExerciseNotInSession):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrInvalidInput),
		errors.Is(err, workout.ErrInvalidWeight),
		errors.Is(err, workout.ErrInvalidReps),
		errors.Is(err, workout.ErrInvalidRPE),
		errors.Is(err, workout.ErrInvalidSetType):
		status = http.StatusBadRequest
	case errors.Is(err, workout.ErrNoActiveSession),
		errors.Is(err, workout.ErrSessionActive):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
