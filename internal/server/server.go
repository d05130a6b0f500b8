package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/ironlog/internal/app"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	app    *app.App
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(a *app.App, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		app:    a,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Read endpoints (no auth — tsnet handles access)
	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Get("/api/v1/exercises/{id}", s.handleGetExercise)
	s.router.Get("/api/v1/exercises/{id}/records", s.handleExerciseRecords)
	s.router.Get("/api/v1/exercises/{id}/history", s.handleExerciseHistory)
	s.router.Get("/api/v1/sessions", s.handleListSessions)
	s.router.Get("/api/v1/sessions/{id}", s.handleGetSession)
	s.router.Get("/api/v1/routines", s.handleListRoutines)
	s.router.Get("/api/v1/routines/{id}", s.handleGetRoutine)
	s.router.Get("/api/v1/measurements", s.handleListMeasurements)
	s.router.Get("/api/v1/widgets", s.handleListWidgets)
	s.router.Get("/api/v1/profile", s.handleGetProfile)
	s.router.Get("/api/v1/analytics/weekly", s.handleWeeklyWorkouts)
	s.router.Get("/api/v1/analytics/macros", s.handleMacroTargets)
	s.router.Get("/api/v1/workout", s.handleActiveWorkout)
	s.router.Get("/api/v1/timer", s.handleTimerState)

	// Write endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))

		r.Post("/api/v1/exercises", s.handleCreateExercise)
		r.Put("/api/v1/exercises/{id}", s.handleUpdateExercise)
		r.Delete("/api/v1/exercises/{id}", s.handleDeleteExercise)

		r.Put("/api/v1/sessions/{id}", s.handleUpdateSession)
		r.Delete("/api/v1/sessions/{id}", s.handleDeleteSession)

		r.Post("/api/v1/routines", s.handleCreateRoutine)
		r.Put("/api/v1/routines/{id}", s.handleUpdateRoutine)
		r.Delete("/api/v1/routines/{id}", s.handleDeleteRoutine)
		r.Post("/api/v1/routines/{id}/duplicate", s.handleDuplicateRoutine)

		r.Post("/api/v1/measurements", s.handleCreateMeasurement)
		r.Delete("/api/v1/measurements/{id}", s.handleDeleteMeasurement)

		r.Post("/api/v1/widgets", s.handleCreateWidget)
		r.Delete("/api/v1/widgets/{id}", s.handleDeleteWidget)
		r.Put("/api/v1/widgets/order", s.handleReorderWidgets)

		r.Put("/api/v1/profile", s.handleUpdateProfile)

		r.Post("/api/v1/workout/start", s.handleStartWorkout)
		r.Post("/api/v1/workout/exercises", s.handleWorkoutAddExercise)
		r.Delete("/api/v1/workout/exercises/{id}", s.handleWorkoutRemoveExercise)
		r.Post("/api/v1/workout/exercises/{id}/sets", s.handleWorkoutAddSet)
		r.Put("/api/v1/workout/exercises/{id}/rest", s.handleWorkoutSetRest)
		r.Patch("/api/v1/workout/sets/{id}", s.handleWorkoutUpdateSet)
		r.Delete("/api/v1/workout/sets/{id}", s.handleWorkoutDeleteSet)
		r.Post("/api/v1/workout/sets/{id}/toggle", s.handleWorkoutToggleSet)
		r.Post("/api/v1/workout/finish", s.handleFinishWorkout)
		r.Post("/api/v1/workout/discard", s.handleDiscardWorkout)

		r.Post("/api/v1/timer/start", s.handleTimerStart)
		r.Post("/api/v1/timer/pause", s.handleTimerPause)
		r.Post("/api/v1/timer/resume", s.handleTimerResume)
		r.Post("/api/v1/timer/add", s.handleTimerAdd)
		r.Post("/api/v1/timer/stop", s.handleTimerStop)
	})
}
