package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("IronLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("IronLog workout tracking server. Query the exercise catalog, personal records, per-exercise set history, weekly training consistency, body measurements, and daily nutrition targets."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetExerciseRecords, Handler: h.getExerciseRecords},
		server.ServerTool{Tool: toolGetExerciseHistory, Handler: h.getExerciseHistory},
		server.ServerTool{Tool: toolGetWeeklyWorkouts, Handler: h.getWeeklyWorkouts},
		server.ServerTool{Tool: toolGetMacroTargets, Handler: h.getMacroTargets},
		server.ServerTool{Tool: toolGetMeasurements, Handler: h.getMeasurements},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
		server.ServerResource{Resource: resRoutines, Handler: h.routines},
		server.ServerResource{Resource: resProfile, Handler: h.profile},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentSessions = mcp.NewResource(
	"ironlog://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("Completed workout sessions from the last 14 days, including every logged set"),
	mcp.WithMIMEType("application/json"),
)

var resRoutines = mcp.NewResource(
	"ironlog://routines",
	"Routines",
	mcp.WithResourceDescription("All workout routine templates with their planned exercises and sets"),
	mcp.WithMIMEType("application/json"),
)

var resProfile = mcp.NewResource(
	"ironlog://profile",
	"User Profile",
	mcp.WithResourceDescription("The user's goal profile: gender, birthday, weight goal, activity level, and weekly workout target"),
	mcp.WithMIMEType("application/json"),
)
