package analytics

import (
	"fmt"
	"time"

	"github.com/claude/ironlog/internal/models"
)

// WeekCount is the number of workouts in one ISO week.
type WeekCount struct {
	WeekStart time.Time `json:"week_start"`
	Year      int       `json:"year"`
	Week      int       `json:"week"`
	Count     int       `json:"count"`
}

// WeeklyWorkoutCounts groups sessions by the ISO week of their start
// timestamp and returns one count per week for a trailing window of the given
// length, ending with the week containing now. Weeks with no sessions are
// zero-filled; the result is ordered oldest to newest.
func WeeklyWorkoutCounts(sessions []models.WorkoutSession, weeks int, now time.Time) []WeekCount {
	if weeks <= 0 {
		return nil
	}

	counts := make(map[string]int, len(sessions))
	for _, s := range sessions {
		counts[isoWeekKey(s.StartTime)]++
	}

	out := make([]WeekCount, 0, weeks)
	for i := weeks - 1; i >= 0; i-- {
		weekStart := startOfISOWeek(now.AddDate(0, 0, -7*i))
		year, week := weekStart.ISOWeek()
		out = append(out, WeekCount{
			WeekStart: weekStart,
			Year:      year,
			Week:      week,
			Count:     counts[isoWeekKey(weekStart)],
		})
	}
	return out
}

// startOfISOWeek returns midnight on the Monday of t's week, in t's location.
func startOfISOWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the preceding ISO week
	}
	monday := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

// isoWeekKey identifies a time's ISO week, e.g. "2025-W23".
func isoWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
