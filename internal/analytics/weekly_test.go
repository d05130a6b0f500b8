package analytics

import (
	"testing"
	"time"

	"github.com/claude/ironlog/internal/models"
)

// TestWeeklyWorkoutCounts verifies zero-filled trailing window ordered oldest
// to newest: sessions two weeks ago and this week, nothing in between.
func TestWeeklyWorkoutCounts(t *testing.T) {
	// A Wednesday, so week boundaries are unambiguous.
	now := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

	sessions := []models.WorkoutSession{
		{StartTime: now.AddDate(0, 0, -14)},          // two weeks ago
		{StartTime: now},                             // this week
		{StartTime: now.AddDate(0, 0, -2)},           // also this week (Monday)
	}

	counts := WeeklyWorkoutCounts(sessions, 8, now)
	if len(counts) != 8 {
		t.Fatalf("got %d weeks, want 8", len(counts))
	}

	want := []int{0, 0, 0, 0, 0, 1, 0, 2}
	for i, wc := range counts {
		if wc.Count != want[i] {
			t.Errorf("week %d (%s) count = %d, want %d", i, wc.WeekStart.Format("2006-01-02"), wc.Count, want[i])
		}
	}

	// Chronological order, one week apart.
	for i := 1; i < len(counts); i++ {
		if !counts[i].WeekStart.Equal(counts[i-1].WeekStart.AddDate(0, 0, 7)) {
			t.Errorf("week starts not consecutive at %d: %v -> %v", i, counts[i-1].WeekStart, counts[i].WeekStart)
		}
	}

	// The last entry is the current week, starting on Monday.
	last := counts[len(counts)-1]
	if last.WeekStart.Weekday() != time.Monday {
		t.Errorf("week start = %v, want Monday", last.WeekStart.Weekday())
	}
	if !now.After(last.WeekStart) {
		t.Errorf("current week start %v should precede now %v", last.WeekStart, now)
	}
}

// TestWeeklyWorkoutCountsSundayBoundary verifies that a Sunday session lands
// in the ISO week that began the preceding Monday.
func TestWeeklyWorkoutCountsSundayBoundary(t *testing.T) {
	sunday := time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC)
	sessions := []models.WorkoutSession{{StartTime: sunday}}

	counts := WeeklyWorkoutCounts(sessions, 1, sunday)
	if len(counts) != 1 {
		t.Fatalf("got %d weeks, want 1", len(counts))
	}
	if counts[0].Count != 1 {
		t.Errorf("count = %d, want 1", counts[0].Count)
	}
	wantStart := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	if !counts[0].WeekStart.Equal(wantStart) {
		t.Errorf("week start = %v, want %v", counts[0].WeekStart, wantStart)
	}
}

// TestWeeklyWorkoutCountsEmpty verifies an all-zero window for no history.
func TestWeeklyWorkoutCountsEmpty(t *testing.T) {
	now := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)
	counts := WeeklyWorkoutCounts(nil, 4, now)
	if len(counts) != 4 {
		t.Fatalf("got %d weeks, want 4", len(counts))
	}
	for i, wc := range counts {
		if wc.Count != 0 {
			t.Errorf("week %d count = %d, want 0", i, wc.Count)
		}
	}
}
