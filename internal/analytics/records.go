// Package analytics holds the pure calculators that turn finished sessions
// into records, trends, and nutrition targets. Nothing here performs I/O or
// mutates its inputs; absent history yields zero values, never errors.
package analytics

import (
	"math"
	"sort"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
)

// Records holds the personal records for one exercise across all completed
// sets. The zero value is the "no data" result.
type Records struct {
	MaxWeight    float64 `json:"max_weight"`
	Est1RM       float64 `json:"est_1rm"`
	MaxSetVolume float64 `json:"max_set_volume"`
	MaxReps      int     `json:"max_reps"`
}

// Estimated1RM estimates a one-rep max from a submaximal set using the Epley
// formula. A single rep is its own max; zero reps estimate nothing.
func Estimated1RM(weight float64, reps int) float64 {
	if reps <= 0 {
		return 0
	}
	if reps == 1 {
		return weight
	}
	return weight * (1 + float64(reps)/30)
}

// ExerciseRecords scans every completed set for the exercise across the given
// sessions and returns the personal records. Weight and estimated 1RM are
// rounded to one decimal, single-set volume to a whole number.
func ExerciseRecords(sessions []models.WorkoutSession, exerciseID uuid.UUID) Records {
	var rec Records
	for _, session := range sessions {
		for _, set := range session.Sets {
			if set.ExerciseID != exerciseID || !set.IsCompleted {
				continue
			}
			if set.Weight > rec.MaxWeight {
				rec.MaxWeight = set.Weight
			}
			if set.Reps > rec.MaxReps {
				rec.MaxReps = set.Reps
			}
			if est := Estimated1RM(set.Weight, set.Reps); est > rec.Est1RM {
				rec.Est1RM = est
			}
			if v := set.Volume(); v > rec.MaxSetVolume {
				rec.MaxSetVolume = v
			}
		}
	}
	rec.MaxWeight = round1(rec.MaxWeight)
	rec.Est1RM = round1(rec.Est1RM)
	rec.MaxSetVolume = math.Round(rec.MaxSetVolume)
	return rec
}

// BestSessionVolume returns the highest per-session volume (sum of
// weight x reps over that session's completed sets) for the exercise.
func BestSessionVolume(sessions []models.WorkoutSession, exerciseID uuid.UUID) float64 {
	var best float64
	for _, session := range sessions {
		var total float64
		for _, set := range session.Sets {
			if set.ExerciseID == exerciseID && set.IsCompleted {
				total += set.Volume()
			}
		}
		if total > best {
			best = total
		}
	}
	return math.Round(best)
}

// ExerciseHistory returns every completed set for the exercise, newest
// session first, sets in position order within a session.
func ExerciseHistory(sessions []models.WorkoutSession, exerciseID uuid.UUID) []models.WorkoutSet {
	ordered := make([]models.WorkoutSession, len(sessions))
	copy(ordered, sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartTime.After(ordered[j].StartTime)
	})

	var out []models.WorkoutSet
	for _, session := range ordered {
		for _, set := range session.Sets {
			if set.ExerciseID == exerciseID && set.IsCompleted {
				out = append(out, set)
			}
		}
	}
	return out
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
