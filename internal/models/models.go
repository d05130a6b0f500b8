package models

import (
	"time"

	"github.com/google/uuid"
)

// SetType classifies a performed set.
type SetType string

const (
	SetNormal  SetType = "Normal"
	SetWarmup  SetType = "Warmup"
	SetDrop    SetType = "Drop"
	SetFailure SetType = "Failure"
)

// ValidSetType reports whether s is one of the known set types.
func ValidSetType(s SetType) bool {
	switch s {
	case SetNormal, SetWarmup, SetDrop, SetFailure:
		return true
	}
	return false
}

// Exercise is a catalog entry. Sets reference exercises by ID only and cache
// the name, so editing or deleting an exercise never corrupts history.
type Exercise struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	BodyPart     string    `json:"body_part"`
	Instructions string    `json:"instructions"`
}

// Exercise equipment/category tags.
const (
	CategoryBarbell            = "Barbell"
	CategoryDumbbell           = "Dumbbell"
	CategoryMachine            = "Machine"
	CategoryWeightedBodyweight = "Weighted Bodyweight"
	CategoryAssistedBodyweight = "Assisted Bodyweight"
	CategoryRepsOnly           = "Reps Only"
	CategoryCardio             = "Cardio"
	CategoryDuration           = "Duration"
	CategoryOther              = "Other"
)

// WorkoutSet is one performed (or planned) effort within a session.
type WorkoutSet struct {
	ID           uuid.UUID `json:"id"`
	Index        int       `json:"index"`
	ExerciseID   uuid.UUID `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	Weight       float64   `json:"weight"`
	Reps         int       `json:"reps"`
	RPE          *float64  `json:"rpe,omitempty"`
	IsCompleted  bool      `json:"is_completed"`
	Type         SetType   `json:"type"`
}

// Volume returns weight times reps for the set.
func (s WorkoutSet) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// ValidRPE reports whether v is a legal perceived-exertion rating:
// 6.0 through 10.0 in 0.5 steps.
func ValidRPE(v float64) bool {
	if v < 6.0 || v > 10.0 {
		return false
	}
	doubled := v * 2
	return doubled == float64(int(doubled))
}

// WorkoutSession is one workout instance. EndTime is nil while the session is
// active and set exactly once when it finishes.
type WorkoutSession struct {
	ID        uuid.UUID    `json:"id"`
	StartTime time.Time    `json:"start_time"`
	EndTime   *time.Time   `json:"end_time,omitempty"`
	Note      string       `json:"note,omitempty"`
	Sets      []WorkoutSet `json:"sets"`
}

// IsActive reports whether the session has not been finished yet.
func (w WorkoutSession) IsActive() bool {
	return w.EndTime == nil
}

// CompletedSets returns the session's completed sets in position order.
func (w WorkoutSession) CompletedSets() []WorkoutSet {
	var out []WorkoutSet
	for _, s := range w.Sets {
		if s.IsCompleted {
			out = append(out, s)
		}
	}
	return out
}

// Clone returns a deep copy of the session. Callers get an independent
// snapshot that later mutations cannot reach.
func (w WorkoutSession) Clone() WorkoutSession {
	out := w
	if w.EndTime != nil {
		end := *w.EndTime
		out.EndTime = &end
	}
	out.Sets = make([]WorkoutSet, len(w.Sets))
	for i, s := range w.Sets {
		if s.RPE != nil {
			rpe := *s.RPE
			s.RPE = &rpe
		}
		out.Sets[i] = s
	}
	return out
}

// WorkingSetNumber returns the display number for the set at position idx:
// warmup sets are excluded from the count, so toggling a set between Normal
// and Warmup never renumbers the working sets around it. Sets with
// Type == SetWarmup have no number (callers render "W").
func (w WorkoutSession) WorkingSetNumber(idx int) int {
	if idx < 0 || idx >= len(w.Sets) {
		return 0
	}
	target := w.Sets[idx]
	if target.Type == SetWarmup {
		return 0
	}
	n := 0
	for _, s := range w.Sets {
		if s.ExerciseID != target.ExerciseID || s.Index > target.Index {
			continue
		}
		if s.Type != SetWarmup {
			n++
		}
	}
	return n
}

// RoutineSet is a planned set within a routine. Templates are not
// performances: no completion flag, no timestamp.
type RoutineSet struct {
	ID     uuid.UUID `json:"id"`
	Weight float64   `json:"weight"`
	Reps   int       `json:"reps"`
	RPE    *float64  `json:"rpe,omitempty"`
}

// RoutineExercise is an ordered group of planned sets for one exercise,
// with the exercise name cached at creation time.
type RoutineExercise struct {
	ID           uuid.UUID    `json:"id"`
	ExerciseID   uuid.UUID    `json:"exercise_id"`
	ExerciseName string       `json:"exercise_name"`
	Sets         []RoutineSet `json:"sets"`
}

// Routine is a named, reusable workout template.
type Routine struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Folder    string            `json:"folder"`
	Exercises []RoutineExercise `json:"exercises"`
}

// DefaultRoutineFolder is the bucket for routines without an explicit folder.
const DefaultRoutineFolder = "My Routines"

// MeasurementType tags a body measurement observation.
type MeasurementType string

const (
	MeasurementWeight       MeasurementType = "Weight"
	MeasurementBodyFat      MeasurementType = "Body Fat"
	MeasurementLeftBicep    MeasurementType = "Left Bicep"
	MeasurementRightBicep   MeasurementType = "Right Bicep"
	MeasurementLeftForearm  MeasurementType = "Left Forearm"
	MeasurementRightForearm MeasurementType = "Right Forearm"
	MeasurementChest        MeasurementType = "Chest"
	MeasurementWaist        MeasurementType = "Waist"
	MeasurementHips         MeasurementType = "Hips"
	MeasurementLeftThigh    MeasurementType = "Left Thigh"
	MeasurementRightThigh   MeasurementType = "Right Thigh"
	MeasurementLeftCalf     MeasurementType = "Left Calf"
	MeasurementRightCalf    MeasurementType = "Right Calf"
	MeasurementNeck         MeasurementType = "Neck"
	MeasurementShoulders    MeasurementType = "Shoulders"
	MeasurementLeftWrist    MeasurementType = "Left Wrist"
	MeasurementRightWrist   MeasurementType = "Right Wrist"
)

// MeasurementTypes lists every known measurement type.
var MeasurementTypes = []MeasurementType{
	MeasurementWeight, MeasurementBodyFat,
	MeasurementLeftBicep, MeasurementRightBicep,
	MeasurementLeftForearm, MeasurementRightForearm,
	MeasurementChest, MeasurementWaist, MeasurementHips,
	MeasurementLeftThigh, MeasurementRightThigh,
	MeasurementLeftCalf, MeasurementRightCalf,
	MeasurementNeck, MeasurementShoulders,
	MeasurementLeftWrist, MeasurementRightWrist,
}

// ValidMeasurementType reports whether t is a known measurement type.
func ValidMeasurementType(t MeasurementType) bool {
	for _, known := range MeasurementTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Measurement units. Only metric and imperial are supported.
const (
	UnitLb      = "lb"
	UnitKg      = "kg"
	UnitPercent = "%"
	UnitIn      = "in"
	UnitCm      = "cm"
)

// ValidMeasurementUnit reports whether u is a known unit tag.
func ValidMeasurementUnit(u string) bool {
	switch u {
	case UnitLb, UnitKg, UnitPercent, UnitIn, UnitCm:
		return true
	}
	return false
}

// MeasurementLog is a timestamped scalar observation. Immutable once logged.
type MeasurementLog struct {
	ID    uuid.UUID       `json:"id"`
	Date  time.Time       `json:"date"`
	Type  MeasurementType `json:"type"`
	Value float64         `json:"value"`
	Unit  string          `json:"unit"`
}

// Gender tags for the BMR formula.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// GoalType is the weight-change goal.
type GoalType string

const (
	GoalLose     GoalType = "Lose"
	GoalMaintain GoalType = "Maintain"
	GoalGain     GoalType = "Gain"
)

// ActivityLevel scales BMR into maintenance energy.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "Sedentary"
	ActivityLight      ActivityLevel = "Light"
	ActivityModerate   ActivityLevel = "Moderate"
	ActivityActive     ActivityLevel = "Active"
	ActivityVeryActive ActivityLevel = "Very Active"
)

// UserProfile is the single per-installation goal profile, created lazily on
// the first goal-setting action.
type UserProfile struct {
	ID                  uuid.UUID     `json:"id"`
	Gender              string        `json:"gender"`
	Birthday            time.Time     `json:"birthday"`
	GoalType            GoalType      `json:"goal_type"`
	TargetWeeklyRate    float64       `json:"target_weekly_rate"`
	ActivityLevel       ActivityLevel `json:"activity_level"`
	WorkoutsPerWeekGoal int           `json:"workouts_per_week_goal"`
}

// NewDefaultProfile returns a profile with sensible starting defaults.
func NewDefaultProfile() UserProfile {
	return UserProfile{
		ID:                  uuid.New(),
		Gender:              GenderMale,
		Birthday:            time.Now(),
		GoalType:            GoalMaintain,
		TargetWeeklyRate:    0,
		ActivityLevel:       ActivityModerate,
		WorkoutsPerWeekGoal: 5,
	}
}

// WidgetType tags a dashboard tile.
type WidgetType string

const (
	WidgetWorkouts    WidgetType = "workouts"
	WidgetMacros      WidgetType = "macros"
	WidgetMeasurement WidgetType = "measurement"
	WidgetExercise    WidgetType = "exercise"
)

// ExerciseMetric names the per-exercise record an exercise widget shows.
type ExerciseMetric string

const (
	MetricEst1RM    ExerciseMetric = "Est. 1RM"
	MetricMaxWeight ExerciseMetric = "Max Weight"
	MetricVolume    ExerciseMetric = "Volume"
	MetricBestSet   ExerciseMetric = "Best Set"
	MetricMaxReps   ExerciseMetric = "Max Reps"
)

// ValidExerciseMetric reports whether m is a known exercise metric.
func ValidExerciseMetric(m ExerciseMetric) bool {
	switch m {
	case MetricEst1RM, MetricMaxWeight, MetricVolume, MetricBestSet, MetricMaxReps:
		return true
	}
	return false
}

// WidgetConfiguration describes one dashboard tile. The list is user-managed
// and lives independently of the data it visualizes.
type WidgetConfiguration struct {
	ID              uuid.UUID       `json:"id"`
	Type            WidgetType      `json:"type"`
	MeasurementType MeasurementType `json:"measurement_type,omitempty"`
	ExerciseID      *uuid.UUID      `json:"exercise_id,omitempty"`
	ExerciseMetric  ExerciseMetric  `json:"exercise_metric,omitempty"`
	SortOrder       int             `json:"sort_order"`
}
