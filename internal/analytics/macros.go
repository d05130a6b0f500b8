package analytics

import (
	"math"
	"time"

	"github.com/claude/ironlog/internal/models"
)

// MacroTargets is the daily nutrition target derived from a profile.
type MacroTargets struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

// Unit conversion factors.
const (
	lbToKg = 0.453592
	inToCm = 2.54
)

// minDailyCalories is the safety floor applied after the goal adjustment.
const minDailyCalories = 1200

// activityMultipliers scale BMR into maintenance energy (TDEE).
var activityMultipliers = map[models.ActivityLevel]float64{
	models.ActivitySedentary:  1.2,
	models.ActivityLight:      1.375,
	models.ActivityModerate:   1.55,
	models.ActivityActive:     1.725,
	models.ActivityVeryActive: 1.9,
}

// CalculateDailyMacros derives daily calorie and macro targets from the
// profile, current body weight, and height.
//
// BMR uses the Mifflin-St Jeor formula in metric units; TDEE applies the
// activity multiplier; Lose/Gain goals shift by targetWeeklyRate x 500
// kcal/day (one pound of fat is roughly 3500 kcal). The result never drops
// below 1200 kcal/day. Macros split as 1 g protein and 0.4 g fat per pound
// of body weight, with all remaining calories as carbs at 4 kcal/g.
func CalculateDailyMacros(profile models.UserProfile, weightLbs, heightInches float64, now time.Time) MacroTargets {
	weightKg := weightLbs * lbToKg
	heightCm := heightInches * inToCm
	age := float64(ageYears(profile.Birthday, now))

	bmr := 10*weightKg + 6.25*heightCm - 5*age
	if profile.Gender == models.GenderMale {
		bmr += 5
	} else {
		bmr -= 161
	}

	multiplier, ok := activityMultipliers[profile.ActivityLevel]
	if !ok {
		multiplier = activityMultipliers[models.ActivitySedentary]
	}
	tdee := bmr * multiplier

	target := tdee
	adjustment := profile.TargetWeeklyRate * 500
	switch profile.GoalType {
	case models.GoalLose:
		target -= adjustment
	case models.GoalGain:
		target += adjustment
	}
	if target < minDailyCalories {
		target = minDailyCalories
	}

	protein := int(math.Round(weightLbs))
	fat := int(math.Round(weightLbs * 0.4))
	carbCals := target - float64(protein*4) - float64(fat*9)
	if carbCals < 0 {
		carbCals = 0
	}

	return MacroTargets{
		Calories: int(math.Round(target)),
		Protein:  protein,
		Carbs:    int(math.Round(carbCals / 4)),
		Fat:      fat,
	}
}

// ageYears returns whole years between birthday and now, one less if the
// birthday has not yet occurred this year.
func ageYears(birthday, now time.Time) int {
	years := now.Year() - birthday.Year()
	anniversary := birthday.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
