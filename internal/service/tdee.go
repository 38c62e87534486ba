package service

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/model"
)

// activityMultipliers maps activity level strings to their TDEE
// multiplier. Also the source of truth for valid activity levels.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// Baseline is the outcome of TDEE derivation: the daily calorie budget
// the weekly goal is built from.
type Baseline struct {
	BMR          int
	TDEE         int
	DailyBudget  int
	PaceKgPerWk  float64
	DailyDeficit int
}

const (
	kcalPerKg = 7700

	// Pace bounds: losing faster than ~0.9 kg/week is unsafe, slower
	// than ~0.1 kg/week makes the target date meaningless.
	maxPaceKgPerWk = 0.9
	minPaceKgPerWk = 0.1
)

// ComputeBaseline derives BMR (Mifflin-St Jeor), TDEE, and a suggested
// daily budget from the profile. now anchors age and time-to-target.
func ComputeBaseline(p model.Profile, now time.Time) (*Baseline, error) {
	if p.Sex != "male" && p.Sex != "female" {
		return nil, fmt.Errorf("invalid sex %q (use male or female)", p.Sex)
	}
	mult, ok := activityMultipliers[p.ActivityLevel]
	if !ok {
		return nil, fmt.Errorf("invalid activity level %q", p.ActivityLevel)
	}
	if p.HeightCM <= 0 || p.WeightKG <= 0 || p.TargetWeightKG <= 0 {
		return nil, fmt.Errorf("height and weights must be > 0")
	}

	birth, err := parseDate(p.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("birth date: %w", err)
	}
	age := now.Year() - birth.Year()
	if now.Before(birth.AddDate(age, 0, 0)) {
		age--
	}
	if age < 0 || age > 130 {
		return nil, fmt.Errorf("implausible age %d derived from birth date %s", age, p.BirthDate)
	}

	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(age)
	if p.Sex == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}
	tdee := bmr * mult

	target, err := parseDate(p.TargetDate)
	if err != nil {
		return nil, fmt.Errorf("target date: %w", err)
	}
	weeksUntil := target.Sub(now).Hours() / 24 / 7
	if weeksUntil <= 0 {
		return nil, fmt.Errorf("target date %s is not in the future", p.TargetDate)
	}
	pace := (p.WeightKG - p.TargetWeightKG) / weeksUntil
	if pace > maxPaceKgPerWk {
		pace = maxPaceKgPerWk
	}
	if pace < minPaceKgPerWk {
		pace = minPaceKgPerWk
	}

	dailyDeficit := pace * kcalPerKg / 7
	budget := tdee - dailyDeficit

	return &Baseline{
		BMR:          int(math.Round(bmr)),
		TDEE:         int(math.Round(tdee)),
		DailyBudget:  int(math.Round(budget)),
		PaceKgPerWk:  pace,
		DailyDeficit: int(math.Round(dailyDeficit)),
	}, nil
}

// SaveProfile stores the single body profile row.
func SaveProfile(db *sql.DB, p model.Profile) error {
	p.Sex = strings.ToLower(strings.TrimSpace(p.Sex))
	p.ActivityLevel = strings.ToLower(strings.TrimSpace(p.ActivityLevel))
	if _, err := ComputeBaseline(p, time.Now()); err != nil {
		return err
	}
	_, err := db.Exec(`
INSERT INTO profile(id, sex, birth_date, height_cm, weight_kg, activity_level, target_weight_kg, target_date, updated_at)
VALUES(1, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  sex=excluded.sex,
  birth_date=excluded.birth_date,
  height_cm=excluded.height_cm,
  weight_kg=excluded.weight_kg,
  activity_level=excluded.activity_level,
  target_weight_kg=excluded.target_weight_kg,
  target_date=excluded.target_date,
  updated_at=CURRENT_TIMESTAMP
`, p.Sex, p.BirthDate, p.HeightCM, p.WeightKG, p.ActivityLevel, p.TargetWeightKG, p.TargetDate)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// LoadProfile returns the stored profile, nil when none was saved.
func LoadProfile(db *sql.DB) (*model.Profile, error) {
	var p model.Profile
	var updatedRaw string
	err := db.QueryRow(`
SELECT sex, birth_date, height_cm, weight_kg, activity_level, target_weight_kg, target_date, updated_at
FROM profile
WHERE id = 1
`).Scan(&p.Sex, &p.BirthDate, &p.HeightCM, &p.WeightKG, &p.ActivityLevel, &p.TargetWeightKG, &p.TargetDate, &updatedRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	p.UpdatedAt = parseTimestamp(updatedRaw)
	return &p, nil
}
