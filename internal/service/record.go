package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/model"
)

type MealInput struct {
	Date     string
	Name     string
	Calories int
}

type WorkoutInput struct {
	Date           string
	WorkoutType    string
	CaloriesBurned int
	DurationMin    *int
}

// LogMeal records a meal and lazily creates the day's record. Validation
// happens here so bad input never reaches the store.
func LogMeal(db *sql.DB, in MealInput) (int64, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return 0, fmt.Errorf("meal name is required")
	}
	if err := validatePositiveInt("calories", in.Calories); err != nil {
		return 0, err
	}
	date, err := normalizeDate(in.Date)
	if err != nil {
		return 0, err
	}
	if err := ensureDailyRecord(db, date); err != nil {
		return 0, err
	}
	res, err := db.Exec(`INSERT INTO meals(date, name, calories) VALUES(?, ?, ?)`, date, in.Name, in.Calories)
	if err != nil {
		return 0, fmt.Errorf("log meal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve meal id: %w", err)
	}
	return id, nil
}

func DeleteMeal(db *sql.DB, id int64) error {
	if id <= 0 {
		return fmt.Errorf("meal id must be > 0")
	}
	res, err := db.Exec(`DELETE FROM meals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete meal %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("meal %d: %w", id, ErrNotFound)
	}
	return nil
}

func LogWorkout(db *sql.DB, in WorkoutInput) (int64, error) {
	in.WorkoutType = strings.ToLower(strings.TrimSpace(in.WorkoutType))
	if in.WorkoutType == "" {
		return 0, fmt.Errorf("workout type is required")
	}
	if err := validatePositiveInt("calories burned", in.CaloriesBurned); err != nil {
		return 0, err
	}
	if in.DurationMin != nil && *in.DurationMin <= 0 {
		return 0, fmt.Errorf("duration must be > 0")
	}
	date, err := normalizeDate(in.Date)
	if err != nil {
		return 0, err
	}
	if err := ensureDailyRecord(db, date); err != nil {
		return 0, err
	}
	res, err := db.Exec(`
INSERT INTO workouts(date, workout_type, calories_burned, duration_min)
VALUES(?, ?, ?, ?)
`, date, in.WorkoutType, in.CaloriesBurned, in.DurationMin)
	if err != nil {
		return 0, fmt.Errorf("log workout: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve workout id: %w", err)
	}
	return id, nil
}

func DeleteWorkout(db *sql.DB, id int64) error {
	if id <= 0 {
		return fmt.Errorf("workout id must be > 0")
	}
	res, err := db.Exec(`DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete workout %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("workout %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateBurnedCalories stores the device-synced active calories for a
// date. The value replaces any previous sync for that date; workouts
// logged by hand are tracked separately and added on read.
func UpdateBurnedCalories(db *sql.DB, date string, kcal int) error {
	if err := validateNonNegativeInt("burned calories", kcal); err != nil {
		return err
	}
	normalized, err := normalizeDate(date)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
INSERT INTO daily_records(date, synced_burned) VALUES(?, ?)
ON CONFLICT(date) DO UPDATE SET synced_burned=excluded.synced_burned
`, normalized, kcal)
	if err != nil {
		return fmt.Errorf("update burned calories for %s: %w", normalized, err)
	}
	return nil
}

// DayData aggregates one date: meals, workouts, consumed/burned totals,
// and the locked target if the day is closed. A date that was never
// logged returns an empty record rather than nil so callers can degrade
// gracefully.
func DayData(db *sql.DB, date string) (*model.DailyRecord, error) {
	normalized, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	rec := &model.DailyRecord{Date: normalized}

	var locked sql.NullInt64
	err = db.QueryRow(`SELECT synced_burned, locked_target FROM daily_records WHERE date = ?`, normalized).
		Scan(&rec.SyncedBurned, &locked)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("load daily record %s: %w", normalized, err)
	}
	if locked.Valid {
		v := int(locked.Int64)
		rec.LockedTarget = &v
	}

	rec.Meals, err = ListMeals(db, normalized)
	if err != nil {
		return nil, err
	}
	rec.Workouts, err = ListWorkouts(db, normalized)
	if err != nil {
		return nil, err
	}

	for _, m := range rec.Meals {
		rec.Consumed += m.Calories
	}
	rec.Burned = rec.SyncedBurned
	for _, w := range rec.Workouts {
		rec.Burned += w.CaloriesBurned
	}
	return rec, nil
}

func ListMeals(db *sql.DB, date string) ([]model.Meal, error) {
	normalized, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(`
SELECT id, date, name, calories, created_at
FROM meals
WHERE date = ?
ORDER BY id ASC
`, normalized)
	if err != nil {
		return nil, fmt.Errorf("list meals for %s: %w", normalized, err)
	}
	defer rows.Close()

	items := make([]model.Meal, 0)
	for rows.Next() {
		var m model.Meal
		var createdRaw string
		if err := rows.Scan(&m.ID, &m.Date, &m.Name, &m.Calories, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		m.CreatedAt = parseTimestamp(createdRaw)
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meals: %w", err)
	}
	return items, nil
}

func ListWorkouts(db *sql.DB, date string) ([]model.Workout, error) {
	normalized, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(`
SELECT id, date, workout_type, calories_burned, duration_min, created_at
FROM workouts
WHERE date = ?
ORDER BY id ASC
`, normalized)
	if err != nil {
		return nil, fmt.Errorf("list workouts for %s: %w", normalized, err)
	}
	defer rows.Close()

	items := make([]model.Workout, 0)
	for rows.Next() {
		var w model.Workout
		var duration sql.NullInt64
		var createdRaw string
		if err := rows.Scan(&w.ID, &w.Date, &w.WorkoutType, &w.CaloriesBurned, &duration, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		if duration.Valid {
			v := int(duration.Int64)
			w.DurationMin = &v
		}
		w.CreatedAt = parseTimestamp(createdRaw)
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workouts: %w", err)
	}
	return items, nil
}

func consumedOn(db *sql.DB, date string) (int, error) {
	var total int
	if err := db.QueryRow(`SELECT IFNULL(SUM(calories), 0) FROM meals WHERE date = ?`, date).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum consumed for %s: %w", date, err)
	}
	return total, nil
}

func burnedOn(db *sql.DB, date string) (int, error) {
	var workouts int
	if err := db.QueryRow(`SELECT IFNULL(SUM(calories_burned), 0) FROM workouts WHERE date = ?`, date).Scan(&workouts); err != nil {
		return 0, fmt.Errorf("sum workout burn for %s: %w", date, err)
	}
	var synced int
	err := db.QueryRow(`SELECT synced_burned FROM daily_records WHERE date = ?`, date).Scan(&synced)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("load synced burn for %s: %w", date, err)
	}
	return workouts + synced, nil
}

func ensureDailyRecord(db *sql.DB, date string) error {
	if _, err := db.Exec(`INSERT OR IGNORE INTO daily_records(date) VALUES(?)`, date); err != nil {
		return fmt.Errorf("ensure daily record %s: %w", date, err)
	}
	return nil
}

func parseTimestamp(raw string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
