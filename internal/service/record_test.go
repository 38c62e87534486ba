package service_test

import (
	"errors"
	"testing"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/service"
)

func TestLogMealValidation(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	cases := []struct {
		name  string
		input service.MealInput
	}{
		{"empty name", service.MealInput{Date: "2026-01-05", Name: "  ", Calories: 500}},
		{"zero calories", service.MealInput{Date: "2026-01-05", Name: "soup", Calories: 0}},
		{"negative calories", service.MealInput{Date: "2026-01-05", Name: "soup", Calories: -10}},
		{"bad date", service.MealInput{Date: "05/01/2026", Name: "soup", Calories: 500}},
	}
	for _, tc := range cases {
		if _, err := service.LogMeal(db, tc.input); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestMealRoundTrip(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	id, err := service.LogMeal(db, service.MealInput{Date: "2026-01-05", Name: "porridge", Calories: 420})
	if err != nil {
		t.Fatalf("log meal: %v", err)
	}
	meals, err := service.ListMeals(db, "2026-01-05")
	if err != nil {
		t.Fatalf("list meals: %v", err)
	}
	if len(meals) != 1 || meals[0].ID != id || meals[0].Name != "porridge" || meals[0].Calories != 420 {
		t.Fatalf("meals: %+v", meals)
	}

	if err := service.DeleteMeal(db, id); err != nil {
		t.Fatalf("delete meal: %v", err)
	}
	if err := service.DeleteMeal(db, id); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
	meals, err = service.ListMeals(db, "2026-01-05")
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(meals) != 0 {
		t.Fatalf("expected empty list, got %+v", meals)
	}
}

func TestWorkoutRoundTrip(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	duration := 45
	id, err := service.LogWorkout(db, service.WorkoutInput{
		Date:           "2026-01-05",
		WorkoutType:    "  Running ",
		CaloriesBurned: 480,
		DurationMin:    &duration,
	})
	if err != nil {
		t.Fatalf("log workout: %v", err)
	}
	workouts, err := service.ListWorkouts(db, "2026-01-05")
	if err != nil {
		t.Fatalf("list workouts: %v", err)
	}
	if len(workouts) != 1 || workouts[0].ID != id {
		t.Fatalf("workouts: %+v", workouts)
	}
	if workouts[0].WorkoutType != "running" {
		t.Fatalf("workout type not normalized: %q", workouts[0].WorkoutType)
	}
	if workouts[0].DurationMin == nil || *workouts[0].DurationMin != 45 {
		t.Fatalf("duration: %+v", workouts[0].DurationMin)
	}

	if err := service.DeleteWorkout(db, id); err != nil {
		t.Fatalf("delete workout: %v", err)
	}
	if err := service.DeleteWorkout(db, id); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestSyncedBurnReplacesAndAddsToWorkouts(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	if _, err := service.LogWorkout(db, service.WorkoutInput{Date: "2026-01-05", WorkoutType: "swim", CaloriesBurned: 250}); err != nil {
		t.Fatalf("log workout: %v", err)
	}
	if err := service.UpdateBurnedCalories(db, "2026-01-05", 300); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	// A later sync replaces, never accumulates.
	if err := service.UpdateBurnedCalories(db, "2026-01-05", 520); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	day, err := service.DayData(db, "2026-01-05")
	if err != nil {
		t.Fatalf("day data: %v", err)
	}
	if day.SyncedBurned != 520 {
		t.Fatalf("synced burn: %+v", day)
	}
	if day.Burned != 520+250 {
		t.Fatalf("burned total: expected 770, got %d", day.Burned)
	}

	if err := service.UpdateBurnedCalories(db, "2026-01-05", -1); err == nil {
		t.Fatalf("expected error for negative sync")
	}
}

func TestDayDataForUnloggedDateIsEmptyNotNil(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	day, err := service.DayData(db, "2026-03-14")
	if err != nil {
		t.Fatalf("day data: %v", err)
	}
	if day == nil {
		t.Fatalf("expected empty record, got nil")
	}
	if day.Consumed != 0 || day.Burned != 0 || day.LockedTarget != nil {
		t.Fatalf("empty record: %+v", day)
	}
	if len(day.Meals) != 0 || len(day.Workouts) != 0 {
		t.Fatalf("expected no items: %+v", day)
	}
}
