package service

import (
	"database/sql"
	"fmt"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/model"
)

// Rollover applies the lazy day/week transitions up to today: every
// elapsed day of the goal's week gets its target locked (in
// chronological order, so each lock feeds the next redistribution), a
// stale weekly goal is superseded by a fresh full-week one with no
// implicit carry-over, and the active recovery session advances. Safe to
// call repeatedly; a no-op when nothing has elapsed or no goal exists.
func Rollover(db *sql.DB, p Policy, today string) error {
	normalized, err := normalizeDate(today)
	if err != nil {
		return err
	}
	day, err := parseDate(normalized)
	if err != nil {
		return err
	}

	latest, err := LatestGoal(db)
	if err != nil {
		return err
	}
	if latest == nil {
		return nil
	}

	if err := lockElapsedDays(db, p, latest, normalized); err != nil {
		return err
	}

	// Every Monday between the latest goal and today gets its own fresh
	// full-week goal, so a long gap still leaves each skipped week
	// configured and locked. Unresolved surplus/deficit from a prior week
	// does not carry over; that only happens through a recovery session.
	currentWeek := mondayOf(day).Format(dateLayout)
	lastStart, err := parseDate(latest.WeekStart)
	if err != nil {
		return err
	}
	for week := lastStart.AddDate(0, 0, 7); ; week = week.AddDate(0, 0, 7) {
		ws := week.Format(dateLayout)
		if ws > currentWeek {
			break
		}
		if _, err := db.Exec(`
INSERT INTO weekly_goals(week_start, start_date, daily_baseline, weekly_allowance, current_week_allowance, deficit_target)
VALUES(?, ?, ?, ?, ?, ?)
`, ws, ws, latest.DailyBaseline, latest.DailyBaseline*7, latest.DailyBaseline*7, latest.DeficitTarget); err != nil {
			return fmt.Errorf("roll goal into week %s: %w", ws, err)
		}
		rolled, err := GoalForWeek(db, ws)
		if err != nil {
			return err
		}
		if err := lockElapsedDays(db, p, rolled, normalized); err != nil {
			return err
		}
	}

	return AdvanceSession(db, normalized)
}

func lockElapsedDays(db *sql.DB, p Policy, goal *model.WeeklyGoal, today string) error {
	start, err := parseDate(goal.WeekStart)
	if err != nil {
		return err
	}
	for _, d := range weekDates(start) {
		if d >= today {
			break
		}
		if d < goal.StartDate {
			continue
		}
		if _, err := LockDay(db, p, d); err != nil {
			return fmt.Errorf("lock elapsed day %s: %w", d, err)
		}
	}
	return nil
}
