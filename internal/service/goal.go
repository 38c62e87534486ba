package service

import (
	"database/sql"
	"fmt"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/model"
)

type CreateGoalInput struct {
	DailyBaseline int
	DeficitTarget int
	StartDate     string // defaults to today
}

// CreateWeeklyGoal configures the allowance for the week containing
// StartDate. When the goal starts mid-week, CurrentWeekAllowance is
// prorated to the days remaining (today inclusive) while
// WeeklyAllowance always carries the full 7-day value for future weeks.
// Reconfiguring the same week replaces that week's row.
func CreateWeeklyGoal(db *sql.DB, in CreateGoalInput) (*model.WeeklyGoal, error) {
	if err := validatePositiveInt("daily baseline", in.DailyBaseline); err != nil {
		return nil, err
	}
	if err := validateNonNegativeInt("deficit target", in.DeficitTarget); err != nil {
		return nil, err
	}
	start, err := normalizeDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	startDay, err := parseDate(start)
	if err != nil {
		return nil, err
	}
	weekStart := mondayOf(startDay)
	daysRemaining := 7 - daysBetween(weekStart, startDay)

	goal := &model.WeeklyGoal{
		WeekStart:            weekStart.Format(dateLayout),
		StartDate:            start,
		DailyBaseline:        in.DailyBaseline,
		WeeklyAllowance:      in.DailyBaseline * 7,
		CurrentWeekAllowance: in.DailyBaseline * daysRemaining,
		DeficitTarget:        in.DeficitTarget,
	}

	_, err = db.Exec(`
INSERT INTO weekly_goals(week_start, start_date, daily_baseline, weekly_allowance, current_week_allowance, deficit_target)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(week_start) DO UPDATE SET
  start_date=excluded.start_date,
  daily_baseline=excluded.daily_baseline,
  weekly_allowance=excluded.weekly_allowance,
  current_week_allowance=excluded.current_week_allowance,
  deficit_target=excluded.deficit_target
`, goal.WeekStart, goal.StartDate, goal.DailyBaseline, goal.WeeklyAllowance, goal.CurrentWeekAllowance, goal.DeficitTarget)
	if err != nil {
		return nil, fmt.Errorf("create weekly goal: %w", err)
	}

	return GoalForWeek(db, goal.WeekStart)
}

// GoalForWeek looks up the goal row keyed by its Monday date string.
// Missing goal returns nil, nil.
func GoalForWeek(db *sql.DB, weekStart string) (*model.WeeklyGoal, error) {
	var g model.WeeklyGoal
	var createdRaw string
	err := db.QueryRow(`
SELECT id, week_start, start_date, daily_baseline, weekly_allowance, current_week_allowance, deficit_target, created_at
FROM weekly_goals
WHERE week_start = ?
`, weekStart).Scan(&g.ID, &g.WeekStart, &g.StartDate, &g.DailyBaseline, &g.WeeklyAllowance, &g.CurrentWeekAllowance, &g.DeficitTarget, &createdRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load goal for week %s: %w", weekStart, err)
	}
	g.CreatedAt = parseTimestamp(createdRaw)
	return &g, nil
}

// ActiveGoal returns the goal for the week containing date, nil when
// that week was never configured.
func ActiveGoal(db *sql.DB, date string) (*model.WeeklyGoal, error) {
	normalized, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	day, err := parseDate(normalized)
	if err != nil {
		return nil, err
	}
	return GoalForWeek(db, mondayOf(day).Format(dateLayout))
}

// LatestGoal returns the most recent goal row of any week, nil when no
// goal was ever configured.
func LatestGoal(db *sql.DB) (*model.WeeklyGoal, error) {
	var g model.WeeklyGoal
	var createdRaw string
	err := db.QueryRow(`
SELECT id, week_start, start_date, daily_baseline, weekly_allowance, current_week_allowance, deficit_target, created_at
FROM weekly_goals
ORDER BY week_start DESC
LIMIT 1
`).Scan(&g.ID, &g.WeekStart, &g.StartDate, &g.DailyBaseline, &g.WeeklyAllowance, &g.CurrentWeekAllowance, &g.DeficitTarget, &createdRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load latest goal: %w", err)
	}
	g.CreatedAt = parseTimestamp(createdRaw)
	return &g, nil
}

// LockedTarget returns the frozen target for date, nil when the day is
// still open.
func LockedTarget(db *sql.DB, date string) (*int, error) {
	normalized, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	var locked sql.NullInt64
	err = db.QueryRow(`SELECT locked_target FROM daily_records WHERE date = ?`, normalized).Scan(&locked)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load locked target for %s: %w", normalized, err)
	}
	if !locked.Valid {
		return nil, nil
	}
	v := int(locked.Int64)
	return &v, nil
}

// DailyTarget is the single read path for a day's calorie target.
// Precedence: locked snapshot, then an active recovery session's
// adjusted value, then the live redistributed target. Returns ErrNoGoal
// when the date's week has no goal.
func DailyTarget(db *sql.DB, p Policy, date string) (int, error) {
	normalized, err := normalizeDate(date)
	if err != nil {
		return 0, err
	}

	locked, err := LockedTarget(db, normalized)
	if err != nil {
		return 0, err
	}
	if locked != nil {
		return *locked, nil
	}

	if target, ok, err := sessionTargetFor(db, normalized); err != nil {
		return 0, err
	} else if ok {
		return target, nil
	}

	goal, err := ActiveGoal(db, normalized)
	if err != nil {
		return 0, err
	}
	if goal == nil || normalized < goal.StartDate {
		return 0, ErrNoGoal
	}

	targets, _, err := liveTargets(db, p, goal, normalized)
	if err != nil {
		return 0, err
	}
	target, ok := targets[normalized]
	if !ok {
		return 0, fmt.Errorf("no live target computed for %s", normalized)
	}
	return target, nil
}

// LockDay freezes the day's target so later redistribution cannot
// retroactively change a day already spent. Idempotent: a second call
// returns the existing snapshot.
func LockDay(db *sql.DB, p Policy, date string) (int, error) {
	normalized, err := normalizeDate(date)
	if err != nil {
		return 0, err
	}
	if locked, err := LockedTarget(db, normalized); err != nil {
		return 0, err
	} else if locked != nil {
		return *locked, nil
	}

	target, err := DailyTarget(db, p, normalized)
	if err != nil {
		return 0, err
	}
	if err := ensureDailyRecord(db, normalized); err != nil {
		return 0, err
	}
	if _, err := db.Exec(`UPDATE daily_records SET locked_target = ? WHERE date = ?`, target, normalized); err != nil {
		return 0, fmt.Errorf("lock day %s: %w", normalized, err)
	}
	return target, nil
}

// liveTargets redistributes the week's remaining allowance evenly over
// the open days through the end of the week. The pool is the current
// week allowance minus every locked day's target, wherever that day
// falls relative to `from`, and minus consumption on unlocked days
// before `from` (a day that was never closed still spent the allowance;
// one that spent nothing keeps holding its even share). The integer
// remainder is handed to the earliest days so
// locked plus live targets sum exactly to the allowance. When the pool
// cannot keep every remaining day at the safety floor, targets clamp to
// the floor and the shortfall is reported for deferral into a recovery
// session.
func liveTargets(db *sql.DB, p Policy, goal *model.WeeklyGoal, from string) (map[string]int, int, error) {
	weekStart, err := parseDate(goal.WeekStart)
	if err != nil {
		return nil, 0, err
	}
	dates := weekDates(weekStart)

	lockedSum := 0
	spentUnlocked := 0
	remaining := make([]string, 0, 7)
	for _, d := range dates {
		if d < goal.StartDate {
			// Days before a mid-week goal are outside its allowance.
			continue
		}
		locked, err := LockedTarget(db, d)
		if err != nil {
			return nil, 0, err
		}
		if locked != nil {
			lockedSum += *locked
			continue
		}
		if d < from {
			spent, err := consumedOn(db, d)
			if err != nil {
				return nil, 0, err
			}
			if spent > 0 {
				spentUnlocked += spent
				continue
			}
		}
		remaining = append(remaining, d)
	}

	targets := make(map[string]int, len(remaining))
	if len(remaining) == 0 {
		return targets, 0, nil
	}

	pool := goal.CurrentWeekAllowance - lockedSum - spentUnlocked
	n := len(remaining)

	if pool < p.SafetyFloor*n {
		for _, d := range remaining {
			targets[d] = p.SafetyFloor
		}
		return targets, p.SafetyFloor*n - pool, nil
	}

	base := pool / n
	rem := pool % n
	for i, d := range remaining {
		targets[d] = base
		if i < rem {
			targets[d]++
		}
	}
	return targets, 0, nil
}
