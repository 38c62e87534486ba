package service

import (
	"database/sql"
	"fmt"
)

// BankStatus answers "how much can I safely eat today". It is a pure
// read over the goal manager and the daily records, recomputed on every
// call, never cached. Callers that want end-of-day/week rollover applied
// run Rollover first.
type BankStatus struct {
	Date              string `json:"date"`
	HasGoal           bool   `json:"has_goal"`
	TodayTarget       int    `json:"today_target"`
	SafeToEatToday    int    `json:"safe_to_eat_today"`
	ConsumedToday     int    `json:"consumed_today"`
	BurnedToday       int    `json:"burned_today"`
	WeekConsumed      int    `json:"week_consumed"`
	WeekBurned        int    `json:"week_burned"`
	WeekAllowance     int    `json:"week_allowance"`
	WeekRemaining     int    `json:"week_remaining"`
	DeferredShortfall int    `json:"deferred_shortfall"`
}

// Bank computes the banking status for date. With no configured goal it
// returns HasGoal=false and zero targets rather than an error, so the
// caller can degrade gracefully.
func Bank(db *sql.DB, p Policy, date string) (*BankStatus, error) {
	normalized, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	status := &BankStatus{Date: normalized}

	day, err := DayData(db, normalized)
	if err != nil {
		return nil, err
	}
	status.ConsumedToday = day.Consumed
	status.BurnedToday = day.Burned

	goal, err := ActiveGoal(db, normalized)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return status, nil
	}
	status.HasGoal = true
	status.WeekAllowance = goal.CurrentWeekAllowance

	target, err := DailyTarget(db, p, normalized)
	if err != nil {
		if err == ErrNoGoal {
			// Goal starts later in the week; today has no target yet.
			return status, nil
		}
		return nil, err
	}
	status.TodayTarget = target

	safe := target - day.Consumed + day.Burned
	if safe < 0 {
		safe = 0
	}
	status.SafeToEatToday = safe

	weekStart, err := parseDate(goal.WeekStart)
	if err != nil {
		return nil, err
	}
	for _, d := range weekDates(weekStart) {
		consumed, err := consumedOn(db, d)
		if err != nil {
			return nil, err
		}
		burned, err := burnedOn(db, d)
		if err != nil {
			return nil, err
		}
		status.WeekConsumed += consumed
		status.WeekBurned += burned
	}
	status.WeekRemaining = goal.CurrentWeekAllowance - (status.WeekConsumed - status.WeekBurned)

	_, shortfall, err := liveTargets(db, p, goal, normalized)
	if err != nil {
		return nil, err
	}
	status.DeferredShortfall = shortfall

	return status, nil
}

// WeekDayReport is one day's line in the week report.
type WeekDayReport struct {
	Date     string `json:"date"`
	Target   int    `json:"target"`
	Locked   bool   `json:"locked"`
	Consumed int    `json:"consumed"`
	Burned   int    `json:"burned"`
	Net      int    `json:"net"`
}

type WeekReport struct {
	WeekStart     string          `json:"week_start"`
	DailyBaseline int             `json:"daily_baseline"`
	Allowance     int             `json:"allowance"`
	Consumed      int             `json:"consumed"`
	Burned        int             `json:"burned"`
	Remaining     int             `json:"remaining"`
	Days          []WeekDayReport `json:"days"`
}

// Week builds a per-day view of the week containing date. Missing goal
// returns nil, nil.
func Week(db *sql.DB, p Policy, date string) (*WeekReport, error) {
	normalized, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	goal, err := ActiveGoal(db, normalized)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, nil
	}

	report := &WeekReport{
		WeekStart:     goal.WeekStart,
		DailyBaseline: goal.DailyBaseline,
		Allowance:     goal.CurrentWeekAllowance,
	}
	weekStart, err := parseDate(goal.WeekStart)
	if err != nil {
		return nil, err
	}
	for _, d := range weekDates(weekStart) {
		row := WeekDayReport{Date: d}
		locked, err := LockedTarget(db, d)
		if err != nil {
			return nil, err
		}
		if locked != nil {
			row.Locked = true
			row.Target = *locked
		} else if target, err := DailyTarget(db, p, d); err == nil {
			row.Target = target
		} else if err != ErrNoGoal {
			return nil, fmt.Errorf("target for %s: %w", d, err)
		}
		row.Consumed, err = consumedOn(db, d)
		if err != nil {
			return nil, err
		}
		row.Burned, err = burnedOn(db, d)
		if err != nil {
			return nil, err
		}
		row.Net = row.Consumed - row.Burned
		report.Consumed += row.Consumed
		report.Burned += row.Burned
		report.Days = append(report.Days, row)
	}
	report.Remaining = report.Allowance - (report.Consumed - report.Burned)
	return report, nil
}
