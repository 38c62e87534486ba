package service

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/model"
)

type PlanInput struct {
	EventID string
	// AsOf anchors "days left in week" for the maintenance option;
	// defaults to today.
	AsOf string
	// Suggestions are opaque activity strings supplied externally (eg
	// AI-generated copy). Stored as-is, never interpreted.
	Suggestions []string
}

// CreateRecoveryPlan turns an overeating event into 3-4 candidate
// rebalancing schedules. Plans are immutable once created; asking again
// for the same event fails with ErrAlreadyPlanned. Creating the plan
// archives the event: it is no longer pending.
func CreateRecoveryPlan(db *sql.DB, p Policy, in PlanInput) (*model.RecoveryPlan, error) {
	event, err := GetEvent(db, in.EventID)
	if err != nil {
		return nil, err
	}

	var existing int64
	err = db.QueryRow(`SELECT id FROM recovery_plans WHERE event_id = ?`, event.ID).Scan(&existing)
	if err == nil {
		return nil, fmt.Errorf("event %s: %w", event.ID, ErrAlreadyPlanned)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("check existing plan: %w", err)
	}

	goal, err := LatestGoal(db)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrNoGoal
	}

	asOf, err := normalizeDate(in.AsOf)
	if err != nil {
		return nil, err
	}
	daysLeft, err := daysLeftInWeek(asOf)
	if err != nil {
		return nil, err
	}

	options := buildOptions(p, event.ExcessCalories, goal.DailyBaseline, daysLeft)
	if len(options) == 0 {
		return nil, fmt.Errorf("baseline %d leaves no room above the safety floor %d", goal.DailyBaseline, p.SafetyFloor)
	}

	suggestions := in.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	suggestionsJSON, err := json.Marshal(suggestions)
	if err != nil {
		return nil, fmt.Errorf("encode suggestions: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin plan tx: %w", err)
	}
	res, err := tx.Exec(`INSERT INTO recovery_plans(event_id, suggestions_json) VALUES(?, ?)`, event.ID, string(suggestionsJSON))
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("store recovery plan: %w", err)
	}
	planID, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("resolve plan id: %w", err)
	}
	for _, opt := range options {
		targetsJSON, err := json.Marshal(opt.DailyAdjustedTargets)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("encode option targets: %w", err)
		}
		if _, err := tx.Exec(`
INSERT INTO recovery_options(plan_id, strategy, duration_days, per_day_reduction, daily_targets_json)
VALUES(?, ?, ?, ?, ?)
`, planID, string(opt.Strategy), opt.DurationDays, opt.PerDayReduction, string(targetsJSON)); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("store %s option: %w", opt.Strategy, err)
		}
	}
	if _, err := tx.Exec(`UPDATE overeating_events SET archived = 1 WHERE id = ?`, event.ID); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("archive planned event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit plan tx: %w", err)
	}

	return GetPlan(db, planID)
}

// buildOptions produces the candidate schedules. Each reduction option
// spreads the excess over its horizon; when the even spread would push a
// day below the safety floor the horizon extends automatically, bounded
// by MaxPlanDays. Options that collapse to the same horizon are emitted
// once. Maintenance is offered only when the remaining week can absorb
// the excess without any day dropping below the floor.
func buildOptions(p Policy, excess, baseline, daysLeftInWeek int) []model.RebalanceOption {
	options := make([]model.RebalanceOption, 0, 4)
	maxReduction := baseline - p.SafetyFloor

	seen := map[int]bool{}
	add := func(strategy model.Strategy, horizon int) {
		if maxReduction <= 0 {
			return
		}
		duration := horizon
		if ceilDiv(excess, duration) > maxReduction {
			duration = ceilDiv(excess, maxReduction)
		}
		if duration > p.MaxPlanDays {
			duration = p.MaxPlanDays
		}
		if seen[duration] {
			return
		}
		seen[duration] = true

		targets := make([]int, duration)
		base := excess / duration
		rem := excess % duration
		for i := range targets {
			reduction := base
			if i < rem {
				reduction++
			}
			if reduction > maxReduction {
				reduction = maxReduction
			}
			targets[i] = baseline - reduction
		}
		options = append(options, model.RebalanceOption{
			Strategy:             strategy,
			DurationDays:         duration,
			PerDayReduction:      ceilDiv(excess, duration),
			DailyAdjustedTargets: targets,
		})
	}

	add(model.StrategyQuick, p.QuickDays)
	add(model.StrategyModerate, p.ModerateDays)
	add(model.StrategyGentle, p.GentleDays)

	if daysLeftInWeek > 0 && maxReduction > 0 && excess <= daysLeftInWeek*maxReduction {
		options = append(options, model.RebalanceOption{
			Strategy:             model.StrategyMaintenance,
			DurationDays:         daysLeftInWeek,
			PerDayReduction:      0,
			DailyAdjustedTargets: []int{},
		})
	}
	return options
}

func GetPlan(db *sql.DB, id int64) (*model.RecoveryPlan, error) {
	var plan model.RecoveryPlan
	var suggestionsJSON string
	var createdRaw string
	err := db.QueryRow(`
SELECT p.id, p.event_id, e.date, e.excess_calories, p.suggestions_json, p.created_at
FROM recovery_plans p
JOIN overeating_events e ON e.id = p.event_id
WHERE p.id = ?
`, id).Scan(&plan.ID, &plan.EventID, &plan.EventDate, &plan.Excess, &suggestionsJSON, &createdRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("recovery plan %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load recovery plan %d: %w", id, err)
	}
	plan.CreatedAt = parseTimestamp(createdRaw)
	if err := json.Unmarshal([]byte(suggestionsJSON), &plan.Suggestions); err != nil {
		return nil, fmt.Errorf("decode plan %d suggestions: %w", id, err)
	}
	plan.Options, err = planOptions(db, id)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// PlanForEvent returns the plan generated from an event, nil when none
// exists yet.
func PlanForEvent(db *sql.DB, eventID string) (*model.RecoveryPlan, error) {
	var id int64
	err := db.QueryRow(`SELECT id FROM recovery_plans WHERE event_id = ?`, eventID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup plan for event %s: %w", eventID, err)
	}
	return GetPlan(db, id)
}

// RecoveryHistory lists all plans, newest first.
func RecoveryHistory(db *sql.DB) ([]model.RecoveryPlan, error) {
	rows, err := db.Query(`SELECT id FROM recovery_plans ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list recovery plans: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan plan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recovery plans: %w", err)
	}

	plans := make([]model.RecoveryPlan, 0, len(ids))
	for _, id := range ids {
		plan, err := GetPlan(db, id)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	return plans, nil
}

func planOptions(db *sql.DB, planID int64) ([]model.RebalanceOption, error) {
	rows, err := db.Query(`
SELECT id, plan_id, strategy, duration_days, per_day_reduction, daily_targets_json
FROM recovery_options
WHERE plan_id = ?
ORDER BY duration_days ASC
`, planID)
	if err != nil {
		return nil, fmt.Errorf("list options for plan %d: %w", planID, err)
	}
	defer rows.Close()

	options := make([]model.RebalanceOption, 0, 4)
	for rows.Next() {
		var opt model.RebalanceOption
		var strategy string
		var targetsJSON string
		if err := rows.Scan(&opt.ID, &opt.PlanID, &strategy, &opt.DurationDays, &opt.PerDayReduction, &targetsJSON); err != nil {
			return nil, fmt.Errorf("scan plan option: %w", err)
		}
		opt.Strategy = model.Strategy(strategy)
		if !opt.Strategy.Valid() {
			return nil, fmt.Errorf("stored option %d has unknown strategy %q", opt.ID, strategy)
		}
		if err := json.Unmarshal([]byte(targetsJSON), &opt.DailyAdjustedTargets); err != nil {
			return nil, fmt.Errorf("decode option %d targets: %w", opt.ID, err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan options: %w", err)
	}
	return options, nil
}

// StartSession accepts one of a plan's options. Only one session can be
// active at a time. The session's adjusted targets override the normal
// daily-target computation from StartDate for DurationDays; a
// maintenance session instead absorbs the excess into the current week's
// allowance.
func StartSession(db *sql.DB, p Policy, planID int64, strategy model.Strategy, startDate string) (*model.RecoverySession, error) {
	if !strategy.Valid() {
		return nil, fmt.Errorf("invalid strategy %q", strategy)
	}
	plan, err := GetPlan(db, planID)
	if err != nil {
		return nil, err
	}

	var chosen *model.RebalanceOption
	for i := range plan.Options {
		if plan.Options[i].Strategy == strategy {
			chosen = &plan.Options[i]
			break
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("plan %d offers no %s option: %w", planID, strategy, ErrNotFound)
	}

	active, err := ActiveSession(db)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, fmt.Errorf("session %d: %w", active.ID, ErrSessionConflict)
	}

	start, err := normalizeDate(startDate)
	if err != nil {
		return nil, err
	}
	if startDate == "" {
		// The triggering day is already spent; sessions begin tomorrow.
		start, err = addDays(start, 1)
		if err != nil {
			return nil, err
		}
	}

	if strategy == model.StrategyMaintenance {
		goal, err := ActiveGoal(db, start)
		if err != nil {
			return nil, err
		}
		if goal == nil {
			return nil, ErrNoGoal
		}
		absorbed := goal.CurrentWeekAllowance - plan.Excess
		if absorbed < 0 {
			absorbed = 0
		}
		if _, err := db.Exec(`UPDATE weekly_goals SET current_week_allowance = ? WHERE id = ?`, absorbed, goal.ID); err != nil {
			return nil, fmt.Errorf("absorb excess into weekly allowance: %w", err)
		}
	}

	targetsJSON, err := json.Marshal(chosen.DailyAdjustedTargets)
	if err != nil {
		return nil, fmt.Errorf("encode session targets: %w", err)
	}
	res, err := db.Exec(`
INSERT INTO recovery_sessions(plan_id, option_id, strategy, start_date, duration_days, state, daily_targets_json)
VALUES(?, ?, ?, ?, ?, 'active', ?)
`, planID, chosen.ID, string(strategy), start, chosen.DurationDays, string(targetsJSON))
	if err != nil {
		return nil, fmt.Errorf("start recovery session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("resolve session id: %w", err)
	}
	return getSession(db, id)
}

// ActiveSession returns the active session, nil when none.
func ActiveSession(db *sql.DB) (*model.RecoverySession, error) {
	var id int64
	err := db.QueryRow(`SELECT id FROM recovery_sessions WHERE state = 'active'`).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup active session: %w", err)
	}
	return getSession(db, id)
}

// AdvanceSession moves the active session forward to today, counting the
// elapsed days as completed. When every day has elapsed the session
// completes and deactivates.
func AdvanceSession(db *sql.DB, today string) error {
	normalized, err := normalizeDate(today)
	if err != nil {
		return err
	}
	session, err := ActiveSession(db)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	start, err := parseDate(session.StartDate)
	if err != nil {
		return err
	}
	day, err := parseDate(normalized)
	if err != nil {
		return err
	}
	elapsed := daysBetween(start, day)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > session.DurationDays {
		elapsed = session.DurationDays
	}
	if elapsed <= session.DaysCompleted && elapsed < session.DurationDays {
		return nil
	}

	state := model.SessionActive
	if elapsed >= session.DurationDays {
		state = model.SessionCompleted
	}
	if _, err := db.Exec(`UPDATE recovery_sessions SET days_completed = ?, state = ? WHERE id = ?`,
		elapsed, string(state), session.ID); err != nil {
		return fmt.Errorf("advance session %d: %w", session.ID, err)
	}
	return nil
}

// AbandonSession deactivates the active session immediately; affected
// future dates revert to the normal daily-target computation. An
// allowance already absorbed by a maintenance session stays absorbed;
// the excess was real.
func AbandonSession(db *sql.DB) error {
	session, err := ActiveSession(db)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("active recovery session: %w", ErrNotFound)
	}
	if _, err := db.Exec(`UPDATE recovery_sessions SET state = 'abandoned' WHERE id = ?`, session.ID); err != nil {
		return fmt.Errorf("abandon session %d: %w", session.ID, err)
	}
	return nil
}

// ListSessions returns every session, newest first.
func ListSessions(db *sql.DB) ([]model.RecoverySession, error) {
	rows, err := db.Query(`SELECT id FROM recovery_sessions ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	sessions := make([]model.RecoverySession, 0, len(ids))
	for _, id := range ids {
		s, err := getSession(db, id)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, nil
}

// sessionTargetFor resolves the active session's adjusted target for a
// date, ok=false when no session covers it. Maintenance sessions carry
// no per-day overrides.
func sessionTargetFor(db *sql.DB, date string) (int, bool, error) {
	session, err := ActiveSession(db)
	if err != nil {
		return 0, false, err
	}
	if session == nil || len(session.DailyTargets) == 0 {
		return 0, false, nil
	}
	start, err := parseDate(session.StartDate)
	if err != nil {
		return 0, false, err
	}
	day, err := parseDate(date)
	if err != nil {
		return 0, false, err
	}
	idx := daysBetween(start, day)
	if idx < 0 || idx >= len(session.DailyTargets) {
		return 0, false, nil
	}
	return session.DailyTargets[idx], true, nil
}

func getSession(db *sql.DB, id int64) (*model.RecoverySession, error) {
	var s model.RecoverySession
	var strategy, state, targetsJSON, createdRaw string
	err := db.QueryRow(`
SELECT id, plan_id, option_id, strategy, start_date, duration_days, days_completed, state, daily_targets_json, created_at
FROM recovery_sessions
WHERE id = ?
`, id).Scan(&s.ID, &s.PlanID, &s.OptionID, &strategy, &s.StartDate, &s.DurationDays, &s.DaysCompleted, &state, &targetsJSON, &createdRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("recovery session %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load session %d: %w", id, err)
	}
	s.Strategy = model.Strategy(strategy)
	s.State = model.SessionState(state)
	s.CreatedAt = parseTimestamp(createdRaw)
	if err := json.Unmarshal([]byte(targetsJSON), &s.DailyTargets); err != nil {
		return nil, fmt.Errorf("decode session %d targets: %w", id, err)
	}
	return &s, nil
}

// daysLeftInWeek counts the days strictly after date through the end of
// its week, the horizon a maintenance absorption can use.
func daysLeftInWeek(date string) (int, error) {
	day, err := parseDate(date)
	if err != nil {
		return 0, err
	}
	return 6 - daysBetween(mondayOf(day), day), nil
}
