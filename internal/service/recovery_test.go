package service_test

import (
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/model"
	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/service"
)

// severeEvent seeds a full-week goal at 2000 kcal/day starting Monday
// 2026-01-05, locks Monday, and logs a 6500 kcal day: excess 4500.
func severeEvent(t *testing.T, db *sql.DB, p service.Policy) *model.OvereatingEvent {
	t.Helper()
	if _, err := service.CreateWeeklyGoal(db, service.CreateGoalInput{
		DailyBaseline: 2000,
		StartDate:     "2026-01-05",
	}); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if _, err := service.LockDay(db, p, "2026-01-05"); err != nil {
		t.Fatalf("lock monday: %v", err)
	}
	if _, err := service.LogMeal(db, service.MealInput{Date: "2026-01-05", Name: "binge", Calories: 6500}); err != nil {
		t.Fatalf("log meal: %v", err)
	}
	event, err := service.CheckOvereating(db, p, "2026-01-05")
	if err != nil {
		t.Fatalf("check overeating: %v", err)
	}
	if event == nil || event.Trigger != model.TriggerSevere {
		t.Fatalf("expected severe event, got %+v", event)
	}
	return event
}

func optionFor(t *testing.T, plan *model.RecoveryPlan, strategy model.Strategy) model.RebalanceOption {
	t.Helper()
	for _, opt := range plan.Options {
		if opt.Strategy == strategy {
			return opt
		}
	}
	t.Fatalf("plan %d has no %s option (have %d options)", plan.ID, strategy, len(plan.Options))
	return model.RebalanceOption{}
}

func TestPlanSpreadsExcessAcrossEachHorizon(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	p := service.DefaultPolicy()
	p.SafetyFloor = 500

	event := severeEvent(t, db, p)
	plan, err := service.CreateRecoveryPlan(db, p, service.PlanInput{
		EventID:     event.ID,
		AsOf:        "2026-01-05",
		Suggestions: []string{"add a long walk", "extra gym session"},
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if plan.EventDate != "2026-01-05" || plan.Excess != 4500 {
		t.Fatalf("plan carries wrong event data: %+v", plan)
	}
	if len(plan.Options) != 4 {
		t.Fatalf("expected quick/moderate/gentle/maintenance, got %d options", len(plan.Options))
	}

	quick := optionFor(t, plan, model.StrategyQuick)
	if quick.DurationDays != 3 || quick.PerDayReduction != 1500 {
		t.Fatalf("quick option: %+v", quick)
	}
	if !reflect.DeepEqual(quick.DailyAdjustedTargets, []int{500, 500, 500}) {
		t.Fatalf("quick targets: %v", quick.DailyAdjustedTargets)
	}

	moderate := optionFor(t, plan, model.StrategyModerate)
	if moderate.DurationDays != 4 || moderate.PerDayReduction != 1125 {
		t.Fatalf("moderate option: %+v", moderate)
	}
	if !reflect.DeepEqual(moderate.DailyAdjustedTargets, []int{875, 875, 875, 875}) {
		t.Fatalf("moderate targets: %v", moderate.DailyAdjustedTargets)
	}

	gentle := optionFor(t, plan, model.StrategyGentle)
	if gentle.DurationDays != 7 {
		t.Fatalf("gentle option: %+v", gentle)
	}
	total := 0
	for _, target := range gentle.DailyAdjustedTargets {
		if target < p.SafetyFloor {
			t.Fatalf("gentle target %d below floor %d", target, p.SafetyFloor)
		}
		total += 2000 - target
	}
	if total != 4500 {
		t.Fatalf("gentle reductions sum to %d, want 4500", total)
	}

	// Monday leaves six absorbable days, 6 * 1500 >= 4500.
	maint := optionFor(t, plan, model.StrategyMaintenance)
	if maint.DurationDays != 6 || maint.PerDayReduction != 0 || len(maint.DailyAdjustedTargets) != 0 {
		t.Fatalf("maintenance option: %+v", maint)
	}

	if !reflect.DeepEqual(plan.Suggestions, []string{"add a long walk", "extra gym session"}) {
		t.Fatalf("suggestions round-trip: %v", plan.Suggestions)
	}

	// The planned event is archived, not pending anymore.
	pending, err := service.PendingEvent(db)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending != nil {
		t.Fatalf("planned event should be archived, got %+v", pending)
	}
}

func TestPlanExtendsDurationToRespectTheFloor(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	p := service.DefaultPolicy() // floor 1200: max reduction 800/day

	event := severeEvent(t, db, p)
	plan, err := service.CreateRecoveryPlan(db, p, service.PlanInput{EventID: event.ID, AsOf: "2026-01-05"})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	// Quick and moderate both stretch to ceil(4500/800) = 6 days and
	// collapse into one option; gentle keeps its 7-day horizon.
	durations := make([]int, 0, len(plan.Options))
	for _, opt := range plan.Options {
		if opt.Strategy == model.StrategyMaintenance {
			continue
		}
		durations = append(durations, opt.DurationDays)
		for _, target := range opt.DailyAdjustedTargets {
			if target < p.SafetyFloor {
				t.Fatalf("%s target %d below floor %d", opt.Strategy, target, p.SafetyFloor)
			}
		}
	}
	if !reflect.DeepEqual(durations, []int{6, 7}) {
		t.Fatalf("expected deduped durations [6 7], got %v", durations)
	}
}

func TestPlanIsImmutablePerEvent(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	p := service.DefaultPolicy()
	p.SafetyFloor = 500

	event := severeEvent(t, db, p)
	if _, err := service.CreateRecoveryPlan(db, p, service.PlanInput{EventID: event.ID, AsOf: "2026-01-05"}); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if _, err := service.CreateRecoveryPlan(db, p, service.PlanInput{EventID: event.ID, AsOf: "2026-01-05"}); !errors.Is(err, service.ErrAlreadyPlanned) {
		t.Fatalf("expected ErrAlreadyPlanned, got %v", err)
	}

	if _, err := service.GetPlan(db, 999); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing plan, got %v", err)
	}
}

func TestSessionOverridesDailyTargets(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	p := service.DefaultPolicy()
	p.SafetyFloor = 500

	event := severeEvent(t, db, p)
	plan, err := service.CreateRecoveryPlan(db, p, service.PlanInput{EventID: event.ID, AsOf: "2026-01-05"})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	session, err := service.StartSession(db, p, plan.ID, model.StrategyQuick, "2026-01-06")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if session.State != model.SessionActive || session.DurationDays != 3 || session.StartDate != "2026-01-06" {
		t.Fatalf("session: %+v", session)
	}

	// Covered days resolve to the session's adjusted targets.
	for _, d := range []string{"2026-01-06", "2026-01-07", "2026-01-08"} {
		target, err := service.DailyTarget(db, p, d)
		if err != nil {
			t.Fatalf("target %s: %v", d, err)
		}
		if target != 500 {
			t.Fatalf("%s: expected session target 500, got %d", d, target)
		}
	}

	// A day past the session falls back to the live computation.
	after, err := service.DailyTarget(db, p, "2026-01-09")
	if err != nil {
		t.Fatalf("target after session: %v", err)
	}
	if after == 500 {
		t.Fatalf("day outside session should not use session target")
	}

	// Only one active session at a time.
	if _, err := service.StartSession(db, p, plan.ID, model.StrategyGentle, "2026-01-06"); !errors.Is(err, service.ErrSessionConflict) {
		t.Fatalf("expected ErrSessionConflict, got %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	p := service.DefaultPolicy()
	p.SafetyFloor = 500

	event := severeEvent(t, db, p)
	plan, err := service.CreateRecoveryPlan(db, p, service.PlanInput{EventID: event.ID, AsOf: "2026-01-05"})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if _, err := service.StartSession(db, p, plan.ID, model.StrategyQuick, "2026-01-06"); err != nil {
		t.Fatalf("start session: %v", err)
	}

	if err := service.AdvanceSession(db, "2026-01-07"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	active, err := service.ActiveSession(db)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active == nil || active.DaysCompleted != 1 || active.DaysRemaining() != 2 {
		t.Fatalf("after one day: %+v", active)
	}

	// Jumping past the end completes the session.
	if err := service.AdvanceSession(db, "2026-01-12"); err != nil {
		t.Fatalf("advance to end: %v", err)
	}
	active, err = service.ActiveSession(db)
	if err != nil {
		t.Fatalf("active after completion: %v", err)
	}
	if active != nil {
		t.Fatalf("expected no active session, got %+v", active)
	}
	sessions, err := service.ListSessions(db)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].State != model.SessionCompleted || sessions[0].DaysCompleted != 3 {
		t.Fatalf("completed session: %+v", sessions)
	}
}

func TestAbandoningASessionRevertsFutureDays(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	p := service.DefaultPolicy()
	p.SafetyFloor = 500

	if err := service.AbandonSession(db); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no active session, got %v", err)
	}

	event := severeEvent(t, db, p)
	plan, err := service.CreateRecoveryPlan(db, p, service.PlanInput{EventID: event.ID, AsOf: "2026-01-05"})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if _, err := service.StartSession(db, p, plan.ID, model.StrategyQuick, "2026-01-06"); err != nil {
		t.Fatalf("start session: %v", err)
	}
	if err := service.AbandonSession(db); err != nil {
		t.Fatalf("abandon: %v", err)
	}

	target, err := service.DailyTarget(db, p, "2026-01-06")
	if err != nil {
		t.Fatalf("target after abandon: %v", err)
	}
	if target == 500 {
		t.Fatalf("abandoned session must not drive targets")
	}
	sessions, err := service.ListSessions(db)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].State != model.SessionAbandoned {
		t.Fatalf("abandoned session: %+v", sessions)
	}
}

func TestMaintenanceSessionAbsorbsTheExcess(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	p := service.DefaultPolicy()
	p.SafetyFloor = 500

	event := severeEvent(t, db, p)
	plan, err := service.CreateRecoveryPlan(db, p, service.PlanInput{EventID: event.ID, AsOf: "2026-01-05"})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	session, err := service.StartSession(db, p, plan.ID, model.StrategyMaintenance, "2026-01-06")
	if err != nil {
		t.Fatalf("start maintenance: %v", err)
	}
	if len(session.DailyTargets) != 0 {
		t.Fatalf("maintenance session carries per-day targets: %+v", session)
	}

	goal, err := service.GoalForWeek(db, "2026-01-05")
	if err != nil {
		t.Fatalf("goal: %v", err)
	}
	if goal.CurrentWeekAllowance != 14000-4500 {
		t.Fatalf("expected allowance 9500 after absorption, got %d", goal.CurrentWeekAllowance)
	}
	if goal.WeeklyAllowance != 14000 {
		t.Fatalf("full-week allowance must stay 14000, got %d", goal.WeeklyAllowance)
	}
}

func TestStartSessionRejectsUnknownOptions(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	p := service.DefaultPolicy() // floor 1200: quick collapses away

	event := severeEvent(t, db, p)
	plan, err := service.CreateRecoveryPlan(db, p, service.PlanInput{EventID: event.ID, AsOf: "2026-01-05"})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	if _, err := service.StartSession(db, p, plan.ID, model.Strategy("bogus"), "2026-01-06"); err == nil {
		t.Fatalf("expected invalid strategy error")
	}
	if _, err := service.StartSession(db, p, plan.ID, model.StrategyModerate, "2026-01-06"); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for absent option, got %v", err)
	}
}

func TestRecoveryHistoryListsNewestFirst(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()
	p := service.DefaultPolicy()
	p.SafetyFloor = 500

	first := severeEvent(t, db, p)
	if _, err := service.CreateRecoveryPlan(db, p, service.PlanInput{EventID: first.ID, AsOf: "2026-01-05"}); err != nil {
		t.Fatalf("first plan: %v", err)
	}

	if _, err := service.LockDay(db, p, "2026-01-06"); err != nil {
		t.Fatalf("lock tuesday: %v", err)
	}
	if _, err := service.LogMeal(db, service.MealInput{Date: "2026-01-06", Name: "binge", Calories: 4000}); err != nil {
		t.Fatalf("log meal: %v", err)
	}
	second, err := service.CheckOvereating(db, p, "2026-01-06")
	if err != nil || second == nil {
		t.Fatalf("second event: err=%v", err)
	}
	if _, err := service.CreateRecoveryPlan(db, p, service.PlanInput{EventID: second.ID, AsOf: "2026-01-06"}); err != nil {
		t.Fatalf("second plan: %v", err)
	}

	history, err := service.RecoveryHistory(db)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].EventID != second.ID || history[1].EventID != first.ID {
		t.Fatalf("history order: %+v", history)
	}
}
