package model

import "time"

// TriggerType classifies how far a day's consumption exceeded its locked
// target.
type TriggerType string

const (
	TriggerMild     TriggerType = "mild"
	TriggerModerate TriggerType = "moderate"
	TriggerSevere   TriggerType = "severe"
)

func (t TriggerType) Valid() bool {
	switch t {
	case TriggerMild, TriggerModerate, TriggerSevere:
		return true
	}
	return false
}

// Strategy names one rebalancing approach offered by a recovery plan.
type Strategy string

const (
	StrategyGentle      Strategy = "gentle"
	StrategyModerate    Strategy = "moderate"
	StrategyQuick       Strategy = "quick"
	StrategyMaintenance Strategy = "maintenance"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyGentle, StrategyModerate, StrategyQuick, StrategyMaintenance:
		return true
	}
	return false
}

// SessionState tracks the lifecycle of a recovery session.
type SessionState string

const (
	SessionActive    SessionState = "active"
	SessionCompleted SessionState = "completed"
	SessionAbandoned SessionState = "abandoned"
)

// WeeklyGoal is one week's calorie allowance. A new row supersedes the
// previous one each Monday; rows are never mutated in place except for
// explicit allowance absorption by a maintenance recovery session.
type WeeklyGoal struct {
	ID                   int64
	WeekStart            string // Monday, YYYY-MM-DD
	StartDate            string // first day the goal covers; same as WeekStart except mid-week setup
	DailyBaseline        int
	WeeklyAllowance      int // DailyBaseline * 7
	CurrentWeekAllowance int // partial-week value when the goal starts mid-week
	DeficitTarget        int // kcal/day below TDEE, 0 when unknown
	CreatedAt            time.Time
}

type Meal struct {
	ID        int64
	Date      string
	Name      string
	Calories  int
	CreatedAt time.Time
}

type Workout struct {
	ID             int64
	Date           string
	WorkoutType    string
	CaloriesBurned int
	DurationMin    *int
	CreatedAt      time.Time
}

// DailyRecord aggregates one calendar date. Consumed and Burned are
// derived from meals, workouts, and the device-synced burned value;
// LockedTarget is nil until the day is closed.
type DailyRecord struct {
	Date         string
	Consumed     int
	Burned       int
	SyncedBurned int
	LockedTarget *int
	Meals        []Meal
	Workouts     []Workout
}

type OvereatingEvent struct {
	ID             string
	Date           string
	ExcessCalories int
	Trigger        TriggerType
	Acknowledged   bool
	Archived       bool
	CreatedAt      time.Time
}

// RebalanceOption is one candidate schedule inside a recovery plan.
// DailyAdjustedTargets has DurationDays entries; maintenance options
// carry no per-day overrides.
type RebalanceOption struct {
	ID                   int64
	PlanID               int64
	Strategy             Strategy
	DurationDays         int
	PerDayReduction      int
	DailyAdjustedTargets []int
}

type RecoveryPlan struct {
	ID          int64
	EventID     string
	EventDate   string
	Excess      int
	Options     []RebalanceOption
	Suggestions []string
	CreatedAt   time.Time
}

type RecoverySession struct {
	ID            int64
	PlanID        int64
	OptionID      int64
	Strategy      Strategy
	StartDate     string // first overridden day, YYYY-MM-DD
	DurationDays  int
	DaysCompleted int
	State         SessionState
	DailyTargets  []int // empty for maintenance
	CreatedAt     time.Time
}

func (s RecoverySession) DaysRemaining() int {
	remaining := s.DurationDays - s.DaysCompleted
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Profile holds the body measurements used to derive a daily calorie
// baseline. All fields are required for TDEE computation.
type Profile struct {
	Sex            string
	BirthDate      string // YYYY-MM-DD
	HeightCM       float64
	WeightKG       float64
	ActivityLevel  string
	TargetWeightKG float64
	TargetDate     string // YYYY-MM-DD
	UpdatedAt      time.Time
}
