package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS weekly_goals (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  week_start TEXT NOT NULL UNIQUE,
  start_date TEXT NOT NULL,
  daily_baseline INTEGER NOT NULL CHECK(daily_baseline > 0),
  weekly_allowance INTEGER NOT NULL CHECK(weekly_allowance > 0),
  current_week_allowance INTEGER NOT NULL CHECK(current_week_allowance >= 0),
  deficit_target INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS daily_records (
  date TEXT PRIMARY KEY,
  synced_burned INTEGER NOT NULL DEFAULT 0 CHECK(synced_burned >= 0),
  locked_target INTEGER,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS meals (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  date TEXT NOT NULL,
  name TEXT NOT NULL,
  calories INTEGER NOT NULL CHECK(calories > 0),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_meals_date ON meals(date);

CREATE TABLE IF NOT EXISTS workouts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  date TEXT NOT NULL,
  workout_type TEXT NOT NULL,
  calories_burned INTEGER NOT NULL CHECK(calories_burned > 0),
  duration_min INTEGER CHECK(duration_min > 0),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_workouts_date ON workouts(date);
`,
	},
	{
		version: 2,
		name:    "overeating_events",
		sql: `
CREATE TABLE IF NOT EXISTS overeating_events (
  id TEXT PRIMARY KEY,
  date TEXT NOT NULL,
  excess_calories INTEGER NOT NULL CHECK(excess_calories >= 0),
  trigger_type TEXT NOT NULL CHECK(trigger_type IN ('mild', 'moderate', 'severe')),
  acknowledged INTEGER NOT NULL DEFAULT 0,
  archived INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_overeating_events_active_date
  ON overeating_events(date) WHERE archived = 0;
`,
	},
	{
		version: 3,
		name:    "recovery_plans",
		sql: `
CREATE TABLE IF NOT EXISTS recovery_plans (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  event_id TEXT NOT NULL UNIQUE,
  suggestions_json TEXT NOT NULL DEFAULT '[]',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(event_id) REFERENCES overeating_events(id)
);

CREATE TABLE IF NOT EXISTS recovery_options (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  plan_id INTEGER NOT NULL,
  strategy TEXT NOT NULL CHECK(strategy IN ('gentle', 'moderate', 'quick', 'maintenance')),
  duration_days INTEGER NOT NULL CHECK(duration_days > 0),
  per_day_reduction INTEGER NOT NULL CHECK(per_day_reduction >= 0),
  daily_targets_json TEXT NOT NULL DEFAULT '[]',
  FOREIGN KEY(plan_id) REFERENCES recovery_plans(id)
);

CREATE INDEX IF NOT EXISTS idx_recovery_options_plan_id ON recovery_options(plan_id);
`,
	},
	{
		version: 4,
		name:    "recovery_sessions",
		sql: `
CREATE TABLE IF NOT EXISTS recovery_sessions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  plan_id INTEGER NOT NULL,
  option_id INTEGER NOT NULL,
  strategy TEXT NOT NULL,
  start_date TEXT NOT NULL,
  duration_days INTEGER NOT NULL CHECK(duration_days > 0),
  days_completed INTEGER NOT NULL DEFAULT 0 CHECK(days_completed >= 0),
  state TEXT NOT NULL CHECK(state IN ('active', 'completed', 'abandoned')),
  daily_targets_json TEXT NOT NULL DEFAULT '[]',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(plan_id) REFERENCES recovery_plans(id),
  FOREIGN KEY(option_id) REFERENCES recovery_options(id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_recovery_sessions_single_active
  ON recovery_sessions(state) WHERE state = 'active';
`,
	},
	{
		version: 5,
		name:    "profile_and_config",
		sql: `
CREATE TABLE IF NOT EXISTS profile (
  id INTEGER PRIMARY KEY CHECK(id = 1),
  sex TEXT NOT NULL CHECK(sex IN ('male', 'female')),
  birth_date TEXT NOT NULL,
  height_cm REAL NOT NULL CHECK(height_cm > 0),
  weight_kg REAL NOT NULL CHECK(weight_kg > 0),
  activity_level TEXT NOT NULL,
  target_weight_kg REAL NOT NULL CHECK(target_weight_kg > 0),
  target_date TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
}

func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}

	return nil
}
