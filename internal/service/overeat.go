package service

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/gregszewczyk/weekly-calorie-tracker-sub001/internal/model"
)

// CheckOvereating evaluates a closed day against its locked target.
// In-progress days are never flagged: a nil event plus nil error means
// either the day is not locked yet or the excess is under the mild
// threshold. Detection is idempotent per date: a re-run while an event
// already exists returns the stored event, even if consumption changed
// since.
func CheckOvereating(db *sql.DB, p Policy, date string) (*model.OvereatingEvent, error) {
	normalized, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}

	if existing, err := activeEventForDate(db, normalized); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	locked, err := LockedTarget(db, normalized)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, nil
	}

	consumed, err := consumedOn(db, normalized)
	if err != nil {
		return nil, err
	}
	excess := consumed - *locked
	if excess < 0 {
		excess = 0
	}
	trigger, ok := p.Classify(excess)
	if !ok {
		return nil, nil
	}

	event := &model.OvereatingEvent{
		ID:             uuid.NewString(),
		Date:           normalized,
		ExcessCalories: excess,
		Trigger:        trigger,
	}

	// A newer offending day supersedes any still-pending older event.
	// Archiving and inserting commit together so a failure cannot leave
	// the log with no pending event at all.
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin event tx: %w", err)
	}
	if _, err := tx.Exec(`UPDATE overeating_events SET archived = 1 WHERE archived = 0 AND date < ?`, normalized); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("archive superseded events: %w", err)
	}
	if _, err := tx.Exec(`
INSERT INTO overeating_events(id, date, excess_calories, trigger_type)
VALUES(?, ?, ?, ?)
`, event.ID, event.Date, event.ExcessCalories, string(event.Trigger)); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("store overeating event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit event tx: %w", err)
	}
	return GetEvent(db, event.ID)
}

// PendingEvent returns the unarchived event awaiting a recovery plan,
// nil when there is none.
func PendingEvent(db *sql.DB) (*model.OvereatingEvent, error) {
	return scanEvent(db.QueryRow(`
SELECT id, date, excess_calories, trigger_type, acknowledged, archived, created_at
FROM overeating_events
WHERE archived = 0
ORDER BY date DESC
LIMIT 1
`))
}

func GetEvent(db *sql.DB, id string) (*model.OvereatingEvent, error) {
	event, err := scanEvent(db.QueryRow(`
SELECT id, date, excess_calories, trigger_type, acknowledged, archived, created_at
FROM overeating_events
WHERE id = ?
`, id))
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, fmt.Errorf("overeating event %s: %w", id, ErrNotFound)
	}
	return event, nil
}

// Acknowledge marks the event as seen by the user. The record is kept
// for the recovery flow.
func Acknowledge(db *sql.DB, id string) error {
	res, err := db.Exec(`UPDATE overeating_events SET acknowledged = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("acknowledge event %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("overeating event %s: %w", id, ErrNotFound)
	}
	return nil
}

// DismissEvent archives an event without generating a recovery plan.
// The date becomes eligible for re-detection should its consumption
// change again.
func DismissEvent(db *sql.DB, id string) error {
	if _, err := GetEvent(db, id); err != nil {
		return err
	}
	return archiveEvent(db, id)
}

func activeEventForDate(db *sql.DB, date string) (*model.OvereatingEvent, error) {
	return scanEvent(db.QueryRow(`
SELECT id, date, excess_calories, trigger_type, acknowledged, archived, created_at
FROM overeating_events
WHERE date = ? AND archived = 0
`, date))
}

func archiveEvent(db *sql.DB, id string) error {
	if _, err := db.Exec(`UPDATE overeating_events SET archived = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("archive event %s: %w", id, err)
	}
	return nil
}

func scanEvent(row *sql.Row) (*model.OvereatingEvent, error) {
	var e model.OvereatingEvent
	var trigger string
	var createdRaw string
	err := row.Scan(&e.ID, &e.Date, &e.ExcessCalories, &trigger, &e.Acknowledged, &e.Archived, &createdRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan overeating event: %w", err)
	}
	e.Trigger = model.TriggerType(trigger)
	if !e.Trigger.Valid() {
		return nil, fmt.Errorf("stored event %s has unknown trigger type %q", e.ID, trigger)
	}
	e.CreatedAt = parseTimestamp(createdRaw)
	return &e, nil
}
