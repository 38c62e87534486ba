package service

import "errors"

var (
	// ErrNotFound covers operations on events, plans, or sessions that
	// do not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyPlanned is returned when a recovery plan already exists
	// for an event. Plans are immutable; regenerate by creating a plan
	// for a new event instead.
	ErrAlreadyPlanned = errors.New("recovery plan already exists for event")

	// ErrSessionConflict is returned when starting a recovery session
	// while another one is active.
	ErrSessionConflict = errors.New("another recovery session is active")

	// ErrNoGoal means no weekly goal has been configured yet. Reads
	// treat it as "degrade to defaults"; mutations surface it.
	ErrNoGoal = errors.New("no weekly goal configured")
)
