package schedule

import "errors"

// Domain errors for the schedule package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, schedule.ErrNoDocument) {
//	    // first run; start with an empty store
//	}
var (
	// ErrNoDocument is returned by Repository.Load when no schedule has
	// been persisted yet. Callers treat this as an empty store, not a failure.
	ErrNoDocument = errors.New("schedule: no stored document")

	// ErrAlreadyRunning is returned when starting a runner that is not stopped.
	ErrAlreadyRunning = errors.New("schedule: runner already running")

	// ErrInvalidTimeOfDay is returned when a time-of-day string cannot be parsed.
	ErrInvalidTimeOfDay = errors.New("schedule: invalid time of day")

	// ErrInvalidWeekday is returned when a weekday name is not recognised.
	ErrInvalidWeekday = errors.New("schedule: invalid weekday")
)
