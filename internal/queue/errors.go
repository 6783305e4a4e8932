// Package queue - errors.go
// Centralized, comparable error values returned by the rotating queue and
// the registry. None of them are fatal: the caller decides the wording.
package queue

// qerr is a lightweight comparable error type.
// Using constants of this type allows errors.Is to work as expected.
type qerr string

func (e qerr) Error() string { return string(e) }

var (
	ErrNotFound          = qerr("participant not in queue")
	ErrNotDelaying       = qerr("participant is not delaying")
	ErrAlreadyDelaying   = qerr("participant is already delaying")
	ErrEmptyQueue        = qerr("queue is empty")
	ErrNoHistory         = qerr("nothing to undo")
	ErrAlreadyPresent    = qerr("participant already in queue")
	ErrInvalidCohortSize = qerr("cohort size must be positive")
	ErrQueueNotFound     = qerr("queue not found")
)
