// Package app - errors.go
// Errors raised by command resolution, before the queue engine is reached.
package app

import "fmt"

type apperr string

func (e apperr) Error() string { return string(e) }

var (
	ErrNoGame        = apperr("game cannot be identified")
	ErrNoQueue       = apperr("there is no queue for that game")
	ErrNoCutoff      = apperr("no player count known for that game")
	ErrNotQueued     = apperr("you are not in a queue")
	ErrMissingPlayer = apperr("a player name is required")
)

// CommandError carries the resolved context of a failed command so the
// presentation layer can word it. errors.Is sees through to Err.
type CommandError struct {
	Command string
	Game    string
	Target  string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s game[%s] target[%s]: %v", e.Command, e.Game, e.Target, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
