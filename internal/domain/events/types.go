// Package events - types.go
package events

import "time"

// Action names the queue operation behind a QueueChanged event.
type Action string

const (
	ActionCreated Action = "created"
	ActionJoined  Action = "joined"
	ActionLeft    Action = "left"
	ActionAdded   Action = "added"
	ActionKicked  Action = "kicked"
	ActionRotated Action = "rotated"
	ActionDelayed Action = "delayed"
	ActionRejoin  Action = "rejoined"
	ActionUndone  Action = "undone"
	ActionSwitch  Action = "switched"
	ActionEnded   Action = "ended"
)

// QueueChanged is emitted after every committed mutation of a game's queue.
type QueueChanged struct {
	Game    string
	Action  Action
	Actor   string // who issued the command
	Target  string // participant affected, when different from Actor
	Members int    // participants in rotation afterwards
	At      time.Time
}
