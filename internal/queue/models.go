package queue

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// represents a participant waiting for a game
type Participant struct {
	ID       uuid.UUID // stable across delay/rejoin and undo
	Name     string    // display name, compared case-insensitively
	Delaying bool      // stepped out of rotation but still tracked
	JoinedAt time.Time // when the participant was first added
}

func newParticipant(name string) Participant {
	return Participant{
		ID:       uuid.New(),
		Name:     name,
		JoinedAt: time.Now(),
	}
}

// key is the identity used for every name comparison inside a queue.
func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GroupReport is the cohort partition of a queue at one point in time.
// It only carries names; rendering is up to the caller.
type GroupReport struct {
	Game       string   `json:"game"`
	CohortSize int      `json:"cohortSize"`
	Current    []string `json:"current"`
	Next       []string `json:"next"`
	Waiting    []string `json:"waiting"`
	Delaying   []string `json:"delaying"`

	// Retired lists the cohort removed by a rotation. Empty otherwise.
	Retired []string `json:"retired,omitempty"`
}

// Size is the number of participants in rotation (delaying excluded).
func (r GroupReport) Size() int {
	return len(r.Current) + len(r.Next) + len(r.Waiting)
}

// WaitEstimate tells how many rotations a participant is away from playing.
type WaitEstimate struct {
	Game       string `json:"game"`
	Name       string `json:"name"`
	Position   int    `json:"position"`  // zero-based index in the queue
	Rotations  int    `json:"rotations"` // Position / CohortSize
	Current    bool   `json:"current"`   // already in the current cohort
	CohortSize int    `json:"cohortSize"`
}
