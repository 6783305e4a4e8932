// Package queue - history.go
// Bounded undo history made of deep-copied queue states.
package queue

import "github.com/emirpasic/gods/lists/arraylist"

// DefaultHistoryDepth keeps exactly one undoable step.
const DefaultHistoryDepth = 1

// snapshot is an immutable copy of a queue's members, holding set and
// block size.
type snapshot struct {
	members    []Participant
	delaying   []Participant
	cohortSize int
}

// takeSnapshot copies both slices so later mutation of live data can never
// reach a stored state.
func takeSnapshot(members, delaying []Participant) snapshot {
	return snapshot{
		members:  append([]Participant(nil), members...),
		delaying: append([]Participant(nil), delaying...),
	}
}

// history is a stack of snapshots holding at most depth entries. When full,
// pushing drops the oldest one. Callers hold the owning queue's mutex.
type history struct {
	depth   int
	entries *arraylist.List
}

func newHistory(depth int) *history {
	if depth < 1 {
		depth = DefaultHistoryDepth
	}
	return &history{depth: depth, entries: arraylist.New()}
}

func (h *history) push(s snapshot) {
	h.entries.Add(s)
	for h.entries.Size() > h.depth {
		h.entries.Remove(0)
	}
}

func (h *history) pop() (snapshot, bool) {
	last := h.entries.Size() - 1
	v, ok := h.entries.Get(last)
	if !ok {
		return snapshot{}, false
	}
	h.entries.Remove(last)
	return v.(snapshot), true
}

func (h *history) len() int { return h.entries.Size() }
