package queue

import (
	"errors"
	"fmt"
	"testing"
)

func participants(n int) []Participant {
	ps := make([]Participant, n)
	for i := range ps {
		ps[i] = newParticipant(fmt.Sprintf("P%d", i))
	}
	return ps
}

func TestEstimateWait_Boundaries(t *testing.T) {
	ps := participants(7)
	cases := []struct {
		name      string
		rotations int
		current   bool
	}{
		{"P0", 0, true},
		{"P2", 0, true}, // last of the current cohort
		{"P3", 1, false},
		{"P5", 1, false},
		{"P6", 2, false},
	}
	for _, c := range cases {
		w, err := estimateWait(ps, 3, c.name)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if w.Rotations != c.rotations || w.Current != c.current {
			t.Fatalf("%s: want rotations=%d current=%v, got %+v", c.name, c.rotations, c.current, w)
		}
	}
}

func TestEstimateWait_FirstCohortAlwaysZero(t *testing.T) {
	for size := 1; size <= 5; size++ {
		ps := participants(12)
		for i := 0; i < size; i++ {
			w, err := estimateWait(ps, size, ps[i].Name)
			if err != nil {
				t.Fatal(err)
			}
			if w.Rotations != 0 || !w.Current || w.Position != i {
				t.Fatalf("size=%d idx=%d: got %+v", size, i, w)
			}
		}
	}
}

func TestEstimateWait_Errors(t *testing.T) {
	if _, err := estimateWait(nil, 2, "x"); !errors.Is(err, ErrEmptyQueue) {
		t.Fatalf("want ErrEmptyQueue, got %v", err)
	}
	if _, err := estimateWait(participants(2), 2, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestEstimateWait_CaseInsensitive(t *testing.T) {
	w, err := estimateWait(participants(4), 2, "p3")
	if err != nil {
		t.Fatal(err)
	}
	if w.Name != "P3" || w.Rotations != 1 {
		t.Fatalf("got %+v", w)
	}
}

func TestQueueEstimateWait_SetsGame(t *testing.T) {
	q := mustQueue(t, 2)
	add(t, q, "A", "B", "C")
	w, err := q.EstimateWait("c")
	if err != nil {
		t.Fatal(err)
	}
	if w.Game != "test" || w.Rotations != 1 || w.CohortSize != 2 {
		t.Fatalf("got %+v", w)
	}
	if _, err := q.Delay("C"); err != nil {
		t.Fatal(err)
	}
	if _, err := q.EstimateWait("C"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delaying participant has no wait, got %v", err)
	}
}

func TestPartition(t *testing.T) {
	cur, next, wait := partition(participants(5), 2)
	if len(cur) != 2 || len(next) != 2 || len(wait) != 1 {
		t.Fatalf("got %v %v %v", cur, next, wait)
	}
	if wait[0] != "P4" {
		t.Fatalf("want P4 waiting, got %v", wait)
	}

	cur, next, wait = partition(nil, 3)
	if cur == nil || next == nil || wait == nil {
		t.Fatal("partition must return non-nil slices")
	}
}

func TestHistory_Bounded(t *testing.T) {
	h := newHistory(2)
	for i := 1; i <= 3; i++ {
		h.push(takeSnapshot(participants(i), nil))
	}
	if h.len() != 2 {
		t.Fatalf("want 2 entries, got %d", h.len())
	}
	s, ok := h.pop()
	if !ok || len(s.members) != 3 {
		t.Fatalf("want newest snapshot with 3 members, got %d ok=%v", len(s.members), ok)
	}
	s, _ = h.pop()
	if len(s.members) != 2 {
		t.Fatalf("want 2 members, got %d", len(s.members))
	}
	if _, ok := h.pop(); ok {
		t.Fatal("history should be exhausted")
	}
}

func TestHistory_ZeroDepthFallsBack(t *testing.T) {
	h := newHistory(0)
	h.push(takeSnapshot(nil, nil))
	h.push(takeSnapshot(nil, nil))
	if h.len() != DefaultHistoryDepth {
		t.Fatalf("want %d, got %d", DefaultHistoryDepth, h.len())
	}
}
