// Package queue - cohort.go
// Pure helpers deriving cohorts and wait estimates from a member ordering.
package queue

func names(ps []Participant) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

// partition splits members into current / next / waiting blocks of
// cohortSize. A short queue only fills the earlier blocks.
func partition(members []Participant, cohortSize int) (current, next, waiting []string) {
	all := names(members)
	cut := func(lo, hi int) []string {
		if lo > len(all) {
			lo = len(all)
		}
		if hi > len(all) {
			hi = len(all)
		}
		return append([]string{}, all[lo:hi]...)
	}
	current = cut(0, cohortSize)
	next = cut(cohortSize, 2*cohortSize)
	waiting = cut(2*cohortSize, len(all))
	return current, next, waiting
}

// indexOf returns the position of name within ps, or -1 if absent.
func indexOf(ps []Participant, name string) int {
	k := key(name)
	for i, p := range ps {
		if key(p.Name) == k {
			return i
		}
	}
	return -1
}

// estimateWait counts the complete rotations needed before name reaches the
// current cohort. Index cohortSize-1 is still current; index cohortSize
// needs one rotation.
func estimateWait(members []Participant, cohortSize int, name string) (WaitEstimate, error) {
	if len(members) == 0 {
		return WaitEstimate{}, ErrEmptyQueue
	}
	idx := indexOf(members, name)
	if idx < 0 {
		return WaitEstimate{}, ErrNotFound
	}
	rotations := idx / cohortSize
	return WaitEstimate{
		Name:       members[idx].Name,
		Position:   idx,
		Rotations:  rotations,
		Current:    rotations == 0,
		CohortSize: cohortSize,
	}, nil
}
