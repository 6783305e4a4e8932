package queue

import (
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"go.uber.org/zap"
)

// Queue is the rotating queue of one game. Members are ordered by priority
// and read in blocks of cohortSize: the first block plays now, the second
// plays next, the rest waits.
//
// Every method takes the queue mutex, so operations on one queue never
// interleave while different queues stay independent.
type Queue struct {
	mu sync.Mutex

	game       string
	cohortSize int

	// Participants in rotation, in priority order.
	members []Participant

	// Participants that stepped out with Delay. Implemented as
	// linkedhashmap since lookups are by name but the order they started
	// delaying is kept for display. Key value: key(name) -> Participant.
	delaying *linkedhashmap.Map

	history *history

	logger *zap.SugaredLogger
}

type Option func(*Queue)

// WithHistoryDepth sets how many operations can be undone in a row.
func WithHistoryDepth(depth int) Option {
	return func(q *Queue) { q.history = newHistory(depth) }
}

// WithMembers pre-populates the queue in the given order, skipping
// duplicate names. Used when participants are transferred between games.
func WithMembers(ps []Participant) Option {
	return func(q *Queue) { q.admit(ps) }
}

// WithDelaying pre-populates the holding set.
func WithDelaying(ps []Participant) Option {
	return func(q *Queue) { q.hold(ps) }
}

func WithLogger(logger *zap.Logger) Option {
	return func(q *Queue) { q.logger = logger.Sugar() }
}

// NewQueue creates an empty queue for game. Options are applied in order, so
// WithLogger should come before anything that logs.
func NewQueue(game string, cohortSize int, opts ...Option) (*Queue, error) {
	if cohortSize < 1 {
		return nil, ErrInvalidCohortSize
	}
	q := &Queue{
		game:       game,
		cohortSize: cohortSize,
		members:    []Participant{},
		delaying:   linkedhashmap.New(),
		history:    newHistory(DefaultHistoryDepth),
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

func (q *Queue) Game() string { return q.game }

func (q *Queue) CohortSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cohortSize
}

// SetCohortSize changes the block size used by later reports and rotations.
func (q *Queue) SetCohortSize(n int) error {
	if n < 1 {
		return ErrInvalidCohortSize
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cohortSize = n
	q.logger.Infof("cohort size set game[%v] size[%v]", q.game, n)
	return nil
}

// Len is the number of participants in rotation.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.members)
}

// Members returns a copy of the participants in rotation.
func (q *Queue) Members() []Participant {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Participant(nil), q.members...)
}

// Delaying returns a copy of the holding set in the order participants
// started delaying.
func (q *Queue) Delaying() []Participant {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.held()
}

// Add appends name to the back of the queue.
func (q *Queue) Add(name string) (GroupReport, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.locate(name) {
		return GroupReport{}, ErrAlreadyPresent
	}
	q.checkpoint()
	p := newParticipant(name)
	q.members = append(q.members, p)
	q.logger.Debugf("added participant[%+v] game[%v]", p, q.game)
	return q.report(), nil
}

// Open adds name like Add. When nobody is queued or delaying, the call
// starts a new session: cohortSize replaces the block size (0 keeps it) and
// opened is true. Only one of several racing callers opens a session.
func (q *Queue) Open(name string, cohortSize int) (report GroupReport, opened bool, err error) {
	if cohortSize < 0 {
		return GroupReport{}, false, ErrInvalidCohortSize
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.locate(name) {
		return GroupReport{}, false, ErrAlreadyPresent
	}
	q.checkpoint()
	opened = len(q.members) == 0 && q.delaying.Empty()
	if opened && cohortSize > 0 {
		q.cohortSize = cohortSize
	}
	p := newParticipant(name)
	q.members = append(q.members, p)
	if opened {
		q.logger.Infof("opened game[%v] cohortSize[%v] by participant[%v]", q.game, q.cohortSize, p.Name)
	}
	return q.report(), opened, nil
}

// Remove deletes name from the queue, or from the holding set if it is
// delaying. Relative order of everyone else is kept.
func (q *Queue) Remove(name string) (GroupReport, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if idx := indexOf(q.members, name); idx >= 0 {
		q.checkpoint()
		q.members = append(q.members[:idx:idx], q.members[idx+1:]...)
	} else if _, ok := q.delaying.Get(key(name)); ok {
		q.checkpoint()
		q.delaying.Remove(key(name))
	} else {
		return GroupReport{}, ErrNotFound
	}
	q.logger.Debugf("removed name[%v] game[%v]", name, q.game)
	return q.report(), nil
}

// Rotate retires the current cohort. Retired participants must Add again to
// get another turn.
func (q *Queue) Rotate() (GroupReport, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.members) == 0 {
		return GroupReport{}, ErrEmptyQueue
	}
	q.checkpoint()

	n := q.cohortSize
	if n > len(q.members) {
		n = len(q.members)
	}
	retired := names(q.members[:n])
	q.members = append([]Participant{}, q.members[n:]...)

	q.logger.Infof("rotated game[%v] retired[%v] remaining[%v]", q.game, retired, len(q.members))
	r := q.report()
	r.Retired = retired
	return r, nil
}

// Report partitions the queue into cohorts without changing it.
func (q *Queue) Report() (GroupReport, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.members) == 0 {
		return GroupReport{}, ErrEmptyQueue
	}
	return q.report(), nil
}

// EstimateWait reports how many rotations name is away from playing.
func (q *Queue) EstimateWait(name string) (WaitEstimate, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	w, err := estimateWait(q.members, q.cohortSize, name)
	if err != nil {
		return WaitEstimate{}, err
	}
	w.Game = q.game
	return w, nil
}

// Delay takes name out of rotation and keeps it in the holding set.
func (q *Queue) Delay(name string) (GroupReport, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.delaying.Get(key(name)); ok {
		return GroupReport{}, ErrAlreadyDelaying
	}
	idx := indexOf(q.members, name)
	if idx < 0 {
		return GroupReport{}, ErrNotFound
	}
	q.checkpoint()

	p := q.members[idx]
	p.Delaying = true
	q.members = append(q.members[:idx:idx], q.members[idx+1:]...)
	q.delaying.Put(key(p.Name), p)

	q.logger.Debugf("delaying participant[%+v] game[%v]", p, q.game)
	return q.report(), nil
}

// Rejoin puts a delaying participant back at the end of the queue. The
// position held before Delay is not restored.
func (q *Queue) Rejoin(name string) (GroupReport, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	v, ok := q.delaying.Get(key(name))
	if !ok {
		if indexOf(q.members, name) >= 0 {
			return GroupReport{}, ErrNotDelaying
		}
		return GroupReport{}, ErrNotFound
	}
	q.checkpoint()

	p := v.(Participant)
	p.Delaying = false
	q.delaying.Remove(key(name))
	q.members = append(q.members, p)

	q.logger.Debugf("rejoined participant[%+v] game[%v]", p, q.game)
	return q.report(), nil
}

// Undo restores the state before the last mutating operation. Undo itself is
// not recorded, so it cannot be redone.
func (q *Queue) Undo() (GroupReport, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	s, ok := q.history.pop()
	if !ok {
		return GroupReport{}, ErrNoHistory
	}
	q.members = s.members
	if s.cohortSize > 0 {
		q.cohortSize = s.cohortSize
	}
	q.delaying.Clear()
	for _, p := range s.delaying {
		q.delaying.Put(key(p.Name), p)
	}

	q.logger.Infof("undo game[%v] members[%v] historyLeft[%v]", q.game, len(q.members), q.history.len())
	return q.report(), nil
}

// Empty clears members and the holding set. It is recorded like any other
// mutation, so an ended queue can be brought back with Undo.
func (q *Queue) Empty() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.checkpoint()
	q.members = []Participant{}
	q.delaying.Clear()
	q.logger.Infof("emptied game[%v]", q.game)
}

// Drain empties the queue like Empty and hands back what it held.
func (q *Queue) Drain() (members, delaying []Participant) {
	q.mu.Lock()
	defer q.mu.Unlock()

	members = append([]Participant(nil), q.members...)
	delaying = q.held()

	q.checkpoint()
	q.members = []Participant{}
	q.delaying.Clear()
	q.logger.Infof("drained game[%v] members[%v] delaying[%v]", q.game, len(members), len(delaying))
	return members, delaying
}

// Replace swaps the whole content of the queue for members and delaying and
// sets the block size. The previous state stays undoable.
func (q *Queue) Replace(members, delaying []Participant, cohortSize int) (GroupReport, error) {
	if cohortSize < 1 {
		return GroupReport{}, ErrInvalidCohortSize
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	q.checkpoint()
	q.members = []Participant{}
	q.delaying.Clear()
	q.admit(members)
	q.hold(delaying)
	q.cohortSize = cohortSize
	q.logger.Infof("replaced game[%v] members[%v] delaying[%v] cohortSize[%v]", q.game, len(q.members), q.delaying.Size(), cohortSize)
	return q.report(), nil
}

// Find looks name up among members first, then the holding set.
func (q *Queue) Find(name string) (Participant, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if idx := indexOf(q.members, name); idx >= 0 {
		return q.members[idx], true
	}
	if v, ok := q.delaying.Get(key(name)); ok {
		return v.(Participant), true
	}
	return Participant{}, false
}

// ---- helpers below run under q.mu ----

func (q *Queue) locate(name string) bool {
	if indexOf(q.members, name) >= 0 {
		return true
	}
	_, ok := q.delaying.Get(key(name))
	return ok
}

// admit appends ps to members, skipping names already present.
func (q *Queue) admit(ps []Participant) {
	for _, p := range ps {
		if q.locate(p.Name) {
			continue
		}
		p.Delaying = false
		q.members = append(q.members, p)
	}
}

// hold puts ps in the holding set, skipping names already present.
func (q *Queue) hold(ps []Participant) {
	for _, p := range ps {
		if q.locate(p.Name) {
			continue
		}
		p.Delaying = true
		q.delaying.Put(key(p.Name), p)
	}
}

func (q *Queue) held() []Participant {
	out := make([]Participant, 0, q.delaying.Size())
	it := q.delaying.Iterator()
	for it.Begin(); it.Next(); {
		out = append(out, it.Value().(Participant))
	}
	return out
}

func (q *Queue) checkpoint() {
	s := takeSnapshot(q.members, q.held())
	s.cohortSize = q.cohortSize
	q.history.push(s)
}

func (q *Queue) report() GroupReport {
	current, next, waiting := partition(q.members, q.cohortSize)
	return GroupReport{
		Game:       q.game,
		CohortSize: q.cohortSize,
		Current:    current,
		Next:       next,
		Waiting:    waiting,
		Delaying:   names(q.held()),
	}
}
