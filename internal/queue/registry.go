package queue

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Registry owns the queue of every game. Its lock only guards the map; each
// queue serializes its own operations.
type Registry struct {
	queues map[string]*Queue
	mu     sync.RWMutex

	historyDepth int
	logger       *zap.Logger
}

type RegistryOption func(*Registry)

func WithRegistryHistoryDepth(depth int) RegistryOption {
	return func(r *Registry) { r.historyDepth = depth }
}

func WithRegistryLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

// registry of queues
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		queues:       make(map[string]*Queue),
		historyDepth: DefaultHistoryDepth,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GameKey normalizes a game identifier the way the registry stores it.
func GameKey(game string) string { return key(game) }

func (r *Registry) newQueue(game string, cohortSize int, extra ...Option) (*Queue, error) {
	opts := append([]Option{
		WithLogger(r.logger.Named(game)),
		WithHistoryDepth(r.historyDepth),
	}, extra...)
	return NewQueue(game, cohortSize, opts...)
}

// GetOrCreate returns the queue for game, creating it with cohortSize when
// none exists. Concurrent callers always end up with the same instance.
func (r *Registry) GetOrCreate(game string, cohortSize int) (*Queue, bool, error) {
	k := key(game)

	r.mu.RLock()
	q, ok := r.queues[k]
	r.mu.RUnlock()
	if ok {
		return q, false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// another caller may have won while we waited for the write lock
	if q, ok := r.queues[k]; ok {
		return q, false, nil
	}
	q, err := r.newQueue(k, cohortSize)
	if err != nil {
		return nil, false, err
	}
	r.queues[k] = q
	r.logger.Sugar().Infof("created queue game[%v] cohortSize[%v]", k, cohortSize)
	return q, true, nil
}

// get a queue
func (r *Registry) Get(game string) (*Queue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, exists := r.queues[key(game)]
	if !exists {
		return nil, ErrQueueNotFound
	}
	return q, nil
}

// Remove forgets the queue of game. It reports whether one existed.
func (r *Registry) Remove(game string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(game)
	if _, ok := r.queues[k]; !ok {
		return false
	}
	delete(r.queues, k)
	r.logger.Sugar().Infof("removed queue game[%v]", k)
	return true
}

// Games lists the known game identifiers, sorted.
func (r *Registry) Games() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.queues))
	for k := range r.queues {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.queues)
}

// Switch moves everyone queued for from into the queue for to. An existing
// destination keeps its instance and has its content replaced, so both sides
// of the transfer can be undone. The source queue is drained, not removed.
func (r *Registry) Switch(from, to string, cohortSize int) (*Queue, error) {
	if cohortSize < 1 {
		return nil, ErrInvalidCohortSize
	}
	src, err := r.Get(from)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(to)
	dst, exists := r.queues[k]
	members, delaying := src.Drain()
	if exists {
		if _, err := dst.Replace(members, delaying, cohortSize); err != nil {
			return nil, err
		}
	} else {
		if dst, err = r.newQueue(k, cohortSize, WithMembers(members), WithDelaying(delaying)); err != nil {
			return nil, err
		}
		r.queues[k] = dst
	}
	r.logger.Sugar().Infof("switched queue from[%v] to[%v] members[%v] delaying[%v] replaced[%v]", src.Game(), k, len(members), len(delaying), exists)
	return dst, nil
}
