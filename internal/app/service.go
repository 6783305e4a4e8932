package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jose-valero/game-queue-bot/internal/cutoff"
	"github.com/jose-valero/game-queue-bot/internal/domain/events"
	"github.com/jose-valero/game-queue-bot/internal/infra"
	"github.com/jose-valero/game-queue-bot/internal/queue"
)

// Result is what a successful command hands to the presentation layer.
type Result struct {
	Command string
	Game    string
	Action  events.Action
	Actor   string
	Target  string

	// Created is set when the command opened a new queue session.
	Created bool

	Report queue.GroupReport
	Wait   *queue.WaitEstimate
}

// Service resolves which game a command talks about and runs exactly one
// engine operation on its queue. It knows nothing about Discord.
type Service struct {
	registry *queue.Registry
	cutoffs  cutoff.Store
	logger   *zap.SugaredLogger
}

func ProvideService(registry *queue.Registry, cutoffs cutoff.Store, loggerFactory *infra.LoggerFactory) *Service {
	return &Service{
		registry: registry,
		cutoffs:  cutoffs,
		logger:   loggerFactory.Create("Service").Sugar(),
	}
}

// resolveGame returns the lower-cased game id. Without an explicit name it
// falls back to the only queue there is, then to the only queue player is
// in. An empty result means the game cannot be inferred.
func (s *Service) resolveGame(game, player string) string {
	if g := strings.TrimSpace(game); g != "" {
		return queue.GameKey(g)
	}
	games := s.registry.Games()
	if len(games) == 1 {
		return games[0]
	}
	if player == "" {
		return ""
	}
	var found []string
	for _, g := range games {
		q, err := s.registry.Get(g)
		if err != nil {
			continue
		}
		if _, ok := q.Find(player); ok {
			found = append(found, g)
		}
	}
	if len(found) == 1 {
		return found[0]
	}
	return ""
}

// live reports whether q has anyone, delaying participants included.
func live(q *queue.Queue) bool {
	return q.Len() > 0 || len(q.Delaying()) > 0
}

// liveQueue resolves game and returns its queue when it has participants.
func (s *Service) liveQueue(cmd, game, player string) (*queue.Queue, string, error) {
	g := s.resolveGame(game, player)
	if g == "" {
		return nil, "", &CommandError{Command: cmd, Target: player, Err: ErrNoGame}
	}
	q, err := s.registry.Get(g)
	if err != nil || !live(q) {
		return nil, g, &CommandError{Command: cmd, Game: g, Target: player, Err: ErrNoQueue}
	}
	return q, g, nil
}

func (s *Service) publish(r *Result) {
	events.Publish(events.QueueChanged{
		Game:    r.Game,
		Action:  r.Action,
		Actor:   r.Actor,
		Target:  r.Target,
		Members: r.Report.Size(),
		At:      time.Now(),
	})
}

func (s *Service) fail(cmd, game, target string, err error) error {
	s.logger.Debugf("cmd[%v] game[%v] target[%v] rejected err[%v]", cmd, game, target, err)
	return &CommandError{Command: cmd, Game: game, Target: target, Err: err}
}

// Join adds user to the queue of game, opening a session when the game has
// no live queue. cohortSize may be 0 to use the stored default.
func (s *Service) Join(ctx context.Context, user, game string, cohortSize int) (*Result, error) {
	const cmd = "queue"
	g := s.resolveGame(game, "")
	if g == "" {
		return nil, s.fail(cmd, "", user, ErrNoGame)
	}

	size := 0
	q, err := s.registry.Get(g)
	if err != nil || !live(q) {
		size, err = cutoff.Resolve(ctx, s.cutoffs, g, cohortSize)
		if errors.Is(err, cutoff.ErrUnknownCutoff) {
			return nil, s.fail(cmd, g, user, ErrNoCutoff)
		}
		if err != nil {
			return nil, err
		}
		if q, _, err = s.registry.GetOrCreate(g, size); err != nil {
			return nil, s.fail(cmd, g, user, err)
		}
	}

	// the queue decides whether this join opened it, so racing joiners
	// cannot both be told they created it
	report, created, err := q.Open(user, size)
	if err != nil {
		return nil, s.fail(cmd, g, user, err)
	}
	action := events.ActionJoined
	if created {
		action = events.ActionCreated
		s.logger.Infof("opened queue game[%v] cohortSize[%v] by user[%v]", g, report.CohortSize, user)
	}
	r := &Result{Command: cmd, Game: g, Action: action, Actor: user, Target: user, Created: created, Report: report}
	s.publish(r)
	return r, nil
}

// Leave removes user from its queue.
func (s *Service) Leave(_ context.Context, user, game string) (*Result, error) {
	const cmd = "leave"
	q, g, err := s.liveQueue(cmd, game, user)
	if err != nil {
		return nil, err
	}
	report, err := q.Remove(user)
	if err != nil {
		return nil, s.fail(cmd, g, user, err)
	}
	r := &Result{Command: cmd, Game: g, Action: events.ActionLeft, Actor: user, Target: user, Report: report}
	s.publish(r)
	return r, nil
}

// Next rotates the queue to the players of the next game.
func (s *Service) Next(_ context.Context, user, game string) (*Result, error) {
	const cmd = "next"
	q, g, err := s.liveQueue(cmd, game, user)
	if err != nil {
		return nil, err
	}
	report, err := q.Rotate()
	if err != nil {
		return nil, s.fail(cmd, g, "", err)
	}
	r := &Result{Command: cmd, Game: g, Action: events.ActionRotated, Actor: user, Report: report}
	s.publish(r)
	return r, nil
}

// Status reports the cohorts of the queue.
func (s *Service) Status(_ context.Context, user, game string) (*Result, error) {
	const cmd = "status"
	_, g, err := s.liveQueue(cmd, game, user)
	if err != nil {
		return nil, err
	}
	// everyone may be delaying; that still reports
	report, err := s.Snapshot(g)
	if err != nil {
		return nil, s.fail(cmd, g, "", err)
	}
	return &Result{Command: cmd, Game: g, Actor: user, Report: report}, nil
}

// Wait estimates how many games user still has to sit out.
func (s *Service) Wait(_ context.Context, user, game string) (*Result, error) {
	const cmd = "wait"
	q, g, err := s.liveQueue(cmd, game, user)
	if err != nil {
		return nil, err
	}
	w, err := q.EstimateWait(user)
	if err != nil {
		return nil, s.fail(cmd, g, user, err)
	}
	return &Result{Command: cmd, Game: g, Actor: user, Target: user, Wait: &w}, nil
}

// AddPlayer queues someone else.
func (s *Service) AddPlayer(_ context.Context, user, player, game string) (*Result, error) {
	const cmd = "add"
	if strings.TrimSpace(player) == "" {
		return nil, s.fail(cmd, game, "", ErrMissingPlayer)
	}
	q, g, err := s.liveQueue(cmd, game, user)
	if err != nil {
		return nil, err
	}
	report, err := q.Add(player)
	if err != nil {
		return nil, s.fail(cmd, g, player, err)
	}
	r := &Result{Command: cmd, Game: g, Action: events.ActionAdded, Actor: user, Target: player, Report: report}
	s.publish(r)
	return r, nil
}

// Kick removes someone else.
func (s *Service) Kick(_ context.Context, user, player, game string) (*Result, error) {
	const cmd = "kick"
	if strings.TrimSpace(player) == "" {
		return nil, s.fail(cmd, game, "", ErrMissingPlayer)
	}
	q, g, err := s.liveQueue(cmd, game, user)
	if err != nil {
		return nil, err
	}
	report, err := q.Remove(player)
	if err != nil {
		return nil, s.fail(cmd, g, player, err)
	}
	r := &Result{Command: cmd, Game: g, Action: events.ActionKicked, Actor: user, Target: player, Report: report}
	s.publish(r)
	return r, nil
}

// Delay takes player (user when empty) out of rotation.
func (s *Service) Delay(_ context.Context, user, player, game string) (*Result, error) {
	const cmd = "delay"
	if strings.TrimSpace(player) == "" {
		player = user
	}
	q, g, err := s.liveQueue(cmd, game, player)
	if err != nil {
		return nil, err
	}
	report, err := q.Delay(player)
	if err != nil {
		return nil, s.fail(cmd, g, player, err)
	}
	r := &Result{Command: cmd, Game: g, Action: events.ActionDelayed, Actor: user, Target: player, Report: report}
	s.publish(r)
	return r, nil
}

// Rejoin puts a delaying user back at the end of the queue.
func (s *Service) Rejoin(_ context.Context, user, game string) (*Result, error) {
	const cmd = "rejoin"
	q, g, err := s.liveQueue(cmd, game, user)
	if err != nil {
		return nil, err
	}
	report, err := q.Rejoin(user)
	if err != nil {
		return nil, s.fail(cmd, g, user, err)
	}
	r := &Result{Command: cmd, Game: g, Action: events.ActionRejoin, Actor: user, Target: user, Report: report}
	s.publish(r)
	return r, nil
}

// Undo reverts the last change. It works on an ended queue too.
func (s *Service) Undo(_ context.Context, user, game string) (*Result, error) {
	const cmd = "undo"
	g := s.resolveGame(game, user)
	if g == "" {
		return nil, s.fail(cmd, "", user, ErrNoGame)
	}
	q, err := s.registry.Get(g)
	if err != nil {
		return nil, s.fail(cmd, g, "", ErrNoQueue)
	}
	report, err := q.Undo()
	if err != nil {
		return nil, s.fail(cmd, g, "", err)
	}
	r := &Result{Command: cmd, Game: g, Action: events.ActionUndone, Actor: user, Report: report}
	s.publish(r)
	return r, nil
}

// Switch moves the queue user is in over to game.
func (s *Service) Switch(ctx context.Context, user, game string, cohortSize int) (*Result, error) {
	const cmd = "game"
	target := strings.TrimSpace(game)
	if target == "" {
		return nil, s.fail(cmd, "", user, ErrNoGame)
	}
	target = queue.GameKey(target)
	current := s.resolveGame("", user)
	if current == "" {
		return nil, s.fail(cmd, target, user, ErrNotQueued)
	}
	if src, err := s.registry.Get(current); err != nil {
		return nil, s.fail(cmd, target, user, ErrNotQueued)
	} else if _, ok := src.Find(user); !ok {
		return nil, s.fail(cmd, target, user, ErrNotQueued)
	}

	size, err := cutoff.Resolve(ctx, s.cutoffs, target, cohortSize)
	if errors.Is(err, cutoff.ErrUnknownCutoff) {
		return nil, s.fail(cmd, target, user, ErrNoCutoff)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.registry.Switch(current, target, size); err != nil {
		return nil, s.fail(cmd, target, user, err)
	}
	report, err := s.Snapshot(target)
	if err != nil {
		return nil, s.fail(cmd, target, user, err)
	}
	s.logger.Infof("switched game from[%v] to[%v] by user[%v]", current, target, user)
	r := &Result{Command: cmd, Game: target, Action: events.ActionSwitch, Actor: user, Target: current, Created: true, Report: report}
	s.publish(r)
	return r, nil
}

// End empties the queue. It stays registered so the end can be undone.
func (s *Service) End(_ context.Context, user, game string) (*Result, error) {
	const cmd = "end"
	g := s.resolveGame(game, user)
	if g == "" {
		return nil, s.fail(cmd, "", user, ErrNoGame)
	}
	q, err := s.registry.Get(g)
	if err != nil {
		return nil, s.fail(cmd, g, "", ErrNoQueue)
	}
	q.Empty()
	r := &Result{Command: cmd, Game: g, Action: events.ActionEnded, Actor: user, Report: queue.GroupReport{Game: g, CohortSize: q.CohortSize()}}
	s.publish(r)
	return r, nil
}

// Snapshot reports a game's queue without inference. An ended queue yields
// empty cohorts; an unknown game yields queue.ErrQueueNotFound.
func (s *Service) Snapshot(game string) (queue.GroupReport, error) {
	q, err := s.registry.Get(game)
	if err != nil {
		return queue.GroupReport{}, err
	}
	report, err := q.Report()
	if errors.Is(err, queue.ErrEmptyQueue) {
		delaying := make([]string, 0)
		for _, p := range q.Delaying() {
			delaying = append(delaying, p.Name)
		}
		return queue.GroupReport{
			Game:       q.Game(),
			CohortSize: q.CohortSize(),
			Current:    []string{},
			Next:       []string{},
			Waiting:    []string{},
			Delaying:   delaying,
		}, nil
	}
	return report, err
}

// Overview snapshots every known game in name order.
func (s *Service) Overview() []queue.GroupReport {
	games := s.registry.Games()
	out := make([]queue.GroupReport, 0, len(games))
	for _, g := range games {
		r, err := s.Snapshot(g)
		if err != nil {
			// removed between Games and Snapshot
			continue
		}
		out = append(out, r)
	}
	return out
}
