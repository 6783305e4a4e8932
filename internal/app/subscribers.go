package app

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	d "github.com/jose-valero/game-queue-bot/internal/adapters/discord"
	"github.com/jose-valero/game-queue-bot/internal/domain/events"
	"github.com/jose-valero/game-queue-bot/internal/ui"
)

// StartAuditLog writes one line per queue change. It returns the cancel
// func of its subscription.
func StartAuditLog(logger *zap.Logger) func() {
	sugar := logger.Sugar()
	return events.Subscribe(func(ev events.QueueChanged) {
		sugar.Infof("game[%v] action[%v] actor[%v] target[%v] members[%v]",
			ev.Game, ev.Action, ev.Actor, ev.Target, ev.Members)
	})
}

// BoardRefresher re-renders the queue board after changes. Bursts of
// changes collapse into one redraw.
type BoardRefresher struct {
	svc       *Service
	board     *d.Board
	channelID string
	logger    *zap.SugaredLogger

	dirty chan time.Time
}

func NewBoardRefresher(svc *Service, board *d.Board, channelID string, logger *zap.Logger) *BoardRefresher {
	return &BoardRefresher{
		svc:       svc,
		board:     board,
		channelID: channelID,
		logger:    logger.Sugar(),
		dirty:     make(chan time.Time, 1),
	}
}

// mark schedules a redraw without blocking the publisher.
func (b *BoardRefresher) mark(at time.Time) {
	select {
	case b.dirty <- at:
	default:
	}
}

// Run subscribes to queue changes and redraws until ctx is done.
func (b *BoardRefresher) Run(ctx context.Context) {
	if b.channelID == "" {
		return
	}
	cancel := events.Subscribe(func(ev events.QueueChanged) { b.mark(ev.At) })
	defer cancel()

	b.mark(time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case at := <-b.dirty:
			if err := b.Redraw(at); err != nil {
				b.logger.Warnf("board redraw channel[%v] err[%v]", b.channelID, err)
			}
		}
	}
}

// Redraw publishes the current state of every queue.
func (b *BoardRefresher) Redraw(at time.Time) error {
	reports := b.svc.Overview()
	games := make([]string, 0, len(reports))
	for _, r := range reports {
		if r.Size() > 0 || len(r.Delaying) > 0 {
			games = append(games, r.Game)
		}
	}
	var comps []discordgo.MessageComponent
	if len(games) > 0 {
		comps = ui.ComponentsForGames(games)
	}
	return b.board.Publish(b.channelID, ui.RenderBoard(reports, at), comps)
}
