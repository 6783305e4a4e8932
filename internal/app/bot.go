package app

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	d "github.com/jose-valero/game-queue-bot/internal/adapters/discord"
	"github.com/jose-valero/game-queue-bot/internal/infra"
	"github.com/jose-valero/game-queue-bot/internal/ui"
	"github.com/jose-valero/game-queue-bot/pkg/config"
)

type Bot struct {
	Sess   *discordgo.Session
	Cfg    *config.Config
	router *Router
	board  *d.Board
	boards *BoardRefresher
	logger *zap.SugaredLogger

	cancelBus func()
}

func ProvideBot(s *discordgo.Session, cfg *config.Config, svc *Service, router *Router, loggerFactory *infra.LoggerFactory) *Bot {
	board := d.NewBoard(s, ui.BoardTitle, loggerFactory.Create("Board"))
	b := &Bot{
		Sess:   s,
		Cfg:    cfg,
		router: router,
		board:  board,
		boards: NewBoardRefresher(svc, board, cfg.QueueChannelID, loggerFactory.Create("BoardRefresher")),
		logger: loggerFactory.Create("Bot").Sugar(),
	}
	router.sync = b.RegisterCommands
	b.cancelBus = StartAuditLog(loggerFactory.Create("Audit"))
	return b
}

// ProvideSession creates the gateway session with the intents the bot
// needs. The prefix "Bot " is required for bot tokens.
func ProvideSession(cfg *config.Config) (*discordgo.Session, error) {
	if err := cfg.RequireDiscord(); err != nil {
		return nil, err
	}
	sess, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}
	sess.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent // prefix commands
	return sess, nil
}

func (b *Bot) RegisterHandlers() {
	b.Sess.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.board.SetBotID(r.User.ID)
		b.logger.Infof("bot created as: %v", r.User.Username)
	})
	b.Sess.AddHandler(b.router.HandleInteraction)
	b.Sess.AddHandler(b.router.HandleMessageCreate)
}

func (b *Bot) RegisterCommands() error {
	return RegisterCommands(b.Sess, b.Cfg.AppID, b.Cfg.GuildID)
}

// Run opens the gateway, registers commands and keeps the board fresh
// until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.RegisterHandlers()
	if err := b.Sess.Open(); err != nil {
		return err
	}
	defer b.Sess.Close()

	if err := b.RegisterCommands(); err != nil {
		b.logger.Errorf("register commands err[%v]", err)
	}
	b.logger.Infof("bot ready - %s", b.Cfg.Redacted())

	b.boards.Run(ctx)
	<-ctx.Done()
	return nil
}

func (b *Bot) Stop() {
	if b.cancelBus != nil {
		b.cancelBus()
	}
}
