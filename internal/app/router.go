// internal/app/router.go
package app

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	d "github.com/jose-valero/game-queue-bot/internal/adapters/discord"
	"github.com/jose-valero/game-queue-bot/internal/infra"
	"github.com/jose-valero/game-queue-bot/internal/ui"
	"github.com/jose-valero/game-queue-bot/pkg/config"
)

const commandTimeout = 5 * time.Second

// commandArgs is the typed form of slash options and prefix arguments.
type commandArgs struct {
	Game    string `mapstructure:"game"`
	Players int    `mapstructure:"players"`
	Player  string `mapstructure:"player"`
}

func decodeArgs(raw map[string]any) (commandArgs, error) {
	var args commandArgs
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &args,
	})
	if err != nil {
		return args, err
	}
	if err := dec.Decode(raw); err != nil {
		return args, errors.Wrap(errBadArgs, err.Error())
	}
	if args.Players < 0 {
		return args, errors.Wrap(errBadArgs, "negative player count")
	}
	return args, nil
}

// positional binds prefix arguments to the command's parameters in order.
// Extra arguments are ignored.
func positional(c *command, args []string) map[string]any {
	raw := make(map[string]any, len(c.Params))
	for i, p := range c.Params {
		if i >= len(args) {
			break
		}
		raw[p.Name] = args[i]
	}
	return raw
}

// invocation is one command call, independent of how it arrived.
type invocation struct {
	cmd    *command
	user   string
	member *discordgo.Member
	raw    map[string]any
	style  replyStyle

	// mention renders a game for "queue created" replies.
	mention func(game string) string
}

type Router struct {
	svc      *Service
	cfg      *config.Config
	policy   *d.Policy
	msgr     *d.Messenger
	dedupe   *d.Deduper
	commands map[string]*command
	logger   *zap.SugaredLogger

	// sync registers the slash commands again; set by the bot.
	sync func() error
}

func ProvideRouter(svc *Service, cfg *config.Config, loggerFactory *infra.LoggerFactory) *Router {
	logger := loggerFactory.Create("Router")
	return &Router{
		svc:      svc,
		cfg:      cfg,
		policy:   d.NewPolicy(cfg.AdminRoleIDs),
		msgr:     d.NewMessenger(logger),
		dedupe:   d.NewDeduper(time.Minute),
		commands: lookupTable(commandTable),
		logger:   logger.Sugar(),
	}
}

// execute runs inv and words the outcome.
func (r *Router) execute(ctx context.Context, inv invocation) d.Reply {
	switch inv.cmd.Name {
	case "help":
		return d.Reply{Content: helpText(r.cfg.Prefix), Ephemeral: true}
	case "sync":
		if !r.policy.IsPrivileged(inv.member) {
			return d.Reply{Content: "Only an admin can use this command 😞."}
		}
		if r.sync == nil {
			return d.Reply{Content: msgFailure}
		}
		if err := r.sync(); err != nil {
			r.logger.Errorf("sync commands err[%v]", err)
			return d.Reply{Content: msgFailure}
		}
		return d.Reply{Content: "Command tree synced 👌."}
	}

	args, err := decodeArgs(inv.raw)
	if err != nil {
		r.logger.Debugf("cmd[%v] user[%v] bad args[%v] err[%v]", inv.cmd.Name, inv.user, inv.raw, err)
		return d.Reply{Content: errorText(err, r.cfg.Prefix), Ephemeral: true}
	}

	res, err := r.dispatch(ctx, inv.cmd.Name, inv.user, args)
	if err != nil {
		var ce *CommandError
		if !errors.As(err, &ce) {
			r.logger.Errorf("cmd[%v] user[%v] err[%v]", inv.cmd.Name, inv.user, err)
		}
		return d.Reply{Content: errorText(err, r.cfg.Prefix), Ephemeral: true}
	}

	mention := res.Game
	if res.Created && inv.mention != nil {
		mention = inv.mention(res.Game)
	}
	return resultReply(res, inv.style, r.cfg.Prefix, mention)
}

func (r *Router) dispatch(ctx context.Context, name, user string, a commandArgs) (*Result, error) {
	switch name {
	case "queue":
		return r.svc.Join(ctx, user, a.Game, a.Players)
	case "leave":
		return r.svc.Leave(ctx, user, a.Game)
	case "next":
		return r.svc.Next(ctx, user, a.Game)
	case "status":
		return r.svc.Status(ctx, user, a.Game)
	case "wait":
		return r.svc.Wait(ctx, user, a.Game)
	case "add":
		return r.svc.AddPlayer(ctx, user, a.Player, a.Game)
	case "kick":
		return r.svc.Kick(ctx, user, a.Player, a.Game)
	case "delay":
		return r.svc.Delay(ctx, user, a.Player, a.Game)
	case "rejoin":
		return r.svc.Rejoin(ctx, user, a.Game)
	case "undo":
		return r.svc.Undo(ctx, user, a.Game)
	case "game":
		return r.svc.Switch(ctx, user, a.Game, a.Players)
	case "end":
		return r.svc.End(ctx, user, a.Game)
	}
	return nil, errors.Errorf("unhandled command %q", name)
}

func (r *Router) inQueueChannel(channelID string) bool {
	return r.cfg.QueueChannelID == "" || channelID == r.cfg.QueueChannelID
}

// ------------------- Prefix -------------------

// prefixReply handles message content. ok is false for messages that are
// not commands.
func (r *Router) prefixReply(ctx context.Context, content, user string, member *discordgo.Member, mention func(string) string) (reply d.Reply, ok bool) {
	name, args, ok := d.ParsePrefix(content, r.cfg.Prefix)
	if !ok {
		return d.Reply{}, false
	}
	c, found := r.commands[name]
	if !found {
		return d.Reply{Content: msgUnknown}, true
	}
	return r.execute(ctx, invocation{
		cmd:     c,
		user:    user,
		member:  member,
		raw:     positional(c, args),
		style:   stylePlain,
		mention: mention,
	}), true
}

func (r *Router) HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || !r.inQueueChannel(m.ChannelID) {
		return
	}
	if !r.dedupe.AllowOnce(m.ID) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	mention := func(game string) string { return d.GameMention(s, m.GuildID, game) }
	reply, ok := r.prefixReply(ctx, m.Content, m.Author.Username, m.Member, mention)
	if !ok {
		return
	}
	r.logger.Debugf("[prefix] %q by %s in channel %s", m.Content, m.Author.Username, m.ChannelID)
	_ = r.msgr.Send(s, m.ChannelID, reply, m.Reference())
}

// ------------------- Slash -------------------

func (r *Router) slashReply(ctx context.Context, data discordgo.ApplicationCommandInteractionData, user string, member *discordgo.Member, mention func(string) string) d.Reply {
	c, found := r.commands[data.Name]
	if !found {
		return d.Reply{Content: msgUnknown, Ephemeral: true}
	}
	raw := make(map[string]any, len(data.Options))
	for _, o := range data.Options {
		raw[o.Name] = o.Value
	}
	return r.execute(ctx, invocation{
		cmd:     c,
		user:    user,
		member:  member,
		raw:     raw,
		style:   styleRich,
		mention: mention,
	})
}

// ------------------- Components -------------------

func (r *Router) buttonReply(ctx context.Context, customID, user string) d.Reply {
	action, game, ok := ui.ParseButtonID(customID)
	if !ok {
		return d.Reply{Content: "⚠️ Invalid selection.", Ephemeral: true}
	}
	var (
		res *Result
		err error
	)
	switch action {
	case ui.ButtonJoin:
		res, err = r.svc.Join(ctx, user, game, 0)
	case ui.ButtonLeave:
		res, err = r.svc.Leave(ctx, user, game)
	case ui.ButtonRejoin:
		res, err = r.svc.Rejoin(ctx, user, game)
	case ui.ButtonNext:
		res, err = r.svc.Next(ctx, user, game)
	default:
		return d.Reply{Content: "⚠️ Unknown action.", Ephemeral: true}
	}
	if err != nil {
		return d.Reply{Content: errorText(err, r.cfg.Prefix), Ephemeral: true}
	}
	// the board itself shows the new state
	reply := resultReply(res, stylePlain, r.cfg.Prefix, res.Game)
	reply.Ephemeral = true
	return reply
}

func (r *Router) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !r.inQueueChannel(i.ChannelID) {
		_ = r.msgr.SendEphemeral(s, i.Interaction, msgWrongChannel)
		return
	}
	u := d.UserOf(i.Interaction)
	if u == nil {
		_ = r.msgr.SendEphemeral(s, i.Interaction, "⚠️ Could not identify you.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var reply d.Reply
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		r.logger.Debugf("[slash] %s by %s in channel %s", data.Name, d.SafeName(u), i.ChannelID)
		mention := func(game string) string { return d.GameMention(s, i.GuildID, game) }
		reply = r.slashReply(ctx, data, u.Username, i.Member, mention)
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		r.logger.Debugf("[component] %s by %s", customID, d.SafeName(u))
		reply = r.buttonReply(ctx, customID, u.Username)
	default:
		return
	}
	_ = r.msgr.Respond(s, i.Interaction, reply)
}
