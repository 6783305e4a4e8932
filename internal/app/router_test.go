package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	d "github.com/jose-valero/game-queue-bot/internal/adapters/discord"
	"github.com/jose-valero/game-queue-bot/internal/infra"
	"github.com/jose-valero/game-queue-bot/internal/queue"
	"github.com/jose-valero/game-queue-bot/internal/ui"
	"github.com/jose-valero/game-queue-bot/pkg/config"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	svc, _ := newTestService(t)
	cfg := &config.Config{Prefix: "!", AdminRoleIDs: []string{"admins"}}
	return ProvideRouter(svc, cfg, infra.NewNopLoggerFactory())
}

func prefix(t *testing.T, r *Router, user, content string) string {
	t.Helper()
	mention := func(g string) string { return "@" + g }
	reply, ok := r.prefixReply(context.Background(), content, user, nil, mention)
	if !ok {
		t.Fatalf("%q was not treated as a command", content)
	}
	return reply.Content
}

func TestDecodeArgs(t *testing.T) {
	a, err := decodeArgs(map[string]any{"game": "chess", "players": "4"})
	if err != nil || a.Game != "chess" || a.Players != 4 {
		t.Fatalf("unexpected %+v err=%v", a, err)
	}
	// slash integers arrive as float64
	a, err = decodeArgs(map[string]any{"players": float64(3), "player": "bob"})
	if err != nil || a.Players != 3 || a.Player != "bob" {
		t.Fatalf("unexpected %+v err=%v", a, err)
	}
	if _, err := decodeArgs(map[string]any{"players": "many"}); !errors.Is(err, errBadArgs) {
		t.Fatalf("want errBadArgs, got %v", err)
	}
	if _, err := decodeArgs(map[string]any{"players": "-2"}); !errors.Is(err, errBadArgs) {
		t.Fatalf("want errBadArgs for negative, got %v", err)
	}
	if _, err := decodeArgs(map[string]any{"colour": "red"}); !errors.Is(err, errBadArgs) {
		t.Fatalf("want errBadArgs for unknown key, got %v", err)
	}
}

func TestLookupTable_Aliases(t *testing.T) {
	tbl := lookupTable(commandTable)
	for alias, name := range map[string]string{
		"join": "queue", "quit": "leave", "rotate": "next", "update": "next",
		"time": "wait", "remove": "kick", "switch": "game", "stop": "end",
	} {
		if c, ok := tbl[alias]; !ok || c.Name != name {
			t.Fatalf("alias %s must map to %s", alias, name)
		}
	}
}

func TestSlashCommands_SkipHidden(t *testing.T) {
	for _, c := range slashCommands(commandTable) {
		if c.Name == "sync" {
			t.Fatal("hidden commands must not be registered")
		}
		if c.Name == "queue" && c.Options[1].Type != discordgo.ApplicationCommandOptionInteger {
			t.Fatal("players must be an integer option")
		}
	}
}

func TestRouter_PrefixFlow(t *testing.T) {
	r := newTestRouter(t)

	got := prefix(t, r, "ana", "!queue")
	if !strings.HasPrefix(got, "Game to interact with cannot be identified") {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "ana", "!queue Chess")
	if !strings.HasPrefix(got, "No player count data exists") {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "ana", "!join Chess 2")
	if !strings.HasPrefix(got, "Queue has been created for @chess.") || !strings.Contains(got, "1) ana") {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "bob", "!join")
	if !strings.HasPrefix(got, "bob has joined the queue for chess.") {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "bob", "!join")
	if got != "bob is already a member of the queue for chess." {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "cid", `!add "Big Dan"`)
	if !strings.HasPrefix(got, "Big Dan has been added") {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "cid", "!time")
	if got != "cid is not a member of the queue for chess." {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "Big Dan", "!wait")
	if !strings.Contains(got, "will play in 1 game") {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "ana", "!rotate")
	if !strings.Contains(got, "Thanks for playing: ana, bob") {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "ana", "!undo")
	if !strings.HasPrefix(got, "Previous command has been undone") || !strings.Contains(got, "1) ana") {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "ana", "!kick")
	if got != "Please enter !kick [PLAYERNAME] [GAMENAME]." {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "ana", "!stop")
	if !strings.HasPrefix(got, "The queue has been ended.") {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "ana", "!status")
	if !strings.HasPrefix(got, "There is no queue. Type '!queue") {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "ana", "!dance")
	if got != msgUnknown {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "ana", "!queue chess lots")
	if got != msgBadArgs {
		t.Fatalf("unexpected %q", got)
	}

	if _, ok := r.prefixReply(context.Background(), "just chatting", "ana", nil, nil); ok {
		t.Fatal("plain messages are not commands")
	}
}

func TestRouter_DelayRejoinWording(t *testing.T) {
	r := newTestRouter(t)
	prefix(t, r, "ana", "!queue chess 1")
	prefix(t, r, "bob", "!queue chess")

	got := prefix(t, r, "ana", "!delay")
	if !strings.HasPrefix(got, "ana is now delaying their games. Type '!rejoin' to stop.") {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "ana", "!delay")
	if got != "ana is already delaying their games." {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "bob", "!rejoin")
	if got != "bob was not delaying games." {
		t.Fatalf("unexpected %q", got)
	}
	got = prefix(t, r, "ana", "!rejoin")
	if !strings.HasPrefix(got, "ana is no longer delaying their games.") {
		t.Fatalf("unexpected %q", got)
	}
}

func TestRouter_Sync(t *testing.T) {
	r := newTestRouter(t)
	calls := 0
	r.sync = func() error { calls++; return nil }

	if got := prefix(t, r, "ana", "!sync"); !strings.HasPrefix(got, "Only an admin") || calls != 0 {
		t.Fatalf("unexpected %q calls=%d", got, calls)
	}
	admin := &discordgo.Member{Roles: []string{"admins"}}
	reply, _ := r.prefixReply(context.Background(), "!sync", "ana", admin, nil)
	if reply.Content != "Command tree synced 👌." || calls != 1 {
		t.Fatalf("unexpected %q calls=%d", reply.Content, calls)
	}
}

func TestRouter_SlashUsesEmbeds(t *testing.T) {
	r := newTestRouter(t)
	data := discordgo.ApplicationCommandInteractionData{
		Name: "queue",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "game", Type: discordgo.ApplicationCommandOptionString, Value: "chess"},
			{Name: "players", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(2)},
		},
	}
	reply := r.slashReply(context.Background(), data, "ana", nil, nil)
	if reply.Embed == nil || reply.Embed.Title != "Queue for chess" {
		t.Fatalf("want report embed, got %+v", reply)
	}
	if !strings.HasPrefix(reply.Content, "Queue has been created for chess.") {
		t.Fatalf("unexpected %q", reply.Content)
	}

	reply = r.slashReply(context.Background(), discordgo.ApplicationCommandInteractionData{Name: "wait"}, "ana", nil, nil)
	if reply.Embed == nil || !strings.Contains(reply.Embed.Description, "current game") {
		t.Fatalf("want wait embed, got %+v", reply)
	}

	reply = r.slashReply(context.Background(), discordgo.ApplicationCommandInteractionData{Name: "leave"}, "zed", nil, nil)
	if !reply.Ephemeral || reply.Content != "zed is not a member of the queue for chess." {
		t.Fatalf("errors must be ephemeral, got %+v", reply)
	}

	reply = r.slashReply(context.Background(), discordgo.ApplicationCommandInteractionData{Name: "help"}, "ana", nil, nil)
	if !strings.Contains(reply.Content, "`!queue [game] [players]` (join)") {
		t.Fatalf("unexpected help %q", reply.Content)
	}
}

func TestRouter_Buttons(t *testing.T) {
	r := newTestRouter(t)
	ctx := context.Background()
	prefix(t, r, "ana", "!queue chess 2")

	reply := r.buttonReply(ctx, ui.ButtonID(ui.ButtonJoin, "chess"), "bob")
	if !reply.Ephemeral || !strings.HasPrefix(reply.Content, "bob has joined") {
		t.Fatalf("unexpected %+v", reply)
	}
	reply = r.buttonReply(ctx, ui.ButtonID(ui.ButtonJoin, "chess"), "bob")
	if !strings.Contains(reply.Content, "already a member") {
		t.Fatalf("unexpected %+v", reply)
	}
	reply = r.buttonReply(ctx, ui.ButtonID(ui.ButtonNext, "chess"), "bob")
	if !strings.Contains(reply.Content, "Thanks for playing") {
		t.Fatalf("unexpected %+v", reply)
	}
	reply = r.buttonReply(ctx, "garbage", "bob")
	if !strings.Contains(reply.Content, "Invalid selection") {
		t.Fatalf("unexpected %+v", reply)
	}
}

type fakeBoardAPI struct {
	sent []*discordgo.MessageSend
}

func (f *fakeBoardAPI) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, data)
	return &discordgo.Message{ID: "board", ChannelID: channelID}, nil
}

func (f *fakeBoardAPI) ChannelMessages(string, int, string, string, string, ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	return nil, nil
}

func (f *fakeBoardAPI) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{ID: m.ID}, nil
}

func TestBoardRefresher_Redraw(t *testing.T) {
	svc, _ := newTestService(t)
	api := &fakeBoardAPI{}
	br := NewBoardRefresher(svc, d.NewBoard(api, ui.BoardTitle, zap.NewNop()), "c1", zap.NewNop())

	mustJoin(t, svc, "ana", "chess", 2)
	if err := br.Redraw(time.Now()); err != nil {
		t.Fatal(err)
	}
	if len(api.sent) != 1 {
		t.Fatalf("want board created, got %d sends", len(api.sent))
	}
	msg := api.sent[0]
	if msg.Embeds[0].Title != ui.BoardTitle || len(msg.Embeds[0].Fields) != 1 {
		t.Fatalf("unexpected board %+v", msg.Embeds[0])
	}
	if len(msg.Components) != 1 {
		t.Fatalf("want one button row, got %d", len(msg.Components))
	}
}

func TestBoardRefresher_MarkCoalesces(t *testing.T) {
	br := NewBoardRefresher(nil, nil, "c1", zap.NewNop())
	for i := 0; i < 10; i++ {
		br.mark(time.Now())
	}
	if len(br.dirty) != 1 {
		t.Fatalf("want one pending redraw, got %d", len(br.dirty))
	}
}

func TestErrorText_Fallback(t *testing.T) {
	if got := errorText(errors.New("boom"), "!"); got != msgFailure {
		t.Fatalf("unexpected %q", got)
	}
	err := &CommandError{Command: "undo", Game: "chess", Err: queue.ErrNoHistory}
	if got := errorText(err, "!"); got != "There is nothing to undo for chess." {
		t.Fatalf("unexpected %q", got)
	}
}
