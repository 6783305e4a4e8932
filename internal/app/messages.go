package app

import (
	"errors"
	"fmt"
	"strings"

	disc "github.com/jose-valero/game-queue-bot/internal/adapters/discord"
	"github.com/jose-valero/game-queue-bot/internal/queue"
	"github.com/jose-valero/game-queue-bot/internal/ui"
)

// errBadArgs marks arguments that could not be decoded.
var errBadArgs = apperr("invalid command arguments")

const (
	msgBadArgs      = "**Please pass in all requirements to use the command. Try using** `help`**!**"
	msgUnknown      = "**Invalid command. Try using** `help` **to figure out commands!**"
	msgFailure      = "**There was a connection error somewhere, why don't you try again now?**"
	msgWrongChannel = "Use this command in the designated queue channel."
)

// replyStyle picks between the embed replies of slash commands and the
// plain text replies of prefix commands.
type replyStyle int

const (
	styleRich replyStyle = iota
	stylePlain
)

// resultReply words a successful command. mention is how the game is shown
// when a queue was just created.
func resultReply(r *Result, style replyStyle, prefix, mention string) disc.Reply {
	var head string
	switch r.Command {
	case "queue":
		if r.Created {
			head = fmt.Sprintf("Queue has been created for %s.\n", mention)
		}
		head += fmt.Sprintf("%s has joined the queue for %s.", r.Actor, r.Game)
	case "leave":
		head = fmt.Sprintf("%s has left the queue for %s.", r.Actor, r.Game)
	case "add":
		head = fmt.Sprintf("%s has been added to the queue for %s.", r.Target, r.Game)
	case "kick":
		head = fmt.Sprintf("%s has been removed from the queue for %s.", r.Target, r.Game)
	case "delay":
		head = fmt.Sprintf("%s is now delaying their games. Type '%srejoin' to stop.", r.Target, prefix)
	case "rejoin":
		head = fmt.Sprintf("%s is no longer delaying their games.", r.Actor)
	case "undo":
		head = "Previous command has been undone. The status of the queue now is:"
	case "game":
		head = fmt.Sprintf("Queue has been created for %s.", mention)
	case "end":
		return disc.Reply{Content: fmt.Sprintf("The queue has been ended. Type '%squeue [game_name]' to start a new queue.", prefix)}
	}

	if r.Wait != nil {
		if style == styleRich {
			return disc.Reply{Content: head, Embed: ui.RenderWait(*r.Wait)}
		}
		return disc.Reply{Content: joinText(head, ui.WaitText(*r.Wait))}
	}
	if style == styleRich {
		return disc.Reply{Content: head, Embed: ui.RenderReport(r.Report)}
	}
	return disc.Reply{Content: joinText(head, ui.ReportText(r.Report))}
}

func joinText(head, body string) string {
	if head == "" {
		return body
	}
	return head + "\n\n" + body
}

// errorText words a failed command the way players expect to read it.
func errorText(err error, prefix string) string {
	var ce *CommandError
	if !errors.As(err, &ce) {
		ce = &CommandError{}
	}
	target := ce.Target
	if target == "" {
		target = "That player"
	}

	switch {
	case errors.Is(err, ErrNoGame):
		return "Game to interact with cannot be identified. Please enter it after the command."
	case errors.Is(err, ErrNoCutoff):
		return "No player count data exists for that game. Please enter it after the game name in the command."
	case errors.Is(err, ErrNoQueue), errors.Is(err, queue.ErrEmptyQueue), errors.Is(err, queue.ErrQueueNotFound):
		return fmt.Sprintf("There is no queue. Type '%squeue [game_name] [player_number]' to create one.", prefix)
	case errors.Is(err, ErrNotQueued):
		return "You do not appear to currently be in a queue. Please join one before switching games."
	case errors.Is(err, ErrMissingPlayer):
		return fmt.Sprintf("Please enter %s%s [PLAYERNAME] [GAMENAME].", prefix, ce.Command)
	case errors.Is(err, queue.ErrAlreadyPresent):
		return fmt.Sprintf("%s is already a member of the queue for %s.", target, ce.Game)
	case errors.Is(err, queue.ErrNotFound):
		return fmt.Sprintf("%s is not a member of the queue for %s.", target, ce.Game)
	case errors.Is(err, queue.ErrNotDelaying):
		return fmt.Sprintf("%s was not delaying games.", target)
	case errors.Is(err, queue.ErrAlreadyDelaying):
		return fmt.Sprintf("%s is already delaying their games.", target)
	case errors.Is(err, queue.ErrNoHistory):
		return fmt.Sprintf("There is nothing to undo for %s.", ce.Game)
	case errors.Is(err, queue.ErrInvalidCohortSize):
		return "The player count must be at least 1."
	case errors.Is(err, errBadArgs):
		return msgBadArgs
	}
	return msgFailure
}

// helpText lists the visible commands with their arguments.
func helpText(prefix string) string {
	var b strings.Builder
	b.WriteString("**Commands**\n")
	for _, c := range commandTable {
		if c.Hidden {
			continue
		}
		fmt.Fprintf(&b, "`%s%s", prefix, c.Name)
		for _, p := range c.Params {
			fmt.Fprintf(&b, " [%s]", p.Name)
		}
		b.WriteString("`")
		if len(c.Aliases) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(c.Aliases, ", "))
		}
		fmt.Fprintf(&b, " %s\n", c.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
