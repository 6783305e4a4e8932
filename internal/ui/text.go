package ui

import (
	"fmt"
	"strings"

	"github.com/jose-valero/game-queue-bot/internal/queue"
)

// ReportText renders a report as a plain chat message for prefix commands.
func ReportText(r queue.GroupReport) string {
	var b strings.Builder
	if len(r.Retired) > 0 {
		fmt.Fprintf(&b, "Thanks for playing: %s\n\n", inline(r.Retired))
	}
	fmt.Fprintf(&b, "**Current players for %s:**\n%s\n", safe(r.Game), numberedList(r.Current, 0))
	if len(r.Next) > 0 {
		fmt.Fprintf(&b, "\n**Next game:**\n%s\n", numberedList(r.Next, len(r.Current)))
	}
	if len(r.Waiting) > 0 {
		fmt.Fprintf(&b, "\n**Waiting:**\n%s\n", numberedList(r.Waiting, len(r.Current)+len(r.Next)))
	}
	if len(r.Delaying) > 0 {
		fmt.Fprintf(&b, "\n**Delaying:** %s\n", inline(r.Delaying))
	}
	return strings.TrimRight(b.String(), "\n")
}

// WaitText words a wait estimate.
func WaitText(w queue.WaitEstimate) string {
	if w.Current {
		return fmt.Sprintf("%s is in the current game of %s.", w.Name, w.Game)
	}
	return fmt.Sprintf("%s is number %d in the queue for %s and will play in %d %s.",
		w.Name, w.Position+1, w.Game, w.Rotations, plural(w.Rotations, "game", "games"))
}
