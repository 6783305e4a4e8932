// internal/ui/components.go
// Buttons attached to the queue board, one row per game.

package ui

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Button actions. A custom id is "<action>:<game>".
const (
	ButtonJoin   = "queue_join"
	ButtonLeave  = "queue_leave"
	ButtonNext   = "queue_next"
	ButtonRejoin = "queue_rejoin"
)

// Discord allows five action rows per message.
const maxRows = 5

// ComponentsForGames returns a Join / Leave / Rejoin / Next row per game.
func ComponentsForGames(games []string) []discordgo.MessageComponent {
	if len(games) > maxRows {
		games = games[:maxRows]
	}
	rows := make([]discordgo.MessageComponent, 0, len(games))
	for _, g := range games {
		rows = append(rows, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Join " + g,
					Style:    discordgo.PrimaryButton,
					CustomID: ButtonID(ButtonJoin, g),
					Emoji:    &discordgo.ComponentEmoji{Name: "🎮"},
				},
				discordgo.Button{
					Label:    "Leave",
					Style:    discordgo.SecondaryButton,
					CustomID: ButtonID(ButtonLeave, g),
					Emoji:    &discordgo.ComponentEmoji{Name: "👋"},
				},
				discordgo.Button{
					Label:    "Rejoin",
					Style:    discordgo.SecondaryButton,
					CustomID: ButtonID(ButtonRejoin, g),
				},
				discordgo.Button{
					Label:    "Next game",
					Style:    discordgo.SuccessButton,
					CustomID: ButtonID(ButtonNext, g),
					Emoji:    &discordgo.ComponentEmoji{Name: "🔄"},
				},
			},
		})
	}
	return rows
}

func ButtonID(action, game string) string { return action + ":" + game }

// ParseButtonID splits a custom id built by ButtonID.
func ParseButtonID(id string) (action, game string, ok bool) {
	action, game, ok = strings.Cut(id, ":")
	if !ok || action == "" || game == "" {
		return "", "", false
	}
	return action, game, true
}
