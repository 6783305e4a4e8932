package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// GameMention returns the mention of the first mentionable role whose name
// contains game, or game itself when there is none.
func GameMention(s *discordgo.Session, guildID, game string) string {
	if s == nil || guildID == "" {
		return game
	}
	var roles []*discordgo.Role
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil && g != nil {
			roles = g.Roles
		}
	}
	if roles == nil {
		roles, _ = s.GuildRoles(guildID) // REST fallback
	}
	return mentionFor(roles, game)
}

func mentionFor(roles []*discordgo.Role, game string) string {
	g := strings.ToLower(strings.TrimSpace(game))
	if g == "" {
		return game
	}
	for _, r := range roles {
		if r != nil && r.Mentionable && strings.Contains(strings.ToLower(r.Name), g) {
			return r.Mention()
		}
	}
	return game
}
