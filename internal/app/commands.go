// internal/app/commands.go
package app

import (
	"github.com/bwmarrin/discordgo"
)

type paramKind int

const (
	paramString paramKind = iota
	paramInt
)

type param struct {
	Name        string
	Kind        paramKind
	Description string
}

// command describes one bot command for both the slash and the prefix
// surface. Prefix arguments bind to Params in order.
type command struct {
	Name        string
	Aliases     []string
	Description string
	Params      []param

	// Hidden commands are prefix only and left out of help.
	Hidden bool
}

var (
	pGame    = param{Name: "game", Kind: paramString, Description: "Name of the game"}
	pPlayers = param{Name: "players", Kind: paramInt, Description: "Players per game"}
	pPlayer  = param{Name: "player", Kind: paramString, Description: "Name of the player"}
)

var commandTable = []*command{
	{Name: "queue", Aliases: []string{"join"}, Description: "Join the queue for a game, starting one if none exists.", Params: []param{pGame, pPlayers}},
	{Name: "leave", Aliases: []string{"quit"}, Description: "Leave the queue for a game.", Params: []param{pGame}},
	{Name: "next", Aliases: []string{"rotate", "update"}, Description: "Rotate the queue to get the players for the next game.", Params: []param{pGame}},
	{Name: "status", Description: "See the status of the queue for a game.", Params: []param{pGame}},
	{Name: "wait", Aliases: []string{"time"}, Description: "See how long until your next game.", Params: []param{pGame}},
	{Name: "add", Description: "Add a player to the queue.", Params: []param{pPlayer, pGame}},
	{Name: "kick", Aliases: []string{"remove"}, Description: "Remove a player from the queue.", Params: []param{pPlayer, pGame}},
	{Name: "delay", Description: "Sit out games until you rejoin.", Params: []param{pPlayer, pGame}},
	{Name: "rejoin", Description: "Stop delaying and rejoin at the back of the queue.", Params: []param{pGame}},
	{Name: "undo", Description: "Reset the queue to the previous state.", Params: []param{pGame}},
	{Name: "game", Aliases: []string{"switch"}, Description: "Switch the queue to a different game.", Params: []param{pGame, pPlayers}},
	{Name: "end", Aliases: []string{"stop"}, Description: "End the current queue.", Params: []param{pGame}},
	{Name: "help", Description: "List the bot commands."},
	{Name: "sync", Description: "Register the slash commands again.", Hidden: true},
}

// lookupTable indexes commands by name and alias.
func lookupTable(cmds []*command) map[string]*command {
	out := make(map[string]*command, len(cmds)*2)
	for _, c := range cmds {
		out[c.Name] = c
		for _, a := range c.Aliases {
			out[a] = c
		}
	}
	return out
}

var minOne = 1.0

func slashCommands(cmds []*command) []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(cmds))
	for _, c := range cmds {
		if c.Hidden {
			continue
		}
		ac := &discordgo.ApplicationCommand{
			Name:        c.Name,
			Description: c.Description,
			Type:        discordgo.ChatApplicationCommand,
		}
		for _, p := range c.Params {
			opt := &discordgo.ApplicationCommandOption{
				Name:        p.Name,
				Description: p.Description,
				Type:        discordgo.ApplicationCommandOptionString,
			}
			if p.Kind == paramInt {
				opt.Type = discordgo.ApplicationCommandOptionInteger
				opt.MinValue = &minOne
			}
			ac.Options = append(ac.Options, opt)
		}
		out = append(out, ac)
	}
	return out
}

// CommandRegistrar is the part of *discordgo.Session used to publish slash
// commands.
type CommandRegistrar interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// RegisterCommands replaces the application's commands (guild-level when
// guildID is set) with the current table.
func RegisterCommands(s CommandRegistrar, appID, guildID string) error {
	_, err := s.ApplicationCommandBulkOverwrite(appID, guildID, slashCommands(commandTable))
	return err
}
