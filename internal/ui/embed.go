package ui

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/game-queue-bot/internal/queue"
)

// BoardTitle marks the board message so it can be found again after a
// restart.
const BoardTitle = "🎮 Game Queues"

const (
	colorActive = 0x57F287
	colorIdle   = 0x808080
)

func reportFields(r queue.GroupReport) []*discordgo.MessageEmbedField {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Current players", Value: numberedList(r.Current, 0), Inline: true},
		{Name: "Next game", Value: numberedList(r.Next, len(r.Current)), Inline: true},
	}
	if len(r.Waiting) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Waiting",
			Value: numberedList(r.Waiting, len(r.Current)+len(r.Next)),
		})
	}
	if len(r.Delaying) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Delaying",
			Value: bulletList(r.Delaying),
		})
	}
	if len(r.Retired) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Just played",
			Value: quoteBlock(bulletList(r.Retired)),
		})
	}
	return fields
}

// RenderReport draws one game's cohorts.
func RenderReport(r queue.GroupReport) *discordgo.MessageEmbed {
	color := colorActive
	if r.Size() == 0 {
		color = colorIdle
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Queue for %s", safe(r.Game)),
		Description: fmt.Sprintf("%d in queue • %d %s per game", r.Size(), r.CohortSize, plural(r.CohortSize, "player", "players")),
		Color:       color,
		Fields:      reportFields(r),
	}
}

// RenderWait draws a wait estimate.
func RenderWait(w queue.WaitEstimate) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Wait for %s", safe(w.Game)),
		Description: WaitText(w),
		Color:       colorActive,
	}
}

// RenderBoard is the single public message listing every live queue.
func RenderBoard(reports []queue.GroupReport, updated time.Time) *discordgo.MessageEmbed {
	emb := &discordgo.MessageEmbed{
		Title: BoardTitle,
		Color: colorIdle,
	}
	if !updated.IsZero() {
		emb.Timestamp = updated.Format(time.RFC3339)
	}

	live := 0
	for _, r := range reports {
		if r.Size() == 0 && len(r.Delaying) == 0 {
			continue
		}
		live++
		val := fmt.Sprintf("**Playing:** %s\n**Next:** %s", inline(r.Current), inline(r.Next))
		if len(r.Waiting) > 0 {
			val += fmt.Sprintf("\n**Waiting:** %s", inline(r.Waiting))
		}
		if len(r.Delaying) > 0 {
			val += fmt.Sprintf("\n**Delaying:** %s", inline(r.Delaying))
		}
		emb.Fields = append(emb.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s (%d/%d)", r.Game, len(r.Current), r.CohortSize),
			Value: clip(val),
		})
	}
	if live == 0 {
		emb.Description = "No queues running. Use `/queue` to start one."
		return emb
	}
	emb.Color = colorActive
	emb.Description = fmt.Sprintf("%d %s running", live, plural(live, "queue", "queues"))
	return emb
}

func inline(names []string) string {
	if len(names) == 0 {
		return "—"
	}
	out := safe(names[0])
	for _, n := range names[1:] {
		out += ", " + safe(n)
	}
	return out
}
