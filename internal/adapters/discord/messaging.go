package discord

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Reply is a transport-neutral answer to a command. Empty fields are
// omitted.
type Reply struct {
	Content    string
	Embed      *discordgo.MessageEmbed
	Components []discordgo.MessageComponent
	Ephemeral  bool
}

// InteractionAPI is the part of *discordgo.Session used to answer
// interactions.
type InteractionAPI interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// MessageAPI is the part of *discordgo.Session used to post into channels.
type MessageAPI interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Messenger struct {
	logger *zap.SugaredLogger
}

func NewMessenger(logger *zap.Logger) *Messenger {
	return &Messenger{logger: logger.Sugar()}
}

func (r Reply) data() *discordgo.InteractionResponseData {
	d := &discordgo.InteractionResponseData{
		Content:    r.Content,
		Components: r.Components,
	}
	if r.Embed != nil {
		d.Embeds = []*discordgo.MessageEmbed{r.Embed}
	}
	if r.Ephemeral {
		d.Flags = discordgo.MessageFlagsEphemeral
	}
	return d
}

// Respond posts r as the interaction response.
func (m *Messenger) Respond(s InteractionAPI, i *discordgo.Interaction, r Reply) error {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: r.data(),
	})
	if err != nil {
		m.logger.Errorf("respond interaction[%v] err[%v]", i.ID, err)
	}
	return err
}

// SendEphemeral answers with a message only the invoking user sees.
func (m *Messenger) SendEphemeral(s InteractionAPI, i *discordgo.Interaction, msg string) error {
	return m.Respond(s, i, Reply{Content: msg, Ephemeral: true})
}

// Send posts r into channelID, quoting replyTo when set.
func (m *Messenger) Send(s MessageAPI, channelID string, r Reply, replyTo *discordgo.MessageReference) error {
	data := &discordgo.MessageSend{
		Content:    r.Content,
		Components: r.Components,
		Reference:  replyTo,
		// only the game role of a new queue may ping
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeRoles},
		},
	}
	if r.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{r.Embed}
	}
	_, err := s.ChannelMessageSendComplex(channelID, data)
	if err != nil {
		m.logger.Errorf("send channel[%v] err[%v]", channelID, err)
	}
	return err
}

// UserOf extracts the effective user from an interaction (guild or DM).
func UserOf(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// SafeName returns a defensively safe username string.
func SafeName(u *discordgo.User) string {
	if u == nil {
		return "unknown"
	}
	return u.Username
}
