package discord

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// BoardAPI is the part of *discordgo.Session the board needs.
type BoardAPI interface {
	MessageAPI
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Board keeps one public message per channel up to date instead of
// posting a new one on every change.
type Board struct {
	api    BoardAPI
	title  string
	botID  atomic.Value // string
	logger *zap.SugaredLogger

	msgIDs sync.Map // channelID -> messageID
	locks  sync.Map // channelID -> *sync.Mutex
}

// NewBoard recognises its own earlier messages by an embed title starting
// with title.
func NewBoard(api BoardAPI, title string, logger *zap.Logger) *Board {
	b := &Board{api: api, title: strings.ToLower(title), logger: logger.Sugar()}
	b.botID.Store("")
	return b
}

// SetBotID restricts rehydration to messages authored by the bot.
func (b *Board) SetBotID(id string) { b.botID.Store(id) }

func (b *Board) chanLock(channelID string) *sync.Mutex {
	v, _ := b.locks.LoadOrStore(channelID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (b *Board) messageID(channelID string) (string, bool) {
	v, ok := b.msgIDs.Load(channelID)
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (b *Board) looksLikeBoard(m *discordgo.Message) bool {
	if m == nil || len(m.Embeds) == 0 {
		return false
	}
	if id := b.botID.Load().(string); id != "" && (m.Author == nil || m.Author.ID != id) {
		return false
	}
	return strings.HasPrefix(strings.ToLower(m.Embeds[0].Title), b.title)
}

// findExisting scans recent history for a board left by a previous run.
func (b *Board) findExisting(channelID string) (string, bool) {
	msgs, err := b.api.ChannelMessages(channelID, 50, "", "", "")
	if err != nil {
		b.logger.Warnf("history lookup channel[%v] err[%v]", channelID, err)
		return "", false
	}
	for _, m := range msgs {
		if b.looksLikeBoard(m) {
			return m.ID, true
		}
	}
	return "", false
}

// Publish edits the channel's board message, creating it when none is
// known or the known one was deleted.
func (b *Board) Publish(channelID string, emb *discordgo.MessageEmbed, comps []discordgo.MessageComponent) error {
	if channelID == "" {
		return nil
	}
	mu := b.chanLock(channelID)
	mu.Lock()
	defer mu.Unlock()

	id, ok := b.messageID(channelID)
	if !ok {
		if id, ok = b.findExisting(channelID); ok {
			b.logger.Debugf("rehydrated board channel[%v] message[%v]", channelID, id)
			b.msgIDs.Store(channelID, id)
		}
	}
	if ok {
		err := b.edit(channelID, id, emb, comps)
		if !isUnknownMessage(err) {
			return err
		}
		b.logger.Infof("board message gone channel[%v] message[%v], recreating", channelID, id)
		b.msgIDs.Delete(channelID)
	}

	msg, err := b.api.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{emb},
		Components: comps,
	})
	if err != nil {
		return err
	}
	if msg != nil {
		b.logger.Infof("created board channel[%v] message[%v]", channelID, msg.ID)
		b.msgIDs.Store(channelID, msg.ID)
	}
	return nil
}

func (b *Board) edit(channelID, msgID string, emb *discordgo.MessageEmbed, comps []discordgo.MessageComponent) error {
	embeds := []*discordgo.MessageEmbed{emb}
	if comps == nil {
		comps = []discordgo.MessageComponent{}
	}
	_, err := b.api.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         msgID,
		Embeds:     &embeds,
		Components: &comps,
	})
	return err
}

func isUnknownMessage(err error) bool {
	var re *discordgo.RESTError
	return errors.As(err, &re) && re.Message != nil && re.Message.Code == discordgo.ErrCodeUnknownMessage
}
