package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Discord rejects message content longer than this.
const maxMessageLength = 2000

type channelSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Messenger posts minigame announcements to channels.
type Messenger struct {
	session channelSender
}

func NewMessenger(session channelSender) *Messenger {
	return &Messenger{session: session}
}

func (m *Messenger) Send(ctx context.Context, channelID, text string) error {
	if r := []rune(text); len(r) > maxMessageLength {
		text = string(r[:maxMessageLength-1]) + "…"
	}
	_, err := m.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	return err
}
