package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) handleSend(s Session, i *discordgo.InteractionCreate, user *discordgo.User, data discordgo.ApplicationCommandInteractionData) error {
	if !h.cfg.IsOperator(user.ID) {
		return errNotOperator
	}
	raw := getStringOption(data.Options, "channel_id")
	message := getStringOption(data.Options, "message")
	if raw == nil || message == nil || *message == "" {
		return errBadOption
	}
	channelID, ok := ParseChannelID(*raw)
	if !ok {
		return errBadChannel
	}

	if _, err := s.ChannelMessageSend(channelID, *message); err != nil {
		log.WithError(err).WithField("channel_id", channelID).Warn("commands: relay failed")
		return errBadChannel
	}
	respondEphemeral(s, i, fmt.Sprintf("✅ Message sent to <#%s>", channelID))
	return nil
}
