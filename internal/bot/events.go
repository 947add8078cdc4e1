package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/susu3304/epicgambler/internal/commands"
	"github.com/susu3304/epicgambler/internal/minigame"
)

const messageTimeout = 10 * time.Second

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	defer recoverEvent("ready")
	log.WithFields(log.Fields{
		"user":   event.User.Username,
		"guilds": len(event.Guilds),
	}).Info("bot: connected")

	for _, guild := range event.Guilds {
		b.registerGuildCommands(s, guild.ID)
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	defer recoverEvent("guild_create")
	log.WithFields(log.Fields{
		"guild_id": event.ID,
		"name":     event.Name,
	}).Info("bot: guild available, syncing commands")
	b.registerGuildCommands(s, event.ID)
}

func (b *Bot) registerGuildCommands(s *discordgo.Session, guildID string) {
	if s.State == nil || s.State.User == nil {
		return
	}
	if _, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, guildID, commands.GetCommands()); err != nil {
		log.WithError(err).WithField("guild_id", guildID).Error("bot: failed to register commands")
		return
	}
	log.WithField("guild_id", guildID).Debug("bot: registered commands")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer recoverEvent("message_create")
	ctx, cancel := context.WithTimeout(context.Background(), messageTimeout)
	defer cancel()
	b.handleMessage(ctx, m.Message)
}

// handleMessage touches the author's account and offers the message to the
// pending minigame sessions of its channel.
func (b *Bot) handleMessage(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}
	b.ledger.EnsureAccount(ctx, m.Author.ID)
	b.engine.HandleMessage(ctx, minigame.Message{
		Scope:     m.ChannelID,
		AuthorID:  m.Author.ID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	})
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer recoverEvent("interaction_create")
	b.handleInteraction(s, i)
}

func (b *Bot) handleInteraction(s commands.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	userID := ""
	if i.Member != nil && i.Member.User != nil {
		userID = i.Member.User.ID
	} else if i.User != nil {
		userID = i.User.ID
	}
	if b.limiter != nil && userID != "" && !b.limiter.Allow(userID) {
		log.WithField("user_id", userID).Warn("bot: rate limit exceeded")
		err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "⏳ Slow down! Try again in a few seconds.",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		if err != nil {
			log.WithError(err).Warn("bot: failed to respond")
		}
		return
	}
	b.handler.Handle(s, i)
}

func recoverEvent(event string) {
	if r := recover(); r != nil {
		log.WithFields(log.Fields{
			"component": "panic_recovery",
			"event":     event,
			"panic":     fmt.Sprintf("%v", r),
			"stack":     string(debug.Stack()),
		}).Error("bot: panic in event handler")
	}
}
