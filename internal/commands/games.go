package commands

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/susu3304/epicgambler/internal/minigame"
)

// Interactions must be answered within three seconds.
const quizStartTimeout = 2500 * time.Millisecond

func (h *Handler) handlePlay(ctx context.Context, s Session, i *discordgo.InteractionCreate, user *discordgo.User) error {
	h.ledger.EnsureAccount(ctx, user.ID)
	if _, err := h.engine.StartDuel(ctx, i.ChannelID, user.ID); err != nil {
		return err
	}
	respondText(s, i, minigame.DuelPrompt(user.ID, h.cfg.DuelTimeout))
	return nil
}

func (h *Handler) handleQuiz(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	if !isAdmin(i.Member, h.cfg.AdminRoleID) {
		return errNotAdmin
	}
	ctx, cancel := context.WithTimeout(ctx, quizStartTimeout)
	defer cancel()
	if _, err := h.engine.StartQuiz(ctx, i.ChannelID); err != nil {
		return err
	}
	respondEphemeral(s, i, "🧠 Quiz started!")
	return nil
}
