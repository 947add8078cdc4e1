package commands

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/susu3304/epicgambler/internal/catalog"
	"github.com/susu3304/epicgambler/internal/config"
	"github.com/susu3304/epicgambler/internal/ledger"
	"github.com/susu3304/epicgambler/internal/minigame"
)

const handlerTimeout = 10 * time.Second

type Recorder interface {
	RecordCommand(command, result string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCommand(string, string) {}

// Handler routes slash commands to the economy and minigame services.
type Handler struct {
	ledger   *ledger.Service
	catalog  *catalog.Service
	engine   *minigame.Engine
	cfg      *config.Config
	recorder Recorder
}

func NewHandler(l *ledger.Service, c *catalog.Service, e *minigame.Engine, cfg *config.Config, recorder Recorder) *Handler {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Handler{ledger: l, catalog: c, engine: e, cfg: cfg, recorder: recorder}
}

func (h *Handler) Handle(s Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	user := interactionUser(i)
	if user == nil {
		return
	}
	data := i.ApplicationCommandData()

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	var err error
	switch data.Name {
	case "help":
		respondEphemeral(s, i, helpText)
	case "balance":
		err = h.handleBalance(ctx, s, i, user)
	case "shop":
		err = h.handleShop(ctx, s, i, data)
	case "redeem":
		err = h.handleRedeem(ctx, s, i, user, data)
	case "spin":
		err = h.handleSpin(ctx, s, i, user)
	case "play":
		err = h.handlePlay(ctx, s, i, user)
	case "quiz":
		err = h.handleQuiz(ctx, s, i)
	case "add_shop":
		err = h.handleAddShop(ctx, s, i, data)
	case "send", "msgsend":
		err = h.handleSend(s, i, user, data)
	default:
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
		respondEphemeral(s, i, h.userMessage(err))
		entry := log.WithError(err).WithFields(log.Fields{
			"command": data.Name,
			"user_id": user.ID,
		})
		if isExpected(err) {
			entry.Debug("commands: rejected")
		} else {
			entry.Error("commands: failed")
		}
	}
	h.recorder.RecordCommand(data.Name, result)
}

const helpText = "**🎲 Epic Gambler commands**\n" +
	"`/balance` show your coins\n" +
	"`/spin` spin the daily wheel (once per day)\n" +
	"`/shop` list redeemable items\n" +
	"`/redeem <item_id>` buy an item with your coins\n" +
	"`/play` duel the bot at rock-paper-scissors\n" +
	"Answer quiz questions in chat to win coins!\n\n" +
	"Admins: `/add_shop`, `/quiz`. Operators: `/send`."
