package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/susu3304/epicgambler/internal/commands"
	"github.com/susu3304/epicgambler/internal/ledger"
	"github.com/susu3304/epicgambler/internal/minigame"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentMessageContent

type Bot struct {
	session *discordgo.Session
	ledger  *ledger.Service
	engine  *minigame.Engine
	handler *commands.Handler
	limiter *RateLimiter
}

// NewSession creates the gateway session without connecting it.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = intents
	return session, nil
}

func New(session *discordgo.Session, l *ledger.Service, e *minigame.Engine, h *commands.Handler, limiter *RateLimiter) *Bot {
	b := &Bot{
		session: session,
		ledger:  l,
		engine:  e,
		handler: h,
		limiter: limiter,
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onGuildCreate)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onInteractionCreate)

	return b
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	log.Info("bot: discord session open")
	return nil
}

func (b *Bot) Stop() error {
	if b.limiter != nil {
		b.limiter.Stop()
	}
	return b.session.Close()
}
