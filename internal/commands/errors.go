package commands

import (
	"errors"
	"fmt"

	"github.com/susu3304/epicgambler/internal/catalog"
	"github.com/susu3304/epicgambler/internal/ledger"
	"github.com/susu3304/epicgambler/internal/minigame"
	"github.com/susu3304/epicgambler/internal/trivia"
)

var (
	errNotAdmin    = errors.New("admin role required")
	errNotOperator = errors.New("operator required")
	errBadChannel  = errors.New("invalid channel id")
	errBadOption   = errors.New("missing or invalid option")
)

var expected = []error{
	catalog.ErrUnknownItem,
	catalog.ErrInvalidItem,
	ledger.ErrInsufficientFunds,
	ledger.ErrAlreadySpunToday,
	minigame.ErrDuelAlreadyPending,
	minigame.ErrQuizAlreadyPending,
	minigame.ErrSessionExpired,
	minigame.ErrWrongScope,
	errNotAdmin,
	errNotOperator,
	errBadChannel,
	errBadOption,
}

// isExpected reports whether err is a normal user-facing rejection.
func isExpected(err error) bool {
	for _, e := range expected {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

func (h *Handler) userMessage(err error) string {
	switch {
	case errors.Is(err, catalog.ErrUnknownItem):
		return "❌ That item does not exist. Use `/shop` to see what's available."
	case errors.Is(err, catalog.ErrInvalidItem):
		return fmt.Sprintf("❌ Invalid item: a name is required, the price must be zero or more, and name, description and payload are limited to %d, %d and %d characters.",
			catalog.MaxNameRunes, catalog.MaxDescriptionRunes, catalog.MaxPayloadRunes)
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "❌ You don't have enough coins for that."
	case errors.Is(err, ledger.ErrAlreadySpunToday):
		return "⏳ You already spun today. Come back tomorrow!"
	case errors.Is(err, minigame.ErrDuelAlreadyPending):
		return "⚔️ You already have a duel in progress. Send your move first!"
	case errors.Is(err, minigame.ErrQuizAlreadyPending):
		return "🧠 A quiz is already running in this channel."
	case errors.Is(err, minigame.ErrSessionExpired):
		return "⌛ That round has already ended."
	case errors.Is(err, minigame.ErrWrongScope):
		if h.cfg != nil && h.cfg.DuelChannelID != "" {
			return fmt.Sprintf("🚫 Duels can only be played in <#%s>.", h.cfg.DuelChannelID)
		}
		return "🚫 Duels can't be played in this channel."
	case errors.Is(err, ledger.ErrStoreUnavailable):
		return "⚠️ The bank is unavailable right now. Please try again later."
	case errors.Is(err, trivia.ErrUpstreamUnavailable):
		return "⚠️ Couldn't start a quiz right now. Please try again later."
	case errors.Is(err, errNotAdmin):
		return "🚫 You need the admin role to do that."
	case errors.Is(err, errNotOperator):
		return "🚫 Only bot operators can do that."
	case errors.Is(err, errBadChannel):
		return "❌ Invalid channel ID"
	case errors.Is(err, errBadOption):
		return "❌ Missing or invalid option."
	default:
		return "⚠️ Something went wrong. Please try again later."
	}
}
