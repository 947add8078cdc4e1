package minigame

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/susu3304/epicgambler/internal/ledger"
	"github.com/susu3304/epicgambler/internal/weighted"
)

type Move string

const (
	Rock     Move = "rock"
	Paper    Move = "paper"
	Scissors Move = "scissors"
)

// BotMoves is the opponent's move distribution.
var BotMoves = weighted.Table[Move]{
	{Value: Rock, Weight: 3},
	{Value: Paper, Weight: 4},
	{Value: Scissors, Weight: 3},
}

// ParseMove accepts a canonical move in any case.
func ParseMove(s string) (Move, bool) {
	switch m := Move(fold(s)); m {
	case Rock, Paper, Scissors:
		return m, true
	}
	return "", false
}

type Result int

const (
	Tie Result = iota
	Win
	Loss
)

var beats = map[Move]Move{
	Rock:     Scissors,
	Paper:    Rock,
	Scissors: Paper,
}

// Judge reports the result from the player's point of view.
func Judge(player, bot Move) Result {
	switch {
	case player == bot:
		return Tie
	case beats[player] == bot:
		return Win
	default:
		return Loss
	}
}

// StartDuel opens a rock-paper-scissors round for userID in scope.
func (e *Engine) StartDuel(ctx context.Context, scope, userID string) (*Session, error) {
	if e.cfg.DuelScope != "" && scope != e.cfg.DuelScope {
		return nil, ErrWrongScope
	}
	k := sessionKey{kind: KindDuel, scope: scope, user: userID}
	if err := e.reserve(k, ErrDuelAlreadyPending); err != nil {
		return nil, err
	}

	s := newSession(KindDuel, scope, userID, e.clock.Now().Add(e.cfg.DuelTimeout))
	s.match = func(m Message) bool {
		if m.Scope != scope || m.AuthorID != userID {
			return false
		}
		_, ok := ParseMove(m.Content)
		return ok
	}
	s.onResolve = func(ctx context.Context, winner Message) {
		player, _ := ParseMove(winner.Content)
		e.playDuel(ctx, s, player)
	}
	s.onExpire = func(ctx context.Context) {
		e.announce(ctx, s, fmt.Sprintf("⌛ %s you took too long! The duel was cancelled.", mention(userID)))
	}
	e.open(s, e.cfg.DuelTimeout)
	return s, nil
}

// DuelPrompt is the text shown to a player who just started a duel.
func DuelPrompt(userID string, timeout time.Duration) string {
	return fmt.Sprintf("🎮 %s choose **rock**, **paper** or **scissors**! You have %ds.", mention(userID), int(timeout.Seconds()))
}

func (e *Engine) playDuel(ctx context.Context, s *Session, player Move) {
	bot := e.pick(BotMoves)
	result := Judge(player, bot)
	e.recorder.RecordSession(string(KindDuel), resultLabel(result))

	head := fmt.Sprintf("%s you chose **%s**, I chose **%s**.", mention(s.UserID), player, bot)
	switch result {
	case Tie:
		e.announce(ctx, s, head+" 🤝 It's a tie!")
	case Loss:
		e.announce(ctx, s, head+" 😈 I win!")
	case Win:
		balance, err := e.rewards.Reward(ctx, s.UserID, e.cfg.DuelReward, ledger.ReasonDuel)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"session_id": s.ID,
				"user_id":    s.UserID,
			}).Error("minigame: failed to credit duel winner")
			e.announce(ctx, s, head+" 🏆 You win! The reward could not be credited right now.")
			return
		}
		e.announce(ctx, s, fmt.Sprintf("%s 🏆 You win! +%d coins (balance: %d)", head, e.cfg.DuelReward, balance))
	}
}

func resultLabel(r Result) string {
	switch r {
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "tie"
	}
}
