package minigame

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/susu3304/epicgambler/internal/ledger"
	"github.com/susu3304/epicgambler/internal/trivia"
)

// StartQuiz fetches a question, broadcasts it to scope and opens a pending
// round. Only one quiz may be pending per scope.
func (e *Engine) StartQuiz(ctx context.Context, scope string) (*Session, error) {
	k := sessionKey{kind: KindQuiz, scope: scope}
	if err := e.reserve(k, ErrQuizAlreadyPending); err != nil {
		return nil, err
	}

	q, err := e.questions.FetchQuestion(ctx)
	if err != nil {
		e.release(k)
		if !errors.Is(err, trivia.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %v", trivia.ErrUpstreamUnavailable, err)
		}
		return nil, err
	}

	answer := fold(q.Correct)
	s := newSession(KindQuiz, scope, "", e.clock.Now().Add(e.cfg.QuizTimeout))
	s.match = func(m Message) bool {
		return m.Scope == scope && fold(m.Content) == answer
	}
	s.onResolve = func(ctx context.Context, winner Message) {
		e.payQuiz(ctx, s, q, winner)
	}
	s.onExpire = func(ctx context.Context) {
		e.announce(ctx, s, fmt.Sprintf("⌛ Time's up! No winner this round. The answer was **%s**.", q.Correct))
	}
	e.open(s, e.cfg.QuizTimeout)

	if err := e.messenger.Send(ctx, scope, e.formatQuestion(q)); err != nil {
		e.discard(s)
		return nil, fmt.Errorf("%w: broadcast quiz: %v", trivia.ErrUpstreamUnavailable, err)
	}
	return s, nil
}

// TriggerQuiz is the periodic entry point. A pending round makes it a no-op.
func (e *Engine) TriggerQuiz(ctx context.Context, scope string) error {
	_, err := e.StartQuiz(ctx, scope)
	if errors.Is(err, ErrQuizAlreadyPending) {
		log.WithField("scope", scope).Debug("minigame: quiz still pending, skipping trigger")
		return nil
	}
	return err
}

func (e *Engine) payQuiz(ctx context.Context, s *Session, q trivia.Question, winner Message) {
	balance, err := e.rewards.Reward(ctx, winner.AuthorID, e.cfg.QuizReward, ledger.ReasonQuiz)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"session_id": s.ID,
			"user_id":    winner.AuthorID,
		}).Error("minigame: failed to credit quiz winner")
		e.announce(ctx, s, fmt.Sprintf("🎉 %s got it: **%s**! The reward could not be credited right now.", mention(winner.AuthorID), q.Correct))
		return
	}
	e.announce(ctx, s, fmt.Sprintf("🎉 %s got it: **%s**! +%d coins (balance: %d)", mention(winner.AuthorID), q.Correct, e.cfg.QuizReward, balance))
}

func (e *Engine) formatQuestion(q trivia.Question) string {
	options := append([]string{q.Correct}, q.Distractors...)
	for i := len(options) - 1; i > 0; i-- {
		j := e.intn(i + 1)
		options[i], options[j] = options[j], options[i]
	}

	var b strings.Builder
	b.WriteString("🧠 **Quiz time!**")
	if q.Category != "" {
		fmt.Fprintf(&b, " (%s)", q.Category)
	}
	fmt.Fprintf(&b, "\n%s\n\n", q.Text)
	for _, o := range options {
		fmt.Fprintf(&b, "• %s\n", o)
	}
	fmt.Fprintf(&b, "\nType the answer within %ds. First correct answer wins %d coins!", int(e.cfg.QuizTimeout.Seconds()), e.cfg.QuizReward)
	return b.String()
}
