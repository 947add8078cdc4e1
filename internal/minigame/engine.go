// Package minigame runs the timed quiz and duel rounds and pays out rewards
// through the ledger.
package minigame

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/cases"

	"github.com/susu3304/epicgambler/internal/ledger"
	"github.com/susu3304/epicgambler/internal/trivia"
	"github.com/susu3304/epicgambler/internal/weighted"
)

var (
	ErrQuizAlreadyPending = errors.New("a quiz is already running in this channel")
	ErrDuelAlreadyPending = errors.New("duel already in progress")
	ErrSessionExpired     = errors.New("session expired")
	ErrWrongScope         = errors.New("not allowed in this channel")
)

// announceTimeout bounds the work done after a session settles.
const announceTimeout = 10 * time.Second

// Messenger posts plain text to a scope.
type Messenger interface {
	Send(ctx context.Context, scope, text string) error
}

type Rewarder interface {
	Reward(ctx context.Context, userID string, amount int64, reason ledger.Reason) (int64, error)
}

type Recorder interface {
	RecordSession(kind, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordSession(string, string) {}

type Timer interface {
	Stop() bool
}

// Clock schedules deadline callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

type Config struct {
	QuizTimeout time.Duration
	QuizReward  int64
	// DuelScope restricts duels to one channel when set.
	DuelScope   string
	DuelTimeout time.Duration
	DuelReward  int64
}

func DefaultConfig() Config {
	return Config{
		QuizTimeout: 60 * time.Second,
		QuizReward:  10,
		DuelTimeout: 20 * time.Second,
		DuelReward:  5,
	}
}

type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithRand(r weighted.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

type Engine struct {
	cfg       Config
	rewards   Rewarder
	questions trivia.Source
	messenger Messenger
	clock     Clock
	recorder  Recorder

	mu       sync.Mutex
	sessions map[sessionKey]*Session
	starting map[sessionKey]bool

	rngMu sync.Mutex
	rng   weighted.Rand
}

func NewEngine(cfg Config, rewards Rewarder, questions trivia.Source, messenger Messenger, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg,
		rewards:   rewards,
		questions: questions,
		messenger: messenger,
		clock:     realClock{},
		recorder:  nopRecorder{},
		sessions:  make(map[sessionKey]*Session),
		starting:  make(map[sessionKey]bool),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Active returns the number of pending sessions.
func (e *Engine) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

func (e *Engine) intn(n int) int {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Intn(n)
}

func (e *Engine) pick(t weighted.Table[Move]) Move {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return t.Pick(e.rng)
}

// reserve claims a key before any slow work so two starts cannot race.
func (e *Engine) reserve(k sessionKey, busy error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.sessions[k]; ok || e.starting[k] {
		return busy
	}
	e.starting[k] = true
	return nil
}

func (e *Engine) release(k sessionKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.starting, k)
}

// open registers a reserved session and arms its deadline.
func (e *Engine) open(s *Session, timeout time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	k := s.key()
	delete(e.starting, k)
	e.sessions[k] = s
	s.timer = e.clock.AfterFunc(timeout, func() { e.expire(s) })
	log.WithFields(log.Fields{
		"session_id": s.ID,
		"kind":       s.Kind,
		"scope":      s.Scope,
		"user_id":    s.UserID,
	}).Debug("minigame: session opened")
}

func (e *Engine) settle(s *Session, to State) bool {
	if !s.transition(to) {
		return false
	}
	e.mu.Lock()
	if e.sessions[s.key()] == s {
		delete(e.sessions, s.key())
	}
	e.mu.Unlock()
	if to != StateExpired && s.timer != nil {
		s.timer.Stop()
	}
	return true
}

// discard drops a session that never reached its players.
func (e *Engine) discard(s *Session) {
	if e.settle(s, StateExpired) {
		if s.timer != nil {
			s.timer.Stop()
		}
		close(s.done)
	}
}

func (e *Engine) expire(s *Session) {
	if !e.settle(s, StateExpired) {
		return
	}
	defer close(s.done)
	ctx, cancel := context.WithTimeout(context.Background(), announceTimeout)
	defer cancel()
	e.recorder.RecordSession(string(s.Kind), StateExpired.String())
	e.run(s, func() { s.onExpire(ctx) })
}

// HandleMessage offers msg to every pending session in its scope and reports
// whether any of them was resolved by it.
func (e *Engine) HandleMessage(ctx context.Context, msg Message) bool {
	e.mu.Lock()
	var matched []*Session
	for _, s := range e.sessions {
		if s.Scope == msg.Scope && !s.sentAfterDeadline(msg) && s.match(msg) {
			matched = append(matched, s)
		}
	}
	e.mu.Unlock()

	resolved := false
	for _, s := range matched {
		if !e.settle(s, StateResolved) {
			continue
		}
		resolved = true
		s.winner = msg
		fields := log.Fields{
			"session_id": s.ID,
			"kind":       s.Kind,
			"scope":      s.Scope,
			"winner_id":  msg.AuthorID,
		}
		if !msg.Timestamp.IsZero() {
			fields["remaining"] = s.Deadline.Sub(msg.Timestamp).Round(time.Millisecond)
		}
		log.WithFields(fields).Debug("minigame: session resolved")
		e.recorder.RecordSession(string(s.Kind), StateResolved.String())
		e.run(s, func() { s.onResolve(ctx, msg) })
		close(s.done)
	}
	return resolved
}

func (e *Engine) run(s *Session, f func()) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"component":  "panic_recovery",
				"session_id": s.ID,
				"panic":      fmt.Sprintf("%v", r),
				"stack":      string(debug.Stack()),
			}).Error("minigame: panic while settling session")
		}
	}()
	f()
}

func (e *Engine) announce(ctx context.Context, s *Session, text string) {
	if err := e.messenger.Send(ctx, s.Scope, text); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"session_id": s.ID,
			"scope":      s.Scope,
		}).Warn("minigame: failed to announce")
	}
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func mention(userID string) string {
	return "<@" + userID + ">"
}
