package minigame

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindQuiz Kind = "quiz"
	KindDuel Kind = "duel"
)

type State int32

const (
	StatePending State = iota
	StateResolved
	StateExpired
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Message is one inbound chat message offered to pending sessions. A zero
// Timestamp means the send time is unknown.
type Message struct {
	Scope     string
	AuthorID  string
	Content   string
	Timestamp time.Time
}

type sessionKey struct {
	kind  Kind
	scope string
	user  string
}

// Session is one timed round. Its state leaves pending exactly once, either
// through the first matching message or through the deadline timer.
type Session struct {
	ID       uuid.UUID
	Kind     Kind
	Scope    string
	UserID   string
	Deadline time.Time

	state     atomic.Int32
	match     func(Message) bool
	onResolve func(ctx context.Context, winner Message)
	onExpire  func(ctx context.Context)
	timer     Timer
	winner    Message
	done      chan struct{}
}

func newSession(kind Kind, scope, userID string, deadline time.Time) *Session {
	return &Session{
		ID:       uuid.New(),
		Kind:     kind,
		Scope:    scope,
		UserID:   userID,
		Deadline: deadline,
		done:     make(chan struct{}),
	}
}

func (s *Session) key() sessionKey {
	return sessionKey{kind: s.Kind, scope: s.Scope, user: s.UserID}
}

// sentAfterDeadline reports whether m was posted after the round closed, even
// if it arrived before the deadline timer ran.
func (s *Session) sentAfterDeadline(m Message) bool {
	return !m.Timestamp.IsZero() && m.Timestamp.After(s.Deadline)
}

func (s *Session) State() State {
	return State(s.state.Load())
}

// transition is the resolve-once gate.
func (s *Session) transition(to State) bool {
	return s.state.CompareAndSwap(int32(StatePending), int32(to))
}

// Done is closed once the outcome has been applied and announced.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session settles. It returns the winning message, or
// ErrSessionExpired when the deadline passed first.
func (s *Session) Wait(ctx context.Context) (Message, error) {
	select {
	case <-s.done:
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
	if s.State() == StateExpired {
		return Message{}, ErrSessionExpired
	}
	return s.winner, nil
}
