package minigame

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/susu3304/epicgambler/internal/ledger"
	"github.com/susu3304/epicgambler/internal/memstore"
	"github.com/susu3304/epicgambler/internal/trivia"
)

type fixedRand int

func (f fixedRand) Intn(n int) int { return int(f) % n }

type fakeTimer struct {
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

// fire runs every armed timer. With force it also runs stopped ones, which
// is what a timer that already fired while being stopped looks like.
func (c *fakeClock) fire(force bool) {
	c.mu.Lock()
	timers := append([]*fakeTimer(nil), c.timers...)
	c.mu.Unlock()
	for _, t := range timers {
		if force || !t.stopped {
			t.f()
		}
	}
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMessenger) Send(ctx context.Context, scope, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, scope+"|"+text)
	return nil
}

func (m *fakeMessenger) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1]
}

func (m *fakeMessenger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type harness struct {
	engine    *Engine
	ledger    *ledger.Service
	clock     *fakeClock
	messenger *fakeMessenger
}

func newHarness(t *testing.T, cfg Config, roll int, questions trivia.Source) *harness {
	t.Helper()
	store := memstore.New()
	h := &harness{
		ledger:    ledger.NewService(store, store),
		clock:     &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		messenger: &fakeMessenger{},
	}
	h.engine = NewEngine(cfg, h.ledger, questions, h.messenger, WithClock(h.clock), WithRand(fixedRand(roll)))
	return h
}

func (h *harness) balance(t *testing.T, userID string) int64 {
	t.Helper()
	b, err := h.ledger.GetBalance(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetBalance() error = %v", err)
	}
	return b
}

var paris = trivia.Question{Text: "Capital of France?", Correct: "Paris", Distractors: []string{"Lyon", "Nice", "Lille"}}

func msg(scope, author, content string) Message {
	return Message{Scope: scope, AuthorID: author, Content: content}
}

func TestQuizFirstCorrectAnswerWins(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 0, trivia.NewStaticSource([]trivia.Question{paris}))
	ctx := context.Background()

	s, err := h.engine.StartQuiz(ctx, "c1")
	if err != nil {
		t.Fatalf("StartQuiz() error = %v", err)
	}
	broadcast := h.messenger.last()
	for _, want := range []string{"Capital of France?", "Paris", "Lyon", "Nice", "Lille"} {
		if !strings.Contains(broadcast, want) {
			t.Errorf("broadcast %q does not contain %q", broadcast, want)
		}
	}

	if h.engine.HandleMessage(ctx, msg("c1", "u1", "Lyon")) {
		t.Errorf("HandleMessage() wrong answer resolved the quiz")
	}
	if h.engine.HandleMessage(ctx, msg("c2", "u1", "Paris")) {
		t.Errorf("HandleMessage() answer in another channel resolved the quiz")
	}
	if !h.engine.HandleMessage(ctx, msg("c1", "u2", "  paris ")) {
		t.Fatalf("HandleMessage() correct answer did not resolve the quiz")
	}
	if h.engine.HandleMessage(ctx, msg("c1", "u3", "Paris")) {
		t.Errorf("HandleMessage() late answer resolved the quiz again")
	}

	winner, err := s.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if winner.AuthorID != "u2" {
		t.Errorf("Wait() winner = %q, want %q", winner.AuthorID, "u2")
	}
	if s.State() != StateResolved {
		t.Errorf("State() = %v, want %v", s.State(), StateResolved)
	}

	// the deadline racing a resolved round must not pay or announce again
	sent := h.messenger.count()
	h.clock.fire(true)

	if got := h.balance(t, "u2"); got != 10 {
		t.Errorf("winner balance = %d, want 10", got)
	}
	for _, u := range []string{"u1", "u3"} {
		if got := h.balance(t, u); got != 0 {
			t.Errorf("%s balance = %d, want 0", u, got)
		}
	}
	if h.messenger.count() != sent {
		t.Errorf("messages after forced deadline = %d, want %d", h.messenger.count(), sent)
	}
	if !strings.Contains(h.messenger.last(), "<@u2>") {
		t.Errorf("winner announcement = %q, want mention of u2", h.messenger.last())
	}
}

func TestAnswerPostedAfterDeadlineLoses(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 0, trivia.NewStaticSource([]trivia.Question{paris}))
	ctx := context.Background()

	s, err := h.engine.StartQuiz(ctx, "c1")
	if err != nil {
		t.Fatalf("StartQuiz() error = %v", err)
	}

	late := msg("c1", "u1", "Paris")
	late.Timestamp = s.Deadline.Add(time.Second)
	if h.engine.HandleMessage(ctx, late) {
		t.Errorf("HandleMessage() answer posted after the deadline resolved the quiz")
	}

	onTime := msg("c1", "u2", "Paris")
	onTime.Timestamp = s.Deadline.Add(-time.Second)
	if !h.engine.HandleMessage(ctx, onTime) {
		t.Fatalf("HandleMessage() answer posted before the deadline did not resolve the quiz")
	}
	if got := h.balance(t, "u1"); got != 0 {
		t.Errorf("late answer balance = %d, want 0", got)
	}
	if got := h.balance(t, "u2"); got != 10 {
		t.Errorf("winner balance = %d, want 10", got)
	}
}

func TestQuizTimeout(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 0, trivia.NewStaticSource([]trivia.Question{paris}))
	ctx := context.Background()

	s, err := h.engine.StartQuiz(ctx, "c1")
	if err != nil {
		t.Fatalf("StartQuiz() error = %v", err)
	}
	h.clock.fire(false)

	if _, err := s.Wait(ctx); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Wait() error = %v, want %v", err, ErrSessionExpired)
	}
	if !strings.Contains(h.messenger.last(), "No winner") {
		t.Errorf("timeout announcement = %q", h.messenger.last())
	}
	if h.engine.HandleMessage(ctx, msg("c1", "u1", "Paris")) {
		t.Errorf("HandleMessage() resolved an expired quiz")
	}
	if got := h.balance(t, "u1"); got != 0 {
		t.Errorf("balance = %d, want 0", got)
	}
	if h.engine.Active() != 0 {
		t.Errorf("Active() = %d, want 0", h.engine.Active())
	}
}

func TestQuizOnePendingPerScope(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 0, trivia.NewStaticSource(trivia.BuiltinQuestions))
	ctx := context.Background()

	if _, err := h.engine.StartQuiz(ctx, "c1"); err != nil {
		t.Fatalf("StartQuiz() error = %v", err)
	}
	if _, err := h.engine.StartQuiz(ctx, "c1"); !errors.Is(err, ErrQuizAlreadyPending) {
		t.Errorf("second StartQuiz() error = %v, want %v", err, ErrQuizAlreadyPending)
	}
	sent := h.messenger.count()
	if err := h.engine.TriggerQuiz(ctx, "c1"); err != nil {
		t.Errorf("TriggerQuiz() error = %v, want nil", err)
	}
	if h.messenger.count() != sent {
		t.Errorf("TriggerQuiz() broadcast while a round was pending")
	}
	if _, err := h.engine.StartQuiz(ctx, "c2"); err != nil {
		t.Errorf("StartQuiz() in another scope error = %v", err)
	}
	if h.engine.Active() != 2 {
		t.Errorf("Active() = %d, want 2", h.engine.Active())
	}
}

type failingSource struct{}

func (failingSource) FetchQuestion(context.Context) (trivia.Question, error) {
	return trivia.Question{}, errors.New("boom")
}

func TestQuizUpstreamFailure(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 0, failingSource{})
	ctx := context.Background()

	if _, err := h.engine.StartQuiz(ctx, "c1"); !errors.Is(err, trivia.ErrUpstreamUnavailable) {
		t.Errorf("StartQuiz() error = %v, want %v", err, trivia.ErrUpstreamUnavailable)
	}
	if h.engine.Active() != 0 {
		t.Errorf("Active() = %d, want 0", h.engine.Active())
	}

	h.engine.questions = trivia.NewStaticSource([]trivia.Question{paris})
	h.messenger.err = errors.New("missing access")
	if _, err := h.engine.StartQuiz(ctx, "c1"); !errors.Is(err, trivia.ErrUpstreamUnavailable) {
		t.Errorf("StartQuiz() with broken channel error = %v, want %v", err, trivia.ErrUpstreamUnavailable)
	}
	if h.engine.Active() != 0 {
		t.Errorf("Active() after failed broadcast = %d, want 0", h.engine.Active())
	}

	h.messenger.err = nil
	if _, err := h.engine.StartQuiz(ctx, "c1"); err != nil {
		t.Errorf("StartQuiz() after recovery error = %v", err)
	}
}

func TestDuel(t *testing.T) {
	tests := []struct {
		name        string
		roll        int
		move        string
		wantBalance int64
		wantText    string
	}{
		{"win against scissors", 9, "rock", 5, "You win"},
		{"tie", 0, "rock", 0, "tie"},
		{"loss against paper", 5, "rock", 0, "I win"},
		{"upper case move", 3, "SCISSORS", 5, "You win"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, DefaultConfig(), tt.roll, nil)
			ctx := context.Background()

			s, err := h.engine.StartDuel(ctx, "arena", "u1")
			if err != nil {
				t.Fatalf("StartDuel() error = %v", err)
			}
			if !h.engine.HandleMessage(ctx, msg("arena", "u1", tt.move)) {
				t.Fatalf("HandleMessage() did not resolve the duel")
			}
			<-s.Done()

			if got := h.balance(t, "u1"); got != tt.wantBalance {
				t.Errorf("balance = %d, want %d", got, tt.wantBalance)
			}
			if !strings.Contains(h.messenger.last(), tt.wantText) {
				t.Errorf("result = %q, want it to contain %q", h.messenger.last(), tt.wantText)
			}
		})
	}
}

func TestDuelIgnoresUnrelatedInput(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 9, nil)
	ctx := context.Background()

	s, err := h.engine.StartDuel(ctx, "arena", "u1")
	if err != nil {
		t.Fatalf("StartDuel() error = %v", err)
	}
	for _, m := range []Message{
		msg("arena", "u2", "rock"),
		msg("lobby", "u1", "rock"),
		msg("arena", "u1", "lizard"),
		msg("arena", "u1", "rock paper"),
	} {
		if h.engine.HandleMessage(ctx, m) {
			t.Errorf("HandleMessage(%+v) resolved the duel", m)
		}
	}
	if s.State() != StatePending {
		t.Errorf("State() = %v, want %v", s.State(), StatePending)
	}
}

func TestDuelTimeout(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 9, nil)
	ctx := context.Background()

	s, err := h.engine.StartDuel(ctx, "arena", "u1")
	if err != nil {
		t.Fatalf("StartDuel() error = %v", err)
	}
	h.clock.fire(false)

	if s.State() != StateExpired {
		t.Errorf("State() = %v, want %v", s.State(), StateExpired)
	}
	if h.engine.HandleMessage(ctx, msg("arena", "u1", "rock")) {
		t.Errorf("HandleMessage() resolved an expired duel")
	}
	if got := h.balance(t, "u1"); got != 0 {
		t.Errorf("balance = %d, want 0", got)
	}
	if !strings.Contains(h.messenger.last(), "took too long") {
		t.Errorf("timeout notice = %q", h.messenger.last())
	}
}

func TestDuelAlreadyPending(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 0, nil)
	ctx := context.Background()

	if _, err := h.engine.StartDuel(ctx, "arena", "u1"); err != nil {
		t.Fatalf("StartDuel() error = %v", err)
	}
	if _, err := h.engine.StartDuel(ctx, "arena", "u1"); !errors.Is(err, ErrDuelAlreadyPending) {
		t.Errorf("second StartDuel() error = %v, want %v", err, ErrDuelAlreadyPending)
	}
	if _, err := h.engine.StartDuel(ctx, "arena", "u2"); err != nil {
		t.Errorf("StartDuel() for another user error = %v", err)
	}

	h.engine.HandleMessage(ctx, msg("arena", "u1", "paper"))
	if _, err := h.engine.StartDuel(ctx, "arena", "u1"); err != nil {
		t.Errorf("StartDuel() after resolution error = %v", err)
	}
}

func TestDuelRestrictedScope(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DuelScope = "arena"
	h := newHarness(t, cfg, 0, nil)

	if _, err := h.engine.StartDuel(context.Background(), "lobby", "u1"); !errors.Is(err, ErrWrongScope) {
		t.Errorf("StartDuel() error = %v, want %v", err, ErrWrongScope)
	}
}

func TestJudge(t *testing.T) {
	tests := []struct {
		player, bot Move
		want        Result
	}{
		{Rock, Scissors, Win},
		{Paper, Rock, Win},
		{Scissors, Paper, Win},
		{Rock, Paper, Loss},
		{Paper, Scissors, Loss},
		{Scissors, Rock, Loss},
		{Rock, Rock, Tie},
		{Paper, Paper, Tie},
	}

	for _, tt := range tests {
		if got := Judge(tt.player, tt.bot); got != tt.want {
			t.Errorf("Judge(%s, %s) got = %v, want %v", tt.player, tt.bot, got, tt.want)
		}
	}
}

func TestConcurrentAnswersPayOnce(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 0, trivia.NewStaticSource([]trivia.Question{paris}))
	ctx := context.Background()

	if _, err := h.engine.StartQuiz(ctx, "c1"); err != nil {
		t.Fatalf("StartQuiz() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.engine.HandleMessage(ctx, msg("c1", "u1", "Paris"))
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.clock.fire(true)
	}()
	wg.Wait()

	if got := h.balance(t, "u1"); got != 0 && got != 10 {
		t.Errorf("balance = %d, want 0 or 10", got)
	}
}
