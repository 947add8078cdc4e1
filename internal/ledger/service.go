package ledger

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/susu3304/epicgambler/internal/catalog"
	"github.com/susu3304/epicgambler/internal/weighted"
)

// SpinRewards is the daily spin distribution, weights out of 100.
var SpinRewards = weighted.Table[int64]{
	{Value: 5, Weight: 40},
	{Value: 10, Weight: 30},
	{Value: 20, Weight: 15},
	{Value: 50, Weight: 10},
	{Value: 100, Weight: 4},
	{Value: 200, Weight: 1},
}

// ItemGetter looks up catalog items for redemption.
type ItemGetter interface {
	GetItem(ctx context.Context, id int64) (catalog.Item, error)
}

// Recorder receives ledger outcomes for metrics.
type Recorder interface {
	RecordSpin(reward int64)
	RecordRedemption(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordSpin(int64)        {}
func (nopRecorder) RecordRedemption(string) {}

type Option func(*Service)

// WithRand replaces the random source used for spin rewards.
func WithRand(r weighted.Rand) Option {
	return func(s *Service) { s.rng = r }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLocation sets the zone that decides where a spin day starts.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

type Service struct {
	store    Store
	items    ItemGetter
	recorder Recorder
	loc      *time.Location
	now      func() time.Time

	mu  sync.Mutex
	rng weighted.Rand
}

func NewService(store Store, items ItemGetter, opts ...Option) *Service {
	s := &Service{
		store:    store,
		items:    items,
		recorder: nopRecorder{},
		loc:      time.UTC,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureAccount creates the account if needed. Failures are logged only;
// the next mutating call reports them.
func (s *Service) EnsureAccount(ctx context.Context, userID string) {
	if err := s.store.EnsureAccount(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("ledger: failed to ensure account")
	}
}

// AdjustBalance applies a signed delta and returns the new balance.
func (s *Service) AdjustBalance(ctx context.Context, userID string, delta int64) (int64, error) {
	return s.credit(ctx, userID, delta, ReasonAdjust)
}

// Reward credits a minigame prize.
func (s *Service) Reward(ctx context.Context, userID string, amount int64, reason Reason) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: reward must be positive", ErrInvalidAmount)
	}
	return s.credit(ctx, userID, amount, reason)
}

func (s *Service) credit(ctx context.Context, userID string, delta int64, reason Reason) (int64, error) {
	if err := s.store.EnsureAccount(ctx, userID); err != nil {
		return 0, err
	}
	return s.store.Increment(ctx, userID, delta, reason)
}

func (s *Service) GetBalance(ctx context.Context, userID string) (int64, error) {
	if err := s.store.EnsureAccount(ctx, userID); err != nil {
		return 0, err
	}
	acc, err := s.store.Account(ctx, userID)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

// Today returns the current spin day in the configured zone.
func (s *Service) Today() time.Time {
	return Day(s.now().In(s.loc))
}

// Day truncates t to its calendar date, keeping the date as seen in t's zone.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type SpinResult struct {
	Reward  int64
	Balance int64
}

// TrySpin draws a reward and claims the day's spin atomically.
func (s *Service) TrySpin(ctx context.Context, userID string, today time.Time) (SpinResult, error) {
	if err := s.store.EnsureAccount(ctx, userID); err != nil {
		return SpinResult{}, err
	}

	s.mu.Lock()
	reward := SpinRewards.Pick(s.rng)
	s.mu.Unlock()

	balance, err := s.store.ClaimSpin(ctx, userID, Day(today), reward)
	if err != nil {
		return SpinResult{}, err
	}
	s.recorder.RecordSpin(reward)
	return SpinResult{Reward: reward, Balance: balance}, nil
}

type Redemption struct {
	Item    catalog.Item
	Balance int64
}

// TryRedeem debits the item price if the balance covers it.
func (s *Service) TryRedeem(ctx context.Context, userID string, itemID int64) (Redemption, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		s.recorder.RecordRedemption(outcomeOf(err))
		return Redemption{}, err
	}
	if err := s.store.EnsureAccount(ctx, userID); err != nil {
		s.recorder.RecordRedemption(outcomeOf(err))
		return Redemption{}, err
	}

	balance, err := s.store.Debit(ctx, userID, item.Price, ReasonRedeem)
	if err != nil {
		s.recorder.RecordRedemption(outcomeOf(err))
		return Redemption{}, err
	}
	s.recorder.RecordRedemption("ok")
	return Redemption{Item: item, Balance: balance}, nil
}
