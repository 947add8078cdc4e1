// Package memstore is an in-process implementation of the ledger and catalog
// stores. A single mutex serializes all mutations.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/susu3304/epicgambler/internal/catalog"
	"github.com/susu3304/epicgambler/internal/ledger"
)

type Entry struct {
	UserID       string
	Delta        int64
	Reason       ledger.Reason
	BalanceAfter int64
	CreatedAt    time.Time
}

type Store struct {
	mu       sync.Mutex
	accounts map[string]*ledger.Account
	entries  []Entry
	items    []catalog.Item
	nextID   int64
}

func New() *Store {
	return &Store{
		accounts: make(map[string]*ledger.Account),
		nextID:   1,
	}
}

// Ping always succeeds unless ctx is done.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) EnsureAccount(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(userID)
	return nil
}

func (s *Store) ensure(userID string) *ledger.Account {
	acc, ok := s.accounts[userID]
	if !ok {
		acc = &ledger.Account{UserID: userID}
		s.accounts[userID] = acc
	}
	return acc
}

func (s *Store) Account(ctx context.Context, userID string) (ledger.Account, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := *s.ensure(userID)
	if acc.LastSpinDate != nil {
		d := *acc.LastSpinDate
		acc.LastSpinDate = &d
	}
	return acc, nil
}

func (s *Store) Increment(ctx context.Context, userID string, delta int64, reason ledger.Reason) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.ensure(userID)
	if acc.Balance+delta < 0 {
		return 0, ledger.ErrInsufficientFunds
	}
	acc.Balance += delta
	s.record(userID, delta, reason, acc.Balance)
	return acc.Balance, nil
}

func (s *Store) ClaimSpin(ctx context.Context, userID string, day time.Time, reward int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.ensure(userID)
	if acc.LastSpinDate != nil && acc.LastSpinDate.Equal(day) {
		return 0, ledger.ErrAlreadySpunToday
	}
	acc.Balance += reward
	d := day
	acc.LastSpinDate = &d
	s.record(userID, reward, ledger.ReasonSpin, acc.Balance)
	return acc.Balance, nil
}

func (s *Store) Debit(ctx context.Context, userID string, amount int64, reason ledger.Reason) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.ensure(userID)
	if acc.Balance < amount {
		return 0, ledger.ErrInsufficientFunds
	}
	acc.Balance -= amount
	s.record(userID, -amount, reason, acc.Balance)
	return acc.Balance, nil
}

func (s *Store) record(userID string, delta int64, reason ledger.Reason, after int64) {
	s.entries = append(s.entries, Entry{
		UserID:       userID,
		Delta:        delta,
		Reason:       reason,
		BalanceAfter: after,
		CreatedAt:    time.Now(),
	})
}

// Entries returns a copy of the mutation history.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) ListItems(ctx context.Context) ([]catalog.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Store) AddItem(ctx context.Context, item catalog.NewItem) (catalog.Item, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Item{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	created := catalog.Item{
		ID:          s.nextID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Payload:     item.Payload,
		CreatedAt:   time.Now(),
	}
	s.nextID++
	s.items = append(s.items, created)
	return created, nil
}

func (s *Store) GetItem(ctx context.Context, id int64) (catalog.Item, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Item{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, nil
		}
	}
	return catalog.Item{}, catalog.ErrUnknownItem
}
