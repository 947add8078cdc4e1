package ledger

import (
	"context"
	"time"
)

// Reason tags a balance mutation in the ledger history.
type Reason string

const (
	ReasonAdjust Reason = "adjust"
	ReasonSpin   Reason = "spin"
	ReasonRedeem Reason = "redeem"
	ReasonQuiz   Reason = "quiz"
	ReasonDuel   Reason = "duel"
)

type Account struct {
	UserID       string
	Balance      int64
	LastSpinDate *time.Time
}

// Store is the persistence contract of the ledger. Every mutating method must
// be atomic per user at the store; none of them may be emulated with a
// read followed by a write.
type Store interface {
	// EnsureAccount creates a zero balance account if absent.
	EnsureAccount(ctx context.Context, userID string) error
	Account(ctx context.Context, userID string) (Account, error)
	// Increment applies delta and returns the new balance. A result below
	// zero fails with ErrInsufficientFunds and leaves the balance untouched.
	Increment(ctx context.Context, userID string, delta int64, reason Reason) (int64, error)
	// ClaimSpin credits reward and sets the last spin date to day in one
	// step, failing with ErrAlreadySpunToday when day is already recorded.
	ClaimSpin(ctx context.Context, userID string, day time.Time, reward int64) (int64, error)
	// Debit subtracts amount only if the balance covers it, otherwise it
	// fails with ErrInsufficientFunds.
	Debit(ctx context.Context, userID string, amount int64, reason Reason) (int64, error)
}
