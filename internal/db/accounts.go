package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/susu3304/epicgambler/internal/ledger"
)

var errAccountMissing = errors.New("account not found")

// EnsureAccount creates a zero balance account if absent.
func (db *DB) EnsureAccount(ctx context.Context, userID string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO accounts (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	return classify(err)
}

func (db *DB) Account(ctx context.Context, userID string) (ledger.Account, error) {
	var acc ledger.Account
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, balance, last_spin_date FROM accounts WHERE user_id = $1`,
		userID,
	).Scan(&acc.UserID, &acc.Balance, &acc.LastSpinDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Account{}, errAccountMissing
	}
	if err != nil {
		return ledger.Account{}, classify(err)
	}
	return acc, nil
}

// Increment applies delta in place. The balance check constraint rejects a
// result below zero.
func (db *DB) Increment(ctx context.Context, userID string, delta int64, reason ledger.Reason) (int64, error) {
	return db.mutate(ctx, userID, delta, reason, nil,
		`UPDATE accounts SET balance = balance + $2, updated_at = NOW()
         WHERE user_id = $1
         RETURNING balance`,
		userID, delta,
	)
}

// ClaimSpin is a compare-and-set on last_spin_date combined with the credit.
func (db *DB) ClaimSpin(ctx context.Context, userID string, day time.Time, reward int64) (int64, error) {
	return db.mutate(ctx, userID, reward, ledger.ReasonSpin, ledger.ErrAlreadySpunToday,
		`UPDATE accounts SET balance = balance + $3, last_spin_date = $2, updated_at = NOW()
         WHERE user_id = $1 AND last_spin_date IS DISTINCT FROM $2
         RETURNING balance`,
		userID, day, reward,
	)
}

// Debit subtracts amount only when the current balance covers it.
func (db *DB) Debit(ctx context.Context, userID string, amount int64, reason ledger.Reason) (int64, error) {
	return db.mutate(ctx, userID, -amount, reason, ledger.ErrInsufficientFunds,
		`UPDATE accounts SET balance = balance - $2, updated_at = NOW()
         WHERE user_id = $1 AND balance >= $2
         RETURNING balance`,
		userID, amount,
	)
}

// mutate runs one conditional balance update and records it in
// ledger_entries within the same transaction. noRows is returned when the
// update matched nothing.
func (db *DB) mutate(ctx context.Context, userID string, delta int64, reason ledger.Reason, noRows error, query string, args ...any) (int64, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, classify(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var balance int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if noRows != nil {
				return 0, noRows
			}
			return 0, fmt.Errorf("%w: %s", errAccountMissing, userID)
		}
		return 0, classify(err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO ledger_entries (user_id, delta, reason, balance_after) VALUES ($1, $2, $3, $4)`,
		userID, delta, string(reason), balance,
	); err != nil {
		return 0, classify(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, classify(err)
	}
	return balance, nil
}
