package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/susu3304/epicgambler/internal/ledger"
)

const checkViolation = "23514"

// classify maps driver errors onto ledger outcomes. Anything that is not a
// server-side error or an empty result is treated as the store being down.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == checkViolation && pgErr.ConstraintName == "accounts_balance_nonnegative" {
			return ledger.ErrInsufficientFunds
		}
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return fmt.Errorf("%w: %v", ledger.ErrStoreUnavailable, err)
}
