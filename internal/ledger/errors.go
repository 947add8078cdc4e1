package ledger

import "errors"

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadySpunToday  = errors.New("already spun today")
	ErrInvalidAmount     = errors.New("invalid amount")
	// ErrStoreUnavailable wraps connectivity failures of the backing store.
	// The ledger never retries them.
	ErrStoreUnavailable = errors.New("store unavailable")
)
