package ledger

import (
	"errors"

	"github.com/susu3304/epicgambler/internal/catalog"
)

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, catalog.ErrUnknownItem):
		return "unknown_item"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
