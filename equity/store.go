package equity

import (
	"context"

	"github.com/xraph/equityledger/types"
)

// Store is the persistence surface the equity ledger needs. The
// unified store interface satisfies it; method names are shared with
// the fundraising subset so one backend can serve both ledgers.
type Store interface {
	// EquityInitialized reports whether the one-time sentinel is set.
	EquityInitialized(ctx context.Context) (bool, error)

	// MarkEquityInitialized sets the one-time sentinel.
	MarkEquityInitialized(ctx context.Context) error

	// GetCompany returns the company record, or an error if absent.
	GetCompany(ctx context.Context) (*Company, error)

	// PutCompany persists the company record.
	PutCompany(ctx context.Context, c *Company) error

	// GetBalance returns an account's balance, zero if absent.
	GetBalance(ctx context.Context, account types.Address) (types.Amount, error)

	// SetBalances writes the given balances in one call so a single
	// ledger commit is a single store call.
	SetBalances(ctx context.Context, balances ...Balance) error
}
