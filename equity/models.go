// Package equity defines the equity ledger's domain model: immutable
// company metadata and per-holder token balances for one fixed-supply
// tokenized asset.
package equity

import (
	"github.com/xraph/equityledger/types"
)

// Company is the singleton metadata record for the equity ledger.
// TotalSupply is decremented by burns only; every other field is
// immutable after initialization.
type Company struct {
	Owner         types.Address `json:"owner"`
	Name          string        `json:"name"`
	Symbol        string        `json:"symbol"`
	TotalSupply   types.Amount  `json:"total_supply"`
	EquityPercent uint32        `json:"equity_percent"`
	Description   string        `json:"description"`
	TokenPrice    types.Amount  `json:"token_price"`
	TargetAmount  types.Amount  `json:"target_amount"`

	types.Entity
}

// Balance is one holder's token position. Accounts that never held
// tokens have no record; absence means zero.
type Balance struct {
	Account types.Address `json:"account"`
	Amount  types.Amount  `json:"amount"`
}

// InitParams carries the arguments for equity ledger initialization.
type InitParams struct {
	Owner         types.Address
	Name          string
	Symbol        string
	TotalSupply   types.Amount
	EquityPercent uint32
	Description   string
	TokenPrice    types.Amount
	TargetAmount  types.Amount
}
