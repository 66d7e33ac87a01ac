package asset

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/equityledger/types"
)

// Token is an in-memory fungible asset for tests and local
// development. It enforces non-negative balances and fails transfers
// without partial effect.
type Token struct {
	mu       sync.Mutex
	symbol   string
	balances map[types.Address]types.Amount
}

var _ Client = (*Token)(nil)

// NewToken creates an empty in-memory asset.
func NewToken(symbol string) *Token {
	return &Token{
		symbol:   symbol,
		balances: make(map[types.Address]types.Amount),
	}
}

// Symbol returns the asset's display symbol.
func (t *Token) Symbol() string { return t.symbol }

// Credit adds amount to an account. Intended for test setup.
func (t *Token) Credit(account types.Address, amount types.Amount) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	next, err := t.balances[account].Add(amount)
	if err != nil {
		return err
	}
	t.balances[account] = next
	return nil
}

// Transfer implements Client.
func (t *Token) Transfer(_ context.Context, from, to types.Address, amount types.Amount) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if amount.IsNegative() {
		return fmt.Errorf("asset %s: negative transfer amount %s", t.symbol, amount)
	}

	src := t.balances[from]
	if src.LessThan(amount) {
		return fmt.Errorf("%w: %s has %s, need %s", ErrInsufficientFunds, from, src, amount)
	}
	if from == to {
		return nil
	}

	newSrc, err := src.Sub(amount)
	if err != nil {
		return err
	}
	newDst, err := t.balances[to].Add(amount)
	if err != nil {
		return err
	}

	t.balances[from] = newSrc
	t.balances[to] = newDst
	return nil
}

// BalanceOf implements Client.
func (t *Token) BalanceOf(_ context.Context, account types.Address) (types.Amount, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[account], nil
}
