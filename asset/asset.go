// Package asset defines the boundary to external fungible assets.
//
// The ledger never holds payment balances itself; it invokes an
// injected Client for each asset it touches. A Client call is atomic:
// it either fully moves the amount or fails, and a failure aborts the
// ledger operation that requested it.
package asset

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xraph/equityledger/types"
)

// Client moves units of one fungible asset between accounts.
type Client interface {
	// Transfer moves amount from one account to the other, failing
	// without partial effect if the source balance is insufficient.
	Transfer(ctx context.Context, from, to types.Address, amount types.Amount) error

	// BalanceOf reports the current balance of an account.
	BalanceOf(ctx context.Context, account types.Address) (types.Amount, error)
}

// ErrInsufficientFunds is returned by a Transfer whose source holds
// less than the requested amount.
var ErrInsufficientFunds = errors.New("asset: insufficient funds")

// ErrNotRegistered is returned when a Registry has no client for an
// asset address.
var ErrNotRegistered = errors.New("asset: not registered")

// Registry resolves asset addresses to clients. Campaigns persist the
// address of their equity asset; the registry supplies the live client
// at call time.
type Registry struct {
	mu      sync.RWMutex
	clients map[types.Address]Client
}

// NewRegistry creates an empty asset registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[types.Address]Client)}
}

// Register binds a client to an asset address, replacing any previous
// binding.
func (r *Registry) Register(addr types.Address, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[addr] = c
}

// Resolve returns the client bound to addr.
func (r *Registry) Resolve(addr types.Address) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, addr)
	}
	return c, nil
}
