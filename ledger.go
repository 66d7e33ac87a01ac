package equityledger

import (
	"context"
	"time"

	"github.com/xraph/equityledger/types"
)

// Clock supplies the ledger timestamp, in seconds since the epoch.
// Deadlines and investment timestamps are compared against it.
type Clock interface {
	Now() uint64
}

// SystemClock reads the operating system clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

// ManualClock is a settable clock for tests and simulations.
type ManualClock struct {
	Time uint64
}

// Now implements Clock.
func (c *ManualClock) Now() uint64 { return c.Time }

// Advance moves the clock forward by d seconds.
func (c *ManualClock) Advance(d uint64) { c.Time += d }

// Authorizer answers whether the given account authorized the current
// call. It stands in for the host's cryptographic caller check; the
// ledger treats it as a reliable yes/no oracle.
type Authorizer interface {
	Authorized(ctx context.Context, account types.Address) bool
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(ctx context.Context, account types.Address) bool

// Authorized implements Authorizer.
func (f AuthorizerFunc) Authorized(ctx context.Context, account types.Address) bool {
	return f(ctx, account)
}

// AuthorizeAll approves every account. Useful in tests and in hosts
// that perform authorization upstream of the ledger.
func AuthorizeAll() Authorizer {
	return AuthorizerFunc(func(context.Context, types.Address) bool { return true })
}

// AuthorizeOnly approves exactly the listed accounts.
func AuthorizeOnly(accounts ...types.Address) Authorizer {
	allowed := make(map[types.Address]struct{}, len(accounts))
	for _, a := range accounts {
		allowed[a] = struct{}{}
	}
	return AuthorizerFunc(func(_ context.Context, account types.Address) bool {
		_, ok := allowed[account]
		return ok
	})
}
