package types

// Address identifies an account on the ledger: a holder, a company,
// an investor, the contract's own escrow account, or an asset.
// Addresses are opaque; the ledger never interprets their contents.
type Address string

// String returns the address as a plain string.
func (a Address) String() string { return string(a) }

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool { return a == "" }
