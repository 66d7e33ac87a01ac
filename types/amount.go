package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"math/big"
)

// Amount-specific sentinel errors.
var (
	// ErrAmountRange indicates a value outside the signed 128-bit range.
	ErrAmountRange = errors.New("types: amount out of 128-bit range")

	// ErrDivisionByZero indicates a division by a zero amount.
	ErrDivisionByZero = errors.New("types: division by zero")

	// ErrAmountFormat indicates an unparseable amount representation.
	ErrAmountFormat = errors.New("types: invalid amount format")
)

// Amount is a signed 128-bit integer holding a quantity in the
// smallest indivisible unit of its asset (token units, payment units).
// The zero value is zero. Arithmetic is checked: operations whose
// mathematical result falls outside [-2^127, 2^127-1] return
// ErrAmountRange instead of wrapping.
//
// Amounts serialize as decimal strings in JSON and as TEXT in SQL so
// every store backend round-trips the full range losslessly.
type Amount struct {
	hi int64
	lo uint64
}

var (
	amountMax = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	amountMin = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	wordMask  = new(big.Int).SetUint64(math.MaxUint64)
)

// NewAmount returns the Amount for a 64-bit value.
func NewAmount(v int64) Amount {
	if v < 0 {
		return Amount{hi: -1, lo: uint64(v)}
	}
	return Amount{lo: uint64(v)}
}

// AmountFromBig converts a big.Int, failing if it exceeds 128 bits.
func AmountFromBig(b *big.Int) (Amount, error) {
	if b.Cmp(amountMin) < 0 || b.Cmp(amountMax) > 0 {
		return Amount{}, ErrAmountRange
	}
	lo := new(big.Int).And(b, wordMask).Uint64()
	hi := new(big.Int).Rsh(b, 64).Int64()
	return Amount{hi: hi, lo: lo}, nil
}

// ParseAmount parses a base-10 amount string.
func ParseAmount(s string) (Amount, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %q", ErrAmountFormat, s)
	}
	return AmountFromBig(b)
}

// MustParseAmount parses a base-10 amount string or panics.
// Intended for constants and tests.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Big returns the amount as a fresh big.Int.
func (a Amount) Big() *big.Int {
	b := big.NewInt(a.hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(a.lo))
}

// Add returns a+b, or ErrAmountRange on 128-bit overflow.
func (a Amount) Add(b Amount) (Amount, error) {
	return AmountFromBig(new(big.Int).Add(a.Big(), b.Big()))
}

// Sub returns a-b, or ErrAmountRange on 128-bit overflow.
func (a Amount) Sub(b Amount) (Amount, error) {
	return AmountFromBig(new(big.Int).Sub(a.Big(), b.Big()))
}

// Mul returns a*b, or ErrAmountRange on 128-bit overflow.
func (a Amount) Mul(b Amount) (Amount, error) {
	return AmountFromBig(new(big.Int).Mul(a.Big(), b.Big()))
}

// Div returns a/b truncated toward zero, or ErrDivisionByZero.
func (a Amount) Div(b Amount) (Amount, error) {
	if b.IsZero() {
		return Amount{}, ErrDivisionByZero
	}
	return AmountFromBig(new(big.Int).Quo(a.Big(), b.Big()))
}

// Cmp returns -1, 0, or +1 comparing a against b.
func (a Amount) Cmp(b Amount) int {
	if a.hi != b.hi {
		if a.hi < b.hi {
			return -1
		}
		return 1
	}
	if a.lo != b.lo {
		if a.lo < b.lo {
			return -1
		}
		return 1
	}
	return 0
}

// Sign returns -1 for negative, 0 for zero, +1 for positive.
func (a Amount) Sign() int {
	switch {
	case a.hi < 0:
		return -1
	case a.hi == 0 && a.lo == 0:
		return 0
	default:
		return 1
	}
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a.hi == 0 && a.lo == 0 }

// IsPositive reports whether the amount is strictly positive.
func (a Amount) IsPositive() bool { return a.Sign() > 0 }

// IsNegative reports whether the amount is strictly negative.
func (a Amount) IsNegative() bool { return a.Sign() < 0 }

// LessThan reports a < b.
func (a Amount) LessThan(b Amount) bool { return a.Cmp(b) < 0 }

// GreaterThan reports a > b.
func (a Amount) GreaterThan(b Amount) bool { return a.Cmp(b) > 0 }

// String formats the amount as base-10 text.
func (a Amount) String() string { return a.Big().String() }

// MarshalJSON encodes the amount as a JSON string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON decodes a JSON string or bare number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer; amounts are stored as TEXT.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Amount{}
		return nil
	case string:
		return a.UnmarshalText([]byte(v))
	case []byte:
		return a.UnmarshalText(v)
	case int64:
		*a = NewAmount(v)
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrAmountFormat, src)
	}
}
