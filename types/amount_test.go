package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewAmount(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		want string
	}{
		{"zero", 0, "0"},
		{"positive", 42, "42"},
		{"negative", -42, "-42"},
		{"max int64", 9223372036854775807, "9223372036854775807"},
		{"min int64", -9223372036854775808, "-9223372036854775808"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewAmount(tt.in).String(); got != tt.want {
				t.Errorf("NewAmount(%d) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseAmountRange(t *testing.T) {
	maxI128 := "170141183460469231731687303715884105727"
	minI128 := "-170141183460469231731687303715884105728"

	if a, err := ParseAmount(maxI128); err != nil || a.String() != maxI128 {
		t.Errorf("ParseAmount(max) = %v, %v", a, err)
	}
	if a, err := ParseAmount(minI128); err != nil || a.String() != minI128 {
		t.Errorf("ParseAmount(min) = %v, %v", a, err)
	}
	if _, err := ParseAmount("170141183460469231731687303715884105728"); !errors.Is(err, ErrAmountRange) {
		t.Errorf("ParseAmount(max+1) err = %v, want ErrAmountRange", err)
	}
	if _, err := ParseAmount("not a number"); !errors.Is(err, ErrAmountFormat) {
		t.Errorf("ParseAmount(garbage) err = %v, want ErrAmountFormat", err)
	}
}

func TestAmountArithmetic(t *testing.T) {
	maxI128 := MustParseAmount("170141183460469231731687303715884105727")
	minI128 := MustParseAmount("-170141183460469231731687303715884105728")

	t.Run("add", func(t *testing.T) {
		got, err := NewAmount(500).Add(NewAmount(250))
		if err != nil || got.String() != "750" {
			t.Fatalf("Add = %v, %v", got, err)
		}
	})

	t.Run("add overflow", func(t *testing.T) {
		if _, err := maxI128.Add(NewAmount(1)); !errors.Is(err, ErrAmountRange) {
			t.Fatalf("Add overflow err = %v, want ErrAmountRange", err)
		}
	})

	t.Run("sub underflow", func(t *testing.T) {
		if _, err := minI128.Sub(NewAmount(1)); !errors.Is(err, ErrAmountRange) {
			t.Fatalf("Sub underflow err = %v, want ErrAmountRange", err)
		}
	})

	t.Run("mul", func(t *testing.T) {
		got, err := NewAmount(-7).Mul(NewAmount(6))
		if err != nil || got.String() != "-42" {
			t.Fatalf("Mul = %v, %v", got, err)
		}
	})

	t.Run("mul overflow", func(t *testing.T) {
		if _, err := maxI128.Mul(NewAmount(2)); !errors.Is(err, ErrAmountRange) {
			t.Fatalf("Mul overflow err = %v, want ErrAmountRange", err)
		}
	})
}

func TestAmountDivTruncates(t *testing.T) {
	tests := []struct {
		name string
		a, b int64
		want string
	}{
		{"exact", 500, 100, "5"},
		{"truncates down", 550, 100, "5"},
		{"below one unit", 50, 100, "0"},
		{"negative truncates toward zero", -550, 100, "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewAmount(tt.a).Div(NewAmount(tt.b))
			if err != nil {
				t.Fatalf("Div: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("%d / %d = %s, want %s", tt.a, tt.b, got, tt.want)
			}
		})
	}

	if _, err := NewAmount(1).Div(Amount{}); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("Div by zero err = %v, want ErrDivisionByZero", err)
	}
}

func TestAmountCmp(t *testing.T) {
	tests := []struct {
		name string
		a, b Amount
		want int
	}{
		{"equal", NewAmount(5), NewAmount(5), 0},
		{"less", NewAmount(-1), NewAmount(0), -1},
		{"greater", NewAmount(1), NewAmount(-1), 1},
		{"wide less", MustParseAmount("-99999999999999999999"), NewAmount(0), -1},
		{"wide greater", MustParseAmount("99999999999999999999"), NewAmount(1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cmp(tt.b); got != tt.want {
				t.Errorf("Cmp = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAmountJSON(t *testing.T) {
	a := MustParseAmount("99999999999999999999999999")
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"99999999999999999999999999"` {
		t.Fatalf("Marshal = %s", data)
	}

	var back Amount
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Cmp(a) != 0 {
		t.Errorf("round trip = %s, want %s", back, a)
	}
}

func TestAmountScan(t *testing.T) {
	var a Amount
	if err := a.Scan("123456789012345678901234567890"); err != nil {
		t.Fatalf("Scan string: %v", err)
	}
	if a.String() != "123456789012345678901234567890" {
		t.Errorf("Scan string = %s", a)
	}

	if err := a.Scan(int64(-5)); err != nil || a.String() != "-5" {
		t.Errorf("Scan int64 = %s, %v", a, err)
	}

	if err := a.Scan(3.14); err == nil {
		t.Error("Scan float64 should fail")
	}
}

func BenchmarkAmountAdd(b *testing.B) {
	x := MustParseAmount("170141183460469231731687303715884105")
	y := NewAmount(1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = x.Add(y)
	}
}
