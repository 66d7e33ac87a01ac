package equityledger_test

import (
	"context"
	"errors"
	"testing"

	equityledger "github.com/xraph/equityledger"
	"github.com/xraph/equityledger/asset"
	"github.com/xraph/equityledger/equity"
	"github.com/xraph/equityledger/store/memory"
	"github.com/xraph/equityledger/types"
)

const (
	owner = types.Address("acme")
	alice = types.Address("alice")
	bob   = types.Address("bob")
	usd   = types.Address("usd")
)

func newEquityEnv(t *testing.T) (*equityledger.Equity, *asset.Token) {
	t.Helper()

	st := memory.New()
	assets := asset.NewRegistry()
	cash := asset.NewToken("USD")
	assets.Register(usd, cash)

	eq := equityledger.NewEquity(st,
		equityledger.WithAssets(assets),
		equityledger.WithAuthorizer(equityledger.AuthorizeOnly(owner, alice, bob)),
	)

	err := eq.InitCompany(context.Background(), equity.InitParams{
		Owner:       owner,
		Name:        "Acme Inc",
		Symbol:      "ACME",
		TotalSupply: equityledger.NewAmount(1_000_000),
		TokenPrice:  equityledger.NewAmount(100),
	})
	if err != nil {
		t.Fatalf("InitCompany: %v", err)
	}
	return eq, cash
}

// totalHeld sums balances across the given accounts.
func totalHeld(t *testing.T, eq *equityledger.Equity, accounts ...types.Address) types.Amount {
	t.Helper()

	sum := types.Amount{}
	for _, a := range accounts {
		bal, err := eq.BalanceOf(context.Background(), a)
		if err != nil {
			t.Fatalf("BalanceOf(%s): %v", a, err)
		}
		sum, err = sum.Add(bal)
		if err != nil {
			t.Fatalf("sum balances: %v", err)
		}
	}
	return sum
}

func TestInitCompany(t *testing.T) {
	ctx := context.Background()
	eq, _ := newEquityEnv(t)

	info, err := eq.CompanyInfo(ctx)
	if err != nil {
		t.Fatalf("CompanyInfo: %v", err)
	}
	if info.Owner != owner {
		t.Errorf("owner = %s, want %s", info.Owner, owner)
	}
	if info.Symbol != "ACME" {
		t.Errorf("symbol = %s, want ACME", info.Symbol)
	}
	if info.TotalSupply.Cmp(equityledger.NewAmount(1_000_000)) != 0 {
		t.Errorf("total supply = %s, want 1000000", info.TotalSupply)
	}

	bal, err := eq.BalanceOf(ctx, owner)
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if bal.Cmp(info.TotalSupply) != 0 {
		t.Errorf("owner balance = %s, want full supply %s", bal, info.TotalSupply)
	}

	// Second init must fail.
	err = eq.InitCompany(ctx, equity.InitParams{
		Owner:       owner,
		TotalSupply: equityledger.NewAmount(1),
	})
	if !errors.Is(err, equityledger.ErrAlreadyInitialized) {
		t.Errorf("second init = %v, want ErrAlreadyInitialized", err)
	}
}

func TestInitCompanyValidation(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	eq := equityledger.NewEquity(st)

	err := eq.InitCompany(ctx, equity.InitParams{
		Owner:       owner,
		TotalSupply: equityledger.NewAmount(0),
	})
	if !errors.Is(err, equityledger.ErrInvalidAmount) {
		t.Errorf("zero supply = %v, want ErrInvalidAmount", err)
	}

	err = eq.InitCompany(ctx, equity.InitParams{
		TotalSupply: equityledger.NewAmount(100),
	})
	if !equityledger.IsValidation(err) {
		t.Errorf("empty owner = %v, want validation error", err)
	}
}

func TestMint(t *testing.T) {
	ctx := context.Background()
	eq, cash := newEquityEnv(t)

	// Alice buys 50 tokens at price 100 = 5000 in payment.
	if err := cash.Credit(alice, equityledger.NewAmount(5_000)); err != nil {
		t.Fatal(err)
	}
	if err := eq.Mint(ctx, alice, equityledger.NewAmount(50), usd); err != nil {
		t.Fatalf("Mint: %v", err)
	}

	bal, _ := eq.BalanceOf(ctx, alice)
	if bal.Cmp(equityledger.NewAmount(50)) != 0 {
		t.Errorf("alice equity = %s, want 50", bal)
	}
	ownerCash, _ := cash.BalanceOf(ctx, owner)
	if ownerCash.Cmp(equityledger.NewAmount(5_000)) != 0 {
		t.Errorf("owner payment = %s, want 5000", ownerCash)
	}
	aliceCash, _ := cash.BalanceOf(ctx, alice)
	if !aliceCash.IsZero() {
		t.Errorf("alice payment = %s, want 0", aliceCash)
	}

	// Supply is conserved: owner allocation shrank, supply did not.
	info, _ := eq.CompanyInfo(ctx)
	if got := totalHeld(t, eq, owner, alice); got.Cmp(info.TotalSupply) != 0 {
		t.Errorf("held %s != supply %s", got, info.TotalSupply)
	}
}

func TestMintFailures(t *testing.T) {
	ctx := context.Background()
	eq, cash := newEquityEnv(t)

	tests := []struct {
		name    string
		to      types.Address
		amount  types.Amount
		asset   types.Address
		wantErr error
	}{
		{"unauthorized buyer", "mallory", equityledger.NewAmount(1), usd, equityledger.ErrUnauthorized},
		{"zero amount", alice, equityledger.NewAmount(0), usd, equityledger.ErrInvalidAmount},
		{"negative amount", alice, equityledger.NewAmount(-5), usd, equityledger.ErrInvalidAmount},
		{"over allocation", alice, equityledger.NewAmount(2_000_000), usd, equityledger.ErrInsufficientBalance},
		{"unknown asset", alice, equityledger.NewAmount(1), "doge", equityledger.ErrAssetNotFound},
		{"unfunded buyer", alice, equityledger.NewAmount(1), usd, equityledger.ErrTransferFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eq.Mint(ctx, tt.to, tt.amount, tt.asset)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Mint = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// No balances moved on any failed attempt.
	bal, _ := eq.BalanceOf(ctx, alice)
	if !bal.IsZero() {
		t.Errorf("alice equity after failures = %s, want 0", bal)
	}
	ownerCash, _ := cash.BalanceOf(ctx, owner)
	if !ownerCash.IsZero() {
		t.Errorf("owner payment after failures = %s, want 0", ownerCash)
	}
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	eq, _ := newEquityEnv(t)

	if err := eq.Transfer(ctx, owner, alice, equityledger.NewAmount(300)); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if err := eq.Transfer(ctx, alice, bob, equityledger.NewAmount(100)); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	aliceBal, _ := eq.BalanceOf(ctx, alice)
	if aliceBal.Cmp(equityledger.NewAmount(200)) != 0 {
		t.Errorf("alice = %s, want 200", aliceBal)
	}
	bobBal, _ := eq.BalanceOf(ctx, bob)
	if bobBal.Cmp(equityledger.NewAmount(100)) != 0 {
		t.Errorf("bob = %s, want 100", bobBal)
	}

	info, _ := eq.CompanyInfo(ctx)
	if got := totalHeld(t, eq, owner, alice, bob); got.Cmp(info.TotalSupply) != 0 {
		t.Errorf("held %s != supply %s", got, info.TotalSupply)
	}
}

func TestTransferFailures(t *testing.T) {
	ctx := context.Background()
	eq, _ := newEquityEnv(t)

	if err := eq.Transfer(ctx, "mallory", alice, equityledger.NewAmount(1)); !errors.Is(err, equityledger.ErrUnauthorized) {
		t.Errorf("unauthorized = %v, want ErrUnauthorized", err)
	}
	if err := eq.Transfer(ctx, alice, bob, equityledger.NewAmount(1)); !errors.Is(err, equityledger.ErrInsufficientBalance) {
		t.Errorf("overdraw = %v, want ErrInsufficientBalance", err)
	}
	if err := eq.Transfer(ctx, owner, alice, equityledger.NewAmount(0)); !errors.Is(err, equityledger.ErrInvalidAmount) {
		t.Errorf("zero = %v, want ErrInvalidAmount", err)
	}
}

func TestTransferWithPayment(t *testing.T) {
	ctx := context.Background()
	eq, cash := newEquityEnv(t)

	if err := eq.Transfer(ctx, owner, alice, equityledger.NewAmount(100)); err != nil {
		t.Fatal(err)
	}
	if err := cash.Credit(bob, equityledger.NewAmount(1_000)); err != nil {
		t.Fatal(err)
	}

	// Bob buys 10 tokens from alice at 50 apiece.
	err := eq.TransferWithPayment(ctx, alice, bob, equityledger.NewAmount(10), equityledger.NewAmount(50), usd)
	if err != nil {
		t.Fatalf("TransferWithPayment: %v", err)
	}

	bobBal, _ := eq.BalanceOf(ctx, bob)
	if bobBal.Cmp(equityledger.NewAmount(10)) != 0 {
		t.Errorf("bob equity = %s, want 10", bobBal)
	}
	aliceCash, _ := cash.BalanceOf(ctx, alice)
	if aliceCash.Cmp(equityledger.NewAmount(500)) != 0 {
		t.Errorf("alice payment = %s, want 500", aliceCash)
	}
	bobCash, _ := cash.BalanceOf(ctx, bob)
	if bobCash.Cmp(equityledger.NewAmount(500)) != 0 {
		t.Errorf("bob payment = %s, want 500", bobCash)
	}
}

func TestBurn(t *testing.T) {
	ctx := context.Background()
	eq, _ := newEquityEnv(t)

	if err := eq.Transfer(ctx, owner, alice, equityledger.NewAmount(500)); err != nil {
		t.Fatal(err)
	}
	if err := eq.Burn(ctx, alice, equityledger.NewAmount(200)); err != nil {
		t.Fatalf("Burn: %v", err)
	}

	bal, _ := eq.BalanceOf(ctx, alice)
	if bal.Cmp(equityledger.NewAmount(300)) != 0 {
		t.Errorf("alice = %s, want 300", bal)
	}
	info, _ := eq.CompanyInfo(ctx)
	if info.TotalSupply.Cmp(equityledger.NewAmount(999_800)) != 0 {
		t.Errorf("supply = %s, want 999800", info.TotalSupply)
	}

	// Conservation holds against the reduced supply.
	if got := totalHeld(t, eq, owner, alice); got.Cmp(info.TotalSupply) != 0 {
		t.Errorf("held %s != supply %s", got, info.TotalSupply)
	}
}

func TestBurnFailures(t *testing.T) {
	ctx := context.Background()
	eq, _ := newEquityEnv(t)

	if err := eq.Burn(ctx, "mallory", equityledger.NewAmount(1)); !errors.Is(err, equityledger.ErrUnauthorized) {
		t.Errorf("unauthorized = %v, want ErrUnauthorized", err)
	}
	if err := eq.Burn(ctx, alice, equityledger.NewAmount(1)); !errors.Is(err, equityledger.ErrInsufficientBalance) {
		t.Errorf("overdraw = %v, want ErrInsufficientBalance", err)
	}
	if err := eq.Burn(ctx, owner, equityledger.NewAmount(-1)); !errors.Is(err, equityledger.ErrInvalidAmount) {
		t.Errorf("negative = %v, want ErrInvalidAmount", err)
	}

	// Supply untouched.
	info, _ := eq.CompanyInfo(ctx)
	if info.TotalSupply.Cmp(equityledger.NewAmount(1_000_000)) != 0 {
		t.Errorf("supply = %s, want 1000000", info.TotalSupply)
	}
}

func TestBalanceOfUnknownAccount(t *testing.T) {
	eq, _ := newEquityEnv(t)

	bal, err := eq.BalanceOf(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if !bal.IsZero() {
		t.Errorf("unknown account balance = %s, want 0", bal)
	}
}

func TestAssetClientSelfTransfer(t *testing.T) {
	ctx := context.Background()
	eq, _ := newEquityEnv(t)

	client := eq.AssetClient()
	if err := client.Transfer(ctx, owner, owner, equityledger.NewAmount(100)); err != nil {
		t.Fatalf("self transfer: %v", err)
	}

	bal, _ := eq.BalanceOf(ctx, owner)
	if bal.Cmp(equityledger.NewAmount(1_000_000)) != 0 {
		t.Errorf("owner after self transfer = %s, want 1000000", bal)
	}
}
