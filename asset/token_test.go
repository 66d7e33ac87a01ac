package asset_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/equityledger/asset"
	"github.com/xraph/equityledger/types"
)

func TestTokenTransfer(t *testing.T) {
	ctx := context.Background()
	usd := asset.NewToken("USD")

	if err := usd.Credit("alice", types.NewAmount(100)); err != nil {
		t.Fatal(err)
	}

	if err := usd.Transfer(ctx, "alice", "bob", types.NewAmount(40)); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	aliceBal, _ := usd.BalanceOf(ctx, "alice")
	bobBal, _ := usd.BalanceOf(ctx, "bob")
	if aliceBal.Cmp(types.NewAmount(60)) != 0 || bobBal.Cmp(types.NewAmount(40)) != 0 {
		t.Errorf("balances = %s/%s, want 60/40", aliceBal, bobBal)
	}
}

func TestTokenTransferInsufficient(t *testing.T) {
	ctx := context.Background()
	usd := asset.NewToken("USD")
	if err := usd.Credit("alice", types.NewAmount(10)); err != nil {
		t.Fatal(err)
	}

	err := usd.Transfer(ctx, "alice", "bob", types.NewAmount(11))
	if !errors.Is(err, asset.ErrInsufficientFunds) {
		t.Fatalf("Transfer = %v, want ErrInsufficientFunds", err)
	}

	// Failed transfers leave both sides untouched.
	aliceBal, _ := usd.BalanceOf(ctx, "alice")
	bobBal, _ := usd.BalanceOf(ctx, "bob")
	if aliceBal.Cmp(types.NewAmount(10)) != 0 || !bobBal.IsZero() {
		t.Errorf("balances = %s/%s, want 10/0", aliceBal, bobBal)
	}
}

func TestTokenSelfTransfer(t *testing.T) {
	ctx := context.Background()
	usd := asset.NewToken("USD")
	if err := usd.Credit("alice", types.NewAmount(100)); err != nil {
		t.Fatal(err)
	}

	if err := usd.Transfer(ctx, "alice", "alice", types.NewAmount(30)); err != nil {
		t.Fatalf("self-transfer: %v", err)
	}
	bal, _ := usd.BalanceOf(ctx, "alice")
	if bal.Cmp(types.NewAmount(100)) != 0 {
		t.Errorf("balance after self-transfer = %s, want 100", bal)
	}
}

func TestRegistryResolve(t *testing.T) {
	r := asset.NewRegistry()
	usd := asset.NewToken("USD")
	r.Register("usd", usd)

	got, err := r.Resolve("usd")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != asset.Client(usd) {
		t.Error("Resolve returned a different client")
	}

	if _, err := r.Resolve("eur"); err == nil {
		t.Error("Resolve(unregistered) = nil error, want error")
	}
}
