package equityledger_test

import (
	"context"
	"errors"
	"testing"

	equityledger "github.com/xraph/equityledger"
	"github.com/xraph/equityledger/asset"
	"github.com/xraph/equityledger/equity"
	"github.com/xraph/equityledger/fundraising"
	"github.com/xraph/equityledger/store/memory"
	"github.com/xraph/equityledger/types"
)

const (
	admin       = types.Address("admin")
	equityAsset = types.Address("acme-equity")
)

type fundraisingEnv struct {
	eq    *equityledger.Equity
	fr    *equityledger.Fundraising
	cash  *asset.Token
	clock *equityledger.ManualClock
}

// newFundraisingEnv builds both engines over one store, initializes
// them, opens campaign 1 (target 1000, price 100, min 100, deadline
// t=2000), and pre-funds the escrow with the token allocation.
func newFundraisingEnv(t *testing.T) *fundraisingEnv {
	t.Helper()
	ctx := context.Background()

	st := memory.New()
	assets := asset.NewRegistry()
	cash := asset.NewToken("USD")
	assets.Register(usd, cash)
	clock := &equityledger.ManualClock{Time: 1_000}

	auth := equityledger.AuthorizeOnly(owner, admin, alice, bob)
	opts := []equityledger.Option{
		equityledger.WithAssets(assets),
		equityledger.WithAuthorizer(auth),
		equityledger.WithClock(clock),
	}

	eq := equityledger.NewEquity(st, opts...)
	fr := equityledger.NewFundraising(st, opts...)
	assets.Register(equityAsset, eq.AssetClient())

	err := eq.InitCompany(ctx, equity.InitParams{
		Owner:       owner,
		Name:        "Acme Inc",
		Symbol:      "ACME",
		TotalSupply: equityledger.NewAmount(1_000_000),
		TokenPrice:  equityledger.NewAmount(100),
	})
	if err != nil {
		t.Fatalf("InitCompany: %v", err)
	}
	if err := fr.Initialize(ctx, admin, usd); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// Escrow holds the campaign's token allocation up front.
	if err := eq.Transfer(ctx, owner, fr.Account(), equityledger.NewAmount(10_000)); err != nil {
		t.Fatalf("fund escrow: %v", err)
	}

	err = fr.CreateCampaign(ctx, fundraising.CampaignParams{
		ID:            1,
		Company:       owner,
		EquityAsset:   equityAsset,
		Target:        equityledger.NewAmount(1_000),
		PricePerToken: equityledger.NewAmount(100),
		Deadline:      2_000,
		MinInvestment: equityledger.NewAmount(100),
	})
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}

	return &fundraisingEnv{eq: eq, fr: fr, cash: cash, clock: clock}
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	fr := equityledger.NewFundraising(st,
		equityledger.WithAuthorizer(equityledger.AuthorizeOnly(admin)),
	)

	if err := fr.Initialize(ctx, "mallory", usd); !errors.Is(err, equityledger.ErrUnauthorized) {
		t.Errorf("unauthorized = %v, want ErrUnauthorized", err)
	}
	if err := fr.Initialize(ctx, admin, ""); !equityledger.IsValidation(err) {
		t.Errorf("empty asset = %v, want validation error", err)
	}

	if err := fr.Initialize(ctx, admin, usd); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := fr.Initialize(ctx, admin, usd); !errors.Is(err, equityledger.ErrAlreadyInitialized) {
		t.Errorf("second init = %v, want ErrAlreadyInitialized", err)
	}
}

func TestOperationsRequireInit(t *testing.T) {
	ctx := context.Background()
	fr := equityledger.NewFundraising(memory.New())

	if err := fr.Invest(ctx, 1, alice, equityledger.NewAmount(100)); !errors.Is(err, equityledger.ErrNotInitialized) {
		t.Errorf("Invest = %v, want ErrNotInitialized", err)
	}
	if _, err := fr.GetStats(ctx); !errors.Is(err, equityledger.ErrNotInitialized) {
		t.Errorf("GetStats = %v, want ErrNotInitialized", err)
	}
}

func TestCreateCampaignValidation(t *testing.T) {
	ctx := context.Background()
	env := newFundraisingEnv(t)

	base := fundraising.CampaignParams{
		ID:            2,
		Company:       owner,
		EquityAsset:   equityAsset,
		Target:        equityledger.NewAmount(1_000),
		PricePerToken: equityledger.NewAmount(100),
		Deadline:      2_000,
		MinInvestment: equityledger.NewAmount(100),
	}

	tests := []struct {
		name    string
		mutate  func(*fundraising.CampaignParams)
		wantErr error
	}{
		{"duplicate id", func(p *fundraising.CampaignParams) { p.ID = 1 }, equityledger.ErrCampaignExists},
		{"unauthorized company", func(p *fundraising.CampaignParams) { p.Company = "mallory" }, equityledger.ErrUnauthorized},
		{"zero target", func(p *fundraising.CampaignParams) { p.Target = types.Amount{} }, equityledger.ErrInvalidAmount},
		{"zero price", func(p *fundraising.CampaignParams) { p.PricePerToken = types.Amount{} }, equityledger.ErrInvalidAmount},
		{"zero min", func(p *fundraising.CampaignParams) { p.MinInvestment = types.Amount{} }, equityledger.ErrInvalidAmount},
		{"max below min", func(p *fundraising.CampaignParams) { p.MaxInvestment = equityledger.NewAmount(50) }, equityledger.ErrInvalidAmount},
		{"deadline in past", func(p *fundraising.CampaignParams) { p.Deadline = 500 }, equityledger.ErrDeadlineInvalid},
		{"deadline equal to now", func(p *fundraising.CampaignParams) { p.Deadline = 1_000 }, equityledger.ErrDeadlineInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			if err := env.fr.CreateCampaign(ctx, p); !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateCampaign = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInvest(t *testing.T) {
	ctx := context.Background()
	env := newFundraisingEnv(t)

	if err := env.cash.Credit(alice, equityledger.NewAmount(1_000)); err != nil {
		t.Fatal(err)
	}

	// 500 at price 100 buys 5 tokens.
	if err := env.fr.Invest(ctx, 1, alice, equityledger.NewAmount(500)); err != nil {
		t.Fatalf("Invest: %v", err)
	}

	inv, err := env.fr.GetInvestment(ctx, 1, alice)
	if err != nil {
		t.Fatal(err)
	}
	if inv.AmountInvested.Cmp(equityledger.NewAmount(500)) != 0 {
		t.Errorf("invested = %s, want 500", inv.AmountInvested)
	}
	if inv.TokensReceived.Cmp(equityledger.NewAmount(5)) != 0 {
		t.Errorf("tokens = %s, want 5", inv.TokensReceived)
	}
	if inv.Timestamp != 1_000 {
		t.Errorf("timestamp = %d, want 1000", inv.Timestamp)
	}
	firstReceipt := inv.Receipt

	tokens, _ := env.eq.BalanceOf(ctx, alice)
	if tokens.Cmp(equityledger.NewAmount(5)) != 0 {
		t.Errorf("alice equity = %s, want 5", tokens)
	}
	escrowCash, _ := env.cash.BalanceOf(ctx, env.fr.Account())
	if escrowCash.Cmp(equityledger.NewAmount(500)) != 0 {
		t.Errorf("escrow payment = %s, want 500", escrowCash)
	}

	// A second pledge accumulates into the same record: first
	// timestamp and receipt survive.
	env.clock.Advance(100)
	if err := env.fr.Invest(ctx, 1, alice, equityledger.NewAmount(500)); err != nil {
		t.Fatalf("second Invest: %v", err)
	}

	inv, err = env.fr.GetInvestment(ctx, 1, alice)
	if err != nil {
		t.Fatal(err)
	}
	if inv.AmountInvested.Cmp(equityledger.NewAmount(1_000)) != 0 {
		t.Errorf("cumulative invested = %s, want 1000", inv.AmountInvested)
	}
	if inv.TokensReceived.Cmp(equityledger.NewAmount(10)) != 0 {
		t.Errorf("cumulative tokens = %s, want 10", inv.TokensReceived)
	}
	if inv.Timestamp != 1_000 {
		t.Errorf("timestamp after second pledge = %d, want 1000", inv.Timestamp)
	}
	if inv.Receipt != firstReceipt {
		t.Errorf("receipt changed across pledges: %s != %s", inv.Receipt, firstReceipt)
	}

	campaign, err := env.fr.GetCampaign(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if campaign.Raised.Cmp(equityledger.NewAmount(1_000)) != 0 {
		t.Errorf("raised = %s, want 1000", campaign.Raised)
	}

	// The roster lists alice once.
	investors, err := env.fr.GetInvestors(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(investors) != 1 || investors[0] != alice {
		t.Errorf("investors = %v, want [alice]", investors)
	}

	stats, err := env.fr.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalRaised.Cmp(equityledger.NewAmount(1_000)) != 0 {
		t.Errorf("total raised = %s, want 1000", stats.TotalRaised)
	}
}

func TestInvestValidation(t *testing.T) {
	ctx := context.Background()
	env := newFundraisingEnv(t)
	if err := env.cash.Credit(alice, equityledger.NewAmount(10_000)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		campaign uint64
		investor types.Address
		amount   types.Amount
		wantErr  error
	}{
		{"unauthorized", 1, "mallory", equityledger.NewAmount(500), equityledger.ErrUnauthorized},
		{"zero amount", 1, alice, equityledger.NewAmount(0), equityledger.ErrInvalidAmount},
		{"unknown campaign", 99, alice, equityledger.NewAmount(500), equityledger.ErrCampaignNotFound},
		{"below minimum", 1, alice, equityledger.NewAmount(50), equityledger.ErrInvestmentTooSmall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.fr.Invest(ctx, tt.campaign, tt.investor, tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Invest = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Rejected pledges must not touch state.
	campaign, _ := env.fr.GetCampaign(ctx, 1)
	if !campaign.Raised.IsZero() {
		t.Errorf("raised after rejections = %s, want 0", campaign.Raised)
	}
	n, _ := env.fr.GetInvestorCount(ctx, 1)
	if n != 0 {
		t.Errorf("investor count after rejections = %d, want 0", n)
	}
}

func TestInvestWholeTokenRule(t *testing.T) {
	ctx := context.Background()
	env := newFundraisingEnv(t)
	if err := env.cash.Credit(alice, equityledger.NewAmount(1_000)); err != nil {
		t.Fatal(err)
	}

	// Open a campaign whose minimum admits sub-token pledges.
	err := env.fr.CreateCampaign(ctx, fundraising.CampaignParams{
		ID:            2,
		Company:       owner,
		EquityAsset:   equityAsset,
		Target:        equityledger.NewAmount(1_000),
		PricePerToken: equityledger.NewAmount(100),
		Deadline:      2_000,
		MinInvestment: equityledger.NewAmount(10),
	})
	if err != nil {
		t.Fatal(err)
	}

	// 50 at price 100 buys no whole token.
	err = env.fr.Invest(ctx, 2, alice, equityledger.NewAmount(50))
	if !errors.Is(err, equityledger.ErrInvestmentTooSmall) {
		t.Fatalf("Invest = %v, want ErrInvestmentTooSmall", err)
	}

	// Nothing moved.
	aliceCash, _ := env.cash.BalanceOf(ctx, alice)
	if aliceCash.Cmp(equityledger.NewAmount(1_000)) != 0 {
		t.Errorf("alice payment = %s, want 1000", aliceCash)
	}
	campaign, _ := env.fr.GetCampaign(ctx, 2)
	if !campaign.Raised.IsZero() {
		t.Errorf("raised = %s, want 0", campaign.Raised)
	}
}

func TestInvestMaxCap(t *testing.T) {
	ctx := context.Background()
	env := newFundraisingEnv(t)
	if err := env.cash.Credit(alice, equityledger.NewAmount(2_000)); err != nil {
		t.Fatal(err)
	}

	err := env.fr.CreateCampaign(ctx, fundraising.CampaignParams{
		ID:            2,
		Company:       owner,
		EquityAsset:   equityAsset,
		Target:        equityledger.NewAmount(10_000),
		PricePerToken: equityledger.NewAmount(100),
		Deadline:      2_000,
		MinInvestment: equityledger.NewAmount(100),
		MaxInvestment: equityledger.NewAmount(600),
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := env.fr.Invest(ctx, 2, alice, equityledger.NewAmount(500)); err != nil {
		t.Fatalf("first Invest: %v", err)
	}

	// Cumulative 1000 would exceed the 600 cap.
	err = env.fr.Invest(ctx, 2, alice, equityledger.NewAmount(500))
	if !errors.Is(err, equityledger.ErrInvestmentTooLarge) {
		t.Errorf("capped Invest = %v, want ErrInvestmentTooLarge", err)
	}

	// A 100 top-up stays within the cap.
	if err := env.fr.Invest(ctx, 2, alice, equityledger.NewAmount(100)); err != nil {
		t.Errorf("top-up Invest = %v, want nil", err)
	}
}

func TestInvestDeadlineAndLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newFundraisingEnv(t)
	if err := env.cash.Credit(alice, equityledger.NewAmount(1_000)); err != nil {
		t.Fatal(err)
	}

	// Investing exactly at the deadline still succeeds.
	env.clock.Time = 2_000
	if err := env.fr.Invest(ctx, 1, alice, equityledger.NewAmount(500)); err != nil {
		t.Fatalf("Invest at deadline: %v", err)
	}

	// One second past, it fails.
	env.clock.Advance(1)
	err := env.fr.Invest(ctx, 1, alice, equityledger.NewAmount(500))
	if !errors.Is(err, equityledger.ErrDeadlinePassed) {
		t.Errorf("Invest past deadline = %v, want ErrDeadlinePassed", err)
	}

	// A closed campaign rejects pledges before looking at the clock.
	env.clock.Time = 1_500
	if err := env.fr.CloseCampaign(ctx, 1, admin); err != nil {
		t.Fatal(err)
	}
	err = env.fr.Invest(ctx, 1, alice, equityledger.NewAmount(500))
	if !errors.Is(err, equityledger.ErrCampaignInactive) {
		t.Errorf("Invest after close = %v, want ErrCampaignInactive", err)
	}
}

func TestWithdrawFunds(t *testing.T) {
	ctx := context.Background()
	env := newFundraisingEnv(t)
	if err := env.cash.Credit(alice, equityledger.NewAmount(1_000)); err != nil {
		t.Fatal(err)
	}
	if err := env.fr.Invest(ctx, 1, alice, equityledger.NewAmount(500)); err != nil {
		t.Fatal(err)
	}

	// Target not reached, deadline not passed.
	err := env.fr.WithdrawFunds(ctx, 1)
	if !errors.Is(err, equityledger.ErrCannotWithdraw) {
		t.Fatalf("early withdraw = %v, want ErrCannotWithdraw", err)
	}

	// Past the deadline the company can collect.
	env.clock.Time = 2_001
	if err := env.fr.WithdrawFunds(ctx, 1); err != nil {
		t.Fatalf("WithdrawFunds: %v", err)
	}

	ownerCash, _ := env.cash.BalanceOf(ctx, owner)
	if ownerCash.Cmp(equityledger.NewAmount(500)) != 0 {
		t.Errorf("company payout = %s, want 500", ownerCash)
	}
	escrowCash, _ := env.cash.BalanceOf(ctx, env.fr.Account())
	if !escrowCash.IsZero() {
		t.Errorf("escrow after payout = %s, want 0", escrowCash)
	}

	campaign, _ := env.fr.GetCampaign(ctx, 1)
	if campaign.Active {
		t.Error("campaign still active after withdrawal")
	}
	stats, _ := env.fr.GetStats(ctx)
	if stats.ActiveCampaigns != 0 {
		t.Errorf("active campaigns = %d, want 0", stats.ActiveCampaigns)
	}

	// A second withdrawal finds the campaign inactive.
	err = env.fr.WithdrawFunds(ctx, 1)
	if !errors.Is(err, equityledger.ErrCampaignInactive) {
		t.Errorf("second withdraw = %v, want ErrCampaignInactive", err)
	}
}

func TestWithdrawFundsTargetReached(t *testing.T) {
	ctx := context.Background()
	env := newFundraisingEnv(t)
	if err := env.cash.Credit(alice, equityledger.NewAmount(1_000)); err != nil {
		t.Fatal(err)
	}

	// Raise the full target before the deadline.
	if err := env.fr.Invest(ctx, 1, alice, equityledger.NewAmount(1_000)); err != nil {
		t.Fatal(err)
	}
	if err := env.fr.WithdrawFunds(ctx, 1); err != nil {
		t.Fatalf("WithdrawFunds at target: %v", err)
	}

	ownerCash, _ := env.cash.BalanceOf(ctx, owner)
	if ownerCash.Cmp(equityledger.NewAmount(1_000)) != 0 {
		t.Errorf("company payout = %s, want 1000", ownerCash)
	}
}

func TestWithdrawFundsAuthorization(t *testing.T) {
	ctx := context.Background()

	st := memory.New()
	assets := asset.NewRegistry()
	cash := asset.NewToken("USD")
	assets.Register(usd, cash)
	clock := &equityledger.ManualClock{Time: 1_000}

	// Only admin and alice authorize calls; the company does not.
	opts := []equityledger.Option{
		equityledger.WithAssets(assets),
		equityledger.WithAuthorizer(equityledger.AuthorizeOnly(admin, alice)),
		equityledger.WithClock(clock),
	}
	fr := equityledger.NewFundraising(st, opts...)
	eq := equityledger.NewEquity(st, opts...)
	assets.Register(equityAsset, eq.AssetClient())

	if err := fr.Initialize(ctx, admin, usd); err != nil {
		t.Fatal(err)
	}

	// The company itself cannot open a campaign without authorization.
	err := fr.CreateCampaign(ctx, fundraising.CampaignParams{
		ID:            1,
		Company:       owner,
		EquityAsset:   equityAsset,
		Target:        equityledger.NewAmount(1_000),
		PricePerToken: equityledger.NewAmount(100),
		Deadline:      2_000,
		MinInvestment: equityledger.NewAmount(100),
	})
	if !errors.Is(err, equityledger.ErrUnauthorized) {
		t.Errorf("CreateCampaign = %v, want ErrUnauthorized", err)
	}
}

func TestCloseCampaign(t *testing.T) {
	ctx := context.Background()
	env := newFundraisingEnv(t)

	// A stranger may not close.
	err := env.fr.CloseCampaign(ctx, 1, bob)
	if !errors.Is(err, equityledger.ErrUnauthorized) {
		t.Errorf("stranger close = %v, want ErrUnauthorized", err)
	}

	// The company may.
	if err := env.fr.CloseCampaign(ctx, 1, owner); err != nil {
		t.Fatalf("company close: %v", err)
	}
	campaign, _ := env.fr.GetCampaign(ctx, 1)
	if campaign.Active {
		t.Error("campaign still active after close")
	}

	// Closing again is a silent no-op.
	if err := env.fr.CloseCampaign(ctx, 1, admin); err != nil {
		t.Errorf("repeat close = %v, want nil", err)
	}
	stats, _ := env.fr.GetStats(ctx)
	if stats.ActiveCampaigns != 0 {
		t.Errorf("active campaigns = %d, want 0", stats.ActiveCampaigns)
	}
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	env := newFundraisingEnv(t)
	if err := env.cash.Credit(alice, equityledger.NewAmount(1_000)); err != nil {
		t.Fatal(err)
	}

	// Absent investment reads as a zero-valued record.
	inv, err := env.fr.GetInvestment(ctx, 1, bob)
	if err != nil {
		t.Fatal(err)
	}
	if !inv.AmountInvested.IsZero() || !inv.TokensReceived.IsZero() {
		t.Errorf("absent investment = %s/%s, want zero", inv.AmountInvested, inv.TokensReceived)
	}

	has, err := env.fr.HasInvested(ctx, 1, alice)
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("HasInvested before pledge = true, want false")
	}

	progress, err := env.fr.GetCampaignProgress(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if progress != 0 {
		t.Errorf("progress = %d, want 0", progress)
	}

	if err := env.fr.Invest(ctx, 1, alice, equityledger.NewAmount(500)); err != nil {
		t.Fatal(err)
	}

	has, _ = env.fr.HasInvested(ctx, 1, alice)
	if !has {
		t.Error("HasInvested after pledge = false, want true")
	}
	progress, _ = env.fr.GetCampaignProgress(ctx, 1)
	if progress != 50 {
		t.Errorf("progress = %d, want 50", progress)
	}
	n, _ := env.fr.GetInvestorCount(ctx, 1)
	if n != 1 {
		t.Errorf("investor count = %d, want 1", n)
	}

	stats, err := env.fr.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalCampaigns != 1 || stats.ActiveCampaigns != 1 {
		t.Errorf("stats = %d/%d campaigns, want 1/1", stats.TotalCampaigns, stats.ActiveCampaigns)
	}
}

func TestStatsAcrossCampaigns(t *testing.T) {
	ctx := context.Background()
	env := newFundraisingEnv(t)

	err := env.fr.CreateCampaign(ctx, fundraising.CampaignParams{
		ID:            2,
		Company:       owner,
		EquityAsset:   equityAsset,
		Target:        equityledger.NewAmount(5_000),
		PricePerToken: equityledger.NewAmount(100),
		Deadline:      3_000,
		MinInvestment: equityledger.NewAmount(100),
	})
	if err != nil {
		t.Fatal(err)
	}

	stats, _ := env.fr.GetStats(ctx)
	if stats.TotalCampaigns != 2 || stats.ActiveCampaigns != 2 {
		t.Fatalf("stats = %d/%d, want 2/2", stats.TotalCampaigns, stats.ActiveCampaigns)
	}

	if err := env.fr.CloseCampaign(ctx, 2, admin); err != nil {
		t.Fatal(err)
	}
	stats, _ = env.fr.GetStats(ctx)
	if stats.TotalCampaigns != 2 || stats.ActiveCampaigns != 1 {
		t.Errorf("stats after close = %d/%d, want 2/1", stats.TotalCampaigns, stats.ActiveCampaigns)
	}
}
