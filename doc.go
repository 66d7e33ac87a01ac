// Package equityledger provides two coupled accounting engines for
// tokenized equity: an equity ledger tracking ownership of a
// fixed-supply asset, and a fundraising ledger running time-boxed
// investment campaigns that convert pledges of a payment asset into
// equity transfers at a fixed price.
//
// EquityLedger is designed as a library, not a service. Import it
// directly into your Go application. It provides:
//
//   - Conservation-guaranteed balance bookkeeping (no value created
//     or destroyed by mint, transfer, or burn)
//   - Campaign lifecycle management with deadline and target rules
//   - Per-investor caps and cumulative investment records
//   - Fixed-price token/currency conversion with integer arithmetic
//   - Fund-release eligibility enforcement
//   - Pluggable persistence (memory, SQLite, Postgres, MongoDB)
//   - Lifecycle event hooks via the plugin registry
//
// # Quick Start
//
// Create both engines over a shared store:
//
//	import (
//	    "github.com/xraph/equityledger"
//	    "github.com/xraph/equityledger/asset"
//	    "github.com/xraph/equityledger/store/memory"
//	)
//
//	st := memory.New()
//	assets := asset.NewRegistry()
//
//	eq := equityledger.NewEquity(st, equityledger.WithAssets(assets))
//	fr := equityledger.NewFundraising(st, equityledger.WithAssets(assets))
//
//	// Expose the equity ledger as an asset so campaigns can deliver
//	// tokens through the same boundary they use for payments.
//	assets.Register("acme-equity", eq.AssetClient())
//
// Initialize the equity ledger once:
//
//	err := eq.InitCompany(ctx, equity.InitParams{
//	    Owner:       "acme",
//	    Name:        "Acme Inc",
//	    Symbol:      "ACME",
//	    TotalSupply: equityledger.NewAmount(1_000_000),
//	    TokenPrice:  equityledger.NewAmount(100),
//	})
//
// Then run a campaign:
//
//	_ = fr.Initialize(ctx, "admin", "usd")
//	_ = fr.CreateCampaign(ctx, fundraising.CampaignParams{
//	    ID: 1, Company: "acme", EquityAsset: "acme-equity",
//	    Target:        equityledger.NewAmount(1_000_000),
//	    PricePerToken: equityledger.NewAmount(100),
//	    Deadline:      deadline,
//	    MinInvestment: equityledger.NewAmount(100),
//	})
//	_ = fr.Invest(ctx, 1, "alice", equityledger.NewAmount(500))
//
// # Numeric Model
//
// All monetary calculations use checked signed 128-bit integer
// arithmetic in the smallest indivisible unit; overflow fails the
// operation instead of wrapping. Token counts use truncating
// division: an investment that cannot buy a whole token is rejected.
//
// # Atomicity
//
// Every operation validates fully before its first write and either
// applies completely or not at all. External asset transfers run
// between validation and local writes, and their failure aborts the
// whole operation.
//
// # TypeID
//
// Derived records use TypeID for globally unique, type-safe
// identifiers:
//
//	evt_01h2xcejqtf2nbrexx3vqjhp41   // Emitted event
//	rcpt_01h455vb4pex5vsknk084sn02q  // Investment receipt
//
// TypeIDs are K-sortable, providing natural time-ordering.
package equityledger
