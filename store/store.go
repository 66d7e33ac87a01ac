// Package store defines the unified storage interface for EquityLedger.
//
// A Store persists both ledgers' keyed records: the company singleton
// and per-account balances for the equity ledger, and the settings,
// campaigns, investments, rosters, and stats for the fundraising
// ledger. Implementations live in the memory, sqlite, postgres, and
// mongo subpackages and must all satisfy the same semantics; memory
// is the reference implementation.
package store

import (
	"context"

	"github.com/xraph/equityledger/equity"
	"github.com/xraph/equityledger/fundraising"
	"github.com/xraph/equityledger/types"
)

// Store is the unified storage interface for all EquityLedger records.
// Instead of embedding the per-ledger sub-interfaces, all methods are
// declared explicitly to avoid naming conflicts.
type Store interface {
	// Equity methods
	EquityInitialized(ctx context.Context) (bool, error)
	MarkEquityInitialized(ctx context.Context) error
	GetCompany(ctx context.Context) (*equity.Company, error)
	PutCompany(ctx context.Context, c *equity.Company) error
	GetBalance(ctx context.Context, account types.Address) (types.Amount, error)
	SetBalances(ctx context.Context, balances ...equity.Balance) error

	// Fundraising methods
	FundraisingInitialized(ctx context.Context) (bool, error)
	MarkFundraisingInitialized(ctx context.Context) error
	GetSettings(ctx context.Context) (*fundraising.Settings, error)
	PutSettings(ctx context.Context, s *fundraising.Settings) error
	CreateCampaign(ctx context.Context, c *fundraising.Campaign) error
	GetCampaign(ctx context.Context, campaignID uint64) (*fundraising.Campaign, error)
	UpdateCampaign(ctx context.Context, c *fundraising.Campaign) error
	GetInvestment(ctx context.Context, campaignID uint64, investor types.Address) (*fundraising.Investment, error)
	PutInvestment(ctx context.Context, inv *fundraising.Investment) error
	AddInvestor(ctx context.Context, campaignID uint64, investor types.Address) error
	ListInvestors(ctx context.Context, campaignID uint64) ([]types.Address, error)
	CountInvestors(ctx context.Context, campaignID uint64) (int, error)
	HasInvestment(ctx context.Context, campaignID uint64, investor types.Address) (bool, error)
	GetStats(ctx context.Context) (*fundraising.Stats, error)
	PutStats(ctx context.Context, s *fundraising.Stats) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
