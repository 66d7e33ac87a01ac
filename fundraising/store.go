package fundraising

import (
	"context"

	"github.com/xraph/equityledger/types"
)

// Store is the persistence surface the fundraising ledger needs. The
// unified store interface satisfies it.
type Store interface {
	// FundraisingInitialized reports whether the one-time sentinel is set.
	FundraisingInitialized(ctx context.Context) (bool, error)

	// MarkFundraisingInitialized sets the one-time sentinel.
	MarkFundraisingInitialized(ctx context.Context) error

	// GetSettings returns the persisted admin and payment asset.
	GetSettings(ctx context.Context) (*Settings, error)

	// PutSettings persists the singleton settings.
	PutSettings(ctx context.Context, s *Settings) error

	// CreateCampaign persists a new campaign, failing if the id is
	// already in use.
	CreateCampaign(ctx context.Context, c *Campaign) error

	// GetCampaign returns a campaign by id, or an error if absent.
	GetCampaign(ctx context.Context, campaignID uint64) (*Campaign, error)

	// UpdateCampaign persists changes to an existing campaign.
	UpdateCampaign(ctx context.Context, c *Campaign) error

	// GetInvestment returns the cumulative record for one
	// (campaign, investor) pair, or nil if none exists.
	GetInvestment(ctx context.Context, campaignID uint64, investor types.Address) (*Investment, error)

	// PutInvestment creates or replaces an investment record.
	PutInvestment(ctx context.Context, inv *Investment) error

	// AddInvestor appends an investor to a campaign's roster if not
	// already present. Membership is idempotent.
	AddInvestor(ctx context.Context, campaignID uint64, investor types.Address) error

	// ListInvestors returns a campaign's roster in insertion order.
	ListInvestors(ctx context.Context, campaignID uint64) ([]types.Address, error)

	// CountInvestors returns the roster size.
	CountInvestors(ctx context.Context, campaignID uint64) (int, error)

	// HasInvestment reports roster membership.
	HasInvestment(ctx context.Context, campaignID uint64, investor types.Address) (bool, error)

	// GetStats returns the global aggregate, zero-valued if unset.
	GetStats(ctx context.Context) (*Stats, error)

	// PutStats persists the global aggregate.
	PutStats(ctx context.Context, s *Stats) error
}
