// Package fundraising defines the fundraising ledger's domain model:
// campaign configuration and lifecycle state, cumulative per-investor
// records, the per-campaign investor roster, and the global stats
// aggregate.
package fundraising

import (
	"github.com/xraph/equityledger/id"
	"github.com/xraph/equityledger/types"
)

// Settings is the singleton configuration persisted by Initialize.
type Settings struct {
	Admin        types.Address `json:"admin"`
	PaymentAsset types.Address `json:"payment_asset"`
}

// Campaign is a time-boxed offer to sell equity tokens at a fixed
// price up to a funding target. Raised is monotonically non-decreasing
// while the campaign is active; Active transitions true to false
// exactly once and never back. Campaigns are never deleted.
type Campaign struct {
	ID            uint64        `json:"id"`
	Company       types.Address `json:"company"`
	EquityAsset   types.Address `json:"equity_asset"`
	Target        types.Amount  `json:"target"`
	PricePerToken types.Amount  `json:"price_per_token"`
	Raised        types.Amount  `json:"raised"`
	Active        bool          `json:"active"`
	Deadline      uint64        `json:"deadline"`
	MinInvestment types.Amount  `json:"min_investment"`
	// MaxInvestment caps one investor's cumulative contribution;
	// zero means unlimited.
	MaxInvestment types.Amount `json:"max_investment"`

	types.Entity
}

// TargetReached reports whether the funding target has been met.
func (c *Campaign) TargetReached() bool {
	return !c.Raised.LessThan(c.Target)
}

// Expired reports whether the ledger clock has passed the deadline.
func (c *Campaign) Expired(now uint64) bool {
	return now > c.Deadline
}

// Progress returns raised*100/target with integer division, or 0 when
// the target is zero.
func (c *Campaign) Progress() uint32 {
	if c.Target.IsZero() {
		return 0
	}
	hundred := types.NewAmount(100)
	scaled, err := c.Raised.Mul(hundred)
	if err != nil {
		// Raised is bounded by Target's 128-bit range in practice;
		// saturate rather than fail a read-only query.
		return 100
	}
	pct, err := scaled.Div(c.Target)
	if err != nil {
		return 0
	}
	return uint32(pct.Big().Uint64())
}

// Investment is one investor's cumulative record for one campaign.
// AmountInvested and TokensReceived only ever grow; Timestamp is the
// ledger time of the first accepted investment.
type Investment struct {
	Receipt        id.ReceiptID  `json:"receipt"`
	CampaignID     uint64        `json:"campaign_id"`
	Investor       types.Address `json:"investor"`
	AmountInvested types.Amount  `json:"amount_invested"`
	TokensReceived types.Amount  `json:"tokens_received"`
	Timestamp      uint64        `json:"timestamp"`

	types.Entity
}

// Stats is the denormalized global aggregate, co-updated with every
// campaign transition rather than recomputed.
type Stats struct {
	TotalCampaigns  uint64       `json:"total_campaigns"`
	ActiveCampaigns uint64       `json:"active_campaigns"`
	TotalRaised     types.Amount `json:"total_raised"`
}

// CampaignParams carries the arguments for campaign creation.
type CampaignParams struct {
	ID            uint64
	Company       types.Address
	EquityAsset   types.Address
	Target        types.Amount
	PricePerToken types.Amount
	Deadline      uint64
	MinInvestment types.Amount
	MaxInvestment types.Amount
}
