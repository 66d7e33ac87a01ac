// Package event defines the typed payloads emitted by EquityLedger
// after every successful state-changing operation. Events are
// delivered to plugins; they are notifications, not part of ledger
// state, and carry the ledger timestamp at which the operation took
// effect.
package event

import (
	"github.com/xraph/equityledger/id"
	"github.com/xraph/equityledger/types"
)

// CompanyInitialized is emitted once when the equity ledger is set up.
type CompanyInitialized struct {
	ID          id.EventID
	Company     types.Address
	Name        string
	Symbol      string
	TotalSupply types.Amount
	Timestamp   uint64
}

// TokensMinted is emitted when equity tokens are sold from the company
// owner to a buyer. Supply is conserved; "mint" is the original
// product term for a primary sale.
type TokensMinted struct {
	ID        id.EventID
	Company   types.Address
	To        types.Address
	Amount    types.Amount
	Timestamp uint64
}

// TokensTransferred is emitted on any holder-to-holder movement.
type TokensTransferred struct {
	ID        id.EventID
	From      types.Address
	To        types.Address
	Amount    types.Amount
	Timestamp uint64
}

// PaymentMade is emitted when a transfer was settled against an
// external payment asset, alongside the TokensTransferred event.
type PaymentMade struct {
	ID        id.EventID
	Buyer     types.Address
	Seller    types.Address
	Asset     types.Address
	Amount    types.Amount
	Timestamp uint64
}

// TokensBurned is emitted when equity is retired. Burning reduces
// both the holder balance and the total supply.
type TokensBurned struct {
	ID        id.EventID
	From      types.Address
	Amount    types.Amount
	Timestamp uint64
}

// FundraisingInitialized is emitted once when the fundraising ledger
// is set up with its admin and payment asset.
type FundraisingInitialized struct {
	ID           id.EventID
	Admin        types.Address
	PaymentAsset types.Address
	Timestamp    uint64
}

// CampaignCreated is emitted when a company opens a campaign.
type CampaignCreated struct {
	ID            id.EventID
	CampaignID    uint64
	Company       types.Address
	Target        types.Amount
	PricePerToken types.Amount
	Deadline      uint64
	Timestamp     uint64
}

// InvestmentMade is emitted on every accepted investment. Receipt is
// the receipt ID of the investor's cumulative record for the campaign.
type InvestmentMade struct {
	ID         id.EventID
	Receipt    id.ReceiptID
	CampaignID uint64
	Investor   types.Address
	Amount     types.Amount
	Tokens     types.Amount
	Timestamp  uint64
}

// FundsWithdrawn is emitted when a company collects campaign proceeds.
type FundsWithdrawn struct {
	ID         id.EventID
	CampaignID uint64
	Company    types.Address
	Amount     types.Amount
	Timestamp  uint64
}

// CampaignClosed is emitted when a campaign is deactivated by its
// company or the admin. Closing an already-inactive campaign emits
// nothing.
type CampaignClosed struct {
	ID         id.EventID
	CampaignID uint64
	ClosedBy   types.Address
	Timestamp  uint64
}
