package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/equityledger/equity"
	"github.com/xraph/equityledger/fundraising"
	"github.com/xraph/equityledger/id"
	"github.com/xraph/equityledger/types"
)

// Amounts are stored as base-10 strings so the full signed 128-bit
// range survives BSON round-trips.

type flagModel struct {
	grove.BaseModel `grove:"table:eqledger_flags"`

	Name      string    `grove:"name,pk"    bson:"_id"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
}

const (
	flagEquityInitialized      = "equity_initialized"
	flagFundraisingInitialized = "fundraising_initialized"
)

type companyModel struct {
	grove.BaseModel `grove:"table:eqledger_company"`

	ID            int64     `grove:"id,pk"          bson:"_id"`
	Owner         string    `grove:"owner"          bson:"owner"`
	Name          string    `grove:"name"           bson:"name"`
	Symbol        string    `grove:"symbol"         bson:"symbol"`
	TotalSupply   string    `grove:"total_supply"   bson:"total_supply"`
	EquityPercent int64     `grove:"equity_percent" bson:"equity_percent"`
	Description   string    `grove:"description"    bson:"description"`
	TokenPrice    string    `grove:"token_price"    bson:"token_price"`
	TargetAmount  string    `grove:"target_amount"  bson:"target_amount"`
	CreatedAt     time.Time `grove:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"     bson:"updated_at"`
}

// companySingletonID pins the company record to a single document.
const companySingletonID = int64(1)

func toCompanyModel(c *equity.Company) *companyModel {
	return &companyModel{
		ID:            companySingletonID,
		Owner:         c.Owner.String(),
		Name:          c.Name,
		Symbol:        c.Symbol,
		TotalSupply:   c.TotalSupply.String(),
		EquityPercent: int64(c.EquityPercent),
		Description:   c.Description,
		TokenPrice:    c.TokenPrice.String(),
		TargetAmount:  c.TargetAmount.String(),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func fromCompanyModel(m *companyModel) (*equity.Company, error) {
	supply, err := types.ParseAmount(m.TotalSupply)
	if err != nil {
		return nil, err
	}
	price, err := types.ParseAmount(m.TokenPrice)
	if err != nil {
		return nil, err
	}
	target, err := types.ParseAmount(m.TargetAmount)
	if err != nil {
		return nil, err
	}

	return &equity.Company{
		Owner:         types.Address(m.Owner),
		Name:          m.Name,
		Symbol:        m.Symbol,
		TotalSupply:   supply,
		EquityPercent: uint32(m.EquityPercent),
		Description:   m.Description,
		TokenPrice:    price,
		TargetAmount:  target,
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}, nil
}

type balanceModel struct {
	grove.BaseModel `grove:"table:eqledger_balances"`

	Account   string    `grove:"account,pk" bson:"_id"`
	Amount    string    `grove:"amount"     bson:"amount"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

type settingsModel struct {
	grove.BaseModel `grove:"table:eqledger_settings"`

	ID           int64  `grove:"id,pk"         bson:"_id"`
	Admin        string `grove:"admin"         bson:"admin"`
	PaymentAsset string `grove:"payment_asset" bson:"payment_asset"`
}

const settingsSingletonID = int64(1)

type campaignModel struct {
	grove.BaseModel `grove:"table:eqledger_campaigns"`

	ID            int64     `grove:"id,pk"           bson:"_id"`
	Company       string    `grove:"company"         bson:"company"`
	EquityAsset   string    `grove:"equity_asset"    bson:"equity_asset"`
	Target        string    `grove:"target"          bson:"target"`
	PricePerToken string    `grove:"price_per_token" bson:"price_per_token"`
	Raised        string    `grove:"raised"          bson:"raised"`
	Active        bool      `grove:"active"          bson:"active"`
	Deadline      int64     `grove:"deadline"        bson:"deadline"`
	MinInvestment string    `grove:"min_investment"  bson:"min_investment"`
	MaxInvestment string    `grove:"max_investment"  bson:"max_investment"`
	CreatedAt     time.Time `grove:"created_at"      bson:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"      bson:"updated_at"`
}

func toCampaignModel(c *fundraising.Campaign) *campaignModel {
	return &campaignModel{
		ID:            int64(c.ID),
		Company:       c.Company.String(),
		EquityAsset:   c.EquityAsset.String(),
		Target:        c.Target.String(),
		PricePerToken: c.PricePerToken.String(),
		Raised:        c.Raised.String(),
		Active:        c.Active,
		Deadline:      int64(c.Deadline),
		MinInvestment: c.MinInvestment.String(),
		MaxInvestment: c.MaxInvestment.String(),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func fromCampaignModel(m *campaignModel) (*fundraising.Campaign, error) {
	target, err := types.ParseAmount(m.Target)
	if err != nil {
		return nil, err
	}
	price, err := types.ParseAmount(m.PricePerToken)
	if err != nil {
		return nil, err
	}
	raised, err := types.ParseAmount(m.Raised)
	if err != nil {
		return nil, err
	}
	minInv, err := types.ParseAmount(m.MinInvestment)
	if err != nil {
		return nil, err
	}
	maxInv, err := types.ParseAmount(m.MaxInvestment)
	if err != nil {
		return nil, err
	}

	return &fundraising.Campaign{
		ID:            uint64(m.ID),
		Company:       types.Address(m.Company),
		EquityAsset:   types.Address(m.EquityAsset),
		Target:        target,
		PricePerToken: price,
		Raised:        raised,
		Active:        m.Active,
		Deadline:      uint64(m.Deadline),
		MinInvestment: minInv,
		MaxInvestment: maxInv,
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}, nil
}

// Investments and roster entries key on "campaignID:investor".

type investmentModel struct {
	grove.BaseModel `grove:"table:eqledger_investments"`

	Key            string    `grove:"key,pk"          bson:"_id"`
	CampaignID     int64     `grove:"campaign_id"     bson:"campaign_id"`
	Investor       string    `grove:"investor"        bson:"investor"`
	Receipt        string    `grove:"receipt"         bson:"receipt"`
	AmountInvested string    `grove:"amount_invested" bson:"amount_invested"`
	TokensReceived string    `grove:"tokens_received" bson:"tokens_received"`
	Timestamp      int64     `grove:"ts"              bson:"ts"`
	CreatedAt      time.Time `grove:"created_at"      bson:"created_at"`
	UpdatedAt      time.Time `grove:"updated_at"      bson:"updated_at"`
}

func toInvestmentModel(inv *fundraising.Investment) *investmentModel {
	return &investmentModel{
		Key:            investmentKey(inv.CampaignID, inv.Investor),
		CampaignID:     int64(inv.CampaignID),
		Investor:       inv.Investor.String(),
		Receipt:        inv.Receipt.String(),
		AmountInvested: inv.AmountInvested.String(),
		TokensReceived: inv.TokensReceived.String(),
		Timestamp:      int64(inv.Timestamp),
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
}

func fromInvestmentModel(m *investmentModel) (*fundraising.Investment, error) {
	receipt, err := id.ParseReceiptID(m.Receipt)
	if err != nil {
		return nil, err
	}
	amount, err := types.ParseAmount(m.AmountInvested)
	if err != nil {
		return nil, err
	}
	tokens, err := types.ParseAmount(m.TokensReceived)
	if err != nil {
		return nil, err
	}

	return &fundraising.Investment{
		Receipt:        receipt,
		CampaignID:     uint64(m.CampaignID),
		Investor:       types.Address(m.Investor),
		AmountInvested: amount,
		TokensReceived: tokens,
		Timestamp:      uint64(m.Timestamp),
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}, nil
}

type investorModel struct {
	grove.BaseModel `grove:"table:eqledger_investors"`

	Key        string    `grove:"key,pk"      bson:"_id"`
	CampaignID int64     `grove:"campaign_id" bson:"campaign_id"`
	Investor   string    `grove:"investor"    bson:"investor"`
	Position   int64     `grove:"position"    bson:"position"`
	CreatedAt  time.Time `grove:"created_at"  bson:"created_at"`
}

type statsModel struct {
	grove.BaseModel `grove:"table:eqledger_stats"`

	ID              int64  `grove:"id,pk"            bson:"_id"`
	TotalCampaigns  int64  `grove:"total_campaigns"  bson:"total_campaigns"`
	ActiveCampaigns int64  `grove:"active_campaigns" bson:"active_campaigns"`
	TotalRaised     string `grove:"total_raised"     bson:"total_raised"`
}

const statsSingletonID = int64(1)

func toStatsModel(s *fundraising.Stats) *statsModel {
	return &statsModel{
		ID:              statsSingletonID,
		TotalCampaigns:  int64(s.TotalCampaigns),
		ActiveCampaigns: int64(s.ActiveCampaigns),
		TotalRaised:     s.TotalRaised.String(),
	}
}

func fromStatsModel(m *statsModel) (*fundraising.Stats, error) {
	raised, err := types.ParseAmount(m.TotalRaised)
	if err != nil {
		return nil, err
	}
	return &fundraising.Stats{
		TotalCampaigns:  uint64(m.TotalCampaigns),
		ActiveCampaigns: uint64(m.ActiveCampaigns),
		TotalRaised:     raised,
	}, nil
}
