package equityledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/xraph/equityledger/asset"
	"github.com/xraph/equityledger/event"
	"github.com/xraph/equityledger/fundraising"
	"github.com/xraph/equityledger/id"
	"github.com/xraph/equityledger/plugin"
	"github.com/xraph/equityledger/store"
	"github.com/xraph/equityledger/types"
)

// Fundraising is the fundraising ledger engine. It runs time-boxed
// investment campaigns: pledges of the configured payment asset are
// converted into equity-token transfers at a fixed per-token price,
// and the raised funds are released to the issuing company once the
// target is met or the deadline has passed.
//
// The engine holds its own escrow account: investments accumulate
// there and the campaign's equity asset must be pre-funded into it.
// State-changing operations are serialized behind an internal mutex
// and validate fully before the first write; external asset transfers
// run after validation and before local state changes.
type Fundraising struct {
	store   store.Store
	assets  *asset.Registry
	plugins *plugin.Registry
	logger  *slog.Logger
	clock   Clock
	auth    Authorizer
	account types.Address

	mu sync.Mutex
}

// NewFundraising creates a fundraising ledger engine on the given store.
func NewFundraising(s store.Store, opts ...Option) *Fundraising {
	cfg := newConfig(opts...)
	return &Fundraising{
		store:   s,
		assets:  cfg.assets,
		plugins: cfg.registry(),
		logger:  cfg.logger,
		clock:   cfg.clock,
		auth:    cfg.auth,
		account: cfg.account,
	}
}

// Start migrates the store and initializes plugins.
func (f *Fundraising) Start(ctx context.Context) error {
	if err := f.store.Migrate(ctx); err != nil {
		return err
	}
	f.plugins.EmitInit(ctx, f)
	f.logger.Info("fundraising ledger started", "account", f.account)
	return nil
}

// Stop shuts the engine down and notifies plugins.
func (f *Fundraising) Stop() error {
	f.plugins.EmitShutdown(context.Background())
	f.logger.Info("fundraising ledger stopped")
	return nil
}

// Plugins exposes the plugin registry.
func (f *Fundraising) Plugins() *plugin.Registry { return f.plugins }

// Assets exposes the asset registry.
func (f *Fundraising) Assets() *asset.Registry { return f.assets }

// Account returns the engine's escrow account.
func (f *Fundraising) Account() types.Address { return f.account }

// Initialize performs the one-time fundraising setup: it stores the
// admin and payment-asset reference, zeroes the stats aggregate, and
// sets the initialization sentinel. The admin must have authorized
// the call.
func (f *Fundraising) Initialize(ctx context.Context, admin, paymentAsset types.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.auth.Authorized(ctx, admin) {
		return fmt.Errorf("%w: admin %s", ErrUnauthorized, admin)
	}

	initialized, err := f.store.FundraisingInitialized(ctx)
	if err != nil {
		return err
	}
	if initialized {
		return ErrAlreadyInitialized
	}

	if admin.IsZero() {
		return ValidationError{Field: "admin", Message: "must not be empty"}
	}
	if paymentAsset.IsZero() {
		return ValidationError{Field: "payment_asset", Message: "must not be empty"}
	}

	if err := f.store.PutSettings(ctx, &fundraising.Settings{Admin: admin, PaymentAsset: paymentAsset}); err != nil {
		return err
	}
	if err := f.store.PutStats(ctx, &fundraising.Stats{}); err != nil {
		return err
	}
	if err := f.store.MarkFundraisingInitialized(ctx); err != nil {
		return err
	}

	f.logger.Info("fundraising initialized", "admin", admin, "payment_asset", paymentAsset)

	f.plugins.EmitFundraisingInitialized(ctx, event.FundraisingInitialized{
		ID:           id.NewEventID(),
		Admin:        admin,
		PaymentAsset: paymentAsset,
		Timestamp:    f.clock.Now(),
	})

	return nil
}

// CreateCampaign opens a new campaign for the issuing company. The
// company must have authorized the call; the id is caller-assigned
// and must be unused.
func (f *Fundraising) CreateCampaign(ctx context.Context, p fundraising.CampaignParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireInit(ctx); err != nil {
		return err
	}
	if !f.auth.Authorized(ctx, p.Company) {
		return fmt.Errorf("%w: company %s", ErrUnauthorized, p.Company)
	}

	if !p.Target.IsPositive() {
		return fmt.Errorf("%w: target %s", ErrInvalidAmount, p.Target)
	}
	if !p.PricePerToken.IsPositive() {
		return fmt.Errorf("%w: price per token %s", ErrInvalidAmount, p.PricePerToken)
	}
	if !p.MinInvestment.IsPositive() {
		return fmt.Errorf("%w: min investment %s", ErrInvalidAmount, p.MinInvestment)
	}
	if !p.MaxInvestment.IsZero() && p.MaxInvestment.LessThan(p.MinInvestment) {
		return fmt.Errorf("%w: max investment %s below min %s", ErrInvalidAmount, p.MaxInvestment, p.MinInvestment)
	}

	now := f.clock.Now()
	if p.Deadline <= now {
		return fmt.Errorf("%w: deadline %d, now %d", ErrDeadlineInvalid, p.Deadline, now)
	}

	campaign := &fundraising.Campaign{
		ID:            p.ID,
		Company:       p.Company,
		EquityAsset:   p.EquityAsset,
		Target:        p.Target,
		PricePerToken: p.PricePerToken,
		Active:        true,
		Deadline:      p.Deadline,
		MinInvestment: p.MinInvestment,
		MaxInvestment: p.MaxInvestment,
		Entity:        types.NewEntity(),
	}
	if err := f.store.CreateCampaign(ctx, campaign); err != nil {
		return err
	}

	stats, err := f.store.GetStats(ctx)
	if err != nil {
		return err
	}
	stats.TotalCampaigns++
	stats.ActiveCampaigns++
	if err := f.store.PutStats(ctx, stats); err != nil {
		return err
	}

	f.logger.Info("campaign created",
		"campaign_id", p.ID,
		"company", p.Company,
		"target", p.Target,
		"deadline", p.Deadline,
	)

	f.plugins.EmitCampaignCreated(ctx, event.CampaignCreated{
		ID:            id.NewEventID(),
		CampaignID:    p.ID,
		Company:       p.Company,
		Target:        p.Target,
		PricePerToken: p.PricePerToken,
		Deadline:      p.Deadline,
		Timestamp:     now,
	})

	return nil
}

// Invest accepts a pledge into an active campaign: payment moves from
// the investor into escrow, equity tokens move from escrow to the
// investor at the campaign's fixed price with truncating division,
// and the campaign, investment record, roster, and stats are updated
// together. The investor must have authorized the call.
//
// Token count is computed per call: repeated small pledges can yield
// fewer tokens than one pledge of the same sum. That is the intended
// pricing behavior of the fixed-price sale.
func (f *Fundraising) Invest(ctx context.Context, campaignID uint64, investor types.Address, amount types.Amount) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireInit(ctx); err != nil {
		return err
	}
	if !f.auth.Authorized(ctx, investor) {
		return fmt.Errorf("%w: investor %s", ErrUnauthorized, investor)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	campaign, err := f.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if !campaign.Active {
		return ErrCampaignInactive
	}

	now := f.clock.Now()
	if campaign.Expired(now) {
		return ErrDeadlinePassed
	}
	if amount.LessThan(campaign.MinInvestment) {
		return fmt.Errorf("%w: %s below minimum %s", ErrInvestmentTooSmall, amount, campaign.MinInvestment)
	}

	prior, err := f.store.GetInvestment(ctx, campaignID, investor)
	if err != nil {
		return err
	}

	if !campaign.MaxInvestment.IsZero() {
		cumulative := amount
		if prior != nil {
			cumulative, err = prior.AmountInvested.Add(amount)
			if err != nil {
				return fmt.Errorf("%w: cumulative investment: %v", ErrInvalidAmount, err)
			}
		}
		if campaign.MaxInvestment.LessThan(cumulative) {
			return fmt.Errorf("%w: cumulative %s over cap %s", ErrInvestmentTooLarge, cumulative, campaign.MaxInvestment)
		}
	}

	tokens, err := amount.Div(campaign.PricePerToken)
	if err != nil {
		return fmt.Errorf("%w: token price: %v", ErrInvalidAmount, err)
	}
	if !tokens.IsPositive() {
		return fmt.Errorf("%w: %s buys no tokens at price %s", ErrInvestmentTooSmall, amount, campaign.PricePerToken)
	}

	settings, err := f.store.GetSettings(ctx)
	if err != nil {
		return err
	}

	payment, err := f.assets.Resolve(settings.PaymentAsset)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, settings.PaymentAsset)
	}
	equityClient, err := f.assets.Resolve(campaign.EquityAsset)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, campaign.EquityAsset)
	}

	if err := payment.Transfer(ctx, investor, f.account, amount); err != nil {
		return fmt.Errorf("%w: payment: %v", ErrTransferFailed, err)
	}
	// The escrow account must have been pre-funded with the campaign's
	// token allocation; an under-funded escrow fails here.
	if err := equityClient.Transfer(ctx, f.account, investor, tokens); err != nil {
		return fmt.Errorf("%w: equity: %v", ErrTransferFailed, err)
	}

	campaign.Raised, err = campaign.Raised.Add(amount)
	if err != nil {
		return fmt.Errorf("%w: raised amount: %v", ErrInvalidAmount, err)
	}
	campaign.Touch()
	if err := f.store.UpdateCampaign(ctx, campaign); err != nil {
		return err
	}

	if prior == nil {
		prior = &fundraising.Investment{
			Receipt:        id.NewReceiptID(),
			CampaignID:     campaignID,
			Investor:       investor,
			AmountInvested: amount,
			TokensReceived: tokens,
			Timestamp:      now,
			Entity:         types.NewEntity(),
		}
	} else {
		prior.AmountInvested, err = prior.AmountInvested.Add(amount)
		if err != nil {
			return fmt.Errorf("%w: amount invested: %v", ErrInvalidAmount, err)
		}
		prior.TokensReceived, err = prior.TokensReceived.Add(tokens)
		if err != nil {
			return fmt.Errorf("%w: tokens received: %v", ErrInvalidAmount, err)
		}
		prior.Touch()
	}
	if err := f.store.PutInvestment(ctx, prior); err != nil {
		return err
	}
	if err := f.store.AddInvestor(ctx, campaignID, investor); err != nil {
		return err
	}

	stats, err := f.store.GetStats(ctx)
	if err != nil {
		return err
	}
	stats.TotalRaised, err = stats.TotalRaised.Add(amount)
	if err != nil {
		return fmt.Errorf("%w: total raised: %v", ErrInvalidAmount, err)
	}
	if err := f.store.PutStats(ctx, stats); err != nil {
		return err
	}

	f.logger.Info("investment accepted",
		"campaign_id", campaignID,
		"investor", investor,
		"amount", amount,
		"tokens", tokens,
	)

	f.plugins.EmitInvestmentMade(ctx, event.InvestmentMade{
		ID:         id.NewEventID(),
		Receipt:    prior.Receipt,
		CampaignID: campaignID,
		Investor:   investor,
		Amount:     amount,
		Tokens:     tokens,
		Timestamp:  now,
	})

	return nil
}

// WithdrawFunds releases the full raised amount to the campaign's
// company and closes the campaign. Eligible once the target is met or
// the deadline has passed. The company must have authorized the call.
func (f *Fundraising) WithdrawFunds(ctx context.Context, campaignID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireInit(ctx); err != nil {
		return err
	}

	campaign, err := f.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if !f.auth.Authorized(ctx, campaign.Company) {
		return fmt.Errorf("%w: company %s", ErrUnauthorized, campaign.Company)
	}
	if !campaign.Active {
		return ErrCampaignInactive
	}

	now := f.clock.Now()
	if !campaign.TargetReached() && !campaign.Expired(now) {
		return fmt.Errorf("%w: raised %s of %s, deadline %d not passed",
			ErrCannotWithdraw, campaign.Raised, campaign.Target, campaign.Deadline)
	}

	settings, err := f.store.GetSettings(ctx)
	if err != nil {
		return err
	}
	payment, err := f.assets.Resolve(settings.PaymentAsset)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, settings.PaymentAsset)
	}
	if campaign.Raised.IsPositive() {
		if err := payment.Transfer(ctx, f.account, campaign.Company, campaign.Raised); err != nil {
			return fmt.Errorf("%w: payout: %v", ErrTransferFailed, err)
		}
	}

	campaign.Active = false
	campaign.Touch()
	if err := f.store.UpdateCampaign(ctx, campaign); err != nil {
		return err
	}
	if err := f.decrementActive(ctx); err != nil {
		return err
	}

	f.logger.Info("funds withdrawn",
		"campaign_id", campaignID,
		"company", campaign.Company,
		"amount", campaign.Raised,
	)

	f.plugins.EmitFundsWithdrawn(ctx, event.FundsWithdrawn{
		ID:         id.NewEventID(),
		CampaignID: campaignID,
		Company:    campaign.Company,
		Amount:     campaign.Raised,
		Timestamp:  now,
	})

	return nil
}

// CloseCampaign deactivates a campaign without moving funds. Only the
// registered admin or the campaign's company may close it; closing an
// already-inactive campaign is a silent no-op.
func (f *Fundraising) CloseCampaign(ctx context.Context, campaignID uint64, caller types.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireInit(ctx); err != nil {
		return err
	}
	if !f.auth.Authorized(ctx, caller) {
		return fmt.Errorf("%w: caller %s", ErrUnauthorized, caller)
	}

	campaign, err := f.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	settings, err := f.store.GetSettings(ctx)
	if err != nil {
		return err
	}
	if caller != settings.Admin && caller != campaign.Company {
		return fmt.Errorf("%w: %s is neither admin nor company", ErrUnauthorized, caller)
	}

	if !campaign.Active {
		return nil
	}

	campaign.Active = false
	campaign.Touch()
	if err := f.store.UpdateCampaign(ctx, campaign); err != nil {
		return err
	}
	if err := f.decrementActive(ctx); err != nil {
		return err
	}

	f.logger.Info("campaign closed", "campaign_id", campaignID, "closed_by", caller)

	f.plugins.EmitCampaignClosed(ctx, event.CampaignClosed{
		ID:         id.NewEventID(),
		CampaignID: campaignID,
		ClosedBy:   caller,
		Timestamp:  f.clock.Now(),
	})

	return nil
}

// GetCampaign returns a campaign by id.
func (f *Fundraising) GetCampaign(ctx context.Context, campaignID uint64) (*fundraising.Campaign, error) {
	if err := f.requireInit(ctx); err != nil {
		return nil, err
	}
	return f.store.GetCampaign(ctx, campaignID)
}

// GetInvestment returns one investor's cumulative record for a
// campaign, or a zero-valued record if they never invested.
func (f *Fundraising) GetInvestment(ctx context.Context, campaignID uint64, investor types.Address) (*fundraising.Investment, error) {
	if err := f.requireInit(ctx); err != nil {
		return nil, err
	}
	inv, err := f.store.GetInvestment(ctx, campaignID, investor)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return &fundraising.Investment{CampaignID: campaignID, Investor: investor}, nil
	}
	return inv, nil
}

// GetInvestors returns the campaign roster in insertion order.
func (f *Fundraising) GetInvestors(ctx context.Context, campaignID uint64) ([]types.Address, error) {
	if err := f.requireInit(ctx); err != nil {
		return nil, err
	}
	return f.store.ListInvestors(ctx, campaignID)
}

// GetInvestorCount returns the roster size.
func (f *Fundraising) GetInvestorCount(ctx context.Context, campaignID uint64) (int, error) {
	if err := f.requireInit(ctx); err != nil {
		return 0, err
	}
	return f.store.CountInvestors(ctx, campaignID)
}

// GetStats returns the global aggregate.
func (f *Fundraising) GetStats(ctx context.Context) (*fundraising.Stats, error) {
	if err := f.requireInit(ctx); err != nil {
		return nil, err
	}
	return f.store.GetStats(ctx)
}

// HasInvested reports whether an investor appears on a campaign roster.
func (f *Fundraising) HasInvested(ctx context.Context, campaignID uint64, investor types.Address) (bool, error) {
	if err := f.requireInit(ctx); err != nil {
		return false, err
	}
	return f.store.HasInvestment(ctx, campaignID, investor)
}

// GetCampaignProgress returns raised*100/target with integer division,
// or 0 when the target is zero.
func (f *Fundraising) GetCampaignProgress(ctx context.Context, campaignID uint64) (uint32, error) {
	if err := f.requireInit(ctx); err != nil {
		return 0, err
	}
	campaign, err := f.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	return campaign.Progress(), nil
}

// requireInit enforces the global sentinel precondition shared by
// every operation except Initialize.
func (f *Fundraising) requireInit(ctx context.Context) error {
	initialized, err := f.store.FundraisingInitialized(ctx)
	if err != nil {
		return err
	}
	if !initialized {
		return ErrNotInitialized
	}
	return nil
}

// decrementActive reduces the active campaign count, saturating at
// zero. Callers hold f.mu.
func (f *Fundraising) decrementActive(ctx context.Context) error {
	stats, err := f.store.GetStats(ctx)
	if err != nil {
		return err
	}
	if stats.ActiveCampaigns > 0 {
		stats.ActiveCampaigns--
	}
	return f.store.PutStats(ctx, stats)
}
