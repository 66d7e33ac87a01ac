// Package plugin provides an extensible plugin system for EquityLedger.
// Plugins can hook into ledger lifecycle events to extend functionality.
package plugin

import (
	"context"

	"github.com/xraph/equityledger/event"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, ledger interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Equity hooks
// ──────────────────────────────────────────────────

// OnCompanyInitialized is called after the equity ledger is set up.
type OnCompanyInitialized interface {
	Plugin
	OnCompanyInitialized(ctx context.Context, ev event.CompanyInitialized) error
}

// OnTokensMinted is called after a primary sale from the owner.
type OnTokensMinted interface {
	Plugin
	OnTokensMinted(ctx context.Context, ev event.TokensMinted) error
}

// OnTokensTransferred is called after any holder-to-holder transfer.
type OnTokensTransferred interface {
	Plugin
	OnTokensTransferred(ctx context.Context, ev event.TokensTransferred) error
}

// OnPaymentMade is called after a payment-settled transfer.
type OnPaymentMade interface {
	Plugin
	OnPaymentMade(ctx context.Context, ev event.PaymentMade) error
}

// OnTokensBurned is called after equity is retired.
type OnTokensBurned interface {
	Plugin
	OnTokensBurned(ctx context.Context, ev event.TokensBurned) error
}

// ──────────────────────────────────────────────────
// Fundraising hooks
// ──────────────────────────────────────────────────

// OnFundraisingInitialized is called after the fundraising ledger is set up.
type OnFundraisingInitialized interface {
	Plugin
	OnFundraisingInitialized(ctx context.Context, ev event.FundraisingInitialized) error
}

// OnCampaignCreated is called after a campaign is opened.
type OnCampaignCreated interface {
	Plugin
	OnCampaignCreated(ctx context.Context, ev event.CampaignCreated) error
}

// OnInvestmentMade is called after an accepted investment.
type OnInvestmentMade interface {
	Plugin
	OnInvestmentMade(ctx context.Context, ev event.InvestmentMade) error
}

// OnFundsWithdrawn is called after a company collects proceeds.
type OnFundsWithdrawn interface {
	Plugin
	OnFundsWithdrawn(ctx context.Context, ev event.FundsWithdrawn) error
}

// OnCampaignClosed is called after a campaign is deactivated.
type OnCampaignClosed interface {
	Plugin
	OnCampaignClosed(ctx context.Context, ev event.CampaignClosed) error
}
