// Package observability provides a metrics extension for EquityLedger
// that records lifecycle event counts via a MetricFactory.
package observability

import (
	"context"
	"math/big"

	"github.com/xraph/equityledger/event"
	"github.com/xraph/equityledger/plugin"
	"github.com/xraph/equityledger/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                   = (*MetricsExtension)(nil)
	_ plugin.OnInit                   = (*MetricsExtension)(nil)
	_ plugin.OnCompanyInitialized     = (*MetricsExtension)(nil)
	_ plugin.OnTokensMinted           = (*MetricsExtension)(nil)
	_ plugin.OnTokensTransferred      = (*MetricsExtension)(nil)
	_ plugin.OnPaymentMade            = (*MetricsExtension)(nil)
	_ plugin.OnTokensBurned           = (*MetricsExtension)(nil)
	_ plugin.OnFundraisingInitialized = (*MetricsExtension)(nil)
	_ plugin.OnCampaignCreated        = (*MetricsExtension)(nil)
	_ plugin.OnInvestmentMade         = (*MetricsExtension)(nil)
	_ plugin.OnFundsWithdrawn         = (*MetricsExtension)(nil)
	_ plugin.OnCampaignClosed         = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as an EquityLedger plugin to automatically track ledger metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Equity metrics
	CompanyInitialized Counter
	TokensMinted       Counter
	TokensTransferred  Counter
	PaymentsMade       Counter
	TokensBurned       Counter
	MintVolume         Histogram
	TransferVolume     Histogram
	BurnVolume         Histogram

	// Fundraising metrics
	FundraisingInitialized Counter
	CampaignsCreated       Counter
	InvestmentsMade        Counter
	FundsWithdrawn         Counter
	CampaignsClosed        Counter
	InvestmentVolume       Histogram
	WithdrawalVolume       Histogram

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Equity metrics
		CompanyInitialized: factory.Counter("equityledger.company.initialized"),
		TokensMinted:       factory.Counter("equityledger.token.minted"),
		TokensTransferred:  factory.Counter("equityledger.token.transferred"),
		PaymentsMade:       factory.Counter("equityledger.payment.made"),
		TokensBurned:       factory.Counter("equityledger.token.burned"),
		MintVolume:         factory.Histogram("equityledger.token.mint_volume"),
		TransferVolume:     factory.Histogram("equityledger.token.transfer_volume"),
		BurnVolume:         factory.Histogram("equityledger.token.burn_volume"),

		// Fundraising metrics
		FundraisingInitialized: factory.Counter("equityledger.fundraising.initialized"),
		CampaignsCreated:       factory.Counter("equityledger.campaign.created"),
		InvestmentsMade:        factory.Counter("equityledger.campaign.invested"),
		FundsWithdrawn:         factory.Counter("equityledger.campaign.withdrawn"),
		CampaignsClosed:        factory.Counter("equityledger.campaign.closed"),
		InvestmentVolume:       factory.Histogram("equityledger.campaign.investment_volume"),
		WithdrawalVolume:       factory.Histogram("equityledger.campaign.withdrawal_volume"),

		// Error metrics
		StoreErrors:  factory.Counter("equityledger.store.errors"),
		PluginErrors: factory.Counter("equityledger.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Equity lifecycle hooks
// ──────────────────────────────────────────────────

// OnCompanyInitialized implements plugin.OnCompanyInitialized.
func (m *MetricsExtension) OnCompanyInitialized(_ context.Context, _ event.CompanyInitialized) error {
	m.CompanyInitialized.Inc()
	return nil
}

// OnTokensMinted implements plugin.OnTokensMinted.
func (m *MetricsExtension) OnTokensMinted(_ context.Context, ev event.TokensMinted) error {
	m.TokensMinted.Inc()
	m.MintVolume.Observe(amountValue(ev.Amount))
	return nil
}

// OnTokensTransferred implements plugin.OnTokensTransferred.
func (m *MetricsExtension) OnTokensTransferred(_ context.Context, ev event.TokensTransferred) error {
	m.TokensTransferred.Inc()
	m.TransferVolume.Observe(amountValue(ev.Amount))
	return nil
}

// OnPaymentMade implements plugin.OnPaymentMade.
func (m *MetricsExtension) OnPaymentMade(_ context.Context, _ event.PaymentMade) error {
	m.PaymentsMade.Inc()
	return nil
}

// OnTokensBurned implements plugin.OnTokensBurned.
func (m *MetricsExtension) OnTokensBurned(_ context.Context, ev event.TokensBurned) error {
	m.TokensBurned.Inc()
	m.BurnVolume.Observe(amountValue(ev.Amount))
	return nil
}

// ──────────────────────────────────────────────────
// Fundraising lifecycle hooks
// ──────────────────────────────────────────────────

// OnFundraisingInitialized implements plugin.OnFundraisingInitialized.
func (m *MetricsExtension) OnFundraisingInitialized(_ context.Context, _ event.FundraisingInitialized) error {
	m.FundraisingInitialized.Inc()
	return nil
}

// OnCampaignCreated implements plugin.OnCampaignCreated.
func (m *MetricsExtension) OnCampaignCreated(_ context.Context, _ event.CampaignCreated) error {
	m.CampaignsCreated.Inc()
	return nil
}

// OnInvestmentMade implements plugin.OnInvestmentMade.
func (m *MetricsExtension) OnInvestmentMade(_ context.Context, ev event.InvestmentMade) error {
	m.InvestmentsMade.Inc()
	m.InvestmentVolume.Observe(amountValue(ev.Amount))
	return nil
}

// OnFundsWithdrawn implements plugin.OnFundsWithdrawn.
func (m *MetricsExtension) OnFundsWithdrawn(_ context.Context, ev event.FundsWithdrawn) error {
	m.FundsWithdrawn.Inc()
	m.WithdrawalVolume.Observe(amountValue(ev.Amount))
	return nil
}

// OnCampaignClosed implements plugin.OnCampaignClosed.
func (m *MetricsExtension) OnCampaignClosed(_ context.Context, _ event.CampaignClosed) error {
	m.CampaignsClosed.Inc()
	return nil
}

// amountValue converts an amount to a float64 observation. Precision
// loss past 2^53 is acceptable for histogram purposes.
func amountValue(a types.Amount) float64 {
	f, _ := new(big.Float).SetInt(a.Big()).Float64()
	return f
}
