// Package audithook bridges EquityLedger lifecycle events to an audit
// trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/xraph/equityledger/event"
	"github.com/xraph/equityledger/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                   = (*Extension)(nil)
	_ plugin.OnCompanyInitialized     = (*Extension)(nil)
	_ plugin.OnTokensMinted           = (*Extension)(nil)
	_ plugin.OnTokensTransferred      = (*Extension)(nil)
	_ plugin.OnPaymentMade            = (*Extension)(nil)
	_ plugin.OnTokensBurned           = (*Extension)(nil)
	_ plugin.OnFundraisingInitialized = (*Extension)(nil)
	_ plugin.OnCampaignCreated        = (*Extension)(nil)
	_ plugin.OnInvestmentMade         = (*Extension)(nil)
	_ plugin.OnFundsWithdrawn         = (*Extension)(nil)
	_ plugin.OnCampaignClosed         = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges EquityLedger lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Equity lifecycle hooks
// ──────────────────────────────────────────────────

// OnCompanyInitialized implements plugin.OnCompanyInitialized.
func (e *Extension) OnCompanyInitialized(ctx context.Context, ev event.CompanyInitialized) error {
	return e.record(ctx, ActionCompanyInitialized, SeverityInfo, OutcomeSuccess,
		ResourceCompany, ev.Company.String(), CategoryEquity, nil,
		"company", ev.Company.String(),
		"symbol", ev.Symbol,
		"total_supply", ev.TotalSupply.String(),
	)
}

// OnTokensMinted implements plugin.OnTokensMinted.
func (e *Extension) OnTokensMinted(ctx context.Context, ev event.TokensMinted) error {
	return e.record(ctx, ActionTokensMinted, SeverityInfo, OutcomeSuccess,
		ResourceToken, ev.ID.String(), CategoryEquity, nil,
		"company", ev.Company.String(),
		"to", ev.To.String(),
		"amount", ev.Amount.String(),
	)
}

// OnTokensTransferred implements plugin.OnTokensTransferred.
func (e *Extension) OnTokensTransferred(ctx context.Context, ev event.TokensTransferred) error {
	return e.record(ctx, ActionTokensTransferred, SeverityInfo, OutcomeSuccess,
		ResourceToken, ev.ID.String(), CategoryEquity, nil,
		"from", ev.From.String(),
		"to", ev.To.String(),
		"amount", ev.Amount.String(),
	)
}

// OnPaymentMade implements plugin.OnPaymentMade.
func (e *Extension) OnPaymentMade(ctx context.Context, ev event.PaymentMade) error {
	return e.record(ctx, ActionPaymentMade, SeverityInfo, OutcomeSuccess,
		ResourcePayment, ev.ID.String(), CategoryPayment, nil,
		"buyer", ev.Buyer.String(),
		"seller", ev.Seller.String(),
		"asset", ev.Asset.String(),
		"amount", ev.Amount.String(),
	)
}

// OnTokensBurned implements plugin.OnTokensBurned.
func (e *Extension) OnTokensBurned(ctx context.Context, ev event.TokensBurned) error {
	return e.record(ctx, ActionTokensBurned, SeverityWarning, OutcomeSuccess,
		ResourceToken, ev.ID.String(), CategoryEquity, nil,
		"from", ev.From.String(),
		"amount", ev.Amount.String(),
	)
}

// ──────────────────────────────────────────────────
// Fundraising lifecycle hooks
// ──────────────────────────────────────────────────

// OnFundraisingInitialized implements plugin.OnFundraisingInitialized.
func (e *Extension) OnFundraisingInitialized(ctx context.Context, ev event.FundraisingInitialized) error {
	return e.record(ctx, ActionFundraisingInitialized, SeverityInfo, OutcomeSuccess,
		ResourceCampaign, "", CategoryFundraising, nil,
		"admin", ev.Admin.String(),
		"payment_asset", ev.PaymentAsset.String(),
	)
}

// OnCampaignCreated implements plugin.OnCampaignCreated.
func (e *Extension) OnCampaignCreated(ctx context.Context, ev event.CampaignCreated) error {
	return e.record(ctx, ActionCampaignCreated, SeverityInfo, OutcomeSuccess,
		ResourceCampaign, campaignResourceID(ev.CampaignID), CategoryFundraising, nil,
		"campaign_id", ev.CampaignID,
		"company", ev.Company.String(),
		"target", ev.Target.String(),
	)
}

// OnInvestmentMade implements plugin.OnInvestmentMade.
func (e *Extension) OnInvestmentMade(ctx context.Context, ev event.InvestmentMade) error {
	return e.record(ctx, ActionInvestmentMade, SeverityInfo, OutcomeSuccess,
		ResourceInvestment, ev.Receipt.String(), CategoryFundraising, nil,
		"campaign_id", ev.CampaignID,
		"investor", ev.Investor.String(),
		"amount", ev.Amount.String(),
		"tokens", ev.Tokens.String(),
	)
}

// OnFundsWithdrawn implements plugin.OnFundsWithdrawn.
func (e *Extension) OnFundsWithdrawn(ctx context.Context, ev event.FundsWithdrawn) error {
	return e.record(ctx, ActionFundsWithdrawn, SeverityInfo, OutcomeSuccess,
		ResourceCampaign, campaignResourceID(ev.CampaignID), CategoryFundraising, nil,
		"campaign_id", ev.CampaignID,
		"company", ev.Company.String(),
		"amount", ev.Amount.String(),
	)
}

// OnCampaignClosed implements plugin.OnCampaignClosed.
func (e *Extension) OnCampaignClosed(ctx context.Context, ev event.CampaignClosed) error {
	return e.record(ctx, ActionCampaignClosed, SeverityInfo, OutcomeSuccess,
		ResourceCampaign, campaignResourceID(ev.CampaignID), CategoryFundraising, nil,
		"campaign_id", ev.CampaignID,
		"closed_by", ev.ClosedBy.String(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}

func campaignResourceID(campaignID uint64) string {
	return strconv.FormatUint(campaignID, 10)
}
