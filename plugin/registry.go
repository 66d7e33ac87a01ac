package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/equityledger/event"
)

// DefaultHookTimeout bounds a single plugin hook invocation.
const DefaultHookTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu          sync.RWMutex
	plugins     []Plugin
	logger      *slog.Logger
	hookTimeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit                   []OnInit
	onShutdown               []OnShutdown
	onCompanyInitialized     []OnCompanyInitialized
	onTokensMinted           []OnTokensMinted
	onTokensTransferred      []OnTokensTransferred
	onPaymentMade            []OnPaymentMade
	onTokensBurned           []OnTokensBurned
	onFundraisingInitialized []OnFundraisingInitialized
	onCampaignCreated        []OnCampaignCreated
	onInvestmentMade         []OnInvestmentMade
	onFundsWithdrawn         []OnFundsWithdrawn
	onCampaignClosed         []OnCampaignClosed
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:      slog.Default(),
		hookTimeout: DefaultHookTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithHookTimeout sets the per-hook invocation timeout.
func (r *Registry) WithHookTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.hookTimeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnCompanyInitialized); ok {
		r.onCompanyInitialized = append(r.onCompanyInitialized, v)
	}
	if v, ok := p.(OnTokensMinted); ok {
		r.onTokensMinted = append(r.onTokensMinted, v)
	}
	if v, ok := p.(OnTokensTransferred); ok {
		r.onTokensTransferred = append(r.onTokensTransferred, v)
	}
	if v, ok := p.(OnPaymentMade); ok {
		r.onPaymentMade = append(r.onPaymentMade, v)
	}
	if v, ok := p.(OnTokensBurned); ok {
		r.onTokensBurned = append(r.onTokensBurned, v)
	}
	if v, ok := p.(OnFundraisingInitialized); ok {
		r.onFundraisingInitialized = append(r.onFundraisingInitialized, v)
	}
	if v, ok := p.(OnCampaignCreated); ok {
		r.onCampaignCreated = append(r.onCampaignCreated, v)
	}
	if v, ok := p.(OnInvestmentMade); ok {
		r.onInvestmentMade = append(r.onInvestmentMade, v)
	}
	if v, ok := p.(OnFundsWithdrawn); ok {
		r.onFundsWithdrawn = append(r.onFundsWithdrawn, v)
	}
	if v, ok := p.(OnCampaignClosed); ok {
		r.onCampaignClosed = append(r.onCampaignClosed, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnCompanyInitialized)(nil)).Elem(), "OnCompanyInitialized")
	checkInterface(reflect.TypeOf((*OnTokensMinted)(nil)).Elem(), "OnTokensMinted")
	checkInterface(reflect.TypeOf((*OnTokensTransferred)(nil)).Elem(), "OnTokensTransferred")
	checkInterface(reflect.TypeOf((*OnPaymentMade)(nil)).Elem(), "OnPaymentMade")
	checkInterface(reflect.TypeOf((*OnTokensBurned)(nil)).Elem(), "OnTokensBurned")
	checkInterface(reflect.TypeOf((*OnFundraisingInitialized)(nil)).Elem(), "OnFundraisingInitialized")
	checkInterface(reflect.TypeOf((*OnCampaignCreated)(nil)).Elem(), "OnCampaignCreated")
	checkInterface(reflect.TypeOf((*OnInvestmentMade)(nil)).Elem(), "OnInvestmentMade")
	checkInterface(reflect.TypeOf((*OnFundsWithdrawn)(nil)).Elem(), "OnFundsWithdrawn")
	checkInterface(reflect.TypeOf((*OnCampaignClosed)(nil)).Elem(), "OnCampaignClosed")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, ledger)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitCompanyInitialized emits an equity setup event.
func (r *Registry) EmitCompanyInitialized(ctx context.Context, ev event.CompanyInitialized) {
	r.mu.RLock()
	plugins := r.onCompanyInitialized
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCompanyInitialized(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnCompanyInitialized failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitTokensMinted emits a primary sale event.
func (r *Registry) EmitTokensMinted(ctx context.Context, ev event.TokensMinted) {
	r.mu.RLock()
	plugins := r.onTokensMinted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTokensMinted(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnTokensMinted failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitTokensTransferred emits a transfer event.
func (r *Registry) EmitTokensTransferred(ctx context.Context, ev event.TokensTransferred) {
	r.mu.RLock()
	plugins := r.onTokensTransferred
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTokensTransferred(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnTokensTransferred failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitPaymentMade emits a payment settlement event.
func (r *Registry) EmitPaymentMade(ctx context.Context, ev event.PaymentMade) {
	r.mu.RLock()
	plugins := r.onPaymentMade
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentMade(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentMade failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitTokensBurned emits a burn event.
func (r *Registry) EmitTokensBurned(ctx context.Context, ev event.TokensBurned) {
	r.mu.RLock()
	plugins := r.onTokensBurned
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTokensBurned(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnTokensBurned failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitFundraisingInitialized emits a fundraising setup event.
func (r *Registry) EmitFundraisingInitialized(ctx context.Context, ev event.FundraisingInitialized) {
	r.mu.RLock()
	plugins := r.onFundraisingInitialized
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnFundraisingInitialized(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnFundraisingInitialized failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitCampaignCreated emits a campaign creation event.
func (r *Registry) EmitCampaignCreated(ctx context.Context, ev event.CampaignCreated) {
	r.mu.RLock()
	plugins := r.onCampaignCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCampaignCreated(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnCampaignCreated failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitInvestmentMade emits an investment event.
func (r *Registry) EmitInvestmentMade(ctx context.Context, ev event.InvestmentMade) {
	r.mu.RLock()
	plugins := r.onInvestmentMade
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvestmentMade(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnInvestmentMade failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitFundsWithdrawn emits a withdrawal event.
func (r *Registry) EmitFundsWithdrawn(ctx context.Context, ev event.FundsWithdrawn) {
	r.mu.RLock()
	plugins := r.onFundsWithdrawn
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnFundsWithdrawn(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnFundsWithdrawn failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitCampaignClosed emits a campaign close event.
func (r *Registry) EmitCampaignClosed(ctx context.Context, ev event.CampaignClosed) {
	r.mu.RLock()
	plugins := r.onCampaignClosed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCampaignClosed(ctx, ev)
		}); err != nil {
			r.logger.Warn("plugin OnCampaignClosed failed", "plugin", p.Name(), "error", err)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins must never block a ledger operation.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(r.hookTimeout):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
