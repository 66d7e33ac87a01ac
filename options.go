package equityledger

import (
	"log/slog"
	"time"

	"github.com/xraph/equityledger/asset"
	"github.com/xraph/equityledger/plugin"
	"github.com/xraph/equityledger/types"
)

// DefaultEscrowAccount is the fundraising ledger's own account when
// none is configured. Campaign proceeds accumulate here and equity
// allocations are transferred out of it.
const DefaultEscrowAccount = types.Address("fundraising-escrow")

// Option configures an Equity or Fundraising engine.
type Option func(*config)

type config struct {
	logger      *slog.Logger
	clock       Clock
	auth        Authorizer
	assets      *asset.Registry
	plugins     []plugin.Plugin
	hookTimeout time.Duration
	account     types.Address
}

func newConfig(opts ...Option) *config {
	c := &config{
		logger:  slog.Default(),
		clock:   SystemClock{},
		auth:    AuthorizeAll(),
		assets:  asset.NewRegistry(),
		account: DefaultEscrowAccount,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *config) registry() *plugin.Registry {
	r := plugin.NewRegistry().WithLogger(c.logger)
	if c.hookTimeout > 0 {
		r.WithHookTimeout(c.hookTimeout)
	}
	for _, p := range c.plugins {
		_ = r.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
	return r
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithClock sets the ledger clock. Defaults to the system clock.
func WithClock(clock Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithAuthorizer sets the caller-authorization oracle. Defaults to
// approving every account.
func WithAuthorizer(a Authorizer) Option {
	return func(c *config) {
		c.auth = a
	}
}

// WithAssets sets the asset registry used to resolve payment and
// equity asset references.
func WithAssets(r *asset.Registry) Option {
	return func(c *config) {
		c.assets = r
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(c *config) {
		c.plugins = append(c.plugins, p)
	}
}

// WithHookTimeout bounds a single plugin hook invocation.
func WithHookTimeout(d time.Duration) Option {
	return func(c *config) {
		c.hookTimeout = d
	}
}

// WithEscrowAccount sets the fundraising ledger's own account.
func WithEscrowAccount(account types.Address) Option {
	return func(c *config) {
		c.account = account
	}
}
