package extension

import (
	"time"

	equityledger "github.com/xraph/equityledger"
	"github.com/xraph/equityledger/plugin"
	"github.com/xraph/equityledger/store"
)

// Option configures the EquityLedger Forge extension.
type Option func(*Extension)

// WithStore sets the store shared by both ledger engines.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithLedgerOption passes an equityledger.Option through to both engines.
func WithLedgerOption(opt equityledger.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a ledger plugin on both engines.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, equityledger.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithEscrowAccount sets the account that holds campaign proceeds.
func WithEscrowAccount(account string) Option {
	return func(e *Extension) { e.config.EscrowAccount = account }
}

// WithHookTimeout bounds each plugin hook invocation.
func WithHookTimeout(d time.Duration) Option {
	return func(e *Extension) { e.config.HookTimeout = d }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
