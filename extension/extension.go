// Package extension provides the Forge extension adapter for EquityLedger.
//
// It implements the forge.Extension interface to integrate EquityLedger
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.equityledger" or
// "equityledger" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	equityledger "github.com/xraph/equityledger"
	"github.com/xraph/equityledger/store"
	"github.com/xraph/equityledger/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "equityledger"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Tokenized equity and fundraising campaign ledgers"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts EquityLedger as a Forge extension. It wires both
// engines over one shared store and registers them in the DI container.
type Extension struct {
	*forge.BaseExtension

	config      Config
	equity      *equityledger.Equity
	fundraising *equityledger.Fundraising
	store       store.Store
	ledgerOpts  []equityledger.Option
}

// New creates a new EquityLedger Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Equity returns the underlying equity engine.
// This is nil until Register is called.
func (e *Extension) Equity() *equityledger.Equity { return e.equity }

// Fundraising returns the underlying fundraising engine.
// This is nil until Register is called.
func (e *Extension) Fundraising() *equityledger.Fundraising { return e.fundraising }

// Register implements [forge.Extension]. It loads configuration,
// initializes both ledger engines, and registers them in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	// Build engine options from resolved config.
	opts := e.buildLedgerOpts()

	e.equity = equityledger.NewEquity(e.store, opts...)
	e.fundraising = equityledger.NewFundraising(e.store, opts...)

	if err := vessel.Provide(fapp.Container(), func() (*equityledger.Equity, error) {
		return e.equity, nil
	}); err != nil {
		return err
	}

	return vessel.Provide(fapp.Container(), func() (*equityledger.Fundraising, error) {
		return e.fundraising, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.equity == nil || e.fundraising == nil {
		return errors.New("equityledger: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.equity.Start(ctx); err != nil {
			return err
		}
		if err := e.fundraising.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	var firstErr error
	if e.fundraising != nil {
		if err := e.fundraising.Stop(); err != nil {
			firstErr = err
		}
	}
	if e.equity != nil {
		if err := e.equity.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.MarkStopped()
	return firstErr
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("equityledger: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildLedgerOpts constructs equityledger.Option values from the resolved config.
func (e *Extension) buildLedgerOpts() []equityledger.Option {
	opts := make([]equityledger.Option, 0, len(e.ledgerOpts)+2)

	if e.config.HookTimeout > 0 {
		opts = append(opts, equityledger.WithHookTimeout(e.config.HookTimeout))
	}
	if e.config.EscrowAccount != "" {
		opts = append(opts, equityledger.WithEscrowAccount(equityledger.Address(e.config.EscrowAccount)))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.ledgerOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("equityledger: configuration is required but not found in config files; " +
				"ensure 'extensions.equityledger' or 'equityledger' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("equityledger: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("escrow_account", e.config.EscrowAccount),
		forge.F("hook_timeout", e.config.HookTimeout),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.equityledger" first (namespaced pattern).
	if cm.IsSet("extensions.equityledger") {
		if err := cm.Bind("extensions.equityledger", &cfg); err == nil {
			e.Logger().Debug("equityledger: loaded config from file",
				forge.F("key", "extensions.equityledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("equityledger: failed to bind extensions.equityledger config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "equityledger" key.
	if cm.IsSet("equityledger") {
		if err := cm.Bind("equityledger", &cfg); err == nil {
			e.Logger().Debug("equityledger: loaded config from file",
				forge.F("key", "equityledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("equityledger: failed to bind equityledger config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.EscrowAccount == "" {
		cfg.EscrowAccount = defaults.EscrowAccount
	}
	if cfg.HookTimeout == 0 {
		cfg.HookTimeout = defaults.HookTimeout
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.EscrowAccount == "" && programmaticConfig.EscrowAccount != "" {
		yamlConfig.EscrowAccount = programmaticConfig.EscrowAccount
	}

	// Duration fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.HookTimeout == 0 && programmaticConfig.HookTimeout != 0 {
		yamlConfig.HookTimeout = programmaticConfig.HookTimeout
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
