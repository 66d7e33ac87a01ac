package extension

import "time"

// Config holds the EquityLedger extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.equityledger" or
// "equityledger" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// EscrowAccount names the account that holds campaign proceeds
	// between investment and withdrawal (default: "fundraising-escrow").
	EscrowAccount string `json:"escrow_account" mapstructure:"escrow_account" yaml:"escrow_account"`

	// HookTimeout bounds each plugin hook invocation (default: 5s).
	HookTimeout time.Duration `json:"hook_timeout" mapstructure:"hook_timeout" yaml:"hook_timeout"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EscrowAccount: "fundraising-escrow",
		HookTimeout:   5 * time.Second,
	}
}
