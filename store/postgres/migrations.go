package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the EquityLedger store.
var Migrations = migrate.NewGroup("equityledger")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_eqledger_flags",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS eqledger_flags (
    name       TEXT PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS eqledger_flags`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_eqledger_company",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS eqledger_company (
    id             BIGINT PRIMARY KEY CHECK (id = 1),
    owner          TEXT NOT NULL DEFAULT '',
    name           TEXT NOT NULL DEFAULT '',
    symbol         TEXT NOT NULL DEFAULT '',
    total_supply   TEXT NOT NULL DEFAULT '0',
    equity_percent BIGINT NOT NULL DEFAULT 0,
    description    TEXT NOT NULL DEFAULT '',
    token_price    TEXT NOT NULL DEFAULT '0',
    target_amount  TEXT NOT NULL DEFAULT '0',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS eqledger_company`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_eqledger_balances",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS eqledger_balances (
    account    TEXT PRIMARY KEY,
    amount     TEXT NOT NULL DEFAULT '0',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS eqledger_balances`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_eqledger_settings",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS eqledger_settings (
    id            BIGINT PRIMARY KEY CHECK (id = 1),
    admin         TEXT NOT NULL DEFAULT '',
    payment_asset TEXT NOT NULL DEFAULT ''
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS eqledger_settings`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_eqledger_campaigns",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS eqledger_campaigns (
    id              BIGINT PRIMARY KEY,
    company         TEXT NOT NULL DEFAULT '',
    equity_asset    TEXT NOT NULL DEFAULT '',
    target          TEXT NOT NULL DEFAULT '0',
    price_per_token TEXT NOT NULL DEFAULT '0',
    raised          TEXT NOT NULL DEFAULT '0',
    active          BOOLEAN NOT NULL DEFAULT FALSE,
    deadline        BIGINT NOT NULL DEFAULT 0,
    min_investment  TEXT NOT NULL DEFAULT '0',
    max_investment  TEXT NOT NULL DEFAULT '0',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_eqledger_campaigns_company ON eqledger_campaigns (company);
CREATE INDEX IF NOT EXISTS idx_eqledger_campaigns_active ON eqledger_campaigns (active, deadline);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS eqledger_campaigns`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_eqledger_investments",
			Version: "20240101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS eqledger_investments (
    campaign_id     BIGINT NOT NULL,
    investor        TEXT NOT NULL,
    receipt         TEXT NOT NULL DEFAULT '',
    amount_invested TEXT NOT NULL DEFAULT '0',
    tokens_received TEXT NOT NULL DEFAULT '0',
    ts              BIGINT NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (campaign_id, investor)
);

CREATE INDEX IF NOT EXISTS idx_eqledger_investments_investor ON eqledger_investments (investor);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS eqledger_investments`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_eqledger_investors",
			Version: "20240101000007",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS eqledger_investors (
    campaign_id BIGINT NOT NULL,
    investor    TEXT NOT NULL,
    position    BIGINT NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (campaign_id, investor)
);

CREATE INDEX IF NOT EXISTS idx_eqledger_investors_order ON eqledger_investors (campaign_id, position);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS eqledger_investors`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_eqledger_stats",
			Version: "20240101000008",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS eqledger_stats (
    id               BIGINT PRIMARY KEY CHECK (id = 1),
    total_campaigns  BIGINT NOT NULL DEFAULT 0,
    active_campaigns BIGINT NOT NULL DEFAULT 0,
    total_raised     TEXT NOT NULL DEFAULT '0'
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS eqledger_stats`)
				return err
			},
		},
	)
}
