// Package postgres provides a PostgreSQL-backed Store using the Grove ORM.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	equityledger "github.com/xraph/equityledger"
	"github.com/xraph/equityledger/equity"
	"github.com/xraph/equityledger/fundraising"
	ledgerstore "github.com/xraph/equityledger/store"
	"github.com/xraph/equityledger/types"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("equityledger/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("equityledger/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Equity Store ====================

func (s *Store) EquityInitialized(ctx context.Context) (bool, error) {
	return s.flagSet(ctx, flagEquityInitialized)
}

func (s *Store) MarkEquityInitialized(ctx context.Context) error {
	return s.setFlag(ctx, flagEquityInitialized)
}

func (s *Store) GetCompany(ctx context.Context) (*equity.Company, error) {
	m := new(companyModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", companySingletonID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, equityledger.ErrCompanyNotFound
		}
		return nil, err
	}
	return fromCompanyModel(m)
}

func (s *Store) PutCompany(ctx context.Context, c *equity.Company) error {
	m := toCompanyModel(c)
	_, err := s.pg.NewInsert(m).
		OnConflict("(id) DO UPDATE").
		Set("owner = EXCLUDED.owner").
		Set("name = EXCLUDED.name").
		Set("symbol = EXCLUDED.symbol").
		Set("total_supply = EXCLUDED.total_supply").
		Set("equity_percent = EXCLUDED.equity_percent").
		Set("description = EXCLUDED.description").
		Set("token_price = EXCLUDED.token_price").
		Set("target_amount = EXCLUDED.target_amount").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetBalance(ctx context.Context, account types.Address) (types.Amount, error) {
	m := new(balanceModel)
	err := s.pg.NewSelect(m).
		Where("account = ?", account.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return types.Amount{}, nil
		}
		return types.Amount{}, err
	}
	return types.ParseAmount(m.Amount)
}

func (s *Store) SetBalances(ctx context.Context, balances ...equity.Balance) error {
	for i := range balances {
		m := &balanceModel{
			Account:   balances[i].Account.String(),
			Amount:    balances[i].Amount.String(),
			UpdatedAt: now(),
		}
		_, err := s.pg.NewInsert(m).
			OnConflict("(account) DO UPDATE").
			Set("amount = EXCLUDED.amount").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

// ==================== Fundraising Store ====================

func (s *Store) FundraisingInitialized(ctx context.Context) (bool, error) {
	return s.flagSet(ctx, flagFundraisingInitialized)
}

func (s *Store) MarkFundraisingInitialized(ctx context.Context) error {
	return s.setFlag(ctx, flagFundraisingInitialized)
}

func (s *Store) GetSettings(ctx context.Context) (*fundraising.Settings, error) {
	m := new(settingsModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", settingsSingletonID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, equityledger.ErrNotInitialized
		}
		return nil, err
	}
	return &fundraising.Settings{
		Admin:        types.Address(m.Admin),
		PaymentAsset: types.Address(m.PaymentAsset),
	}, nil
}

func (s *Store) PutSettings(ctx context.Context, set *fundraising.Settings) error {
	m := &settingsModel{
		ID:           settingsSingletonID,
		Admin:        set.Admin.String(),
		PaymentAsset: set.PaymentAsset.String(),
	}
	_, err := s.pg.NewInsert(m).
		OnConflict("(id) DO UPDATE").
		Set("admin = EXCLUDED.admin").
		Set("payment_asset = EXCLUDED.payment_asset").
		Exec(ctx)
	return err
}

func (s *Store) CreateCampaign(ctx context.Context, c *fundraising.Campaign) error {
	exists := new(campaignModel)
	err := s.pg.NewSelect(exists).
		Where("id = ?", int64(c.ID)).
		Scan(ctx)
	if err == nil {
		return equityledger.ErrCampaignExists
	}
	if !isNoRows(err) {
		return err
	}

	m := toCampaignModel(c)
	_, err = s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetCampaign(ctx context.Context, campaignID uint64) (*fundraising.Campaign, error) {
	m := new(campaignModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", int64(campaignID)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, equityledger.ErrCampaignNotFound
		}
		return nil, err
	}
	return fromCampaignModel(m)
}

func (s *Store) UpdateCampaign(ctx context.Context, c *fundraising.Campaign) error {
	m := toCampaignModel(c)
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return equityledger.ErrCampaignNotFound
	}
	return nil
}

func (s *Store) GetInvestment(ctx context.Context, campaignID uint64, investor types.Address) (*fundraising.Investment, error) {
	m := new(investmentModel)
	err := s.pg.NewSelect(m).
		Where("campaign_id = ?", int64(campaignID)).
		Where("investor = ?", investor.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, nil //nolint:nilnil // absence is not an error here
		}
		return nil, err
	}
	return fromInvestmentModel(m)
}

func (s *Store) PutInvestment(ctx context.Context, inv *fundraising.Investment) error {
	m := toInvestmentModel(inv)
	m.UpdatedAt = now()
	_, err := s.pg.NewInsert(m).
		OnConflict("(campaign_id, investor) DO UPDATE").
		Set("receipt = EXCLUDED.receipt").
		Set("amount_invested = EXCLUDED.amount_invested").
		Set("tokens_received = EXCLUDED.tokens_received").
		Set("ts = EXCLUDED.ts").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) AddInvestor(ctx context.Context, campaignID uint64, investor types.Address) error {
	count, err := s.CountInvestors(ctx, campaignID)
	if err != nil {
		return err
	}
	m := &investorModel{
		CampaignID: int64(campaignID),
		Investor:   investor.String(),
		Position:   int64(count),
		CreatedAt:  now(),
	}
	_, err = s.pg.NewInsert(m).
		OnConflict("(campaign_id, investor) DO NOTHING").
		Exec(ctx)
	return err
}

func (s *Store) ListInvestors(ctx context.Context, campaignID uint64) ([]types.Address, error) {
	var models []investorModel
	err := s.pg.NewSelect(&models).
		Where("campaign_id = ?", int64(campaignID)).
		OrderExpr("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	investors := make([]types.Address, len(models))
	for i := range models {
		investors[i] = types.Address(models[i].Investor)
	}
	return investors, nil
}

func (s *Store) CountInvestors(ctx context.Context, campaignID uint64) (int, error) {
	var models []investorModel
	err := s.pg.NewSelect(&models).
		Where("campaign_id = ?", int64(campaignID)).
		Scan(ctx)
	if err != nil {
		return 0, err
	}
	return len(models), nil
}

func (s *Store) HasInvestment(ctx context.Context, campaignID uint64, investor types.Address) (bool, error) {
	m := new(investmentModel)
	err := s.pg.NewSelect(m).
		Where("campaign_id = ?", int64(campaignID)).
		Where("investor = ?", investor.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) GetStats(ctx context.Context) (*fundraising.Stats, error) {
	m := new(statsModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", statsSingletonID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return &fundraising.Stats{}, nil
		}
		return nil, err
	}
	return fromStatsModel(m)
}

func (s *Store) PutStats(ctx context.Context, st *fundraising.Stats) error {
	m := toStatsModel(st)
	_, err := s.pg.NewInsert(m).
		OnConflict("(id) DO UPDATE").
		Set("total_campaigns = EXCLUDED.total_campaigns").
		Set("active_campaigns = EXCLUDED.active_campaigns").
		Set("total_raised = EXCLUDED.total_raised").
		Exec(ctx)
	return err
}

// ==================== Helpers ====================

func (s *Store) flagSet(ctx context.Context, name string) (bool, error) {
	m := new(flagModel)
	err := s.pg.NewSelect(m).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) setFlag(ctx context.Context, name string) error {
	m := &flagModel{Name: name, CreatedAt: now()}
	_, err := s.pg.NewInsert(m).
		OnConflict("(name) DO NOTHING").
		Exec(ctx)
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func now() time.Time {
	return time.Now().UTC()
}
