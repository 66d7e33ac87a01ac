// Package mongo provides a MongoDB-backed Store using the Grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	equityledger "github.com/xraph/equityledger"
	"github.com/xraph/equityledger/equity"
	"github.com/xraph/equityledger/fundraising"
	ledgerstore "github.com/xraph/equityledger/store"
	"github.com/xraph/equityledger/types"
)

// Collection name constants.
const (
	colFlags       = "eqledger_flags"
	colCompany     = "eqledger_company"
	colBalances    = "eqledger_balances"
	colSettings    = "eqledger_settings"
	colCampaigns   = "eqledger_campaigns"
	colInvestments = "eqledger_investments"
	colInvestors   = "eqledger_investors"
	colStats       = "eqledger_stats"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all ledger collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("equityledger/mongo: migrate %s indexes: %w", col, err)
		}
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
	var m companyModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": companySingletonID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, equityledger.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("equityledger/mongo: get company: %w", err)
	}
	return fromCompanyModel(&m)
}

func (s *Store) PutCompany(ctx context.Context, c *equity.Company) error {
	m := toCompanyModel(c)
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":            m.ID,
			"owner":          m.Owner,
			"name":           m.Name,
			"symbol":         m.Symbol,
			"total_supply":   m.TotalSupply,
			"equity_percent": m.EquityPercent,
			"description":    m.Description,
			"token_price":    m.TokenPrice,
			"target_amount":  m.TargetAmount,
			"created_at":     m.CreatedAt,
			"updated_at":     m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("equityledger/mongo: put company: %w", err)
	}
	return nil
}

func (s *Store) GetBalance(ctx context.Context, account types.Address) (types.Amount, error) {
	var m balanceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": account.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return types.Amount{}, nil
		}
		return types.Amount{}, fmt.Errorf("equityledger/mongo: get balance: %w", err)
	}
	return types.ParseAmount(m.Amount)
}

func (s *Store) SetBalances(ctx context.Context, balances ...equity.Balance) error {
	for i := range balances {
		account := balances[i].Account.String()
		_, err := s.mdb.NewUpdate((*balanceModel)(nil)).
			Filter(bson.M{"_id": account}).
			SetUpdate(bson.M{"$set": bson.M{
				"_id":        account,
				"amount":     balances[i].Amount.String(),
				"updated_at": now(),
			}}).
			Upsert().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("equityledger/mongo: set balance: %w", err)
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
	var m settingsModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": settingsSingletonID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, equityledger.ErrNotInitialized
		}
		return nil, fmt.Errorf("equityledger/mongo: get settings: %w", err)
	}
	return &fundraising.Settings{
		Admin:        types.Address(m.Admin),
		PaymentAsset: types.Address(m.PaymentAsset),
	}, nil
}

func (s *Store) PutSettings(ctx context.Context, set *fundraising.Settings) error {
	_, err := s.mdb.NewUpdate((*settingsModel)(nil)).
		Filter(bson.M{"_id": settingsSingletonID}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":           settingsSingletonID,
			"admin":         set.Admin.String(),
			"payment_asset": set.PaymentAsset.String(),
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("equityledger/mongo: put settings: %w", err)
	}
	return nil
}

func (s *Store) CreateCampaign(ctx context.Context, c *fundraising.Campaign) error {
	var existing campaignModel
	err := s.mdb.NewFind(&existing).
		Filter(bson.M{"_id": int64(c.ID)}).
		Scan(ctx)
	if err == nil {
		return equityledger.ErrCampaignExists
	}
	if !isNoDocuments(err) {
		return fmt.Errorf("equityledger/mongo: create campaign: %w", err)
	}

	m := toCampaignModel(c)
	_, err = s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("equityledger/mongo: create campaign: %w", err)
	}
	return nil
}

func (s *Store) GetCampaign(ctx context.Context, campaignID uint64) (*fundraising.Campaign, error) {
	var m campaignModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": int64(campaignID)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, equityledger.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("equityledger/mongo: get campaign: %w", err)
	}
	return fromCampaignModel(&m)
}

func (s *Store) UpdateCampaign(ctx context.Context, c *fundraising.Campaign) error {
	m := toCampaignModel(c)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("equityledger/mongo: update campaign: %w", err)
	}
	if res.MatchedCount() == 0 {
		return equityledger.ErrCampaignNotFound
	}
	return nil
}

func (s *Store) GetInvestment(ctx context.Context, campaignID uint64, investor types.Address) (*fundraising.Investment, error) {
	var m investmentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": investmentKey(campaignID, investor)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil //nolint:nilnil // absence is not an error here
		}
		return nil, fmt.Errorf("equityledger/mongo: get investment: %w", err)
	}
	return fromInvestmentModel(&m)
}

func (s *Store) PutInvestment(ctx context.Context, inv *fundraising.Investment) error {
	m := toInvestmentModel(inv)
	m.UpdatedAt = now()

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Key}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":             m.Key,
			"campaign_id":     m.CampaignID,
			"investor":        m.Investor,
			"receipt":         m.Receipt,
			"amount_invested": m.AmountInvested,
			"tokens_received": m.TokensReceived,
			"ts":              m.Timestamp,
			"created_at":      m.CreatedAt,
			"updated_at":      m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("equityledger/mongo: put investment: %w", err)
	}
	return nil
}

func (s *Store) AddInvestor(ctx context.Context, campaignID uint64, investor types.Address) error {
	has, err := s.hasRosterEntry(ctx, campaignID, investor)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	count, err := s.CountInvestors(ctx, campaignID)
	if err != nil {
		return err
	}

	m := &investorModel{
		Key:        investmentKey(campaignID, investor),
		CampaignID: int64(campaignID),
		Investor:   investor.String(),
		Position:   int64(count),
		CreatedAt:  now(),
	}
	_, err = s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("equityledger/mongo: add investor: %w", err)
	}
	return nil
}

func (s *Store) ListInvestors(ctx context.Context, campaignID uint64) ([]types.Address, error) {
	var models []investorModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"campaign_id": int64(campaignID)}).
		Sort(bson.D{{Key: "position", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("equityledger/mongo: list investors: %w", err)
	}

	investors := make([]types.Address, len(models))
	for i := range models {
		investors[i] = types.Address(models[i].Investor)
	}
	return investors, nil
}

func (s *Store) CountInvestors(ctx context.Context, campaignID uint64) (int, error) {
	var models []investorModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"campaign_id": int64(campaignID)}).
		Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("equityledger/mongo: count investors: %w", err)
	}
	return len(models), nil
}

func (s *Store) HasInvestment(ctx context.Context, campaignID uint64, investor types.Address) (bool, error) {
	var m investmentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": investmentKey(campaignID, investor)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return false, nil
		}
		return false, fmt.Errorf("equityledger/mongo: has investment: %w", err)
	}
	return true, nil
}

func (s *Store) GetStats(ctx context.Context) (*fundraising.Stats, error) {
	var m statsModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": statsSingletonID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return &fundraising.Stats{}, nil
		}
		return nil, fmt.Errorf("equityledger/mongo: get stats: %w", err)
	}
	return fromStatsModel(&m)
}

func (s *Store) PutStats(ctx context.Context, st *fundraising.Stats) error {
	m := toStatsModel(st)
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":              m.ID,
			"total_campaigns":  m.TotalCampaigns,
			"active_campaigns": m.ActiveCampaigns,
			"total_raised":     m.TotalRaised,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("equityledger/mongo: put stats: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

func (s *Store) flagSet(ctx context.Context, name string) (bool, error) {
	var m flagModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return false, nil
		}
		return false, fmt.Errorf("equityledger/mongo: read flag: %w", err)
	}
	return true, nil
}

func (s *Store) setFlag(ctx context.Context, name string) error {
	_, err := s.mdb.NewUpdate((*flagModel)(nil)).
		Filter(bson.M{"_id": name}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":        name,
			"created_at": now(),
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("equityledger/mongo: set flag: %w", err)
	}
	return nil
}

func (s *Store) hasRosterEntry(ctx context.Context, campaignID uint64, investor types.Address) (bool, error) {
	var m investorModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": investmentKey(campaignID, investor)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return false, nil
		}
		return false, fmt.Errorf("equityledger/mongo: read roster: %w", err)
	}
	return true, nil
}

// investmentKey builds the composite document key for a campaign/investor pair.
func investmentKey(campaignID uint64, investor types.Address) string {
	return fmt.Sprintf("%d:%s", campaignID, investor)
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all ledger collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colFlags:    {},
		colCompany:  {},
		colBalances: {},
		colSettings: {},
		colCampaigns: {
			{Keys: bson.D{{Key: "company", Value: 1}}},
			{Keys: bson.D{{Key: "active", Value: 1}, {Key: "deadline", Value: 1}}},
		},
		colInvestments: {
			{
				Keys:    bson.D{{Key: "campaign_id", Value: 1}, {Key: "investor", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "investor", Value: 1}}},
		},
		colInvestors: {
			{Keys: bson.D{{Key: "campaign_id", Value: 1}, {Key: "position", Value: 1}}},
		},
		colStats: {},
	}
}
