// Package memory provides an in-memory store implementation.
// It is the reference implementation of store.Store, suitable for
// tests, development, and single-process deployments. All data is
// lost when the process exits.
package memory

import (
	"context"
	"sync"

	"github.com/xraph/equityledger"
	"github.com/xraph/equityledger/equity"
	"github.com/xraph/equityledger/fundraising"
	"github.com/xraph/equityledger/store"
	"github.com/xraph/equityledger/types"
)

// Store is a thread-safe in-memory store.
type Store struct {
	mu sync.RWMutex

	equityInit  bool
	company     *equity.Company
	balances    map[types.Address]types.Amount
	fundingInit bool
	settings    *fundraising.Settings
	campaigns   map[uint64]*fundraising.Campaign
	investments map[investmentKey]*fundraising.Investment
	rosters     map[uint64][]types.Address
	stats       *fundraising.Stats
}

type investmentKey struct {
	campaignID uint64
	investor   types.Address
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		balances:    make(map[types.Address]types.Amount),
		campaigns:   make(map[uint64]*fundraising.Campaign),
		investments: make(map[investmentKey]*fundraising.Investment),
		rosters:     make(map[uint64][]types.Address),
	}
}

// ── Equity methods ──

func (s *Store) EquityInitialized(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.equityInit, nil
}

func (s *Store) MarkEquityInitialized(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.equityInit = true
	return nil
}

func (s *Store) GetCompany(_ context.Context) (*equity.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.company == nil {
		return nil, equityledger.ErrCompanyNotFound
	}
	c := *s.company
	return &c, nil
}

func (s *Store) PutCompany(_ context.Context, c *equity.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	s.company = &cp
	return nil
}

func (s *Store) GetBalance(_ context.Context, account types.Address) (types.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[account], nil
}

func (s *Store) SetBalances(_ context.Context, balances ...equity.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range balances {
		s.balances[b.Account] = b.Amount
	}
	return nil
}

// ── Fundraising methods ──

func (s *Store) FundraisingInitialized(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fundingInit, nil
}

func (s *Store) MarkFundraisingInitialized(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fundingInit = true
	return nil
}

func (s *Store) GetSettings(_ context.Context) (*fundraising.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return nil, equityledger.ErrNotInitialized
	}
	cp := *s.settings
	return &cp, nil
}

func (s *Store) PutSettings(_ context.Context, set *fundraising.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *set
	s.settings = &cp
	return nil
}

func (s *Store) CreateCampaign(_ context.Context, c *fundraising.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.campaigns[c.ID]; exists {
		return equityledger.ErrCampaignExists
	}
	cp := *c
	s.campaigns[c.ID] = &cp
	return nil
}

func (s *Store) GetCampaign(_ context.Context, campaignID uint64) (*fundraising.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.campaigns[campaignID]
	if !ok {
		return nil, equityledger.ErrCampaignNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) UpdateCampaign(_ context.Context, c *fundraising.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.campaigns[c.ID]; !ok {
		return equityledger.ErrCampaignNotFound
	}
	cp := *c
	s.campaigns[c.ID] = &cp
	return nil
}

func (s *Store) GetInvestment(_ context.Context, campaignID uint64, investor types.Address) (*fundraising.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.investments[investmentKey{campaignID, investor}]
	if !ok {
		return nil, nil //nolint:nilnil // absence is not an error; callers default to a zero record
	}
	cp := *inv
	return &cp, nil
}

func (s *Store) PutInvestment(_ context.Context, inv *fundraising.Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *inv
	s.investments[investmentKey{inv.CampaignID, inv.Investor}] = &cp
	return nil
}

func (s *Store) AddInvestor(_ context.Context, campaignID uint64, investor types.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.rosters[campaignID] {
		if a == investor {
			return nil
		}
	}
	s.rosters[campaignID] = append(s.rosters[campaignID], investor)
	return nil
}

func (s *Store) ListInvestors(_ context.Context, campaignID uint64) ([]types.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roster := s.rosters[campaignID]
	out := make([]types.Address, len(roster))
	copy(out, roster)
	return out, nil
}

func (s *Store) CountInvestors(_ context.Context, campaignID uint64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rosters[campaignID]), nil
}

func (s *Store) HasInvestment(_ context.Context, campaignID uint64, investor types.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.rosters[campaignID] {
		if a == investor {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) GetStats(_ context.Context) (*fundraising.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stats == nil {
		return &fundraising.Stats{}, nil
	}
	cp := *s.stats
	return &cp, nil
}

func (s *Store) PutStats(_ context.Context, st *fundraising.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *st
	s.stats = &cp
	return nil
}

// ── Core methods ──

// Migrate is a no-op for the in-memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping always succeeds for the in-memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
