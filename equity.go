package equityledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/xraph/equityledger/asset"
	"github.com/xraph/equityledger/equity"
	"github.com/xraph/equityledger/event"
	"github.com/xraph/equityledger/id"
	"github.com/xraph/equityledger/plugin"
	"github.com/xraph/equityledger/store"
	"github.com/xraph/equityledger/types"
)

// Equity is the equity ledger engine. It tracks ownership of one
// fixed-supply tokenized asset: immutable company metadata plus
// per-holder balances whose sum always equals the total supply
// (burns shrink both together).
//
// State-changing operations are serialized behind an internal mutex
// and follow a checked-then-apply discipline: every validation and
// external transfer happens before the first store write.
type Equity struct {
	store   store.Store
	assets  *asset.Registry
	plugins *plugin.Registry
	logger  *slog.Logger
	clock   Clock
	auth    Authorizer

	mu sync.Mutex
}

// NewEquity creates an equity ledger engine on the given store.
func NewEquity(s store.Store, opts ...Option) *Equity {
	cfg := newConfig(opts...)
	return &Equity{
		store:   s,
		assets:  cfg.assets,
		plugins: cfg.registry(),
		logger:  cfg.logger,
		clock:   cfg.clock,
		auth:    cfg.auth,
	}
}

// Start migrates the store and initializes plugins.
func (e *Equity) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}
	e.plugins.EmitInit(ctx, e)
	e.logger.Info("equity ledger started")
	return nil
}

// Stop shuts the engine down and notifies plugins.
func (e *Equity) Stop() error {
	e.plugins.EmitShutdown(context.Background())
	e.logger.Info("equity ledger stopped")
	return nil
}

// Plugins exposes the plugin registry.
func (e *Equity) Plugins() *plugin.Registry { return e.plugins }

// Assets exposes the asset registry.
func (e *Equity) Assets() *asset.Registry { return e.assets }

// InitCompany performs the one-time equity ledger setup: it persists
// the company record, credits the owner with the full supply, and sets
// the initialization sentinel. A second call fails with
// ErrAlreadyInitialized.
func (e *Equity) InitCompany(ctx context.Context, p equity.InitParams) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	initialized, err := e.store.EquityInitialized(ctx)
	if err != nil {
		return err
	}
	if initialized {
		return ErrAlreadyInitialized
	}

	if !p.TotalSupply.IsPositive() {
		return fmt.Errorf("%w: total supply %s", ErrInvalidAmount, p.TotalSupply)
	}
	if p.Owner.IsZero() {
		return ValidationError{Field: "owner", Message: "must not be empty"}
	}

	company := &equity.Company{
		Owner:         p.Owner,
		Name:          p.Name,
		Symbol:        p.Symbol,
		TotalSupply:   p.TotalSupply,
		EquityPercent: p.EquityPercent,
		Description:   p.Description,
		TokenPrice:    p.TokenPrice,
		TargetAmount:  p.TargetAmount,
		Entity:        types.NewEntity(),
	}

	if err := e.store.PutCompany(ctx, company); err != nil {
		return err
	}
	if err := e.store.SetBalances(ctx, equity.Balance{Account: p.Owner, Amount: p.TotalSupply}); err != nil {
		return err
	}
	if err := e.store.MarkEquityInitialized(ctx); err != nil {
		return err
	}

	e.logger.Info("company initialized",
		"owner", p.Owner,
		"symbol", p.Symbol,
		"total_supply", p.TotalSupply,
	)

	e.plugins.EmitCompanyInitialized(ctx, event.CompanyInitialized{
		ID:          id.NewEventID(),
		Company:     p.Owner,
		Name:        p.Name,
		Symbol:      p.Symbol,
		TotalSupply: p.TotalSupply,
		Timestamp:   e.clock.Now(),
	})

	return nil
}

// Mint sells tokens from the owner's allocation to a buyer at the
// company's fixed token price, settling payment through the given
// payment asset. Supply is not inflated; this is a primary sale.
// The buyer must have authorized the call.
func (e *Equity) Mint(ctx context.Context, to types.Address, amount types.Amount, paymentAsset types.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.auth.Authorized(ctx, to) {
		return fmt.Errorf("%w: buyer %s", ErrUnauthorized, to)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	company, err := e.store.GetCompany(ctx)
	if err != nil {
		return err
	}

	ownerBal, err := e.store.GetBalance(ctx, company.Owner)
	if err != nil {
		return err
	}
	if ownerBal.LessThan(amount) {
		return fmt.Errorf("%w: owner holds %s, sale of %s", ErrInsufficientBalance, ownerBal, amount)
	}

	payment, err := amount.Mul(company.TokenPrice)
	if err != nil {
		return fmt.Errorf("%w: payment amount: %v", ErrInvalidAmount, err)
	}

	client, err := e.assets.Resolve(paymentAsset)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, paymentAsset)
	}
	if err := client.Transfer(ctx, to, company.Owner, payment); err != nil {
		return fmt.Errorf("%w: payment: %v", ErrTransferFailed, err)
	}

	if err := e.applyMove(ctx, company.Owner, to, amount, ownerBal); err != nil {
		return err
	}

	e.logger.Info("tokens minted",
		"to", to,
		"amount", amount,
		"payment", payment,
	)

	e.plugins.EmitTokensMinted(ctx, event.TokensMinted{
		ID:        id.NewEventID(),
		Company:   company.Owner,
		To:        to,
		Amount:    amount,
		Timestamp: e.clock.Now(),
	})

	return nil
}

// Transfer moves tokens between holders. The sender must have
// authorized the call.
func (e *Equity) Transfer(ctx context.Context, from, to types.Address, amount types.Amount) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.auth.Authorized(ctx, from) {
		return fmt.Errorf("%w: sender %s", ErrUnauthorized, from)
	}

	if err := e.move(ctx, from, to, amount); err != nil {
		return err
	}

	e.logger.Info("tokens transferred", "from", from, "to", to, "amount", amount)

	e.plugins.EmitTokensTransferred(ctx, event.TokensTransferred{
		ID:        id.NewEventID(),
		From:      from,
		To:        to,
		Amount:    amount,
		Timestamp: e.clock.Now(),
	})

	return nil
}

// TransferWithPayment is a buyer-initiated resale: tokens move from
// seller to buyer while payment moves buyer to seller through the
// given payment asset at the agreed per-token price. The buyer must
// have authorized the call.
func (e *Equity) TransferWithPayment(ctx context.Context, from, to types.Address, amount, pricePerToken types.Amount, paymentAsset types.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.auth.Authorized(ctx, to) {
		return fmt.Errorf("%w: buyer %s", ErrUnauthorized, to)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	fromBal, err := e.store.GetBalance(ctx, from)
	if err != nil {
		return err
	}
	if fromBal.LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s, sale of %s", ErrInsufficientBalance, from, fromBal, amount)
	}

	payment, err := amount.Mul(pricePerToken)
	if err != nil {
		return fmt.Errorf("%w: payment amount: %v", ErrInvalidAmount, err)
	}

	client, err := e.assets.Resolve(paymentAsset)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, paymentAsset)
	}
	if err := client.Transfer(ctx, to, from, payment); err != nil {
		return fmt.Errorf("%w: payment: %v", ErrTransferFailed, err)
	}

	if err := e.applyMove(ctx, from, to, amount, fromBal); err != nil {
		return err
	}

	e.logger.Info("tokens sold",
		"from", from,
		"to", to,
		"amount", amount,
		"payment", payment,
	)

	now := e.clock.Now()
	e.plugins.EmitPaymentMade(ctx, event.PaymentMade{
		ID:        id.NewEventID(),
		Buyer:     to,
		Seller:    from,
		Asset:     paymentAsset,
		Amount:    payment,
		Timestamp: now,
	})
	e.plugins.EmitTokensTransferred(ctx, event.TokensTransferred{
		ID:        id.NewEventID(),
		From:      from,
		To:        to,
		Amount:    amount,
		Timestamp: now,
	})

	return nil
}

// Burn retires tokens: the holder's balance and the company's total
// supply shrink together. The holder must have authorized the call.
func (e *Equity) Burn(ctx context.Context, from types.Address, amount types.Amount) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.auth.Authorized(ctx, from) {
		return fmt.Errorf("%w: holder %s", ErrUnauthorized, from)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	company, err := e.store.GetCompany(ctx)
	if err != nil {
		return err
	}

	bal, err := e.store.GetBalance(ctx, from)
	if err != nil {
		return err
	}
	if bal.LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s, burn of %s", ErrInsufficientBalance, from, bal, amount)
	}

	newBal, err := bal.Sub(amount)
	if err != nil {
		return err
	}
	newSupply, err := company.TotalSupply.Sub(amount)
	if err != nil {
		return err
	}

	company.TotalSupply = newSupply
	company.Touch()

	if err := e.store.SetBalances(ctx, equity.Balance{Account: from, Amount: newBal}); err != nil {
		return err
	}
	if err := e.store.PutCompany(ctx, company); err != nil {
		return err
	}

	e.logger.Info("tokens burned", "from", from, "amount", amount, "total_supply", newSupply)

	e.plugins.EmitTokensBurned(ctx, event.TokensBurned{
		ID:        id.NewEventID(),
		From:      from,
		Amount:    amount,
		Timestamp: e.clock.Now(),
	})

	return nil
}

// BalanceOf returns a holder's balance, zero for unknown accounts.
func (e *Equity) BalanceOf(ctx context.Context, account types.Address) (types.Amount, error) {
	return e.store.GetBalance(ctx, account)
}

// CompanyInfo returns the company record.
func (e *Equity) CompanyInfo(ctx context.Context) (*equity.Company, error) {
	return e.store.GetCompany(ctx)
}

// AssetClient returns an asset.Client view of this equity ledger so
// other components (the fundraising ledger in particular) can move
// equity tokens through the same boundary they use for payment assets.
// Transfers through this client are ledger-initiated: they check
// balances but not caller authorization, matching a host where a
// contract's own account is implicitly authorized.
func (e *Equity) AssetClient() asset.Client {
	return equityAssetClient{e}
}

type equityAssetClient struct {
	e *Equity
}

func (c equityAssetClient) Transfer(ctx context.Context, from, to types.Address, amount types.Amount) error {
	c.e.mu.Lock()
	defer c.e.mu.Unlock()
	return c.e.move(ctx, from, to, amount)
}

func (c equityAssetClient) BalanceOf(ctx context.Context, account types.Address) (types.Amount, error) {
	return c.e.store.GetBalance(ctx, account)
}

// move validates amount and balance, then applies a holder-to-holder
// transfer. Callers hold e.mu.
func (e *Equity) move(ctx context.Context, from, to types.Address, amount types.Amount) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	fromBal, err := e.store.GetBalance(ctx, from)
	if err != nil {
		return err
	}
	if fromBal.LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s, transfer of %s", ErrInsufficientBalance, from, fromBal, amount)
	}

	return e.applyMove(ctx, from, to, amount, fromBal)
}

// applyMove commits a balance movement whose source balance has
// already been validated. Callers hold e.mu. A self-transfer is a
// no-op so the double read of one account cannot inflate it.
func (e *Equity) applyMove(ctx context.Context, from, to types.Address, amount, fromBal types.Amount) error {
	if from == to {
		return nil
	}

	newFrom, err := fromBal.Sub(amount)
	if err != nil {
		return err
	}

	toBal, err := e.store.GetBalance(ctx, to)
	if err != nil {
		return err
	}
	newTo, err := toBal.Add(amount)
	if err != nil {
		return err
	}

	return e.store.SetBalances(ctx,
		equity.Balance{Account: from, Amount: newFrom},
		equity.Balance{Account: to, Amount: newTo},
	)
}
