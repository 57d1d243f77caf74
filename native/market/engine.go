package market

import (
	"math/big"
	"time"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/core/events"
)

// Engine is the sale/offer lifecycle orchestrator. Every public transition
// opens a state transaction, runs to completion against it and commits only
// on success; outbound transfers stage in an outbox that flushes after the
// commit, so a failure can never leave partial writes or moved funds behind.
// Calls are serialized by the caller; there is no intra-call concurrency.
type Engine struct {
	store    Store
	bank     BankKeeper
	registry ItemRegistry
	oracle   PriceOracle
	emitter  events.Emitter
	params   Params
	nowFn    func() int64
}

// NewEngine constructs a marketplace engine. The store, bank, registry and
// oracle collaborators must be configured before the first transition runs.
func NewEngine(params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		params:  params.Clone(),
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}, nil
}

// SetStore configures the state backend used by the engine.
func (e *Engine) SetStore(store Store) { e.store = store }

// SetBank configures the fund-transfer collaborator.
func (e *Engine) SetBank(bank BankKeeper) { e.bank = bank }

// SetRegistry configures the external item registry.
func (e *Engine) SetRegistry(registry ItemRegistry) { e.registry = registry }

// SetOracle configures the fiat price feed.
func (e *Engine) SetOracle(oracle PriceOracle) { e.oracle = oracle }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// Params returns a copy of the engine's static configuration.
func (e *Engine) Params() Params { return e.params.Clone() }

func (e *Engine) emit(evt *events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

var (
	errNilStore    = newError(KindPreconditionFailed, "store_not_configured", "state store not configured")
	errNilBank     = newError(KindPreconditionFailed, "bank_not_configured", "bank keeper not configured")
	errNilRegistry = newError(KindPreconditionFailed, "registry_not_configured", "item registry not configured")
	errNilOracle   = newError(KindPreconditionFailed, "oracle_not_configured", "price oracle not configured")
)

func (e *Engine) ready() error {
	switch {
	case e == nil || e.store == nil:
		return errNilStore
	case e.bank == nil:
		return errNilBank
	case e.registry == nil:
		return errNilRegistry
	case e.oracle == nil:
		return errNilOracle
	}
	return nil
}

// begin opens a transaction after the readiness check.
func (e *Engine) begin() (StateTxn, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.store.Begin(), nil
}

// guardEnabled rejects non-admin transitions while the marketplace is
// globally disabled.
func (e *Engine) guardEnabled(txn StateTxn, caller [20]byte) error {
	if caller == e.params.Admin {
		return nil
	}
	enabled, err := txn.MarketEnabled()
	if err != nil {
		return err
	}
	if !enabled {
		return ErrDisabled
	}
	return nil
}

// authContext distinguishes external callers from engine-issued re-entrant
// calls. Internal contexts carry the identity the engine acts for, so the
// capability is type-checked rather than sniffed from the payload.
type authContext struct {
	internal  bool
	actingFor [20]byte
}

func externalAuth() authContext { return authContext{} }

func internalAuth(actingFor [20]byte) authContext {
	return authContext{internal: true, actingFor: actingFor}
}

// actor resolves the effective identity of a call.
func (a authContext) actor(caller [20]byte) [20]byte {
	if a.internal {
		return a.actingFor
	}
	return caller
}

// requireSingleCoin validates that exactly one fund attachment accompanies
// the call and matches the expected value and denomination.
func requireSingleCoin(funds []Coin, expected Coin) error {
	if len(funds) != 1 {
		return wrapf(ErrFundsMismatch, "exactly one fund attachment required, got %d", len(funds))
	}
	if !funds[0].Equal(expected) {
		return wrapf(ErrFundsMismatch, "expected %s %s", expected.Amount, expected.Denom)
	}
	return nil
}

// requireNoFunds rejects attachments on calls that must not carry value.
func requireNoFunds(funds []Coin) error {
	if len(funds) != 0 {
		return wrapf(ErrFundsMismatch, "unexpected fund attachment")
	}
	return nil
}

// loadOrCreateProfile returns the address's profile, lazily creating a
// level-zero one when absent.
func (e *Engine) loadOrCreateProfile(txn StateTxn, address [20]byte) (*Profile, error) {
	profile, ok, err := txn.ProfileGet(address)
	if err != nil {
		return nil, err
	}
	if ok {
		return profile, nil
	}
	profile = NewProfile(address, e.now())
	if err := txn.ProfilePut(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// recomputeFloor rescans every live sale for the (collection, denom) pair and
// writes the true minimum back to the stats row. The scan is deliberately
// brute-force so the cached floor can never drift from the live set.
func (e *Engine) recomputeFloor(txn StateTxn, collection [20]byte, denom string) error {
	stats, err := txn.CollectionStatsGet(collection, denom)
	if err != nil {
		return err
	}
	var floor *big.Int
	cursor := ""
	for {
		page, next, err := txn.SalesByCollection(collection, cursor, MaxPageSize)
		if err != nil {
			return err
		}
		for _, sale := range page {
			if sale.Denom != denom {
				continue
			}
			if floor == nil || sale.Price.Cmp(floor) < 0 {
				floor = cloneBigInt(sale.Price)
			}
		}
		if next == "" {
			break
		}
		cursor = next
	}
	if floor == nil {
		stats.Floor = big.NewInt(0)
	} else {
		stats.Floor = floor
	}
	return txn.CollectionStatsPut(stats)
}

// adjustSaleCounters updates the for-sale counters on both aggregate rows by
// the given delta.
func (e *Engine) adjustSaleCounters(txn StateTxn, collection [20]byte, denom string, delta int64) error {
	collStats, err := txn.CollectionStatsGet(collection, denom)
	if err != nil {
		return err
	}
	mktStats, err := txn.MarketStatsGet(denom)
	if err != nil {
		return err
	}
	if delta >= 0 {
		collStats.ForSale += uint64(delta)
		mktStats.ForSale += uint64(delta)
	} else {
		dec := uint64(-delta)
		if collStats.ForSale >= dec {
			collStats.ForSale -= dec
		} else {
			collStats.ForSale = 0
		}
		if mktStats.ForSale >= dec {
			mktStats.ForSale -= dec
		} else {
			mktStats.ForSale = 0
		}
	}
	if err := txn.CollectionStatsPut(collStats); err != nil {
		return err
	}
	return txn.MarketStatsPut(mktStats)
}

// accrueListingFee books a charged listing fee into the marketplace
// aggregates for the fee's denomination.
func (e *Engine) accrueListingFee(txn StateTxn, fee Coin) error {
	stats, err := txn.MarketStatsGet(fee.Denom)
	if err != nil {
		return err
	}
	stats.AccrueFee(fee.Amount)
	return txn.MarketStatsPut(stats)
}
