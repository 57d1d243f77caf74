package market

import "math/big"

// ClaimFees transfers every denomination's pending fee balance to the
// configured treasury and resets the pending buckets. Lifetime fee totals are
// untouched; they only ever increase. Admin only.
func (e *Engine) ClaimFees(caller [20]byte) ([]Coin, error) {
	txn, err := e.begin()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	if caller != e.params.Admin {
		return nil, ErrNotAdmin
	}
	denoms := append([]string(nil), e.params.AcceptedDenoms...)
	if !e.params.DenomAccepted(e.params.ListingFee.Denom) {
		denoms = append(denoms, e.params.ListingFee.Denom)
	}
	pending := &outbox{}
	var claimed []Coin
	for _, denom := range denoms {
		stats, err := txn.MarketStatsGet(denom)
		if err != nil {
			return nil, err
		}
		if stats.FeesUnclaimed.Sign() <= 0 {
			continue
		}
		amount := cloneBigInt(stats.FeesUnclaimed)
		pending.pay(e.params.Treasury, amount, denom)
		stats.FeesUnclaimed = big.NewInt(0)
		if err := txn.MarketStatsPut(stats); err != nil {
			return nil, err
		}
		claimed = append(claimed, NewCoin(denom, amount))
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	e.emit(newFeesClaimedEvent(e.params.Treasury, claimed))
	if err := e.flush(pending); err != nil {
		return nil, err
	}
	return claimed, nil
}

// SetEnabled toggles the global marketplace switch. While disabled, every
// non-admin state-changing call fails with a Disabled error. Admin only.
func (e *Engine) SetEnabled(caller [20]byte, enabled bool) error {
	txn, err := e.begin()
	if err != nil {
		return err
	}
	defer txn.Discard()
	if caller != e.params.Admin {
		return ErrNotAdmin
	}
	if err := txn.SetMarketEnabled(enabled); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}
	e.emit(newEnabledEvent(enabled))
	return nil
}

// RegisterCollection marks an external item collection as trusted for
// listings and offers. Admin only.
func (e *Engine) RegisterCollection(caller [20]byte, collection [20]byte) error {
	txn, err := e.begin()
	if err != nil {
		return err
	}
	defer txn.Discard()
	if caller != e.params.Admin {
		return ErrNotAdmin
	}
	registered, err := txn.CollectionRegistered(collection)
	if err != nil {
		return err
	}
	if registered {
		return ErrCollectionRegistered
	}
	if err := txn.CollectionRegister(collection); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}
	e.emit(newCollectionEvent(EventTypeCollectionRegistered, collection))
	return nil
}

// DeregisterCollection removes a collection from the trusted set. Existing
// sales and offers stay live; only new listings and offers are blocked.
// Admin only.
func (e *Engine) DeregisterCollection(caller [20]byte, collection [20]byte) error {
	txn, err := e.begin()
	if err != nil {
		return err
	}
	defer txn.Discard()
	if caller != e.params.Admin {
		return ErrNotAdmin
	}
	registered, err := txn.CollectionRegistered(collection)
	if err != nil {
		return err
	}
	if !registered {
		return wrapf(ErrCollectionNotListed, "collection not registered")
	}
	if err := txn.CollectionDeregister(collection); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}
	e.emit(newCollectionEvent(EventTypeCollectionDeregistered, collection))
	return nil
}

// UpdateRewardSystem replaces the reward configuration (token, accrual rate,
// tier ladder) after validation. The cumulative-distributed counter carries
// over. Admin only.
func (e *Engine) UpdateRewardSystem(caller [20]byte, system *RewardSystem) error {
	txn, err := e.begin()
	if err != nil {
		return err
	}
	defer txn.Discard()
	if caller != e.params.Admin {
		return ErrNotAdmin
	}
	if err := system.Validate(); err != nil {
		return err
	}
	updated := system.Clone().Normalize()
	existing, ok, err := txn.RewardSystemGet()
	if err != nil {
		return err
	}
	if ok {
		updated.Distributed = cloneBigInt(existing.Distributed)
	} else {
		updated.Distributed = big.NewInt(0)
	}
	if err := txn.RewardSystemPut(updated); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}
	e.emit(newRewardSystemEvent(updated))
	return nil
}
