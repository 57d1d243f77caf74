package market

// listOptions control the parts of the listing path that differ between a
// caller-initiated List and the engine's internal re-lists.
type listOptions struct {
	// chargeFee requires and books the listing fee. Only true for
	// caller-initiated listings, never for internal re-lists.
	chargeFee bool
	// fullWindowCheck validates the expiration against the configured
	// creation window. Re-lists driven by an accepted offer skip it because
	// the offer's expiration was bounded when the offer was made.
	fullWindowCheck bool
}

// List creates a fixed-price sale for an item. The caller must be the current
// owner, the collection must be registered, the denomination accepted, price
// and expiration within bounds, and the exact listing fee attached.
func (e *Engine) List(caller [20]byte, msg MsgList, funds []Coin) (*Sale, error) {
	txn, err := e.begin()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	if err := e.guardEnabled(txn, caller); err != nil {
		return nil, err
	}
	sale, err := e.createSale(txn, caller, msg, funds, listOptions{chargeFee: true, fullWindowCheck: true})
	if err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	e.emit(newSaleEvent(EventTypeSaleListed, sale))
	return sale, nil
}

// UpdateSale replaces an existing sale's price, denomination and expiration.
// It is implemented as an atomic cancel of the old sale followed by an
// internal re-list through the same validation path, so the two operations
// cannot partially apply and no second validation routine exists.
func (e *Engine) UpdateSale(caller [20]byte, msg MsgList, funds []Coin) (*Sale, error) {
	txn, err := e.begin()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	if err := e.guardEnabled(txn, caller); err != nil {
		return nil, err
	}
	if err := requireNoFunds(funds); err != nil {
		return nil, err
	}
	itemID, err := NormalizeItemID(msg.ItemID)
	if err != nil {
		return nil, err
	}
	existing, ok, err := txn.SaleGet(msg.Collection, itemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSaleNotFound
	}
	owner, err := e.registry.OwnerOf(msg.Collection, existing.ItemID)
	if err != nil {
		return nil, err
	}
	if owner != caller {
		return nil, ErrNotOwner
	}
	if _, err := e.cancelSale(txn, caller, internalAuth(owner), msg.Collection, existing.ItemID); err != nil {
		return nil, err
	}
	sale, err := e.createSale(txn, owner, msg, nil, listOptions{fullWindowCheck: true})
	if err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	e.emit(newSaleEvent(EventTypeSaleUpdated, sale))
	return sale, nil
}

// CancelSale removes a live sale. The caller must be the item's current
// owner, which is not necessarily the original lister: an item transferred
// out-of-band is cancellable by whoever now owns it and by nobody else. Any
// transfer approval granted to the marketplace must have been revoked first,
// so a plain item transfer cannot silently orphan the sale.
func (e *Engine) CancelSale(caller [20]byte, msg MsgCancel, funds []Coin) (*Sale, error) {
	txn, err := e.begin()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	if err := e.guardEnabled(txn, caller); err != nil {
		return nil, err
	}
	if err := requireNoFunds(funds); err != nil {
		return nil, err
	}
	sale, err := e.cancelSale(txn, caller, externalAuth(), msg.Collection, msg.ItemID)
	if err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	e.emit(newSaleEvent(EventTypeSaleCancelled, sale))
	return sale, nil
}

// RemoveExpiredSales is the idempotent maintenance sweep: it removes every
// sale past its expiration, performing the same index and floor maintenance
// as a cancel. Anyone may trigger it; listing fees are non-refundable so no
// funds move.
func (e *Engine) RemoveExpiredSales(caller [20]byte) ([]*Sale, error) {
	txn, err := e.begin()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	if err := e.guardEnabled(txn, caller); err != nil {
		return nil, err
	}
	now := e.now()
	var expired []*Sale
	if err := txn.SalesScan(func(sale *Sale) bool {
		if sale.Expired(now) {
			expired = append(expired, sale.Clone())
		}
		return true
	}); err != nil {
		return nil, err
	}
	for _, sale := range expired {
		if err := e.removeSale(txn, sale); err != nil {
			return nil, err
		}
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	for _, sale := range expired {
		e.emit(newSaleEvent(EventTypeSaleExpired, sale))
	}
	return expired, nil
}

// createSale is the single listing path shared by List, UpdateSale and the
// accepted-offer re-list.
func (e *Engine) createSale(txn StateTxn, seller [20]byte, msg MsgList, funds []Coin, opts listOptions) (*Sale, error) {
	itemID, err := NormalizeItemID(msg.ItemID)
	if err != nil {
		return nil, err
	}
	denom := NormalizeDenom(msg.Denom)
	registered, err := txn.CollectionRegistered(msg.Collection)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, ErrCollectionNotListed
	}
	if !e.params.DenomAccepted(denom) {
		return nil, wrapf(ErrDenomNotAccepted, "%s", denom)
	}
	if err := e.params.checkPrice(msg.Price); err != nil {
		return nil, err
	}
	now := e.now()
	if opts.fullWindowCheck {
		if err := e.params.checkExpiration(msg.Expiration, now); err != nil {
			return nil, err
		}
	} else if msg.Expiration <= now {
		return nil, ErrExpirationPassed
	}
	owner, err := e.registry.OwnerOf(msg.Collection, itemID)
	if err != nil {
		return nil, err
	}
	if owner != seller {
		return nil, ErrNotOwner
	}
	if _, ok, err := txn.SaleGet(msg.Collection, itemID); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrSaleExists
	}
	if opts.chargeFee {
		if len(funds) == 0 {
			return nil, ErrListingFeeMissing
		}
		if err := requireSingleCoin(funds, e.params.ListingFee); err != nil {
			return nil, err
		}
		if err := e.accrueListingFee(txn, e.params.ListingFee); err != nil {
			return nil, err
		}
	} else if err := requireNoFunds(funds); err != nil {
		return nil, err
	}

	sale := &Sale{
		Collection: msg.Collection,
		ItemID:     itemID,
		Seller:     seller,
		Price:      cloneBigInt(msg.Price),
		Denom:      denom,
		Expiration: msg.Expiration,
		CreatedAt:  now,
	}
	if err := txn.SalePut(sale); err != nil {
		return nil, err
	}
	if err := e.adjustSaleCounters(txn, sale.Collection, sale.Denom, 1); err != nil {
		return nil, err
	}
	// Insertion can update the floor incrementally: min(current, price) is
	// exact when a sale is added. Removals recompute from scratch instead.
	stats, err := txn.CollectionStatsGet(sale.Collection, sale.Denom)
	if err != nil {
		return nil, err
	}
	if stats.ForSale <= 1 || stats.Floor.Sign() == 0 || sale.Price.Cmp(stats.Floor) < 0 {
		stats.Floor = cloneBigInt(sale.Price)
	}
	if err := txn.CollectionStatsPut(stats); err != nil {
		return nil, err
	}
	if _, err := e.loadOrCreateProfile(txn, seller); err != nil {
		return nil, err
	}
	return sale.Clone(), nil
}

// cancelSale authorizes and removes a live sale. External cancels require the
// caller to be the current on-chain owner with the marketplace approval
// revoked; internal cancels are authorized by the engine acting for the
// supplied identity.
func (e *Engine) cancelSale(txn StateTxn, caller [20]byte, auth authContext, collection [20]byte, itemID string) (*Sale, error) {
	itemID, err := NormalizeItemID(itemID)
	if err != nil {
		return nil, err
	}
	sale, ok, err := txn.SaleGet(collection, itemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSaleNotFound
	}
	if !auth.internal {
		owner, err := e.registry.OwnerOf(collection, itemID)
		if err != nil {
			return nil, err
		}
		if owner != caller {
			return nil, ErrNotOwner
		}
		approved, err := e.registry.HasApproval(collection, itemID, e.params.MarketAddress)
		if err != nil {
			return nil, err
		}
		if approved {
			return nil, ErrApprovalNotRevoked
		}
	}
	if err := e.removeSale(txn, sale); err != nil {
		return nil, err
	}
	return sale.Clone(), nil
}

// removeSale deletes the sale, maintains the for-sale counters and recomputes
// the collection floor from the remaining live sales. The floor is never
// decremented heuristically: the removed sale might not have been the floor.
func (e *Engine) removeSale(txn StateTxn, sale *Sale) error {
	if err := txn.SaleDelete(sale.Collection, sale.ItemID); err != nil {
		return err
	}
	if err := e.adjustSaleCounters(txn, sale.Collection, sale.Denom, -1); err != nil {
		return err
	}
	return e.recomputeFloor(txn, sale.Collection, sale.Denom)
}
