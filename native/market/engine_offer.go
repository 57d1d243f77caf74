package market

// MakeOffer records an escrowed bid on an item by a non-owner. The attached
// funds must exactly match the offer's amount and denomination; they stay in
// the engine's custody until the offer is cancelled, rejected, expired or
// accepted.
func (e *Engine) MakeOffer(caller [20]byte, msg MsgOffer, funds []Coin) (*Offer, error) {
	txn, err := e.begin()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	if err := e.guardEnabled(txn, caller); err != nil {
		return nil, err
	}
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
	if err := e.params.checkPrice(msg.Amount); err != nil {
		return nil, err
	}
	now := e.now()
	if err := e.params.checkExpiration(msg.Expiration, now); err != nil {
		return nil, err
	}
	owner, err := e.registry.OwnerOf(msg.Collection, itemID)
	if err != nil {
		return nil, err
	}
	if owner == caller {
		return nil, ErrOwnItemOffer
	}
	if _, ok, err := txn.OfferGet(msg.Collection, itemID, caller); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrOfferExists
	}
	if err := requireSingleCoin(funds, NewCoin(denom, msg.Amount)); err != nil {
		return nil, err
	}

	offer := &Offer{
		Collection: msg.Collection,
		ItemID:     itemID,
		Offerer:    caller,
		Amount:     cloneBigInt(msg.Amount),
		Denom:      denom,
		Expiration: msg.Expiration,
		CreatedAt:  now,
	}
	if err := txn.OfferPut(offer); err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	e.emit(newOfferEvent(EventTypeOfferCreated, offer))
	return offer.Clone(), nil
}

// CancelOffer removes the caller's offer and refunds the escrow in full. No
// other state changes. The message names the offer by its full store key;
// only the recording offerer may withdraw it.
func (e *Engine) CancelOffer(caller [20]byte, msg MsgCancelOffer, funds []Coin) (*Offer, error) {
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
	if msg.Offerer != caller {
		return nil, ErrNotOfferer
	}
	itemID, err := NormalizeItemID(msg.ItemID)
	if err != nil {
		return nil, err
	}
	offer, ok, err := txn.OfferGet(msg.Collection, itemID, msg.Offerer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOfferNotFound
	}
	pending := &outbox{}
	if err := e.refundOffer(txn, pending, offer); err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	e.emit(newOfferEvent(EventTypeOfferCancelled, offer))
	if err := e.flush(pending); err != nil {
		return nil, err
	}
	return offer.Clone(), nil
}

// AnswerOffer lets the item's current owner accept or reject an offer.
// Rejection, and acceptance of an already-expired offer, degrade to exactly
// the cancel-offer effect: refund plus removal, nothing else. Accepting a
// live offer removes it, cancels any existing sale through the internal
// cancel path, re-lists the item at the offer's terms without a listing fee,
// and immediately buys it on behalf of the offerer with the escrowed funds —
// reusing the three primitives so fee, royalty and statistics logic is never
// duplicated.
func (e *Engine) AnswerOffer(caller [20]byte, msg MsgAnswerOffer, funds []Coin) (*BuyResult, error) {
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
	offer, ok, err := txn.OfferGet(msg.Collection, itemID, msg.Offerer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOfferNotFound
	}
	owner, err := e.registry.OwnerOf(msg.Collection, itemID)
	if err != nil {
		return nil, err
	}
	if owner != caller {
		return nil, ErrNotOwner
	}

	now := e.now()
	pending := &outbox{}
	if !msg.Accept || offer.Expired(now) {
		// An accept on an expired offer behaves identically to a reject on a
		// live one.
		if err := e.refundOffer(txn, pending, offer); err != nil {
			return nil, err
		}
		if err := txn.Commit(); err != nil {
			return nil, err
		}
		e.emit(newOfferEvent(EventTypeOfferRejected, offer))
		if err := e.flush(pending); err != nil {
			return nil, err
		}
		return &BuyResult{Refunded: true}, nil
	}

	if err := txn.OfferDelete(offer.Collection, offer.ItemID, offer.Offerer); err != nil {
		return nil, err
	}
	if _, ok, err := txn.SaleGet(offer.Collection, offer.ItemID); err != nil {
		return nil, err
	} else if ok {
		if _, err := e.cancelSale(txn, caller, internalAuth(owner), offer.Collection, offer.ItemID); err != nil {
			return nil, err
		}
	}
	relist := MsgList{
		Collection: offer.Collection,
		ItemID:     offer.ItemID,
		Price:      offer.Amount,
		Denom:      offer.Denom,
		Expiration: offer.Expiration,
	}
	if _, err := e.createSale(txn, owner, relist, nil, listOptions{}); err != nil {
		return nil, err
	}
	result, err := e.executeBuy(txn, pending, offer.Offerer, offer.Collection, offer.ItemID, []Coin{offer.EscrowedCoin()})
	if err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	e.emit(newOfferEvent(EventTypeOfferAccepted, offer))
	if result.Trade != nil {
		e.emit(newTradeEvent(EventTypeSaleSold, result.Trade))
	}
	if err := e.flush(pending); err != nil {
		return nil, err
	}
	return result, nil
}

// refundOffer removes the offer record and stages the full escrow refund on
// the caller's outbox.
func (e *Engine) refundOffer(txn StateTxn, pending *outbox, offer *Offer) error {
	if err := txn.OfferDelete(offer.Collection, offer.ItemID, offer.Offerer); err != nil {
		return err
	}
	pending.pay(offer.Offerer, offer.Amount, offer.Denom)
	return nil
}
