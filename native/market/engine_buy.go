package market

import (
	"math/big"

	"github.com/google/uuid"
)

// BuyResult reports the outcome of a purchase. A buy against an already
// expired sale is not an error: the sale is removed, the payment refunded in
// full and Refunded set, with no trade recorded.
type BuyResult struct {
	Refunded bool
	Sale     *Sale
	Trade    *TradeRecord
}

// Buy purchases a live sale. The payment must exactly match the sale's price
// and denomination, and the buyer must not be the seller. On success the item
// moves to the buyer, the price splits into seller payout, marketplace fee
// and royalties, all aggregates and both profiles update, and reward tokens
// accrue to both parties from the trade's fiat-equivalent value. Fund and
// item movement stage in an outbox and flush only once the transaction has
// committed, so a failure anywhere before the commit leaves no payment
// behind.
func (e *Engine) Buy(caller [20]byte, msg MsgBuy, funds []Coin) (*BuyResult, error) {
	txn, err := e.begin()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	if err := e.guardEnabled(txn, caller); err != nil {
		return nil, err
	}
	pending := &outbox{}
	result, err := e.executeBuy(txn, pending, caller, msg.Collection, msg.ItemID, funds)
	if err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	if result.Refunded {
		e.emit(newSaleEvent(EventTypeSaleExpiredRefund, result.Sale))
	} else {
		e.emit(newTradeEvent(EventTypeSaleSold, result.Trade))
	}
	if err := e.flush(pending); err != nil {
		return nil, err
	}
	return result, nil
}

// executeBuy is the purchase path shared by Buy and the accepted-offer
// settlement. All outbound effects go through the pending outbox; the caller
// flushes it after committing the shared transaction.
func (e *Engine) executeBuy(txn StateTxn, pending *outbox, buyer [20]byte, collection [20]byte, itemID string, funds []Coin) (*BuyResult, error) {
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
	payment := NewCoin(sale.Denom, sale.Price)
	if err := requireSingleCoin(funds, payment); err != nil {
		return nil, err
	}
	if buyer == sale.Seller {
		return nil, ErrSelfPurchase
	}
	now := e.now()
	if err := e.removeSale(txn, sale); err != nil {
		return nil, err
	}
	if sale.Expired(now) {
		// The one path where money moves without a trade: refund in full,
		// record nothing.
		pending.pay(buyer, payment.Amount, payment.Denom)
		return &BuyResult{Refunded: true, Sale: sale.Clone()}, nil
	}

	sellerProfile, err := e.loadOrCreateProfile(txn, sale.Seller)
	if err != nil {
		return nil, err
	}
	rewardSys, hasRewards, err := txn.RewardSystemGet()
	if err != nil {
		return nil, err
	}
	var discountBps uint32
	if hasRewards {
		discountBps = rewardSys.TierDiscountBps(sellerProfile.Level)
	}
	royalties, err := e.registry.RoyaltySchedule(collection, itemID)
	if err != nil {
		return nil, err
	}
	settlement, err := ComputeSettlement(SettlementInput{
		Price:       sale.Price,
		BaseFeeBps:  e.params.BaseFeeBps,
		DiscountBps: discountBps,
		Royalties:   royalties,
	})
	if err != nil {
		return nil, err
	}

	pending.pay(sale.Seller, settlement.SellerPayout, sale.Denom)
	for _, royalty := range settlement.Royalties {
		pending.pay(royalty.Recipient, royalty.Amount, sale.Denom)
	}
	pending.moveItem(collection, itemID, buyer)

	collStats, err := txn.CollectionStatsGet(collection, sale.Denom)
	if err != nil {
		return nil, err
	}
	collStats.Trades++
	collStats.Volume = new(big.Int).Add(collStats.Volume, sale.Price)
	if err := txn.CollectionStatsPut(collStats); err != nil {
		return nil, err
	}
	mktStats, err := txn.MarketStatsGet(sale.Denom)
	if err != nil {
		return nil, err
	}
	mktStats.Sales++
	mktStats.Volume = new(big.Int).Add(mktStats.Volume, sale.Price)
	mktStats.AccrueFee(settlement.Fee)
	if err := txn.MarketStatsPut(mktStats); err != nil {
		return nil, err
	}

	fiat, err := e.oracle.FiatEquivalent(sale.Price, sale.Denom)
	if err != nil {
		return nil, err
	}
	collectionFiat, err := txn.FiatVolumeAdd(collection, fiat)
	if err != nil {
		return nil, err
	}
	if _, err := txn.MarketFiatVolumeAdd(fiat); err != nil {
		return nil, err
	}
	ranking, err := txn.TopCollectionsGet()
	if err != nil {
		return nil, err
	}
	ranking = rankCollections(ranking, CollectionVolume{Collection: collection, Volume: collectionFiat})
	if err := txn.TopCollectionsPut(ranking); err != nil {
		return nil, err
	}

	buyerProfile, err := e.loadOrCreateProfile(txn, buyer)
	if err != nil {
		return nil, err
	}
	buyerProfile.AddBuy(sale.Denom, sale.Price)
	if err := txn.ProfilePut(buyerProfile); err != nil {
		return nil, err
	}
	sellerProfile.AddSell(sale.Denom, sale.Price)
	if err := txn.ProfilePut(sellerProfile); err != nil {
		return nil, err
	}

	if hasRewards {
		tokens := rewardSys.Accrual(fiat)
		if tokens.Sign() > 0 {
			pending.pay(buyer, tokens, rewardSys.TokenDenom)
			pending.pay(sale.Seller, tokens, rewardSys.TokenDenom)
			rewardSys.Distributed = new(big.Int).Add(rewardSys.Distributed, new(big.Int).Lsh(tokens, 1))
			if err := txn.RewardSystemPut(rewardSys); err != nil {
				return nil, err
			}
		}
	}

	record := &TradeRecord{
		ID:           uuid.NewString(),
		Collection:   collection,
		ItemID:       itemID,
		Seller:       sale.Seller,
		Buyer:        buyer,
		Price:        cloneBigInt(sale.Price),
		Denom:        sale.Denom,
		Fee:          cloneBigInt(settlement.Fee),
		SellerPayout: cloneBigInt(settlement.SellerPayout),
		Royalties:    settlement.Royalties,
		Timestamp:    now,
	}
	record, err = txn.HistoryAppend(record)
	if err != nil {
		return nil, err
	}
	return &BuyResult{Sale: sale.Clone(), Trade: record}, nil
}
