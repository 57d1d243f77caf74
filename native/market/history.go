package market

import "math/big"

// RoyaltyPayment is one realized royalty transfer recorded with a trade.
type RoyaltyPayment struct {
	Recipient [20]byte
	Amount    *big.Int
}

// TradeRecord is an append-only history entry for a realized purchase. Seq is
// assigned by the store on append and orders the records per item.
type TradeRecord struct {
	ID           string
	Collection   [20]byte
	ItemID       string
	Seller       [20]byte
	Buyer        [20]byte
	Price        *big.Int
	Denom        string
	Fee          *big.Int
	SellerPayout *big.Int
	Royalties    []RoyaltyPayment
	Timestamp    int64
	Seq          uint64
}

// Clone returns a deep copy of the trade record.
func (t *TradeRecord) Clone() *TradeRecord {
	if t == nil {
		return nil
	}
	clone := *t
	clone.Price = cloneBigInt(t.Price)
	clone.Fee = cloneBigInt(t.Fee)
	clone.SellerPayout = cloneBigInt(t.SellerPayout)
	if len(t.Royalties) > 0 {
		clone.Royalties = make([]RoyaltyPayment, len(t.Royalties))
		for i, r := range t.Royalties {
			clone.Royalties[i] = RoyaltyPayment{Recipient: r.Recipient, Amount: cloneBigInt(r.Amount)}
		}
	}
	return &clone
}

// RoyaltyTotal sums the royalty payments recorded with the trade.
func (t *TradeRecord) RoyaltyTotal() *big.Int {
	total := big.NewInt(0)
	if t == nil {
		return total
	}
	for _, r := range t.Royalties {
		total.Add(total, cloneBigInt(r.Amount))
	}
	return total
}
