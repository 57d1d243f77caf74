package market

import "math/big"

// RoyaltyShare is one entry of an item's royalty schedule as reported by the
// item registry: the recipient and its share in basis points. The engine
// rejects shares outside (0, 10_000) exclusive.
type RoyaltyShare struct {
	Recipient [20]byte
	Bps       uint32
}

// SettlementInput captures the context required to split a sale price into
// seller payout, marketplace fee and royalty payments.
type SettlementInput struct {
	Price       *big.Int
	BaseFeeBps  uint32
	DiscountBps uint32
	Royalties   []RoyaltyShare
}

// Settlement summarises the computed split. Price = SellerPayout + Fee +
// sum(Royalties) holds exactly; the floor-division remainder always lands
// with the seller, never with the marketplace or royalty recipients.
type Settlement struct {
	Fee          *big.Int
	SellerPayout *big.Int
	Royalties    []RoyaltyPayment
}

// ComputeSettlement evaluates the fee and royalty split for a realized trade.
// The effective fee rate is the base rate reduced by the seller's loyalty
// discount: fee = floor(price * baseBps * (10_000 - discountBps) / 10_000^2),
// floored exactly once.
func ComputeSettlement(input SettlementInput) (Settlement, error) {
	price := cloneBigInt(input.Price)
	if price.Sign() <= 0 {
		return Settlement{}, wrapf(ErrPriceOutOfBounds, "settlement price must be positive")
	}
	if input.BaseFeeBps >= bpsDenominator || input.DiscountBps >= bpsDenominator {
		return Settlement{}, wrapf(ErrPayoutOverflow, "fee rate out of range")
	}

	fee := new(big.Int).Mul(price, big.NewInt(int64(input.BaseFeeBps)))
	fee.Mul(fee, big.NewInt(int64(bpsDenominator-input.DiscountBps)))
	fee.Quo(fee, big.NewInt(bpsDenominator*bpsDenominator))

	remainder := new(big.Int).Sub(price, fee)
	royalties := make([]RoyaltyPayment, 0, len(input.Royalties))
	for _, share := range input.Royalties {
		if share.Bps == 0 || share.Bps >= bpsDenominator {
			return Settlement{}, wrapf(ErrRoyaltyInvalid, "royalty share %d bps", share.Bps)
		}
		amount := new(big.Int).Mul(price, big.NewInt(int64(share.Bps)))
		amount.Quo(amount, big.NewInt(bpsDenominator))
		remainder.Sub(remainder, amount)
		royalties = append(royalties, RoyaltyPayment{Recipient: share.Recipient, Amount: amount})
	}
	if remainder.Sign() < 0 {
		return Settlement{}, wrapf(ErrPayoutOverflow, "fee and royalties exceed price")
	}
	return Settlement{Fee: fee, SellerPayout: remainder, Royalties: royalties}, nil
}
