package market

import "math/big"

// RewardTier is one step of the loyalty ladder. Price is the exact amount of
// reward tokens a profile must attach to advance to this level; DiscountBps
// is the marketplace-fee discount the level unlocks for sellers.
type RewardTier struct {
	Level       uint32
	Price       *big.Int
	DiscountBps uint32
}

// Clone returns a deep copy of the tier.
func (t RewardTier) Clone() RewardTier {
	return RewardTier{Level: t.Level, Price: cloneBigInt(t.Price), DiscountBps: t.DiscountBps}
}

// RewardSystem is the process-wide loyalty and reward configuration plus the
// cumulative-distribution counter. It is mutated by admin updates and by
// every realized trade.
type RewardSystem struct {
	TokenDenom  string
	Rate        *big.Int
	Distributed *big.Int
	Tiers       []RewardTier
}

// Clone returns a deep copy of the reward system.
func (r *RewardSystem) Clone() *RewardSystem {
	if r == nil {
		return nil
	}
	clone := &RewardSystem{
		TokenDenom:  r.TokenDenom,
		Rate:        cloneBigInt(r.Rate),
		Distributed: cloneBigInt(r.Distributed),
	}
	if len(r.Tiers) > 0 {
		clone.Tiers = make([]RewardTier, len(r.Tiers))
		for i, t := range r.Tiers {
			clone.Tiers[i] = t.Clone()
		}
	}
	return clone
}

// Normalize ensures all pointer fields are non-nil. Returns the receiver for
// chaining.
func (r *RewardSystem) Normalize() *RewardSystem {
	if r == nil {
		return nil
	}
	if r.Rate == nil {
		r.Rate = big.NewInt(0)
	}
	if r.Distributed == nil {
		r.Distributed = big.NewInt(0)
	}
	return r
}

// Validate performs static validation of the reward configuration. Tiers must
// be contiguous from level one with strictly positive prices and discounts
// below 100%.
func (r *RewardSystem) Validate() error {
	if r == nil {
		return wrapf(ErrTierPriceMismatch, "nil reward system")
	}
	if NormalizeDenom(r.TokenDenom) == "" {
		return wrapf(ErrDenomNotAccepted, "reward token denom is empty")
	}
	if r.Rate == nil || r.Rate.Sign() <= 0 {
		return wrapf(ErrRewardOverflow, "reward rate must be positive")
	}
	for i, tier := range r.Tiers {
		if tier.Level != uint32(i)+1 {
			return wrapf(ErrTierPriceMismatch, "tier levels must be contiguous from 1")
		}
		if tier.Price == nil || tier.Price.Sign() <= 0 {
			return wrapf(ErrTierPriceMismatch, "tier %d price must be positive", tier.Level)
		}
		if tier.DiscountBps >= bpsDenominator {
			return wrapf(ErrTierPriceMismatch, "tier %d discount must be below 100%%", tier.Level)
		}
	}
	return nil
}

// TierDiscountBps returns the fee discount unlocked at the given level. Level
// zero (no tier reached) carries no discount.
func (r *RewardSystem) TierDiscountBps(level uint32) uint32 {
	if r == nil || level == 0 {
		return 0
	}
	for _, tier := range r.Tiers {
		if tier.Level == level {
			return tier.DiscountBps
		}
	}
	// Levels beyond the configured ladder keep the top discount.
	if int(level) > len(r.Tiers) && len(r.Tiers) > 0 {
		return r.Tiers[len(r.Tiers)-1].DiscountBps
	}
	return 0
}

// NextTier returns the tier directly above the given level, or false when the
// ladder is exhausted. Tiers advance exactly one step per level-up call.
func (r *RewardSystem) NextTier(level uint32) (RewardTier, bool) {
	if r == nil {
		return RewardTier{}, false
	}
	for _, tier := range r.Tiers {
		if tier.Level == level+1 {
			return tier.Clone(), true
		}
	}
	return RewardTier{}, false
}

// Accrual computes the reward tokens owed for a realized trade with the given
// fiat-equivalent value: floor(fiat / rate). The same amount is paid to buyer
// and seller independently.
func (r *RewardSystem) Accrual(fiat *big.Int) *big.Int {
	if r == nil || r.Rate == nil || r.Rate.Sign() <= 0 || fiat == nil || fiat.Sign() <= 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Quo(fiat, r.Rate)
}
