package market

import "math/big"

// bpsDenominator is the basis-point scale used for every rate in the engine.
const bpsDenominator = 10_000

// Params is the static marketplace configuration handed to the engine at
// construction. Admin-mutable state (enabled flag, registered collections,
// reward parameters) lives in the store instead.
type Params struct {
	// Admin may claim fees, toggle the marketplace, register collections and
	// update the reward system.
	Admin [20]byte
	// Treasury receives claimed marketplace fees.
	Treasury [20]byte
	// MarketAddress identifies the engine itself towards the item registry;
	// transfer approvals granted to this address must be revoked before an
	// external cancel.
	MarketAddress [20]byte
	// BaseFeeBps is the marketplace fee rate before loyalty discounts.
	BaseFeeBps uint32
	// ListingFee must accompany every caller-initiated listing. Internal
	// re-lists are exempt.
	ListingFee Coin
	// MinPrice and MaxPrice bound sale prices and offer amounts, inclusive.
	MinPrice *big.Int
	MaxPrice *big.Int
	// MinDuration and MaxDuration bound the distance between the current
	// time and a sale/offer expiration: now+MinDuration < exp <= now+MaxDuration.
	MinDuration int64
	MaxDuration int64
	// AcceptedDenoms lists the settlement denominations the chain accepts.
	AcceptedDenoms []string
}

// Clone returns a deep copy of the parameters.
func (p Params) Clone() Params {
	clone := p
	clone.ListingFee = p.ListingFee.Clone()
	clone.MinPrice = cloneBigInt(p.MinPrice)
	clone.MaxPrice = cloneBigInt(p.MaxPrice)
	clone.AcceptedDenoms = append([]string(nil), p.AcceptedDenoms...)
	return clone
}

// Validate performs static validation of the parameters.
func (p Params) Validate() error {
	if p.Admin == ([20]byte{}) {
		return wrapf(ErrNotAdmin, "admin address must be configured")
	}
	if p.Treasury == ([20]byte{}) {
		return wrapf(ErrNotAdmin, "treasury address must be configured")
	}
	if p.BaseFeeBps >= bpsDenominator {
		return wrapf(ErrPriceOutOfBounds, "base fee must be below 100%%")
	}
	if !p.ListingFee.IsPositive() || NormalizeDenom(p.ListingFee.Denom) == "" {
		return wrapf(ErrListingFeeMissing, "listing fee must be a positive coin")
	}
	if p.MinPrice == nil || p.MinPrice.Sign() <= 0 {
		return wrapf(ErrPriceOutOfBounds, "minimum price must be positive")
	}
	if p.MaxPrice == nil || p.MaxPrice.Cmp(p.MinPrice) < 0 {
		return wrapf(ErrPriceOutOfBounds, "maximum price must be at least the minimum")
	}
	if p.MinDuration <= 0 || p.MaxDuration < p.MinDuration {
		return wrapf(ErrExpirationOutOfBounds, "expiration window is invalid")
	}
	if len(p.AcceptedDenoms) == 0 {
		return wrapf(ErrDenomNotAccepted, "at least one settlement denom is required")
	}
	seen := make(map[string]struct{}, len(p.AcceptedDenoms))
	for _, denom := range p.AcceptedDenoms {
		normalized := NormalizeDenom(denom)
		if normalized == "" {
			return wrapf(ErrDenomNotAccepted, "empty settlement denom")
		}
		if _, dup := seen[normalized]; dup {
			return wrapf(ErrDenomNotAccepted, "duplicate settlement denom %s", normalized)
		}
		seen[normalized] = struct{}{}
	}
	return nil
}

// DenomAccepted reports whether the denomination is one of the accepted
// settlement currencies. Pure validation, no state.
func (p Params) DenomAccepted(denom string) bool {
	normalized := NormalizeDenom(denom)
	for _, accepted := range p.AcceptedDenoms {
		if NormalizeDenom(accepted) == normalized {
			return true
		}
	}
	return false
}

// checkPrice validates a sale price or offer amount against the configured
// bounds, inclusive on both ends.
func (p Params) checkPrice(price *big.Int) error {
	if price == nil || price.Sign() <= 0 {
		return wrapf(ErrPriceOutOfBounds, "price must be positive")
	}
	if p.MinPrice != nil && price.Cmp(p.MinPrice) < 0 {
		return wrapf(ErrPriceOutOfBounds, "price below minimum %s", p.MinPrice)
	}
	if p.MaxPrice != nil && price.Cmp(p.MaxPrice) > 0 {
		return wrapf(ErrPriceOutOfBounds, "price above maximum %s", p.MaxPrice)
	}
	return nil
}

// checkExpiration validates an expiration timestamp at creation time:
// strictly after now+MinDuration and at most now+MaxDuration.
func (p Params) checkExpiration(expiration, now int64) error {
	if expiration <= now+p.MinDuration {
		return wrapf(ErrExpirationOutOfBounds, "expiration too soon")
	}
	if expiration > now+p.MaxDuration {
		return wrapf(ErrExpirationOutOfBounds, "expiration too late")
	}
	return nil
}
