package market

import "fmt"

// ErrorKind classifies engine failures so off-chain callers can branch on the
// category without string matching.
type ErrorKind uint8

const (
	KindAuthorization ErrorKind = iota + 1
	KindValidation
	KindConflict
	KindNotFound
	KindPreconditionFailed
	KindArithmetic
	KindDisabled
)

// String returns the canonical name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindPreconditionFailed:
		return "precondition_failed"
	case KindArithmetic:
		return "arithmetic"
	case KindDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Error is a typed engine failure with a stable tag. Every precondition
// violation aborts the whole transition; the tag is part of the public
// contract and must not change between releases.
type Error struct {
	kind ErrorKind
	tag  string
	msg  string
}

func newError(kind ErrorKind, tag, msg string) *Error {
	return &Error{kind: kind, tag: tag, msg: msg}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("market: %s (%s)", e.msg, e.tag)
}

// Kind reports the failure category.
func (e *Error) Kind() ErrorKind { return e.kind }

// Tag reports the stable machine-readable tag.
func (e *Error) Tag() string { return e.tag }

// Is matches either the identical sentinel or any *Error sharing the tag,
// so wrapped errors still compare with errors.Is.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.tag == other.tag
}

var (
	ErrDisabled = newError(KindDisabled, "marketplace_disabled", "marketplace is disabled")

	ErrNotAdmin              = newError(KindAuthorization, "not_admin", "caller is not the marketplace admin")
	ErrNotOwner              = newError(KindAuthorization, "not_owner", "caller is not the current item owner")
	ErrNotOfferer            = newError(KindAuthorization, "not_offerer", "caller did not record this offer")
	ErrSelfPurchase          = newError(KindValidation, "self_purchase", "buyer cannot be the seller")
	ErrOwnItemOffer          = newError(KindValidation, "own_item_offer", "owner cannot make an offer on their own item")
	ErrCollectionNotListed   = newError(KindValidation, "collection_not_registered", "collection is not registered with the marketplace")
	ErrDenomNotAccepted      = newError(KindValidation, "denom_not_accepted", "denomination is not accepted for settlement")
	ErrPriceOutOfBounds      = newError(KindValidation, "price_out_of_bounds", "price is outside the configured bounds")
	ErrExpirationOutOfBounds = newError(KindValidation, "expiration_out_of_bounds", "expiration is outside the configured window")
	ErrExpirationPassed      = newError(KindValidation, "expiration_passed", "expiration is in the past")
	ErrFundsMismatch         = newError(KindValidation, "funds_mismatch", "attached funds do not match the required amount")
	ErrListingFeeMissing     = newError(KindValidation, "listing_fee_missing", "listing fee was not attached")
	ErrRoyaltyInvalid        = newError(KindValidation, "royalty_invalid", "royalty share is outside the allowed range")
	ErrTierPriceMismatch     = newError(KindValidation, "tier_price_mismatch", "attached reward tokens do not match the next tier price")
	ErrMaxTier               = newError(KindValidation, "max_tier", "profile already holds the highest tier")
	ErrInvalidItemID         = newError(KindValidation, "invalid_item_id", "item identifier is empty or malformed")
	ErrInvalidProfileField   = newError(KindValidation, "invalid_profile_field", "profile field exceeds the allowed length")

	ErrSaleExists           = newError(KindConflict, "sale_exists", "a sale already exists for this item")
	ErrCollectionRegistered = newError(KindConflict, "collection_registered", "collection is already registered")
	ErrOfferExists          = newError(KindConflict, "offer_exists", "an offer already exists for this item and offerer")
	ErrProfileExists        = newError(KindConflict, "profile_exists", "a profile already exists for this address")

	ErrSaleNotFound    = newError(KindNotFound, "sale_not_found", "no sale exists for this item")
	ErrOfferNotFound   = newError(KindNotFound, "offer_not_found", "no offer exists for this item and offerer")
	ErrProfileNotFound = newError(KindNotFound, "profile_not_found", "no profile exists for this address")
	ErrNoRewardSystem  = newError(KindNotFound, "reward_system_not_found", "no reward system has been configured")

	ErrApprovalNotRevoked = newError(KindPreconditionFailed, "approval_not_revoked", "transfer approval for the marketplace must be revoked before cancelling")

	ErrPayoutOverflow = newError(KindArithmetic, "payout_overflow", "fee and royalties exceed the sale price")
	ErrRewardOverflow = newError(KindArithmetic, "reward_overflow", "reward accrual arithmetic overflowed")
)

// wrapf attaches context to a typed error while keeping errors.Is matching
// against the sentinel.
func wrapf(sentinel *Error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{sentinel}, args...)...)
}
