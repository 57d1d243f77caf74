package market

import (
	"math/big"
	"strings"
)

// maxItemIDLen bounds stored item identifiers. Anything longer is rejected at
// the validation boundary so index keys stay small.
const maxItemIDLen = 128

// Coin pairs an amount with its settlement denomination. Amounts are always
// expressed in the smallest unit of the denomination and are never negative
// in storage.
type Coin struct {
	Denom  string
	Amount *big.Int
}

// NewCoin constructs a coin with a defensive copy of the amount.
func NewCoin(denom string, amount *big.Int) Coin {
	return Coin{Denom: denom, Amount: cloneBigInt(amount)}
}

// Clone returns a deep copy of the coin.
func (c Coin) Clone() Coin {
	return Coin{Denom: c.Denom, Amount: cloneBigInt(c.Amount)}
}

// IsPositive reports whether the coin carries a strictly positive amount.
func (c Coin) IsPositive() bool {
	return c.Amount != nil && c.Amount.Sign() > 0
}

// Equal reports whether denom and amount match exactly.
func (c Coin) Equal(other Coin) bool {
	if c.Denom != other.Denom {
		return false
	}
	return cloneBigInt(c.Amount).Cmp(cloneBigInt(other.Amount)) == 0
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// NormalizeDenom canonicalises a denomination identifier for lookups and
// storage keys. Denominations are case-sensitive on chains in general, so
// only surrounding whitespace is stripped.
func NormalizeDenom(denom string) string {
	return strings.TrimSpace(denom)
}

// NormalizeItemID validates and canonicalises an item identifier.
func NormalizeItemID(itemID string) (string, error) {
	trimmed := strings.TrimSpace(itemID)
	if trimmed == "" || len(trimmed) > maxItemIDLen {
		return "", ErrInvalidItemID
	}
	if strings.ContainsRune(trimmed, 0) {
		return "", ErrInvalidItemID
	}
	return trimmed, nil
}

// Sale is an active fixed-price listing. The (Collection, ItemID) pair is the
// primary key: at most one live sale exists per item at any time.
type Sale struct {
	Collection [20]byte
	ItemID     string
	Seller     [20]byte
	Price      *big.Int
	Denom      string
	Expiration int64
	CreatedAt  int64
}

// Clone returns a deep copy of the sale so callers can safely mutate the copy
// without affecting the stored instance.
func (s *Sale) Clone() *Sale {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Price = cloneBigInt(s.Price)
	return &clone
}

// Expired reports whether the sale's expiration timestamp has elapsed.
func (s *Sale) Expired(now int64) bool {
	return s != nil && s.Expiration <= now
}

// SanitizeSale validates and normalises a sale record, returning a cloned
// instance. The original value is not mutated.
func SanitizeSale(s *Sale) (*Sale, error) {
	if s == nil {
		return nil, wrapf(ErrSaleNotFound, "nil sale")
	}
	clone := s.Clone()
	itemID, err := NormalizeItemID(clone.ItemID)
	if err != nil {
		return nil, err
	}
	clone.ItemID = itemID
	clone.Denom = NormalizeDenom(clone.Denom)
	if clone.Denom == "" {
		return nil, wrapf(ErrDenomNotAccepted, "empty denom")
	}
	if clone.Price == nil || clone.Price.Sign() <= 0 {
		return nil, wrapf(ErrPriceOutOfBounds, "price must be positive")
	}
	return clone, nil
}

// Offer is an active escrowed bid on a specific item. The composite key
// (Collection, ItemID, Offerer) guarantees a single offerer holds at most one
// live offer per item while distinct offerers may coexist.
type Offer struct {
	Collection [20]byte
	ItemID     string
	Offerer    [20]byte
	Amount     *big.Int
	Denom      string
	Expiration int64
	CreatedAt  int64
}

// Clone returns a deep copy of the offer.
func (o *Offer) Clone() *Offer {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Amount = cloneBigInt(o.Amount)
	return &clone
}

// Expired reports whether the offer's expiration timestamp has elapsed.
func (o *Offer) Expired(now int64) bool {
	return o != nil && o.Expiration <= now
}

// EscrowedCoin returns the value held in escrow for this offer.
func (o *Offer) EscrowedCoin() Coin {
	if o == nil {
		return Coin{Amount: big.NewInt(0)}
	}
	return NewCoin(o.Denom, o.Amount)
}

// SanitizeOffer validates and normalises an offer record, returning a cloned
// instance. The original value is not mutated.
func SanitizeOffer(o *Offer) (*Offer, error) {
	if o == nil {
		return nil, wrapf(ErrOfferNotFound, "nil offer")
	}
	clone := o.Clone()
	itemID, err := NormalizeItemID(clone.ItemID)
	if err != nil {
		return nil, err
	}
	clone.ItemID = itemID
	clone.Denom = NormalizeDenom(clone.Denom)
	if clone.Denom == "" {
		return nil, wrapf(ErrDenomNotAccepted, "empty denom")
	}
	if clone.Amount == nil || clone.Amount.Sign() <= 0 {
		return nil, wrapf(ErrPriceOutOfBounds, "offer amount must be positive")
	}
	return clone, nil
}
