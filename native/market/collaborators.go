package market

import "math/big"

// ItemRegistry abstracts the external item-registry service that holds
// custody of the underlying items. The engine decides whether a transfer
// should happen; the registry performs it.
type ItemRegistry interface {
	// OwnerOf returns the current owner of the item.
	OwnerOf(collection [20]byte, itemID string) ([20]byte, error)
	// HasApproval reports whether the spender holds a transfer approval over
	// the item.
	HasApproval(collection [20]byte, itemID string, spender [20]byte) (bool, error)
	// RoyaltySchedule returns the item's royalty shares. Fetched per trade,
	// never cached by the engine.
	RoyaltySchedule(collection [20]byte, itemID string) ([]RoyaltyShare, error)
	// Transfer moves the item to the recipient. All-or-nothing.
	Transfer(collection [20]byte, itemID string, to [20]byte) error
}

// PriceOracle converts a settlement amount into the common fiat reference
// unit used for rankings and reward accrual.
type PriceOracle interface {
	FiatEquivalent(amount *big.Int, denom string) (*big.Int, error)
}

// BankKeeper is the atomic value-transfer primitive. Funds attached to a call
// are already held by the engine when a transition runs; Send moves value out
// of the engine's custody. A nil error means the full amount moved.
type BankKeeper interface {
	Send(to [20]byte, amount *big.Int, denom string) error
}
