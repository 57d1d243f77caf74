package market

import "math/big"

// Pagination bounds for every cursor-based query.
const (
	DefaultPageSize = 20
	MaxPageSize     = 500
)

// clampPageSize applies the default and hard cap to a requested page size.
func clampPageSize(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// StateTxn is the transactional state handle a single transition runs
// against. Reads observe the transition's own prior writes (read-your-writes)
// and nothing is visible to later transitions until Commit. Discard throws
// the overlay away, which is how every precondition failure guarantees zero
// partial effect.
type StateTxn interface {
	// Sales. The primary key is (collection, itemID); the store maintains
	// seller and denomination indexes transactionally with every put/delete.
	SalePut(sale *Sale) error
	SaleGet(collection [20]byte, itemID string) (*Sale, bool, error)
	SaleDelete(collection [20]byte, itemID string) error
	SalesByCollection(collection [20]byte, startAfter string, limit int) ([]*Sale, string, error)
	SalesBySeller(seller [20]byte, startAfter string, limit int) ([]*Sale, string, error)
	SalesByDenom(denom string, startAfter string, limit int) ([]*Sale, string, error)
	// SalesScan visits every live sale in key order until fn returns false.
	// Used by the expiry sweep and the floor recomputation scan.
	SalesScan(fn func(*Sale) bool) error

	// Offers. The primary key is (collection, itemID, offerer); the store
	// maintains an offerer index transactionally.
	OfferPut(offer *Offer) error
	OfferGet(collection [20]byte, itemID string, offerer [20]byte) (*Offer, bool, error)
	OfferDelete(collection [20]byte, itemID string, offerer [20]byte) error
	OffersByItem(collection [20]byte, itemID string, startAfter string, limit int) ([]*Offer, string, error)
	OffersByOfferer(offerer [20]byte, startAfter string, limit int) ([]*Offer, string, error)

	// Aggregates. Get returns a zeroed row when none is stored yet.
	CollectionStatsGet(collection [20]byte, denom string) (*CollectionStats, error)
	CollectionStatsPut(stats *CollectionStats) error
	MarketStatsGet(denom string) (*MarketStats, error)
	MarketStatsPut(stats *MarketStats) error

	// Fiat-equivalent volume tracking, per collection plus the marketplace
	// sentinel, and the derived top-collections ranking.
	FiatVolumeAdd(collection [20]byte, amount *big.Int) (*big.Int, error)
	FiatVolumeGet(collection [20]byte) (*big.Int, error)
	MarketFiatVolumeAdd(amount *big.Int) (*big.Int, error)
	MarketFiatVolumeGet() (*big.Int, error)
	TopCollectionsGet() ([]CollectionVolume, error)
	TopCollectionsPut(ranking []CollectionVolume) error

	// Profiles and the reward-system singleton.
	ProfileGet(address [20]byte) (*Profile, bool, error)
	ProfilePut(profile *Profile) error
	RewardSystemGet() (*RewardSystem, bool, error)
	RewardSystemPut(system *RewardSystem) error

	// Collection registry and the global enable switch.
	CollectionRegistered(collection [20]byte) (bool, error)
	CollectionRegister(collection [20]byte) error
	CollectionDeregister(collection [20]byte) error
	MarketEnabled() (bool, error)
	SetMarketEnabled(enabled bool) error

	// Trade history, append-only per item.
	HistoryAppend(record *TradeRecord) (*TradeRecord, error)
	HistoryByItem(collection [20]byte, itemID string, startAfter string, limit int) ([]*TradeRecord, string, error)

	Commit() error
	Discard()
}

// Store opens transactional state handles. Transitions are serialized by the
// caller; the store never sees two open write transactions at once.
type Store interface {
	Begin() StateTxn
}
