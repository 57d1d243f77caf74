package market

import "math/big"

// CollectionStats aggregates activity for one (collection, denomination)
// pair. Floor is a cached derived value: the minimum price among all live
// sales for the pair. It is recomputed from a full scan on every removal,
// never decremented heuristically, because the removed sale may not have been
// the floor.
type CollectionStats struct {
	Collection [20]byte
	Denom      string
	ForSale    uint64
	Trades     uint64
	Volume     *big.Int
	Floor      *big.Int
}

// NewCollectionStats returns a zeroed aggregate for the pair.
func NewCollectionStats(collection [20]byte, denom string) *CollectionStats {
	return &CollectionStats{
		Collection: collection,
		Denom:      NormalizeDenom(denom),
		Volume:     big.NewInt(0),
		Floor:      big.NewInt(0),
	}
}

// Clone returns a deep copy of the stats row.
func (s *CollectionStats) Clone() *CollectionStats {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Volume = cloneBigInt(s.Volume)
	clone.Floor = cloneBigInt(s.Floor)
	return &clone
}

// HasFloor reports whether a floor price exists. When no sale is live the
// stored floor is zero and must be treated as the "infinite" sentinel.
func (s *CollectionStats) HasFloor() bool {
	return s != nil && s.ForSale > 0
}

// Normalize ensures all pointer fields are non-nil. Returns the receiver for
// chaining.
func (s *CollectionStats) Normalize() *CollectionStats {
	if s == nil {
		return nil
	}
	if s.Volume == nil {
		s.Volume = big.NewInt(0)
	}
	if s.Floor == nil {
		s.Floor = big.NewInt(0)
	}
	return s
}

// MarketStats aggregates marketplace-wide activity per accepted denomination.
// FeesTotal only ever increases; FeesUnclaimed resets to zero on an explicit
// fee claim.
type MarketStats struct {
	Denom         string
	ForSale       uint64
	Sales         uint64
	Volume        *big.Int
	FeesTotal     *big.Int
	FeesUnclaimed *big.Int
}

// NewMarketStats returns a zeroed aggregate for the denomination.
func NewMarketStats(denom string) *MarketStats {
	return &MarketStats{
		Denom:         NormalizeDenom(denom),
		Volume:        big.NewInt(0),
		FeesTotal:     big.NewInt(0),
		FeesUnclaimed: big.NewInt(0),
	}
}

// Clone returns a deep copy of the stats row.
func (s *MarketStats) Clone() *MarketStats {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Volume = cloneBigInt(s.Volume)
	clone.FeesTotal = cloneBigInt(s.FeesTotal)
	clone.FeesUnclaimed = cloneBigInt(s.FeesUnclaimed)
	return &clone
}

// Normalize ensures all pointer fields are non-nil. Returns the receiver for
// chaining.
func (s *MarketStats) Normalize() *MarketStats {
	if s == nil {
		return nil
	}
	if s.Volume == nil {
		s.Volume = big.NewInt(0)
	}
	if s.FeesTotal == nil {
		s.FeesTotal = big.NewInt(0)
	}
	if s.FeesUnclaimed == nil {
		s.FeesUnclaimed = big.NewInt(0)
	}
	return s
}

// AccrueFee records a collected fee in both the lifetime total and the
// pending-claim bucket.
func (s *MarketStats) AccrueFee(amount *big.Int) {
	if s == nil || amount == nil || amount.Sign() <= 0 {
		return
	}
	s.Normalize()
	s.FeesTotal = new(big.Int).Add(s.FeesTotal, amount)
	s.FeesUnclaimed = new(big.Int).Add(s.FeesUnclaimed, amount)
}

// CollectionVolume pairs a collection with its cumulative fiat-equivalent
// trade volume. Used for the top-collections ranking.
type CollectionVolume struct {
	Collection [20]byte
	Volume     *big.Int
}

// Clone returns a deep copy of the entry.
func (v CollectionVolume) Clone() CollectionVolume {
	return CollectionVolume{Collection: v.Collection, Volume: cloneBigInt(v.Volume)}
}

// topCollectionsLimit bounds the ranking maintained on every realized trade.
const topCollectionsLimit = 10

// rankCollections merges an updated collection volume into an existing
// ranking, keeping it sorted by descending volume and capped at the limit.
func rankCollections(ranking []CollectionVolume, updated CollectionVolume) []CollectionVolume {
	merged := make([]CollectionVolume, 0, len(ranking)+1)
	for _, entry := range ranking {
		if entry.Collection == updated.Collection {
			continue
		}
		merged = append(merged, entry.Clone())
	}
	inserted := false
	out := make([]CollectionVolume, 0, len(merged)+1)
	for _, entry := range merged {
		if !inserted && cloneBigInt(updated.Volume).Cmp(cloneBigInt(entry.Volume)) > 0 {
			out = append(out, updated.Clone())
			inserted = true
		}
		out = append(out, entry)
	}
	if !inserted {
		out = append(out, updated.Clone())
	}
	if len(out) > topCollectionsLimit {
		out = out[:topCollectionsLimit]
	}
	return out
}
