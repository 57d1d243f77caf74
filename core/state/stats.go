package state

import (
	"math/big"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/native/market"
)

// CollectionStatsGet loads the aggregate row for a (collection, denom) pair,
// returning a zeroed row when none is stored.
func (t *Txn) CollectionStatsGet(collection [20]byte, denom string) (*market.CollectionStats, error) {
	data, ok, err := t.get(collStatsKey(collection, denom))
	if err != nil {
		return nil, err
	}
	if !ok {
		return market.NewCollectionStats(collection, denom), nil
	}
	return decodeCollStats(data)
}

// CollectionStatsPut stores the aggregate row.
func (t *Txn) CollectionStatsPut(stats *market.CollectionStats) error {
	encoded, err := encodeCollStats(stats)
	if err != nil {
		return err
	}
	return t.put(collStatsKey(stats.Collection, stats.Denom), encoded)
}

// MarketStatsGet loads the marketplace-wide aggregate row for a denomination,
// returning a zeroed row when none is stored.
func (t *Txn) MarketStatsGet(denom string) (*market.MarketStats, error) {
	data, ok, err := t.get(marketStatsKey(denom))
	if err != nil {
		return nil, err
	}
	if !ok {
		return market.NewMarketStats(denom), nil
	}
	return decodeMarketStats(data)
}

// MarketStatsPut stores the marketplace-wide aggregate row.
func (t *Txn) MarketStatsPut(stats *market.MarketStats) error {
	encoded, err := encodeMarketStats(stats)
	if err != nil {
		return err
	}
	return t.put(marketStatsKey(stats.Denom), encoded)
}

func (t *Txn) fiatAdd(key []byte, amount *big.Int) (*big.Int, error) {
	current, err := t.fiatGet(key)
	if err != nil {
		return nil, err
	}
	if amount != nil && amount.Sign() > 0 {
		current = new(big.Int).Add(current, amount)
	}
	encoded, err := encodeBigInt(current)
	if err != nil {
		return nil, err
	}
	if err := t.put(key, encoded); err != nil {
		return nil, err
	}
	return new(big.Int).Set(current), nil
}

func (t *Txn) fiatGet(key []byte) (*big.Int, error) {
	data, ok, err := t.get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return decodeBigInt(data)
}

// FiatVolumeAdd accumulates fiat-equivalent trade volume for a collection and
// returns the new total. The counter is monotonically increasing.
func (t *Txn) FiatVolumeAdd(collection [20]byte, amount *big.Int) (*big.Int, error) {
	return t.fiatAdd(fiatCollectionKey(collection), amount)
}

// FiatVolumeGet returns a collection's cumulative fiat-equivalent volume.
func (t *Txn) FiatVolumeGet(collection [20]byte) (*big.Int, error) {
	return t.fiatGet(fiatCollectionKey(collection))
}

// MarketFiatVolumeAdd accumulates the marketplace-wide fiat-equivalent volume
// and returns the new total.
func (t *Txn) MarketFiatVolumeAdd(amount *big.Int) (*big.Int, error) {
	return t.fiatAdd(fiatMarketKey, amount)
}

// MarketFiatVolumeGet returns the marketplace-wide cumulative volume.
func (t *Txn) MarketFiatVolumeGet() (*big.Int, error) {
	return t.fiatGet(fiatMarketKey)
}

// TopCollectionsGet loads the fiat-volume ranking, largest first.
func (t *Txn) TopCollectionsGet() ([]market.CollectionVolume, error) {
	data, ok, err := t.get(topCollectionsKey)
	if err != nil || !ok {
		return nil, err
	}
	return decodeRanking(data)
}

// TopCollectionsPut stores the fiat-volume ranking.
func (t *Txn) TopCollectionsPut(ranking []market.CollectionVolume) error {
	encoded, err := encodeRanking(ranking)
	if err != nil {
		return err
	}
	return t.put(topCollectionsKey, encoded)
}
