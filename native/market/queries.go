package market

import "math/big"

// Read-only queries. Each runs against a fresh state handle that is discarded
// afterwards, so queries never mutate state. Paginated queries take an
// exclusive start-after cursor and a page size clamped to the configured
// default and hard cap.

func (e *Engine) view() (StateTxn, error) {
	if e == nil || e.store == nil {
		return nil, errNilStore
	}
	return e.store.Begin(), nil
}

// GetSale returns the live sale for an item, or NotFound.
func (e *Engine) GetSale(collection [20]byte, itemID string) (*Sale, error) {
	txn, err := e.view()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	itemID, err = NormalizeItemID(itemID)
	if err != nil {
		return nil, err
	}
	sale, ok, err := txn.SaleGet(collection, itemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSaleNotFound
	}
	return sale, nil
}

// SalesByCollection pages through the live sales of one collection.
func (e *Engine) SalesByCollection(collection [20]byte, startAfter string, limit int) ([]*Sale, string, error) {
	txn, err := e.view()
	if err != nil {
		return nil, "", err
	}
	defer txn.Discard()
	return txn.SalesByCollection(collection, startAfter, clampPageSize(limit))
}

// SalesBySeller pages through the live sales recorded for one seller.
func (e *Engine) SalesBySeller(seller [20]byte, startAfter string, limit int) ([]*Sale, string, error) {
	txn, err := e.view()
	if err != nil {
		return nil, "", err
	}
	defer txn.Discard()
	return txn.SalesBySeller(seller, startAfter, clampPageSize(limit))
}

// SalesByDenom pages through the live sales settled in one denomination.
func (e *Engine) SalesByDenom(denom string, startAfter string, limit int) ([]*Sale, string, error) {
	txn, err := e.view()
	if err != nil {
		return nil, "", err
	}
	defer txn.Discard()
	return txn.SalesByDenom(NormalizeDenom(denom), startAfter, clampPageSize(limit))
}

// OffersByItem pages through the live offers on one item.
func (e *Engine) OffersByItem(collection [20]byte, itemID string, startAfter string, limit int) ([]*Offer, string, error) {
	txn, err := e.view()
	if err != nil {
		return nil, "", err
	}
	defer txn.Discard()
	itemID, err = NormalizeItemID(itemID)
	if err != nil {
		return nil, "", err
	}
	return txn.OffersByItem(collection, itemID, startAfter, clampPageSize(limit))
}

// OffersByOfferer pages through the live offers recorded by one address.
func (e *Engine) OffersByOfferer(offerer [20]byte, startAfter string, limit int) ([]*Offer, string, error) {
	txn, err := e.view()
	if err != nil {
		return nil, "", err
	}
	defer txn.Discard()
	return txn.OffersByOfferer(offerer, startAfter, clampPageSize(limit))
}

// CollectionStats returns the aggregate row for a (collection, denom) pair.
// A pair with no recorded activity returns a zeroed row.
func (e *Engine) CollectionStats(collection [20]byte, denom string) (*CollectionStats, error) {
	txn, err := e.view()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	return txn.CollectionStatsGet(collection, NormalizeDenom(denom))
}

// MarketStats returns the marketplace-wide aggregate row for a denomination.
func (e *Engine) MarketStats(denom string) (*MarketStats, error) {
	txn, err := e.view()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	return txn.MarketStatsGet(NormalizeDenom(denom))
}

// GetProfile returns the stored profile for an address, or NotFound.
func (e *Engine) GetProfile(address [20]byte) (*Profile, error) {
	txn, err := e.view()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	profile, ok, err := txn.ProfileGet(address)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// TradeHistory pages through the realized trades of one item, oldest first.
func (e *Engine) TradeHistory(collection [20]byte, itemID string, startAfter string, limit int) ([]*TradeRecord, string, error) {
	txn, err := e.view()
	if err != nil {
		return nil, "", err
	}
	defer txn.Discard()
	itemID, err = NormalizeItemID(itemID)
	if err != nil {
		return nil, "", err
	}
	return txn.HistoryByItem(collection, itemID, startAfter, clampPageSize(limit))
}

// TopCollections returns the fiat-volume ranking, largest first, at most ten
// entries.
func (e *Engine) TopCollections() ([]CollectionVolume, error) {
	txn, err := e.view()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	return txn.TopCollectionsGet()
}

// FiatVolume returns the cumulative fiat-equivalent trade volume of one
// collection.
func (e *Engine) FiatVolume(collection [20]byte) (*big.Int, error) {
	txn, err := e.view()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	return txn.FiatVolumeGet(collection)
}

// MarketFiatVolume returns the marketplace-wide cumulative fiat-equivalent
// trade volume.
func (e *Engine) MarketFiatVolume() (*big.Int, error) {
	txn, err := e.view()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	return txn.MarketFiatVolumeGet()
}

// RewardSystemInfo returns the current reward configuration, or NotFound when
// none has been installed.
func (e *Engine) RewardSystemInfo() (*RewardSystem, error) {
	txn, err := e.view()
	if err != nil {
		return nil, err
	}
	defer txn.Discard()
	system, ok, err := txn.RewardSystemGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoRewardSystem
	}
	return system, nil
}

// Enabled reports the global marketplace switch.
func (e *Engine) Enabled() (bool, error) {
	txn, err := e.view()
	if err != nil {
		return false, err
	}
	defer txn.Discard()
	return txn.MarketEnabled()
}
