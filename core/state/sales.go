package state

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/native/market"
)

// Sales are stored under (collection, itemID) with seller and denomination
// indexes pointing back at the primary key. Indexes are maintained in the
// same transaction as the primary record, so they can never diverge
// mid-transition.

// SalePut stores a sale and its index entries.
func (t *Txn) SalePut(sale *market.Sale) error {
	sanitized, err := market.SanitizeSale(sale)
	if err != nil {
		return err
	}
	primary := saleKey(sanitized.Collection, sanitized.ItemID)
	encoded, err := encodeSale(sanitized)
	if err != nil {
		return err
	}
	if err := t.put(primary, encoded); err != nil {
		return err
	}
	if err := t.put(saleSellerKey(sanitized.Seller, sanitized.Collection, sanitized.ItemID), primary); err != nil {
		return err
	}
	return t.put(saleDenomKey(sanitized.Denom, sanitized.Collection, sanitized.ItemID), primary)
}

// SaleGet loads the sale for an item if one is live.
func (t *Txn) SaleGet(collection [20]byte, itemID string) (*market.Sale, bool, error) {
	data, ok, err := t.get(saleKey(collection, itemID))
	if err != nil || !ok {
		return nil, false, err
	}
	sale, err := decodeSale(data)
	if err != nil {
		return nil, false, err
	}
	return sale, true, nil
}

// SaleDelete removes the sale and its index entries.
func (t *Txn) SaleDelete(collection [20]byte, itemID string) error {
	sale, ok, err := t.SaleGet(collection, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return market.ErrSaleNotFound
	}
	if err := t.del(saleKey(collection, itemID)); err != nil {
		return err
	}
	if err := t.del(saleSellerKey(sale.Seller, collection, itemID)); err != nil {
		return err
	}
	return t.del(saleDenomKey(sale.Denom, collection, itemID))
}

// SalesByCollection pages through the live sales of one collection in item
// order. The cursor is the last item identifier of the previous page.
func (t *Txn) SalesByCollection(collection [20]byte, startAfter string, limit int) ([]*market.Sale, string, error) {
	prefix := saleCollectionScanPrefix(collection)
	var start []byte
	if strings.TrimSpace(startAfter) != "" {
		start = saleKey(collection, startAfter)
	}
	var (
		sales   []*market.Sale
		scanErr error
	)
	err := t.iterate(prefix, start, func(_, value []byte) bool {
		sale, err := decodeSale(value)
		if err != nil {
			scanErr = err
			return false
		}
		sales = append(sales, sale)
		return len(sales) < limit
	})
	if err == nil {
		err = scanErr
	}
	if err != nil {
		return nil, "", err
	}
	return sales, nextItemCursor(sales, limit), nil
}

// SalesBySeller pages through one seller's live sales. The cursor is
// "hex(collection)/itemID" of the last entry.
func (t *Txn) SalesBySeller(seller [20]byte, startAfter string, limit int) ([]*market.Sale, string, error) {
	prefix := saleSellerScanPrefix(seller)
	start, err := indexCursorKey(startAfter, func(collection [20]byte, itemID string) []byte {
		return saleSellerKey(seller, collection, itemID)
	})
	if err != nil {
		return nil, "", err
	}
	return t.salesByIndex(prefix, start, limit)
}

// SalesByDenom pages through the live sales settled in one denomination. The
// cursor is "hex(collection)/itemID" of the last entry.
func (t *Txn) SalesByDenom(denom string, startAfter string, limit int) ([]*market.Sale, string, error) {
	prefix := saleDenomScanPrefix(denom)
	start, err := indexCursorKey(startAfter, func(collection [20]byte, itemID string) []byte {
		return saleDenomKey(denom, collection, itemID)
	})
	if err != nil {
		return nil, "", err
	}
	return t.salesByIndex(prefix, start, limit)
}

// salesByIndex resolves index entries back through the primary map.
func (t *Txn) salesByIndex(prefix, start []byte, limit int) ([]*market.Sale, string, error) {
	var (
		sales   []*market.Sale
		scanErr error
	)
	err := t.iterate(prefix, start, func(_, value []byte) bool {
		data, ok, err := t.get(value)
		if err != nil {
			scanErr = err
			return false
		}
		if !ok {
			scanErr = fmt.Errorf("state: sale index entry without primary record")
			return false
		}
		sale, err := decodeSale(data)
		if err != nil {
			scanErr = err
			return false
		}
		sales = append(sales, sale)
		return len(sales) < limit
	})
	if err == nil {
		err = scanErr
	}
	if err != nil {
		return nil, "", err
	}
	next := ""
	if len(sales) == limit && limit > 0 {
		last := sales[len(sales)-1]
		next = hex.EncodeToString(last.Collection[:]) + "/" + last.ItemID
	}
	return sales, next, nil
}

// SalesScan visits every live sale in key order.
func (t *Txn) SalesScan(fn func(*market.Sale) bool) error {
	var scanErr error
	err := t.iterate(saleKeyPrefix, nil, func(_, value []byte) bool {
		sale, err := decodeSale(value)
		if err != nil {
			scanErr = err
			return false
		}
		return fn(sale)
	})
	if err == nil {
		err = scanErr
	}
	return err
}

// nextItemCursor returns the item-id cursor for a full page, or "" when the
// listing is exhausted.
func nextItemCursor(sales []*market.Sale, limit int) string {
	if limit <= 0 || len(sales) < limit {
		return ""
	}
	return sales[len(sales)-1].ItemID
}

// indexCursorKey parses a "hex(collection)/itemID" cursor into the index key
// to resume strictly after.
func indexCursorKey(cursor string, keyFn func([20]byte, string) []byte) ([]byte, error) {
	trimmed := strings.TrimSpace(cursor)
	if trimmed == "" {
		return nil, nil
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("state: malformed cursor %q", cursor)
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(parts[0], "0x"))
	if err != nil || len(raw) != 20 {
		return nil, fmt.Errorf("state: malformed cursor collection %q", parts[0])
	}
	var collection [20]byte
	copy(collection[:], raw)
	return keyFn(collection, parts[1]), nil
}
