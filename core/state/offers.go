package state

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/native/market"
)

// Offers are stored under the composite key (collection, itemID, offerer)
// with an offerer index maintained in the same transaction.

// OfferPut stores an offer and its index entry.
func (t *Txn) OfferPut(offer *market.Offer) error {
	sanitized, err := market.SanitizeOffer(offer)
	if err != nil {
		return err
	}
	primary := offerKey(sanitized.Collection, sanitized.ItemID, sanitized.Offerer)
	encoded, err := encodeOffer(sanitized)
	if err != nil {
		return err
	}
	if err := t.put(primary, encoded); err != nil {
		return err
	}
	return t.put(offerOffererKey(sanitized.Offerer, sanitized.Collection, sanitized.ItemID), primary)
}

// OfferGet loads the offer for an item and offerer if one is live.
func (t *Txn) OfferGet(collection [20]byte, itemID string, offerer [20]byte) (*market.Offer, bool, error) {
	data, ok, err := t.get(offerKey(collection, itemID, offerer))
	if err != nil || !ok {
		return nil, false, err
	}
	offer, err := decodeOffer(data)
	if err != nil {
		return nil, false, err
	}
	return offer, true, nil
}

// OfferDelete removes the offer and its index entry.
func (t *Txn) OfferDelete(collection [20]byte, itemID string, offerer [20]byte) error {
	ok, err := t.has(offerKey(collection, itemID, offerer))
	if err != nil {
		return err
	}
	if !ok {
		return market.ErrOfferNotFound
	}
	if err := t.del(offerKey(collection, itemID, offerer)); err != nil {
		return err
	}
	return t.del(offerOffererKey(offerer, collection, itemID))
}

// OffersByItem pages through the live offers on one item in offerer order.
// The cursor is the hex offerer address of the last entry.
func (t *Txn) OffersByItem(collection [20]byte, itemID string, startAfter string, limit int) ([]*market.Offer, string, error) {
	prefix := offerItemScanPrefix(collection, itemID)
	var start []byte
	if trimmed := strings.TrimSpace(startAfter); trimmed != "" {
		raw, err := hex.DecodeString(strings.TrimPrefix(trimmed, "0x"))
		if err != nil || len(raw) != 20 {
			return nil, "", fmt.Errorf("state: malformed cursor offerer %q", startAfter)
		}
		var offerer [20]byte
		copy(offerer[:], raw)
		start = offerKey(collection, itemID, offerer)
	}
	var (
		offers  []*market.Offer
		scanErr error
	)
	err := t.iterate(prefix, start, func(_, value []byte) bool {
		offer, err := decodeOffer(value)
		if err != nil {
			scanErr = err
			return false
		}
		offers = append(offers, offer)
		return len(offers) < limit
	})
	if err == nil {
		err = scanErr
	}
	if err != nil {
		return nil, "", err
	}
	next := ""
	if len(offers) == limit && limit > 0 {
		last := offers[len(offers)-1]
		next = hex.EncodeToString(last.Offerer[:])
	}
	return offers, next, nil
}

// OffersByOfferer pages through one address's live offers. The cursor is
// "hex(collection)/itemID" of the last entry.
func (t *Txn) OffersByOfferer(offerer [20]byte, startAfter string, limit int) ([]*market.Offer, string, error) {
	prefix := offerOffererScanPrefix(offerer)
	start, err := indexCursorKey(startAfter, func(collection [20]byte, itemID string) []byte {
		return offerOffererKey(offerer, collection, itemID)
	})
	if err != nil {
		return nil, "", err
	}
	var (
		offers  []*market.Offer
		scanErr error
	)
	err = t.iterate(prefix, start, func(_, value []byte) bool {
		data, ok, err := t.get(value)
		if err != nil {
			scanErr = err
			return false
		}
		if !ok {
			scanErr = fmt.Errorf("state: offer index entry without primary record")
			return false
		}
		offer, err := decodeOffer(data)
		if err != nil {
			scanErr = err
			return false
		}
		offers = append(offers, offer)
		return len(offers) < limit
	})
	if err == nil {
		err = scanErr
	}
	if err != nil {
		return nil, "", err
	}
	next := ""
	if len(offers) == limit && limit > 0 {
		last := offers[len(offers)-1]
		next = hex.EncodeToString(last.Collection[:]) + "/" + last.ItemID
	}
	return offers, next, nil
}
