package state

import (
	"errors"
	"strconv"
	"strings"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/native/market"
)

// HistoryAppend assigns the next per-item sequence number to the trade record
// and stores it. Returns the stored record with its sequence filled in.
func (t *Txn) HistoryAppend(record *market.TradeRecord) (*market.TradeRecord, error) {
	if record == nil {
		return nil, errors.New("state: nil trade record")
	}
	stored := record.Clone()
	seqKey := historySeqKey(stored.Collection, stored.ItemID)
	data, ok, err := t.get(seqKey)
	if err != nil {
		return nil, err
	}
	var next uint64
	if ok {
		next = decodeSeq(data) + 1
	}
	stored.Seq = next
	encoded, err := encodeTrade(stored)
	if err != nil {
		return nil, err
	}
	if err := t.put(historyKey(stored.Collection, stored.ItemID, next), encoded); err != nil {
		return nil, err
	}
	if err := t.put(seqKey, encodeSeq(next)); err != nil {
		return nil, err
	}
	return stored, nil
}

// HistoryByItem pages through an item's realized trades, oldest first. The
// cursor is the decimal sequence number of the last entry.
func (t *Txn) HistoryByItem(collection [20]byte, itemID string, startAfter string, limit int) ([]*market.TradeRecord, string, error) {
	prefix := historyItemScanPrefix(collection, itemID)
	var start []byte
	if trimmed := strings.TrimSpace(startAfter); trimmed != "" {
		seq, err := strconv.ParseUint(trimmed, 10, 64)
		if err != nil {
			return nil, "", err
		}
		start = historyKey(collection, itemID, seq)
	}
	var (
		records []*market.TradeRecord
		scanErr error
	)
	err := t.iterate(prefix, start, func(_, value []byte) bool {
		record, err := decodeTrade(value)
		if err != nil {
			scanErr = err
			return false
		}
		records = append(records, record)
		return len(records) < limit
	})
	if err == nil {
		err = scanErr
	}
	if err != nil {
		return nil, "", err
	}
	next := ""
	if len(records) == limit && limit > 0 {
		next = strconv.FormatUint(records[len(records)-1].Seq, 10)
	}
	return records, next, nil
}
