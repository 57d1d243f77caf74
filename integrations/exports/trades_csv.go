package exports

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/native/market"
)

// TradesCSV builds a CSV export for the supplied trade records and returns the
// serialised data alongside a SHA-256 checksum of the payload.
func TradesCSV(trades []*market.TradeRecord) ([]byte, string, error) {
	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)
	header := []string{"trade_id", "collection", "item_id", "seller", "buyer", "price", "denom", "fee", "seller_payout", "royalty_total", "executed_at", "seq"}
	if err := writer.Write(header); err != nil {
		return nil, "", err
	}
	for _, trade := range trades {
		if trade == nil {
			continue
		}
		record := []string{
			trade.ID,
			"0x" + hex.EncodeToString(trade.Collection[:]),
			trade.ItemID,
			"0x" + hex.EncodeToString(trade.Seller[:]),
			"0x" + hex.EncodeToString(trade.Buyer[:]),
			amountString(trade.Price),
			trade.Denom,
			amountString(trade.Fee),
			amountString(trade.SellerPayout),
			trade.RoyaltyTotal().String(),
			time.Unix(trade.Timestamp, 0).UTC().Format(time.RFC3339),
			fmt.Sprintf("%d", trade.Seq),
		}
		if err := writer.Write(record); err != nil {
			return nil, "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}
	data := buffer.Bytes()
	checksum := sha256.Sum256(data)
	return data, hex.EncodeToString(checksum[:]), nil
}
