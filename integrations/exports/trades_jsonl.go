package exports

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"time"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/native/market"
)

func amountString(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

// TradesJSONL builds a JSON Lines export for the supplied trade records and
// returns the serialised payload alongside a checksum.
func TradesJSONL(trades []*market.TradeRecord) ([]byte, string, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	for _, trade := range trades {
		if trade == nil {
			continue
		}
		royalties := make([]map[string]string, 0, len(trade.Royalties))
		for _, royalty := range trade.Royalties {
			royalties = append(royalties, map[string]string{
				"recipient": "0x" + hex.EncodeToString(royalty.Recipient[:]),
				"amount":    amountString(royalty.Amount),
			})
		}
		payload := map[string]interface{}{
			"trade_id":      trade.ID,
			"collection":    "0x" + hex.EncodeToString(trade.Collection[:]),
			"item_id":       trade.ItemID,
			"seller":        "0x" + hex.EncodeToString(trade.Seller[:]),
			"buyer":         "0x" + hex.EncodeToString(trade.Buyer[:]),
			"price":         amountString(trade.Price),
			"denom":         trade.Denom,
			"fee":           amountString(trade.Fee),
			"seller_payout": amountString(trade.SellerPayout),
			"royalties":     royalties,
			"executed_at":   time.Unix(trade.Timestamp, 0).UTC().Format(time.RFC3339),
			"seq":           trade.Seq,
		}
		if err := encoder.Encode(payload); err != nil {
			return nil, "", err
		}
	}
	data := buffer.Bytes()
	checksum := sha256.Sum256(data)
	return data, hex.EncodeToString(checksum[:]), nil
}
