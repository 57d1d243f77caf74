package state

// Key layout. Components are separated by a NUL byte; item identifiers are
// validated upstream to never contain one. Collection and account addresses
// are fixed 20-byte values, so prefix scans stay unambiguous.
var (
	saleKeyPrefix      = []byte("market/sale/")
	saleSellerPrefix   = []byte("market/idx/sale-seller/")
	saleDenomPrefix    = []byte("market/idx/sale-denom/")
	offerKeyPrefix     = []byte("market/offer/")
	offerOffererPrefix = []byte("market/idx/offer-offerer/")

	collStatsPrefix   = []byte("market/stats/collection/")
	marketStatsPrefix = []byte("market/stats/denom/")

	fiatCollectionPrefix = []byte("market/fiat/collection/")
	fiatMarketKey        = []byte("market/fiat/market")
	topCollectionsKey    = []byte("market/fiat/top")

	profileKeyPrefix = []byte("market/profile/")
	rewardSystemKey  = []byte("market/reward/system")

	collectionSetPrefix = []byte("market/collections/")
	enabledKey          = []byte("market/enabled")

	historyKeyPrefix = []byte("market/history/records/")
	historySeqPrefix = []byte("market/history/seq/")
)

const keySep byte = 0x00

func joinKey(parts ...[]byte) []byte {
	size := 0
	for _, p := range parts {
		size += len(p) + 1
	}
	out := make([]byte, 0, size)
	for i, p := range parts {
		if i > 0 {
			out = append(out, keySep)
		}
		out = append(out, p...)
	}
	return out
}

func saleKey(collection [20]byte, itemID string) []byte {
	return joinKey(saleKeyPrefix, collection[:], []byte(itemID))
}

func saleCollectionScanPrefix(collection [20]byte) []byte {
	return append(joinKey(saleKeyPrefix, collection[:]), keySep)
}

func saleSellerKey(seller [20]byte, collection [20]byte, itemID string) []byte {
	return joinKey(saleSellerPrefix, seller[:], collection[:], []byte(itemID))
}

func saleSellerScanPrefix(seller [20]byte) []byte {
	return append(joinKey(saleSellerPrefix, seller[:]), keySep)
}

func saleDenomKey(denom string, collection [20]byte, itemID string) []byte {
	return joinKey(saleDenomPrefix, []byte(denom), collection[:], []byte(itemID))
}

func saleDenomScanPrefix(denom string) []byte {
	return append(joinKey(saleDenomPrefix, []byte(denom)), keySep)
}

func offerKey(collection [20]byte, itemID string, offerer [20]byte) []byte {
	return joinKey(offerKeyPrefix, collection[:], []byte(itemID), offerer[:])
}

func offerItemScanPrefix(collection [20]byte, itemID string) []byte {
	return append(joinKey(offerKeyPrefix, collection[:], []byte(itemID)), keySep)
}

func offerOffererKey(offerer [20]byte, collection [20]byte, itemID string) []byte {
	return joinKey(offerOffererPrefix, offerer[:], collection[:], []byte(itemID))
}

func offerOffererScanPrefix(offerer [20]byte) []byte {
	return append(joinKey(offerOffererPrefix, offerer[:]), keySep)
}

func collStatsKey(collection [20]byte, denom string) []byte {
	return joinKey(collStatsPrefix, collection[:], []byte(denom))
}

func marketStatsKey(denom string) []byte {
	return joinKey(marketStatsPrefix, []byte(denom))
}

func fiatCollectionKey(collection [20]byte) []byte {
	return joinKey(fiatCollectionPrefix, collection[:])
}

func profileKey(address [20]byte) []byte {
	return joinKey(profileKeyPrefix, address[:])
}

func collectionSetKey(collection [20]byte) []byte {
	return joinKey(collectionSetPrefix, collection[:])
}

func historySeqKey(collection [20]byte, itemID string) []byte {
	return joinKey(historySeqPrefix, collection[:], []byte(itemID))
}

func historyItemScanPrefix(collection [20]byte, itemID string) []byte {
	return append(joinKey(historyKeyPrefix, collection[:], []byte(itemID)), keySep)
}

func historyKey(collection [20]byte, itemID string, seq uint64) []byte {
	return append(historyItemScanPrefix(collection, itemID), encodeSeq(seq)...)
}
