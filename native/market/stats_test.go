package market

import (
	"fmt"
	"math/big"
	"testing"
)

func TestRankCollectionsOrdersAndDedupes(t *testing.T) {
	var ranking []CollectionVolume
	ranking = rankCollections(ranking, CollectionVolume{Collection: collectionA, Volume: big.NewInt(100)})
	ranking = rankCollections(ranking, CollectionVolume{Collection: collectionB, Volume: big.NewInt(300)})

	if len(ranking) != 2 || ranking[0].Collection != collectionB {
		t.Fatalf("unexpected ranking: %+v", ranking)
	}

	// An updated volume replaces the previous entry and re-sorts.
	ranking = rankCollections(ranking, CollectionVolume{Collection: collectionA, Volume: big.NewInt(500)})
	if len(ranking) != 2 || ranking[0].Collection != collectionA {
		t.Fatalf("update should promote the collection: %+v", ranking)
	}
	requireBig(t, 500, ranking[0].Volume, "updated volume")
}

func TestRankCollectionsCapsAtTen(t *testing.T) {
	var ranking []CollectionVolume
	for i := 0; i < 15; i++ {
		entry := CollectionVolume{Collection: addr(byte(i + 1)), Volume: big.NewInt(int64(100 * (i + 1)))}
		ranking = rankCollections(ranking, entry)
	}
	if len(ranking) != topCollectionsLimit {
		t.Fatalf("ranking size: want %d, got %d", topCollectionsLimit, len(ranking))
	}
	// Largest first; the five smallest fell off.
	requireBig(t, 1_500, ranking[0].Volume, "top entry")
	requireBig(t, 600, ranking[topCollectionsLimit-1].Volume, "last entry")
	for i := 1; i < len(ranking); i++ {
		if ranking[i].Volume.Cmp(ranking[i-1].Volume) > 0 {
			t.Fatalf("ranking out of order at %d: %+v", i, ranking)
		}
	}
}

func TestMarketStatsAccrueFee(t *testing.T) {
	stats := NewMarketStats(denomHuahua)
	stats.AccrueFee(big.NewInt(100))
	stats.AccrueFee(big.NewInt(50))
	stats.AccrueFee(nil)
	stats.AccrueFee(big.NewInt(-5))

	requireBig(t, 150, stats.FeesTotal, "lifetime total")
	requireBig(t, 150, stats.FeesUnclaimed, "pending bucket")
}

func TestCollectionStatsFloorSentinel(t *testing.T) {
	stats := NewCollectionStats(collectionA, denomHuahua)
	if stats.HasFloor() {
		t.Fatalf("zeroed row must report no floor")
	}
	stats.ForSale = 1
	stats.Floor = big.NewInt(42)
	if !stats.HasFloor() {
		t.Fatalf("row with a live sale must report a floor")
	}
}

func TestPaginationCursorsWalkEverySale(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 7; i++ {
		env.list(t, sellerAddr, fmt.Sprintf("pup-%d", i), 100_000+int64(i), 24*3_600)
	}

	var collected []*Sale
	cursor := ""
	for {
		page, next, err := env.engine.SalesByCollection(collectionA, cursor, 3)
		if err != nil {
			t.Fatalf("page: %v", err)
		}
		collected = append(collected, page...)
		if next == "" {
			break
		}
		cursor = next
	}
	if len(collected) != 7 {
		t.Fatalf("walked %d sales, want 7", len(collected))
	}
	seen := make(map[string]bool)
	for _, sale := range collected {
		if seen[sale.ItemID] {
			t.Fatalf("duplicate %s across pages", sale.ItemID)
		}
		seen[sale.ItemID] = true
	}

	// Requesting a zero limit falls back to the default page size.
	page, _, err := env.engine.SalesByCollection(collectionA, "", 0)
	if err != nil {
		t.Fatalf("default page: %v", err)
	}
	if len(page) != 7 {
		t.Fatalf("default page should hold all 7 sales, got %d", len(page))
	}
}
