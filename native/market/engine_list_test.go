package market

import (
	"errors"
	"math/big"
	"testing"
)

func TestListCreatesSaleAndUpdatesAggregates(t *testing.T) {
	env := newTestEnv(t)
	sale := env.list(t, sellerAddr, "pup-1", 100_000, 7*24*3_600)

	if sale.Seller != sellerAddr || sale.ItemID != "pup-1" {
		t.Fatalf("unexpected sale: %+v", sale)
	}
	stored, err := env.engine.GetSale(collectionA, "pup-1")
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	requireBig(t, 100_000, stored.Price, "stored price")

	stats, err := env.engine.CollectionStats(collectionA, denomHuahua)
	if err != nil {
		t.Fatalf("collection stats: %v", err)
	}
	if stats.ForSale != 1 {
		t.Fatalf("for-sale count: want 1, got %d", stats.ForSale)
	}
	if !stats.HasFloor() {
		t.Fatalf("expected a floor after the first listing")
	}
	requireBig(t, 100_000, stats.Floor, "floor")

	mkt, err := env.engine.MarketStats(denomHuahua)
	if err != nil {
		t.Fatalf("market stats: %v", err)
	}
	if mkt.ForSale != 1 {
		t.Fatalf("market for-sale count: want 1, got %d", mkt.ForSale)
	}
	requireBig(t, 6_900_000, mkt.FeesUnclaimed, "listing fee accrual")
	requireBig(t, 6_900_000, mkt.FeesTotal, "listing fee lifetime total")

	if evt := env.lastEvent(t); evt.Type != EventTypeSaleListed {
		t.Fatalf("event type: want %s, got %s", EventTypeSaleListed, evt.Type)
	}
}

func TestListRequiresExactListingFee(t *testing.T) {
	env := newTestEnv(t)
	env.registry.setOwner(collectionA, "pup-1", sellerAddr)
	msg := MsgList{
		Collection: collectionA,
		ItemID:     "pup-1",
		Price:      big.NewInt(100_000),
		Denom:      denomHuahua,
		Expiration: env.now + 24*3_600,
	}

	if _, err := env.engine.List(sellerAddr, msg, nil); !errors.Is(err, ErrListingFeeMissing) {
		t.Fatalf("no funds: want %v, got %v", ErrListingFeeMissing, err)
	}
	short := []Coin{NewCoin(denomHuahua, big.NewInt(1))}
	if _, err := env.engine.List(sellerAddr, msg, short); !errors.Is(err, ErrFundsMismatch) {
		t.Fatalf("short fee: want %v, got %v", ErrFundsMismatch, err)
	}
	wrongDenom := []Coin{NewCoin(denomAtom, big.NewInt(6_900_000))}
	if _, err := env.engine.List(sellerAddr, msg, wrongDenom); !errors.Is(err, ErrFundsMismatch) {
		t.Fatalf("wrong denom: want %v, got %v", ErrFundsMismatch, err)
	}
	if _, err := env.engine.GetSale(collectionA, "pup-1"); !errors.Is(err, ErrSaleNotFound) {
		t.Fatalf("failed listings must leave no sale behind, got %v", err)
	}
}

func TestListValidationFailures(t *testing.T) {
	env := newTestEnv(t)
	env.registry.setOwner(collectionA, "pup-1", sellerAddr)
	base := MsgList{
		Collection: collectionA,
		ItemID:     "pup-1",
		Price:      big.NewInt(100_000),
		Denom:      denomHuahua,
		Expiration: env.now + 24*3_600,
	}

	cases := []struct {
		name    string
		mutate  func(*MsgList)
		caller  [20]byte
		wantErr error
	}{
		{
			name:    "unregistered collection",
			mutate:  func(m *MsgList) { m.Collection = addr(0xEE) },
			caller:  sellerAddr,
			wantErr: ErrCollectionNotListed,
		},
		{
			name:    "denom not accepted",
			mutate:  func(m *MsgList) { m.Denom = "ubtc" },
			caller:  sellerAddr,
			wantErr: ErrDenomNotAccepted,
		},
		{
			name:    "price below minimum",
			mutate:  func(m *MsgList) { m.Price = big.NewInt(999) },
			caller:  sellerAddr,
			wantErr: ErrPriceOutOfBounds,
		},
		{
			name:    "price above maximum",
			mutate:  func(m *MsgList) { m.Price = big.NewInt(1_000_000_000_001) },
			caller:  sellerAddr,
			wantErr: ErrPriceOutOfBounds,
		},
		{
			name:    "expiration too soon",
			mutate:  func(m *MsgList) { m.Expiration = testNow + 60 },
			caller:  sellerAddr,
			wantErr: ErrExpirationOutOfBounds,
		},
		{
			name:    "expiration too late",
			mutate:  func(m *MsgList) { m.Expiration = testNow + 365*24*3_600 },
			caller:  sellerAddr,
			wantErr: ErrExpirationOutOfBounds,
		},
		{
			name:    "empty item id",
			mutate:  func(m *MsgList) { m.ItemID = "   " },
			caller:  sellerAddr,
			wantErr: ErrInvalidItemID,
		},
		{
			name:    "caller is not the owner",
			mutate:  func(*MsgList) {},
			caller:  buyerAddr,
			wantErr: ErrNotOwner,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := base
			tc.mutate(&msg)
			if tc.mutate != nil && msg.Collection != base.Collection {
				env.registry.setOwner(msg.Collection, msg.ItemID, sellerAddr)
			}
			_, err := env.engine.List(tc.caller, msg, env.listingFunds())
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestListRejectsDuplicateSale(t *testing.T) {
	env := newTestEnv(t)
	env.list(t, sellerAddr, "pup-1", 100_000, 24*3_600)

	_, err := env.engine.List(sellerAddr, MsgList{
		Collection: collectionA,
		ItemID:     "pup-1",
		Price:      big.NewInt(200_000),
		Denom:      denomHuahua,
		Expiration: env.now + 24*3_600,
	}, env.listingFunds())
	if !errors.Is(err, ErrSaleExists) {
		t.Fatalf("want %v, got %v", ErrSaleExists, err)
	}
}

func TestFloorTracksCheapestListing(t *testing.T) {
	env := newTestEnv(t)
	env.list(t, sellerAddr, "pup-1", 300_000, 24*3_600)
	env.list(t, sellerAddr, "pup-2", 100_000, 24*3_600)
	env.list(t, sellerAddr, "pup-3", 200_000, 24*3_600)

	stats, err := env.engine.CollectionStats(collectionA, denomHuahua)
	if err != nil {
		t.Fatalf("collection stats: %v", err)
	}
	requireBig(t, 100_000, stats.Floor, "floor with three listings")

	// Cancelling the floor sale must promote the next cheapest, not
	// decrement blindly.
	if _, err := env.engine.CancelSale(sellerAddr, MsgCancel{Collection: collectionA, ItemID: "pup-2"}, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	stats, err = env.engine.CollectionStats(collectionA, denomHuahua)
	if err != nil {
		t.Fatalf("collection stats: %v", err)
	}
	requireBig(t, 200_000, stats.Floor, "floor after cancelling the floor sale")

	// Cancelling a non-floor sale leaves the floor untouched.
	if _, err := env.engine.CancelSale(sellerAddr, MsgCancel{Collection: collectionA, ItemID: "pup-1"}, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	stats, err = env.engine.CollectionStats(collectionA, denomHuahua)
	if err != nil {
		t.Fatalf("collection stats: %v", err)
	}
	requireBig(t, 200_000, stats.Floor, "floor after cancelling a non-floor sale")

	if _, err := env.engine.CancelSale(sellerAddr, MsgCancel{Collection: collectionA, ItemID: "pup-3"}, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	stats, err = env.engine.CollectionStats(collectionA, denomHuahua)
	if err != nil {
		t.Fatalf("collection stats: %v", err)
	}
	if stats.HasFloor() {
		t.Fatalf("no live sales left, floor sentinel expected")
	}
}

func TestUpdateSaleReplacesTermsWithoutFee(t *testing.T) {
	env := newTestEnv(t)
	env.list(t, sellerAddr, "pup-1", 100_000, 24*3_600)
	feesBefore, err := env.engine.MarketStats(denomHuahua)
	if err != nil {
		t.Fatalf("market stats: %v", err)
	}

	updated, err := env.engine.UpdateSale(sellerAddr, MsgList{
		Collection: collectionA,
		ItemID:     "pup-1",
		Price:      big.NewInt(250_000),
		Denom:      denomAtom,
		Expiration: env.now + 48*3_600,
	}, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	requireBig(t, 250_000, updated.Price, "updated price")
	if updated.Denom != denomAtom {
		t.Fatalf("updated denom: want %s, got %s", denomAtom, updated.Denom)
	}

	feesAfter, err := env.engine.MarketStats(denomHuahua)
	if err != nil {
		t.Fatalf("market stats: %v", err)
	}
	if feesAfter.FeesTotal.Cmp(feesBefore.FeesTotal) != 0 {
		t.Fatalf("update must not charge a second listing fee")
	}

	// The old (collection, huahua) row loses its sale, the atom row gains it.
	huahua, err := env.engine.CollectionStats(collectionA, denomHuahua)
	if err != nil {
		t.Fatalf("collection stats: %v", err)
	}
	if huahua.ForSale != 0 || huahua.HasFloor() {
		t.Fatalf("old denom row should be empty: %+v", huahua)
	}
	atom, err := env.engine.CollectionStats(collectionA, denomAtom)
	if err != nil {
		t.Fatalf("collection stats: %v", err)
	}
	if atom.ForSale != 1 {
		t.Fatalf("new denom row should carry the sale: %+v", atom)
	}
	requireBig(t, 250_000, atom.Floor, "new denom floor")
}

func TestUpdateSaleRejectsFundsAndForeignCallers(t *testing.T) {
	env := newTestEnv(t)
	env.list(t, sellerAddr, "pup-1", 100_000, 24*3_600)
	msg := MsgList{
		Collection: collectionA,
		ItemID:     "pup-1",
		Price:      big.NewInt(150_000),
		Denom:      denomHuahua,
		Expiration: env.now + 24*3_600,
	}

	if _, err := env.engine.UpdateSale(sellerAddr, msg, env.listingFunds()); !errors.Is(err, ErrFundsMismatch) {
		t.Fatalf("funds attached: want %v, got %v", ErrFundsMismatch, err)
	}
	if _, err := env.engine.UpdateSale(buyerAddr, msg, nil); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("foreign caller: want %v, got %v", ErrNotOwner, err)
	}
	missing := msg
	missing.ItemID = "pup-404"
	if _, err := env.engine.UpdateSale(sellerAddr, missing, nil); !errors.Is(err, ErrSaleNotFound) {
		t.Fatalf("missing sale: want %v, got %v", ErrSaleNotFound, err)
	}
}

func TestCancelSaleAuthorization(t *testing.T) {
	env := newTestEnv(t)
	env.list(t, sellerAddr, "pup-1", 100_000, 24*3_600)
	msg := MsgCancel{Collection: collectionA, ItemID: "pup-1"}

	if _, err := env.engine.CancelSale(buyerAddr, msg, nil); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("foreign caller: want %v, got %v", ErrNotOwner, err)
	}

	// An approval still granted to the marketplace blocks the cancel.
	env.registry.approve(collectionA, "pup-1", marketAddr)
	if _, err := env.engine.CancelSale(sellerAddr, msg, nil); !errors.Is(err, ErrApprovalNotRevoked) {
		t.Fatalf("approval live: want %v, got %v", ErrApprovalNotRevoked, err)
	}
	env.registry.revoke(collectionA, "pup-1")

	if _, err := env.engine.CancelSale(sellerAddr, msg, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	// Second cancel on the same key is NotFound.
	if _, err := env.engine.CancelSale(sellerAddr, msg, nil); !errors.Is(err, ErrSaleNotFound) {
		t.Fatalf("double cancel: want %v, got %v", ErrSaleNotFound, err)
	}
}

func TestCancelSaleByNewOwnerAfterOutOfBandTransfer(t *testing.T) {
	env := newTestEnv(t)
	env.list(t, sellerAddr, "pup-1", 100_000, 24*3_600)

	// The item moved outside the marketplace; the original lister loses the
	// right to cancel and the new holder gains it.
	env.registry.setOwner(collectionA, "pup-1", buyerAddr)
	if _, err := env.engine.CancelSale(sellerAddr, MsgCancel{Collection: collectionA, ItemID: "pup-1"}, nil); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("stale owner: want %v, got %v", ErrNotOwner, err)
	}
	if _, err := env.engine.CancelSale(buyerAddr, MsgCancel{Collection: collectionA, ItemID: "pup-1"}, nil); err != nil {
		t.Fatalf("new owner cancel: %v", err)
	}
}

func TestRemoveExpiredSalesSweep(t *testing.T) {
	env := newTestEnv(t)
	env.list(t, sellerAddr, "pup-1", 100_000, 3_700)
	env.list(t, sellerAddr, "pup-2", 200_000, 48*3_600)
	paymentsBefore := len(env.bank.payments)

	env.advance(4_000)
	expired, err := env.engine.RemoveExpiredSales(buyerAddr)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(expired) != 1 || expired[0].ItemID != "pup-1" {
		t.Fatalf("expected only pup-1 to expire, got %+v", expired)
	}
	if len(env.bank.payments) != paymentsBefore {
		t.Fatalf("sweep must not move funds")
	}
	if _, err := env.engine.GetSale(collectionA, "pup-1"); !errors.Is(err, ErrSaleNotFound) {
		t.Fatalf("expired sale should be gone, got %v", err)
	}
	if _, err := env.engine.GetSale(collectionA, "pup-2"); err != nil {
		t.Fatalf("live sale should survive the sweep: %v", err)
	}

	// Idempotent: a second sweep finds nothing.
	expired, err = env.engine.RemoveExpiredSales(buyerAddr)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if len(expired) != 0 {
		t.Fatalf("second sweep should be empty, got %+v", expired)
	}

	stats, err := env.engine.CollectionStats(collectionA, denomHuahua)
	if err != nil {
		t.Fatalf("collection stats: %v", err)
	}
	if stats.ForSale != 1 {
		t.Fatalf("for-sale count after sweep: want 1, got %d", stats.ForSale)
	}
	requireBig(t, 200_000, stats.Floor, "floor after sweep")
}

func TestDisabledMarketplaceBlocksNonAdminCalls(t *testing.T) {
	env := newTestEnv(t)
	env.registry.setOwner(collectionA, "pup-1", sellerAddr)
	if err := env.engine.SetEnabled(adminAddr, false); err != nil {
		t.Fatalf("disable: %v", err)
	}

	_, err := env.engine.List(sellerAddr, MsgList{
		Collection: collectionA,
		ItemID:     "pup-1",
		Price:      big.NewInt(100_000),
		Denom:      denomHuahua,
		Expiration: env.now + 24*3_600,
	}, env.listingFunds())
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("want %v, got %v", ErrDisabled, err)
	}

	if err := env.engine.SetEnabled(adminAddr, true); err != nil {
		t.Fatalf("enable: %v", err)
	}
	env.list(t, sellerAddr, "pup-1", 100_000, 24*3_600)
}
