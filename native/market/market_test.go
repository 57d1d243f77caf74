package market

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/core/events"
)

// mockState is a map-backed StateTxn implementation. Begin clones the whole
// state; Commit copies the clone back, so a discarded transaction leaves the
// base untouched exactly like the persistent store does.
type mockState struct {
	sales       map[string]*Sale
	offers      map[string]*Offer
	collStats   map[string]*CollectionStats
	mktStats    map[string]*MarketStats
	fiat        map[string]*big.Int
	marketFiat  *big.Int
	top         []CollectionVolume
	profiles    map[string]*Profile
	reward      *RewardSystem
	collections map[string]bool
	enabled     *bool
	history     map[string][]*TradeRecord
}

func newMockState() *mockState {
	return &mockState{
		sales:       make(map[string]*Sale),
		offers:      make(map[string]*Offer),
		collStats:   make(map[string]*CollectionStats),
		mktStats:    make(map[string]*MarketStats),
		fiat:        make(map[string]*big.Int),
		marketFiat:  big.NewInt(0),
		profiles:    make(map[string]*Profile),
		collections: make(map[string]bool),
		history:     make(map[string][]*TradeRecord),
	}
}

func (s *mockState) clone() *mockState {
	c := newMockState()
	for k, v := range s.sales {
		c.sales[k] = v.Clone()
	}
	for k, v := range s.offers {
		c.offers[k] = v.Clone()
	}
	for k, v := range s.collStats {
		c.collStats[k] = v.Clone()
	}
	for k, v := range s.mktStats {
		c.mktStats[k] = v.Clone()
	}
	for k, v := range s.fiat {
		c.fiat[k] = new(big.Int).Set(v)
	}
	c.marketFiat = new(big.Int).Set(s.marketFiat)
	for _, v := range s.top {
		c.top = append(c.top, v.Clone())
	}
	for k, v := range s.profiles {
		c.profiles[k] = v.Clone()
	}
	c.reward = s.reward.Clone()
	for k, v := range s.collections {
		c.collections[k] = v
	}
	if s.enabled != nil {
		e := *s.enabled
		c.enabled = &e
	}
	for k, records := range s.history {
		for _, r := range records {
			c.history[k] = append(c.history[k], r.Clone())
		}
	}
	return c
}

type mockStore struct {
	state *mockState
}

func newMockStore() *mockStore {
	return &mockStore{state: newMockState()}
}

func (s *mockStore) Begin() StateTxn {
	return &mockTxn{base: s.state, work: s.state.clone(), store: s}
}

type mockTxn struct {
	base  *mockState
	work  *mockState
	store *mockStore
	done  bool
}

var _ Store = (*mockStore)(nil)
var _ StateTxn = (*mockTxn)(nil)

func saleMapKey(collection [20]byte, itemID string) string {
	return hex.EncodeToString(collection[:]) + "/" + itemID
}

func offerMapKey(collection [20]byte, itemID string, offerer [20]byte) string {
	return saleMapKey(collection, itemID) + "/" + hex.EncodeToString(offerer[:])
}

func statsMapKey(collection [20]byte, denom string) string {
	return hex.EncodeToString(collection[:]) + "/" + denom
}

func (t *mockTxn) SalePut(sale *Sale) error {
	sanitized, err := SanitizeSale(sale)
	if err != nil {
		return err
	}
	t.work.sales[saleMapKey(sanitized.Collection, sanitized.ItemID)] = sanitized
	return nil
}

func (t *mockTxn) SaleGet(collection [20]byte, itemID string) (*Sale, bool, error) {
	sale, ok := t.work.sales[saleMapKey(collection, itemID)]
	if !ok {
		return nil, false, nil
	}
	return sale.Clone(), true, nil
}

func (t *mockTxn) SaleDelete(collection [20]byte, itemID string) error {
	key := saleMapKey(collection, itemID)
	if _, ok := t.work.sales[key]; !ok {
		return ErrSaleNotFound
	}
	delete(t.work.sales, key)
	return nil
}

func (t *mockTxn) sortedSales(match func(*Sale) bool) []*Sale {
	keys := make([]string, 0, len(t.work.sales))
	for k, sale := range t.work.sales {
		if match == nil || match(sale) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]*Sale, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.work.sales[k].Clone())
	}
	return out
}

func paginateSales(sales []*Sale, cursorOf func(*Sale) string, startAfter string, limit int) ([]*Sale, string) {
	var page []*Sale
	for _, sale := range sales {
		if startAfter != "" && cursorOf(sale) <= startAfter {
			continue
		}
		page = append(page, sale)
		if len(page) == limit {
			break
		}
	}
	next := ""
	if len(page) == limit && limit > 0 {
		next = cursorOf(page[len(page)-1])
	}
	return page, next
}

func (t *mockTxn) SalesByCollection(collection [20]byte, startAfter string, limit int) ([]*Sale, string, error) {
	sales := t.sortedSales(func(s *Sale) bool { return s.Collection == collection })
	page, next := paginateSales(sales, func(s *Sale) string { return s.ItemID }, startAfter, limit)
	return page, next, nil
}

func (t *mockTxn) SalesBySeller(seller [20]byte, startAfter string, limit int) ([]*Sale, string, error) {
	sales := t.sortedSales(func(s *Sale) bool { return s.Seller == seller })
	cursorOf := func(s *Sale) string { return saleMapKey(s.Collection, s.ItemID) }
	page, next := paginateSales(sales, cursorOf, startAfter, limit)
	return page, next, nil
}

func (t *mockTxn) SalesByDenom(denom string, startAfter string, limit int) ([]*Sale, string, error) {
	sales := t.sortedSales(func(s *Sale) bool { return s.Denom == denom })
	cursorOf := func(s *Sale) string { return saleMapKey(s.Collection, s.ItemID) }
	page, next := paginateSales(sales, cursorOf, startAfter, limit)
	return page, next, nil
}

func (t *mockTxn) SalesScan(fn func(*Sale) bool) error {
	for _, sale := range t.sortedSales(nil) {
		if !fn(sale) {
			return nil
		}
	}
	return nil
}

func (t *mockTxn) OfferPut(offer *Offer) error {
	sanitized, err := SanitizeOffer(offer)
	if err != nil {
		return err
	}
	t.work.offers[offerMapKey(sanitized.Collection, sanitized.ItemID, sanitized.Offerer)] = sanitized
	return nil
}

func (t *mockTxn) OfferGet(collection [20]byte, itemID string, offerer [20]byte) (*Offer, bool, error) {
	offer, ok := t.work.offers[offerMapKey(collection, itemID, offerer)]
	if !ok {
		return nil, false, nil
	}
	return offer.Clone(), true, nil
}

func (t *mockTxn) OfferDelete(collection [20]byte, itemID string, offerer [20]byte) error {
	key := offerMapKey(collection, itemID, offerer)
	if _, ok := t.work.offers[key]; !ok {
		return ErrOfferNotFound
	}
	delete(t.work.offers, key)
	return nil
}

func (t *mockTxn) sortedOffers(match func(*Offer) bool) []*Offer {
	keys := make([]string, 0, len(t.work.offers))
	for k, offer := range t.work.offers {
		if match == nil || match(offer) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]*Offer, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.work.offers[k].Clone())
	}
	return out
}

func (t *mockTxn) OffersByItem(collection [20]byte, itemID string, startAfter string, limit int) ([]*Offer, string, error) {
	offers := t.sortedOffers(func(o *Offer) bool {
		return o.Collection == collection && o.ItemID == itemID
	})
	var page []*Offer
	for _, offer := range offers {
		cursor := hex.EncodeToString(offer.Offerer[:])
		if startAfter != "" && cursor <= strings.TrimPrefix(startAfter, "0x") {
			continue
		}
		page = append(page, offer)
		if len(page) == limit {
			break
		}
	}
	next := ""
	if len(page) == limit && limit > 0 {
		next = hex.EncodeToString(page[len(page)-1].Offerer[:])
	}
	return page, next, nil
}

func (t *mockTxn) OffersByOfferer(offerer [20]byte, startAfter string, limit int) ([]*Offer, string, error) {
	offers := t.sortedOffers(func(o *Offer) bool { return o.Offerer == offerer })
	var page []*Offer
	for _, offer := range offers {
		cursor := saleMapKey(offer.Collection, offer.ItemID)
		if startAfter != "" && cursor <= startAfter {
			continue
		}
		page = append(page, offer)
		if len(page) == limit {
			break
		}
	}
	next := ""
	if len(page) == limit && limit > 0 {
		last := page[len(page)-1]
		next = saleMapKey(last.Collection, last.ItemID)
	}
	return page, next, nil
}

func (t *mockTxn) CollectionStatsGet(collection [20]byte, denom string) (*CollectionStats, error) {
	stats, ok := t.work.collStats[statsMapKey(collection, denom)]
	if !ok {
		return NewCollectionStats(collection, denom), nil
	}
	return stats.Clone().Normalize(), nil
}

func (t *mockTxn) CollectionStatsPut(stats *CollectionStats) error {
	t.work.collStats[statsMapKey(stats.Collection, stats.Denom)] = stats.Clone().Normalize()
	return nil
}

func (t *mockTxn) MarketStatsGet(denom string) (*MarketStats, error) {
	stats, ok := t.work.mktStats[denom]
	if !ok {
		return NewMarketStats(denom), nil
	}
	return stats.Clone().Normalize(), nil
}

func (t *mockTxn) MarketStatsPut(stats *MarketStats) error {
	t.work.mktStats[stats.Denom] = stats.Clone().Normalize()
	return nil
}

func (t *mockTxn) FiatVolumeAdd(collection [20]byte, amount *big.Int) (*big.Int, error) {
	key := hex.EncodeToString(collection[:])
	total := big.NewInt(0)
	if existing, ok := t.work.fiat[key]; ok {
		total.Set(existing)
	}
	if amount != nil {
		total.Add(total, amount)
	}
	t.work.fiat[key] = new(big.Int).Set(total)
	return total, nil
}

func (t *mockTxn) FiatVolumeGet(collection [20]byte) (*big.Int, error) {
	if existing, ok := t.work.fiat[hex.EncodeToString(collection[:])]; ok {
		return new(big.Int).Set(existing), nil
	}
	return big.NewInt(0), nil
}

func (t *mockTxn) MarketFiatVolumeAdd(amount *big.Int) (*big.Int, error) {
	if amount != nil {
		t.work.marketFiat = new(big.Int).Add(t.work.marketFiat, amount)
	}
	return new(big.Int).Set(t.work.marketFiat), nil
}

func (t *mockTxn) MarketFiatVolumeGet() (*big.Int, error) {
	return new(big.Int).Set(t.work.marketFiat), nil
}

func (t *mockTxn) TopCollectionsGet() ([]CollectionVolume, error) {
	out := make([]CollectionVolume, 0, len(t.work.top))
	for _, entry := range t.work.top {
		out = append(out, entry.Clone())
	}
	return out, nil
}

func (t *mockTxn) TopCollectionsPut(ranking []CollectionVolume) error {
	t.work.top = nil
	for _, entry := range ranking {
		t.work.top = append(t.work.top, entry.Clone())
	}
	return nil
}

func (t *mockTxn) ProfileGet(address [20]byte) (*Profile, bool, error) {
	profile, ok := t.work.profiles[hex.EncodeToString(address[:])]
	if !ok {
		return nil, false, nil
	}
	return profile.Clone(), true, nil
}

func (t *mockTxn) ProfilePut(profile *Profile) error {
	t.work.profiles[hex.EncodeToString(profile.Address[:])] = profile.Clone()
	return nil
}

func (t *mockTxn) RewardSystemGet() (*RewardSystem, bool, error) {
	if t.work.reward == nil {
		return nil, false, nil
	}
	return t.work.reward.Clone(), true, nil
}

func (t *mockTxn) RewardSystemPut(system *RewardSystem) error {
	t.work.reward = system.Clone()
	return nil
}

func (t *mockTxn) CollectionRegistered(collection [20]byte) (bool, error) {
	return t.work.collections[hex.EncodeToString(collection[:])], nil
}

func (t *mockTxn) CollectionRegister(collection [20]byte) error {
	t.work.collections[hex.EncodeToString(collection[:])] = true
	return nil
}

func (t *mockTxn) CollectionDeregister(collection [20]byte) error {
	delete(t.work.collections, hex.EncodeToString(collection[:]))
	return nil
}

func (t *mockTxn) MarketEnabled() (bool, error) {
	if t.work.enabled == nil {
		return true, nil
	}
	return *t.work.enabled, nil
}

func (t *mockTxn) SetMarketEnabled(enabled bool) error {
	t.work.enabled = &enabled
	return nil
}

func (t *mockTxn) HistoryAppend(record *TradeRecord) (*TradeRecord, error) {
	key := saleMapKey(record.Collection, record.ItemID)
	stored := record.Clone()
	stored.Seq = uint64(len(t.work.history[key]))
	t.work.history[key] = append(t.work.history[key], stored)
	return stored.Clone(), nil
}

func (t *mockTxn) HistoryByItem(collection [20]byte, itemID string, startAfter string, limit int) ([]*TradeRecord, string, error) {
	records := t.work.history[saleMapKey(collection, itemID)]
	from := 0
	if startAfter != "" {
		seq, err := strconv.ParseUint(startAfter, 10, 64)
		if err != nil {
			return nil, "", err
		}
		from = int(seq) + 1
	}
	var page []*TradeRecord
	for i := from; i < len(records) && len(page) < limit; i++ {
		page = append(page, records[i].Clone())
	}
	next := ""
	if len(page) == limit && limit > 0 {
		next = strconv.FormatUint(page[len(page)-1].Seq, 10)
	}
	return page, next, nil
}

func (t *mockTxn) Commit() error {
	if t.done {
		return fmt.Errorf("mock txn already finished")
	}
	*t.base = *t.work
	t.done = true
	return nil
}

func (t *mockTxn) Discard() { t.done = true }

// payment records one mockBank.Send call.
type payment struct {
	to     [20]byte
	amount *big.Int
	denom  string
}

type mockBank struct {
	payments []payment
	failOn   func(to [20]byte, amount *big.Int, denom string) error
}

func (b *mockBank) Send(to [20]byte, amount *big.Int, denom string) error {
	if b.failOn != nil {
		if err := b.failOn(to, amount, denom); err != nil {
			return err
		}
	}
	b.payments = append(b.payments, payment{to: to, amount: new(big.Int).Set(amount), denom: denom})
	return nil
}

func (b *mockBank) totalTo(to [20]byte, denom string) *big.Int {
	total := big.NewInt(0)
	for _, p := range b.payments {
		if p.to == to && p.denom == denom {
			total.Add(total, p.amount)
		}
	}
	return total
}

type mockRegistry struct {
	owners    map[string][20]byte
	approvals map[string][20]byte
	royalties map[string][]RoyaltyShare
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{
		owners:    make(map[string][20]byte),
		approvals: make(map[string][20]byte),
		royalties: make(map[string][]RoyaltyShare),
	}
}

func (r *mockRegistry) setOwner(collection [20]byte, itemID string, owner [20]byte) {
	r.owners[saleMapKey(collection, itemID)] = owner
}

func (r *mockRegistry) approve(collection [20]byte, itemID string, spender [20]byte) {
	r.approvals[saleMapKey(collection, itemID)] = spender
}

func (r *mockRegistry) revoke(collection [20]byte, itemID string) {
	delete(r.approvals, saleMapKey(collection, itemID))
}

func (r *mockRegistry) setRoyalties(collection [20]byte, itemID string, shares []RoyaltyShare) {
	r.royalties[saleMapKey(collection, itemID)] = shares
}

func (r *mockRegistry) OwnerOf(collection [20]byte, itemID string) ([20]byte, error) {
	owner, ok := r.owners[saleMapKey(collection, itemID)]
	if !ok {
		return [20]byte{}, fmt.Errorf("registry: unknown item %s", itemID)
	}
	return owner, nil
}

func (r *mockRegistry) HasApproval(collection [20]byte, itemID string, spender [20]byte) (bool, error) {
	approved, ok := r.approvals[saleMapKey(collection, itemID)]
	return ok && approved == spender, nil
}

func (r *mockRegistry) RoyaltySchedule(collection [20]byte, itemID string) ([]RoyaltyShare, error) {
	return r.royalties[saleMapKey(collection, itemID)], nil
}

func (r *mockRegistry) Transfer(collection [20]byte, itemID string, to [20]byte) error {
	key := saleMapKey(collection, itemID)
	if _, ok := r.owners[key]; !ok {
		return fmt.Errorf("registry: unknown item %s", itemID)
	}
	r.owners[key] = to
	delete(r.approvals, key)
	return nil
}

// mockOracle quotes one fiat unit per ten denomination units.
type mockOracle struct {
	divisor *big.Int
	err     error
}

func (o *mockOracle) FiatEquivalent(amount *big.Int, denom string) (*big.Int, error) {
	if o.err != nil {
		return nil, o.err
	}
	div := o.divisor
	if div == nil || div.Sign() == 0 {
		div = big.NewInt(10)
	}
	return new(big.Int).Quo(amount, div), nil
}

func addr(b byte) [20]byte {
	var out [20]byte
	out[19] = b
	return out
}

var (
	adminAddr    = addr(0xA1)
	treasuryAddr = addr(0xA2)
	marketAddr   = addr(0xA3)
	sellerAddr   = addr(0x01)
	buyerAddr    = addr(0x02)
	offererAddr  = addr(0x03)
	royaltyAddr1 = addr(0x04)
	royaltyAddr2 = addr(0x05)
	collectionA  = addr(0xC1)
	collectionB  = addr(0xC2)
)

const (
	denomHuahua = "uhuahua"
	denomAtom   = "uatom"
	rewardDenom = "upuppy"
	testNow     = int64(1_700_000_000)
)

func testParams() Params {
	return Params{
		Admin:          adminAddr,
		Treasury:       treasuryAddr,
		MarketAddress:  marketAddr,
		BaseFeeBps:     420,
		ListingFee:     NewCoin(denomHuahua, big.NewInt(6_900_000)),
		MinPrice:       big.NewInt(1_000),
		MaxPrice:       big.NewInt(1_000_000_000_000),
		MinDuration:    3_600,
		MaxDuration:    180 * 24 * 3_600,
		AcceptedDenoms: []string{denomHuahua, denomAtom},
	}
}

type testEnv struct {
	engine   *Engine
	store    *mockStore
	bank     *mockBank
	registry *mockRegistry
	oracle   *mockOracle
	events   *events.Recorder
	now      int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	engine, err := NewEngine(testParams())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	env := &testEnv{
		engine:   engine,
		store:    newMockStore(),
		bank:     &mockBank{},
		registry: newMockRegistry(),
		oracle:   &mockOracle{},
		events:   &events.Recorder{},
		now:      testNow,
	}
	engine.SetStore(env.store)
	engine.SetBank(env.bank)
	engine.SetRegistry(env.registry)
	engine.SetOracle(env.oracle)
	engine.SetEmitter(env.events)
	engine.SetNowFunc(func() int64 { return env.now })
	env.store.state.collections[hex.EncodeToString(collectionA[:])] = true
	env.store.state.collections[hex.EncodeToString(collectionB[:])] = true
	return env
}

func (env *testEnv) advance(seconds int64) { env.now += seconds }

func (env *testEnv) listingFunds() []Coin {
	return []Coin{testParams().ListingFee.Clone()}
}

func (env *testEnv) list(t *testing.T, seller [20]byte, itemID string, price int64, expiresIn int64) *Sale {
	t.Helper()
	env.registry.setOwner(collectionA, itemID, seller)
	sale, err := env.engine.List(seller, MsgList{
		Collection: collectionA,
		ItemID:     itemID,
		Price:      big.NewInt(price),
		Denom:      denomHuahua,
		Expiration: env.now + expiresIn,
	}, env.listingFunds())
	if err != nil {
		t.Fatalf("list %s: %v", itemID, err)
	}
	return sale
}

func (env *testEnv) lastEvent(t *testing.T) *events.Event {
	t.Helper()
	if len(env.events.Events) == 0 {
		t.Fatalf("no events recorded")
	}
	return env.events.Events[len(env.events.Events)-1]
}

func requireBig(t *testing.T, want int64, got *big.Int, label string) {
	t.Helper()
	if got == nil || got.Cmp(big.NewInt(want)) != 0 {
		t.Fatalf("%s: want %d, got %s", label, want, got)
	}
}
