// Package localchain provides in-memory stand-ins for the chain-side
// collaborators the marketplace engine depends on. marketd wires them in for
// local development so the full lifecycle can be exercised without a running
// chain; production deployments replace them with real adapters.
package localchain

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/native/market"
)

type itemKey struct {
	collection [20]byte
	itemID     string
}

// Registry is an in-memory item registry with mintable items, per-item
// transfer approvals and royalty schedules.
type Registry struct {
	mu        sync.RWMutex
	owners    map[itemKey][20]byte
	approvals map[itemKey]map[[20]byte]struct{}
	royalties map[itemKey][]market.RoyaltyShare
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		owners:    make(map[itemKey][20]byte),
		approvals: make(map[itemKey]map[[20]byte]struct{}),
		royalties: make(map[itemKey][]market.RoyaltyShare),
	}
}

// Mint creates the item under the owner. Minting an existing item fails.
func (r *Registry) Mint(collection [20]byte, itemID string, owner [20]byte) error {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return fmt.Errorf("localchain: empty item id")
	}
	key := itemKey{collection: collection, itemID: itemID}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.owners[key]; exists {
		return fmt.Errorf("localchain: item %s already minted", itemID)
	}
	r.owners[key] = owner
	return nil
}

// SetRoyalties replaces the item's royalty schedule.
func (r *Registry) SetRoyalties(collection [20]byte, itemID string, shares []market.RoyaltyShare) {
	key := itemKey{collection: collection, itemID: itemID}
	r.mu.Lock()
	r.royalties[key] = append([]market.RoyaltyShare(nil), shares...)
	r.mu.Unlock()
}

// Approve grants the spender a transfer approval over the item.
func (r *Registry) Approve(collection [20]byte, itemID string, spender [20]byte) {
	key := itemKey{collection: collection, itemID: itemID}
	r.mu.Lock()
	if r.approvals[key] == nil {
		r.approvals[key] = make(map[[20]byte]struct{})
	}
	r.approvals[key][spender] = struct{}{}
	r.mu.Unlock()
}

// Revoke removes the spender's approval over the item.
func (r *Registry) Revoke(collection [20]byte, itemID string, spender [20]byte) {
	key := itemKey{collection: collection, itemID: itemID}
	r.mu.Lock()
	delete(r.approvals[key], spender)
	r.mu.Unlock()
}

func (r *Registry) OwnerOf(collection [20]byte, itemID string) ([20]byte, error) {
	key := itemKey{collection: collection, itemID: itemID}
	r.mu.RLock()
	owner, ok := r.owners[key]
	r.mu.RUnlock()
	if !ok {
		return [20]byte{}, fmt.Errorf("localchain: item %s not minted", itemID)
	}
	return owner, nil
}

func (r *Registry) HasApproval(collection [20]byte, itemID string, spender [20]byte) (bool, error) {
	key := itemKey{collection: collection, itemID: itemID}
	r.mu.RLock()
	_, ok := r.approvals[key][spender]
	r.mu.RUnlock()
	return ok, nil
}

func (r *Registry) RoyaltySchedule(collection [20]byte, itemID string) ([]market.RoyaltyShare, error) {
	key := itemKey{collection: collection, itemID: itemID}
	r.mu.RLock()
	defer r.mu.RUnlock()
	shares := make([]market.RoyaltyShare, len(r.royalties[key]))
	copy(shares, r.royalties[key])
	return shares, nil
}

// Transfer moves the item to the recipient and drops outstanding approvals,
// mirroring how on-chain registries reset approvals on ownership change.
func (r *Registry) Transfer(collection [20]byte, itemID string, to [20]byte) error {
	key := itemKey{collection: collection, itemID: itemID}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[key]; !ok {
		return fmt.Errorf("localchain: item %s not minted", itemID)
	}
	r.owners[key] = to
	delete(r.approvals, key)
	return nil
}

var _ market.ItemRegistry = (*Registry)(nil)

type balanceKey struct {
	holder [20]byte
	denom  string
}

// Bank is an in-memory value ledger. The engine only needs the outbound Send
// half; Credit and Balance exist so development tooling can fund accounts and
// inspect the outcome of settlements.
type Bank struct {
	mu       sync.RWMutex
	balances map[balanceKey]*big.Int
}

// NewBank returns an empty ledger.
func NewBank() *Bank {
	return &Bank{balances: make(map[balanceKey]*big.Int)}
}

// Credit adds the amount to a holder's balance.
func (b *Bank) Credit(holder [20]byte, amount *big.Int, denom string) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	key := balanceKey{holder: holder, denom: market.NormalizeDenom(denom)}
	b.mu.Lock()
	current, ok := b.balances[key]
	if !ok {
		current = big.NewInt(0)
		b.balances[key] = current
	}
	current.Add(current, amount)
	b.mu.Unlock()
}

// Balance reports a holder's balance in the denomination.
func (b *Bank) Balance(holder [20]byte, denom string) *big.Int {
	key := balanceKey{holder: holder, denom: market.NormalizeDenom(denom)}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if current, ok := b.balances[key]; ok {
		return new(big.Int).Set(current)
	}
	return big.NewInt(0)
}

// Send credits the recipient. The engine holds attached funds in custody
// before a transition runs, so there is no payer account to debit here.
func (b *Bank) Send(to [20]byte, amount *big.Int, denom string) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("localchain: invalid send amount")
	}
	b.Credit(to, amount, denom)
	return nil
}

var _ market.BankKeeper = (*Bank)(nil)
