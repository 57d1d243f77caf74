package market

import "math/big"

// outbox collects the outbound effects of a transition: bank transfers and
// the item hand-off. Transitions stage effects against the outbox while their
// transaction builds, and the engine flushes it only after the transaction
// has committed. An aborted transition therefore moves no funds and no items,
// and a retry after a failed flush cannot pay twice because the committed
// state no longer admits the transition.
type outbox struct {
	payouts  []payout
	transfer *itemTransfer
}

type payout struct {
	to     [20]byte
	amount *big.Int
	denom  string
}

type itemTransfer struct {
	collection [20]byte
	itemID     string
	to         [20]byte
}

// pay stages a bank transfer. Nil and non-positive amounts are dropped.
func (o *outbox) pay(to [20]byte, amount *big.Int, denom string) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	o.payouts = append(o.payouts, payout{to: to, amount: cloneBigInt(amount), denom: denom})
}

// moveItem stages the item hand-off. A transition moves at most one item.
func (o *outbox) moveItem(collection [20]byte, itemID string, to [20]byte) {
	o.transfer = &itemTransfer{collection: collection, itemID: itemID, to: to}
}

// flush performs the staged effects, item first. Called only after the owning
// transaction committed. The staged value is already in the engine's custody,
// so a failure here leaves the committed state authoritative and the
// remainder in custody for the admin to settle out of band.
func (e *Engine) flush(o *outbox) error {
	if o.transfer != nil {
		if err := e.registry.Transfer(o.transfer.collection, o.transfer.itemID, o.transfer.to); err != nil {
			return err
		}
	}
	for _, p := range o.payouts {
		if err := e.bank.Send(p.to, p.amount, p.denom); err != nil {
			return err
		}
	}
	return nil
}
