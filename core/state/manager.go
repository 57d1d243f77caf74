package state

import (
	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/native/market"
	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/storage"
)

// Manager opens transactional state handles over a key-value database. It is
// the only component that knows the key layout and record encoding; the
// lifecycle engine sees it through the market.Store interface.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

// Begin opens a new transaction. Transitions are serialized by the caller, so
// at most one write transaction is live at a time.
func (m *Manager) Begin() market.StateTxn {
	return newTxn(m.db)
}

var _ market.Store = (*Manager)(nil)
