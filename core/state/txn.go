package state

import (
	"bytes"
	"errors"
	"sort"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/storage"
)

// Txn is a write-buffered overlay over the backing database. Reads observe
// the transaction's own pending writes before falling through to the store,
// giving each lifecycle transition read-your-writes semantics; nothing
// reaches the database until Commit. Discarding the overlay is how a failed
// transition guarantees zero partial effect.
type Txn struct {
	db      storage.Database
	writes  map[string][]byte
	deletes map[string]struct{}
	done    bool
}

func newTxn(db storage.Database) *Txn {
	return &Txn{
		db:      db,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

var errTxnDone = errors.New("state: transaction already finished")

func (t *Txn) put(key, value []byte) error {
	if t.done {
		return errTxnDone
	}
	k := string(key)
	t.writes[k] = append([]byte(nil), value...)
	delete(t.deletes, k)
	return nil
}

func (t *Txn) del(key []byte) error {
	if t.done {
		return errTxnDone
	}
	k := string(key)
	delete(t.writes, k)
	t.deletes[k] = struct{}{}
	return nil
}

// get returns (nil, false, nil) when the key is absent.
func (t *Txn) get(key []byte) ([]byte, bool, error) {
	if t.done {
		return nil, false, errTxnDone
	}
	k := string(key)
	if _, deleted := t.deletes[k]; deleted {
		return nil, false, nil
	}
	if v, ok := t.writes[k]; ok {
		return append([]byte(nil), v...), true, nil
	}
	v, err := t.db.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

func (t *Txn) has(key []byte) (bool, error) {
	_, ok, err := t.get(key)
	return ok, err
}

// iterate merges the pending overlay with the backing store in ascending key
// order, honouring the exclusive start key.
func (t *Txn) iterate(prefix, start []byte, fn func(key, value []byte) bool) error {
	if t.done {
		return errTxnDone
	}
	pending := make([]string, 0, len(t.writes))
	for k := range t.writes {
		if !bytes.HasPrefix([]byte(k), prefix) {
			continue
		}
		if len(start) > 0 && bytes.Compare([]byte(k), start) <= 0 {
			continue
		}
		pending = append(pending, k)
	}
	sort.Strings(pending)

	i := 0
	stopped := false
	emitPending := func(upTo []byte) bool {
		for i < len(pending) {
			k := pending[i]
			if upTo != nil && bytes.Compare([]byte(k), upTo) >= 0 {
				return true
			}
			i++
			if !fn([]byte(k), t.writes[k]) {
				return false
			}
		}
		return true
	}

	err := t.db.Iterate(prefix, start, func(key, value []byte) bool {
		if !emitPending(key) {
			stopped = true
			return false
		}
		k := string(key)
		if i < len(pending) && pending[i] == k {
			// Overlay write shadows the stored value.
			i++
			if !fn(key, t.writes[k]) {
				stopped = true
				return false
			}
			return true
		}
		if _, deleted := t.deletes[k]; deleted {
			return true
		}
		if !fn(key, value) {
			stopped = true
			return false
		}
		return true
	})
	if err != nil || stopped {
		return err
	}
	emitPending(nil)
	return nil
}

// Commit flushes the overlay to the backing database. The transaction cannot
// be used afterwards.
func (t *Txn) Commit() error {
	if t.done {
		return errTxnDone
	}
	for k, v := range t.writes {
		if err := t.db.Put([]byte(k), v); err != nil {
			return err
		}
	}
	for k := range t.deletes {
		if err := t.db.Delete([]byte(k)); err != nil {
			return err
		}
	}
	t.done = true
	return nil
}

// Discard drops every pending write. Safe to call after Commit.
func (t *Txn) Discard() {
	t.done = true
	t.writes = nil
	t.deletes = nil
}
