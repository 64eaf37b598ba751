package store

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

func explorationKey(name string) []byte {
	return []byte(fmt.Sprintf("exploration-state/%s", name))
}

// SaveExplorationState persists an already-serialized exploration.State
// (see internal/exploration.State.Serialize) under name, so a crawl can
// be resumed across process restarts without relying on a JSON file
// living next to the CLI invocation.
func (t *TrendDB) SaveExplorationState(name, serialized string) error {
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Set(explorationKey(name), []byte(serialized))
	})
}

// LoadExplorationState returns the serialized exploration.State
// previously saved under name, and ok=false if none exists.
func (t *TrendDB) LoadExplorationState(name string) (serialized string, ok bool, err error) {
	err = t.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get(explorationKey(name))
		if getErr == badger.ErrKeyNotFound {
			return nil
		}
		if getErr != nil {
			return getErr
		}
		ok = true
		return item.Value(func(val []byte) error {
			serialized = string(val)
			return nil
		})
	})
	if err != nil {
		return "", false, fmt.Errorf("store: loading exploration state %q: %w", name, err)
	}
	return serialized, ok, nil
}

// DeleteExplorationState removes a saved resume point, e.g. after a
// crawl completes normally.
func (t *TrendDB) DeleteExplorationState(name string) error {
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(explorationKey(name))
	})
}
