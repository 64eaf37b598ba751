// Package store persists run history beyond a single process lifetime:
// a badger-backed trend database keyed by (suite, testId) recording
// recent statuses, used to flag newly-flaky tests, plus resumable
// exploration state (spec §1 "trend database", supplemented feature —
// the spec names it but leaves it undesigned).
package store

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/mateoblack/sentinel/internal/execution"
)

// DefaultHistoryLimit bounds how many recent statuses TrendDB keeps
// per test before trimming the oldest.
const DefaultHistoryLimit = 20

// TrendDB is an embedded key-value store of recent per-test outcomes.
type TrendDB struct {
	db *badger.DB
}

// Open opens (creating if absent) a badger database rooted at dir.
func Open(dir string) (*TrendDB, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("store: opening trend db at %s: %w", dir, err)
	}
	return &TrendDB{db: db}, nil
}

// OpenInMemory opens a database that never touches disk, for tests and
// short-lived CLI invocations that don't need cross-run history.
func OpenInMemory() (*TrendDB, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("store: opening in-memory trend db: %w", err)
	}
	return &TrendDB{db: db}, nil
}

// Close releases the underlying badger database.
func (t *TrendDB) Close() error {
	return t.db.Close()
}

// history is the wire form of one test's recent outcomes.
type history struct {
	Statuses []execution.Status `json:"statuses"`
}

func key(suite, testID string) []byte {
	return []byte(fmt.Sprintf("trend/%s/%s", suite, testID))
}

// Record appends status to the (suite, testId) history, trimming to
// DefaultHistoryLimit entries, oldest first.
func (t *TrendDB) Record(suite, testID string, status execution.Status) error {
	return t.db.Update(func(txn *badger.Txn) error {
		var h history
		item, err := txn.Get(key(suite, testID))
		switch {
		case err == nil:
			if unmarshalErr := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &h)
			}); unmarshalErr != nil {
				return fmt.Errorf("store: decoding history for %s/%s: %w", suite, testID, unmarshalErr)
			}
		case err == badger.ErrKeyNotFound:
			// first observation for this test
		default:
			return fmt.Errorf("store: reading history for %s/%s: %w", suite, testID, err)
		}

		h.Statuses = append(h.Statuses, status)
		if len(h.Statuses) > DefaultHistoryLimit {
			h.Statuses = h.Statuses[len(h.Statuses)-DefaultHistoryLimit:]
		}

		data, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("store: encoding history for %s/%s: %w", suite, testID, err)
		}
		return txn.Set(key(suite, testID), data)
	})
}

// History returns the recorded statuses for (suite, testId), oldest
// first, or an empty slice if the test has never been recorded.
func (t *TrendDB) History(suite, testID string) ([]execution.Status, error) {
	var h history
	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(suite, testID))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("store: reading history for %s/%s: %w", suite, testID, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &h)
		})
	})
	if err != nil {
		return nil, err
	}
	return h.Statuses, nil
}

// IsFlaky reports whether a test's recorded history contains both a
// passed and a failed status within the last window entries — a test
// that alternates outcomes without a code change.
func (t *TrendDB) IsFlaky(suite, testID string, window int) (bool, error) {
	statuses, err := t.History(suite, testID)
	if err != nil {
		return false, err
	}
	if len(statuses) > window {
		statuses = statuses[len(statuses)-window:]
	}

	var sawPass, sawFail bool
	for _, s := range statuses {
		switch s {
		case execution.StatusPassed, execution.StatusPassedWithRetry:
			sawPass = true
		case execution.StatusFailed:
			sawFail = true
		}
	}
	return sawPass && sawFail, nil
}
