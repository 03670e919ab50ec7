package model

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
)

// MaxKeyLength is the longest ledger key in bytes that every LedgerStore
// accepts
const MaxKeyLength = 255

// ErrKeyTooLong is returned by Commit for a write to a key longer than
// MaxKeyLength
var ErrKeyTooLong = errors.New("ledger key too long")

// StateValue is the committed value of a single ledger key together with its
// version. Version 0 means the key has never been written.
type StateValue struct {
	Value   []byte
	Version uint64
}

// Exists reports whether the key held a value when it was read
func (v StateValue) Exists() bool {
	return v.Version > 0
}

// StateEntry is a key with its committed state, as returned by a prefix scan.
type StateEntry struct {
	Key string
	StateValue
}

// ReadEntry records the version of a key observed while building a
// transaction. Commit aborts if the key's version differs at commit time.
type ReadEntry struct {
	Key     string
	Version uint64
}

// Write is a single key→value write of a transaction
type Write struct {
	Key   string
	Value []byte
}

// Transaction is an ordered set of writes that is applied atomically, guarded
// by the versions of all keys it read.
type Transaction struct {
	// ID is assigned before commit so that records written by the
	// transaction can reference it.
	ID     string
	Reads  []ReadEntry
	Writes []Write
}

// NewTransaction returns an empty transaction with a fresh ID
func NewTransaction() Transaction {
	return Transaction{ID: uuid.NewString()}
}

// Read adds a read dependency to the transaction
func (t *Transaction) Read(key string, version uint64) {
	for i, r := range t.Reads {
		if r.Key == key {
			t.Reads[i].Version = version
			return
		}
	}
	t.Reads = append(t.Reads, ReadEntry{Key: key, Version: version})
}

// Put adds a write to the transaction; a later write to the same key replaces
// an earlier one.
func (t *Transaction) Put(key string, value []byte) {
	for i, w := range t.Writes {
		if w.Key == key {
			t.Writes[i].Value = value
			return
		}
	}
	t.Writes = append(t.Writes, Write{Key: key, Value: value})
}

// ReadVersion returns the version recorded for key in the read set
func (t Transaction) ReadVersion(key string) (uint64, bool) {
	for _, r := range t.Reads {
		if r.Key == key {
			return r.Version, true
		}
	}
	return 0, false
}

// Keys returns the keys written by the transaction in order
func (t Transaction) Keys() []string {
	keys := make([]string, len(t.Writes))
	for i, w := range t.Writes {
		keys[i] = w.Key
	}
	return keys
}

// Validate checks the written keys against MaxKeyLength
func (t Transaction) Validate() error {
	for _, w := range t.Writes {
		if len(w.Key) > MaxKeyLength {
			return errors.Wrapf(ErrKeyTooLong, "%d bytes", len(w.Key))
		}
	}
	return nil
}

// CommitReceipt identifies a committed transaction
type CommitReceipt struct {
	TxID        string    `json:"tx_id"`
	Height      uint64    `json:"height"`
	CommittedAt time.Time `json:"committed_at"`
}

// LedgerStore is the narrow transactional interface to the ledger. All
// mutations go through Commit; a commit is all-or-nothing.
type LedgerStore interface {
	// ReadState returns the committed state of key. A missing key is not an
	// error; it yields a StateValue with Version 0.
	ReadState(ctx context.Context, key string) (StateValue, error)
	// Scan returns all committed entries whose key starts with prefix,
	// ordered by key.
	Scan(ctx context.Context, prefix string) ([]StateEntry, error)
	// Commit atomically applies tx or returns ErrAborted if any read
	// dependency changed.
	Commit(ctx context.Context, tx Transaction) (CommitReceipt, error)
}

// LedgerState is the gorm model for the current value of a ledger key. Key
// holds the hex encoding of the ledger key, so that lookups and prefix scans
// compare bytes under any collation.
type LedgerState struct {
	Key       string `gorm:"primaryKey;size:510"`
	Value     []byte
	Version   uint64 `gorm:"not null"`
	UpdatedAt int    `gorm:"autoUpdateTime"`
}

// LedgerCommit is an entry of the append-only commit journal kept by the
// gorm ledger.
type LedgerCommit struct {
	Height      uint64         `gorm:"primaryKey;autoIncrement" json:"height"`
	TxID        string         `gorm:"uniqueIndex;size:36" json:"tx_id"`
	Keys        datatypes.JSON `json:"keys"`
	CommittedAt time.Time      `json:"committed_at"`
}
