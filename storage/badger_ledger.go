package storage

import (
	"context"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/go-certichain/certichain/storage/model"
)

const (
	badgerStatePrefix = "state:"
	badgerHeightKey   = "meta:height"
)

type badgerRecord struct {
	Version uint64 `msgpack:"v"`
	Value   []byte `msgpack:"d"`
}

// BadgerLedger is an embedded model.LedgerStore. It relies on badger's
// optimistic transactions for conflict detection.
type BadgerLedger struct {
	db   *badger.DB
	stop chan struct{}
}

// NewBadgerLedger opens the badger database at path. An empty path opens an
// in-memory database.
func NewBadgerLedger(path string) (*BadgerLedger, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "opening badger ledger")
	}
	l := &BadgerLedger{
		db:   db,
		stop: make(chan struct{}),
	}
	if path != "" {
		go l.gc()
	}
	return l, nil
}

func (l *BadgerLedger) gc() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			for l.db.RunValueLogGC(0.7) == nil {
			}
		}
	}
}

// Close stops the value log GC and closes the database
func (l *BadgerLedger) Close() error {
	close(l.stop)
	return l.db.Close()
}

func getRecord(txn *badger.Txn, key []byte) (badgerRecord, error) {
	var rec badgerRecord
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return rec, nil
	}
	if err != nil {
		return rec, err
	}
	data, err := item.ValueCopy(nil)
	if err != nil {
		return rec, err
	}
	err = msgpack.Unmarshal(data, &rec)
	return rec, errors.Wrapf(err, "decoding ledger record '%s'", key)
}

func setRecord(txn *badger.Txn, key []byte, rec badgerRecord) error {
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return errors.WithStack(err)
	}
	return txn.Set(key, data)
}

// ReadState implements the model.LedgerStore interface
func (l *BadgerLedger) ReadState(_ context.Context, key string) (sv model.StateValue, err error) {
	err = l.db.View(
		func(txn *badger.Txn) error {
			rec, err := getRecord(txn, []byte(badgerStatePrefix+key))
			sv = model.StateValue{
				Value:   rec.Value,
				Version: rec.Version,
			}
			return err
		},
	)
	return
}

// Scan implements the model.LedgerStore interface
func (l *BadgerLedger) Scan(_ context.Context, prefix string) (entries []model.StateEntry, err error) {
	err = l.db.View(
		func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			scanPrefix := []byte(badgerStatePrefix + prefix)
			for it.Seek(scanPrefix); it.ValidForPrefix(scanPrefix); it.Next() {
				item := it.Item()
				data, err := item.ValueCopy(nil)
				if err != nil {
					return err
				}
				var rec badgerRecord
				if err = msgpack.Unmarshal(data, &rec); err != nil {
					return errors.Wrapf(err, "decoding ledger record '%s'", item.Key())
				}
				entries = append(
					entries, model.StateEntry{
						Key: strings.TrimPrefix(string(item.KeyCopy(nil)), badgerStatePrefix),
						StateValue: model.StateValue{
							Value:   rec.Value,
							Version: rec.Version,
						},
					},
				)
			}
			return nil
		},
	)
	return
}

// Commit implements the model.LedgerStore interface
func (l *BadgerLedger) Commit(ctx context.Context, tx model.Transaction) (model.CommitReceipt, error) {
	if err := ctx.Err(); err != nil {
		return model.CommitReceipt{}, err
	}
	if err := tx.Validate(); err != nil {
		return model.CommitReceipt{}, err
	}
	if tx.ID == "" {
		tx.ID = model.NewTransaction().ID
	}
	receipt := model.CommitReceipt{TxID: tx.ID}
	err := l.db.Update(
		func(txn *badger.Txn) error {
			for _, r := range tx.Reads {
				rec, err := getRecord(txn, []byte(badgerStatePrefix+r.Key))
				if err != nil {
					return err
				}
				if rec.Version != r.Version {
					return model.ErrAborted
				}
			}
			for _, w := range tx.Writes {
				key := []byte(badgerStatePrefix + w.Key)
				rec, err := getRecord(txn, key)
				if err != nil {
					return err
				}
				if err = setRecord(
					txn, key, badgerRecord{
						Version: rec.Version + 1,
						Value:   w.Value,
					},
				); err != nil {
					return err
				}
			}
			height, err := getRecord(txn, []byte(badgerHeightKey))
			if err != nil {
				return err
			}
			receipt.Height = height.Version + 1
			return setRecord(txn, []byte(badgerHeightKey), badgerRecord{Version: receipt.Height})
		},
	)
	if errors.Is(err, badger.ErrConflict) {
		log.WithField("tx", tx.ID).Debug("badger ledger: transaction conflict")
		return model.CommitReceipt{}, model.ErrAborted
	}
	if err != nil {
		return model.CommitReceipt{}, err
	}
	receipt.CommittedAt = time.Now().UTC()
	return receipt, nil
}
