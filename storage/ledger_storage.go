package storage

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/go-certichain/certichain/storage/model"
)

// LedgerStorage implements model.LedgerStore on top of the relational
// database. Every commit is appended to the ledger_commits journal.
type LedgerStorage struct {
	db *gorm.DB
}

// Ledger returns a LedgerStorage
func (s *Storage) Ledger() *LedgerStorage {
	return &LedgerStorage{db: s.db}
}

var keyColumn = clause.Column{Name: "key"}

// storedKey is the column value for a ledger key. Hex digits sort and match
// the same under every collation and keep byte prefixes as prefixes.
func storedKey(key string) string {
	return hex.EncodeToString([]byte(key))
}

func currentState(db *gorm.DB, key string) (model.LedgerState, bool, error) {
	var st model.LedgerState
	res := db.Where(&model.LedgerState{Key: storedKey(key)}).Limit(1).Find(&st)
	if res.Error != nil {
		return st, false, res.Error
	}
	return st, res.RowsAffected > 0, nil
}

// ReadState implements the model.LedgerStore interface
func (s *LedgerStorage) ReadState(ctx context.Context, key string) (model.StateValue, error) {
	st, found, err := currentState(s.db.WithContext(ctx), key)
	if err != nil || !found {
		return model.StateValue{}, err
	}
	return model.StateValue{
		Value:   st.Value,
		Version: st.Version,
	}, nil
}

// Scan implements the model.LedgerStore interface
func (s *LedgerStorage) Scan(ctx context.Context, prefix string) ([]model.StateEntry, error) {
	var rows []model.LedgerState
	if err := s.db.WithContext(ctx).
		Where(clause.Like{Column: keyColumn, Value: storedKey(prefix) + "%"}).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]model.StateEntry, 0, len(rows))
	for _, r := range rows {
		key, err := hex.DecodeString(r.Key)
		if err != nil {
			return nil, errors.Wrapf(err, "corrupt ledger key '%s'", r.Key)
		}
		entries = append(
			entries, model.StateEntry{
				Key: string(key),
				StateValue: model.StateValue{
					Value:   r.Value,
					Version: r.Version,
				},
			},
		)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Commit implements the model.LedgerStore interface. Writes are applied as
// conditional updates on the version, so a concurrent commit that slipped in
// between validation and write still aborts the transaction.
func (s *LedgerStorage) Commit(ctx context.Context, tx model.Transaction) (model.CommitReceipt, error) {
	if err := tx.Validate(); err != nil {
		return model.CommitReceipt{}, err
	}
	if tx.ID == "" {
		tx.ID = model.NewTransaction().ID
	}
	keys, err := json.Marshal(tx.Keys())
	if err != nil {
		return model.CommitReceipt{}, errors.WithStack(err)
	}
	entry := model.LedgerCommit{
		TxID:        tx.ID,
		Keys:        datatypes.JSON(keys),
		CommittedAt: time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).Transaction(
		func(db *gorm.DB) error {
			for _, r := range tx.Reads {
				st, _, err := currentState(db, r.Key)
				if err != nil {
					return err
				}
				if st.Version != r.Version {
					return model.ErrAborted
				}
			}
			for _, w := range tx.Writes {
				if err := writeState(db, tx, w); err != nil {
					return err
				}
			}
			return db.Create(&entry).Error
		},
	)
	if err != nil {
		return model.CommitReceipt{}, err
	}
	return model.CommitReceipt{
		TxID:        entry.TxID,
		Height:      entry.Height,
		CommittedAt: entry.CommittedAt,
	}, nil
}

func writeState(db *gorm.DB, tx model.Transaction, w model.Write) error {
	version, isRead := tx.ReadVersion(w.Key)
	if !isRead {
		st, _, err := currentState(db, w.Key)
		if err != nil {
			return err
		}
		version = st.Version
	}
	if version == 0 {
		err := db.Create(
			&model.LedgerState{
				Key:     storedKey(w.Key),
				Value:   w.Value,
				Version: 1,
			},
		).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.ErrAborted
		}
		return err
	}
	res := db.Model(&model.LedgerState{}).
		Where(
			&model.LedgerState{
				Key:     storedKey(w.Key),
				Version: version,
			},
		).
		Updates(
			map[string]any{
				"value":   w.Value,
				"version": version + 1,
			},
		)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrAborted
	}
	return nil
}

// Journal returns up to limit journal entries with a height above after,
// ordered by height.
func (s *LedgerStorage) Journal(ctx context.Context, after uint64, limit int) ([]model.LedgerCommit, error) {
	var commits []model.LedgerCommit
	q := s.db.WithContext(ctx).Where("height > ?", after).Order("height")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&commits).Error; err != nil {
		return nil, err
	}
	return commits, nil
}
