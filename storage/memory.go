package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-certichain/certichain/storage/model"
)

// MemoryLedger is an in-process model.LedgerStore. State is lost on exit.
type MemoryLedger struct {
	mu     sync.RWMutex
	state  map[string]model.StateValue
	height uint64
}

// NewMemoryLedger returns an empty MemoryLedger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{state: make(map[string]model.StateValue)}
}

// ReadState implements the model.LedgerStore interface
func (l *MemoryLedger) ReadState(_ context.Context, key string) (model.StateValue, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v := l.state[key]
	return model.StateValue{
		Value:   cloneBytes(v.Value),
		Version: v.Version,
	}, nil
}

// Scan implements the model.LedgerStore interface
func (l *MemoryLedger) Scan(_ context.Context, prefix string) ([]model.StateEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var entries []model.StateEntry
	for k, v := range l.state {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		entries = append(
			entries, model.StateEntry{
				Key: k,
				StateValue: model.StateValue{
					Value:   cloneBytes(v.Value),
					Version: v.Version,
				},
			},
		)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Commit implements the model.LedgerStore interface
func (l *MemoryLedger) Commit(ctx context.Context, tx model.Transaction) (model.CommitReceipt, error) {
	if err := ctx.Err(); err != nil {
		return model.CommitReceipt{}, err
	}
	if err := tx.Validate(); err != nil {
		return model.CommitReceipt{}, err
	}
	if tx.ID == "" {
		tx.ID = model.NewTransaction().ID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range tx.Reads {
		if l.state[r.Key].Version != r.Version {
			return model.CommitReceipt{}, model.ErrAborted
		}
	}
	for _, w := range tx.Writes {
		cur := l.state[w.Key]
		l.state[w.Key] = model.StateValue{
			Value:   cloneBytes(w.Value),
			Version: cur.Version + 1,
		}
	}
	l.height++
	return model.CommitReceipt{
		TxID:        tx.ID,
		Height:      l.height,
		CommittedAt: time.Now().UTC(),
	}, nil
}

// MemoryContentStore is an in-process model.ContentStore
type MemoryContentStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryContentStore returns an empty MemoryContentStore
func NewMemoryContentStore() *MemoryContentStore {
	return &MemoryContentStore{blobs: make(map[string][]byte)}
}

// Put implements the model.ContentStore interface
func (s *MemoryContentStore) Put(_ context.Context, hash string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[hash]; !ok {
		s.blobs[hash] = cloneBytes(data)
	}
	return nil
}

// Get implements the model.ContentStore interface
func (s *MemoryContentStore) Get(_ context.Context, hash string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[hash]
	if !ok {
		return nil, model.NotFoundErrorFmt("content not found: %s", hash)
	}
	return cloneBytes(data), nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
