package model

import (
	"context"
	"io"
)

// Backends groups the stores the application is wired with.
type Backends struct {
	Ledger  LedgerStore
	Content ContentStore
	Users   UsersStore
	// Closers are closed by Close in reverse order
	Closers []io.Closer
}

// Close closes all backends that hold resources
func (b Backends) Close() error {
	var first error
	for i := len(b.Closers) - 1; i >= 0; i-- {
		if err := b.Closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// LedgerJournal is implemented by ledgers that keep a commit journal
type LedgerJournal interface {
	Journal(ctx context.Context, after uint64, limit int) ([]LedgerCommit, error)
}
