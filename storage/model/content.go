package model

import (
	"context"
	"time"
)

// ContentStore is an opaque content-addressed blob store. Keys are content
// hashes computed by the caller; storing the same hash twice must be a no-op.
type ContentStore interface {
	// Put stores data under hash
	Put(ctx context.Context, hash string, data []byte) error
	// Get returns the data stored under hash or a NotFoundError
	Get(ctx context.Context, hash string) ([]byte, error)
}

// ContentBlob is the gorm model for a stored document
type ContentBlob struct {
	Hash      string `gorm:"primaryKey;size:128"`
	Size      int
	Data      []byte
	CreatedAt time.Time
}
