package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/go-certichain/certichain/storage/model"
)

// ContentStorage implements model.ContentStore in the content_blobs table
type ContentStorage struct {
	db *gorm.DB
}

// ContentStorage returns a ContentStorage
func (s *Storage) ContentStorage() *ContentStorage {
	return &ContentStorage{db: s.db}
}

// Put implements the model.ContentStore interface
func (s *ContentStorage) Put(ctx context.Context, hash string, data []byte) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(
		&model.ContentBlob{
			Hash: hash,
			Size: len(data),
			Data: data,
		},
	).Error
}

// Get implements the model.ContentStore interface
func (s *ContentStorage) Get(ctx context.Context, hash string) ([]byte, error) {
	var blob model.ContentBlob
	res := s.db.WithContext(ctx).Where(&model.ContentBlob{Hash: hash}).Limit(1).Find(&blob)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, model.NotFoundErrorFmt("content not found: %s", hash)
	}
	return blob.Data, nil
}
