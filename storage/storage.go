package storage

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/go-certichain/certichain/storage/model"
)

// Storage is a GORM-based storage implementation
type Storage struct {
	db         *gorm.DB
	userParams Argon2idParams
}

var models = []any{
	&model.LedgerState{},
	&model.LedgerCommit{},
	&model.ContentBlob{},
	&model.User{},
}

// NewStorage creates a new GORM-based storage
func NewStorage(config Config) (*Storage, error) {
	db, err := Connect(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	return newStorage(db, config.UsersHash)
}

func newStorage(db *gorm.DB, params Argon2idParams) (*Storage, error) {
	if err := db.AutoMigrate(models...); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}
	if params.Time == 0 {
		params = defaultArgon2idParams()
	}
	return &Storage{
		db:         db,
		userParams: params,
	}, nil
}

// Close closes the underlying database connection
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
