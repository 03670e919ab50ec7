package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/go-certichain/certichain/storage/model"
)

// DriverType represents the type of database driver
type DriverType string

const (
	// DriverSQLite is the SQLite driver
	DriverSQLite DriverType = "sqlite"
	// DriverMySQL is the MySQL driver
	DriverMySQL DriverType = "mysql"
	// DriverPostgres is the PostgreSQL driver
	DriverPostgres DriverType = "postgres"
)

// SupportedDrivers lists the database drivers
var SupportedDrivers = []DriverType{
	DriverSQLite,
	DriverMySQL,
	DriverPostgres,
}

// LedgerDriver selects the model.LedgerStore implementation
type LedgerDriver string

// Ledger drivers
const (
	LedgerGorm   LedgerDriver = "gorm"
	LedgerBadger LedgerDriver = "badger"
	LedgerMemory LedgerDriver = "memory"
)

// ContentBackend selects the model.ContentStore implementation
type ContentBackend string

// Content backends
const (
	ContentDB     ContentBackend = "db"
	ContentRedis  ContentBackend = "redis"
	ContentMemory ContentBackend = "memory"
)

// DSN creates and returns a dsn connection string for the passed DriverType and DSNConf
func DSN(driver DriverType, conf DSNConf) (string, error) {
	switch driver {
	case DriverSQLite:
		return "", errors.Errorf("driver %s does not use dsn", driver)
	case DriverMySQL:
		if conf.Port == 0 {
			conf.Port = 3306
		}
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True", conf.User, conf.Password, conf.Host, conf.Port,
			conf.DB,
		), nil
	case DriverPostgres:
		if conf.Port == 0 {
			conf.Port = 5432
		}
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d",
			conf.Host, conf.User, conf.Password, conf.DB, conf.Port,
		), nil
	default:
		return "", errors.Errorf("unsupported driver '%s'", driver)
	}
}

// DSNConf holds the connection parameters DSN builds a connection string from
type DSNConf struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       string `yaml:"db"`
}

// Config represents the database configuration
type Config struct {
	// Driver is the database driver type
	Driver DriverType `yaml:"driver"`
	// DSN is the data source name; for SQLite the database file path
	DSN string `yaml:"dsn"`
	// DataDir is the directory where database files are stored (for SQLite)
	DataDir string `yaml:"data_dir"`
	// Debug enables gorm's SQL logging
	Debug bool `yaml:"debug"`
	// UsersHash defines parameters for hashing admin user passwords
	UsersHash Argon2idParams `yaml:"users_hash"`
}

// Argon2idParams configures Argon2id hashing parameters
type Argon2idParams struct {
	Time        uint32 `yaml:"time"`
	MemoryKiB   uint32 `yaml:"memory_kib"`
	Parallelism uint8  `yaml:"parallelism"`
	KeyLen      uint32 `yaml:"key_len"`
	SaltLen     uint32 `yaml:"salt_len"`
}

// Connect establishes a connection to the database based on the configuration
func Connect(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = filepath.Join(cfg.DataDir, "certichain.db")
		}
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(cfg.DSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, errors.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	logMode := logger.Silent
	if cfg.Debug {
		logMode = logger.Info
	}

	return gorm.Open(
		dialector, &gorm.Config{
			Logger:         logger.Default.LogMode(logMode),
			TranslateError: true,
		},
	)
}

// BackendsConfig selects and configures the backends returned by
// LoadStorageBackends.
type BackendsConfig struct {
	Database Config
	Ledger   LedgerDriver
	// LedgerPath is the badger directory
	LedgerPath string
	Content    ContentBackend
	// Redis is required for ContentRedis
	Redis *redis.Options
}

// LoadStorageBackends opens the database and the configured ledger and
// content store and returns them grouped.
func LoadStorageBackends(ctx context.Context, cfg BackendsConfig) (model.Backends, error) {
	warehouse, err := NewStorage(cfg.Database)
	if err != nil {
		return model.Backends{}, err
	}
	backs := model.Backends{
		Users:   warehouse.UsersStorage(),
		Closers: []io.Closer{warehouse},
	}

	switch cfg.Ledger {
	case LedgerGorm, "":
		backs.Ledger = warehouse.Ledger()
	case LedgerBadger:
		if cfg.LedgerPath == "" {
			_ = backs.Close()
			return model.Backends{}, errors.New("badger ledger needs a path")
		}
		l, err := NewBadgerLedger(cfg.LedgerPath)
		if err != nil {
			_ = backs.Close()
			return model.Backends{}, err
		}
		backs.Ledger = l
		backs.Closers = append(backs.Closers, l)
	case LedgerMemory:
		log.Warn("using the in-memory ledger; all certificates are lost on restart")
		backs.Ledger = NewMemoryLedger()
	default:
		_ = backs.Close()
		return model.Backends{}, errors.Errorf("unsupported ledger driver '%s'", cfg.Ledger)
	}

	switch cfg.Content {
	case ContentDB, "":
		backs.Content = warehouse.ContentStorage()
	case ContentRedis:
		if cfg.Redis == nil {
			_ = backs.Close()
			return model.Backends{}, errors.New("redis content store needs a redis address")
		}
		s, err := NewRedisContentStore(ctx, cfg.Redis)
		if err != nil {
			_ = backs.Close()
			return model.Backends{}, err
		}
		backs.Content = s
		backs.Closers = append(backs.Closers, s)
	case ContentMemory:
		backs.Content = NewMemoryContentStore()
	default:
		_ = backs.Close()
		return model.Backends{}, errors.Errorf("unsupported content backend '%s'", cfg.Content)
	}
	return backs, nil
}
