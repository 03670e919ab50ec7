package config

import (
	"github.com/pkg/errors"

	"github.com/go-certichain/certichain/storage"
)

type storageConf struct {
	Driver          storage.DriverType `yaml:"driver"`
	DataDir         string             `yaml:"data_dir"`
	DSN             string             `yaml:"dsn"`
	storage.DSNConf `yaml:",inline"`
	Debug           bool `yaml:"debug"`
}

func (c *storageConf) validate() error {
	if c.Driver == storage.DriverSQLite {
		if c.DataDir == "" && c.DSN == "" {
			return errors.New("error in storage conf: data_dir must be specified")
		}
		return nil
	}
	var err error
	if c.DSN == "" {
		c.DSN, err = storage.DSN(c.Driver, c.DSNConf)
	}
	return err
}

var defaultStorageConf = storageConf{
	Driver:  storage.DriverSQLite,
	DataDir: ".",
	DSNConf: storage.DSNConf{
		User: "certichain",
		Host: "localhost",
		DB:   "certichain",
	},
}

type ledgerConf struct {
	Driver storage.LedgerDriver `yaml:"driver"`
	// Path is the badger directory
	Path string `yaml:"path"`
}

func (c *ledgerConf) validate() error {
	switch c.Driver {
	case storage.LedgerGorm, storage.LedgerMemory:
		return nil
	case storage.LedgerBadger:
		if c.Path == "" {
			return errors.New("error in ledger conf: path must be specified for the badger ledger")
		}
		return nil
	default:
		return errors.Errorf("unsupported ledger driver '%s'", c.Driver)
	}
}

var defaultLedgerConf = ledgerConf{
	Driver: storage.LedgerGorm,
}

type contentConf struct {
	Backend storage.ContentBackend `yaml:"backend"`
}

func (c *contentConf) validate() error {
	switch c.Backend {
	case storage.ContentDB, storage.ContentRedis, storage.ContentMemory:
		return nil
	default:
		return errors.Errorf("unsupported content backend '%s'", c.Backend)
	}
}

var defaultContentConf = contentConf{
	Backend: storage.ContentDB,
}
