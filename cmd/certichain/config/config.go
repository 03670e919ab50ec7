package config

import (
	"context"
	"os"
	"path/filepath"
	"reflect"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/fileutils"
	"gopkg.in/yaml.v3"

	"github.com/go-certichain/certichain"
	"github.com/go-certichain/certichain/storage"
	"github.com/go-certichain/certichain/storage/model"
)

// EnvConfigFile names the environment variable that can point to the config
// file
const EnvConfigFile = "CERTICHAIN_CONFIG"

// Config holds the configuration of a certichain server
type Config struct {
	Server   certichain.ServerConf `yaml:"server"`
	Storage  storageConf           `yaml:"storage"`
	Ledger   ledgerConf            `yaml:"ledger"`
	Content  contentConf           `yaml:"content"`
	Caching  cachingConf           `yaml:"caching"`
	Logging  loggingConf           `yaml:"logging"`
	API      apiConf               `yaml:"api"`
	Registry registryConf          `yaml:"registry"`
}

type configValidator interface {
	validate() error
}

var c Config

var possibleConfigLocations = []string{
	".",
	"config",
	"/config",
	"/etc/certichain",
}

const defaultConfigFile = "config.yaml"

// Get returns the loaded Config
func Get() Config {
	return c
}

func defaultConfig() Config {
	return Config{
		Server:   certichain.DefaultServerConf,
		Storage:  defaultStorageConf,
		Ledger:   defaultLedgerConf,
		Content:  defaultContentConf,
		Logging:  defaultLoggingConf,
		API:      defaultAPIConf,
		Registry: defaultRegistryConf(),
	}
}

// Load reads and validates the config file. If filename is empty the file is
// taken from CERTICHAIN_CONFIG or searched in the default locations. Load
// terminates the process on failure.
func Load(filename string) {
	data, path, err := readConfigFile(filename)
	if err != nil {
		log.WithError(err).Fatal("could not read config file")
	}
	if err = load(data); err != nil {
		log.WithError(err).WithField("file", path).Fatal("invalid config")
	}
}

func readConfigFile(filename string) ([]byte, string, error) {
	if filename == "" {
		filename = os.Getenv(EnvConfigFile)
	}
	if filename != "" {
		data, err := os.ReadFile(filename)
		return data, filename, errors.WithStack(err)
	}
	for _, dir := range possibleConfigLocations {
		path := filepath.Join(dir, defaultConfigFile)
		if fileutils.FileExists(path) {
			data, err := os.ReadFile(path)
			return data, path, errors.WithStack(err)
		}
	}
	return nil, "", errors.Errorf("no '%s' found in %v", defaultConfigFile, possibleConfigLocations)
}

func load(data []byte) error {
	conf := defaultConfig()
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return errors.Wrap(err, "could not parse config")
	}
	if err := conf.validate(); err != nil {
		return err
	}
	c = conf
	return nil
}

func (conf *Config) validate() error {
	v := reflect.ValueOf(conf).Elem()
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		fieldVal := v.Field(i)
		if !fieldVal.CanAddr() {
			continue
		}
		if validator, ok := fieldVal.Addr().Interface().(configValidator); ok {
			if err := validator.validate(); err != nil {
				return errors.Errorf("validation failed for field '%s': %s", t.Field(i).Name, err.Error())
			}
		}
	}
	if conf.Content.Backend == storage.ContentRedis && conf.Caching.RedisAddr == "" {
		return errors.New("content backend 'redis' needs caching.redis_addr")
	}
	return nil
}

// LoadStorageBackends loads and returns the storage backends for the passed
// Config
func LoadStorageBackends(ctx context.Context, conf Config) (model.Backends, error) {
	backs, err := storage.LoadStorageBackends(
		ctx, storage.BackendsConfig{
			Database: storage.Config{
				Driver:    conf.Storage.Driver,
				DSN:       conf.Storage.DSN,
				DataDir:   conf.Storage.DataDir,
				Debug:     conf.Storage.Debug,
				UsersHash: conf.API.Admin.Argon2idParams,
			},
			Ledger:     conf.Ledger.Driver,
			LedgerPath: conf.Ledger.Path,
			Content:    conf.Content.Backend,
			Redis:      conf.Caching.RedisOptions(),
		},
	)
	if err != nil {
		return model.Backends{}, err
	}
	log.WithFields(
		log.Fields{
			"database": conf.Storage.Driver,
			"ledger":   conf.Ledger.Driver,
			"content":  conf.Content.Backend,
		},
	).Info("Loaded storage backends")
	return backs, nil
}
