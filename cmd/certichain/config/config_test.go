package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-certichain/certichain/registry"
	"github.com/go-certichain/certichain/storage"
)

func TestLoadDefaults(t *testing.T) {
	require.NoError(t, load([]byte("")))
	conf := Get()
	assert.Equal(t, 3000, conf.Server.Port)
	assert.Equal(t, storage.DriverSQLite, conf.Storage.Driver)
	assert.Equal(t, storage.LedgerGorm, conf.Ledger.Driver)
	assert.Equal(t, storage.ContentDB, conf.Content.Backend)
	assert.Equal(t, registry.RevocationByIssuer, conf.Registry.Revocation.Mode)
	assert.Nil(t, conf.Caching.RedisOptions())
	require.NotNil(t, conf.Registry.TemplateSet())
	assert.Len(t, conf.Registry.TemplateSet().List(), 4)
	assert.Equal(t, 5, conf.API.Login.MaxAttempts)
	assert.Equal(t, 15*time.Minute, conf.API.Login.LockoutDuration.Duration())
	assert.NotNil(t, conf.API.Login.Guard())
}

func TestLoadLoginDisabled(t *testing.T) {
	require.NoError(t, load([]byte("api:\n  login:\n    max_attempts: 0\n")))
	assert.Nil(t, Get().API.Login.Guard())
}

func TestLoadFull(t *testing.T) {
	data := []byte(`
server:
  port: 8080
storage:
  driver: postgres
  user: certs
  password: secret
  host: db
  db: registry
ledger:
  driver: badger
  path: /var/lib/certichain/ledger
content:
  backend: redis
caching:
  redis_addr: redis:6379
  dial_timeout: 3s
logging:
  internal:
    level: debug
registry:
  hash_algorithm: sha3-256
  max_document_size: 1024
  revocation:
    mode: issuer_or_admin
    admins: [registrar]
  templates:
    transcript:
      name: Transcript of Records
      fields: [recipientName, institution]
      required: [recipientName]
`)
	require.NoError(t, load(data))
	conf := Get()
	assert.Equal(t, 8080, conf.Server.Port)
	assert.Equal(t, "host=db user=certs password=secret dbname=registry port=5432", conf.Storage.DSN)
	assert.Equal(t, "/var/lib/certichain/ledger", conf.Ledger.Path)

	opts := conf.Caching.RedisOptions()
	require.NotNil(t, opts)
	assert.Equal(t, "redis:6379", opts.Addr)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)

	engineConf := conf.Registry.EngineConfig()
	assert.Equal(t, "sha3-256", engineConf.HashAlgorithm)
	assert.Equal(t, 1024, engineConf.MaxDocumentSize)
	assert.Equal(t, []string{"registrar"}, engineConf.Revocation.Admins)

	templates := conf.Registry.TemplateSet()
	assert.Len(t, templates.List(), 5)
	transcript, ok := templates.Get("transcript")
	require.True(t, ok)
	assert.Equal(t, "Transcript of Records", transcript.Name)
}

func TestLoadOnlyCustomTemplates(t *testing.T) {
	data := []byte(`
registry:
  default_templates: false
  templates:
    degree:
      name: Custom Degree
      fields: [recipientName]
      required: [recipientName]
`)
	require.NoError(t, load(data))
	templates := Get().Registry.TemplateSet().List()
	require.Len(t, templates, 1)
	assert.Equal(t, "degree", templates[0].Key)
	assert.Equal(t, "Custom Degree", templates[0].Name)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"yaml", "server: ["},
		{"ledger driver", "ledger:\n  driver: etcd"},
		{"badger without path", "ledger:\n  driver: badger"},
		{"content backend", "content:\n  backend: s3"},
		{"negative login attempts", "api:\n  login:\n    max_attempts: -1"},
		{"lockout without duration", "api:\n  login:\n    lockout_duration: 0s"},
		{"redis without address", "content:\n  backend: redis"},
		{"hash algorithm", "registry:\n  hash_algorithm: md5"},
		{"document size", "registry:\n  max_document_size: -1"},
		{"revocation mode", "registry:\n  revocation:\n    mode: everyone"},
		{"admin mode without admins", "registry:\n  revocation:\n    mode: issuer_or_admin"},
		{"no templates", "registry:\n  default_templates: false"},
		{
			"required not in fields",
			"registry:\n  templates:\n    x:\n      fields: [recipientName]\n      required: [degree]",
		},
		{"log level", "logging:\n  internal:\n    level: loud"},
		{"log dir", "logging:\n  access:\n    dir: /does/not/exist/certichain"},
		{"storage driver", "storage:\n  driver: oracle"},
	}
	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				assert.Error(t, load([]byte(tt.data)))
			},
		)
	}
}

func TestReadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "certichain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600))

	data, used, err := readConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Contains(t, string(data), "9000")

	t.Setenv(EnvConfigFile, path)
	_, used, err = readConfigFile("")
	require.NoError(t, err)
	assert.Equal(t, path, used)

	_, _, err = readConfigFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
