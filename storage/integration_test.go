package storage

import (
	"context"
	"os"
	"testing"
)

func pingDatabase(t *testing.T, config Config) {
	t.Helper()
	db, err := Connect(config)
	if err != nil {
		t.Fatalf("Failed to connect to %s database: %v", config.Driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get SQL DB: %v", err)
	}
	defer sqlDB.Close()
	if err = sqlDB.Ping(); err != nil {
		t.Fatalf("Failed to ping %s database: %v", config.Driver, err)
	}
}

func skipUnlessIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}
}

func TestSQLiteConnection(t *testing.T) {
	skipUnlessIntegration(t)
	pingDatabase(
		t, Config{
			Driver:  DriverSQLite,
			DataDir: t.TempDir(),
		},
	)
}

func TestMySQLConnection(t *testing.T) {
	skipUnlessIntegration(t)
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		t.Skip("Skipping MySQL test. Set MYSQL_DSN environment variable")
	}
	pingDatabase(
		t, Config{
			Driver: DriverMySQL,
			DSN:    dsn,
		},
	)
}

func TestPostgresConnection(t *testing.T) {
	skipUnlessIntegration(t)
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Skipping PostgreSQL test. Set POSTGRES_DSN environment variable")
	}
	pingDatabase(
		t, Config{
			Driver: DriverPostgres,
			DSN:    dsn,
		},
	)
}

func TestLoadStorageBackends(t *testing.T) {
	skipUnlessIntegration(t)
	dir := t.TempDir()
	backs, err := LoadStorageBackends(
		context.Background(), BackendsConfig{
			Database: Config{
				Driver:  DriverSQLite,
				DataDir: dir,
			},
			Ledger:     LedgerBadger,
			LedgerPath: dir + "/ledger",
			Content:    ContentDB,
		},
	)
	if err != nil {
		t.Fatalf("LoadStorageBackends failed: %v", err)
	}
	defer backs.Close()
	if _, ok := backs.Ledger.(*BadgerLedger); !ok {
		t.Errorf("expected a badger ledger, got %T", backs.Ledger)
	}
	if _, ok := backs.Content.(*ContentStorage); !ok {
		t.Errorf("expected the database content store, got %T", backs.Content)
	}
	if backs.Users == nil {
		t.Error("no users store")
	}
}

func TestDSN(t *testing.T) {
	conf := DSNConf{
		User:     "certichain",
		Password: "secret",
		Host:     "db",
		DB:       "certichain",
	}
	tests := []struct {
		driver  DriverType
		want    string
		wantErr bool
	}{
		{driver: DriverMySQL, want: "certichain:secret@tcp(db:3306)/certichain?charset=utf8mb4&parseTime=True"},
		{driver: DriverPostgres, want: "host=db user=certichain password=secret dbname=certichain port=5432"},
		{driver: DriverSQLite, wantErr: true},
		{driver: "oracle", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(
			string(tt.driver), func(t *testing.T) {
				got, err := DSN(tt.driver, conf)
				if tt.wantErr {
					if err == nil {
						t.Errorf("expected error, got %q", got)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("DSN() = %q, want %q", got, tt.want)
				}
			},
		)
	}
}
