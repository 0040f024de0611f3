package database

import (
	"path/filepath"
	"testing"

	"valuemap/internal/config"
	"valuemap/internal/models"
)

func TestNewManager_SQLite(t *testing.T) {
	cfg := &Config{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "test.db")}

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = m.Close() }()

	if err := m.RunMigrations(); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	if !m.DB().Migrator().HasTable(&models.MarketSnapshot{}) {
		t.Error("expected market_snapshots table")
	}
}

func TestNewManager_UnsupportedDriver(t *testing.T) {
	if _, err := NewManager(&Config{Driver: "oracle"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestConfig_URLs(t *testing.T) {
	c := NewConfig(&config.Config{
		DBDriver: "postgres", DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "vm", DBSSLMode: "disable",
	})
	if got := c.DSN(); got != "host=db port=5432 user=u password=p dbname=vm sslmode=disable" {
		t.Errorf("unexpected DSN %q", got)
	}
	if got := c.MigrateURL(); got != "postgres://u:p@db:5432/vm?sslmode=disable" {
		t.Errorf("unexpected migrate URL %q", got)
	}
}
