package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "inventory_items", cfg.Store.CollectionID)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 7, cfg.Inventory.ExpiringWindowDays)
	assert.Equal(t, 15*time.Second, cfg.Appwrite.Timeout)
	assert.True(t, cfg.App.Development())
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freshsave.yaml")
	err := os.WriteFile(path, []byte(`
store:
  driver: appwrite
  database_id: household
appwrite:
  endpoint: https://cloud.example.test/v1
  project_id: kitchen
  timeout: 3s
inventory:
  expiring_window_days: 3
`), 0o600)
	require.NoError(t, err)

	t.Setenv("FRESHSAVE_INVENTORY_EXPIRING_WINDOW_DAYS", "5")
	t.Setenv("FRESHSAVE_APPWRITE_API_KEY", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverAppwrite, cfg.Store.Driver)
	assert.Equal(t, "household", cfg.Store.DatabaseID)
	assert.Equal(t, "kitchen", cfg.Appwrite.ProjectID)
	assert.Equal(t, "secret", cfg.Appwrite.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Appwrite.Timeout)
	assert.Equal(t, 5, cfg.Inventory.ExpiringWindowDays)
}

func TestConfigFileFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freshsave.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  port: \"9090\"\n"), 0o600))
	t.Setenv("FRESHSAVE_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Store:     StoreConfig{Driver: DriverMemory, CollectionID: "items", DatabaseID: "db"},
			Inventory: InventoryConfig{ExpiringWindowDays: 7},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"memory", func(*Config) {}, false},
		{"badger", func(c *Config) { c.Store.Driver = DriverBadger }, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, true},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = DriverPostgres }, true},
		{"postgres", func(c *Config) {
			c.Store.Driver = DriverPostgres
			c.Postgres.DSN = "postgres://localhost/freshsave"
		}, false},
		{"appwrite without project", func(c *Config) {
			c.Store.Driver = DriverAppwrite
			c.Appwrite.Endpoint = "https://x"
		}, true},
		{"zero window", func(c *Config) { c.Inventory.ExpiringWindowDays = 0 }, true},
		{"no collection", func(c *Config) { c.Store.CollectionID = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
