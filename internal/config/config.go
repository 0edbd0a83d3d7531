// Package config loads server and tool configuration from defaults, an
// optional config file and FRESHSAVE_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FRESHSAVE_STORE_DRIVER.
const EnvPrefix = "FRESHSAVE"

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverAppwrite = "appwrite"
	DriverBadger   = "badger"
	DriverMemory   = "memory"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Store     StoreConfig     `mapstructure:"store"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Appwrite  AppwriteConfig  `mapstructure:"appwrite"`
	Badger    BadgerConfig    `mapstructure:"badger"`
	Inventory InventoryConfig `mapstructure:"inventory"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// Development reports whether the development logger should be used.
func (a AppConfig) Development() bool { return a.Env == "development" }

type StoreConfig struct {
	Driver       string `mapstructure:"driver"`
	DatabaseID   string `mapstructure:"database_id"`
	CollectionID string `mapstructure:"collection_id"`
}

type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

type AppwriteConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	ProjectID  string        `mapstructure:"project_id"`
	APIKey     string        `mapstructure:"api_key"`
	SelfSigned bool          `mapstructure:"self_signed"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type BadgerConfig struct {
	// Path is the data directory. Empty runs badger in memory.
	Path string `mapstructure:"path"`
}

type InventoryConfig struct {
	ExpiringWindowDays int `mapstructure:"expiring_window_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.database_id", "freshsave")
	v.SetDefault("store.collection_id", "inventory_items")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 1)

	v.SetDefault("appwrite.endpoint", "")
	v.SetDefault("appwrite.project_id", "")
	v.SetDefault("appwrite.api_key", "")
	v.SetDefault("appwrite.self_signed", false)
	v.SetDefault("appwrite.timeout", 15*time.Second)

	v.SetDefault("badger.path", "")

	v.SetDefault("inventory.expiring_window_days", 7)
}

// Load reads configuration. path may be empty; FRESHSAVE_CONFIG is used
// as a fallback file location.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = v.GetString("config")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected driver has what it needs.
func (c *Config) Validate() error {
	if c.Inventory.ExpiringWindowDays <= 0 {
		return fmt.Errorf("inventory.expiring_window_days must be positive, got %d", c.Inventory.ExpiringWindowDays)
	}
	if c.Store.CollectionID == "" {
		return fmt.Errorf("store.collection_id is required")
	}

	switch c.Store.Driver {
	case DriverMemory, DriverBadger:
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required for the postgres driver")
		}
	case DriverAppwrite:
		if c.Appwrite.Endpoint == "" || c.Appwrite.ProjectID == "" {
			return fmt.Errorf("appwrite.endpoint and appwrite.project_id are required for the appwrite driver")
		}
		if c.Store.DatabaseID == "" {
			return fmt.Errorf("store.database_id is required for the appwrite driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}
