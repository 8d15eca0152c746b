package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
)

// DatabaseConfig represents the [database] section
type DatabaseConfig struct {
	// Backend is one of memory, pebble or leveldb
	Backend string `toml:"backend" mapstructure:"backend"`

	// Path is the directory holding the state databases
	Path string `toml:"path" mapstructure:"path"`

	// CacheSize is the number of entries cached in memory
	CacheSize int `toml:"cache_size" mapstructure:"cache_size"`
}

var validBackends = map[string]bool{"memory": true, "pebble": true, "leveldb": true}

// Validate validates the database section
func (d *DatabaseConfig) Validate() error {
	if !validBackends[d.Backend] {
		return fmt.Errorf("unsupported backend %q (supported: memory, pebble, leveldb)", d.Backend)
	}
	if d.Backend != "memory" && d.Path == "" {
		return fmt.Errorf("path is required for backend %s", d.Backend)
	}
	if d.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive")
	}
	return nil
}

// JournalConfig represents the [journal] section
type JournalConfig struct {
	// Driver is "", sqlite or postgres; empty disables the journal
	Driver string `toml:"driver" mapstructure:"driver"`

	// Path is the SQLite file; relative paths are under database.path
	Path string `toml:"path" mapstructure:"path"`

	// DSN is the PostgreSQL connection string
	DSN string `toml:"dsn" mapstructure:"dsn"`

	MaxOpenConns   int           `toml:"max_open_conns" mapstructure:"max_open_conns"`
	DefaultTimeout time.Duration `toml:"default_timeout" mapstructure:"default_timeout"`
	MaxRetries     int           `toml:"max_retries" mapstructure:"max_retries"`
}

// Enabled reports whether a journal is configured
func (j *JournalConfig) Enabled() bool {
	return j.Driver != ""
}

// Validate validates the journal section
func (j *JournalConfig) Validate() error {
	switch j.Driver {
	case "":
		return nil
	case relationaldb.DriverSQLite:
		if j.Path == "" {
			return fmt.Errorf("path is required for the sqlite journal")
		}
	case relationaldb.DriverPostgres:
		if j.DSN == "" {
			return fmt.Errorf("dsn is required for the postgres journal")
		}
	default:
		return fmt.Errorf("unsupported journal driver %q", j.Driver)
	}
	if j.MaxOpenConns < 0 || j.MaxRetries < 0 {
		return fmt.Errorf("max_open_conns and max_retries must not be negative")
	}
	if j.DefaultTimeout <= 0 {
		return fmt.Errorf("default_timeout must be positive")
	}
	return nil
}

// RelationalConfig converts the section into a relationaldb.Config.
// dataDir anchors a relative SQLite path.
func (j *JournalConfig) RelationalConfig(dataDir string) *relationaldb.Config {
	var c *relationaldb.Config
	if j.Driver == relationaldb.DriverSQLite {
		path := j.Path
		if !filepath.IsAbs(path) && dataDir != "" {
			path = filepath.Join(dataDir, path)
		}
		c = relationaldb.SQLiteConfig(path)
	} else {
		c = relationaldb.NewConfig()
		c.ConnectionString = j.DSN
		if j.MaxOpenConns > 0 {
			c.MaxOpenConns = j.MaxOpenConns
		}
	}
	c.DefaultTimeout = j.DefaultTimeout
	c.MaxRetries = j.MaxRetries
	return c
}
