package config

import (
	"path/filepath"
)

// Config represents the complete swapd configuration
type Config struct {
	// Server holds the RPC listener settings
	Server ServerConfig `toml:"server" mapstructure:"server"`

	// GRPC holds the gRPC listener settings
	GRPC GRPCConfig `toml:"grpc" mapstructure:"grpc"`

	// Database selects the state backend
	Database DatabaseConfig `toml:"database" mapstructure:"database"`

	// Journal configures the relational notification journal
	Journal JournalConfig `toml:"journal" mapstructure:"journal"`

	// Ledger holds the swap parameters and clock settings
	Ledger LedgerConfig `toml:"ledger" mapstructure:"ledger"`

	// Log configures structured logging
	Log LogConfig `toml:"log" mapstructure:"log"`

	// Genesis lists the accounts created on a fresh ledger
	Genesis GenesisConfig `toml:"genesis" mapstructure:"genesis"`

	// Internal fields for configuration management
	configPath string `toml:"-" mapstructure:"-"`
}

// DefaultConfigFile is the file name looked up by LoadConfigFromDir
const DefaultConfigFile = "swapd.toml"

// ConfigPathFromDir returns the configuration path for a specific directory
func ConfigPathFromDir(configDir string) string {
	return filepath.Join(configDir, DefaultConfigFile)
}

// GetConfigPath returns the path to the main configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}
