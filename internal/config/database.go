package config

import "time"

// DatabaseConfig holds the SQLite bookkeeping database settings.
type DatabaseConfig struct {
	DataDir         string
	DatabaseName    string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultDatabaseConfig returns the default database configuration
func DefaultDatabaseConfig(dataDir string) *DatabaseConfig {
	return &DatabaseConfig{
		DataDir:         dataDir,
		DatabaseName:    "upgrade-analyzer.db",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}
}
