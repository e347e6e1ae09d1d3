package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Ledger   LedgerConfig   `mapstructure:"ledger"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	// LogFile, when set, also writes logs to a size-rotated file.
	LogFile string `mapstructure:"log_file"`
	// RateLimit is the sustained number of API requests per second allowed
	// for one user. Zero disables limiting.
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst int     `mapstructure:"rate_burst" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the ledger backend: "postgres" or the in-process "memory" store.
	Driver       string `mapstructure:"driver"         validate:"required,oneof=memory postgres"`
	URL          string `mapstructure:"url"            validate:"required_if=Driver postgres"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"     validate:"required,min=32"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime" validate:"gt=0"`
}

// LedgerConfig controls how completion days are resolved.
type LedgerConfig struct {
	// Timezone is the IANA zone used to decide which calendar day "today" is.
	Timezone string `mapstructure:"timezone" validate:"required"`
}

// Location returns the configured ledger time zone. It falls back to UTC
// when the zone cannot be loaded; Load rejects such a zone up front.
func (c LedgerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
