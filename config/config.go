// Package config loads the atlas application configuration with Viper.
//
// Configuration comes from a TOML file (atlas.toml), overridable through
// ATLAS_-prefixed environment variables. It is loaded once at startup and
// treated as immutable for the process lifetime.
package config

// Config represents the core atlas configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server" toml:"server"`
	Database DatabaseConfig `mapstructure:"database" toml:"database"`
	Registry RegistryConfig `mapstructure:"registry" toml:"registry"`
}

// ServerConfig configures the atlas web server
type ServerConfig struct {
	Port           int      `mapstructure:"port" toml:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" toml:"allowed_origins"`
	JSONLogs       bool     `mapstructure:"json_logs" toml:"json_logs"`

	// Rate limiting for the public data endpoints
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" toml:"rate_limit_per_second"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst" toml:"rate_limit_burst"`
}

// DatabaseConfig configures the SQLite database backing classifications and
// slice tables
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// RegistryConfig points at the dataset/endpoint/classification registry file
type RegistryConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// DefaultServerPort is used when no port is configured.
const DefaultServerPort = 5080
