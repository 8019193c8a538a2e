package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.json_logs", false)
	v.SetDefault("server.rate_limit_per_second", 50.0) // generous; data endpoints are cheap reads
	v.SetDefault("server.rate_limit_burst", 100)

	// Database defaults
	v.SetDefault("database.path", "atlas.db")

	// Registry defaults
	v.SetDefault("registry.path", "registry.toml")
}
