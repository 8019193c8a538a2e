package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	var config Config
	require.NoError(t, v.Unmarshal(&config))

	assert.Equal(t, DefaultServerPort, config.Server.Port)
	assert.Equal(t, "atlas.db", config.Database.Path)
	assert.Equal(t, "registry.toml", config.Registry.Path)
	assert.Equal(t, 50.0, config.Server.RateLimitPerSecond)
	assert.Equal(t, 100, config.Server.RateLimitBurst)
	assert.False(t, config.Server.JSONLogs)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9090
json_logs = true

[database]
path = "/var/lib/atlas/atlas.db"

[registry]
path = "/etc/atlas/registry.toml"
`), 0o644))

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.True(t, config.Server.JSONLogs)
	assert.Equal(t, "/var/lib/atlas/atlas.db", config.Database.Path)
	assert.Equal(t, "/etc/atlas/registry.toml", config.Registry.Path)
	// untouched keys keep their defaults
	assert.Equal(t, 100, config.Server.RateLimitBurst)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadCachesConfig(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}
