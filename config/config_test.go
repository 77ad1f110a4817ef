package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.False(t, cfg.Confessions.DeleteOnRead)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
confessions:
  delete_on_read: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Confessions.DeleteOnRead)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("STORE_TYPE", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Store.Type)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad store type", func(c *Config) { c.Store.Type = "postgres" }},
		{"redis without addr", func(c *Config) { c.Store.Type = "redis"; c.Store.Redis.Addr = "" }},
		{"zero cleanup interval", func(c *Config) { c.Store.CleanupInterval = 0 }},
		{"zero payload cap", func(c *Config) { c.Confessions.MaxPayloadBytes = 0 }},
		{"zero metrics capacity", func(c *Config) { c.Confessions.MetricsCapacity = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
