package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "https://fakestoreapi.com", cfg.Catalog.BaseURL)
	assert.Equal(t, 20, cfg.Catalog.RandomIDMax)
	assert.Zero(t, cfg.Catalog.Timeout)
	assert.False(t, cfg.Catalog.DedupeFetches)
	assert.Equal(t, 3*time.Second, cfg.Notifications.TTL)
	assert.InDelta(t, 0.19, cfg.Checkout.TaxRate, 1e-9)
	assert.Equal(t, 9, cfg.Browse.PageSize)
	assert.Equal(t, 5, cfg.Browse.SuggestLimit)
	assert.Equal(t, 5, cfg.Recent.Limit)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[app]
env = "production"

[store]
driver = "redis"

[redis]
host = "cache.internal"
port = 6380

[notifications]
ttl = "5s"
`), 0o600))

	t.Setenv("STOREFRONT_REDIS_HOST", "override.internal")
	t.Setenv("STOREFRONT_CATALOG_DEDUPE_FETCHES", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, "override.internal", cfg.Redis.Host)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, 5*time.Second, cfg.Notifications.TTL)
	assert.True(t, cfg.Catalog.DedupeFetches)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("STOREFRONT_STORE_DRIVER", "sqlite")
	_, err := Load("")
	assert.ErrorContains(t, err, "unknown store driver")
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"postgres without dsn", func(c *Config) { c.Store.Driver = "postgres"; c.Postgres.DSN = "" }},
		{"random id range", func(c *Config) { c.Catalog.RandomIDMax = 0 }},
		{"notification ttl", func(c *Config) { c.Notifications.TTL = 0 }},
		{"negative tax", func(c *Config) { c.Checkout.TaxRate = -0.1 }},
		{"page size", func(c *Config) { c.Browse.PageSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *base
			tt.mutate(&c)
			assert.Error(t, c.validate())
		})
	}
}
