package main

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/config"
	"storefront/logger"
	"storefront/store"
)

func TestOpenStore_Memory(t *testing.T) {
	st, err := openStore(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "memory"}})
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, st)
}

func TestOpenStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	cfg := &config.Config{
		Store: config.StoreConfig{Driver: "redis"},
		Redis: config.RedisConfig{Host: mr.Host(), Port: port},
	}

	st, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Set(context.Background(), store.KeyCart, "[]"))
	assert.True(t, mr.Exists("storefront:cart"))
}

func TestOpenStore_PostgresUnreachable(t *testing.T) {
	cfg := &config.Config{
		Store:    config.StoreConfig{Driver: "postgres"},
		Postgres: config.PostgresConfig{DSN: "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1"},
	}
	_, err := openStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := rootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "version"}, names)
}

func TestLoggerConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want logger.Config
	}{
		{"defaults", config.Config{}, logger.DefaultConfig()},
		{"configured", config.Config{Log: config.LogConfig{Level: "debug", Format: "console", Output: "stderr"}},
			logger.Config{Level: "debug", Format: "console", Output: "stderr"}},
		{"production logs json", config.Config{
			App: config.AppConfig{Env: "production"},
			Log: config.LogConfig{Level: "warn", Format: "console"},
		}, logger.Config{Level: "warn", Format: "json", Output: "stdout"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loggerConfig(&tt.cfg))
		})
	}
}
