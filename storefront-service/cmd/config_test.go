package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "storefront", cfg.Mongo.Database)
	assert.Equal(t, 14*24*time.Hour, time.Duration(cfg.Session.TTL))
	assert.Equal(t, "http://localhost:8000", cfg.StoreAPI.BaseURL)
	assert.Equal(t, 10*time.Second, time.Duration(cfg.StoreAPI.Timeout))
	assert.False(t, cfg.Session.CookieSecure)
	assert.Equal(t, 100, cfg.Mongo.MaxPoolSize)
	assert.Equal(t, 10, cfg.Mongo.MinPoolSize)
	assert.Equal(t, 10*time.Second, time.Duration(cfg.Mongo.ConnectTimeout))
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_port: "9090"
redis:
  addr: cache.internal:6379
  db: 2
session:
  ttl: 1h
  cookie_secure: true
mongo:
  max_pool_size: 40
  connect_timeout: 3s
store_api:
  base_url: http://store.internal
  timeout: 2s
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("STORE_API_URL", "http://override.internal")
	t.Setenv("MONGO_URI", "mongodb://mongo.internal:27017")
	t.Setenv("MONGO_MIN_POOL_SIZE", "4")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, time.Hour, time.Duration(cfg.Session.TTL))
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, "http://override.internal", cfg.StoreAPI.BaseURL)
	assert.Equal(t, 2*time.Second, time.Duration(cfg.StoreAPI.Timeout))
	assert.Equal(t, "mongodb://mongo.internal:27017", cfg.Mongo.URI)
	assert.Equal(t, 40, cfg.Mongo.MaxPoolSize)
	assert.Equal(t, 4, cfg.Mongo.MinPoolSize)
	assert.Equal(t, 3*time.Second, time.Duration(cfg.Mongo.ConnectTimeout))
	assert.Equal(t, 5*time.Second, time.Duration(cfg.Mongo.ServerSelectionTimeout))
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := loadConfig()
	assert.ErrorIs(t, err, os.ErrNotExist)
}
