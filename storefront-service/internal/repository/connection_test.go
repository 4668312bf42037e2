package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMongoOptions_Defaults(t *testing.T) {
	opts := MongoOptions{URI: "mongodb://localhost:27017"}.clientOptions()

	require.NotNil(t, opts.ConnectTimeout)
	assert.Equal(t, 10*time.Second, *opts.ConnectTimeout)
	assert.Equal(t, 5*time.Second, *opts.ServerSelectionTimeout)
	assert.Equal(t, uint64(100), *opts.MaxPoolSize)
	assert.Equal(t, uint64(10), *opts.MinPoolSize)
}

func TestMongoOptions_Configured(t *testing.T) {
	opts := MongoOptions{
		URI:                    "mongodb://localhost:27017",
		ConnectTimeout:         3 * time.Second,
		ServerSelectionTimeout: time.Second,
		MaxPoolSize:            20,
		MinPoolSize:            50,
	}.clientOptions()

	assert.Equal(t, 3*time.Second, *opts.ConnectTimeout)
	assert.Equal(t, time.Second, *opts.ServerSelectionTimeout)
	assert.Equal(t, uint64(20), *opts.MaxPoolSize)
	assert.Equal(t, uint64(20), *opts.MinPoolSize, "min pool is capped by max pool")
}

func TestMongoOptions_SmallMaxCapsDefaultMin(t *testing.T) {
	opts := MongoOptions{URI: "mongodb://localhost:27017", MaxPoolSize: 4}.clientOptions()
	assert.Equal(t, uint64(4), *opts.MinPoolSize)
}
