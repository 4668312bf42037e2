package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Port    string   `yaml:"port"`
	Timeout Duration `yaml:"timeout"`
}

func TestLoadFile_EmptyPathIsNoop(t *testing.T) {
	s := sample{Port: "8080"}
	require.NoError(t, LoadFile("", &s))
	assert.Equal(t, "8080", s.Port)
}

func TestLoadFile_ParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9000\"\ntimeout: 3s\n"), 0o600))

	var s sample
	require.NoError(t, LoadFile(path, &s))

	assert.Equal(t, "9000", s.Port)
	assert.Equal(t, 3*time.Second, time.Duration(s.Timeout))
}

func TestLoadFile_Missing(t *testing.T) {
	var s sample
	err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), &s)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: soon\n"), 0o600))

	var s sample
	assert.Error(t, LoadFile(path, &s))
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("SHOP_TEST_STR", "value")
	t.Setenv("SHOP_TEST_INT", "42")
	t.Setenv("SHOP_TEST_BAD_INT", "forty")
	t.Setenv("SHOP_TEST_DUR", "250ms")

	assert.Equal(t, "value", GetEnv("SHOP_TEST_STR", "x"))
	assert.Equal(t, "x", GetEnv("SHOP_TEST_UNSET", "x"))
	assert.Equal(t, 42, GetEnvInt("SHOP_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("SHOP_TEST_BAD_INT", 1))
	assert.Equal(t, 250*time.Millisecond, GetEnvDuration("SHOP_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("SHOP_TEST_UNSET", time.Second))
}
