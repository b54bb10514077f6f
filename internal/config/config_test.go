// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, InitConfig(configPath))

	_, err := os.Stat(configPath)
	assert.NoError(t, err, "config file should be created")
}

func TestDefaults(t *testing.T) {
	require.NoError(t, InitConfig(filepath.Join(t.TempDir(), "config.yaml")))

	assert.Equal(t, "8080", GetString("server.http_port"))
	assert.Equal(t, "local", GetString("storage.type"))
	assert.Equal(t, 30*time.Second, GetDuration("service.timeout"))
	assert.Equal(t, 720*time.Hour, GetDuration("storage.retention"))
	assert.Equal(t, int64(2<<20), GetInt64("uploads.max_bytes"))
	assert.Equal(t, 30, GetInt("ratelimit.capacity"))
	assert.True(t, GetBool("log.console"))
	assert.Empty(t, GetStringSlice("server.blocked_ips"))
}

func TestSetConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, InitConfig(configPath))

	require.NoError(t, Set("server.http_port", "9090"))
	assert.Equal(t, "9090", GetString("server.http_port"))

	// the value survives a reload
	require.NoError(t, InitConfig(configPath))
	assert.Equal(t, "9090", GetString("server.http_port"))
}

func TestDotEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { os.Unsetenv("SMARTSVG_SERVICE_ACCESS_TOKEN") })
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SMARTSVG_SERVICE_ACCESS_TOKEN=from-dotenv\n"), 0600))

	require.NoError(t, InitConfig(filepath.Join(dir, "config.yaml")))
	assert.Equal(t, "from-dotenv", GetString("service.access_token"))
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SMARTSVG_STORAGE_TYPE", "s3")
	require.NoError(t, InitConfig(filepath.Join(t.TempDir(), "config.yaml")))
	assert.Equal(t, "s3", GetString("storage.type"))
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("SMARTSVG_CONFIG", "/tmp/custom.yaml")
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.yaml", path)
}

func TestUninitialized(t *testing.T) {
	saved := v
	v = nil
	t.Cleanup(func() { v = saved })

	assert.Empty(t, GetString("server.http_port"))
	assert.Nil(t, GetAll())
	assert.Error(t, Set("server.http_port", "1"))
}
