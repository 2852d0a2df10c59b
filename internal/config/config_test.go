package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults without a file", func(t *testing.T) {
		// When: loading from a path that does not exist
		conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		// Then: the defaults apply
		require.NoError(t, err)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, StorageMemory, conf.Storage.Driver)
		assert.Equal(t, 24*time.Hour, conf.Storage.SessionTTL)
		assert.Equal(t, "greedy", conf.Computer.Policy)
		assert.Equal(t, uint64(0), conf.Computer.Seed)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, "none", conf.Telemetry.Exporter)
	})

	t.Run("Values from the file", func(t *testing.T) {
		// Given: a config file
		path := writeConfig(t, `
log-level: debug
http-port: "8080"
storage:
  driver: redis
  session-ttl: 30m
redis:
  host: cache
  port: "6380"
computer:
  policy: random
  seed: 42
telemetry:
  exporter: stdout
`)

		// When: loading it
		conf, err := Load(path)

		// Then: every key is read
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.Equal(t, StorageRedis, conf.Storage.Driver)
		assert.Equal(t, 30*time.Minute, conf.Storage.SessionTTL)
		assert.Equal(t, "cache:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, "random", conf.Computer.Policy)
		assert.Equal(t, uint64(42), conf.Computer.Seed)
		assert.Equal(t, "stdout", conf.Telemetry.Exporter)
	})

	t.Run("Unknown telemetry exporter", func(t *testing.T) {
		t.Setenv("TELEMETRY_EXPORTER", "jaeger")

		_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		require.Error(t, err)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, "computer:\n  policy: random\n")
		t.Setenv("COMPUTER_POLICY", "greedy")
		t.Setenv("HTTP_PORT", "7070")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "greedy", conf.Computer.Policy)
		assert.Equal(t, "7070", conf.HTTPPort)
	})

	t.Run("Unknown policy", func(t *testing.T) {
		path := writeConfig(t, "computer:\n  policy: minimax\n")

		_, err := Load(path)

		require.Error(t, err)
	})

	t.Run("Unknown storage driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")

		_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		require.Error(t, err)
	})

	t.Run("MustLoad panics on invalid config", func(t *testing.T) {
		path := writeConfig(t, "log-level: loud\n")

		assert.Panics(t, func() { MustLoad(path) })
	})
}
