package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults fill missing keys", func(t *testing.T) {
		// Given: a config file with only the redis host
		path := writeConfig(t, "redis:\n  host: cache\n")

		// When: the config is loaded
		conf, err := Load(path)
		require.NoError(t, err)

		// Then: every other key has its default
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, "7777", conf.SocketPort)
		assert.Equal(t, StorageRedis, conf.Storage)
		assert.Equal(t, "cache:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, 6, conf.Game.RoomCodeLength)
		assert.Equal(t, 6*time.Hour, conf.Game.RoomTTL)
		assert.Equal(t, 10, conf.Game.DefaultMaxPlayers)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		// Given: a file and an environment variable for the same key
		path := writeConfig(t, "log-level: debug\nhttp-port: \"8000\"\n")
		t.Setenv("HTTP_PORT", "8181")

		// When: the config is loaded
		conf, err := Load(path)
		require.NoError(t, err)

		// Then: the environment wins
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8181", conf.HTTPPort)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
		require.Error(t, err)

		assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "absent.yml")) })
	})

	t.Run("Join url", func(t *testing.T) {
		conf := &Config{PublicURL: "https://impostor.example"}
		assert.Equal(t, "https://impostor.example/join/ABC234", conf.JoinURL("ABC234"))
	})
}
