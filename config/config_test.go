package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 10, cfg.DBMaxIdleConns)
	assert.Equal(t, 100, cfg.DBMaxOpenConns)
	assert.Equal(t, 500*time.Millisecond, cfg.FlushDebounce())
	assert.Equal(t, []string{"*"}, cfg.Origins())
	assert.True(t, cfg.Development())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_DRIVER", " SQLite ")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("FLUSH_DEBOUNCE_MS", "250")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 7, cfg.DBMaxOpenConns)
	assert.Equal(t, 250*time.Millisecond, cfg.FlushDebounce())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Origins())
	assert.False(t, cfg.Development())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocknotes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT: \"7070\"\nLOG_LEVEL: debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.AppPort)
	assert.Equal(t, "debug", cfg.LogLevel)

	t.Setenv("APP_PORT", "6060")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "6060", cfg.AppPort, "environment wins over the file")
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.NoError(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("FLUSH_DEBOUNCE_MS", "0")
	_, err = Load("")
	assert.Error(t, err)
}
