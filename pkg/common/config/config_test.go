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
	t.Setenv("LEGACY_CONNECT_TIMEOUT", "")
	t.Setenv("LEGACY_READ_TIMEOUT", "")

	cfg := Load()
	assert.Equal(t, 10*time.Second, cfg.LegacyConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.LegacyReadTimeout)
	assert.True(t, cfg.ImportLockEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("LEGACY_IMPORT_LOCK_ENABLED", "false")
	t.Setenv("LEGACY_READ_TIMEOUT", "45s")
	t.Setenv("RATE_LIMIT_RPS", "0")

	cfg := Load()
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.ImportLockEnabled)
	assert.Equal(t, 45*time.Second, cfg.LegacyReadTimeout)
	assert.Equal(t, 0, cfg.RateLimitRPS)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LEGACY_IMPORT_PROFILE=/etc/erp/profile.yaml\n"), 0o600))
	t.Setenv("LEGACY_IMPORT_PROFILE", "")
	require.NoError(t, os.Unsetenv("LEGACY_IMPORT_PROFILE"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "/etc/erp/profile.yaml", Load().ImportProfilePath)

	assert.Error(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
