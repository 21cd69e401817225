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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 10, cfg.Broker.ConnectAttempts)
	assert.Equal(t, 2*time.Second, cfg.Broker.ConnectBackoff.Std())
	assert.Equal(t, 20*time.Second, cfg.Redis.TTL.Std())
	assert.Equal(t, "@every 5m", cfg.Feed.Schedule)
}

func TestLoad_ParsesHumanDurations(t *testing.T) {
	path := writeConfig(t, `
broker:
  connectBackoff: 5s
redis:
  ttl: 90s
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Broker.ConnectBackoff.Std())
	assert.Equal(t, 90*time.Second, cfg.Redis.TTL.Std())
}

func TestLoad_RejectsDurationWithoutUnit(t *testing.T) {
	path := writeConfig(t, `
redis:
  ttl: 20
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duration")
}

func TestLoad_RejectsMalformedDuration(t *testing.T) {
	path := writeConfig(t, `
broker:
  connectBackoff: soon
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
broker:
  url: amqp://file-host:5672/
`)
	t.Setenv("BROKER_URL", "amqp://env-host:5672/")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "amqp://env-host:5672/", cfg.Broker.URL)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
