package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, ":12345", cfg.ListenAddr)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 64*1024, cfg.MaxMessageSize)
	assert.Equal(t, 64, cfg.RateLimit.Burst)
	assert.Equal(t, time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen_addr: ":9000"
http_addr: ""
max_message_size: 2048
rate_limit:
  burst: 10
  refill_interval: 2s
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "", cfg.HTTPAddr)
	assert.Equal(t, 2048, cfg.MaxMessageSize)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`listen_addr: ":9000"`), 0o600))

	t.Setenv("LINECAST_LISTEN_ADDR", ":9100")
	t.Setenv("LINECAST_RATE_LIMIT_BURST", "7")
	t.Setenv("LINECAST_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("LINECAST_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.ListenAddr)
	assert.Equal(t, 7, cfg.RateLimit.Burst)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestLoadConfigInvalidEnvValuesFallBack(t *testing.T) {
	t.Setenv("LINECAST_MAX_MESSAGE_SIZE", "not-a-number")
	t.Setenv("LINECAST_RATE_LIMIT_BURST", "-3")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 64*1024, cfg.MaxMessageSize)
	assert.Equal(t, 64, cfg.RateLimit.Burst)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSanitizeRepairsNonsenseValues(t *testing.T) {
	cfg := &Config{MaxMessageSize: -1, ShutdownTimeout: -time.Second}
	cfg.sanitize()

	assert.Equal(t, ":12345", cfg.ListenAddr)
	assert.Equal(t, 64*1024, cfg.MaxMessageSize)
	assert.Equal(t, 64, cfg.RateLimit.Burst)
	assert.Equal(t, time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}
