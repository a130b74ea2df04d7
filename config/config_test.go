package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buidl-labs/muxsync/config"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv(config.ConfigPathEnvVar, "")
	t.Setenv("MUX_WEBHOOK_SECRET", "whsec")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Mux.VerifySignature)
	assert.Equal(t, "whsec", cfg.Mux.WebhookSecret)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, config.DriverMongo, cfg.Storage.Driver)
	assert.Equal(t, 200, cfg.Backfill.MaxAssets)
	assert.True(t, cfg.Backfill.IncludeVideoMetadata)
	assert.Equal(t, 5*time.Minute, cfg.Mux.SignatureTolerance)
	assert.False(t, cfg.Mux.HasCredentials())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "muxsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
storage:
  driver: memory
logging:
  format: json
`), 0o644))
	t.Setenv(config.ConfigPathEnvVar, path)
	t.Setenv("PORT", "9100")
	t.Setenv("MUX_TOKEN_ID", "id")
	t.Setenv("MUX_TOKEN_SECRET", "secret")
	t.Setenv("MUX_WEBHOOK_SECRET", "whsec")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, config.DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Mux.HasCredentials())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoadRejectsVerificationWithoutSecret(t *testing.T) {
	chdirTemp(t)
	t.Setenv(config.ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("MUX_WEBHOOK_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadVerificationCanBeDisabled(t *testing.T) {
	chdirTemp(t)
	t.Setenv(config.ConfigPathEnvVar, "")
	t.Setenv("MUX_WEBHOOK_SECRET", "")
	t.Setenv("MUX_VERIFY_SIGNATURE", "false")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.False(t, cfg.Mux.VerifySignature)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	chdirTemp(t)
	t.Setenv(config.ConfigPathEnvVar, "")
	t.Setenv("MUX_WEBHOOK_SECRET", "whsec")
	t.Setenv("STORAGE_DRIVER", "sqlite")

	_, err := config.Load()
	assert.Error(t, err)
}
