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
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Sandbox.Timeout)
	assert.Equal(t, "/app", cfg.Sandbox.WorkDir)
	assert.Equal(t, time.Minute, cfg.Sandbox.ReapInterval)
	assert.Equal(t, int64(1<<20), cfg.Sandbox.MaxOutput)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Server.RateLimit.Burst)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Docker.Host)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cee.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sandbox:
  timeout: 3s
  max_output: 4096
server:
  addr: ":8080"
  rate_limit:
    rps: 1.5
storage:
  db_path: /tmp/x.db
log:
  level: debug
  format: json
`), 0o644))

	t.Setenv("CEE_LOG_LEVEL", "warn")
	t.Setenv("DOCKER_DAEMON_SOCKET", "/var/run/docker.sock")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Sandbox.Timeout)
	assert.Equal(t, int64(4096), cfg.Sandbox.MaxOutput)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 1.5, cfg.Server.RateLimit.RPS)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.DBPath)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/var/run/docker.sock", cfg.Docker.Host)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsZeroTimeout(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CEE_SANDBOX_TIMEOUT", "0s")

	_, err := Load("")
	assert.Error(t, err)
}
