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
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Addr, cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 4, cfg.Packet.PrefetchWindow)
	assert.Equal(t, int64(40_000_000), cfg.Packet.MaxImagePixels)
	assert.Empty(t, cfg.Source)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claimpacket.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  request_timeout: 15s
store:
  driver: postgres
  dsn: postgres://localhost/claims
storage:
  allowed_hosts:
    - cdn.example.com
cache:
  backend: redis
  redis:
    addr: cache:6379
packet:
  page_size: a4
  wrap_mode: metrics
  max_image_pixels: 1000000
`), 0o644))
	t.Setenv("CLAIMPACKET_PACKET_PREFETCH_WINDOW", "8")
	t.Setenv("CLAIMPACKET_SERVER_JWT_SECRET", "s3cret")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "cache:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, "a4", cfg.Packet.PageSize)
	assert.Equal(t, "metrics", cfg.Packet.WrapMode)
	assert.Equal(t, 8, cfg.Packet.PrefetchWindow)
	assert.Equal(t, int64(1000000), cfg.Packet.MaxImagePixels)
	assert.Equal(t, []string{"cdn.example.com"}, cfg.Storage.AllowedHosts)
	assert.Equal(t, "s3cret", cfg.Server.JWTSecret)
	assert.Equal(t, path, cfg.Source)
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: oracle\n"), 0o644))

	_, err := Load(New(), path)
	assert.ErrorContains(t, err, "unknown store driver")

	_, err = Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
