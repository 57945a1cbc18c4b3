package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("TILEWORLD_CONFIG", "")
	t.Setenv("TILEWORLD_SEED", "")
	t.Setenv("TILEWORLD_DATA", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tileworld.yaml")
	data := []byte(`
world:
  name: test
  num_chunks: 4
  chunk_size: 16
  seed: 99
light:
  max_light: 12
server:
  tps: 30
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	t.Setenv("TILEWORLD_SEED", "")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.World.Name)
	assert.Equal(t, 4, cfg.World.NumChunks)
	assert.Equal(t, 16, cfg.World.ChunkSize)
	assert.Equal(t, int64(99), cfg.World.Seed)
	assert.Equal(t, uint8(12), cfg.Light.MaxLight)
	assert.Equal(t, uint8(1), cfg.Light.Step, "незаданное поле сохраняет значение по умолчанию")
	assert.Equal(t, 30, cfg.Server.TPS)
	assert.Equal(t, 0.6, cfg.World.Amplitude)
}

func TestLoad_EnvSeed(t *testing.T) {
	t.Setenv("TILEWORLD_CONFIG", "")
	t.Setenv("TILEWORLD_SEED", "12345")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), cfg.World.Seed)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world:\n  num_chunks: 0\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestGetMetricsPort_Fallback(t *testing.T) {
	t.Setenv("TILEWORLD_METRICS_PORT", "9100")
	s := ServerConfig{}
	assert.Equal(t, 9100, s.GetMetricsPort())

	s.MetricsPort = 2200
	assert.Equal(t, 2200, s.GetMetricsPort())
}
