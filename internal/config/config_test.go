package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/voxel-area/internal/util"
	"github.com/annel0/voxel-area/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "area.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AREA_CONFIG", "")
	t.Setenv("AREA_SEED", "")
	t.Setenv("AREA_RADIUS", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, world.DefaultNoiseScale, cfg.Generation.NoiseScale)
	assert.Equal(t, util.NoiseOpenSimplex, cfg.Generation.Noise)
	assert.Equal(t, uint32(2), cfg.Generation.Radius)
	assert.Equal(t, "voxel-area", cfg.Telemetry.ServiceName)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("AREA_SEED", "")
	t.Setenv("AREA_RADIUS", "")

	path := writeConfig(t, `
generation:
  seed: 42
  radius: 3
  noise: perlin
  sea_level: -4
  workers: 8
storage:
  enabled: true
  path: /tmp/area
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Generation.Seed)
	assert.Equal(t, uint32(3), cfg.Generation.Radius)
	assert.Equal(t, util.NoisePerlin, cfg.Generation.Noise)
	assert.Equal(t, -4, cfg.Generation.SeaLevel)
	assert.Equal(t, 8, cfg.Generation.Workers)
	assert.Equal(t, world.DefaultNoiseScale, cfg.Generation.NoiseScale, "незаданные поля остаются по умолчанию")
	assert.True(t, cfg.Storage.Enabled)

	gen, err := cfg.Generation.GeneratorConfig()
	require.NoError(t, err)
	assert.NotNil(t, gen.Noise)
	assert.Equal(t, -4, gen.SeaLevel)
}

func TestLoad_EnvPath(t *testing.T) {
	t.Setenv("AREA_SEED", "")
	t.Setenv("AREA_RADIUS", "")
	t.Setenv("AREA_CONFIG", writeConfig(t, "generation:\n  seed: 7\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Generation.Seed)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AREA_CONFIG", "")
	t.Setenv("AREA_SEED", "-9")
	t.Setenv("AREA_RADIUS", "5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(-9), cfg.Generation.Seed)
	assert.Equal(t, uint32(5), cfg.Generation.Radius)

	t.Setenv("AREA_RADIUS", "-1")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Generation.NoiseScale = 0
	assert.ErrorIs(t, cfg.Validate(), ErrBadNoiseScale)

	cfg = Default()
	cfg.Generation.Radius = 1 << 31
	assert.ErrorIs(t, cfg.Validate(), ErrBadRadius)

	cfg = Default()
	cfg.Generation.Workers = -1
	assert.ErrorIs(t, cfg.Validate(), ErrBadWorkers)

	cfg = Default()
	cfg.Generation.Noise = "worley"
	assert.ErrorIs(t, cfg.Validate(), util.ErrUnknownNoise)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "generation: [1, 2"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGetMetricsPort(t *testing.T) {
	t.Setenv("AREA_METRICS_PORT", "")
	m := MetricsConfig{}
	assert.Equal(t, 2112, m.GetMetricsPort())

	t.Setenv("AREA_METRICS_PORT", "9100")
	assert.Equal(t, 9100, m.GetMetricsPort())

	m.Port = 9200
	assert.Equal(t, 9200, m.GetMetricsPort())
}
