package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voxel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, `
seed: 99
world:
  sea_level: 40
  detail:
    amplitude: 3
streaming:
  radius: 2
  retention_radius: 5
  workers: 3
  tick_budget: 8ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 40, cfg.World.SeaLevel)
	assert.Equal(t, 3.0, cfg.World.Detail.Amplitude)
	// untouched fields keep their defaults
	assert.Equal(t, DefaultWorld().Detail.Octaves, cfg.World.Detail.Octaves)
	assert.Equal(t, DefaultWorld().MaxHeight, cfg.World.MaxHeight)
	assert.Equal(t, 2, cfg.Streaming.Radius)
	assert.Equal(t, 3, cfg.Streaming.Workers)
	assert.Equal(t, 8*time.Millisecond, cfg.Streaming.TickBudget)
	assert.Equal(t, 16, cfg.Mesh.TilesPerRow)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"sea level above max", "world:\n  sea_level: 500\n"},
		{"retention not above radius", "streaming:\n  radius: 4\n  retention_radius: 3\n"},
		{"empty vegetation band", "world:\n  vegetation_min: 0.7\n  vegetation_max: 0.6\n"},
		{"bad light", "mesh:\n  deep_light: 20\n"},
		{"zero octaves", "world:\n  continents:\n    octaves: -1\n"},
		{"zero radius", "streaming:\n  radius: 0\n"},
		{"radius beyond max", "streaming:\n  radius: 40\n  retention_radius: 0\n"},
		{"ao floor zero", "mesh:\n  min_ao_light: 0\n"},
		{"ao floor above max light", "mesh:\n  max_light: 10\n  deep_light: 2\n  min_ao_light: 12\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEmptyPathUsesEnv(t *testing.T) {
	path := writeFile(t, "seed: 7\n")
	t.Setenv("VOXEL_CONFIG", path)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)

	t.Setenv("VOXEL_CONFIG", "")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestRenderSettingsClamp(t *testing.T) {
	rs := NewRenderSettings(Streaming{Radius: 4, RetentionRadius: 6})
	assert.Equal(t, 4, rs.RenderDistance())
	assert.Equal(t, 6, rs.RetentionRadius())

	rs.SetRenderDistance(100)
	assert.Equal(t, MaxRenderDistance, rs.RenderDistance())
	assert.Equal(t, MaxRenderDistance+2, rs.RetentionRadius())

	rs.SetRenderDistance(-3)
	assert.Equal(t, MinRenderDistance, rs.RenderDistance())

	noEvict := NewRenderSettings(Streaming{Radius: 3})
	assert.Equal(t, 0, noEvict.RetentionRadius())
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := Load("../../configs/voxel.yaml")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Streaming.Radius)
	assert.Equal(t, 8*time.Millisecond, cfg.Streaming.TickBudget)
	assert.Equal(t, "configs/blocks.yaml", cfg.Blocks)
}
