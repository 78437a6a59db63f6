package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the root configuration. Zero-valued fields in a YAML file keep
// their defaults because Load unmarshals over Default().
type Config struct {
	Seed      int64     `yaml:"seed"`
	World     World     `yaml:"world"`
	Streaming Streaming `yaml:"streaming"`
	Mesh      Mesh      `yaml:"mesh"`
	Blocks    string    `yaml:"blocks"` // optional block definition file
}

// Streaming controls which chunks are kept active and how work is scheduled.
type Streaming struct {
	Radius          int           `yaml:"radius"`           // chunks around the viewer, per axis
	RetentionRadius int           `yaml:"retention_radius"` // 0 keeps every chunk forever
	Workers         int           `yaml:"workers"`          // 0 runs generation and meshing inline
	MaxPending      int           `yaml:"max_pending"`
	TickBudget      time.Duration `yaml:"tick_budget"`
}

// Mesh holds the mesher's shading and texturing constants.
type Mesh struct {
	TilesPerRow   int `yaml:"tiles_per_row"`
	DarkBand      int `yaml:"dark_band"`  // blocks below sea level over which light fades
	DeepLight     int `yaml:"deep_light"` // light below the dark band
	AOStep        int `yaml:"ao_step"`
	MaxLight      int `yaml:"max_light"`
	MinAmbientOcc int `yaml:"min_ao_light"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Seed:  1337,
		World: DefaultWorld(),
		Streaming: Streaming{
			Radius:          4,
			RetentionRadius: 6,
			Workers:         0,
			MaxPending:      64,
			TickBudget:      12 * time.Millisecond,
		},
		Mesh: Mesh{
			TilesPerRow:   16,
			DarkBand:      12,
			DeepLight:     4,
			AOStep:        2,
			MaxLight:      15,
			MinAmbientOcc: 1,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path falls back to the
// VOXEL_CONFIG environment variable; if that is unset too the defaults are
// returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cross-field invariants. Failing here is a startup error.
func (c Config) Validate() error {
	if err := c.World.Validate(); err != nil {
		return err
	}
	s := c.Streaming
	if s.Radius < MinRenderDistance || s.Radius > MaxRenderDistance {
		return fmt.Errorf("%w: streaming.radius %d outside [%d,%d]", ErrInvalid, s.Radius, MinRenderDistance, MaxRenderDistance)
	}
	if s.RetentionRadius != 0 && s.RetentionRadius <= s.Radius {
		return fmt.Errorf("%w: streaming.retention_radius %d must exceed radius %d", ErrInvalid, s.RetentionRadius, s.Radius)
	}
	if s.Workers < 0 || s.MaxPending < 0 {
		return fmt.Errorf("%w: streaming.workers and max_pending must be >= 0", ErrInvalid)
	}
	m := c.Mesh
	if m.TilesPerRow <= 0 {
		return fmt.Errorf("%w: mesh.tiles_per_row must be > 0", ErrInvalid)
	}
	if m.MaxLight < 1 || m.MaxLight > 15 || m.DeepLight < 0 || m.DeepLight > m.MaxLight {
		return fmt.Errorf("%w: mesh light levels must satisfy 0 <= deep_light <= max_light <= 15", ErrInvalid)
	}
	if m.DarkBand <= 0 || m.AOStep < 0 {
		return fmt.Errorf("%w: mesh.dark_band must be > 0 and ao_step >= 0", ErrInvalid)
	}
	if m.MinAmbientOcc < 1 || m.MinAmbientOcc > m.MaxLight {
		return fmt.Errorf("%w: mesh.min_ao_light %d outside [1,%d]", ErrInvalid, m.MinAmbientOcc, m.MaxLight)
	}
	return nil
}
