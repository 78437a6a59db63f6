package config

import "fmt"

// NoiseLayer describes one fractal noise layer.
type NoiseLayer struct {
	Scale      float64 `yaml:"scale"` // world units per noise unit
	Octaves    int     `yaml:"octaves"`
	Lacunarity float64 `yaml:"lacunarity"`
	Gain       float64 `yaml:"gain"`
	Amplitude  float64 `yaml:"amplitude"` // blocks
}

// World holds every terrain threshold the generator uses.
type World struct {
	SeaLevel   int `yaml:"sea_level"`
	MinHeight  int `yaml:"min_height"`
	MaxHeight  int `yaml:"max_height"`
	BaseHeight int `yaml:"base_height"`

	Continents NoiseLayer `yaml:"continents"`
	Detail     NoiseLayer `yaml:"detail"`

	// Sea floor flattening
	FloorDepth     float64 `yaml:"floor_depth"`      // target depth below sea level
	FloorBlendSpan float64 `yaml:"floor_blend_span"` // depth at which the blend reaches its cap
	FloorBlendCap  float64 `yaml:"floor_blend_cap"`  // 0..1

	// Surface classification
	BeachDepth   int `yaml:"beach_depth"`  // band below sea level that is still beach
	BeachHeight  int `yaml:"beach_height"` // band above sea level that is still beach
	TopsoilDepth int `yaml:"topsoil_depth"`
	SubsoilDepth int `yaml:"subsoil_depth"`
	GrassMargin  int `yaml:"grass_margin"` // surface must be this far above sea level for grass

	// Decorative vegetation. Samples are mapped to [0,1] and cluster around
	// 0.5; a wide band covers most land.
	VegetationScale float64 `yaml:"vegetation_scale"`
	VegetationMin   float64 `yaml:"vegetation_min"`
	VegetationMax   float64 `yaml:"vegetation_max"`

	CacheTTLTicks int `yaml:"cache_ttl_ticks"`
}

// DefaultWorld returns the default terrain settings.
func DefaultWorld() World {
	return World{
		SeaLevel:   48,
		MinHeight:  0,
		MaxHeight:  128,
		BaseHeight: 52,
		Continents: NoiseLayer{Scale: 256, Octaves: 5, Lacunarity: 2, Gain: 0.5, Amplitude: 40},
		Detail:     NoiseLayer{Scale: 48, Octaves: 4, Lacunarity: 2, Gain: 0.5, Amplitude: 8},

		FloorDepth:     14,
		FloorBlendSpan: 10,
		FloorBlendCap:  0.75,

		BeachDepth:   3,
		BeachHeight:  2,
		TopsoilDepth: 3,
		SubsoilDepth: 4,
		GrassMargin:  1,

		VegetationScale: 6,
		VegetationMin:   0.48,
		VegetationMax:   0.52,

		CacheTTLTicks: 120,
	}
}

// Validate checks the terrain thresholds.
func (w World) Validate() error {
	if w.MaxHeight-w.MinHeight < 4 {
		return fmt.Errorf("%w: world height range [%d,%d] too small", ErrInvalid, w.MinHeight, w.MaxHeight)
	}
	if w.SeaLevel <= w.MinHeight || w.SeaLevel >= w.MaxHeight {
		return fmt.Errorf("%w: world.sea_level %d outside (%d,%d)", ErrInvalid, w.SeaLevel, w.MinHeight, w.MaxHeight)
	}
	for name, l := range map[string]NoiseLayer{"continents": w.Continents, "detail": w.Detail} {
		if l.Scale <= 0 || l.Octaves <= 0 || l.Lacunarity <= 0 || l.Gain <= 0 {
			return fmt.Errorf("%w: world.%s noise layer needs positive scale/octaves/lacunarity/gain", ErrInvalid, name)
		}
	}
	if w.FloorBlendCap < 0 || w.FloorBlendCap > 1 || w.FloorBlendSpan <= 0 {
		return fmt.Errorf("%w: world floor blend cap must be in [0,1] and span > 0", ErrInvalid)
	}
	if w.VegetationScale <= 0 || w.VegetationMin >= w.VegetationMax {
		return fmt.Errorf("%w: world vegetation band (%g,%g) is empty", ErrInvalid, w.VegetationMin, w.VegetationMax)
	}
	if w.TopsoilDepth < 0 || w.SubsoilDepth < 0 || w.BeachDepth < 0 || w.BeachHeight < 0 {
		return fmt.Errorf("%w: world soil and beach depths must be >= 0", ErrInvalid)
	}
	if w.CacheTTLTicks <= 0 {
		return fmt.Errorf("%w: world.cache_ttl_ticks must be > 0", ErrInvalid)
	}
	return nil
}
