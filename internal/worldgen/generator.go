package worldgen

import (
	"context"
	"errors"
	"fmt"
	"math"

	"mini-voxel/internal/config"
	"mini-voxel/internal/noise"
	"mini-voxel/internal/profiling"
	"mini-voxel/internal/registry"
	"mini-voxel/internal/world"

	"github.com/aquilax/go-perlin"
)

// ErrMissingBlock is returned when the registry lacks a block the generator places.
var ErrMissingBlock = errors.New("worldgen: block not registered")

// Generator produces terrain as a pure function of seed and world position.
// The noise cache is the only mutable state and does not change results.
type Generator struct {
	seed int64
	cfg  config.World

	continents *noise.Perlin
	detail     *noise.Perlin
	vegetation *perlin.Perlin

	cache *Cache
}

// New builds a generator. Every block type the generator places must be
// present in reg.
func New(seed int64, cfg config.World, reg *registry.Registry) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, t := range []registry.BlockType{
		registry.BlockTypeStone, registry.BlockTypeDirt, registry.BlockTypeGrass,
		registry.BlockTypeSand, registry.BlockTypeWater, registry.BlockTypeTallGrass,
	} {
		if reg.Get(t).ID != t {
			return nil, fmt.Errorf("%w: type %d", ErrMissingBlock, t)
		}
	}
	return &Generator{
		seed:       seed,
		cfg:        cfg,
		continents: noise.New(seed),
		detail:     noise.New(seed + 1),
		// alpha 2, beta 2, 3 octaves
		vegetation: perlin.NewPerlin(2, 2, 3, seed+2),
		cache:      NewCache(cfg.CacheTTLTicks),
	}, nil
}

// Seed returns the world seed.
func (g *Generator) Seed() int64 { return g.seed }

// Cache exposes the noise cache for diagnostics.
func (g *Generator) Cache() *Cache { return g.cache }

// Tick advances the noise cache countdown. Call once per manager tick.
func (g *Generator) Tick() bool { return g.cache.Tick() }

func (g *Generator) sampleLayer(p *noise.Perlin, l config.NoiseLayer, x, z float64) float64 {
	return p.Fractal2D(x/l.Scale, z/l.Scale, l.Octaves, l.Lacunarity, l.Gain)
}

func (g *Generator) sampleVegetation(x, z float64) float64 {
	s := g.cfg.VegetationScale
	return (g.vegetation.Noise2D((x+0.5)/s, (z+0.5)/s) + 1) / 2
}

// compose turns the two raw layer samples into a surface height.
func (g *Generator) compose(cont, detail float64) float64 {
	c := g.cfg
	h := float64(c.BaseHeight) + (cont*2-1)*c.Continents.Amplitude + (detail*2-1)*c.Detail.Amplitude

	sea := float64(c.SeaLevel)
	if h < sea {
		depth := sea - h
		t := smoothstep(0, c.FloorBlendSpan, depth) * c.FloorBlendCap
		target := sea - c.FloorDepth
		h += (target - h) * t
	}
	return math.Max(float64(c.MinHeight+1), math.Min(h, float64(c.MaxHeight-1)))
}

func smoothstep(edge0, edge1, x float64) float64 {
	t := math.Max(0, math.Min(1, (x-edge0)/(edge1-edge0)))
	return t * t * (3 - 2*t)
}

// HeightAt returns the surface height of the integer column (x, z), going
// through the noise cache.
func (g *Generator) HeightAt(x, z int) float64 {
	fx, fz := float64(x), float64(z)
	cont := g.cache.Get(LayerContinents, x, z, func() float64 {
		return g.sampleLayer(g.continents, g.cfg.Continents, fx, fz)
	})
	detail := g.cache.Get(LayerDetail, x, z, func() float64 {
		return g.sampleLayer(g.detail, g.cfg.Detail, fx, fz)
	})
	return g.compose(cont, detail)
}

// HeightAtPos returns the surface height at an arbitrary position. It
// bypasses the cache; at integer positions it equals HeightAt.
func (g *Generator) HeightAtPos(x, z float64) float64 {
	return g.compose(
		g.sampleLayer(g.continents, g.cfg.Continents, x, z),
		g.sampleLayer(g.detail, g.cfg.Detail, x, z),
	)
}

// column is everything classification needs about one (x, z) column.
type column struct {
	surface    int
	beach      bool
	vegetation bool
}

func (g *Generator) columnAt(x, z int, cached bool) column {
	var h float64
	if cached {
		h = g.HeightAt(x, z)
	} else {
		h = g.HeightAtPos(float64(x), float64(z))
	}
	c := g.cfg
	col := column{surface: int(math.Floor(h))}
	col.beach = col.surface >= c.SeaLevel-c.BeachDepth && col.surface <= c.SeaLevel+c.BeachHeight

	if col.surface > c.SeaLevel+c.BeachHeight {
		var v float64
		if cached {
			v = g.cache.Get(LayerVegetation, x, z, func() float64 {
				return g.sampleVegetation(float64(x), float64(z))
			})
		} else {
			v = g.sampleVegetation(float64(x), float64(z))
		}
		col.vegetation = v > c.VegetationMin && v < c.VegetationMax
	}
	return col
}

// classify picks the block at height y in a column.
func (g *Generator) classify(col column, y int) registry.BlockType {
	c := g.cfg
	if y > col.surface {
		switch {
		case y <= c.SeaLevel:
			return registry.BlockTypeWater
		case y == col.surface+1 && col.vegetation:
			return registry.BlockTypeTallGrass
		default:
			return registry.BlockTypeAir
		}
	}
	if y < c.MinHeight {
		return registry.BlockTypeStone
	}

	depth := col.surface - y
	if col.beach && depth < c.TopsoilDepth {
		return registry.BlockTypeSand
	}
	if depth == 0 {
		if col.surface > c.SeaLevel+c.GrassMargin {
			return registry.BlockTypeGrass
		}
		return registry.BlockTypeStone
	}
	if depth <= c.SubsoilDepth {
		return registry.BlockTypeDirt
	}
	return registry.BlockTypeStone
}

// BlockAt returns the generated block at a world position.
func (g *Generator) BlockAt(x, y, z int) registry.BlockType {
	return g.classify(g.columnAt(x, z, true), y)
}

// blockAtUncached is BlockAt without the cache.
func (g *Generator) blockAtUncached(x, y, z int) registry.BlockType {
	return g.classify(g.columnAt(x, z, false), y)
}

// Populate fills chunk with generated terrain. It checks ctx once per column
// and leaves the chunk untouched when cancelled.
func (g *Generator) Populate(ctx context.Context, chunk *world.Chunk) error {
	defer profiling.Track("worldgen.Populate")()
	ox, oy, oz := chunk.Coord.Origin()

	var cols [world.Size * world.Size]column
	for lz := range world.Size {
		for lx := range world.Size {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("populate %v: %w", chunk.Coord, err)
			}
			cols[lz*world.Size+lx] = g.columnAt(ox+lx, oz+lz, true)
		}
	}

	chunk.Fill(func(x, y, z int) registry.BlockType {
		return g.classify(cols[z*world.Size+x], oy+y)
	})
	return nil
}

// Generate creates and populates a new chunk at coord.
func (g *Generator) Generate(ctx context.Context, coord world.ChunkCoord) (*world.Chunk, error) {
	c := world.NewChunk(coord)
	if err := g.Populate(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
