package registry

import (
	"errors"
	"fmt"
	"sort"
)

// BlockType is the per-voxel tag. Everything else about a block is looked up
// through a Registry so chunks only store one byte per voxel.
type BlockType uint8

const (
	BlockTypeAir BlockType = iota
	BlockTypeStone
	BlockTypeDirt
	BlockTypeGrass
	BlockTypeSand
	BlockTypeWater
	BlockTypeTallGrass

	NumBlockTypes
)

var (
	// ErrMissingFaceUV is returned when a block spec does not carry exactly one tile per face.
	ErrMissingFaceUV = errors.New("registry: block needs exactly 6 face tiles")
	// ErrDuplicateBlock is returned when two specs share an id or a name.
	ErrDuplicateBlock = errors.New("registry: duplicate block")
	// ErrUnknownBlock is returned for ids outside the known range.
	ErrUnknownBlock = errors.New("registry: unknown block")
)

// TileUV addresses one tile of the texture atlas, in tiles (not pixels).
type TileUV struct {
	X, Y int
}

// Spec is the construction-time description of a block.
type Spec struct {
	ID          BlockType
	Name        string
	Solid       bool
	Transparent bool
	FaceUV      []TileUV // indexed by Face, must have NumFaces entries
}

// Definition is the immutable, resolved form of a Spec.
type Definition struct {
	ID          BlockType
	Name        string
	Solid       bool
	Transparent bool
	FaceUV      [NumFaces]TileUV
}

// Registry maps block types to their physical properties. It is built once
// and then only read, so it is safe to share between goroutines.
type Registry struct {
	defs   [NumBlockTypes]Definition
	known  [NumBlockTypes]bool
	byName map[string]BlockType
}

// NewRegistry validates specs and builds a registry. Air is always present
// even when not listed.
func NewRegistry(specs []Spec) (*Registry, error) {
	r := &Registry{byName: make(map[string]BlockType, len(specs)+1)}
	r.defs[BlockTypeAir] = Definition{ID: BlockTypeAir, Name: "air", Transparent: true}
	r.known[BlockTypeAir] = true
	r.byName["air"] = BlockTypeAir

	for _, s := range specs {
		if s.ID >= NumBlockTypes {
			return nil, fmt.Errorf("%w: id %d (%q)", ErrUnknownBlock, s.ID, s.Name)
		}
		if len(s.FaceUV) != int(NumFaces) {
			return nil, fmt.Errorf("%w: %q has %d", ErrMissingFaceUV, s.Name, len(s.FaceUV))
		}
		if s.ID == BlockTypeAir {
			if s.Solid {
				return nil, fmt.Errorf("registry: air cannot be solid")
			}
			delete(r.byName, "air")
			r.known[BlockTypeAir] = false
		}
		if r.known[s.ID] {
			return nil, fmt.Errorf("%w: id %d (%q)", ErrDuplicateBlock, s.ID, s.Name)
		}
		if _, ok := r.byName[s.Name]; ok {
			return nil, fmt.Errorf("%w: name %q", ErrDuplicateBlock, s.Name)
		}

		def := Definition{
			ID:          s.ID,
			Name:        s.Name,
			Solid:       s.Solid,
			Transparent: s.Transparent,
		}
		copy(def.FaceUV[:], s.FaceUV)
		r.defs[s.ID] = def
		r.known[s.ID] = true
		r.byName[s.Name] = s.ID
	}
	return r, nil
}

// Get returns the definition for t. Unknown types resolve to air.
func (r *Registry) Get(t BlockType) Definition {
	if t >= NumBlockTypes || !r.known[t] {
		return r.defs[BlockTypeAir]
	}
	return r.defs[t]
}

func (r *Registry) IsSolid(t BlockType) bool       { return r.Get(t).Solid }
func (r *Registry) IsTransparent(t BlockType) bool { return r.Get(t).Transparent }

// IsWater reports whether t is the liquid block.
func (r *Registry) IsWater(t BlockType) bool { return t == BlockTypeWater }

// UV returns the atlas tile for the given face of t.
func (r *Registry) UV(t BlockType, f Face) TileUV {
	return r.Get(t).FaceUV[f]
}

// Lookup resolves a block by its registered name.
func (r *Registry) Lookup(name string) (BlockType, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Uniform returns six copies of the same tile.
func Uniform(uv TileUV) []TileUV {
	out := make([]TileUV, NumFaces)
	for i := range out {
		out[i] = uv
	}
	return out
}

// TopSideBottom returns a face table using one tile for the top, one for the
// bottom and one for all four sides.
func TopSideBottom(top, side, bottom TileUV) []TileUV {
	out := make([]TileUV, NumFaces)
	for f := Face(0); f < NumFaces; f++ {
		switch f {
		case FaceTop:
			out[f] = top
		case FaceBottom:
			out[f] = bottom
		default:
			out[f] = side
		}
	}
	return out
}

// DefaultSpecs is the built-in block table.
func DefaultSpecs() []Spec {
	return []Spec{
		{ID: BlockTypeStone, Name: "stone", Solid: true, FaceUV: Uniform(TileUV{1, 0})},
		{ID: BlockTypeDirt, Name: "dirt", Solid: true, FaceUV: Uniform(TileUV{2, 0})},
		{ID: BlockTypeGrass, Name: "grass", Solid: true, FaceUV: TopSideBottom(TileUV{0, 0}, TileUV{3, 0}, TileUV{2, 0})},
		{ID: BlockTypeSand, Name: "sand", Solid: true, FaceUV: Uniform(TileUV{4, 0})},
		{ID: BlockTypeWater, Name: "water", Transparent: true, FaceUV: Uniform(TileUV{5, 0})},
		{ID: BlockTypeTallGrass, Name: "tall_grass", Transparent: true, FaceUV: Uniform(TileUV{6, 0})},
	}
}

// Default builds the registry from DefaultSpecs.
func Default() (*Registry, error) {
	return NewRegistry(DefaultSpecs())
}

// MustDefault is Default for startup code; a broken built-in table is a
// programming error.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}
