package blockdef

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"mini-voxel/internal/registry"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownParent  = errors.New("blockdef: unknown parent")
	ErrCycle          = errors.New("blockdef: parent cycle")
	ErrMissingTexture = errors.New("blockdef: missing texture")
)

// maxRefDepth bounds "#key" chains.
const maxRefDepth = 10

// Loader resolves block definitions against their parents. Resolved entries
// are cached, so shared parents are merged once.
type Loader struct {
	defs     map[string]Def
	cache    map[string]*Def
	visiting map[string]bool
}

func NewLoader(f *File) *Loader {
	defs := f.Blocks
	if defs == nil {
		defs = map[string]Def{}
	}
	return &Loader{
		defs:     defs,
		cache:    make(map[string]*Def),
		visiting: make(map[string]bool),
	}
}

// Parse decodes a YAML document.
func Parse(data []byte) (*Loader, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("could not unmarshal block definitions: %w", err)
	}
	return NewLoader(&f), nil
}

// Load reads and decodes a block definition file.
func Load(path string) (*Loader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read block definitions: %w", err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// Resolve returns the definition of name with everything inherited from its
// parent chain filled in. The id is never inherited.
func (l *Loader) Resolve(name string) (*Def, error) {
	if d, ok := l.cache[name]; ok {
		return d, nil
	}
	if l.visiting[name] {
		return nil, fmt.Errorf("%w at %q", ErrCycle, name)
	}
	def, ok := l.defs[name]
	if !ok {
		return nil, fmt.Errorf("blockdef: unknown block %q", name)
	}

	l.visiting[name] = true
	defer delete(l.visiting, name)

	d := def
	d.Textures = maps.Clone(def.Textures)
	if d.Textures == nil {
		d.Textures = make(map[string]Tile)
	}
	if def.Parent != "" {
		if _, ok := l.defs[def.Parent]; !ok {
			return nil, fmt.Errorf("%w %q for %q", ErrUnknownParent, def.Parent, name)
		}
		parent, err := l.Resolve(def.Parent)
		if err != nil {
			return nil, fmt.Errorf("could not resolve parent of %q: %w", name, err)
		}
		if d.Solid == nil {
			d.Solid = parent.Solid
		}
		if d.Transparent == nil {
			d.Transparent = parent.Transparent
		}
		for key, val := range parent.Textures {
			if _, ok := d.Textures[key]; !ok {
				d.Textures[key] = val
			}
		}
	}

	l.cache[name] = &d
	return &d, nil
}

// Texture resolves a texture key, following "#key" references.
func Texture(d *Def, key string) (registry.TileUV, bool) {
	t, ok := d.Textures[key]
	for i := 0; ok && t.IsRef() && i < maxRefDepth; i++ {
		t, ok = d.Textures[t.Ref]
	}
	if !ok || t.IsRef() {
		return registry.TileUV{}, false
	}
	return registry.TileUV{X: t.X, Y: t.Y}, true
}

// faceKeys lists the texture keys tried for a face, most specific first.
func faceKeys(f registry.Face) []string {
	switch f {
	case registry.FaceTop, registry.FaceBottom:
		return []string{f.String(), "all"}
	default:
		return []string{f.String(), "side", "all"}
	}
}

// Spec converts a resolved definition into a registry spec.
func Spec(name string, d *Def) (registry.Spec, error) {
	if d.ID == nil {
		return registry.Spec{}, fmt.Errorf("blockdef: %q is a template", name)
	}
	s := registry.Spec{
		ID:     registry.BlockType(*d.ID),
		Name:   name,
		FaceUV: make([]registry.TileUV, registry.NumFaces),
	}
	if d.Solid != nil {
		s.Solid = *d.Solid
	}
	if d.Transparent != nil {
		s.Transparent = *d.Transparent
	}
	for f := registry.Face(0); f < registry.NumFaces; f++ {
		found := false
		for _, key := range faceKeys(f) {
			if uv, ok := Texture(d, key); ok {
				s.FaceUV[f] = uv
				found = true
				break
			}
		}
		if !found {
			return registry.Spec{}, fmt.Errorf("%w: %q has no tile for %s", ErrMissingTexture, name, f)
		}
	}
	return s, nil
}

// Specs resolves every block that has an id, ordered by id.
func (l *Loader) Specs() ([]registry.Spec, error) {
	names := slices.Sorted(maps.Keys(l.defs))
	specs := make([]registry.Spec, 0, len(names))
	for _, name := range names {
		d, err := l.Resolve(name)
		if err != nil {
			return nil, err
		}
		if d.ID == nil {
			continue
		}
		if *d.ID < 0 || *d.ID >= int(registry.NumBlockTypes) {
			return nil, fmt.Errorf("%w: id %d (%q)", registry.ErrUnknownBlock, *d.ID, name)
		}
		s, err := Spec(name, d)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	slices.SortFunc(specs, func(a, b registry.Spec) int { return int(a.ID) - int(b.ID) })
	return specs, nil
}

// LoadRegistry builds a block registry from a definition file.
func LoadRegistry(path string) (*registry.Registry, error) {
	l, err := Load(path)
	if err != nil {
		return nil, err
	}
	specs, err := l.Specs()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	reg, err := registry.NewRegistry(specs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}
