package blockdef

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the top level of a block definition document.
type File struct {
	Blocks map[string]Def `yaml:"blocks"`
}

// Def is one block entry. Entries without an id are templates: they can be
// used as a parent but do not become blocks themselves. Unset fields are
// inherited from the parent.
type Def struct {
	ID          *int            `yaml:"id"`
	Parent      string          `yaml:"parent"`
	Solid       *bool           `yaml:"solid"`
	Transparent *bool           `yaml:"transparent"`
	Textures    map[string]Tile `yaml:"textures"`
}

// Tile is either an atlas tile written as [x, y] or a reference to another
// texture key written as "#key".
type Tile struct {
	X, Y int
	Ref  string
}

func (t Tile) IsRef() bool { return t.Ref != "" }

// UnmarshalYAML accepts both the [x, y] and the "#key" form.
func (t *Tile) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if !strings.HasPrefix(n.Value, "#") {
			return fmt.Errorf("line %d: texture reference %q must start with '#'", n.Line, n.Value)
		}
		*t = Tile{Ref: strings.TrimPrefix(n.Value, "#")}
		return nil
	case yaml.SequenceNode:
		var xy []int
		if err := n.Decode(&xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("line %d: tile needs [x, y], got %d values", n.Line, len(xy))
		}
		*t = Tile{X: xy[0], Y: xy[1]}
		return nil
	default:
		return fmt.Errorf("line %d: tile must be [x, y] or \"#key\"", n.Line)
	}
}
