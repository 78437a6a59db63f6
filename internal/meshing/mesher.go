package meshing

import (
	"context"
	"errors"
	"fmt"
	"log"

	"mini-voxel/internal/config"
	"mini-voxel/internal/profiling"
	"mini-voxel/internal/registry"
	"mini-voxel/internal/world"
)

// ErrChunkNotLoaded is returned by Build when the chunk is not in the store.
var ErrChunkNotLoaded = errors.New("meshing: chunk not loaded")

// Buffer is one vertex/index stream. Every visible face contributes four
// vertices and six indices.
type Buffer struct {
	Vertices []Vertex
	Indices  []uint32
}

// Quads returns the number of faces in the buffer.
func (b *Buffer) Quads() int { return len(b.Vertices) / 4 }

// Empty reports whether the buffer holds no geometry.
func (b *Buffer) Empty() bool { return len(b.Vertices) == 0 }

func (b *Buffer) addQuad(v [4]Vertex) {
	base := uint32(len(b.Vertices))
	b.Vertices = append(b.Vertices, v[:]...)
	b.Indices = append(b.Indices, base, base+1, base+2, base+2, base+3, base)
}

// ChunkMesh is the renderable result for one chunk. Version is the chunk
// version the mesh was built from.
type ChunkMesh struct {
	Coord   world.ChunkCoord
	Solid   Buffer
	Liquid  Buffer
	Version uint64
}

// Quad corners per face, ordered bottom-left, bottom-right, top-right,
// top-left as seen from outside the block (counter-clockwise).
var faceCorners = [registry.NumFaces][4][3]int{
	registry.FaceNorth:  {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	registry.FaceSouth:  {{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}},
	registry.FaceEast:   {{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}},
	registry.FaceWest:   {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	registry.FaceTop:    {{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}},
	registry.FaceBottom: {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
}

// Texture corner for each quad corner, in tile units.
var quadUV = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// Padded snapshot of a chunk with a one-block border taken from its neighbors.
const padded = world.Size + 2

type paddedBlocks [padded * padded * padded]registry.BlockType

func pidx(x, y, z int) int {
	return ((y+1)*padded+(z+1))*padded + (x + 1)
}

// Mesher turns chunks into packed geometry.
type Mesher struct {
	reg      *registry.Registry
	seaLevel int
	cfg      config.Mesh
	uvScale  float32
}

// NewMesher creates a mesher for the given registry and world sea level.
func NewMesher(reg *registry.Registry, seaLevel int, cfg config.Mesh) *Mesher {
	return &Mesher{
		reg:      reg,
		seaLevel: seaLevel,
		cfg:      cfg,
		uvScale:  1 / float32(cfg.TilesPerRow),
	}
}

// snapshot copies the chunk and its one-block border. Border blocks in
// chunks that are not loaded read as air.
func (m *Mesher) snapshot(c *world.Chunk, store *world.Store, dst *paddedBlocks) uint64 {
	var center [world.Volume]registry.BlockType
	version := c.Snapshot(&center)
	for y := range world.Size {
		for z := range world.Size {
			row := center[(y*world.Size+z)*world.Size:][:world.Size]
			copy(dst[pidx(0, y, z):], row)
		}
	}

	// Resolve each of the 26 neighbor chunks once.
	var neighbors [27]*world.Chunk
	var resolved [27]bool
	neighbor := func(dx, dy, dz int) *world.Chunk {
		i := (dx + 1) + (dy+1)*3 + (dz+1)*9
		if !resolved[i] {
			resolved[i] = true
			neighbors[i], _ = store.ChunkAt(c.Coord.Offset(dx, dy, dz))
		}
		return neighbors[i]
	}
	side := func(v int) (int, int) {
		switch {
		case v < 0:
			return -1, v + world.Size
		case v >= world.Size:
			return 1, v - world.Size
		}
		return 0, v
	}

	for y := -1; y <= world.Size; y++ {
		for z := -1; z <= world.Size; z++ {
			for x := -1; x <= world.Size; x++ {
				dx, lx := side(x)
				dy, ly := side(y)
				dz, lz := side(z)
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				b := registry.BlockTypeAir
				if nb := neighbor(dx, dy, dz); nb != nil {
					b = nb.GetBlock(lx, ly, lz)
				}
				dst[pidx(x, y, z)] = b
			}
		}
	}
	return version
}

// depthLight is the base light of a block at world height y: full light at
// and above sea level, fading over the dark band, then flat.
func (m *Mesher) depthLight(y int) int {
	full := m.cfg.MaxLight
	if y >= m.seaLevel {
		return full
	}
	depth := m.seaLevel - y
	if depth > m.cfg.DarkBand {
		return m.cfg.DeepLight
	}
	return full - (full-m.cfg.DeepLight)*depth/m.cfg.DarkBand
}

// faceHidden decides whether the face of cur toward nb is culled. worldY is
// the height of cur.
func (m *Mesher) faceHidden(cur, nb registry.BlockType, f registry.Face, worldY int) bool {
	if m.reg.IsSolid(nb) {
		return true
	}
	if m.reg.IsWater(cur) {
		if m.reg.IsWater(nb) {
			return true
		}
		if f == registry.FaceTop && worldY != m.seaLevel {
			return true
		}
	}
	return false
}

// occlusion counts solid blocks around a quad corner in the layer in front of
// the face: the block in front, the two edge neighbors and the diagonal.
func (m *Mesher) occlusion(blocks *paddedBlocks, x, y, z int, f registry.Face, corner [3]int) int {
	n := f.Normal()
	p := [3]int{x + n[0], y + n[1], z + n[2]}

	var axes [2]int
	k := 0
	for a := range 3 {
		if n[a] == 0 {
			axes[k] = a
			k++
		}
	}
	var su, sv [3]int
	su[axes[0]] = corner[axes[0]]*2 - 1
	sv[axes[1]] = corner[axes[1]]*2 - 1

	solid := func(d [3]int) int {
		if m.reg.IsSolid(blocks[pidx(p[0]+d[0], p[1]+d[1], p[2]+d[2])]) {
			return 1
		}
		return 0
	}
	diag := [3]int{su[0] + sv[0], su[1] + sv[1], su[2] + sv[2]}
	return solid([3]int{}) + solid(su) + solid(sv) + solid(diag)
}

// Build meshes the chunk at coord. The chunk is read through a snapshot so
// edits landing during the build are picked up by the next remesh.
func (m *Mesher) Build(ctx context.Context, coord world.ChunkCoord, store *world.Store) (*ChunkMesh, error) {
	defer profiling.Track("meshing.Build")()

	c, ok := store.ChunkAt(coord)
	if !ok {
		return nil, fmt.Errorf("build %v: %w", coord, ErrChunkNotLoaded)
	}

	blocks := new(paddedBlocks)
	mesh := &ChunkMesh{Coord: coord}
	mesh.Version = m.snapshot(c, store, blocks)
	mesh.Solid.Vertices = make([]Vertex, 0, 1024)
	mesh.Solid.Indices = make([]uint32, 0, 1536)

	_, oy, _ := coord.Origin()
	for y := range world.Size {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build %v: %w", coord, err)
		}
		worldY := oy + y
		light := m.depthLight(worldY)
		for z := range world.Size {
			for x := range world.Size {
				bt := blocks[pidx(x, y, z)]
				if bt == registry.BlockTypeAir {
					continue
				}
				water := m.reg.IsWater(bt)
				for f := range registry.NumFaces {
					n := f.Normal()
					nb := blocks[pidx(x+n[0], y+n[1], z+n[2])]
					if m.faceHidden(bt, nb, f, worldY) {
						continue
					}
					if water {
						mesh.Liquid.addQuad(m.quad(blocks, bt, x, y, z, f, true, m.cfg.MaxLight))
					} else {
						mesh.Solid.addQuad(m.quad(blocks, bt, x, y, z, f, false, light))
					}
				}
			}
		}
	}
	return mesh, nil
}

func (m *Mesher) quad(blocks *paddedBlocks, bt registry.BlockType, x, y, z int, f registry.Face, water bool, light int) [4]Vertex {
	tile := m.reg.UV(bt, f)
	var out [4]Vertex
	for i, c := range faceCorners[f] {
		l := light
		if !water {
			l = max(light-m.cfg.AOStep*m.occlusion(blocks, x, y, z, f, c), m.cfg.MinAmbientOcc)
		}
		out[i] = Vertex{
			Packed: Pack(x+c[0], y+c[1], z+c[2], f, water, l),
			U:      (float32(tile.X) + quadUV[i][0]) * m.uvScale,
			// atlas rows grow downward
			V: (float32(tile.Y) + 1 - quadUV[i][1]) * m.uvScale,
		}
	}
	return out
}

// GenerateMesh remeshes the chunk at coord if it is loaded and dirty, and
// installs the result into set. It returns whether a mesh was installed.
// The dirty flag is cleared only if the chunk did not change while meshing.
func (m *Mesher) GenerateMesh(coord world.ChunkCoord, store *world.Store, set *MeshSet) bool {
	c, ok := store.ChunkAt(coord)
	if !ok || !c.IsDirty() {
		return false
	}
	mesh, err := m.Build(context.Background(), coord, store)
	if err != nil {
		log.Printf("meshing: skip %v: %v", coord, err)
		return false
	}
	set.Put(mesh)
	c.MarkClean(mesh.Version)
	return true
}
