package world

import (
	"sync"

	"mini-voxel/internal/registry"
)

const (
	// Size is the edge length of a chunk in blocks.
	Size = 16
	// Volume is the number of blocks in a chunk.
	Volume = Size * Size * Size
)

// index converts local coordinates into the flat block index.
func index(x, y, z int) int {
	return (y*Size+z)*Size + x
}

func inBounds(x, y, z int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size && z >= 0 && z < Size
}

// Chunk is a 16³ block of voxels. Reads and writes go through a per-chunk
// RWMutex so a mesh task can snapshot a chunk while edits land elsewhere.
//
// version increases on every mutation. A mesh built from a snapshot only
// clears the dirty flag if the version still matches (see MarkClean).
type Chunk struct {
	Coord ChunkCoord

	mu      sync.RWMutex
	blocks  [Volume]registry.BlockType
	dirty   bool
	version uint64
}

// NewChunk creates an empty, dirty chunk at the given chunk coordinate.
func NewChunk(coord ChunkCoord) *Chunk {
	return &Chunk{
		Coord: coord,
		dirty: true,
	}
}

// GetBlock returns the block at local coordinates; out-of-range reads are air.
func (c *Chunk) GetBlock(x, y, z int) registry.BlockType {
	if !inBounds(x, y, z) {
		return registry.BlockTypeAir
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[index(x, y, z)]
}

// SetBlock writes a block at local coordinates and marks the chunk dirty.
func (c *Chunk) SetBlock(x, y, z int, t registry.BlockType) bool {
	if !inBounds(x, y, z) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks[index(x, y, z)] = t
	c.dirty = true
	c.version++
	return true
}

// Fill sets every block from fn, iterating in index order.
func (c *Chunk) Fill(fn func(x, y, z int) registry.BlockType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for y := range Size {
		for z := range Size {
			for x := range Size {
				c.blocks[index(x, y, z)] = fn(x, y, z)
			}
		}
	}
	c.dirty = true
	c.version++
}

// IsEmpty reports whether the chunk holds only air.
func (c *Chunk) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.blocks {
		if b != registry.BlockTypeAir {
			return false
		}
	}
	return true
}

// Snapshot copies the blocks into dst and returns the version they belong to.
func (c *Chunk) Snapshot(dst *[Volume]registry.BlockType) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	*dst = c.blocks
	return c.version
}

// IsDirty returns whether the chunk needs a remesh.
func (c *Chunk) IsDirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// MarkDirty forces a remesh. It bumps the version so a mesh task that is
// already running cannot clear the flag afterwards.
func (c *Chunk) MarkDirty() {
	c.mu.Lock()
	c.dirty = true
	c.version++
	c.mu.Unlock()
}

// MarkClean clears the dirty flag if nothing changed since the snapshot with
// the given version was taken. It returns false when the chunk moved on.
func (c *Chunk) MarkClean(version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != version {
		return false
	}
	c.dirty = false
	return true
}

// Version returns the current mutation counter.
func (c *Chunk) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}
