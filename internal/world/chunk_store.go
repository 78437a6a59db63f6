package world

import (
	"errors"
	"fmt"
	"sync"

	"mini-voxel/internal/profiling"
	"mini-voxel/internal/registry"
)

// ErrChunkExists is returned when a chunk is installed over an existing one.
var ErrChunkExists = errors.New("chunk already exists")

// Store holds the loaded chunks keyed by chunk coordinate.
type Store struct {
	chunks   map[ChunkCoord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// AddChunk installs a populated chunk. Installing over an existing
// coordinate is refused.
func (s *Store) AddChunk(coord ChunkCoord, chunk *Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chunks[coord]; ok {
		return fmt.Errorf("add chunk %v: %w", coord, ErrChunkExists)
	}
	chunk.Coord = coord
	s.chunks[coord] = chunk
	s.modCount++
	return nil
}

// HasChunk checks if a chunk exists.
func (s *Store) HasChunk(coord ChunkCoord) bool {
	s.mu.RLock()
	_, exists := s.chunks[coord]
	s.mu.RUnlock()
	return exists
}

// ChunkAt returns the chunk at coord, if loaded.
func (s *Store) ChunkAt(coord ChunkCoord) (*Chunk, bool) {
	s.mu.RLock()
	c, ok := s.chunks[coord]
	s.mu.RUnlock()
	return c, ok
}

// BlockAt returns the block at world coordinates. ok is false when the
// owning chunk is not loaded.
func (s *Store) BlockAt(x, y, z int) (registry.BlockType, bool) {
	c, ok := s.ChunkAt(ChunkCoordOf(x, y, z))
	if !ok {
		return registry.BlockTypeAir, false
	}
	lx, ly, lz := LocalCoordOf(x, y, z)
	return c.GetBlock(lx, ly, lz), true
}

// SetBlockAt writes a block at world coordinates. It marks the owning chunk
// dirty, and every loaded chunk that shares the touched boundary face.
// Returns false if the owning chunk is not loaded.
func (s *Store) SetBlockAt(x, y, z int, t registry.BlockType) bool {
	coord := ChunkCoordOf(x, y, z)
	c, ok := s.ChunkAt(coord)
	if !ok {
		return false
	}
	lx, ly, lz := LocalCoordOf(x, y, z)
	c.SetBlock(lx, ly, lz, t)

	// Mark neighbor chunks dirty if we touched a border block
	mark := func(dx, dy, dz int) {
		if nb, ok := s.ChunkAt(coord.Offset(dx, dy, dz)); ok {
			nb.MarkDirty()
		}
	}
	if lx == 0 {
		mark(-1, 0, 0)
	} else if lx == Size-1 {
		mark(1, 0, 0)
	}
	if ly == 0 {
		mark(0, -1, 0)
	} else if ly == Size-1 {
		mark(0, 1, 0)
	}
	if lz == 0 {
		mark(0, 0, -1)
	} else if lz == Size-1 {
		mark(0, 0, 1)
	}
	return true
}

// RemoveChunk drops a chunk from the store. Returns whether it was present.
func (s *Store) RemoveChunk(coord ChunkCoord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chunks[coord]; !ok {
		return false
	}
	delete(s.chunks, coord)
	s.modCount++
	return true
}

// EvictBeyond removes every chunk farther than radius (Chebyshev) from
// center and returns the removed coordinates.
func (s *Store) EvictBeyond(center ChunkCoord, radius int) []ChunkCoord {
	defer profiling.Track("world.EvictBeyond")()
	var removed []ChunkCoord
	s.mu.Lock()
	for coord := range s.chunks {
		if coord.ChebyshevDistance(center) > radius {
			delete(s.chunks, coord)
			s.modCount++
			removed = append(removed, coord)
		}
	}
	s.mu.Unlock()
	return removed
}

// Coords returns the coordinates of every loaded chunk.
func (s *Store) Coords() []ChunkCoord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ChunkCoord, 0, len(s.chunks))
	for coord := range s.chunks {
		out = append(out, coord)
	}
	return out
}

// Len returns the number of loaded chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// ModCount returns the current modification count of the chunk map.
func (s *Store) ModCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modCount
}
