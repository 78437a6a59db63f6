package meshing

import (
	"sync"

	"mini-voxel/internal/world"
)

// MeshSet holds the current mesh of every meshed chunk.
type MeshSet struct {
	mu     sync.RWMutex
	meshes map[world.ChunkCoord]*ChunkMesh
}

func NewMeshSet() *MeshSet {
	return &MeshSet{meshes: make(map[world.ChunkCoord]*ChunkMesh)}
}

// Put installs mesh, replacing any previous mesh for the same chunk.
func (s *MeshSet) Put(mesh *ChunkMesh) {
	s.mu.Lock()
	s.meshes[mesh.Coord] = mesh
	s.mu.Unlock()
}

func (s *MeshSet) Get(coord world.ChunkCoord) (*ChunkMesh, bool) {
	s.mu.RLock()
	m, ok := s.meshes[coord]
	s.mu.RUnlock()
	return m, ok
}

// Delete retires the mesh for coord. Returns whether one existed.
func (s *MeshSet) Delete(coord world.ChunkCoord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meshes[coord]; !ok {
		return false
	}
	delete(s.meshes, coord)
	return true
}

func (s *MeshSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meshes)
}

// Solid returns the non-empty solid buffers keyed by chunk.
func (s *MeshSet) Solid() map[world.ChunkCoord]*Buffer {
	return s.collect(func(m *ChunkMesh) *Buffer { return &m.Solid })
}

// Liquid returns the non-empty liquid buffers keyed by chunk.
func (s *MeshSet) Liquid() map[world.ChunkCoord]*Buffer {
	return s.collect(func(m *ChunkMesh) *Buffer { return &m.Liquid })
}

func (s *MeshSet) collect(pick func(*ChunkMesh) *Buffer) map[world.ChunkCoord]*Buffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[world.ChunkCoord]*Buffer, len(s.meshes))
	for coord, m := range s.meshes {
		if b := pick(m); !b.Empty() {
			out[coord] = b
		}
	}
	return out
}
