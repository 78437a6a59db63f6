package world

import (
	"maps"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Loader decides which chunk coordinates should be resident around the viewer.
// It streams the full cube around the center chunk; the view direction is
// accepted so a frustum policy can be dropped in without touching callers.
type Loader struct {
	mu      sync.Mutex
	tracked map[ChunkCoord]bool
}

// NewLoader creates a loader with nothing tracked.
func NewLoader() *Loader {
	return &Loader{tracked: make(map[ChunkCoord]bool)}
}

// VisibleSet marks every coordinate in the cube of side 2*radius+1 around
// center as visible. Coordinates tracked by earlier calls that fell outside
// the cube stay in the map with value false, so callers can retire them.
//
// The returned map is a copy; callers may keep it across Forget calls.
func (l *Loader) VisibleSet(center ChunkCoord, dir mgl32.Vec3, radius int) map[ChunkCoord]bool {
	_ = dir
	if radius < 0 {
		radius = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	for coord := range l.tracked {
		l.tracked[coord] = false
	}
	for dy := -radius; dy <= radius; dy++ {
		for dz := -radius; dz <= radius; dz++ {
			for dx := -radius; dx <= radius; dx++ {
				l.tracked[center.Offset(dx, dy, dz)] = true
			}
		}
	}
	return maps.Clone(l.tracked)
}

// Forget stops tracking a coordinate, used once its chunk is evicted.
func (l *Loader) Forget(coord ChunkCoord) {
	l.mu.Lock()
	delete(l.tracked, coord)
	l.mu.Unlock()
}

// Tracked returns how many coordinates the loader currently tracks.
func (l *Loader) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tracked)
}
