package world

import (
	"math"

	"mini-voxel/internal/registry"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkCoord identifies a chunk in chunk space; world position = coord * Size.
type ChunkCoord struct {
	X, Y, Z int
}

// Origin returns the world coordinate of the chunk's minimum corner.
func (c ChunkCoord) Origin() (int, int, int) {
	return c.X * Size, c.Y * Size, c.Z * Size
}

// Offset returns the coordinate shifted by the given number of chunks.
func (c ChunkCoord) Offset(dx, dy, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Neighbor returns the chunk sharing the given face.
func (c ChunkCoord) Neighbor(f registry.Face) ChunkCoord {
	n := f.Normal()
	return c.Offset(n[0], n[1], n[2])
}

// ChebyshevDistance is the number of chunks between a and b along the worst axis.
func (c ChunkCoord) ChebyshevDistance(o ChunkCoord) int {
	return max(abs(c.X-o.X), abs(c.Y-o.Y), abs(c.Z-o.Z))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mod returns the non-negative remainder.
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// ChunkCoordOf returns the chunk containing the world block (x, y, z).
func ChunkCoordOf(x, y, z int) ChunkCoord {
	return ChunkCoord{X: floorDiv(x, Size), Y: floorDiv(y, Size), Z: floorDiv(z, Size)}
}

// LocalCoordOf returns the position of world block (x, y, z) inside its chunk.
func LocalCoordOf(x, y, z int) (int, int, int) {
	return mod(x, Size), mod(y, Size), mod(z, Size)
}

// BlockCoordOf floors a world-space position to the block containing it.
func BlockCoordOf(p mgl32.Vec3) (int, int, int) {
	return int(math.Floor(float64(p.X()))), int(math.Floor(float64(p.Y()))), int(math.Floor(float64(p.Z())))
}

// ChunkCoordOfPos returns the chunk containing a world-space position.
func ChunkCoordOfPos(p mgl32.Vec3) ChunkCoord {
	return ChunkCoordOf(BlockCoordOf(p))
}
