package physics

import (
	"math"

	"mini-voxel/internal/profiling"
	"mini-voxel/internal/registry"
	"mini-voxel/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 6.0
	// DefaultMaxSteps bounds a pick ray at MaxReachDistance.
	DefaultMaxSteps = 64
)

// BlockQuerier answers whether the block at a world position stops a ray.
type BlockQuerier interface {
	IsSolid(x, y, z int) bool
}

// Solids adapts a chunk store to BlockQuerier. Unloaded blocks are not solid.
type Solids struct {
	Store    *world.Store
	Registry *registry.Registry
}

func (s Solids) IsSolid(x, y, z int) bool {
	b, ok := s.Store.BlockAt(x, y, z)
	return ok && s.Registry.IsSolid(b)
}

// RaycastResult stores the result of a raycast operation. Previous is the
// voxel visited just before Block; it is filled in on a miss as well so
// callers get a placement hint.
type RaycastResult struct {
	Hit      bool
	Block    [3]int
	Previous [3]int
	Distance float32
	Face     registry.Face // face of Block the ray entered through
}

// CastSolid walks the voxel grid along the ray (Amanatides & Woo) and stops
// at the first solid block, after maxSteps voxel steps, or once the travelled
// distance exceeds maxDistance.
func CastSolid(q BlockQuerier, origin, dir mgl32.Vec3, maxDistance float32, maxSteps int) RaycastResult {
	defer profiling.Track("physics.CastSolid")()

	var res RaycastResult
	if dir.Len() == 0 {
		return res
	}
	dir = dir.Normalize()

	x, y, z := world.BlockCoordOf(origin)
	cur := [3]int{x, y, z}
	prev := cur

	var step [3]int
	var tMax, tDelta [3]float64
	for a := range 3 {
		d := float64(dir[a])
		o := float64(origin[a])
		switch {
		case d > 0:
			step[a] = 1
			tDelta[a] = 1 / d
			tMax[a] = (math.Floor(o) + 1 - o) / d
		case d < 0:
			step[a] = -1
			tDelta[a] = -1 / d
			tMax[a] = (o - math.Floor(o)) / -d
		default:
			tDelta[a] = math.Inf(1)
			tMax[a] = math.Inf(1)
		}
		tMax[a] = math.Max(tMax[a], 0)
	}

	var lastAxis = -1
	t := 0.0
	for range maxSteps + 1 {
		if t > float64(maxDistance) {
			break
		}
		if q.IsSolid(cur[0], cur[1], cur[2]) {
			res.Hit = true
			res.Block = cur
			res.Previous = prev
			res.Distance = float32(t)
			if lastAxis >= 0 {
				var n [3]int
				n[lastAxis] = -step[lastAxis]
				res.Face, _ = registry.FaceFromNormal(n[0], n[1], n[2])
			}
			return res
		}

		// advance along the axis whose boundary is nearest
		a := 0
		if tMax[1] < tMax[a] {
			a = 1
		}
		if tMax[2] < tMax[a] {
			a = 2
		}
		if math.IsInf(tMax[a], 1) {
			break
		}
		prev = cur
		cur[a] += step[a]
		t = tMax[a]
		tMax[a] += tDelta[a]
		lastAxis = a
	}

	res.Block = cur
	res.Previous = prev
	res.Distance = float32(math.Min(t, float64(maxDistance)))
	return res
}
