package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Collides reports whether a viewer box standing at pos overlaps a solid
// block. The box spans halfWidth around pos on X and Z and height upward.
// Block (x, y, z) occupies [x, x+1) on every axis.
func Collides(q BlockQuerier, pos mgl32.Vec3, halfWidth, height float32) bool {
	minX := int(math.Floor(float64(pos.X() - halfWidth)))
	maxX := int(math.Floor(float64(pos.X() + halfWidth)))
	minY := int(math.Floor(float64(pos.Y())))
	maxY := int(math.Floor(float64(pos.Y() + height)))
	minZ := int(math.Floor(float64(pos.Z() - halfWidth)))
	maxZ := int(math.Floor(float64(pos.Z() + halfWidth)))

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				if !q.IsSolid(x, y, z) {
					continue
				}
				if pos.X()-halfWidth < float32(x+1) && pos.X()+halfWidth > float32(x) &&
					pos.Y() < float32(y+1) && pos.Y()+height > float32(y) &&
					pos.Z()-halfWidth < float32(z+1) && pos.Z()+halfWidth > float32(z) {
					return true
				}
			}
		}
	}
	return false
}

// BoxContainsBlock reports whether block b intersects the viewer box at pos.
// Used to refuse placing a block inside the viewer.
func BoxContainsBlock(b [3]int, pos mgl32.Vec3, halfWidth, height float32) bool {
	return Collides(single(b), pos, halfWidth, height)
}

type single [3]int

func (s single) IsSolid(x, y, z int) bool { return s == single{x, y, z} }

// FindGroundLevel returns the top of the highest solid block in the column
// under (x, z), searching downward from fromY to floorY. ok is false if the
// column is empty over that range.
func FindGroundLevel(q BlockQuerier, x, z float32, fromY, floorY int) (float32, bool) {
	bx := int(math.Floor(float64(x)))
	bz := int(math.Floor(float64(z)))
	for by := fromY; by >= floorY; by-- {
		if q.IsSolid(bx, by, bz) {
			return float32(by + 1), true
		}
	}
	return 0, false
}
