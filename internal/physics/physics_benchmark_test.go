package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type wall struct{ z int }

func (w wall) IsSolid(x, y, z int) bool { return z == w.z }

func BenchmarkCastSolid(b *testing.B) {
	start := mgl32.Vec3{0.5, 8.5, 0.5}
	dir := mgl32.Vec3{0.3, -0.2, 1}.Normalize()
	q := wall{z: 40}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = CastSolid(q, start, dir, 100, 256)
	}
}

func BenchmarkCollides(b *testing.B) {
	q := wall{z: 1}
	pos := mgl32.Vec3{0.5, 70, 0.5}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Collides(q, pos, 0.3, 1.8)
	}
}
