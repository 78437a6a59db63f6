package noise

import (
	"math"
	"math/rand"
)

// Gradient tables. 3D uses the twelve cube edge directions (repeated to 16
// entries), 2D uses the eight compass directions.
var (
	gradX = [16]float64{1, -1, 1, -1, 1, -1, 1, -1, 0, 0, 0, 0, 1, 0, -1, 0}
	gradY = [16]float64{1, 1, -1, -1, 0, 0, 0, 0, 1, -1, 1, -1, 1, -1, 1, -1}
	gradZ = [16]float64{0, 0, 0, 0, 1, 1, -1, -1, 1, 1, -1, -1, 0, 1, 0, -1}

	grad2X = [8]float64{1, -1, 1, -1, 1, -1, 0, 0}
	grad2Y = [8]float64{1, 1, -1, -1, 0, 0, 1, -1}
)

// Perlin is a seeded gradient-noise generator. It holds only the permutation
// table and is safe for concurrent use once built.
type Perlin struct {
	seed int64
	perm [512]int
}

// New builds the permutation table from seed with a Fisher-Yates shuffle.
// math/rand sources are stable for a given seed, so the table (and every
// sample) is reproducible across runs.
func New(seed int64) *Perlin {
	p := &Perlin{seed: seed}
	rnd := rand.New(rand.NewSource(seed))

	var base [256]int
	for i := range base {
		base[i] = i
	}
	for i := 255; i > 0; i-- {
		j := rnd.Intn(i + 1)
		base[i], base[j] = base[j], base[i]
	}
	for i := 0; i < 256; i++ {
		p.perm[i] = base[i]
		p.perm[i+256] = base[i]
	}
	return p
}

// Seed returns the seed the table was built from.
func (p *Perlin) Seed() int64 { return p.seed }

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func grad2(hash int, x, y float64) float64 {
	i := hash & 7
	return grad2X[i]*x + grad2Y[i]*y
}

func grad3(hash int, x, y, z float64) float64 {
	i := hash & 15
	return gradX[i]*x + gradY[i]*y + gradZ[i]*z
}

// Noise2D returns raw gradient noise in [-1, 1].
func (p *Perlin) Noise2D(x, y float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	xi := int(fx) & 255
	yi := int(fy) & 255
	x -= fx
	y -= fy
	u, v := fade(x), fade(y)

	aa := p.perm[p.perm[xi]+yi]
	ab := p.perm[p.perm[xi]+yi+1]
	ba := p.perm[p.perm[xi+1]+yi]
	bb := p.perm[p.perm[xi+1]+yi+1]

	n := lerp(v,
		lerp(u, grad2(aa, x, y), grad2(ba, x-1, y)),
		lerp(u, grad2(ab, x, y-1), grad2(bb, x-1, y-1)),
	)
	return clampUnit(n)
}

// Noise3D returns raw gradient noise in [-1, 1].
func (p *Perlin) Noise3D(x, y, z float64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)
	xi := int(fx) & 255
	yi := int(fy) & 255
	zi := int(fz) & 255
	x -= fx
	y -= fy
	z -= fz
	u, v, w := fade(x), fade(y), fade(z)

	a := p.perm[xi] + yi
	aa := p.perm[a] + zi
	ab := p.perm[a+1] + zi
	b := p.perm[xi+1] + yi
	ba := p.perm[b] + zi
	bb := p.perm[b+1] + zi

	n := lerp(w,
		lerp(v,
			lerp(u, grad3(p.perm[aa], x, y, z), grad3(p.perm[ba], x-1, y, z)),
			lerp(u, grad3(p.perm[ab], x, y-1, z), grad3(p.perm[bb], x-1, y-1, z)),
		),
		lerp(v,
			lerp(u, grad3(p.perm[aa+1], x, y, z-1), grad3(p.perm[ba+1], x-1, y, z-1)),
			lerp(u, grad3(p.perm[ab+1], x, y-1, z-1), grad3(p.perm[bb+1], x-1, y-1, z-1)),
		),
	)
	return clampUnit(n)
}

// Sample2D maps Noise2D into [0, 1].
func (p *Perlin) Sample2D(x, y float64) float64 {
	return (p.Noise2D(x, y) + 1) * 0.5
}

// Sample3D maps Noise3D into [0, 1].
func (p *Perlin) Sample3D(x, y, z float64) float64 {
	return (p.Noise3D(x, y, z) + 1) * 0.5
}
