package noise

import (
	"math"
	"math/rand"
	"testing"
)

// TestPermutationIsPermutation verifies the shuffled table holds every byte value once.
func TestPermutationIsPermutation(t *testing.T) {
	p := New(42)
	var seen [256]bool
	for i := 0; i < 256; i++ {
		v := p.perm[i]
		if v < 0 || v > 255 || seen[v] {
			t.Fatalf("perm[%d]=%d duplicated or out of range", i, v)
		}
		seen[v] = true
		if p.perm[i+256] != v {
			t.Fatalf("perm[%d] not mirrored", i+256)
		}
	}
}

func TestSeededTablesAreReproducible(t *testing.T) {
	a := New(1234)
	b := New(1234)
	if a.perm != b.perm {
		t.Fatal("same seed produced different permutation tables")
	}
	if New(1235).perm == a.perm {
		t.Fatal("different seeds produced identical permutation tables")
	}
}

func TestSample2DRangeAndDeterminism(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))
	p := New(7)
	q := New(7)
	for i := 0; i < 2000; i++ {
		x := rng.Float64()*400 - 200
		y := rng.Float64()*400 - 200
		v := p.Sample2D(x, y)
		if v < 0 || v > 1 {
			t.Fatalf("Sample2D(%f,%f)=%f out of [0,1]", x, y, v)
		}
		if w := q.Sample2D(x, y); w != v {
			t.Fatalf("Sample2D not deterministic: %f != %f", v, w)
		}
	}
}

func TestSample3DRange(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	p := New(3)
	for i := 0; i < 2000; i++ {
		x := rng.Float64()*200 - 100
		y := rng.Float64()*200 - 100
		z := rng.Float64()*200 - 100
		if v := p.Sample3D(x, y, z); v < 0 || v > 1 {
			t.Fatalf("Sample3D(%f,%f,%f)=%f out of [0,1]", x, y, z, v)
		}
	}
}

// Gradient noise is zero on every lattice point.
func TestNoiseZeroAtLattice(t *testing.T) {
	p := New(5)
	for x := -4; x <= 4; x++ {
		for y := -4; y <= 4; y++ {
			if v := p.Noise2D(float64(x), float64(y)); v != 0 {
				t.Errorf("Noise2D(%d,%d)=%f, want 0", x, y, v)
			}
			if v := p.Noise3D(float64(x), float64(y), 0.0); v != 0 {
				t.Errorf("Noise3D(%d,%d,0)=%f, want 0", x, y, v)
			}
		}
	}
}

func TestNoiseContinuity(t *testing.T) {
	p := New(42)
	v1 := p.Sample2D(1.3, 7.7)
	v2 := p.Sample2D(1.31, 7.7)
	if diff := math.Abs(v1 - v2); diff >= 0.1 {
		t.Errorf("Sample2D jumped by %f over 0.01", diff)
	}
}

func TestFractal2D(t *testing.T) {
	p := New(2024)
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name       string
		octaves    int
		lacunarity float64
		gain       float64
	}{
		{"single octave", 1, 2, 0.5},
		{"fbm", 5, 2, 0.5},
		{"rough", 6, 2.2, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 500; i++ {
				x := rng.Float64()*1000 - 500
				y := rng.Float64()*1000 - 500
				v := p.Fractal2D(x, y, tt.octaves, tt.lacunarity, tt.gain)
				if v < 0 || v > 1 {
					t.Fatalf("Fractal2D out of range: %f", v)
				}
				if again := p.Fractal2D(x, y, tt.octaves, tt.lacunarity, tt.gain); again != v {
					t.Fatalf("Fractal2D not deterministic: %f != %f", v, again)
				}
			}
		})
	}
}

func TestFractalSingleOctaveMatchesSample(t *testing.T) {
	p := New(11)
	for _, pt := range [][2]float64{{0.3, 0.9}, {-12.5, 3.25}, {100.1, -7.7}} {
		want := p.Sample2D(pt[0], pt[1])
		got := p.Fractal2D(pt[0], pt[1], 1, 2, 0.5)
		if math.Abs(want-got) > 1e-12 {
			t.Errorf("Fractal2D(1 octave)=%f, Sample2D=%f", got, want)
		}
	}
}

func TestFractal3DRange(t *testing.T) {
	p := New(8)
	for i := 0; i < 300; i++ {
		f := float64(i) * 0.37
		if v := p.Fractal3D(f, -f, f*0.5, 4, 2, 0.5); v < 0 || v > 1 {
			t.Fatalf("Fractal3D out of range: %f", v)
		}
	}
}

func BenchmarkFractal2D(b *testing.B) {
	p := New(1)
	for i := 0; i < b.N; i++ {
		_ = p.Fractal2D(float64(i%1024)*0.01, float64(i/1024)*0.01, 5, 2, 0.5)
	}
}
