package noise

// Fractal2D sums octaves of raw noise. Each octave is weighted by the current
// amplitude; amplitude is multiplied by gain and frequency by lacunarity per
// octave. The sum is normalized by the total amplitude and mapped into [0, 1].
func (p *Perlin) Fractal2D(x, y float64, octaves int, lacunarity, gain float64) float64 {
	if octaves <= 0 {
		return 0.5
	}
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0
	for range octaves {
		sum += p.Noise2D(x*frequency, y*frequency) * amplitude
		norm += amplitude
		amplitude *= gain
		frequency *= lacunarity
	}
	if norm == 0 {
		return 0.5
	}
	return (clampUnit(sum/norm) + 1) * 0.5
}

// Fractal3D is the volumetric counterpart of Fractal2D.
func (p *Perlin) Fractal3D(x, y, z float64, octaves int, lacunarity, gain float64) float64 {
	if octaves <= 0 {
		return 0.5
	}
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0
	for range octaves {
		sum += p.Noise3D(x*frequency, y*frequency, z*frequency) * amplitude
		norm += amplitude
		amplitude *= gain
		frequency *= lacunarity
	}
	if norm == 0 {
		return 0.5
	}
	return (clampUnit(sum/norm) + 1) * 0.5
}
