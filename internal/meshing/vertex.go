package meshing

import "mini-voxel/internal/registry"

// Packed vertex layout (low to high bits):
//
//	x[0:6] y[6:12] z[12:18] face[18:21] water[21] light[22:26]
//
// Positions are chunk-local corners in [0, 16].
const (
	posBits    = 6
	posMask    = 1<<posBits - 1
	yShift     = posBits
	zShift     = 2 * posBits
	faceShift  = 3 * posBits
	faceMask   = 0x7
	waterShift = faceShift + 3
	lightShift = waterShift + 1
	lightMask  = 0xF

	// MaxLight is the brightest light level a vertex can carry.
	MaxLight = lightMask
)

// VertexSize is the size in bytes of one Vertex as uploaded to the GPU.
const VertexSize = 12

// Vertex is one packed vertex plus its atlas texture coordinate.
type Vertex struct {
	Packed uint32
	U, V   float32
}

// Pack encodes a vertex word. Out-of-range inputs are masked.
func Pack(x, y, z int, face registry.Face, water bool, light int) uint32 {
	p := uint32(x)&posMask |
		(uint32(y)&posMask)<<yShift |
		(uint32(z)&posMask)<<zShift |
		(uint32(face)&faceMask)<<faceShift |
		(uint32(light)&lightMask)<<lightShift
	if water {
		p |= 1 << waterShift
	}
	return p
}

// Unpack decodes a vertex word produced by Pack.
func Unpack(p uint32) (x, y, z int, face registry.Face, water bool, light int) {
	x = int(p & posMask)
	y = int(p >> yShift & posMask)
	z = int(p >> zShift & posMask)
	face = registry.Face(p >> faceShift & faceMask)
	water = p>>waterShift&1 == 1
	light = int(p >> lightShift & lightMask)
	return
}

// Position returns the chunk-local corner position.
func (v Vertex) Position() (int, int, int) {
	x, y, z, _, _, _ := Unpack(v.Packed)
	return x, y, z
}

func (v Vertex) Face() registry.Face { return registry.Face(v.Packed >> faceShift & faceMask) }
func (v Vertex) Water() bool         { return v.Packed>>waterShift&1 == 1 }
func (v Vertex) Light() int          { return int(v.Packed >> lightShift & lightMask) }
