package meshing

import (
	"testing"

	"mini-voxel/internal/registry"
)

func TestPackLayout(t *testing.T) {
	p := Pack(16, 0, 0, registry.FaceNorth, false, 0)
	if p != 16 {
		t.Fatalf("x occupies the low bits: %#x", p)
	}
	p = Pack(0, 0, 0, 0, true, 0)
	if p != 1<<21 {
		t.Fatalf("water bit: %#x", p)
	}
	p = Pack(0, 0, 0, 0, false, 15)
	if p != 0xF<<22 {
		t.Fatalf("light bits: %#x", p)
	}
}

func TestPackUnpack(t *testing.T) {
	tests := []struct {
		x, y, z int
		face    registry.Face
		water   bool
		light   int
	}{
		{0, 0, 0, registry.FaceNorth, false, 0},
		{16, 16, 16, registry.FaceBottom, true, 15},
		{7, 3, 12, registry.FaceEast, false, 9},
	}
	for _, tt := range tests {
		x, y, z, face, water, light := Unpack(Pack(tt.x, tt.y, tt.z, tt.face, tt.water, tt.light))
		if x != tt.x || y != tt.y || z != tt.z || face != tt.face || water != tt.water || light != tt.light {
			t.Errorf("round trip %+v: got (%d,%d,%d,%v,%v,%d)", tt, x, y, z, face, water, light)
		}
		v := Vertex{Packed: Pack(tt.x, tt.y, tt.z, tt.face, tt.water, tt.light)}
		if v.Face() != tt.face || v.Water() != tt.water || v.Light() != tt.light {
			t.Errorf("accessors disagree with Unpack for %+v", tt)
		}
	}
}
