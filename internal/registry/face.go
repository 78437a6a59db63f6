package registry

// Face identifies a face of a block. It fits in the 3-bit normal id of a packed vertex.
type Face uint8

const (
	FaceNorth  Face = iota // +Z
	FaceSouth              // -Z
	FaceEast               // +X
	FaceWest               // -X
	FaceTop                // +Y
	FaceBottom             // -Y

	NumFaces
)

var faceNormals = [NumFaces][3]int{
	FaceNorth:  {0, 0, 1},
	FaceSouth:  {0, 0, -1},
	FaceEast:   {1, 0, 0},
	FaceWest:   {-1, 0, 0},
	FaceTop:    {0, 1, 0},
	FaceBottom: {0, -1, 0},
}

var faceNames = [NumFaces]string{"north", "south", "east", "west", "top", "bottom"}

// Normal returns the outward unit normal of the face.
func (f Face) Normal() [3]int { return faceNormals[f] }

// Opposite returns the face pointing the other way.
func (f Face) Opposite() Face { return f ^ 1 }

func (f Face) String() string {
	if f >= NumFaces {
		return "invalid"
	}
	return faceNames[f]
}

// FaceFromNormal maps a unit axis step back to a face. ok is false for
// anything that is not a unit axis vector.
func FaceFromNormal(dx, dy, dz int) (Face, bool) {
	for f := Face(0); f < NumFaces; f++ {
		n := faceNormals[f]
		if n[0] == dx && n[1] == dy && n[2] == dz {
			return f, true
		}
	}
	return 0, false
}
