package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := MustDefault()

	assert.True(t, r.IsSolid(BlockTypeStone))
	assert.True(t, r.IsSolid(BlockTypeGrass))
	assert.False(t, r.IsSolid(BlockTypeAir))
	assert.False(t, r.IsSolid(BlockTypeWater))
	assert.False(t, r.IsSolid(BlockTypeTallGrass))
	assert.True(t, r.IsWater(BlockTypeWater))
	assert.True(t, r.IsTransparent(BlockTypeWater))

	assert.Equal(t, TileUV{0, 0}, r.UV(BlockTypeGrass, FaceTop))
	assert.Equal(t, TileUV{3, 0}, r.UV(BlockTypeGrass, FaceEast))
	assert.Equal(t, TileUV{2, 0}, r.UV(BlockTypeGrass, FaceBottom))

	id, ok := r.Lookup("sand")
	require.True(t, ok)
	assert.Equal(t, BlockTypeSand, id)
}

func TestRegistryRejectsShortFaceTable(t *testing.T) {
	_, err := NewRegistry([]Spec{
		{ID: BlockTypeStone, Name: "stone", Solid: true, FaceUV: []TileUV{{1, 0}, {1, 0}}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingFaceUV))
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry([]Spec{
		{ID: BlockTypeStone, Name: "stone", Solid: true, FaceUV: Uniform(TileUV{})},
		{ID: BlockTypeDirt, Name: "stone", Solid: true, FaceUV: Uniform(TileUV{})},
	})
	assert.ErrorIs(t, err, ErrDuplicateBlock)

	_, err = NewRegistry([]Spec{
		{ID: BlockTypeStone, Name: "stone", FaceUV: Uniform(TileUV{})},
		{ID: BlockTypeStone, Name: "rock", FaceUV: Uniform(TileUV{})},
	})
	assert.ErrorIs(t, err, ErrDuplicateBlock)
}

func TestRegistryUnknownTypeIsAir(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)
	assert.Equal(t, "air", r.Get(BlockTypeStone).Name)
	assert.False(t, r.IsSolid(BlockType(200)))
}

func TestFaceOpposite(t *testing.T) {
	for f := Face(0); f < NumFaces; f++ {
		n, o := f.Normal(), f.Opposite().Normal()
		assert.Equal(t, [3]int{-n[0], -n[1], -n[2]}, o, "face %v", f)

		back, ok := FaceFromNormal(n[0], n[1], n[2])
		require.True(t, ok)
		assert.Equal(t, f, back)
	}
	_, ok := FaceFromNormal(1, 1, 0)
	assert.False(t, ok)
}
