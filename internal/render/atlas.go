package render

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"log"
	"os"

	"mini-voxel/internal/registry"

	"github.com/go-gl/gl/v4.1-core/gl"
	xdraw "golang.org/x/image/draw"
)

// DefaultTileSize is the edge length in pixels of one generated atlas tile.
const DefaultTileSize = 16

// Base colors for generated tiles, keyed by block name.
var tileColors = map[string]color.RGBA{
	"stone":      {125, 125, 125, 255},
	"dirt":       {134, 96, 67, 255},
	"grass":      {95, 159, 53, 255},
	"sand":       {219, 207, 163, 255},
	"water":      {47, 84, 196, 255},
	"tall_grass": {88, 148, 46, 255},
}

var fallbackColor = color.RGBA{200, 0, 200, 255}

// GenerateAtlas paints a square atlas of tilesPerRow x tilesPerRow tiles with
// a flat speckled texture for every tile the registry references.
func GenerateAtlas(reg *registry.Registry, tilesPerRow, tileSize int) *image.RGBA {
	side := tilesPerRow * tileSize
	img := image.NewRGBA(image.Rect(0, 0, side, side))

	painted := make(map[registry.TileUV]bool)
	for _, name := range reg.Names() {
		t, _ := reg.Lookup(name)
		if t == registry.BlockTypeAir {
			continue
		}
		def := reg.Get(t)
		for f := registry.Face(0); f < registry.NumFaces; f++ {
			uv := def.FaceUV[f]
			if painted[uv] || uv.X < 0 || uv.Y < 0 || uv.X >= tilesPerRow || uv.Y >= tilesPerRow {
				continue
			}
			painted[uv] = true
			paintTile(img, uv, tileSize, name, f)
		}
	}
	return img
}

func paintTile(img *image.RGBA, uv registry.TileUV, size int, name string, face registry.Face) {
	base, ok := tileColors[name]
	if !ok {
		base = fallbackColor
	}
	ox, oy := uv.X*size, uv.Y*size
	seed := uv.Y*131 + uv.X
	side := face != registry.FaceTop && face != registry.FaceBottom

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			h := speckle(x, y, seed)
			c := base
			switch {
			case name == "grass" && side && y >= size/4:
				c = tileColors["dirt"]
			case name == "tall_grass":
				// blades on every third column, ragged tops
				if x%3 != 0 || y < int(h%uint32(size/2+1)) {
					img.SetRGBA(ox+x, oy+y, color.RGBA{})
					continue
				}
			}
			img.SetRGBA(ox+x, oy+y, shade(c, int(h%25)-12))
		}
	}
}

func speckle(x, y, seed int) uint32 {
	h := uint32(x*73856093) ^ uint32(y*19349663) ^ uint32(seed*83492791)
	h ^= h >> 13
	h *= 0x5bd1e995
	return h ^ h>>15
}

func shade(c color.RGBA, d int) color.RGBA {
	ch := func(v uint8) uint8 {
		return uint8(min(max(int(v)+d, 0), 255))
	}
	return color.RGBA{ch(c.R), ch(c.G), ch(c.B), c.A}
}

// LoadAtlas decodes a PNG atlas and rescales it to tilesPerRow*tileSize
// pixels square so tile addressing matches the mesher's UV scale.
func LoadAtlas(path string, tilesPerRow, tileSize int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open atlas %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode atlas %s: %w", path, err)
	}
	b := src.Bounds()
	if b.Dx() != b.Dy() {
		log.Printf("atlas %s is %dx%d, stretching to square", path, b.Dx(), b.Dy())
	}
	return NormalizeAtlas(src, tilesPerRow*tileSize), nil
}

// NormalizeAtlas copies src into a side x side RGBA image. Nearest neighbour
// keeps tile edges sharp.
func NormalizeAtlas(src image.Image, side int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// UploadAtlas creates a GL texture from img.
func UploadAtlas(img *image.RGBA) uint32 {
	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(img.Rect.Size().X),
		int32(img.Rect.Size().Y),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(img.Pix),
	)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texture
}
