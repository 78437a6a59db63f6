package render

import (
	"image"

	"mini-voxel/internal/manager"
	"mini-voxel/internal/meshing"
	"mini-voxel/internal/profiling"
	"mini-voxel/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// gpuMesh is one uploaded buffer. src is the CPU buffer it was built from;
// a different pointer in the next frame means the mesh was rebuilt.
type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
	src           *meshing.Buffer
}

// backend owns GPU buffer objects. The GL implementation is the only one
// outside tests.
type backend interface {
	upload(b *meshing.Buffer) *gpuMesh
	release(m *gpuMesh)
}

// layer tracks the uploads for one render pass.
type layer struct {
	meshes map[world.ChunkCoord]*gpuMesh
}

func newLayer() *layer {
	return &layer{meshes: make(map[world.ChunkCoord]*gpuMesh)}
}

// sync makes the layer mirror want: new or rebuilt buffers are uploaded
// wholesale, buffers no longer present are released.
func (l *layer) sync(be backend, want map[world.ChunkCoord]*meshing.Buffer) (uploaded int) {
	for coord, m := range l.meshes {
		if _, ok := want[coord]; !ok {
			be.release(m)
			delete(l.meshes, coord)
		}
	}
	for coord, b := range want {
		if old, ok := l.meshes[coord]; ok {
			if old.src == b {
				continue
			}
			be.release(old)
		}
		l.meshes[coord] = be.upload(b)
		uploaded++
	}
	return uploaded
}

func (l *layer) drop(be backend, coord world.ChunkCoord) {
	if m, ok := l.meshes[coord]; ok {
		be.release(m)
		delete(l.meshes, coord)
	}
}

func (l *layer) clear(be backend) {
	for coord, m := range l.meshes {
		be.release(m)
		delete(l.meshes, coord)
	}
}

// Renderer draws the chunk meshes of the latest manager frame.
type Renderer struct {
	shader   *Shader
	atlas    uint32
	be       backend
	solid    *layer
	liquid   *layer
	FogColor [3]float32
}

// New compiles the chunk shader and uploads the atlas. It needs a current
// GL context.
func New(atlas *image.RGBA) (*Renderer, error) {
	shader, err := NewShader(chunkVertexShader, chunkFragmentShader)
	if err != nil {
		return nil, err
	}
	r := newRenderer(glBackend{})
	r.shader = shader
	r.atlas = UploadAtlas(atlas)

	shader.Use()
	shader.SetInt("atlas", 0)
	shader.SetFloat("maxLight", meshing.MaxLight)
	return r, nil
}

func newRenderer(be backend) *Renderer {
	return &Renderer{
		be:       be,
		solid:    newLayer(),
		liquid:   newLayer(),
		FogColor: [3]float32{0.62, 0.76, 0.95},
	}
}

// Apply brings the GPU state in line with f and returns the number of
// buffers uploaded.
func (r *Renderer) Apply(f manager.Frame) int {
	defer profiling.Track("render.Apply")()
	for _, coord := range f.Retired {
		r.solid.drop(r.be, coord)
		r.liquid.drop(r.be, coord)
	}
	return r.solid.sync(r.be, f.Solid) + r.liquid.sync(r.be, f.Liquid)
}

// Chunks returns the number of uploaded solid and liquid meshes.
func (r *Renderer) Chunks() (solid, liquid int) {
	return len(r.solid.meshes), len(r.liquid.meshes)
}

// Draw renders the solid pass, then the liquid pass blended on top.
func (r *Renderer) Draw(cam *Camera) {
	defer profiling.Track("render.Draw")()

	view := cam.View()
	proj := cam.Projection()
	frustum := NewFrustum(proj.Mul4(view))

	gl.ClearColor(r.FogColor[0], r.FogColor[1], r.FogColor[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)

	r.shader.Use()
	r.shader.SetMatrix4("proj", &proj[0])
	r.shader.SetMatrix4("view", &view[0])
	r.shader.SetVector3("fogColor", r.FogColor)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.atlas)

	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.Disable(gl.BLEND)
	r.drawLayer(r.solid, &frustum)

	// water is seen from both sides and must not hide what is behind it
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	r.drawLayer(r.liquid, &frustum)
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)

	gl.BindVertexArray(0)
}

func (r *Renderer) drawLayer(l *layer, frustum *Frustum) {
	for coord, m := range l.meshes {
		if m.count == 0 || !frustum.ContainsChunk(coord) {
			continue
		}
		ox, oy, oz := coord.Origin()
		r.shader.SetVector3("chunkOrigin", [3]float32{float32(ox), float32(oy), float32(oz)})
		gl.BindVertexArray(m.vao)
		gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, gl.PtrOffset(0))
	}
}

// Dispose releases every GL object owned by the renderer.
func (r *Renderer) Dispose() {
	r.solid.clear(r.be)
	r.liquid.clear(r.be)
	if r.atlas != 0 {
		gl.DeleteTextures(1, &r.atlas)
		r.atlas = 0
	}
	if r.shader != nil {
		r.shader.Delete()
	}
}

type glBackend struct{}

func (glBackend) upload(b *meshing.Buffer) *gpuMesh {
	m := &gpuMesh{src: b, count: int32(len(b.Indices))}
	if len(b.Vertices) == 0 {
		return m
	}
	gl.GenVertexArrays(1, &m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.GenBuffers(1, &m.ebo)

	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(b.Vertices)*meshing.VertexSize, gl.Ptr(b.Vertices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(b.Indices)*4, gl.Ptr(b.Indices), gl.STATIC_DRAW)

	// Packed word: 1 uint, offset 0
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribIPointer(0, 1, gl.UNSIGNED_INT, meshing.VertexSize, gl.PtrOffset(0))
	// UV: 2 floats, offset 4
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, meshing.VertexSize, gl.PtrOffset(4))

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return m
}

func (glBackend) release(m *gpuMesh) {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
}
