package main

import (
	"image"
	"math"

	"mini-voxel/internal/config"
	"mini-voxel/internal/manager"
	"mini-voxel/internal/registry"
	"mini-voxel/internal/render"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	windowWidth  = 1280
	windowHeight = 720

	eyeHeight   = 1.62
	boxHalfSize = 0.3
	boxHeight   = 1.8
)

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, "mini-voxel", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	// Initialize OpenGL bindings
	if err := gl.Init(); err != nil {
		return nil, err
	}

	glfw.SwapInterval(1)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	return window, nil
}

// viewer holds everything the main loop touches. All fields are used from
// the main thread only.
type viewer struct {
	window   *glfw.Window
	mgr      *manager.Manager
	renderer *render.Renderer
	cam      *render.Camera
	cfg      config.Config

	followTerrain bool
	selected      registry.BlockType
	firstMouse    bool
	lastX, lastY  float64
}

func newViewer(window *glfw.Window, mgr *manager.Manager, cfg config.Config, atlasPath string) (*viewer, error) {
	var atlas *image.RGBA
	if atlasPath != "" {
		var err error
		atlas, err = render.LoadAtlas(atlasPath, cfg.Mesh.TilesPerRow, render.DefaultTileSize)
		if err != nil {
			return nil, err
		}
	} else {
		atlas = render.GenerateAtlas(mgr.Registry(), cfg.Mesh.TilesPerRow, render.DefaultTileSize)
	}
	r, err := render.New(atlas)
	if err != nil {
		return nil, err
	}

	// Spawn a little above the generated surface at the origin.
	ground := float32(math.Floor(mgr.HeightAt(0, 0))) + 1
	w, h := window.GetFramebufferSize()
	gl.Viewport(0, 0, int32(w), int32(h))

	return &viewer{
		window:     window,
		mgr:        mgr,
		renderer:   r,
		cam:        render.NewCamera(w, h, mgl32.Vec3{0.5, ground + eyeHeight, 0.5}),
		cfg:        cfg,
		selected:   registry.BlockTypeStone,
		firstMouse: true,
	}, nil
}

func (v *viewer) dispose() {
	v.renderer.Dispose()
}
