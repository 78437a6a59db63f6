package main

import (
	"log"

	"mini-voxel/internal/physics"
	"mini-voxel/internal/registry"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

func setupInputHandlers(window *glfw.Window, v *viewer) {
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if v.firstMouse {
			v.lastX, v.lastY = xpos, ypos
			v.firstMouse = false
			return
		}
		v.cam.Look(xpos-v.lastX, ypos-v.lastY)
		v.lastX, v.lastY = xpos, ypos
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch button {
		case glfw.MouseButtonLeft:
			v.breakBlock()
		case glfw.MouseButtonRight:
			v.placeBlock()
		}
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		settings := v.mgr.Settings()
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyEqual, glfw.KeyKPAdd:
			settings.SetRenderDistance(settings.RenderDistance() + 1)
			log.Printf("render distance %d", settings.RenderDistance())
		case glfw.KeyMinus, glfw.KeyKPSubtract:
			settings.SetRenderDistance(settings.RenderDistance() - 1)
			log.Printf("render distance %d", settings.RenderDistance())
		case glfw.KeyG:
			v.followTerrain = !v.followTerrain
			log.Printf("follow terrain: %v", v.followTerrain)
		default:
			if key >= glfw.Key1 && key <= glfw.Key9 {
				t := registry.BlockType(key-glfw.Key1) + 1
				if t < registry.NumBlockTypes {
					v.selected = t
					log.Printf("selected %s", v.mgr.Registry().Get(t).Name)
				}
			}
		}
	})

	window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
		v.cam.Resize(fbWidth, fbHeight)
	})
}

func (v *viewer) pick() physics.RaycastResult {
	return v.mgr.Pick(v.cam.Position, v.cam.Front(), physics.MaxReachDistance)
}

func (v *viewer) breakBlock() {
	res := v.pick()
	if !res.Hit || res.Distance < physics.MinReachDistance {
		return
	}
	v.mgr.SetBlockAt(res.Block[0], res.Block[1], res.Block[2], registry.BlockTypeAir)
}

func (v *viewer) placeBlock() {
	res := v.pick()
	if !res.Hit {
		return
	}
	if physics.BoxContainsBlock(res.Previous, v.feet(), boxHalfSize, boxHeight) {
		return
	}
	v.mgr.SetBlockAt(res.Previous[0], res.Previous[1], res.Previous[2], v.selected)
}

func (v *viewer) feet() mgl32.Vec3 {
	return v.cam.Position.Sub(mgl32.Vec3{0, eyeHeight, 0})
}
