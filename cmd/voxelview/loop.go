package main

import (
	"context"
	"log"
	"math"
	"time"

	"mini-voxel/internal/physics"
	"mini-voxel/internal/profiling"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	flySpeed    = 12.0
	sprintBoost = 4.0
)

func (v *viewer) run() {
	ctx := context.Background()
	frames := 0
	lastFPSCheck := time.Now()
	lastTime := time.Now()
	slowTick := 2 * v.cfg.Streaming.TickBudget
	if slowTick == 0 {
		slowTick = 30 * time.Millisecond
	}

	for !v.window.ShouldClose() {
		profiling.ResetFrame()
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		func() { defer profiling.Track("viewer.move")(); v.move(dt) }()

		tickStart := time.Now()
		frame := v.mgr.Tick(ctx, v.cam.Position, v.cam.Front())
		if d := time.Since(tickStart); d > slowTick {
			log.Printf("slow tick %.1fms: %s", float64(d.Microseconds())/1000, profiling.TopN(5))
		}

		v.renderer.Apply(frame)
		v.renderer.Draw(v.cam)
		frames++

		if time.Since(lastFPSCheck) >= time.Second {
			solid, liquid := v.renderer.Chunks()
			log.Printf("fps %d, chunks %d loaded, %d meshed, %d pending, %d/%d uploaded, meshing %.1fms",
				frames, v.mgr.Loaded(), v.mgr.Meshed(), v.mgr.Pending(), solid, liquid,
				float64(profiling.SumWithPrefix("meshing.").Microseconds())/1000)
			frames = 0
			lastFPSCheck = time.Now()
		}

		func() { defer profiling.Track("glfw.SwapBuffers")(); v.window.SwapBuffers() }()
		func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()
	}
}

// move applies keyboard movement. In follow-terrain mode the camera keeps
// its eye height above the generated surface; otherwise it flies freely but
// does not pass through loaded solid blocks.
func (v *viewer) move(dt float32) {
	key := func(k glfw.Key) float32 {
		if v.window.GetKey(k) == glfw.Press {
			return 1
		}
		return 0
	}
	forward := key(glfw.KeyW) - key(glfw.KeyS)
	right := key(glfw.KeyD) - key(glfw.KeyA)
	up := key(glfw.KeySpace) - key(glfw.KeyLeftShift)
	speed := float32(flySpeed)
	if v.window.GetKey(glfw.KeyLeftControl) == glfw.Press {
		speed *= sprintBoost
	}

	prev := v.cam.Position
	if v.followTerrain {
		up = 0
	}
	v.cam.Move(forward, right, up, speed*dt)

	if v.followTerrain {
		p := v.cam.Position
		h := v.mgr.HeightAt(math.Floor(float64(p.X())), math.Floor(float64(p.Z())))
		ground := float32(math.Floor(h)) + 1
		v.cam.Position = mgl32.Vec3{p.X(), ground + eyeHeight, p.Z()}
		return
	}
	if physics.Collides(v.mgr.Solids(), v.feet(), boxHalfSize, boxHeight) {
		v.cam.Position = prev
	}
}
