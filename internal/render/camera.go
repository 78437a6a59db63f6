package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	maxPitch    = 89.0
	defaultFOV  = 70.0
	mouseFactor = 0.1
)

// Camera is a free-flying first person camera. Yaw and Pitch are in degrees;
// yaw 0 looks down -Z.
type Camera struct {
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int, pos mgl32.Vec3) *Camera {
	c := &Camera{
		Position:  pos,
		FOV:       defaultFOV,
		NearPlane: 0.1,
		FarPlane:  1000.0,
	}
	c.Resize(width, height)
	return c
}

// Resize updates the aspect ratio. A zero height is ignored.
func (c *Camera) Resize(width, height int) {
	if height > 0 {
		c.AspectRatio = float32(width) / float32(height)
	}
}

// Front returns the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Sin(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(-math.Cos(yaw) * math.Cos(pitch)),
	}.Normalize()
}

// Right returns the horizontal unit vector to the right of Front.
func (c *Camera) Right() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	return mgl32.Vec3{float32(math.Cos(yaw)), 0, float32(math.Sin(yaw))}
}

// Look applies a mouse delta in pixels. Pitch is clamped short of vertical.
func (c *Camera) Look(dx, dy float64) {
	c.Yaw = float32(math.Mod(float64(c.Yaw)+dx*mouseFactor, 360))
	c.Pitch = mgl32.Clamp(c.Pitch-float32(dy*mouseFactor), -maxPitch, maxPitch)
}

// Move translates the camera. forward and right follow the view direction,
// up is world +Y.
func (c *Camera) Move(forward, right, up, distance float32) {
	d := c.Front().Mul(forward).Add(c.Right().Mul(right)).Add(mgl32.Vec3{0, up, 0})
	if d.Len() == 0 {
		return
	}
	c.Position = c.Position.Add(d.Normalize().Mul(distance))
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}
