package scene

import (
	"github.com/chewxy/math32"

	vibegi "github.com/Liam-Griffiths/liams-vibe-gi"
)

// Camera is a simple look-at perspective camera.
type Camera struct {
	Position vibegi.Vec3
	Target   vibegi.Vec3
	Up       vibegi.Vec3

	// FOV is the vertical field of view in radians.
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32
}

// NewCamera creates a camera with sensible defaults for the demo scene.
func NewCamera(aspect float32) *Camera {
	return &Camera{
		Position: vibegi.V3(0, 3, 8),
		Target:   vibegi.V3(0, 1, 0),
		Up:       vibegi.V3(0, 1, 0),
		FOV:      math32.Pi / 4,
		Aspect:   aspect,
		Near:     0.1,
		Far:      100,
	}
}

// View returns the camera's view matrix.
func (c *Camera) View() vibegi.Mat4 {
	return vibegi.LookAt(c.Position, c.Target, c.Up)
}

// Projection returns the camera's projection matrix.
func (c *Camera) Projection() vibegi.Mat4 {
	return vibegi.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// Orbit moves the camera to a point on a horizontal circle around the
// target, keeping the current height.
func (c *Camera) Orbit(angle, radius float32) {
	s, co := math32.Sincos(angle)
	c.Position = vibegi.V3(
		c.Target.X+radius*s,
		c.Position.Y,
		c.Target.Z+radius*co,
	)
}
