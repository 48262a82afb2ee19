// Package camera provides the free-look first-person camera.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/skylight/internal/engine/transform"
	"github.com/Faultbox/skylight/pkg/math"
)

// Projection planes and the pitch margin kept away from straight up/down.
const (
	NearPlane    = 0.01
	FarPlane     = 100.0
	PitchEpsilon = 1e-3
)

// Input is one frame of camera controls. Movement axes are in [-1, 1],
// look deltas are raw pointer motion.
type Input struct {
	Forward float32 // +1 forward, -1 back
	Right   float32 // +1 right, -1 left
	Up      float32 // +1 up, -1 down (world axis)
	LookX   float32
	LookY   float32
	Fast    bool
	Slow    bool
}

// Camera is a transform plus cached view and projection matrices.
type Camera struct {
	transform *transform.Transform

	fov       float32 // vertical, radians
	aspect    float32
	moveSpeed float32 // units per second
	lookSpeed float32 // radians per pointer unit per second

	fastMultiplier float32
	slowMultiplier float32

	view       mgl32.Mat4
	projection mgl32.Mat4
}

// New creates a camera at pos looking down +Z.
func New(pos mgl32.Vec3, moveSpeed, lookSpeed, fov, aspect float32) *Camera {
	c := &Camera{
		transform:      transform.New(),
		fov:            fov,
		aspect:         aspect,
		moveSpeed:      moveSpeed,
		lookSpeed:      lookSpeed,
		fastMultiplier: 5,
		slowMultiplier: 0.1,
	}
	c.transform.SetPosition(pos)
	c.UpdateViewMatrix()
	c.UpdateProjectionMatrix(aspect)
	return c
}

// Transform returns the camera's transform.
func (c *Camera) Transform() *transform.Transform { return c.transform }

// Position returns the camera's world position.
func (c *Camera) Position() mgl32.Vec3 { return c.transform.Position() }

// View returns the cached view matrix.
func (c *Camera) View() mgl32.Mat4 { return c.view }

// Projection returns the cached projection matrix.
func (c *Camera) Projection() mgl32.Mat4 { return c.projection }

func (c *Camera) FOV() float32           { return c.fov }
func (c *Camera) Aspect() float32        { return c.aspect }
func (c *Camera) MoveSpeed() float32     { return c.moveSpeed }
func (c *Camera) LookSpeed() float32     { return c.lookSpeed }
func (c *Camera) SetMoveSpeed(s float32) { c.moveSpeed = s }
func (c *Camera) SetLookSpeed(s float32) { c.lookSpeed = s }

// SetFOV changes the vertical field of view and rebuilds the projection.
func (c *Camera) SetFOV(fov float32) {
	c.fov = fov
	c.UpdateProjectionMatrix(c.aspect)
}

// SetSpeedModifiers sets the move speed multipliers for Input.Fast and
// Input.Slow.
func (c *Camera) SetSpeedModifiers(fast, slow float32) {
	c.fastMultiplier = fast
	c.slowMultiplier = slow
}

// Update applies one frame of input and rebuilds the view matrix.
func (c *Camera) Update(dt float32, in Input) {
	speed := c.moveSpeed * dt
	switch {
	case in.Fast:
		speed *= c.fastMultiplier
	case in.Slow:
		speed *= c.slowMultiplier
	}

	if in.Forward != 0 || in.Right != 0 {
		c.transform.MoveRelative(mgl32.Vec3{in.Right * speed, 0, in.Forward * speed})
	}
	if in.Up != 0 {
		c.transform.MoveAbsolute(mgl32.Vec3{0, in.Up * speed, 0})
	}
	if in.LookX != 0 || in.LookY != 0 {
		look := c.lookSpeed * dt
		c.transform.Rotate(in.LookY*look, in.LookX*look, 0)
	}

	c.clampPitch()
	c.UpdateViewMatrix()
}

func (c *Camera) clampPitch() {
	limit := math32.Pi/2 - PitchEpsilon
	rot := c.transform.Rotation()
	switch {
	case rot.X() > limit:
		rot[0] = limit
	case rot.X() < -limit:
		rot[0] = -limit
	default:
		return
	}
	c.transform.SetRotation(rot)
}

// UpdateViewMatrix rebuilds the view from the transform's position and
// forward axis.
func (c *Camera) UpdateViewMatrix() {
	c.view = math.LookToLH(c.transform.Position(), c.transform.Forward(), math.WorldUp)
}

// UpdateProjectionMatrix rebuilds the projection for a new aspect ratio.
// Callers must not pass a zero or non-finite aspect.
func (c *Camera) UpdateProjectionMatrix(aspect float32) {
	c.aspect = aspect
	c.projection = math.PerspectiveFovLH(c.fov, aspect, NearPlane, FarPlane)
}
