// Package transform holds an object's position, rotation and scale together
// with its cached world matrices.
package transform

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/skylight/pkg/math"
)

// state tracks whether the cached matrices match the components.
type state uint8

const (
	clean state = iota
	dirty
)

// Transform is a position, a pitch/yaw/roll rotation in radians and a scale.
// The world and world-inverse-transpose matrices are cached and rebuilt
// lazily, together, the first time either is read after a change.
type Transform struct {
	position mgl32.Vec3
	rotation mgl32.Vec3 // pitch (X), yaw (Y), roll (Z)
	scale    mgl32.Vec3

	world                 mgl32.Mat4
	worldInverseTranspose mgl32.Mat4
	state                 state

	recomputations int
}

// New returns a transform at the origin with no rotation and unit scale.
func New() *Transform {
	return &Transform{
		scale:                 mgl32.Vec3{1, 1, 1},
		world:                 mgl32.Ident4(),
		worldInverseTranspose: mgl32.Ident4(),
		state:                 clean,
	}
}

// Position returns the current position.
func (t *Transform) Position() mgl32.Vec3 { return t.position }

// Rotation returns pitch, yaw and roll in radians.
func (t *Transform) Rotation() mgl32.Vec3 { return t.rotation }

// Scale returns the per-axis scale.
func (t *Transform) Scale() mgl32.Vec3 { return t.scale }

// SetPosition replaces the position.
func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.position = p
	t.state = dirty
}

// SetRotation replaces pitch, yaw and roll.
func (t *Transform) SetRotation(pitchYawRoll mgl32.Vec3) {
	t.rotation = pitchYawRoll
	t.state = dirty
}

// SetScale replaces the scale.
func (t *Transform) SetScale(s mgl32.Vec3) {
	t.scale = s
	t.state = dirty
}

// MoveAbsolute offsets the position along world axes.
func (t *Transform) MoveAbsolute(offset mgl32.Vec3) {
	t.position = t.position.Add(offset)
	t.state = dirty
}

// MoveRelative offsets the position along the transform's own axes.
func (t *Transform) MoveRelative(offset mgl32.Vec3) {
	t.position = t.position.Add(math.RotateVec(offset, t.rotation))
	t.state = dirty
}

// Rotate adds to pitch, yaw and roll. Angles are not wrapped.
func (t *Transform) Rotate(pitch, yaw, roll float32) {
	t.rotation = t.rotation.Add(mgl32.Vec3{pitch, yaw, roll})
	t.state = dirty
}

// ScaleBy adds the deltas to the current scale.
func (t *Transform) ScaleBy(delta mgl32.Vec3) {
	t.scale = t.scale.Add(delta)
	t.state = dirty
}

// Forward returns the local +Z axis in world space.
func (t *Transform) Forward() mgl32.Vec3 { return math.Forward(t.rotation) }

// Right returns the local +X axis in world space.
func (t *Transform) Right() mgl32.Vec3 { return math.Right(t.rotation) }

// Up returns the local +Y axis in world space.
func (t *Transform) Up() mgl32.Vec3 { return math.Up(t.rotation) }

// WorldMatrix returns the scale, rotate, translate composite.
func (t *Transform) WorldMatrix() mgl32.Mat4 {
	t.refresh()
	return t.world
}

// WorldInverseTransposeMatrix returns the matrix used to transform normals.
func (t *Transform) WorldInverseTransposeMatrix() mgl32.Mat4 {
	t.refresh()
	return t.worldInverseTranspose
}

// Recomputations reports how many times the cached matrices were rebuilt.
func (t *Transform) Recomputations() int { return t.recomputations }

func (t *Transform) refresh() {
	if t.state == clean {
		return
	}
	t.world, t.worldInverseTranspose = compute(t.position, t.rotation, t.scale)
	t.state = clean
	t.recomputations++
}

func compute(position, rotation, scale mgl32.Vec3) (world, worldInverseTranspose mgl32.Mat4) {
	world = math.World(position, rotation, scale)
	return world, math.InverseTranspose(world)
}
