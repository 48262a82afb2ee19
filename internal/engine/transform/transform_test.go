package transform

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestNewIsIdentity(t *testing.T) {
	tr := New()

	assert.Equal(t, mgl32.Vec3{}, tr.Position())
	assert.Equal(t, mgl32.Vec3{}, tr.Rotation())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, tr.Scale())
	assert.Equal(t, mgl32.Ident4(), tr.WorldMatrix())
	assert.Equal(t, mgl32.Ident4(), tr.WorldInverseTransposeMatrix())
	assert.Zero(t, tr.Recomputations(), "a fresh transform is already clean")
}

func TestWorldMatrixOrder(t *testing.T) {
	tr := New()
	tr.SetScale(mgl32.Vec3{2, 2, 2})
	tr.SetRotation(mgl32.Vec3{0, float32(gomath.Pi / 2), 0})
	tr.SetPosition(mgl32.Vec3{0, 0, 10})

	p := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, 1}, tr.WorldMatrix())

	// Scale to (0,0,2), yaw onto +X, then translate.
	assert.InDelta(t, 2, p.X(), 1e-5)
	assert.InDelta(t, 0, p.Y(), 1e-5)
	assert.InDelta(t, 10, p.Z(), 1e-5)
}

func TestSettersDoNotRecompute(t *testing.T) {
	tr := New()
	tr.SetPosition(mgl32.Vec3{1, 2, 3})
	tr.SetRotation(mgl32.Vec3{0.1, 0.2, 0.3})
	tr.SetScale(mgl32.Vec3{1, 2, 1})
	tr.MoveAbsolute(mgl32.Vec3{1, 0, 0})
	tr.MoveRelative(mgl32.Vec3{0, 0, 1})
	tr.Rotate(0, 0.1, 0)
	tr.ScaleBy(mgl32.Vec3{0.5, 0, 0})

	assert.Zero(t, tr.Recomputations())
}

func TestGettersRecomputeOnce(t *testing.T) {
	tr := New()
	tr.SetPosition(mgl32.Vec3{4, 5, 6})

	w1 := tr.WorldMatrix()
	it := tr.WorldInverseTransposeMatrix()
	w2 := tr.WorldMatrix()

	assert.Equal(t, 1, tr.Recomputations())
	assert.Equal(t, w1, w2)
	assert.True(t, it.ApproxEqualThreshold(w1.Inv().Transpose(), 1e-5))

	tr.Rotate(0.1, 0, 0)
	_ = tr.WorldInverseTransposeMatrix()
	_ = tr.WorldMatrix()
	assert.Equal(t, 2, tr.Recomputations())
}

func TestCachedMatchesFreshComputation(t *testing.T) {
	tr := New()
	tr.SetPosition(mgl32.Vec3{-1, 3, 7})
	tr.SetRotation(mgl32.Vec3{0.4, -1.2, 0.25})
	tr.SetScale(mgl32.Vec3{1, 3, 0.5})

	world, it := compute(tr.Position(), tr.Rotation(), tr.Scale())
	assert.Equal(t, world, tr.WorldMatrix())
	assert.Equal(t, it, tr.WorldInverseTransposeMatrix())
}

func TestMoveRelativeFollowsYaw(t *testing.T) {
	tr := New()
	tr.SetRotation(mgl32.Vec3{0, float32(gomath.Pi / 2), 0})
	tr.MoveRelative(mgl32.Vec3{0, 0, 1})

	p := tr.Position()
	assert.InDelta(t, 1, p.X(), 1e-5)
	assert.InDelta(t, 0, p.Z(), 1e-5)
}

func TestMoveAbsoluteIgnoresRotation(t *testing.T) {
	tr := New()
	tr.SetRotation(mgl32.Vec3{0.3, 1.1, 0.2})
	tr.MoveAbsolute(mgl32.Vec3{0, 1, 0})

	assert.Equal(t, mgl32.Vec3{0, 1, 0}, tr.Position())
}

func TestRotateAndScaleByAccumulate(t *testing.T) {
	tr := New()
	tr.Rotate(0.1, 0.2, 0.3)
	tr.Rotate(0.1, 0.2, 0.3)
	tr.ScaleBy(mgl32.Vec3{1, 0, -0.5})

	assert.InDelta(t, 0.4, tr.Rotation().Y(), 1e-6)
	assert.Equal(t, mgl32.Vec3{2, 1, 0.5}, tr.Scale())
}

func TestAxesAreOrthonormal(t *testing.T) {
	tr := New()
	tr.SetRotation(mgl32.Vec3{0.7, -2.1, 0.4})

	f, r, u := tr.Forward(), tr.Right(), tr.Up()
	for name, v := range map[string]mgl32.Vec3{"forward": f, "right": r, "up": u} {
		assert.InDelta(t, 1, v.Len(), 1e-5, "%s should be unit length", name)
	}
	assert.InDelta(t, 0, f.Dot(r), 1e-5)
	assert.InDelta(t, 0, f.Dot(u), 1e-5)
	assert.InDelta(t, 0, r.Dot(u), 1e-5)

	// Left-handed basis: right x up = forward.
	assert.True(t, r.Cross(u).ApproxEqualThreshold(f, 1e-5))
}
