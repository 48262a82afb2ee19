package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestAABBExtendAndUnion(t *testing.T) {
	b := EmptyAABB()
	assert.True(t, b.IsEmpty())

	b = b.Extend(mgl32.Vec3{1, 2, 3}).Extend(mgl32.Vec3{-1, 0, 5})
	assert.False(t, b.IsEmpty())
	assert.Equal(t, mgl32.Vec3{-1, 0, 3}, b.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 5}, b.Max)

	assert.Equal(t, b, b.Union(EmptyAABB()))
	u := b.Union(AABB{Min: mgl32.Vec3{0, -4, 0}, Max: mgl32.Vec3{0, 0, 0}})
	assert.Equal(t, mgl32.Vec3{-1, -4, 0}, u.Min)
}

func TestAABBCenterRadius(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	assert.Equal(t, mgl32.Vec3{}, b.Center())
	assert.InDelta(t, 1.7320508, b.Radius(), 1e-6)
}

func TestAABBTransform(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	moved := b.Transform(World(mgl32.Vec3{10, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{2, 1, 1}))

	assert.True(t, moved.Min.ApproxEqual(mgl32.Vec3{8, -1, -1}), "%v", moved.Min)
	assert.True(t, moved.Max.ApproxEqual(mgl32.Vec3{12, 1, 1}), "%v", moved.Max)
}
