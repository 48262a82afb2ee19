package shadow

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/internal/engine/gpu/gputest"
	"github.com/Faultbox/skylight/pkg/math"
)

func TestNewMap(t *testing.T) {
	b := gputest.New(8, 8)

	m, err := NewMap(b, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultResolution, m.Resolution())
	assert.Equal(t, gpu.Viewport{Width: DefaultResolution, Height: DefaultResolution}, m.Viewport())

	tex, kind, ok := b.ViewTexture(m.ShaderView())
	require.True(t, ok)
	assert.Equal(t, gpu.ViewShaderResource, kind)
	desc, _ := b.TextureDesc(tex)
	assert.Equal(t, gpu.FormatDepth32F, desc.Format)

	assert.Equal(t, 4, b.Live())
	require.NoError(t, m.Release(b))
	assert.Zero(t, b.Live())
}

func TestNewMapRollsBackOnFailure(t *testing.T) {
	for n := 0; n < 4; n++ {
		b := gputest.New(8, 8)
		b.FailAfter(n)
		_, err := NewMap(b, 256)
		assert.ErrorIs(t, err, gputest.ErrInjected, "failure at step %d", n)
		b.FailAfter(-1)
		assert.Zero(t, b.Live(), "leak after failure at step %d", n)
	}
}

func TestBegin(t *testing.T) {
	b := gputest.New(8, 8)
	m, err := NewMap(b, 512)
	require.NoError(t, err)

	m.Begin(b)

	assert.Equal(t, []gputest.Op{
		gputest.OpClearDepth,
		gputest.OpSetRenderTargets,
		gputest.OpSetViewport,
		gputest.OpSetRasterState,
	}, b.Ops())
	targets := b.Commands()[1]
	assert.Zero(t, targets.View, "no color output")
	assert.Equal(t, m.DepthView(), targets.Depth)
	assert.Equal(t, 512, b.Commands()[2].Viewport.Width)
}

func project(m Matrices, p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, m.Projection.Mul4(m.View))
}

func TestFixedMatricesContainOrigin(t *testing.T) {
	m := FixedMatrices(mgl32.Vec3{1, -1, 0.5}, 20, 20)

	p := project(m, mgl32.Vec3{})
	assert.InDelta(t, 0, p.X(), 1e-5)
	assert.InDelta(t, 0, p.Y(), 1e-5)
	assert.Greater(t, p.Z(), float32(0))
	assert.Less(t, p.Z(), float32(1))
}

func TestFixedMatricesVerticalLight(t *testing.T) {
	m := FixedMatrices(mgl32.Vec3{0, -1, 0}, 10, 10)
	for _, v := range m.View {
		assert.False(t, v != v, "NaN in view matrix")
	}
	p := project(m, mgl32.Vec3{0, 0, 0})
	assert.InDelta(t, 0.5, p.Z(), 0.01)
}

func TestFitMatricesEnclosesBounds(t *testing.T) {
	bounds := math.AABB{Min: mgl32.Vec3{-3, 0, -2}, Max: mgl32.Vec3{5, 4, 6}}
	m := FitMatrices(mgl32.Vec3{0.3, -1, 0.2}, bounds)

	for i := 0; i < 8; i++ {
		c := bounds.Min
		if i&1 != 0 {
			c[0] = bounds.Max.X()
		}
		if i&2 != 0 {
			c[1] = bounds.Max.Y()
		}
		if i&4 != 0 {
			c[2] = bounds.Max.Z()
		}
		p := project(m, c)
		for axis := 0; axis < 2; axis++ {
			assert.LessOrEqual(t, p[axis], float32(1), "corner %d axis %d", i, axis)
			assert.GreaterOrEqual(t, p[axis], float32(-1), "corner %d axis %d", i, axis)
		}
		assert.GreaterOrEqual(t, p.Z(), float32(0), "corner %d depth", i)
		assert.LessOrEqual(t, p.Z(), float32(1), "corner %d depth", i)
	}
}
