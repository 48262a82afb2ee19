package lighting

import (
	"encoding/binary"
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSize(t *testing.T) {
	assert.Equal(t, 64, RecordSize)
}

func TestRecordsFlattenEachType(t *testing.T) {
	var l List
	require.True(t, l.Add(Directional{Direction: mgl32.Vec3{0, -2, 0}, Color: mgl32.Vec3{1, 1, 1}, Intensity: 1}))
	require.True(t, l.Add(Point{Position: mgl32.Vec3{1, 2, 3}, Color: mgl32.Vec3{1, 0, 0}, Intensity: 2, Range: 10}))
	require.True(t, l.Add(Spot{
		Position: mgl32.Vec3{0, 5, 0}, Direction: mgl32.Vec3{0, -1, 0},
		Color: mgl32.Vec3{0, 0, 1}, Intensity: 3, Range: 20, InnerAngle: 0.2, OuterAngle: 0.4,
	}))

	recs := l.Records()
	require.Len(t, recs, 3)

	assert.Equal(t, TypeDirectional, recs[0].Type)
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, recs[0].Direction, "direction is normalized")
	assert.Zero(t, recs[0].Range)
	assert.Equal(t, mgl32.Vec3{}, recs[0].Position)

	assert.Equal(t, TypePoint, recs[1].Type)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, recs[1].Position)
	assert.Equal(t, float32(10), recs[1].Range)
	assert.Equal(t, mgl32.Vec3{}, recs[1].Direction)

	assert.Equal(t, TypeSpot, recs[2].Type)
	assert.Equal(t, float32(0.2), recs[2].SpotInner)
	assert.Equal(t, float32(0.4), recs[2].SpotOuter)
	assert.Equal(t, float32(3), recs[2].Intensity)
}

func TestBytesLayout(t *testing.T) {
	var l List
	l.Add(Point{Position: mgl32.Vec3{1, 2, 3}, Color: mgl32.Vec3{0.5, 0.25, 1}, Intensity: 2, Range: 7})

	b := l.Bytes()
	require.Len(t, b, RecordSize)

	f := func(off int) float32 { return gomath.Float32frombits(binary.LittleEndian.Uint32(b[off:])) }
	assert.Equal(t, uint32(TypePoint), binary.LittleEndian.Uint32(b[0:]))
	assert.Equal(t, float32(7), f(16), "range starts the second vec4")
	assert.Equal(t, float32(1), f(20))
	assert.Equal(t, float32(2), f(32), "intensity starts the third vec4")
	assert.Equal(t, float32(0.5), f(36))
}

func TestListCapacity(t *testing.T) {
	var l List
	for i := 0; i < MaxLights; i++ {
		require.True(t, l.Add(Point{Range: float32(i)}))
	}
	assert.False(t, l.Add(Point{}), "list is full")
	assert.Equal(t, MaxLights, l.Len())
}

func TestShadowCasterIsFirstDirectional(t *testing.T) {
	var l List
	_, ok := l.ShadowCaster()
	assert.False(t, ok)

	l.Add(Point{})
	l.Add(Directional{Direction: mgl32.Vec3{1, 0, 0}})
	l.Add(Directional{Direction: mgl32.Vec3{0, 1, 0}})

	d, ok := l.ShadowCaster()
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, d.Direction)
}

func TestSetColorKeepsType(t *testing.T) {
	var l List
	l.Add(Spot{Range: 4})
	l.SetColor(0, mgl32.Vec3{0.1, 0.2, 0.3})

	s, ok := l.At(0).(Spot)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{0.1, 0.2, 0.3}, s.Color)
	assert.Equal(t, float32(4), s.Range)
	assert.Equal(t, mgl32.Vec3{0.1, 0.2, 0.3}, Color(l.At(0)))
}

func TestRemoveKeepsOrder(t *testing.T) {
	var l List
	l.Add(Point{Range: 1})
	l.Add(Point{Range: 2})
	l.Add(Point{Range: 3})
	l.Remove(1)

	require.Equal(t, 2, l.Len())
	assert.Equal(t, float32(3), l.At(1).(Point).Range)
}

func TestSunDirection(t *testing.T) {
	overhead := SunDirection(0, 90)
	assert.InDelta(t, -1, overhead.Y(), 1e-6)

	horizon := SunDirection(90, 0)
	assert.InDelta(t, -1, horizon.X(), 1e-6)
	assert.InDelta(t, 0, horizon.Y(), 1e-6)
}
