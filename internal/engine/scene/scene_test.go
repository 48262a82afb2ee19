package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skylight/internal/engine/arena"
	"github.com/Faultbox/skylight/internal/engine/camera"
	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/internal/engine/gpu/gputest"
	"github.com/Faultbox/skylight/internal/engine/lighting"
	"github.com/Faultbox/skylight/internal/engine/material"
	"github.com/Faultbox/skylight/internal/engine/mesh"
)

func populate(t *testing.T, b *gputest.Backend) *Scene {
	t.Helper()
	s := New()

	vertices, indices := mesh.Cube(1)
	m, err := mesh.New(b, "cube", vertices, indices)
	require.NoError(t, err)
	mh := s.AddMesh(m)

	vs, err := b.CreateShader(gpu.StageVertex, gpu.ShaderSource{Name: "object.vert"})
	require.NoError(t, err)
	ps, err := b.CreateShader(gpu.StagePixel, gpu.ShaderSource{Name: "object.frag"})
	require.NoError(t, err)
	s.Own(vs, ps)
	matH := s.AddMaterial(material.New("plain", vs, ps))

	tex, err := b.CreateTexture(gpu.TextureDesc{Width: 2, Height: 2, Bind: gpu.BindShaderResource}, nil)
	require.NoError(t, err)
	view, err := b.CreateView(tex, gpu.ViewShaderResource)
	require.NoError(t, err)
	s.OwnTexture(tex, view)
	smp, err := b.CreateSampler(gpu.SamplerDesc{})
	require.NoError(t, err)
	s.OwnSampler(smp)

	for _, name := range []string{"left", "right"} {
		_, err := s.AddEntity(name, mh, matH)
		require.NoError(t, err)
	}
	return s
}

func TestSceneLibrary(t *testing.T) {
	b := gputest.New(8, 8)
	s := populate(t, b)

	e, ok := s.Entity("right")
	require.True(t, ok)
	m, err := s.Mesh(e.Mesh())
	require.NoError(t, err)
	assert.Equal(t, "cube", m.Name())
	mat, err := s.Material(e.Material())
	require.NoError(t, err)
	assert.Equal(t, "plain", mat.Name())

	_, ok = s.Entity("missing")
	assert.False(t, ok)

	count := 0
	for range s.Meshes() {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestAddEntityRejectsStaleHandles(t *testing.T) {
	s := New()
	_, err := s.AddEntity("ghost", arena.Handle[mesh.Mesh]{}, arena.Handle[material.Material]{})
	assert.ErrorIs(t, err, arena.ErrStaleHandle)
	assert.Empty(t, s.Entities())
}

func TestFrameUsesActiveCamera(t *testing.T) {
	b := gputest.New(8, 8)
	s := populate(t, b)
	c0 := camera.New(mgl32.Vec3{0, 0, -1}, 1, 1, 1.5, 1)
	c1 := camera.New(mgl32.Vec3{1, 0, -1}, 1, 1, 1.5, 1)
	s.Cameras().Add(c0)
	s.Cameras().Add(c1)
	s.Lights().Add(lighting.Directional{Direction: mgl32.Vec3{0, -1, 0}, Intensity: 1})

	f := s.Frame(2, 0.016)
	assert.Same(t, c0, f.Camera)
	assert.Len(t, f.Entities, 2)
	assert.Equal(t, 1, f.Lights.Len())
	assert.Equal(t, float32(2), f.TotalTime)

	s.Cameras().Next()
	assert.Same(t, c1, s.Frame(0, 0).Camera)
}

func TestCloseReleasesEverything(t *testing.T) {
	b := gputest.New(8, 8)
	s := populate(t, b)
	e, _ := s.Entity("left")
	mh, matH := e.Mesh(), e.Material()

	require.NoError(t, s.Close(b))
	assert.Zero(t, b.Live())
	assert.Empty(t, s.Entities())

	_, err := s.Mesh(mh)
	assert.ErrorIs(t, err, arena.ErrStaleHandle)
	_, err = s.Material(matH)
	assert.ErrorIs(t, err, arena.ErrStaleHandle)

	require.NoError(t, s.Close(b), "closing twice is harmless")
}
