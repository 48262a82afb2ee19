package renderer

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skylight/internal/engine/arena"
	"github.com/Faultbox/skylight/internal/engine/camera"
	"github.com/Faultbox/skylight/internal/engine/entity"
	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/internal/engine/gpu/gputest"
	"github.com/Faultbox/skylight/internal/engine/lighting"
	"github.com/Faultbox/skylight/internal/engine/material"
	"github.com/Faultbox/skylight/internal/engine/mesh"
	"github.com/Faultbox/skylight/internal/engine/postprocess"
	"github.com/Faultbox/skylight/internal/engine/shadow"
	"github.com/Faultbox/skylight/pkg/math"
)

const (
	objectVS = `
uniform mat4 world;
uniform mat4 worldInvTranspose;
uniform mat4 view;
uniform mat4 projection;
uniform mat4 lightView;
uniform mat4 lightProjection;
`
	objectPS = `
layout(std140) uniform lights {
	vec4 data[64];
};
uniform int lightCount;
uniform float time;
uniform vec3 cameraPosition;
uniform int shadowsEnabled;
uniform sampler2DShadow ShadowMap;
uniform vec4 colorTint;
`
	shadowVS = `
uniform mat4 world;
uniform mat4 lightView;
uniform mat4 lightProjection;
`
	fullscreenVS = "out vec2 uv;\n"
	blurPS       = "uniform sampler2D InputTexture;\nuniform vec2 pixelUV;\nuniform int blurRadius;\n"
	ditherPS     = "uniform sampler2D InputTexture;\nuniform vec2 pixelUV;\nuniform int pixelSize;\n"
)

type library struct {
	meshes    arena.Arena[mesh.Mesh]
	materials arena.Arena[material.Material]
}

func (l *library) Mesh(h arena.Handle[mesh.Mesh]) (*mesh.Mesh, error) { return l.meshes.Get(h) }
func (l *library) Material(h arena.Handle[material.Material]) (*material.Material, error) {
	return l.materials.Get(h)
}

type fixture struct {
	b      *gputest.Backend
	r      *Renderer
	lib    *library
	cam    *camera.Camera
	lights *lighting.List
	ent    *entity.Entity
	mat    *material.Material
}

func shader(t *testing.T, b *gputest.Backend, stage gpu.Stage, name, code string) gpu.Shader {
	t.Helper()
	s, err := b.CreateShader(stage, gpu.ShaderSource{Name: name, Code: code})
	require.NoError(t, err)
	return s
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	b := gputest.New(800, 600)
	f := &fixture{b: b, lib: &library{}, lights: &lighting.List{}}

	vertices, indices := mesh.Cube(1)
	m, err := mesh.New(b, "cube", vertices, indices)
	require.NoError(t, err)
	f.mat = material.New("plain",
		shader(t, b, gpu.StageVertex, "object.vert", objectVS),
		shader(t, b, gpu.StagePixel, "object.frag", objectPS))
	f.ent = entity.New("box", f.lib.meshes.Insert(m), f.lib.materials.Insert(f.mat))

	smap, err := shadow.NewMap(b, 256)
	require.NoError(t, err)
	smp, err := b.CreateSampler(gpu.SamplerDesc{Address: gpu.AddressClamp})
	require.NoError(t, err)
	chain := postprocess.NewChain(b,
		shader(t, b, gpu.StageVertex, "fullscreen.vert", fullscreenVS), smp,
		shader(t, b, gpu.StagePixel, "blur.frag", blurPS),
		shader(t, b, gpu.StagePixel, "dither.frag", ditherPS))

	f.r, err = New(Config{
		Device:       b,
		Context:      b,
		Presenter:    b,
		ShadowMap:    smap,
		ShadowShader: shader(t, b, gpu.StageVertex, "shadow.vert", shadowVS),
		Post:         chain,
		Options:      opts,
	})
	require.NoError(t, err)

	require.True(t, f.lights.Add(lighting.Directional{
		Direction: mgl32.Vec3{0, -1, 1},
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: 1,
	}))
	f.cam = camera.New(mgl32.Vec3{0, 0, -1}, 1, 1, float32(gomath.Pi/2), 800.0/600.0)
	return f
}

func (f *fixture) frame() Frame {
	return Frame{
		Camera:    f.cam,
		Lights:    f.lights,
		Entities:  []*entity.Entity{f.ent},
		Library:   f.lib,
		TotalTime: 1.5,
	}
}

func TestRenderEndToEnd(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	b := f.b

	b.Reset()
	stats, err := f.r.Render(f.frame())
	require.NoError(t, err)
	assert.False(t, stats.Skipped)
	assert.Equal(t, []Phase{PhaseShadow, PhaseMain, PhasePresent}, stats.Phases)
	assert.Equal(t, 1, stats.EntitiesDrawn)
	assert.Equal(t, 1, stats.ShadowCasters)

	// Shadow pass comes first and writes depth only.
	cmds := b.Commands()
	require.Equal(t, gputest.OpClearDepth, cmds[0].Op)
	assert.Equal(t, f.r.ShadowMap().DepthView(), cmds[0].View)
	assert.Zero(t, cmds[1].View)
	assert.Equal(t, f.r.ShadowMap().DepthView(), cmds[1].Depth)

	shadowBind := b.Index(0, gputest.OpBindShader, "shadow.vert")
	clearPS := b.Index(0, gputest.OpClearPixelShader, "")
	firstDraw := b.Index(0, gputest.OpDrawIndexed, "")
	mainClear := b.Index(0, gputest.OpClearRenderTarget, "")
	require.NotEqual(t, -1, shadowBind)
	assert.Less(t, shadowBind, clearPS)
	assert.Less(t, clearPS, firstDraw)
	assert.Less(t, firstDraw, mainClear)

	// Main pass renders straight into the back buffer.
	color, depth := b.BackBuffer()
	assert.Equal(t, color, cmds[mainClear].View)
	assert.Equal(t, gpu.Color{0.4, 0.6, 0.75, 1}, cmds[mainClear].Color)

	world := b.Filter(gputest.OpSetMatrix, entity.VarWorld)
	require.Len(t, world, 2, "shadow and main pass")
	assert.Equal(t, "object.vert", world[1].Shader)
	assert.True(t, world[1].Matrix.ApproxEqual(mgl32.Ident4()))

	view := b.Filter(gputest.OpSetMatrix, entity.VarView)
	require.Len(t, view, 1)
	wantView := math.LookToLH(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 0, 1}, math.WorldUp)
	assert.True(t, view[0].Matrix.ApproxEqual(wantView))

	proj := b.Filter(gputest.OpSetMatrix, entity.VarProjection)
	require.Len(t, proj, 1)
	wantProj := math.PerspectiveFovLH(float32(gomath.Pi/2), 800.0/600.0, camera.NearPlane, camera.FarPlane)
	assert.True(t, proj[0].Matrix.ApproxEqual(wantProj))

	// Per-frame values reach the material.
	ps := f.mat.PixelShader().(*gputest.Shader)
	v, ok := ps.Value(VarLightCount)
	require.True(t, ok)
	assert.Equal(t, int32(1), v)
	v, ok = ps.Value(VarLights)
	require.True(t, ok)
	assert.Len(t, v, lighting.RecordSize)
	v, ok = ps.Value(shadow.VarShadowMap)
	require.True(t, ok)
	assert.Equal(t, f.r.ShadowMap().ShaderView(), v)
	v, _ = ps.Value(VarShadowsEnabled)
	assert.Equal(t, int32(1), v)
	v, _ = ps.Value(VarTime)
	assert.Equal(t, float32(1.5), v)

	// Present, then unbind and rebind the back buffer.
	n := len(cmds)
	assert.Equal(t, gputest.OpPresent, cmds[n-3].Op)
	assert.True(t, cmds[n-3].VSync)
	assert.Equal(t, gputest.OpUnbindResources, cmds[n-2].Op)
	assert.Equal(t, gputest.OpSetRenderTargets, cmds[n-1].Op)
	assert.Equal(t, color, cmds[n-1].View)
	assert.Equal(t, depth, cmds[n-1].Depth)
}

func TestRenderWithoutShadows(t *testing.T) {
	opts := DefaultOptions()
	opts.Shadows = false
	f := newFixture(t, opts)

	f.b.Reset()
	stats, err := f.r.Render(f.frame())
	require.NoError(t, err)
	assert.False(t, stats.Ran(PhaseShadow))
	assert.Equal(t, -1, f.b.Index(0, gputest.OpBindShader, "shadow.vert"))

	v, _ := f.mat.PixelShader().(*gputest.Shader).Value(VarShadowsEnabled)
	assert.Equal(t, int32(0), v)
}

func TestShadowPassNeedsCasterAndEntities(t *testing.T) {
	f := newFixture(t, DefaultOptions())

	fr := f.frame()
	fr.Entities = nil
	stats, err := f.r.Render(fr)
	require.NoError(t, err)
	assert.False(t, stats.Ran(PhaseShadow))

	f.lights.Clear()
	f.lights.Add(lighting.Point{Position: mgl32.Vec3{0, 2, 0}, Color: mgl32.Vec3{1, 1, 1}, Intensity: 1, Range: 5})
	stats, err = f.r.Render(f.frame())
	require.NoError(t, err)
	assert.False(t, stats.Ran(PhaseShadow))
	assert.True(t, stats.Ran(PhaseMain))
}

func TestRenderWithPostProcess(t *testing.T) {
	opts := DefaultOptions()
	opts.PostProcess = true
	f := newFixture(t, opts)
	color, _ := f.b.BackBuffer()

	f.b.Reset()
	stats, err := f.r.Render(f.frame())
	require.NoError(t, err)
	assert.Equal(t, []Phase{PhaseShadow, PhaseMain, PhasePost, PhasePresent}, stats.Phases)

	mainClear := f.b.Filter(gputest.OpClearRenderTarget, "")
	require.Len(t, mainClear, 1)
	assert.Equal(t, f.r.Post().Input(), mainClear[0].View)
	assert.NotEqual(t, color, mainClear[0].View)

	draws := f.b.Filter(gputest.OpDraw, "")
	require.Len(t, draws, 2)
	for _, d := range draws {
		assert.Equal(t, 3, d.Count)
	}
}

func TestRenderSkipsWithoutBackBuffer(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	require.NoError(t, f.r.Resize(0, 0))
	assert.False(t, f.r.Drawable())

	f.b.Reset()
	stats, err := f.r.Render(f.frame())
	require.NoError(t, err)
	assert.True(t, stats.Skipped)
	assert.Empty(t, stats.Phases)
	assert.Empty(t, f.b.Commands())

	fr := f.frame()
	fr.Camera = nil
	require.NoError(t, f.r.Resize(800, 600))
	stats, err = f.r.Render(fr)
	require.NoError(t, err)
	assert.True(t, stats.Skipped)
}

func TestResizeRoundTripMatchesFreshState(t *testing.T) {
	fresh := newFixture(t, DefaultOptions())
	f := newFixture(t, DefaultOptions())

	require.NoError(t, f.r.Resize(800, 600))
	require.NoError(t, f.r.Resize(0, 0))
	w, h := f.r.Post().Size()
	assert.Zero(t, w+h)
	require.NoError(t, f.r.Resize(800, 600))

	assert.Equal(t, fresh.b.Live(), f.b.Live())
	w, h = f.b.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.True(t, f.r.Drawable())
	assert.True(t, f.r.Post().Ready())

	f.b.Reset()
	fresh.b.Reset()
	s1, err := f.r.Render(f.frame())
	require.NoError(t, err)
	s2, err := fresh.r.Render(fresh.frame())
	require.NoError(t, err)
	assert.Equal(t, s2, s1)
	assert.Equal(t, fresh.b.Ops(), f.b.Ops())
}

func TestResizeFailureKeepsPreviousState(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	live := f.b.Live()
	input := f.r.Post().Input()
	color, depth := f.b.BackBuffer()

	// Both post targets succeed, the new back buffer does not.
	f.b.FailAfter(6)
	err := f.r.Resize(1024, 768)
	f.b.FailAfter(-1)
	require.ErrorIs(t, err, gputest.ErrInjected)

	assert.Equal(t, live, f.b.Live())
	assert.Equal(t, input, f.r.Post().Input())
	c, d := f.b.BackBuffer()
	assert.Equal(t, color, c)
	assert.Equal(t, depth, d)
	w, h := f.r.Post().Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	// A failing post target leaves the back buffer alone.
	f.b.FailAfter(0)
	err = f.r.Resize(1024, 768)
	f.b.FailAfter(-1)
	require.ErrorIs(t, err, gputest.ErrInjected)
	assert.Equal(t, live, f.b.Live())
	w, h = f.b.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestRenderContinuesPastStaleMaterial(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	broken := entity.New("ghost", f.ent.Mesh(), arena.Handle[material.Material]{})

	fr := f.frame()
	fr.Entities = append(fr.Entities, broken)
	stats, err := f.r.Render(fr)
	require.ErrorIs(t, err, arena.ErrStaleHandle)
	assert.Contains(t, err.Error(), "ghost")
	assert.Equal(t, 1, stats.EntitiesDrawn)
	assert.True(t, stats.Ran(PhasePresent))
}

func TestFitBoundsMatrices(t *testing.T) {
	opts := DefaultOptions()
	opts.ShadowFitBounds = true
	f := newFixture(t, opts)
	f.ent.Transform().SetPosition(mgl32.Vec3{3, 0, 0})

	_, err := f.r.Render(f.frame())
	require.NoError(t, err)

	sun, _ := f.lights.ShadowCaster()
	m, _ := f.lib.Mesh(f.ent.Mesh())
	want := shadow.FitMatrices(sun.Direction, m.Bounds().Transform(f.ent.Transform().WorldMatrix()))
	got := f.b.Filter(gputest.OpSetMatrix, shadow.VarLightProjection)
	require.NotEmpty(t, got)
	assert.True(t, got[0].Matrix.ApproxEqual(want.Projection))
}

func TestNewRejectsHalfShadowConfig(t *testing.T) {
	b := gputest.New(8, 8)
	smap, err := shadow.NewMap(b, 16)
	require.NoError(t, err)
	_, err = New(Config{Device: b, Context: b, Presenter: b, ShadowMap: smap})
	assert.Error(t, err)
}

func TestRelease(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	live := f.b.Live()
	require.NoError(t, f.r.Release())
	// Post targets (2 x 3) and the shadow map (texture, 2 views, sampler).
	assert.Equal(t, live-10, f.b.Live())
}
