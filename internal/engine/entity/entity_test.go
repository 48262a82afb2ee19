package entity

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skylight/internal/engine/arena"
	"github.com/Faultbox/skylight/internal/engine/camera"
	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/internal/engine/gpu/gputest"
	"github.com/Faultbox/skylight/internal/engine/material"
	"github.com/Faultbox/skylight/internal/engine/mesh"
)

type library struct {
	meshes    arena.Arena[mesh.Mesh]
	materials arena.Arena[material.Material]
}

func (l *library) Mesh(h arena.Handle[mesh.Mesh]) (*mesh.Mesh, error) { return l.meshes.Get(h) }
func (l *library) Material(h arena.Handle[material.Material]) (*material.Material, error) {
	return l.materials.Get(h)
}

const vertexSrc = `
uniform mat4 world;
uniform mat4 worldInvTranspose;
uniform mat4 view;
uniform mat4 projection;
`

func setup(t *testing.T) (*gputest.Backend, *library, *Entity) {
	t.Helper()
	b := gputest.New(8, 8)
	lib := &library{}

	vertices, indices := mesh.Cube(1)
	m, err := mesh.New(b, "cube", vertices, indices)
	require.NoError(t, err)

	vs, err := b.CreateShader(gpu.StageVertex, gpu.ShaderSource{Name: "entity.vert", Code: vertexSrc})
	require.NoError(t, err)
	ps, err := b.CreateShader(gpu.StagePixel, gpu.ShaderSource{Name: "entity.frag", Code: "uniform vec4 colorTint;"})
	require.NoError(t, err)

	e := New("crate", lib.meshes.Insert(m), lib.materials.Insert(material.New("plain", vs, ps)))
	return b, lib, e
}

func TestDrawOrder(t *testing.T) {
	b, lib, e := setup(t)
	cam := camera.New(mgl32.Vec3{0, 0, -1}, 1, 1, float32(gomath.Pi/2), 1)

	require.NoError(t, e.Draw(b, cam, lib))

	ops := b.Ops()
	bindVS := b.Index(0, gputest.OpBindShader, "entity.vert")
	bindPS := b.Index(0, gputest.OpBindShader, "entity.frag")
	commitPS := b.Index(0, gputest.OpCommit, "entity.frag")
	world := b.Index(0, gputest.OpSetMatrix, VarWorld)
	commitVS := b.Index(0, gputest.OpCommit, "entity.vert")
	draw := b.Index(0, gputest.OpDrawIndexed, "")

	require.NotContains(t, []int{bindVS, bindPS, commitPS, world, commitVS, draw}, -1, "ops: %v", ops)
	assert.Less(t, bindVS, bindPS)
	assert.Less(t, bindPS, commitPS, "material is prepared after binding")
	assert.Less(t, commitPS, world)
	assert.Less(t, world, commitVS)
	assert.Less(t, commitVS, draw)
	assert.Equal(t, draw, len(ops)-1)
}

func TestDrawUploadsMatrices(t *testing.T) {
	b, lib, e := setup(t)
	cam := camera.New(mgl32.Vec3{0, 0, -1}, 1, 1, float32(gomath.Pi/2), 1)

	require.NoError(t, e.Draw(b, cam, lib))

	get := func(name string) mgl32.Mat4 {
		c := b.Filter(gputest.OpSetMatrix, name)
		require.Len(t, c, 1, name)
		assert.True(t, c[0].Found, name)
		return c[0].Matrix
	}
	assert.Equal(t, mgl32.Ident4(), get(VarWorld))
	assert.Equal(t, mgl32.Ident4(), get(VarWorldInvTranspose))
	assert.Equal(t, cam.View(), get(VarView))
	assert.Equal(t, cam.Projection(), get(VarProjection))

	e.Transform().SetPosition(mgl32.Vec3{1, 2, 3})
	b.Reset()
	require.NoError(t, e.Draw(b, cam, lib))
	assert.Equal(t, e.Transform().WorldMatrix(), get(VarWorld))
}

func TestDrawStaleHandle(t *testing.T) {
	b, lib, e := setup(t)
	cam := camera.New(mgl32.Vec3{}, 1, 1, 1, 1)

	_, err := lib.meshes.Remove(e.Mesh())
	require.NoError(t, err)

	err = e.Draw(b, cam, lib)
	assert.ErrorIs(t, err, arena.ErrStaleHandle)
	assert.Empty(t, b.Commands(), "nothing is issued for a broken entity")
}
