// Package entity composes a mesh, a material and a transform into one
// drawable object.
package entity

import (
	"fmt"

	"github.com/Faultbox/skylight/internal/engine/arena"
	"github.com/Faultbox/skylight/internal/engine/camera"
	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/internal/engine/material"
	"github.com/Faultbox/skylight/internal/engine/mesh"
	"github.com/Faultbox/skylight/internal/engine/transform"
)

// Vertex shader variables written by Draw.
const (
	VarWorld             = "world"
	VarWorldInvTranspose = "worldInvTranspose"
	VarView              = "view"
	VarProjection        = "projection"
)

// Library resolves shared mesh and material handles.
type Library interface {
	Mesh(h arena.Handle[mesh.Mesh]) (*mesh.Mesh, error)
	Material(h arena.Handle[material.Material]) (*material.Material, error)
}

// Entity owns its transform and refers to a shared mesh and material.
type Entity struct {
	name      string
	mesh      arena.Handle[mesh.Mesh]
	material  arena.Handle[material.Material]
	transform *transform.Transform
}

// New creates an entity with an identity transform.
func New(name string, m arena.Handle[mesh.Mesh], mat arena.Handle[material.Material]) *Entity {
	return &Entity{
		name:      name,
		mesh:      m,
		material:  mat,
		transform: transform.New(),
	}
}

func (e *Entity) Name() string                                  { return e.name }
func (e *Entity) Transform() *transform.Transform               { return e.transform }
func (e *Entity) Mesh() arena.Handle[mesh.Mesh]                 { return e.mesh }
func (e *Entity) Material() arena.Handle[material.Material]     { return e.material }
func (e *Entity) SetMesh(h arena.Handle[mesh.Mesh])             { e.mesh = h }
func (e *Entity) SetMaterial(h arena.Handle[material.Material]) { e.material = h }

// Draw binds the material's shaders, prepares the material, uploads the
// object and camera matrices and issues the mesh draw. Per-frame values such
// as lights must already be staged on the material's shaders.
func (e *Entity) Draw(ctx gpu.Context, cam *camera.Camera, lib Library) error {
	mat, err := lib.Material(e.material)
	if err != nil {
		return fmt.Errorf("entity %s material: %w", e.name, err)
	}
	m, err := lib.Mesh(e.mesh)
	if err != nil {
		return fmt.Errorf("entity %s mesh: %w", e.name, err)
	}

	vs := mat.VertexShader()
	vs.Bind()
	mat.PixelShader().Bind()

	mat.PrepareMaterial()

	vs.SetMatrix4x4(VarWorld, e.transform.WorldMatrix())
	vs.SetMatrix4x4(VarWorldInvTranspose, e.transform.WorldInverseTransposeMatrix())
	vs.SetMatrix4x4(VarView, cam.View())
	vs.SetMatrix4x4(VarProjection, cam.Projection())
	vs.CopyAllBufferData()

	m.Draw(ctx)
	return nil
}
