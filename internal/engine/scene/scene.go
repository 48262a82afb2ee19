// Package scene owns everything a frame draws: shared meshes and materials,
// entities, lights, cameras and the sky.
package scene

import (
	"fmt"
	"iter"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/skylight/internal/engine/arena"
	"github.com/Faultbox/skylight/internal/engine/camera"
	"github.com/Faultbox/skylight/internal/engine/entity"
	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/internal/engine/lighting"
	"github.com/Faultbox/skylight/internal/engine/material"
	"github.com/Faultbox/skylight/internal/engine/mesh"
	"github.com/Faultbox/skylight/internal/engine/renderer"
	"github.com/Faultbox/skylight/internal/engine/sky"
	"github.com/Faultbox/skylight/internal/logger"
)

// Scene manages a complete 3D scene.
type Scene struct {
	meshes    arena.Arena[mesh.Mesh]
	materials arena.Arena[material.Material]
	entities  []*entity.Entity

	lights  lighting.List
	cameras camera.List
	sky     *sky.Sky

	// Resources the scene releases on Close.
	shaders  []gpu.Shader
	textures []gpu.Texture
	views    []gpu.View
	samplers []gpu.Sampler

	log *zap.Logger
}

var _ entity.Library = (*Scene)(nil)

// New creates an empty scene.
func New() *Scene {
	return &Scene{log: logger.Named("scene")}
}

// AddMesh stores a mesh and returns its handle. The scene releases it on
// Close.
func (s *Scene) AddMesh(m *mesh.Mesh) arena.Handle[mesh.Mesh] {
	return s.meshes.Insert(m)
}

// AddMaterial stores a material and returns its handle.
func (s *Scene) AddMaterial(m *material.Material) arena.Handle[material.Material] {
	return s.materials.Insert(m)
}

// Mesh resolves a mesh handle.
func (s *Scene) Mesh(h arena.Handle[mesh.Mesh]) (*mesh.Mesh, error) {
	return s.meshes.Get(h)
}

// Material resolves a material handle.
func (s *Scene) Material(h arena.Handle[material.Material]) (*material.Material, error) {
	return s.materials.Get(h)
}

// Meshes iterates the stored meshes.
func (s *Scene) Meshes() iter.Seq2[arena.Handle[mesh.Mesh], *mesh.Mesh] {
	return s.meshes.All()
}

// AddEntity creates an entity referring to a stored mesh and material.
func (s *Scene) AddEntity(name string, m arena.Handle[mesh.Mesh], mat arena.Handle[material.Material]) (*entity.Entity, error) {
	if _, err := s.meshes.Get(m); err != nil {
		return nil, fmt.Errorf("entity %s mesh: %w", name, err)
	}
	if _, err := s.materials.Get(mat); err != nil {
		return nil, fmt.Errorf("entity %s material: %w", name, err)
	}
	e := entity.New(name, m, mat)
	s.entities = append(s.entities, e)
	return e, nil
}

// Entities returns the entities in insertion order.
func (s *Scene) Entities() []*entity.Entity { return s.entities }

// Entity finds an entity by name.
func (s *Scene) Entity(name string) (*entity.Entity, bool) {
	for _, e := range s.entities {
		if e.Name() == name {
			return e, true
		}
	}
	return nil, false
}

func (s *Scene) Lights() *lighting.List { return &s.lights }
func (s *Scene) Cameras() *camera.List  { return &s.cameras }
func (s *Scene) Sky() *sky.Sky          { return s.sky }
func (s *Scene) SetSky(sk *sky.Sky)     { s.sky = sk }

// Own hands shaders to the scene for release on Close.
func (s *Scene) Own(shaders ...gpu.Shader) { s.shaders = append(s.shaders, shaders...) }

// OwnTexture hands a texture and any views of it to the scene.
func (s *Scene) OwnTexture(tex gpu.Texture, views ...gpu.View) {
	s.textures = append(s.textures, tex)
	s.views = append(s.views, views...)
}

// OwnSampler hands a sampler to the scene.
func (s *Scene) OwnSampler(smp gpu.Sampler) { s.samplers = append(s.samplers, smp) }

// Frame builds the render input for the active camera.
func (s *Scene) Frame(totalTime, deltaTime float32) renderer.Frame {
	return renderer.Frame{
		Camera:    s.cameras.Active(),
		Lights:    &s.lights,
		Entities:  s.entities,
		Library:   s,
		Sky:       s.sky,
		TotalTime: totalTime,
		DeltaTime: deltaTime,
	}
}

// Close drops entities, then materials, then meshes, then the sky and every
// owned resource. It keeps going past errors and returns them all.
func (s *Scene) Close(dev gpu.Device) error {
	s.entities = nil

	for h := range s.materials.All() {
		_, _ = s.materials.Remove(h)
	}

	var err error
	for h, m := range s.meshes.All() {
		err = multierr.Append(err, m.Release(dev))
		_, _ = s.meshes.Remove(h)
	}

	if s.sky != nil {
		err = multierr.Append(err, s.sky.Release(dev))
		s.sky = nil
	}

	for _, v := range s.views {
		err = multierr.Append(err, dev.ReleaseView(v))
	}
	for _, t := range s.textures {
		err = multierr.Append(err, dev.ReleaseTexture(t))
	}
	for _, smp := range s.samplers {
		err = multierr.Append(err, dev.ReleaseSampler(smp))
	}
	for _, sh := range s.shaders {
		err = multierr.Append(err, dev.ReleaseShader(sh))
	}
	s.views, s.textures, s.samplers, s.shaders = nil, nil, nil, nil

	if err != nil {
		s.log.Warn("scene closed with errors", zap.Error(err))
	}
	return err
}
