package gputest

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/skylight/internal/engine/gpu"
)

// Shader is a recording gpu.Shader. Its variables are reflected from the
// source text it was created with.
type Shader struct {
	backend *Backend
	name    string
	stage   gpu.Stage
	layout  *gpu.Layout

	// Staged values by variable name.
	values map[string]any
}

var _ gpu.Shader = (*Shader)(nil)

func (s *Shader) Name() string     { return s.name }
func (s *Shader) Stage() gpu.Stage { return s.stage }

func (s *Shader) Bind() {
	s.backend.bound[s.stage] = s
	s.backend.record(Command{Op: OpBindShader, Shader: s.name})
}

// Value returns the last staged value of a variable.
func (s *Shader) Value(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

func (s *Shader) set(c Command, value any) bool {
	_, found := s.layout.Lookup(c.Name)
	c.Shader = s.name
	c.Found = found
	s.backend.record(c)
	if !found {
		return false
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	s.values[c.Name] = value
	return true
}

func (s *Shader) SetFloat(name string, v float32) bool {
	return s.set(Command{Op: OpSetFloat, Name: name, Floats: []float32{v}}, v)
}

func (s *Shader) SetFloat2(name string, v mgl32.Vec2) bool {
	return s.set(Command{Op: OpSetFloat, Name: name, Floats: v[:]}, v)
}

func (s *Shader) SetFloat3(name string, v mgl32.Vec3) bool {
	return s.set(Command{Op: OpSetFloat, Name: name, Floats: v[:]}, v)
}

func (s *Shader) SetFloat4(name string, v mgl32.Vec4) bool {
	return s.set(Command{Op: OpSetFloat, Name: name, Floats: v[:]}, v)
}

func (s *Shader) SetInt(name string, v int32) bool {
	return s.set(Command{Op: OpSetInt, Name: name, Int: v}, v)
}

func (s *Shader) SetMatrix4x4(name string, m mgl32.Mat4) bool {
	return s.set(Command{Op: OpSetMatrix, Name: name, Matrix: m}, m)
}

func (s *Shader) SetData(name string, data []byte) bool {
	cp := append([]byte(nil), data...)
	return s.set(Command{Op: OpSetData, Name: name, Data: cp}, cp)
}

func (s *Shader) SetShaderResourceView(name string, v gpu.View) bool {
	return s.set(Command{Op: OpSetResource, Name: name, View: v}, v)
}

func (s *Shader) SetSampler(name string, smp gpu.Sampler) bool {
	return s.set(Command{Op: OpSetSampler, Name: name, Sampler: smp}, smp)
}

func (s *Shader) HasVariable(name string) bool {
	_, ok := s.layout.Lookup(name)
	return ok
}

func (s *Shader) CopyAllBufferData() {
	s.backend.record(Command{Op: OpCommit, Shader: s.name})
}
