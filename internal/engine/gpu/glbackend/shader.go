package glbackend

import (
	"fmt"
	"maps"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/skylight/internal/engine/gpu"
)

const invalidIndex = ^uint32(0)

// Shader is one compiled GL shader object. Parameter values are staged by
// the setters, snapshotted by CopyAllBufferData and applied to whichever
// program the shader is linked into at draw time.
type Shader struct {
	backend *Backend
	name    string
	stage   gpu.Stage
	id      uint32
	layout  *gpu.Layout

	staged    map[string]any
	committed map[string]any

	// One uniform buffer per block variable.
	ubos map[string]*ubo
}

type ubo struct {
	id   uint32
	size int
	data []byte
}

var _ gpu.Shader = (*Shader)(nil)

func (b *Backend) CreateShader(stage gpu.Stage, src gpu.ShaderSource) (gpu.Shader, error) {
	kind := uint32(gl.VERTEX_SHADER)
	if stage == gpu.StagePixel {
		kind = gl.FRAGMENT_SHADER
	}
	id, err := compileShader(src.Code, kind, stage.String())
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", src.Name, err)
	}

	s := &Shader{
		backend:   b,
		name:      src.Name,
		stage:     stage,
		id:        id,
		layout:    gpu.Reflect(src.Code),
		staged:    make(map[string]any),
		committed: make(map[string]any),
		ubos:      make(map[string]*ubo),
	}
	b.shaders[s] = struct{}{}
	b.log.Debug("shader compiled",
		zap.String("name", src.Name),
		zap.Stringer("stage", stage),
		zap.Int("variables", len(s.layout.Variables())),
	)
	return s, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, gl.GoStr(&log[0]))
	}

	return shader, nil
}

func (s *Shader) Name() string     { return s.name }
func (s *Shader) Stage() gpu.Stage { return s.stage }

func (s *Shader) Bind() {
	if s.stage == gpu.StageVertex {
		s.backend.vs = s
	} else {
		s.backend.ps = s
	}
}

func (s *Shader) set(name string, v any) bool {
	if _, ok := s.layout.Lookup(name); !ok {
		return false
	}
	s.staged[name] = v
	return true
}

func (s *Shader) SetFloat(name string, v float32) bool               { return s.set(name, v) }
func (s *Shader) SetFloat2(name string, v mgl32.Vec2) bool           { return s.set(name, v) }
func (s *Shader) SetFloat3(name string, v mgl32.Vec3) bool           { return s.set(name, v) }
func (s *Shader) SetFloat4(name string, v mgl32.Vec4) bool           { return s.set(name, v) }
func (s *Shader) SetInt(name string, v int32) bool                   { return s.set(name, v) }
func (s *Shader) SetMatrix4x4(name string, m mgl32.Mat4) bool        { return s.set(name, m) }
func (s *Shader) SetShaderResourceView(name string, v gpu.View) bool { return s.set(name, v) }
func (s *Shader) SetSampler(name string, smp gpu.Sampler) bool       { return s.set(name, smp) }

func (s *Shader) SetData(name string, data []byte) bool {
	return s.set(name, append([]byte(nil), data...))
}

func (s *Shader) HasVariable(name string) bool {
	_, ok := s.layout.Lookup(name)
	return ok
}

// CopyAllBufferData makes the staged values visible to subsequent draws and
// uploads block data.
func (s *Shader) CopyAllBufferData() {
	maps.Copy(s.committed, s.staged)
	for _, v := range s.layout.Variables() {
		if v.Kind != gpu.KindBlock {
			continue
		}
		data, ok := s.committed[v.Name].([]byte)
		if !ok {
			continue
		}
		u := s.ubos[v.Name]
		if u == nil {
			u = &ubo{}
			gl.GenBuffers(1, &u.id)
			s.ubos[v.Name] = u
		}
		u.data = data
		gl.BindBuffer(gl.UNIFORM_BUFFER, u.id)
		if len(data) > u.size {
			u.size = len(data)
			gl.BufferData(gl.UNIFORM_BUFFER, u.size, nil, gl.DYNAMIC_DRAW)
		}
		gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(data), ptr(data))
		gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	}
}

func (s *Shader) release() {
	for name, u := range s.ubos {
		gl.DeleteBuffers(1, &u.id)
		delete(s.ubos, name)
	}
	gl.DeleteShader(s.id)
	s.id = 0
}

// apply uploads the committed values to p. Texture units and block
// bindings continue from the counters so both stages can share a program.
func (s *Shader) apply(p *program, unit, binding *uint32) {
	b := s.backend
	for _, v := range s.layout.Variables() {
		val, ok := s.committed[v.Name]
		if !ok {
			continue
		}

		if v.Kind == gpu.KindBlock {
			u := s.ubos[v.Name]
			idx := p.blockIndex(v.Name)
			if u == nil || idx == invalidIndex {
				continue
			}
			need := p.blockSize(idx)
			if need > u.size {
				// The block is larger than what was uploaded; grow and refill.
				gl.BindBuffer(gl.UNIFORM_BUFFER, u.id)
				gl.BufferData(gl.UNIFORM_BUFFER, need, nil, gl.DYNAMIC_DRAW)
				gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(u.data), ptr(u.data))
				gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
				u.size = need
			}
			gl.UniformBlockBinding(p.id, idx, *binding)
			gl.BindBufferBase(gl.UNIFORM_BUFFER, *binding, u.id)
			*binding++
			continue
		}

		loc := p.location(v.Name)
		if loc < 0 {
			continue
		}
		switch x := val.(type) {
		case float32:
			gl.Uniform1f(loc, x)
		case mgl32.Vec2:
			gl.Uniform2f(loc, x[0], x[1])
		case mgl32.Vec3:
			gl.Uniform3f(loc, x[0], x[1], x[2])
		case mgl32.Vec4:
			gl.Uniform4f(loc, x[0], x[1], x[2], x[3])
		case int32:
			gl.Uniform1i(loc, x)
		case mgl32.Mat4:
			gl.UniformMatrix4fv(loc, 1, false, &x[0])
		case gpu.View:
			t := b.viewTexture(x)
			if t == nil {
				continue
			}
			gl.ActiveTexture(gl.TEXTURE0 + *unit)
			gl.BindTexture(t.target, t.id)
			if smp, ok := s.committed[gpu.SamplerName(v.Name)].(gpu.Sampler); ok {
				gl.BindSampler(*unit, b.samplers[smp])
			} else {
				gl.BindSampler(*unit, 0)
			}
			gl.Uniform1i(loc, int32(*unit))
			*unit++
		}
	}
}
