// Package material pairs a shader program with textures, samplers and
// surface parameters.
package material

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/internal/logger"
)

// Shader variable names written by PrepareMaterial.
const (
	VarColorTint = "colorTint"
	VarRoughness = "roughness"
	VarUVScale   = "uvScale"
	VarUVOffset  = "uvOffset"
)

// Material is shared by every entity drawn with it.
type Material struct {
	name string

	tint      mgl32.Vec4
	roughness float32
	uvScale   mgl32.Vec2
	uvOffset  mgl32.Vec2

	vs gpu.Shader
	ps gpu.Shader

	textures map[string]gpu.View
	samplers map[string]gpu.Sampler

	log    *zap.Logger
	warned map[string]bool
}

// New creates a white, fully rough material with an identity UV transform.
func New(name string, vs, ps gpu.Shader) *Material {
	return &Material{
		name:      name,
		tint:      mgl32.Vec4{1, 1, 1, 1},
		roughness: 1,
		uvScale:   mgl32.Vec2{1, 1},
		vs:        vs,
		ps:        ps,
		textures:  make(map[string]gpu.View),
		samplers:  make(map[string]gpu.Sampler),
		log:       logger.Named("material").With(zap.String("material", name)),
		warned:    make(map[string]bool),
	}
}

func (m *Material) Name() string             { return m.name }
func (m *Material) VertexShader() gpu.Shader { return m.vs }
func (m *Material) PixelShader() gpu.Shader  { return m.ps }

func (m *Material) Tint() mgl32.Vec4         { return m.tint }
func (m *Material) Roughness() float32       { return m.roughness }
func (m *Material) UVScale() mgl32.Vec2      { return m.uvScale }
func (m *Material) UVOffset() mgl32.Vec2     { return m.uvOffset }
func (m *Material) SetTint(c mgl32.Vec4)     { m.tint = c }
func (m *Material) SetRoughness(r float32)   { m.roughness = r }
func (m *Material) SetUVScale(s mgl32.Vec2)  { m.uvScale = s }
func (m *Material) SetUVOffset(o mgl32.Vec2) { m.uvOffset = o }

// AddTextureSRV binds a texture view to a pixel shader slot.
func (m *Material) AddTextureSRV(slot string, v gpu.View) {
	m.textures[slot] = v
}

// AddSampler binds a sampler to a pixel shader slot.
func (m *Material) AddSampler(slot string, s gpu.Sampler) {
	m.samplers[slot] = s
}

// Texture returns the view bound to slot.
func (m *Material) Texture(slot string) (gpu.View, bool) {
	v, ok := m.textures[slot]
	return v, ok
}

// PrepareMaterial stages textures, samplers and surface parameters on the
// pixel shader and commits them. Call after binding the shaders and before
// drawing. Slots the shader does not declare are skipped with a one-time
// warning.
func (m *Material) PrepareMaterial() {
	for _, slot := range sortedKeys(m.textures) {
		m.check(slot, m.ps.SetShaderResourceView(slot, m.textures[slot]))
	}
	for _, slot := range sortedKeys(m.samplers) {
		m.check(slot, m.ps.SetSampler(slot, m.samplers[slot]))
	}

	m.ps.SetFloat4(VarColorTint, m.tint)
	m.ps.SetFloat(VarRoughness, m.roughness)
	m.ps.SetFloat2(VarUVScale, m.uvScale)
	m.ps.SetFloat2(VarUVOffset, m.uvOffset)

	m.ps.CopyAllBufferData()
}

func (m *Material) check(slot string, found bool) {
	if found || m.warned[slot] {
		return
	}
	m.warned[slot] = true
	m.log.Warn("pixel shader has no slot, binding skipped",
		zap.String("slot", slot),
		zap.String("shader", m.ps.Name()))
}

func sortedKeys[V any](mp map[string]V) []string {
	keys := make([]string, 0, len(mp))
	for k := range mp {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
