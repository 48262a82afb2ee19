package renderer

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/skylight/internal/engine/entity"
	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/internal/engine/lighting"
	"github.com/Faultbox/skylight/internal/engine/shadow"
	"github.com/Faultbox/skylight/pkg/math"
)

// Per-frame shader variables pushed before each entity draw.
const (
	VarTime           = "time"
	VarCameraPosition = "cameraPosition"
	VarLights         = "lights"
	VarLightCount     = "lightCount"
	VarShadowsEnabled = "shadowsEnabled"
)

// Render draws one frame. A frame with no back buffer or camera is skipped
// without issuing any command. Entity errors do not stop the frame; they are
// returned together once it has been presented.
func (r *Renderer) Render(f Frame) (Stats, error) {
	var stats Stats

	color, depth := r.presenter.BackBuffer()
	width, height := r.presenter.Size()
	if color == 0 || depth == 0 || width <= 0 || height <= 0 || f.Camera == nil || f.Library == nil {
		if !r.skipping {
			r.log.Debug("skipping frames", zap.Int("width", width), zap.Int("height", height))
			r.skipping = true
		}
		stats.Skipped = true
		return stats, nil
	}
	r.skipping = false

	var errs error

	// Shadow
	var lm shadow.Matrices
	shadowed := false
	if caster, ok := r.shadowCaster(f); ok {
		lm = r.lightMatrices(caster, f)
		casters, err := r.shadowPass(f, lm)
		errs = multierr.Append(errs, err)
		stats.ShadowCasters = casters
		stats.Phases = append(stats.Phases, PhaseShadow)
		shadowed = true
	}

	// Main
	usePost := r.opts.PostProcess && r.post != nil && r.post.Ready()
	target := color
	if usePost {
		target = r.post.Input()
	}
	viewport := gpu.Viewport{Width: width, Height: height}

	r.ctx.SetRenderTargets(target, depth)
	r.ctx.SetViewport(viewport)
	r.ctx.SetRasterState(gpu.DefaultRasterState())
	r.ctx.SetDepthState(gpu.DefaultDepthState())
	r.ctx.ClearRenderTarget(target, r.opts.ClearColor)
	r.ctx.ClearDepth(depth, 1)

	var lightBytes []byte
	var lightCount int32
	if f.Lights != nil {
		lightBytes = f.Lights.Bytes()
		lightCount = int32(f.Lights.Len())
	}
	for _, e := range f.Entities {
		mat, err := f.Library.Material(e.Material())
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("entity %s material: %w", e.Name(), err))
			continue
		}

		ps := mat.PixelShader()
		ps.SetFloat(VarTime, f.TotalTime)
		ps.SetFloat3(VarCameraPosition, f.Camera.Position())
		ps.SetData(VarLights, lightBytes)
		ps.SetInt(VarLightCount, lightCount)
		if r.shadowMap != nil {
			ps.SetShaderResourceView(shadow.VarShadowMap, r.shadowMap.ShaderView())
			ps.SetSampler(shadow.VarShadowSampler, r.shadowMap.Sampler())
		}
		ps.SetInt(VarShadowsEnabled, boolInt(shadowed))

		vs := mat.VertexShader()
		vs.SetMatrix4x4(shadow.VarLightView, lm.View)
		vs.SetMatrix4x4(shadow.VarLightProjection, lm.Projection)

		if err := e.Draw(r.ctx, f.Camera, f.Library); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		stats.EntitiesDrawn++
	}
	stats.Phases = append(stats.Phases, PhaseMain)

	// Sky
	if f.Sky != nil {
		f.Sky.Draw(r.ctx, f.Camera)
		stats.Phases = append(stats.Phases, PhaseSky)
	}

	// Post
	if usePost {
		r.post.Run(r.ctx, color)
		stats.Phases = append(stats.Phases, PhasePost)
	}

	// Present
	if err := r.presenter.Present(r.opts.VSync); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("presenting: %w", err))
	}
	r.ctx.UnbindShaderResources()
	r.ctx.SetRenderTargets(color, depth)
	stats.Phases = append(stats.Phases, PhasePresent)

	return stats, errs
}

func (r *Renderer) shadowCaster(f Frame) (lighting.Directional, bool) {
	if !r.opts.Shadows || r.shadowMap == nil || f.Lights == nil || len(f.Entities) == 0 {
		return lighting.Directional{}, false
	}
	return f.Lights.ShadowCaster()
}

func (r *Renderer) lightMatrices(sun lighting.Directional, f Frame) shadow.Matrices {
	if !r.opts.ShadowFitBounds {
		return shadow.FixedMatrices(sun.Direction, r.opts.ShadowDistance, r.opts.ShadowExtent)
	}
	bounds := math.EmptyAABB()
	for _, e := range f.Entities {
		m, err := f.Library.Mesh(e.Mesh())
		if err != nil {
			continue
		}
		bounds = bounds.Union(m.Bounds().Transform(e.Transform().WorldMatrix()))
	}
	if bounds.IsEmpty() {
		return shadow.FixedMatrices(sun.Direction, r.opts.ShadowDistance, r.opts.ShadowExtent)
	}
	return shadow.FitMatrices(sun.Direction, bounds)
}

// shadowPass draws every entity's mesh into the shadow map with the
// vertex-only shadow shader. Materials are not used.
func (r *Renderer) shadowPass(f Frame, lm shadow.Matrices) (int, error) {
	r.shadowMap.Begin(r.ctx)

	vs := r.shadowVS
	vs.Bind()
	r.ctx.ClearPixelShader()
	vs.SetMatrix4x4(shadow.VarLightView, lm.View)
	vs.SetMatrix4x4(shadow.VarLightProjection, lm.Projection)

	var errs error
	drawn := 0
	for _, e := range f.Entities {
		m, err := f.Library.Mesh(e.Mesh())
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("entity %s mesh: %w", e.Name(), err))
			continue
		}
		vs.SetMatrix4x4(entity.VarWorld, e.Transform().WorldMatrix())
		vs.CopyAllBufferData()
		m.Draw(r.ctx)
		drawn++
	}

	r.ctx.SetRasterState(gpu.DefaultRasterState())
	return drawn, errs
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
