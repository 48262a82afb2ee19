// Package shadow provides the directional shadow map and light matrices.
package shadow

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/skylight/internal/engine/gpu"
)

// DefaultResolution is used when a non-positive resolution is requested.
const DefaultResolution = 1024

// Shader variable names for sampling the map in the main pass.
const (
	VarShadowMap     = "ShadowMap"
	VarShadowSampler = "ShadowSampler"
)

// Map is a square depth texture rendered from the shadow-casting light.
type Map struct {
	resolution int
	texture    gpu.Texture
	depthView  gpu.View
	shaderView gpu.View
	sampler    gpu.Sampler
}

// NewMap creates the depth texture, its depth and shader views, and a
// comparison sampler that treats everything outside the map as lit.
func NewMap(dev gpu.Device, resolution int) (*Map, error) {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	m := &Map{resolution: resolution}
	if err := m.create(dev); err != nil {
		return nil, multierr.Append(err, m.Release(dev))
	}
	return m, nil
}

func (m *Map) create(dev gpu.Device) error {
	var err error
	m.texture, err = dev.CreateTexture(gpu.TextureDesc{
		Width:  m.resolution,
		Height: m.resolution,
		Format: gpu.FormatDepth32F,
		Bind:   gpu.BindDepthStencil | gpu.BindShaderResource,
	}, nil)
	if err != nil {
		return fmt.Errorf("creating shadow texture: %w", err)
	}
	if m.depthView, err = dev.CreateView(m.texture, gpu.ViewDepthStencil); err != nil {
		return fmt.Errorf("creating shadow depth view: %w", err)
	}
	if m.shaderView, err = dev.CreateView(m.texture, gpu.ViewShaderResource); err != nil {
		return fmt.Errorf("creating shadow shader view: %w", err)
	}
	m.sampler, err = dev.CreateSampler(gpu.SamplerDesc{
		Filter:      gpu.FilterLinear,
		Address:     gpu.AddressBorder,
		BorderColor: gpu.Color{1, 1, 1, 1},
		Compare:     true,
	})
	if err != nil {
		return fmt.Errorf("creating shadow sampler: %w", err)
	}
	return nil
}

func (m *Map) Resolution() int        { return m.resolution }
func (m *Map) DepthView() gpu.View    { return m.depthView }
func (m *Map) ShaderView() gpu.View   { return m.shaderView }
func (m *Map) Sampler() gpu.Sampler   { return m.sampler }
func (m *Map) Viewport() gpu.Viewport { return gpu.Viewport{Width: m.resolution, Height: m.resolution} }

// RasterState is the depth-biased state used while rendering the map.
func RasterState() gpu.RasterState {
	return gpu.RasterState{Cull: gpu.CullBack, DepthBias: 1000, SlopeScaledBias: 1}
}

// Begin clears the map and makes it the only output: no color target, the
// map's viewport and biased rasterization.
func (m *Map) Begin(ctx gpu.Context) {
	ctx.ClearDepth(m.depthView, 1)
	ctx.SetRenderTargets(0, m.depthView)
	ctx.SetViewport(m.Viewport())
	ctx.SetRasterState(RasterState())
}

// Release frees every resource the map created.
func (m *Map) Release(dev gpu.Device) error {
	var err error
	if m.sampler != 0 {
		err = multierr.Append(err, dev.ReleaseSampler(m.sampler))
		m.sampler = 0
	}
	if m.shaderView != 0 {
		err = multierr.Append(err, dev.ReleaseView(m.shaderView))
		m.shaderView = 0
	}
	if m.depthView != 0 {
		err = multierr.Append(err, dev.ReleaseView(m.depthView))
		m.depthView = 0
	}
	if m.texture != 0 {
		err = multierr.Append(err, dev.ReleaseTexture(m.texture))
		m.texture = 0
	}
	return err
}
