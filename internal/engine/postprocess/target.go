// Package postprocess runs full-screen passes over the rendered frame.
package postprocess

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/skylight/internal/engine/gpu"
)

// Target is an off-screen color texture that one pass renders into and the
// next pass reads.
type Target struct {
	texture      gpu.Texture
	renderView   gpu.View
	resourceView gpu.View
}

// RenderView returns the view to render into.
func (t Target) RenderView() gpu.View { return t.renderView }

// ResourceView returns the view to sample from.
func (t Target) ResourceView() gpu.View { return t.resourceView }

// NewTarget creates a width by height color target.
func NewTarget(dev gpu.Device, width, height int) (Target, error) {
	var t Target
	var err error

	t.texture, err = dev.CreateTexture(gpu.TextureDesc{
		Width:  width,
		Height: height,
		Format: gpu.FormatRGBA8,
		Bind:   gpu.BindRenderTarget | gpu.BindShaderResource,
	}, nil)
	if err != nil {
		return Target{}, fmt.Errorf("creating post target texture: %w", err)
	}
	if t.renderView, err = dev.CreateView(t.texture, gpu.ViewRenderTarget); err != nil {
		return Target{}, multierr.Append(fmt.Errorf("creating post render view: %w", err), t.Release(dev))
	}
	if t.resourceView, err = dev.CreateView(t.texture, gpu.ViewShaderResource); err != nil {
		return Target{}, multierr.Append(fmt.Errorf("creating post resource view: %w", err), t.Release(dev))
	}
	return t, nil
}

// Release frees the target's views and texture.
func (t Target) Release(dev gpu.Device) error {
	var err error
	if t.resourceView != 0 {
		err = multierr.Append(err, dev.ReleaseView(t.resourceView))
	}
	if t.renderView != 0 {
		err = multierr.Append(err, dev.ReleaseView(t.renderView))
	}
	if t.texture != 0 {
		err = multierr.Append(err, dev.ReleaseTexture(t.texture))
	}
	return err
}

// Targets holds one Target per stage, in stage order.
type Targets []Target

// Release frees every target.
func (ts Targets) Release(dev gpu.Device) error {
	var err error
	for _, t := range ts {
		err = multierr.Append(err, t.Release(dev))
	}
	return err
}
