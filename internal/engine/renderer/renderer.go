// Package renderer runs the per-frame pass pipeline: shadow, main, sky,
// post-processing and present.
package renderer

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/internal/engine/postprocess"
	"github.com/Faultbox/skylight/internal/engine/shadow"
	"github.com/Faultbox/skylight/internal/logger"
)

// Options are the renderer's runtime switches.
type Options struct {
	ClearColor gpu.Color
	VSync      bool

	Shadows         bool
	ShadowDistance  float32
	ShadowExtent    float32
	ShadowFitBounds bool

	PostProcess bool
}

// DefaultOptions returns shadows on, post-processing off and vsync on.
func DefaultOptions() Options {
	return Options{
		ClearColor:     gpu.Color{0.4, 0.6, 0.75, 1},
		VSync:          true,
		Shadows:        true,
		ShadowDistance: 20,
		ShadowExtent:   20,
	}
}

// Config holds what a Renderer draws with. Post may be nil to disable
// post-processing entirely. ShadowMap and ShadowShader must be set together.
type Config struct {
	Device    gpu.Device
	Context   gpu.Context
	Presenter gpu.Presenter

	ShadowMap    *shadow.Map
	ShadowShader gpu.Shader // vertex stage only

	Post *postprocess.Chain

	Options Options
}

// Renderer handles all frame rendering.
type Renderer struct {
	dev       gpu.Device
	ctx       gpu.Context
	presenter gpu.Presenter

	shadowMap *shadow.Map
	shadowVS  gpu.Shader
	post      *postprocess.Chain

	opts     Options
	skipping bool
	log      *zap.Logger
}

// New creates a renderer and sizes the post targets to the presenter.
func New(cfg Config) (*Renderer, error) {
	if cfg.Device == nil || cfg.Context == nil || cfg.Presenter == nil {
		return nil, errors.New("renderer needs a device, context and presenter")
	}
	if (cfg.ShadowMap == nil) != (cfg.ShadowShader == nil) {
		return nil, errors.New("shadow map and shadow shader must be set together")
	}

	r := &Renderer{
		dev:       cfg.Device,
		ctx:       cfg.Context,
		presenter: cfg.Presenter,
		shadowMap: cfg.ShadowMap,
		shadowVS:  cfg.ShadowShader,
		post:      cfg.Post,
		opts:      cfg.Options,
		log:       logger.Named("renderer"),
	}

	if r.post != nil {
		w, h := r.presenter.Size()
		if err := r.post.Resize(w, h); err != nil {
			return nil, fmt.Errorf("creating post targets: %w", err)
		}
	}

	r.log.Info("renderer created",
		zap.Bool("shadows", r.shadowMap != nil && r.opts.Shadows),
		zap.Bool("post", r.post != nil && r.opts.PostProcess),
		zap.Bool("vsync", r.opts.VSync),
	)
	return r, nil
}

func (r *Renderer) Options() Options          { return r.opts }
func (r *Renderer) SetOptions(o Options)      { r.opts = o }
func (r *Renderer) SetShadows(on bool)        { r.opts.Shadows = on }
func (r *Renderer) SetPostProcess(on bool)    { r.opts.PostProcess = on }
func (r *Renderer) SetVSync(on bool)          { r.opts.VSync = on }
func (r *Renderer) SetClearColor(c gpu.Color) { r.opts.ClearColor = c }
func (r *Renderer) Post() *postprocess.Chain  { return r.post }
func (r *Renderer) ShadowMap() *shadow.Map    { return r.shadowMap }
func (r *Renderer) Presenter() gpu.Presenter  { return r.presenter }

// Drawable reports whether a frame can be rendered.
func (r *Renderer) Drawable() bool {
	w, h := r.presenter.Size()
	color, depth := r.presenter.BackBuffer()
	return w > 0 && h > 0 && color != 0 && depth != 0
}

// Resize changes the output resolution. New post targets and back buffers
// are created before anything is released; on failure the previous state is
// kept. A 0x0 size releases every resolution-dependent resource.
func (r *Renderer) Resize(width, height int) error {
	var targets postprocess.Targets
	if r.post != nil {
		var err error
		if targets, err = r.post.CreateTargets(width, height); err != nil {
			return fmt.Errorf("creating post targets: %w", err)
		}
	}

	if err := r.presenter.Resize(width, height); err != nil {
		return multierr.Append(
			fmt.Errorf("resizing back buffer: %w", err),
			targets.Release(r.dev),
		)
	}

	if r.post != nil {
		if err := r.post.Install(targets, width, height).Release(r.dev); err != nil {
			return fmt.Errorf("releasing old post targets: %w", err)
		}
	}

	r.log.Debug("resized", zap.Int("width", width), zap.Int("height", height))
	return nil
}

// Release frees the resources the renderer owns. Shaders are owned by
// whoever created them.
func (r *Renderer) Release() error {
	var err error
	if r.post != nil {
		err = multierr.Append(err, r.post.Release())
	}
	if r.shadowMap != nil {
		err = multierr.Append(err, r.shadowMap.Release(r.dev))
		r.shadowMap, r.shadowVS = nil, nil
	}
	return err
}
