package postprocess

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"

	"github.com/Faultbox/skylight/internal/engine/gpu"
)

// Shader variable names shared by every stage.
const (
	VarInput        = "InputTexture"
	VarInputSampler = "InputSampler"
	VarPixelUV      = "pixelUV" // reciprocal resolution
	VarBlurRadius   = "blurRadius"
	VarPixelSize    = "pixelSize"
)

// Stage names.
const (
	StageBlur   = "blur"
	StageDither = "dither"
)

// Stage is one full-screen pass. It reads its own target and writes the
// next stage's target, or the back buffer when it is last.
type Stage struct {
	Name   string
	Shader gpu.Shader
}

// Chain runs its stages in order over a shared full-screen triangle.
type Chain struct {
	dev     gpu.Device
	vs      gpu.Shader
	sampler gpu.Sampler
	stages  []Stage

	targets       Targets
	width, height int

	blurRadius int
	pixelSize  int
}

// NewChain builds the blur then dither chain. vs draws the full-screen
// triangle from vertex IDs. No targets exist until Resize.
func NewChain(dev gpu.Device, vs gpu.Shader, sampler gpu.Sampler, blur, dither gpu.Shader) *Chain {
	return &Chain{
		dev:     dev,
		vs:      vs,
		sampler: sampler,
		stages: []Stage{
			{Name: StageBlur, Shader: blur},
			{Name: StageDither, Shader: dither},
		},
		pixelSize: 1,
	}
}

func (c *Chain) Stages() []Stage     { return c.stages }
func (c *Chain) BlurRadius() int     { return c.blurRadius }
func (c *Chain) PixelSize() int      { return c.pixelSize }
func (c *Chain) Size() (int, int)    { return c.width, c.height }
func (c *Chain) SetBlurRadius(r int) { c.blurRadius = max(r, 0) }
func (c *Chain) SetPixelSize(px int) { c.pixelSize = max(px, 1) }

// Ready reports whether every stage has a target.
func (c *Chain) Ready() bool {
	return len(c.stages) > 0 && len(c.targets) == len(c.stages)
}

// Input returns the view the main pass should render into.
func (c *Chain) Input() gpu.View {
	if !c.Ready() {
		return 0
	}
	return c.targets[0].renderView
}

// CreateTargets builds a full set of targets for a resolution without
// installing them. A zero size yields no targets. On failure nothing is
// left allocated.
func (c *Chain) CreateTargets(width, height int) (Targets, error) {
	if width <= 0 || height <= 0 {
		return nil, nil
	}
	ts := make(Targets, 0, len(c.stages))
	for _, st := range c.stages {
		t, err := NewTarget(c.dev, width, height)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", st.Name, multierr.Append(err, ts.Release(c.dev)))
		}
		ts = append(ts, t)
	}
	return ts, nil
}

// Install swaps in targets built by CreateTargets and returns the previous
// set for the caller to release.
func (c *Chain) Install(ts Targets, width, height int) Targets {
	old := c.targets
	c.targets = ts
	if ts == nil {
		width, height = 0, 0
	}
	c.width, c.height = width, height
	return old
}

// Resize replaces the targets. On failure the current targets are kept.
func (c *Chain) Resize(width, height int) error {
	ts, err := c.CreateTargets(width, height)
	if err != nil {
		return err
	}
	return c.Install(ts, width, height).Release(c.dev)
}

// Release frees the installed targets.
func (c *Chain) Release() error {
	return c.Install(nil, 0, 0).Release(c.dev)
}

// Run draws every stage, the last one into output. Depth testing is off for
// the duration and restored to the default afterwards.
func (c *Chain) Run(ctx gpu.Context, output gpu.View) {
	if !c.Ready() {
		return
	}
	ctx.SetDepthState(gpu.DepthState{Test: false, Write: false, Func: gpu.CompareAlways})
	ctx.SetViewport(gpu.Viewport{Width: c.width, Height: c.height})

	pixelUV := mgl32.Vec2{1 / float32(c.width), 1 / float32(c.height)}
	for i, st := range c.stages {
		next := output
		if i+1 < len(c.stages) {
			next = c.targets[i+1].renderView
		}
		ctx.UnbindShaderResources()
		ctx.SetRenderTargets(next, 0)

		c.vs.Bind()
		st.Shader.Bind()
		c.vs.CopyAllBufferData()

		ps := st.Shader
		ps.SetShaderResourceView(VarInput, c.targets[i].resourceView)
		ps.SetSampler(VarInputSampler, c.sampler)
		ps.SetFloat2(VarPixelUV, pixelUV)
		ps.SetInt(VarBlurRadius, int32(c.blurRadius))
		ps.SetInt(VarPixelSize, int32(c.pixelSize))
		ps.CopyAllBufferData()

		ctx.Draw(3)
	}

	ctx.UnbindShaderResources()
	ctx.SetDepthState(gpu.DefaultDepthState())
}
