// Package gputest is an in-memory gpu backend that records every command.
// It keeps texture contents so tests can read slices back.
package gputest

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/skylight/internal/engine/gpu"
)

// ErrInjected is returned by creation calls failed through FailAfter.
var ErrInjected = errors.New("injected failure")

// Op names a recorded command.
type Op string

const (
	OpClearRenderTarget Op = "ClearRenderTarget"
	OpClearDepth        Op = "ClearDepth"
	OpSetRenderTargets  Op = "SetRenderTargets"
	OpSetViewport       Op = "SetViewport"
	OpSetRasterState    Op = "SetRasterState"
	OpSetDepthState     Op = "SetDepthState"
	OpSetVertexBuffer   Op = "SetVertexBuffer"
	OpSetIndexBuffer    Op = "SetIndexBuffer"
	OpDrawIndexed       Op = "DrawIndexed"
	OpDraw              Op = "Draw"
	OpCopyTextureSlice  Op = "CopyTextureSlice"
	OpUnbindResources   Op = "UnbindShaderResources"
	OpClearPixelShader  Op = "ClearPixelShader"
	OpPresent           Op = "Present"
	OpBindShader        Op = "BindShader"
	OpSetFloat          Op = "SetFloat"
	OpSetInt            Op = "SetInt"
	OpSetMatrix         Op = "SetMatrix4x4"
	OpSetData           Op = "SetData"
	OpSetResource       Op = "SetShaderResourceView"
	OpSetSampler        Op = "SetSampler"
	OpCommit            Op = "CopyAllBufferData"
)

// Command is one recorded call. Only the fields relevant to Op are set.
type Command struct {
	Op       Op
	Shader   string // shader name for shader commands
	Name     string // variable name
	Found    bool   // whether the variable exists
	Floats   []float32
	Int      int32
	Matrix   mgl32.Mat4
	Data     []byte
	View     gpu.View
	Depth    gpu.View
	Sampler  gpu.Sampler
	Buffer   gpu.Buffer
	Texture  gpu.Texture
	Slice    int
	Count    int
	Color    gpu.Color
	Viewport gpu.Viewport
	Raster   gpu.RasterState
	DepthSt  gpu.DepthState
	VSync    bool
}

type texture struct {
	desc gpu.TextureDesc
	data [][]byte
}

type view struct {
	tex  gpu.Texture
	kind gpu.ViewKind
}

// Backend implements gpu.Device, gpu.Context and gpu.Presenter.
type Backend struct {
	commands []Command

	nextID   uint32
	buffers  map[gpu.Buffer]gpu.BufferDesc
	textures map[gpu.Texture]*texture
	views    map[gpu.View]view
	samplers map[gpu.Sampler]gpu.SamplerDesc
	shaders  map[*Shader]struct{}

	bound map[gpu.Stage]*Shader

	width, height     int
	backTex, depTex   gpu.Texture
	backView, depView gpu.View

	failAfter int // creation calls left before failing, -1 disables
}

var (
	_ gpu.Device    = (*Backend)(nil)
	_ gpu.Context   = (*Backend)(nil)
	_ gpu.Presenter = (*Backend)(nil)
	_ gpu.Capturer  = (*Backend)(nil)
)

// New returns an empty backend with a back buffer of the given size.
func New(width, height int) *Backend {
	b := &Backend{
		buffers:   make(map[gpu.Buffer]gpu.BufferDesc),
		textures:  make(map[gpu.Texture]*texture),
		views:     make(map[gpu.View]view),
		samplers:  make(map[gpu.Sampler]gpu.SamplerDesc),
		shaders:   make(map[*Shader]struct{}),
		bound:     make(map[gpu.Stage]*Shader),
		failAfter: -1,
	}
	if err := b.Resize(width, height); err != nil {
		panic(err)
	}
	return b
}

// Commands returns the recorded command log.
func (b *Backend) Commands() []Command { return b.commands }

// Reset clears the command log.
func (b *Backend) Reset() { b.commands = nil }

// Ops returns the recorded ops in order.
func (b *Backend) Ops() []Op {
	ops := make([]Op, len(b.commands))
	for i, c := range b.commands {
		ops[i] = c.Op
	}
	return ops
}

// FailAfter makes the (n+1)th resource creation from now fail with
// ErrInjected. A negative n disables injection.
func (b *Backend) FailAfter(n int) { b.failAfter = n }

// Live returns the number of unreleased resources, back buffer excluded.
func (b *Backend) Live() int {
	n := len(b.buffers) + len(b.textures) + len(b.views) + len(b.samplers) + len(b.shaders)
	for _, id := range []uint32{uint32(b.backTex), uint32(b.depTex), uint32(b.backView), uint32(b.depView)} {
		if id != 0 {
			n--
		}
	}
	return n
}

// TextureData returns a copy of every slice of tex.
func (b *Backend) TextureData(tex gpu.Texture) ([][]byte, bool) {
	t, ok := b.textures[tex]
	if !ok {
		return nil, false
	}
	out := make([][]byte, len(t.data))
	for i, s := range t.data {
		out[i] = append([]byte(nil), s...)
	}
	return out, true
}

// ViewTexture returns the texture a view was created from.
func (b *Backend) ViewTexture(v gpu.View) (gpu.Texture, gpu.ViewKind, bool) {
	vw, ok := b.views[v]
	return vw.tex, vw.kind, ok
}

// Bound returns the shader currently bound to a stage.
func (b *Backend) Bound(stage gpu.Stage) *Shader { return b.bound[stage] }

func (b *Backend) record(c Command) { b.commands = append(b.commands, c) }

func (b *Backend) id() (uint32, error) {
	if b.failAfter == 0 {
		return 0, ErrInjected
	}
	if b.failAfter > 0 {
		b.failAfter--
	}
	b.nextID++
	return b.nextID, nil
}

// Device

func (b *Backend) CreateBuffer(desc gpu.BufferDesc, data []byte) (gpu.Buffer, error) {
	if err := desc.Validate(data); err != nil {
		return 0, err
	}
	id, err := b.id()
	if err != nil {
		return 0, err
	}
	b.buffers[gpu.Buffer(id)] = desc
	return gpu.Buffer(id), nil
}

func (b *Backend) CreateTexture(desc gpu.TextureDesc, slices [][]byte) (gpu.Texture, error) {
	if err := desc.Validate(slices); err != nil {
		return 0, err
	}
	id, err := b.id()
	if err != nil {
		return 0, err
	}
	t := &texture{desc: desc, data: make([][]byte, desc.Slices())}
	for i := range t.data {
		t.data[i] = make([]byte, desc.SliceBytes())
		if slices != nil {
			copy(t.data[i], slices[i])
		}
	}
	b.textures[gpu.Texture(id)] = t
	return gpu.Texture(id), nil
}

func (b *Backend) CreateView(tex gpu.Texture, kind gpu.ViewKind) (gpu.View, error) {
	t, ok := b.textures[tex]
	if !ok {
		return 0, fmt.Errorf("%w: unknown texture %d", gpu.ErrInvalidDesc, tex)
	}
	need := map[gpu.ViewKind]gpu.BindFlags{
		gpu.ViewShaderResource: gpu.BindShaderResource,
		gpu.ViewRenderTarget:   gpu.BindRenderTarget,
		gpu.ViewDepthStencil:   gpu.BindDepthStencil,
	}[kind]
	if t.desc.Bind&need == 0 {
		return 0, fmt.Errorf("%w: texture %d lacks bind flag for view kind %d", gpu.ErrInvalidDesc, tex, kind)
	}
	id, err := b.id()
	if err != nil {
		return 0, err
	}
	b.views[gpu.View(id)] = view{tex: tex, kind: kind}
	return gpu.View(id), nil
}

func (b *Backend) CreateSampler(desc gpu.SamplerDesc) (gpu.Sampler, error) {
	id, err := b.id()
	if err != nil {
		return 0, err
	}
	b.samplers[gpu.Sampler(id)] = desc
	return gpu.Sampler(id), nil
}

func (b *Backend) CreateShader(stage gpu.Stage, src gpu.ShaderSource) (gpu.Shader, error) {
	if _, err := b.id(); err != nil {
		return nil, err
	}
	s := &Shader{
		backend: b,
		name:    src.Name,
		stage:   stage,
		layout:  gpu.Reflect(src.Code),
	}
	b.shaders[s] = struct{}{}
	return s, nil
}

func (b *Backend) TextureDesc(tex gpu.Texture) (gpu.TextureDesc, bool) {
	t, ok := b.textures[tex]
	if !ok {
		return gpu.TextureDesc{}, false
	}
	return t.desc, true
}

func (b *Backend) ReleaseBuffer(buf gpu.Buffer) error {
	if _, ok := b.buffers[buf]; !ok {
		return fmt.Errorf("release of unknown buffer %d", buf)
	}
	delete(b.buffers, buf)
	return nil
}

func (b *Backend) ReleaseTexture(tex gpu.Texture) error {
	if _, ok := b.textures[tex]; !ok {
		return fmt.Errorf("release of unknown texture %d", tex)
	}
	delete(b.textures, tex)
	return nil
}

func (b *Backend) ReleaseView(v gpu.View) error {
	if _, ok := b.views[v]; !ok {
		return fmt.Errorf("release of unknown view %d", v)
	}
	delete(b.views, v)
	return nil
}

func (b *Backend) ReleaseSampler(s gpu.Sampler) error {
	if _, ok := b.samplers[s]; !ok {
		return fmt.Errorf("release of unknown sampler %d", s)
	}
	delete(b.samplers, s)
	return nil
}

func (b *Backend) ReleaseShader(s gpu.Shader) error {
	ms, ok := s.(*Shader)
	if !ok {
		return fmt.Errorf("release of foreign shader %T", s)
	}
	if _, ok := b.shaders[ms]; !ok {
		return fmt.Errorf("release of unknown shader %q", ms.name)
	}
	delete(b.shaders, ms)
	return nil
}

// Context

// ClearRenderTarget records the clear and fills RGBA8 targets with c.
func (b *Backend) ClearRenderTarget(v gpu.View, c gpu.Color) {
	b.record(Command{Op: OpClearRenderTarget, View: v, Color: c})
	vw, ok := b.views[v]
	if !ok {
		return
	}
	t, ok := b.textures[vw.tex]
	if !ok || t.desc.Format != gpu.FormatRGBA8 {
		return
	}
	var px [4]byte
	for i, f := range c {
		px[i] = byte(min(max(f, 0), 1)*255 + 0.5)
	}
	for _, slice := range t.data {
		for i := 0; i+4 <= len(slice); i += 4 {
			copy(slice[i:], px[:])
		}
	}
}

func (b *Backend) ClearDepth(v gpu.View, depth float32) {
	b.record(Command{Op: OpClearDepth, View: v, Floats: []float32{depth}})
}

func (b *Backend) SetRenderTargets(color, depth gpu.View) {
	b.record(Command{Op: OpSetRenderTargets, View: color, Depth: depth})
}

func (b *Backend) SetViewport(vp gpu.Viewport) {
	b.record(Command{Op: OpSetViewport, Viewport: vp})
}

func (b *Backend) SetRasterState(rs gpu.RasterState) {
	b.record(Command{Op: OpSetRasterState, Raster: rs})
}

func (b *Backend) SetDepthState(ds gpu.DepthState) {
	b.record(Command{Op: OpSetDepthState, DepthSt: ds})
}

func (b *Backend) SetVertexBuffer(buf gpu.Buffer, stride int) {
	b.record(Command{Op: OpSetVertexBuffer, Buffer: buf, Count: stride})
}

func (b *Backend) SetIndexBuffer(buf gpu.Buffer) {
	b.record(Command{Op: OpSetIndexBuffer, Buffer: buf})
}

func (b *Backend) DrawIndexed(indexCount int) {
	b.record(Command{Op: OpDrawIndexed, Count: indexCount})
}

func (b *Backend) Draw(vertexCount int) {
	b.record(Command{Op: OpDraw, Count: vertexCount})
}

func (b *Backend) CopyTextureSlice(dst gpu.Texture, dstSlice int, src gpu.Texture) {
	b.record(Command{Op: OpCopyTextureSlice, Texture: dst, Slice: dstSlice})
	d, ok1 := b.textures[dst]
	s, ok2 := b.textures[src]
	if !ok1 || !ok2 || dstSlice < 0 || dstSlice >= len(d.data) {
		return
	}
	copy(d.data[dstSlice], s.data[0])
}

func (b *Backend) UnbindShaderResources() {
	b.record(Command{Op: OpUnbindResources})
}

func (b *Backend) ClearPixelShader() {
	delete(b.bound, gpu.StagePixel)
	b.record(Command{Op: OpClearPixelShader})
}

// Presenter

func (b *Backend) Present(vsync bool) error {
	b.record(Command{Op: OpPresent, VSync: vsync})
	return nil
}

// ReadBackBuffer returns a copy of the back buffer pixels.
func (b *Backend) ReadBackBuffer() (*image.RGBA, error) {
	t, ok := b.textures[b.backTex]
	if !ok {
		return nil, gpu.ErrNoBackBuffer
	}
	img := image.NewRGBA(image.Rect(0, 0, t.desc.Width, t.desc.Height))
	copy(img.Pix, t.data[0])
	return img, nil
}

// Resize replaces the back buffer. Creation goes through the same failure
// injection as every other resource.
func (b *Backend) Resize(width, height int) error {
	if width == 0 || height == 0 {
		b.releaseBackBuffer()
		b.width, b.height = 0, 0
		return nil
	}

	color, err := b.CreateTexture(gpu.TextureDesc{
		Width: width, Height: height, Format: gpu.FormatRGBA8, Bind: gpu.BindRenderTarget,
	}, nil)
	if err != nil {
		return err
	}
	depth, err := b.CreateTexture(gpu.TextureDesc{
		Width: width, Height: height, Format: gpu.FormatDepth32F, Bind: gpu.BindDepthStencil,
	}, nil)
	if err != nil {
		_ = b.ReleaseTexture(color)
		return err
	}
	colorView, err := b.CreateView(color, gpu.ViewRenderTarget)
	if err != nil {
		_ = b.ReleaseTexture(color)
		_ = b.ReleaseTexture(depth)
		return err
	}
	depthView, err := b.CreateView(depth, gpu.ViewDepthStencil)
	if err != nil {
		_ = b.ReleaseView(colorView)
		_ = b.ReleaseTexture(color)
		_ = b.ReleaseTexture(depth)
		return err
	}

	b.releaseBackBuffer()
	b.backTex, b.depTex, b.backView, b.depView = color, depth, colorView, depthView
	b.width, b.height = width, height
	return nil
}

func (b *Backend) releaseBackBuffer() {
	if b.backTex == 0 {
		return
	}
	_ = b.ReleaseView(b.backView)
	_ = b.ReleaseView(b.depView)
	_ = b.ReleaseTexture(b.backTex)
	_ = b.ReleaseTexture(b.depTex)
	b.backTex, b.depTex, b.backView, b.depView = 0, 0, 0, 0
}

func (b *Backend) BackBuffer() (color, depth gpu.View) {
	return b.backView, b.depView
}

func (b *Backend) Size() (width, height int) {
	return b.width, b.height
}

// Filter returns the recorded commands matching op, and name when name is
// not empty.
func (b *Backend) Filter(op Op, name string) []Command {
	var out []Command
	for _, c := range b.commands {
		if c.Op == op && (name == "" || c.Name == name) {
			out = append(out, c)
		}
	}
	return out
}

// Index returns the position of the first command matching op and name at
// or after from, or -1.
func (b *Backend) Index(from int, op Op, name string) int {
	for i := from; i < len(b.commands); i++ {
		c := b.commands[i]
		if c.Op == op && (name == "" || c.Name == name || c.Shader == name) {
			return i
		}
	}
	return -1
}
