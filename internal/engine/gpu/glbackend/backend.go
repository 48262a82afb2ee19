// Package glbackend implements the gpu services on OpenGL 4.1 core.
//
// Every call must come from the thread that owns the GL context. The back
// buffer is an offscreen color and depth texture pair that Present blits to
// the default framebuffer before swapping.
package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/internal/logger"
)

// SwapFunc presents the default framebuffer, waiting for vertical sync when
// asked to.
type SwapFunc func(vsync bool) error

type buffer struct {
	id   uint32
	desc gpu.BufferDesc
}

type texture struct {
	id     uint32
	target uint32
	desc   gpu.TextureDesc
}

type view struct {
	tex  gpu.Texture
	kind gpu.ViewKind
}

type fboKey struct{ color, depth gpu.View }

// Backend implements gpu.Device, gpu.Context, gpu.Presenter and
// gpu.Capturer.
type Backend struct {
	swap SwapFunc

	nextID   uint32
	buffers  map[gpu.Buffer]*buffer
	textures map[gpu.Texture]*texture
	views    map[gpu.View]view
	samplers map[gpu.Sampler]uint32
	shaders  map[*Shader]struct{}
	programs map[programKey]*program
	fbos     map[fboKey]uint32

	meshVAO, emptyVAO uint32
	readFBO           uint32

	vs, ps     *Shader
	current    fboKey
	boundUnits int
	broken     map[programKey]bool

	width, height     int
	backTex, depTex   gpu.Texture
	backView, depView gpu.View

	log *zap.Logger
}

var (
	_ gpu.Device    = (*Backend)(nil)
	_ gpu.Context   = (*Backend)(nil)
	_ gpu.Presenter = (*Backend)(nil)
	_ gpu.Capturer  = (*Backend)(nil)
)

// New initializes OpenGL on the current context and creates a back buffer
// of the given size.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New(width, height int, swap SwapFunc) (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	b := &Backend{
		swap:     swap,
		buffers:  make(map[gpu.Buffer]*buffer),
		textures: make(map[gpu.Texture]*texture),
		views:    make(map[gpu.View]view),
		samplers: make(map[gpu.Sampler]uint32),
		shaders:  make(map[*Shader]struct{}),
		programs: make(map[programKey]*program),
		fbos:     make(map[fboKey]uint32),
		broken:   make(map[programKey]bool),
		log:      logger.Named("glbackend"),
	}

	b.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	// Front faces wind clockwise.
	gl.FrontFace(gl.CW)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)

	gl.GenVertexArrays(1, &b.meshVAO)
	gl.GenVertexArrays(1, &b.emptyVAO)
	gl.GenFramebuffers(1, &b.readFBO)

	if err := b.Resize(width, height); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

// Close releases the back buffer and every GL object the backend created
// for itself. Resources handed out through Device must be released first.
func (b *Backend) Close() {
	b.log.Info("closing GL backend", zap.Int("leaked", b.live()))
	b.releaseBackBuffer()
	for k, p := range b.programs {
		gl.DeleteProgram(p.id)
		delete(b.programs, k)
	}
	for k, fbo := range b.fbos {
		gl.DeleteFramebuffers(1, &fbo)
		delete(b.fbos, k)
	}
	if b.readFBO != 0 {
		gl.DeleteFramebuffers(1, &b.readFBO)
		b.readFBO = 0
	}
	if b.meshVAO != 0 {
		gl.DeleteVertexArrays(1, &b.meshVAO)
		b.meshVAO = 0
	}
	if b.emptyVAO != 0 {
		gl.DeleteVertexArrays(1, &b.emptyVAO)
		b.emptyVAO = 0
	}
}

func (b *Backend) live() int {
	n := len(b.buffers) + len(b.textures) + len(b.views) + len(b.samplers) + len(b.shaders)
	if b.backTex != 0 {
		n -= 4
	}
	return n
}

func (b *Backend) id() uint32 {
	b.nextID++
	return b.nextID
}

func (b *Backend) CreateBuffer(desc gpu.BufferDesc, data []byte) (gpu.Buffer, error) {
	if err := desc.Validate(data); err != nil {
		return 0, err
	}
	usage := uint32(gl.STATIC_DRAW)
	if desc.Dynamic {
		usage = gl.DYNAMIC_DRAW
	}

	buf := &buffer{desc: desc}
	gl.GenBuffers(1, &buf.id)
	// Index buffers are recorded in the mesh VAO, so upload through the
	// generic copy target instead.
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, buf.id)
	gl.BufferData(gl.COPY_WRITE_BUFFER, desc.Size, ptr(data), usage)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)

	h := gpu.Buffer(b.id())
	b.buffers[h] = buf
	return h, nil
}

func (b *Backend) CreateTexture(desc gpu.TextureDesc, slices [][]byte) (gpu.Texture, error) {
	if err := desc.Validate(slices); err != nil {
		return 0, err
	}
	f := formatOf(desc.Format)
	t := &texture{desc: desc, target: textureTarget(desc)}

	gl.GenTextures(1, &t.id)
	gl.BindTexture(t.target, t.id)
	w, h := int32(desc.Width), int32(desc.Height)
	switch t.target {
	case gl.TEXTURE_CUBE_MAP:
		for i := range 6 {
			gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, f.internal, w, h, 0, f.format, f.xtype, ptr(slice(slices, i)))
		}
	case gl.TEXTURE_2D_ARRAY:
		gl.TexImage3D(t.target, 0, f.internal, w, h, int32(desc.Slices()), 0, f.format, f.xtype, nil)
		for i := range slices {
			gl.TexSubImage3D(t.target, 0, 0, 0, int32(i), w, h, 1, f.format, f.xtype, ptr(slices[i]))
		}
	default:
		gl.TexImage2D(t.target, 0, f.internal, w, h, 0, f.format, f.xtype, ptr(slice(slices, 0)))
	}
	gl.TexParameteri(t.target, gl.TEXTURE_MAX_LEVEL, 0)
	gl.TexParameteri(t.target, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(t.target, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(t.target, 0)

	id := gpu.Texture(b.id())
	b.textures[id] = t
	return id, nil
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
	v := gpu.View(b.id())
	b.views[v] = view{tex: tex, kind: kind}
	return v, nil
}

func (b *Backend) CreateSampler(desc gpu.SamplerDesc) (gpu.Sampler, error) {
	var id uint32
	gl.GenSamplers(1, &id)

	minFilter, magFilter := int32(gl.LINEAR), int32(gl.LINEAR)
	if desc.Filter == gpu.FilterPoint {
		minFilter, magFilter = gl.NEAREST, gl.NEAREST
	}
	gl.SamplerParameteri(id, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.SamplerParameteri(id, gl.TEXTURE_MAG_FILTER, magFilter)

	wrap := addressOf(desc.Address)
	gl.SamplerParameteri(id, gl.TEXTURE_WRAP_S, wrap)
	gl.SamplerParameteri(id, gl.TEXTURE_WRAP_T, wrap)
	gl.SamplerParameteri(id, gl.TEXTURE_WRAP_R, wrap)
	if desc.Address == gpu.AddressBorder {
		border := desc.BorderColor
		gl.SamplerParameterfv(id, gl.TEXTURE_BORDER_COLOR, &border[0])
	}
	if desc.Compare {
		gl.SamplerParameteri(id, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
		gl.SamplerParameteri(id, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)
	}
	if desc.Filter == gpu.FilterAnisotropic {
		// Anisotropy is an extension on 4.1; trilinear is the fallback.
		b.log.Debug("anisotropic filtering unavailable, using linear", zap.Int("max", desc.MaxAnisotropy))
	}

	s := gpu.Sampler(b.id())
	b.samplers[s] = id
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
	res, ok := b.buffers[buf]
	if !ok {
		return fmt.Errorf("release buffer %d: not live", buf)
	}
	gl.DeleteBuffers(1, &res.id)
	delete(b.buffers, buf)
	return nil
}

func (b *Backend) ReleaseTexture(tex gpu.Texture) error {
	t, ok := b.textures[tex]
	if !ok {
		return fmt.Errorf("release texture %d: not live", tex)
	}
	gl.DeleteTextures(1, &t.id)
	delete(b.textures, tex)
	return nil
}

func (b *Backend) ReleaseView(v gpu.View) error {
	if _, ok := b.views[v]; !ok {
		return fmt.Errorf("release view %d: not live", v)
	}
	for k, fbo := range b.fbos {
		if k.color == v || k.depth == v {
			gl.DeleteFramebuffers(1, &fbo)
			delete(b.fbos, k)
		}
	}
	if b.current.color == v || b.current.depth == v {
		b.current = fboKey{}
	}
	delete(b.views, v)
	return nil
}

func (b *Backend) ReleaseSampler(s gpu.Sampler) error {
	id, ok := b.samplers[s]
	if !ok {
		return fmt.Errorf("release sampler %d: not live", s)
	}
	gl.DeleteSamplers(1, &id)
	delete(b.samplers, s)
	return nil
}

func (b *Backend) ReleaseShader(s gpu.Shader) error {
	sh, ok := s.(*Shader)
	if !ok {
		return fmt.Errorf("release shader: %T is not a GL shader", s)
	}
	if _, ok := b.shaders[sh]; !ok {
		return fmt.Errorf("release shader %s: not live", sh.name)
	}
	for k, p := range b.programs {
		if k.vs == sh || k.ps == sh {
			gl.DeleteProgram(p.id)
			delete(b.programs, k)
			delete(b.broken, k)
		}
	}
	if b.vs == sh {
		b.vs = nil
	}
	if b.ps == sh {
		b.ps = nil
	}
	sh.release()
	delete(b.shaders, sh)
	return nil
}

func slice(slices [][]byte, i int) []byte {
	if i < len(slices) {
		return slices[i]
	}
	return nil
}
