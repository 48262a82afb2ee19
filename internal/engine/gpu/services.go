package gpu

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Device creates and releases GPU resources.
type Device interface {
	CreateBuffer(desc BufferDesc, data []byte) (Buffer, error)
	// CreateTexture creates a texture, optionally filled with one byte slice
	// per array slice.
	CreateTexture(desc TextureDesc, slices [][]byte) (Texture, error)
	// CreateView creates a view of tex. A shader-resource view of a cube
	// texture is a cube view.
	CreateView(tex Texture, kind ViewKind) (View, error)
	CreateSampler(desc SamplerDesc) (Sampler, error)
	CreateShader(stage Stage, src ShaderSource) (Shader, error)

	// TextureDesc returns the description tex was created with.
	TextureDesc(tex Texture) (TextureDesc, bool)

	ReleaseBuffer(b Buffer) error
	ReleaseTexture(t Texture) error
	ReleaseView(v View) error
	ReleaseSampler(s Sampler) error
	ReleaseShader(s Shader) error
}

// Context records pipeline state and draw commands.
type Context interface {
	ClearRenderTarget(v View, c Color)
	ClearDepth(v View, depth float32)
	// SetRenderTargets binds output views. A zero color view disables color
	// output; a zero depth view disables depth.
	SetRenderTargets(color, depth View)
	SetViewport(vp Viewport)
	SetRasterState(rs RasterState)
	SetDepthState(ds DepthState)
	SetVertexBuffer(b Buffer, stride int)
	SetIndexBuffer(b Buffer)
	DrawIndexed(indexCount int)
	// Draw issues a non-indexed draw with no vertex buffer bound.
	Draw(vertexCount int)
	// CopyTextureSlice copies slice 0 of src into dstSlice of dst.
	CopyTextureSlice(dst Texture, dstSlice int, src Texture)
	// UnbindShaderResources clears every texture binding on every stage.
	UnbindShaderResources()
	// ClearPixelShader unbinds the pixel stage for depth-only drawing.
	ClearPixelShader()
}

// Presenter owns the presentable surface.
type Presenter interface {
	Present(vsync bool) error
	// Resize recreates the back buffer. A 0x0 size releases it.
	Resize(width, height int) error
	// BackBuffer returns the color and depth views of the current back
	// buffer, or zero views when there is none.
	BackBuffer() (color, depth View)
	Size() (width, height int)
}

// Capturer is implemented by presenters that can read the back buffer back.
type Capturer interface {
	// ReadBackBuffer returns the back buffer contents with the top row first.
	ReadBackBuffer() (*image.RGBA, error)
}

// ShaderSource is a named shader program text.
type ShaderSource struct {
	Name string
	Code string
}

// Shader is a compiled program for one stage. Parameters are addressed by
// name; setters report whether the name exists and are silent no-ops when it
// does not. Values are staged on the CPU and reach the GPU on
// CopyAllBufferData.
type Shader interface {
	Name() string
	Stage() Stage
	// Bind makes the shader current for its stage.
	Bind()

	SetFloat(name string, v float32) bool
	SetFloat2(name string, v mgl32.Vec2) bool
	SetFloat3(name string, v mgl32.Vec3) bool
	SetFloat4(name string, v mgl32.Vec4) bool
	SetInt(name string, v int32) bool
	SetMatrix4x4(name string, m mgl32.Mat4) bool
	// SetData stages raw bytes for a uniform block.
	SetData(name string, data []byte) bool
	SetShaderResourceView(name string, v View) bool
	SetSampler(name string, s Sampler) bool

	HasVariable(name string) bool
	// CopyAllBufferData uploads every staged value to the GPU.
	CopyAllBufferData()
}
