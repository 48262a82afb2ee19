// Package gpu defines the graphics services the engine renders through.
//
// Resources are opaque integer handles; the zero value of every handle means
// "none". A backend implements Device, Context and Presenter, and compiles
// Shader objects whose parameters are addressed by name.
package gpu

import (
	"errors"
	"fmt"
)

// ErrInvalidDesc is returned when a resource description cannot be created.
var ErrInvalidDesc = errors.New("invalid resource description")

// ErrNoBackBuffer is returned when reading a back buffer that was released.
var ErrNoBackBuffer = errors.New("no back buffer")

// Buffer is a vertex, index or constant buffer.
type Buffer uint32

// Texture is a 2D texture or texture array.
type Texture uint32

// View is a shader-resource, render-target or depth-stencil view of a texture.
type View uint32

// Sampler is a sampler state object.
type Sampler uint32

// Color is a linear RGBA color.
type Color [4]float32

// BufferKind selects how a buffer is bound.
type BufferKind uint8

const (
	VertexBuffer BufferKind = iota
	IndexBuffer
	ConstantBuffer
)

// BufferDesc describes a buffer. Immutable buffers must be created with data.
type BufferDesc struct {
	Kind    BufferKind
	Size    int
	Dynamic bool
}

// Validate reports whether the description can be created.
func (d BufferDesc) Validate(data []byte) error {
	if d.Size <= 0 {
		return fmt.Errorf("%w: buffer size %d", ErrInvalidDesc, d.Size)
	}
	if !d.Dynamic && len(data) != d.Size {
		return fmt.Errorf("%w: immutable buffer needs %d bytes, got %d", ErrInvalidDesc, d.Size, len(data))
	}
	return nil
}

// Format is a texel format.
type Format uint8

const (
	FormatRGBA8 Format = iota
	FormatRGBA16F
	FormatDepth32F
)

// BytesPerPixel returns the texel size of f.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGBA16F:
		return 8
	default:
		return 4
	}
}

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatRGBA16F:
		return "rgba16f"
	case FormatDepth32F:
		return "depth32f"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// BindFlags lists the views a texture may be given.
type BindFlags uint8

const (
	BindShaderResource BindFlags = 1 << iota
	BindRenderTarget
	BindDepthStencil
)

// TextureDesc describes a texture. ArraySize 0 is treated as 1.
type TextureDesc struct {
	Width     int
	Height    int
	ArraySize int
	Format    Format
	Bind      BindFlags
	Cube      bool
}

// Slices returns the effective array size.
func (d TextureDesc) Slices() int {
	if d.ArraySize < 1 {
		return 1
	}
	return d.ArraySize
}

// SliceBytes returns the byte size of one array slice.
func (d TextureDesc) SliceBytes() int {
	return d.Width * d.Height * d.Format.BytesPerPixel()
}

// Validate reports whether the description and optional initial data can be
// created.
func (d TextureDesc) Validate(slices [][]byte) error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: texture size %dx%d", ErrInvalidDesc, d.Width, d.Height)
	}
	if d.Cube && (d.Slices() != 6 || d.Width != d.Height) {
		return fmt.Errorf("%w: cube texture needs 6 square slices, got %d of %dx%d",
			ErrInvalidDesc, d.Slices(), d.Width, d.Height)
	}
	if d.Format == FormatDepth32F && d.Bind&BindRenderTarget != 0 {
		return fmt.Errorf("%w: depth texture cannot be a render target", ErrInvalidDesc)
	}
	if d.Format != FormatDepth32F && d.Bind&BindDepthStencil != 0 {
		return fmt.Errorf("%w: %s texture cannot be a depth target", ErrInvalidDesc, d.Format)
	}
	if slices == nil {
		return nil
	}
	if len(slices) != d.Slices() {
		return fmt.Errorf("%w: %d slices of data for array size %d", ErrInvalidDesc, len(slices), d.Slices())
	}
	for i, s := range slices {
		if len(s) != d.SliceBytes() {
			return fmt.Errorf("%w: slice %d has %d bytes, want %d", ErrInvalidDesc, i, len(s), d.SliceBytes())
		}
	}
	return nil
}

// ViewKind selects the type of view to create.
type ViewKind uint8

const (
	ViewShaderResource ViewKind = iota
	ViewRenderTarget
	ViewDepthStencil
)

// Filter is a sampler filter mode.
type Filter uint8

const (
	FilterLinear Filter = iota
	FilterPoint
	FilterAnisotropic
)

// AddressMode is a sampler coordinate wrap mode.
type AddressMode uint8

const (
	AddressWrap AddressMode = iota
	AddressClamp
	AddressBorder
)

// SamplerDesc describes a sampler. Compare enables depth comparison for
// shadow lookups.
type SamplerDesc struct {
	Filter        Filter
	Address       AddressMode
	MaxAnisotropy int
	Compare       bool
	BorderColor   Color
}

// Stage is a programmable pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StagePixel
)

func (s Stage) String() string {
	if s == StageVertex {
		return "vertex"
	}
	return "pixel"
}

// CullMode selects which triangles are discarded.
type CullMode uint8

const (
	CullBack CullMode = iota
	CullFront
	CullNone
)

// RasterState is the rasterizer configuration. Front faces wind clockwise.
type RasterState struct {
	Cull            CullMode
	DepthBias       int32
	SlopeScaledBias float32
}

// DefaultRasterState culls back faces with no bias.
func DefaultRasterState() RasterState {
	return RasterState{Cull: CullBack}
}

// CompareFunc is a depth comparison.
type CompareFunc uint8

const (
	CompareLess CompareFunc = iota
	CompareLessEqual
	CompareAlways
)

// DepthState is the depth test configuration.
type DepthState struct {
	Test  bool
	Write bool
	Func  CompareFunc
}

// DefaultDepthState tests and writes with a less-than comparison.
func DefaultDepthState() DepthState {
	return DepthState{Test: true, Write: true, Func: CompareLess}
}

// Viewport is a pixel rectangle with a [0, 1] depth range.
type Viewport struct {
	X, Y          int
	Width, Height int
}
