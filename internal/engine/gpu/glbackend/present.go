package glbackend

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/multierr"

	"github.com/Faultbox/skylight/internal/engine/gpu"
)

// Present blits the back buffer to the window and swaps.
func (b *Backend) Present(vsync bool) error {
	if b.backView == 0 {
		return nil
	}
	src, ok := b.framebuffer(fboKey{color: b.backView})
	if !ok {
		return fmt.Errorf("back buffer framebuffer incomplete")
	}
	w, h := int32(b.width), int32(b.height)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, src)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	b.bindCurrent()

	if b.swap == nil {
		return nil
	}
	return b.swap(vsync)
}

// Resize replaces the back buffer. The new textures and views are created
// before the old ones are released. A 0x0 size releases the back buffer.
func (b *Backend) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		b.releaseBackBuffer()
		b.width, b.height = 0, 0
		return nil
	}

	color, err := b.CreateTexture(gpu.TextureDesc{
		Width: width, Height: height, Format: gpu.FormatRGBA8,
		Bind: gpu.BindRenderTarget | gpu.BindShaderResource,
	}, nil)
	if err != nil {
		return fmt.Errorf("creating back buffer: %w", err)
	}
	depth, err := b.CreateTexture(gpu.TextureDesc{
		Width: width, Height: height, Format: gpu.FormatDepth32F, Bind: gpu.BindDepthStencil,
	}, nil)
	if err != nil {
		return multierr.Append(fmt.Errorf("creating depth buffer: %w", err), b.ReleaseTexture(color))
	}
	colorView, err := b.CreateView(color, gpu.ViewRenderTarget)
	if err != nil {
		return multierr.Combine(err, b.ReleaseTexture(color), b.ReleaseTexture(depth))
	}
	depthView, err := b.CreateView(depth, gpu.ViewDepthStencil)
	if err != nil {
		return multierr.Combine(err, b.ReleaseView(colorView), b.ReleaseTexture(color), b.ReleaseTexture(depth))
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

// ReadBackBuffer reads the back buffer into an image. GL rows start at the
// bottom, so they are flipped on the way out.
func (b *Backend) ReadBackBuffer() (*image.RGBA, error) {
	if b.backView == 0 {
		return nil, gpu.ErrNoBackBuffer
	}
	fbo, ok := b.framebuffer(fboKey{color: b.backView})
	if !ok {
		return nil, fmt.Errorf("back buffer framebuffer incomplete")
	}

	w, h := b.width, b.height
	pixels := make([]byte, w*h*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fbo)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	b.bindCurrent()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	row := w * 4
	for y := range h {
		src := (h - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img, nil
}

func (b *Backend) BackBuffer() (color, depth gpu.View) {
	return b.backView, b.depView
}

func (b *Backend) Size() (width, height int) {
	return b.width, b.height
}
