// Package texture converts images to RGBA and uploads them as GPU textures.
package texture

import (
	"fmt"
	"image"
	"image/color"

	"go.uber.org/multierr"
	"golang.org/x/image/draw"

	"github.com/Faultbox/skylight/internal/engine/gpu"
)

// ImageToRGBA converts any image.Image to a tightly packed *image.RGBA with
// its origin at (0, 0).
func ImageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// Resize scales img to size by size with bilinear filtering.
func Resize(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Upload creates an RGBA8 shader-resource texture from img and its view.
func Upload(dev gpu.Device, img image.Image) (gpu.Texture, gpu.View, error) {
	rgba := ImageToRGBA(img)
	tex, err := dev.CreateTexture(gpu.TextureDesc{
		Width:  rgba.Rect.Dx(),
		Height: rgba.Rect.Dy(),
		Format: gpu.FormatRGBA8,
		Bind:   gpu.BindShaderResource,
	}, [][]byte{rgba.Pix})
	if err != nil {
		return 0, 0, fmt.Errorf("creating texture: %w", err)
	}
	view, err := dev.CreateView(tex, gpu.ViewShaderResource)
	if err != nil {
		return 0, 0, multierr.Append(fmt.Errorf("creating texture view: %w", err), dev.ReleaseTexture(tex))
	}
	return tex, view, nil
}

// Solid returns a size by size image of one color.
func Solid(size int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// Checker returns a size by size checkerboard with cells squares per side.
func Checker(size, cells int, a, b color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := max(size/max(cells, 1), 1)
	for y := range size {
		for x := range size {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
