package texture

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skylight/internal/engine/gpu"
	"github.com/Faultbox/skylight/internal/engine/gpu/gputest"
)

func TestImageToRGBA(t *testing.T) {
	gray := image.NewGray(image.Rect(2, 3, 4, 5))
	gray.SetGray(2, 3, color.Gray{Y: 200})

	rgba := ImageToRGBA(gray)
	assert.Equal(t, image.Rect(0, 0, 2, 2), rgba.Bounds())
	assert.Equal(t, color.RGBA{200, 200, 200, 255}, rgba.RGBAAt(0, 0))

	same := image.NewRGBA(image.Rect(0, 0, 2, 2))
	assert.Same(t, same, ImageToRGBA(same))
}

func TestChecker(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}
	img := Checker(8, 2, white, black)

	assert.Equal(t, white, img.RGBAAt(0, 0))
	assert.Equal(t, black, img.RGBAAt(4, 0))
	assert.Equal(t, black, img.RGBAAt(0, 4))
	assert.Equal(t, white, img.RGBAAt(7, 7))
}

func TestResize(t *testing.T) {
	img := Resize(Solid(4, color.RGBA{10, 20, 30, 255}), 2, 2)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, color.RGBA{10, 20, 30, 255}, img.RGBAAt(1, 1))
}

func TestUpload(t *testing.T) {
	b := gputest.New(4, 4)
	img := Solid(2, color.RGBA{1, 2, 3, 4})

	tex, view, err := Upload(b, img)
	require.NoError(t, err)

	data, ok := b.TextureData(tex)
	require.True(t, ok)
	assert.Equal(t, img.Pix, data[0])
	vt, kind, ok := b.ViewTexture(view)
	require.True(t, ok)
	assert.Equal(t, tex, vt)
	assert.Equal(t, gpu.ViewShaderResource, kind)
}

func TestUploadReleasesTextureOnViewFailure(t *testing.T) {
	b := gputest.New(4, 4)
	live := b.Live()
	b.FailAfter(1)
	_, _, err := Upload(b, Solid(2, color.RGBA{}))
	b.FailAfter(-1)
	assert.ErrorIs(t, err, gputest.ErrInjected)
	assert.Equal(t, live, b.Live())
}
