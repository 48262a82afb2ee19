package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/skylight/internal/engine/sky"
	"github.com/Faultbox/skylight/internal/engine/texture"
)

func writePNG(t *testing.T, file string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
	f, err := os.Create(file)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadPrefersLastRoot(t *testing.T) {
	low, high := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(low, "a.txt"), []byte("low"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(low, "b.txt"), []byte("only low"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(high, "a.txt"), []byte("high"), 0o644))

	m := NewManager()
	require.NoError(t, m.AddRoot(low))
	require.NoError(t, m.AddRoot(high))

	data, err := m.Load("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "high", string(data))

	data, err = m.Load("b.txt")
	require.NoError(t, err)
	assert.Equal(t, "only low", string(data))

	_, err = m.Load("missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCaches(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("one"), 0o644))

	m := NewManager()
	require.NoError(t, m.AddRoot(dir))
	_, err := m.Load("a.txt")
	require.NoError(t, err)
	require.NoError(t, os.Remove(file))

	data, err := m.Load("./a.txt")
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
	hits, misses := m.cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	m.Close()
	_, err = m.Load("a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddRootRejectsFiles(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	m := NewManager()
	assert.Error(t, m.AddRoot(file))
	assert.Error(t, m.AddRoot(filepath.Join(file, "nope")))
}

func TestLoadImageTriesExtensions(t *testing.T) {
	dir := t.TempDir()
	want := texture.Solid(2, color.RGBA{1, 2, 3, 255})
	writePNG(t, filepath.Join(dir, "tex", "stone.png"), want)

	m := NewManager()
	require.NoError(t, m.AddRoot(dir))

	img, err := m.LoadImage("tex/stone")
	require.NoError(t, err)
	assert.Equal(t, want.Pix, img.Pix)

	_, err = m.LoadImage("tex/wood")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tex", "bad.png"), []byte("not a png"), 0o644))
	_, err = m.LoadImage("tex/bad.png")
	assert.ErrorContains(t, err, "decoding")
}

func TestSkyFaces(t *testing.T) {
	dir := t.TempDir()
	for i, name := range sky.FaceNames {
		size := 4
		if i == 5 {
			size = 8
		}
		writePNG(t, filepath.Join(dir, "sky", name+".png"), texture.Solid(size, color.RGBA{uint8(i), 0, 0, 255}))
	}

	m := NewManager()
	require.NoError(t, m.AddRoot(dir))

	faces, err := m.SkyFaces("sky")
	require.NoError(t, err)
	for i, f := range faces {
		assert.Equal(t, image.Pt(4, 4), f.Bounds().Size(), sky.FaceNames[i])
		assert.Equal(t, uint8(i), f.RGBAAt(0, 0).R, sky.FaceNames[i])
	}

	require.NoError(t, os.Remove(filepath.Join(dir, "sky", "down.png")))
	m.Close()
	require.NoError(t, m.AddRoot(dir))
	_, err = m.SkyFaces("sky")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "down")
}

func TestGradientSky(t *testing.T) {
	zenith := color.RGBA{0, 0, 200, 255}
	horizon := color.RGBA{200, 200, 255, 255}
	ground := color.RGBA{50, 40, 30, 255}
	faces := GradientSky(8, zenith, horizon, ground)

	assert.Equal(t, zenith, faces[2].RGBAAt(3, 3))
	assert.Equal(t, ground, faces[3].RGBAAt(3, 3))
	assert.Equal(t, zenith, faces[0].RGBAAt(0, 0))
	assert.Equal(t, ground, faces[0].RGBAAt(0, 7))
	for _, f := range faces {
		assert.Equal(t, image.Pt(8, 8), f.Bounds().Size())
	}
}
