// Package assets handles demo asset loading and caching.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/skylight/internal/engine/sky"
	"github.com/Faultbox/skylight/internal/engine/texture"
	"github.com/Faultbox/skylight/internal/logger"
)

// ErrNotFound is returned when no root holds the requested file.
var ErrNotFound = errors.New("asset not found")

// ImageExtensions lists the extensions tried for extensionless image names.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".webp"}

// Manager handles asset loading from directory roots.
type Manager struct {
	roots []string
	cache *Cache
	mu    sync.RWMutex
	log   *zap.Logger
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
		log:   logger.Named("assets"),
	}
}

// AddRoot adds a directory to the manager.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddRoot(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("opening root %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("opening root %s: not a directory", dir)
	}

	m.mu.Lock()
	m.roots = append(m.roots, dir)
	m.mu.Unlock()

	m.log.Debug("asset root added", zap.String("dir", dir))
	return nil
}

// Load loads a file by slash-separated name from the roots.
func (m *Manager) Load(name string) ([]byte, error) {
	name = path.Clean(name)
	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		data, err := os.ReadFile(filepath.Join(m.roots[i], filepath.FromSlash(name)))
		if err == nil {
			m.cache.Set(name, data)
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// LoadImage loads and decodes a png, jpeg, bmp or webp image. A name
// without an extension is tried with each of ImageExtensions in turn.
func (m *Manager) LoadImage(name string) (*image.RGBA, error) {
	candidates := []string{name}
	if path.Ext(name) == "" {
		candidates = candidates[:0]
		for _, ext := range ImageExtensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, c := range candidates {
		data, err := m.Load(c)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		img, format, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", c, err)
		}
		m.log.Debug("image loaded", zap.String("name", c), zap.String("format", format),
			zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))
		return texture.ImageToRGBA(img), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// SkyFaces loads the six face images of a sky box from dir, named after
// sky.FaceNames. Faces of different sizes are scaled to the first face.
func (m *Manager) SkyFaces(dir string) ([6]*image.RGBA, error) {
	var faces [6]*image.RGBA
	for i, name := range sky.FaceNames {
		img, err := m.LoadImage(path.Join(dir, name))
		if err != nil {
			return faces, fmt.Errorf("sky face %s: %w", name, err)
		}
		if i > 0 && img.Bounds().Size() != faces[0].Bounds().Size() {
			m.log.Warn("sky face resized", zap.String("face", name),
				zap.Stringer("from", img.Bounds().Size()), zap.Stringer("to", faces[0].Bounds().Size()))
			img = texture.Resize(img, faces[0].Bounds().Dx(), faces[0].Bounds().Dy())
		}
		faces[i] = img
	}
	return faces, nil
}

// GradientSky returns six procedural faces shading from horizon to zenith.
// The up face is all zenith and the down face all ground.
func GradientSky(size int, zenith, horizon, ground color.RGBA) [6]*image.RGBA {
	var faces [6]*image.RGBA
	for i := range faces {
		switch sky.FaceNames[i] {
		case "up":
			faces[i] = texture.Solid(size, zenith)
		case "down":
			faces[i] = texture.Solid(size, ground)
		default:
			img := image.NewRGBA(image.Rect(0, 0, size, size))
			for y := range size {
				// Image rows run top down, so row 0 is the zenith.
				c := horizon
				if half := size / 2; y < half {
					c = lerp(zenith, horizon, float32(y)/float32(half))
				} else {
					c = ground
				}
				for x := range size {
					img.SetRGBA(x, y, c)
				}
			}
			faces[i] = img
		}
	}
	return faces
}

func lerp(a, b color.RGBA, t float32) color.RGBA {
	mix := func(x, y uint8) uint8 { return uint8(float32(x) + (float32(y)-float32(x))*t) }
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), mix(a.A, b.A)}
}

// Close drops all roots and clears the cache.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.roots = nil
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
