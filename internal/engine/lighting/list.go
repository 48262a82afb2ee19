package lighting

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/skylight/internal/engine/gpu"
)

// MaxLights is the size of the shader light array.
const MaxLights = 16

// List is the scene's lights in insertion order.
type List struct {
	lights []Light
}

// Add appends a light. Returns false if the list is full.
func (l *List) Add(light Light) bool {
	if len(l.lights) >= MaxLights {
		return false
	}
	l.lights = append(l.lights, light)
	return true
}

// Len returns the number of lights.
func (l *List) Len() int { return len(l.lights) }

// At returns the light at index i.
func (l *List) At(i int) Light { return l.lights[i] }

// Set replaces the light at index i.
func (l *List) Set(i int, light Light) { l.lights[i] = light }

// Remove deletes the light at index i, keeping the order of the rest.
func (l *List) Remove(i int) {
	l.lights = append(l.lights[:i], l.lights[i+1:]...)
}

// Clear removes all lights.
func (l *List) Clear() { l.lights = l.lights[:0] }

// Lights returns the lights in order.
func (l *List) Lights() []Light { return l.lights }

// SetColor changes the color of the light at index i.
func (l *List) SetColor(i int, c mgl32.Vec3) {
	l.lights[i] = WithColor(l.lights[i], c)
}

// ShadowCaster returns the first directional light.
func (l *List) ShadowCaster() (Directional, bool) {
	for _, light := range l.lights {
		if d, ok := light.(Directional); ok {
			return d, true
		}
	}
	return Directional{}, false
}

// Records flattens the lights into upload records, index-parallel to the
// list.
func (l *List) Records() []Record {
	out := make([]Record, len(l.lights))
	for i, light := range l.lights {
		out[i] = light.record()
	}
	return out
}

// Bytes returns the records as raw bytes for a uniform block upload.
func (l *List) Bytes() []byte {
	return gpu.Bytes(l.Records())
}

// SunDirection returns the direction sunlight travels for a sun at the given
// azimuth (around Y, from +Z toward +X) and elevation above the horizon, in
// degrees.
func SunDirection(azimuth, elevation float32) mgl32.Vec3 {
	az := azimuth * math32.Pi / 180
	el := elevation * math32.Pi / 180

	toSun := mgl32.Vec3{
		math32.Cos(el) * math32.Sin(az),
		math32.Sin(el),
		math32.Cos(el) * math32.Cos(az),
	}
	return toSun.Mul(-1)
}
