package shadow

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/skylight/pkg/math"
)

// Shader variable names for the light matrices.
const (
	VarLightView       = "lightView"
	VarLightProjection = "lightProjection"
)

// Matrices are the view and projection of the shadow-casting light.
type Matrices struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// upFor picks an up vector that is not parallel to dir.
func upFor(dir mgl32.Vec3) mgl32.Vec3 {
	if math32.Abs(dir.Normalize().Y()) > 0.99 {
		return mgl32.Vec3{0, 0, 1}
	}
	return math.WorldUp
}

// FixedMatrices places the light distance units back from the origin along
// its direction and covers an extent-by-extent square.
func FixedMatrices(dir mgl32.Vec3, distance, extent float32) Matrices {
	d := dir.Normalize()
	eye := d.Mul(-distance)
	return Matrices{
		View:       math.LookToLH(eye, d, upFor(d)),
		Projection: math.OrthographicLH(extent, extent, 0.1, distance*2),
	}
}

// FitMatrices sizes the light frustum to enclose bounds, with a little
// padding against edge artifacts.
func FitMatrices(dir mgl32.Vec3, bounds math.AABB) Matrices {
	d := dir.Normalize()
	center := bounds.Center()
	radius := max(bounds.Radius(), 0.5)

	distance := radius * 2
	eye := center.Sub(d.Mul(distance))

	padding := radius * 0.1
	size := 2 * (radius + padding)
	far := distance + radius + padding

	return Matrices{
		View:       math.LookToLH(eye, d, upFor(d)),
		Projection: math.OrthographicLH(size, size, 0.1, far),
	}
}
