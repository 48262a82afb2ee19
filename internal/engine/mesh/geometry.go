package mesh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Procedural geometry. Front faces wind clockwise as seen from outside and
// UV (0,0) is the top-left of each face.

// quad appends one face centered at c with outward normal n. u points right
// and v points up as seen by a viewer facing the quad.
func quad(vertices []Vertex, indices []uint32, c, n, u, v mgl32.Vec3, halfU, halfV float32, uvScale mgl32.Vec2) ([]Vertex, []uint32) {
	base := uint32(len(vertices))
	hu, hv := u.Mul(halfU), v.Mul(halfV)

	corners := [4]struct {
		pos mgl32.Vec3
		uv  mgl32.Vec2
	}{
		{c.Sub(hu).Add(hv), mgl32.Vec2{0, 0}},
		{c.Add(hu).Add(hv), mgl32.Vec2{uvScale.X(), 0}},
		{c.Add(hu).Sub(hv), mgl32.Vec2{uvScale.X(), uvScale.Y()}},
		{c.Sub(hu).Sub(hv), mgl32.Vec2{0, uvScale.Y()}},
	}
	for _, k := range corners {
		vertices = append(vertices, Vertex{Position: k.pos, Normal: n, UV: k.uv})
	}
	indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	return vertices, indices
}

// faceRight returns the right axis for a face with normal n and up axis v.
func faceRight(n, v mgl32.Vec3) mgl32.Vec3 {
	return v.Cross(n.Mul(-1))
}

// Cube returns an axis-aligned cube with the given edge length centered on
// the origin. Faces are ordered +X, -X, +Y, -Y, +Z, -Z.
func Cube(size float32) ([]Vertex, []uint32) {
	h := size / 2
	faces := []struct{ n, v mgl32.Vec3 }{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	}

	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		vertices, indices = quad(vertices, indices, f.n.Mul(h), f.n, faceRight(f.n, f.v), f.v, h, h, mgl32.Vec2{1, 1})
	}
	return vertices, indices
}

// Plane returns a square in the XZ plane facing +Y. tiles repeats the
// texture across the surface.
func Plane(size, tiles float32) ([]Vertex, []uint32) {
	n := mgl32.Vec3{0, 1, 0}
	v := mgl32.Vec3{0, 0, 1}
	return quad(nil, nil, mgl32.Vec3{}, n, faceRight(n, v), v, size/2, size/2, mgl32.Vec2{tiles, tiles})
}

// Sphere returns a UV sphere. slices runs around Y, stacks from top to
// bottom. Both are clamped to a usable minimum.
func Sphere(radius float32, slices, stacks int) ([]Vertex, []uint32) {
	slices = max(slices, 3)
	stacks = max(stacks, 2)

	vertices := make([]Vertex, 0, (slices+1)*(stacks+1))
	for i := 0; i <= stacks; i++ {
		phi := math32.Pi * float32(i) / float32(stacks)
		sinPhi, cosPhi := math32.Sin(phi), math32.Cos(phi)
		for j := 0; j <= slices; j++ {
			theta := 2 * math32.Pi * float32(j) / float32(slices)
			sinTheta, cosTheta := math32.Sin(theta), math32.Cos(theta)

			n := mgl32.Vec3{sinPhi * cosTheta, cosPhi, sinPhi * sinTheta}
			vertices = append(vertices, Vertex{
				Position: n.Mul(radius),
				Normal:   n,
				UV:       mgl32.Vec2{float32(j) / float32(slices), float32(i) / float32(stacks)},
			})
		}
	}

	indices := make([]uint32, 0, slices*stacks*6)
	row := uint32(slices + 1)
	for i := 0; i < stacks; i++ {
		for j := 0; j < slices; j++ {
			tl := uint32(i)*row + uint32(j)
			tr := tl + 1
			bl := tl + row
			br := bl + 1
			indices = append(indices, tl, tr, br, tl, br, bl)
		}
	}
	return vertices, indices
}
