// Package math provides left-handed matrix helpers on top of mgl32.
//
// All matrices are mgl32.Mat4 (column-major, column vectors). A matrix built
// here has the same memory layout as its row-vector, row-major counterpart,
// so a world matrix written Scale*Rotation*Translation in row-vector terms is
// built as T*R*S and can be uploaded unchanged.
package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// WorldUp is the world-space up axis.
var WorldUp = mgl32.Vec3{0, 1, 0}

// RotationPitchYawRoll returns a rotation matrix that applies roll (Z),
// then pitch (X), then yaw (Y). Angles are in radians.
func RotationPitchYawRoll(pitch, yaw, roll float32) mgl32.Mat4 {
	return QuatPitchYawRoll(pitch, yaw, roll).Mat4()
}

// World composes a world matrix from position, pitch/yaw/roll and scale.
// Scale is applied first, then rotation, then translation.
func World(position, rotation, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	r := RotationPitchYawRoll(rotation.X(), rotation.Y(), rotation.Z())
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}

// InverseTranspose returns transpose(inverse(m)), the matrix used to carry
// normals through non-uniform scale.
// Returns identity if m is singular.
func InverseTranspose(m mgl32.Mat4) mgl32.Mat4 {
	if m.Det() == 0 {
		return mgl32.Ident4()
	}
	return m.Inv().Transpose()
}

// LookToLH returns a left-handed view matrix for an eye looking along dir.
func LookToLH(eye, dir, up mgl32.Vec3) mgl32.Mat4 {
	z := dir.Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)

	return mgl32.Mat4{
		x[0], y[0], z[0], 0,
		x[1], y[1], z[1], 0,
		x[2], y[2], z[2], 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}

// LookAtLH returns a left-handed view matrix for an eye looking at target.
func LookAtLH(eye, target, up mgl32.Vec3) mgl32.Mat4 {
	return LookToLH(eye, target.Sub(eye), up)
}

// PerspectiveFovLH returns a left-handed perspective projection with depth
// mapped to [0, 1]. fovY is in radians, aspect is width/height.
func PerspectiveFovLH(fovY, aspect, near, far float32) mgl32.Mat4 {
	h := 1 / math32.Tan(fovY/2)
	w := h / aspect
	r := far / (far - near)

	return mgl32.Mat4{
		w, 0, 0, 0,
		0, h, 0, 0,
		0, 0, r, 1,
		0, 0, -r * near, 0,
	}
}

// OrthographicLH returns a left-handed orthographic projection centered on
// the view axis with depth mapped to [0, 1].
func OrthographicLH(width, height, near, far float32) mgl32.Mat4 {
	r := 1 / (far - near)

	return mgl32.Mat4{
		2 / width, 0, 0, 0,
		0, 2 / height, 0, 0,
		0, 0, r, 0,
		0, 0, -r * near, 1,
	}
}
