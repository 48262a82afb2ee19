package math

import "github.com/go-gl/mathgl/mgl32"

var (
	axisX = mgl32.Vec3{1, 0, 0}
	axisY = mgl32.Vec3{0, 1, 0}
	axisZ = mgl32.Vec3{0, 0, 1}
)

// QuatPitchYawRoll builds a rotation quaternion from pitch (X), yaw (Y) and
// roll (Z) in radians. Rotating a vector applies roll, then pitch, then yaw.
func QuatPitchYawRoll(pitch, yaw, roll float32) mgl32.Quat {
	qx := mgl32.QuatRotate(pitch, axisX)
	qy := mgl32.QuatRotate(yaw, axisY)
	qz := mgl32.QuatRotate(roll, axisZ)
	return qy.Mul(qx).Mul(qz)
}

// RotateVec rotates v by the given pitch/yaw/roll.
func RotateVec(v, pitchYawRoll mgl32.Vec3) mgl32.Vec3 {
	return QuatPitchYawRoll(pitchYawRoll.X(), pitchYawRoll.Y(), pitchYawRoll.Z()).Rotate(v)
}

// Forward returns the +Z axis rotated by pitch/yaw/roll.
func Forward(pitchYawRoll mgl32.Vec3) mgl32.Vec3 {
	return RotateVec(axisZ, pitchYawRoll)
}

// Right returns the +X axis rotated by pitch/yaw/roll.
func Right(pitchYawRoll mgl32.Vec3) mgl32.Vec3 {
	return RotateVec(axisX, pitchYawRoll)
}

// Up returns the +Y axis rotated by pitch/yaw/roll.
func Up(pitchYawRoll mgl32.Vec3) mgl32.Vec3 {
	return RotateVec(axisY, pitchYawRoll)
}
