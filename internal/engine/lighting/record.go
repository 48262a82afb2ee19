package lighting

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Record is the fixed 64-byte upload layout shared by every light type.
// Fields unused by a type are zero. In shaders it is four vec4s:
// (type, direction), (range, position), (intensity, color),
// (spot inner, spot outer, -, -).
type Record struct {
	Type      Type
	Direction mgl32.Vec3
	Range     float32
	Position  mgl32.Vec3
	Intensity float32
	Color     mgl32.Vec3
	SpotInner float32
	SpotOuter float32
	_         [2]float32
}

// RecordSize is the byte size of one Record.
const RecordSize = int(unsafe.Sizeof(Record{}))
