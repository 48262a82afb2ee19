// Package lighting holds the scene's light list and its GPU record layout.
package lighting

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Type tags a Record.
type Type int32

const (
	TypeDirectional Type = iota
	TypePoint
	TypeSpot
)

func (t Type) String() string {
	switch t {
	case TypeDirectional:
		return "directional"
	case TypePoint:
		return "point"
	case TypeSpot:
		return "spot"
	default:
		return "unknown"
	}
}

// Light is one of Directional, Point or Spot.
type Light interface {
	Type() Type
	record() Record
}

// Directional is a light at infinity shining along Direction.
type Directional struct {
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
}

// Point is an omnidirectional light with a falloff range.
type Point struct {
	Position  mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
	Range     float32
}

// Spot is a cone light. Angles are half-angles in radians; the inner cone
// is fully lit and light fades out to the outer cone.
type Spot struct {
	Position   mgl32.Vec3
	Direction  mgl32.Vec3
	Color      mgl32.Vec3
	Intensity  float32
	Range      float32
	InnerAngle float32
	OuterAngle float32
}

func (Directional) Type() Type { return TypeDirectional }
func (Point) Type() Type       { return TypePoint }
func (Spot) Type() Type        { return TypeSpot }

func (l Directional) record() Record {
	return Record{
		Type:      TypeDirectional,
		Direction: normalize(l.Direction),
		Color:     l.Color,
		Intensity: l.Intensity,
	}
}

func (l Point) record() Record {
	return Record{
		Type:      TypePoint,
		Position:  l.Position,
		Color:     l.Color,
		Intensity: l.Intensity,
		Range:     l.Range,
	}
}

func (l Spot) record() Record {
	return Record{
		Type:      TypeSpot,
		Direction: normalize(l.Direction),
		Position:  l.Position,
		Color:     l.Color,
		Intensity: l.Intensity,
		Range:     l.Range,
		SpotInner: l.InnerAngle,
		SpotOuter: l.OuterAngle,
	}
}

func normalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}

// Color returns the color of any light.
func Color(l Light) mgl32.Vec3 {
	return l.record().Color
}

// WithColor returns a copy of l with its color replaced.
func WithColor(l Light, c mgl32.Vec3) Light {
	switch v := l.(type) {
	case Directional:
		v.Color = c
		return v
	case Point:
		v.Color = c
		return v
	case Spot:
		v.Color = c
		return v
	}
	return l
}
