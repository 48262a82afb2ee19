package game

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/skylight/internal/engine/scene"
)

// Animate moves the demo entities for one frame: the cube sways along X,
// the sphere bobs along Y, the spinner turns and the pulsing sphere grows
// and shrinks. Entities missing from s are skipped.
func Animate(s *scene.Scene, totalTime, deltaTime float32) {
	wave := math32.Sin(totalTime) * deltaTime

	if e, ok := s.Entity(EntityCube); ok {
		e.Transform().MoveAbsolute(mgl32.Vec3{wave, 0, 0})
	}
	if e, ok := s.Entity(EntitySphere); ok {
		e.Transform().MoveAbsolute(mgl32.Vec3{0, -wave, 0})
	}
	if e, ok := s.Entity(EntitySpinner); ok {
		e.Transform().Rotate(0, deltaTime, deltaTime)
	}
	if e, ok := s.Entity(EntityPulsing); ok {
		e.Transform().ScaleBy(mgl32.Vec3{wave, wave, wave})
	}
}
