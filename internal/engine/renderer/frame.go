package renderer

import (
	"github.com/Faultbox/skylight/internal/engine/camera"
	"github.com/Faultbox/skylight/internal/engine/entity"
	"github.com/Faultbox/skylight/internal/engine/lighting"
	"github.com/Faultbox/skylight/internal/engine/sky"
)

// Frame is everything one Render call draws.
type Frame struct {
	Camera   *camera.Camera
	Lights   *lighting.List
	Entities []*entity.Entity
	Library  entity.Library
	Sky      *sky.Sky // optional

	TotalTime float32
	DeltaTime float32
}

// Phase names a pipeline step.
type Phase string

const (
	PhaseShadow  Phase = "shadow"
	PhaseMain    Phase = "main"
	PhaseSky     Phase = "sky"
	PhasePost    Phase = "post"
	PhasePresent Phase = "present"
)

// Stats describes what a Render call did.
type Stats struct {
	// Phases lists the executed phases in order.
	Phases []Phase
	// Skipped is set when there was nothing to render into.
	Skipped bool

	EntitiesDrawn int
	ShadowCasters int
}

// Ran reports whether p was executed.
func (s Stats) Ran(p Phase) bool {
	for _, q := range s.Phases {
		if q == p {
			return true
		}
	}
	return false
}
