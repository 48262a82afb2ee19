// Package input handles SDL2 input events and turns them into camera
// movement and demo actions.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/skylight/internal/engine/camera"
)

// Event types for game use
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	Button uint8
}

// Action is a one-shot demo command bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionNextCamera
	ActionPrevCamera
	ActionTogglePost
	ActionToggleShadows
	ActionToggleVSync
	ActionScreenshot
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionNextCamera:
		return "next-camera"
	case ActionPrevCamera:
		return "prev-camera"
	case ActionTogglePost:
		return "toggle-post"
	case ActionToggleShadows:
		return "toggle-shadows"
	case ActionToggleVSync:
		return "toggle-vsync"
	case ActionScreenshot:
		return "screenshot"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// Input handles all input processing.
type Input struct {
	events  []Event
	actions []Action
	keys    map[sdl.Scancode]bool

	looking      bool
	lookX, lookY float32
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
		keys:   make(map[sdl.Scancode]bool),
	}
}

// Update polls SDL events and converts them to game events.
// Returns true if the game should quit.
func (i *Input) Update() bool {
	i.Begin()
	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if i.Handle(event) {
			quit = true
		}
	}
	return quit
}

// Begin clears the per-frame events and actions. Held keys are kept.
func (i *Input) Begin() {
	i.events = i.events[:0]
	i.actions = i.actions[:0]
}

// Handle processes one SDL event and reports whether it asks to quit.
func (i *Input) Handle(event sdl.Event) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.events = append(i.events, Event{Type: EventQuit})
		i.actions = append(i.actions, ActionQuit)
		return true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			i.events = append(i.events, Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			})
		}

	case *sdl.KeyboardEvent:
		code := e.Keysym.Scancode
		if e.State != sdl.PRESSED {
			i.keys[code] = false
			i.events = append(i.events, Event{Type: EventKeyUp, Key: code})
			return false
		}
		i.keys[code] = true
		i.events = append(i.events, Event{Type: EventKeyDown, Key: code})
		if e.Repeat != 0 {
			return false
		}
		if a := i.actionFor(code); a != ActionNone {
			i.actions = append(i.actions, a)
			return a == ActionQuit
		}

	case *sdl.MouseMotionEvent:
		i.events = append(i.events, Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
		})
		if i.looking {
			i.lookX += float32(e.XRel)
			i.lookY += float32(e.YRel)
		}

	case *sdl.MouseButtonEvent:
		pressed := e.State == sdl.PRESSED
		typ := EventMouseUp
		if pressed {
			typ = EventMouseDown
		}
		i.events = append(i.events, Event{
			Type:   typ,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			Button: e.Button,
		})
		if e.Button == sdl.BUTTON_RIGHT {
			i.looking = pressed
		}
	}
	return false
}

func (i *Input) actionFor(code sdl.Scancode) Action {
	switch code {
	case sdl.SCANCODE_TAB:
		if i.shift() {
			return ActionPrevCamera
		}
		return ActionNextCamera
	case sdl.SCANCODE_P:
		return ActionTogglePost
	case sdl.SCANCODE_H:
		return ActionToggleShadows
	case sdl.SCANCODE_V:
		return ActionToggleVSync
	case sdl.SCANCODE_F12:
		return ActionScreenshot
	case sdl.SCANCODE_ESCAPE:
		return ActionQuit
	}
	return ActionNone
}

func (i *Input) shift() bool {
	return i.keys[sdl.SCANCODE_LSHIFT] || i.keys[sdl.SCANCODE_RSHIFT]
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Actions returns the actions triggered since the last Update.
func (i *Input) Actions() []Action {
	return i.actions
}

// IsKeyDown reports whether a key is currently held.
func (i *Input) IsKeyDown(scancode sdl.Scancode) bool {
	return i.keys[scancode]
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// CameraInput returns movement from WASD, Space/X for up and down and the
// mouse look accumulated while the right button is held. Shift moves fast,
// Ctrl slow. The accumulated look is consumed.
func (i *Input) CameraInput() camera.Input {
	in := camera.Input{
		Forward: axis(i.keys[sdl.SCANCODE_W], i.keys[sdl.SCANCODE_S]),
		Right:   axis(i.keys[sdl.SCANCODE_D], i.keys[sdl.SCANCODE_A]),
		Up:      axis(i.keys[sdl.SCANCODE_SPACE], i.keys[sdl.SCANCODE_X]),
		LookX:   i.lookX,
		LookY:   i.lookY,
		Fast:    i.shift(),
		Slow:    i.keys[sdl.SCANCODE_LCTRL] || i.keys[sdl.SCANCODE_RCTRL],
	}
	i.lookX, i.lookY = 0, 0
	return in
}

func axis(pos, neg bool) float32 {
	var v float32
	if pos {
		v++
	}
	if neg {
		v--
	}
	return v
}
