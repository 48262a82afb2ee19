package camera

// List is an ordered set of cameras with one active.
type List struct {
	cameras []*Camera
	active  int
}

// Add appends a camera and returns its index. The first camera added
// becomes active.
func (l *List) Add(c *Camera) int {
	l.cameras = append(l.cameras, c)
	return len(l.cameras) - 1
}

// Len returns the number of cameras.
func (l *List) Len() int { return len(l.cameras) }

// Active returns the active camera, or nil for an empty list.
func (l *List) Active() *Camera {
	if len(l.cameras) == 0 {
		return nil
	}
	return l.cameras[l.active]
}

// ActiveIndex returns the index of the active camera.
func (l *List) ActiveIndex() int { return l.active }

// SetActive selects the camera at i. Out of range indices are ignored.
func (l *List) SetActive(i int) bool {
	if i < 0 || i >= len(l.cameras) {
		return false
	}
	l.active = i
	return true
}

// Next activates the following camera, wrapping to the first.
func (l *List) Next() {
	if len(l.cameras) == 0 {
		return
	}
	l.active = (l.active + 1) % len(l.cameras)
}

// Prev activates the preceding camera, wrapping to the last.
func (l *List) Prev() {
	if len(l.cameras) == 0 {
		return
	}
	l.active = (l.active - 1 + len(l.cameras)) % len(l.cameras)
}

// All returns every camera in order.
func (l *List) All() []*Camera { return l.cameras }

// UpdateProjections sets the aspect ratio of every camera.
func (l *List) UpdateProjections(aspect float32) {
	for _, c := range l.cameras {
		c.UpdateProjectionMatrix(aspect)
	}
}
