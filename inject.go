package liquidglass

// syntheticKind selects what a queued synthetic event feeds.
type syntheticKind uint8

const (
	synthMouse syntheticKind = iota
	synthTouch
	synthTouchEnd
	synthOrientation
)

// syntheticEvent represents a single injected input sample. Screen
// coordinates are used, identical to real pointer input.
type syntheticEvent struct {
	kind    syntheticKind
	x, y    float64
	pressed bool
	reading OrientationReading
}

// InjectPress queues a mouse press at the given screen coordinates. The event
// is consumed on the next Update.
func (in *Input) InjectPress(x, y float64) {
	in.injectQueue = append(in.injectQueue, syntheticEvent{kind: synthMouse, x: x, y: y, pressed: true})
}

// InjectMove queues a mouse move with the button held in its current state.
func (in *Input) InjectMove(x, y float64) {
	in.injectQueue = append(in.injectQueue, syntheticEvent{kind: synthMouse, x: x, y: y, pressed: in.queuedPressed()})
}

// InjectRelease queues a mouse release at the given screen coordinates.
func (in *Input) InjectRelease(x, y float64) {
	in.injectQueue = append(in.injectQueue, syntheticEvent{kind: synthMouse, x: x, y: y})
}

// InjectClick queues a press followed by a release. Consumes two frames.
func (in *Input) InjectClick(x, y float64) {
	in.InjectPress(x, y)
	in.InjectRelease(x, y)
}

// InjectTap queues a single-finger touch followed by its lift. Consumes two
// frames.
func (in *Input) InjectTap(x, y float64) {
	in.injectQueue = append(in.injectQueue,
		syntheticEvent{kind: synthTouch, x: x, y: y},
		syntheticEvent{kind: synthTouchEnd},
	)
}

// InjectOrientation queues a device orientation reading.
func (in *Input) InjectOrientation(r OrientationReading) {
	in.injectQueue = append(in.injectQueue, syntheticEvent{kind: synthOrientation, reading: r})
}

// InjectHover queues a mouse path from (fromX, fromY) to (toX, toY) with the
// button up, spread over frames frames (minimum 2).
func (in *Input) InjectHover(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(frames-1)
		in.injectQueue = append(in.injectQueue, syntheticEvent{
			kind: synthMouse,
			x:    lerp(fromX, toX, t),
			y:    lerp(fromY, toY, t),
		})
	}
}

// Pending returns the number of queued synthetic events.
func (in *Input) Pending() int {
	return len(in.injectQueue)
}

func (in *Input) queuedPressed() bool {
	for i := len(in.injectQueue) - 1; i >= 0; i-- {
		if ev := in.injectQueue[i]; ev.kind == synthMouse {
			return ev.pressed
		}
	}
	return in.mouseDown
}

// processInjected pops one synthetic event and feeds it through the same
// state machines as real input. Returns true if an event was consumed.
func (in *Input) processInjected() bool {
	if len(in.injectQueue) == 0 {
		return false
	}
	ev := in.injectQueue[0]
	copy(in.injectQueue, in.injectQueue[1:])
	in.injectQueue = in.injectQueue[:len(in.injectQueue)-1]

	switch ev.kind {
	case synthMouse:
		in.pointer(ev.x, ev.y, ev.pressed)
	case synthTouch:
		in.touch([]Vec2{{ev.x, ev.y}})
	case synthTouchEnd:
		in.touch(nil)
	case synthOrientation:
		in.listeners.DispatchOrientation(ev.reading)
	}
	return true
}
