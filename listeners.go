package liquidglass

// ListenerKind identifies a process-wide (window-level) event stream.
type ListenerKind uint8

const (
	ListenPointerMove ListenerKind = iota // pointer moved anywhere in the window
	ListenOrientation                     // device orientation reading
	ListenViewport                        // scroll/resize changed the visible ratio
	listenerKindCount
)

// String returns the listener kind name.
func (k ListenerKind) String() string {
	switch k {
	case ListenPointerMove:
		return "pointermove"
	case ListenOrientation:
		return "deviceorientation"
	case ListenViewport:
		return "viewport"
	default:
		return "unknown"
	}
}

type pointerListener struct {
	id uint32
	fn func(PointerEvent)
}

type orientationListener struct {
	id uint32
	fn func(OrientationReading)
}

type viewportListener struct {
	id uint32
	fn func(visibleRatio float64)
}

// Listeners is a registry of window-level subscriptions. The host feeds it
// raw events through the Dispatch methods; widgets attach on mount and
// release their handles on unmount.
type Listeners struct {
	pointerMove []pointerListener
	orientation []orientationListener
	viewport    []viewportListener
	nextID      uint32
}

// NewListeners creates an empty registry.
func NewListeners() *Listeners {
	return &Listeners{}
}

// Subscription is a scoped handle to a registered listener. Release detaches
// it exactly once; further calls are no-ops.
type Subscription struct {
	id   uint32
	kind ListenerKind
	reg  *Listeners
}

// Release unregisters the listener. The entry is removed from the slice so
// no nil entries are left behind.
func (s *Subscription) Release() {
	if s == nil || s.reg == nil {
		return
	}
	switch s.kind {
	case ListenPointerMove:
		s.reg.pointerMove = removeListener(s.reg.pointerMove, s.id, func(l pointerListener) uint32 { return l.id })
	case ListenOrientation:
		s.reg.orientation = removeListener(s.reg.orientation, s.id, func(l orientationListener) uint32 { return l.id })
	case ListenViewport:
		s.reg.viewport = removeListener(s.reg.viewport, s.id, func(l viewportListener) uint32 { return l.id })
	}
	s.reg = nil
}

// Active reports whether the handle is still attached.
func (s *Subscription) Active() bool {
	return s != nil && s.reg != nil
}

func removeListener[T any](s []T, id uint32, idOf func(T) uint32) []T {
	for i := range s {
		if idOf(s[i]) == id {
			var zero T
			copy(s[i:], s[i+1:])
			s[len(s)-1] = zero
			return s[:len(s)-1]
		}
	}
	return s
}

// OnPointerMove registers a window-level pointer move listener.
func (l *Listeners) OnPointerMove(fn func(PointerEvent)) *Subscription {
	l.nextID++
	l.pointerMove = append(l.pointerMove, pointerListener{id: l.nextID, fn: fn})
	return &Subscription{id: l.nextID, kind: ListenPointerMove, reg: l}
}

// OnOrientation registers a device orientation listener.
func (l *Listeners) OnOrientation(fn func(OrientationReading)) *Subscription {
	l.nextID++
	l.orientation = append(l.orientation, orientationListener{id: l.nextID, fn: fn})
	return &Subscription{id: l.nextID, kind: ListenOrientation, reg: l}
}

// OnViewport registers a visibility listener. fn receives the fraction of the
// widget currently inside the viewport.
func (l *Listeners) OnViewport(fn func(visibleRatio float64)) *Subscription {
	l.nextID++
	l.viewport = append(l.viewport, viewportListener{id: l.nextID, fn: fn})
	return &Subscription{id: l.nextID, kind: ListenViewport, reg: l}
}

// Count returns the number of listeners of the given kind.
func (l *Listeners) Count(kind ListenerKind) int {
	switch kind {
	case ListenPointerMove:
		return len(l.pointerMove)
	case ListenOrientation:
		return len(l.orientation)
	case ListenViewport:
		return len(l.viewport)
	default:
		return 0
	}
}

// Total returns the number of listeners across every kind.
func (l *Listeners) Total() int {
	n := 0
	for k := ListenerKind(0); k < listenerKindCount; k++ {
		n += l.Count(k)
	}
	return n
}

// DispatchPointerMove delivers ev to every pointer move listener.
func (l *Listeners) DispatchPointerMove(ev PointerEvent) {
	for _, h := range l.pointerMove {
		h.fn(ev)
	}
}

// DispatchOrientation delivers r to every orientation listener.
func (l *Listeners) DispatchOrientation(r OrientationReading) {
	for _, h := range l.orientation {
		h.fn(r)
	}
}

// DispatchViewport delivers the visible ratio to every viewport listener.
func (l *Listeners) DispatchViewport(visibleRatio float64) {
	for _, h := range l.viewport {
		h.fn(visibleRatio)
	}
}
